// Package cache provides bounded response caching for upstream API calls.
//
// LRUCache is an in-memory store capped at a fixed number of entries. Reads
// and writes both count as use, the least recently used entry is evicted
// when an insertion exceeds capacity, and every entry carries its own TTL.
// Expired entries are reported as misses and purged lazily or by Run.
//
// ResponseCache layers endpoint + parameter fingerprinting (Keyer) and
// read-through fetching on top of any Cache. LRUCache copies values on the
// way in and out, so callers never share memory with the store.
package cache
