package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLRU(size int) (*LRUCache, *fakeClock) {
	clock := newFakeClock()
	return NewLRUCache(LRUConfig{MaxEntries: size, Clock: clock.Now}), clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestLRU(10)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("Get(missing) should miss")
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Errorf("Get(k) = %q, %v; want %q, true", got, ok, "v")
	}
}

func TestLRUCache_SetInvalidKey(t *testing.T) {
	c, _ := newTestLRU(10)

	if err := c.Set(context.Background(), "", []byte("v"), time.Minute); err != ErrInvalidKey {
		t.Errorf("Set(\"\") error = %v, want ErrInvalidKey", err)
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestLRU(2)
	ctx := context.Background()

	_ = c.Set(ctx, "A", []byte("a"), time.Hour)
	_ = c.Set(ctx, "B", []byte("b"), time.Hour)
	c.Get(ctx, "A") // A is now most recently used
	_ = c.Set(ctx, "C", []byte("c"), time.Hour)

	if _, ok := c.Get(ctx, "B"); ok {
		t.Error("B should be evicted")
	}
	if _, ok := c.Get(ctx, "A"); !ok {
		t.Error("A should be present")
	}
	if _, ok := c.Get(ctx, "C"); !ok {
		t.Error("C should be present")
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestLRUCache_OverwriteCountsAsUse(t *testing.T) {
	c, _ := newTestLRU(2)
	ctx := context.Background()

	_ = c.Set(ctx, "A", []byte("a1"), time.Hour)
	_ = c.Set(ctx, "B", []byte("b"), time.Hour)
	_ = c.Set(ctx, "A", []byte("a2"), time.Hour)

	if got := c.Len(); got != 2 {
		t.Errorf("Len() = %d after overwrite, want 2", got)
	}

	_ = c.Set(ctx, "C", []byte("c"), time.Hour)

	if _, ok := c.Get(ctx, "B"); ok {
		t.Error("B should be evicted after A was refreshed")
	}
	got, ok := c.Get(ctx, "A")
	if !ok || string(got) != "a2" {
		t.Errorf("Get(A) = %q, %v; want %q, true", got, ok, "a2")
	}
}

func TestLRUCache_TTL(t *testing.T) {
	c, clock := newTestLRU(10)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)

	clock.Advance(59 * time.Second)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("entry should be live before its TTL")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("entry should be absent once its TTL elapsed")
	}
	if got := c.Len(); got != 0 {
		t.Errorf("Len() = %d, expired entry should be removed on lookup", got)
	}
	if got := c.Stats().Expirations; got != 1 {
		t.Errorf("Expirations = %d, want 1", got)
	}
}

func TestLRUCache_ZeroTTL(t *testing.T) {
	c, _ := newTestLRU(10)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("old"), time.Hour)
	_ = c.Set(ctx, "k", []byte("new"), 0)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("ttl=0 should leave the key absent")
	}

	_ = c.Set(ctx, "neg", []byte("v"), -time.Second)
	if _, ok := c.Get(ctx, "neg"); ok {
		t.Error("negative ttl should store nothing")
	}
}

func TestLRUCache_ExpiredEntriesYieldToLiveOnes(t *testing.T) {
	c, clock := newTestLRU(2)
	ctx := context.Background()

	_ = c.Set(ctx, "short", []byte("s"), time.Second)
	_ = c.Set(ctx, "live", []byte("l"), time.Hour)

	clock.Advance(2 * time.Second)
	_ = c.Set(ctx, "new", []byte("n"), time.Hour)

	if _, ok := c.Get(ctx, "live"); !ok {
		t.Error("live entry should survive when the oldest entry has expired")
	}
	s := c.Stats()
	if s.Evictions != 0 || s.Expirations != 1 {
		t.Errorf("Stats() = %+v, want 0 evictions and 1 expiration", s)
	}
}

func TestLRUCache_InsertChecksOnlyOldestEnd(t *testing.T) {
	c, clock := newTestLRU(3)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Hour)
	_ = c.Set(ctx, "b", []byte("2"), time.Second)
	_ = c.Set(ctx, "c", []byte("3"), time.Hour)

	clock.Advance(2 * time.Second)
	_ = c.Set(ctx, "d", []byte("4"), time.Hour)

	// "a" is live at the LRU end, so it is evicted; the expired "b" behind
	// it is left for lookups and the janitor.
	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("a should be evicted")
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
	if _, ok := c.Get(ctx, "b"); ok {
		t.Error("expired b must read as a miss")
	}
	if got := c.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2 after the lookup dropped b", got)
	}
}

func TestLRUCache_DropsRunOfExpiredOldest(t *testing.T) {
	c, clock := newTestLRU(3)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Second)
	_ = c.Set(ctx, "b", []byte("2"), time.Second)
	_ = c.Set(ctx, "c", []byte("3"), time.Hour)

	clock.Advance(2 * time.Second)
	_ = c.Set(ctx, "d", []byte("4"), time.Hour)

	if got := c.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	s := c.Stats()
	if s.Evictions != 0 || s.Expirations != 2 {
		t.Errorf("Stats() = %+v, want 0 evictions and 2 expirations", s)
	}
}

func TestLRUCache_CapacityZero(t *testing.T) {
	c, _ := newTestLRU(0)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("capacity 0 should store nothing")
	}
	if got := c.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if got := c.PurgeExpired(); got != 0 {
		t.Errorf("PurgeExpired() = %d, want 0", got)
	}
}

func TestLRUCache_CapacityOne(t *testing.T) {
	c, _ := newTestLRU(1)
	ctx := context.Background()

	_ = c.Set(ctx, "A", []byte("a"), time.Hour)
	if _, ok := c.Get(ctx, "A"); !ok {
		t.Fatal("A should be present")
	}

	_ = c.Set(ctx, "B", []byte("b"), time.Hour)
	if _, ok := c.Get(ctx, "A"); ok {
		t.Error("A should be evicted by B")
	}
	if _, ok := c.Get(ctx, "B"); !ok {
		t.Error("B should be present")
	}
}

func TestLRUCache_NegativeCapacityUsesDefault(t *testing.T) {
	c := NewLRUCache(LRUConfig{MaxEntries: -1})
	if c.size != 1000 {
		t.Errorf("size = %d, want 1000", c.size)
	}
}

func TestLRUCache_CopyIsolation(t *testing.T) {
	c, _ := newTestLRU(10)
	ctx := context.Background()

	original := []byte("hello")
	_ = c.Set(ctx, "k", original, time.Hour)
	original[0] = 'X'

	first, _ := c.Get(ctx, "k")
	if string(first) != "hello" {
		t.Errorf("mutating the stored slice leaked into the cache: %q", first)
	}

	first[0] = 'Y'
	second, _ := c.Get(ctx, "k")
	if string(second) != "hello" {
		t.Errorf("mutating a returned slice leaked into the cache: %q", second)
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c, _ := newTestLRU(10)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Hour)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
}

func TestLRUCache_PurgeExpired(t *testing.T) {
	c, clock := newTestLRU(10)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("1"), time.Second)
	_ = c.Set(ctx, "b", []byte("2"), time.Second)
	_ = c.Set(ctx, "c", []byte("3"), time.Hour)

	clock.Advance(time.Minute)

	if got := c.PurgeExpired(); got != 2 {
		t.Errorf("PurgeExpired() = %d, want 2", got)
	}
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestLRUCache_Stats(t *testing.T) {
	c, _ := newTestLRU(10)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Hour)
	c.Get(ctx, "k")
	c.Get(ctx, "k")
	c.Get(ctx, "missing")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Entries != 1 {
		t.Errorf("Stats() = %+v, want 2 hits, 1 miss, 1 entry", s)
	}

	c.Purge()
	if got := c.Len(); got != 0 {
		t.Errorf("Len() after Purge = %d, want 0", got)
	}
}

func TestLRUCache_Run(t *testing.T) {
	c := NewLRUCache(LRUConfig{MaxEntries: 10})
	ctx, cancel := context.WithCancel(context.Background())

	_ = c.Set(ctx, "k", []byte("v"), time.Millisecond)

	done := make(chan struct{})
	go func() {
		c.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := c.Len(); got != 0 {
		t.Errorf("janitor did not purge expired entry, Len() = %d", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLRUCache_ConcurrentIdenticalSets(t *testing.T) {
	c := NewLRUCache(LRUConfig{MaxEntries: 4})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, ok := c.Get(ctx, "same"); !ok {
				_ = c.Set(ctx, "same", []byte(fmt.Sprintf("v%d", i)), time.Hour)
			}
		}(i)
	}
	wg.Wait()

	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want exactly 1 entry", got)
	}
}

func TestLRUCache_ConcurrentCapacityInvariant(t *testing.T) {
	c := NewLRUCache(LRUConfig{MaxEntries: 8})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j%16)
				_ = c.Set(ctx, key, []byte("v"), time.Hour)
				c.Get(ctx, key)
				if n := c.Len(); n > 8 {
					t.Errorf("Len() = %d exceeds capacity", n)
				}
			}
		}(i)
	}
	wg.Wait()
}
