// Package kulturpool is an HTTP client for the Kulturpool cultural heritage
// API (https://api.kulturpool.at).
//
// Client exposes one method per upstream resource (Search, GetInstitutions,
// GetInstitutionDetails, GetAsset) and implements search.Upstream through
// Fetch, which dispatches on the endpoint keys declared here. Responses that
// are not 2xx are returned as *StatusError.
//
// The client performs no retries, caching or rate limiting; those belong to
// the search facade.
package kulturpool
