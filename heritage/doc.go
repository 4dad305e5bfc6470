// Package heritage implements the cultural heritage query operations.
//
// A Service answers six operations over one upstream:
//
//   - Explore: facet counts and a handful of samples for a query
//   - SearchFiltered: a faceted, trimmed search
//   - GetDetails: full records for up to three object ids, looked up
//     concurrently
//   - GetInstitutions and GetInstitutionDetails: the participating
//     institutions
//   - GetAsset: a transformed media asset URL
//
// Every operation validates its parameters with package params, then sends
// its upstream requests through a search.Facade, so all of them share one
// rate limit and one response cache.
//
// # Usage
//
//	client, _ := kulturpool.NewClient(kulturpool.Config{})
//	svc, _ := heritage.New(heritage.DefaultConfig(), client)
//	go svc.Run(ctx)
//
//	res, err := svc.Explore(ctx, params.ExploreParams{Query: "Klimt"})
//
// # Dates
//
// Upstream date fields hold year literals, Unix seconds or Unix
// milliseconds. Values of magnitude at most 3000 are years and are kept only
// within 1000..2100; values above 1e10 or below -1e11 are milliseconds;
// everything else is seconds.
package heritage
