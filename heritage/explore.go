package heritage

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/filter"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/kulturpool"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/params"
)

// maxFacetValues is the number of values kept per facet.
const maxFacetValues = 10

// largeResultSet is the hit count above which Explore suggests narrowing.
const largeResultSet = 1000

// FacetValue is one facet bucket.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets summarizes a result set, each facet ordered by count descending.
type Facets struct {
	Institutions []FacetValue `json:"institutions"`
	Types        []FacetValue `json:"types"`
	Periods      []FacetValue `json:"periods"`
}

// Sample is a compact preview of one record.
type Sample struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Creator     string `json:"creator"`
	Institution string `json:"institution"`
	Type        string `json:"type"`
	Images
	Date string `json:"date"`
}

// ExploreResult is the facet overview of a query.
type ExploreResult struct {
	TotalFound    int      `json:"total_found"`
	Query         string   `json:"query"`
	Facets        Facets   `json:"facets"`
	SampleResults []Sample `json:"sample_results"`
	Message       string   `json:"message"`
	Cached        bool     `json:"cached"`
}

// Explore returns facet counts and a few samples for a query.
func (s *Service) Explore(ctx context.Context, p params.ExploreParams) (*ExploreResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var out *ExploreResult
	err := s.observed(ctx, OpExplore, func(ctx context.Context) error {
		res, err := s.execute(ctx, kulturpool.EndpointSearch, p.Values())
		if err != nil {
			return err
		}
		resp, err := decodeSearch(res.Body)
		if err != nil {
			return err
		}

		out = &ExploreResult{
			TotalFound:    resp.Found,
			Query:         p.Query,
			Facets:        facetsOf(resp),
			SampleResults: samplesOf(resp, p.MaxExamples),
			Cached:        res.CacheHit,
		}
		if resp.Found > largeResultSet {
			out.Message = fmt.Sprintf("Found %d results. Use kulturpool_search_filtered with specific facets to narrow down.", resp.Found)
		} else {
			out.Message = fmt.Sprintf("Found %d manageable results.", resp.Found)
		}
		return nil
	})
	return out, err
}

type counter map[string]int

func (c counter) top() []FacetValue {
	values := make([]FacetValue, 0, len(c))
	for v, n := range c {
		values = append(values, FacetValue{Value: v, Count: n})
	}
	slices.SortFunc(values, func(a, b FacetValue) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Value, b.Value)
	})
	if len(values) > maxFacetValues {
		values = values[:maxFacetValues]
	}
	return values
}

// facetsOf prefers the server side facet counts and falls back to counting
// the returned hits.
func facetsOf(resp *searchResponse) Facets {
	institutions, types, periods := counter{}, counter{}, counter{}

	if len(resp.FacetCounts) > 0 {
		for _, fc := range resp.FacetCounts {
			for _, bucket := range fc.Counts {
				value := rawString(bucket.Value)
				if value == "" {
					continue
				}
				switch fc.name() {
				case filter.FieldInstitution:
					institutions[value] += bucket.Count
				case filter.FieldObjectType:
					types[value] += bucket.Count
				case filter.FieldDateMin:
					n, ok := parseInt(value)
					if !ok {
						continue
					}
					if y, ok := toYear(n); ok && y > 0 {
						periods[century(y)] += bucket.Count
					}
				}
			}
		}
	} else {
		for _, hit := range resp.Hits {
			d := hit.Document
			if d.DataProvider != "" {
				institutions[d.DataProvider]++
			}
			if d.EdmType != "" {
				types[d.EdmType]++
			}
			if y, ok := d.year(); ok && y > 0 {
				periods[century(y)]++
			}
		}
	}

	return Facets{
		Institutions: institutions.top(),
		Types:        types.top(),
		Periods:      periods.top(),
	}
}

// rawString reads a facet bucket value that may be a string or a number.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func parseInt(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func samplesOf(resp *searchResponse, limit int) []Sample {
	hits := resp.Hits
	if len(hits) > limit {
		hits = hits[:limit]
	}

	samples := make([]Sample, 0, len(hits))
	for _, hit := range hits {
		d := hit.Document
		sample := Sample{
			ID:          orDefault(d.ID, "unknown"),
			Title:       d.Title.first("Unbekannter Titel"),
			Creator:     d.Creator.first("Unbekannt"),
			Institution: orDefault(d.DataProvider, "Unbekannt"),
			Type:        orDefault(d.EdmType, "Unbekannt"),
			Images:      imagesOf(d),
			Date:        "Unbekannt",
		}
		if y, ok := d.year(); ok {
			sample.Date = strconv.Itoa(y)
		}
		samples = append(samples, sample)
	}
	return samples
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
