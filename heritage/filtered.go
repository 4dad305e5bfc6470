package heritage

import (
	"context"
	"unicode/utf8"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/kulturpool"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/params"
)

// Result trimming limits.
const (
	maxDescriptionRunes = 200
	maxSubjects         = 5
)

// AppliedFilters echoes the normalized search parameters.
type AppliedFilters struct {
	Institutions []string `json:"institutions"`
	ObjectTypes  []string `json:"object_types"`
	DateFrom     *int     `json:"date_from"`
	DateTo       *int     `json:"date_to"`
	Creators     []string `json:"creators"`
	Subjects     []string `json:"subjects"`
	Media        []string `json:"media"`
	DCTypes      []string `json:"dc_types"`
	SortBy       string   `json:"sort_by,omitempty"`
}

// SearchHit is one trimmed search result.
type SearchHit struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Creator     []string `json:"creator"`
	Institution string   `json:"institution"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Subjects    []string `json:"subjects"`
	DetailURL   string   `json:"detail_url"`
	Images
	Date *int `json:"date"`
}

// SearchResult is the outcome of a filtered search.
type SearchResult struct {
	TotalFound     int            `json:"total_found"`
	Returned       int            `json:"returned"`
	Query          string         `json:"query"`
	AppliedFilters AppliedFilters `json:"applied_filters"`
	FilterBy       string         `json:"filter_by,omitempty"`
	Results        []SearchHit    `json:"results"`
	Message        string         `json:"message"`
	Cached         bool           `json:"cached"`
}

// SearchFiltered runs a faceted search.
func (s *Service) SearchFiltered(ctx context.Context, p params.SearchParams) (*SearchResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	values := p.Values()

	var out *SearchResult
	err := s.observed(ctx, OpSearchFiltered, func(ctx context.Context) error {
		res, err := s.execute(ctx, kulturpool.EndpointSearch, values)
		if err != nil {
			return err
		}
		resp, err := decodeSearch(res.Body)
		if err != nil {
			return err
		}

		hits := make([]SearchHit, 0, len(resp.Hits))
		for _, hit := range resp.Hits {
			hits = append(hits, searchHitOf(hit.Document))
		}

		filterBy, _ := values["filter_by"].(string)
		out = &SearchResult{
			TotalFound:     resp.Found,
			Returned:       len(hits),
			Query:          p.Query,
			AppliedFilters: appliedFilters(p),
			FilterBy:       filterBy,
			Results:        hits,
			Message:        "No results found. Try different filters.",
			Cached:         res.CacheHit,
		}
		if len(hits) > 0 {
			out.Message = "Use kulturpool_get_details with specific IDs for complete metadata."
		}
		return nil
	})
	return out, err
}

func searchHitOf(d document) SearchHit {
	hit := SearchHit{
		ID:          d.ID,
		Title:       d.Title.first(""),
		Creator:     d.Creator.all(),
		Institution: d.DataProvider,
		Type:        d.EdmType,
		Description: truncate(d.Description.first(""), maxDescriptionRunes),
		Subjects:    d.Subject.head(maxSubjects),
		DetailURL:   d.IsShownAt,
		Images:      imagesOf(d),
	}
	if y, ok := d.year(); ok {
		hit.Date = &y
	}
	return hit
}

func appliedFilters(p params.SearchParams) AppliedFilters {
	f := AppliedFilters{
		Institutions: p.Institutions,
		ObjectTypes:  p.ObjectTypes,
		Creators:     p.Creators,
		Subjects:     p.Subjects,
		Media:        p.Media,
		DCTypes:      p.DCTypes,
		SortBy:       p.SortBy,
	}
	if p.DateFrom > 0 {
		from := p.DateFrom
		f.DateFrom = &from
	}
	if p.DateTo > 0 {
		to := p.DateTo
		f.DateTo = &to
	}
	return f
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
