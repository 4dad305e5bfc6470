package params

import (
	"errors"
	"regexp"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/filter"
)

// IncludeFields is the document projection requested from the search API.
const IncludeFields = "id,title,creator,dataProvider,edmType,previewImage,isShownAt,isShownBy,object,iiifManifest,dateMin,dateMax,subject,description"

// Request shaping limits.
const (
	ExplorePerPage        = 50
	ExploreFacetBy        = "dataProvider,edmType,dateMin,dateMax"
	DefaultMaxExamples    = 5
	MaxExamplesLimit      = 10
	DefaultSearchLimit    = 15
	MaxSearchLimit        = 20
	MaxObjectIDs          = 3
	MaxInstitutionsFilter = 10
	MaxObjectTypesFilter  = 5
	MaxCreatorsFilter     = 5
	MaxSubjectsFilter     = 10
	MaxMediaFilter        = 5
	MaxDCTypesFilter      = 3
)

func sanitizeQuery(q string) (string, error) {
	if q == "" {
		return "", invalid("query", ErrQueryRequired)
	}
	clean, err := Sanitize(q)
	if err != nil {
		return "", invalid("query", err)
	}
	if clean == "" {
		return "", invalid("query", ErrQueryRequired)
	}
	return clean, nil
}

// ExploreParams requests a facet overview for a query.
type ExploreParams struct {
	Query string `json:"query"`

	// MaxExamples is the number of sample results, 1..10.
	// Default: 5
	MaxExamples int `json:"max_examples,omitempty"`
}

// Validate normalizes p in place.
func (p *ExploreParams) Validate() error {
	q, err := sanitizeQuery(p.Query)
	if err != nil {
		return err
	}
	p.Query = q

	if p.MaxExamples == 0 {
		p.MaxExamples = DefaultMaxExamples
	}
	return checkRange("max_examples", p.MaxExamples, 1, MaxExamplesLimit)
}

// Values renders the upstream search parameters.
func (p ExploreParams) Values() map[string]any {
	return map[string]any{
		"q":              p.Query,
		"per_page":       ExplorePerPage,
		"facet_by":       ExploreFacetBy,
		"include_fields": IncludeFields,
	}
}

// SearchParams requests a filtered search.
type SearchParams struct {
	Query        string   `json:"query"`
	Institutions []string `json:"institutions,omitempty"`
	ObjectTypes  []string `json:"object_types,omitempty"`
	DateFrom     int      `json:"date_from,omitempty"`
	DateTo       int      `json:"date_to,omitempty"`

	// Limit is the page size, 1..20.
	// Default: 15
	Limit int `json:"limit,omitempty"`

	// SortBy is "field:asc" or "field:desc"; empty sorts by relevance.
	SortBy string `json:"sort_by,omitempty"`

	Creators []string `json:"creators,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
	Media    []string `json:"media,omitempty"`
	DCTypes  []string `json:"dc_types,omitempty"`
}

// Validate normalizes p in place. Unknown institutions, object types and
// DC types are dropped; free-text facet values are sanitized.
func (p *SearchParams) Validate() error {
	q, err := sanitizeQuery(p.Query)
	if err != nil {
		return err
	}
	p.Query = q

	limits := []struct {
		field  string
		values []string
		max    int
	}{
		{"institutions", p.Institutions, MaxInstitutionsFilter},
		{"object_types", p.ObjectTypes, MaxObjectTypesFilter},
		{"creators", p.Creators, MaxCreatorsFilter},
		{"subjects", p.Subjects, MaxSubjectsFilter},
		{"media", p.Media, MaxMediaFilter},
		{"dc_types", p.DCTypes, MaxDCTypesFilter},
	}
	for _, l := range limits {
		if err := checkLen(l.field, l.values, l.max); err != nil {
			return err
		}
	}

	p.Institutions = filter.Intersect(p.Institutions, filter.KnownInstitutions)
	p.ObjectTypes = filter.Intersect(p.ObjectTypes, filter.KnownObjectTypes)

	if p.Creators, err = sanitizeAll("creators", p.Creators); err != nil {
		return err
	}
	if p.Subjects, err = sanitizeAll("subjects", p.Subjects); err != nil {
		return err
	}
	if p.Media, err = sanitizeAll("media", p.Media); err != nil {
		return err
	}
	dcTypes, err := sanitizeAll("dc_types", p.DCTypes)
	if err != nil {
		return err
	}
	p.DCTypes = filter.Intersect(dcTypes, filter.KnownDCTypes)

	if !p.Dates().Valid() {
		return invalid("date_from", ErrInvalidDateRange)
	}

	if p.Limit == 0 {
		p.Limit = DefaultSearchLimit
	}
	if err := checkRange("limit", p.Limit, 1, MaxSearchLimit); err != nil {
		return err
	}

	if _, err := filter.ParseSort(p.SortBy); err != nil {
		return invalid("sort_by", errors.Join(ErrInvalidSort, err))
	}
	return nil
}

// Dates returns the requested date range.
func (p SearchParams) Dates() filter.DateRange {
	return filter.DateRange{From: p.DateFrom, To: p.DateTo}
}

// Facets returns the facet selection.
func (p SearchParams) Facets() filter.Facets {
	return filter.Facets{
		Institutions: p.Institutions,
		ObjectTypes:  p.ObjectTypes,
		Creators:     p.Creators,
		Subjects:     p.Subjects,
		Media:        p.Media,
		DCTypes:      p.DCTypes,
		Dates:        p.Dates(),
	}
}

// Filter returns the filter_by expression, "" when unfiltered.
func (p SearchParams) Filter() string {
	return filter.Build(p.Facets())
}

// Values renders the upstream search parameters. Call after Validate.
func (p SearchParams) Values() map[string]any {
	v := map[string]any{
		"q":              p.Query,
		"per_page":       p.Limit,
		"include_fields": IncludeFields,
	}
	if f := p.Filter(); f != "" {
		v["filter_by"] = f
	}
	if s, err := filter.ParseSort(p.SortBy); err == nil && !s.IsZero() {
		v["sort_by"] = s.String()
	}
	return v
}

var objectIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// DetailsParams requests full records for up to three objects.
type DetailsParams struct {
	ObjectIDs []string `json:"object_ids"`
}

// Validate normalizes p in place, dropping malformed ids.
func (p *DetailsParams) Validate() error {
	if len(p.ObjectIDs) == 0 {
		return invalid("object_ids", ErrNoValidIDs)
	}
	if err := checkLen("object_ids", p.ObjectIDs, MaxObjectIDs); err != nil {
		return err
	}

	ids := make([]string, 0, len(p.ObjectIDs))
	for _, id := range p.ObjectIDs {
		if objectIDPattern.MatchString(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return invalid("object_ids", ErrNoValidIDs)
	}
	p.ObjectIDs = ids
	return nil
}

// LookupValues renders the search parameters selecting object id.
func LookupValues(id string) map[string]any {
	return map[string]any{
		"q":         id,
		"filter_by": filter.ByID(id),
		"per_page":  1,
	}
}
