package heritage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// stringList decodes a JSON string, a list or null. Non-string list items
// are formatted; nulls are skipped.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*l = nil
	case string:
		*l = stringList{v}
	case []any:
		items := make(stringList, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case nil:
			case string:
				items = append(items, s)
			default:
				items = append(items, fmt.Sprint(s))
			}
		}
		*l = items
	default:
		*l = stringList{fmt.Sprint(v)}
	}
	return nil
}

func (l stringList) first(fallback string) string {
	if len(l) == 0 || l[0] == "" {
		return fallback
	}
	return l[0]
}

// head returns at most n items as a non-nil slice, so empty lists encode
// as [].
func (l stringList) head(n int) []string {
	if len(l) > n {
		l = l[:n]
	}
	return append(make([]string, 0, len(l)), l...)
}

// all returns every item as a non-nil slice.
func (l stringList) all() []string {
	return l.head(len(l))
}

// dateValue decodes a number or numeric string. Anything else is unset.
// dateValue is a date field that may hold a number or a numeric string.
// set reports a non-null value; ok reports that it parsed.
type dateValue struct {
	n   int64
	ok  bool
	set bool
}

func (d *dateValue) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*d = dateValue{}
		return nil
	}
	n, ok := parseInt(s)
	*d = dateValue{n: n, ok: ok, set: true}
	return nil
}

// document is a search hit as returned by the upstream.
type document struct {
	ID            string     `json:"id"`
	Title         stringList `json:"title"`
	Creator       stringList `json:"creator"`
	Contributor   stringList `json:"contributor"`
	DataProvider  string     `json:"dataProvider"`
	Provider      string     `json:"provider"`
	EdmType       string     `json:"edmType"`
	Description   stringList `json:"description"`
	Subject       stringList `json:"subject"`
	Medium        stringList `json:"medium"`
	Extent        stringList `json:"extent"`
	Language      stringList `json:"language"`
	Format        stringList `json:"format"`
	Identifier    stringList `json:"identifier"`
	Relation      stringList `json:"relation"`
	HasView       stringList `json:"hasView"`
	EdmRightsName string     `json:"edmRightsName"`
	PreviewImage  string     `json:"previewImage"`
	IsShownAt     string     `json:"isShownAt"`
	IsShownBy     string     `json:"isShownBy"`
	Object        string     `json:"object"`
	IIIFManifest  string     `json:"iiifManifest"`
	DateMin       dateValue  `json:"dateMin"`
	DateMax       dateValue  `json:"dateMax"`
}

// year returns the year of dateMin, or of dateMax when dateMin is absent.
// A present dateMin that is not a plausible date yields no year.
func (d document) year() (int, bool) {
	v := d.DateMin
	if !v.set {
		v = d.DateMax
	}
	if !v.ok {
		return 0, false
	}
	return toYear(v.n)
}

type facetCount struct {
	FieldName string `json:"field_name"`
	Field     string `json:"field"`
	Counts    []struct {
		Value json.RawMessage `json:"value"`
		Count int             `json:"count"`
	} `json:"counts"`
}

func (f facetCount) name() string {
	if f.FieldName != "" {
		return f.FieldName
	}
	return f.Field
}

type searchResponse struct {
	Found       int          `json:"found"`
	FacetCounts []facetCount `json:"facet_counts"`
	Hits        []struct {
		Document document `json:"document"`
	} `json:"hits"`
}

func decodeSearch(body []byte) (*searchResponse, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return &resp, nil
}

// Thresholds for telling years, seconds and milliseconds apart.
const (
	maxYearLiteral  = 3000
	minPlausible    = 1000
	maxPlausible    = 2100
	msAbove         = 10_000_000_000
	msBelowNegative = -100_000_000_000
)

// toYear interprets n as a year literal (|n| <= 3000, kept only within
// 1000..2100), Unix milliseconds (n > 1e10 or n < -1e11) or Unix seconds.
func toYear(n int64) (int, bool) {
	t, ok := toTime(n)
	if !ok {
		return 0, false
	}
	return t.Year(), true
}

func toTime(n int64) (time.Time, bool) {
	if n >= -maxYearLiteral && n <= maxYearLiteral {
		if n < minPlausible || n > maxPlausible {
			return time.Time{}, false
		}
		return time.Date(int(n), time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	if n > msAbove || n < msBelowNegative {
		return time.UnixMilli(n).UTC(), true
	}
	return time.Unix(n, 0).UTC(), true
}

// century labels a year as "N. Jahrhundert", 1901..2000 being the 20th.
func century(year int) string {
	return fmt.Sprintf("%d. Jahrhundert", (year-1)/100+1)
}

// Images holds the image links of a record.
type Images struct {
	PreviewURL   string `json:"preview_url"`
	LargeImage   string `json:"large_image"`
	MediumImage  string `json:"medium_image"`
	IIIFManifest string `json:"iiif_manifest"`
}

// imagesOf prefers the upstream image fields and derives missing sizes from
// the preview URL naming scheme.
func imagesOf(d document) Images {
	preview := d.PreviewImage
	large := d.IsShownBy
	medium := d.Object

	if large == "" && preview != "" {
		switch {
		case strings.Contains(preview, "_medium.webp"):
			large = strings.ReplaceAll(preview, "_medium.webp", "_large.webp")
		case strings.Contains(preview, ".webp") && !strings.Contains(preview, "_medium"):
			large = strings.ReplaceAll(preview, ".webp", "_large.webp")
		default:
			large = preview
		}
	}
	if medium == "" && preview != "" {
		if strings.Contains(preview, "_small.webp") {
			medium = strings.ReplaceAll(preview, "_small.webp", "_medium.webp")
		} else {
			medium = preview
		}
	}

	return Images{
		PreviewURL:   preview,
		LargeImage:   large,
		MediumImage:  medium,
		IIIFManifest: d.IIIFManifest,
	}
}
