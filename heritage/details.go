package heritage

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/kulturpool"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/params"
)

// maxRelations bounds the relation list of an object.
const maxRelations = 5

// DateInfo renders a stored date value.
type DateInfo struct {
	Timestamp int64  `json:"timestamp"`
	Formatted string `json:"formatted"`
	Year      int    `json:"year"`
}

// ObjectMetadata holds the secondary fields of an object.
type ObjectMetadata struct {
	DateCreated *DateInfo `json:"date_created"`
	DateEnd     *DateInfo `json:"date_end"`
	Format      []string  `json:"format"`
	Identifier  []string  `json:"identifier"`
	Relation    []string  `json:"relation"`
}

// ObjectDetails is the full record of one object.
type ObjectDetails struct {
	ID          string   `json:"id"`
	Title       []string `json:"title"`
	Creator     []string `json:"creator"`
	Contributor []string `json:"contributor"`
	Institution string   `json:"institution"`
	Collection  string   `json:"collection"`
	Type        string   `json:"type"`
	Description []string `json:"description"`
	Subjects    []string `json:"subjects"`
	Medium      []string `json:"medium"`
	Extent      []string `json:"extent"`
	Language    []string `json:"language"`
	Rights      string   `json:"rights"`
	DetailURL   string   `json:"detail_url"`
	SourceURL   []string `json:"source_url"`
	Images
	Metadata ObjectMetadata `json:"metadata"`
}

// DetailItem is the lookup outcome for one requested id. Exactly one of
// Object and Error is set.
type DetailItem struct {
	ID     string         `json:"id"`
	Object *ObjectDetails `json:"object,omitempty"`
	Error  string         `json:"error,omitempty"`
	Cached bool           `json:"cached,omitempty"`

	err error
}

// Err returns the lookup error, if any.
func (d DetailItem) Err() error { return d.err }

// DetailsResult is the outcome of a batch lookup.
type DetailsResult struct {
	RequestedObjects     int          `json:"requested_objects"`
	SuccessfulRetrievals int          `json:"successful_retrievals"`
	Objects              []DetailItem `json:"objects"`
}

// GetDetails looks up every id concurrently. A failed lookup is reported on
// its item and never aborts the others.
func (s *Service) GetDetails(ctx context.Context, p params.DetailsParams) (*DetailsResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	items := make([]DetailItem, len(p.ObjectIDs))
	err := s.observed(ctx, OpGetDetails, func(ctx context.Context) error {
		var g errgroup.Group
		g.SetLimit(s.detailN)
		for i, id := range p.ObjectIDs {
			g.Go(func() error {
				items[i] = s.lookup(ctx, id)
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}

	out := &DetailsResult{RequestedObjects: len(items), Objects: items}
	for _, item := range items {
		if item.err == nil {
			out.SuccessfulRetrievals++
		}
	}
	return out, nil
}

func (s *Service) lookup(ctx context.Context, id string) DetailItem {
	item := DetailItem{ID: id}

	res, err := s.execute(ctx, kulturpool.EndpointObject, params.LookupValues(id))
	if err == nil {
		var resp *searchResponse
		if resp, err = decodeSearch(res.Body); err == nil {
			if len(resp.Hits) == 0 {
				item.err = ErrObjectNotFound
				item.Error = "Object not found"
				return item
			}
			item.Object = objectDetailsOf(resp.Hits[0].Document)
			item.Cached = res.CacheHit
			return item
		}
	}

	item.err = err
	item.Error = fmt.Sprintf("Failed to fetch object details: %v", err)
	return item
}

func objectDetailsOf(d document) *ObjectDetails {
	return &ObjectDetails{
		ID:          d.ID,
		Title:       d.Title.all(),
		Creator:     d.Creator.all(),
		Contributor: d.Contributor.all(),
		Institution: d.DataProvider,
		Collection:  d.Provider,
		Type:        d.EdmType,
		Description: d.Description.all(),
		Subjects:    d.Subject.all(),
		Medium:      d.Medium.all(),
		Extent:      d.Extent.all(),
		Language:    d.Language.all(),
		Rights:      d.EdmRightsName,
		DetailURL:   d.IsShownAt,
		SourceURL:   d.HasView.all(),
		Images:      imagesOf(d),
		Metadata: ObjectMetadata{
			DateCreated: dateInfo(d.DateMin),
			DateEnd:     dateInfo(d.DateMax),
			Format:      d.Format.all(),
			Identifier:  d.Identifier.all(),
			Relation:    d.Relation.head(maxRelations),
		},
	}
}

func dateInfo(v dateValue) *DateInfo {
	if !v.ok {
		return nil
	}
	t, ok := toTime(v.n)
	if !ok {
		return nil
	}
	return &DateInfo{Timestamp: v.n, Formatted: t.Format("2006-01-02"), Year: t.Year()}
}
