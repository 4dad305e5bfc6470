package heritage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/health"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/kulturpool"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/observe"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/params"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/resilience"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/search"
)

// fakeUpstream answers each endpoint with a canned handler and records the
// requests it sees.
type fakeUpstream struct {
	mu       sync.Mutex
	handlers map[string]func(params map[string]any) ([]byte, error)
	requests []request
	calls    atomic.Int32
}

type request struct {
	endpoint string
	params   map[string]any
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{handlers: map[string]func(map[string]any) ([]byte, error){}}
}

func (u *fakeUpstream) handle(endpoint string, fn func(params map[string]any) ([]byte, error)) {
	u.handlers[endpoint] = fn
}

func (u *fakeUpstream) respond(endpoint, body string) {
	u.handle(endpoint, func(map[string]any) ([]byte, error) { return []byte(body), nil })
}

func (u *fakeUpstream) Fetch(_ context.Context, endpoint string, params map[string]any) ([]byte, error) {
	u.calls.Add(1)
	u.mu.Lock()
	u.requests = append(u.requests, request{endpoint: endpoint, params: params})
	fn := u.handlers[endpoint]
	u.mu.Unlock()
	if fn == nil {
		return nil, kulturpool.ErrUnknownEndpoint
	}
	return fn(params)
}

func (u *fakeUpstream) last() request {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests[len(u.requests)-1]
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestService(t *testing.T, upstream search.Upstream, mutate ...func(*Config)) *Service {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := New(cfg, upstream)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

const exploreBody = `{
	"found": 1500,
	"facet_counts": [
		{"field_name": "dataProvider", "counts": [{"value": "Belvedere", "count": 40}, {"value": "Albertina", "count": 60}]},
		{"field_name": "edmType", "counts": [{"value": "IMAGE", "count": 90}, {"value": "TEXT", "count": 10}]},
		{"field_name": "dateMin", "counts": [{"value": "1890", "count": 5}, {"value": 1910, "count": 7}, {"value": "1920", "count": 3}, {"value": "n/a", "count": 1}]}
	],
	"hits": [
		{"document": {"id": "obj1", "title": ["Der Kuss"], "creator": "Gustav Klimt", "dataProvider": "Belvedere", "edmType": "IMAGE", "previewImage": "https://img/kuss_medium.webp", "dateMin": 1908}},
		{"document": {"id": "obj2"}},
		{"document": {"id": "obj3"}}
	]
}`

func TestNew_NilUpstream(t *testing.T) {
	if _, err := New(DefaultConfig(), nil); !errors.Is(err, ErrNilUpstream) {
		t.Errorf("New(nil) error = %v, want ErrNilUpstream", err)
	}
}

func TestExplore_FacetCounts(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointSearch, exploreBody)
	s := newTestService(t, up)

	got, err := s.Explore(context.Background(), params.ExploreParams{Query: "Klimt", MaxExamples: 2})
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}

	if got.TotalFound != 1500 || got.Query != "Klimt" {
		t.Errorf("TotalFound, Query = %d, %q", got.TotalFound, got.Query)
	}
	wantInst := []FacetValue{{"Albertina", 60}, {"Belvedere", 40}}
	if !equalFacets(got.Facets.Institutions, wantInst) {
		t.Errorf("Institutions = %v, want %v", got.Facets.Institutions, wantInst)
	}
	wantPeriods := []FacetValue{{"20. Jahrhundert", 10}, {"19. Jahrhundert", 5}}
	if !equalFacets(got.Facets.Periods, wantPeriods) {
		t.Errorf("Periods = %v, want %v", got.Facets.Periods, wantPeriods)
	}
	if len(got.Facets.Types) != 2 || got.Facets.Types[0].Value != "IMAGE" {
		t.Errorf("Types = %v", got.Facets.Types)
	}
	if !strings.Contains(got.Message, "kulturpool_search_filtered") {
		t.Errorf("Message = %q, want narrowing hint", got.Message)
	}

	if len(got.SampleResults) != 2 {
		t.Fatalf("len(SampleResults) = %d, want 2", len(got.SampleResults))
	}
	first := got.SampleResults[0]
	if first.Title != "Der Kuss" || first.Creator != "Gustav Klimt" || first.Date != "1908" {
		t.Errorf("first sample = %+v", first)
	}
	if first.LargeImage != "https://img/kuss_large.webp" {
		t.Errorf("LargeImage = %q", first.LargeImage)
	}
	second := got.SampleResults[1]
	if second.Title != "Unbekannter Titel" || second.Creator != "Unbekannt" || second.Date != "Unbekannt" {
		t.Errorf("second sample defaults = %+v", second)
	}

	sent := up.last().params
	if sent["facet_by"] != params.ExploreFacetBy || sent["per_page"] != params.ExplorePerPage {
		t.Errorf("sent params = %v", sent)
	}
}

func TestExplore_HitsFallback(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointSearch, `{
		"found": 3,
		"hits": [
			{"document": {"id": "a", "dataProvider": "Albertina", "edmType": "IMAGE", "dateMin": 1850}},
			{"document": {"id": "b", "dataProvider": "Albertina", "edmType": "TEXT", "dateMax": "1855"}},
			{"document": {"id": "c", "dataProvider": "Belvedere", "edmType": "IMAGE"}}
		]
	}`)
	s := newTestService(t, up)

	got, err := s.Explore(context.Background(), params.ExploreParams{Query: "x"})
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	if !equalFacets(got.Facets.Institutions, []FacetValue{{"Albertina", 2}, {"Belvedere", 1}}) {
		t.Errorf("Institutions = %v", got.Facets.Institutions)
	}
	if !equalFacets(got.Facets.Types, []FacetValue{{"IMAGE", 2}, {"TEXT", 1}}) {
		t.Errorf("Types = %v", got.Facets.Types)
	}
	if !equalFacets(got.Facets.Periods, []FacetValue{{"19. Jahrhundert", 2}}) {
		t.Errorf("Periods = %v", got.Facets.Periods)
	}
	if got.Message != "Found 3 manageable results." {
		t.Errorf("Message = %q", got.Message)
	}
	if len(got.SampleResults) != 3 {
		t.Errorf("len(SampleResults) = %d, want 3", len(got.SampleResults))
	}
}

func TestExplore_FacetsCappedAtTen(t *testing.T) {
	var hits []string
	for i := range 15 {
		hits = append(hits, `{"document": {"id": "x", "dataProvider": "P`+string(rune('a'+i))+`"}}`)
	}
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointSearch, `{"found": 15, "hits": [`+strings.Join(hits, ",")+`]}`)
	s := newTestService(t, up)

	got, err := s.Explore(context.Background(), params.ExploreParams{Query: "x"})
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	if n := len(got.Facets.Institutions); n != maxFacetValues {
		t.Errorf("len(Institutions) = %d, want %d", n, maxFacetValues)
	}
	if got.Facets.Institutions[0].Value != "Pa" {
		t.Errorf("ties should order by value, got %v", got.Facets.Institutions[0])
	}
}

func TestExplore_CachedSecondCall(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointSearch, exploreBody)
	s := newTestService(t, up)
	ctx := context.Background()

	first, err := s.Explore(ctx, params.ExploreParams{Query: "Klimt"})
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	second, err := s.Explore(ctx, params.ExploreParams{Query: "Klimt"})
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}

	if first.Cached || !second.Cached {
		t.Errorf("Cached = %v, %v; want false, true", first.Cached, second.Cached)
	}
	if got := up.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
	if got := s.CacheStats().Hits; got != 1 {
		t.Errorf("cache hits = %d, want 1", got)
	}
}

func TestExplore_ValidationSkipsUpstream(t *testing.T) {
	up := newFakeUpstream()
	s := newTestService(t, up)

	_, err := s.Explore(context.Background(), params.ExploreParams{Query: "  "})
	if !errors.Is(err, params.ErrValidation) {
		t.Errorf("Explore() error = %v, want ErrValidation", err)
	}
	if got := up.calls.Load(); got != 0 {
		t.Errorf("upstream calls = %d, want 0", got)
	}
}

func TestExplore_InvalidBody(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointSearch, `[1,2]`)
	s := newTestService(t, up)

	_, err := s.Explore(context.Background(), params.ExploreParams{Query: "x"})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("Explore() error = %v, want ErrInvalidResponse", err)
	}
}

func TestService_QuotaExceeded(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointSearch, exploreBody)
	s := newTestService(t, up, func(c *Config) {
		c.RateLimit = resilience.RateLimiterConfig{MaxRequests: 1, Window: time.Hour}
	})
	ctx := context.Background()

	if _, err := s.Explore(ctx, params.ExploreParams{Query: "a"}); err != nil {
		t.Fatalf("first Explore() error = %v", err)
	}
	_, err := s.Explore(ctx, params.ExploreParams{Query: "a"})
	if !errors.Is(err, search.ErrQuotaExceeded) {
		t.Errorf("second Explore() error = %v, want ErrQuotaExceeded", err)
	}
	if !errors.Is(err, resilience.ErrRateLimitExceeded) {
		t.Errorf("error should match resilience.ErrRateLimitExceeded, got %v", err)
	}
}

func TestService_UpstreamError(t *testing.T) {
	up := newFakeUpstream()
	up.handle(kulturpool.EndpointSearch, func(map[string]any) ([]byte, error) {
		return nil, &kulturpool.StatusError{StatusCode: 503}
	})
	s := newTestService(t, up)

	_, err := s.SearchFiltered(context.Background(), params.SearchParams{Query: "x"})
	if !errors.Is(err, search.ErrUpstream) {
		t.Errorf("SearchFiltered() error = %v, want ErrUpstream", err)
	}
	var se *kulturpool.StatusError
	if !errors.As(err, &se) || se.StatusCode != 503 {
		t.Errorf("error should wrap the status error, got %v", err)
	}
}

func TestSearchFiltered(t *testing.T) {
	long := strings.Repeat("ä", 250)
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointSearch, `{
		"found": 42,
		"hits": [{"document": {
			"id": "obj1",
			"title": "Bildnis",
			"creator": ["Egon Schiele", "Unbekannt"],
			"dataProvider": "Albertina",
			"edmType": "IMAGE",
			"description": "`+long+`",
			"subject": ["s1","s2","s3","s4","s5","s6","s7"],
			"isShownAt": "https://kulturpool.at/obj1",
			"dateMin": -1893456000
		}}]
	}`)
	s := newTestService(t, up)

	got, err := s.SearchFiltered(context.Background(), params.SearchParams{
		Query:        "Schiele",
		Institutions: []string{"Albertina", "Nowhere"},
		DateFrom:     1900,
		SortBy:       "dateMin:desc",
	})
	if err != nil {
		t.Fatalf("SearchFiltered() error = %v", err)
	}

	if got.TotalFound != 42 || got.Returned != 1 {
		t.Errorf("TotalFound, Returned = %d, %d", got.TotalFound, got.Returned)
	}
	if len(got.AppliedFilters.Institutions) != 1 || got.AppliedFilters.Institutions[0] != "Albertina" {
		t.Errorf("unknown institutions should be dropped, got %v", got.AppliedFilters.Institutions)
	}
	if got.AppliedFilters.DateFrom == nil || *got.AppliedFilters.DateFrom != 1900 || got.AppliedFilters.DateTo != nil {
		t.Errorf("date filters = %v, %v", got.AppliedFilters.DateFrom, got.AppliedFilters.DateTo)
	}
	if !strings.Contains(got.FilterBy, "dataProvider:=Albertina") {
		t.Errorf("FilterBy = %q", got.FilterBy)
	}

	hit := got.Results[0]
	if n := len([]rune(hit.Description)); n != maxDescriptionRunes {
		t.Errorf("description runes = %d, want %d", n, maxDescriptionRunes)
	}
	if len(hit.Subjects) != maxSubjects {
		t.Errorf("len(Subjects) = %d, want %d", len(hit.Subjects), maxSubjects)
	}
	if len(hit.Creator) != 2 || hit.Title != "Bildnis" {
		t.Errorf("hit = %+v", hit)
	}
	if hit.Date == nil || *hit.Date != 1910 {
		t.Errorf("Date = %v, want 1910", hit.Date)
	}
	if !strings.Contains(got.Message, "kulturpool_get_details") {
		t.Errorf("Message = %q", got.Message)
	}

	sent := up.last().params
	if sent["filter_by"] != got.FilterBy || sent["sort_by"] != "dateMin:desc" {
		t.Errorf("sent params = %v", sent)
	}
}

func TestSearchFiltered_NoResults(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointSearch, `{"found": 0, "hits": []}`)
	s := newTestService(t, up)

	got, err := s.SearchFiltered(context.Background(), params.SearchParams{Query: "nothing"})
	if err != nil {
		t.Fatalf("SearchFiltered() error = %v", err)
	}
	if got.Results == nil || len(got.Results) != 0 {
		t.Errorf("Results = %#v, want empty slice", got.Results)
	}
	if got.Message != "No results found. Try different filters." {
		t.Errorf("Message = %q", got.Message)
	}
	if got.FilterBy != "" {
		t.Errorf("FilterBy = %q, want empty", got.FilterBy)
	}
}

func TestGetDetails(t *testing.T) {
	up := newFakeUpstream()
	up.handle(kulturpool.EndpointObject, func(p map[string]any) ([]byte, error) {
		switch p["q"] {
		case "found":
			return []byte(`{"found":1,"hits":[{"document":{
				"id":"found","title":["T1","T2"],"dataProvider":"Belvedere","provider":"Kulturpool",
				"edmRightsName":"CC BY","dateMin":946684800,"relation":["r1","r2","r3","r4","r5","r6"]
			}}]}`), nil
		case "missing":
			return []byte(`{"found":0,"hits":[]}`), nil
		default:
			return nil, errors.New("boom")
		}
	})
	s := newTestService(t, up)

	got, err := s.GetDetails(context.Background(), params.DetailsParams{
		ObjectIDs: []string{"found", "missing", "broken"},
	})
	if err != nil {
		t.Fatalf("GetDetails() error = %v", err)
	}

	if got.RequestedObjects != 3 || got.SuccessfulRetrievals != 1 {
		t.Errorf("RequestedObjects, SuccessfulRetrievals = %d, %d; want 3, 1", got.RequestedObjects, got.SuccessfulRetrievals)
	}

	found := got.Objects[0]
	if found.ID != "found" || found.Object == nil || found.Err() != nil {
		t.Fatalf("found item = %+v", found)
	}
	obj := found.Object
	if obj.Institution != "Belvedere" || obj.Collection != "Kulturpool" || obj.Rights != "CC BY" {
		t.Errorf("object = %+v", obj)
	}
	if len(obj.Title) != 2 || len(obj.Metadata.Relation) != maxRelations {
		t.Errorf("Title, Relation = %v, %v", obj.Title, obj.Metadata.Relation)
	}
	if dc := obj.Metadata.DateCreated; dc == nil || dc.Formatted != "2000-01-01" || dc.Year != 2000 {
		t.Errorf("DateCreated = %+v", dc)
	}
	if obj.Metadata.DateEnd != nil {
		t.Errorf("DateEnd = %+v, want nil", obj.Metadata.DateEnd)
	}

	missing := got.Objects[1]
	if !errors.Is(missing.Err(), ErrObjectNotFound) || missing.Error != "Object not found" {
		t.Errorf("missing item = %+v", missing)
	}

	broken := got.Objects[2]
	if broken.Err() == nil || !strings.HasPrefix(broken.Error, "Failed to fetch object details:") {
		t.Errorf("broken item = %+v", broken)
	}
}

func TestGetDetails_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	up := newFakeUpstream()
	up.handle(kulturpool.EndpointObject, func(p map[string]any) ([]byte, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return []byte(`{"found":1,"hits":[{"document":{"id":"x"}}]}`), nil
	})
	s := newTestService(t, up, func(c *Config) { c.DetailConcurrency = 1 })

	got, err := s.GetDetails(context.Background(), params.DetailsParams{ObjectIDs: []string{"a", "b", "c"}})
	if err != nil {
		t.Fatalf("GetDetails() error = %v", err)
	}
	if got.SuccessfulRetrievals != 3 {
		t.Errorf("SuccessfulRetrievals = %d, want 3", got.SuccessfulRetrievals)
	}
	if p := peak.Load(); p != 1 {
		t.Errorf("peak concurrency = %d, want 1", p)
	}
}

func TestGetDetails_NoValidIDs(t *testing.T) {
	s := newTestService(t, newFakeUpstream())

	_, err := s.GetDetails(context.Background(), params.DetailsParams{ObjectIDs: []string{"../etc"}})
	if !errors.Is(err, params.ErrNoValidIDs) {
		t.Errorf("GetDetails() error = %v, want ErrNoValidIDs", err)
	}
}

func TestGetInstitutions(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointInstitutions, `{
		"institutions": [{"id": 1, "name": "Albertina", "location": {"lat": 48.2, "lng": 16.36}}],
		"total_count": 1
	}`)
	s := newTestService(t, up)

	got, err := s.GetInstitutions(context.Background(), params.InstitutionsParams{Language: "fr"})
	if err != nil {
		t.Fatalf("GetInstitutions() error = %v", err)
	}
	if got.TotalCount != 1 || got.Institutions[0].Name != "Albertina" {
		t.Errorf("list = %+v", got.InstitutionList)
	}
	if !got.RequestParams.IncludeLocations || got.RequestParams.Language != "de" {
		t.Errorf("RequestParams = %+v", got.RequestParams)
	}

	sent := up.last().params
	if sent["include_locations"] != true || sent["language"] != "de" {
		t.Errorf("sent params = %v", sent)
	}
}

func TestGetInstitutionDetails(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointInstitutionDetails, `{
		"name": "Albertina",
		"web_collection_url": "https://sammlungenonline.albertina.at",
		"website_url": "https://www.albertina.at",
		"location": {"type": "MultiPoint", "coordinates": [[16.3683, 48.2046]]},
		"hero_image": {"id": "hero"},
		"favicon": null
	}`)
	s := newTestService(t, up)

	got, err := s.GetInstitutionDetails(context.Background(), params.InstitutionDetailsParams{InstitutionID: 7, Language: "en"})
	if err != nil {
		t.Fatalf("GetInstitutionDetails() error = %v", err)
	}
	if got.InstitutionID != 7 || got.BasicInfo.Name != "Albertina" || got.BasicInfo.WebsiteURL != "https://www.albertina.at" {
		t.Errorf("details = %+v", got)
	}
	if got.Location == nil || got.Location.Coordinates.Longitude != 16.3683 || got.Location.Coordinates.Latitude != 48.2046 {
		t.Errorf("Location = %+v", got.Location)
	}
	if string(got.Images.Favicon) != "{}" || string(got.Images.HeroImage) != `{"id": "hero"}` {
		t.Errorf("Images = %s, %s", got.Images.Favicon, got.Images.HeroImage)
	}
	if string(got.Metadata.IntermediateProvider) != "null" || got.Metadata.Language != "en" {
		t.Errorf("Metadata = %+v", got.Metadata)
	}

	if _, err := json.Marshal(got); err != nil {
		t.Errorf("Marshal() error = %v", err)
	}
}

func TestGetInstitutionDetails_NoLocation(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointInstitutionDetails, `{"name": "X", "location": {"coordinates": []}}`)
	s := newTestService(t, up)

	got, err := s.GetInstitutionDetails(context.Background(), params.InstitutionDetailsParams{InstitutionID: 1})
	if err != nil {
		t.Fatalf("GetInstitutionDetails() error = %v", err)
	}
	if got.Location != nil {
		t.Errorf("Location = %+v, want nil", got.Location)
	}
}

func TestGetInstitutionDetails_InvalidID(t *testing.T) {
	up := newFakeUpstream()
	s := newTestService(t, up)

	_, err := s.GetInstitutionDetails(context.Background(), params.InstitutionDetailsParams{InstitutionID: 0})
	if !errors.Is(err, params.ErrInvalidInstitution) {
		t.Errorf("GetInstitutionDetails() error = %v, want ErrInvalidInstitution", err)
	}
	if up.calls.Load() != 0 {
		t.Error("invalid id should not reach the upstream")
	}
}

func TestGetAsset(t *testing.T) {
	up := newFakeUpstream()
	up.handle(kulturpool.EndpointAssets, func(p map[string]any) ([]byte, error) {
		return json.Marshal(kulturpool.AssetInfo{
			AssetID:     p["asset_id"].(string),
			URL:         "https://api.kulturpool.at/assets/abc?width=800",
			ContentType: "image/webp",
		})
	})
	s := newTestService(t, up)

	got, err := s.GetAsset(context.Background(), params.AssetParams{AssetID: "abc", Width: 800, Format: "gif"})
	if err != nil {
		t.Fatalf("GetAsset() error = %v", err)
	}
	if got.AssetID != "abc" || got.ContentType != "image/webp" {
		t.Errorf("asset = %+v", got.AssetInfo)
	}
	if got.UsageInfo.OriginalAssetID != "abc" || !got.UsageInfo.TransformationApplied {
		t.Errorf("UsageInfo = %+v", got.UsageInfo)
	}

	sent := up.last().params
	if sent["format"] != params.DefaultAssetFormat || sent["width"] != 800 {
		t.Errorf("sent params = %v", sent)
	}
}

func TestGetAsset_NoTransformation(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointAssets, `{"asset_id":"abc","url":"u"}`)
	s := newTestService(t, up)

	got, err := s.GetAsset(context.Background(), params.AssetParams{AssetID: "abc"})
	if err != nil {
		t.Fatalf("GetAsset() error = %v", err)
	}
	if got.UsageInfo.TransformationApplied {
		t.Error("TransformationApplied should be false without width or height")
	}
}

func TestHealth(t *testing.T) {
	t.Run("without pinger", func(t *testing.T) {
		s := newTestService(t, newFakeUpstream())
		report := s.Health(context.Background())
		if report.Status != health.StatusHealthy {
			t.Errorf("Status = %v, want healthy", report.Status)
		}
		if _, ok := report.Checks[health.NameUpstream]; ok {
			t.Error("upstream check should be absent without a pinger")
		}
		if _, ok := report.Checks[health.NameQuota]; !ok {
			t.Error("quota check missing")
		}
	})

	t.Run("failing pinger", func(t *testing.T) {
		s, err := New(DefaultConfig(), newFakeUpstream(), WithPinger(fakePinger{err: errors.New("down")}))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		report := s.Health(context.Background())
		if report.Status != health.StatusUnhealthy {
			t.Errorf("Status = %v, want unhealthy", report.Status)
		}
		if report.Checks[health.NameUpstream].Status != health.StatusUnhealthy {
			t.Errorf("upstream = %+v", report.Checks[health.NameUpstream])
		}
	})

	t.Run("health does not consume quota", func(t *testing.T) {
		s, err := New(DefaultConfig(), newFakeUpstream(), WithPinger(fakePinger{}))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		s.Health(context.Background())
		limiter := s.Facade().Limiter()
		if got := limiter.Remaining(resilience.DefaultClient); got != limiter.Config().MaxRequests {
			t.Errorf("Remaining = %d, want full quota", got)
		}
	})
}

func TestService_Run(t *testing.T) {
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointSearch, exploreBody)
	policy := DefaultPolicy().WithEndpointTTL(kulturpool.EndpointSearch, 5*time.Millisecond)
	s := newTestService(t, up, func(c *Config) {
		c.CleanupInterval = 5 * time.Millisecond
		c.Policy = &policy
	})
	ctx, cancel := context.WithCancel(context.Background())

	if _, err := s.Explore(ctx, params.ExploreParams{Query: "Klimt"}); err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	if got := s.CacheStats().Entries; got != 1 {
		t.Fatalf("Entries = %d, want 1", got)
	}

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for s.CacheStats().Entries != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := s.CacheStats().Entries; got != 0 {
		t.Errorf("Run did not purge the expired entry, Entries = %d", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func equalFacets(got, want []FacetValue) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestService_RequestIDSharedAcrossLogs(t *testing.T) {
	var logs bytes.Buffer
	mw := observe.NewMiddleware(nil, nil, observe.NewLoggerWithWriter("debug", &logs))
	up := newFakeUpstream()
	up.respond(kulturpool.EndpointSearch, exploreBody)
	s, err := New(DefaultConfig(), up, WithMiddleware(mw))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.Explore(context.Background(), params.ExploreParams{Query: "Klimt"}); err != nil {
		t.Fatalf("Explore() error = %v", err)
	}

	ids := map[any]bool{}
	operations := map[any]bool{}
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		ids[entry["request_id"]] = true
		operations[entry["operation"]] = true
	}
	if len(ids) != 1 || ids[nil] {
		t.Errorf("log lines should share one request_id, got %v", ids)
	}
	if !operations[OpExplore] || !operations[search.OperationName] {
		t.Errorf("operations logged = %v", operations)
	}
}
