package kulturpool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Endpoint keys understood by Fetch. They double as cache policy keys.
const (
	EndpointSearch             = "search"
	EndpointObject             = "object"
	EndpointInstitutions       = "institutions"
	EndpointInstitutionDetails = "institution_details"
	EndpointAssets             = "assets"
)

// Defaults applied by NewClient.
const (
	DefaultBaseURL       = "https://api.kulturpool.at"
	DefaultUserAgent     = "Kulturerbe-MCP-Server/1.0"
	DefaultSearchTimeout = 10 * time.Second
	DefaultTimeout       = 30 * time.Second
)

// maxErrorBody bounds how much of an error response is kept in StatusError.
const maxErrorBody = 512

// Config configures the API client.
type Config struct {
	// BaseURL is the API root.
	// Default: https://api.kulturpool.at
	BaseURL string

	// SearchTimeout bounds search requests.
	// Default: 10 seconds
	SearchTimeout time.Duration

	// Timeout bounds institution and asset requests.
	// Default: 30 seconds
	Timeout time.Duration

	// UserAgent is sent with every request.
	// Default: Kulturerbe-MCP-Server/1.0
	UserAgent string

	// HTTPClient performs the requests.
	// Default: a client without its own timeout; requests are bounded by
	// the per-request timeouts above.
	HTTPClient *http.Client
}

// Client talks to the Kulturpool API.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: every request honors ctx in addition to the configured timeout.
type Client struct {
	config Config
	base   *url.URL
}

// NewClient creates a client, applying defaults to zero fields.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.SearchTimeout <= 0 {
		config.SearchTimeout = DefaultSearchTimeout
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}

	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, config.BaseURL)
	}

	return &Client{config: config, base: base}, nil
}

// Config returns the effective client configuration.
func (c *Client) Config() Config { return c.config }

// Search runs a search and returns the raw JSON response.
func (c *Client) Search(ctx context.Context, params map[string]any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.SearchTimeout)
	defer cancel()

	resp, err := c.get(ctx, "/search/", encodeSearchQuery(params))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return readJSON(resp)
}

// Ping issues a minimal search to probe reachability.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Search(ctx, map[string]any{"q": "*", "per_page": 1})
	return err
}

// Fetch dispatches a request by endpoint key and returns a JSON body.
func (c *Client) Fetch(ctx context.Context, endpoint string, params map[string]any) ([]byte, error) {
	switch endpoint {
	case EndpointSearch, EndpointObject:
		return c.Search(ctx, params)

	case EndpointInstitutions:
		include := true
		if v, ok := params["include_locations"].(bool); ok {
			include = v
		}
		list, err := c.GetInstitutions(ctx, include, stringParam(params, "language"))
		if err != nil {
			return nil, err
		}
		return json.Marshal(list)

	case EndpointInstitutionDetails:
		id, ok := intParam(params, "institution_id")
		if !ok {
			return nil, fmt.Errorf("%w: institution_id", ErrMissingParam)
		}
		return c.GetInstitutionDetails(ctx, id, stringParam(params, "language"))

	case EndpointAssets:
		id := stringParam(params, "asset_id")
		if id == "" {
			return nil, fmt.Errorf("%w: asset_id", ErrMissingParam)
		}
		transformations := make(map[string]any, len(params))
		for k, v := range params {
			if k != "asset_id" {
				transformations[k] = v
			}
		}
		info, err := c.GetAsset(ctx, AssetRequest{ID: id, Transformations: transformations})
		if err != nil {
			return nil, err
		}
		return json.Marshal(info)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEndpoint, endpoint)
	}
}

func (c *Client) get(ctx context.Context, path, rawQuery string) (*http.Response, error) {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	u.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("kulturpool: create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kulturpool: request %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        u.Redacted(),
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}

func readJSON(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kulturpool: read response: %w", err)
	}
	if !json.Valid(body) {
		return nil, ErrInvalidResponse
	}
	return body, nil
}

// rawQueryKeys are sent with ':' and '=' left literal; the upstream filter
// syntax is parsed from the raw query.
var rawQueryKeys = []string{"filter_by", "sort_by"}

func encodeSearchQuery(params map[string]any) string {
	values := url.Values{}
	var raw []string

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		v := formatParam(params[k])
		if slices.Contains(rawQueryKeys, k) {
			raw = append(raw, k+"="+escapeFilter(v))
			continue
		}
		values.Set(k, v)
	}

	parts := make([]string, 0, 2)
	if enc := values.Encode(); enc != "" {
		parts = append(parts, enc)
	}
	parts = append(parts, raw...)
	return strings.Join(parts, "&")
}

// escapeFilter percent-encodes v except for ':' and '='. '&' stays encoded
// so "&&" cannot split the query.
func escapeFilter(v string) string {
	return strings.NewReplacer("%3A", ":", "%3D", "=").Replace(url.QueryEscape(v))
}

func formatParam(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), v == float64(int(v))
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}
