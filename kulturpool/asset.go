package kulturpool

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
)

// AssetRequest selects an asset and its image transformations.
type AssetRequest struct {
	ID              string
	Transformations map[string]any
}

// AssetInfo describes a transformed asset without its bytes.
type AssetInfo struct {
	AssetID         string         `json:"asset_id"`
	URL             string         `json:"url"`
	ContentType     string         `json:"content_type"`
	ContentLength   string         `json:"content_length"`
	Transformations map[string]any `json:"transformations"`
}

// GetAsset requests a transformed asset and reports where it was served
// from. The body is discarded.
func (c *Client) GetAsset(ctx context.Context, req AssetRequest) (*AssetInfo, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: asset id", ErrMissingParam)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	query := url.Values{}
	for k, v := range req.Transformations {
		query.Set(k, formatParam(v))
	}

	resp, err := c.get(ctx, "/assets/"+url.PathEscape(req.ID), query.Encode())
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	length := resp.Header.Get("Content-Length")
	if length == "" && resp.ContentLength >= 0 {
		length = strconv.FormatInt(resp.ContentLength, 10)
	}

	transformations := req.Transformations
	if transformations == nil {
		transformations = map[string]any{}
	}
	return &AssetInfo{
		AssetID:         req.ID,
		URL:             resp.Request.URL.String(),
		ContentType:     resp.Header.Get("Content-Type"),
		ContentLength:   length,
		Transformations: transformations,
	}, nil
}
