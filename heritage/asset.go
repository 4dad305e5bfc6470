package heritage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/kulturpool"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/params"
)

// UsageInfo describes how an asset URL was produced.
type UsageInfo struct {
	OriginalAssetID       string `json:"original_asset_id"`
	TransformationApplied bool   `json:"transformation_applied"`
}

// AssetResult is the metadata of a transformed asset.
type AssetResult struct {
	kulturpool.AssetInfo
	UsageInfo UsageInfo `json:"usage_info"`
	Cached    bool      `json:"cached"`
}

// GetAsset resolves an asset URL with the requested transformations.
func (s *Service) GetAsset(ctx context.Context, p params.AssetParams) (*AssetResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	values := p.Values()

	var out *AssetResult
	err := s.observed(ctx, OpAsset, func(ctx context.Context) error {
		res, err := s.execute(ctx, kulturpool.EndpointAssets, values)
		if err != nil {
			return err
		}
		var info kulturpool.AssetInfo
		if err := json.Unmarshal(res.Body, &info); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}

		out = &AssetResult{
			AssetInfo: info,
			UsageInfo: UsageInfo{
				OriginalAssetID:       p.AssetID,
				TransformationApplied: p.Width > 0 || p.Height > 0,
			},
			Cached: res.CacheHit,
		}
		return nil
	})
	return out, err
}
