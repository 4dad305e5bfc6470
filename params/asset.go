package params

import "slices"

// Asset transformation defaults and bounds.
const (
	DefaultAssetFormat  = "webp"
	DefaultAssetQuality = 85
	DefaultAssetFit     = "inside"
	MaxAssetDimension   = 4000
)

var (
	assetFormats = []string{"webp", "jpeg", "png"}
	assetFits    = []string{"inside", "outside", "cover", "fill"}
)

// AssetParams requests a transformed media asset. Out-of-range
// transformations fall back to their defaults rather than failing.
type AssetParams struct {
	AssetID string `json:"asset_id"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Format  string `json:"format,omitempty"`
	Quality int    `json:"quality,omitempty"`
	Fit     string `json:"fit,omitempty"`
}

// Validate normalizes p in place.
func (p *AssetParams) Validate() error {
	id, err := Sanitize(p.AssetID)
	if err != nil {
		return invalid("asset_id", err)
	}
	if id == "" {
		return invalid("asset_id", ErrInvalidAsset)
	}
	p.AssetID = id

	if !slices.Contains(assetFormats, p.Format) {
		p.Format = DefaultAssetFormat
	}
	if p.Quality < 1 || p.Quality > 100 {
		p.Quality = DefaultAssetQuality
	}
	if !slices.Contains(assetFits, p.Fit) {
		p.Fit = DefaultAssetFit
	}
	if p.Width < 1 || p.Width > MaxAssetDimension {
		p.Width = 0
	}
	if p.Height < 1 || p.Height > MaxAssetDimension {
		p.Height = 0
	}
	return nil
}

// Transformations returns the transformation query parameters. Width and
// height are present only when set.
func (p AssetParams) Transformations() map[string]any {
	t := map[string]any{
		"format":  p.Format,
		"quality": p.Quality,
		"fit":     p.Fit,
	}
	if p.Width > 0 {
		t["width"] = p.Width
	}
	if p.Height > 0 {
		t["height"] = p.Height
	}
	return t
}

// Values renders the request parameters.
func (p AssetParams) Values() map[string]any {
	v := p.Transformations()
	v["asset_id"] = p.AssetID
	return v
}
