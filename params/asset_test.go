package params

import (
	"errors"
	"testing"
)

func TestAssetParams_Defaults(t *testing.T) {
	p := AssetParams{AssetID: "asset-42"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tr := p.Transformations()
	if tr["format"] != "webp" || tr["quality"] != 85 || tr["fit"] != "inside" {
		t.Errorf("Transformations() = %v", tr)
	}
	if _, ok := tr["width"]; ok {
		t.Error("width should be absent when unset")
	}
	if p.Values()["asset_id"] != "asset-42" {
		t.Errorf("Values() = %v", p.Values())
	}
}

func TestAssetParams_Coercion(t *testing.T) {
	p := AssetParams{
		AssetID: "a",
		Width:   5000,
		Height:  300,
		Format:  "gif",
		Quality: 0,
		Fit:     "stretch",
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	want := AssetParams{AssetID: "a", Width: 0, Height: 300, Format: "webp", Quality: 85, Fit: "inside"}
	if p != want {
		t.Errorf("Validate() = %+v, want %+v", p, want)
	}
}

func TestAssetParams_Kept(t *testing.T) {
	p := AssetParams{AssetID: "a", Width: 800, Format: "png", Quality: 60, Fit: "cover"}
	_ = p.Validate()

	tr := p.Transformations()
	if tr["width"] != 800 || tr["format"] != "png" || tr["quality"] != 60 || tr["fit"] != "cover" {
		t.Errorf("Transformations() = %v", tr)
	}
}

func TestAssetParams_Invalid(t *testing.T) {
	tests := []struct {
		id      string
		wantErr error
	}{
		{"", ErrInvalidAsset},
		{"<>", ErrInvalidAsset},
		{"../../etc", ErrDangerousInput},
	}

	for _, tt := range tests {
		p := AssetParams{AssetID: tt.id}
		err := p.Validate()
		if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrValidation) {
			t.Errorf("Validate(%q) error = %v, want %v", tt.id, err, tt.wantErr)
		}
	}
}
