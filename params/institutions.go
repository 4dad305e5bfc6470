package params

import (
	"fmt"
	"slices"
)

// Supported response languages.
const (
	LanguageGerman  = "de"
	LanguageEnglish = "en"
)

// normalizeLanguage maps unsupported languages to German.
func normalizeLanguage(lang string) string {
	if slices.Contains([]string{LanguageGerman, LanguageEnglish}, lang) {
		return lang
	}
	return LanguageGerman
}

// InstitutionsParams requests the institution directory.
type InstitutionsParams struct {
	// IncludeLocations adds coordinates to each institution.
	// Default: true
	IncludeLocations *bool `json:"include_locations,omitempty"`

	// Language is "de" or "en"; anything else falls back to "de".
	Language string `json:"language,omitempty"`
}

// Validate normalizes p in place. It never fails.
func (p *InstitutionsParams) Validate() error {
	if p.IncludeLocations == nil {
		include := true
		p.IncludeLocations = &include
	}
	p.Language = normalizeLanguage(p.Language)
	return nil
}

// Locations reports whether coordinates are requested.
func (p InstitutionsParams) Locations() bool {
	return p.IncludeLocations == nil || *p.IncludeLocations
}

// Values renders the request parameters.
func (p InstitutionsParams) Values() map[string]any {
	return map[string]any{
		"include_locations": p.Locations(),
		"language":          normalizeLanguage(p.Language),
	}
}

// InstitutionDetailsParams requests a single institution.
type InstitutionDetailsParams struct {
	InstitutionID int    `json:"institution_id"`
	Language      string `json:"language,omitempty"`
}

// Validate normalizes p in place.
func (p *InstitutionDetailsParams) Validate() error {
	if p.InstitutionID < 1 {
		return invalid("institution_id", fmt.Errorf("%w: %d", ErrInvalidInstitution, p.InstitutionID))
	}
	p.Language = normalizeLanguage(p.Language)
	return nil
}

// Values renders the request parameters.
func (p InstitutionDetailsParams) Values() map[string]any {
	return map[string]any{
		"institution_id": p.InstitutionID,
		"language":       normalizeLanguage(p.Language),
	}
}
