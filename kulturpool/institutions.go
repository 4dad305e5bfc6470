package kulturpool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Location is a GeoJSON point flattened to latitude and longitude.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Institution is one entry of the institution list.
type Institution struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	WebCollectionURL string    `json:"web_collection_url"`
	WebsiteURL       string    `json:"website_url"`
	Location         *Location `json:"location,omitempty"`
}

// InstitutionList is the reshaped institution listing.
type InstitutionList struct {
	Institutions []Institution `json:"institutions"`
	TotalCount   int           `json:"total_count"`
}

type rawInstitution struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	WebCollectionURL string `json:"web_collection_url"`
	WebsiteURL       string `json:"website_url"`
	Location         *struct {
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"location"`
}

// GetInstitutions lists the participating institutions. Locations are
// included only when includeLocations is set and the upstream has
// coordinates for the institution.
func (c *Client) GetInstitutions(ctx context.Context, includeLocations bool, language string) (*InstitutionList, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.get(ctx, "/institutions/", languageQuery(language))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope struct {
		Data []rawInstitution `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	list := &InstitutionList{Institutions: make([]Institution, 0, len(envelope.Data))}
	for _, raw := range envelope.Data {
		inst := Institution{
			ID:               raw.ID,
			Name:             raw.Name,
			WebCollectionURL: raw.WebCollectionURL,
			WebsiteURL:       raw.WebsiteURL,
		}
		if includeLocations && raw.Location != nil {
			inst.Location = FirstPoint(raw.Location.Coordinates)
		}
		list.Institutions = append(list.Institutions, inst)
	}
	list.TotalCount = len(list.Institutions)
	return list, nil
}

// GetInstitutionDetails returns the raw data object of one institution.
// A response without data yields an empty object.
func (c *Client) GetInstitutionDetails(ctx context.Context, id int, language string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.get(ctx, fmt.Sprintf("/institutions/%d", id), languageQuery(language))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return []byte("{}"), nil
	}
	return envelope.Data, nil
}

// FirstPoint reads the first [lng, lat] pair of GeoJSON style coordinates.
// Anything else yields nil.
func FirstPoint(coordinates json.RawMessage) *Location {
	var points [][]float64
	if err := json.Unmarshal(coordinates, &points); err != nil {
		return nil
	}
	if len(points) == 0 || len(points[0]) < 2 {
		return nil
	}
	return &Location{Lat: points[0][1], Lng: points[0][0]}
}

func languageQuery(language string) string {
	if language != "de" && language != "en" {
		return ""
	}
	return url.Values{"language": {language}}.Encode()
}
