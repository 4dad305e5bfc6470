package heritage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rklugsederoeaw/kulturpool-mcp-server/kulturpool"
	"github.com/rklugsederoeaw/kulturpool-mcp-server/params"
)

// InstitutionsRequest echoes the normalized listing parameters.
type InstitutionsRequest struct {
	IncludeLocations bool   `json:"include_locations"`
	Language         string `json:"language"`
}

// InstitutionsResult is the institution listing.
type InstitutionsResult struct {
	kulturpool.InstitutionList
	RequestParams InstitutionsRequest `json:"request_params"`
	Cached        bool                `json:"cached"`
}

// GetInstitutions lists the participating institutions.
func (s *Service) GetInstitutions(ctx context.Context, p params.InstitutionsParams) (*InstitutionsResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	values := p.Values()

	var out *InstitutionsResult
	err := s.observed(ctx, OpInstitutions, func(ctx context.Context) error {
		res, err := s.execute(ctx, kulturpool.EndpointInstitutions, values)
		if err != nil {
			return err
		}
		var list kulturpool.InstitutionList
		if err := json.Unmarshal(res.Body, &list); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		if list.Institutions == nil {
			list.Institutions = []kulturpool.Institution{}
		}

		out = &InstitutionsResult{
			InstitutionList: list,
			RequestParams: InstitutionsRequest{
				IncludeLocations: p.Locations(),
				Language:         p.Language,
			},
			Cached: res.CacheHit,
		}
		return nil
	})
	return out, err
}

// BasicInfo names an institution and its web presence.
type BasicInfo struct {
	Name             string `json:"name"`
	WebCollectionURL string `json:"web_collection_url"`
	WebsiteURL       string `json:"website_url"`
}

// Coordinates is a geographic position.
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// InstitutionLocation is the first point of the institution geometry.
type InstitutionLocation struct {
	Type        string      `json:"type"`
	Coordinates Coordinates `json:"coordinates"`
}

// InstitutionImages holds the asset descriptors of an institution. They are
// passed through as returned by the upstream.
type InstitutionImages struct {
	Favicon   json.RawMessage `json:"favicon"`
	HeroImage json.RawMessage `json:"hero_image"`
}

// InstitutionMetadata holds secondary institution fields.
type InstitutionMetadata struct {
	IntermediateProvider json.RawMessage `json:"intermediate_provider"`
	Language             string          `json:"language"`
}

// InstitutionDetails is the reshaped record of one institution.
type InstitutionDetails struct {
	InstitutionID int                  `json:"institution_id"`
	BasicInfo     BasicInfo            `json:"basic_info"`
	Location      *InstitutionLocation `json:"location"`
	Images        InstitutionImages    `json:"images"`
	Metadata      InstitutionMetadata  `json:"metadata"`
	Cached        bool                 `json:"cached"`
}

type rawInstitutionDetails struct {
	Name                 string          `json:"name"`
	WebCollectionURL     string          `json:"web_collection_url"`
	WebsiteURL           string          `json:"website_url"`
	Favicon              json.RawMessage `json:"favicon"`
	HeroImage            json.RawMessage `json:"hero_image"`
	IntermediateProvider json.RawMessage `json:"intermediate_provider"`
	Location             *struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"location"`
}

// GetInstitutionDetails returns one institution.
func (s *Service) GetInstitutionDetails(ctx context.Context, p params.InstitutionDetailsParams) (*InstitutionDetails, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	values := p.Values()

	var out *InstitutionDetails
	err := s.observed(ctx, OpInstitutionDetails, func(ctx context.Context) error {
		res, err := s.execute(ctx, kulturpool.EndpointInstitutionDetails, values)
		if err != nil {
			return err
		}
		var raw rawInstitutionDetails
		if err := json.Unmarshal(res.Body, &raw); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}

		out = &InstitutionDetails{
			InstitutionID: p.InstitutionID,
			BasicInfo: BasicInfo{
				Name:             raw.Name,
				WebCollectionURL: raw.WebCollectionURL,
				WebsiteURL:       raw.WebsiteURL,
			},
			Images: InstitutionImages{
				Favicon:   objectOrEmpty(raw.Favicon),
				HeroImage: objectOrEmpty(raw.HeroImage),
			},
			Metadata: InstitutionMetadata{
				IntermediateProvider: nullOr(raw.IntermediateProvider),
				Language:             p.Language,
			},
			Cached: res.CacheHit,
		}
		if raw.Location != nil {
			if pt := kulturpool.FirstPoint(raw.Location.Coordinates); pt != nil {
				out.Location = &InstitutionLocation{
					Type:        orDefault(raw.Location.Type, "MultiPoint"),
					Coordinates: Coordinates{Longitude: pt.Lng, Latitude: pt.Lat},
				}
			}
		}
		return nil
	})
	return out, err
}

func objectOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage("{}")
	}
	return raw
}

func nullOr(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
