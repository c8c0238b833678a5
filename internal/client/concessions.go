package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ConcessionService covers dealerships: listing, proximity search, dealer self-management
// and the admin moderation actions.
type ConcessionService service

// DefaultSearchRadius is the proximity search radius in km used when none is given
const DefaultSearchRadius = 10

func (s *ConcessionService) List(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/concessions/", params)
}

func (s *ConcessionService) Get(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/concessions/%d/", id), nil)
}

// SearchByProximity lists dealerships within rayon km of the position.
// A rayon <= 0 uses DefaultSearchRadius.
func (s *ConcessionService) SearchByProximity(ctx context.Context, latitude, longitude, rayon float64) (json.RawMessage, error) {
	if rayon <= 0 {
		rayon = DefaultSearchRadius
	}
	return s.client.get(ctx, "/concessions/recherche_proximite/", Params{
		"latitude":  latitude,
		"longitude": longitude,
		"rayon":     rayon,
	})
}

// Mine lists the dealerships owned by the authenticated dealer
func (s *ConcessionService) Mine(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/concessions/mes_concessions/", nil)
}

// Create registers a dealership. The form carries the logo and documents.
func (s *ConcessionService) Create(ctx context.Context, form *Form) (json.RawMessage, error) {
	return s.client.post(ctx, "/concessions/", form)
}

// Update partially updates a dealership. Pass a *Form to replace uploaded files, any other value is sent as JSON.
func (s *ConcessionService) Update(ctx context.Context, id int, body any) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/concessions/%d/", id), body)
}

func (s *ConcessionService) Delete(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/concessions/%d/", id))
}

// Pending lists dealerships awaiting moderation
func (s *ConcessionService) Pending(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/concessions/en_attente/", nil)
}

// Validate moves a pending or suspended dealership to VALIDE. No body is sent.
func (s *ConcessionService) Validate(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/concessions/%d/valider/", id), nil)
}

// Reject refuses a pending dealership
func (s *ConcessionService) Reject(ctx context.Context, id int, raison string) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/concessions/%d/rejeter/", id), map[string]string{
		"raison_rejet": raison,
	})
}

// Suspend takes a validated dealership offline
func (s *ConcessionService) Suspend(ctx context.Context, id int, raison string) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/concessions/%d/suspendre/", id), map[string]string{
		"raison": raison,
	})
}

func (s *ConcessionService) Statistics(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/concessions/statistiques/", nil)
}

// FormatAddress renders a dealership address on one line: adresse, ville, code_postal and region name,
// skipping the parts that are missing.
func FormatAddress(concession json.RawMessage) string {
	var c map[string]any
	if err := json.Unmarshal(concession, &c); err != nil {
		return ""
	}

	parts := make([]string, 0, 4)
	add := func(v any) {
		var s string
		switch t := v.(type) {
		case string:
			s = strings.TrimSpace(t)
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		}
		if s != "" {
			parts = append(parts, s)
		}
	}

	add(c["adresse"])
	add(c["ville"])
	add(c["code_postal"])
	if region, ok := c["region"].(map[string]any); ok {
		add(region["nom"])
	}
	return strings.Join(parts, ", ")
}
