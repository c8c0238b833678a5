package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// ReviewService handles ratings of vehicles, dealerships and rentals
type ReviewService service

// Review is the body of a new review. Exactly one of the target ids is expected.
type Review struct {
	VehiculeID   int    `json:"vehicule,omitempty"`
	ConcessionID int    `json:"concession,omitempty"`
	LocationID   int    `json:"location,omitempty"`
	Note         int    `json:"note" validate:"gte=1,lte=5"`
	Commentaire  string `json:"commentaire"`
	Recommande   bool   `json:"recommande"`
}

func (s *ReviewService) List(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/avis/", params)
}

func (s *ReviewService) Get(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/avis/%d/", id), nil)
}

func (s *ReviewService) ForVehicle(ctx context.Context, vehiculeID int, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/avis/", params.with(Params{"vehicule": vehiculeID}))
}

func (s *ReviewService) ForConcession(ctx context.Context, concessionID int, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/avis/", params.with(Params{"concession": concessionID}))
}

// Mine lists the reviews written by the authenticated client
func (s *ReviewService) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/avis/mes_avis/", params)
}

func (s *ReviewService) Create(ctx context.Context, r Review) (json.RawMessage, error) {
	return s.client.post(ctx, "/avis/", r)
}

func (s *ReviewService) Update(ctx context.Context, id int, data any) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/avis/%d/", id), data)
}

func (s *ReviewService) Delete(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/avis/%d/", id))
}

// CanReview reports whether the finished rental can still be rated
func (s *ReviewService) CanReview(ctx context.Context, locationID int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/avis/peut-noter/%d/", locationID), nil)
}

// Received lists the reviews about the authenticated dealer
func (s *ReviewService) Received(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/avis/avis-recus/", params)
}

func (s *ReviewService) Reply(ctx context.Context, id int, reponse string) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/avis/%d/repondre/", id), map[string]string{"reponse_concessionnaire": reponse})
}

func (s *ReviewService) Flag(ctx context.Context, id int, raison string) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/avis/%d/signaler/", id), map[string]string{"raison": raison})
}

func (s *ReviewService) Statistics(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/avis/statistiques/", nil)
}

func (s *ReviewService) VehicleAverage(ctx context.Context, vehiculeID int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/avis/note-moyenne/vehicule/%d/", vehiculeID), nil)
}

func (s *ReviewService) ConcessionAverage(ctx context.Context, concessionID int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/avis/note-moyenne/concession/%d/", concessionID), nil)
}
