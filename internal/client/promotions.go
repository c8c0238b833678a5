package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// PromotionService manages dealer promotion codes and lets clients check them
type PromotionService service

func (s *PromotionService) List(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/promotions/", params)
}

func (s *PromotionService) Get(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/promotions/%d/", id), nil)
}

func (s *PromotionService) ForVehicle(ctx context.Context, vehiculeID int) (json.RawMessage, error) {
	return s.client.get(ctx, "/promotions/", Params{"vehicule": vehiculeID})
}

func (s *PromotionService) ForConcession(ctx context.Context, concessionID int) (json.RawMessage, error) {
	return s.client.get(ctx, "/promotions/", Params{"concession": concessionID})
}

// VerifyCode checks a promotion code; vehiculeID and amount are sent as null when nil
func (s *PromotionService) VerifyCode(ctx context.Context, code string, vehiculeID *int, amount *float64) (json.RawMessage, error) {
	body := struct {
		Code       string   `json:"code" validate:"required"`
		VehiculeID *int     `json:"vehicule_id"`
		Montant    *float64 `json:"montant"`
	}{Code: code, VehiculeID: vehiculeID, Montant: amount}
	return s.client.post(ctx, "/promotions/verifier-code/", body)
}

func (s *PromotionService) CalculateDiscount(ctx context.Context, code string, originalAmount float64, vehiculeID *int) (json.RawMessage, error) {
	body := struct {
		Code            string  `json:"code" validate:"required"`
		MontantOriginal float64 `json:"montant_original" validate:"gt=0"`
		VehiculeID      *int    `json:"vehicule_id"`
	}{Code: code, MontantOriginal: originalAmount, VehiculeID: vehiculeID}
	return s.client.post(ctx, "/promotions/calculer-reduction/", body)
}

// Mine lists the promotions of the authenticated dealer
func (s *PromotionService) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/promotions/mes-promotions/", params)
}

func (s *PromotionService) Create(ctx context.Context, data any) (json.RawMessage, error) {
	return s.client.post(ctx, "/promotions/", data)
}

func (s *PromotionService) Update(ctx context.Context, id int, data any) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/promotions/%d/", id), data)
}

func (s *PromotionService) Delete(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/promotions/%d/", id))
}

func (s *PromotionService) Activate(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/promotions/%d/activer/", id), nil)
}

func (s *PromotionService) Deactivate(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/promotions/%d/desactiver/", id), nil)
}

// SetActive activates or deactivates the promotion
func (s *PromotionService) SetActive(ctx context.Context, id int, active bool) (json.RawMessage, error) {
	if active {
		return s.Activate(ctx, id)
	}
	return s.Deactivate(ctx, id)
}

func (s *PromotionService) Extend(ctx context.Context, id int, newEnd string) (json.RawMessage, error) {
	body := struct {
		NouvelleDateFin string `json:"nouvelle_date_fin" validate:"required,datetime=2006-01-02"`
	}{NouvelleDateFin: newEnd}
	return s.client.post(ctx, fmt.Sprintf("/promotions/%d/prolonger/", id), body)
}

func (s *PromotionService) Statistics(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/promotions/statistiques/", nil)
}

// UsageHistory lists the rentals where the promotion was applied
func (s *PromotionService) UsageHistory(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/promotions/%d/historique/", id), nil)
}
