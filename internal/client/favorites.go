package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// FavoriteService manages a client's saved vehicles and price alerts
type FavoriteService service

var notFavorite = json.RawMessage(`{"est_favori":false}`)

func (s *FavoriteService) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/favoris/", params)
}

func (s *FavoriteService) Get(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/favoris/%d/", id), nil)
}

func (s *FavoriteService) Add(ctx context.Context, vehiculeID int) (json.RawMessage, error) {
	return s.client.post(ctx, "/favoris/", map[string]int{"vehicule_id": vehiculeID})
}

func (s *FavoriteService) Remove(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/favoris/%d/", id))
}

func (s *FavoriteService) RemoveByVehicle(ctx context.Context, vehiculeID int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/favoris/vehicule/%d/", vehiculeID))
}

// Toggle adds the vehicle to the favourites, or removes it when already there
func (s *FavoriteService) Toggle(ctx context.Context, vehiculeID int) (json.RawMessage, error) {
	return s.client.post(ctx, "/favoris/toggle/", map[string]int{"vehicule_id": vehiculeID})
}

// IsFavorite reports the favourite state of a vehicle.
// The backend answers 404 for vehicles that were never saved; that is returned as {"est_favori":false}.
func (s *FavoriteService) IsFavorite(ctx context.Context, vehiculeID int) (json.RawMessage, error) {
	raw, err := s.client.get(ctx, fmt.Sprintf("/favoris/check/%d/", vehiculeID), nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return notFavorite, nil
		}
		return nil, err
	}
	return raw, nil
}

// EnablePriceAlert notifies the client when the vehicle price drops, below target when it is set
func (s *FavoriteService) EnablePriceAlert(ctx context.Context, id int, target *float64) (json.RawMessage, error) {
	body := struct {
		PrixCible *float64 `json:"prix_cible" validate:"omitnil,gt=0"`
	}{PrixCible: target}
	return s.client.post(ctx, fmt.Sprintf("/favoris/%d/activer-alerte/", id), body)
}

func (s *FavoriteService) DisablePriceAlert(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/favoris/%d/desactiver-alerte/", id), nil)
}

func (s *FavoriteService) Alerts(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/favoris/alertes/", nil)
}

func (s *FavoriteService) PriceDrops(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/favoris/baisses-prix/", nil)
}

func (s *FavoriteService) Count(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/favoris/count/", nil)
}

func (s *FavoriteService) Statistics(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/favoris/statistiques/", nil)
}
