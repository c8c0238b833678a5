package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// VehicleService manages vehicle listings. Create, Update and AddImages upload photos as multipart forms.
type VehicleService service

// VehicleImage is a photo to upload
type VehicleImage struct {
	Filename string
	Content  io.Reader
}

func (s *VehicleService) List(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/vehicules/", params)
}

// Mine lists the vehicles of the authenticated dealer
func (s *VehicleService) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/vehicules/mes_vehicules/", params)
}

func (s *VehicleService) Get(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/vehicules/%d/", id), nil)
}

func (s *VehicleService) Create(ctx context.Context, form *Form) (json.RawMessage, error) {
	return s.client.post(ctx, "/vehicules/", form)
}

// Update partially updates a vehicle, body is a *Form or a JSON value
func (s *VehicleService) Update(ctx context.Context, id int, body any) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/vehicules/%d/", id), body)
}

func (s *VehicleService) Delete(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/vehicules/%d/", id))
}

// AddImages uploads photos, each sent as an "images" part
func (s *VehicleService) AddImages(ctx context.Context, id int, images []VehicleImage) (json.RawMessage, error) {
	form := NewForm()
	for _, img := range images {
		form.AddFile("images", img.Filename, img.Content)
	}
	return s.client.post(ctx, fmt.Sprintf("/vehicules/%d/ajouter_images/", id), form)
}

func (s *VehicleService) DeleteImage(ctx context.Context, vehiculeID, imageID int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/vehicules/%d/supprimer-image/%d/", vehiculeID, imageID))
}

// ChangeStatus sets the listing status. available is sent as null when nil.
func (s *VehicleService) ChangeStatus(ctx context.Context, id int, statut string, available *bool) (json.RawMessage, error) {
	body := struct {
		Statut        string `json:"statut" validate:"required"`
		EstDisponible *bool  `json:"est_disponible"`
	}{Statut: statut, EstDisponible: available}
	return s.client.post(ctx, fmt.Sprintf("/vehicules/%d/changer_statut/", id), body)
}

func (s *VehicleService) Statistics(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/vehicules/%d/statistiques/", id), nil)
}
