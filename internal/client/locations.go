package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// LocationService handles vehicle rentals for both sides of the marketplace:
// clients request, extend and cancel rentals, dealers confirm them and record the vehicle handover.
type LocationService service

// RentalRequest is the body of a new rental request. Dates use the YYYY-MM-DD layout.
type RentalRequest struct {
	VehiculeID  int    `json:"vehicule_id" validate:"gt=0"`
	DateDebut   string `json:"date_debut" validate:"required,datetime=2006-01-02"`
	DateFin     string `json:"date_fin" validate:"required,datetime=2006-01-02"`
	NotesClient string `json:"notes_client,omitempty" validate:"max=1000"`
	CodePromo   string `json:"code_promo,omitempty"`
}

func (r RentalRequest) period() (string, string) { return r.DateDebut, r.DateFin }

// PriceQuery asks the backend to price a rental, optionally with a promotion code
type PriceQuery struct {
	VehiculeID int     `json:"vehicule_id" validate:"gt=0"`
	DateDebut  string  `json:"date_debut" validate:"required,datetime=2006-01-02"`
	DateFin    string  `json:"date_fin" validate:"required,datetime=2006-01-02"`
	CodePromo  *string `json:"code_promo"`
}

func (q PriceQuery) period() (string, string) { return q.DateDebut, q.DateFin }

// AvailabilityQuery is sent as query parameters
type AvailabilityQuery struct {
	VehiculeID int    `json:"vehicule_id" validate:"gt=0"`
	DateDebut  string `json:"date_debut" validate:"required,datetime=2006-01-02"`
	DateFin    string `json:"date_fin" validate:"required,datetime=2006-01-02"`
}

func (q AvailabilityQuery) period() (string, string) { return q.DateDebut, q.DateFin }

// DepartureRecord is recorded by the dealer when the client collects the vehicle
type DepartureRecord struct {
	KilometrageDepart int    `json:"kilometrage_depart" validate:"gte=0"`
	EtatDepart        string `json:"etat_depart"`
}

// ReturnRecord is recorded by the dealer when the vehicle comes back
type ReturnRecord struct {
	KilometrageRetour int    `json:"kilometrage_retour" validate:"gte=0"`
	EtatRetour        string `json:"etat_retour"`
}

// client side

func (s *LocationService) List(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/locations/", params)
}

func (s *LocationService) Get(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/locations/%d/", id), nil)
}

func (s *LocationService) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/locations/mes-locations/", params)
}

func (s *LocationService) Ongoing(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/locations/en-cours/", nil)
}

func (s *LocationService) History(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/locations/historique/", params)
}

// Request creates a rental request, pending until the dealer confirms it
func (s *LocationService) Request(ctx context.Context, r RentalRequest) (json.RawMessage, error) {
	return s.client.post(ctx, "/locations/", r)
}

func (s *LocationService) Cancel(ctx context.Context, id int, raison string) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/locations/%d/annuler/", id), map[string]string{"raison": raison})
}

// Extend moves the end date of an ongoing rental (YYYY-MM-DD)
func (s *LocationService) Extend(ctx context.Context, id int, newEnd string) (json.RawMessage, error) {
	body := struct {
		NouvelleDateFin string `json:"nouvelle_date_fin" validate:"required,datetime=2006-01-02"`
	}{NouvelleDateFin: newEnd}
	return s.client.post(ctx, fmt.Sprintf("/locations/%d/prolonger/", id), body)
}

// dealer side

// Received lists the rentals of the authenticated dealer's vehicles
func (s *LocationService) Received(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/locations/locations-recues/", params)
}

func (s *LocationService) Confirm(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/locations/%d/confirmer/", id), nil)
}

func (s *LocationService) Refuse(ctx context.Context, id int, raison string) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/locations/%d/refuser/", id), map[string]string{"raison": raison})
}

func (s *LocationService) RecordDeparture(ctx context.Context, id int, d DepartureRecord) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/locations/%d/depart/", id), d)
}

func (s *LocationService) RecordReturn(ctx context.Context, id int, r ReturnRecord) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/locations/%d/retour/", id), r)
}

func (s *LocationService) AddNotes(ctx context.Context, id int, notes string) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/locations/%d/notes/", id), map[string]string{"notes_concessionnaire": notes})
}

// contract

func (s *LocationService) GenerateContract(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/locations/%d/generer-contrat/", id), nil)
}

// DownloadContract saves the rental contract PDF as contrat-location-{id}.pdf
func (s *LocationService) DownloadContract(ctx context.Context, id int) (bool, error) {
	return s.client.download(ctx, fmt.Sprintf("/locations/%d/telecharger-contrat/", id), nil, fmt.Sprintf("contrat-location-%d.pdf", id))
}

// pricing and availability

func (s *LocationService) CalculatePrice(ctx context.Context, q PriceQuery) (json.RawMessage, error) {
	return s.client.post(ctx, "/locations/calculer-prix/", q)
}

func (s *LocationService) CheckAvailability(ctx context.Context, q AvailabilityQuery) (json.RawMessage, error) {
	if err := s.client.validatePayload(q); err != nil {
		return nil, err
	}
	return s.client.get(ctx, "/locations/verifier-disponibilite/", Params{
		"vehicule_id": q.VehiculeID,
		"date_debut":  q.DateDebut,
		"date_fin":    q.DateFin,
	})
}

func (s *LocationService) Statistics(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/locations/statistiques/", nil)
}
