package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// DemandService handles client enquiries to dealers (contact, test drive, quote, information)
type DemandService service

// Demand types
const (
	DemandContact     = "CONTACT"
	DemandTestDrive   = "ESSAI"
	DemandQuote       = "DEVIS"
	DemandInformation = "INFORMATION"
)

// Demand statuses
const (
	DemandPending    = "EN_ATTENTE"
	DemandInProgress = "EN_COURS"
	DemandProcessed  = "TRAITEE"
)

func (s *DemandService) List(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/demands/", params)
}

func (s *DemandService) Get(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/demands/%d/", id), nil)
}

// Mine lists the enquiries sent by the authenticated client
func (s *DemandService) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/demands/mes_demandes/", params)
}

// Create sends an enquiry; data carries type_demande, vehicule and the type specific fields
func (s *DemandService) Create(ctx context.Context, data any) (json.RawMessage, error) {
	return s.client.post(ctx, "/demands/", data)
}

// Cancel withdraws an enquiry
func (s *DemandService) Cancel(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/demands/%d/", id))
}

// Received lists the enquiries addressed to the authenticated dealer
func (s *DemandService) Received(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/demands/demandes-recues/", params)
}

func (s *DemandService) Reply(ctx context.Context, id int, reponse string) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/demands/%d/repondre/", id), map[string]string{"reponse": reponse})
}

func (s *DemandService) MarkInProgress(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/demands/%d/marquer-en-cours/", id), nil)
}

func (s *DemandService) AddNotes(ctx context.Context, id int, notes string) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/demands/%d/notes/", id), map[string]string{"notes_internes": notes})
}

func (s *DemandService) Statistics(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/demands/statistiques/", nil)
}

func (s *DemandService) ByStatus(ctx context.Context, statut string) (json.RawMessage, error) {
	return s.Received(ctx, Params{"statut": statut})
}

func (s *DemandService) ByType(ctx context.Context, demandType string) (json.RawMessage, error) {
	return s.Received(ctx, Params{"type_demande": demandType})
}
