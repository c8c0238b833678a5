package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// NotificationType categorizes notifications
type NotificationType string

const (
	NotificationDemand    NotificationType = "DEMANDE"
	NotificationLocation  NotificationType = "LOCATION"
	NotificationPromotion NotificationType = "PROMOTION"
	NotificationSystem    NotificationType = "SYSTEME"
	NotificationReview    NotificationType = "AVIS"
)

// NotificationMessage is sent by an administrator to a single user. Type defaults to SYSTEME.
type NotificationMessage struct {
	DestinataireID int              `json:"destinataire_id" validate:"gt=0"`
	Titre          string           `json:"titre" validate:"required,max=200"`
	Message        string           `json:"message" validate:"required"`
	Type           NotificationType `json:"type" validate:"omitempty,oneof=DEMANDE LOCATION PROMOTION SYSTEME AVIS"`
}

// NotificationService reads and manages the authenticated user's notifications.
// The Send methods are reserved to administrators.
type NotificationService service

func (s *NotificationService) Mine(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/notifications/", params)
}

func (s *NotificationService) Get(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/notifications/%d/", id), nil)
}

func (s *NotificationService) Unread(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/notifications/non-lues/", nil)
}

func (s *NotificationService) CountUnread(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/notifications/count-non-lues/", nil)
}

func (s *NotificationService) MarkRead(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/notifications/%d/marquer-lue/", id), nil)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (json.RawMessage, error) {
	return s.client.post(ctx, "/notifications/marquer-toutes-lues/", nil)
}

func (s *NotificationService) Delete(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/notifications/%d/", id))
}

// DeleteRead removes every notification already read
func (s *NotificationService) DeleteRead(ctx context.Context) (json.RawMessage, error) {
	return s.client.delete(ctx, "/notifications/supprimer-lues/")
}

func (s *NotificationService) ByType(ctx context.Context, t NotificationType) (json.RawMessage, error) {
	return s.client.get(ctx, "/notifications/", Params{"type": string(t)})
}

func (s *NotificationService) Preferences(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/notifications/preferences/", nil)
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, preferences any) (json.RawMessage, error) {
	return s.client.patch(ctx, "/notifications/preferences/", preferences)
}

// Send notifies a single user
func (s *NotificationService) Send(ctx context.Context, m NotificationMessage) (json.RawMessage, error) {
	if m.Type == "" {
		m.Type = NotificationSystem
	}
	return s.client.post(ctx, "/notifications/envoyer/", m)
}

// SendToAll notifies every user matching the filters (e.g. type_utilisateur); the filters are merged into the body
func (s *NotificationService) SendToAll(ctx context.Context, titre, message string, t NotificationType, filters map[string]any) (json.RawMessage, error) {
	if t == "" {
		t = NotificationSystem
	}
	body := make(map[string]any, len(filters)+3)
	for k, v := range filters {
		body[k] = v
	}
	body["titre"] = titre
	body["message"] = message
	body["type"] = t
	return s.client.post(ctx, "/notifications/envoyer-tous/", body)
}

func (s *NotificationService) SendToDealers(ctx context.Context, titre, message string) (json.RawMessage, error) {
	return s.client.post(ctx, "/notifications/envoyer-concessionnaires/", map[string]string{"titre": titre, "message": message})
}

func (s *NotificationService) SendToClients(ctx context.Context, titre, message string) (json.RawMessage, error) {
	return s.client.post(ctx, "/notifications/envoyer-clients/", map[string]string{"titre": titre, "message": message})
}
