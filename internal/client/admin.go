package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// AdminService groups the administrator back office: user and dealership moderation,
// content moderation, roles, exports and communication.
type AdminService service

// ModerationAction is sent when moderating flagged vehicles and reviews
type ModerationAction string

const (
	ModerationApprove ModerationAction = "APPROUVER"
	ModerationReject  ModerationAction = "REJETER"
)

// User types accepted by the type_utilisateur filter
const (
	UserTypeClient = "CLIENT"
	UserTypeDealer = "CONCESSIONNAIRE"
	UserTypeAdmin  = "ADMINISTRATEUR"
)

// ExportFormats lists the formats accepted by ExportData
var ExportFormats = []string{"csv", "xlsx", "json"}

// users

func (s *AdminService) ListUsers(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/auth/admin/users/", params)
}

func (s *AdminService) GetUser(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/auth/admin/users/%d/", id), nil)
}

// ListPendingUsers lists dealer accounts that have not been validated yet
func (s *AdminService) ListPendingUsers(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/auth/admin/users/", Params{
		"est_valide":       false,
		"type_utilisateur": UserTypeDealer,
	})
}

func (s *AdminService) ValidateUser(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/auth/admin/users/%d/valider/", id), nil)
}

func (s *AdminService) RejectUser(ctx context.Context, id int, raison string) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/auth/admin/users/%d/rejeter/", id), map[string]string{"raison": raison})
}

func (s *AdminService) SuspendUser(ctx context.Context, id int, raison string) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/auth/admin/users/%d/suspendre/", id), map[string]string{"raison": raison})
}

func (s *AdminService) ReactivateUser(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/auth/admin/users/%d/reactiver/", id), nil)
}

func (s *AdminService) DeleteUser(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/auth/admin/users/%d/", id))
}

func (s *AdminService) ChangeRole(ctx context.Context, id, roleID int) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/auth/admin/users/%d/role/", id), map[string]int{"role_id": roleID})
}

// dealerships

// ListConcessions lists every dealership regardless of its moderation status
func (s *AdminService) ListConcessions(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/concessions/", params.with(Params{"admin": true}))
}

func (s *AdminService) ListPendingConcessions(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/concessions/", Params{"statut": string(StatusPending)})
}

func (s *AdminService) ValidateConcession(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.Concessions.Validate(ctx, id)
}

func (s *AdminService) RejectConcession(ctx context.Context, id int, raison string) (json.RawMessage, error) {
	return s.client.Concessions.Reject(ctx, id, raison)
}

func (s *AdminService) SuspendConcession(ctx context.Context, id int, raison string) (json.RawMessage, error) {
	return s.client.Concessions.Suspend(ctx, id, raison)
}

func (s *AdminService) ReactivateConcession(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/concessions/%d/reactiver/", id), nil)
}

// content moderation

func (s *AdminService) ListFlaggedVehicles(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/vehicules/signales/", nil)
}

func (s *AdminService) ModerateVehicle(ctx context.Context, id int, action ModerationAction, raison string) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/vehicules/%d/moderer/", id), moderation{Action: action, Raison: raison})
}

func (s *AdminService) ListFlaggedReviews(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/avis/signales/", nil)
}

func (s *AdminService) ModerateReview(ctx context.Context, id int, action ModerationAction, raison string) (json.RawMessage, error) {
	return s.client.post(ctx, fmt.Sprintf("/avis/%d/moderer/", id), moderation{Action: action, Raison: raison})
}

func (s *AdminService) ListVehicles(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/vehicules/", params.with(Params{"admin": true}))
}

func (s *AdminService) ListReviews(ctx context.Context, params Params) (json.RawMessage, error) {
	return s.client.get(ctx, "/avis/", params.with(Params{"admin": true}))
}

func (s *AdminService) DeleteReview(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/avis/%d/", id))
}

type moderation struct {
	Action ModerationAction `json:"action" validate:"oneof=APPROUVER REJETER"`
	Raison string           `json:"raison"`
}

// roles and permissions

func (s *AdminService) ListRoles(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/auth/roles/", nil)
}

func (s *AdminService) CreateRole(ctx context.Context, data any) (json.RawMessage, error) {
	return s.client.post(ctx, "/auth/roles/", data)
}

func (s *AdminService) UpdateRole(ctx context.Context, id int, data any) (json.RawMessage, error) {
	return s.client.patch(ctx, fmt.Sprintf("/auth/roles/%d/", id), data)
}

func (s *AdminService) DeleteRole(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.delete(ctx, fmt.Sprintf("/auth/roles/%d/", id))
}

func (s *AdminService) ListPermissions(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/auth/permissions/", nil)
}

// dashboard, exports and communication

func (s *AdminService) DashboardStats(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/statistiques/dashboard/admin/", nil)
}

// ExportData downloads a server side export of dataType (users, concessions, locations...).
// The file is saved as export-{type}-{unix millis}.{format}; format defaults to csv.
func (s *AdminService) ExportData(ctx context.Context, dataType, format string) (bool, error) {
	if format == "" {
		format = "csv"
	}
	filename := fmt.Sprintf("export-%s-%d.%s", dataType, time.Now().UnixMilli(), format)
	return s.client.download(ctx, fmt.Sprintf("/admin/export/%s/", dataType), Params{"format": format}, filename)
}

func (s *AdminService) SendNewsletter(ctx context.Context, data any) (json.RawMessage, error) {
	return s.client.post(ctx, "/communication/newsletter/", data)
}

func (s *AdminService) PublishAnnouncement(ctx context.Context, data any) (json.RawMessage, error) {
	return s.client.post(ctx, "/communication/annonce/", data)
}
