package client

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
)

// StatisticsService reads the per role dashboards and their detail reports
type StatisticsService service

// Dashboard roles
const (
	RoleDealer = "concessionnaire"
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// Report names available per role
var (
	DealerReports = []string{"revenus", "locations", "vehicules", "demandes", "avis", "tendances"}
	ClientReports = []string{"locations", "depenses", "favoris", "activite"}
	AdminReports  = []string{"utilisateurs", "concessions", "vehicules", "locations", "revenus", "tendances"}
)

func (s *StatisticsService) DealerDashboard(ctx context.Context) (json.RawMessage, error) {
	return s.Dashboard(ctx, RoleDealer)
}

func (s *StatisticsService) ClientDashboard(ctx context.Context) (json.RawMessage, error) {
	return s.Dashboard(ctx, RoleClient)
}

func (s *StatisticsService) AdminDashboard(ctx context.Context) (json.RawMessage, error) {
	return s.Dashboard(ctx, RoleAdmin)
}

// Dashboard returns the dashboard of role (RoleDealer, RoleClient or RoleAdmin)
func (s *StatisticsService) Dashboard(ctx context.Context, role string) (json.RawMessage, error) {
	if role != RoleDealer && role != RoleClient && role != RoleAdmin {
		return nil, NewRequestError(fmt.Errorf("rôle inconnu : %s", role), "reading dashboard")
	}
	return s.client.get(ctx, fmt.Sprintf("/statistiques/dashboard/%s/", role), nil)
}

// Report returns one detail report of a role, e.g. Report(ctx, RoleDealer, "revenus")
func (s *StatisticsService) Report(ctx context.Context, role, report string) (json.RawMessage, error) {
	var available []string
	switch role {
	case RoleDealer:
		available = DealerReports
	case RoleClient:
		available = ClientReports
	case RoleAdmin:
		available = AdminReports
	}
	if !slices.Contains(available, report) {
		return nil, NewRequestError(fmt.Errorf("statistique inconnue : %s/%s", role, report), "reading statistics report")
	}
	return s.client.get(ctx, fmt.Sprintf("/statistiques/%s/%s/", role, report), nil)
}

func (s *StatisticsService) DealerRevenue(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleDealer, "revenus")
}

func (s *StatisticsService) DealerLocations(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleDealer, "locations")
}

func (s *StatisticsService) DealerVehicles(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleDealer, "vehicules")
}

func (s *StatisticsService) DealerDemands(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleDealer, "demandes")
}

func (s *StatisticsService) DealerReviews(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleDealer, "avis")
}

func (s *StatisticsService) DealerTrends(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleDealer, "tendances")
}

func (s *StatisticsService) ClientLocations(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleClient, "locations")
}

func (s *StatisticsService) ClientSpending(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleClient, "depenses")
}

func (s *StatisticsService) ClientFavorites(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleClient, "favoris")
}

func (s *StatisticsService) ClientActivity(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleClient, "activite")
}

func (s *StatisticsService) AdminUsers(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleAdmin, "utilisateurs")
}

func (s *StatisticsService) AdminConcessions(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleAdmin, "concessions")
}

func (s *StatisticsService) AdminVehicles(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleAdmin, "vehicules")
}

func (s *StatisticsService) AdminLocations(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleAdmin, "locations")
}

func (s *StatisticsService) AdminRevenue(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleAdmin, "revenus")
}

func (s *StatisticsService) AdminTrends(ctx context.Context) (json.RawMessage, error) {
	return s.Report(ctx, RoleAdmin, "tendances")
}
