package main

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/autoloc-sn/autoloc/internal/client"
	"github.com/autoloc-sn/autoloc/internal/export"
	"github.com/autoloc-sn/autoloc/internal/geo"
	"github.com/spf13/cobra"
)

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (administrators)",
	}

	var userType, search string
	list := a.call("list", "List users", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
		params := client.Params{}
		if userType != "" {
			params["type_utilisateur"] = strings.ToUpper(userType)
		}
		if search != "" {
			params["search"] = search
		}
		return a.api.Admin.ListUsers(ctx, params)
	})
	list.Flags().StringVar(&userType, "type", "", "user type: CLIENT, CONCESSIONNAIRE or ADMINISTRATEUR")
	list.Flags().StringVar(&search, "search", "", "search on name and email")

	var raison string
	suspend := a.callID("suspend <id>", "Suspend a user account", func(ctx context.Context, id int) (json.RawMessage, error) {
		return a.api.Admin.SuspendUser(ctx, id, raison)
	})
	suspend.Flags().StringVar(&raison, "raison", "", "reason sent to the user")

	cmd.AddCommand(
		list,
		a.call("pending", "List dealer accounts awaiting validation", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
			return a.api.Admin.ListPendingUsers(ctx)
		}),
		a.callID("validate <id>", "Validate a user account", func(ctx context.Context, id int) (json.RawMessage, error) {
			return a.api.Admin.ValidateUser(ctx, id)
		}),
		suspend,
		a.callID("reactivate <id>", "Reactivate a suspended account", func(ctx context.Context, id int) (json.RawMessage, error) {
			return a.api.Admin.ReactivateUser(ctx, id)
		}),
	)
	return cmd
}

func (a *app) concessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "concessions",
		Aliases: []string{"concession"},
		Short:   "Browse and moderate dealerships",
	}

	var ville, statut string
	list := a.call("list", "List dealerships", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
		params := client.Params{}
		if ville != "" {
			params["ville"] = ville
		}
		if statut != "" {
			params["statut"] = strings.ToUpper(statut)
		}
		return a.api.Concessions.List(ctx, params)
	})
	list.Flags().StringVar(&ville, "ville", "", "only dealerships in this city")
	list.Flags().StringVar(&statut, "statut", "", "moderation status: EN_ATTENTE, VALIDE, SUSPENDU or REJETE")

	var rejectReason, suspendReason string
	reject := a.callID("reject <id>", "Reject a pending dealership", func(ctx context.Context, id int) (json.RawMessage, error) {
		return a.moderateConcession(ctx, id, client.StatusRejected, func() (json.RawMessage, error) {
			return a.api.Concessions.Reject(ctx, id, rejectReason)
		})
	})
	reject.Flags().StringVar(&rejectReason, "raison", "", "reason sent to the dealer")
	_ = reject.MarkFlagRequired("raison")

	suspend := a.callID("suspend <id>", "Suspend a validated dealership", func(ctx context.Context, id int) (json.RawMessage, error) {
		return a.moderateConcession(ctx, id, client.StatusSuspended, func() (json.RawMessage, error) {
			return a.api.Concessions.Suspend(ctx, id, suspendReason)
		})
	})
	suspend.Flags().StringVar(&suspendReason, "raison", "", "reason sent to the dealer")

	cmd.AddCommand(
		list,
		a.callID("get <id>", "Show a dealership", func(ctx context.Context, id int) (json.RawMessage, error) {
			return a.api.Concessions.Get(ctx, id)
		}),
		a.call("pending", "List dealerships awaiting moderation", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
			return a.api.Concessions.Pending(ctx)
		}),
		a.callID("validate <id>", "Validate a dealership", func(ctx context.Context, id int) (json.RawMessage, error) {
			return a.moderateConcession(ctx, id, client.StatusValid, func() (json.RawMessage, error) {
				return a.api.Concessions.Validate(ctx, id)
			})
		}),
		reject,
		suspend,
		a.nearCmd(),
	)
	return cmd
}

// moderateConcession runs action when the dealership's current status allows moving to next.
// Dealerships whose status is not reported are left for the server to decide.
func (a *app) moderateConcession(ctx context.Context, id int, next client.ModerationStatus, action func() (json.RawMessage, error)) (json.RawMessage, error) {
	raw, err := a.api.Concessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var current struct {
		Statut client.ModerationStatus `json:"statut"`
	}
	if err := json.Unmarshal(raw, &current); err == nil && current.Statut != "" && !current.Statut.CanTransition(next) {
		return nil, fmt.Errorf("concession %d : passage de « %s » à « %s » impossible", id, current.Statut.Label(), next.Label())
	}
	return action()
}

// nearbyConcession is one line of the concessions near output
type nearbyConcession struct {
	ID         int      `json:"id"`
	Nom        string   `json:"nom"`
	Adresse    string   `json:"adresse"`
	DistanceKm *float64 `json:"distance_km"`
}

func (a *app) nearCmd() *cobra.Command {
	var (
		rayon    float64
		lat, lon float64
	)

	cmd := &cobra.Command{
		Use:   "near",
		Short: "List dealerships around your position, nearest first",
		Long: `List dealerships around your position, nearest first.

The position comes from --lat/--lon, GEO_LATITUDE/GEO_LONGITUDE or the GEO_PROVIDER_URL service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider := a.positionProvider()
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				provider = geo.StaticProvider{Position: geo.Position{Latitude: lat, Longitude: lon}}
			}

			pos, err := geo.GetUserPosition(cmd.Context(), provider)
			if err != nil {
				return err
			}

			raw, err := a.api.Concessions.SearchByProximity(cmd.Context(), pos.Latitude, pos.Longitude, rayon)
			if err != nil {
				return err
			}

			items := client.Items(raw)
			out := make([]nearbyConcession, 0, len(items))
			for _, item := range items {
				out = append(out, describeConcession(item, pos))
			}
			slices.SortStableFunc(out, func(x, y nearbyConcession) int {
				switch {
				case x.DistanceKm == nil && y.DistanceKm == nil:
					return 0
				case x.DistanceKm == nil:
					return 1
				case y.DistanceKm == nil:
					return -1
				}
				return cmp.Compare(*x.DistanceKm, *y.DistanceKm)
			})
			return a.printValue(cmd, out)
		},
	}

	cmd.Flags().Float64Var(&rayon, "rayon", client.DefaultSearchRadius, "search radius in km")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude to search from")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude to search from")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	return cmd
}

func describeConcession(item json.RawMessage, from geo.Position) nearbyConcession {
	var c struct {
		ID        int    `json:"id"`
		Nom       string `json:"nom"`
		Latitude  any    `json:"latitude"`
		Longitude any    `json:"longitude"`
	}
	_ = json.Unmarshal(item, &c)

	out := nearbyConcession{ID: c.ID, Nom: c.Nom, Adresse: client.FormatAddress(item)}
	lat, latOK := coordinate(c.Latitude)
	lon, lonOK := coordinate(c.Longitude)
	if latOK && lonOK {
		d := geo.CalculateDistance(from.Latitude, from.Longitude, lat, lon)
		out.DistanceKm = &d
	}
	return out
}

// coordinate reads a coordinate sent as a number or, for decimal fields, as a string
func coordinate(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func (a *app) statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"statistiques"},
		Short:   "Dashboards and statistics reports",
	}

	var role string
	dashboard := a.call("dashboard", "Show the dashboard of your role", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
		r := role
		if r == "" {
			r = a.sessionRole()
		}
		return a.api.Statistics.Dashboard(ctx, r)
	})
	dashboard.Flags().StringVar(&role, "role", "", "concessionnaire, client or admin (default: the role of the logged in user)")

	report := a.call("report <role> <report>", "Show a detail report, e.g. report concessionnaire revenus", cobra.ExactArgs(2),
		func(ctx context.Context, args []string) (json.RawMessage, error) {
			return a.api.Statistics.Report(ctx, args[0], args[1])
		})

	cmd.AddCommand(dashboard, report, a.spendingCmd())
	return cmd
}

func (a *app) spendingCmd() *cobra.Command {
	var period, format string

	cmd := &cobra.Command{
		Use:   "spending",
		Short: "Export your rentals over a period with their price (clients)",
		Long: `Export your rentals over a period with their price (clients).

The period is MOIS, TRIMESTRE, ANNEE (the current one, from the rental start date) or TOUT.
The file is saved as depenses_{periode}_{date}.{format}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkTableFormat(format); err != nil {
				return err
			}

			raw, err := a.api.Locations.Mine(cmd.Context(), nil)
			if err != nil {
				return err
			}
			items, err := export.FilterPeriod(client.Items(raw), "date_debut", period, timeNow())
			if err != nil {
				return err
			}
			return a.saveTable(cmd, export.SpendingTable(items), "depenses_"+strings.ToLower(period), format)
		},
	}
	cmd.Flags().StringVar(&period, "periode", export.PeriodMonth, "MOIS, TRIMESTRE, ANNEE or TOUT")
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "csv or xlsx")
	return cmd
}

// sessionRole maps the user type of the stored access token to a dashboard role
func (a *app) sessionRole() string {
	switch a.tokens.Status(timeNow()).TypeUtilisateur {
	case client.UserTypeDealer:
		return client.RoleDealer
	case client.UserTypeAdmin:
		return client.RoleAdmin
	default:
		return client.RoleClient
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <type>",
		Short: "Download a server side export (users, concessions, locations, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(client.ExportFormats, format) {
				return fmt.Errorf("format d'export invalide %q (formats : %s)", format, strings.Join(client.ExportFormats, ", "))
			}
			if _, err := a.api.Admin.ExportData(cmd.Context(), args[0], format); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Export %s enregistré dans %s\n", args[0], a.downloads.Path())
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv, xlsx or json")
	return cmd
}
