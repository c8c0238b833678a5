package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/autoloc-sn/autoloc/internal/client"
	"github.com/autoloc-sn/autoloc/internal/export"
	"github.com/autoloc-sn/autoloc/internal/textutil"
	"github.com/spf13/cobra"
)

func (a *app) locationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locations",
		Aliases: []string{"rentals"},
		Short:   "Rentals, from the client and the dealer side",
	}

	var statut string
	received := a.call("received", "List the rentals of your vehicles (dealers)", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
		params := client.Params{}
		if statut != "" {
			params["statut"] = statut
		}
		return a.api.Locations.Received(ctx, params)
	})
	received.Flags().StringVar(&statut, "statut", "", "only rentals with this status")

	var refuseReason string
	refuse := a.callID("refuse <id>", "Refuse a rental request", func(ctx context.Context, id int) (json.RawMessage, error) {
		return a.api.Locations.Refuse(ctx, id, refuseReason)
	})
	refuse.Flags().StringVar(&refuseReason, "raison", "", "reason sent to the client")

	var departure client.DepartureRecord
	depart := a.callID("depart <id>", "Record the vehicle handover", func(ctx context.Context, id int) (json.RawMessage, error) {
		return a.api.Locations.RecordDeparture(ctx, id, departure)
	})
	depart.Flags().IntVar(&departure.KilometrageDepart, "km", 0, "odometer reading")
	depart.Flags().StringVar(&departure.EtatDepart, "etat", "", "vehicle condition")
	_ = depart.MarkFlagRequired("km")

	var ret client.ReturnRecord
	returned := a.callID("return <id>", "Record the vehicle return", func(ctx context.Context, id int) (json.RawMessage, error) {
		return a.api.Locations.RecordReturn(ctx, id, ret)
	})
	returned.Flags().IntVar(&ret.KilometrageRetour, "km", 0, "odometer reading")
	returned.Flags().StringVar(&ret.EtatRetour, "etat", "", "vehicle condition")
	_ = returned.MarkFlagRequired("km")

	contract := &cobra.Command{
		Use:   "contract <id>",
		Short: "Download the rental contract PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.api.Locations.DownloadContract(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Contrat enregistré dans %s\n", a.downloads.Path())
			return err
		},
	}

	var (
		period client.PriceQuery
		code   string
	)
	price := &cobra.Command{
		Use:   "price",
		Short: "Price a rental",
		Long:  "Price a rental. The response is printed on stdout, the total in FCFA on stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if code != "" {
				period.CodePromo = &code
			}
			raw, err := a.api.Locations.CalculatePrice(cmd.Context(), period)
			if err != nil {
				return err
			}
			if err := a.print(cmd, raw); err != nil {
				return err
			}
			if total := formatAmount(raw, "prix_total"); total != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Total : %s\n", total)
			}
			return nil
		},
	}
	periodFlags(price, &period.VehiculeID, &period.DateDebut, &period.DateFin)
	price.Flags().StringVar(&code, "code", "", "promotion code")

	var check client.AvailabilityQuery
	availability := a.call("availability", "Check that a vehicle is free over a period", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
		return a.api.Locations.CheckAvailability(ctx, check)
	})
	periodFlags(availability, &check.VehiculeID, &check.DateDebut, &check.DateFin)

	cmd.AddCommand(
		a.call("mine", "List your rentals (clients)", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
			return a.api.Locations.Mine(ctx, nil)
		}),
		received,
		a.callID("confirm <id>", "Confirm a rental request", func(ctx context.Context, id int) (json.RawMessage, error) {
			return a.api.Locations.Confirm(ctx, id)
		}),
		refuse,
		depart,
		returned,
		contract,
		price,
		availability,
	)
	return cmd
}

func periodFlags(cmd *cobra.Command, vehicle *int, start, end *string) {
	cmd.Flags().IntVar(vehicle, "vehicule", 0, "vehicle id")
	cmd.Flags().StringVar(start, "debut", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(end, "fin", "", "last day, YYYY-MM-DD")
	for _, name := range []string{"vehicule", "debut", "fin"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

var clientSearchFields = []string{"nom_complet", "email", "telephone", "ville"}

func (a *app) clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "The customers of your dealership (dealers)",
	}

	var (
		search string
		badges bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List your customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := a.api.Clients.Mine(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if search == "" && !badges {
				return a.print(cmd, raw)
			}

			items := textutil.FilterItems(client.Items(raw), search, clientSearchFields...)
			if !badges {
				return a.printValue(cmd, items)
			}
			return a.printValue(cmd, withBadges(items))
		},
	}
	list.Flags().StringVar(&search, "search", "", "keep customers whose name, email, phone or city contains this text (accents ignored)")
	list.Flags().BoolVar(&badges, "badge", false, "add a badge field: VIP, Fidèle, Actif or Nouveau")

	var exportSearch string
	exportClients := a.exportTableCmd("clients", "Export your customers", func(ctx context.Context) (export.Table, error) {
		raw, err := a.api.Clients.Mine(ctx, nil)
		if err != nil {
			return export.Table{}, err
		}
		return export.ClientsTable(textutil.FilterItems(client.Items(raw), exportSearch, clientSearchFields...)), nil
	})
	exportClients.Flags().StringVar(&exportSearch, "search", "", "only export the customers matching this text, like list --search")

	cmd.AddCommand(list, exportClients)
	return cmd
}

// withBadges adds the loyalty badge of each customer, from its nombre_locations
func withBadges(items []json.RawMessage) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		var doc map[string]any
		if err := json.Unmarshal(item, &doc); err != nil {
			continue
		}
		rentals, _ := doc["nombre_locations"].(float64)
		doc["badge"] = export.ClientBadge(int(rentals))
		out = append(out, doc)
	}
	return out
}

func (a *app) demandsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "demands",
		Aliases: []string{"demandes"},
		Short:   "Enquiries sent to your dealership (dealers)",
	}

	var statut, demandType string
	received := a.call("list", "List received enquiries", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
		return a.api.Demands.Received(ctx, demandFilters(statut, demandType))
	})
	received.Flags().StringVar(&statut, "statut", "", "only enquiries with this status")
	received.Flags().StringVar(&demandType, "type", "", "only enquiries of this type")

	var reponse string
	reply := a.callID("reply <id>", "Answer an enquiry", func(ctx context.Context, id int) (json.RawMessage, error) {
		return a.api.Demands.Reply(ctx, id, reponse)
	})
	reply.Flags().StringVar(&reponse, "message", "", "answer sent to the client")
	_ = reply.MarkFlagRequired("message")

	exportDemands := a.exportTableCmd("demandes", "Export received enquiries", func(ctx context.Context) (export.Table, error) {
		raw, err := a.api.Demands.Received(ctx, demandFilters(statut, demandType))
		if err != nil {
			return export.Table{}, err
		}
		return export.DemandsTable(client.Items(raw)), nil
	})
	exportDemands.Flags().StringVar(&statut, "statut", "", "only enquiries with this status")
	exportDemands.Flags().StringVar(&demandType, "type", "", "only enquiries of this type")

	cmd.AddCommand(received, reply, exportDemands)
	return cmd
}

func demandFilters(statut, demandType string) client.Params {
	params := client.Params{}
	if statut != "" {
		params["statut"] = statut
	}
	if demandType != "" {
		params["type_demande"] = demandType
	}
	return params
}

// exportTableCmd writes a table built from API data to the download directory as {prefix}_{date}.{format}
func (a *app) exportTableCmd(prefix, short string, build func(ctx context.Context) (export.Table, error)) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkTableFormat(format); err != nil {
				return err
			}
			table, err := build(cmd.Context())
			if err != nil {
				return err
			}
			return a.saveTable(cmd, table, prefix, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "csv or xlsx")
	return cmd
}

func checkTableFormat(format string) error {
	if format != export.FormatCSV && format != export.FormatXLSX {
		return fmt.Errorf("format d'export invalide %q (formats : csv, xlsx)", format)
	}
	return nil
}

func (a *app) saveTable(cmd *cobra.Command, table export.Table, prefix, format string) error {
	data, err := export.Encode(table, format)
	if err != nil {
		return err
	}

	path, err := a.downloads.Save(export.Filename(prefix, format, timeNow()), data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d lignes exportées dans %s\n", len(table.Rows), path)
	return err
}

func (a *app) favoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"favoris"},
		Short:   "Your favourite vehicles (clients)",
	}

	cmd.AddCommand(
		a.call("list", "List your favourites", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
			return a.api.Favorites.Mine(ctx, nil)
		}),
		a.callID("toggle <vehicule-id>", "Add a vehicle to your favourites, or remove it", func(ctx context.Context, id int) (json.RawMessage, error) {
			return a.api.Favorites.Toggle(ctx, id)
		}),
		a.callID("check <vehicule-id>", "Tell whether a vehicle is in your favourites", func(ctx context.Context, id int) (json.RawMessage, error) {
			return a.api.Favorites.IsFavorite(ctx, id)
		}),
	)
	return cmd
}

func (a *app) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Your notifications",
	}

	var unread bool
	list := a.call("list", "List your notifications", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
		if unread {
			return a.api.Notifications.Unread(ctx)
		}
		return a.api.Notifications.Mine(ctx, nil)
	})
	list.Flags().BoolVar(&unread, "unread", false, "only unread notifications")

	cmd.AddCommand(
		list,
		a.call("count", "Count unread notifications", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
			return a.api.Notifications.CountUnread(ctx)
		}),
		a.callID("read <id>", "Mark a notification as read", func(ctx context.Context, id int) (json.RawMessage, error) {
			return a.api.Notifications.MarkRead(ctx, id)
		}),
		a.call("read-all", "Mark every notification as read", cobra.NoArgs, func(ctx context.Context, _ []string) (json.RawMessage, error) {
			return a.api.Notifications.MarkAllRead(ctx)
		}),
	)
	return cmd
}

// formatAmount renders an amount field of a response in FCFA, empty when the field is missing
func formatAmount(raw json.RawMessage, field string) string {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	value, err := strconv.ParseFloat(textutil.Field(doc, field), 64)
	if err != nil {
		return ""
	}
	return textutil.FormatCurrency(value)
}
