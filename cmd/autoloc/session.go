package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/autoloc-sn/autoloc/internal/geo"
	"github.com/autoloc-sn/autoloc/internal/settings"
	"github.com/autoloc-sn/autoloc/internal/version"
	"github.com/spf13/cobra"
)

// timeNow is replaced in tests
var timeNow = time.Now

func (a *app) loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store the session tokens",
		Long: `Log in and store the session tokens in TOKEN_FILE.

The password is read from --password or the AUTOLOC_PASSWORD environment variable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("AUTOLOC_PASSWORD")
			}
			if password == "" {
				return errors.New("mot de passe manquant (--password ou AUTOLOC_PASSWORD)")
			}

			raw, err := a.api.Auth.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			// the tokens are stored, only the account is shown
			var res struct {
				User json.RawMessage `json:"user"`
			}
			if err := json.Unmarshal(raw, &res); err != nil || len(res.User) == 0 {
				return a.printValue(cmd, a.tokens.Status(timeNow()))
			}
			return a.print(cmd, res.User)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and remove the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.api.Auth.Logout(cmd.Context())
		},
	}
}

func (a *app) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect and refresh the stored session",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show who is logged in and when the access token expires",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.printValue(cmd, a.tokens.Status(timeNow()))
			},
		},
		&cobra.Command{
			Use:   "refresh",
			Short: "Exchange the refresh token for a new access token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if _, err := a.api.Auth.Refresh(cmd.Context()); err != nil {
					return err
				}
				return a.printValue(cmd, a.tokens.Status(timeNow()))
			},
		},
	)
	return cmd
}

func (a *app) geoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geo",
		Short: "Position and distances",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "position",
			Short: "Show your current position",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				pos, err := geo.GetUserPosition(cmd.Context(), a.positionProvider())
				if err != nil {
					return err
				}
				return a.printValue(cmd, pos)
			},
		},
		&cobra.Command{
			Use:     "distance <lat1> <lon1> <lat2> <lon2>",
			Short:   "Great circle distance in km, rounded to 0.1 km",
			Example: "  autoloc geo distance -- 14.6928 -17.4467 14.7910 -16.9359",
			Args:    cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				coords := make([]float64, len(args))
				for i, arg := range args {
					f, err := strconv.ParseFloat(arg, 64)
					if err != nil {
						return fmt.Errorf("coordonnée invalide : %q", arg)
					}
					coords[i] = f
				}
				return a.printValue(cmd, map[string]float64{
					"distance_km": geo.CalculateDistance(coords[0], coords[1], coords[2], coords[3]),
				})
			},
		},
	)
	return cmd
}

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"parametres"},
		Short:   "Notification and display preferences",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show your preferences",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				prefs, err := a.settings.Load()
				if err != nil {
					return err
				}
				return a.printValue(cmd, prefs)
			},
		},
		&cobra.Command{
			Use:       "set <key> <value>",
			Short:     "Change one preference",
			Args:      cobra.ExactArgs(2),
			ValidArgs: settings.Keys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				prefs, err := a.settings.Load()
				if err != nil {
					return err
				}
				prefs, err = prefs.Set(args[0], args[1])
				if err != nil {
					return err
				}
				if err := a.settings.Save(prefs); err != nil {
					return err
				}
				return a.printValue(cmd, prefs)
			},
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Send your preferences to your account",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				prefs, err := a.settings.Load()
				if err != nil {
					return err
				}
				raw, err := a.api.Auth.UpdateSettings(cmd.Context(), prefs)
				if err != nil {
					return err
				}
				return a.print(cmd, raw)
			},
		},
	)
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// no configuration needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := json.Marshal(version.Get())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
			return err
		},
	}
}
