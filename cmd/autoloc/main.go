package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/autoloc-sn/autoloc/internal/auth"
	"github.com/autoloc-sn/autoloc/internal/client"
	"github.com/autoloc-sn/autoloc/internal/config"
	"github.com/autoloc-sn/autoloc/internal/download"
	"github.com/autoloc-sn/autoloc/internal/geo"
	"github.com/autoloc-sn/autoloc/internal/logger"
	"github.com/autoloc-sn/autoloc/internal/settings"
	"github.com/autoloc-sn/autoloc/internal/version"
	"github.com/spf13/cobra"

	// use the bundled CA roots when the system has none (minimal containers)
	_ "golang.org/x/crypto/x509roots/fallback"
)

const (
	outputJSON   = "json"
	outputPretty = "pretty"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errorMessage(err))
		os.Exit(1)
	}
}

// app holds the dependencies shared by the subcommands. They are created once the flags are parsed.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	tokens    *auth.TokenStore
	downloads *download.Dir
	settings  *settings.Store
	api       *client.Client

	output string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "autoloc",
		Short: "Command line client for the autoloc vehicle rental marketplace",
		Long: `autoloc talks to the marketplace REST API on behalf of clients, dealers and administrators.

The API address, token and settings files are configured with environment variables
(API_BASE_URL, TOKEN_FILE, SETTINGS_FILE, DOWNLOAD_DIR, LOG_LEVEL, ...).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	v := version.Get()
	cmd.Version = v.String()

	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputJSON, "output format: json (API response as returned) or pretty (indented and highlighted)")

	cmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.tokenCmd(),
		a.usersCmd(),
		a.concessionsCmd(),
		a.locationsCmd(),
		a.clientsCmd(),
		a.demandsCmd(),
		a.favoritesCmd(),
		a.notificationsCmd(),
		a.statsCmd(),
		a.exportCmd(),
		a.geoCmd(),
		a.settingsCmd(),
		a.versionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.output != outputJSON && a.output != outputPretty {
		return fmt.Errorf("invalid --output %q. Valid formats: json, pretty", a.output)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment, cfg.LogFile)

	a.tokens, err = auth.OpenTokenStore(cfg.TokenFile)
	if err != nil {
		return err
	}
	a.downloads = download.NewDir(cfg.DownloadDir)
	a.settings = settings.NewStore(cfg.SettingsFile)

	a.api = client.New(cfg.APIBaseURL,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithTokenSource(a.tokens),
		client.WithDownloader(a.downloads),
		client.WithLogger(a.logger),
	)

	a.logger.Debug("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("api", cfg.APIBaseURL),
		slog.String("version", version.Get().Version),
	)
	return nil
}

// positionProvider returns the configured source of the user's position, nil when none is configured
func (a *app) positionProvider() geo.Provider {
	if lat, lon, ok := a.cfg.FixedPosition(); ok {
		return geo.StaticProvider{Position: geo.Position{Latitude: lat, Longitude: lon}}
	}
	if a.cfg.GeoProviderURL != "" {
		return geo.NewHTTPProvider(a.cfg.GeoProviderURL, &http.Client{Timeout: a.cfg.HTTPTimeout})
	}
	return nil
}

// print writes an API response: verbatim with --output json, indented and highlighted with --output pretty
func (a *app) print(cmd *cobra.Command, raw json.RawMessage) error {
	w := cmd.OutOrStdout()
	if len(raw) == 0 {
		return nil
	}

	if a.output != outputPretty {
		_, err := fmt.Fprintf(w, "%s\n", raw)
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = fmt.Fprintf(w, "%s\n", raw)
		return err
	}
	buf.WriteByte('\n')

	if err := quick.Highlight(w, buf.String(), "json", "terminal256", "monokai"); err != nil {
		a.logger.Debug("highlighting failed", slog.String("error", err.Error()))
		_, err = buf.WriteTo(w)
		return err
	}
	return nil
}

// printValue encodes a value computed locally and prints it like an API response
func (a *app) printValue(cmd *cobra.Command, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return a.print(cmd, data)
}

// call builds a command printing the response of one API operation
func (a *app) call(use, short string, args cobra.PositionalArgs, op func(ctx context.Context, args []string) (json.RawMessage, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := op(cmd.Context(), args)
			if err != nil {
				return err
			}
			return a.print(cmd, raw)
		},
	}
}

// callID is call for operations on a single resource, identified by the first argument
func (a *app) callID(use, short string, op func(ctx context.Context, id int) (json.RawMessage, error)) *cobra.Command {
	return a.call(use, short, cobra.ExactArgs(1), func(ctx context.Context, args []string) (json.RawMessage, error) {
		id, err := parseID(args[0])
		if err != nil {
			return nil, err
		}
		return op(ctx, id)
	})
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("identifiant invalide : %q", s)
	}
	return id, nil
}

// errorMessage returns the text shown to the user for a failed command
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
