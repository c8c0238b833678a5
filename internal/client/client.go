// Package client is the API client layer between autoloc front ends and the marketplace REST backend.
//
// Every operation returns the decoded response body verbatim (see Items and DecodePage for list responses)
// or an *APIError whose Message can be shown directly to the end user.
// Operations are grouped by backend resource family, e.g.
//
//	c := client.New("http://localhost:8000/api", client.WithTokenSource(tokens))
//	raw, err := c.Concessions.Validate(ctx, 42)
package client

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/autoloc-sn/autoloc/internal/download"
	"github.com/autoloc-sn/autoloc/internal/logger"
	"github.com/autoloc-sn/autoloc/internal/version"
	"github.com/go-playground/validator/v10"
)

// DefaultBaseURL is the address of a local development backend
const DefaultBaseURL = "http://localhost:8000/api"

// DefaultTimeout applies to every request unless WithTimeout or WithHTTPClient is used
const DefaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token sent with each request.
// Clear is called when the API rejects the token (401).
type TokenSource interface {
	AccessToken() string
	Clear() error
}

// TokenSaver is implemented by token sources that can store the tokens returned by login and refresh
type TokenSaver interface {
	SaveTokens(access, refresh string) error
	RefreshToken() string
}

// Downloader delivers binary payloads (contracts, exports) to the user as named files.
type Downloader interface {
	Save(name string, content []byte) (string, error)
}

// Client handles communication with the marketplace API
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tokens     TokenSource
	downloads  Downloader
	logger     *slog.Logger
	userAgent  string
	validate   *validator.Validate

	Admin         *AdminService
	Auth          *AuthService
	Clients       *ClientService
	Concessions   *ConcessionService
	Configuration *ConfigurationService
	Demands       *DemandService
	Favorites     *FavoriteService
	History       *HistoryService
	Locations     *LocationService
	Notifications *NotificationService
	Promotions    *PromotionService
	Reviews       *ReviewService
	Statistics    *StatisticsService
	Vehicles      *VehicleService
}

type service struct {
	client *Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (the timeout and logging transport are then the caller's responsibility)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTokenSource sets where the bearer token comes from
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithDownloader sets where downloaded files are delivered (default: the current directory)
func WithDownloader(d Downloader) Option {
	return func(c *Client) {
		c.downloads = d
	}
}

// WithLogger sets the logger used for request logs
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the API at baseURL (DefaultBaseURL when empty)
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   DefaultTimeout,
		userAgent: version.UserAgent(),
		validate:  newValidator(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Discard()
	}
	if c.downloads == nil {
		c.downloads = download.NewDir(".")
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: logger.NewTransport(nil, c.logger),
		}
	}

	c.Admin = &AdminService{client: c}
	c.Auth = &AuthService{client: c}
	c.Clients = &ClientService{client: c}
	c.Concessions = &ConcessionService{client: c}
	c.Configuration = &ConfigurationService{client: c}
	c.Demands = &DemandService{client: c}
	c.Favorites = &FavoriteService{client: c}
	c.History = &HistoryService{client: c}
	c.Locations = &LocationService{client: c}
	c.Notifications = &NotificationService{client: c}
	c.Promotions = &PromotionService{client: c}
	c.Reviews = &ReviewService{client: c}
	c.Statistics = &StatisticsService{client: c}
	c.Vehicles = &VehicleService{client: c}

	return c
}

// BaseURL returns the API address the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}
