package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/autoloc-sn/autoloc/internal/apperrors"
	"github.com/autoloc-sn/autoloc/internal/client/clienttest"
	"github.com/autoloc-sn/autoloc/internal/download"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	cleared int
	saved   int
}

func (m *memoryTokens) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *memoryTokens) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

func (m *memoryTokens) SaveTokens(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = access, refresh
	m.saved++
	return nil
}

func (m *memoryTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = "", ""
	m.cleared++
	return nil
}

type memoryDownloads struct {
	files map[string][]byte
	err   error
}

func (m *memoryDownloads) Save(name string, content []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = content
	return name, nil
}

func TestNewDefaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c = New("http://api.example.sn/api///")
	assert.Equal(t, "http://api.example.sn/api", c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = New("http://api.example.sn/api", WithTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
	assert.IsType(t, &download.Dir{}, c.downloads)
}

func TestRequestHeaders(t *testing.T) {
	srv := clienttest.NewServer(t)
	srv.JSON(http.MethodGet, "/auth/profile/", http.StatusOK, `{"id": 1}`)
	srv.JSON(http.MethodPost, "/favoris/", http.StatusCreated, `{"id": 9}`)

	tokens := &memoryTokens{access: "access-token"}
	c := New(srv.URL, WithTokenSource(tokens), WithUserAgent("autoloc-test/1.0"))

	_, err := c.Auth.Profile(context.Background())
	require.NoError(t, err)

	req := srv.LastRequest()
	assert.Equal(t, "Bearer access-token", req.Header.Get("Authorization"))
	assert.Equal(t, "autoloc-test/1.0", req.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
	assert.Empty(t, req.Header.Get("Content-Type"), "requests without a body have no content type")

	_, err = c.Favorites.Add(context.Background(), 12)
	require.NoError(t, err)
	req = srv.LastRequest()
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"vehicule_id": 12}`, string(req.Body))
}

func TestNoAuthorizationWithoutToken(t *testing.T) {
	srv := clienttest.NewServer(t)
	srv.JSON(http.MethodGet, "/vehicules/", http.StatusOK, `[]`)

	c := New(srv.URL, WithTokenSource(&memoryTokens{}))
	_, err := c.Vehicles.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, srv.LastRequest().Header.Get("Authorization"))
}

func TestUnauthorizedClearsTokens(t *testing.T) {
	srv := clienttest.NewServer(t)
	srv.Authenticated(http.MethodGet, "/auth/profile/", http.StatusOK, `{"id": 1}`)

	tokens := &memoryTokens{access: "not-a-jwt", refresh: "refresh"}
	c := New(srv.URL, WithTokenSource(tokens))

	_, err := c.Auth.Profile(context.Background())
	apiErr := AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, apperrors.KindServer, apiErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Le jeton n'est valide pour aucun type de jeton.", apiErr.Message)
	assert.Equal(t, 1, tokens.cleared)
	assert.Empty(t, tokens.AccessToken())
}

func TestResponseBodyReturnedVerbatim(t *testing.T) {
	body := `{"count": 2, "next": null, "previous": null, "results": [{"id": 1, "type_utilisateur": "CLIENT"}, {"id": 2, "type_utilisateur": "CLIENT"}]}`

	srv := clienttest.NewServer(t)
	srv.JSON(http.MethodGet, "/auth/admin/users/", http.StatusOK, body)

	c := New(srv.URL)
	raw, err := c.Admin.ListUsers(context.Background(), Params{"type_utilisateur": "CLIENT"})
	require.NoError(t, err)

	assert.Equal(t, body, string(raw))
	req := srv.LastRequest()
	assert.Equal(t, "/auth/admin/users/", req.Path)
	assert.Equal(t, "CLIENT", req.Query.Get("type_utilisateur"))
}

func TestEmptySuccessBody(t *testing.T) {
	srv := clienttest.NewServer(t)
	srv.Handle(http.MethodDelete, "/favoris/{id}/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := New(srv.URL)
	raw, err := c.Favorites.Remove(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestServerErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "detail field",
			status:      http.StatusBadRequest,
			body:        `{"detail": "Concession déjà validée"}`,
			wantMessage: "Concession déjà validée",
		},
		{
			name:        "field errors",
			status:      http.StatusBadRequest,
			body:        `{"email": ["Ce champ est obligatoire."], "telephone": ["Numéro invalide.", "Trop court."]}`,
			wantMessage: "email: Ce champ est obligatoire.\ntelephone: Numéro invalide., Trop court.",
		},
		{
			name:        "message field",
			status:      http.StatusConflict,
			body:        `{"message": "Véhicule indisponible"}`,
			wantMessage: "Véhicule indisponible",
		},
		{
			name:        "html error page",
			status:      http.StatusInternalServerError,
			body:        `<html>Server Error</html>`,
			wantMessage: apperrors.StatusMessage(http.StatusInternalServerError),
		},
		{
			name:        "empty body",
			status:      http.StatusForbidden,
			body:        ``,
			wantMessage: apperrors.StatusMessage(http.StatusForbidden),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := clienttest.NewServer(t)
			srv.JSON(http.MethodPost, "/concessions/{id}/valider/", tt.status, tt.body)

			c := New(srv.URL)
			raw, err := c.Concessions.Validate(context.Background(), 42)
			assert.Nil(t, raw)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, apperrors.KindServer, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantMessage, err.Error())
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := clienttest.NewServer(t)
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.Locations.Mine(context.Background(), nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apperrors.KindNetwork, apiErr.Kind)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, "Impossible de contacter le serveur. Vérifiez votre connexion.", apiErr.Message)
	assert.NotNil(t, apiErr.Unwrap())
}

func TestTimeoutIsNetworkError(t *testing.T) {
	srv := clienttest.NewServer(t)
	srv.Handle(http.MethodGet, "/locations/en-cours/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})

	c := New(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Locations.Ongoing(context.Background())

	apiErr := AsAPIError(err)
	assert.Equal(t, apperrors.KindNetwork, apiErr.Kind)
	assert.Equal(t, apperrors.StatusNoResponse, apiErr.Status)
}

func TestRequestErrors(t *testing.T) {
	srv := clienttest.NewServer(t)
	c := New(srv.URL)

	t.Run("invalid payload is not sent", func(t *testing.T) {
		_, err := c.Locations.RecordDeparture(context.Background(), 5, DepartureRecord{KilometrageDepart: -10, EtatDepart: "bon"})

		apiErr := AsAPIError(err)
		assert.Equal(t, apperrors.KindRequest, apiErr.Kind)
		assert.Equal(t, apperrors.StatusNotSent, apiErr.Status)
		assert.Contains(t, apiErr.Message, "kilometrage_depart")
		assert.Empty(t, srv.Requests())
	})

	t.Run("unencodable body", func(t *testing.T) {
		_, err := c.Configuration.CreateRegion(context.Background(), map[string]any{"nom": make(chan int)})

		apiErr := AsAPIError(err)
		assert.Equal(t, apperrors.KindRequest, apiErr.Kind)
		assert.Equal(t, -1, apiErr.Status)
		assert.NotEmpty(t, apiErr.Message)
	})

	t.Run("bad base url", func(t *testing.T) {
		bad := New("http://[::1]:namedport")
		_, err := bad.Vehicles.List(context.Background(), nil)
		assert.Equal(t, apperrors.KindRequest, AsAPIError(err).Kind)
	})
}

func TestDownload(t *testing.T) {
	pdf := []byte("%PDF-1.7 contrat")

	srv := clienttest.NewServer(t)
	srv.Binary(http.MethodGet, "/locations/{id}/telecharger-contrat/", "application/pdf", pdf)

	downloads := &memoryDownloads{}
	c := New(srv.URL, WithDownloader(downloads))

	ok, err := c.Locations.DownloadContract(context.Background(), 17)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pdf, downloads.files["contrat-location-17.pdf"])
	assert.Equal(t, "*/*", srv.LastRequest().Header.Get("Accept"))
}

func TestDownloadFailures(t *testing.T) {
	srv := clienttest.NewServer(t)
	srv.JSON(http.MethodGet, "/locations/{id}/telecharger-contrat/", http.StatusNotFound, `{"detail": "Contrat non généré."}`)
	srv.Binary(http.MethodGet, "/admin/export/{type}/", "text/csv", []byte("a,b"))

	t.Run("server error", func(t *testing.T) {
		c := New(srv.URL, WithDownloader(&memoryDownloads{}))
		ok, err := c.Locations.DownloadContract(context.Background(), 1)
		assert.False(t, ok)
		assert.Equal(t, "Contrat non généré.", AsAPIError(err).Message)
	})

	t.Run("local write failure", func(t *testing.T) {
		c := New(srv.URL, WithDownloader(&memoryDownloads{err: errors.New("disque plein")}))
		ok, err := c.Admin.ExportData(context.Background(), "users", "csv")
		assert.False(t, ok)
		apiErr := AsAPIError(err)
		assert.Equal(t, apperrors.KindRequest, apiErr.Kind)
		assert.Equal(t, "disque plein", apiErr.Message)
	})
}

func TestExportDataFilename(t *testing.T) {
	srv := clienttest.NewServer(t)
	srv.Binary(http.MethodGet, "/admin/export/{type}/", "application/octet-stream", []byte("data"))

	downloads := &memoryDownloads{}
	c := New(srv.URL, WithDownloader(downloads))

	before := time.Now().UnixMilli()
	ok, err := c.Admin.ExportData(context.Background(), "locations", "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "csv", srv.LastRequest().Query.Get("format"))

	require.Len(t, downloads.files, 1)
	for name := range downloads.files {
		assert.True(t, strings.HasPrefix(name, "export-locations-"), name)
		assert.True(t, strings.HasSuffix(name, ".csv"), name)

		millis, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "export-locations-"), ".csv"), 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, millis, before)
	}
}

func TestMultipartForm(t *testing.T) {
	srv := clienttest.NewServer(t)
	var (
		fields map[string]string
		files  map[string][]string
	)
	srv.Handle(http.MethodPost, "/vehicules/{id}/ajouter_images/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		files = map[string][]string{}
		for k, headers := range r.MultipartForm.File {
			for _, h := range headers {
				f, _ := h.Open()
				content, _ := io.ReadAll(f)
				f.Close()
				files[k] = append(files[k], h.Filename+"="+string(content))
			}
		}
		clienttest.WriteJSON(w, http.StatusOK, `{"images": 2}`)
	})

	c := New(srv.URL)
	_, err := c.Vehicles.AddImages(context.Background(), 4, []VehicleImage{
		{Filename: "avant.jpg", Content: bytes.NewReader([]byte("front"))},
		{Filename: "arriere.jpg", Content: bytes.NewReader([]byte("back"))},
	})
	require.NoError(t, err)

	assert.Empty(t, fields)
	assert.Equal(t, []string{"avant.jpg=front", "arriere.jpg=back"}, files["images"])
	assert.True(t, strings.HasPrefix(srv.LastRequest().Header.Get("Content-Type"), "multipart/form-data; boundary="))
}

func TestRequestLogging(t *testing.T) {
	srv := clienttest.NewServer(t)
	srv.JSON(http.MethodGet, "/regions/", http.StatusOK, `[]`)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := New(srv.URL, WithLogger(logger))
	_, err := c.Configuration.ListRegions(context.Background())
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "/regions/", entry["path"])
	assert.Equal(t, float64(200), entry["status"])
}
