package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signToken creates a token shaped like the API's; the key is irrelevant since signatures are not checked
func signToken(t *testing.T, tokenType string, expiresIn time.Duration) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		UserID:          42,
		TokenType:       tokenType,
		TypeUtilisateur: "CONCESSIONNAIRE",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("failed to create token for test: %v", err)
	}
	return token
}

func TestGetBearerToken(t *testing.T) {
	bearerToken := "token123"

	tests := []struct {
		name                string
		authorizationHeader string
		wantErr             bool
	}{
		{
			name:                "Valid header",
			authorizationHeader: fmt.Sprintf("Bearer %s", bearerToken),
			wantErr:             false,
		},
		{
			name:                "Valid header with extra whitespace",
			authorizationHeader: fmt.Sprintf("Bearer  	%s 	", bearerToken),
			wantErr:             false,
		},
		{
			name:                "Incorrect scheme",
			authorizationHeader: fmt.Sprintf("WrongScheme: %s", bearerToken),
			wantErr:             true,
		},
		{
			name:                "Missing header",
			authorizationHeader: "",
			wantErr:             true,
		},
		{
			name:                "Missing token",
			authorizationHeader: "Bearer",
			wantErr:             true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.authorizationHeader != "" {
				headers.Set("Authorization", tt.authorizationHeader)
			}
			token, err := BearerTokenFromHeader(headers)
			if (err != nil) != tt.wantErr {
				t.Errorf("BearerTokenFromHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && token != bearerToken {
				t.Errorf(`BearerTokenFromHeader() wrong token want "%v", got "%v"`, bearerToken, token)
			}
		})
	}
}

func TestCheckAccessToken(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		token       string
		wantErr     bool
		wantExpired bool
	}{
		{name: "valid access token", token: signToken(t, "access", time.Minute)},
		{name: "expired access token", token: signToken(t, "access", -time.Minute), wantErr: true, wantExpired: true},
		{name: "refresh token", token: signToken(t, "refresh", time.Hour), wantErr: true},
		{name: "not a jwt", token: "abc.def", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := CheckAccessToken(tt.token, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckAccessToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.wantExpired, err != nil && err == ErrTokenExpired)
			if !tt.wantErr {
				assert.Equal(t, 42, claims.UserID)
				assert.Equal(t, "CONCESSIONNAIRE", claims.TypeUtilisateur)
			}
		})
	}
}

func TestClaimsWithoutExpiry(t *testing.T) {
	var c Claims
	assert.True(t, c.ExpiresAt().IsZero())
	assert.False(t, c.Expired(time.Now()))
}

func TestTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".autoloc", "tokens.json")

	store, err := OpenTokenStore(path)
	require.NoError(t, err)
	assert.Empty(t, store.AccessToken())
	assert.False(t, store.Status(time.Now()).LoggedIn)

	access := signToken(t, "access", time.Hour)
	require.NoError(t, store.SaveTokens(access, "refresh-1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenTokenStore(path)
	require.NoError(t, err)
	assert.Equal(t, access, reopened.AccessToken())
	assert.Equal(t, "refresh-1", reopened.RefreshToken())

	status := reopened.Status(time.Now())
	assert.True(t, status.LoggedIn)
	assert.True(t, status.CanRefresh)
	assert.False(t, status.Expired)
	assert.Equal(t, 42, status.UserID)

	require.NoError(t, reopened.Clear())
	assert.Empty(t, reopened.AccessToken())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// clearing twice is not an error
	require.NoError(t, reopened.Clear())
}

func TestTokenStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := OpenTokenStore(path)
	assert.Error(t, err)
}

func TestTokenStoreConcurrentUse(t *testing.T) {
	store, err := OpenTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.SaveTokens(fmt.Sprintf("access-%d", i), "refresh")
		}()
		go func() {
			defer wg.Done()
			_ = store.AccessToken()
		}()
	}
	wg.Wait()

	assert.Contains(t, store.AccessToken(), "access-")
}

func TestRequireAccessToken(t *testing.T) {
	handler := RequireAccessToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Error("claims missing from context")
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]int{"user_id": claims.UserID})
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + signToken(t, "access", time.Minute), wantStatus: http.StatusOK},
		{name: "expired token", header: "Bearer " + signToken(t, "access", -time.Minute), wantStatus: http.StatusUnauthorized},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/profile/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body["detail"])
			}
		})
	}
}
