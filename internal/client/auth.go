package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

// AuthService handles accounts and JWT sessions.
//
// Register, Login and Refresh store the returned tokens when the client's TokenSource
// also implements TokenSaver.
type AuthService service

// ErrNoRefreshToken is returned by Refresh when no refresh token is stored
var ErrNoRefreshToken = errors.New("aucun refresh token disponible")

var errInvalidRefresh = errors.New("réponse invalide du serveur lors du rafraîchissement de la session")

// PasswordChange is the body of ChangePassword
type PasswordChange struct {
	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword  string `json:"new_password" validate:"required,min=8"`
	NewPassword2 string `json:"new_password2" validate:"required,eqfield=NewPassword"`
}

type sessionResponse struct {
	Tokens *struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	} `json:"tokens"`
}

func (s *AuthService) Register(ctx context.Context, data any) (json.RawMessage, error) {
	raw, err := s.client.post(ctx, "/auth/register/", data)
	if err != nil {
		return nil, err
	}
	s.storeSession(raw)
	return raw, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (json.RawMessage, error) {
	body := struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}{Email: email, Password: password}

	raw, err := s.client.post(ctx, "/auth/login/", body)
	if err != nil {
		return nil, err
	}
	s.storeSession(raw)
	return raw, nil
}

// Logout revokes the refresh token on the server and always clears the stored tokens.
// A failure to reach the server is logged, not returned.
func (s *AuthService) Logout(ctx context.Context) error {
	if saver, ok := s.client.tokens.(TokenSaver); ok {
		if refresh := saver.RefreshToken(); refresh != "" {
			if _, err := s.client.post(ctx, "/auth/logout/", map[string]string{"refresh": refresh}); err != nil {
				s.client.logger.Warn("logout request failed", slog.String("error", AsAPIError(err).LogMessage()))
			}
		}
	}
	if s.client.tokens == nil {
		return nil
	}
	return s.client.tokens.Clear()
}

func (s *AuthService) Profile(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/auth/profile/", nil)
}

func (s *AuthService) ProfileProgress(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/auth/profile/progress/", nil)
}

// UpdateProfile sends a *Form when a photo is uploaded, any other value as JSON
func (s *AuthService) UpdateProfile(ctx context.Context, data any) (json.RawMessage, error) {
	return s.client.patch(ctx, "/auth/profile/", data)
}

func (s *AuthService) ChangePassword(ctx context.Context, change PasswordChange) (json.RawMessage, error) {
	return s.client.post(ctx, "/auth/change-password/", change)
}

// Settings returns the account preferences stored on the server
func (s *AuthService) Settings(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/auth/parametres/", nil)
}

func (s *AuthService) UpdateSettings(ctx context.Context, preferences any) (json.RawMessage, error) {
	return s.client.patch(ctx, "/auth/parametres/", preferences)
}

// Refresh exchanges the stored refresh token for a new access token and returns it.
// When the exchange fails the stored tokens are cleared.
func (s *AuthService) Refresh(ctx context.Context) (string, error) {
	saver, ok := s.client.tokens.(TokenSaver)
	if !ok || saver.RefreshToken() == "" {
		return "", NewRequestError(ErrNoRefreshToken, "refreshing the access token")
	}
	refresh := saver.RefreshToken()

	raw, err := s.client.post(ctx, "/auth/token/refresh/", map[string]string{"refresh": refresh})
	if err != nil {
		s.clearTokens()
		return "", err
	}

	var res struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(raw, &res); err != nil || res.Access == "" {
		s.clearTokens()
		return "", NewRequestError(errInvalidRefresh, "decoding the refresh response")
	}

	// the refresh token is only rotated when the server sends a new one
	if res.Refresh != "" {
		refresh = res.Refresh
	}
	if err := saver.SaveTokens(res.Access, refresh); err != nil {
		return "", NewRequestError(err, "saving the refreshed token")
	}
	return res.Access, nil
}

func (s *AuthService) storeSession(raw json.RawMessage) {
	saver, ok := s.client.tokens.(TokenSaver)
	if !ok {
		return
	}
	var res sessionResponse
	if err := json.Unmarshal(raw, &res); err != nil || res.Tokens == nil {
		return
	}
	if err := saver.SaveTokens(res.Tokens.Access, res.Tokens.Refresh); err != nil {
		s.client.logger.Error("could not save session tokens", slog.String("error", err.Error()))
	}
}

func (s *AuthService) clearTokens() {
	if s.client.tokens == nil {
		return
	}
	if err := s.client.tokens.Clear(); err != nil {
		s.client.logger.Warn("could not clear tokens", slog.String("error", err.Error()))
	}
}
