package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

type contextKey struct{}

// ClaimsFromContext returns the claims stored by RequireAccessToken
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(Claims)
	return claims, ok
}

// RequireAccessToken rejects requests without a current access token with the 401 body the API sends:
//
//	{"detail": "...", "code": "token_not_valid"}
//
// Token signatures are not verified.
func RequireAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearerToken, err := BearerTokenFromHeader(r.Header)
		if err != nil {
			unauthorized(w, "Informations d'authentification non fournies.", "not_authenticated")
			return
		}

		claims, err := CheckAccessToken(bearerToken, time.Now())
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				unauthorized(w, "Le jeton a expiré.", "token_not_valid")
				return
			}
			unauthorized(w, "Le jeton n'est valide pour aucun type de jeton.", "token_not_valid")
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, detail, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail, "code": code})
}
