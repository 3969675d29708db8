package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/s21platform/group-chat-service/internal/config"
	"github.com/s21platform/group-chat-service/internal/model"
)

type AccessVerifier interface {
	ValidateAccessToken(tokenString string) (model.Identity, time.Time, error)
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func AuthInterceptorHTTP(next http.Handler, verifier AccessVerifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		identity, _, err := verifier.ValidateAccessToken(token)
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), config.KeyUUID, identity.UserID)
		ctx = context.WithValue(ctx, config.KeyPremium, identity.Premium)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
