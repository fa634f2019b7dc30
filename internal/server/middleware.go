package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/playperu/treasurehunt/internal/auth"
)

type ctxKey int

const ctxKeyAdmin ctxKey = iota

func adminAuthMiddleware(issuer *auth.Issuer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			tok, err := issuer.Verify(r.Context(), raw)
			if errors.Is(err, auth.ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if err != nil {
				logger.Error("verifying admin token", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(h, "Bearer ")
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != ""
}

func adminFrom(r *http.Request) auth.Token {
	return r.Context().Value(ctxKeyAdmin).(auth.Token)
}
