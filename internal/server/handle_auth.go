package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/playperu/treasurehunt/internal/auth"
)

// AdminLoginRequest is the request body for POST /auth/login.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginResponse carries the bearer token for admin routes.
type AdminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// MessageResponse is returned by endpoints with nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

func handleAdminLogin(issuer *auth.Issuer, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Password == "" {
			writeError(w, http.StatusBadRequest, "password is required")
			return
		}

		tok, err := issuer.Login(req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Warn("admin login failed", "remote", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			logger.Error("issuing admin token", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, AdminLoginResponse{
			Token:     tok.Value,
			ExpiresAt: tok.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}

func handleAdminLogout(issuer *auth.Issuer, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := issuer.Revoke(r.Context(), adminFrom(r)); err != nil {
			logger.Error("revoking admin token", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
	}
}
