package server

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// AdminTeamItem is one row of GET /admin/teams.
type AdminTeamItem struct {
	TeamID             string   `json:"teamId"`
	TeamName           string   `json:"teamName"`
	Members            []string `json:"members"`
	AssignedLocation   string   `json:"assignedLocation"`
	RegisteredDeviceID string   `json:"registeredDeviceId,omitempty"`
	Disqualified       bool     `json:"disqualified"`
	CreatedAt          string   `json:"createdAt"`
}

// AdminLocationItem is one row of GET /admin/locations.
type AdminLocationItem struct {
	LocationCode string   `json:"locationCode"`
	LocationName string   `json:"locationName"`
	LocationHint string   `json:"locationHint"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// AdminBanItem is one row of GET /admin/bans.
type AdminBanItem struct {
	DeviceID string `json:"deviceId"`
	Reason   string `json:"reason"`
	BannedAt string `json:"bannedAt"`
}

// AdminLocationRequest is the request body for PUT /admin/location.
type AdminLocationRequest struct {
	LocationCode string   `json:"locationCode"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

// AdminDisqualifyRequest is the request body for POST /admin/disqualify.
// Status defaults to true.
type AdminDisqualifyRequest struct {
	TeamID string `json:"teamId"`
	Status *bool  `json:"status"`
}

// AdminTeamLocationRequest is the request body for PUT /admin/team/location.
type AdminTeamLocationRequest struct {
	TeamID       string `json:"teamId"`
	LocationCode string `json:"locationCode"`
}

// AdminProgressRequest is the request body for POST /admin/team/progress.
type AdminProgressRequest struct {
	TeamID string `json:"teamId"`
	Action string `json:"action" enum:"reset,complete"`
}

// AdminBanRequest is the request body for POST /admin/ban.
type AdminBanRequest struct {
	DeviceID string `json:"deviceId"`
	Reason   string `json:"reason"`
}

func handleAdminTeams(engine *hunt.Engine, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := engine.Teams(r.Context())
		if err != nil {
			writeHuntError(w, logger, err)
			return
		}

		items := make([]AdminTeamItem, 0, len(teams))
		for _, t := range teams {
			members := t.Members
			if members == nil {
				members = []string{}
			}
			items = append(items, AdminTeamItem{
				TeamID:             t.ID,
				TeamName:           t.Name,
				Members:            members,
				AssignedLocation:   t.AssignedLocation,
				RegisteredDeviceID: t.RegisteredDeviceID,
				Disqualified:       t.Disqualified,
				CreatedAt:          t.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleAdminLocations(q Queries, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		locs, err := q.ListLocations(r.Context())
		if err != nil {
			logger.Error("listing locations", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		items := make([]AdminLocationItem, 0, len(locs))
		for _, l := range locs {
			items = append(items, AdminLocationItem{
				LocationCode: l.Code,
				LocationName: l.Name,
				LocationHint: l.Hint,
				Lat:          l.Lat,
				Lng:          l.Lng,
			})
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleAdminUpdateLocation(q Queries, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLocationRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		code := strings.TrimSpace(req.LocationCode)
		if code == "" || req.Lat == nil || req.Lng == nil {
			writeError(w, http.StatusBadRequest, "Missing data")
			return
		}
		if !validCoord(*req.Lat, *req.Lng) {
			writeError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}

		err := q.UpdateLocationCoords(r.Context(), code, *req.Lat, *req.Lng)
		if errors.Is(err, hunt.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Location not found")
			return
		}
		if err != nil {
			logger.Error("updating location", "error", err, "location", code)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("location coordinates updated", "location", code, "lat", *req.Lat, "lng", *req.Lng)
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Location updated"})
	}
}

// validCoord rejects out-of-range values and the 0 sentinel that marks a
// missing fix.
func validCoord(lat, lng float64) bool {
	switch {
	case math.IsNaN(lat) || math.IsNaN(lng):
		return false
	case lat == 0 || lng == 0:
		return false
	case lat < -90 || lat > 90:
		return false
	case lng < -180 || lng > 180:
		return false
	}
	return true
}

func handleAdminDisqualify(engine *hunt.Engine, lb *leaderboard, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminDisqualifyRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		status := true
		if req.Status != nil {
			status = *req.Status
		}
		if err := engine.SetDisqualified(r.Context(), req.TeamID, status); err != nil {
			writeHuntError(w, logger, err)
			return
		}
		lb.invalidate(r.Context())

		msg := "Team disqualified"
		if !status {
			msg = "Team requalified"
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
	}
}

func handleAdminTeamLocation(engine *hunt.Engine, lb *leaderboard, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminTeamLocationRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := engine.OverrideLocation(r.Context(), req.TeamID, req.LocationCode); err != nil {
			writeHuntError(w, logger, err)
			return
		}
		lb.invalidate(r.Context())
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Team location updated"})
	}
}

func handleAdminTeamProgress(engine *hunt.Engine, lb *leaderboard, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminProgressRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		switch req.Action {
		case "reset":
			if err := engine.ResetProgress(r.Context(), req.TeamID); err != nil {
				writeHuntError(w, logger, err)
				return
			}
			lb.invalidate(r.Context())
			writeJSON(w, http.StatusOK, MessageResponse{Message: "Team progress reset"})
		case "complete":
			res, err := engine.Complete(r.Context(), req.TeamID)
			if err != nil {
				writeHuntError(w, logger, err)
				return
			}
			lb.invalidate(r.Context())
			writeJSON(w, http.StatusOK, ScanResponse{
				Result:  string(res.Outcome),
				Message: res.Message,
				Rank:    res.Rank,
			})
		default:
			writeError(w, http.StatusBadRequest, "action must be reset or complete")
		}
	}
}

func handleAdminDeleteTeam(engine *hunt.Engine, lb *leaderboard, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := engine.DeleteTeam(r.Context(), chi.URLParam(r, "teamId")); err != nil {
			writeHuntError(w, logger, err)
			return
		}
		lb.invalidate(r.Context())
		writeJSON(w, http.StatusOK, MessageResponse{Message: "Team deleted"})
	}
}

func handleAdminBans(q Queries, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bans, err := q.ListBans(r.Context())
		if err != nil {
			logger.Error("listing bans", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		items := make([]AdminBanItem, 0, len(bans))
		for _, b := range bans {
			items = append(items, AdminBanItem{
				DeviceID: b.DeviceID,
				Reason:   b.Reason,
				BannedAt: b.BannedAt.UTC().Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleAdminBan(engine *hunt.Engine, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminBanRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := engine.Ban(r.Context(), req.DeviceID, req.Reason); err != nil {
			writeHuntError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, MessageResponse{Message: "Device banned"})
	}
}
