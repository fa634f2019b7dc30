package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// RegisterRequest is the request body for POST /register.
type RegisterRequest struct {
	TeamName string   `json:"teamName"`
	Members  []string `json:"members"`
}

// RegisterResponse is the response for POST /register.
type RegisterResponse struct {
	Message          string `json:"message"`
	TeamID           string `json:"teamId"`
	AssignedLocation string `json:"assignedLocation"`
}

// TeamIDRequest is the request body for POST /api/get-team-id.
type TeamIDRequest struct {
	TeamName string `json:"teamName"`
}

// TeamIDResponse recovers a team id from its name.
type TeamIDResponse struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
}

// ScanRequest is the request body for POST /scan.
type ScanRequest struct {
	TeamID     string   `json:"teamId"`
	LocationID string   `json:"locationId"`
	DeviceID   string   `json:"deviceId"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

// ScanResponse is the outcome of an accepted or rejected scan.
type ScanResponse struct {
	Result       string `json:"result"`
	Message      string `json:"message"`
	NextLocation string `json:"nextLocation,omitempty"`
	NextClue     string `json:"nextClue,omitempty"`
	Rank         int    `json:"rank,omitempty"`
	Strike       int    `json:"strike,omitempty"`
}

// TargetResponse carries compass coordinates.
type TargetResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TeamStatusResponse is the response for GET /team-status/{teamId}.
type TeamStatusResponse struct {
	Disqualified     bool            `json:"disqualified"`
	CurrentClue      string          `json:"currentClue"`
	AssignedLocation string          `json:"assignedLocation"`
	Rank             int             `json:"rank,omitempty"`
	Target           *TargetResponse `json:"target,omitempty"`
}

func handleRegister(engine *hunt.Engine, lb *leaderboard, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid input")
			return
		}

		team, err := engine.Register(r.Context(), req.TeamName, req.Members)
		if err != nil {
			writeHuntError(w, logger, err)
			return
		}
		lb.invalidate(r.Context())

		writeJSON(w, http.StatusCreated, RegisterResponse{
			Message:          "Team registered!",
			TeamID:           team.ID,
			AssignedLocation: team.AssignedLocation,
		})
	}
}

func handleGetTeamID(engine *hunt.Engine, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TeamIDRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Team Name required")
			return
		}

		team, err := engine.TeamByName(r.Context(), req.TeamName)
		if err != nil {
			writeHuntError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, TeamIDResponse{TeamID: team.ID, TeamName: team.Name})
	}
}

func handleScan(engine *hunt.Engine, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScanRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Missing data")
			return
		}

		res, err := engine.Scan(r.Context(), hunt.ScanRequest{
			TeamID:     req.TeamID,
			LocationID: req.LocationID,
			DeviceID:   req.DeviceID,
			Lat:        req.Lat,
			Lng:        req.Lng,
		})
		if err != nil {
			writeHuntError(w, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, ScanResponse{
			Result:       string(res.Outcome),
			Message:      res.Message,
			NextLocation: res.NextLocation,
			NextClue:     res.NextClue,
			Rank:         res.Rank,
			Strike:       res.Strike,
		})
	}
}

func handleTeamStatus(engine *hunt.Engine, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := engine.Status(r.Context(), chi.URLParam(r, "teamId"))
		if err != nil {
			writeHuntError(w, logger, err)
			return
		}

		resp := TeamStatusResponse{
			Disqualified:     st.Disqualified,
			CurrentClue:      st.CurrentClue,
			AssignedLocation: st.AssignedLocation,
			Rank:             st.Rank,
		}
		if st.Target != nil {
			resp.Target = &TargetResponse{Lat: st.Target.Lat, Lng: st.Target.Lng}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
