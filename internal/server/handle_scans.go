package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/playperu/treasurehunt/internal/hunt"
)

const publicScanLimit = 50

// PublicScanItem is one row of the public scan feed.
type PublicScanItem struct {
	TeamName     string `json:"teamName"`
	LocationCode string `json:"locationCode"`
	Result       string `json:"result"`
	ScannedAt    string `json:"scannedAt"`
}

// AdminScanItem is the full scan log row shown to admins.
type AdminScanItem struct {
	ID             string   `json:"id"`
	TeamID         string   `json:"teamId"`
	TeamName       string   `json:"teamName"`
	LocationCode   string   `json:"locationCode"`
	DeviceID       string   `json:"deviceId"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	Result         string   `json:"result"`
	AdminNote      string   `json:"adminNote"`
	DistanceMeters *float64 `json:"distanceMeters"`
	ScannedAt      string   `json:"scannedAt"`
}

func handlePublicScans(q Queries, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scans, err := q.ListScans(r.Context(), publicScanLimit)
		if err != nil {
			logger.Error("listing scans", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		items := make([]PublicScanItem, 0, len(scans))
		for _, s := range scans {
			items = append(items, PublicScanItem{
				TeamName:     s.TeamName,
				LocationCode: s.LocationCode,
				Result:       string(s.Result),
				ScannedAt:    s.ScannedAt.UTC().Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleAdminScans(q Queries, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scans, err := q.ListScans(r.Context(), 0)
		if err != nil {
			logger.Error("listing scans", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		items := make([]AdminScanItem, 0, len(scans))
		for _, s := range scans {
			items = append(items, adminScanItem(s))
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func adminScanItem(s hunt.ScanEvent) AdminScanItem {
	return AdminScanItem{
		ID:             s.ID,
		TeamID:         s.TeamID,
		TeamName:       s.TeamName,
		LocationCode:   s.LocationCode,
		DeviceID:       s.DeviceID,
		Lat:            s.Lat,
		Lng:            s.Lng,
		Result:         string(s.Result),
		AdminNote:      s.AdminNote,
		DistanceMeters: s.DistanceMeters,
		ScannedAt:      s.ScannedAt.UTC().Format(time.RFC3339),
	}
}
