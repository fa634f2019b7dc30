package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/treasurehunt/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	lb := newLeaderboard(deps.Engine, deps.Cache, logger)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Treasure Hunt API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())

	limited := r.With(rateLimitMiddleware(deps.RateLimit, logger))

	// Player routes. The team id is the player's credential.
	limited.Post("/register", handleRegister(deps.Engine, lb, logger))
	limited.Post("/api/get-team-id", handleGetTeamID(deps.Engine, logger))
	limited.Post("/scan", handleScan(deps.Engine, logger))
	r.Get("/team-status/{teamId}", handleTeamStatus(deps.Engine, logger))
	r.Get("/teams/{teamId}/events", handleEvents(deps.Engine, deps.Broker, logger))

	// Display boards.
	r.Get("/leaderboard", handleLeaderboard(lb, logger))
	r.Get("/public/scans", handlePublicScans(deps.Queries, logger))
	r.Get("/ws/feed", handleFeed(deps.Broker, logger))

	limited.Post("/auth/login", handleAdminLogin(deps.Auth, logger))

	r.Group(func(r chi.Router) {
		r.Use(adminAuthMiddleware(deps.Auth, logger))
		r.Post("/auth/logout", handleAdminLogout(deps.Auth, logger))

		r.Route("/admin", func(r chi.Router) {
			r.Get("/teams", handleAdminTeams(deps.Engine, logger))
			r.Get("/scans", handleAdminScans(deps.Queries, logger))
			r.Get("/locations", handleAdminLocations(deps.Queries, logger))
			r.Put("/location", handleAdminUpdateLocation(deps.Queries, logger))
			r.Post("/disqualify", handleAdminDisqualify(deps.Engine, lb, logger))
			r.Put("/team/location", handleAdminTeamLocation(deps.Engine, lb, logger))
			r.Post("/team/progress", handleAdminTeamProgress(deps.Engine, lb, logger))
			r.Delete("/team/{teamId}", handleAdminDeleteTeam(deps.Engine, lb, logger))
			r.Get("/bans", handleAdminBans(deps.Queries, logger))
			r.Post("/ban", handleAdminBan(deps.Engine, logger))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
