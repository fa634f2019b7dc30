package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/playperu/treasurehunt/internal/auth"
	"github.com/playperu/treasurehunt/internal/handler/health"
	"github.com/playperu/treasurehunt/internal/hunt"
)

// Queries are the read and maintenance calls the admin and display
// endpoints make directly against the store.
type Queries interface {
	ListScans(ctx context.Context, limit int) ([]hunt.ScanEvent, error)
	ListLocations(ctx context.Context) ([]hunt.Location, error)
	ListBans(ctx context.Context) ([]hunt.BannedDevice, error)
	UpdateLocationCoords(ctx context.Context, code string, lat, lng float64) error
}

// LeaderboardCache stores the rendered leaderboard. *cache.Leaderboard
// implements it.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Set(ctx context.Context, data []byte) error
	Invalidate(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Engine  *hunt.Engine
	Queries Queries
	Auth    *auth.Issuer
	Broker  *Broker
	// Cache is optional.
	Cache     LeaderboardCache
	Checks    map[string]health.Checker
	SPADir    string
	RateLimit RateLimit
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func New(addr string, logger *slog.Logger, deps Deps) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	addRoutes(r, logger, deps)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
