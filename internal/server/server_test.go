package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/treasurehunt/internal/auth"
	"github.com/playperu/treasurehunt/internal/database"
	"github.com/playperu/treasurehunt/internal/hunt"
	"github.com/playperu/treasurehunt/internal/migrations"
	"github.com/playperu/treasurehunt/internal/store"
)

const testAdminPassword = "let-me-in"

// testClock is a settable clock shared by the engine under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	router *chi.Mux
	store  *store.Store
	engine *hunt.Engine
	broker *Broker
	clock  *testClock
}

func ptr(f float64) *float64 { return &f }

var testLocations = []hunt.Location{
	{Code: "CLG", Name: "College Gate", Hint: "Where it all begins", Lat: ptr(19.0760), Lng: ptr(72.8777)},
	{Code: "L1", Name: "Library", Hint: "Silence is golden", Lat: ptr(19.0800), Lng: ptr(72.8800)},
	{Code: "L2", Name: "Canteen", Hint: "Follow the smell of chai", Lat: ptr(19.0850), Lng: ptr(72.8850)},
	{Code: "L3", Name: "Fountain", Hint: "Water that never rests", Lat: ptr(19.0900), Lng: ptr(72.8900)},
}

func testRules() hunt.Rules {
	rules := hunt.DefaultRules()
	rules.TargetScans = 2
	return rules
}

func newTestEnv(t *testing.T, rules hunt.Rules) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	st := store.New(db)
	for _, loc := range testLocations {
		if err := st.UpsertLocation(ctx, loc); err != nil {
			t.Fatalf("seed location %s: %v", loc.Code, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	clock := &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	broker := NewBroker()
	logger := slog.Default()
	engine := hunt.NewEngine(st, rules, logger,
		hunt.WithClock(clock.Now),
		hunt.WithPicker(func(int) int { return 0 }),
		hunt.WithObserver(Observe(broker, nil)),
	)

	r := chi.NewRouter()
	addRoutes(r, logger, Deps{
		Engine:  engine,
		Queries: st,
		Auth:    auth.NewIssuer("test-secret", hash, time.Hour, st),
		Broker:  broker,
	})

	return &testEnv{router: r, store: st, engine: engine, broker: broker, clock: clock}
}

// do sends a JSON request and decodes a JSON response into out when out
// is non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if out != nil && w.Code < 300 {
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return w
}

func (e *testEnv) register(t *testing.T, name string) string {
	t.Helper()
	var resp RegisterResponse
	w := e.do(t, http.MethodPost, "/register", "", RegisterRequest{TeamName: name, Members: []string{"Asha", "Ravi"}}, &resp)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %q: expected 201, got %d: %s", name, w.Code, w.Body.String())
	}
	return resp.TeamID
}

// scanAt submits a scan standing exactly on the location's coordinates.
func (e *testEnv) scanAt(t *testing.T, teamID, code, device string) (*httptest.ResponseRecorder, ScanResponse) {
	t.Helper()
	req := ScanRequest{TeamID: teamID, LocationID: code, DeviceID: device}
	for _, loc := range testLocations {
		if loc.Code == code {
			req.Lat, req.Lng = loc.Lat, loc.Lng
		}
	}
	var resp ScanResponse
	w := e.do(t, http.MethodPost, "/scan", "", req, &resp)
	return w, resp
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	var resp AdminLoginResponse
	w := e.do(t, http.MethodPost, "/auth/login", "", AdminLoginRequest{Password: testAdminPassword}, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return resp.Token
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Error
}
