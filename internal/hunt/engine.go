package hunt

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notice is emitted after every recorded scan, every finish and every
// time-limit disqualification.
type Notice struct {
	Kind     string // "scan", "finished" or "disqualified"
	TeamID   string
	Location string
	Result   Result
	Note     string
	Rank     int
	At       time.Time
}

// Observer receives notices synchronously; it must not block.
type Observer func(ctx context.Context, n Notice)

type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPicker overrides the uniform random choice of the next waypoint.
func WithPicker(pick func(n int) int) Option {
	return func(e *Engine) { e.pick = pick }
}

// WithTeamIDs overrides the TEAM-XXXX id generator.
func WithTeamIDs(gen func() string) Option {
	return func(e *Engine) { e.newTeamID = gen }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// Engine runs the scan state machine and the team lifecycle.
type Engine struct {
	store     Store
	rules     Rules
	logger    *slog.Logger
	now       func() time.Time
	pick      func(n int) int
	newTeamID func() string
	observers []Observer

	guard    *DeviceGuard
	timer    *TimeLimitPolicy
	progress *Progression
	locks    keyedMutex
}

func NewEngine(store Store, rules Rules, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		rules:     rules,
		logger:    logger,
		now:       time.Now,
		pick:      rand.IntN,
		newTeamID: randomTeamID,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.guard = NewDeviceGuard(store, logger)
	e.guard.record = e.record
	e.timer = NewTimeLimitPolicy(store, rules, e.now, logger)
	e.timer.onDisqualify = func(ctx context.Context, teamID, reason string) {
		e.notify(ctx, Notice{Kind: "disqualified", TeamID: teamID, Note: reason, At: e.now()})
	}
	e.progress = NewProgression(store, rules, e.pick, logger)
	e.progress.onFinish = func(ctx context.Context, teamID string, rank int) {
		e.notify(ctx, Notice{Kind: "finished", TeamID: teamID, Rank: rank, At: e.now()})
	}
	return e
}

func (e *Engine) Rules() Rules { return e.rules }

// record persists ev and notifies observers.
func (e *Engine) record(ctx context.Context, ev ScanEvent) error {
	if err := e.store.InsertScan(ctx, ev); err != nil {
		return err
	}
	e.notifyScan(ctx, ev)
	return nil
}

func (e *Engine) notifyScan(ctx context.Context, ev ScanEvent) {
	e.notify(ctx, Notice{
		Kind:     "scan",
		TeamID:   ev.TeamID,
		Location: ev.LocationCode,
		Result:   ev.Result,
		Note:     ev.AdminNote,
		At:       ev.ScannedAt,
	})
}

func (e *Engine) notify(ctx context.Context, n Notice) {
	for _, o := range e.observers {
		o(ctx, n)
	}
}

// Register creates a team assigned to the start waypoint.
func (e *Engine) Register(ctx context.Context, name string, members []string) (Team, error) {
	name = strings.TrimSpace(name)
	var roster []string
	for _, m := range members {
		if m = strings.TrimSpace(m); m != "" {
			roster = append(roster, m)
		}
	}
	if name == "" || len(roster) == 0 {
		return Team{}, badRequest("Invalid input")
	}

	for range 5 {
		t := Team{
			ID:               e.newTeamID(),
			Name:             name,
			Members:          roster,
			AssignedLocation: e.rules.StartLocation,
			CreatedAt:        e.now(),
		}
		err := e.store.CreateTeam(ctx, t)
		switch {
		case err == nil:
			e.logger.Info("team registered", "team_id", t.ID, "team_name", t.Name, "members", len(roster))
			return t, nil
		case errors.Is(err, ErrNameTaken):
			return Team{}, conflict("Team name already taken (Case Insensitive).")
		case errors.Is(err, ErrIDTaken):
			continue
		default:
			return Team{}, internal("registering team", err)
		}
	}
	return Team{}, internal("registering team", errors.New("could not allocate a team id"))
}

// TeamByName resolves a team case-insensitively.
func (e *Engine) TeamByName(ctx context.Context, name string) (Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Team{}, badRequest("Team Name required")
	}
	t, err := e.store.TeamByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return Team{}, notFound("Team not found. Please register first.")
	}
	if err != nil {
		return Team{}, internal("looking up team", err)
	}
	return t, nil
}

// TeamStatus is what a player's device polls.
type TeamStatus struct {
	Disqualified     bool
	CurrentClue      string
	AssignedLocation string
	Rank             int
	// Target is set only when the compass is enabled and the assigned
	// location has coordinates.
	Target *Coord
}

func (e *Engine) Status(ctx context.Context, teamID string) (TeamStatus, error) {
	team, err := e.loadTeam(ctx, teamID)
	if err != nil {
		return TeamStatus{}, err
	}
	tc, err := e.timer.Check(ctx, &team)
	if err != nil {
		return TeamStatus{}, err
	}

	st := TeamStatus{
		Disqualified:     team.Disqualified || tc.Expired,
		CurrentClue:      "Unknown Objective",
		AssignedLocation: team.AssignedLocation,
	}

	if team.AssignedLocation == e.rules.FinishLocation {
		st.CurrentClue = "MISSION COMPLETE! Return to the start point for debriefing."
		rank, err := e.progress.rankOf(ctx, team.ID)
		if err != nil {
			return TeamStatus{}, err
		}
		st.Rank = rank
		return st, nil
	}

	loc, err := e.store.Location(ctx, team.AssignedLocation)
	switch {
	case errors.Is(err, ErrNotFound):
		return st, nil
	case err != nil:
		return TeamStatus{}, internal("loading location", err)
	}
	st.CurrentClue = loc.Hint
	if e.rules.EnableCompass {
		if c, ok := loc.Coord(); ok {
			st.Target = &c
		}
	}
	return st, nil
}

// Leaderboard recomputes the standings from the scan log.
func (e *Engine) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	teams, err := e.store.ListTeams(ctx)
	if err != nil {
		return nil, internal("listing teams", err)
	}
	successes, err := e.store.Successes(ctx)
	if err != nil {
		return nil, internal("loading scan history", err)
	}
	return Project(teams, successes, e.rules), nil
}

func (e *Engine) loadTeam(ctx context.Context, teamID string) (Team, error) {
	if strings.TrimSpace(teamID) == "" {
		return Team{}, badRequest("Missing data")
	}
	team, err := e.store.Team(ctx, teamID)
	if errors.Is(err, ErrNotFound) {
		return Team{}, notFound("Team not found")
	}
	if err != nil {
		return Team{}, internal("loading team", err)
	}
	return team, nil
}

const teamIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomTeamID() string {
	b := make([]byte, 4)
	for i := range b {
		b[i] = teamIDAlphabet[rand.IntN(len(teamIDAlphabet))]
	}
	return "TEAM-" + string(b)
}

func newScanID() string {
	return uuid.NewString()
}

// keyedMutex serializes work per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	ent := k.locks[key]
	if ent == nil {
		ent = &keyedEntry{}
		k.locks[key] = ent
	}
	ent.refs++
	k.mu.Unlock()

	ent.mu.Lock()
	return func() {
		ent.mu.Unlock()
		k.mu.Lock()
		ent.refs--
		if ent.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
