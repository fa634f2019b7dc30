package hunt

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Outcome is the player-facing result of a scan.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFail    Outcome = "FAIL"
	OutcomeWinner  Outcome = "WINNER"
	OutcomeRank    Outcome = "RANK"
)

// ScanResult is returned for every accepted or warned scan.
type ScanResult struct {
	Outcome      Outcome
	Message      string
	NextLocation string
	NextClue     string
	Rank         int
	Strike       int
}

// Progression assigns the next waypoint after a successful scan and
// finishes teams that reach the target.
type Progression struct {
	store  Store
	rules  Rules
	pick   func(n int) int
	logger *slog.Logger

	// finishMu serializes finishing so that each ranking sees every
	// earlier finish.
	finishMu sync.Mutex
	onFinish func(ctx context.Context, teamID string, rank int)
}

func NewProgression(store Store, rules Rules, pick func(n int) int, logger *slog.Logger) *Progression {
	return &Progression{store: store, rules: rules, pick: pick, logger: logger}
}

// Advance runs after a SUCCESS scan at scanned has been recorded.
func (p *Progression) Advance(ctx context.Context, team *Team, scanned string) (ScanResult, error) {
	successes, err := p.store.TeamSuccesses(ctx, team.ID)
	if err != nil {
		return ScanResult{}, internal("loading team progress", err)
	}

	visited := make(map[string]bool)
	count := 0
	for _, ev := range successes {
		visited[ev.LocationCode] = true
		if ev.LocationCode != p.rules.StartLocation {
			count++
		}
	}
	if count >= p.rules.TargetScans {
		return p.Finish(ctx, team)
	}

	pool, err := p.pool(ctx, scanned, team.AssignedLocation, visited)
	if err != nil {
		return ScanResult{}, err
	}
	if len(pool) == 0 {
		p.logger.Info("waypoint pool exhausted", "team_id", team.ID, "successes", count)
		return p.Finish(ctx, team)
	}

	next := pool[p.pick(len(pool))]
	if err := p.store.SetAssignedLocation(ctx, team.ID, next.Code); err != nil {
		return ScanResult{}, internal("assigning next location", err)
	}
	team.AssignedLocation = next.Code
	p.logger.Info("next location assigned", "team_id", team.ID, "location", next.Code, "successes", count)

	return ScanResult{
		Outcome:      OutcomeSuccess,
		Message:      "Correct!",
		NextLocation: next.Code,
		NextClue:     next.Hint,
	}, nil
}

// pool lists the candidates for the next assignment. The scanned waypoint
// and the current assignment never qualify, so an out-of-order scan cannot
// hand back the waypoint the team already holds.
func (p *Progression) pool(ctx context.Context, scanned, assigned string, visited map[string]bool) ([]Location, error) {
	locations, err := p.store.ListLocations(ctx)
	if err != nil {
		return nil, internal("listing locations", err)
	}

	var allowed map[string]bool
	if p.rules.Pool == PoolCurated && len(p.rules.CuratedLocations) > 0 {
		allowed = make(map[string]bool, len(p.rules.CuratedLocations))
		for _, code := range p.rules.CuratedLocations {
			allowed[code] = true
		}
	}

	pool := make([]Location, 0, len(locations))
	for _, loc := range locations {
		switch loc.Code {
		case p.rules.StartLocation, p.rules.FinishLocation, scanned, assigned:
			continue
		}
		if p.rules.Pool == PoolCurated {
			if visited[loc.Code] {
				continue
			}
			if allowed != nil && !allowed[loc.Code] {
				continue
			}
		}
		pool = append(pool, loc)
	}
	slices.SortFunc(pool, func(a, b Location) int { return strings.Compare(a.Code, b.Code) })
	return pool, nil
}

// Finish marks team as completed and returns its rank.
func (p *Progression) Finish(ctx context.Context, team *Team) (ScanResult, error) {
	p.finishMu.Lock()
	defer p.finishMu.Unlock()

	if err := p.store.SetAssignedLocation(ctx, team.ID, p.rules.FinishLocation); err != nil {
		return ScanResult{}, internal("completing team", err)
	}
	team.AssignedLocation = p.rules.FinishLocation

	rank, err := p.rankOf(ctx, team.ID)
	if err != nil {
		return ScanResult{}, err
	}
	p.logger.Info("team finished", "team_id", team.ID, "rank", rank)
	if p.onFinish != nil {
		p.onFinish(ctx, team.ID, rank)
	}

	switch rank {
	case 0:
		// Forced to finish without a single scan to rank on.
		return ScanResult{
			Outcome:      OutcomeRank,
			Message:      "MISSION COMPLETE",
			NextLocation: p.rules.FinishLocation,
			NextClue:     "Return to base.",
		}, nil
	case 1:
		return ScanResult{
			Outcome:      OutcomeWinner,
			Message:      "CHAMPION!",
			Rank:         1,
			NextLocation: p.rules.FinishLocation,
			NextClue:     "CONGRATULATIONS! You are the first to finish! Proceed to the stage.",
		}, nil
	}
	return ScanResult{
		Outcome:      OutcomeRank,
		Message:      "MISSION COMPLETE",
		Rank:         rank,
		NextLocation: p.rules.FinishLocation,
		NextClue:     fmt.Sprintf("You finished #%d! Return to base to claim your prize.", rank),
	}, nil
}

// rankOf recomputes the finish order from the full SUCCESS history.
func (p *Progression) rankOf(ctx context.Context, teamID string) (int, error) {
	successes, err := p.store.Successes(ctx)
	if err != nil {
		return 0, internal("loading scan history", err)
	}
	teams, err := p.store.ListTeams(ctx)
	if err != nil {
		return 0, internal("listing teams", err)
	}
	completed := make(map[string]bool)
	for _, t := range teams {
		if t.AssignedLocation == p.rules.FinishLocation {
			completed[t.ID] = true
		}
	}
	return RankOf(Rank(successes, completed, p.rules), teamID), nil
}
