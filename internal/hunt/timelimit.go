package hunt

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// TimeCheck is the result of TimeLimitPolicy.Check.
type TimeCheck struct {
	Expired bool
	Reason  string
	Elapsed time.Duration
}

// TimeLimitPolicy caps the time a team may spend after scanning the start
// waypoint.
type TimeLimitPolicy struct {
	store  Store
	rules  Rules
	now    func() time.Time
	logger *slog.Logger

	onDisqualify func(ctx context.Context, teamID, reason string)
}

func NewTimeLimitPolicy(store Store, rules Rules, now func() time.Time, logger *slog.Logger) *TimeLimitPolicy {
	return &TimeLimitPolicy{store: store, rules: rules, now: now, logger: logger}
}

// Check reports whether team has run past the limit. Teams without a start
// scan and teams that already finished never expire. When configured, an
// expired team is disqualified as a side effect.
func (p *TimeLimitPolicy) Check(ctx context.Context, team *Team) (TimeCheck, error) {
	if p.rules.TimeLimit <= 0 || team.AssignedLocation == p.rules.FinishLocation {
		return TimeCheck{}, nil
	}

	startedAt, ok, err := p.store.FirstSuccessAt(ctx, team.ID, p.rules.StartLocation)
	if err != nil {
		return TimeCheck{}, internal("looking up start scan", err)
	}
	if !ok {
		return TimeCheck{}, nil
	}

	elapsed := p.now().Sub(startedAt)
	if elapsed <= p.rules.TimeLimit {
		return TimeCheck{Elapsed: elapsed}, nil
	}

	reason := fmt.Sprintf("Time Limit Exceeded (%s)", formatLimit(p.rules.TimeLimit))
	if p.rules.TimeLimitDisqualifies && !team.Disqualified {
		if err := p.store.SetDisqualified(ctx, team.ID, true); err != nil {
			return TimeCheck{}, internal("disqualifying team", err)
		}
		team.Disqualified = true
		p.logger.Info("team disqualified", "team_id", team.ID, "reason", "time limit", "elapsed", elapsed)
		if p.onDisqualify != nil {
			p.onDisqualify(ctx, team.ID, reason)
		}
	}
	return TimeCheck{Expired: true, Reason: reason, Elapsed: elapsed}, nil
}

func formatLimit(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 Hour"
		}
		return fmt.Sprintf("%d Hours", h)
	}
	return d.String()
}
