package hunt

import (
	"context"
	"errors"
	"strings"
)

// Teams lists every team, applying the time limit to teams still playing.
func (e *Engine) Teams(ctx context.Context) ([]Team, error) {
	teams, err := e.store.ListTeams(ctx)
	if err != nil {
		return nil, internal("listing teams", err)
	}
	for i := range teams {
		t := &teams[i]
		if t.Disqualified || t.AssignedLocation == e.rules.FinishLocation {
			continue
		}
		tc, err := e.timer.Check(ctx, t)
		if err != nil {
			return nil, err
		}
		if tc.Expired {
			t.Disqualified = true
		}
	}
	return teams, nil
}

// SetDisqualified disqualifies or requalifies a team.
func (e *Engine) SetDisqualified(ctx context.Context, teamID string, disqualified bool) error {
	unlock := e.locks.Lock(teamID)
	defer unlock()

	if _, err := e.loadTeam(ctx, teamID); err != nil {
		return err
	}
	if err := e.store.SetDisqualified(ctx, teamID, disqualified); err != nil {
		return internal("updating team", err)
	}
	e.logger.Info("team qualification changed", "team_id", teamID, "disqualified", disqualified)
	return nil
}

// OverrideLocation moves a team to code, which must be a known location or
// the finish sentinel.
func (e *Engine) OverrideLocation(ctx context.Context, teamID, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return badRequest("Missing data")
	}
	unlock := e.locks.Lock(teamID)
	defer unlock()

	if _, err := e.loadTeam(ctx, teamID); err != nil {
		return err
	}
	if code != e.rules.FinishLocation {
		if _, err := e.store.Location(ctx, code); errors.Is(err, ErrNotFound) {
			return notFound("Location not found")
		} else if err != nil {
			return internal("loading location", err)
		}
	}
	if err := e.store.SetAssignedLocation(ctx, teamID, code); err != nil {
		return internal("updating team", err)
	}
	e.logger.Info("team location overridden", "team_id", teamID, "location", code)
	return nil
}

// ResetProgress puts a team back at the start: scans cleared, device
// unbound, qualification restored.
func (e *Engine) ResetProgress(ctx context.Context, teamID string) error {
	unlock := e.locks.Lock(teamID)
	defer unlock()

	if _, err := e.loadTeam(ctx, teamID); err != nil {
		return err
	}
	if err := e.store.ResetTeam(ctx, teamID, e.rules.StartLocation); err != nil {
		return internal("resetting team", err)
	}
	e.logger.Info("team progress reset", "team_id", teamID)
	return nil
}

// Complete finishes a team immediately and ranks it on its scans so far.
func (e *Engine) Complete(ctx context.Context, teamID string) (ScanResult, error) {
	unlock := e.locks.Lock(teamID)
	defer unlock()

	team, err := e.loadTeam(ctx, teamID)
	if err != nil {
		return ScanResult{}, err
	}
	return e.progress.Finish(ctx, &team)
}

func (e *Engine) DeleteTeam(ctx context.Context, teamID string) error {
	unlock := e.locks.Lock(teamID)
	defer unlock()

	err := e.store.DeleteTeam(ctx, teamID)
	if errors.Is(err, ErrNotFound) {
		return notFound("Team not found")
	}
	if err != nil {
		return internal("deleting team", err)
	}
	e.logger.Info("team deleted", "team_id", teamID)
	return nil
}

// Ban adds deviceID to the ban list.
func (e *Engine) Ban(ctx context.Context, deviceID, reason string) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return badRequest("Missing data")
	}
	err := e.store.BanDevice(ctx, BannedDevice{
		DeviceID: deviceID,
		Reason:   strings.TrimSpace(reason),
		BannedAt: e.now(),
	})
	if err != nil {
		return internal("banning device", err)
	}
	e.logger.Info("device banned", "device_id", deviceID, "reason", reason)
	return nil
}
