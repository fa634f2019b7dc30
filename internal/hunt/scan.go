package hunt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ScanRequest is one scan submitted by a player's device.
type ScanRequest struct {
	TeamID     string
	LocationID string
	DeviceID   string
	Lat        *float64
	Lng        *float64
}

const noteWrongLocation = "Wrong Location"

// Scan validates a scan and advances the team. Checks run in a fixed order
// and the first failing check ends the attempt:
//
//  1. banned device (REJECTED recorded)
//  2. unknown team
//  3. time limit
//  4. already disqualified
//  5. device binding (REJECTED recorded on mismatch)
//  6. waypoint sequence (FAIL recorded with strike number)
//  7. GPS proximity (FAIL, or REJECTED when strict)
//  8. success (SUCCESS recorded, then progression)
func (e *Engine) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	req.TeamID = strings.TrimSpace(req.TeamID)
	req.LocationID = strings.TrimSpace(req.LocationID)
	req.DeviceID = strings.TrimSpace(req.DeviceID)
	if req.TeamID == "" || req.LocationID == "" || req.DeviceID == "" {
		return ScanResult{}, badRequest("Missing data")
	}

	ev := ScanEvent{
		ID:           newScanID(),
		TeamID:       req.TeamID,
		LocationCode: req.LocationID,
		DeviceID:     req.DeviceID,
		Lat:          req.Lat,
		Lng:          req.Lng,
		ScannedAt:    e.now(),
	}
	logger := e.logger.With("team_id", req.TeamID, "location", req.LocationID, "device_id", req.DeviceID)

	banned, err := e.guard.IsBanned(ctx, req.DeviceID)
	if err != nil {
		return ScanResult{}, err
	}
	if banned {
		ev.Result = ResultRejected
		ev.AdminNote = noteBannedDevice
		if err := e.record(ctx, ev); err != nil {
			return ScanResult{}, internal("recording rejected scan", err)
		}
		logger.Warn("scan from banned device")
		return ScanResult{}, forbidden("Device Banned")
	}

	unlock := e.locks.Lock(req.TeamID)
	defer unlock()

	team, err := e.loadTeam(ctx, req.TeamID)
	if err != nil {
		return ScanResult{}, err
	}

	tc, err := e.timer.Check(ctx, &team)
	if err != nil {
		return ScanResult{}, err
	}
	if tc.Expired {
		logger.Info("scan after time limit", "elapsed", tc.Elapsed)
		if team.Disqualified {
			return ScanResult{}, forbidden("Disqualified: " + tc.Reason)
		}
		return ScanResult{}, forbidden(tc.Reason)
	}

	if team.Disqualified {
		return ScanResult{}, forbidden("Team Disqualified")
	}

	if err := e.guard.BindOrVerify(ctx, &team, ev); err != nil {
		return ScanResult{}, err
	}
	ev.TeamName = team.Name

	if req.LocationID == e.rules.FinishLocation || team.AssignedLocation != req.LocationID {
		if e.rules.EnforceSequence || req.LocationID == e.rules.FinishLocation {
			return e.wrongWaypoint(ctx, &team, ev)
		}
		logger.Debug("sequence not enforced, accepting out-of-order scan", "assigned", team.AssignedLocation)
	}

	loc, err := e.store.Location(ctx, req.LocationID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return ScanResult{}, internal("loading location", err)
	}
	if target, ok := loc.Coord(); ok {
		d := Distance(coordFrom(req.Lat, req.Lng), target)
		if d > e.rules.MaxDistanceMeters {
			return e.tooFar(ctx, &team, ev, d)
		}
	} else {
		logger.Debug("no coordinates for location, proximity check skipped")
	}

	zero := 0.0
	ev.Result = ResultSuccess
	ev.DistanceMeters = &zero
	if err := e.record(ctx, ev); err != nil {
		return ScanResult{}, internal("recording scan", err)
	}
	logger.Info("scan accepted")

	return e.progress.Advance(ctx, &team, req.LocationID)
}

func (e *Engine) wrongWaypoint(ctx context.Context, team *Team, ev ScanEvent) (ScanResult, error) {
	ev.Result = ResultFail
	ev.AdminNote = noteWrongLocation

	strike, err := e.store.RecordStrike(ctx, ev)
	switch {
	case errors.Is(err, ErrStrikeCount):
		e.logger.Warn("could not count wrong scans", "team_id", team.ID, "error", err)
		strike = 1
	case err != nil:
		return ScanResult{}, internal("recording wrong scan", err)
	}
	e.notifyScan(ctx, ev)
	e.logger.Info("wrong location", "team_id", team.ID, "scanned", ev.LocationCode,
		"assigned", team.AssignedLocation, "strike", strike)

	if e.rules.StrikeLimit > 0 && strike >= e.rules.StrikeLimit {
		if err := e.disqualify(ctx, team, "strike limit"); err != nil {
			return ScanResult{}, err
		}
		return ScanResult{}, forbidden(fmt.Sprintf("Team Disqualified: %d wrong scans", strike))
	}

	return ScanResult{
		Outcome: OutcomeFail,
		Message: fmt.Sprintf("Wrong Location. Try again. (Attempt #%d)", strike),
		Strike:  strike,
	}, nil
}

func (e *Engine) tooFar(ctx context.Context, team *Team, ev ScanEvent, d float64) (ScanResult, error) {
	ev.Result = ResultFail
	if e.rules.GPSFailDisqualifies {
		ev.Result = ResultRejected
	}
	if math.IsInf(d, 1) {
		ev.AdminNote = fmt.Sprintf("GPS Warning (no fix > %.0fm)", e.rules.MaxDistanceMeters)
	} else {
		ev.DistanceMeters = &d
		ev.AdminNote = fmt.Sprintf("GPS Warning (%.0fm > %.0fm)", d, e.rules.MaxDistanceMeters)
	}
	if err := e.record(ctx, ev); err != nil {
		return ScanResult{}, internal("recording scan", err)
	}
	e.logger.Info("scan too far", "team_id", team.ID, "location", ev.LocationCode, "distance_m", d)

	if e.rules.GPSFailDisqualifies {
		if err := e.disqualify(ctx, team, "gps"); err != nil {
			return ScanResult{}, err
		}
		return ScanResult{}, forbidden("Team Disqualified: GPS check failed")
	}
	return ScanResult{
		Outcome: OutcomeFail,
		Message: "Too far away! Move closer to the location.",
	}, nil
}

func (e *Engine) disqualify(ctx context.Context, team *Team, reason string) error {
	if err := e.store.SetDisqualified(ctx, team.ID, true); err != nil {
		return internal("disqualifying team", err)
	}
	team.Disqualified = true
	e.logger.Info("team disqualified", "team_id", team.ID, "reason", reason)
	return nil
}
