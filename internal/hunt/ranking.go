package hunt

import (
	"slices"
	"strings"
	"time"
)

// Standing is a finished team's place in the final order.
type Standing struct {
	TeamID     string
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	// Scans counts non-start successes.
	Scans int
	// Forced is set for teams finished before reaching the target.
	Forced bool
	Rank   int
}

type teamTimes struct {
	start    time.Time
	hasStart bool
	first    time.Time
	times    []time.Time // non-start successes
}

func groupSuccesses(successes []ScanEvent, startCode string) map[string]*teamTimes {
	byTeam := make(map[string]*teamTimes)
	for _, ev := range successes {
		if ev.Result != ResultSuccess {
			continue
		}
		tt := byTeam[ev.TeamID]
		if tt == nil {
			tt = &teamTimes{first: ev.ScannedAt}
			byTeam[ev.TeamID] = tt
		}
		if ev.ScannedAt.Before(tt.first) {
			tt.first = ev.ScannedAt
		}
		if ev.LocationCode == startCode {
			if !tt.hasStart || ev.ScannedAt.Before(tt.start) {
				tt.start = ev.ScannedAt
				tt.hasStart = true
			}
			continue
		}
		tt.times = append(tt.times, ev.ScannedAt)
	}
	for _, tt := range byTeam {
		slices.SortFunc(tt.times, func(a, b time.Time) int { return a.Compare(b) })
	}
	return byTeam
}

// Rank orders every finished team. A team is finished once it has
// TargetScans non-start successes; teams listed in completed (forced to
// finish early) are ranked on what they have, behind every team that met
// the target and by scan count first. Teams that compare equal share a
// rank.
func Rank(successes []ScanEvent, completed map[string]bool, rules Rules) []Standing {
	var out []Standing
	for teamID, tt := range groupSuccesses(successes, rules.StartLocation) {
		n := len(tt.times)
		if n < rules.TargetScans && !completed[teamID] {
			continue
		}

		var finishedAt time.Time
		switch {
		case n >= rules.TargetScans:
			finishedAt = tt.times[rules.TargetScans-1]
		case n > 0:
			finishedAt = tt.times[n-1]
		case tt.hasStart:
			finishedAt = tt.start
		default:
			continue
		}

		startedAt := tt.first
		if tt.hasStart {
			startedAt = tt.start
		}
		out = append(out, Standing{
			TeamID:     teamID,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Duration:   finishedAt.Sub(startedAt),
			Scans:      min(n, rules.TargetScans),
			Forced:     n < rules.TargetScans,
		})
	}

	cmp := compareStandings(rules.Metric)
	slices.SortFunc(out, func(a, b Standing) int {
		if c := cmp(a, b); c != 0 {
			return c
		}
		return strings.Compare(a.TeamID, b.TeamID)
	})
	for i := range out {
		if i > 0 && cmp(out[i-1], out[i]) == 0 {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out
}

func compareStandings(m Metric) func(a, b Standing) int {
	byMetric := compareByMetric(m)
	return func(a, b Standing) int {
		if a.Forced != b.Forced {
			if a.Forced {
				return 1
			}
			return -1
		}
		if a.Scans != b.Scans {
			return b.Scans - a.Scans
		}
		return byMetric(a, b)
	}
}

func compareByMetric(m Metric) func(a, b Standing) int {
	if m == MetricFinishTime {
		return func(a, b Standing) int { return a.FinishedAt.Compare(b.FinishedAt) }
	}
	return func(a, b Standing) int {
		switch {
		case a.Duration < b.Duration:
			return -1
		case a.Duration > b.Duration:
			return 1
		}
		return 0
	}
}

// RankOf returns teamID's rank in standings, or 0 if it has not finished.
func RankOf(standings []Standing, teamID string) int {
	for _, s := range standings {
		if s.TeamID == teamID {
			return s.Rank
		}
	}
	return 0
}
