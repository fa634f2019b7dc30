package hunt

import (
	"slices"
	"strings"
	"time"
)

// LeaderboardEntry is one row of the standings view.
type LeaderboardEntry struct {
	TeamID       string
	TeamName     string
	Score        int
	Finished     bool
	Disqualified bool
	LastScanAt   time.Time
	Duration     time.Duration
	Rank         int
}

// Project rebuilds the standings from the team table and the SUCCESS log.
// Finished teams come first in ranking order, then unfinished teams by score
// descending and earliest last scan.
func Project(teams []Team, successes []ScanEvent, rules Rules) []LeaderboardEntry {
	completed := make(map[string]bool)
	for _, t := range teams {
		if t.AssignedLocation == rules.FinishLocation {
			completed[t.ID] = true
		}
	}
	standings := make(map[string]Standing)
	for _, s := range Rank(successes, completed, rules) {
		standings[s.TeamID] = s
	}

	score := make(map[string]int)
	last := make(map[string]time.Time)
	for _, ev := range successes {
		if ev.Result != ResultSuccess {
			continue
		}
		if ev.LocationCode != rules.StartLocation {
			score[ev.TeamID]++
		}
		if ev.ScannedAt.After(last[ev.TeamID]) {
			last[ev.TeamID] = ev.ScannedAt
		}
	}

	entries := make([]LeaderboardEntry, 0, len(teams))
	for _, t := range teams {
		e := LeaderboardEntry{
			TeamID:       t.ID,
			TeamName:     t.Name,
			Score:        score[t.ID],
			Disqualified: t.Disqualified,
			LastScanAt:   last[t.ID],
		}
		if s, ok := standings[t.ID]; ok {
			e.Finished = true
			e.Duration = s.Duration
			e.Rank = s.Rank
		}
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, compareEntries)
	return entries
}

func compareEntries(a, b LeaderboardEntry) int {
	if a.Finished != b.Finished {
		if a.Finished {
			return -1
		}
		return 1
	}
	if a.Finished {
		if a.Rank != b.Rank {
			return a.Rank - b.Rank
		}
		return strings.Compare(a.TeamName, b.TeamName)
	}
	if a.Score != b.Score {
		return b.Score - a.Score
	}
	// No scans at all sorts after any scan.
	switch {
	case a.LastScanAt.IsZero() && !b.LastScanAt.IsZero():
		return 1
	case !a.LastScanAt.IsZero() && b.LastScanAt.IsZero():
		return -1
	}
	if c := a.LastScanAt.Compare(b.LastScanAt); c != 0 {
		return c
	}
	return strings.Compare(a.TeamName, b.TeamName)
}
