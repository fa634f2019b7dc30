package hunt

import (
	"testing"
)

func TestProject(t *testing.T) {
	rules := rankRules(MetricDuration)
	teams := []Team{
		{ID: "T1", Name: "Zebras", AssignedLocation: "L3"},
		{ID: "T2", Name: "Owls", AssignedLocation: "COMPLETED"},
		{ID: "T3", Name: "Larks", AssignedLocation: "L2"},
		{ID: "T4", Name: "Sleepers", AssignedLocation: "CLG"},
		{ID: "T5", Name: "Ants", AssignedLocation: "L2", Disqualified: true},
		{ID: "T6", Name: "Bees", AssignedLocation: "CLG"},
	}
	successes := []ScanEvent{
		success("T2", "CLG", 0), success("T2", "L1", 5), success("T2", "L2", 20),
		success("T1", "CLG", 0), success("T1", "L1", 12),
		success("T3", "CLG", 0), success("T3", "L1", 8),
		success("T5", "CLG", 0), success("T5", "L1", 8),
	}

	got := Project(teams, successes, rules)

	want := []struct {
		name     string
		score    int
		finished bool
		rank     int
	}{
		{"Owls", 2, true, 1},
		// Equal score and equal last scan: name breaks the tie.
		{"Ants", 1, false, 0},
		{"Larks", 1, false, 0},
		{"Zebras", 1, false, 0},
		// Never scanned: after everyone, by name.
		{"Bees", 0, false, 0},
		{"Sleepers", 0, false, 0},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, w := range want {
		e := got[i]
		if e.TeamName != w.name || e.Score != w.score || e.Finished != w.finished || e.Rank != w.rank {
			t.Errorf("entry %d = %+v, want %+v", i, e, w)
		}
	}
	if !got[1].Disqualified {
		t.Error("Ants should be marked disqualified")
	}
	if !got[4].LastScanAt.IsZero() {
		t.Error("Bees have no scans but a last scan time")
	}
}
