package milestone

import (
	"context"
	"testing"
	"time"

	"github.com/jwebster45206/route-agent/pkg/state"
)

func TestPace(t *testing.T) {
	tests := []struct {
		name     string
		budget   time.Duration
		elapsed  time.Duration
		expected Pace
	}{
		{"well ahead", 10 * time.Minute, 2 * time.Minute, PaceUnder},
		{"just ahead", 11 * time.Minute, 10 * time.Minute, PaceUnder},
		{"on budget", 10 * time.Minute, 10 * time.Minute, PaceOn},
		{"slightly over", 10 * time.Minute, 13 * time.Minute, PaceOn},
		{"behind", 10 * time.Minute, 20 * time.Minute, PaceOver},
		{"no budget", 0, 20 * time.Minute, PaceOn},
		{"nothing elapsed yet", 10 * time.Minute, 0, PaceUnder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio, pace := pace(tt.budget, tt.elapsed)
			if pace != tt.expected {
				t.Errorf("pace(%v, %v) = %s, expected %s", tt.budget, tt.elapsed, pace, tt.expected)
			}
			if ratio > budgetRatioCap {
				t.Errorf("ratio %f exceeds the cap", ratio)
			}
		})
	}
}

func TestRouter_Progress(t *testing.T) {
	route := testRoute()
	engine, err := NewEngine(route, &recordingStore{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	router := NewRouter(engine, []Checkpoint{
		{MilestoneID: "A", Name: "Start", TimeBudget: 10 * time.Minute},
		{MilestoneID: "B", Name: "Route 101", Location: "ROUTE101", Coords: &state.Coord{X: 5, Y: 3}, TimeBudget: 20 * time.Minute},
	})

	report := router.Progress()
	if report.CompletedCount != 0 || report.TotalCount != 3 {
		t.Errorf("expected 0/3, got %d/%d", report.CompletedCount, report.TotalCount)
	}
	if report.PercentComplete != 0 {
		t.Errorf("expected 0%%, got %f", report.PercentComplete)
	}
	if report.CurrentMilestone != "A" {
		t.Errorf("expected current milestone A, got %s", report.CurrentMilestone)
	}
	if report.Checkpoint == nil || report.Checkpoint.Name != "Start" {
		t.Fatalf("expected the Start checkpoint, got %+v", report.Checkpoint)
	}
	if report.Budget != 10*time.Minute {
		t.Errorf("expected 10m budget, got %v", report.Budget)
	}
	// A fresh run has barely any elapsed time, so it starts ahead of pace.
	if report.Pace != PaceUnder {
		t.Errorf("expected pace under at run start, got %s", report.Pace)
	}

	if _, err := engine.Observe(context.Background(), &state.Snapshot{Flags: map[string]bool{"A": true}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report = router.Progress()
	if report.CompletedCount != 1 {
		t.Errorf("expected 1 completed, got %d", report.CompletedCount)
	}
	if want := 100.0 / 3.0; report.PercentComplete < want-0.01 || report.PercentComplete > want+0.01 {
		t.Errorf("expected ~%.2f%%, got %f", want, report.PercentComplete)
	}
	if report.Checkpoint == nil || report.Checkpoint.MilestoneID != "B" {
		t.Fatalf("expected checkpoint B, got %+v", report.Checkpoint)
	}
	if report.Checkpoint.Coords == nil || *report.Checkpoint.Coords != (state.Coord{X: 5, Y: 3}) {
		t.Errorf("checkpoint coords lost: %+v", report.Checkpoint.Coords)
	}
	if report.Done {
		t.Error("route is not done")
	}
}

func TestRouter_ProgressDone(t *testing.T) {
	engine, err := NewEngine(testRoute(), &recordingStore{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.Restore(&ProgressState{Completed: []string{"A", "B", "C"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	router := NewRouter(engine, nil)

	report := router.Progress()
	if !report.Done {
		t.Error("expected done")
	}
	if report.PercentComplete != 100 {
		t.Errorf("expected 100%%, got %f", report.PercentComplete)
	}
	if report.CurrentMilestone != "" || report.Checkpoint != nil {
		t.Errorf("completed route should have no active checkpoint: %+v", report)
	}
}

func TestRouter_CheckpointLookup(t *testing.T) {
	engine, err := NewEngine(testRoute(), &recordingStore{}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	router := NewRouter(engine, []Checkpoint{{MilestoneID: "B", Name: "Route 101"}})

	if cp, ok := router.Checkpoint("B"); !ok || cp.Name != "Route 101" {
		t.Errorf("expected Route 101 checkpoint, got %+v ok=%v", cp, ok)
	}
	if _, ok := router.Checkpoint("Z"); ok {
		t.Error("unknown milestone should report no checkpoint")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		mapID    string
		expected string
	}{
		{"OLDALE_TOWN", "Oldale Town"},
		{"MOVING_VAN", "Moving Van"},
		{"ROUTE101", "Route101"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.mapID); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, expected %q", tt.mapID, got, tt.expected)
		}
	}
}
