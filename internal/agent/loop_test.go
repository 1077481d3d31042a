package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/route-agent/internal/services"
	"github.com/jwebster45206/route-agent/pkg/milestone"
	"github.com/jwebster45206/route-agent/pkg/nav"
	"github.com/jwebster45206/route-agent/pkg/state"
)

func testMilestones() ([]milestone.Milestone, []milestone.Checkpoint) {
	route := []milestone.Milestone{
		{ID: "REACH_ROUTE", Kind: milestone.KindLocation, MapID: "ROUTE101", Position: 10},
		{ID: "FLAG_SET", Kind: milestone.KindStoryFlag, Flag: "DONE", Position: 20, Prereqs: []string{"REACH_ROUTE"}},
	}
	checkpoints := []milestone.Checkpoint{
		{MilestoneID: "REACH_ROUTE", Name: "Route 101", Location: "OLDALE_TOWN", Coords: &state.Coord{X: 7, Y: 5}},
		{MilestoneID: "FLAG_SET", Name: "Done", Location: "ROUTE101"},
	}
	return route, checkpoints
}

func newTestLoop(t *testing.T, host *services.MockGameHost, chooser ActionChooser) (*Loop, *services.MockStorage) {
	t.Helper()
	log := testLogger()
	storage := services.NewMockStorage()
	route, checkpoints := testMilestones()
	engine, err := milestone.NewEngine(route, storage, log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	router := milestone.NewRouter(engine, checkpoints)
	tracker := nav.NewOutcomeTracker(nav.DefaultTrackerConfig(), log)
	sync := NewSynchronizer(host, 0, 3, log)
	return NewLoop(sync, engine, router, tracker, host, chooser, log), storage
}

func TestLoop_CycleBasicReport(t *testing.T) {
	host := services.NewMockGameHost().
		QueueSnapshot(testSnap("OLDALE_TOWN", state.Coord{X: 5, Y: 5}))
	loop, _ := newTestLoop(t, host, nil)

	report, err := loop.Cycle(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "OLDALE_TOWN", report.MapID)
	assert.Equal(t, state.Coord{X: 5, Y: 5}, report.Pos)
	assert.False(t, report.Stale)
	assert.Len(t, report.Preview, 4)
	assert.NotNil(t, report.Milestone)
	assert.Equal(t, "REACH_ROUTE", report.Milestone.ID)
	assert.Equal(t, 2, report.Progress.TotalCount)
}

func TestLoop_CycleWithoutAnySnapshotFails(t *testing.T) {
	host := services.NewMockGameHost().QueueError(errors.New("refused"))
	loop, _ := newTestLoop(t, host, nil)

	_, err := loop.Cycle(context.Background())
	assert.Error(t, err)
}

func TestLoop_StaleCycleUsesCachedSnapshot(t *testing.T) {
	host := services.NewMockGameHost().
		QueueSnapshot(testSnap("OLDALE_TOWN", state.Coord{X: 5, Y: 5})).
		QueueError(errors.New("timeout")).
		QueueError(errors.New("timeout")).
		QueueError(errors.New("timeout"))
	loop, _ := newTestLoop(t, host, nil)
	ctx := context.Background()

	_, err := loop.Cycle(ctx)
	assert.NoError(t, err)

	report, err := loop.Cycle(ctx)
	assert.NoError(t, err)
	assert.True(t, report.Stale)
	assert.Equal(t, state.Coord{X: 5, Y: 5}, report.Pos)
	assert.False(t, report.Degraded)

	// Third consecutive failure crosses the connectivity threshold.
	_, err = loop.Cycle(ctx)
	assert.NoError(t, err)
	report, err = loop.Cycle(ctx)
	assert.NoError(t, err)
	assert.True(t, report.Stale)
	assert.True(t, report.Degraded)
}

func TestLoop_InfersMovementOutcomeFromPosition(t *testing.T) {
	pos := state.Coord{X: 5, Y: 5}
	host := services.NewMockGameHost().
		QueueSnapshot(testSnap("OLDALE_TOWN", pos)).
		QueueSnapshot(testSnap("OLDALE_TOWN", pos)). // move sent, position unchanged
		QueueSnapshot(testSnap("OLDALE_TOWN", state.Coord{X: 6, Y: 5}))
	loop, _ := newTestLoop(t, host, nil)
	ctx := context.Background()

	_, err := loop.Cycle(ctx)
	assert.NoError(t, err)

	// A RIGHT input that leaves the player in place is a blocked attempt,
	// even though the map data calls the destination walkable.
	loop.apply(ctx, Action{Move: state.DirRight})
	report, err := loop.Cycle(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []state.Direction{state.DirRight}, report.FailedDirections)
	assert.Greater(t, report.Preview[state.DirRight].Penalty, 0.0)

	// The next attempt lands: the failure history clears immediately.
	loop.apply(ctx, Action{Move: state.DirRight})
	report, err = loop.Cycle(ctx)
	assert.NoError(t, err)
	assert.Empty(t, report.FailedDirections)
}

func TestLoop_RebuildsTileMapOnLocationChange(t *testing.T) {
	host := services.NewMockGameHost().
		QueueSnapshot(testSnap("OLDALE_TOWN", state.Coord{X: 5, Y: 5})).
		QueueSnapshot(testSnap("ROUTE101", state.Coord{X: 2, Y: 9}))
	loop, _ := newTestLoop(t, host, nil)
	ctx := context.Background()

	_, err := loop.Cycle(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "OLDALE_TOWN", loop.tiles.MapID)

	_, err = loop.Cycle(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "ROUTE101", loop.tiles.MapID, "map change must rebuild the tile map")
}

func TestLoop_ReportsCheckpointTarget(t *testing.T) {
	// The active checkpoint points at (7,5) on this map; the report should
	// carry the target and a path to it.
	host := services.NewMockGameHost().
		QueueSnapshot(testSnap("OLDALE_TOWN", state.Coord{X: 5, Y: 5}))
	loop, _ := newTestLoop(t, host, nil)

	report, err := loop.Cycle(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, report.Target)
	assert.Equal(t, state.Coord{X: 7, Y: 5}, *report.Target)
	assert.Equal(t, []state.Direction{state.DirRight, state.DirRight}, report.Path)
	assert.False(t, report.TargetUnreachable)
}

func TestLoop_TargetOnOtherMapIsIgnored(t *testing.T) {
	// Checkpoint location is OLDALE_TOWN; standing on ROUTE101 there is no
	// target to plan toward.
	host := services.NewMockGameHost().
		QueueSnapshot(testSnap("ROUTE101", state.Coord{X: 5, Y: 5}))
	loop, _ := newTestLoop(t, host, nil)

	// ROUTE101 satisfies the first milestone, so the second becomes active;
	// its checkpoint has no coords.
	report, err := loop.Cycle(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, report.Target)
	assert.Empty(t, report.Path)
}

func TestLoop_AdvancedFlagAndPersistence(t *testing.T) {
	host := services.NewMockGameHost().
		QueueSnapshot(testSnap("OLDALE_TOWN", state.Coord{X: 5, Y: 5})).
		QueueSnapshot(testSnap("ROUTE101", state.Coord{X: 2, Y: 2}))
	loop, storage := newTestLoop(t, host, nil)
	ctx := context.Background()

	report, err := loop.Cycle(ctx)
	assert.NoError(t, err)
	assert.False(t, report.Advanced)

	report, err = loop.Cycle(ctx)
	assert.NoError(t, err)
	assert.True(t, report.Advanced, "entering ROUTE101 completes the location milestone")
	assert.Equal(t, "FLAG_SET", report.Milestone.ID)

	ps := loop.engine.Progress()
	saved, err := storage.LoadProgress(ctx, ps.RunID)
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, []string{"REACH_ROUTE"}, saved.Completed)
}

func TestLoop_RunToCompletion(t *testing.T) {
	done := testSnap("ROUTE101", state.Coord{X: 2, Y: 2})
	done.Flags["DONE"] = true
	host := services.NewMockGameHost().
		QueueSnapshot(testSnap("OLDALE_TOWN", state.Coord{X: 5, Y: 5})).
		QueueSnapshot(testSnap("ROUTE101", state.Coord{X: 2, Y: 2})).
		QueueSnapshot(done)
	loop, storage := newTestLoop(t, host, PathFollower{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := loop.Run(ctx, 5*time.Millisecond)
	assert.NoError(t, err, "run should stop cleanly once the route completes")

	assert.True(t, loop.engine.Done())
	// Each advancement pairs a save-state with the completed milestone.
	assert.Equal(t, []string{"REACH_ROUTE", "FLAG_SET"}, host.Checkpoints)

	ps := loop.engine.Progress()
	saved, err := storage.LoadProgress(context.Background(), ps.RunID)
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, 2, len(saved.Completed))
	assert.Equal(t, "savestate://FLAG_SET", saved.SaveStateRef)
}

func TestLoop_RunRequiresChooser(t *testing.T) {
	host := services.NewMockGameHost()
	loop, _ := newTestLoop(t, host, nil)

	err := loop.Run(context.Background(), time.Millisecond)
	assert.Error(t, err)
}

func TestPathFollower_Choose(t *testing.T) {
	tests := []struct {
		name     string
		report   *CycleReport
		expected Action
	}{
		{
			name: "follows the planned path",
			report: &CycleReport{
				Facing: state.DirDown,
				Path:   []state.Direction{state.DirUp, state.DirLeft},
				Preview: nav.Preview{
					state.DirDown: nav.Step{Dir: state.DirDown, Outcome: nav.OutcomeWalkable},
				},
			},
			expected: Action{Move: state.DirUp},
		},
		{
			name: "prefers facing among traversable steps",
			report: &CycleReport{
				Facing: state.DirLeft,
				Preview: nav.Preview{
					state.DirUp:   nav.Step{Dir: state.DirUp, Outcome: nav.OutcomeWalkable},
					state.DirLeft: nav.Step{Dir: state.DirLeft, Outcome: nav.OutcomeWalkable},
				},
			},
			expected: Action{Move: state.DirLeft},
		},
		{
			name: "picks the cheaper direction over facing",
			report: &CycleReport{
				Facing: state.DirLeft,
				Preview: nav.Preview{
					state.DirUp:   nav.Step{Dir: state.DirUp, Outcome: nav.OutcomeWalkable},
					state.DirLeft: nav.Step{Dir: state.DirLeft, Outcome: nav.OutcomeWalkable, Penalty: 4.0},
				},
			},
			expected: Action{Move: state.DirUp},
		},
		{
			name: "presses A when boxed in",
			report: &CycleReport{
				Facing: state.DirDown,
				Preview: nav.Preview{
					state.DirDown: nav.Step{Dir: state.DirDown, Outcome: nav.OutcomeBlocked},
				},
			},
			expected: Action{Buttons: []string{"A"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := PathFollower{}.Choose(context.Background(), tt.report)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, action)
		})
	}
}
