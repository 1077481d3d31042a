package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/route-agent/internal/services"
	"github.com/jwebster45206/route-agent/pkg/milestone"
	"github.com/jwebster45206/route-agent/pkg/nav"
	"github.com/jwebster45206/route-agent/pkg/state"
	"github.com/jwebster45206/route-agent/pkg/tilemap"
)

// Action is what the decision collaborator wants done this cycle: either
// a single directional step or a batch of raw button presses.
type Action struct {
	Move    state.Direction
	Buttons []string
}

// ActionChooser is the boundary to the decision-making collaborator.
// Given the cycle report it returns an action; the core stays agnostic to
// how the choice is made.
type ActionChooser interface {
	Choose(ctx context.Context, report *CycleReport) (Action, error)
}

// CycleReport is the plain-data output of one decision cycle, consumed by
// the action chooser and by external reporting.
type CycleReport struct {
	Seq    uint64          `json:"seq"`
	MapID  string          `json:"map_id"`
	Pos    state.Coord     `json:"pos"`
	Facing state.Direction `json:"facing"`

	// Stale marks a cycle that ran on the cached snapshot because the
	// refresh failed.
	Stale bool `json:"stale,omitempty"`
	// Degraded is set on exactly one cycle per connectivity outage.
	Degraded bool `json:"degraded,omitempty"`

	Preview nav.Preview `json:"preview"`
	// FailedDirections are directions whose most recent attempt from the
	// current tile failed.
	FailedDirections []state.Direction `json:"failed_directions,omitempty"`

	Target *state.Coord `json:"target,omitempty"`
	// Path is the planned route to Target, when one exists.
	Path []state.Direction `json:"path,omitempty"`
	// TargetUnreachable means planning failed and the chooser should fall
	// back to preview-driven single steps.
	TargetUnreachable bool `json:"target_unreachable,omitempty"`

	Milestone *milestone.Milestone `json:"milestone,omitempty"`
	// Advanced marks the cycle on which the active milestone completed.
	Advanced bool             `json:"advanced,omitempty"`
	Progress milestone.Report `json:"progress"`
}

// Loop runs the synchronous decision cycle: refresh, verify milestones,
// rebuild the tile map on location change, age the outcome tracker, plan
// movement, and hand the result to the chooser. No component here spawns
// goroutines; the synchronizer's refresh is the only suspension point.
type Loop struct {
	sync    *Synchronizer
	engine  *milestone.Engine
	router  *milestone.Router
	tracker *nav.OutcomeTracker
	host    services.GameHost
	chooser ActionChooser
	logger  *slog.Logger

	tiles   *tilemap.TileMap
	planner *nav.Planner

	prev          *state.Snapshot
	lastMove      state.Direction
	prevCompleted int
}

// NewLoop wires the decision cycle. The chooser may be nil when the loop
// is only used for read-only Cycle calls (the monitor console).
func NewLoop(sync *Synchronizer, engine *milestone.Engine, router *milestone.Router,
	tracker *nav.OutcomeTracker, host services.GameHost, chooser ActionChooser,
	logger *slog.Logger) *Loop {
	return &Loop{
		sync:          sync,
		engine:        engine,
		router:        router,
		tracker:       tracker,
		host:          host,
		chooser:       chooser,
		logger:        logger,
		prevCompleted: len(engine.Progress().Completed),
	}
}

// Cycle runs one decision cycle and returns its report. It sends no
// inputs to the host; acting on the report is Run's job. An error is
// returned only when no snapshot has ever been observed.
func (l *Loop) Cycle(ctx context.Context) (*CycleReport, error) {
	snap, err := l.sync.Refresh(ctx)
	stale := false
	if err != nil {
		snap = l.sync.Snapshot()
		if snap == nil {
			return nil, fmt.Errorf("no snapshot available: %w", err)
		}
		stale = true
	}

	if !stale {
		l.recordMovementOutcome(snap)

		if _, err := l.engine.Observe(ctx, snap); err != nil {
			// Advancement happened but persisting it failed; the next
			// advancement or shutdown persist will retry.
			l.logger.Error("failed to persist milestone advancement", "error", err)
		}
		l.prev = snap
	}

	if l.tiles == nil || l.tiles.MapID != snap.MapID {
		l.tiles = tilemap.Build(snap.MapID, snap.Map)
		l.planner = nav.NewPlanner(l.tiles, l.tracker, l.logger)
		l.logger.Info("tile map rebuilt", "map_id", snap.MapID, "tiles", l.tiles.Len())
	} else {
		l.tiles.RefreshObstacles(snap.Map)
	}

	l.tracker.Tick()

	report := &CycleReport{
		Seq:              snap.Seq,
		MapID:            snap.MapID,
		Pos:              snap.Pos,
		Facing:           snap.Facing,
		Stale:            stale,
		Preview:          l.planner.Preview(snap.Pos),
		FailedDirections: l.tracker.FailedDirections(snap.Pos),
	}

	progress := l.router.Progress()
	report.Progress = progress
	report.Advanced = l.advancedSince(progress)
	if active, ok := l.engine.Active(); ok {
		m := active
		report.Milestone = &m
	}

	if cp := progress.Checkpoint; cp != nil && cp.Coords != nil && cp.Location == snap.MapID {
		report.Target = cp.Coords
		path, planErr := l.planner.Plan(snap.Pos, snap.Facing, *cp.Coords)
		if planErr != nil {
			if !errors.Is(planErr, nav.ErrPathNotFound) {
				return nil, planErr
			}
			report.TargetUnreachable = true
		} else {
			report.Path = path
		}
	}

	report.Degraded = l.sync.DegradedSignal()
	return report, nil
}

// recordMovementOutcome infers the result of the previous cycle's move by
// comparing positions across refreshes: a directional input that left the
// player in place is a blocked attempt, regardless of what the map data
// says about the destination tile.
func (l *Loop) recordMovementOutcome(snap *state.Snapshot) {
	if l.lastMove == "" || l.prev == nil {
		return
	}
	if l.prev.MapID == snap.MapID {
		moved := snap.Pos != l.prev.Pos
		l.tracker.Record(l.prev.Pos, l.lastMove, moved)
	}
	l.lastMove = ""
}

// advancedSince detects a completion between the previous cycle and now.
func (l *Loop) advancedSince(progress milestone.Report) bool {
	advanced := progress.CompletedCount > l.prevCompleted
	l.prevCompleted = progress.CompletedCount
	return advanced
}

// Run drives cycles at the given interval until the context is cancelled
// or the route completes. Progress is persisted on shutdown.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	if l.chooser == nil {
		return fmt.Errorf("loop has no action chooser")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.persistOnExit()
			return ctx.Err()
		case <-ticker.C:
			report, err := l.Cycle(ctx)
			if err != nil {
				l.logger.Error("cycle failed", "error", err)
				continue
			}

			if report.Advanced {
				l.saveCheckpoint(ctx)
			}
			if l.engine.Done() {
				l.logger.Info("route complete, stopping loop")
				l.persistOnExit()
				return nil
			}

			action, err := l.chooser.Choose(ctx, report)
			if err != nil {
				l.logger.Error("action chooser failed", "error", err)
				continue
			}
			l.apply(ctx, action)
		}
	}
}

func (l *Loop) apply(ctx context.Context, action Action) {
	switch {
	case action.Move.Valid():
		if err := l.host.SendInput(ctx, []string{string(action.Move)}); err != nil {
			l.logger.Warn("failed to send movement input", "dir", action.Move, "error", err)
			return
		}
		l.lastMove = action.Move
	case len(action.Buttons) > 0:
		if err := l.host.SendInput(ctx, action.Buttons); err != nil {
			l.logger.Warn("failed to send button input", "buttons", action.Buttons, "error", err)
		}
	}
}

// saveCheckpoint pairs the just-completed milestone with an emulator
// save-state so the run can be resumed consistently.
func (l *Loop) saveCheckpoint(ctx context.Context) {
	ps := l.engine.Progress()
	if len(ps.Completed) == 0 {
		return
	}
	name := ps.Completed[len(ps.Completed)-1]
	ref, err := l.host.SaveCheckpoint(ctx, name)
	if err != nil {
		l.logger.Warn("failed to save emulator checkpoint", "milestone", name, "error", err)
		return
	}
	if err := l.engine.AttachSaveState(ctx, ref); err != nil {
		l.logger.Warn("failed to attach save-state reference", "ref", ref, "error", err)
	}
}

func (l *Loop) persistOnExit() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.engine.Persist(ctx); err != nil {
		l.logger.Error("failed to persist progress on shutdown", "error", err)
	}
}
