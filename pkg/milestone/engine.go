package milestone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/route-agent/pkg/state"
)

// ErrInconsistentProgress is returned when restored progress violates the
// route's total order. The engine refuses to start from such state rather
// than silently repairing it.
var ErrInconsistentProgress = errors.New("inconsistent restored progress")

// ProgressState is the persisted record of a run. It is owned by the
// Engine; no other component writes it.
type ProgressState struct {
	RunID     uuid.UUID     `json:"run_id"`
	Current   string        `json:"current,omitempty"` // empty once the route is complete
	Completed []string      `json:"completed"`
	Elapsed   time.Duration `json:"elapsed"`
	// SaveStateRef names the emulator save-state paired with this record,
	// so a run can resume both game and progress tracking consistently.
	SaveStateRef string    `json:"savestate_ref,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProgressStore persists ProgressState records.
type ProgressStore interface {
	SaveProgress(ctx context.Context, ps *ProgressState) error
}

// Engine is the state machine over an ordered milestone route. Exactly one
// milestone is active at a time; everything before it in the total order
// is completed and everything after is pending.
//
// Only the active milestone's predicate is ever evaluated. A later
// milestone's condition becoming true first is deliberately ignored, so
// that steps with side effects (item pickups, story events) are never
// skipped.
type Engine struct {
	route   []Milestone
	byID    map[string]int
	store   ProgressStore
	logger  *slog.Logger
	ps      ProgressState
	pointer int // index into route; len(route) means run-complete

	startedAt   time.Time
	elapsedBase time.Duration
}

// NewEngine validates the route and starts a fresh run with the first
// milestone active.
func NewEngine(route []Milestone, store ProgressStore, logger *slog.Logger) (*Engine, error) {
	if len(route) == 0 {
		return nil, fmt.Errorf("milestone route is empty")
	}
	byID := make(map[string]int, len(route))
	for i, m := range route {
		if m.ID == "" {
			return nil, fmt.Errorf("milestone at position %d has no ID", i)
		}
		if _, dup := byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate milestone ID %q", m.ID)
		}
		if i > 0 && m.Position <= route[i-1].Position {
			return nil, fmt.Errorf("milestone %q breaks the total order", m.ID)
		}
		for _, pre := range m.Prereqs {
			idx, ok := byID[pre]
			if !ok || idx >= i {
				return nil, fmt.Errorf("milestone %q prerequisite %q does not precede it", m.ID, pre)
			}
		}
		byID[m.ID] = i
	}

	return &Engine{
		route:  route,
		byID:   byID,
		store:  store,
		logger: logger,
		ps: ProgressState{
			RunID:     uuid.New(),
			Current:   route[0].ID,
			Completed: []string{},
		},
		pointer:   0,
		startedAt: time.Now(),
	}, nil
}

// Restore replaces the engine's progress with a persisted record after
// validating it against the route: the completed set must be an exact
// prefix of the total order and the current pointer must follow it.
// Violations fail fast with ErrInconsistentProgress.
func (e *Engine) Restore(ps *ProgressState) error {
	if ps == nil {
		return fmt.Errorf("%w: nil record", ErrInconsistentProgress)
	}
	if len(ps.Completed) > len(e.route) {
		return fmt.Errorf("%w: %d completed milestones but route has %d", ErrInconsistentProgress, len(ps.Completed), len(e.route))
	}
	for i, id := range ps.Completed {
		if e.route[i].ID != id {
			return fmt.Errorf("%w: completed[%d]=%q, route expects %q", ErrInconsistentProgress, i, id, e.route[i].ID)
		}
	}
	pointer := len(ps.Completed)
	if pointer < len(e.route) {
		if ps.Current != e.route[pointer].ID {
			return fmt.Errorf("%w: current=%q, route expects %q", ErrInconsistentProgress, ps.Current, e.route[pointer].ID)
		}
	} else if ps.Current != "" {
		return fmt.Errorf("%w: route complete but current=%q", ErrInconsistentProgress, ps.Current)
	}

	e.ps = *ps
	e.ps.Completed = append([]string{}, ps.Completed...)
	e.pointer = pointer
	e.elapsedBase = ps.Elapsed
	e.startedAt = time.Now()
	if e.logger != nil {
		e.logger.Info("progress restored", "run_id", e.ps.RunID, "completed", len(e.ps.Completed), "current", e.ps.Current)
	}
	return nil
}

// Observe evaluates the active milestone against a refreshed snapshot and
// advances on satisfaction, persisting the new progress. A predicate that
// cannot be evaluated leaves state unchanged; ambiguity never advances.
// Once the route is complete the engine accepts no further transitions.
func (e *Engine) Observe(ctx context.Context, snap *state.Snapshot) (advanced bool, err error) {
	if e.Done() {
		return false, nil
	}

	active := e.route[e.pointer]
	ok, evalErr := active.Satisfied(snap)
	if evalErr != nil {
		if e.logger != nil {
			e.logger.Warn("milestone verification ambiguous", "milestone", active.ID, "error", evalErr)
		}
		return false, nil
	}
	if !ok {
		return false, nil
	}

	e.ps.Completed = append(e.ps.Completed, active.ID)
	e.advancePointer()
	if e.logger != nil {
		e.logger.Info("milestone completed", "milestone", active.ID, "next", e.ps.Current, "completed", len(e.ps.Completed))
	}

	if err := e.Persist(ctx); err != nil {
		return true, fmt.Errorf("persist after advancement: %w", err)
	}
	return true, nil
}

// advancePointer moves to the next pending milestone whose prerequisites
// are all completed. Route validation guarantees prerequisites precede
// their dependents, so this terminates on the first pending milestone.
func (e *Engine) advancePointer() {
	done := make(map[string]struct{}, len(e.ps.Completed))
	for _, id := range e.ps.Completed {
		done[id] = struct{}{}
	}

	for e.pointer++; e.pointer < len(e.route); e.pointer++ {
		next := e.route[e.pointer]
		ready := true
		for _, pre := range next.Prereqs {
			if _, ok := done[pre]; !ok {
				ready = false
				break
			}
		}
		if ready {
			e.ps.Current = next.ID
			return
		}
	}
	e.ps.Current = ""
	if e.logger != nil {
		e.logger.Info("route complete", "run_id", e.ps.RunID, "elapsed", e.Elapsed())
	}
}

// Persist writes the current progress record. Called on every advancement
// and at graceful shutdown.
func (e *Engine) Persist(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	ps := e.Progress()
	return e.store.SaveProgress(ctx, &ps)
}

// AttachSaveState pairs the progress record with an emulator save-state
// reference and persists the combination.
func (e *Engine) AttachSaveState(ctx context.Context, ref string) error {
	e.ps.SaveStateRef = ref
	return e.Persist(ctx)
}

// Active returns the active milestone. The second return is false once the
// route is complete.
func (e *Engine) Active() (Milestone, bool) {
	if e.Done() {
		return Milestone{}, false
	}
	return e.route[e.pointer], true
}

// Done reports whether every milestone has been completed.
func (e *Engine) Done() bool {
	return e.pointer >= len(e.route)
}

// Elapsed returns cumulative run time, including time restored from a
// previous session.
func (e *Engine) Elapsed() time.Duration {
	return e.elapsedBase + time.Since(e.startedAt)
}

// Progress returns a copy of the current progress record.
func (e *Engine) Progress() ProgressState {
	ps := e.ps
	ps.Completed = append([]string{}, e.ps.Completed...)
	ps.Elapsed = e.Elapsed()
	ps.UpdatedAt = time.Now()
	return ps
}

// Route returns the engine's milestone route.
func (e *Engine) Route() []Milestone {
	return e.route
}
