package nav

import (
	"log/slog"

	"github.com/jwebster45206/route-agent/pkg/state"
)

// Attempt is one recorded movement attempt from a coordinate.
type Attempt struct {
	Pos       state.Coord
	Dir       state.Direction
	Succeeded bool
	Cycle     uint64
}

// TrackerConfig bounds the outcome tracker's recency window.
type TrackerConfig struct {
	// Window caps the number of retained attempts per coordinate.
	Window int
	// MaxAge is the number of cycles after which attempts are discarded.
	MaxAge uint64
	// PenaltyStep is the cost added per consecutive recent failure.
	PenaltyStep float64
}

// DefaultTrackerConfig mirrors the collision limits the agent was tuned
// with: five attempts per tile, aged out after fifty cycles.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{Window: 5, MaxAge: 50, PenaltyStep: 2.0}
}

// OutcomeTracker is a per-coordinate ledger of recent movement attempts.
//
// It compensates for the tile map's blind spot: entities that are absent
// from structured map data but still block movement. Tiles the map calls
// walkable accumulate penalty weight as attempts fail there, so the
// planner routes around them without excluding them outright.
type OutcomeTracker struct {
	cfg      TrackerConfig
	cycle    uint64
	attempts map[state.Coord][]Attempt
	logger   *slog.Logger
}

// NewOutcomeTracker creates a tracker with the given bounds. Zero or
// negative config fields fall back to defaults.
func NewOutcomeTracker(cfg TrackerConfig, logger *slog.Logger) *OutcomeTracker {
	def := DefaultTrackerConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}
	if cfg.PenaltyStep <= 0 {
		cfg.PenaltyStep = def.PenaltyStep
	}
	return &OutcomeTracker{
		cfg:      cfg,
		attempts: make(map[state.Coord][]Attempt),
		logger:   logger,
	}
}

// Tick advances the tracker's cycle counter and ages out stale attempts.
// The decision loop calls this once per cycle.
func (t *OutcomeTracker) Tick() {
	t.cycle++
	for pos, window := range t.attempts {
		kept := window[:0]
		for _, a := range window {
			if t.cycle-a.Cycle <= t.cfg.MaxAge {
				kept = append(kept, a)
			}
		}
		if len(kept) == 0 {
			delete(t.attempts, pos)
		} else {
			t.attempts[pos] = kept
		}
	}
}

// Record notes the outcome of a movement attempt from pos in direction
// dir. History is keyed by the destination tile, since that is where the
// unseen blocker sits. A success clears the destination's failure history
// so its penalty returns to zero immediately.
func (t *OutcomeTracker) Record(pos state.Coord, dir state.Direction, succeeded bool) {
	dest := pos.Step(dir)
	if succeeded {
		if _, ok := t.attempts[dest]; ok {
			delete(t.attempts, dest)
			if t.logger != nil {
				t.logger.Debug("movement recovered, penalty cleared", "dest", dest, "dir", dir)
			}
		}
		return
	}

	window := append(t.attempts[dest], Attempt{
		Pos:       pos,
		Dir:       dir,
		Succeeded: false,
		Cycle:     t.cycle,
	})
	if len(window) > t.cfg.Window {
		window = window[len(window)-t.cfg.Window:]
	}
	t.attempts[dest] = window
	if t.logger != nil {
		t.logger.Debug("movement failure recorded", "dest", dest, "dir", dir, "recent_failures", len(window))
	}
}

// Penalty returns the extra path cost for entering pos, scaled by the
// number of recent failed attempts to enter it. It is zero for
// coordinates with no recorded failures.
func (t *OutcomeTracker) Penalty(pos state.Coord) float64 {
	window := t.attempts[pos]
	failures := 0
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].Succeeded {
			break
		}
		failures++
	}
	return float64(failures) * t.cfg.PenaltyStep
}

// FailedDirections returns the directions whose neighboring tile carries
// recent failure history, in canonical order.
func (t *OutcomeTracker) FailedDirections(pos state.Coord) []state.Direction {
	var out []state.Direction
	for _, d := range state.Directions {
		if len(t.attempts[pos.Step(d)]) > 0 {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of coordinates with recorded attempts.
func (t *OutcomeTracker) Len() int {
	return len(t.attempts)
}
