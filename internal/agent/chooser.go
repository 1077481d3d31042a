package agent

import (
	"context"

	"github.com/jwebster45206/route-agent/pkg/state"
)

// PathFollower is the built-in chooser: follow the planned path when one
// exists, otherwise take the cheapest traversable preview direction,
// preferring the current facing. With nothing traversable it presses A,
// which clears dialogue and nudges stuck cutscenes.
//
// LLM-driven choosers plug in through the same ActionChooser interface.
type PathFollower struct{}

var _ ActionChooser = PathFollower{}

func (PathFollower) Choose(ctx context.Context, report *CycleReport) (Action, error) {
	if len(report.Path) > 0 {
		return Action{Move: report.Path[0]}, nil
	}

	var best state.Direction
	bestPenalty := 0.0
	for _, d := range orderedFrom(report.Facing) {
		step, ok := report.Preview[d]
		if !ok || !step.Traversable() {
			continue
		}
		if best == "" || step.Penalty < bestPenalty {
			best = d
			bestPenalty = step.Penalty
		}
	}
	if best != "" {
		return Action{Move: best}, nil
	}
	return Action{Buttons: []string{"A"}}, nil
}

// orderedFrom lists the four directions with facing first, so ties go to
// the direction the player is already pointing.
func orderedFrom(facing state.Direction) []state.Direction {
	if !facing.Valid() {
		return state.Directions
	}
	out := []state.Direction{facing}
	for _, d := range state.Directions {
		if d != facing {
			out = append(out, d)
		}
	}
	return out
}
