package nav

import (
	"container/heap"
	"errors"
	"log/slog"

	"github.com/jwebster45206/route-agent/pkg/state"
	"github.com/jwebster45206/route-agent/pkg/tilemap"
)

// ErrPathNotFound is returned when the target is unreachable in the
// current tile map, for example across an unexplored boundary or behind a
// one-way ledge from the wrong side. Callers fall back to preview-driven
// single steps; it is never fatal.
var ErrPathNotFound = errors.New("path not found")

// Outcome classifies one candidate step.
type Outcome string

const (
	OutcomeWalkable Outcome = "walkable"
	OutcomeBlocked  Outcome = "blocked"
	// OutcomeLedgeHop is a ledge traversal in its forced direction; the
	// resulting coordinate is the landing tile beyond the ledge.
	OutcomeLedgeHop Outcome = "ledge_hop"
	OutcomeOutOfMap Outcome = "out_of_map"
)

// Step is the resolved outcome of moving one tile in a direction.
type Step struct {
	Dir     state.Direction `json:"dir"`
	Outcome Outcome         `json:"outcome"`
	// To is the resulting coordinate when the step is traversable.
	To state.Coord `json:"to,omitempty"`
	// Kind is the classification of the destination tile.
	Kind tilemap.Kind `json:"kind,omitempty"`
	// Reason explains a blocked outcome.
	Reason string `json:"reason,omitempty"`
	// Penalty is the tracker weight on the destination.
	Penalty float64 `json:"penalty,omitempty"`
}

// Traversable reports whether the step can be taken this cycle.
func (s Step) Traversable() bool {
	return s.Outcome == OutcomeWalkable || s.Outcome == OutcomeLedgeHop
}

// Preview is the per-direction outcome table for the four immediate moves.
type Preview map[state.Direction]Step

// Planner computes movement previews and full paths over a TileMap,
// consulting the outcome tracker for empirical penalties. It holds no
// mutable state of its own; both operations are pure reads.
type Planner struct {
	tiles   *tilemap.TileMap
	tracker *OutcomeTracker
	logger  *slog.Logger
}

// NewPlanner creates a planner over the given map and tracker.
func NewPlanner(tiles *tilemap.TileMap, tracker *OutcomeTracker, logger *slog.Logger) *Planner {
	return &Planner{tiles: tiles, tracker: tracker, logger: logger}
}

// Preview resolves each of the four cardinal directions from pos. It is
// the cheap, always-available operation used every decision cycle, and is
// idempotent between refreshes.
func (p *Planner) Preview(pos state.Coord) Preview {
	out := make(Preview, len(state.Directions))
	for _, d := range state.Directions {
		out[d] = p.resolve(pos, d)
	}
	return out
}

func (p *Planner) resolve(pos state.Coord, d state.Direction) Step {
	dest := pos.Step(d)
	tile, ok := p.tiles.At(dest)
	if !ok {
		return Step{Dir: d, Outcome: OutcomeOutOfMap}
	}

	step := Step{Dir: d, Kind: tile.Kind}
	switch tile.Kind {
	case tilemap.KindWall:
		step.Outcome = OutcomeBlocked
		step.Reason = "wall"
	case tilemap.KindUnexplored:
		step.Outcome = OutcomeBlocked
		step.Reason = "unexplored edge"
	case tilemap.KindObstacle:
		step.Outcome = OutcomeBlocked
		step.Reason = "occupied"
	case tilemap.KindLedge:
		if tile.Ledge != d {
			step.Outcome = OutcomeBlocked
			step.Reason = "one-way ledge"
			break
		}
		landing := dest.Step(d)
		if !p.tiles.Walkable(landing) {
			step.Outcome = OutcomeBlocked
			step.Reason = "ledge landing blocked"
			break
		}
		step.Outcome = OutcomeLedgeHop
		step.To = landing
		step.Penalty = p.penalty(landing)
	default:
		step.Outcome = OutcomeWalkable
		step.To = dest
		step.Penalty = p.penalty(dest)
	}
	return step
}

func (p *Planner) penalty(c state.Coord) float64 {
	if p.tracker == nil {
		return 0
	}
	return p.tracker.Penalty(c)
}

type planNode struct {
	pos    state.Coord
	g      float64
	f      float64
	seq    int
	via    state.Direction
	parent *planNode
}

type planQueue []*planNode

func (q planQueue) Len() int { return len(q) }

func (q planQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q planQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *planQueue) Push(x any) { *q = append(*q, x.(*planNode)) }

func (q *planQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

func heuristic(a, b state.Coord) float64 {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return float64(dx + dy)
}

// Plan computes a shortest path from pos to target as an ordered direction
// sequence. Edges exist between adjacent passable tiles; ledge edges are
// directed and unit-cost in their forced direction only; tiles with recent
// failure history cost more but stay passable, since the obstacle behind
// the failures may have moved. Equal-cost alternatives prefer the
// direction the player is already facing.
func (p *Planner) Plan(pos state.Coord, facing state.Direction, target state.Coord) ([]state.Direction, error) {
	if pos == target {
		return nil, nil
	}

	open := &planQueue{}
	heap.Init(open)
	seq := 0
	heap.Push(open, &planNode{pos: pos, g: 0, f: heuristic(pos, target), via: facing})
	gScore := map[state.Coord]float64{pos: 0}
	closed := make(map[state.Coord]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*planNode)
		if _, seen := closed[current.pos]; seen {
			continue
		}
		closed[current.pos] = struct{}{}
		if current.pos == target {
			return reconstruct(current), nil
		}

		for _, d := range directionOrder(current.via) {
			step := p.resolve(current.pos, d)
			if !step.Traversable() {
				continue
			}
			if _, seen := closed[step.To]; seen {
				continue
			}
			tentative := current.g + 1 + step.Penalty
			if prev, ok := gScore[step.To]; ok && tentative >= prev {
				continue
			}
			gScore[step.To] = tentative
			seq++
			heap.Push(open, &planNode{
				pos:    step.To,
				g:      tentative,
				f:      tentative + heuristic(step.To, target),
				seq:    seq,
				via:    d,
				parent: current,
			})
		}
	}

	if p.logger != nil {
		p.logger.Debug("no path to target", "from", pos, "to", target)
	}
	return nil, ErrPathNotFound
}

// directionOrder yields the four directions with the facing direction
// first, so equal-cost expansions keep the player's heading.
func directionOrder(facing state.Direction) []state.Direction {
	if !facing.Valid() {
		return state.Directions
	}
	out := make([]state.Direction, 0, len(state.Directions))
	out = append(out, facing)
	for _, d := range state.Directions {
		if d != facing {
			out = append(out, d)
		}
	}
	return out
}

func reconstruct(end *planNode) []state.Direction {
	var dirs []state.Direction
	for n := end; n.parent != nil; n = n.parent {
		dirs = append(dirs, n.via)
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}
