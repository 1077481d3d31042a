package tilemap

import "github.com/jwebster45206/route-agent/pkg/state"

// Kind classifies a tile for movement planning.
type Kind string

const (
	KindWalkable   Kind = "walkable"
	KindWall       Kind = "wall"
	KindLedge      Kind = "ledge"
	KindGrass      Kind = "grass"
	KindObstacle   Kind = "obstacle"
	KindUnexplored Kind = "unexplored"
)

// Tile is a classified map tile. Ledge tiles carry a single forced
// direction and are only ever an outgoing edge in that direction.
type Tile struct {
	Pos   state.Coord     `json:"pos"`
	Kind  Kind            `json:"kind"`
	Ledge state.Direction `json:"ledge,omitempty"`
}

// Passable reports whether the tile can be stood on.
func (t Tile) Passable() bool {
	return t.Kind == KindWalkable || t.Kind == KindGrass
}
