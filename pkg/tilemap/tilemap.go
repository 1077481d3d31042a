package tilemap

import (
	"github.com/jwebster45206/route-agent/pkg/state"
)

// TileMap is the classified tile grid for a single map identifier.
//
// Terrain is fixed for the lifetime of the map: a TileMap is rebuilt from
// scratch whenever the map identifier changes, never mutated in place
// across location transitions. The obstacle layer is the exception; it is
// replaced every cycle because the entities behind it move.
type TileMap struct {
	MapID     string
	tiles     map[state.Coord]Tile
	obstacles map[state.Coord]struct{}
}

// Build classifies the local map data into a TileMap.
//
// Classification rules: a tile with no observed terrain is unexplored-edge
// only when it lies on the boundary of the rendered window; unobserved
// interior tiles default to wall so that planning never routes through the
// unknown. Ledge cells keep their forced direction. Entity positions go
// into the obstacle layer, not the terrain.
func Build(mapID string, lm *state.LocalMap) *TileMap {
	m := &TileMap{
		MapID:     mapID,
		tiles:     make(map[state.Coord]Tile),
		obstacles: make(map[state.Coord]struct{}),
	}
	if lm == nil {
		return m
	}

	for y := lm.Origin.Y; y < lm.Origin.Y+lm.Height; y++ {
		for x := lm.Origin.X; x < lm.Origin.X+lm.Width; x++ {
			c := state.Coord{X: x, Y: y}
			cell, _ := lm.At(c)
			m.tiles[c] = classify(c, cell, lm)
		}
	}
	m.setObstacles(lm.Entities)
	return m
}

func classify(c state.Coord, cell state.TerrainCell, lm *state.LocalMap) Tile {
	t := Tile{Pos: c}
	switch cell.Kind {
	case state.TerrainOpen:
		t.Kind = KindWalkable
	case state.TerrainGrass:
		t.Kind = KindGrass
	case state.TerrainLedge:
		t.Kind = KindLedge
		t.Ledge = cell.Ledge
	case state.TerrainBlocked:
		t.Kind = KindWall
	case state.TerrainUnknown:
		if lm.OnBoundary(c) {
			t.Kind = KindUnexplored
		} else {
			t.Kind = KindWall
		}
	default:
		t.Kind = KindWall
	}
	return t
}

// RefreshObstacles replaces the obstacle layer from the latest local map
// data. Terrain is left untouched; within one map identifier only the
// entities move.
func (m *TileMap) RefreshObstacles(lm *state.LocalMap) {
	if lm == nil {
		m.obstacles = make(map[state.Coord]struct{})
		return
	}
	m.setObstacles(lm.Entities)
}

func (m *TileMap) setObstacles(entities []state.Coord) {
	obs := make(map[state.Coord]struct{}, len(entities))
	for _, c := range entities {
		obs[c] = struct{}{}
	}
	m.obstacles = obs
}

// At returns the tile at c. Occupied tiles report KindObstacle regardless
// of the underlying terrain. The second return is false when c has never
// been observed on this map.
func (m *TileMap) At(c state.Coord) (Tile, bool) {
	t, ok := m.tiles[c]
	if !ok {
		return Tile{Pos: c, Kind: KindUnexplored}, false
	}
	if _, occupied := m.obstacles[c]; occupied {
		return Tile{Pos: c, Kind: KindObstacle}, true
	}
	return t, true
}

// Walkable reports whether c can be stood on this cycle.
func (m *TileMap) Walkable(c state.Coord) bool {
	t, ok := m.At(c)
	return ok && t.Passable()
}

// Len returns the number of classified tiles.
func (m *TileMap) Len() int {
	return len(m.tiles)
}
