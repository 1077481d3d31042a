package tilemap

import (
	"testing"

	"github.com/jwebster45206/route-agent/pkg/state"
)

// localMap builds map data from a rune grid anchored at origin.
// '.' open, '#' blocked, 'g' grass, '?' unknown, 'v' ledge down.
func localMap(origin state.Coord, rows []string) *state.LocalMap {
	lm := &state.LocalMap{
		Origin: origin,
		Width:  len(rows[0]),
		Height: len(rows),
	}
	for _, row := range rows {
		for _, r := range row {
			var cell state.TerrainCell
			switch r {
			case '.':
				cell.Kind = state.TerrainOpen
			case '#':
				cell.Kind = state.TerrainBlocked
			case 'g':
				cell.Kind = state.TerrainGrass
			case 'v':
				cell.Kind = state.TerrainLedge
				cell.Ledge = state.DirDown
			case '?':
				cell.Kind = state.TerrainUnknown
			default:
				cell.Kind = state.TerrainUnknown
			}
			lm.Cells = append(lm.Cells, cell)
		}
	}
	return lm
}

func TestBuild_Classification(t *testing.T) {
	lm := localMap(state.Coord{X: 0, Y: 0}, []string{
		".#g",
		".v.",
		"...",
	})
	m := Build("ROUTE101", lm)

	tests := []struct {
		name string
		pos  state.Coord
		kind Kind
	}{
		{"open tile", state.Coord{X: 0, Y: 0}, KindWalkable},
		{"blocked tile", state.Coord{X: 1, Y: 0}, KindWall},
		{"grass tile", state.Coord{X: 2, Y: 0}, KindGrass},
		{"ledge tile", state.Coord{X: 1, Y: 1}, KindLedge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile, ok := m.At(tt.pos)
			if !ok {
				t.Fatalf("tile at %v not observed", tt.pos)
			}
			if tile.Kind != tt.kind {
				t.Errorf("expected %s at %v, got %s", tt.kind, tt.pos, tile.Kind)
			}
		})
	}

	ledge, _ := m.At(state.Coord{X: 1, Y: 1})
	if ledge.Ledge != state.DirDown {
		t.Errorf("expected ledge direction DOWN, got %s", ledge.Ledge)
	}
}

func TestBuild_UnknownBoundaryVsInterior(t *testing.T) {
	// Unknown on the window boundary is the map edge still being rendered;
	// unknown in the interior is unobservable terrain and must not be
	// routed through.
	lm := localMap(state.Coord{X: 10, Y: 10}, []string{
		"?..",
		".?.",
		"...",
	})
	m := Build("OLDALE_TOWN", lm)

	boundary, ok := m.At(state.Coord{X: 10, Y: 10})
	if !ok || boundary.Kind != KindUnexplored {
		t.Errorf("boundary unknown should classify unexplored, got %s", boundary.Kind)
	}

	interior, ok := m.At(state.Coord{X: 11, Y: 11})
	if !ok || interior.Kind != KindWall {
		t.Errorf("interior unknown should classify wall, got %s", interior.Kind)
	}
}

func TestBuild_NeverObserved(t *testing.T) {
	lm := localMap(state.Coord{X: 0, Y: 0}, []string{"..", ".."})
	m := Build("ROUTE101", lm)

	tile, ok := m.At(state.Coord{X: 50, Y: 50})
	if ok {
		t.Error("coordinate outside the window should report unobserved")
	}
	if tile.Kind != KindUnexplored {
		t.Errorf("unobserved tile should default unexplored, got %s", tile.Kind)
	}
	if m.Walkable(state.Coord{X: 50, Y: 50}) {
		t.Error("unobserved tile should not be walkable")
	}
}

func TestRefreshObstacles(t *testing.T) {
	lm := localMap(state.Coord{X: 0, Y: 0}, []string{
		"...",
		"...",
	})
	lm.Entities = []state.Coord{{X: 1, Y: 0}}
	m := Build("PETALBURG_CITY", lm)

	tile, _ := m.At(state.Coord{X: 1, Y: 0})
	if tile.Kind != KindObstacle {
		t.Fatalf("occupied tile should report obstacle, got %s", tile.Kind)
	}
	if m.Walkable(state.Coord{X: 1, Y: 0}) {
		t.Error("occupied tile should not be walkable")
	}

	// The NPC moves one tile right; the old tile frees up.
	lm.Entities = []state.Coord{{X: 2, Y: 0}}
	m.RefreshObstacles(lm)

	tile, _ = m.At(state.Coord{X: 1, Y: 0})
	if tile.Kind != KindWalkable {
		t.Errorf("vacated tile should be walkable again, got %s", tile.Kind)
	}
	tile, _ = m.At(state.Coord{X: 2, Y: 0})
	if tile.Kind != KindObstacle {
		t.Errorf("newly occupied tile should report obstacle, got %s", tile.Kind)
	}
}

func TestRefreshObstacles_PreservesTerrain(t *testing.T) {
	lm := localMap(state.Coord{X: 0, Y: 0}, []string{
		".#.",
		"g..",
	})
	m := Build("ROUTE102", lm)
	before := m.Len()

	m.RefreshObstacles(&state.LocalMap{Entities: []state.Coord{{X: 0, Y: 0}}})

	if m.Len() != before {
		t.Errorf("obstacle refresh changed terrain tile count: %d != %d", m.Len(), before)
	}
	wall, _ := m.At(state.Coord{X: 1, Y: 0})
	if wall.Kind != KindWall {
		t.Errorf("wall terrain lost across refresh, got %s", wall.Kind)
	}
	grass, _ := m.At(state.Coord{X: 0, Y: 1})
	if grass.Kind != KindGrass {
		t.Errorf("grass terrain lost across refresh, got %s", grass.Kind)
	}
}

func TestBuild_NilLocalMap(t *testing.T) {
	m := Build("ROUTE101", nil)
	if m.Len() != 0 {
		t.Errorf("nil local map should produce an empty tile map, got %d tiles", m.Len())
	}
	if m.Walkable(state.Coord{X: 0, Y: 0}) {
		t.Error("empty map should have no walkable tiles")
	}
}

func TestTile_Passable(t *testing.T) {
	tests := []struct {
		kind     Kind
		passable bool
	}{
		{KindWalkable, true},
		{KindGrass, true},
		{KindWall, false},
		{KindLedge, false},
		{KindObstacle, false},
		{KindUnexplored, false},
	}
	for _, tt := range tests {
		if got := (Tile{Kind: tt.kind}).Passable(); got != tt.passable {
			t.Errorf("Passable(%s) = %v, expected %v", tt.kind, got, tt.passable)
		}
	}
}
