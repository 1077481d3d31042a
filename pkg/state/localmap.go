package state

// TerrainKind is the raw terrain classification reported by the emulation
// host for a single tile. It is the host's view of the map data, before
// the tilemap package applies its own classification rules.
type TerrainKind string

const (
	TerrainOpen    TerrainKind = "open"
	TerrainBlocked TerrainKind = "blocked"
	TerrainGrass   TerrainKind = "grass"
	TerrainLedge   TerrainKind = "ledge"
	TerrainUnknown TerrainKind = "unknown"
)

// TerrainCell is one observed tile of local map data.
type TerrainCell struct {
	Kind TerrainKind `json:"kind"`
	// Ledge is the forced traversal direction when Kind is TerrainLedge.
	Ledge Direction `json:"ledge,omitempty"`
}

// LocalMap is the window of map data rendered around the player, as
// reported by the emulation host. Cells are stored row-major from Origin.
// Tiles outside the window have not been observed.
type LocalMap struct {
	Origin Coord         `json:"origin"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Cells  []TerrainCell `json:"cells"`
	// Entities are tiles currently occupied by non-player characters.
	Entities []Coord `json:"entities,omitempty"`
}

// Contains reports whether c lies inside the rendered window.
func (m *LocalMap) Contains(c Coord) bool {
	if m == nil {
		return false
	}
	return c.X >= m.Origin.X && c.X < m.Origin.X+m.Width &&
		c.Y >= m.Origin.Y && c.Y < m.Origin.Y+m.Height
}

// OnBoundary reports whether c is on the outer ring of the rendered window.
func (m *LocalMap) OnBoundary(c Coord) bool {
	if !m.Contains(c) {
		return false
	}
	return c.X == m.Origin.X || c.X == m.Origin.X+m.Width-1 ||
		c.Y == m.Origin.Y || c.Y == m.Origin.Y+m.Height-1
}

// At returns the observed cell for c. The second return is false when c is
// outside the rendered window.
func (m *LocalMap) At(c Coord) (TerrainCell, bool) {
	if !m.Contains(c) {
		return TerrainCell{Kind: TerrainUnknown}, false
	}
	idx := (c.Y-m.Origin.Y)*m.Width + (c.X - m.Origin.X)
	if idx < 0 || idx >= len(m.Cells) {
		return TerrainCell{Kind: TerrainUnknown}, false
	}
	return m.Cells[idx], true
}

// Clone returns a deep copy of the local map.
func (m *LocalMap) Clone() *LocalMap {
	if m == nil {
		return nil
	}
	out := &LocalMap{
		Origin: m.Origin,
		Width:  m.Width,
		Height: m.Height,
	}
	if m.Cells != nil {
		out.Cells = make([]TerrainCell, len(m.Cells))
		copy(out.Cells, m.Cells)
	}
	if m.Entities != nil {
		out.Entities = make([]Coord, len(m.Entities))
		copy(out.Entities, m.Entities)
	}
	return out
}
