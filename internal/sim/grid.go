package sim

import "math"

// cellKey is a grid cell coordinate.
type cellKey struct{ x, y int }

// Grid buckets hosts by position so contact detection only compares
// each host against hosts in its own and adjacent cells, rather than
// every other host. Cell size is cellSizeMult × the largest transmit
// range in the scenario, so two hosts that could possibly be in range
// always fall in the same or a neighboring cell.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]HostID
}

// NewGrid creates a grid with the given cell size in meters. cellSize
// must be at least the largest interface transmit range in the
// scenario or contacts at the cell boundary could be missed.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{cellSize: cellSize, cells: make(map[cellKey][]HostID)}
}

func (g *Grid) keyFor(p Point) cellKey {
	return cellKey{
		x: int(math.Floor(p.X / g.cellSize)),
		y: int(math.Floor(p.Y / g.cellSize)),
	}
}

// Rebuild re-buckets every host by its current location. Called once
// per tick after mobility updates, before contact detection.
func (g *Grid) Rebuild(hosts map[HostID]*Host) {
	for k := range g.cells {
		delete(g.cells, k)
	}
	for id, h := range hosts {
		k := g.keyFor(h.Location)
		g.cells[k] = append(g.cells[k], id)
	}
}

// CandidatesNear returns every host bucketed in the cell containing
// pos or one of its 8 neighbors. The result may contain hosts that
// are, in fact, out of range; callers must still check distance.
func (g *Grid) CandidatesNear(pos Point) []HostID {
	center := g.keyFor(pos)
	var out []HostID
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			k := cellKey{x: center.x + dx, y: center.y + dy}
			out = append(out, g.cells[k]...)
		}
	}
	return out
}
