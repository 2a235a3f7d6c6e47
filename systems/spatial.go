// Package systems provides the simulation building blocks: coop geometry,
// the seed field, feather effects, agent creation and state triggers.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/coop/torus"
)

// Neighbor holds a nearby agent slot with precomputed spatial data.
type Neighbor struct {
	Index  int    // Slot in the tick's agent list
	D      r2.Vec // Toroidal delta from query origin
	DistSq float64
}

// SpatialGrid provides neighbor lookups using a cell-based grid that wraps on both axes.
type SpatialGrid struct {
	cellW  float64 // Cells divide the world exactly so the seam column is full width
	cellH  float64
	cols   int
	rows   int
	space  torus.Space
	cells  [][]int // flat grid of slot lists
	points []r2.Vec
}

// NewSpatialGrid creates a spatial grid covering the given world.
func NewSpatialGrid(space torus.Space, cellSize float64) *SpatialGrid {
	cols := max(1, int(math.Floor(space.W/cellSize)))
	rows := max(1, int(math.Floor(space.H/cellSize)))

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellW: space.W / float64(cols),
		cellH: space.H / float64(rows),
		cols:  cols,
		rows:  rows,
		space: space,
		cells: cells,
	}
}

// Rebuild clears the grid and inserts every point, indexed by slot.
func (g *SpatialGrid) Rebuild(points []r2.Vec) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.points = points
	for i, p := range points {
		idx := g.cellIndex(p.X, p.Y)
		g.cells[idx] = append(g.cells[idx], i)
	}
}

// QueryRadiusInto finds slots within radius of p and appends them to dst.
// The slot exclude is skipped; pass -1 to keep every match.
// Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, p r2.Vec, radius float64, exclude int) []Neighbor {
	colRadius := int(radius/g.cellW) + 1
	rowRadius := int(radius/g.cellH) + 1
	idx := g.cellIndex(p.X, p.Y)
	centerCol, centerRow := idx%g.cols, idx/g.cols
	radiusSq := radius * radius

	// Small grids would visit the same cell twice when the span wraps.
	colSpan := min(2*colRadius+1, g.cols)
	rowSpan := min(2*rowRadius+1, g.rows)

	for dc := 0; dc < colSpan; dc++ {
		for dr := 0; dr < rowSpan; dr++ {
			col := ((centerCol-colRadius+dc)%g.cols + g.cols) % g.cols
			row := ((centerRow-rowRadius+dr)%g.rows + g.rows) % g.rows
			if colSpan == g.cols {
				col = dc
			}
			if rowSpan == g.rows {
				row = dr
			}

			for _, i := range g.cells[row*g.cols+col] {
				if i == exclude {
					continue
				}
				d := g.space.Vector(p, g.points[i])
				distSq := r2.Norm2(d)
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Index: i, D: d, DistSq: distSq})
				}
			}
		}
	}

	return dst
}

// CountWithin returns the number of slots within radius of p, excluding one slot.
func (g *SpatialGrid) CountWithin(p r2.Vec, radius float64, exclude int) int {
	return len(g.QueryRadiusInto(nil, p, radius, exclude))
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := int(torus.Wrap(x, g.space.W) / g.cellW)
	row := int(torus.Wrap(y, g.space.H) / g.cellH)

	// Clamp to valid range
	if col >= g.cols {
		col = g.cols - 1
	}
	if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
