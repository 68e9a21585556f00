// Package systems provides the per-tick rules of the simulation: growth and
// decay of vitals, breeding eligibility, the population mortality controller,
// the navigation collaborator, the spatial index and the grass field.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/components"
)

// Neighbor holds a nearby entity with its precomputed squared distance.
type Neighbor struct {
	E      ecs.Entity
	DistSq float64
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid.
// The world is bounded, positions outside it land in the edge cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float64) {
	col, row := g.cell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], e)
}

// QueryRadiusInto finds entities within radius of (x, y) and appends them to
// dst. A radius <= 0 scans the whole grid. Reuse dst across calls to avoid
// allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	c0, r0, c1, r1 := 0, 0, g.cols-1, g.rows-1
	if radius > 0 {
		c0, r0 = g.cell(x-radius, y-radius)
		c1, r1 = g.cell(x+radius, y+radius)
	}
	radiusSq := radius * radius

	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}
				d := distanceSq(x, y, pos.X, pos.Y)
				if radius <= 0 || d <= radiusSq {
					dst = append(dst, Neighbor{E: e, DistSq: d})
				}
			}
		}
	}
	return dst
}

// Nearest returns the closest neighbor accepted by keep, scanning the same
// cells as QueryRadiusInto.
func (g *SpatialGrid) Nearest(x, y, radius float64, exclude ecs.Entity, posMap *ecs.Map1[components.Position], keep func(ecs.Entity) bool) (Neighbor, bool) {
	var best Neighbor
	found := false
	c0, r0, c1, r1 := 0, 0, g.cols-1, g.rows-1
	if radius > 0 {
		c0, r0 = g.cell(x-radius, y-radius)
		c1, r1 = g.cell(x+radius, y+radius)
	}
	radiusSq := radius * radius

	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}
				d := distanceSq(x, y, pos.X, pos.Y)
				if radius > 0 && d > radiusSq {
					continue
				}
				if found && d >= best.DistSq {
					continue
				}
				if keep != nil && !keep(e) {
					continue
				}
				best = Neighbor{E: e, DistSq: d}
				found = true
			}
		}
	}
	return best, found
}

// cell returns the clamped column and row for a world position.
func (g *SpatialGrid) cell(x, y float64) (int, int) {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
