package region

import "fmt"

// Grid is a cell-based spatial index over the world. Cell size is chosen so
// that a 3x3 neighbourhood of cells fully covers the broadcast sight range.
// Accessed only from the game loop goroutine — no locks.

// ID identifies one grid cell (a region). Entities carry a trailing history
// of the regions they crossed so the broadcast layer can detect boundary
// crossings.
type ID string

type cellKey struct {
	cx int32
	cy int32
}

func (k cellKey) id() ID {
	return ID(fmt.Sprintf("%d:%d", k.cx, k.cy))
}

// Grid tracks which instances are in which cells.
type Grid struct {
	cellSize int32
	cells    map[cellKey]map[string]struct{} // cellKey → set of instances
}

func NewGrid(cellSize int32) *Grid {
	if cellSize < 1 {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[string]struct{}),
	}
}

func (g *Grid) toCell(v int32) int32 {
	if v < 0 {
		return (v - g.cellSize + 1) / g.cellSize
	}
	return v / g.cellSize
}

func (g *Grid) key(x, y int32) cellKey {
	return cellKey{cx: g.toCell(x), cy: g.toCell(y)}
}

// At returns the region id covering a coordinate.
func (g *Grid) At(x, y int32) ID {
	return g.key(x, y).id()
}

// Add places an instance into the grid and returns its region.
func (g *Grid) Add(instance string, x, y int32) ID {
	k := g.key(x, y)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[string]struct{})
		g.cells[k] = cell
	}
	cell[instance] = struct{}{}
	return k.id()
}

// Remove takes an instance out of the grid.
func (g *Grid) Remove(instance string, x, y int32) {
	k := g.key(x, y)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, instance)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates an instance's cell when its position changes. It returns the
// new region id and whether a region boundary was crossed.
func (g *Grid) Move(instance string, oldX, oldY, newX, newY int32) (ID, bool) {
	oldK := g.key(oldX, oldY)
	newK := g.key(newX, newY)
	if oldK == newK {
		return newK.id(), false
	}
	g.Remove(instance, oldX, oldY)
	g.Add(instance, newX, newY)
	return newK.id(), true
}

// NearbyInto appends all instances in the 3x3 neighbourhood of cells around
// the given position to buf and returns it. Callers do fine-grained distance
// filtering; buf is reused across queries to avoid per-tick allocation.
func (g *Grid) NearbyInto(x, y int32, buf []string) []string {
	cx := g.toCell(x)
	cy := g.toCell(y)
	buf = buf[:0]
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			k := cellKey{cx: cx + dx, cy: cy + dy}
			for inst := range g.cells[k] {
				buf = append(buf, inst)
			}
		}
	}
	return buf
}
