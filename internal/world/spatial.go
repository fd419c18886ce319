package world

// Spatial predicates over grid coordinates. Movement permits diagonal steps,
// so all distances are Chebyshev (king-move): diagonal and orthogonal
// neighbours are equally one step apart.

// CoordDistance returns the Chebyshev distance between two raw coordinates.
// For callers without live Entity handles (e.g. probing a spawn destination).
func CoordDistance(x1, y1, x2, y2 int32) int32 {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	if dy > dx {
		return dy
	}
	return dx
}

// Distance returns the Chebyshev distance between two entities.
func Distance(a, b *Entity) int32 {
	return CoordDistance(a.X, a.Y, b.X, b.Y)
}

// IsNear reports whether both axis deltas are within radius.
// Equivalent to Distance(a, b) <= radius for any radius >= 0.
func IsNear(a, b *Entity, radius int32) bool {
	return CoordDistance(a.X, a.Y, b.X, b.Y) <= radius
}

// IsSurrounding reports whether b occupies one of the 8 cells adjacent to a,
// or the same cell.
func IsSurrounding(a, b *Entity) bool {
	return Distance(a, b) < 2
}

// IsNonDiagonal reports whether b is an orthogonal neighbour of a (or the
// same cell). True on the same cell: callers that must exclude the self case
// compare instances separately. This is a low-level primitive, not a full
// interaction-eligibility check.
func IsNonDiagonal(a, b *Entity) bool {
	return IsSurrounding(a, b) && (a.X == b.X || a.Y == b.Y)
}
