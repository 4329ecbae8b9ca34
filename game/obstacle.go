package game

// Obstacle is a static axis-aligned rectangle. Touching one is lethal on
// every arena regardless of its boundary topology.
type Obstacle struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}

// Contains reports whether p lies inside the rectangle, borders included.
func (o Obstacle) Contains(p Point) bool {
	return p.X >= o.X && p.X <= o.X+o.Width &&
		p.Y >= o.Y && p.Y <= o.Y+o.Height
}

// IntersectsSegment reports whether an axis-aligned segment crosses the
// rectangle. Used by the AI lookahead to treat walls like trails.
func (o Obstacle) IntersectsSegment(s Segment) bool {
	if s.Vertical() {
		if s.A.X < o.X || s.A.X > o.X+o.Width {
			return false
		}
		lo, hi := min32(s.A.Y, s.B.Y), max32(s.A.Y, s.B.Y)
		return hi >= o.Y && lo <= o.Y+o.Height
	}
	if s.A.Y < o.Y || s.A.Y > o.Y+o.Height {
		return false
	}
	lo, hi := min32(s.A.X, s.B.X), max32(s.A.X, s.B.X)
	return hi >= o.X && lo <= o.X+o.Width
}
