package game

// Segment is one straight piece of a trail. Trails are laid along the grid
// axes, so every segment is either vertical or horizontal.
type Segment struct {
	A Point
	B Point
}

// Vertical reports whether the segment runs along the y axis.
// A zero-length segment counts as vertical.
func (s Segment) Vertical() bool {
	return s.A.X == s.B.X
}

// Horizontal reports whether the segment runs along the x axis.
func (s Segment) Horizontal() bool {
	return s.A.Y == s.B.Y
}

// Near reports whether p lies within threshold pixels of the segment,
// measured perpendicular to its axis and bounded by its extent. This is the
// lethal-proximity test the collision pass runs against every trail.
func (s Segment) Near(p Point, threshold int32) bool {
	if s.Vertical() {
		lo, hi := min32(s.A.Y, s.B.Y), max32(s.A.Y, s.B.Y)
		return p.Y >= lo && p.Y <= hi && abs32(p.X-s.A.X) <= threshold
	}
	lo, hi := min32(s.A.X, s.B.X), max32(s.A.X, s.B.X)
	return p.X >= lo && p.X <= hi && abs32(p.Y-s.A.Y) <= threshold
}
