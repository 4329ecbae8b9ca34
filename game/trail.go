package game

// Trail is the ordered sequence of segments an entity has laid down.
// Insertion order is significant: the collision pass scans newest-first
// because the mover is almost always near its own recent past.
//
// The sequence is kept minimal: extending the trail along the direction of
// its newest segment merges into that segment instead of appending, so a
// long straight run is always a single segment.
type Trail struct {
	segments []Segment
}

// Len returns the number of stored segments after compaction.
func (t *Trail) Len() int {
	return len(t.segments)
}

// Extend grows the trail up to p. The first call seeds a zero-length
// segment; later calls either stretch the newest segment (colinear via the
// shared corner) or start a new one.
func (t *Trail) Extend(p Point) {
	n := len(t.segments)
	if n == 0 {
		t.segments = append(t.segments, Segment{A: p, B: p})
		return
	}

	last := &t.segments[n-1]
	if last.B == p {
		return
	}
	if colinear(last.A, last.B, p) {
		last.B = p
		return
	}
	t.segments = append(t.segments, Segment{A: last.B, B: p})
}

// Start seeds a fresh segment at p without connecting it to the previous
// one. Used after discontinuous moves (jumps, wrap teleports) where merging
// would lay trail across ground the entity never covered.
func (t *Trail) Start(p Point) {
	if len(t.segments) == 0 {
		t.segments = append(t.segments, Segment{A: p, B: p})
		return
	}
	if t.segments[len(t.segments)-1].B == p {
		return
	}
	t.segments = append(t.segments, Segment{A: p, B: p})
}

// Hits reports whether p is within threshold of any segment, scanning in
// reverse append order. skipNewest excludes the segment currently being
// laid, which the owner's own head necessarily touches.
func (t *Trail) Hits(p Point, threshold int32, skipNewest bool) bool {
	start := len(t.segments) - 1
	if skipNewest {
		start--
	}
	for i := start; i >= 0; i-- {
		if t.segments[i].Near(p, threshold) {
			return true
		}
	}
	return false
}

// Segments returns a copy of the segment sequence, oldest first.
// The copy is safe to hand to renderers.
func (t *Trail) Segments() []Segment {
	if len(t.segments) == 0 {
		return nil
	}
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Reset drops the whole trail. Called when the owning entity respawns.
func (t *Trail) Reset() {
	t.segments = t.segments[:0]
}

// colinear reports whether a, b, c lie on one axis-aligned line.
func colinear(a, b, c Point) bool {
	if a.X == b.X && b.X == c.X {
		return true
	}
	return a.Y == b.Y && b.Y == c.Y
}
