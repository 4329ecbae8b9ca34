// Package game defines the core simulation primitives for gridlock.
//
// These types carry no behavior beyond geometry and bookkeeping: the tick
// loop lives in package match, decision making in package behavior. Keeping
// the primitives pure makes states cheap to snapshot for rendering,
// streaming and recording.
package game

// Point is a position in play-area pixels.
// (0,0) is the bottom-left corner.
type Point struct {
	X int32
	Y int32
}

// Direction is one of the four headings an entity can hold.
type Direction int

const (
	Up    Direction = 0
	Down  Direction = 1
	Left  Direction = 2
	Right Direction = 3
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// Delta returns the unit step for the direction.
func (d Direction) Delta() (dx, dy int32) {
	switch d {
	case Up:
		return 0, 1
	case Down:
		return 0, -1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Opposite reports whether o is the 180° reverse of d.
func (d Direction) Opposite(o Direction) bool {
	switch d {
	case Up:
		return o == Down
	case Down:
		return o == Up
	case Left:
		return o == Right
	case Right:
		return o == Left
	}
	return false
}

// Velocity is a per-tick displacement. A component never flips sign
// directly; it has to pass through zero first. That is the rule that keeps
// an entity from reversing straight into its own freshly laid trail, so the
// setters enforce it rather than trusting every caller.
type Velocity struct {
	X int32
	Y int32
}

// SetX updates the horizontal component. The update is rejected when the
// new value's sign opposes the current non-zero value.
func (v *Velocity) SetX(x int32) bool {
	if v.X > 0 && x < 0 || v.X < 0 && x > 0 {
		return false
	}
	v.X = x
	return true
}

// SetY updates the vertical component under the same sign rule as SetX.
func (v *Velocity) SetY(y int32) bool {
	if v.Y > 0 && y < 0 || v.Y < 0 && y > 0 {
		return false
	}
	v.Y = y
	return true
}

// Heading maps the velocity onto a direction. Horizontal movement wins when
// both components are set, which cannot happen for grid-stepped entities.
func (v Velocity) Heading() (Direction, bool) {
	switch {
	case v.X > 0:
		return Right, true
	case v.X < 0:
		return Left, true
	case v.Y > 0:
		return Up, true
	case v.Y < 0:
		return Down, true
	}
	return 0, false
}

// Zero reports whether the entity is standing still.
func (v Velocity) Zero() bool {
	return v.X == 0 && v.Y == 0
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
