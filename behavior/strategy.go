// Package behavior holds the pluggable decision layer. A strategy decides a
// heading and boost usage each tick; it never mutates the world. Strategies
// are swappable on a live player without touching its identity.
package behavior

import "github.com/brensch/gridlock/game"

// View is the read-only slice of the world a strategy may observe while
// deciding. The match layer hands each player a view centered on itself.
type View interface {
	// Position is the deciding entity's current position.
	Position() game.Point
	// Blocked reports whether any trail segment or static obstacle lies
	// within margin pixels of p. Trails are scanned most-recent first.
	Blocked(p game.Point, margin int32) bool
	// Bounds returns the play-area dimensions.
	Bounds() (w, h int32)
}

// Strategy is the per-tick decision contract.
type Strategy interface {
	// DecideDirection updates the strategy's velocity for this tick.
	DecideDirection(v View)
	// ShouldBoost reports whether the entity should spend a boost charge
	// this tick.
	ShouldBoost() bool
	// Reset clears all decision state for a new life.
	Reset()
	// Velocity returns the current per-tick displacement.
	Velocity() (vx, vy int32)
}

// Jumper is implemented by strategies that can request a trail jump. The
// match layer type-asserts for it after each decision.
type Jumper interface {
	ShouldJump() bool
}

// Human is the pass-through strategy: direction and boost both arrive from
// input translation, so every decision hook is a no-op.
type Human struct {
	vel   game.Velocity
	speed int32
}

// NewHuman returns a human strategy stepping speed pixels per tick.
func NewHuman(speed int32) *Human {
	return &Human{speed: speed}
}

// Steer points the velocity along d at the configured speed. The underlying
// sign rule still applies: a direct reverse is rejected.
func (h *Human) Steer(d game.Direction) bool {
	dx, dy := d.Delta()
	if dx != 0 {
		if !h.vel.SetX(dx * h.speed) {
			return false
		}
		h.vel.Y = 0
		return true
	}
	if !h.vel.SetY(dy * h.speed) {
		return false
	}
	h.vel.X = 0
	return true
}

func (h *Human) DecideDirection(View) {}

func (h *Human) ShouldBoost() bool { return false }

func (h *Human) Reset() {
	h.vel = game.Velocity{}
}

func (h *Human) Velocity() (int32, int32) {
	return h.vel.X, h.vel.Y
}
