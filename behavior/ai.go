package behavior

import (
	"math/rand"

	"github.com/brensch/gridlock/game"
)

// Profile tunes the heuristic AI. The baseline tier is deliberately sloppy;
// the hardened tier looks further ahead, re-decides more often and is the
// only tier that jumps.
type Profile struct {
	Lookahead   int32   // hazard scan distance and edge margin, pixels
	DecideEvery int     // ticks between voluntary heading changes
	BoostChance float64 // per-tick probability of spending a charge
	JumpChance  float64 // probability of jumping instead of turning away
}

// Baseline is the default AI tier.
var Baseline = Profile{Lookahead: 6, DecideEvery: 40, BoostChance: 0.01}

// Hardened is the tuned AI tier.
var Hardened = Profile{Lookahead: 15, DecideEvery: 20, BoostChance: 0.05, JumpChance: 0.25}

// midline splits the play area for the edge-avoidance heuristic: below it
// the AI turns toward the high side, above it toward the low side.
const midline = 250

// AI is the heuristic strategy. All randomness flows through the injected
// rand source, so a fixed seed replays the same decisions over a fixed
// layout.
type AI struct {
	profile Profile
	speed   int32
	rng     *rand.Rand

	vel      game.Velocity
	timer    int
	wantJump bool
}

// NewAI builds a heuristic strategy stepping speed pixels per tick.
func NewAI(profile Profile, speed int32, rng *rand.Rand) *AI {
	return &AI{profile: profile, speed: speed, rng: rng}
}

func (a *AI) Reset() {
	a.vel = game.Velocity{}
	a.timer = 0
	a.wantJump = false
}

func (a *AI) Velocity() (int32, int32) {
	return a.vel.X, a.vel.Y
}

func (a *AI) ShouldBoost() bool {
	return a.rng.Float64() < a.profile.BoostChance
}

func (a *AI) ShouldJump() bool {
	j := a.wantJump
	a.wantJump = false
	return j
}

func (a *AI) DecideDirection(v View) {
	a.timer++

	heading, moving := a.vel.Heading()
	if !moving {
		// First tick of a life: pick any heading that stays on the board.
		a.steer(a.randomHeading(v, heading, false))
		return
	}

	pos := v.Position()
	margin := a.profile.Lookahead

	// 1. Something lethal straight ahead: jump over it or turn away.
	if v.Blocked(probe(pos, heading, margin), margin) {
		if a.profile.JumpChance > 0 && a.rng.Float64() < a.profile.JumpChance {
			a.wantJump = true
			return
		}
		a.steer(a.turnAway(v, pos, heading, margin))
		return
	}

	// 2. Running out of board: turn toward the roomier half.
	if d, ok := a.edgeEscape(v, pos, heading, margin); ok {
		a.steer(d)
		return
	}

	// 3. Clear path: occasionally wander.
	if a.timer >= a.profile.DecideEvery {
		a.timer = 0
		a.steer(a.randomHeading(v, heading, true))
	}
}

// turnAway picks the perpendicular with no hazard inside the margin,
// favoring the clear side when exactly one is blocked.
func (a *AI) turnAway(v View, pos game.Point, heading game.Direction, margin int32) game.Direction {
	left, right := perpendicular(heading)
	leftBlocked := v.Blocked(probe(pos, left, margin), margin)
	rightBlocked := v.Blocked(probe(pos, right, margin), margin)
	switch {
	case leftBlocked && !rightBlocked:
		return right
	case rightBlocked && !leftBlocked:
		return left
	default:
		if a.rng.Intn(2) == 0 {
			return left
		}
		return right
	}
}

// edgeEscape turns when the current heading would leave the board within
// the margin. The side comes from the midline split, not from scanning.
func (a *AI) edgeEscape(v View, pos game.Point, heading game.Direction, margin int32) (game.Direction, bool) {
	w, h := v.Bounds()
	dx, dy := heading.Delta()
	ahead := game.Point{X: pos.X + dx*margin, Y: pos.Y + dy*margin}
	if ahead.X >= 0 && ahead.X < w && ahead.Y >= 0 && ahead.Y < h {
		return 0, false
	}
	if dx != 0 {
		if pos.Y < midline {
			return game.Up, true
		}
		return game.Down, true
	}
	if pos.X < midline {
		return game.Right, true
	}
	return game.Left, true
}

// randomHeading draws uniformly from the four directions, rejecting draws
// that reverse the current heading or step off the board.
func (a *AI) randomHeading(v View, heading game.Direction, moving bool) game.Direction {
	w, h := v.Bounds()
	pos := v.Position()
	for tries := 0; tries < 8; tries++ {
		d := game.Direction(a.rng.Intn(4))
		if moving && heading.Opposite(d) {
			continue
		}
		dx, dy := d.Delta()
		ahead := game.Point{X: pos.X + dx*a.speed, Y: pos.Y + dy*a.speed}
		if ahead.X < 0 || ahead.X >= w || ahead.Y < 0 || ahead.Y >= h {
			continue
		}
		return d
	}
	if moving {
		return heading
	}
	return game.Right
}

func (a *AI) steer(d game.Direction) {
	dx, dy := d.Delta()
	if dx != 0 {
		if a.vel.SetX(dx * a.speed) {
			a.vel.Y = 0
		}
		return
	}
	if a.vel.SetY(dy * a.speed) {
		a.vel.X = 0
	}
}

// probe returns the point margin pixels ahead of pos along d.
func probe(pos game.Point, d game.Direction, margin int32) game.Point {
	dx, dy := d.Delta()
	return game.Point{X: pos.X + dx*margin, Y: pos.Y + dy*margin}
}

// perpendicular returns the two headings at 90° to d.
func perpendicular(d game.Direction) (game.Direction, game.Direction) {
	if d == game.Up || d == game.Down {
		return game.Left, game.Right
	}
	return game.Down, game.Up
}
