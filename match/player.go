package match

import (
	"fmt"

	"github.com/brensch/gridlock/arena"
	"github.com/brensch/gridlock/behavior"
	"github.com/brensch/gridlock/game"
)

// PlayerConfig fixes the per-entity tuning at construction. There is no
// process-wide mutable sizing: every entity carries its own copy.
type PlayerConfig struct {
	Size         int32 // bounding-box edge length, pixels
	Speed        int32 // base step per tick
	BoostSpeed   int32 // step per tick while boosting
	BoostTicks   int32 // boost countdown length
	BoostCharges int32 // charges granted on reset
	JumpDistance int32 // single-tick jump offset
	Threshold    int32 // lethal trail proximity for this entity
}

// DefaultConfig is the baseline tuning. Hardened-AI entities override
// Threshold with HardenedThreshold.
func DefaultConfig() PlayerConfig {
	return PlayerConfig{
		Size:         10,
		Speed:        10,
		BoostSpeed:   20,
		BoostTicks:   15,
		BoostCharges: 3,
		JumpDistance: 40,
		Threshold:    6,
	}
}

// HardenedThreshold is the widened proximity used by hardened-AI entities.
const HardenedThreshold = 15

// Steerer is implemented by strategies whose direction is set externally.
type Steerer interface {
	Steer(d game.Direction) bool
}

// Player is a mobile entity: position, velocity, trail, life and boost
// state, plus the attached decision strategy. A player is never removed
// from the roster; death only deactivates it.
type Player struct {
	id    string
	color string
	cfg   PlayerConfig
	arena arena.Config

	pos         game.Point
	vel         game.Velocity
	alive       bool
	jumping     bool
	jumpPending bool
	breakTrail  bool

	boostCharges int32
	boostTicks   int32

	score int32
	trail game.Trail

	strategy  behavior.Strategy
	observers observers[PlayerObserver]
}

// NewPlayer builds a player bound to an arena configuration. The strategy
// is mandatory.
func NewPlayer(id, color string, cfg PlayerConfig, a arena.Config, s behavior.Strategy) (*Player, error) {
	p := &Player{id: id, color: color, cfg: cfg, arena: a}
	if err := p.SetStrategy(s); err != nil {
		return nil, err
	}
	return p, nil
}

// SetStrategy swaps the decision algorithm at runtime. A nil strategy is an
// invalid argument, rejected at assignment time.
func (p *Player) SetStrategy(s behavior.Strategy) error {
	if s == nil {
		return fmt.Errorf("player %s: nil strategy", p.id)
	}
	p.strategy = s
	return nil
}

// Strategy returns the attached decision algorithm.
func (p *Player) Strategy() behavior.Strategy { return p.strategy }

func (p *Player) ID() string { return p.id }

func (p *Player) Alive() bool { return p.alive }

func (p *Player) Jumping() bool { return p.jumping }

func (p *Player) Position() game.Point { return p.pos }

func (p *Player) Velocity() (int32, int32) { return p.vel.X, p.vel.Y }

func (p *Player) BoostCharges() int32 { return p.boostCharges }

func (p *Player) Boosting() bool { return p.boostTicks > 0 }

func (p *Player) Score() int32 { return p.score }

func (p *Player) Trail() *game.Trail { return &p.trail }

// Attach registers an observer. Nil observers are ignored.
func (p *Player) Attach(o PlayerObserver) { p.observers.attach(o) }

// Detach removes an observer; removing twice is a no-op.
func (p *Player) Detach(o PlayerObserver) { p.observers.detach(o) }

// Reset revives the player at start with a clean trail and full charges.
func (p *Player) Reset(start game.Point) {
	p.pos = start
	p.vel = game.Velocity{}
	p.alive = true
	p.jumping = false
	p.jumpPending = false
	p.breakTrail = false
	p.boostCharges = p.cfg.BoostCharges
	p.boostTicks = 0
	p.score = 0
	p.trail.Reset()
	p.strategy.Reset()
	for _, o := range p.observers.snapshot() {
		o.PlayerStateChanged(p.id)
	}
}

// Steer forwards a direction to an externally steered strategy. Returns
// false when the strategy decides for itself or the turn is an illegal
// reverse.
func (p *Player) Steer(d game.Direction) bool {
	s, ok := p.strategy.(Steerer)
	if !ok || !p.alive {
		return false
	}
	if !s.Steer(d) {
		return false
	}
	for _, o := range p.observers.snapshot() {
		o.DirectionChanged(p.id, d)
	}
	return true
}

// Boost spends one charge and starts the countdown. Boosting while already
// boosted restarts the countdown but still costs a charge.
func (p *Player) Boost() bool {
	if !p.alive || p.boostCharges <= 0 {
		return false
	}
	p.boostCharges--
	p.boostTicks = p.cfg.BoostTicks
	for _, o := range p.observers.snapshot() {
		o.BoostActivated(p.id)
	}
	return true
}

// GrantBoost adds one charge without starting a countdown.
func (p *Player) GrantBoost() {
	p.boostCharges++
}

// addScore applies a delta and returns the new total.
func (p *Player) addScore(delta int32) int32 {
	p.score += delta
	return p.score
}

// RequestJump schedules a jump for the next movement step.
func (p *Player) RequestJump() {
	if p.alive {
		p.jumpPending = true
	}
}

// applyDecision runs the strategy hooks for this tick and syncs the
// resulting velocity.
func (p *Player) applyDecision(v behavior.View) {
	if !p.alive {
		return
	}
	before, _ := p.vel.Heading()

	p.strategy.DecideDirection(v)
	vx, vy := p.strategy.Velocity()
	p.vel.X, p.vel.Y = vx, vy

	if after, ok := p.vel.Heading(); ok && after != before {
		for _, o := range p.observers.snapshot() {
			o.DirectionChanged(p.id, after)
		}
	}

	if p.strategy.ShouldBoost() {
		p.Boost()
	}
	if j, ok := p.strategy.(behavior.Jumper); ok && j.ShouldJump() {
		p.RequestJump()
	}
}

// move applies velocity, runs the boundary reaction for the arena topology,
// then clamps to the play area. The trail is extended up to the position
// being left, never to the new head, so a straight run can never collide
// with its own newest segment.
func (p *Player) move() {
	if !p.alive {
		return
	}
	p.jumping = false

	heading, moving := p.vel.Heading()
	if !moving {
		// A jump needs a heading; at rest the request lapses.
		p.jumpPending = false
		return
	}

	old := p.pos
	if p.jumpPending {
		// One oversized step. The trail closes at the takeoff point and
		// breaks: the gap is what makes a trail crossable.
		p.jumpPending = false
		p.jumping = true
		p.trail.Extend(old)
		p.breakTrail = true
		dx, dy := heading.Delta()
		p.pos.X += dx * p.cfg.JumpDistance
		p.pos.Y += dy * p.cfg.JumpDistance
	} else {
		vx, vy := p.effectiveVelocity()
		p.pos.X += vx
		p.pos.Y += vy
		if p.breakTrail {
			p.trail.Start(old)
			p.breakTrail = false
		} else {
			p.trail.Extend(old)
		}
	}

	p.boundaryReact()
	if p.alive && p.arena.Blocked(p.pos) {
		p.crash()
	}
	p.clamp()

	if p.boostTicks > 0 {
		p.boostTicks--
	}
}

// effectiveVelocity scales the nonzero component to the boost magnitude
// while a boost is active. Expiry reverts to the strategy's base velocity,
// not to whatever preceded the boost.
func (p *Player) effectiveVelocity() (int32, int32) {
	vx, vy := p.vel.X, p.vel.Y
	if p.boostTicks <= 0 {
		return vx, vy
	}
	if vx > 0 {
		vx = p.cfg.BoostSpeed
	} else if vx < 0 {
		vx = -p.cfg.BoostSpeed
	}
	if vy > 0 {
		vy = p.cfg.BoostSpeed
	} else if vy < 0 {
		vy = -p.cfg.BoostSpeed
	}
	return vx, vy
}

func (p *Player) boundaryReact() {
	w, h := p.arena.Width, p.arena.Height
	if p.arena.Wrap {
		if p.pos.X < 0 {
			p.pos.X += w
			p.breakTrail = true
		} else if p.pos.X >= w {
			p.pos.X -= w
			p.breakTrail = true
		}
		if p.pos.Y < 0 {
			p.pos.Y += h
			p.breakTrail = true
		} else if p.pos.Y >= h {
			p.pos.Y -= h
			p.breakTrail = true
		}
		return
	}

	if p.pos.X < 0 || p.pos.X >= w {
		p.vel.X = 0
		p.crash()
	}
	if p.pos.Y < 0 || p.pos.Y >= h {
		p.vel.Y = 0
		p.crash()
	}
}

func (p *Player) clamp() {
	if p.pos.X < 0 {
		p.pos.X = 0
	}
	if p.pos.X >= p.arena.Width {
		p.pos.X = p.arena.Width - 1
	}
	if p.pos.Y < 0 {
		p.pos.Y = 0
	}
	if p.pos.Y >= p.arena.Height {
		p.pos.Y = p.arena.Height - 1
	}
}

// crash deactivates the player. Boundary and obstacle deaths route here;
// entity collisions go through collide.
func (p *Player) crash() {
	if !p.alive {
		return
	}
	p.alive = false
	for _, o := range p.observers.snapshot() {
		o.PlayerDied(p.id)
		o.PlayerStateChanged(p.id)
	}
}

// collide deactivates the player after a trail or bounding-box hit.
func (p *Player) collide() {
	if !p.alive {
		return
	}
	for _, o := range p.observers.snapshot() {
		o.PlayerCollided(p.id)
	}
	p.crash()
}

// overlaps runs the half-extent bounding-box test against q.
func (p *Player) overlaps(q *Player) bool {
	half := (p.cfg.Size + q.cfg.Size) / 2
	return abs(p.pos.X-q.pos.X) < half && abs(p.pos.Y-q.pos.Y) < half
}

// Snapshot produces the immutable render packet for this player.
func (p *Player) Snapshot() game.PlayerSnapshot {
	return game.PlayerSnapshot{
		ID:      p.id,
		X:       p.pos.X,
		Y:       p.pos.Y,
		Width:   p.cfg.Size,
		Height:  p.cfg.Size,
		Color:   p.color,
		Alive:   p.alive,
		Jumping: p.jumping,
		Boosts:  p.boostCharges,
		Trail:   p.trail.Segments(),
	}
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
