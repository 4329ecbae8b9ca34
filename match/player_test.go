package match

import (
	"testing"

	"github.com/brensch/gridlock/arena"
	"github.com/brensch/gridlock/behavior"
	"github.com/brensch/gridlock/game"
)

func newTestPlayer(t *testing.T, name arena.Name, start game.Point) *Player {
	t.Helper()
	cfg, err := arena.Resolve(name)
	if err != nil {
		t.Fatalf("resolve %s: %v", name, err)
	}
	base := DefaultConfig()
	p, err := NewPlayer("p1", "#00e5ff", base, cfg, behavior.NewHuman(base.Speed))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	p.Reset(start)
	return p
}

// step runs one decision+movement cycle for a lone player.
func step(p *Player) {
	p.applyDecision(nil)
	p.move()
}

func TestPlayer_SetStrategyRejectsNil(t *testing.T) {
	p := newTestPlayer(t, arena.Classic, game.Point{X: 250, Y: 250})
	if err := p.SetStrategy(nil); err == nil {
		t.Fatalf("nil strategy accepted")
	}
	if p.Strategy() == nil {
		t.Fatalf("rejected assignment cleared the strategy")
	}
}

func TestPlayer_TrailEndsAtPreviousPosition(t *testing.T) {
	p := newTestPlayer(t, arena.Classic, game.Point{X: 100, Y: 250})
	p.Steer(game.Right)

	for i := 0; i < 5; i++ {
		step(p)
	}

	if got := p.Position(); got != (game.Point{X: 150, Y: 250}) {
		t.Fatalf("pos=%+v want=(150,250)", got)
	}
	segs := p.Trail().Segments()
	if len(segs) != 1 {
		t.Fatalf("segments=%d want=1 on a straight run", len(segs))
	}
	if segs[0].B != (game.Point{X: 140, Y: 250}) {
		t.Fatalf("trail end=%+v want=(140,250): trail must trail the head by one step", segs[0].B)
	}
	if !p.Alive() {
		t.Fatalf("straight run killed its own entity")
	}
}

func TestPlayer_TurnsDoNotSelfCollide(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = HardenedThreshold // the widest tier is the dangerous one
	a, _ := arena.Resolve(arena.Classic)
	p, err := NewPlayer("p1", "#fff", cfg, a, behavior.NewHuman(cfg.Speed))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	p.Reset(game.Point{X: 250, Y: 250})

	// A tight staircase: turn every other tick.
	dirs := []game.Direction{game.Right, game.Up, game.Right, game.Up, game.Right, game.Up}
	for _, d := range dirs {
		p.Steer(d)
		step(p)
		step(p)
		if p.trail.Hits(p.pos, p.cfg.Threshold, true) {
			t.Fatalf("head at %+v hits own trail during staircase", p.pos)
		}
	}
}

func TestPlayer_ClampTopologyDiesAtEdge(t *testing.T) {
	p := newTestPlayer(t, arena.Classic, game.Point{X: 495, Y: 250})
	p.Steer(game.Right)
	step(p)

	if p.Alive() {
		t.Fatalf("crossing the bounded edge should be lethal")
	}
	if p.Position().X != arena.Width-1 {
		t.Fatalf("x=%d want=%d: position clamps to the play area", p.Position().X, arena.Width-1)
	}
	if vx, _ := p.Velocity(); vx != 0 {
		t.Fatalf("vx=%d want=0 after the boundary reaction", vx)
	}
}

func TestPlayer_WrapTopologyReappearsOpposite(t *testing.T) {
	p := newTestPlayer(t, arena.Torus, game.Point{X: 495, Y: 250})
	p.Steer(game.Right)
	step(p)

	if !p.Alive() {
		t.Fatalf("wrap topology must not kill at the edge")
	}
	if got := p.Position(); got != (game.Point{X: 5, Y: 250}) {
		t.Fatalf("pos=%+v want=(5,250) after wrapping", got)
	}

	// The next step must not stretch a segment across the whole board.
	step(p)
	for _, s := range p.Trail().Segments() {
		dx := s.B.X - s.A.X
		if dx < 0 {
			dx = -dx
		}
		if dx > 100 {
			t.Fatalf("segment %+v spans the wrap seam", s)
		}
	}
}

func TestPlayer_ObstacleIsLethal(t *testing.T) {
	// Cross arena: vertical bar starts at x=220.
	p := newTestPlayer(t, arena.Cross, game.Point{X: 200, Y: 250})
	p.Steer(game.Right)

	for i := 0; i < 3 && p.Alive(); i++ {
		step(p)
	}
	if p.Alive() {
		t.Fatalf("entity drove into the cross bar and survived at %+v", p.Position())
	}
}

func TestPlayer_BoostScalesVelocityForCountdown(t *testing.T) {
	p := newTestPlayer(t, arena.Classic, game.Point{X: 50, Y: 250})
	p.Steer(game.Right)

	if !p.Boost() {
		t.Fatalf("boost rejected with full charges")
	}
	if p.BoostCharges() != DefaultConfig().BoostCharges-1 {
		t.Fatalf("charges=%d want=%d", p.BoostCharges(), DefaultConfig().BoostCharges-1)
	}

	cfg := DefaultConfig()
	for i := int32(0); i < cfg.BoostTicks; i++ {
		before := p.Position().X
		step(p)
		if d := p.Position().X - before; d != cfg.BoostSpeed {
			t.Fatalf("boosted step %d moved %dpx want=%d", i, d, cfg.BoostSpeed)
		}
	}

	// Countdown spent: revert to base speed.
	before := p.Position().X
	step(p)
	if d := p.Position().X - before; d != cfg.Speed {
		t.Fatalf("post-boost step moved %dpx want=%d", d, cfg.Speed)
	}
}

func TestPlayer_BoostRequiresCharge(t *testing.T) {
	p := newTestPlayer(t, arena.Classic, game.Point{X: 250, Y: 250})
	for p.BoostCharges() > 0 {
		p.Boost()
	}
	if p.Boost() {
		t.Fatalf("boost accepted with zero charges")
	}
}

func TestPlayer_JumpAdvancesAndBreaksTrail(t *testing.T) {
	p := newTestPlayer(t, arena.Classic, game.Point{X: 100, Y: 250})
	p.Steer(game.Right)
	step(p)
	step(p) // x=120, trail up to 110

	p.RequestJump()
	step(p)

	cfg := DefaultConfig()
	if got := p.Position().X; got != 120+cfg.JumpDistance {
		t.Fatalf("x=%d want=%d after jump", got, 120+cfg.JumpDistance)
	}
	if !p.Jumping() {
		t.Fatalf("jumping flag not set on the jump tick")
	}

	step(p)
	if p.Jumping() {
		t.Fatalf("jumping flag must clear on the following tick")
	}

	// The gap between takeoff and landing stays free of trail.
	gap := game.Point{X: 120 + cfg.JumpDistance/2, Y: 250}
	if p.trail.Hits(gap, cfg.Threshold, false) {
		t.Fatalf("jump gap at %+v was back-filled with trail", gap)
	}
}

func TestPlayer_JumpAtRestLapses(t *testing.T) {
	p := newTestPlayer(t, arena.Classic, game.Point{X: 250, Y: 250})

	p.RequestJump()
	step(p)

	if got := p.Position(); got != (game.Point{X: 250, Y: 250}) {
		t.Fatalf("pos=%+v want=(250,250): a jump without a heading must not move", got)
	}
	if p.Jumping() {
		t.Fatalf("jumping flag set while at rest")
	}

	// The lapsed request must not fire once the entity starts moving.
	p.Steer(game.Right)
	step(p)
	if got := p.Position(); got != (game.Point{X: 260, Y: 250}) {
		t.Fatalf("pos=%+v want=(260,250): lapsed jump request fired on the first step", got)
	}
}

func TestPlayer_DeadEntityIgnoresInputAndMovement(t *testing.T) {
	p := newTestPlayer(t, arena.Classic, game.Point{X: 495, Y: 250})
	p.Steer(game.Right)
	step(p)
	if p.Alive() {
		t.Fatalf("setup: expected a dead entity")
	}

	pos := p.Position()
	if p.Steer(game.Up) {
		t.Fatalf("dead entity accepted steering")
	}
	if p.Boost() {
		t.Fatalf("dead entity accepted a boost")
	}
	step(p)
	if p.Position() != pos {
		t.Fatalf("dead entity moved from %+v to %+v", pos, p.Position())
	}
}
