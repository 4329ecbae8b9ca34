package match

import (
	"math/rand"
	"time"

	"github.com/brensch/gridlock/game"
)

// PowerUpKind tags what a collectible does.
type PowerUpKind string

const (
	// PowerBoost grants one boost charge.
	PowerBoost PowerUpKind = "boost"
	// PowerStrike lands one hit on the boss (score bonus outside boss modes).
	PowerStrike PowerUpKind = "strike"
)

const (
	// PowerUpRadius is the circular collection radius in pixels.
	PowerUpRadius = 12
	// powerUpMargin keeps spawns away from the play-area edges.
	powerUpMargin = 20
)

// PowerUp is one collectible item. It deactivates on first successful
// collection and never yields again.
type PowerUp struct {
	Pos    game.Point
	Kind   PowerUpKind
	Radius int32
	active bool
}

// Active reports whether the item can still be collected.
func (p *PowerUp) Active() bool { return p.active }

// Hit runs the circular collision test against at.
func (p *PowerUp) Hit(at game.Point) bool {
	if !p.active {
		return false
	}
	dx := int64(at.X - p.Pos.X)
	dy := int64(at.Y - p.Pos.Y)
	return dx*dx+dy*dy <= int64(p.Radius)*int64(p.Radius)
}

// Scheduler spawns power-ups on a fixed wall-clock interval. It is
// disabled until started; while running it accumulates elapsed time and
// spawns one item each time the accumulator crosses the interval. Items
// coexist until collected.
type Scheduler struct {
	interval time.Duration
	elapsed  time.Duration
	running  bool
	rng      *rand.Rand
	width    int32
	height   int32
	items    []*PowerUp
}

// NewScheduler builds a stopped scheduler for a width×height play area.
func NewScheduler(interval time.Duration, width, height int32, rng *rand.Rand) *Scheduler {
	return &Scheduler{interval: interval, rng: rng, width: width, height: height}
}

// Start enables spawning. The accumulator starts from zero.
func (s *Scheduler) Start() {
	s.running = true
	s.elapsed = 0
}

// Stop disables spawning without clearing active items.
func (s *Scheduler) Stop() {
	s.running = false
}

// Reset stops the scheduler and drops all items.
func (s *Scheduler) Reset() {
	s.running = false
	s.elapsed = 0
	s.items = s.items[:0]
}

// Update advances the accumulator by dt and spawns when it crosses the
// interval. No-op while stopped.
func (s *Scheduler) Update(dt time.Duration) {
	if !s.running || s.interval <= 0 {
		return
	}
	s.elapsed += dt
	if s.elapsed >= s.interval {
		s.elapsed = 0
		s.spawn()
	}
}

func (s *Scheduler) spawn() {
	kind := PowerBoost
	if s.rng.Intn(2) == 1 {
		kind = PowerStrike
	}
	p := &PowerUp{
		Pos: game.Point{
			X: powerUpMargin + s.rng.Int31n(s.width-2*powerUpMargin),
			Y: powerUpMargin + s.rng.Int31n(s.height-2*powerUpMargin),
		},
		Kind:   kind,
		Radius: PowerUpRadius,
		active: true,
	}
	s.items = append(s.items, p)
}

// CollectAt returns the first active item hit at pos, deactivating and
// removing it from the active set. Nil when nothing was hit.
func (s *Scheduler) CollectAt(pos game.Point) *PowerUp {
	for i, p := range s.items {
		if p.Hit(pos) {
			p.active = false
			s.items = append(s.items[:i], s.items[i+1:]...)
			return p
		}
	}
	return nil
}

// Items returns the active set for snapshots.
func (s *Scheduler) Items() []*PowerUp {
	return s.items
}
