// Package match runs the simulation: a roster of trail-laying players on a
// bounded or wrapping plane, advanced by discrete ticks. The model owns all
// mutable state; drivers feed it commands and a tick clock and observe it
// through callbacks or snapshots.
package match

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brensch/gridlock/arena"
	"github.com/brensch/gridlock/behavior"
	"github.com/brensch/gridlock/game"
)

// State is the match lifecycle. Transitions only move forward except
// Paused<->Running; Ended requires a Reset to leave.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Mode selects the ruleset layered on top of the shared movement core.
type Mode string

const (
	// ModeClassic is one human against AI waves. Clearing a wave raises the
	// level and respawns a tougher roster.
	ModeClassic Mode = "classic"
	// ModeVersus is local multiplayer, last entity alive wins. No power-ups.
	ModeVersus Mode = "versus"
	// ModeBoss pits the human against a hit-point pool damaged by collected
	// strike power-ups, on a faster spawn clock.
	ModeBoss Mode = "boss"
)

const (
	classicSpawnEvery = 10 * time.Second
	bossSpawnEvery    = 5 * time.Second

	// hardenedFromLevel is the classic-mode wave at which respawned AIs
	// switch to the hardened tier.
	hardenedFromLevel = 2

	tickScore    = 1
	powerUpScore = 25
	strikeScore  = 50
)

var palette = []string{"#00e5ff", "#ff9100", "#76ff03", "#ff4081", "#ffd600", "#b388ff"}

// Options configures a new match. Zero values pick the defaults noted on
// each field.
type Options struct {
	Mode        Mode       // default ModeClassic
	Arena       arena.Name // default arena.Classic
	Humans      int        // local players, 1 or 2; default 1, negative for none
	AICount     int        // AI opponents; default 3 in classic, negative for none
	HardenedAIs int        // how many of the AIs start on the hardened tier
	Seed        int64      // rng seed; 0 derives one from the wall clock
}

// Model is the authoritative match state. It is not safe for concurrent
// use: drivers serialize input and ticks onto one goroutine, the same way
// a terminal event loop does.
type Model struct {
	opts Options
	cfg  arena.Config
	rng  *rand.Rand

	state State
	tick  int64
	level int32

	players   []*Player
	humans    []*Player
	scheduler *Scheduler
	boss      *Boss
	winner    string

	observers observers[GameObserver]
}

// New builds a match from opts. The roster is humans first, then AIs, each
// with its own strategy; nothing moves until Start.
func New(opts Options) (*Model, error) {
	if opts.Mode == "" {
		opts.Mode = ModeClassic
	}
	if opts.Arena == "" {
		opts.Arena = arena.Classic
	}
	if opts.Humans == 0 {
		opts.Humans = 1
	}
	if opts.Humans < 0 {
		// Explicit request for an AI-only roster, e.g. headless self-play.
		opts.Humans = 0
	}
	if opts.Humans > 2 {
		return nil, fmt.Errorf("match: at most 2 local players, got %d", opts.Humans)
	}
	if opts.AICount == 0 && opts.Mode == ModeClassic {
		opts.AICount = 3
	}
	if opts.AICount < 0 {
		// Explicit request for no AI opponents.
		opts.AICount = 0
	}
	if opts.HardenedAIs < 0 {
		opts.HardenedAIs = 0
	}
	if opts.HardenedAIs > opts.AICount {
		opts.HardenedAIs = opts.AICount
	}
	if opts.Humans == 0 && opts.Mode != ModeVersus {
		return nil, fmt.Errorf("match: mode %q needs a local player", opts.Mode)
	}
	if opts.Humans+opts.AICount < 2 && opts.Mode == ModeVersus {
		return nil, fmt.Errorf("match: versus needs at least 2 entities, got %d", opts.Humans+opts.AICount)
	}

	cfg, err := arena.Resolve(opts.Arena)
	if err != nil {
		return nil, err
	}

	m := &Model{
		opts:  opts,
		cfg:   cfg,
		rng:   newRNG(opts.Seed),
		level: 1,
	}

	base := DefaultConfig()
	for i := 0; i < opts.Humans; i++ {
		p, err := NewPlayer(fmt.Sprintf("p%d", i+1), palette[i%len(palette)], base, cfg, behavior.NewHuman(base.Speed))
		if err != nil {
			return nil, err
		}
		m.players = append(m.players, p)
		m.humans = append(m.humans, p)
	}
	for i := 0; i < opts.AICount; i++ {
		profile := behavior.Baseline
		if i < opts.HardenedAIs {
			profile = behavior.Hardened
		}
		p, err := m.newAIPlayer(i, profile, base)
		if err != nil {
			return nil, err
		}
		m.players = append(m.players, p)
	}

	ev := &playerEvents{m: m}
	for _, p := range m.players {
		p.Attach(ev)
	}

	switch opts.Mode {
	case ModeClassic:
		m.scheduler = NewScheduler(classicSpawnEvery, cfg.Width, cfg.Height, m.rng)
	case ModeBoss:
		m.scheduler = NewScheduler(bossSpawnEvery, cfg.Width, cfg.Height, m.rng)
		m.boss = NewBoss(BossMaxHealth)
	case ModeVersus:
	default:
		return nil, fmt.Errorf("match: unknown mode %q", opts.Mode)
	}

	m.place()
	return m, nil
}

func (m *Model) newAIPlayer(i int, profile behavior.Profile, base PlayerConfig) (*Player, error) {
	cfg := base
	if profile.Lookahead >= HardenedThreshold {
		cfg.Threshold = HardenedThreshold
	}
	id := fmt.Sprintf("ai%d", i+1)
	color := palette[(len(m.humans)+i)%len(palette)]
	return NewPlayer(id, color, cfg, m.cfg, behavior.NewAI(profile, base.Speed, m.rng))
}

// Attach registers a match observer. Nil observers are ignored.
func (m *Model) Attach(o GameObserver) { m.observers.attach(o) }

// Detach removes a match observer; removing twice is a no-op.
func (m *Model) Detach(o GameObserver) { m.observers.detach(o) }

func (m *Model) State() State { return m.state }

// Arena returns the resolved arena configuration.
func (m *Model) Arena() arena.Config { return m.cfg }

func (m *Model) ModeName() Mode { return m.opts.Mode }

func (m *Model) Level() int32 { return m.level }

func (m *Model) TickCount() int64 { return m.tick }

// Winner returns the id of the last entity standing in versus mode, empty
// otherwise or on a draw.
func (m *Model) Winner() string { return m.winner }

// Players returns the full roster, dead entities included.
func (m *Model) Players() []*Player { return m.players }

// Boss returns the hit-point pool, nil outside boss mode.
func (m *Model) Boss() *Boss { return m.boss }

// Start begins ticking from Idle or Ended.
func (m *Model) Start() {
	if m.state == StateRunning || m.state == StatePaused {
		return
	}
	if m.state == StateEnded {
		m.Reset()
	}
	m.setState(StateRunning)
	if m.scheduler != nil {
		m.scheduler.Start()
	}
}

// Pause freezes a running match.
func (m *Model) Pause() {
	if m.state == StateRunning {
		m.setState(StatePaused)
	}
}

// Resume continues a paused match.
func (m *Model) Resume() {
	if m.state == StatePaused {
		m.setState(StateRunning)
	}
}

// Reset returns the match to Idle with fresh positions, trails, charges,
// level and boss health. Observers stay attached.
func (m *Model) Reset() {
	m.tick = 0
	m.level = 1
	m.winner = ""
	if m.scheduler != nil {
		m.scheduler.Reset()
	}
	if m.boss != nil {
		m.boss = NewBoss(BossMaxHealth)
	}
	for i, p := range m.players {
		if m.isHuman(p) {
			continue
		}
		if i-len(m.humans) < m.opts.HardenedAIs {
			// Hardened by configuration, not by wave progression.
			continue
		}
		if p.cfg.Threshold == HardenedThreshold {
			// Classic waves may have hardened this AI; new runs start soft.
			p.cfg.Threshold = DefaultConfig().Threshold
			p.SetStrategy(behavior.NewAI(behavior.Baseline, p.cfg.Speed, m.rng))
		}
	}
	m.place()
	m.setState(StateIdle)
	for _, o := range m.observers.snapshot() {
		o.GameReset()
	}
}

// Tick advances the simulation one step. dt is the wall-clock time the step
// represents; it drives the power-up spawn accumulator. Order within a tick
// is fixed: decisions, movement, spawning and collection, collisions,
// terminal rules, notifications.
func (m *Model) Tick(dt time.Duration) {
	if m.state != StateRunning {
		return
	}
	m.tick++

	for _, p := range m.players {
		if p.Alive() {
			p.applyDecision(worldView{m: m, p: p})
		}
	}
	for _, p := range m.players {
		p.move()
	}

	if m.scheduler != nil {
		m.scheduler.Update(dt)
		for _, p := range m.players {
			if !p.Alive() {
				continue
			}
			if pu := m.scheduler.CollectAt(p.Position()); pu != nil {
				m.applyPowerUp(p, pu)
			}
		}
	}

	m.resolveCollisions()
	m.accrueScores()
	m.applyModeRules()
}

// resolveCollisions runs the pairwise pass with deferred death: every test
// sees the same pre-collision world, so two entities meeting head-on both
// die on the same tick.
func (m *Model) resolveCollisions() {
	dead := make(map[*Player]bool)
	for _, p := range m.players {
		if !p.Alive() {
			continue
		}
		for _, q := range m.players {
			if !q.Alive() && q != p {
				// Dead entities' trails stay lethal until reset.
				if q.trail.Hits(p.pos, p.cfg.Threshold, false) {
					dead[p] = true
				}
				continue
			}
			if q == p {
				// The own newest segment ends at the previous position,
				// inside the wide thresholds on every turn tick, so it is
				// excluded from the self test.
				if p.trail.Hits(p.pos, p.cfg.Threshold, true) {
					dead[p] = true
				}
				continue
			}
			if q.trail.Hits(p.pos, p.cfg.Threshold, false) {
				dead[p] = true
			}
			if p.overlaps(q) {
				dead[p] = true
				dead[q] = true
			}
		}
	}
	for _, p := range m.players {
		if !dead[p] {
			continue
		}
		p.collide()
		for _, o := range m.observers.snapshot() {
			o.PlayerCrashed(p.id)
		}
	}
}

func (m *Model) accrueScores() {
	for _, p := range m.humans {
		if !p.Alive() {
			continue
		}
		score := p.addScore(tickScore)
		for _, o := range m.observers.snapshot() {
			o.ScoreChanged(p.id, score)
		}
	}
}

func (m *Model) applyPowerUp(p *Player, pu *PowerUp) {
	switch pu.Kind {
	case PowerBoost:
		p.GrantBoost()
		for _, o := range m.observers.snapshot() {
			o.BoostCountChanged(p.id, p.BoostCharges())
		}
	case PowerStrike:
		if m.boss != nil {
			m.boss.TakeDamage(BossHitDamage)
		} else {
			if m.isHuman(p) {
				score := p.addScore(strikeScore)
				for _, o := range m.observers.snapshot() {
					o.ScoreChanged(p.id, score)
				}
			}
			return
		}
	}
	if m.isHuman(p) {
		score := p.addScore(powerUpScore)
		for _, o := range m.observers.snapshot() {
			o.ScoreChanged(p.id, score)
		}
	}
}

func (m *Model) applyModeRules() {
	switch m.opts.Mode {
	case ModeVersus:
		alive := m.alivePlayers()
		if len(alive) <= 1 {
			if len(alive) == 1 {
				m.winner = alive[0].id
			}
			m.end()
		}
	case ModeClassic:
		if m.aliveHumans() == 0 {
			m.end()
			return
		}
		if m.aliveAIs() == 0 && m.opts.AICount > 0 {
			m.nextWave()
		}
	case ModeBoss:
		if m.boss != nil && !m.boss.Alive() {
			m.winner = m.humans[0].id
			m.end()
			return
		}
		if m.aliveHumans() == 0 {
			m.end()
		}
	}
}

// nextWave raises the level and respawns the AI roster. Survivor trails,
// scores and charges carry over; from hardenedFromLevel the AIs come back
// on the hardened tier.
func (m *Model) nextWave() {
	m.level++
	profile := behavior.Baseline
	if m.level >= hardenedFromLevel {
		profile = behavior.Hardened
	}
	for _, p := range m.players {
		if m.isHuman(p) {
			continue
		}
		if profile.Lookahead >= HardenedThreshold {
			p.cfg.Threshold = HardenedThreshold
		}
		p.SetStrategy(behavior.NewAI(profile, p.cfg.Speed, m.rng))
		p.Reset(m.spawnPoint())
	}
}

func (m *Model) end() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
	m.setState(StateEnded)
}

func (m *Model) setState(s State) {
	if m.state == s {
		return
	}
	m.state = s
	for _, o := range m.observers.snapshot() {
		o.GameStateChanged(s)
	}
}

// place resets every player onto a fresh spawn point.
func (m *Model) place() {
	for _, p := range m.players {
		p.Reset(m.spawnPoint())
	}
}

// spawnPoint draws a random position from the middle half of the play area,
// rejecting draws inside an obstacle or near another player. Eight tries,
// then the last draw stands.
func (m *Model) spawnPoint() game.Point {
	quarterW, quarterH := m.cfg.Width/4, m.cfg.Height/4
	var pt game.Point
	for tries := 0; tries < 8; tries++ {
		pt = game.Point{
			X: quarterW + m.rng.Int31n(m.cfg.Width/2),
			Y: quarterH + m.rng.Int31n(m.cfg.Height/2),
		}
		if m.cfg.Blocked(pt) {
			continue
		}
		clear := true
		for _, q := range m.players {
			if abs(q.pos.X-pt.X) < 40 && abs(q.pos.Y-pt.Y) < 40 {
				clear = false
				break
			}
		}
		if clear {
			return pt
		}
	}
	return pt
}

func (m *Model) human(slot int) *Player {
	if slot < 0 || slot >= len(m.humans) {
		return nil
	}
	return m.humans[slot]
}

func (m *Model) isHuman(p *Player) bool {
	for _, h := range m.humans {
		if h == p {
			return true
		}
	}
	return false
}

func (m *Model) alivePlayers() []*Player {
	var out []*Player
	for _, p := range m.players {
		if p.Alive() {
			out = append(out, p)
		}
	}
	return out
}

func (m *Model) aliveHumans() int {
	n := 0
	for _, p := range m.humans {
		if p.Alive() {
			n++
		}
	}
	return n
}

func (m *Model) aliveAIs() int {
	n := 0
	for _, p := range m.players {
		if p.Alive() && !m.isHuman(p) {
			n++
		}
	}
	return n
}

// Snapshot freezes the full match for renderers and recorders. The result
// shares nothing with live state.
func (m *Model) Snapshot() game.MatchSnapshot {
	snap := game.MatchSnapshot{
		Tick:   m.tick,
		Width:  m.cfg.Width,
		Height: m.cfg.Height,
		Level:  m.level,
	}
	if len(m.humans) > 0 {
		snap.Score = m.humans[0].Score()
	}
	for _, p := range m.players {
		snap.Players = append(snap.Players, p.Snapshot())
	}
	if m.scheduler != nil {
		for _, pu := range m.scheduler.Items() {
			snap.PowerUps = append(snap.PowerUps, game.PowerUpSnapshot{
				X:      pu.Pos.X,
				Y:      pu.Pos.Y,
				Kind:   string(pu.Kind),
				Radius: pu.Radius,
			})
		}
	}
	if m.boss != nil {
		snap.Boss = m.boss.Snapshot()
	}
	return snap
}

// playerEvents bridges per-entity callbacks onto the game-level observer
// list. Spending a charge happens inside the player, so without the bridge
// game observers would see boost counts rise on grants but never fall.
type playerEvents struct {
	m *Model
}

func (e *playerEvents) PlayerStateChanged(string) {}

func (e *playerEvents) PlayerDied(string) {}

func (e *playerEvents) PlayerCollided(string) {}

func (e *playerEvents) DirectionChanged(string, game.Direction) {}

func (e *playerEvents) BoostActivated(id string) {
	for _, p := range e.m.players {
		if p.id != id {
			continue
		}
		for _, o := range e.m.observers.snapshot() {
			o.BoostCountChanged(id, p.BoostCharges())
		}
		return
	}
}

// worldView is the per-player observation window handed to strategies. Self
// tests skip the own newest segment; everyone else's full trail counts.
type worldView struct {
	m *Model
	p *Player
}

func (v worldView) Position() game.Point { return v.p.pos }

func (v worldView) Bounds() (int32, int32) { return v.m.cfg.Width, v.m.cfg.Height }

func (v worldView) Blocked(at game.Point, margin int32) bool {
	if v.m.cfg.Blocked(at) {
		return true
	}
	for _, q := range v.m.players {
		if q.trail.Hits(at, margin, q == v.p) {
			return true
		}
	}
	return false
}

// newRNG builds the match rand source. A zero seed derives one from the
// wall clock through a splitmix64 scramble so close-together starts do not
// correlate.
func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		z := uint64(time.Now().UnixNano()) + 0x9e3779b97f4a7c15
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		seed = int64(z ^ (z >> 31))
	}
	return rand.New(rand.NewSource(seed))
}
