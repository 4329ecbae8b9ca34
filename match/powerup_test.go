package match

import (
	"math/rand"
	"testing"
	"time"

	"github.com/brensch/gridlock/game"
)

func TestBoss_DiesAfterFiveHits(t *testing.T) {
	b := NewBoss(BossMaxHealth)

	for hit := 1; hit <= 5; hit++ {
		b.TakeDamage(BossHitDamage)
		want := int32(BossMaxHealth - hit*BossHitDamage)
		if b.CurrentHealth() != want {
			t.Fatalf("after hit %d: health=%d want=%d", hit, b.CurrentHealth(), want)
		}
	}
	if b.Alive() {
		t.Fatalf("boss alive at zero health")
	}

	// A sixth hit changes nothing.
	b.TakeDamage(BossHitDamage)
	if b.CurrentHealth() != 0 {
		t.Fatalf("health=%d want=0 after overkill", b.CurrentHealth())
	}
}

func TestBoss_IgnoresNonPositiveDamage(t *testing.T) {
	b := NewBoss(BossMaxHealth)
	b.TakeDamage(0)
	b.TakeDamage(-3)
	if b.CurrentHealth() != BossMaxHealth {
		t.Fatalf("health=%d want=%d", b.CurrentHealth(), BossMaxHealth)
	}
}

func TestScheduler_SpawnsOnlyAtInterval(t *testing.T) {
	s := NewScheduler(5*time.Second, 500, 500, rand.New(rand.NewSource(1)))
	s.Start()

	s.Update(4990 * time.Millisecond)
	if len(s.Items()) != 0 {
		t.Fatalf("items=%d want=0 at 4.99s", len(s.Items()))
	}

	s.Update(10 * time.Millisecond)
	if len(s.Items()) != 1 {
		t.Fatalf("items=%d want=1 at 5.0s", len(s.Items()))
	}

	// Accumulator restarts after a spawn.
	s.Update(4990 * time.Millisecond)
	if len(s.Items()) != 1 {
		t.Fatalf("items=%d want=1 before the second interval completes", len(s.Items()))
	}
	s.Update(10 * time.Millisecond)
	if len(s.Items()) != 2 {
		t.Fatalf("items=%d want=2 after the second interval", len(s.Items()))
	}
}

func TestScheduler_StoppedDoesNotSpawn(t *testing.T) {
	s := NewScheduler(time.Second, 500, 500, rand.New(rand.NewSource(1)))
	s.Update(10 * time.Second)
	if len(s.Items()) != 0 {
		t.Fatalf("items=%d want=0 before Start", len(s.Items()))
	}

	s.Start()
	s.Update(time.Second)
	s.Stop()
	s.Update(10 * time.Second)
	if len(s.Items()) != 1 {
		t.Fatalf("items=%d want=1 after Stop", len(s.Items()))
	}
}

func TestScheduler_SpawnsInsideMargins(t *testing.T) {
	s := NewScheduler(time.Second, 500, 500, rand.New(rand.NewSource(9)))
	s.Start()
	for i := 0; i < 50; i++ {
		s.Update(time.Second)
	}
	for _, p := range s.Items() {
		if p.Pos.X < powerUpMargin || p.Pos.X >= 500-powerUpMargin ||
			p.Pos.Y < powerUpMargin || p.Pos.Y >= 500-powerUpMargin {
			t.Fatalf("spawn at %+v violates the %dpx edge margin", p.Pos, powerUpMargin)
		}
	}
}

func TestPowerUp_CollectedExactlyOnce(t *testing.T) {
	s := NewScheduler(time.Second, 500, 500, rand.New(rand.NewSource(2)))
	s.Start()
	s.Update(time.Second)

	pos := s.Items()[0].Pos
	first := s.CollectAt(pos)
	if first == nil {
		t.Fatalf("collection at the spawn point missed")
	}
	if first.Active() {
		t.Fatalf("collected item still active")
	}
	if second := s.CollectAt(pos); second != nil {
		t.Fatalf("item collected twice")
	}
}

func TestPowerUp_HitIsCircular(t *testing.T) {
	p := &PowerUp{Pos: game.Point{X: 100, Y: 100}, Kind: PowerBoost, Radius: PowerUpRadius, active: true}

	if !p.Hit(game.Point{X: 100 + PowerUpRadius, Y: 100}) {
		t.Fatalf("point on the radius should collect")
	}
	// Corner of the enclosing square is outside the circle.
	if p.Hit(game.Point{X: 100 + PowerUpRadius, Y: 100 + PowerUpRadius}) {
		t.Fatalf("square corner should not collect")
	}
}
