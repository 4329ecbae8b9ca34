package match

import "github.com/brensch/gridlock/game"

const (
	// BossMaxHealth is the fixed hit-point pool in boss modes.
	BossMaxHealth = 10
	// BossHitDamage is subtracted per power-up collected.
	BossHitDamage = 2
)

// Boss is a hit-point state machine: health only decreases, clamps at zero,
// and once dead further damage has no effect.
type Boss struct {
	health int32
	max    int32
}

// NewBoss returns a boss with maxHealth hit points. Non-positive values
// fall back to BossMaxHealth.
func NewBoss(maxHealth int32) *Boss {
	if maxHealth <= 0 {
		maxHealth = BossMaxHealth
	}
	return &Boss{health: maxHealth, max: maxHealth}
}

// TakeDamage subtracts amount, clamped at zero.
func (b *Boss) TakeDamage(amount int32) {
	if b.health == 0 || amount <= 0 {
		return
	}
	b.health -= amount
	if b.health < 0 {
		b.health = 0
	}
}

func (b *Boss) CurrentHealth() int32 { return b.health }

func (b *Boss) MaxHealth() int32 { return b.max }

func (b *Boss) Alive() bool { return b.health > 0 }

// Snapshot returns the render packet for the boss.
func (b *Boss) Snapshot() *game.BossSnapshot {
	return &game.BossSnapshot{Health: b.health, MaxHealth: b.max, Alive: b.Alive()}
}
