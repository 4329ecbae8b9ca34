package match

import "github.com/brensch/gridlock/game"

// GameObserver receives match-level callbacks. Implementations must not
// block; they run inline on the ticking goroutine.
type GameObserver interface {
	GameStateChanged(s State)
	ScoreChanged(playerID string, score int32)
	BoostCountChanged(playerID string, charges int32)
	PlayerCrashed(playerID string)
	GameReset()
}

// PlayerObserver receives per-entity callbacks.
type PlayerObserver interface {
	PlayerStateChanged(id string)
	PlayerDied(id string)
	PlayerCollided(id string)
	DirectionChanged(id string, d game.Direction)
	BoostActivated(id string)
}

// observers is an attach/detach list shared by the model and players.
// Notification iterates a snapshot of the list, so a callback may attach or
// detach without corrupting the pass. Nil attaches are ignored and detach
// is idempotent.
type observers[T comparable] struct {
	list []T
}

func (o *observers[T]) attach(obs T) {
	var zero T
	if obs == zero {
		return
	}
	for _, have := range o.list {
		if have == obs {
			return
		}
	}
	o.list = append(o.list, obs)
}

func (o *observers[T]) detach(obs T) {
	for i, have := range o.list {
		if have == obs {
			o.list = append(o.list[:i], o.list[i+1:]...)
			return
		}
	}
}

// snapshot returns the current list for iteration.
func (o *observers[T]) snapshot() []T {
	if len(o.list) == 0 {
		return nil
	}
	out := make([]T, len(o.list))
	copy(out, o.list)
	return out
}
