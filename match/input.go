package match

import "github.com/brensch/gridlock/game"

// Command is one abstract input action. The driver translates keys or
// gestures into commands; the model alone decides whether a command is
// valid for the current life and pause state.
type Command int

const (
	CmdLeft Command = iota
	CmdRight
	CmdUp
	CmdDown
	CmdBoost
	CmdJump

	// Mirrored commands for the second local player.
	CmdLeftP2
	CmdRightP2
	CmdUpP2
	CmdDownP2
	CmdBoostP2
	CmdJumpP2
)

// HandleInput applies cmd to the matching human player. Commands are
// dropped silently while the match is not running or the target is dead.
func (m *Model) HandleInput(cmd Command) {
	if m.state != StateRunning {
		return
	}

	slot := 0
	if cmd >= CmdLeftP2 {
		slot = 1
		cmd -= CmdLeftP2
	}
	p := m.human(slot)
	if p == nil || !p.Alive() {
		return
	}

	switch cmd {
	case CmdLeft:
		p.Steer(game.Left)
	case CmdRight:
		p.Steer(game.Right)
	case CmdUp:
		p.Steer(game.Up)
	case CmdDown:
		p.Steer(game.Down)
	case CmdBoost:
		p.Boost()
	case CmdJump:
		p.RequestJump()
	}
}
