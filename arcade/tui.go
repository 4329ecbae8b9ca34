package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/gridlock/game"
	"github.com/brensch/gridlock/match"
	"github.com/brensch/gridlock/record"
	"github.com/brensch/gridlock/stream"
)

// Terminal cells are roughly twice as tall as wide, so the board uses
// different sampling per axis to stay square-ish on screen.
const (
	boardCols = 60
	boardRows = 30

	tickRate = 50 * time.Millisecond
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// tui is the Elm-style driver: it owns the tick clock and translates key
// presses into match commands. All simulation state stays in sim.
type tui struct {
	sim *match.Model
	hub *stream.Hub
	rec *record.Recorder

	startTime time.Time
}

func newTUI(sim *match.Model, hub *stream.Hub, rec *record.Recorder) tui {
	return tui{sim: sim, hub: hub, rec: rec, startTime: time.Now()}
}

func (t tui) Init() tea.Cmd {
	t.sim.Start()
	return tickCmd()
}

var keyCommands = map[string]match.Command{
	"w": match.CmdUp,
	"s": match.CmdDown,
	"a": match.CmdLeft,
	"d": match.CmdRight,
	"e": match.CmdBoost,
	"r": match.CmdJump,

	"up":    match.CmdUpP2,
	"down":  match.CmdDownP2,
	"left":  match.CmdLeftP2,
	"right": match.CmdRightP2,
	".":     match.CmdBoostP2,
	",":     match.CmdJumpP2,
}

func (t tui) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return t, tea.Quit
		case "p":
			if t.sim.State() == match.StatePaused {
				t.sim.Resume()
			} else {
				t.sim.Pause()
			}
		case "n":
			t.sim.Reset()
			t.sim.Start()
		default:
			if cmd, ok := keyCommands[msg.String()]; ok {
				t.sim.HandleInput(cmd)
			}
		}
	case tickMsg:
		t.sim.Tick(tickRate)
		if t.sim.State() == match.StateRunning || t.sim.State() == match.StateEnded {
			snap := t.sim.Snapshot()
			if t.hub != nil {
				t.hub.Broadcast(snap)
			}
			if t.rec != nil && t.sim.State() == match.StateRunning {
				t.rec.Capture(snap)
			}
		}
		return t, tickCmd()
	}
	return t, nil
}

func (t tui) View() string {
	snap := t.sim.Snapshot()
	var sb strings.Builder

	sb.WriteString(t.renderBoard(snap))
	sb.WriteByte('\n')
	sb.WriteString(t.renderHUD(snap))
	sb.WriteString("\nwasd steer · e boost · r jump  |  arrows steer · . boost · , jump  |  p pause · n new · q quit\n")
	return sb.String()
}

// renderBoard samples the play area onto a character grid. Later marks win,
// so entities draw over trails and trails over obstacles.
func (t tui) renderBoard(snap game.MatchSnapshot) string {
	cellW := snap.Width / boardCols
	cellH := snap.Height / boardRows
	if cellW == 0 || cellH == 0 {
		return ""
	}

	grid := make([][]byte, boardRows)
	for r := range grid {
		grid[r] = make([]byte, boardCols)
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}

	put := func(p game.Point, ch byte) {
		c := p.X / cellW
		r := p.Y / cellH
		if c < 0 || c >= boardCols || r < 0 || r >= boardRows {
			return
		}
		// Row 0 renders the top of the board.
		grid[boardRows-1-r][c] = ch
	}

	for _, o := range t.sim.Arena().Obstacles {
		for y := o.Y; y < o.Y+o.Height; y += cellH {
			for x := o.X; x < o.X+o.Width; x += cellW {
				put(game.Point{X: x, Y: y}, '#')
			}
		}
	}

	for i, p := range snap.Players {
		for _, s := range p.Trail {
			drawSegment(put, s, trailChar(i))
		}
	}
	for _, pu := range snap.PowerUps {
		ch := byte('*')
		if pu.Kind == "strike" {
			ch = '+'
		}
		put(game.Point{X: pu.X, Y: pu.Y}, ch)
	}
	for i, p := range snap.Players {
		ch := playerChar(i, p.Alive)
		put(game.Point{X: p.X, Y: p.Y}, ch)
	}

	border := "+" + strings.Repeat("-", boardCols) + "+\n"
	var sb strings.Builder
	sb.WriteString(border)
	for _, row := range grid {
		sb.WriteByte('|')
		sb.Write(row)
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return sb.String()
}

func drawSegment(put func(game.Point, byte), s game.Segment, ch byte) {
	if s.Vertical() {
		lo, hi := s.A.Y, s.B.Y
		if lo > hi {
			lo, hi = hi, lo
		}
		for y := lo; y <= hi; y += 5 {
			put(game.Point{X: s.A.X, Y: y}, ch)
		}
		return
	}
	lo, hi := s.A.X, s.B.X
	if lo > hi {
		lo, hi = hi, lo
	}
	for x := lo; x <= hi; x += 5 {
		put(game.Point{X: x, Y: s.A.Y}, ch)
	}
}

func playerChar(i int, alive bool) byte {
	if !alive {
		return 'x'
	}
	if i < 2 {
		return byte('1' + i)
	}
	return byte('A' + i - 2)
}

func trailChar(i int) byte {
	if i < 2 {
		return '='
	}
	return '.'
}

func (t tui) renderHUD(snap game.MatchSnapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "state: %-8s mode: %-8s level: %-3d tick: %-6d score: %d\n",
		t.sim.State(), t.sim.ModeName(), snap.Level, snap.Tick, snap.Score)

	for _, p := range snap.Players {
		status := "alive"
		if !p.Alive {
			status = "dead"
		}
		fmt.Fprintf(&sb, "  %-4s %-5s boosts:%d\n", p.ID, status, p.Boosts)
	}
	if snap.Boss != nil {
		fmt.Fprintf(&sb, "  boss %d/%d hp\n", snap.Boss.Health, snap.Boss.MaxHealth)
	}
	if t.sim.State() == match.StateEnded {
		if w := t.sim.Winner(); w != "" {
			fmt.Fprintf(&sb, "\n  %s wins! press n for a new match\n", w)
		} else {
			sb.WriteString("\n  match over. press n for a new match\n")
		}
	}
	return sb.String()
}
