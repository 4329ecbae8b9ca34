// Command replay steps through a recorded match in the terminal. It reads
// the Parquet frames written by the arcade or simulate commands and renders
// them on the same kind of ASCII board the arcade uses, with play, pause
// and frame stepping.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/gridlock/arena"
	"github.com/brensch/gridlock/record"
)

const (
	boardCols = 60
	boardRows = 30
)

type tickMsg time.Time

type replay struct {
	rows []record.TickRow
	cfg  arena.Config

	frame   int
	playing bool
	step    time.Duration
}

func tickCmd(step time.Duration) tea.Cmd {
	return tea.Tick(step, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (r replay) Init() tea.Cmd {
	if r.playing {
		return tickCmd(r.step)
	}
	return nil
}

func (r replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return r, tea.Quit
		case " ":
			r.playing = !r.playing
			if r.playing {
				return r, tickCmd(r.step)
			}
		case "left", "h":
			r.playing = false
			if r.frame > 0 {
				r.frame--
			}
		case "right", "l":
			r.playing = false
			if r.frame < len(r.rows)-1 {
				r.frame++
			}
		case "g":
			r.frame = 0
		case "G":
			r.frame = len(r.rows) - 1
		}
	case tickMsg:
		if !r.playing {
			return r, nil
		}
		if r.frame < len(r.rows)-1 {
			r.frame++
			return r, tickCmd(r.step)
		}
		r.playing = false
	}
	return r, nil
}

func (r replay) View() string {
	row := r.rows[r.frame]
	var sb strings.Builder
	sb.WriteString(r.renderBoard(row))
	fmt.Fprintf(&sb, "\nmatch: %s  mode: %s  arena: %s  frame %d/%d  tick %d  level %d  score %d\n",
		row.MatchID, row.Mode, row.Arena, r.frame+1, len(r.rows), row.Tick, row.Level, row.Score)
	for _, p := range row.Players {
		status := "alive"
		if !p.Alive {
			status = "dead"
		}
		fmt.Fprintf(&sb, "  %-4s %-5s boosts:%d\n", p.ID, status, p.Boosts)
	}
	if row.BossHealth >= 0 {
		fmt.Fprintf(&sb, "  boss %d hp\n", row.BossHealth)
	}
	sb.WriteString("\nspace play/pause · h/l step · g/G first/last · q quit\n")
	return sb.String()
}

// renderBoard samples one frame onto a character grid. Later marks win, so
// entities draw over trails and trails over obstacles.
func (r replay) renderBoard(row record.TickRow) string {
	cellW := row.Width / boardCols
	cellH := row.Height / boardRows
	if cellW == 0 || cellH == 0 {
		return ""
	}

	grid := make([][]byte, boardRows)
	for i := range grid {
		grid[i] = make([]byte, boardCols)
		for c := range grid[i] {
			grid[i][c] = ' '
		}
	}

	put := func(x, y int32, ch byte) {
		c := x / cellW
		rr := y / cellH
		if c < 0 || c >= boardCols || rr < 0 || rr >= boardRows {
			return
		}
		grid[boardRows-1-rr][c] = ch
	}

	for _, o := range r.cfg.Obstacles {
		for y := o.Y; y < o.Y+o.Height; y += cellH {
			for x := o.X; x < o.X+o.Width; x += cellW {
				put(x, y, '#')
			}
		}
	}

	for i, p := range row.Players {
		ch := byte('.')
		if i < 2 {
			ch = '='
		}
		for s := range p.TrailAX {
			drawSegment(put, p.TrailAX[s], p.TrailAY[s], p.TrailBX[s], p.TrailBY[s], ch)
		}
	}
	for i := range row.PowerUpX {
		ch := byte('*')
		if row.PowerUpKind[i] == "strike" {
			ch = '+'
		}
		put(row.PowerUpX[i], row.PowerUpY[i], ch)
	}
	for i, p := range row.Players {
		ch := byte('x')
		if p.Alive {
			if i < 2 {
				ch = byte('1' + i)
			} else {
				ch = byte('A' + i - 2)
			}
		}
		put(p.X, p.Y, ch)
	}

	border := "+" + strings.Repeat("-", boardCols) + "+\n"
	var sb strings.Builder
	sb.WriteString(border)
	for _, line := range grid {
		sb.WriteByte('|')
		sb.Write(line)
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return sb.String()
}

func drawSegment(put func(int32, int32, byte), ax, ay, bx, by int32, ch byte) {
	if ax == bx {
		lo, hi := ay, by
		if lo > hi {
			lo, hi = hi, lo
		}
		for y := lo; y <= hi; y += 5 {
			put(ax, y, ch)
		}
		return
	}
	lo, hi := ax, bx
	if lo > hi {
		lo, hi = hi, lo
	}
	for x := lo; x <= hi; x += 5 {
		put(x, ay, ch)
	}
}

func main() {
	file := flag.String("file", "", "recorded match parquet file")
	step := flag.Duration("step", 50*time.Millisecond, "playback frame interval")
	paused := flag.Bool("paused", false, "start paused on the first frame")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -file match.parquet")
		os.Exit(2)
	}

	rows, err := record.ReadMatchParquet(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no frames in", *file)
		os.Exit(1)
	}

	// Batch files interleave matches; keep the first match only.
	first := rows[0].MatchID
	kept := rows[:0]
	for _, row := range rows {
		if row.MatchID == first {
			kept = append(kept, row)
		}
	}
	rows = kept

	cfg, err := arena.Resolve(arena.Name(rows[0].Arena))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	prog := tea.NewProgram(replay{rows: rows, cfg: cfg, playing: !*paused, step: *step})
	if _, err := prog.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
