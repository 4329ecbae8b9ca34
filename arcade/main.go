// Command arcade is the playable terminal client: it runs one match at a
// fixed tick rate, maps keys onto player commands and renders snapshots as
// an ASCII board. It can additionally stream frames to spectators, record
// the match to Parquet and submit the final score to the local leaderboard.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/gridlock/arena"
	"github.com/brensch/gridlock/behavior"
	"github.com/brensch/gridlock/inference"
	"github.com/brensch/gridlock/logging"
	"github.com/brensch/gridlock/match"
	"github.com/brensch/gridlock/record"
	"github.com/brensch/gridlock/score"
	"github.com/brensch/gridlock/stream"
)

func main() {
	mode := flag.String("mode", "classic", "game mode: classic, versus, boss")
	arenaName := flag.String("arena", "classic", "arena: classic, torus, cross, chambers")
	humans := flag.Int("humans", 1, "local players (1 or 2)")
	aiCount := flag.Int("ai", 0, "AI opponents (0 = mode default)")
	seed := flag.Int64("seed", 0, "rng seed (0 = random)")
	nick := flag.String("nick", "player", "nickname for leaderboard entries")
	scorePath := flag.String("scores", "scores.json", "leaderboard file")
	recordDir := flag.String("record", "", "write the match as parquet into this directory")
	streamAddr := flag.String("stream", "", "serve spectators on this address (e.g. :8091)")
	modelPath := flag.String("model", "", "ONNX policy for one AI opponent")
	sessions := flag.Int("sessions", 1, "ONNX sessions when -model is set")
	flag.Parse()

	// The TUI owns stdout; logs go to stderr.
	log := slog.New(logging.NewPrettyHandler(os.Stderr, nil))
	slog.SetDefault(log)

	sim, err := match.New(match.Options{
		Mode:    match.Mode(*mode),
		Arena:   arena.Name(*arenaName),
		Humans:  *humans,
		AICount: *aiCount,
		Seed:    *seed,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *modelPath != "" {
		pool, err := inference.NewPool(*modelPath, *sessions)
		if err != nil {
			log.Error("load policy", "model", *modelPath, "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := promoteOneAI(sim, pool, *seed); err != nil {
			log.Warn("no AI to promote to the learned policy", "err", err)
		}
	}

	var hub *stream.Hub
	if *streamAddr != "" {
		hub = stream.NewHub(log)
		sim.Attach(hub)
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.Handler())
		go func() {
			log.Info("spectator server listening", "addr", *streamAddr)
			if err := http.ListenAndServe(*streamAddr, mux); err != nil {
				log.Error("spectator server stopped", "err", err)
			}
		}()
	}

	var rec *record.Recorder
	if *recordDir != "" {
		matchID := fmt.Sprintf("arcade_%d", time.Now().UnixNano())
		rec = record.NewRecorder(matchID, *mode, *arenaName)
	}

	prog := tea.NewProgram(newTUI(sim, hub, rec))
	if _, err := prog.Run(); err != nil {
		log.Error("tui stopped", "err", err)
		os.Exit(1)
	}

	if hub != nil {
		hub.Close()
	}
	if rec != nil && rec.Len() > 0 {
		frames := rec.Len()
		path, err := rec.FlushBatch(*recordDir)
		if err != nil {
			log.Error("flush recording", "err", err)
		} else {
			log.Info("match recorded", "path", path, "frames", frames)
		}
	}

	submitScore(sim, *scorePath, *nick, log)
}

// promoteOneAI swaps the first AI's heuristic for the learned policy.
func promoteOneAI(sim *match.Model, pool *inference.Pool, seed int64) error {
	rng := rand.New(rand.NewSource(seed + 1))
	for _, p := range sim.Players() {
		if _, ok := p.Strategy().(*behavior.AI); !ok {
			continue
		}
		return p.SetStrategy(behavior.NewNeural(pool, match.DefaultConfig().Speed, rng))
	}
	return fmt.Errorf("roster has no AI players")
}

// submitScore records the first human's final score if it makes the board.
func submitScore(sim *match.Model, path, nick string, log *slog.Logger) {
	players := sim.Players()
	if len(players) == 0 {
		return
	}
	final := players[0].Score()
	if final <= 0 {
		return
	}

	lb := score.Load(path, log)
	if !lb.Qualifies(final) {
		return
	}
	rank, err := lb.Submit(score.Entry{
		Score:    final,
		Nickname: nick,
		Note:     string(sim.ModeName()) + "/" + string(sim.Arena().Name),
	})
	if err != nil {
		log.Error("submit score", "err", err)
		return
	}
	if err := lb.Save(); err != nil {
		log.Error("save leaderboard", "err", err)
		return
	}
	log.Info("score recorded", "score", final, "rank", rank)
}
