// Command simulate plays headless AI-only matches in parallel and reports
// survival statistics. It is the batch counterpart to the arcade client:
// same engine, no rendering, optional Parquet recording for later analysis
// in the viewer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/brensch/gridlock/arena"
	"github.com/brensch/gridlock/behavior"
	"github.com/brensch/gridlock/inference"
	"github.com/brensch/gridlock/logging"
	"github.com/brensch/gridlock/match"
	"github.com/brensch/gridlock/record"
)

const tickStep = 50 * time.Millisecond

var (
	totalTicks   atomic.Int64
	totalMatches atomic.Int64
)

type matchResult struct {
	Index    int64
	Winner   string // empty on a draw or tick-cap timeout
	Ticks    int64
	TimedOut bool
}

type writeRequest struct {
	rows []record.TickRow
}

func main() {
	matches := flag.Int64("matches", 100, "matches to play")
	workers := flag.Int("workers", runtime.NumCPU(), "parallel workers")
	arenaName := flag.String("arena", "classic", "arena: classic, torus, cross, chambers")
	aiCount := flag.Int("ai", 4, "AI entities per match")
	hardened := flag.Int("hardened", 0, "how many of the AIs run the hardened tier")
	seed := flag.Int64("seed", 1, "base seed; match i uses seed+i")
	maxTicks := flag.Int64("max-ticks", 50000, "abort a match after this many ticks")
	outDir := flag.String("out", "", "write recordings as parquet batches into this directory")
	matchesPerFlush := flag.Int("matches-per-flush", 20, "matches to buffer per parquet flush")
	modelPath := flag.String("model", "", "ONNX policy; one AI per match plays it")
	sessions := flag.Int("sessions", 1, "ONNX sessions when -model is set")
	verbose := flag.Bool("v", false, "per-match logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(logging.NewPrettyHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if *aiCount < 2 {
		log.Error("need at least 2 AI entities for a match", "ai", *aiCount)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *inference.Pool
	if *modelPath != "" {
		var err error
		pool, err = inference.NewPool(*modelPath, *sessions)
		if err != nil {
			log.Error("load policy", "model", *modelPath, "err", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	var writeReqs chan writeRequest
	writerDone := make(chan struct{})
	if *outDir != "" {
		writeReqs = make(chan writeRequest, *workers*2)
		go func() {
			defer close(writerDone)
			writerLoop(log, *outDir, *matchesPerFlush, writeReqs)
		}()
	} else {
		close(writerDone)
	}

	results := make(chan matchResult, *workers)
	var next atomic.Int64

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				idx := next.Add(1) - 1
				if idx >= *matches {
					return
				}
				select {
				case <-ctx.Done():
					return
				default:
				}

				res, rows, err := playMatch(idx, *arenaName, *aiCount, *hardened, *seed, *maxTicks, pool, writeReqs != nil)
				if err != nil {
					log.Error("match setup failed", "worker", workerID, "match", idx, "err", err)
					return
				}
				totalMatches.Add(1)
				if writeReqs != nil && len(rows) > 0 {
					writeReqs <- writeRequest{rows: rows}
				}
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}(w)
	}

	workersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(workersDone)
	}()

	wins := make(map[string]int64)
	var draws, timeouts, finished, tickSum int64

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

loop:
	for {
		select {
		case res := <-results:
			finished++
			tickSum += res.Ticks
			switch {
			case res.TimedOut:
				timeouts++
			case res.Winner == "":
				draws++
			default:
				wins[res.Winner]++
			}
			log.Debug("match finished", "match", res.Index, "winner", res.Winner, "ticks", res.Ticks)
		case <-ticker.C:
			elapsed := time.Since(start).Seconds()
			log.Info("progress",
				"matches", totalMatches.Load(),
				"ticks_per_sec", fmt.Sprintf("%.0f", float64(totalTicks.Load())/elapsed),
				"matches_per_sec", fmt.Sprintf("%.2f", float64(totalMatches.Load())/elapsed))
		case <-ctx.Done():
			log.Info("shutdown requested, waiting for running matches")
			<-workersDone
			break loop
		case <-workersDone:
			// Drain results already queued by the last workers.
			for {
				select {
				case res := <-results:
					finished++
					tickSum += res.Ticks
					switch {
					case res.TimedOut:
						timeouts++
					case res.Winner == "":
						draws++
					default:
						wins[res.Winner]++
					}
				default:
					break loop
				}
			}
		}
	}

	if writeReqs != nil {
		close(writeReqs)
	}
	<-writerDone

	summarize(log, wins, finished, draws, timeouts, tickSum, time.Since(start))
}

// playMatch runs one AI-only versus match to completion. When recording is
// on it also returns the captured frames for the batch writer.
func playMatch(idx int64, arenaName string, aiCount, hardened int, baseSeed, maxTicks int64, pool *inference.Pool, recording bool) (matchResult, []record.TickRow, error) {
	m, err := match.New(match.Options{
		Mode:        match.ModeVersus,
		Arena:       arena.Name(arenaName),
		Humans:      -1,
		AICount:     aiCount,
		HardenedAIs: hardened,
		Seed:        baseSeed + idx,
	})
	if err != nil {
		return matchResult{}, nil, err
	}

	if pool != nil {
		if err := promoteOneAI(m, pool, baseSeed+idx); err != nil {
			return matchResult{}, nil, err
		}
	}

	var rec *record.Recorder
	if recording {
		rec = record.NewRecorder(fmt.Sprintf("sim_%06d", idx), string(match.ModeVersus), arenaName)
	}

	m.Start()
	var ticks int64
	for m.State() == match.StateRunning {
		m.Tick(tickStep)
		totalTicks.Add(1)
		ticks++
		if rec != nil {
			rec.Capture(m.Snapshot())
		}
		if ticks >= maxTicks {
			return matchResult{Index: idx, Ticks: ticks, TimedOut: true}, recRows(rec), nil
		}
	}
	return matchResult{Index: idx, Winner: m.Winner(), Ticks: ticks}, recRows(rec), nil
}

func recRows(rec *record.Recorder) []record.TickRow {
	if rec == nil {
		return nil
	}
	return rec.Rows()
}

// promoteOneAI swaps the first AI's heuristic for the learned policy so
// batch runs can pit it against the scripted tiers.
func promoteOneAI(m *match.Model, pool *inference.Pool, seed int64) error {
	rng := rand.New(rand.NewSource(seed + 1))
	for _, p := range m.Players() {
		if _, ok := p.Strategy().(*behavior.AI); !ok {
			continue
		}
		return p.SetStrategy(behavior.NewNeural(pool, match.DefaultConfig().Speed, rng))
	}
	return fmt.Errorf("roster has no AI players")
}

// writerLoop batches frames across matches and flushes them as single
// parquet files, so a big run does not leave thousands of tiny files.
func writerLoop(log *slog.Logger, outDir string, matchesPerFlush int, in <-chan writeRequest) {
	if matchesPerFlush <= 0 {
		matchesPerFlush = 20
	}

	var pending []record.TickRow
	pendingMatches := 0

	flush := func() {
		if len(pending) == 0 {
			return
		}
		path, err := record.WriteMatchBatchAtomic(outDir, pending)
		if err != nil {
			log.Error("parquet flush failed", "matches", pendingMatches, "rows", len(pending), "err", err)
		} else {
			log.Info("parquet flush", "path", path, "matches", pendingMatches, "rows", len(pending))
		}
		pending = pending[:0]
		pendingMatches = 0
	}

	for req := range in {
		pending = append(pending, req.rows...)
		pendingMatches++
		if pendingMatches >= matchesPerFlush {
			flush()
		}
	}
	flush()
}

func summarize(log *slog.Logger, wins map[string]int64, finished, draws, timeouts, tickSum int64, elapsed time.Duration) {
	ids := make([]string, 0, len(wins))
	for id := range wins {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	avgTicks := float64(0)
	if finished > 0 {
		avgTicks = float64(tickSum) / float64(finished)
	}
	log.Info("run complete",
		"matches", finished,
		"draws", draws,
		"timeouts", timeouts,
		"avg_ticks", fmt.Sprintf("%.1f", avgTicks),
		"elapsed", elapsed.Round(time.Millisecond).String())
	for _, id := range ids {
		log.Info("wins", "entity", id, "count", wins[id],
			"rate", fmt.Sprintf("%.1f%%", 100*float64(wins[id])/float64(finished)))
	}
}
