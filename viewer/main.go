// Command viewer serves a replay API over recorded match Parquet files.
// DuckDB exposes the recording directories as a single queryable view, so
// new files appear without restarting the server.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/brensch/gridlock/logging"
)

func main() {
	listen := flag.String("listen", ":8090", "HTTP listen address")
	data := flag.String("data", "recordings", "comma-separated recording directories")
	refresh := flag.Duration("refresh", 30*time.Second, "how often to rescan for new recordings")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(logging.NewPrettyHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	roots := make([]string, 0, 2)
	for _, r := range strings.Split(*data, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roots = append(roots, r)
		}
	}
	if len(roots) == 0 {
		log.Error("no recording directories given")
		os.Exit(1)
	}

	cache := NewDBCache(roots, *refresh)
	defer cache.Close()

	srv := &Server{cache: cache, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/matches", srv.handleMatches)
	mux.HandleFunc("GET /api/matches/{id}/ticks", srv.handleTicks)
	mux.HandleFunc("GET /api/matches/{id}/ticks/{tick}", srv.handleTick)
	mux.HandleFunc("POST /api/refresh", srv.handleRefresh)

	log.Info("viewer listening", "addr", *listen, "roots", roots)
	if err := http.ListenAndServe(*listen, withCORS(mux)); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
