package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// MatchSummary is one recorded match in the listing.
type MatchSummary struct {
	MatchID   string `json:"match_id"`
	Mode      string `json:"mode"`
	Arena     string `json:"arena"`
	Width     int32  `json:"width"`
	Height    int32  `json:"height"`
	MinTick   int64  `json:"min_tick"`
	MaxTick   int64  `json:"max_tick"`
	TickCount int64  `json:"tick_count"`
	MaxLevel  int32  `json:"max_level"`
	BestScore int32  `json:"best_score"`
}

// DBCache holds a DuckDB connection over the recording globs, reopened on a
// fixed cadence so freshly flushed files become visible.
type DBCache struct {
	roots       []string
	refreshRate time.Duration

	mu          sync.RWMutex
	db          *sql.DB
	lastRefresh time.Time
}

func NewDBCache(roots []string, refreshRate time.Duration) *DBCache {
	return &DBCache{roots: roots, refreshRate: refreshRate}
}

// Get returns the cached connection, refreshing it when stale.
func (c *DBCache) Get() (*sql.DB, error) {
	c.mu.RLock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		db := c.db
		c.mu.RUnlock()
		return db, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		return c.db, nil
	}
	return c.refreshLocked()
}

// Refresh forces a rescan.
func (c *DBCache) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.refreshLocked()
	return err
}

func (c *DBCache) refreshLocked() (*sql.DB, error) {
	start := time.Now()
	db, err := openDuckDB(c.roots)
	if err != nil {
		return nil, err
	}
	if c.db != nil {
		_ = c.db.Close()
	}
	c.db = db
	c.lastRefresh = time.Now()
	slog.Debug("recording view refreshed", "took", time.Since(start))
	return db, nil
}

func (c *DBCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// openDuckDB builds an in-memory connection with a `ticks` view over every
// parquet file under the roots. Files still sitting in tmp/ staging
// directories are excluded; they may be mid-write.
func openDuckDB(roots []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=4")

	globs := make([]string, 0, len(roots))
	for _, root := range roots {
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+escapeSQLString(glob)+"'")
	}

	stmt := `CREATE OR REPLACE VIEW ticks AS
		SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)
		WHERE NOT contains(filename, '/tmp/')`
	if _, err := db.Exec(stmt); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ticks view: %w", err)
	}
	return db, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func queryMatches(ctx context.Context, db *sql.DB) ([]MatchSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT match_id,
		       any_value(mode), any_value(arena),
		       any_value(width)::INTEGER, any_value(height)::INTEGER,
		       min(tick), max(tick), count(*),
		       max(level)::INTEGER, max(score)::INTEGER
		FROM ticks
		GROUP BY match_id
		ORDER BY min(tick) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]MatchSummary, 0, 64)
	for rows.Next() {
		var m MatchSummary
		if err := rows.Scan(&m.MatchID, &m.Mode, &m.Arena, &m.Width, &m.Height,
			&m.MinTick, &m.MaxTick, &m.TickCount, &m.MaxLevel, &m.BestScore); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func queryTicks(ctx context.Context, db *sql.DB, matchID string, from, to int64) ([]Frame, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT tick, width::INTEGER, height::INTEGER, level::INTEGER, score::INTEGER,
		       players, power_up_x, power_up_y, power_up_kind, boss_health::INTEGER
		FROM ticks
		WHERE match_id = ? AND tick >= ? AND tick <= ?
		ORDER BY tick ASC`, matchID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	frames := make([]Frame, 0, 256)
	for rows.Next() {
		var f Frame
		var playersAny, puXAny, puYAny, puKindAny any
		if err := rows.Scan(&f.Tick, &f.Width, &f.Height, &f.Level, &f.Score,
			&playersAny, &puXAny, &puYAny, &puKindAny, &f.BossHealth); err != nil {
			return nil, err
		}
		f.MatchID = matchID
		f.Players = asPlayers(playersAny)
		f.PowerUps = zipPowerUps(asInt32Slice(puXAny), asInt32Slice(puYAny), asStringSlice(puKindAny))
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

func queryTick(ctx context.Context, db *sql.DB, matchID string, tick int64) (Frame, error) {
	frames, err := queryTicks(ctx, db, matchID, tick, tick)
	if err != nil {
		return Frame{}, err
	}
	if len(frames) == 0 {
		return Frame{}, sql.ErrNoRows
	}
	return frames[0], nil
}
