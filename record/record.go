// Package record persists finished matches as Parquet files, one row per
// tick. The layout is optimized for compression and for columnar readers:
// shared frame data lives on the row, per-entity data nests under it.
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/gridlock/game"
)

// TickRow is a single (match, tick) frame.
type TickRow struct {
	MatchID string `parquet:"match_id,dict"`
	Tick    int64  `parquet:"tick"`
	Mode    string `parquet:"mode,dict"`
	Arena   string `parquet:"arena,dict"`
	Width   int32  `parquet:"width"`
	Height  int32  `parquet:"height"`
	Level   int32  `parquet:"level"`
	Score   int32  `parquet:"score"`

	Players []PlayerRow `parquet:"players"`

	PowerUpX    []int32  `parquet:"power_up_x"`
	PowerUpY    []int32  `parquet:"power_up_y"`
	PowerUpKind []string `parquet:"power_up_kind"`

	// BossHealth is -1 outside boss modes so readers can tell "no boss"
	// from "boss at zero".
	BossHealth int32 `parquet:"boss_health"`
}

// PlayerRow is one entity within a frame. Trails are stored as parallel
// segment-endpoint columns rather than nested structs; they compress well
// because most values repeat between ticks.
type PlayerRow struct {
	ID      string `parquet:"id,dict"`
	X       int32  `parquet:"x"`
	Y       int32  `parquet:"y"`
	Alive   bool   `parquet:"alive"`
	Jumping bool   `parquet:"jumping"`
	Boosts  int32  `parquet:"boosts"`

	TrailAX []int32 `parquet:"trail_ax"`
	TrailAY []int32 `parquet:"trail_ay"`
	TrailBX []int32 `parquet:"trail_bx"`
	TrailBY []int32 `parquet:"trail_by"`
}

// RowFromSnapshot flattens one frame into its storage row.
func RowFromSnapshot(matchID, mode, arenaName string, snap game.MatchSnapshot) TickRow {
	row := TickRow{
		MatchID:    matchID,
		Tick:       snap.Tick,
		Mode:       mode,
		Arena:      arenaName,
		Width:      snap.Width,
		Height:     snap.Height,
		Level:      snap.Level,
		Score:      snap.Score,
		BossHealth: -1,
	}
	if snap.Boss != nil {
		row.BossHealth = snap.Boss.Health
	}
	for _, p := range snap.Players {
		pr := PlayerRow{
			ID:      p.ID,
			X:       p.X,
			Y:       p.Y,
			Alive:   p.Alive,
			Jumping: p.Jumping,
			Boosts:  p.Boosts,
		}
		for _, s := range p.Trail {
			pr.TrailAX = append(pr.TrailAX, s.A.X)
			pr.TrailAY = append(pr.TrailAY, s.A.Y)
			pr.TrailBX = append(pr.TrailBX, s.B.X)
			pr.TrailBY = append(pr.TrailBY, s.B.Y)
		}
		row.Players = append(row.Players, pr)
	}
	for _, pu := range snap.PowerUps {
		row.PowerUpX = append(row.PowerUpX, pu.X)
		row.PowerUpY = append(row.PowerUpY, pu.Y)
		row.PowerUpKind = append(row.PowerUpKind, pu.Kind)
	}
	return row
}

// Recorder accumulates frames for one match and flushes them in a single
// write. It deliberately buffers in memory: a long match is a few thousand
// rows, and buffering keeps the file immutable once visible.
type Recorder struct {
	matchID string
	mode    string
	arena   string
	rows    []TickRow
}

// NewRecorder starts a buffer for one match.
func NewRecorder(matchID, mode, arenaName string) *Recorder {
	return &Recorder{matchID: matchID, mode: mode, arena: arenaName}
}

// Capture appends one frame.
func (r *Recorder) Capture(snap game.MatchSnapshot) {
	r.rows = append(r.rows, RowFromSnapshot(r.matchID, r.mode, r.arena, snap))
}

// Len returns the number of buffered frames.
func (r *Recorder) Len() int { return len(r.rows) }

// Rows hands the buffer to callers that batch across matches themselves.
func (r *Recorder) Rows() []TickRow { return r.rows }

// Flush writes the buffered frames to outPath and clears the buffer.
func (r *Recorder) Flush(outPath string) error {
	if err := WriteMatchParquet(outPath, r.rows); err != nil {
		return err
	}
	r.rows = nil
	return nil
}

// FlushBatch writes the buffered frames into outDir with a generated name,
// returning the final path.
func (r *Recorder) FlushBatch(outDir string) (string, error) {
	path, err := WriteMatchBatchAtomic(outDir, r.rows)
	if err != nil {
		return "", err
	}
	r.rows = nil
	return path, nil
}

// WriteMatchParquet writes rows to outPath. The file appears atomically:
// it is written to a sibling temp path and renamed into place.
func WriteMatchParquet(outPath string, rows []TickRow) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "match_tick_v1"),
	); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// WriteMatchBatchAtomic writes rows into outDir/tmp and renames the result
// into outDir, so directory watchers never observe a partial file.
func WriteMatchBatchAtomic(outDir string, rows []TickRow) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("match_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "match_tick_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadMatchParquet loads every frame of a recorded match, ordered as
// written.
func ReadMatchParquet(path string) ([]TickRow, error) {
	rows, err := parquet.ReadFile[TickRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}
