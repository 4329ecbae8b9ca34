package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brensch/gridlock/game"
)

func sampleSnapshot(tick int64) game.MatchSnapshot {
	return game.MatchSnapshot{
		Tick:   tick,
		Width:  500,
		Height: 500,
		Score:  42,
		Level:  2,
		Players: []game.PlayerSnapshot{
			{
				ID: "p1", X: 100, Y: 200, Width: 10, Height: 10,
				Color: "#00e5ff", Alive: true, Boosts: 3,
				Trail: []game.Segment{
					{A: game.Point{X: 50, Y: 200}, B: game.Point{X: 90, Y: 200}},
				},
			},
			{ID: "ai1", X: 300, Y: 300, Width: 10, Height: 10, Color: "#ff9100"},
		},
		PowerUps: []game.PowerUpSnapshot{
			{X: 250, Y: 250, Kind: "boost", Radius: 12},
		},
		Boss: &game.BossSnapshot{Health: 6, MaxHealth: 10, Alive: true},
	}
}

func TestRowFromSnapshot_Flattens(t *testing.T) {
	row := RowFromSnapshot("m1", "boss", "classic", sampleSnapshot(7))

	if row.Tick != 7 || row.MatchID != "m1" || row.Mode != "boss" {
		t.Fatalf("frame fields wrong: %+v", row)
	}
	if len(row.Players) != 2 {
		t.Fatalf("players=%d want=2", len(row.Players))
	}
	p1 := row.Players[0]
	if len(p1.TrailAX) != 1 || p1.TrailAX[0] != 50 || p1.TrailBX[0] != 90 {
		t.Fatalf("trail columns wrong: %+v", p1)
	}
	if len(row.PowerUpKind) != 1 || row.PowerUpKind[0] != "boost" {
		t.Fatalf("power-up columns wrong: %+v", row)
	}
	if row.BossHealth != 6 {
		t.Fatalf("boss health=%d want=6", row.BossHealth)
	}
}

func TestRowFromSnapshot_NoBossSentinel(t *testing.T) {
	snap := sampleSnapshot(1)
	snap.Boss = nil
	row := RowFromSnapshot("m1", "classic", "classic", snap)
	if row.BossHealth != -1 {
		t.Fatalf("boss health=%d want=-1 without a boss", row.BossHealth)
	}
}

func TestRecorder_RoundTrip(t *testing.T) {
	rec := NewRecorder("m1", "classic", "cross")
	for tick := int64(1); tick <= 5; tick++ {
		rec.Capture(sampleSnapshot(tick))
	}
	if rec.Len() != 5 {
		t.Fatalf("buffered=%d want=5", rec.Len())
	}

	path := filepath.Join(t.TempDir(), "match.parquet")
	if err := rec.Flush(path); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if rec.Len() != 0 {
		t.Fatalf("buffer not cleared after flush")
	}

	rows, err := ReadMatchParquet(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows=%d want=5", len(rows))
	}
	if rows[2].Tick != 3 {
		t.Fatalf("rows[2].Tick=%d want=3", rows[2].Tick)
	}
	if rows[0].Players[0].ID != "p1" {
		t.Fatalf("player id=%q want=p1", rows[0].Players[0].ID)
	}
}

func TestWriteMatchBatchAtomic_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorder("m2", "versus", "torus")
	rec.Capture(sampleSnapshot(1))

	path, err := rec.FlushBatch(dir)
	if err != nil {
		t.Fatalf("flush batch: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("final path %q not in %q", path, dir)
	}

	leftovers, err := os.ReadDir(filepath.Join(dir, "tmp"))
	if err != nil {
		t.Fatalf("read tmp dir: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("tmp dir not empty: %v", leftovers)
	}
}
