// Package score keeps the local hall of fame: the top results across
// sessions, persisted as a JSON file next to the binary. An importer reads
// the legacy HTML table format the scores used to live in.
package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// MaxEntries caps the leaderboard length.
const MaxEntries = 10

// Entry is one leaderboard line.
type Entry struct {
	Score    int32     `json:"score"`
	Nickname string    `json:"nickname"`
	Gender   string    `json:"gender,omitempty"`
	Note     string    `json:"note,omitempty"`
	Date     time.Time `json:"date"`
}

// Observer receives leaderboard callbacks.
type Observer interface {
	// ScoreChanged fires when an accepted submission alters the board.
	ScoreChanged(e Entry)
	// EntryAdded fires for every accepted submission.
	EntryAdded(e Entry, rank int)
	// HighScoreBeaten fires when a submission takes first place.
	HighScoreBeaten(e Entry)
}

// Leaderboard is an ordered, capped set of entries. It is not safe for
// concurrent use; the drivers touch it from one goroutine.
type Leaderboard struct {
	path      string
	log       *slog.Logger
	entries   []Entry
	observers []Observer
}

// Load reads the leaderboard at path. A missing file yields an empty
// board; a corrupt one is logged and replaced by defaults rather than
// aborting the session. If a legacy HTML board sits next to the JSON file,
// it is imported once.
func Load(path string, log *slog.Logger) *Leaderboard {
	if log == nil {
		log = slog.Default()
	}
	lb := &Leaderboard{path: path, log: log}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		lb.importLegacy()
		return lb
	case err != nil:
		log.Warn("leaderboard unreadable, starting empty", "path", path, "err", err)
		return lb
	}

	if err := json.Unmarshal(raw, &lb.entries); err != nil {
		log.Warn("leaderboard corrupt, starting empty", "path", path, "err", err)
		lb.entries = nil
		return lb
	}
	lb.normalize()
	return lb
}

// importLegacy looks for the old HTML hall-of-fame next to the JSON path
// and converts it in place.
func (l *Leaderboard) importLegacy() {
	legacy := filepath.Join(filepath.Dir(l.path), "highscores.html")
	entries, err := ImportLegacyHTMLFile(legacy)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.log.Warn("legacy leaderboard not importable", "path", legacy, "err", err)
		}
		return
	}
	l.entries = entries
	l.normalize()
	l.log.Info("imported legacy leaderboard", "path", legacy, "entries", len(entries))
}

// Attach registers an observer. Nil observers are ignored.
func (l *Leaderboard) Attach(o Observer) {
	if o == nil {
		return
	}
	l.observers = append(l.observers, o)
}

// Entries returns the board in rank order.
func (l *Leaderboard) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Best returns the top entry, false on an empty board.
func (l *Leaderboard) Best() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[0], true
}

// Qualifies reports whether a score would make the board.
func (l *Leaderboard) Qualifies(score int32) bool {
	if score < 0 {
		return false
	}
	if len(l.entries) < MaxEntries {
		return true
	}
	return score > l.entries[len(l.entries)-1].Score
}

// Submit inserts an entry in rank order. Negative scores are invalid
// input, not merely unranked.
func (l *Leaderboard) Submit(e Entry) (int, error) {
	if e.Score < 0 {
		return 0, fmt.Errorf("score %d: negative scores are invalid", e.Score)
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}

	beatsBest := len(l.entries) == 0 || e.Score > l.entries[0].Score

	l.entries = append(l.entries, e)
	l.normalize()

	rank := -1
	for i := range l.entries {
		if l.entries[i] == e {
			rank = i + 1
			break
		}
	}
	if rank == -1 {
		// Fell off the capped board.
		return 0, nil
	}

	for _, o := range l.observers {
		o.ScoreChanged(e)
		o.EntryAdded(e, rank)
		if beatsBest && rank == 1 {
			o.HighScoreBeaten(e)
		}
	}
	return rank, nil
}

// Save writes the board atomically next to its final path.
func (l *Leaderboard) Save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create leaderboard dir: %w", err)
	}
	raw, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write leaderboard: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename leaderboard: %w", err)
	}
	return nil
}

// normalize sorts descending by score (ties: older first) and trims to the
// cap. Negative entries from hand-edited files are dropped.
func (l *Leaderboard) normalize() {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.Score >= 0 {
			kept = append(kept, e)
		}
	}
	l.entries = kept

	sort.SliceStable(l.entries, func(i, j int) bool {
		if l.entries[i].Score != l.entries[j].Score {
			return l.entries[i].Score > l.entries[j].Score
		}
		return l.entries[i].Date.Before(l.entries[j].Date)
	})
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
}
