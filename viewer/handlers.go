package main

import (
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
)

// Frame is one replayed tick.
type Frame struct {
	MatchID    string        `json:"match_id"`
	Tick       int64         `json:"tick"`
	Width      int32         `json:"width"`
	Height     int32         `json:"height"`
	Level      int32         `json:"level"`
	Score      int32         `json:"score"`
	Players    []FramePlayer `json:"players"`
	PowerUps   []FramePower  `json:"power_ups,omitempty"`
	BossHealth int32         `json:"boss_health"`
}

type FramePlayer struct {
	ID      string    `json:"id"`
	X       int32     `json:"x"`
	Y       int32     `json:"y"`
	Alive   bool      `json:"alive"`
	Jumping bool      `json:"jumping"`
	Boosts  int32     `json:"boosts"`
	Trail   []Segment `json:"trail"`
}

type Segment struct {
	AX int32 `json:"ax"`
	AY int32 `json:"ay"`
	BX int32 `json:"bx"`
	BY int32 `json:"by"`
}

type FramePower struct {
	X    int32  `json:"x"`
	Y    int32  `json:"y"`
	Kind string `json:"kind"`
}

type MatchesResponse struct {
	Total   int            `json:"total"`
	Matches []MatchSummary `json:"matches"`
}

type TicksResponse struct {
	MatchID string  `json:"match_id"`
	From    int64   `json:"from"`
	To      int64   `json:"to"`
	Frames  []Frame `json:"frames"`
}

// Server holds the handler dependencies.
type Server struct {
	cache *DBCache
	log   *slog.Logger
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	db, err := s.cache.Get()
	if err != nil {
		s.fail(w, "open recordings", err)
		return
	}
	matches, err := queryMatches(r.Context(), db)
	if err != nil {
		s.fail(w, "list matches", err)
		return
	}
	writeJSON(w, MatchesResponse{Total: len(matches), Matches: matches})
}

func (s *Server) handleTicks(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")
	from := parseInt64Query(r, "from", 0)
	to := parseInt64Query(r, "to", math.MaxInt64)

	db, err := s.cache.Get()
	if err != nil {
		s.fail(w, "open recordings", err)
		return
	}
	frames, err := queryTicks(r.Context(), db, matchID, from, to)
	if err != nil {
		s.fail(w, "query ticks", err)
		return
	}
	writeJSON(w, TicksResponse{MatchID: matchID, From: from, To: to, Frames: frames})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")
	tick, err := strconv.ParseInt(r.PathValue("tick"), 10, 64)
	if err != nil {
		http.Error(w, "bad tick", http.StatusBadRequest)
		return
	}

	db, err := s.cache.Get()
	if err != nil {
		s.fail(w, "open recordings", err)
		return
	}
	frame, err := queryTick(r.Context(), db, matchID, tick)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "tick not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.fail(w, "query tick", err)
		return
	}
	writeJSON(w, frame)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.Refresh(); err != nil {
		s.fail(w, "refresh recordings", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.log.Error(what, "err", err)
	http.Error(w, what, http.StatusInternalServerError)
}
