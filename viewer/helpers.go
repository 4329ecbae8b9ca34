package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt64Query(r *http.Request, key string, def int64) int64 {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// The duckdb driver surfaces nested parquet columns as []any / map[string]any
// with driver-dependent scalar widths; these coercions absorb that.

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case uint64:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func asInt32Slice(v any) []int32 {
	switch vv := v.(type) {
	case nil:
		return nil
	case []int32:
		return vv
	case []int64:
		out := make([]int32, 0, len(vv))
		for _, x := range vv {
			out = append(out, int32(x))
		}
		return out
	case []any:
		out := make([]int32, 0, len(vv))
		for _, x := range vv {
			out = append(out, int32(asInt64(x)))
		}
		return out
	default:
		return nil
	}
}

func asStringSlice(v any) []string {
	switch vv := v.(type) {
	case nil:
		return nil
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, x := range vv {
			out = append(out, asString(x))
		}
		return out
	default:
		return nil
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int32:
		return t != 0
	default:
		return false
	}
}

func asPlayers(v any) []FramePlayer {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	players := make([]FramePlayer, 0, len(list))
	for _, it := range list {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		p := FramePlayer{
			ID:      asString(m["id"]),
			X:       int32(asInt64(m["x"])),
			Y:       int32(asInt64(m["y"])),
			Alive:   asBool(m["alive"]),
			Jumping: asBool(m["jumping"]),
			Boosts:  int32(asInt64(m["boosts"])),
			Trail: zipSegments(
				asInt32Slice(m["trail_ax"]), asInt32Slice(m["trail_ay"]),
				asInt32Slice(m["trail_bx"]), asInt32Slice(m["trail_by"]),
			),
		}
		players = append(players, p)
	}
	return players
}

func zipSegments(ax, ay, bx, by []int32) []Segment {
	n := len(ax)
	for _, s := range [][]int32{ay, bx, by} {
		if len(s) < n {
			n = len(s)
		}
	}
	out := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Segment{AX: ax[i], AY: ay[i], BX: bx[i], BY: by[i]})
	}
	return out
}

func zipPowerUps(xs, ys []int32, kinds []string) []FramePower {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if len(kinds) < n {
		n = len(kinds)
	}
	out := make([]FramePower, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, FramePower{X: xs[i], Y: ys[i], Kind: kinds[i]})
	}
	return out
}
