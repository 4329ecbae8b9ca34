package main

import "testing"

func TestAsPlayers_DecodesDriverShapes(t *testing.T) {
	raw := []any{
		map[string]any{
			"id": "p1", "x": int64(100), "y": int32(200),
			"alive": true, "jumping": false, "boosts": int64(2),
			"trail_ax": []any{int64(10)}, "trail_ay": []any{int64(20)},
			"trail_bx": []any{int64(30)}, "trail_by": []any{int64(20)},
		},
	}

	players := asPlayers(raw)
	if len(players) != 1 {
		t.Fatalf("players=%d want=1", len(players))
	}
	p := players[0]
	if p.ID != "p1" || p.X != 100 || p.Y != 200 || !p.Alive || p.Boosts != 2 {
		t.Fatalf("player=%+v", p)
	}
	if len(p.Trail) != 1 || p.Trail[0] != (Segment{AX: 10, AY: 20, BX: 30, BY: 20}) {
		t.Fatalf("trail=%+v", p.Trail)
	}
}

func TestZipSegments_TruncatesToShortestColumn(t *testing.T) {
	segs := zipSegments([]int32{1, 2}, []int32{3, 4}, []int32{5}, []int32{6, 7})
	if len(segs) != 1 {
		t.Fatalf("segments=%d want=1 when columns disagree", len(segs))
	}
}

func TestZipPowerUps(t *testing.T) {
	pus := zipPowerUps([]int32{10, 20}, []int32{30, 40}, []string{"boost", "strike"})
	if len(pus) != 2 {
		t.Fatalf("power-ups=%d want=2", len(pus))
	}
	if pus[1].Kind != "strike" || pus[1].X != 20 {
		t.Fatalf("power-up=%+v", pus[1])
	}
}
