package arena

import (
	"testing"

	"github.com/brensch/gridlock/game"
)

func TestResolve_KnownLayouts(t *testing.T) {
	cases := []struct {
		name      Name
		wrap      bool
		obstacles int
	}{
		{Classic, false, 0},
		{Torus, true, 0},
		{Cross, false, 2},
		{Chambers, false, 4},
	}
	for _, tc := range cases {
		cfg, err := Resolve(tc.name)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if cfg.Width != Width || cfg.Height != Height {
			t.Fatalf("%s: size=%dx%d want=%dx%d", tc.name, cfg.Width, cfg.Height, Width, Height)
		}
		if cfg.Wrap != tc.wrap {
			t.Fatalf("%s: wrap=%v want=%v", tc.name, cfg.Wrap, tc.wrap)
		}
		if len(cfg.Obstacles) != tc.obstacles {
			t.Fatalf("%s: obstacles=%d want=%d", tc.name, len(cfg.Obstacles), tc.obstacles)
		}
	}
}

func TestResolve_UnknownName(t *testing.T) {
	if _, err := Resolve("volcano"); err == nil {
		t.Fatalf("expected error for unknown arena name")
	}
}

func TestConfig_BlockedByObstacle(t *testing.T) {
	cfg, err := Resolve(Cross)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var inside game.Point
	found := false
	for _, o := range cfg.Obstacles {
		inside = game.Point{X: o.X + o.Width/2, Y: o.Y + o.Height/2}
		if cfg.Blocked(inside) {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("center of an obstacle should be blocked")
	}
	if cfg.Blocked(game.Point{X: 5, Y: 5}) {
		t.Fatalf("open corner should not be blocked")
	}
}

func TestNames_CoverEveryLayout(t *testing.T) {
	for _, n := range Names() {
		if _, err := Resolve(n); err != nil {
			t.Fatalf("Names() lists %q but Resolve rejects it: %v", n, err)
		}
	}
}
