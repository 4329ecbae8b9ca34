// Package arena resolves named map variants into immutable configurations:
// a boundary topology plus a fixed obstacle set. A configuration is picked
// once per session and re-resolved only on an explicit reset.
package arena

import (
	"fmt"

	"github.com/brensch/gridlock/game"
)

// Play-area dimensions in pixels, shared by every arena variant.
const (
	Width  = 500
	Height = 500
)

// Name identifies an arena variant.
type Name string

const (
	Classic  Name = "classic"  // bounded, no obstacles
	Torus    Name = "torus"    // wrap-around, no obstacles
	Cross    Name = "cross"    // bounded, centered cross
	Chambers Name = "chambers" // bounded, four inset walls
)

// Config is the resolved, immutable arena description.
// Wrap selects the boundary behavior: re-enter from the opposite edge
// instead of clamp-and-die. Obstacles are lethal on every topology.
type Config struct {
	Name      Name
	Width     int32
	Height    int32
	Wrap      bool
	Obstacles []game.Obstacle
}

// Names lists the known variants in menu order.
func Names() []Name {
	return []Name{Classic, Torus, Cross, Chambers}
}

// Resolve maps a variant name to its configuration.
func Resolve(name Name) (Config, error) {
	cfg := Config{Name: name, Width: Width, Height: Height}
	switch name {
	case Classic:
	case Torus:
		cfg.Wrap = true
	case Cross:
		// Two bars forming a centered cross.
		cfg.Obstacles = []game.Obstacle{
			{X: 220, Y: 100, Width: 60, Height: 300},
			{X: 100, Y: 220, Width: 300, Height: 60},
		}
	case Chambers:
		// Four walls inset from the edges, one per side.
		cfg.Obstacles = []game.Obstacle{
			{X: 100, Y: 100, Width: 300, Height: 20},
			{X: 100, Y: 380, Width: 300, Height: 20},
			{X: 100, Y: 120, Width: 20, Height: 260},
			{X: 380, Y: 120, Width: 20, Height: 260},
		}
	default:
		return Config{}, fmt.Errorf("unknown arena %q", name)
	}
	return cfg, nil
}

// Blocked reports whether p lies inside any obstacle.
func (c Config) Blocked(p game.Point) bool {
	for _, o := range c.Obstacles {
		if o.Contains(p) {
			return true
		}
	}
	return false
}
