package behavior

import (
	"math/rand"

	"github.com/brensch/gridlock/game"
)

// Predictor scores the four headings for an encoded view. Implemented by
// the inference package; defined here so behavior does not depend on a
// particular runtime.
type Predictor interface {
	Predict(input []float32) (policy []float32, err error)
}

// Encoding constants for the neural view: the play area is sampled on a
// coarse grid, one occupancy plane and one self-position plane.
const (
	NeuralGrid   = 25
	NeuralPlanes = 2
	NeuralInput  = NeuralPlanes * NeuralGrid * NeuralGrid
)

// Neural drives a player from a learned policy. Any inference failure falls
// back to the embedded heuristic for that tick, so a missing or broken
// model degrades rather than stalls the match.
type Neural struct {
	*AI
	client Predictor
}

// NewNeural builds a neural strategy around client, with a hardened-profile
// heuristic as fallback.
func NewNeural(client Predictor, speed int32, rng *rand.Rand) *Neural {
	return &Neural{AI: NewAI(Hardened, speed, rng), client: client}
}

func (n *Neural) DecideDirection(v View) {
	policy, err := n.client.Predict(EncodeView(v))
	if err != nil || len(policy) < 4 {
		n.AI.DecideDirection(v)
		return
	}

	heading, moving := n.AI.vel.Heading()
	best := game.Direction(-1)
	bestScore := float32(0)
	for d := game.Direction(0); d < 4; d++ {
		if moving && heading.Opposite(d) {
			continue
		}
		if best < 0 || policy[int(d)] > bestScore {
			best = d
			bestScore = policy[int(d)]
		}
	}
	if best < 0 {
		best = heading
	}
	n.AI.steer(best)
}

// EncodeView samples v onto the fixed input planes.
func EncodeView(v View) []float32 {
	w, h := v.Bounds()
	cellW := w / NeuralGrid
	cellH := h / NeuralGrid
	if cellW == 0 {
		cellW = 1
	}
	if cellH == 0 {
		cellH = 1
	}

	input := make([]float32, NeuralInput)
	occupancy := input[:NeuralGrid*NeuralGrid]
	self := input[NeuralGrid*NeuralGrid:]

	for gy := int32(0); gy < NeuralGrid; gy++ {
		for gx := int32(0); gx < NeuralGrid; gx++ {
			center := game.Point{X: gx*cellW + cellW/2, Y: gy*cellH + cellH/2}
			if v.Blocked(center, cellW/2) {
				occupancy[gy*NeuralGrid+gx] = 1
			}
		}
	}

	pos := v.Position()
	sx := pos.X / cellW
	sy := pos.Y / cellH
	if sx >= 0 && sx < NeuralGrid && sy >= 0 && sy < NeuralGrid {
		self[sy*NeuralGrid+sx] = 1
	}
	return input
}
