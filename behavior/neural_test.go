package behavior

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/brensch/gridlock/game"
)

type fixedPredictor struct {
	policy []float32
	err    error
}

func (f fixedPredictor) Predict([]float32) ([]float32, error) {
	return f.policy, f.err
}

func TestNeural_FollowsPolicy(t *testing.T) {
	// Up has by far the highest logit.
	n := NewNeural(fixedPredictor{policy: []float32{9, 0, 0, 0}}, 10, rand.New(rand.NewSource(1)))
	v := stubView{pos: game.Point{X: 250, Y: 250}}

	n.DecideDirection(v)
	if d, _ := headingOf(n.AI); d != game.Up {
		t.Fatalf("heading=%v want=up", d)
	}
}

func TestNeural_SkipsReverseHeading(t *testing.T) {
	// Down scores highest, but the entity is heading up.
	n := NewNeural(fixedPredictor{policy: []float32{0, 9, 0, 1}}, 10, rand.New(rand.NewSource(1)))
	n.AI.vel = game.Velocity{Y: 10}
	v := stubView{pos: game.Point{X: 250, Y: 250}}

	n.DecideDirection(v)
	if d, _ := headingOf(n.AI); d == game.Down {
		t.Fatalf("policy argmax reversed into the trail")
	}
	if d, _ := headingOf(n.AI); d != game.Right {
		t.Fatalf("heading=%v want=right (best legal logit)", d)
	}
}

func TestNeural_FallsBackOnError(t *testing.T) {
	n := NewNeural(fixedPredictor{err: errors.New("session gone")}, 10, rand.New(rand.NewSource(2)))
	v := stubView{pos: game.Point{X: 250, Y: 250}}

	n.DecideDirection(v)
	vx, vy := n.Velocity()
	if vx == 0 && vy == 0 {
		t.Fatalf("fallback heuristic did not move")
	}
}

func TestEncodeView_MarksSelfPlane(t *testing.T) {
	v := stubView{pos: game.Point{X: 250, Y: 250}}
	input := EncodeView(v)
	if len(input) != NeuralInput {
		t.Fatalf("input len=%d want=%d", len(input), NeuralInput)
	}

	self := input[NeuralGrid*NeuralGrid:]
	hits := 0
	for _, x := range self {
		if x == 1 {
			hits++
		}
	}
	if hits != 1 {
		t.Fatalf("self plane has %d marks want=1", hits)
	}
}
