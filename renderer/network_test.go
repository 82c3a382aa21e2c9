package renderer

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/neural"
)

func TestNetworkLabelsMatchController(t *testing.T) {
	if got := len(inputLabels()); got != neural.NumInputs {
		t.Errorf("%d input labels for %d inputs", got, neural.NumInputs)
	}
	out := outputLabels()
	if len(out) != neural.NumOutputs {
		t.Fatalf("%d output labels for %d outputs", len(out), neural.NumOutputs)
	}
	if out[neural.ActionStay] != "Stay" {
		t.Errorf("stay action labelled %q", out[neural.ActionStay])
	}
}

func TestNodePositions(t *testing.T) {
	r := rl.Rectangle{X: 0, Y: 0, Width: 300, Height: 120}
	pos := nodePositions([]int{4, 2, 1}, r)
	if len(pos) != 3 || len(pos[0]) != 4 || len(pos[1]) != 2 || len(pos[2]) != 1 {
		t.Fatalf("layout shape wrong: %v", pos)
	}
	for l, col := range pos {
		wantX := float32(50 + 100*l)
		for _, p := range col {
			if p.X != wantX {
				t.Errorf("layer %d node at x=%v, want %v", l, p.X, wantX)
			}
			if p.Y < r.Y || p.Y > r.Y+r.Height {
				t.Errorf("layer %d node at y=%v outside the box", l, p.Y)
			}
		}
	}
	// The widest layer fills the height; narrower ones are centred.
	if pos[0][0].Y != 15 || pos[0][3].Y != 105 {
		t.Errorf("input column spans %v..%v, want 15..105", pos[0][0].Y, pos[0][3].Y)
	}
	if pos[2][0].Y != 60 {
		t.Errorf("single output at y=%v, want 60", pos[2][0].Y)
	}
	if nodePositions(nil, r) != nil {
		t.Error("empty topology produced positions")
	}
}
