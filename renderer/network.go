package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/neural"
)

var (
	colorNodeRing     = rl.Color{R: 100, G: 100, B: 100, A: 255}
	colorNodeOff      = rl.Color{R: 50, G: 50, B: 60, A: 255}
	colorNodeOn       = rl.Color{R: 255, G: 190, B: 90, A: 255}
	colorEdgePositive = rl.Color{R: 200, G: 80, B: 80, A: 100}
	colorEdgeNegative = rl.Color{R: 80, G: 80, B: 200, A: 100}
	colorChosen       = rl.Color{R: 120, G: 230, B: 120, A: 255}
)

// minEdgeWeight hides near-zero connections to keep dense layers legible.
const minEdgeWeight = 0.15

// inputLabels names the controller inputs: own cell, then compass order.
func inputLabels() []string {
	labels := []string{"Here"}
	for _, d := range components.Compass {
		labels = append(labels, d.String())
	}
	return labels
}

// outputLabels names the controller actions: cardinal steps, then stay.
func outputLabels() []string {
	var labels []string
	for _, d := range components.Cardinal {
		labels = append(labels, d.String())
	}
	return append(labels, "Stay")
}

// nodePositions lays out one column per layer inside r, each column's nodes
// spread evenly and centred vertically.
func nodePositions(layers []int, r rl.Rectangle) [][]rl.Vector2 {
	if len(layers) == 0 {
		return nil
	}
	widest := 0
	for _, n := range layers {
		widest = max(widest, n)
	}
	colW := r.Width / float32(len(layers))
	spacing := r.Height / float32(widest)

	pos := make([][]rl.Vector2, len(layers))
	for l, n := range layers {
		x := r.X + colW*(float32(l)+0.5)
		top := r.Y + (r.Height-spacing*float32(n))/2 + spacing/2
		pos[l] = make([]rl.Vector2, n)
		for i := range n {
			pos[l][i] = rl.Vector2{X: x, Y: top + spacing*float32(i)}
		}
	}
	return pos
}

// drawNetwork draws the controller with its activations for inputs. A nil
// inputs slice draws the weights only.
func drawNetwork(r rl.Rectangle, nn *neural.Network, inputs []float64) {
	if nn == nil {
		rl.DrawText("no controller", int32(r.X), int32(r.Y), fontSize, colorTextDim)
		return
	}
	layers := nn.Layers()
	pos := nodePositions(layers, r)
	widest := 1
	for _, n := range layers {
		widest = max(widest, n)
	}
	radius := min(float32(6), r.Height/float32(2*widest+2))

	for l, w := range nn.Weights() {
		for i := range layers[l] {
			for j := range layers[l+1] {
				// Row 0 of each matrix holds the biases.
				drawEdge(pos[l][i], pos[l+1][j], w.At(i+1, j))
			}
		}
	}

	var acts [][]float64
	chosen := -1
	if inputs != nil {
		acts = nn.Activations(inputs)
		chosen = neural.Choose(acts[len(acts)-1])
	}
	for l := range layers {
		for i, p := range pos[l] {
			var a float64
			if acts != nil {
				a = acts[l][i]
			}
			rl.DrawCircleV(p, radius, lerpColor(colorNodeOff, colorNodeOn, float32(a)))
			ring := colorNodeRing
			if l == len(layers)-1 && i == chosen {
				ring = colorChosen
			}
			rl.DrawCircleLinesV(p, radius, ring)
		}
	}

	in, out := inputLabels(), outputLabels()
	if layers[0] == len(in) {
		for i, p := range pos[0] {
			w := rl.MeasureText(in[i], 10)
			rl.DrawText(in[i], int32(p.X-radius)-w-4, int32(p.Y)-5, 10, colorTextDim)
		}
	}
	if last := pos[len(pos)-1]; len(last) == len(out) {
		for i, p := range last {
			rl.DrawText(out[i], int32(p.X+radius)+4, int32(p.Y)-5, 10, colorTextDim)
		}
	}
}

func drawEdge(from, to rl.Vector2, weight float64) {
	mag := float32(math.Abs(weight))
	if mag < minEdgeWeight {
		return
	}
	c := colorEdgePositive
	if weight < 0 {
		c = colorEdgeNegative
	}
	c.A = uint8(min(40+mag*60, 150))
	rl.DrawLineEx(from, to, min(max(mag*1.5, 0.5), 3), c)
}
