package renderer

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestFitLayout(t *testing.T) {
	l := FitLayout(10, 20, rl.Rectangle{X: 0, Y: 0, Width: 400, Height: 300})
	if l.CellSize != 20 {
		t.Fatalf("cell size = %v, want 20", l.CellSize)
	}
	// 20x10 cells of 20px fill the width and centre vertically.
	if l.X != 0 || l.Y != 50 {
		t.Errorf("origin = (%v,%v), want (0,50)", l.X, l.Y)
	}
	if b := l.Bounds(); b.Width != 400 || b.Height != 200 {
		t.Errorf("bounds = %+v", b)
	}
}

func TestFitLayoutTinyArea(t *testing.T) {
	l := FitLayout(500, 500, rl.Rectangle{Width: 100, Height: 100})
	if l.CellSize != 1 {
		t.Errorf("cell size = %v, want the 1px minimum", l.CellSize)
	}
}

func TestCellAtRoundTrip(t *testing.T) {
	l := Layout{X: 10, Y: 20, CellSize: 8, Rows: 4, Cols: 5}
	for r := range l.Rows {
		for c := range l.Cols {
			want := at(r, c)
			got, ok := l.CellAt(l.CellCenter(want))
			if !ok || got != want {
				t.Fatalf("CellAt(center of %v) = %v, %v", want, got, ok)
			}
		}
	}

	tests := []struct {
		name string
		p    rl.Vector2
	}{
		{"left of grid", rl.Vector2{X: 9, Y: 25}},
		{"above grid", rl.Vector2{X: 15, Y: 19}},
		{"right edge", rl.Vector2{X: 50, Y: 25}},
		{"bottom edge", rl.Vector2{X: 15, Y: 52}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c, ok := l.CellAt(tt.p); ok {
				t.Errorf("CellAt(%v) = %v, want miss", tt.p, c)
			}
		})
	}
}

func TestCellRect(t *testing.T) {
	l := Layout{X: 10, Y: 20, CellSize: 8, Rows: 4, Cols: 5}
	r := l.CellRect(at(2, 3))
	if r != (rl.Rectangle{X: 34, Y: 36, Width: 8, Height: 8}) {
		t.Errorf("CellRect = %+v", r)
	}
}
