package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/components"
)

// Layout maps board cells to screen space. Cells are square.
type Layout struct {
	X, Y       float32 // top-left corner of cell (0,0)
	CellSize   float32
	Rows, Cols int
}

// FitLayout scales a rows x cols grid to the largest square cells that fit
// inside area, centred.
func FitLayout(rows, cols int, area rl.Rectangle) Layout {
	size := float32(math.Floor(float64(min(area.Width/float32(cols), area.Height/float32(rows)))))
	size = max(size, 1)
	w, h := size*float32(cols), size*float32(rows)
	return Layout{
		X:        area.X + (area.Width-w)/2,
		Y:        area.Y + (area.Height-h)/2,
		CellSize: size,
		Rows:     rows,
		Cols:     cols,
	}
}

// Bounds returns the screen rectangle covered by the grid.
func (l Layout) Bounds() rl.Rectangle {
	return rl.Rectangle{X: l.X, Y: l.Y, Width: l.CellSize * float32(l.Cols), Height: l.CellSize * float32(l.Rows)}
}

// CellRect returns the screen rectangle of cell c.
func (l Layout) CellRect(c components.Coords) rl.Rectangle {
	return rl.Rectangle{
		X:      l.X + float32(c.Col)*l.CellSize,
		Y:      l.Y + float32(c.Row)*l.CellSize,
		Width:  l.CellSize,
		Height: l.CellSize,
	}
}

// CellCenter returns the screen position of the centre of cell c.
func (l Layout) CellCenter(c components.Coords) rl.Vector2 {
	return rl.Vector2{
		X: l.X + (float32(c.Col)+0.5)*l.CellSize,
		Y: l.Y + (float32(c.Row)+0.5)*l.CellSize,
	}
}

// CellAt returns the cell under screen position p.
func (l Layout) CellAt(p rl.Vector2) (components.Coords, bool) {
	if l.CellSize <= 0 || p.X < l.X || p.Y < l.Y {
		return components.Coords{}, false
	}
	c := components.Coords{
		Row: int((p.Y - l.Y) / l.CellSize),
		Col: int((p.X - l.X) / l.CellSize),
	}
	if c.Row >= l.Rows || c.Col >= l.Cols {
		return components.Coords{}, false
	}
	return c, true
}
