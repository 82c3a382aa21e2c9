// Package renderer draws a running simulation with raylib. The board only
// reaches it through world.Observer notifications, which feed the viewer's
// own sprite table.
package renderer

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/world"
)

// Source is the simulation a Viewer draws and steps.
type Source interface {
	Board() *world.Board
	Field() *world.ParticleField
	Ecosystem() *systems.Ecosystem
	Tick() int
	Round() int
	RoundTicks() int
	Finished() bool
	Step() error
}

// Viewer draws the board next to a side panel with playback controls,
// population stats and an inspector for the selected organism.
type Viewer struct {
	*Sprites

	src      Source
	cfg      *config.Config
	logger   *slog.Logger
	controls *Controls
	layout   Layout
	panel    rl.Rectangle

	selected    ecs.Entity
	hasSelected bool
}

// NewViewer lays out the window described by cfg.Screen. The viewer must
// be passed as the simulation's observer before the first board is
// populated, then attached with Attach.
func NewViewer(cfg *config.Config, logger *slog.Logger, speed float32) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	w, h, pw := float32(cfg.Screen.Width), float32(cfg.Screen.Height), float32(cfg.Screen.PanelW)
	return &Viewer{
		Sprites:  NewSprites(),
		cfg:      cfg,
		logger:   logger,
		controls: NewControls(speed),
		layout:   FitLayout(cfg.World.Rows, cfg.World.Cols, rl.Rectangle{X: 8, Y: 8, Width: w - pw - 16, Height: h - 16}),
		panel:    rl.Rectangle{X: w - pw, Y: 0, Width: pw, Height: h},
	}
}

// Attach sets the simulation to draw.
func (v *Viewer) Attach(src Source) { v.src = src }

// Controls returns the playback controls.
func (v *Viewer) Controls() *Controls { return v.controls }

// Frame handles input, runs the steps due this frame and draws. It returns
// the first step error.
func (v *Viewer) Frame() error {
	v.controls.HandleKeys()
	v.handleMouse()

	var err error
	for range v.controls.Steps() {
		if v.src.Finished() {
			break
		}
		v.BeginStep()
		if err = v.src.Step(); err != nil {
			break
		}
	}

	rl.BeginDrawing()
	rl.ClearBackground(colorBackground)
	v.drawBoard()
	v.drawPanel()
	rl.EndDrawing()
	return err
}

func (v *Viewer) handleMouse() {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		v.hasSelected = false
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	at, ok := v.layout.CellAt(rl.GetMousePosition())
	if !ok {
		return
	}
	v.selected, v.hasSelected = nextSelection(v.src.Board().Cell(at).Occupants(), v.selected, v.hasSelected)
	if v.hasSelected {
		if sp, ok := v.Get(v.selected); ok {
			v.logger.Debug("selected", "species", sp.Species, "cell", at)
		}
	}
}

// nextSelection picks the front occupant of a clicked cell, or the one
// after the current selection when it is in that cell.
func nextSelection(occupants []ecs.Entity, current ecs.Entity, has bool) (ecs.Entity, bool) {
	if len(occupants) == 0 {
		return ecs.Entity{}, false
	}
	if has {
		for i, e := range occupants {
			if e == current {
				return occupants[(i+1)%len(occupants)], true
			}
		}
	}
	return occupants[0], true
}

func (v *Viewer) drawBoard() {
	b, l := v.src.Board(), v.layout
	rl.DrawRectangleRec(l.Bounds(), colorTile)
	if l.CellSize >= 6 {
		v.drawGridLines()
	}

	if sp, ok := v.controls.OverlaySpecies(); ok {
		field, half := v.src.Field(), v.cfg.Sensors.HalfSaturation
		for r := range b.Rows {
			for c := range b.Cols {
				at := components.Coords{Row: r, Col: c}
				if n := field.Count(at, sp); n > 0 {
					rl.DrawRectangleRec(l.CellRect(at), scentColor(sp, float32(float64(n)/(float64(n)+half))))
				}
			}
		}
	}

	// Back to front, so the first occupant ends up on top.
	phase := v.controls.Phase()
	for r := range b.Rows {
		for c := range b.Cols {
			occ := b.Cell(components.Coords{Row: r, Col: c}).Occupants()
			for i := len(occ) - 1; i >= 0; i-- {
				if sp, ok := v.Get(occ[i]); ok {
					v.drawSprite(sp, v.Position(sp, l, phase))
				}
			}
		}
	}

	if v.hasSelected {
		if at, ok := b.Coords(v.selected); ok && b.Registered(v.selected) {
			rl.DrawRectangleLinesEx(l.CellRect(at), 2, colorSelection)
		}
	}
}

func (v *Viewer) drawGridLines() {
	bounds := v.layout.Bounds()
	for r := 1; r < v.layout.Rows; r++ {
		y := bounds.Y + float32(r)*v.layout.CellSize
		rl.DrawLineV(rl.Vector2{X: bounds.X, Y: y}, rl.Vector2{X: bounds.X + bounds.Width, Y: y}, colorGridLine)
	}
	for c := 1; c < v.layout.Cols; c++ {
		x := bounds.X + float32(c)*v.layout.CellSize
		rl.DrawLineV(rl.Vector2{X: x, Y: bounds.Y}, rl.Vector2{X: x, Y: bounds.Y + bounds.Height}, colorGridLine)
	}
}

func (v *Viewer) drawSprite(sp *Sprite, p rl.Vector2) {
	size := v.layout.CellSize
	c := speciesColor[sp.Species]
	switch sp.Species {
	case components.SpeciesPlant:
		s := size * 0.8
		rl.DrawRectangleRec(rl.Rectangle{X: p.X - s/2, Y: p.Y - s/2, Width: s, Height: s}, c)
	case components.SpeciesSeed:
		rl.DrawCircleV(p, max(size*0.15, 1), c)
	case components.SpeciesHerbivore:
		rl.DrawCircleV(p, max(size*0.35, 1), c)
	case components.SpeciesCarnivore:
		rl.DrawPoly(p, 3, max(size*0.42, 1), -90, c)
	}
}

func (v *Viewer) drawPanel() {
	p := v.panel
	rl.DrawRectangleRec(p, colorPanel)
	rl.DrawLineV(rl.Vector2{X: p.X, Y: p.Y}, rl.Vector2{X: p.X, Y: p.Y + p.Height}, colorPanelEdge)

	x := p.X + 12
	y := p.Y + 12
	width := p.Width - 24

	y += v.controls.Draw(x, y, width)
	y += float32(v.drawStats(int32(x), int32(y)))

	if !v.hasSelected {
		rl.DrawText("Click a cell to inspect", int32(x), int32(y)+8, fontSize, colorTextDim)
		return
	}
	in, ok := v.src.Ecosystem().Inspect(v.selected)
	if !ok {
		v.hasSelected = false
		return
	}
	y += 8
	for _, comp := range in.Components {
		y += float32(drawSection(int32(x), int32(y), comp))
	}
	if in.Net != nil {
		drawNetwork(rl.Rectangle{X: x + 40, Y: y + 4, Width: width - 80, Height: p.Y + p.Height - y - 16}, in.Net, in.Inputs)
	}
}

func (v *Viewer) drawStats(x, y int32) int32 {
	start := y
	status := ""
	switch {
	case v.src.Finished():
		status = "  (finished)"
	case v.controls.Paused:
		status = "  (paused)"
	}
	y += drawLabel(x, y, "Round", fmt.Sprintf("%d%s", v.src.Round(), status))
	y += drawLabel(x, y, "Round ticks", fmt.Sprint(v.src.RoundTicks()))
	y += drawLabel(x, y, "Tick", fmt.Sprint(v.src.Tick()))
	for _, sp := range components.AllSpecies() {
		y += drawLabel(x, y, sp.String()+"s", fmt.Sprint(v.Count(sp)))
	}
	y += drawLabel(x, y, "FPS", fmt.Sprint(rl.GetFPS()))
	return y - start
}
