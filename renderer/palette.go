package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/components"
)

var (
	colorBackground = rl.Color{R: 18, G: 20, B: 24, A: 255}
	colorTile       = rl.Color{R: 34, G: 38, B: 44, A: 255}
	colorGridLine   = rl.Color{R: 26, G: 29, B: 34, A: 255}
	colorSelection  = rl.Color{R: 255, G: 230, B: 120, A: 255}
	colorPanel      = rl.Color{R: 30, G: 30, B: 35, A: 240}
	colorPanelEdge  = rl.Color{R: 70, G: 70, B: 80, A: 255}
	colorText       = rl.Color{R: 220, G: 220, B: 220, A: 255}
	colorTextDim    = rl.Color{R: 150, G: 150, B: 150, A: 255}
	colorSection    = rl.Color{R: 200, G: 200, B: 220, A: 255}
	colorBarBg      = rl.Color{R: 40, G: 40, B: 40, A: 255}
	colorBarFill    = rl.Color{R: 100, G: 180, B: 100, A: 255}
	colorBarLow     = rl.Color{R: 180, G: 80, B: 80, A: 255}
	colorBoolOn     = rl.Color{R: 100, G: 200, B: 100, A: 255}
	colorBoolOff    = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

// speciesColor is the body colour of each species, indexed by tag.
var speciesColor = [components.NumSpecies]rl.Color{
	components.SpeciesPlant:     {R: 60, G: 150, B: 70, A: 255},
	components.SpeciesSeed:      {R: 150, G: 120, B: 70, A: 255},
	components.SpeciesHerbivore: {R: 90, G: 160, B: 230, A: 255},
	components.SpeciesCarnivore: {R: 230, G: 80, B: 70, A: 255},
}

// scentColor tints a cell by the saturated scent level v in [0,1].
func scentColor(species components.Species, v float32) rl.Color {
	c := speciesColor[species]
	c.A = uint8(clamp01(v) * 160)
	return c
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	t = clamp01(t)
	mix := func(x, y uint8) uint8 { return uint8(float32(x) + (float32(y)-float32(x))*t) }
	return rl.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
