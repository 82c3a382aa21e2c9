package renderer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/components"
)

// Speed slider range, in simulation steps per frame.
const (
	MinSpeed = 0.1
	MaxSpeed = 20
)

// overlayOff disables the scent overlay.
const overlayOff = -1

// overlayCycle is the order the overlay button steps through.
var overlayCycle = []int{
	overlayOff,
	int(components.SpeciesPlant),
	int(components.SpeciesHerbivore),
	int(components.SpeciesCarnivore),
}

// Controls holds the playback state edited by the control panel.
type Controls struct {
	Paused  bool
	Speed   float32 // steps per frame; fractional speeds step every few frames
	Overlay int     // species whose scent is shown, or -1

	stepOnce bool
	acc      float32
}

// NewControls returns running controls at the given speed with the scent
// overlay off.
func NewControls(speed float32) *Controls {
	return &Controls{Speed: min(max(speed, MinSpeed), MaxSpeed), Overlay: overlayOff}
}

// RequestStep queues a single step while paused.
func (c *Controls) RequestStep() { c.stepOnce = true }

// TogglePause flips between running and paused.
func (c *Controls) TogglePause() { c.Paused = !c.Paused }

// CycleOverlay advances the scent overlay to the next species.
func (c *Controls) CycleOverlay() {
	for i, o := range overlayCycle {
		if o == c.Overlay {
			c.Overlay = overlayCycle[(i+1)%len(overlayCycle)]
			return
		}
	}
	c.Overlay = overlayOff
}

// OverlaySpecies returns the species shown by the scent overlay.
func (c *Controls) OverlaySpecies() (components.Species, bool) {
	if c.Overlay == overlayOff {
		return 0, false
	}
	return components.Species(c.Overlay), true
}

// Steps returns the number of steps to run this frame.
func (c *Controls) Steps() int {
	if c.Paused {
		if c.stepOnce {
			c.stepOnce = false
			return 1
		}
		return 0
	}
	c.acc += c.Speed
	n := int(c.acc)
	c.acc -= float32(n)
	return n
}

// Phase returns how far sprites that moved in the last step have slid
// towards their new cell, in [0,1].
func (c *Controls) Phase() float32 {
	if c.Paused || c.Speed >= 1 {
		return 1
	}
	return min(c.acc+c.Speed, 1)
}

// HandleKeys applies keyboard shortcuts: space pauses, N steps, O cycles
// the overlay and the bracket keys change speed.
func (c *Controls) HandleKeys() {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		c.TogglePause()
	case rl.IsKeyPressed(rl.KeyN):
		c.RequestStep()
	case rl.IsKeyPressed(rl.KeyO):
		c.CycleOverlay()
	case rl.IsKeyPressed(rl.KeyRightBracket):
		c.Speed = min(c.Speed*2, MaxSpeed)
	case rl.IsKeyPressed(rl.KeyLeftBracket):
		c.Speed = max(c.Speed/2, MinSpeed)
	}
}

// Draw renders the control panel at (x, y) and returns the height used.
func (c *Controls) Draw(x, y, width float32) float32 {
	start := y
	half := (width - 10) / 2

	pause := "Pause"
	if c.Paused {
		pause = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, pause) {
		c.TogglePause()
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 28}, "Step") {
		c.Paused = true
		c.RequestStep()
	}
	y += 38

	rl.DrawText(fmt.Sprintf("Speed: %.1f steps/frame", c.Speed), int32(x), int32(y), fontSize, colorTextDim)
	y += lineHeight
	c.Speed = gui.SliderBar(
		rl.Rectangle{X: x + 30, Y: y, Width: width - 60, Height: 18},
		fmt.Sprint(MinSpeed), fmt.Sprint(MaxSpeed),
		c.Speed, MinSpeed, MaxSpeed,
	)
	y += 28

	overlay := "Scent: off"
	if sp, ok := c.OverlaySpecies(); ok {
		overlay = "Scent: " + sp.String()
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: width, Height: 28}, overlay) {
		c.CycleOverlay()
	}
	y += 38
	return y - start
}
