package renderer

import (
	"testing"

	"github.com/pthm-cable/ecosim/components"
)

func TestControlsWholeSpeed(t *testing.T) {
	c := NewControls(3)
	for range 4 {
		if n := c.Steps(); n != 3 {
			t.Fatalf("Steps = %d, want 3", n)
		}
	}
	if c.Phase() != 1 {
		t.Errorf("Phase = %v at speed 3", c.Phase())
	}
}

func TestControlsFractionalSpeed(t *testing.T) {
	c := NewControls(0.25)
	var total int
	var phases []float32
	for range 8 {
		total += c.Steps()
		phases = append(phases, c.Phase())
	}
	if total != 2 {
		t.Errorf("ran %d steps in 8 frames at 0.25, want 2", total)
	}
	if phases[0] != 0.5 || phases[3] != 0.25 {
		t.Errorf("phases = %v", phases)
	}
}

func TestControlsPausedStepOnce(t *testing.T) {
	c := NewControls(5)
	c.TogglePause()
	if n := c.Steps(); n != 0 {
		t.Fatalf("paused Steps = %d", n)
	}
	c.RequestStep()
	if n := c.Steps(); n != 1 {
		t.Errorf("requested step ran %d steps", n)
	}
	if n := c.Steps(); n != 0 {
		t.Errorf("step request not consumed, ran %d", n)
	}
	if c.Phase() != 1 {
		t.Error("paused sprites should be settled")
	}
}

func TestControlsSpeedClamped(t *testing.T) {
	if c := NewControls(0); c.Speed != MinSpeed {
		t.Errorf("speed = %v, want %v", c.Speed, MinSpeed)
	}
	if c := NewControls(1000); c.Speed != MaxSpeed {
		t.Errorf("speed = %v, want %v", c.Speed, MaxSpeed)
	}
}

func TestCycleOverlay(t *testing.T) {
	c := NewControls(1)
	if _, ok := c.OverlaySpecies(); ok {
		t.Fatal("overlay on by default")
	}
	want := []components.Species{components.SpeciesPlant, components.SpeciesHerbivore, components.SpeciesCarnivore}
	for _, sp := range want {
		c.CycleOverlay()
		if got, ok := c.OverlaySpecies(); !ok || got != sp {
			t.Errorf("overlay = %v, %v, want %v", got, ok, sp)
		}
	}
	c.CycleOverlay()
	if _, ok := c.OverlaySpecies(); ok {
		t.Error("overlay did not wrap back to off")
	}

	c.Overlay = 99
	c.CycleOverlay()
	if c.Overlay != overlayOff {
		t.Errorf("unknown overlay cycled to %d", c.Overlay)
	}
}
