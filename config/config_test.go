package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/ecosim/components"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Rows != 30 || cfg.World.Cols != 40 {
		t.Errorf("world %dx%d, want 30x40", cfg.World.Rows, cfg.World.Cols)
	}
	if cfg.Derived.Cells != 1200 {
		t.Errorf("derived cells = %d", cfg.Derived.Cells)
	}
	if !cfg.Herbivore.Eats(components.SpeciesPlant) || cfg.Herbivore.Eats(components.SpeciesHerbivore) {
		t.Errorf("herbivore diet = %v", cfg.Herbivore.Diet)
	}
	if cfg.Carnivore.Senses != components.SpeciesHerbivore {
		t.Errorf("carnivore senses %v", cfg.Carnivore.Senses)
	}
	if got := cfg.Derived.Topology; len(got) != 3 || got[1] != 12 {
		t.Errorf("topology = %v", got)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	overlay := []byte("world:\n  rows: 5\nherbivore:\n  movement: forage\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Rows != 5 {
		t.Errorf("rows = %d, want 5", cfg.World.Rows)
	}
	if cfg.World.Cols != 40 {
		t.Errorf("cols = %d, want default 40", cfg.World.Cols)
	}
	if cfg.Herbivore.Movement != MovementForage {
		t.Errorf("movement = %q", cfg.Herbivore.Movement)
	}
	if cfg.Herbivore.Mass != 40 {
		t.Errorf("unset herbivore mass lost its default: %v", cfg.Herbivore.Mass)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rows", func(c *Config) { c.World.Rows = 0 }},
		{"plant over 100", func(c *Config) { c.Population.PlantPercent = 101 }},
		{"animals over 100", func(c *Config) { c.Population.HerbivorePercent, c.Population.CarnivorePercent = 60, 50 }},
		{"negative percent", func(c *Config) { c.Population.CarnivorePercent = -1 }},
		{"diffusion rate", func(c *Config) { c.Particles.DiffusionRate = 1.5 }},
		{"zero hidden layer", func(c *Config) { c.Neural.HiddenLayers = []int{0} }},
		{"no diet", func(c *Config) { c.Carnivore.Diet = nil }},
		{"movement", func(c *Config) { c.Herbivore.Movement = "teleport" }},
		{"seed days", func(c *Config) { c.Seed.DaysMin = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.World.Rows = 7
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading snapshot: %v", err)
	}
	if back.World.Rows != 7 || back.Carnivore.Senses != components.SpeciesHerbivore {
		t.Errorf("snapshot lost values: rows %d senses %v", back.World.Rows, back.Carnivore.Senses)
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}

func TestCloneIsDeep(t *testing.T) {
	cfg := Default()
	clone, err := cfg.Clone()
	if err != nil {
		t.Fatal(err)
	}
	clone.Herbivore.Diet[0] = components.SpeciesCarnivore
	clone.Neural.HiddenLayers[0] = 3
	clone.Plant.GrowthRate = 0.9

	if cfg.Herbivore.Diet[0] != components.SpeciesPlant {
		t.Error("clone shares the diet slice")
	}
	if cfg.Neural.HiddenLayers[0] != 12 || cfg.Plant.GrowthRate != 0.4 {
		t.Error("clone edits leaked into the original")
	}
	if clone.Derived.Cells != cfg.Derived.Cells {
		t.Errorf("derived cells = %d, want %d", clone.Derived.Cells, cfg.Derived.Cells)
	}
}
