// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ecosim/body"
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/neural"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig      `yaml:"screen"`
	World      WorldConfig       `yaml:"world"`
	Population PopulationConfig  `yaml:"population"`
	Plant      PlantConfig       `yaml:"plant"`
	Seed       SeedConfig        `yaml:"seed"`
	Herbivore  SpeciesConfig     `yaml:"herbivore"`
	Carnivore  SpeciesConfig     `yaml:"carnivore"`
	Metabolism body.AnimalParams `yaml:"metabolism"`
	Particles  ParticlesConfig   `yaml:"particles"`
	Sensors    SensorsConfig     `yaml:"sensors"`
	Neural     neural.Config     `yaml:"neural"`
	Simulation SimulationConfig  `yaml:"simulation"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`
	Debug      DebugConfig       `yaml:"debug"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
	PanelW    int `yaml:"panel_width"` // side panel for controls and inspector
}

// WorldConfig holds the grid dimensions.
type WorldConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// PopulationConfig holds the per-cell spawn rolls used to seed a board.
// One roll in [1,100] per cell: a roll up to PlantPercent places a plant and
// the same roll up to HerbivorePercent places a herbivore, else up to
// HerbivorePercent+CarnivorePercent a carnivore.
type PopulationConfig struct {
	PlantPercent      int     `yaml:"plant_percent"`
	HerbivorePercent  int     `yaml:"herbivore_percent"`
	CarnivorePercent  int     `yaml:"carnivore_percent"`
	PlantMassMin      float64 `yaml:"plant_mass_min"`
	PlantMassMax      float64 `yaml:"plant_mass_max"`
	RandomizeFounders bool    `yaml:"randomize_founders"`
}

// PlantConfig holds plant growth and dispersal parameters.
type PlantConfig struct {
	MassCapacity  float64 `yaml:"mass_capacity"`
	GrowthRate    float64 `yaml:"growth_rate"`
	EnergyDensity float64 `yaml:"energy_density"`
	SeedChance    float64 `yaml:"seed_chance"` // per-tick dispersal probability
	SeedRadius    int     `yaml:"seed_radius"` // max dispersal distance in tiles
	Emission      int     `yaml:"emission"`    // scent per tick, 0 disables
}

// SeedConfig holds germination parameters.
type SeedConfig struct {
	DaysMin     int     `yaml:"days_min"`
	DaysMax     int     `yaml:"days_max"`
	DeathChance float64 `yaml:"death_chance"`
	SproutMass  float64 `yaml:"sprout_mass"`
}

// MovementMode selects how an animal chooses its step.
type MovementMode string

const (
	MovementNeural MovementMode = "neural"
	MovementForage MovementMode = "forage"
)

// SpeciesConfig holds per-species animal constants.
type SpeciesConfig struct {
	Mass         float64              `yaml:"mass"`
	MassCapacity float64              `yaml:"mass_capacity"`
	MaturityAge  int                  `yaml:"maturity_age"`
	CooldownMin  int                  `yaml:"cooldown_min"` // breeding cooldown drawn from [min,max]
	CooldownMax  int                  `yaml:"cooldown_max"`
	Diet         []components.Species `yaml:"diet"`
	Senses       components.Species   `yaml:"senses"` // scent the controller follows
	Movement     MovementMode         `yaml:"movement"`
	Emission     int                  `yaml:"emission"`
}

// Eats reports whether s is part of the diet.
func (c *SpeciesConfig) Eats(s components.Species) bool {
	for _, d := range c.Diet {
		if d == s {
			return true
		}
	}
	return false
}

// ParticlesConfig holds scent decay and diffusion constants.
type ParticlesConfig struct {
	DecayFloor        int     `yaml:"decay_floor"`
	DecayRate         float64 `yaml:"decay_rate"`
	DiffusionRate     float64 `yaml:"diffusion_rate"`
	ParallelThreshold int     `yaml:"parallel_threshold"` // min cells before the plan phase fans out
}

// SensorsConfig holds scent sensing parameters.
type SensorsConfig struct {
	HalfSaturation float64 `yaml:"half_saturation"` // count at which a sensor reads 0.5
}

// SimulationConfig holds run control parameters.
type SimulationConfig struct {
	Seed         int64 `yaml:"seed"`
	MaxTicks     int   `yaml:"max_ticks"`  // 0 = unbounded
	MaxRounds    int   `yaml:"max_rounds"` // 0 = unbounded
	UseTemplates bool  `yaml:"use_templates"`
}

// TelemetryConfig holds telemetry and logging parameters.
type TelemetryConfig struct {
	WindowTicks int    `yaml:"window_ticks"`
	PerfWindow  int    `yaml:"perf_window"`
	OutputDir   string `yaml:"output_dir"` // empty disables CSV output
	ResultsFile string `yaml:"results_file"`
	HallSize    int    `yaml:"hall_of_fame_size"` // champions kept per species
	SnapshotDir string `yaml:"snapshot_dir"`      // board snapshots on bookmarks; empty disables
}

// DebugConfig holds invariant checking switches.
type DebugConfig struct {
	StrictInvariants bool `yaml:"strict_invariants"` // panic instead of clamping
	CheckInvariants  bool `yaml:"check_invariants"`  // full board check after every tick
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	Topology  []int
	Cells     int
	PlantBody body.PlantParams
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Topology = c.Neural.Topology()
	c.Derived.Cells = c.World.Rows * c.World.Cols
	c.Derived.PlantBody = body.PlantParams{
		GrowthRate:    c.Plant.GrowthRate,
		EnergyDensity: c.Plant.EnergyDensity,
	}
}

// Refresh recomputes derived values after the caller edits fields in place.
func (c *Config) Refresh() {
	c.computeDerived()
}

// Species returns the animal constants for a species, or nil for flora.
func (c *Config) Species(s components.Species) *SpeciesConfig {
	switch s {
	case components.SpeciesHerbivore:
		return &c.Herbivore
	case components.SpeciesCarnivore:
		return &c.Carnivore
	}
	return nil
}

// Validate checks value ranges and returns every problem found.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.World.Rows <= 0 || c.World.Cols <= 0 {
		bad("world size %dx%d must be positive", c.World.Rows, c.World.Cols)
	}

	p := c.Population
	for _, f := range []struct {
		name string
		v    int
	}{
		{"plant_percent", p.PlantPercent},
		{"herbivore_percent", p.HerbivorePercent},
		{"carnivore_percent", p.CarnivorePercent},
	} {
		if f.v < 0 || f.v > 100 {
			bad("population.%s = %d outside [0,100]", f.name, f.v)
		}
	}
	if p.HerbivorePercent+p.CarnivorePercent > 100 {
		bad("herbivore_percent + carnivore_percent = %d exceeds 100", p.HerbivorePercent+p.CarnivorePercent)
	}
	if p.PlantMassMin <= 0 || p.PlantMassMax < p.PlantMassMin {
		bad("plant mass range [%v,%v] invalid", p.PlantMassMin, p.PlantMassMax)
	}

	checkRate := func(name string, v float64) {
		if v < 0 || v > 1 {
			bad("%s = %v outside [0,1]", name, v)
		}
	}
	checkRate("plant.seed_chance", c.Plant.SeedChance)
	checkRate("seed.death_chance", c.Seed.DeathChance)
	checkRate("particles.decay_rate", c.Particles.DecayRate)
	checkRate("particles.diffusion_rate", c.Particles.DiffusionRate)
	checkRate("metabolism.stomach_capacity_ratio", c.Metabolism.StomachCapacityRatio)
	checkRate("metabolism.digestion_rate", c.Metabolism.DigestionRate)

	if c.Plant.MassCapacity <= 0 || c.Plant.GrowthRate < 0 {
		bad("plant mass_capacity %v / growth_rate %v invalid", c.Plant.MassCapacity, c.Plant.GrowthRate)
	}
	if c.Plant.SeedRadius < 1 {
		bad("plant.seed_radius = %d must be >= 1", c.Plant.SeedRadius)
	}
	if c.Seed.DaysMin < 1 || c.Seed.DaysMax < c.Seed.DaysMin || c.Seed.SproutMass <= 0 {
		bad("seed days [%d,%d] / sprout_mass %v invalid", c.Seed.DaysMin, c.Seed.DaysMax, c.Seed.SproutMass)
	}
	if c.Particles.DecayFloor < 0 {
		bad("particles.decay_floor = %d must be >= 0", c.Particles.DecayFloor)
	}
	if c.Telemetry.WindowTicks < 0 || c.Telemetry.PerfWindow < 0 || c.Telemetry.HallSize < 0 {
		bad("telemetry windows and hall_of_fame_size must be >= 0")
	}
	if c.Sensors.HalfSaturation <= 0 {
		bad("sensors.half_saturation = %v must be > 0", c.Sensors.HalfSaturation)
	}
	if c.Metabolism.FatEnergyDensity <= 0 || c.Metabolism.MuscleEnergyDensity <= 0 {
		bad("tissue energy densities must be positive")
	}

	for _, s := range []components.Species{components.SpeciesHerbivore, components.SpeciesCarnivore} {
		sc := c.Species(s)
		if sc.Mass <= 0 || sc.MassCapacity < sc.Mass {
			bad("%s mass %v / capacity %v invalid", s, sc.Mass, sc.MassCapacity)
		}
		if sc.CooldownMin < 0 || sc.CooldownMax < sc.CooldownMin {
			bad("%s cooldown range [%d,%d] invalid", s, sc.CooldownMin, sc.CooldownMax)
		}
		if len(sc.Diet) == 0 {
			bad("%s has no diet", s)
		}
		switch sc.Movement {
		case MovementNeural, MovementForage:
		default:
			bad("%s movement %q unknown", s, sc.Movement)
		}
	}

	if err := c.Neural.Validate(); err != nil {
		bad("%w", err)
	}
	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the configuration, so callers can tune one
// run without touching another.
func (c *Config) Clone() (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("cloning config: %w", err)
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("cloning config: %w", err)
	}
	out.computeDerived()
	return out, nil
}
