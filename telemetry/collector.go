package telemetry

import "github.com/pthm-cable/ecosim/components"

// Collector accumulates lifecycle events within windows of simulation ticks
// and produces WindowStats. It satisfies systems.Recorder.
type Collector struct {
	windowTicks int
	windowStart int

	births     [components.NumSpecies]int
	deaths     [components.NumSpecies][components.NumCauses]int
	kills      [components.NumSpecies]int // indexed by predator
	eatenMass  [components.NumSpecies]float64
	maxAge     [components.NumSpecies]int
	dispersals int
	sprouts    int
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// RecordBirth records an animal born through breeding.
func (c *Collector) RecordBirth(s components.Species) {
	c.births[s]++
}

// RecordDeath records a death and the age reached.
func (c *Collector) RecordDeath(s components.Species, cause components.DeathCause, age int) {
	c.deaths[s][cause]++
	if age > c.maxAge[s] {
		c.maxAge[s] = age
	}
}

// RecordKill records predator eating prey.
func (c *Collector) RecordKill(predator, prey components.Species, mass float64) {
	c.kills[predator]++
	c.eatenMass[predator] += mass
}

// RecordDispersal records a seed dropped by a plant.
func (c *Collector) RecordDispersal() {
	c.dispersals++
}

// RecordSprout records a seed turning into a plant.
func (c *Collector) RecordSprout() {
	c.sprouts++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(tick int) bool {
	return tick-c.windowStart >= c.windowTicks
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}

// Census is the population state sampled at the end of a window.
type Census struct {
	Round     int
	Tick      int
	Counts    [components.NumSpecies]int
	Mass      [components.NumSpecies][]float64
	Particles int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(census Census) WindowStats {
	herb, carn, plant := components.SpeciesHerbivore, components.SpeciesCarnivore, components.SpeciesPlant
	stats := WindowStats{
		WindowStartTick: c.windowStart,
		WindowEndTick:   census.Tick,
		Round:           census.Round,

		Plants:     census.Counts[plant],
		Seeds:      census.Counts[components.SpeciesSeed],
		Herbivores: census.Counts[herb],
		Carnivores: census.Counts[carn],

		HerbivoreBirths: c.births[herb],
		CarnivoreBirths: c.births[carn],

		HerbivoresStarved: c.deaths[herb][components.CauseStarvation],
		HerbivoresEaten:   c.deaths[herb][components.CausePredation],
		CarnivoresStarved: c.deaths[carn][components.CauseStarvation],
		PlantsEaten:       c.deaths[plant][components.CausePredation],
		SeedFailures:      c.deaths[components.SpeciesSeed][components.CauseSeedFailure],

		HerbivoreMeals: c.kills[herb],
		CarnivoreMeals: c.kills[carn],
		PlantMassEaten: c.eatenMass[herb],
		PreyMassEaten:  c.eatenMass[carn],
		Dispersals:     c.dispersals,
		Sprouts:        c.sprouts,

		HerbivoreMaxAge: c.maxAge[herb],
		CarnivoreMaxAge: c.maxAge[carn],

		HerbivoreMass: ComputeMassStats(census.Mass[herb]),
		CarnivoreMass: ComputeMassStats(census.Mass[carn]),
		PlantMass:     ComputeMassStats(census.Mass[plant]),

		ScentTotal: census.Particles,
	}

	c.Reset(census.Tick)
	return stats
}

// Reset clears the counters and starts a new window at tick.
func (c *Collector) Reset(tick int) {
	*c = Collector{windowTicks: c.windowTicks, windowStart: tick}
}
