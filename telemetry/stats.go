package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// MassStats summarises the body masses of one species.
type MassStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int `csv:"-"`
	WindowEndTick   int `csv:"window_end"`
	Round           int `csv:"round"`

	// Population at window end
	Plants     int `csv:"plants"`
	Seeds      int `csv:"seeds"`
	Herbivores int `csv:"herbivores"`
	Carnivores int `csv:"carnivores"`

	// Events during window
	HerbivoreBirths   int `csv:"herbivore_births"`
	CarnivoreBirths   int `csv:"carnivore_births"`
	HerbivoresStarved int `csv:"herbivores_starved"`
	HerbivoresEaten   int `csv:"herbivores_eaten"`
	CarnivoresStarved int `csv:"carnivores_starved"`
	PlantsEaten       int `csv:"plants_eaten"`
	SeedFailures      int `csv:"seed_failures"`
	Dispersals        int `csv:"dispersals"`
	Sprouts           int `csv:"sprouts"`

	// Feeding
	HerbivoreMeals int     `csv:"herbivore_meals"`
	CarnivoreMeals int     `csv:"carnivore_meals"`
	PlantMassEaten float64 `csv:"plant_mass_eaten"`
	PreyMassEaten  float64 `csv:"prey_mass_eaten"`

	HerbivoreMaxAge int `csv:"herbivore_max_age"`
	CarnivoreMaxAge int `csv:"carnivore_max_age"`

	// Mass distribution sampled at window end
	HerbivoreMass MassStats `csv:"-"`
	CarnivoreMass MassStats `csv:"-"`
	PlantMass     MassStats `csv:"-"`

	ScentTotal int `csv:"scent_total"`
}

// ComputeMassStats calculates the population mean, standard deviation and
// deciles of values. Returns zeros for an empty slice.
func ComputeMassStats(values []float64) MassStats {
	switch len(values) {
	case 0:
		return MassStats{}
	case 1:
		v := values[0]
		return MassStats{Mean: v, P10: v, P50: v, P90: v}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return MassStats{
		Mean: mean,
		Std:  std,
		P10:  stat.Quantile(0.10, stat.LinInterp, sorted, nil),
		P50:  stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P90:  stat.Quantile(0.90, stat.LinInterp, sorted, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (m MassStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("mean", m.Mean),
		slog.Float64("std", m.Std),
		slog.Float64("p50", m.P50),
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_end", s.WindowEndTick),
		slog.Int("round", s.Round),
		slog.Int("plants", s.Plants),
		slog.Int("seeds", s.Seeds),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("herbivore_births", s.HerbivoreBirths),
		slog.Int("carnivore_births", s.CarnivoreBirths),
		slog.Int("herbivores_starved", s.HerbivoresStarved),
		slog.Int("herbivores_eaten", s.HerbivoresEaten),
		slog.Int("carnivores_starved", s.CarnivoresStarved),
		slog.Int("plants_eaten", s.PlantsEaten),
		slog.Int("sprouts", s.Sprouts),
		slog.Any("herbivore_mass", s.HerbivoreMass),
		slog.Any("carnivore_mass", s.CarnivoreMass),
		slog.Int("scent_total", s.ScentTotal),
	)
}

// LogStats logs the window stats using logger.
func (s WindowStats) LogStats(logger *slog.Logger) {
	logger.Info("stats", "window", s)
}

// WindowStatsCSV is a flat struct for CSV export of window stats.
type WindowStatsCSV struct {
	WindowStats
	HerbivoreMassMean float64 `csv:"herbivore_mass_mean"`
	HerbivoreMassStd  float64 `csv:"herbivore_mass_std"`
	HerbivoreMassP10  float64 `csv:"herbivore_mass_p10"`
	HerbivoreMassP50  float64 `csv:"herbivore_mass_p50"`
	HerbivoreMassP90  float64 `csv:"herbivore_mass_p90"`
	CarnivoreMassMean float64 `csv:"carnivore_mass_mean"`
	CarnivoreMassStd  float64 `csv:"carnivore_mass_std"`
	CarnivoreMassP50  float64 `csv:"carnivore_mass_p50"`
	PlantMassMean     float64 `csv:"plant_mass_mean"`
	PlantMassP50      float64 `csv:"plant_mass_p50"`
}

// ToCSV flattens the mass summaries into columns.
func (s WindowStats) ToCSV() WindowStatsCSV {
	return WindowStatsCSV{
		WindowStats:       s,
		HerbivoreMassMean: s.HerbivoreMass.Mean,
		HerbivoreMassStd:  s.HerbivoreMass.Std,
		HerbivoreMassP10:  s.HerbivoreMass.P10,
		HerbivoreMassP50:  s.HerbivoreMass.P50,
		HerbivoreMassP90:  s.HerbivoreMass.P90,
		CarnivoreMassMean: s.CarnivoreMass.Mean,
		CarnivoreMassStd:  s.CarnivoreMass.Std,
		CarnivoreMassP50:  s.CarnivoreMass.P50,
		PlantMassMean:     s.PlantMass.Mean,
		PlantMassP50:      s.PlantMass.P50,
	}
}
