package simulation

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/systems"
)

// populate seeds every cell of a fresh board from a single roll in [1,100]:
// the roll places a plant when it is within the plant share, and the same
// roll places a herbivore within the herbivore share or else a carnivore
// within the next carnivore share. Cells are visited in row-major order.
func populate(eco *systems.Ecosystem, cfg *config.Config, rng *rand.Rand) error {
	pop := cfg.Population
	b := eco.Board()
	lo, hi := int(pop.PlantMassMin), int(pop.PlantMassMax)

	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			at := components.Coords{Row: r, Col: c}
			roll := 1 + rng.Intn(100)

			if roll <= pop.PlantPercent {
				mass := float64(lo + rng.Intn(hi-lo+1))
				eco.SpawnPlant(at, mass, 0)
			}

			var sp components.Species
			switch {
			case roll <= pop.HerbivorePercent:
				sp = components.SpeciesHerbivore
			case roll <= pop.HerbivorePercent+pop.CarnivorePercent:
				sp = components.SpeciesCarnivore
			default:
				continue
			}
			if err := spawnFounder(eco, sp, at, pop.RandomizeFounders); err != nil {
				return err
			}
		}
	}
	return nil
}

func spawnFounder(eco *systems.Ecosystem, sp components.Species, at components.Coords, randomize bool) error {
	net, err := eco.NewBrain(sp)
	if err != nil {
		return fmt.Errorf("founder %s at %v: %w", sp, at, err)
	}
	eco.SpawnAnimal(sp, at, net, 0, randomize)
	return nil
}
