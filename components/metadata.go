package components

import (
	"fmt"
	"strings"
)

// Species tags the variant of an entity.
type Species uint8

const (
	SpeciesPlant Species = iota
	SpeciesSeed
	SpeciesHerbivore
	SpeciesCarnivore
	numSpecies
)

// NumSpecies is the number of species tags.
const NumSpecies = int(numSpecies)

// Display priorities. Lower values sort to the front of a cell.
const (
	PriorityAnimal = 1
	PriorityFlora  = 5
)

// AllSpecies lists every species in tag order.
func AllSpecies() []Species {
	return []Species{SpeciesPlant, SpeciesSeed, SpeciesHerbivore, SpeciesCarnivore}
}

// String returns the display name for a Species.
func (s Species) String() string {
	names := SpeciesNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// SpeciesNames returns the display names for all species.
// The order matches the Species constants.
func SpeciesNames() []string {
	return []string{"Plant", "Seed", "Herbivore", "Carnivore"}
}

// ParseSpecies resolves a species from its (case-insensitive) name.
func ParseSpecies(name string) (Species, error) {
	for i, n := range SpeciesNames() {
		if strings.EqualFold(n, name) {
			return Species(i), nil
		}
	}
	return 0, fmt.Errorf("unknown species %q", name)
}

// IsAnimal reports whether the species moves, eats and breeds.
func (s Species) IsAnimal() bool {
	return s == SpeciesHerbivore || s == SpeciesCarnivore
}

// DisplayPriority returns the default occupant ordering key for the species.
func (s Species) DisplayPriority() int {
	if s.IsAnimal() {
		return PriorityAnimal
	}
	return PriorityFlora
}

// UnmarshalText implements encoding.TextUnmarshaler so species can be named in YAML.
func (s *Species) UnmarshalText(text []byte) error {
	v, err := ParseSpecies(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Species) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DeathCause records why an organism was removed.
type DeathCause uint8

const (
	CauseStarvation DeathCause = iota
	CausePredation
	CauseHealth
	CauseSeedFailure
	numCauses
)

// NumCauses is the number of death causes.
const NumCauses = int(numCauses)

// String returns the cause name used in logs and CSV columns.
func (c DeathCause) String() string {
	switch c {
	case CauseStarvation:
		return "starvation"
	case CausePredation:
		return "predation"
	case CauseHealth:
		return "health"
	case CauseSeedFailure:
		return "seed_failure"
	}
	return "unknown"
}
