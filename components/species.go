package components

// Species identifies one of the simulated animal species.
type Species uint8

const (
	Deer Species = iota
	Horse
	Wolf
	NumSpecies
)

var speciesNames = [NumSpecies]string{"deer", "horse", "wolf"}

func (s Species) String() string {
	if s < NumSpecies {
		return speciesNames[s]
	}
	return "unknown"
}

// ParseSpecies maps a config name to a Species.
func ParseSpecies(name string) (Species, bool) {
	for i, n := range speciesNames {
		if n == name {
			return Species(i), true
		}
	}
	return NumSpecies, false
}

// Diet separates grazers from hunters.
type Diet uint8

const (
	Herbivore Diet = iota
	Carnivore
)

func (d Diet) String() string {
	if d == Carnivore {
		return "carnivore"
	}
	return "herbivore"
}

// DietOf returns the diet class of a species.
func DietOf(s Species) Diet {
	if s == Wolf {
		return Carnivore
	}
	return Herbivore
}

// Gender is the binary sex of an agent.
type Gender uint8

const (
	Female Gender = iota
	Male
)

func (g Gender) String() string {
	if g == Male {
		return "male"
	}
	return "female"
}

// Opposite reports whether g and o can mate.
func (g Gender) Opposite(o Gender) bool {
	return g != o
}

// DeathCause records why an agent left the simulation.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseOldAge
	CauseHealth
	CausePredation
	CauseCulled
)

func (c DeathCause) String() string {
	switch c {
	case CauseOldAge:
		return "old_age"
	case CauseHealth:
		return "health"
	case CausePredation:
		return "predation"
	case CauseCulled:
		return "culled"
	default:
		return "none"
	}
}
