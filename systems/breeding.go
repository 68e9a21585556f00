package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
)

// CanReproduce reports whether an agent may start a mate search: it must be
// adult, out of cooldown since its last litter and have at least the
// species minimum energy. It never mutates its arguments.
func CanReproduce(v *components.Vitals, b *components.Behavior, sp *config.SpeciesConfig) bool {
	if v.Age < sp.AdultAge {
		return false
	}
	if b.Reproduced && v.Age-b.LastReproductionAge < sp.Reproduction.CooldownYears {
		return false
	}
	return v.Energy >= sp.Reproduction.MinEnergy
}

// CanConceive is the check a female repeats on reaching her mate, before the
// mating phase starts.
func CanConceive(v *components.Vitals, b *components.Behavior, sp *config.SpeciesConfig) bool {
	return v.Gender == components.Female && !v.Pregnant && CanReproduce(v, b, sp)
}

// IsMate reports whether other is a valid partner for self.
func IsMate(self, other *components.Vitals, selfOrg, otherOrg *components.Organism) bool {
	return !otherOrg.Dead &&
		selfOrg.Species == otherOrg.Species &&
		self.Gender.Opposite(other.Gender)
}

// MatingSucceeds rolls the species success chance.
func MatingSucceeds(r config.ReproductionConfig, rng *rand.Rand) bool {
	return rng.Float64() < r.SuccessChance
}

// LitterSize draws the number of offspring. With a positive standard
// deviation the size is a rounded Normal(mean, sd) draw; either way it is
// clamped to [LitterMin, LitterMax].
func LitterSize(r config.ReproductionConfig, rng *rand.Rand) int {
	n := r.LitterMin
	if r.LitterStdDev > 0 {
		draw := distuv.Normal{Mu: r.LitterMean, Sigma: r.LitterStdDev, Src: rng}.Rand()
		n = int(math.Round(draw))
	}
	return min(max(n, r.LitterMin), r.LitterMax)
}

// CompleteLitter resets the pregnancy and starts the cooldown at the
// mother's current age.
func CompleteLitter(v *components.Vitals, b *components.Behavior) {
	v.Pregnant = false
	b.Reproduced = true
	b.LastReproductionAge = v.Age
	b.Mate = components.MateSnapshot{}
}
