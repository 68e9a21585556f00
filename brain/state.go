package brain

// State is the discrete decision state, in [0, NumStates).
type State int

// NumStates is 3 hunger buckets x 3 energy buckets x 2 threat flags.
const NumStates = 18

// Bucket maps a fraction to a three-level bucket.
func Bucket(f float64) int {
	switch {
	case f < 0.3:
		return 0
	case f < 0.7:
		return 1
	default:
		return 2
	}
}

// EncodeState combines hunger and energy fractions with the threat flag.
// For carnivores threat means prey is within detection range.
func EncodeState(hungerFrac, energyFrac float64, threat bool) State {
	t := 0
	if threat {
		t = 1
	}
	return State(Bucket(hungerFrac) + 3*Bucket(energyFrac) + 9*t)
}
