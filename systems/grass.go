package systems

import (
	"math/rand/v2"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/savanna/config"
)

// grassMargin keeps grass away from the world edge.
const grassMargin = 2.0

// GrassPatch is one edible grass tuft.
type GrassPatch struct {
	ID   int
	X, Y float64
}

type point struct{ x, y float64 }

// GrassField is the herbivore food source. Eaten patches leave their
// position behind for regrowth; new positions are drawn where the fertility
// noise is high enough.
type GrassField struct {
	cfg           config.GrassConfig
	width, height float64
	noise         opensimplex.Noise
	rng           *rand.Rand

	patches []GrassPatch
	index   map[int]int // patch ID -> slot in patches
	nextID  int
	eaten   []point
	timer   float64
	grown   int
}

// NewGrassField creates an empty field. seed drives the fertility noise.
func NewGrassField(cfg config.GrassConfig, width, height float64, seed int64, rng *rand.Rand) *GrassField {
	return &GrassField{
		cfg:    cfg,
		width:  width,
		height: height,
		noise:  opensimplex.NewNormalized(seed),
		rng:    rng,
		index:  make(map[int]int),
	}
}

// Fertility returns the normalized noise value in [0, 1] at a position.
func (f *GrassField) Fertility(x, y float64) float64 {
	return f.noise.Eval2(x*f.cfg.NoiseScale, y*f.cfg.NoiseScale)
}

// Populate places the initial patches at the most fertile of several
// candidate spots each.
func (f *GrassField) Populate() {
	for i := 0; i < f.cfg.Initial; i++ {
		p, _ := f.fertileSpot()
		f.add(p)
	}
}

// Update runs the regrowth clock and returns how many patches grew.
func (f *GrassField) Update(dt float64) int {
	if f.cfg.PerMinute <= 0 {
		return 0
	}
	interval := 60 / f.cfg.PerMinute
	f.timer += dt

	grown := 0
	for f.timer >= interval {
		f.timer -= interval
		if f.regrow() {
			grown++
		}
	}
	return grown
}

// regrow performs one regrowth attempt. With probability RespawnChance an
// eaten spot is reused, otherwise a fresh fertile spot is searched.
func (f *GrassField) regrow() bool {
	if len(f.patches) >= f.cfg.Max {
		return false
	}
	if len(f.eaten) > 0 && f.rng.Float64() < f.cfg.RespawnChance {
		i := f.rng.IntN(len(f.eaten))
		p := f.eaten[i]
		f.eaten[i] = f.eaten[len(f.eaten)-1]
		f.eaten = f.eaten[:len(f.eaten)-1]
		f.add(p)
		return true
	}
	p, ok := f.fertileSpot()
	if !ok {
		return false
	}
	f.add(p)
	return true
}

// fertileSpot returns the best of PlacementAttempts random candidates and
// whether it clears the fertility threshold.
func (f *GrassField) fertileSpot() (point, bool) {
	attempts := max(1, f.cfg.PlacementAttempts)
	var best point
	bestFert := -1.0
	for i := 0; i < attempts; i++ {
		p := point{
			x: grassMargin + f.rng.Float64()*max(0, f.width-2*grassMargin),
			y: grassMargin + f.rng.Float64()*max(0, f.height-2*grassMargin),
		}
		if fert := f.Fertility(p.x, p.y); fert > bestFert {
			best, bestFert = p, fert
		}
	}
	return best, bestFert >= f.cfg.FertilityThreshold
}

func (f *GrassField) add(p point) {
	id := f.nextID
	f.nextID++
	f.index[id] = len(f.patches)
	f.patches = append(f.patches, GrassPatch{ID: id, X: p.x, Y: p.y})
	f.grown++
}

// Nearest returns the closest patch to (x, y).
func (f *GrassField) Nearest(x, y float64) (GrassPatch, bool) {
	var best GrassPatch
	bestD := -1.0
	for _, p := range f.patches {
		d := distanceSq(x, y, p.X, p.Y)
		if bestD < 0 || d < bestD {
			best, bestD = p, d
		}
	}
	return best, bestD >= 0
}

// Exists reports whether a patch is still standing.
func (f *GrassField) Exists(id int) bool {
	_, ok := f.index[id]
	return ok
}

// Consume removes a patch. It returns false if the patch was already eaten.
func (f *GrassField) Consume(id int) bool {
	i, ok := f.index[id]
	if !ok {
		return false
	}
	p := f.patches[i]
	last := len(f.patches) - 1
	if i != last {
		f.patches[i] = f.patches[last]
		f.index[f.patches[i].ID] = i
	}
	f.patches = f.patches[:last]
	delete(f.index, id)
	f.eaten = append(f.eaten, point{p.X, p.Y})
	return true
}

// Len returns the number of standing patches.
func (f *GrassField) Len() int { return len(f.patches) }

// Grown returns the number of patches ever created.
func (f *GrassField) Grown() int { return f.grown }

// Patches returns the standing patches. The slice must not be modified.
func (f *GrassField) Patches() []GrassPatch { return f.patches }
