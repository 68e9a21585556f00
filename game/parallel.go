package game

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/savanna/components"
	"github.com/pthm-cable/savanna/config"
	"github.com/pthm-cable/savanna/systems"
)

// parallelThreshold is the minimum agent count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// vitalsSnapshot is the per-agent state the vitals phase works on.
type vitalsSnapshot struct {
	Entity ecs.Entity
	Pos    components.Position
	Motion components.Motion
	Vitals components.Vitals
	Decay  config.DecayConfig
	Adult  float64
	Growth float64
}

// vitalsIntent is the computed outcome applied after the parallel phase.
type vitalsIntent struct {
	Pos    components.Position
	Motion components.Motion
	Vitals components.Vitals
	Dead   bool
	Cause  components.DeathCause
}

// workChunk represents a range of agents for a worker to process.
type workChunk struct {
	start, end int
	dt         float64
}

// parallelState holds resources for the parallel vitals phase.
type parallelState struct {
	snapshots  []vitalsSnapshot
	intents    []vitalsIntent
	numWorkers int

	// Worker pool channels
	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState(workers int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &parallelState{
		numWorkers: workers,
		snapshots:  make([]vitalsSnapshot, 0, 256),
		intents:    make([]vitalsIntent, 0, 256),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *parallelState) worker(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.computeVitalsChunk(chunk.start, chunk.end, chunk.dt)
			p.doneChan <- struct{}{}
		}
	}
}

// updateVitals moves every agent along its path, ages it and applies
// decay, then marks the agents whose health or lifespan ran out.
func (g *Game) updateVitals(dt float64) {
	p := g.parallel

	// Phase A: build snapshots (single-threaded)
	p.snapshots = p.snapshots[:0]
	query := g.agentFilter.Query()
	for query.Next() {
		pos, mot, v, org, _, _ := query.Get()
		if org.Dead {
			continue
		}
		sp := g.cfg.SpeciesFor(org.Species)
		p.snapshots = append(p.snapshots, vitalsSnapshot{
			Entity: query.Entity(),
			Pos:    *pos,
			Motion: *mot,
			Vitals: *v,
			Decay:  sp.Decay,
			Adult:  sp.AdultAge,
			Growth: sp.GrowthRate,
		})
	}

	n := len(p.snapshots)
	if n == 0 {
		return
	}
	if cap(p.intents) < n {
		p.intents = make([]vitalsIntent, n)
	}
	p.intents = p.intents[:n]

	// Phase B: compute
	if n < parallelThreshold || p.numWorkers == 1 {
		g.computeVitalsChunk(0, n, dt)
	} else {
		g.computeVitalsParallel(n, dt)
	}

	// Phase C: apply (single-threaded, preserves determinism)
	g.applyVitals()
}

// computeVitalsParallel dispatches chunks to the worker pool.
func (g *Game) computeVitalsParallel(n int, dt float64) {
	p := g.parallel
	if !p.running {
		p.startWorkers(g)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, dt: dt}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// computeVitalsChunk processes snapshots [i0, i1). It touches only its own
// slots and the read-only mover.
func (g *Game) computeVitalsChunk(i0, i1 int, dt float64) {
	p := g.parallel
	for i := i0; i < i1; i++ {
		snap := &p.snapshots[i]
		out := &p.intents[i]

		out.Pos = snap.Pos
		out.Motion = snap.Motion
		out.Vitals = snap.Vitals

		moved := g.mover.Step(&out.Pos, &out.Motion, out.Vitals.Speed, dt)
		systems.UpdateGrowth(&out.Vitals, snap.Adult, snap.Growth, dt)
		systems.UpdateDecay(&out.Vitals, snap.Decay, moved, dt)
		out.Dead, out.Cause = systems.IsDead(&out.Vitals)
	}
}

// applyVitals writes computed results back to the components.
func (g *Game) applyVitals() {
	p := g.parallel
	for i := range p.snapshots {
		e := p.snapshots[i].Entity
		out := &p.intents[i]

		pos, mot, v, org, _, _ := g.agentMapper.Get(e)
		*pos = out.Pos
		*mot = out.Motion
		*v = out.Vitals

		g.lifetimes.UpdateEnergy(org.ID, v.Energy)
		if out.Dead {
			g.kill(e, out.Cause)
		}
	}
}
