// Package simulation is the murmuration engine: a flock of boids steered by
// separation, alignment and cohesion, disturbed by rotating wave centers and
// repelled by the user pointer. It owns the agents, the spatial index, the
// wave field and the change tracker, and hands each tick's dirty instances to
// a RenderBridge.
package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-murmuration/pkg/geometry"
)

var (
	ErrCorruptState = errors.New("simulation state is not finite")
	ErrTerminated   = errors.New("simulation instance is terminated")
)

// State is the lifecycle phase of a simulation instance.
type State int

const (
	// Warming holds the flock still while the renderer warms up.
	Warming State = iota
	// Running advances the flock every tick.
	Running
	// Terminated is entered after a fatal error, no further step is possible.
	Terminated
)

func (s State) String() string {
	switch s {
	case Warming:
		return "warming"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Option customizes a Simulation at creation.
type Option func(*Simulation)

// WithRand injects the random source, mostly for deterministic tests.
func WithRand(r Rand) Option {
	return func(s *Simulation) { s.rng = r }
}

// WithLogger sets the lifecycle logger.
func WithLogger(l log.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithBridge delivers every frame to b at the end of each step.
func WithBridge(b RenderBridge) Option {
	return func(s *Simulation) { s.bridge = b }
}

// WithPerf records per phase timings.
func WithPerf(p PerfRecorder) Option {
	return func(s *Simulation) { s.perf = p }
}

// Stats is a point in time summary of an instance.
type Stats struct {
	ID            string `json:"id"`
	Tick          uint64 `json:"tick"`
	State         string `json:"state"`
	Agents        int    `json:"agents"`
	ClassA        int    `json:"classA"`
	ClassB        int    `json:"classB"`
	ActiveCenters int    `json:"activeCenters"`
	ActiveWaves   int    `json:"activeWaves"`
	Buckets       int    `json:"buckets"`
}

// Simulation is one instance of the flock. It is not safe for concurrent use:
// a single goroutine (typically the FlockActor) must drive it.
type Simulation struct {
	id  uuid.UUID
	cfg Config

	agents  []*Agent
	index   *SpatialIndex
	waves   *WaveField
	tracker *ChangeTracker

	state    State
	err      error
	tick     uint64
	runTicks uint64
	pointer  Pointer
	aspect   float64
	classA   int
	classB   int

	rng    Rand
	logger log.Logger
	bridge RenderBridge
	perf   PerfRecorder
	opts   []Option

	lastDirty int
}

// New validates cfg and builds a fresh instance: agents are placed at random
// and registered in the index, and the first wave centers are spawned.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:     uuid.New(),
		cfg:    cfg,
		aspect: cfg.AspectRatio,
		logger: log.DiscardLogger,
		opts:   opts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	s.index = NewSpatialIndex(s.cfg.GridCellSize, s.cfg.WorldSize)
	s.waves = NewWaveField(&s.cfg, s.rng)
	s.tracker = NewChangeTracker(&s.cfg)
	s.spawnAgents()
	s.waves.Spawn()

	s.logger.Infof("murmuration %s created: %d agents (A: %d, B: %d), %d wave centers",
		s.id, len(s.agents), s.classA, s.classB, s.waves.Active())
	return s, nil
}

func (s *Simulation) spawnAgents() {
	s.classA, s.classB = s.cfg.ClassCounts()
	s.agents = make([]*Agent, 0, s.cfg.AgentCount)

	size := s.cfg.WorldSize
	for i := range s.cfg.AgentCount {
		class, id := ClassA, i
		if i >= s.classA {
			class, id = ClassB, i-s.classA
		}
		pos := geometry.NewVector(
			(s.rng.Float64()*2-1)*size*0.95,
			(s.rng.Float64()*2-1)*size*0.95,
			(s.rng.Float64()*2-1)*size*0.45,
		)
		a := newAgent(&s.cfg, i, class, id, pos, s.randomVelocity())
		s.index.Insert(a)
		s.agents = append(s.agents, a)
	}
}

func (s *Simulation) randomVelocity() geometry.Vector3D {
	speed := s.cfg.MinSpeed()
	for {
		v := geometry.NewVector(
			(s.rng.Float64()*2-1)*speed,
			(s.rng.Float64()*2-1)*speed,
			(s.rng.Float64()*2-1)*speed*0.5,
		)
		if !v.IsZero() {
			return v
		}
	}
}

// Step advances the instance by one tick and returns the dirty instances.
// While warming no agent moves, only the priming frame is produced.
// A non finite value anywhere in the flock terminates the instance.
func (s *Simulation) Step() (*FrameUpdate, error) {
	if s.state == Terminated {
		return nil, ErrTerminated
	}
	if s.perf != nil {
		s.perf.StartTick()
		defer s.perf.EndTick()
	}

	if s.state == Warming && s.tick >= uint64(s.cfg.WarmupTicks) {
		s.state = Running
		s.logger.Debugf("murmuration %s running after %d warm-up ticks", s.id, s.tick)
	}

	if s.state == Running {
		s.advance()
		if err := s.checkFinite(); err != nil {
			s.terminate(err)
			return nil, err
		}
	}

	s.phase(PhaseTracker)
	frame := &FrameUpdate{
		Tick:    s.tick,
		Updates: make([]InstanceUpdate, 0, s.lastDirty),
	}
	s.tracker.Evaluate(s.agents, s.state == Running, frame)
	frame.State = s.state
	s.lastDirty = len(frame.Updates)
	s.tick++

	if s.bridge != nil {
		s.bridge.Apply(frame)
	}
	return frame, nil
}

// advance runs the two phase update then the wave bookkeeping.
func (s *Simulation) advance() {
	// 1. Forces read a consistent snapshot of every agent
	s.phase(PhaseForces)
	env := Environment{Pointer: s.pointer, Aspect: s.aspect}
	for _, a := range s.agents {
		a.ComputeForces(s.index, s.waves, env)
	}

	// 2. Integration commits the new state
	s.phase(PhaseIntegrate)
	bounds := s.Bounds()
	for _, a := range s.agents {
		a.Integrate(s.index, bounds)
	}

	// 3. Wave centers and random seeding
	s.phase(PhaseWaves)
	if s.runTicks%uint64(max(s.cfg.WaveUpdateInterval, 1)) == 0 {
		active := s.waves.Update()
		s.waves.MaybeSpawn(active)
		s.seedWave()
	}
	s.runTicks++
}

func (s *Simulation) phase(name string) {
	if s.perf != nil {
		s.perf.StartPhase(name)
	}
}

// seedWave lights up a random agent while few agents carry a strong wave.
func (s *Simulation) seedWave() {
	if len(s.agents) == 0 || s.ActiveWaves() >= s.cfg.MaxActiveWaves {
		return
	}
	if s.rng.Float64() >= s.cfg.WaveSeedChance {
		return
	}
	a := s.agents[s.rng.IntN(len(s.agents))]
	a.Wave = 1.0
	a.nextWave = 1.0
	a.WaveDirection = geometry.NewVector(
		s.rng.Float64()*2-1,
		s.rng.Float64()*2-1,
		(s.rng.Float64()*2-1)*0.5,
	).Normalize()
}

func (s *Simulation) checkFinite() error {
	for _, a := range s.agents {
		if !a.isFinite() {
			return fmt.Errorf("%w: agent %d at %s moving %s", ErrCorruptState, a.Index, a.Position, a.Velocity)
		}
	}
	return nil
}

func (s *Simulation) terminate(err error) {
	s.state = Terminated
	s.err = err
	s.logger.Errorf("murmuration %s terminated at tick %d: %v", s.id, s.tick, err)
}

// SetPointer updates the pointer used by the next tick.
func (s *Simulation) SetPointer(p Pointer) {
	s.pointer = p
}

// SetAspect updates the viewport aspect ratio. Non positive or non finite values are ignored.
func (s *Simulation) SetAspect(aspect float64) {
	if aspect <= 0 || math.IsInf(aspect, 0) || math.IsNaN(aspect) {
		return
	}
	s.aspect = aspect
	s.waves.SetAspect(aspect)
}

// Reconfigure builds a new instance from the current config with settings applied.
// The receiver is left untouched, on error the caller keeps using it.
func (s *Simulation) Reconfigure(settings Settings) (*Simulation, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	cfg := s.cfg.WithSettings(settings)
	cfg.AspectRatio = s.aspect
	next, err := New(cfg, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to reconfigure murmuration %s: %w", s.id, err)
	}
	next.pointer = s.pointer
	return next, nil
}

// Bounds are the wrap limits for the current aspect ratio.
func (s *Simulation) Bounds() behavior.Bounds {
	return behavior.Bounds{
		X: s.cfg.WorldSize * s.aspect,
		Y: s.cfg.WorldSize,
		Z: s.cfg.WorldSize / 2,
	}
}

// ActiveWaves counts the agents carrying a wave above ActiveWaveThreshold.
func (s *Simulation) ActiveWaves() int {
	n := 0
	for _, a := range s.agents {
		if a.Wave > s.cfg.ActiveWaveThreshold {
			n++
		}
	}
	return n
}

// Stats summarizes the instance.
func (s *Simulation) Stats() Stats {
	return Stats{
		ID:            s.id.String(),
		Tick:          s.tick,
		State:         s.state.String(),
		Agents:        len(s.agents),
		ClassA:        s.classA,
		ClassB:        s.classB,
		ActiveCenters: s.waves.Active(),
		ActiveWaves:   s.ActiveWaves(),
		Buckets:       s.index.Buckets(),
	}
}

func (s *Simulation) ID() uuid.UUID           { return s.id }
func (s *Simulation) Config() Config          { return s.cfg }
func (s *Simulation) State() State            { return s.state }
func (s *Simulation) Err() error              { return s.err }
func (s *Simulation) Tick() uint64            { return s.tick }
func (s *Simulation) Aspect() float64         { return s.aspect }
func (s *Simulation) Pointer() Pointer        { return s.pointer }
func (s *Simulation) Agents() []*Agent        { return s.agents }
func (s *Simulation) Index() *SpatialIndex    { return s.index }
func (s *Simulation) Waves() *WaveField       { return s.waves }
func (s *Simulation) Tracker() *ChangeTracker { return s.tracker }
