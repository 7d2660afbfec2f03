package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-murmuration/pkg/geometry"
)

// Forces is the per tick breakdown of the steering forces of an agent,
// weights already applied. It is kept for inspection and tests.
type Forces struct {
	Separation geometry.Vector3D
	Alignment  geometry.Vector3D
	Cohesion   geometry.Vector3D
	Pointer    geometry.Vector3D
	Wave       geometry.Vector3D
}

// Sum adds every component.
func (f Forces) Sum() geometry.Vector3D {
	return f.Separation.Add(f.Alignment).Add(f.Cohesion).Add(f.Pointer).Add(f.Wave)
}

// Environment is the per tick input shared by all agents.
type Environment struct {
	Pointer Pointer
	Aspect  float64
}

// Agent is one bird of the murmuration.
type Agent struct {
	Index      int
	Class      Class
	InstanceID int

	Position     geometry.Vector3D
	Velocity     geometry.Vector3D
	Acceleration geometry.Vector3D
	Forces       Forces

	Wave          float64
	WaveDirection geometry.Vector3D
	TurnSign      float64

	Scale   float64
	Opacity float64
	Yaw     float64
	Pitch   float64

	cfg       *Config
	cell      CellKey
	nextWave  float64
	neighbors []*Agent

	// last values committed to the renderer
	lastPosition  geometry.Vector3D
	lastScale     float64
	lastColorWave float64
	tinted        bool
}

func newAgent(cfg *Config, index int, class Class, instanceID int, position, velocity geometry.Vector3D) *Agent {
	a := &Agent{
		Index:      index,
		Class:      class,
		InstanceID: instanceID,
		Position:   position,
		Velocity:   velocity,
		cfg:        cfg,
	}
	a.updateAppearance()
	a.updateHeading()
	return a
}

// Neighbors returns the result of the last perception query, self included.
func (a *Agent) Neighbors() []*Agent {
	return a.neighbors
}

// Transform returns the render attributes of the agent.
func (a *Agent) Transform() Transform {
	return Transform{
		Position: a.Position,
		Yaw:      a.Yaw,
		Pitch:    a.Pitch,
		Scale:    a.Scale,
		Opacity:  a.Opacity,
	}
}

func (a *Agent) limits() behavior.Limits {
	return behavior.Limits{
		MaxSpeed: a.cfg.MaxSpeed(),
		MinSpeed: a.cfg.MinSpeed(),
		MaxForce: a.cfg.MaxForce,
	}
}

// ComputeForces gathers the neighbors of the agent and accumulates the
// weighted steering forces into Acceleration. It only reads the state of
// other agents, the new wave value is staged until Integrate.
func (a *Agent) ComputeForces(index *SpatialIndex, waves *WaveField, env Environment) {
	a.neighbors = index.QueryRadiusInto(a.neighbors[:0], a.Position, a.cfg.PerceptionRadius)
	l := a.limits()

	a.Forces = Forces{
		Separation: a.separate(l).Mul(a.cfg.SeparationWeight),
		Alignment:  a.align(l).Mul(a.cfg.AlignmentWeight),
		Cohesion:   a.cohere(l).Mul(a.cfg.CohesionWeight),
		Pointer:    a.avoidPointer(env),
		Wave:       a.followWave(waves),
	}
	a.Acceleration = a.Acceleration.Add(a.Forces.Sum())
}

// separate steers away from neighbors closer than SeparationDistance,
// each weighted by the inverse of its distance.
func (a *Agent) separate(l behavior.Limits) geometry.Vector3D {
	sum := geometry.Zero
	count := 0
	for _, other := range a.neighbors {
		if other == a {
			continue
		}
		d := a.Position.DistanceTo(other.Position)
		if d >= a.cfg.SeparationDistance {
			continue
		}
		away := a.Position.Sub(other.Position).Normalize()
		sum = sum.Add(away.Mul(1 / math.Max(d, 0.1)))
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	return behavior.Steer(sum.Mul(1/float64(count)), a.Velocity, l.MaxSpeed, l.MaxForce*1.5)
}

// align steers towards the average heading of the neighbors.
func (a *Agent) align(l behavior.Limits) geometry.Vector3D {
	sum := geometry.Zero
	count := 0
	for _, other := range a.neighbors {
		if other == a {
			continue
		}
		sum = sum.Add(other.Velocity)
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	return behavior.Steer(sum.Mul(1/float64(count)), a.Velocity, l.MaxSpeed, l.MaxForce)
}

// cohere steers towards the center of mass of the neighbors.
func (a *Agent) cohere(l behavior.Limits) geometry.Vector3D {
	sum := geometry.Zero
	count := 0
	for _, other := range a.neighbors {
		if other == a {
			continue
		}
		sum = sum.Add(other.Position)
		count++
	}
	if count == 0 {
		return geometry.Zero
	}
	return behavior.Seek(sum.Mul(1/float64(count)), a.Position, a.Velocity, l)
}

// avoidPointer pushes the agent away from the pointer, compared at the agent depth.
// On portrait viewports the radius widens so the pointer keeps the same
// apparent size on screen.
func (a *Agent) avoidPointer(env Environment) geometry.Vector3D {
	if !env.Pointer.Active {
		return geometry.Zero
	}
	target := geometry.NewVector(env.Pointer.Position.X, env.Pointer.Position.Y, a.Position.Z)
	radius := a.cfg.PointerRadius
	if env.Aspect > 0 && env.Aspect < 1 {
		radius /= env.Aspect
	}
	return behavior.Repel(a.Position, target, radius, a.cfg.AvoidanceStrength*a.cfg.MaxForce*2)
}

// followWave stages the next wave value and returns the tangential force
// around the dominant center, zero while the wave is not visible.
func (a *Agent) followWave(waves *WaveField) geometry.Vector3D {
	influence := waves.InfluenceAt(a, a.neighbors)
	a.nextWave = influence.Value
	if influence.Dominant {
		a.TurnSign = influence.TurnSign
		a.WaveDirection = influence.Direction
	}
	if a.nextWave < a.cfg.WaveVisibility || a.WaveDirection.IsZero() {
		return geometry.Zero
	}
	return a.WaveDirection.Mul(a.nextWave * a.cfg.WaveInfluence * a.cfg.MaxForce)
}

// Integrate applies the accumulated acceleration: velocity is renormalized into
// [MinSpeed, MaxSpeed], the position advanced and wrapped, and the agent moved
// to its new bucket when its cell changed. Acceleration is reset afterwards.
func (a *Agent) Integrate(index *SpatialIndex, bounds behavior.Bounds) {
	a.Wave = a.nextWave

	l := a.limits()
	previous := a.Velocity
	a.Velocity = behavior.LimitSpeed(a.Velocity.Add(a.Acceleration), previous, l.MinSpeed, l.MaxSpeed)
	a.Position = behavior.Wrap(a.Position.Add(a.Velocity), bounds)

	if key := index.CellKeyOf(a.Position); key != a.cell {
		index.Move(a, a.cell, key)
	}
	a.Acceleration = geometry.Zero

	a.updateAppearance()
	a.updateHeading()
}

// updateAppearance derives the perspective scale and the opacity from the depth.
func (a *Agent) updateAppearance() {
	a.Scale = geometry.Clamp(80/(a.cfg.CameraZ-a.Position.Z), 0.6, 1.4)
	a.Opacity = geometry.Clamp(0.4+(a.Scale-0.6)*0.6, 0.4, 1.0)
}

// updateHeading keeps the previous orientation when the agent barely moves.
func (a *Agent) updateHeading() {
	if a.Velocity.Len() <= 0.01 {
		return
	}
	a.Yaw = a.Velocity.Yaw()
	a.Pitch = geometry.Clamp(a.Velocity.Z*0.5, -0.5, 0.5)
}

func (a *Agent) isFinite() bool {
	return a.Position.IsFinite() && a.Velocity.IsFinite() && !math.IsNaN(a.Wave)
}
