package simulation

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/geometry"
)

// Class partitions the population into two visual groups.
type Class int

const (
	ClassA Class = iota
	ClassB
)

func (c Class) String() string {
	switch c {
	case ClassA:
		return "A"
	case ClassB:
		return "B"
	default:
		return "unknown"
	}
}

// Pointer is the user pointer projected into world coordinates.
// Only X and Y are meaningful, the depth of each agent is used for Z.
type Pointer struct {
	Position geometry.Vector3D
	Active   bool
}

// Transform is everything the renderer needs to place one agent instance.
type Transform struct {
	Position geometry.Vector3D
	Yaw      float64
	Pitch    float64
	Scale    float64
	Opacity  float64
}

// InstanceUpdate carries the dirty attributes of one agent instance.
// A nil field means the attribute did not change this tick.
type InstanceUpdate struct {
	Class     Class
	ID        int
	Transform *Transform
	Color     *colorful.Color
}

// FrameUpdate is the batch of instance updates produced by one tick.
type FrameUpdate struct {
	Tick       uint64
	State      State
	ColorPass  bool
	Transforms int
	Colors     int
	Updates    []InstanceUpdate
}

// Len is the number of dirty instances in the frame.
func (f *FrameUpdate) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Updates)
}

// RenderBridge receives the frame updates of a simulation.
// Implementations must be safe to call from the simulation goroutine while
// the renderer reads them from its own.
type RenderBridge interface {
	Apply(frame *FrameUpdate)
}

// RenderBridgeFunc adapts a function to the RenderBridge interface.
type RenderBridgeFunc func(frame *FrameUpdate)

func (f RenderBridgeFunc) Apply(frame *FrameUpdate) { f(frame) }

// InputSource is polled once per tick for the pointer and the viewport aspect ratio.
type InputSource interface {
	Pointer() Pointer
	Aspect() float64
}

// Rand is the random source of a simulation. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// PerfRecorder receives per phase timings of each tick.
type PerfRecorder interface {
	StartTick()
	StartPhase(phase string)
	EndTick()
}

const (
	PhaseForces    = "forces"
	PhaseIntegrate = "integrate"
	PhaseWaves     = "waves"
	PhaseTracker   = "tracker"
)

// Phases lists the tick phases in execution order.
var Phases = []string{PhaseForces, PhaseIntegrate, PhaseWaves, PhaseTracker}
