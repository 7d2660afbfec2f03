package simulation

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	// BaseColorA is the resting color of class A agents.
	BaseColorA = colorful.Color{R: 1, G: 1, B: 1}
	// BaseColorB is the resting color of class B agents.
	BaseColorB = colorful.Color{R: 1, G: 0.55, B: 0}
)

// BaseColor returns the resting color of a class.
func BaseColor(c Class) colorful.Color {
	if c == ClassB {
		return BaseColorB
	}
	return BaseColorA
}

// WaveColor tints the base color of a class by the wave value.
// Class A shifts towards blue, class B towards a warm yellow.
func WaveColor(c Class, wave float64) colorful.Color {
	i := 0.7 * wave
	if c == ClassB {
		return colorful.Color{R: 1 + 0.3*i, G: 0.55 + 0.2*i, B: 0.2 * i}.Clamped()
	}
	return colorful.Color{R: 1 - 0.5*i, G: 1 - 0.3*i, B: 1}.Clamped()
}

// ChangeTracker decides which agents must be pushed to the renderer.
// Transforms are checked every running tick, colors only every FrameSkip ticks.
// The very first evaluation emits every agent so the renderer starts complete.
type ChangeTracker struct {
	updateThreshold float64
	colorThreshold  float64
	visibility      float64
	frameSkip       int

	counter int
	primed  bool
}

// NewChangeTracker creates a tracker for the given thresholds.
func NewChangeTracker(cfg *Config) *ChangeTracker {
	return &ChangeTracker{
		updateThreshold: cfg.UpdateThreshold,
		colorThreshold:  cfg.ColorUpdateThreshold,
		visibility:      cfg.WaveVisibility,
		frameSkip:       max(cfg.FrameSkip, 1),
	}
}

// Evaluate appends the dirty agents of this tick to frame and commits the
// emitted values as the new baseline.
func (t *ChangeTracker) Evaluate(agents []*Agent, running bool, frame *FrameUpdate) {
	if !t.primed {
		t.prime(agents, frame)
		return
	}
	if !running {
		return
	}

	t.counter = (t.counter + 1) % t.frameSkip
	frame.ColorPass = t.counter == 0

	for _, a := range agents {
		u := InstanceUpdate{Class: a.Class, ID: a.InstanceID}
		if t.TransformDirty(a) {
			tr := t.commitTransform(a)
			u.Transform = &tr
			frame.Transforms++
		}
		if frame.ColorPass {
			if c, ok := t.colorChange(a); ok {
				u.Color = &c
				frame.Colors++
			}
		}
		if u.Transform != nil || u.Color != nil {
			frame.Updates = append(frame.Updates, u)
		}
	}
}

func (t *ChangeTracker) prime(agents []*Agent, frame *FrameUpdate) {
	for _, a := range agents {
		tr := t.commitTransform(a)
		c := BaseColor(a.Class)
		if a.Wave > t.visibility {
			c = WaveColor(a.Class, a.Wave)
			a.tinted = true
		}
		a.lastColorWave = a.Wave
		frame.Updates = append(frame.Updates, InstanceUpdate{
			Class:     a.Class,
			ID:        a.InstanceID,
			Transform: &tr,
			Color:     &c,
		})
	}
	frame.Transforms = len(agents)
	frame.Colors = len(agents)
	frame.ColorPass = true
	t.primed = true
}

// TransformDirty reports whether the agent moved more than UpdateThreshold or
// changed scale by more than ScaleThreshold since its last commit.
func (t *ChangeTracker) TransformDirty(a *Agent) bool {
	if a.Position.DistanceTo(a.lastPosition) > t.updateThreshold {
		return true
	}
	return math.Abs(a.Scale-a.lastScale) > ScaleThreshold
}

func (t *ChangeTracker) commitTransform(a *Agent) Transform {
	a.lastPosition = a.Position
	a.lastScale = a.Scale
	return a.Transform()
}

// colorChange returns the new color of a when it must be repainted: a visible
// wave drifted past the color threshold, or a tinted agent lost its wave.
func (t *ChangeTracker) colorChange(a *Agent) (colorful.Color, bool) {
	if a.Wave > t.visibility {
		if math.Abs(a.Wave-a.lastColorWave) <= t.colorThreshold {
			return colorful.Color{}, false
		}
		a.lastColorWave = a.Wave
		a.tinted = true
		return WaveColor(a.Class, a.Wave), true
	}
	if !a.tinted {
		return colorful.Color{}, false
	}
	a.lastColorWave = a.Wave
	a.tinted = false
	return BaseColor(a.Class), true
}
