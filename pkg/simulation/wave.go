package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/geometry"
)

// WaveCenter is a transient source of rotational disturbance.
type WaveCenter struct {
	Position  geometry.Vector3D
	Radius    float64
	Strength  float64
	Clockwise bool
	Age       int
	Active    bool
}

// Influence is the result of evaluating the wave field for one agent.
type Influence struct {
	// Value is the agent wave value for the next tick, in [0, 1].
	Value float64
	// Dominant is set when a center influenced the agent above 0.1,
	// in which case Direction and TurnSign come from that center.
	Dominant  bool
	Direction geometry.Vector3D
	TurnSign  float64
}

// WaveField owns the pool of wave centers. Inactive slots are recycled so the
// pool never grows past MaxWaveCenters.
type WaveField struct {
	cfg     *Config
	rng     Rand
	aspect  float64
	centers []WaveCenter
}

// NewWaveField creates an empty field.
func NewWaveField(cfg *Config, rng Rand) *WaveField {
	return &WaveField{
		cfg:     cfg,
		rng:     rng,
		aspect:  cfg.AspectRatio,
		centers: make([]WaveCenter, 0, cfg.MaxWaveCenters),
	}
}

// SetAspect changes the horizontal extent used for new centers.
func (w *WaveField) SetAspect(aspect float64) {
	w.aspect = aspect
}

// Centers returns the pool, active and inactive slots alike.
func (w *WaveField) Centers() []WaveCenter {
	return w.centers
}

// Active counts the active centers.
func (w *WaveField) Active() int {
	n := 0
	for i := range w.centers {
		if w.centers[i].Active {
			n++
		}
	}
	return n
}

func (w *WaveField) spread(amplitude float64) float64 {
	return (w.rng.Float64()*2 - 1) * amplitude
}

// Update ages, drifts and jitters every active center, deactivating those
// past their lifetime. It returns the number of centers still active.
func (w *WaveField) Update() int {
	limit := w.cfg.WorldSize * 0.8
	active := 0
	for i := range w.centers {
		c := &w.centers[i]
		if !c.Active {
			continue
		}
		c.Age++
		if c.Age > w.cfg.WaveLifetime {
			c.Active = false
			continue
		}
		active++

		c.Position = c.Position.Add(geometry.NewVector(w.spread(0.5), w.spread(0.5), w.spread(0.2)))
		c.Position.X = geometry.Clamp(c.Position.X, -limit, limit)
		c.Position.Y = geometry.Clamp(c.Position.Y, -limit, limit)
		c.Position.Z = geometry.Clamp(c.Position.Z, -limit*0.4, limit*0.4)

		c.Radius = geometry.Clamp(c.Radius*(0.99+w.rng.Float64()*0.02), 20, 60)
		c.Strength = geometry.Clamp(c.Strength*(0.99+w.rng.Float64()*0.02), 0.4, 1.0)
	}
	return active
}

// MaybeSpawn creates one or two centers with probability WaveSpawnChance
// while fewer than MaxWaveCenters are active. It returns how many were created.
func (w *WaveField) MaybeSpawn(active int) int {
	if active >= w.cfg.MaxWaveCenters {
		return 0
	}
	if w.rng.Float64() >= w.cfg.WaveSpawnChance {
		return 0
	}
	return w.Spawn()
}

// Spawn unconditionally creates one or two centers, capped by the free room
// in the pool. It returns how many were created.
func (w *WaveField) Spawn() int {
	available := w.cfg.MaxWaveCenters - w.Active()
	if available <= 0 {
		return 0
	}
	n := min(available, 1+w.rng.IntN(2))
	for range n {
		c := w.newCenter()
		if slot := w.freeSlot(); slot >= 0 {
			w.centers[slot] = c
		} else {
			w.centers = append(w.centers, c)
		}
	}
	return n
}

func (w *WaveField) freeSlot() int {
	for i := range w.centers {
		if !w.centers[i].Active {
			return i
		}
	}
	return -1
}

func (w *WaveField) newCenter() WaveCenter {
	size := w.cfg.WorldSize
	return WaveCenter{
		Position: geometry.NewVector(
			w.spread(size*w.aspect*0.7),
			w.spread(size*0.7),
			w.spread(size*0.3),
		),
		Radius:    30 + w.rng.Float64()*40,
		Strength:  0.5 + w.rng.Float64()*0.5,
		Clockwise: w.rng.Float64() > 0.5,
		Active:    true,
	}
}

// CenterInfluence is the sinusoidal falloff of a center: zero at the center
// and at the rim, strength at half the radius.
func CenterInfluence(distance, radius, strength float64) float64 {
	if radius <= 0 || distance >= radius {
		return 0
	}
	return math.Sin(math.Pi*distance/radius) * strength
}

// InfluenceAt computes the next wave value of a from its own value, the values
// of its neighbors and the active centers. Neighbors are read, never written.
func (w *WaveField) InfluenceAt(a *Agent, neighbors []*Agent) Influence {
	maxNeighbor := 0.0
	for _, other := range neighbors {
		if other == a {
			continue
		}
		maxNeighbor = max(maxNeighbor, other.Wave)
	}

	var value float64
	if maxNeighbor > a.Wave {
		value = max(a.Wave, maxNeighbor*w.cfg.WavePropagation)
	} else {
		value = a.Wave * w.cfg.WaveDecay
	}

	var dominant *WaveCenter
	best := 0.0
	for i := range w.centers {
		c := &w.centers[i]
		if !c.Active {
			continue
		}
		influence := CenterInfluence(a.Position.DistanceTo(c.Position), c.Radius, c.Strength)
		value = max(value, influence)
		if influence > 0.1 && influence > best {
			best = influence
			dominant = c
		}
	}

	result := Influence{Value: geometry.Clamp(value, 0, 1)}
	if dominant == nil {
		return result
	}

	sign := -1.0
	if dominant.Clockwise {
		sign = 1.0
	}
	toCenter := dominant.Position.Sub(a.Position).Normalize()
	result.Dominant = true
	result.TurnSign = sign
	result.Direction = geometry.NewVector(
		-toCenter.Y*sign,
		toCenter.X*sign,
		toCenter.Z*0.1*sign,
	).Normalize()
	return result
}
