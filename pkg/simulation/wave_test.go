package simulation

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/geometry"
)

// constRand always returns the same draw.
type constRand struct {
	f float64
	n int
}

func (r constRand) Float64() float64 { return r.f }
func (r constRand) IntN(n int) int   { return min(r.n, n-1) }

func TestCenterInfluence(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"AtCenter", 0, 0},
		{"HalfRadius", 20, 0.8},
		{"QuarterRadius", 10, math.Sin(math.Pi/4) * 0.8},
		{"OnRim", 40, 0},
		{"Outside", 55, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CenterInfluence(tt.distance, 40, 0.8)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CenterInfluence(%v, 40, 0.8) = %v; want %v", tt.distance, got, tt.want)
			}
		})
	}
}

func TestWaveField_InfluenceAt(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWaveField(cfg, constRand{f: 0.5})

	t.Run("Decay", func(t *testing.T) {
		a := &Agent{Wave: 0.5}
		got := w.InfluenceAt(a, []*Agent{a})
		if math.Abs(got.Value-0.49) > 1e-12 {
			t.Errorf("Value = %v; want 0.49", got.Value)
		}
		if got.Dominant {
			t.Errorf("No center exists, Dominant should be false")
		}
	})

	t.Run("Propagation", func(t *testing.T) {
		a := &Agent{Wave: 0}
		n := &Agent{Wave: 1}
		got := w.InfluenceAt(a, []*Agent{a, n})
		if math.Abs(got.Value-0.85) > 1e-12 {
			t.Errorf("Value = %v; want 0.85", got.Value)
		}
	})

	t.Run("NeighborsAreReadOnly", func(t *testing.T) {
		a := &Agent{Wave: 0.1}
		n := &Agent{Wave: 0.9}
		w.InfluenceAt(a, []*Agent{a, n})
		if n.Wave != 0.9 || a.Wave != 0.1 {
			t.Errorf("InfluenceAt mutated wave values: self %v neighbor %v", a.Wave, n.Wave)
		}
	})

	t.Run("DominantCenter", func(t *testing.T) {
		field := NewWaveField(cfg, constRand{f: 0.5})
		field.centers = append(field.centers, WaveCenter{
			Position:  geometry.NewVector(10, 0, 0),
			Radius:    40,
			Strength:  1,
			Clockwise: true,
			Active:    true,
		})
		a := &Agent{Position: geometry.Zero}
		got := field.InfluenceAt(a, nil)
		if math.Abs(got.Value-math.Sin(math.Pi/4)) > 1e-9 {
			t.Errorf("Value = %v; want %v", got.Value, math.Sin(math.Pi/4))
		}
		if !got.Dominant || got.TurnSign != 1 {
			t.Fatalf("Expected a clockwise dominant center, got %+v", got)
		}
		// To-center is +X, rotated a quarter turn it points to +Y
		if want := geometry.NewVector(0, 1, 0); !got.Direction.Eq(want) {
			t.Errorf("Direction = %v; want %v", got.Direction, want)
		}

		field.centers[0].Clockwise = false
		got = field.InfluenceAt(a, nil)
		if want := geometry.NewVector(0, -1, 0); got.TurnSign != -1 || !got.Direction.Eq(want) {
			t.Errorf("Counter clockwise: sign %v direction %v; want -1 %v", got.TurnSign, got.Direction, want)
		}
	})

	t.Run("WeakCenterDoesNotDominate", func(t *testing.T) {
		field := NewWaveField(cfg, constRand{f: 0.5})
		field.centers = append(field.centers, WaveCenter{
			Position: geometry.NewVector(1, 0, 0),
			Radius:   40,
			Strength: 1,
			Active:   true,
		})
		got := field.InfluenceAt(&Agent{}, nil)
		if got.Dominant {
			t.Errorf("Influence %v below 0.1 should not dominate", got.Value)
		}
	})
}

func TestWaveField_Update(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWaveField(cfg, rand.New(rand.NewPCG(3, 4)))
	w.centers = []WaveCenter{
		{Position: geometry.NewVector(79.9, 0, 31.9), Radius: 59.9, Strength: 0.99, Active: true},
		{Position: geometry.Zero, Radius: 30, Strength: 0.5, Age: cfg.WaveLifetime, Active: true},
		{Position: geometry.Zero, Radius: 30, Strength: 0.5},
	}

	if got := w.Update(); got != 1 {
		t.Fatalf("Update() = %d active; want 1", got)
	}
	if w.centers[1].Active {
		t.Errorf("Center past its lifetime should be inactive")
	}
	if w.centers[2].Age != 0 {
		t.Errorf("Inactive center should not age")
	}

	c := w.centers[0]
	if c.Age != 1 {
		t.Errorf("Age = %d; want 1", c.Age)
	}
	limit := cfg.WorldSize * 0.8
	if math.Abs(c.Position.X) > limit || math.Abs(c.Position.Y) > limit || math.Abs(c.Position.Z) > limit*0.4 {
		t.Errorf("Center drifted out of bounds: %v", c.Position)
	}
	if c.Radius < 20 || c.Radius > 60 || c.Strength < 0.4 || c.Strength > 1 {
		t.Errorf("Radius %v or strength %v out of range", c.Radius, c.Strength)
	}
}

func TestWaveField_SpawnCapAndRecycling(t *testing.T) {
	cfg := DefaultConfig()
	// Always fire the trigger and always ask for two centers
	w := NewWaveField(cfg, constRand{f: 0, n: 1})

	for i := 0; i < 10; i++ {
		w.MaybeSpawn(w.Active())
		if w.Active() > cfg.MaxWaveCenters {
			t.Fatalf("Active centers %d exceed cap %d", w.Active(), cfg.MaxWaveCenters)
		}
	}
	if w.Active() != cfg.MaxWaveCenters {
		t.Errorf("Active = %d; want %d", w.Active(), cfg.MaxWaveCenters)
	}
	if got := w.Spawn(); got != 0 {
		t.Errorf("Spawn at capacity created %d centers", got)
	}

	w.centers[2].Active = false
	if got := w.Spawn(); got != 1 {
		t.Errorf("Spawn with one free slot created %d centers; want 1", got)
	}
	if len(w.Centers()) != cfg.MaxWaveCenters {
		t.Errorf("Pool grew to %d slots; want %d", len(w.Centers()), cfg.MaxWaveCenters)
	}
}

func TestWaveField_MaybeSpawnTrigger(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWaveField(cfg, constRand{f: 0.9})
	if got := w.MaybeSpawn(0); got != 0 {
		t.Errorf("MaybeSpawn with a missed trigger created %d centers", got)
	}
}

func TestWaveField_NewCenterRanges(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWaveField(cfg, rand.New(rand.NewPCG(5, 6)))
	w.SetAspect(2)
	for i := 0; i < 200; i++ {
		c := w.newCenter()
		if math.Abs(c.Position.X) > cfg.WorldSize*2*0.7 || math.Abs(c.Position.Y) > cfg.WorldSize*0.7 ||
			math.Abs(c.Position.Z) > cfg.WorldSize*0.3 {
			t.Fatalf("Center position %v out of range", c.Position)
		}
		if c.Radius < 30 || c.Radius > 70 || c.Strength < 0.5 || c.Strength > 1 {
			t.Fatalf("Center radius %v strength %v out of range", c.Radius, c.Strength)
		}
	}
}
