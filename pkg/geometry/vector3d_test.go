package geometry

import (
	"math"
	"testing"
)

// floatEquals is a helper for testing scalar float values with epsilon.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func TestNewVector(t *testing.T) {
	v := NewVector(1, 2, 3)
	if v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Errorf("NewVector(1, 2, 3) = %v; want (1, 2, 3)", v)
	}
}

func TestVector_String(t *testing.T) {
	v := Vector3D{1.234, 5.678, -0.004}
	want := "(1.23, 5.68, -0.00)"
	if got := v.String(); got != want {
		t.Errorf("Vector3D.String() = %q; want %q", got, want)
	}
}

func TestVector_Arithmetic(t *testing.T) {
	v1 := Vector3D{1, 2, 3}
	v2 := Vector3D{3, 4, 5}

	t.Run("Add", func(t *testing.T) {
		want := Vector3D{4, 6, 8}
		if got := v1.Add(v2); !got.Eq(want) {
			t.Errorf("%v.Add(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Sub", func(t *testing.T) {
		want := Vector3D{-2, -2, -2}
		if got := v1.Sub(v2); !got.Eq(want) {
			t.Errorf("%v.Sub(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Mul", func(t *testing.T) {
		want := Vector3D{2, 4, 6}
		if got := v1.Mul(2); !got.Eq(want) {
			t.Errorf("%v.Mul(2) = %v; want %v", v1, got, want)
		}
	})

	t.Run("Div", func(t *testing.T) {
		want := Vector3D{0.5, 1, 1.5}
		got, err := v1.Div(2)
		if err != nil {
			t.Errorf("%v.Div(2) returned unexpected error: %v", v1, err)
		}
		if !got.Eq(want) {
			t.Errorf("%v.Div(2) = %v; want %v", v1, got, want)
		}
	})

	t.Run("DivByZero", func(t *testing.T) {
		got, err := v1.Div(0)
		if err == nil {
			t.Errorf("%v.Div(0) should have returned an error, result=%v", v1, got)
		}
		if !math.IsInf(got.X, 0) || !math.IsInf(got.Y, 0) || !math.IsInf(got.Z, 0) {
			t.Errorf("Div(0) should result in Inf coordinates, got %v", got)
		}
	})
}

func TestVector_Products(t *testing.T) {
	x := Vector3D{1, 0, 0}
	y := Vector3D{0, 1, 0}

	t.Run("Dot", func(t *testing.T) {
		if got := x.Dot(y); got != 0 {
			t.Errorf("Dot orthogonal = %v; want 0", got)
		}
		if got := x.Dot(Vector3D{2, 0, 0}); got != 2 {
			t.Errorf("Dot parallel = %v; want 2", got)
		}
	})

	t.Run("Cross", func(t *testing.T) {
		if got := x.Cross(y); !got.Eq(Vector3D{0, 0, 1}) {
			t.Errorf("Cross X,Y = %v; want (0, 0, 1)", got)
		}
		if got := x.Cross(x); !got.Eq(Zero) {
			t.Errorf("Cross self = %v; want zero", got)
		}
	})
}

func TestVector_Magnitude(t *testing.T) {
	v := Vector3D{3, 4, 0}

	t.Run("Len", func(t *testing.T) {
		if got := v.Len(); !floatEquals(got, 5) {
			t.Errorf("Len = %v; want 5", got)
		}
	})

	t.Run("LenSqr", func(t *testing.T) {
		if got := v.LenSqr(); got != 25 {
			t.Errorf("LenSqr = %v; want 25", got)
		}
	})

	t.Run("Normalize", func(t *testing.T) {
		got := v.Normalize()
		want := Vector3D{0.6, 0.8, 0}
		if !got.Eq(want) {
			t.Errorf("Normalize = %v; want %v", got, want)
		}
		if !floatEquals(got.Len(), 1.0) {
			t.Errorf("Normalize length = %v; want 1", got.Len())
		}
	})

	t.Run("NormalizeZero", func(t *testing.T) {
		got := Zero.Normalize()
		if !got.Eq(Zero) {
			t.Errorf("Normalize(0,0,0) = %v; want zero", got)
		}
		if !got.IsFinite() {
			t.Errorf("Normalize(0,0,0) must not produce NaN, got %v", got)
		}
	})

	t.Run("WithLen", func(t *testing.T) {
		got := v.WithLen(10)
		if !got.Eq(Vector3D{6, 8, 0}) {
			t.Errorf("WithLen(10) = %v; want (6, 8, 0)", got)
		}
		if !Zero.WithLen(10).Eq(Zero) {
			t.Error("WithLen on a zero vector should stay zero")
		}
	})

	t.Run("ClampLen", func(t *testing.T) {
		tests := []struct {
			name string
			max  float64
			want Vector3D
		}{
			{"below limit", 10, Vector3D{3, 4, 0}},
			{"at limit", 5, Vector3D{3, 4, 0}},
			{"above limit", 2.5, Vector3D{1.5, 2, 0}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := v.ClampLen(tt.max); !got.Eq(tt.want) {
					t.Errorf("ClampLen(%v) = %v; want %v", tt.max, got, tt.want)
				}
			})
		}
	})
}

func TestVector_Distance(t *testing.T) {
	v1 := Vector3D{1, 1, 1}
	v2 := Vector3D{4, 5, 1}

	if got := v1.DistanceTo(v2); !floatEquals(got, 5) {
		t.Errorf("DistanceTo = %v; want 5", got)
	}

	if got := v1.DistanceSquaredTo(v2); got != 25 {
		t.Errorf("DistanceSquaredTo = %v; want 25", got)
	}
}

func TestVector_Yaw(t *testing.T) {
	tests := []struct {
		v    Vector3D
		want float64
	}{
		{Vector3D{1, 0, 5}, 0},
		{Vector3D{0, 1, -2}, math.Pi / 2},
		{Vector3D{-1, 0, 0}, math.Pi},
		{Vector3D{0, -1, 0}, -math.Pi / 2},
	}
	for _, tt := range tests {
		if got := tt.v.Yaw(); !floatEquals(got, tt.want) {
			t.Errorf("%v.Yaw() = %v; want %v", tt.v, got, tt.want)
		}
	}
}

func TestVector_Lerp(t *testing.T) {
	got := Zero.Lerp(Vector3D{10, 10, -10}, 0.5)
	want := Vector3D{5, 5, -5}
	if !got.Eq(want) {
		t.Errorf("Lerp(0.5) = %v; want %v", got, want)
	}
}

func TestVector_IsFinite(t *testing.T) {
	if !(Vector3D{1, 2, 3}).IsFinite() {
		t.Error("regular vector should be finite")
	}
	if (Vector3D{math.NaN(), 0, 0}).IsFinite() {
		t.Error("NaN component should not be finite")
	}
	if (Vector3D{0, 0, math.Inf(-1)}).IsFinite() {
		t.Error("Inf component should not be finite")
	}
}

func TestVector_Eq(t *testing.T) {
	v := Vector3D{1, 2, 3}

	if !v.Eq(Vector3D{1, 2, 3}) {
		t.Error("Eq exact match failed")
	}

	vClose := Vector3D{1 + Epsilon/2, 2 - Epsilon/2, 3}
	if !v.Eq(vClose) {
		t.Error("Eq epsilon match failed")
	}

	if v.Eq(Vector3D{1, 2, 3.1}) {
		t.Error("Eq mismatch failed")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		value, lo, hi, want float64
	}{
		{0.5, 0.6, 1.4, 0.6},
		{1.0, 0.6, 1.4, 1.0},
		{2.0, 0.6, 1.4, 1.4},
		{0.6, 0.6, 1.4, 0.6},
	}
	for _, tt := range tests {
		if got := Clamp(tt.value, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v; want %v", tt.value, tt.lo, tt.hi, got, tt.want)
		}
	}
}
