package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon Precision constant used for float64 comparisons and zero-length checks.
const (
	Epsilon = 1e-9
)

// Vector3D represents a 3D vector or point in cartesian space.
// Its layout matches gonum's r3.Vec so the two convert freely, which lets
// the heavier math (norms, cross products) be delegated to gonum.
type Vector3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Zero is the null vector.
var Zero = Vector3D{}

// NewVector creates a new Vector3D.
func NewVector(x, y, z float64) Vector3D {
	return Vector3D{X: x, Y: y, Z: z}
}

func (v Vector3D) vec() r3.Vec { return r3.Vec(v) }

func fromVec(p r3.Vec) Vector3D { return Vector3D(p) }

// String implements the fmt.Stringer interface.
func (v Vector3D) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers returning new values: vectors are small and copied cheaply.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector3D) Add(other Vector3D) Vector3D {
	return fromVec(r3.Add(v.vec(), other.vec()))
}

// Sub subtracts the other vector from the current vector.
func (v Vector3D) Sub(other Vector3D) Vector3D {
	return fromVec(r3.Sub(v.vec(), other.vec()))
}

// Mul scales the vector by a scalar value.
func (v Vector3D) Mul(scalar float64) Vector3D {
	return fromVec(r3.Scale(scalar, v.vec()))
}

// Div scales the vector by 1/scalar.
// if scalar is zero it returns an Inf vector together with an error.
func (v Vector3D) Div(scalar float64) (Vector3D, error) {
	if scalar == 0 {
		return Vector3D{math.Inf(1), math.Inf(1), math.Inf(1)}, errors.New("vector cannot be divided by zero")
	}
	return v.Mul(1 / scalar), nil
}

// ---------------------------------------------------------------------
// Vector3D Products
// ---------------------------------------------------------------------

// Dot calculates the dot product of two vectors.
func (v Vector3D) Dot(other Vector3D) float64 {
	return r3.Dot(v.vec(), other.vec())
}

// Cross calculates the cross product of two vectors.
func (v Vector3D) Cross(other Vector3D) Vector3D {
	return fromVec(r3.Cross(v.vec(), other.vec()))
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// This is faster than Len() as it avoids the square root. Use for comparisons.
func (v Vector3D) LenSqr() float64 {
	return r3.Norm2(v.vec())
}

// Len calculates the magnitude (length) of the vector.
func (v Vector3D) Len() float64 {
	return r3.Norm(v.vec())
}

// IsZero reports whether the vector length is effectively zero.
func (v Vector3D) IsZero() bool {
	return v.LenSqr() < Epsilon*Epsilon
}

// Normalize returns a unit vector in the same direction.
// Returns a zero vector if the length is effectively zero (r3.Unit would give NaN).
func (v Vector3D) Normalize() Vector3D {
	l := v.Len()
	if l < Epsilon {
		return Zero
	}
	return v.Mul(1 / l)
}

// WithLen returns the vector rescaled to the given length, keeping its direction.
// A zero vector stays zero.
func (v Vector3D) WithLen(length float64) Vector3D {
	return v.Normalize().Mul(length)
}

// ClampLen limits the magnitude of the vector to max.
func (v Vector3D) ClampLen(max float64) Vector3D {
	l := v.Len()
	if l <= max || l < Epsilon {
		return v
	}
	return v.Mul(max / l)
}

// IsFinite reports whether no component is NaN or Inf.
func (v Vector3D) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector3D) DistanceTo(other Vector3D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector3D) DistanceSquaredTo(other Vector3D) float64 {
	return v.Sub(other).LenSqr()
}

// Yaw returns the heading (in radians) of the vector projected on the XY plane.
// Range: [-Pi, Pi]
func (v Vector3D) Yaw() float64 {
	return math.Atan2(v.Y, v.X)
}

// Lerp (Linear Interpolate) calculates a point between v and target based on t [0, 1].
func (v Vector3D) Lerp(target Vector3D, t float64) Vector3D {
	return v.Add(target.Sub(v).Mul(t))
}

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector3D) Eq(other Vector3D) bool {
	return math.Abs(v.X-other.X) <= Epsilon &&
		math.Abs(v.Y-other.Y) <= Epsilon &&
		math.Abs(v.Z-other.Z) <= Epsilon
}

// Clamp restricts value to the closed interval [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
