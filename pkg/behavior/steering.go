// Package behavior holds the steering primitives shared by every boid:
// Craig Reynolds' "steer towards a desired velocity" rule, seeking, repulsion,
// speed limits and the toroidal world wrap.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds. https://en.wikipedia.org/wiki/Boids
package behavior

import (
	"github.com/lao-tseu-is-alive/go-murmuration/pkg/geometry"
)

// Limits controls how hard a boid may steer and how fast it may fly.
type Limits struct {
	MaxSpeed float64
	MinSpeed float64
	MaxForce float64
}

// Steer turns a desired heading into a steering force: the heading is scaled to
// maxSpeed, the current velocity is subtracted and the result is clamped to limit.
// A zero heading yields a zero force.
func Steer(heading, velocity geometry.Vector3D, maxSpeed, limit float64) geometry.Vector3D {
	if heading.IsZero() {
		return geometry.Zero
	}
	desired := heading.WithLen(maxSpeed)
	return desired.Sub(velocity).ClampLen(limit)
}

// Seek steers from position towards target.
func Seek(target, position, velocity geometry.Vector3D, l Limits) geometry.Vector3D {
	return Steer(target.Sub(position), velocity, l.MaxSpeed, l.MaxForce)
}

// Repel pushes position away from source with an inverse-square falloff
// (1 - d/radius)^2 scaled by strength. Outside the radius, or exactly on the
// source, the force is zero.
func Repel(position, source geometry.Vector3D, radius, strength float64) geometry.Vector3D {
	if radius <= 0 {
		return geometry.Zero
	}
	away := position.Sub(source)
	dist := away.Len()
	if dist >= radius {
		return geometry.Zero
	}
	falloff := 1 - dist/radius
	return away.Normalize().Mul(falloff * falloff * strength)
}

// LimitSpeed renormalizes velocity into [min, max].
// When velocity is zero there is no direction to renormalize, so the heading of
// fallback is used instead; if both are zero the zero vector is returned.
func LimitSpeed(velocity, fallback geometry.Vector3D, min, max float64) geometry.Vector3D {
	if velocity.IsZero() {
		velocity = fallback
		if velocity.IsZero() {
			return geometry.Zero
		}
	}
	speed := velocity.Len()
	switch {
	case speed > max:
		return velocity.WithLen(max)
	case speed < min:
		return velocity.WithLen(min)
	}
	return velocity
}

// Bounds are the half extents of the world box centered on the origin.
type Bounds struct {
	X, Y, Z float64
}

// Wrap teleports a position that crossed a boundary to the opposite boundary.
// It does not reflect nor clamp.
func Wrap(p geometry.Vector3D, b Bounds) geometry.Vector3D {
	p.X = wrapAxis(p.X, b.X)
	p.Y = wrapAxis(p.Y, b.Y)
	p.Z = wrapAxis(p.Z, b.Z)
	return p
}

func wrapAxis(v, limit float64) float64 {
	if v > limit {
		return -limit
	}
	if v < -limit {
		return limit
	}
	return v
}
