package types

import (
	"math"

	"golang.org/x/image/math/f32"
)

const floatCmpEpsilon = 1e-6

type Vec3 f32.Vec3

// Add a vector.
func (v Vec3) Add(v2 Vec3) Vec3 {
	return Vec3{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2]}
}

// Subtract a vector.
func (v Vec3) Sub(v2 Vec3) Vec3 {
	return Vec3{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2]}
}

// Multiply a 3 component vector with a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Negate all components.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Get the absolute value of each component.
func (v Vec3) Abs() Vec3 {
	return Vec3{abs32(v[0]), abs32(v[1]), abs32(v[2])}
}

// Get 3 component vector length.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
}

// Normalize 3 component vector. Zero-length vectors are returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < floatCmpEpsilon {
		return v
	}
	l = 1.0 / l
	return Vec3{v[0] * l, v[1] * l, v[2] * l}
}

// Calculate dot product of 2 vectors
func (v Vec3) Dot(v2 Vec3) float32 {
	return v[0]*v2[0] + v[1]*v2[1] + v[2]*v2[2]
}

// Calculate cross product of 2 vectors.
func (v Vec3) Cross(v2 Vec3) Vec3 {
	return Vec3{v[1]*v2[2] - v[2]*v2[1], v[2]*v2[0] - v[0]*v2[2], v[0]*v2[1] - v[1]*v2[0]}
}

// ApproxEqual reports whether all components of v and v2 differ by at most eps.
func (v Vec3) ApproxEqual(v2 Vec3, eps float32) bool {
	d := v.Sub(v2).Abs()
	return d[0] <= eps && d[1] <= eps && d[2] <= eps
}

// Calc min component from two vectors
func MinVec3(v1, v2 Vec3) Vec3 {
	return Vec3{min(v1[0], v2[0]), min(v1[1], v2[1]), min(v1[2], v2[2])}
}

// Calc maxcomponent from two vectors
func MaxVec3(v1, v2 Vec3) Vec3 {
	return Vec3{max(v1[0], v2[0]), max(v1[1], v2[1]), max(v1[2], v2[2])}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
