package common

import (
	"math"
	"math/rand/v2"
)

// Vec3 is a 3D vector in simulation space. Simulation state is kept in float64
// and only narrowed to float32 when written to scene handles.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Dist returns the Euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

// Normalize returns the unit vector in the direction of v.
// The zero vector normalizes to itself.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Float32 narrows v for GPU and scene-graph consumers.
func (v Vec3) Float32() [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// RotateXYZ rotates v by the Euler angles (rx, ry, rz) in radians, applied as
// the matrix product Rx * Ry * Rz (intrinsic X, then Y, then Z).
//
// Parameters:
//   - v: the vector to rotate
//   - rx, ry, rz: rotation angles around each axis
//
// Returns:
//   - Vec3: the rotated vector
func RotateXYZ(v Vec3, rx, ry, rz float64) Vec3 {
	// Rz first (innermost), then Ry, then Rx.
	cz, sz := math.Cos(rz), math.Sin(rz)
	v = Vec3{v.X*cz - v.Y*sz, v.X*sz + v.Y*cz, v.Z}

	cy, sy := math.Cos(ry), math.Sin(ry)
	v = Vec3{v.X*cy + v.Z*sy, v.Y, -v.X*sy + v.Z*cy}

	cx, sx := math.Cos(rx), math.Sin(rx)
	return Vec3{v.X, v.Y*cx - v.Z*sx, v.Y*sx + v.Z*cx}
}

// RandomShellPoint returns a point with a uniformly distributed direction whose
// distance from the origin lies in [radius/4, radius).
//
// Parameters:
//   - rng: random source
//   - radius: outer radius of the shell
//
// Returns:
//   - Vec3: the sampled point
func RandomShellPoint(rng *rand.Rand, radius float64) Vec3 {
	minRadius := radius * 0.25
	r := rng.Float64()*(radius-minRadius) + minRadius
	theta := 2 * math.Pi * rng.Float64()
	phi := math.Acos(2*rng.Float64() - 1)
	return Vec3{
		X: r * math.Sin(phi) * math.Cos(theta),
		Y: r * math.Sin(phi) * math.Sin(theta),
		Z: r * math.Cos(phi),
	}
}
