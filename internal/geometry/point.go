// Package geometry provides the 3D point and angle primitives used by the
// biomechanics pipeline.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// epsilon is the length below which a vector is treated as zero.
const epsilon = 1e-10

// Point3D represents a landmark position with its detection confidence.
// It is an immutable value type: every operation returns a new Point3D.
type Point3D struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Confidence float64 `json:"confidence"`
}

// NewPoint creates a fully confident point.
func NewPoint(x, y, z float64) Point3D {
	return Point3D{X: x, Y: y, Z: z, Confidence: 1}
}

// Vec returns the coordinates as a gonum vector.
func (p Point3D) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// fromVec builds a point from a vector with the given confidence.
func fromVec(v r3.Vec, confidence float64) Point3D {
	return Point3D{X: v.X, Y: v.Y, Z: v.Z, Confidence: confidence}
}

// Add returns p + q. The result carries the lower of the two confidences.
func (p Point3D) Add(q Point3D) Point3D {
	return fromVec(r3.Add(p.Vec(), q.Vec()), math.Min(p.Confidence, q.Confidence))
}

// Sub returns p - q. The result carries the lower of the two confidences.
func (p Point3D) Sub(q Point3D) Point3D {
	return fromVec(r3.Sub(p.Vec(), q.Vec()), math.Min(p.Confidence, q.Confidence))
}

// Scale returns p multiplied by f.
func (p Point3D) Scale(f float64) Point3D {
	return fromVec(r3.Scale(f, p.Vec()), p.Confidence)
}

// Dot returns the dot product of p and q.
func (p Point3D) Dot(q Point3D) float64 {
	return r3.Dot(p.Vec(), q.Vec())
}

// Norm returns the Euclidean length of p.
func (p Point3D) Norm() float64 {
	return r3.Norm(p.Vec())
}

// Norm2 returns the squared length of p.
func (p Point3D) Norm2() float64 {
	return r3.Norm2(p.Vec())
}

// Normalize returns the unit vector in the direction of p.
// The zero vector normalizes to the zero vector.
func (p Point3D) Normalize() Point3D {
	n := p.Norm()
	if n < epsilon {
		return Point3D{Confidence: p.Confidence}
	}
	return p.Scale(1 / n)
}

// Midpoint returns the point halfway between p and q.
func (p Point3D) Midpoint(q Point3D) Point3D {
	return p.Add(q).Scale(0.5)
}

// Distance returns the Euclidean distance between p and q.
func (p Point3D) Distance(q Point3D) float64 {
	return p.Sub(q).Norm()
}

// Flat returns p projected onto the image plane (z dropped).
func (p Point3D) Flat() Point3D {
	return Point3D{X: p.X, Y: p.Y, Confidence: p.Confidence}
}

// IsFinite reports whether all coordinates are finite numbers.
func (p Point3D) IsFinite() bool {
	return IsFinite(p.X) && IsFinite(p.Y) && IsFinite(p.Z)
}
