package geometry

import "math"

// Angle returns the angle at vertex b between the rays b->a and b->c, in
// radians within [0, π]. A zero-length ray yields 0.
func Angle(a, b, c Point3D) float64 {
	return angleBetween(a.Sub(b), c.Sub(b))
}

// Angle2D is Angle computed on the image plane only. It is used where the
// depth coordinate is unreliable, such as in profile views.
func Angle2D(a, b, c Point3D) float64 {
	return Angle(a.Flat(), b.Flat(), c.Flat())
}

// VectorAngle returns the angle between two direction vectors.
func VectorAngle(u, v Point3D) float64 {
	return angleBetween(u, v)
}

// Cos returns the cosine of the angle between u and v, or 0 when either
// vector has zero length.
func Cos(u, v Point3D) float64 {
	nu, nv := u.Norm(), v.Norm()
	if nu < epsilon || nv < epsilon {
		return 0
	}
	return Clamp(u.Dot(v)/(nu*nv), -1, 1)
}

func angleBetween(u, v Point3D) float64 {
	su, sv := u.Norm2(), v.Norm2()
	if su < epsilon*epsilon || sv < epsilon*epsilon {
		return 0
	}
	// sqrt(su*sv) keeps identical rays at a ratio of exactly 1. The clamp
	// catches rounding that pushes other ratios just outside [-1, 1].
	return math.Acos(Clamp(u.Dot(v)/math.Sqrt(su*sv), -1, 1))
}

// Clamp restricts v to [lo, hi]. NaN is returned unchanged.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
