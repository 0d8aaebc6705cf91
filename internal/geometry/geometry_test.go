package geometry

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestAngle(t *testing.T) {
	t.Run("right angle", func(t *testing.T) {
		got := Angle(NewPoint(1, 0, 0), NewPoint(0, 0, 0), NewPoint(0, 1, 0))
		if math.Abs(got-math.Pi/2) > tolerance {
			t.Errorf("expected π/2, got %f", got)
		}
	})

	t.Run("identical arms return zero", func(t *testing.T) {
		a := NewPoint(0.3, 0.7, -0.2)
		b := NewPoint(0.1, 0.1, 0.1)
		got := Angle(a, b, a)
		if got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
	})

	t.Run("antiparallel arms return pi", func(t *testing.T) {
		got := Angle(NewPoint(-1, 0, 0), NewPoint(0, 0, 0), NewPoint(1, 0, 0))
		if math.Abs(got-math.Pi) > tolerance {
			t.Errorf("expected π, got %f", got)
		}
	})

	t.Run("zero-length ray returns zero", func(t *testing.T) {
		b := NewPoint(2, 2, 2)
		got := Angle(b, b, NewPoint(3, 3, 3))
		if got != 0 {
			t.Errorf("expected 0, got %f", got)
		}
	})

	t.Run("near-parallel rounding stays finite", func(t *testing.T) {
		a := NewPoint(1e8, 1e-8, 0)
		c := NewPoint(1e8, 1e-8+1e-16, 0)
		got := Angle(a, NewPoint(0, 0, 0), c)
		if math.IsNaN(got) || got < 0 {
			t.Errorf("expected finite non-negative angle, got %f", got)
		}
	})
}

func TestAngle2D_IgnoresDepth(t *testing.T) {
	a := NewPoint(1, 0, 5)
	b := NewPoint(0, 0, 0)
	c := NewPoint(0, 1, -5)

	got := Angle2D(a, b, c)
	if math.Abs(got-math.Pi/2) > tolerance {
		t.Errorf("expected π/2 on the image plane, got %f", got)
	}
}

func TestPoint3D_Arithmetic(t *testing.T) {
	p := Point3D{X: 1, Y: 2, Z: 3, Confidence: 0.9}
	q := Point3D{X: 3, Y: 2, Z: 1, Confidence: 0.6}

	t.Run("midpoint", func(t *testing.T) {
		m := p.Midpoint(q)
		if m.X != 2 || m.Y != 2 || m.Z != 2 {
			t.Errorf("expected (2,2,2), got (%f,%f,%f)", m.X, m.Y, m.Z)
		}
		if m.Confidence != 0.6 {
			t.Errorf("expected lower confidence 0.6, got %f", m.Confidence)
		}
	})

	t.Run("distance", func(t *testing.T) {
		d := NewPoint(0, 0, 0).Distance(NewPoint(3, 4, 0))
		if math.Abs(d-5) > tolerance {
			t.Errorf("expected 5, got %f", d)
		}
	})

	t.Run("operations do not mutate receiver", func(t *testing.T) {
		orig := p
		_ = p.Add(q)
		_ = p.Scale(10)
		_ = p.Normalize()
		if p != orig {
			t.Errorf("receiver mutated: %+v", p)
		}
	})

	t.Run("normalize zero vector", func(t *testing.T) {
		n := NewPoint(0, 0, 0).Normalize()
		if n.Norm() != 0 {
			t.Errorf("expected zero vector, got %+v", n)
		}
	})

	t.Run("normalize has unit length", func(t *testing.T) {
		n := NewPoint(3, 0, 4).Normalize()
		if math.Abs(n.Norm()-1) > tolerance {
			t.Errorf("expected unit length, got %f", n.Norm())
		}
	})
}

func TestCos(t *testing.T) {
	if got := Cos(NewPoint(0, -1, 0), NewPoint(0, -2, 0)); math.Abs(got-1) > tolerance {
		t.Errorf("parallel vectors: expected 1, got %f", got)
	}
	if got := Cos(NewPoint(0, 0, 0), NewPoint(0, 1, 0)); got != 0 {
		t.Errorf("zero vector: expected 0, got %f", got)
	}
}

func TestClampAndFinite(t *testing.T) {
	if Clamp(2, 0, 1) != 1 || Clamp(-2, 0, 1) != 0 || Clamp(0.5, 0, 1) != 0.5 {
		t.Error("clamp bounds wrong")
	}
	if IsFinite(math.NaN()) || IsFinite(math.Inf(1)) || !IsFinite(1) {
		t.Error("IsFinite wrong")
	}
	if math.Abs(Degrees(math.Pi)-180) > tolerance || math.Abs(Radians(90)-math.Pi/2) > tolerance {
		t.Error("degree conversion wrong")
	}
}
