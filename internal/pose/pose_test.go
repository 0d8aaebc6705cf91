package pose

import (
	"encoding/json"
	"testing"

	"github.com/ayusman/musclemap/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func torsoFrame() Frame {
	return Frame{
		LeftShoulder:  geometry.NewPoint(0.4, 0.2, 0),
		RightShoulder: geometry.NewPoint(0.6, 0.2, 0),
		LeftHip:       geometry.NewPoint(0.4, 0.6, 0),
		RightHip:      geometry.NewPoint(0.6, 0.6, 0),
		LeftKnee:      {X: 0.4, Y: 1.0, Z: 0.2, Confidence: 0.7},
	}
}

func TestLandmark_Names(t *testing.T) {
	assert.Equal(t, 33, int(NumLandmarks))
	assert.Equal(t, "nose", Nose.String())
	assert.Equal(t, "right_foot_index", RightFootIndex.String())

	for l := Landmark(0); l < NumLandmarks; l++ {
		parsed, ok := ParseLandmark(l.String())
		require.True(t, ok, l.String())
		assert.Equal(t, l, parsed)
	}
}

func TestFrame_Reliable(t *testing.T) {
	f := Frame{
		Nose:         {X: 0.5, Y: 0.1, Confidence: 0.9},
		LeftShoulder: {X: 0.4, Y: 0.2, Confidence: 0.49},
		LeftElbow:    {X: 0.4, Y: 0.3, Confidence: 0.5},
	}

	got := f.Reliable(DefaultMinConfidence)
	assert.True(t, got.Has(Nose, LeftElbow))
	assert.False(t, got.Has(LeftShoulder), "low confidence landmark should be absent")
	assert.Len(t, f, 3, "input must not be modified")
}

func TestFrame_Midpoint(t *testing.T) {
	f := torsoFrame()

	mid, ok := f.Midpoint(Shoulders)
	require.True(t, ok)
	assert.InDelta(t, 0.5, mid.X, 1e-12)

	delete(f, RightShoulder)
	mid, ok = f.Midpoint(Shoulders)
	require.True(t, ok, "single side falls back to that side")
	assert.InDelta(t, 0.4, mid.X, 1e-12)

	_, ok = f.BothMidpoint(Shoulders)
	assert.False(t, ok)

	_, ok = f.Midpoint(Ears)
	assert.False(t, ok)
}

func TestFrame_JSON(t *testing.T) {
	t.Run("ignores unknown names", func(t *testing.T) {
		var f Frame
		err := json.Unmarshal([]byte(`{
			"left_knee": {"x": 0.1, "y": 0.2, "z": 0.3, "confidence": 0.8},
			"tail": {"x": 1, "y": 1, "z": 1, "confidence": 1}
		}`), &f)
		require.NoError(t, err)
		require.Len(t, f, 1)
		assert.Equal(t, geometry.Point3D{X: 0.1, Y: 0.2, Z: 0.3, Confidence: 0.8}, f[LeftKnee])
	})

	t.Run("encodes names", func(t *testing.T) {
		data, err := json.Marshal(Frame{Nose: geometry.NewPoint(1, 2, 3)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"nose":{"x":1,"y":2,"z":3,"confidence":1}}`, string(data))
	})
}

func TestFromSlice(t *testing.T) {
	points := make([]geometry.Point3D, 40)
	points[int(LeftHip)] = geometry.NewPoint(0.3, 0.6, 0)

	f := FromSlice(points)
	assert.Len(t, f, int(NumLandmarks))
	assert.Equal(t, 0.3, f[LeftHip].X)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer()

	t.Run("hip midpoint becomes origin and torso is unit length", func(t *testing.T) {
		in := torsoFrame()
		out := n.Normalize(in)

		hips, ok := out.BothMidpoint(Hips)
		require.True(t, ok)
		assert.InDelta(t, 0, hips.Norm(), 1e-12)

		torso, ok := TorsoLength(out)
		require.True(t, ok)
		assert.InDelta(t, 1.0, torso, 1e-12)

		assert.InDelta(t, 1.0, out[LeftKnee].Y, 1e-12)
		assert.InDelta(t, 0.5, out[LeftKnee].Z, 1e-12)
		assert.Equal(t, 0.7, out[LeftKnee].Confidence, "confidence is preserved")

		assert.Equal(t, 0.4, in[LeftShoulder].X, "input must not be modified")
	})

	t.Run("single hip stands in for the midpoint", func(t *testing.T) {
		in := torsoFrame()
		delete(in, RightHip)
		out := n.Normalize(in)

		assert.InDelta(t, 0, out[LeftHip].Norm(), 1e-12)
		torso, ok := TorsoLength(out)
		require.True(t, ok)
		assert.InDelta(t, 1.0, torso, 1e-12)
		assert.NotContains(t, out, RightHip)
	})

	t.Run("missing both hips returns input unchanged", func(t *testing.T) {
		in := torsoFrame()
		delete(in, LeftHip)
		delete(in, RightHip)
		out := n.Normalize(in)
		assert.Equal(t, in, out)
	})

	t.Run("collapsed torso returns input unchanged", func(t *testing.T) {
		p := geometry.NewPoint(0.5, 0.5, 0)
		in := Frame{LeftShoulder: p, RightShoulder: p, LeftHip: p, RightHip: p}
		out := n.Normalize(in)
		assert.Equal(t, in, out)
	})

	t.Run("empty frame", func(t *testing.T) {
		out := n.Normalize(Frame{})
		assert.Empty(t, out)
	})
}

func TestAnchorOf(t *testing.T) {
	n := NewNormalizer()
	full := torsoFrame()
	oneHip := torsoFrame()
	delete(oneHip, RightHip)
	noShoulders := torsoFrame()
	delete(noShoulders, LeftShoulder)
	delete(noShoulders, RightShoulder)

	assert.True(t, AnchorOf(full).Normalized())
	assert.True(t, AnchorOf(oneHip).Normalized())
	assert.NotEqual(t, AnchorOf(full), AnchorOf(oneHip))
	assert.Equal(t, AnchorNone, AnchorOf(noShoulders))
	assert.Equal(t, AnchorNone, AnchorOf(Frame{}))

	for _, f := range []Frame{full, oneHip, noShoulders} {
		assert.Equal(t, AnchorOf(f), AnchorOf(n.Normalize(f)))
	}
}
