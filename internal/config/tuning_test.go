package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefault_Thresholds(t *testing.T) {
	d := Default()
	assert.Equal(t, 0.5, d.MinConfidence)
	assert.Equal(t, 0.15, d.SideViewThreshold)
	assert.Equal(t, 0.5, d.Stability.ElevationWarn)
	assert.Equal(t, 0.15, d.Output.OffTargetGain)
	assert.Equal(t, 0.05, d.Output.ZeroGate)
	for _, name := range JointNames {
		_, ok := d.Joint(name)
		assert.True(t, ok, name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Tuning)
	}{
		{"confidence above one", func(t *Tuning) { t.MinConfidence = 1.5 }},
		{"zero side view threshold", func(t *Tuning) { t.SideViewThreshold = 0 }},
		{"tiny history", func(t *Tuning) { t.Motion.HistorySize = 1 }},
		{"speed window larger than history", func(t *Tuning) { t.Motion.SpeedWindow = 20 }},
		{"missing joint", func(t *Tuning) { delete(t.Joints, "knee") }},
		{"inverted limits", func(t *Tuning) {
			p := t.Joints["elbow"]
			p.AngleMin, p.AngleMax = p.AngleMax, p.AngleMin
			t.Joints["elbow"] = p
		}},
		{"zero off-target gain", func(t *Tuning) { t.Output.OffTargetGain = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := Default()
			tt.mutate(tuning)
			err := tuning.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTuning)
		})
	}
}

func TestLoadTuning(t *testing.T) {
	dir := t.TempDir()

	t.Run("overlays file on defaults", func(t *testing.T) {
		path := filepath.Join(dir, "tuning.yaml")
		data := []byte(`
side_view_threshold: 0.1
output:
  off_target_gain: 0.2
joints:
  elbow:
    angle_min: 20
    angle_max: 180
    rest_angle: 170
    stiffness: 0.5
    damping: 0.1
`)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		got, err := LoadTuning(path)
		require.NoError(t, err)

		want := Default()
		want.SideViewThreshold = 0.1
		want.Output.OffTargetGain = 0.2
		want.Joints["elbow"] = JointParams{AngleMin: 20, AngleMax: 180, RestAngle: 170, Stiffness: 0.5, Damping: 0.1}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("LoadTuning() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty file yields defaults", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		got, err := LoadTuning(path)
		require.NoError(t, err)
		assert.Equal(t, Default(), got)
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "typo.yaml")
		require.NoError(t, os.WriteFile(path, []byte("side_view_treshold: 0.1\n"), 0o644))

		_, err := LoadTuning(path)
		assert.Error(t, err)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("min_confidence: 2\n"), 0o644))

		_, err := LoadTuning(path)
		assert.ErrorIs(t, err, ErrInvalidTuning)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTuning(filepath.Join(dir, "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	original := Default()
	original.Inhibition.Factor = 0.4

	require.NoError(t, original.Save(path))
	loaded, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestEncode_LoadsBack(t *testing.T) {
	original := Default()
	original.Motion.PullWristBelow = 0.25

	var buf bytes.Buffer
	require.NoError(t, original.Encode(&buf))
	assert.Contains(t, buf.String(), "pull_wrist_below: 0.25")

	path := filepath.Join(t.TempDir(), "encoded.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	loaded, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}
