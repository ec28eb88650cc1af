package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pointgeo/model"
	"github.com/hupe1980/pointgeo/pooling"
)

const sample = `
workers: 4
spatial_index: true
empty_policy: query_index
set_abstraction:
  - name: sa1
    npoint: 64
    radius: 0.25
    nsample: 16
    use_xyz: true
    pooling: weighted_avg
    decay: 3
  - name: sa2
    npoint: 16
    nsample: 8
    knn: true
    sampler: random
    seed: 42
    use_xyz: false
  - name: sa3
    group_all: true
    use_xyz: true
multi_scale:
  - npoint: 32
    radii: [0.1, 0.2]
    nsamples: [8, 16]
    use_xyz: true
    center_features: true
feature_propagation:
  - name: fp1
    skip: true
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.SpatialIndex)
	assert.Equal(t, "query_index", cfg.EmptyPolicy)
	require.Len(t, cfg.SetAbstraction, 3)

	sa1 := cfg.SetAbstraction[0]
	assert.Equal(t, "sa1", sa1.Name)
	assert.Equal(t, 64, sa1.NPoint)
	assert.InDelta(t, 0.25, sa1.Radius, 1e-7)
	assert.Equal(t, pooling.ModeWeightedAvg, sa1.PoolingMode())
	assert.Equal(t, pooling.ModeMax, cfg.SetAbstraction[1].PoolingMode())
	assert.Equal(t, SamplerRandom, cfg.SetAbstraction[1].Sampler)
	assert.Equal(t, int64(42), cfg.SetAbstraction[1].Seed)
	assert.True(t, cfg.SetAbstraction[2].GroupAll)

	require.Len(t, cfg.MultiScale, 1)
	assert.Equal(t, []int{8, 16}, cfg.MultiScale[0].NSamples)
	assert.True(t, cfg.MultiScale[0].CenterFeatures)
	require.Len(t, cfg.FeaturePropagation, 1)
	assert.True(t, cfg.FeaturePropagation[0].Skip)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"UnknownKey", "workerz: 2\n"},
		{"NegativeWorkers", "workers: -1\n"},
		{"Policy", "empty_policy: zero\n"},
		{"Pooling", "set_abstraction:\n  - {npoint: 4, radius: 1, nsample: 2, pooling: median}\n"},
		{"Radius", "set_abstraction:\n  - {npoint: 4, radius: 0, nsample: 2}\n"},
		{"NSample", "set_abstraction:\n  - {npoint: 4, radius: 1, nsample: 0}\n"},
		{"NPoint", "set_abstraction:\n  - {npoint: 0, radius: 1, nsample: 2}\n"},
		{"Sampler", "set_abstraction:\n  - {npoint: 4, radius: 1, nsample: 2, sampler: grid}\n"},
		{"ScaleCount", "multi_scale:\n  - {npoint: 4, radii: [0.1, 0.2], nsamples: [8]}\n"},
		{"NoScales", "multi_scale:\n  - {npoint: 4}\n"},
		{"ScaleRadius", "multi_scale:\n  - {npoint: 4, radii: [-0.1], nsamples: [8]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			if tt.name != "UnknownKey" {
				assert.ErrorIs(t, err, model.ErrInvalidArgument)
			}
		})
	}
}

func TestDefaultRoundTrip(t *testing.T) {
	def := Default()
	require.NoError(t, def.Validate())

	data, err := Marshal(def)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "layers.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, def, loaded)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
