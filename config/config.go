package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/pointgeo/model"
	"github.com/hupe1980/pointgeo/neighbors"
	"github.com/hupe1980/pointgeo/pooling"
)

// Sampler names.
const (
	SamplerFarthestPoint = "fps"
	SamplerRandom        = "random"
)

// Config holds engine settings and layer schedules.
type Config struct {
	// Workers bounds parallelism. Zero selects runtime.GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`

	// SpatialIndex enables the k-d tree shortlist for neighbor searches.
	SpatialIndex bool `yaml:"spatial_index,omitempty"`

	// EmptyPolicy is "nearest" (default) or "query_index".
	EmptyPolicy string `yaml:"empty_policy,omitempty"`

	// Epsilon clamps interpolation distances. Zero selects the default.
	Epsilon float32 `yaml:"epsilon,omitempty"`

	SetAbstraction     []SetAbstraction     `yaml:"set_abstraction,omitempty"`
	MultiScale         []MultiScale         `yaml:"multi_scale,omitempty"`
	FeaturePropagation []FeaturePropagation `yaml:"feature_propagation,omitempty"`
}

// SetAbstraction describes one sample, group and pool stage.
type SetAbstraction struct {
	Name string `yaml:"name,omitempty"`

	// NPoint is the number of centroids sampled per batch.
	NPoint int `yaml:"npoint"`

	// Radius bounds the ball query. Ignored with KNN or GroupAll.
	Radius float32 `yaml:"radius"`

	// NSample is the neighborhood size.
	NSample int `yaml:"nsample"`

	// GroupAll groups every point under one centroid at the origin.
	GroupAll bool `yaml:"group_all,omitempty"`

	// KNN replaces the ball query with a k-nearest-neighbor search.
	KNN bool `yaml:"knn,omitempty"`

	// UseXYZ prepends the centered coordinates to the grouped features.
	UseXYZ bool `yaml:"use_xyz"`

	// Sampler is "fps" (default) or "random".
	Sampler string `yaml:"sampler,omitempty"`
	Seed    int64  `yaml:"seed,omitempty"`

	// Pooling is max, avg, weighted_avg or max_and_avg.
	Pooling string `yaml:"pooling,omitempty"`

	// Decay for weighted_avg pooling. Zero selects the default.
	Decay float32 `yaml:"decay,omitempty"`
}

// MultiScale describes a stage that groups shared centroids at several radii.
type MultiScale struct {
	Name     string    `yaml:"name,omitempty"`
	NPoint   int       `yaml:"npoint"`
	Radii    []float32 `yaml:"radii"`
	NSamples []int     `yaml:"nsamples"`
	UseXYZ   bool      `yaml:"use_xyz"`
	Sampler  string    `yaml:"sampler,omitempty"`
	Seed     int64     `yaml:"seed,omitempty"`

	// CenterFeatures groups the per-point vectors without appending centered
	// coordinates and subtracts each centroid's own vector from its pooled
	// result, centering every scale in feature space.
	CenterFeatures bool `yaml:"center_features,omitempty"`
}

// FeaturePropagation describes one interpolation stage.
type FeaturePropagation struct {
	Name string `yaml:"name,omitempty"`

	// Skip appends the dense level's own features after the interpolated ones.
	Skip bool `yaml:"skip,omitempty"`
}

// Default returns the three-level hierarchy used for frustum point clouds:
// two set abstraction stages, a group-all stage, a multi-scale alternative to
// the first stage, and three propagation stages back to the input resolution.
func Default() *Config {
	return &Config{
		EmptyPolicy: neighbors.PadNearest.String(),
		SetAbstraction: []SetAbstraction{
			{Name: "sa1", NPoint: 128, Radius: 0.2, NSample: 64, UseXYZ: true, Pooling: "max"},
			{Name: "sa2", NPoint: 32, Radius: 0.4, NSample: 64, UseXYZ: true, Pooling: "max"},
			{Name: "sa3", GroupAll: true, UseXYZ: true, Pooling: "max"},
		},
		MultiScale: []MultiScale{
			{Name: "msg1", NPoint: 128, Radii: []float32{0.2, 0.4, 0.8}, NSamples: []int{32, 64, 128}, UseXYZ: true},
		},
		FeaturePropagation: []FeaturePropagation{
			{Name: "fp1", Skip: true},
			{Name: "fp2", Skip: true},
			{Name: "fp3", Skip: true},
		},
	}
}

// Parse decodes and validates a YAML document. Unknown keys are rejected and
// an empty document yields the zero Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return Parse(data)
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Validate checks every stage.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.Wrapf(model.ErrInvalidArgument, "workers %d must not be negative", c.Workers)
	}
	if _, err := neighbors.ParseEmptyPolicy(c.EmptyPolicy); err != nil {
		return errors.Wrap(err, "empty_policy")
	}
	if c.Epsilon < 0 {
		return errors.Wrapf(model.ErrInvalidArgument, "epsilon %v must not be negative", c.Epsilon)
	}
	for i := range c.SetAbstraction {
		if err := c.SetAbstraction[i].Validate(); err != nil {
			return errors.Wrapf(err, "set_abstraction[%d]", i)
		}
	}
	for i := range c.MultiScale {
		if err := c.MultiScale[i].Validate(); err != nil {
			return errors.Wrapf(err, "multi_scale[%d]", i)
		}
	}
	return nil
}

// Validate checks the stage geometry.
func (s *SetAbstraction) Validate() error {
	if _, err := pooling.ParseMode(s.Pooling); err != nil {
		return errors.Wrap(err, "pooling")
	}
	if s.Decay < 0 {
		return errors.Wrapf(model.ErrInvalidArgument, "decay %v must not be negative", s.Decay)
	}
	if s.GroupAll {
		return nil
	}
	if err := validateSampler(s.Sampler, s.NPoint); err != nil {
		return err
	}
	if s.NSample <= 0 {
		return errors.Wrapf(model.ErrInvalidArgument, "nsample %d must be positive", s.NSample)
	}
	if !s.KNN && !(s.Radius > 0) {
		return errors.Wrapf(model.ErrInvalidArgument, "radius %v must be positive", s.Radius)
	}
	return nil
}

// Validate checks the stage geometry.
func (m *MultiScale) Validate() error {
	if err := validateSampler(m.Sampler, m.NPoint); err != nil {
		return err
	}
	if len(m.Radii) == 0 {
		return errors.Wrap(model.ErrInvalidArgument, "radii must not be empty")
	}
	if len(m.Radii) != len(m.NSamples) {
		return errors.Wrap(&model.ShapeError{Field: "nsamples", Expected: len(m.Radii), Actual: len(m.NSamples)}, "multi scale")
	}
	for i, r := range m.Radii {
		if !(r > 0) {
			return errors.Wrapf(model.ErrInvalidArgument, "radii[%d] %v must be positive", i, r)
		}
		if m.NSamples[i] <= 0 {
			return errors.Wrapf(model.ErrInvalidArgument, "nsamples[%d] %d must be positive", i, m.NSamples[i])
		}
	}
	return nil
}

// PoolingMode returns the parsed pooling mode.
func (s *SetAbstraction) PoolingMode() pooling.Mode {
	m, _ := pooling.ParseMode(s.Pooling)
	return m
}

func validateSampler(name string, npoint int) error {
	switch name {
	case "", SamplerFarthestPoint, SamplerRandom:
	default:
		return errors.Wrapf(model.ErrInvalidArgument, "unknown sampler %q", name)
	}
	if npoint <= 0 {
		return errors.Wrapf(model.ErrInvalidArgument, "npoint %d must be positive", npoint)
	}
	return nil
}
