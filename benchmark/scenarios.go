package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-roialign/roialign"
)

// Scenario describes one pooling workload: the feature-map geometry, the
// ROI load, and the pooling configuration.
type Scenario struct {
	Name         string  `json:"name"`
	Batch        int     `json:"batch"`
	Channels     int     `json:"channels"`
	Height       int     `json:"height"`
	Width        int     `json:"width"`
	NumROI       int     `json:"num_roi"`
	PooledSize   int     `json:"pooled_size"`
	SpatialScale float64 `json:"spatial_scale"`
	SampleRatio  int     `json:"sample_ratio"`
	Parallel     bool    `json:"parallel"`
	Iterations   int     `json:"iterations"`
	WarmupRuns   int     `json:"warmup_runs"`
}

// Config assembles the kernel configuration for the scenario.
func (s Scenario) Config() roialign.Config {
	cfg := roialign.Square(s.PooledSize, s.SpatialScale, s.SampleRatio)
	cfg.Parallel = s.Parallel
	return cfg
}

// ScenarioBuilder helps build scenarios with a fluent API.
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a new scenario builder with sensible defaults:
// a single-image batch, stride-16 scale, adaptive sampling, 100 iterations.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:         name,
			Batch:        1,
			PooledSize:   7,
			SpatialScale: 1.0 / 16.0,
			SampleRatio:  roialign.DefaultSampleRatio,
			Iterations:   100,
			WarmupRuns:   10,
		},
	}
}

// WithFeatureMap sets the feature-map dimensions.
func (sb *ScenarioBuilder) WithFeatureMap(batch, channels, height, width int) *ScenarioBuilder {
	sb.scenario.Batch = batch
	sb.scenario.Channels = channels
	sb.scenario.Height = height
	sb.scenario.Width = width
	return sb
}

// WithROIs sets the number of ROIs per image.
func (sb *ScenarioBuilder) WithROIs(numROI int) *ScenarioBuilder {
	sb.scenario.NumROI = numROI
	return sb
}

// WithPooling sets the pooled output size, spatial scale, and sample ratio.
func (sb *ScenarioBuilder) WithPooling(pooledSize int, spatialScale float64, sampleRatio int) *ScenarioBuilder {
	sb.scenario.PooledSize = pooledSize
	sb.scenario.SpatialScale = spatialScale
	sb.scenario.SampleRatio = sampleRatio
	return sb
}

// WithParallel toggles parallel ROI sharding.
func (sb *ScenarioBuilder) WithParallel(parallel bool) *ScenarioBuilder {
	sb.scenario.Parallel = parallel
	return sb
}

// WithIterations sets the number of measured iterations.
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of unmeasured warmup runs.
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured scenario.
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related scenarios.
type ScenarioSet struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scenarios   []Scenario `json:"scenarios"`
}

// DetectionHeadScenarios returns the standard workload set, sized after the
// detection heads the kernel typically serves.
func DetectionHeadScenarios() ScenarioSet {
	return ScenarioSet{
		Name:        "detection-heads",
		Description: "ROI pooling loads of common two-stage detector heads",
		Scenarios: []Scenario{
			NewScenarioBuilder("edge-light").
				WithFeatureMap(1, 64, 32, 32).
				WithROIs(16).
				WithPooling(7, 1.0/8.0, roialign.DefaultSampleRatio).
				Build(),
			NewScenarioBuilder("faster-rcnn-box-head").
				WithFeatureMap(1, 256, 50, 50).
				WithROIs(300).
				WithPooling(7, 1.0/16.0, 2).
				Build(),
			NewScenarioBuilder("mask-head").
				WithFeatureMap(1, 256, 50, 50).
				WithROIs(100).
				WithPooling(14, 1.0/16.0, 2).
				Build(),
			NewScenarioBuilder("faster-rcnn-box-head-parallel").
				WithFeatureMap(1, 256, 50, 50).
				WithROIs(300).
				WithPooling(7, 1.0/16.0, 2).
				WithParallel(true).
				Build(),
		},
	}
}

// SaveScenarioSet writes a scenario set to a JSON file.
func SaveScenarioSet(set ScenarioSet, path string) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return errors.Wrap(err, "benchmark: encoding scenario set")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "benchmark: writing %s", path)
	}
	return nil
}

// LoadScenarioSet reads a scenario set from a JSON file.
func LoadScenarioSet(path string) (ScenarioSet, error) {
	var set ScenarioSet
	data, err := os.ReadFile(path)
	if err != nil {
		return set, errors.Wrapf(err, "benchmark: reading %s", path)
	}
	if err := json.Unmarshal(data, &set); err != nil {
		return set, errors.Wrapf(err, "benchmark: decoding %s", path)
	}
	return set, nil
}

// Label returns a short human-readable description of the workload.
func (s Scenario) Label() string {
	return fmt.Sprintf("%s [%dx%dx%dx%d, %d rois, pooled %d]",
		s.Name, s.Batch, s.Channels, s.Height, s.Width, s.NumROI, s.PooledSize)
}
