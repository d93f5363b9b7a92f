package benchmark

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-roialign/roialign"
)

// inputSeed keeps synthetic feature maps and ROIs identical across runs so
// results stay comparable between machines and revisions.
const inputSeed = 42

// Suite manages and executes pooling benchmark scenarios.
type Suite struct {
	scenarios []Scenario
	outputDir string
	mu        sync.RWMutex
	results   []PerformanceMetrics
}

// NewSuiteArgs represents the arguments for creating a new benchmark suite.
type NewSuiteArgs struct {
	OutputPath string `json:"outputPath" yaml:"outputPath"`
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - args: The arguments for creating a new benchmark suite.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(args NewSuiteArgs) *Suite {
	return &Suite{
		outputDir: args.OutputPath,
		scenarios: make([]Scenario, 0),
		results:   make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a scenario to the benchmark suite.
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddScenarioSet adds every scenario of a set to the suite.
func (bs *Suite) AddScenarioSet(set ScenarioSet) {
	for _, s := range set.Scenarios {
		bs.AddScenario(s)
	}
}

// Run executes all registered scenarios in order, stopping early if the
// context is cancelled.
func (bs *Suite) Run(ctx context.Context) ([]PerformanceMetrics, error) {
	bs.mu.RLock()
	scenarios := make([]Scenario, len(bs.scenarios))
	copy(scenarios, bs.scenarios)
	bs.mu.RUnlock()

	for _, scenario := range scenarios {
		select {
		case <-ctx.Done():
			return bs.Results(), ctx.Err()
		default:
		}
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			return bs.Results(), err
		}
		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()
	}
	return bs.Results(), nil
}

// RunScenario executes a single benchmark scenario.
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	data, rois, err := syntheticInputs(scenario)
	if err != nil {
		return nil, err
	}
	cfg := scenario.Config()

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}

	// Warmup runs are unmeasured.
	for i := 0; i < scenario.WarmupRuns; i++ {
		if _, err := roialign.Apply(data, rois, cfg); err != nil {
			return nil, errors.Wrap(err, "benchmark: warmup run failed")
		}
	}

	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	failures := 0
	startTime := time.Now()
	for i := 0; i < scenario.Iterations; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		out, err := roialign.Apply(data, rois, cfg)
		if err != nil {
			failures++
			continue
		}
		metrics.OutputElements = out.Shape().TotalSize()
	}
	totalDuration := time.Since(startTime)

	var endMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&endMem)

	metrics.TotalDuration = totalDuration
	metrics.AvgPoolDuration = totalDuration / time.Duration(scenario.Iterations)
	metrics.ROIsPerSecond = float64(scenario.Batch*scenario.NumROI*scenario.Iterations) / totalDuration.Seconds()
	metrics.ErrorRate = float64(failures) / float64(scenario.Iterations)
	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
		HeapSysBytes:    endMem.HeapSys,
	}
	metrics.CPUStats = CPUMetrics{NumCPU: runtime.NumCPU()}

	return metrics, nil
}

// Results returns a copy of the metrics collected so far.
func (bs *Suite) Results() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	out := make([]PerformanceMetrics, len(bs.results))
	copy(out, bs.results)
	return out
}

// SaveResults writes the collected metrics as a JSON report under the
// suite's output directory.
func (bs *Suite) SaveResults() (string, error) {
	results := bs.Results()
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "benchmark: encoding results")
	}

	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "benchmark: creating %s", bs.outputDir)
	}
	path := filepath.Join(bs.outputDir,
		"roialign-"+time.Now().Format("20060102-150405")+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "benchmark: writing %s", path)
	}
	return path, nil
}

// syntheticInputs builds a deterministic pseudo-random feature map and ROI
// batch for the scenario. Roughly a third of the boxes extend past the map
// so the out-of-range sampling path is part of the measurement.
func syntheticInputs(s Scenario) (*tensor.Dense, *tensor.Dense, error) {
	if s.Batch <= 0 || s.Channels <= 0 || s.Height <= 0 || s.Width <= 0 || s.NumROI <= 0 {
		return nil, nil, errors.Errorf("benchmark: scenario %q has empty dimensions", s.Name)
	}
	if s.Iterations <= 0 {
		return nil, nil, errors.Errorf("benchmark: scenario %q has no iterations", s.Name)
	}
	if s.SpatialScale <= 0 {
		return nil, nil, errors.Errorf("benchmark: scenario %q has non-positive spatial scale %v", s.Name, s.SpatialScale)
	}

	rng := rand.New(rand.NewSource(inputSeed))

	feat := make([]float32, s.Batch*s.Channels*s.Height*s.Width)
	for i := range feat {
		feat[i] = rng.Float32()*2 - 1
	}
	data := tensor.New(
		tensor.WithShape(s.Batch, s.Channels, s.Height, s.Width),
		tensor.WithBacking(feat),
	)

	imgW := float32(s.Width) / float32(s.SpatialScale)
	imgH := float32(s.Height) / float32(s.SpatialScale)
	boxes := make([]float32, 0, s.Batch*s.NumROI*4)
	for i := 0; i < s.Batch*s.NumROI; i++ {
		x1 := rng.Float32() * imgW * 0.8
		y1 := rng.Float32() * imgH * 0.8
		w := rng.Float32() * imgW * 0.4
		h := rng.Float32() * imgH * 0.4
		boxes = append(boxes, x1, y1, x1+w, y1+h)
	}
	rois := tensor.New(
		tensor.WithShape(s.Batch, s.NumROI, 4),
		tensor.WithBacking(boxes),
	)
	return data, rois, nil
}
