package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/nvr-ai/go-roialign/benchmark"
)

func main() {
	var (
		scenarioFile = flag.String("scenarios", "", "Path to a scenario set JSON file (default: built-in detection-head set)")
		outputDir    = flag.String("output", "./benchmark_results", "Output directory for results")
		iterations   = flag.Int("iterations", 0, "Override the iteration count of every scenario")
		timeout      = flag.Duration("timeout", 30*time.Minute, "Benchmark timeout duration")
	)
	flag.Parse()

	set := benchmark.DetectionHeadScenarios()
	if *scenarioFile != "" {
		loaded, err := benchmark.LoadScenarioSet(*scenarioFile)
		if err != nil {
			log.Fatalf("Failed to load scenarios: %v", err)
		}
		set = loaded
	}
	if *iterations > 0 {
		for i := range set.Scenarios {
			set.Scenarios[i].Iterations = *iterations
		}
	}

	suite := benchmark.NewSuite(benchmark.NewSuiteArgs{OutputPath: *outputDir})
	suite.AddScenarioSet(set)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("Running scenario set %q (%d scenarios)\n", set.Name, len(set.Scenarios))
	results, err := suite.Run(ctx)
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	for _, m := range results {
		fmt.Printf("%-60s %10v/iter %12.0f rois/s gc=%d\n",
			m.Scenario.Label(), m.AvgPoolDuration.Truncate(time.Microsecond),
			m.ROIsPerSecond, m.MemoryStats.NumGC)
	}

	path, err := suite.SaveResults()
	if err != nil {
		log.Fatalf("Failed to save results: %v", err)
	}
	fmt.Printf("Results written to %s\n", path)
}
