package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"math/rand"
	"time"

	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-roialign/common"
	"github.com/nvr-ai/go-roialign/images"
	"github.com/nvr-ai/go-roialign/profiler"
	"github.com/nvr-ai/go-roialign/roialign"
	"github.com/nvr-ai/go-roialign/util"
)

func main() {
	var (
		imageDir     = flag.String("images", "", "Directory of images to pool from (synthetic feature map when empty)")
		channels     = flag.Int("channels", 64, "Feature map channels for the synthetic input")
		mapSize      = flag.Int("map-size", 50, "Feature map height/width for the synthetic input")
		numROI       = flag.Int("rois", 32, "Number of ROIs per image")
		pooledSize   = flag.Int("pooled-size", 7, "Pooled output size per axis")
		spatialScale = flag.Float64("spatial-scale", 1.0/16.0, "Feature-map units per original-image unit")
		sampleRatio  = flag.Int("sample-ratio", roialign.DefaultSampleRatio, "Sample points per bin axis (<=0: adaptive)")
		runs         = flag.Int("runs", 20, "Pooling passes per mode")
		seed         = flag.Int64("seed", 1, "Seed for synthetic inputs")
	)
	flag.Parse()

	data, err := buildFeatureMap(*imageDir, *channels, *mapSize, *seed)
	if err != nil {
		log.Fatalf("Failed to build feature map: %v", err)
	}
	shape := data.Shape()
	fmt.Printf("Feature map: %v\n", shape)

	rois, err := buildROIs(shape[0], *numROI, shape[2], shape[3], *spatialScale, *seed)
	if err != nil {
		log.Fatalf("Failed to build ROIs: %v", err)
	}
	fmt.Printf("ROI batch:   %v\n", rois.Shape())

	cfg := roialign.Square(*pooledSize, *spatialScale, *sampleRatio)

	prof := profiler.NewRuntimeProfiler(profiler.ProfilingOptions{
		ReportInterval: 2 * time.Second,
	})
	prof.Start()
	defer prof.Stop()

	var out *tensor.Dense
	for _, parallel := range []bool{false, true} {
		cfg.Parallel = parallel
		name := "pooling_serial"
		if parallel {
			name = "pooling_parallel"
		}
		for i := 0; i < *runs; i++ {
			stop := prof.StartOperation(name)
			out, err = roialign.Apply(data, rois, cfg)
			stop()
			if err != nil {
				log.Fatalf("Pooling failed: %v", err)
			}
		}
		if stats, ok := prof.OperationStats(name); ok {
			fmt.Printf("%-17s avg=%v min=%v max=%v\n", name+":",
				stats.Average.Truncate(time.Microsecond),
				stats.Min.Truncate(time.Microsecond),
				stats.Max.Truncate(time.Microsecond))
		}
	}

	fmt.Printf("Output:      %v (%d values)\n", out.Shape(), out.Shape().TotalSize())
}

// buildFeatureMap loads a directory of images as NCHW input, or fills a
// synthetic feature map when no directory is given.
func buildFeatureMap(dir string, channels, size int, seed int64) (*tensor.Dense, error) {
	if dir != "" {
		files, err := util.LoadDirectoryImageFiles(dir)
		if err != nil {
			return nil, err
		}
		imgs := make([]image.Image, 0, len(files))
		for _, f := range files {
			imgs = append(imgs, f.Image)
		}
		return images.FeatureMapBatch(imgs, images.FeatureMapConfig{
			Width:         size,
			Height:        size,
			Normalization: images.NormalizeZeroToOne,
		})
	}

	rng := rand.New(rand.NewSource(seed))
	backing := make([]float32, channels*size*size)
	for i := range backing {
		backing[i] = rng.Float32()
	}
	return tensor.New(tensor.WithShape(1, channels, size, size), tensor.WithBacking(backing)), nil
}

// buildROIs generates random box proposals in original-image coordinates
// and packs them through the common box type.
func buildROIs(numImg, numROI, mapH, mapW int, spatialScale float64, seed int64) (*tensor.Dense, error) {
	rng := rand.New(rand.NewSource(seed + 1))
	imgW := float32(float64(mapW) / spatialScale)
	imgH := float32(float64(mapH) / spatialScale)

	proposals := make([][]common.BoundingBox, numImg)
	for n := range proposals {
		boxes := make([]common.BoundingBox, numROI)
		for i := range boxes {
			x1 := rng.Float32() * imgW * 0.8
			y1 := rng.Float32() * imgH * 0.8
			boxes[i] = common.BoundingBox{
				Label:      "proposal",
				Confidence: rng.Float32(),
				X1:         x1,
				Y1:         y1,
				X2:         x1 + rng.Float32()*imgW*0.4,
				Y2:         y1 + rng.Float32()*imgH*0.4,
			}
		}
		proposals[n] = boxes
	}
	return common.ROIBatchTensor(proposals, tensor.Float32)
}
