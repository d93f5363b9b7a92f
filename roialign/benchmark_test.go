package roialign

import (
	"fmt"
	"testing"

	"gorgonia.org/tensor"
)

// Benchmark shapes mirror common detection-head workloads: a stride-16
// backbone feature map pooled to 7x7 for a Faster R-CNN style classifier.
func benchInputs(channels, size, numROI int) (*tensor.Dense, *tensor.Dense) {
	backing := make([]float32, channels*size*size)
	for i := range backing {
		backing[i] = float32(i%251) * 0.017
	}
	data := tensor.New(tensor.WithShape(1, channels, size, size), tensor.WithBacking(backing))

	boxes := make([]float32, 0, numROI*4)
	for i := 0; i < numROI; i++ {
		f := float32(i * 13 % 200)
		boxes = append(boxes, f, f*0.5, f+120, f*0.5+90)
	}
	rois := tensor.New(tensor.WithShape(1, numROI, 4), tensor.WithBacking(boxes))
	return data, rois
}

func BenchmarkApply(b *testing.B) {
	cases := []struct {
		channels, size, numROI int
	}{
		{64, 32, 16},
		{256, 50, 64},
		{256, 50, 300},
	}
	for _, tc := range cases {
		data, rois := benchInputs(tc.channels, tc.size, tc.numROI)
		for _, parallel := range []bool{false, true} {
			cfg := Square(7, 0.0625, DefaultSampleRatio)
			cfg.Parallel = parallel
			name := fmt.Sprintf("c%d_%dx%d_roi%d_parallel=%t",
				tc.channels, tc.size, tc.size, tc.numROI, parallel)
			b.Run(name, func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := Apply(data, rois, cfg); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkApplyFixedSampleRatio(b *testing.B) {
	data, rois := benchInputs(256, 50, 64)
	cfg := Square(7, 0.0625, 2)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Apply(data, rois, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
