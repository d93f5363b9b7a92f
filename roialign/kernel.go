package roialign

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Apply runs ROI Align over a feature map and a batch of ROIs.
//
// Arguments:
//   - data: Rank-4 dense tensor [batch, channel, height, width].
//   - rois: Rank-3 dense tensor [numImg, numROI, 4] whose trailing axis is
//     (wStart, hStart, wEnd, hEnd) in original-image coordinates. Must share
//     a float dtype with data, and numImg must not exceed data's batch size
//     (ROI row n is pooled against feature-map image n).
//   - cfg: Pooling configuration.
//
// Both tensors are read through their raw row-major backing, so they must
// own contiguous storage (as built by tensor.New with tensor.WithBacking).
// Sliced or transposed views are not supported; materialize them first.
//
// Returns:
//   - *tensor.Dense: Freshly allocated rank-5 tensor
//     [numImg, numROI, channel, PooledHeight, PooledWidth], same dtype as
//     the inputs.
//   - error: ErrConfiguration or ErrShapeMismatch for structural problems;
//     both fail the call before any output is allocated.
//
// Repeated calls with identical inputs produce bit-identical output,
// regardless of Config.Parallel.
func Apply(data, rois *tensor.Dense, cfg Config) (*tensor.Dense, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := validateInputs(data, rois); err != nil {
		return nil, err
	}

	shape := data.Shape()
	channels, height, width := shape[1], shape[2], shape[3]
	roiShape := rois.Shape()
	numImg, numROI := roiShape[0], roiShape[1]

	outShape := tensor.WithShape(numImg, numROI, channels, cfg.PooledHeight, cfg.PooledWidth)
	switch data.Dtype() {
	case tensor.Float32:
		out := roiAlign(data.Float32s(), channels, height, width, rois.Float32s(), numImg, numROI, cfg)
		return tensor.New(outShape, tensor.WithBacking(out)), nil
	default:
		out := roiAlign(data.Float64s(), channels, height, width, rois.Float64s(), numImg, numROI, cfg)
		return tensor.New(outShape, tensor.WithBacking(out)), nil
	}
}

func validateInputs(data, rois *tensor.Dense) error {
	if data.Dims() != 4 {
		return errors.Wrapf(ErrShapeMismatch,
			"feature map must be rank 4 [batch, channel, height, width], got rank %d", data.Dims())
	}
	if rois.Dims() != 3 {
		return errors.Wrapf(ErrShapeMismatch,
			"roi batch must be rank 3 [num_img, num_roi, 4], got rank %d", rois.Dims())
	}
	roiShape := rois.Shape()
	if roiShape[2] != 4 {
		return errors.Wrapf(ErrShapeMismatch,
			"roi boxes need 4 coordinates, got %d", roiShape[2])
	}
	if dt := data.Dtype(); dt != tensor.Float32 && dt != tensor.Float64 {
		return errors.Wrapf(ErrShapeMismatch, "unsupported dtype %v", dt)
	}
	if data.Dtype() != rois.Dtype() {
		return errors.Wrapf(ErrShapeMismatch,
			"feature map dtype %v does not match roi dtype %v", data.Dtype(), rois.Dtype())
	}
	if batch := data.Shape()[0]; roiShape[0] > batch {
		return errors.Wrapf(ErrShapeMismatch,
			"roi batch references %d images but feature map holds %d", roiShape[0], batch)
	}
	return nil
}

// roiAlign is the dtype-generic core. The output element for every
// (n, i, c, ph, pw) coordinate depends only on the inputs, so the ROIs can
// be processed in any order or concurrently without synchronization beyond
// disjoint output slices.
func roiAlign[T Float](feat []T, channels, height, width int, rois []T, numImg, numROI int, cfg Config) []T {
	out := make([]T, numImg*numROI*channels*cfg.PooledHeight*cfg.PooledWidth)
	total := numImg * numROI

	if !cfg.Parallel || total < 2 {
		for ri := 0; ri < total; ri++ {
			alignROI(feat, channels, height, width, rois, numROI, ri, cfg, out)
		}
		return out
	}

	workers := min(runtime.GOMAXPROCS(0), total)
	chunk := (total + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < total; lo += chunk {
		hi := min(lo+chunk, total)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for ri := lo; ri < hi; ri++ {
				alignROI(feat, channels, height, width, rois, numROI, ri, cfg, out)
			}
		}(lo, hi)
	}
	wg.Wait()
	return out
}

// alignROI pools one ROI (flat index ri = n*numROI + i) across all channels
// and writes its [channel, pooledH, pooledW] block of the output.
func alignROI[T Float](feat []T, channels, height, width int, rois []T, numROI, ri int, cfg Config, out []T) {
	pooledH, pooledW := cfg.PooledHeight, cfg.PooledWidth

	box := rois[ri*4 : ri*4+4]
	geo := mapROI(box, T(cfg.SpatialScale), pooledH, pooledW)
	gridH, gridW := sampleGrid(geo.binH, geo.binW, cfg.SampleRatio)

	// ROI row n is pooled against feature-map image n.
	n := ri / numROI
	plane := height * width
	imgOff := n * channels * plane

	for c := 0; c < channels; c++ {
		src := feat[imgOff+c*plane : imgOff+(c+1)*plane]
		for ph := 0; ph < pooledH; ph++ {
			startH := geo.startH + T(ph)*geo.binH
			for pw := 0; pw < pooledW; pw++ {
				startW := geo.startW + T(pw)*geo.binW

				// Centered sampling: grid point r lands at
				// (r+1)*bin/(grid+1) into the bin, staggered away from
				// both bin edges. The bin value is the max over the grid.
				var best T
				for rh := 0; rh < gridH; rh++ {
					y := startH + T(rh+1)*geo.binH/T(gridH+1)
					for rw := 0; rw < gridW; rw++ {
						x := startW + T(rw+1)*geo.binW/T(gridW+1)
						v := bilinearSample(src, height, width, y, x)
						if (rh == 0 && rw == 0) || v > best {
							best = v
						}
					}
				}
				out[((ri*channels+c)*pooledH+ph)*pooledW+pw] = best
			}
		}
	}
}
