package roialign

import (
	"github.com/pkg/errors"
)

// DefaultSampleRatio selects adaptive sampling: the number of sample points
// per bin axis is derived from the bin size instead of being fixed.
const DefaultSampleRatio = -1

// Errors returned for structurally invalid inputs. Wrapped details are
// attached with github.com/pkg/errors, so callers can match with errors.Is.
var (
	// ErrConfiguration indicates a Config the kernel cannot define bins for.
	ErrConfiguration = errors.New("roialign: invalid configuration")
	// ErrShapeMismatch indicates input tensors of the wrong rank, layout,
	// or dtype.
	ErrShapeMismatch = errors.New("roialign: shape mismatch")
)

// Config holds the pooling parameters for one ROI Align invocation.
type Config struct {
	// PooledHeight and PooledWidth are the output grid dimensions per ROI.
	// Both must be positive.
	PooledHeight int
	PooledWidth  int

	// SpatialScale converts ROI coordinates from original-image space into
	// feature-map space. It equals the reciprocal of the network's total
	// stride and is expected to lie in (0, 1]. Values outside that range
	// are accepted arithmetically and left to the caller to avoid.
	SpatialScale float64

	// SampleRatio is the number of interpolation points per bin per axis.
	// Any value <= 0 (conventionally DefaultSampleRatio) selects adaptive
	// sampling with ceil(bin size) points per axis.
	SampleRatio int

	// Parallel shards the ROIs across GOMAXPROCS goroutines. Output is
	// bit-identical to the serial path.
	Parallel bool
}

// Square builds a Config with an equal pooled height and width, the common
// single-integer pooled size used by detection heads (e.g. 7x7 or 14x14).
//
// Arguments:
//   - size: The pooled output size for both axes.
//   - spatialScale: Ratio of feature-map size to original-image size.
//   - sampleRatio: Sample points per bin axis, or DefaultSampleRatio.
//
// Returns:
//   - Config: The assembled configuration.
func Square(size int, spatialScale float64, sampleRatio int) Config {
	return Config{
		PooledHeight: size,
		PooledWidth:  size,
		SpatialScale: spatialScale,
		SampleRatio:  sampleRatio,
	}
}

func (c Config) validate() error {
	if c.PooledHeight <= 0 || c.PooledWidth <= 0 {
		return errors.Wrapf(ErrConfiguration,
			"pooled size must be positive, got %dx%d", c.PooledHeight, c.PooledWidth)
	}
	return nil
}
