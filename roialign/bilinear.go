package roialign

import (
	"math"

	"github.com/chewxy/math32"
)

// Float covers the element types the kernel operates on.
type Float interface {
	~float32 | ~float64
}

// bilinearSample evaluates one channel plane of a feature map at the
// continuous coordinate (y, x) using 2-D bilinear interpolation.
//
// Coordinates are valid one unit beyond the map on every side: anything in
// [-1, 0) interpolates against an implicit zero border, and anything below
// -1.0 or above the last valid index returns exactly 0. The outside test
// uses the raw coordinate; clamping happens only afterwards, so the four
// neighbour lookups never leave the plane.
func bilinearSample[T Float](plane []T, height, width int, y, x T) T {
	if y < -1.0 || x < -1.0 || y > T(height-1) || x > T(width-1) {
		return 0
	}
	if y < 0 {
		y = 0
	}
	if x < 0 {
		x = 0
	}

	y0 := int(y)
	x0 := int(x)
	y1 := y0 + 1
	if y1 > height-1 {
		y1 = height - 1
	}
	x1 := x0 + 1
	if x1 > width-1 {
		x1 = width - 1
	}

	ly := y - T(y0)
	lx := x - T(x0)
	hy := 1 - ly
	hx := 1 - lx

	return hy*hx*plane[y0*width+x0] +
		hy*lx*plane[y0*width+x1] +
		ly*hx*plane[y1*width+x0] +
		ly*lx*plane[y1*width+x1]
}

// ceilCount rounds a positive bin extent up to a whole sample count.
func ceilCount[T Float](v T) int {
	switch f := any(v).(type) {
	case float32:
		return int(math32.Ceil(f))
	default:
		return int(math.Ceil(float64(v)))
	}
}
