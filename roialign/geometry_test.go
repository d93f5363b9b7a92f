package roialign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapROIScales(t *testing.T) {
	// Box in original-image coordinates; stride-4 network, scale 0.25.
	box := []float32{4, 8, 12, 16} // (wStart, hStart, wEnd, hEnd)
	geo := mapROI(box, 0.25, 2, 2)

	assert.InDelta(t, 2.0, geo.startH, 1e-6)
	assert.InDelta(t, 1.0, geo.startW, 1e-6)
	assert.InDelta(t, 1.0, geo.binH, 1e-6)
	assert.InDelta(t, 1.0, geo.binW, 1e-6)
}

func TestMapROIFloorsDegenerateExtent(t *testing.T) {
	// Zero-extent box: the extent floors at 1.0 per axis.
	geo := mapROI([]float32{2, 2, 2, 2}, 1.0, 2, 2)
	assert.InDelta(t, 0.5, geo.binH, 1e-6)
	assert.InDelta(t, 0.5, geo.binW, 1e-6)

	// Inverted box: the extent floors at 1.0, the start is kept as given.
	geo = mapROI([]float32{5, 6, 1, 1}, 1.0, 1, 1)
	assert.InDelta(t, 6.0, geo.startH, 1e-6)
	assert.InDelta(t, 5.0, geo.startW, 1e-6)
	assert.InDelta(t, 1.0, geo.binH, 1e-6)
	assert.InDelta(t, 1.0, geo.binW, 1e-6)
}

func TestMapROIKeepsNegativeStart(t *testing.T) {
	geo := mapROI([]float32{-8, -4, 8, 4}, 0.5, 2, 2)
	assert.InDelta(t, -2.0, geo.startH, 1e-6)
	assert.InDelta(t, -4.0, geo.startW, 1e-6)
	assert.InDelta(t, 2.0, geo.binH, 1e-6)
	assert.InDelta(t, 4.0, geo.binW, 1e-6)
}

func TestSampleGridFixedRatio(t *testing.T) {
	for _, bin := range []float32{0.1, 1.0, 7.3} {
		gridH, gridW := sampleGrid(bin, bin*2, 3)
		assert.Equal(t, 3, gridH)
		assert.Equal(t, 3, gridW)
	}
}

func TestSampleGridAdaptive(t *testing.T) {
	tests := []struct {
		binH, binW   float32
		wantH, wantW int
		sampleRatio  int
	}{
		{1.5, 2.5, 2, 3, -1},
		{2.0, 2.0, 2, 2, -1},
		{0.3, 0.9, 1, 1, 0}, // any non-positive ratio is adaptive
		{4.0, 0.5, 4, 1, -1},
	}
	for _, tc := range tests {
		gridH, gridW := sampleGrid(tc.binH, tc.binW, tc.sampleRatio)
		assert.Equal(t, tc.wantH, gridH, "binH %v", tc.binH)
		assert.Equal(t, tc.wantW, gridW, "binW %v", tc.binW)
		assert.GreaterOrEqual(t, gridH, 1)
		assert.GreaterOrEqual(t, gridW, 1)
	}
}
