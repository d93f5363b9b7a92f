package roialign

// roiGeometry is one ROI expressed in feature-map units: the scaled start
// corner and the per-bin extents for the configured pooled grid.
type roiGeometry[T Float] struct {
	startH, startW T
	binH, binW     T
}

// mapROI converts a raw (wStart, hStart, wEnd, hEnd) box from original-image
// coordinates into feature-map geometry.
//
// Malformed boxes are forced to a 1x1 feature-map extent: the extent is
// floored at 1.0 per axis, the start corner is kept as given (even if it is
// negative), so a degenerate ROI still produces defined output instead of
// zero-width bins.
func mapROI[T Float](box []T, scale T, pooledH, pooledW int) roiGeometry[T] {
	startW := box[0] * scale
	startH := box[1] * scale
	endW := box[2] * scale
	endH := box[3] * scale

	roiH := endH - startH
	if roiH < 1 {
		roiH = 1
	}
	roiW := endW - startW
	if roiW < 1 {
		roiW = 1
	}

	return roiGeometry[T]{
		startH: startH,
		startW: startW,
		binH:   roiH / T(pooledH),
		binW:   roiW / T(pooledW),
	}
}

// sampleGrid decides how many interpolation points a bin gets along each
// axis. A positive ratio is used as-is for both axes; otherwise the count
// adapts to the bin size, one sample per feature-map unit rounded up. The
// result is never below 1 per axis.
func sampleGrid[T Float](binH, binW T, sampleRatio int) (gridH, gridW int) {
	if sampleRatio > 0 {
		return sampleRatio, sampleRatio
	}
	gridH = ceilCount(binH)
	if gridH < 1 {
		gridH = 1
	}
	gridW = ceilCount(binW)
	if gridW < 1 {
		gridW = 1
	}
	return gridH, gridW
}
