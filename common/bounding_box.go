// Package common - Shared detection types bridging box proposals and tensors.
package common

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// BoundingBox represents a region proposal with its label, confidence, and
// corner coordinates in original-image space.
type BoundingBox struct {
	Label          string
	Confidence     float32
	X1, Y1, X2, Y2 float32
}

func (b *BoundingBox) String() string {
	return fmt.Sprintf("Object %s (confidence %f): (%f, %f), (%f, %f)",
		b.Label, b.Confidence, b.X1, b.Y1, b.X2, b.Y2)
}

// ToRect converts the bounding box to an image.Rectangle with canonicalized
// integer coordinates.
func (b *BoundingBox) ToRect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)).Canon()
}

// Intersection calculates the overlap area between two bounding boxes in
// squared pixels.
func (b *BoundingBox) Intersection(other *BoundingBox) float32 {
	w := minf(b.X2, other.X2) - maxf(b.X1, other.X1)
	h := minf(b.Y2, other.Y2) - maxf(b.Y1, other.Y1)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Union calculates the combined area of two bounding boxes in squared
// pixels.
func (b *BoundingBox) Union(other *BoundingBox) float32 {
	area1 := (b.X2 - b.X1) * (b.Y2 - b.Y1)
	area2 := (other.X2 - other.X1) * (other.Y2 - other.Y1)
	return area1 + area2 - b.Intersection(other)
}

// IOU calculates the Intersection over Union between two bounding boxes,
// the overlap metric used by Non-Maximum Suppression.
func (b *BoundingBox) IOU(other *BoundingBox) float32 {
	union := b.Union(other)
	if union == 0 {
		return 0
	}
	return b.Intersection(other) / union
}

// ROIBatchTensor packs per-image box proposals into the rank-3
// [numImg, numROI, 4] tensor an ROI pooling stage consumes. The trailing
// axis is ordered (wStart, hStart, wEnd, hEnd).
//
// Arguments:
//   - proposals: One slice of boxes per image. Every image must carry the
//     same number of boxes, since the ROI axis is dense.
//   - dt: tensor.Float32 or tensor.Float64.
//
// Returns:
//   - *tensor.Dense: The packed ROI batch.
//   - error: If proposals is empty, ragged, or dt is not a float dtype.
func ROIBatchTensor(proposals [][]BoundingBox, dt tensor.Dtype) (*tensor.Dense, error) {
	if len(proposals) == 0 || len(proposals[0]) == 0 {
		return nil, errors.New("common: no box proposals to pack")
	}
	numROI := len(proposals[0])
	for i, boxes := range proposals {
		if len(boxes) != numROI {
			return nil, errors.Errorf(
				"common: ragged proposals, image 0 has %d boxes but image %d has %d",
				numROI, i, len(boxes))
		}
	}

	numImg := len(proposals)
	switch dt {
	case tensor.Float32:
		backing := make([]float32, 0, numImg*numROI*4)
		for _, boxes := range proposals {
			for _, b := range boxes {
				backing = append(backing, b.X1, b.Y1, b.X2, b.Y2)
			}
		}
		return tensor.New(tensor.WithShape(numImg, numROI, 4), tensor.WithBacking(backing)), nil
	case tensor.Float64:
		backing := make([]float64, 0, numImg*numROI*4)
		for _, boxes := range proposals {
			for _, b := range boxes {
				backing = append(backing,
					float64(b.X1), float64(b.Y1), float64(b.X2), float64(b.Y2))
			}
		}
		return tensor.New(tensor.WithShape(numImg, numROI, 4), tensor.WithBacking(backing)), nil
	default:
		return nil, errors.Errorf("common: unsupported roi dtype %v", dt)
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
