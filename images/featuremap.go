// Package images - Conversion of images into NCHW feature-map tensors.
package images

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// NormalizationType defines how pixel values are normalized.
type NormalizationType int

const (
	// NormalizeNone keeps pixel values as 0-255.
	NormalizeNone NormalizationType = iota
	// NormalizeZeroToOne scales pixel values to [0, 1].
	NormalizeZeroToOne
	// NormalizeMinusOneToOne scales pixel values to [-1, 1].
	NormalizeMinusOneToOne
	// NormalizeStandardize applies per-channel mean and std normalization.
	NormalizeStandardize
)

// FeatureMapConfig controls how an image is turned into a tensor.
type FeatureMapConfig struct {
	// Width and Height are the target spatial dimensions. Both must be
	// positive; the image is resized with Lanczos3 resampling.
	Width  int
	Height int
	// Normalization selects the pixel value transform.
	Normalization NormalizationType
	// MeanValues and StdValues are the per-channel (R, G, B) statistics for
	// NormalizeStandardize.
	MeanValues []float32
	StdValues  []float32
}

// ImageNetConfig returns the preprocessing used by ImageNet-trained
// backbones: standardized RGB at the given size.
func ImageNetConfig(width, height int) FeatureMapConfig {
	return FeatureMapConfig{
		Width:         width,
		Height:        height,
		Normalization: NormalizeStandardize,
		MeanValues:    []float32{0.485, 0.456, 0.406},
		StdValues:     []float32{0.229, 0.224, 0.225},
	}
}

// FeatureMap converts one image into a [1, 3, Height, Width] float32 tensor
// in CHW plane order, ready to be fed to a convolutional backbone or used
// directly as an ROI pooling input.
//
// Arguments:
//   - img: The source image.
//   - cfg: Target size and normalization.
//
// Returns:
//   - *tensor.Dense: The NCHW tensor.
//   - error: If the configuration is unusable.
func FeatureMap(img image.Image, cfg FeatureMapConfig) (*tensor.Dense, error) {
	data, err := chwPixels(img, cfg)
	if err != nil {
		return nil, err
	}
	return tensor.New(
		tensor.WithShape(1, 3, cfg.Height, cfg.Width),
		tensor.WithBacking(data),
	), nil
}

// FeatureMapBatch stacks several images along the batch axis into a
// [len(imgs), 3, Height, Width] float32 tensor.
func FeatureMapBatch(imgs []image.Image, cfg FeatureMapConfig) (*tensor.Dense, error) {
	if len(imgs) == 0 {
		return nil, errors.New("images: empty batch")
	}
	backing := make([]float32, 0, len(imgs)*3*cfg.Height*cfg.Width)
	for i, img := range imgs {
		data, err := chwPixels(img, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}
		backing = append(backing, data...)
	}
	return tensor.New(
		tensor.WithShape(len(imgs), 3, cfg.Height, cfg.Width),
		tensor.WithBacking(backing),
	), nil
}

// chwPixels resizes the image and lays its pixels out as three contiguous
// channel planes (R, then G, then B).
func chwPixels(img image.Image, cfg FeatureMapConfig) ([]float32, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.Errorf("images: invalid target size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Normalization == NormalizeStandardize {
		if len(cfg.MeanValues) != 3 || len(cfg.StdValues) != 3 {
			return nil, errors.New("images: standardization needs 3 mean and 3 std values")
		}
	}

	resized := resize.Resize(uint(cfg.Width), uint(cfg.Height), img, resize.Lanczos3)

	channelSize := cfg.Width * cfg.Height
	data := make([]float32, 3*channelSize)
	red := data[0:channelSize]
	green := data[channelSize : 2*channelSize]
	blue := data[2*channelSize : 3*channelSize]

	bounds := resized.Bounds()
	i := 0
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			red[i] = normalize(float32(r>>8), 0, cfg)
			green[i] = normalize(float32(g>>8), 1, cfg)
			blue[i] = normalize(float32(b>>8), 2, cfg)
			i++
		}
	}
	return data, nil
}

func normalize(v float32, channel int, cfg FeatureMapConfig) float32 {
	switch cfg.Normalization {
	case NormalizeZeroToOne:
		return v / 255.0
	case NormalizeMinusOneToOne:
		return v/127.5 - 1.0
	case NormalizeStandardize:
		return (v/255.0 - cfg.MeanValues[channel]) / cfg.StdValues[channel]
	default:
		return v
	}
}
