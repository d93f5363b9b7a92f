package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func solidImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFeatureMapShapeAndPlanes(t *testing.T) {
	img := solidImage(20, 20, color.RGBA{R: 255, G: 0, B: 0, A: 255})

	fm, err := FeatureMap(img, FeatureMapConfig{
		Width:         8,
		Height:        8,
		Normalization: NormalizeZeroToOne,
	})
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{1, 3, 8, 8}, fm.Shape())

	data := fm.Float32s()
	channelSize := 8 * 8
	// Solid red: R plane near 1, G and B planes near 0.
	assert.InDelta(t, 1.0, data[0], 0.02)
	assert.InDelta(t, 0.0, data[channelSize], 0.02)
	assert.InDelta(t, 0.0, data[2*channelSize], 0.02)
}

func TestFeatureMapNormalizationModes(t *testing.T) {
	img := solidImage(4, 4, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	fm, err := FeatureMap(img, FeatureMapConfig{Width: 4, Height: 4, Normalization: NormalizeNone})
	require.NoError(t, err)
	assert.InDelta(t, 255.0, fm.Float32s()[0], 0.5)

	fm, err = FeatureMap(img, FeatureMapConfig{Width: 4, Height: 4, Normalization: NormalizeMinusOneToOne})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, fm.Float32s()[0], 0.02)

	fm, err = FeatureMap(img, ImageNetConfig(4, 4))
	require.NoError(t, err)
	// (1.0 - 0.485) / 0.229 for the red plane of a white image.
	assert.InDelta(t, (1.0-0.485)/0.229, fm.Float32s()[0], 0.05)
}

func TestFeatureMapBatch(t *testing.T) {
	imgs := []image.Image{
		solidImage(10, 10, color.RGBA{R: 255, A: 255}),
		solidImage(16, 12, color.RGBA{G: 255, A: 255}),
	}
	fm, err := FeatureMapBatch(imgs, FeatureMapConfig{Width: 6, Height: 6, Normalization: NormalizeZeroToOne})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3, 6, 6}, fm.Shape())

	data := fm.Float32s()
	imgSize := 3 * 6 * 6
	channelSize := 6 * 6
	// Second image is solid green: its G plane sits after its R plane.
	assert.InDelta(t, 0.0, data[imgSize], 0.02)
	assert.InDelta(t, 1.0, data[imgSize+channelSize], 0.02)
}

func TestFeatureMapErrors(t *testing.T) {
	img := solidImage(4, 4, color.RGBA{A: 255})

	_, err := FeatureMap(img, FeatureMapConfig{Width: 0, Height: 4})
	assert.Error(t, err)

	_, err = FeatureMap(img, FeatureMapConfig{
		Width: 4, Height: 4,
		Normalization: NormalizeStandardize,
		MeanValues:    []float32{0.5},
	})
	assert.Error(t, err)

	_, err = FeatureMapBatch(nil, FeatureMapConfig{Width: 4, Height: 4})
	assert.Error(t, err)
}
