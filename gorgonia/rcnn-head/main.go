// Command rcnn-head runs a miniature two-stage detection pipeline: a small
// convolutional backbone built with gorgonia produces a feature map, and
// ROI Align pools a set of region proposals from it, the way the box head
// of a Faster R-CNN style model consumes backbone features.
package main

import (
	"fmt"
	"math/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-roialign/roialign"
)

var (
	imgSize  = 64
	channels = 3
	// One conv + one 2x2 max pool: total stride 2.
	backboneStride = 2
	pooledSize     = 7
)

func main() {
	g := G.NewGraph()

	input := G.NewTensor(g, tensor.Float32, 4,
		G.WithShape(1, channels, imgSize, imgSize), G.WithName("input"))
	w0 := G.NewTensor(g, tensor.Float32, 4,
		G.WithShape(8, channels, 3, 3), G.WithName("w0"), G.WithInit(G.GlorotN(1.0)))

	conv, err := G.Conv2d(input, w0, tensor.Shape{3, 3}, []int{1, 1}, []int{1, 1}, []int{1, 1})
	if err != nil {
		fmt.Printf("Can't build backbone conv due the error: %s\n", err.Error())
		return
	}
	act := G.Must(G.Rectify(conv))
	feat := G.Must(G.MaxPool2D(act, tensor.Shape{2, 2}, []int{0, 0}, []int{2, 2}))

	rng := rand.New(rand.NewSource(7))
	backing := make([]float32, channels*imgSize*imgSize)
	for i := range backing {
		backing[i] = rng.Float32()
	}
	img := tensor.New(
		tensor.WithShape(1, channels, imgSize, imgSize),
		tensor.WithBacking(backing),
	)
	if err := G.Let(input, img); err != nil {
		fmt.Printf("Can't let input = image due the error: %s\n", err.Error())
		return
	}

	tm := G.NewTapeMachine(g)
	defer tm.Close()
	if err := tm.RunAll(); err != nil {
		fmt.Printf("Can't run tape machine due the error: %s\n", err.Error())
		return
	}

	featureMap, ok := feat.Value().(*tensor.Dense)
	if !ok {
		fmt.Println("Backbone output is not a dense tensor")
		return
	}
	fmt.Printf("Backbone feature map: %v\n", featureMap.Shape())

	// Region proposals in original-image coordinates.
	rois := tensor.New(tensor.WithShape(1, 3, 4), tensor.WithBacking([]float32{
		4, 4, 28, 36,
		10, 20, 60, 60,
		0, 0, 63, 63,
	}))

	cfg := roialign.Square(pooledSize, 1.0/float64(backboneStride), roialign.DefaultSampleRatio)
	pooled, err := roialign.Apply(featureMap, rois, cfg)
	if err != nil {
		fmt.Printf("Can't pool proposals due the error: %s\n", err.Error())
		return
	}

	fmt.Printf("Pooled head input:    %v\n", pooled.Shape())
	vals := pooled.Float32s()
	fmt.Printf("First pooled values:  %.4f %.4f %.4f %.4f\n", vals[0], vals[1], vals[2], vals[3])
}
