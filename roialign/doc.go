// Package roialign - ROI Align feature pooling over NCHW feature maps.
//
// ROI Align computes a fixed-size feature summary for each region of
// interest drawn over a multi-channel 2-D feature map. Each ROI is mapped
// into feature-map coordinates, a grid of continuous sample points is
// generated inside each output bin, the feature map is bilinearly
// interpolated at every sample point, and the samples of a bin are reduced
// to a single value by taking their maximum.
//
// The kernel is a pure function: it reads the feature-map and ROI tensors,
// allocates a fresh output tensor, and carries no state between calls. It
// is the detection-head building block that turns variable-size region
// proposals (e.g. from an RPN in a Faster R-CNN style model) into the
// fixed-size inputs a classification head expects.
package roialign
