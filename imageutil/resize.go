package imageutil

import (
	"image"

	"golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea is the default for shrinking a frame to the grid.
	// It is implemented with Catmull-Rom, whose kernel x/image widens to
	// the source footprint when downscaling so every covered pixel is
	// averaged in.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality.
	InterpolationNearest
)

func scalerFor(interp Interpolation) draw.Scaler {
	switch interp {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}

// Resize scales any image to the specified dimensions using the given
// interpolation method.
func Resize(img image.Image, width, height int, interp Interpolation) *RGBAImage {
	dst := NewRGBAImage(width, height)
	ResizeInto(dst, img, interp)
	return dst
}

// ResizeInto scales src to fill dst exactly, reusing dst's pixels. It is
// the allocation-free variant of Resize for per-frame use.
func ResizeInto(dst *RGBAImage, src image.Image, interp Interpolation) {
	scalerFor(interp).Scale(dst.RGBA, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}

// FitSize returns the largest width x height with the aspect ratio of
// src that fits in maxWidth x maxHeight.
func FitSize(src image.Rectangle, maxWidth, maxHeight int) (width, height int) {
	sw, sh := max(src.Dx(), 1), max(src.Dy(), 1)
	if maxWidth*sh <= maxHeight*sw {
		return maxWidth, max(1, maxWidth*sh/sw)
	}
	return max(1, maxHeight*sw/sh), maxHeight
}
