package asciify

import "errors"

var (
	// ErrNilSurface is returned by New when no drawing surface is given.
	ErrNilSurface = errors.New("asciify: nil surface")

	// ErrBufferSize is returned by Rasterize when the pixel buffer length
	// does not equal rows*columns*4.
	ErrBufferSize = errors.New("asciify: pixel buffer size does not match grid")

	// ErrNoGrid is returned when rasterizing before Resize produced at
	// least one cell.
	ErrNoGrid = errors.New("asciify: empty grid, call Resize first")

	// ErrNilSource is returned by RasterizeImage and RasterizeRenderer
	// when the pixel source is nil.
	ErrNilSource = errors.New("asciify: nil pixel source")
)
