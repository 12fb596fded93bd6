package asciify

// Renderer is an external pixel producer, such as a 3D scene renderer,
// that can render at exactly the character grid resolution.
type Renderer interface {
	// SetSize asks the renderer to render columns x rows pixels, one per
	// character cell.
	SetSize(columns, rows int)
	// ReadPixels fills dst (columns*rows*4 bytes, RGBA, stride columns*4)
	// with the last rendered frame. bottomUp reports that row 0 of dst is
	// the bottom row, as is usual for GPU framebuffers.
	ReadPixels(dst []byte) (bottomUp bool, err error)
}
