package asciify

// FrameBuffer keeps the RGBA sample last drawn for every cell so unchanged
// cells can be skipped. Samples are stored in cell order, which keeps
// diffing independent of the orientation of the source buffer.
type FrameBuffer struct {
	pix   []byte
	stale bool
}

// NewFrameBuffer allocates a stale buffer for n cells.
func NewFrameBuffer(cells int) *FrameBuffer {
	return &FrameBuffer{pix: make([]byte, max(cells, 0)*4), stale: true}
}

// Reset resizes the buffer for n cells, reallocating only when the size
// changes, and marks it stale.
func (f *FrameBuffer) Reset(cells int) {
	n := max(cells, 0) * 4
	if len(f.pix) != n {
		f.pix = make([]byte, n)
	} else {
		clear(f.pix)
	}
	f.stale = true
}

// Invalidate marks the buffer stale so the next frame redraws every cell.
func (f *FrameBuffer) Invalidate() {
	f.stale = true
}

// Stale reports whether the next frame must redraw every cell.
func (f *FrameBuffer) Stale() bool {
	return f.stale
}

// Cells is the number of cells tracked.
func (f *FrameBuffer) Cells() int {
	return len(f.pix) / 4
}

// Update stores the sample for cell i and reports whether it differs
// from the stored one. Any channel differing counts as a change. A stale
// buffer reports every cell as changed.
func (f *FrameBuffer) Update(i int, r, g, b, a uint8) bool {
	p := f.pix[i*4 : i*4+4 : i*4+4]
	if !f.stale && p[0] == r && p[1] == g && p[2] == b && p[3] == a {
		return false
	}
	p[0], p[1], p[2], p[3] = r, g, b, a
	return true
}

// commit clears the stale flag once a full frame was drawn.
func (f *FrameBuffer) commit() {
	f.stale = false
}

// Sample returns the stored RGBA of cell i.
func (f *FrameBuffer) Sample(i int) (r, g, b, a uint8) {
	p := f.pix[i*4 : i*4+4 : i*4+4]
	return p[0], p[1], p[2], p[3]
}
