package asciify

import (
	"image"
	"image/color"
	"testing"
)

// recordingSurface counts every draw call made against it.
type recordingSurface struct {
	*ImageSurface
	fills  int
	rects  int
	glyphs int
	chars  []string
	tints  []color.NRGBA
}

func newRecordingSurface(width, height int) *recordingSurface {
	return &recordingSurface{ImageSurface: NewImageSurface(width, height)}
}

func (s *recordingSurface) Fill(c color.NRGBA) {
	s.fills++
	s.ImageSurface.Fill(c)
}

func (s *recordingSurface) FillRect(r image.Rectangle, c color.NRGBA) {
	s.rects++
	s.ImageSurface.FillRect(r, c)
}

func (s *recordingSurface) DrawGlyph(tex *GlyphTexture, x, y int, tint color.NRGBA) {
	s.glyphs++
	s.chars = append(s.chars, tex.Char)
	s.tints = append(s.tints, tint)
	s.ImageSurface.DrawGlyph(tex, x, y, tint)
}

func (s *recordingSurface) ops() int {
	return s.fills + s.rects + s.glyphs
}

func (s *recordingSurface) reset() {
	s.fills, s.rects, s.glyphs = 0, 0, 0
	s.chars, s.tints = nil, nil
}

// newTestAsciify builds a rasterizer whose grid is exactly columns x rows
// cells of the default 12px font.
func newTestAsciify(t *testing.T, columns, rows int, opts ...Option) (*Asciify, *recordingSurface) {
	t.Helper()
	cell := NewOptions(opts...).CellSize()
	s := newRecordingSurface(columns*cell, rows*cell)
	a, err := New(s, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(a.Close)
	if c, r := a.Grid(); c != columns || r != rows {
		t.Fatalf("Expected %dx%d grid, got %dx%d", columns, rows, c, r)
	}
	s.reset()
	return a, s
}

// solidBuffer repeats one RGBA pixel for every cell.
func solidBuffer(cells int, r, g, b, a uint8) []byte {
	buf := make([]byte, cells*4)
	for i := 0; i < cells; i++ {
		buf[i*4], buf[i*4+1], buf[i*4+2], buf[i*4+3] = r, g, b, a
	}
	return buf
}

// asymmetricBuffer has a distinct opaque color in every cell.
func asymmetricBuffer(columns, rows int) []byte {
	buf := make([]byte, columns*rows*4)
	for y := 0; y < rows; y++ {
		for x := 0; x < columns; x++ {
			i := (y*columns + x) * 4
			buf[i] = uint8(40 + 50*y)
			buf[i+1] = uint8(255 - 30*x)
			buf[i+2] = uint8(20 * (x + y))
			buf[i+3] = 255
		}
	}
	return buf
}

func flipBuffer(buf []byte, columns int) []byte {
	stride := columns * 4
	rows := len(buf) / stride
	out := make([]byte, len(buf))
	for y := 0; y < rows; y++ {
		copy(out[y*stride:(y+1)*stride], buf[(rows-1-y)*stride:(rows-y)*stride])
	}
	return out
}
