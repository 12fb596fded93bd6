package asciify

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func newTextAsciify(t *testing.T, columns, rows int, opts ...Option) (*Asciify, *TextSurface) {
	t.Helper()
	cell := NewOptions(opts...).CellSize()
	s := NewTextSurface(cell)
	s.SetSize(columns*cell, rows*cell)
	a, err := New(s, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Close)
	return a, s
}

func TestTextSurfacePlain(t *testing.T) {
	a, s := newTextAsciify(t, 3, 2, WithMode(ModeGrayscale))
	buf := solidBuffer(6, 255, 0, 0, 255)
	// Top-right cell transparent, bottom-left white.
	buf[2*4+3] = 0
	copy(buf[3*4:], []byte{255, 255, 255, 255})
	if err := a.Rasterize(buf, false, false); err != nil {
		t.Fatal(err)
	}

	if c, r := s.Grid(); c != 3 || r != 2 {
		t.Fatalf("Expected 3x2 text grid, got %dx%d", c, r)
	}
	if got, want := s.String(), ":: \n@::\n"; got != want {
		t.Errorf("Got %q, want %q", got, want)
	}
	if s.Char(2, 0) != "" || s.Char(0, 1) != "@" {
		t.Error("Char disagrees with String")
	}
}

func TestTextSurfaceCharOutOfRange(t *testing.T) {
	a, s := newTextAsciify(t, 2, 2, WithMode(ModeGrayscale))
	if err := a.Rasterize(solidBuffer(4, 255, 255, 255, 255), false, false); err != nil {
		t.Fatal(err)
	}
	cells := [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}, {5, 5}}
	for _, c := range cells {
		if got := s.Char(c[0], c[1]); got != "" {
			t.Errorf("Char(%d, %d) = %q, want empty", c[0], c[1], got)
		}
	}
	// Column 2 of row 0 would alias row 1 without the bounds check.
	if s.Char(0, 1) != "@" || s.Char(1, 1) != "@" {
		t.Error("In-range cells should keep their characters")
	}

	var empty TextSurface
	if empty.Char(0, 0) != "" {
		t.Error("An unsized surface has no characters")
	}
}

func TestTextSurfaceANSICompression(t *testing.T) {
	a, s := newTextAsciify(t, 4, 1)
	if err := a.Rasterize(solidBuffer(4, 255, 0, 0, 255), false, false); err != nil {
		t.Fatal(err)
	}

	out := s.ANSI()
	want := esc + "[38;2;255;0;0;48;2;0;0;0m::::" + esc + "[0m\n"
	if out != want {
		t.Errorf("Got %q, want %q", out, want)
	}
}

func TestTextSurfaceBlocks(t *testing.T) {
	a, s := newTextAsciify(t, 2, 1, WithMode(ModeBlock))
	buf := []byte{10, 20, 30, 255, 10, 20, 30, 255}
	if err := a.Rasterize(buf, false, false); err != nil {
		t.Fatal(err)
	}

	out := s.ANSI()
	if strings.Count(out, "48;2;10;20;30") != 1 {
		t.Errorf("Block cells should share one background escape, got %q", out)
	}
	if !strings.HasSuffix(out, "m  "+esc+"[0m\n") {
		t.Errorf("Blocks should print as spaces, got %q", out)
	}
}

func TestTextSurfaceFillRect(t *testing.T) {
	s := NewTextSurface(4)
	s.SetSize(12, 4)
	tex := &GlyphTexture{Char: "#"}
	for x := 0; x < 12; x += 4 {
		s.DrawGlyph(tex, x, 0, NeutralColor)
	}
	s.FillRect(image.Rect(4, 0, 8, 4), color.NRGBA{A: 255})
	if got := s.String(); got != "# #\n" {
		t.Errorf("FillRect should clear exactly one cell, got %q", got)
	}

	// Off-surface draws are ignored.
	s.DrawGlyph(tex, 40, 0, NeutralColor)
	s.DrawGlyph(tex, -4, 0, NeutralColor)
	s.Fill(color.NRGBA{})
	if got := s.ANSI(); got != esc+"[49m   "+esc+"[0m\n" {
		t.Errorf("Transparent background should use the terminal default, got %q", got)
	}
}
