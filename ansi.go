package asciify

import (
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"
)

const esc = "\u001b"

// textCell is one character cell of a TextSurface.
type textCell struct {
	char  string
	fg    color.NRGBA
	bg    color.NRGBA
	glyph bool
}

// TextSurface is a Surface that keeps the character and colors of every
// cell instead of pixels, for printing frames to a terminal. Draw calls
// are mapped to cells of cellSize device pixels, which must match the
// rasterizer's Options.CellSize.
type TextSurface struct {
	cellSize      int
	width, height int
	columns, rows int
	cells         []textCell
}

// NewTextSurface creates an empty text surface for cells of cellSize
// device pixels.
func NewTextSurface(cellSize int) *TextSurface {
	return &TextSurface{cellSize: max(cellSize, 1)}
}

func (s *TextSurface) SetSize(width, height int) {
	s.width, s.height = max(width, 0), max(height, 0)
	s.columns, s.rows = s.width/s.cellSize, s.height/s.cellSize
	if n := s.columns * s.rows; cap(s.cells) >= n {
		s.cells = s.cells[:n]
	} else {
		s.cells = make([]textCell, n)
	}
}

func (s *TextSurface) Size() (int, int) {
	return s.width, s.height
}

func (s *TextSurface) Fill(c color.NRGBA) {
	for i := range s.cells {
		s.cells[i] = textCell{bg: c}
	}
}

// FillRect clears every cell whose origin lies in r.
func (s *TextSurface) FillRect(r image.Rectangle, c color.NRGBA) {
	x0, y0 := ceilDiv(r.Min.X, s.cellSize), ceilDiv(r.Min.Y, s.cellSize)
	x1, y1 := ceilDiv(r.Max.X, s.cellSize), ceilDiv(r.Max.Y, s.cellSize)
	for row := max(y0, 0); row < min(y1, s.rows); row++ {
		for col := max(x0, 0); col < min(x1, s.columns); col++ {
			s.cells[row*s.columns+col] = textCell{bg: c}
		}
	}
}

func (s *TextSurface) DrawGlyph(tex *GlyphTexture, x, y int, tint color.NRGBA) {
	col, row := x/s.cellSize, y/s.cellSize
	if x < 0 || y < 0 || col >= s.columns || row >= s.rows {
		return
	}
	c := &s.cells[row*s.columns+col]
	c.char, c.fg, c.glyph = tex.Char, tint, true
}

// Grid returns the surface size in cells.
func (s *TextSurface) Grid() (columns, rows int) {
	return s.columns, s.rows
}

// Char returns the character drawn at a cell, "" when none was.
func (s *TextSurface) Char(column, row int) string {
	if column < 0 || row < 0 || column >= s.columns || row >= s.rows {
		return ""
	}
	return s.cells[row*s.columns+column].char
}

// String returns the frame as plain text, one line per row.
func (s *TextSurface) String() string {
	var sb strings.Builder
	for row := 0; row < s.rows; row++ {
		for _, c := range s.cells[row*s.columns : (row+1)*s.columns] {
			if c.glyph {
				sb.WriteString(c.char)
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteANSI writes the frame with 24-bit color escapes. Color codes are
// only emitted when they change along a row, and every row ends with a
// reset.
func (s *TextSurface) WriteANSI(w io.Writer) error {
	var sb strings.Builder
	for row := 0; row < s.rows; row++ {
		var fg, bg string
		for _, c := range s.cells[row*s.columns : (row+1)*s.columns] {
			cellFg, cellBg := "", ansiColor(48, c.bg)
			char := " "
			if c.glyph {
				cellFg, char = ansiColor(38, c.fg), c.char
			}
			// Spaces show no foreground; keep the current one.
			if !c.glyph {
				cellFg = fg
			}
			if cellFg != fg || cellBg != bg {
				sb.WriteString(formatANSICode(
					changed(cellFg, fg), changed(cellBg, bg)))
				fg, bg = cellFg, cellBg
			}
			sb.WriteString(char)
		}
		sb.WriteString(esc + "[0m\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// ANSI returns the frame as WriteANSI would write it.
func (s *TextSurface) ANSI() string {
	var sb strings.Builder
	_ = s.WriteANSI(&sb)
	return sb.String()
}

// formatANSICode joins the given SGR parameters into one escape.
func formatANSICode(fg, bg string) string {
	var code strings.Builder
	code.WriteString(esc)
	code.WriteByte('[')
	if fg != "" {
		code.WriteString(fg)
		if bg != "" {
			code.WriteByte(';')
		}
	}
	code.WriteString(bg)
	code.WriteByte('m')
	return code.String()
}

// ansiColor formats a truecolor SGR parameter; base is 38 for the
// foreground and 48 for the background. Transparent backgrounds map to
// the terminal default.
func ansiColor(base int, c color.NRGBA) string {
	if c.A == 0 {
		return strconv.Itoa(base + 1)
	}
	return strconv.Itoa(base) + ";2;" + strconv.Itoa(int(c.R)) + ";" +
		strconv.Itoa(int(c.G)) + ";" + strconv.Itoa(int(c.B))
}

func changed(code, current string) string {
	if code == current {
		return ""
	}
	return code
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return -((-a) / b)
	}
	return (a + b - 1) / b
}
