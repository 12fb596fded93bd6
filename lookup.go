package asciify

// CellCoord locates one grid cell. Offset is the byte offset of the red
// channel in a row-major RGBA buffer of Columns x Rows pixels; green,
// blue and alpha follow at Offset+1..3. X and Y are the top-left corner of
// the cell on the surface, in device pixels.
type CellCoord struct {
	Offset int
	X, Y   int
}

// LookupTable precomputes sample offsets and draw positions for every
// cell, in row-major order.
//
// Normal assumes buffer row 0 is the top row; Flipped assumes it is the
// bottom row, as read back from GPU framebuffers. Column 0 is the left
// edge in both tables: only rows are mirrored.
type LookupTable struct {
	Rows, Columns int
	CellSize      int
	Normal        []CellCoord
	Flipped       []CellCoord
}

// BuildLookupTable builds both orientations for a rows x columns grid of
// cellSize-square cells. Negative dimensions yield an empty table.
func BuildLookupTable(rows, columns, cellSize int) *LookupTable {
	rows, columns = max(rows, 0), max(columns, 0)
	n := rows * columns
	t := &LookupTable{
		Rows:     rows,
		Columns:  columns,
		CellSize: cellSize,
		Normal:   make([]CellCoord, n),
		Flipped:  make([]CellCoord, n),
	}
	for row := 0; row < rows; row++ {
		flippedRow := rows - 1 - row
		for col := 0; col < columns; col++ {
			i := row*columns + col
			x, y := col*cellSize, row*cellSize
			t.Normal[i] = CellCoord{Offset: i * 4, X: x, Y: y}
			t.Flipped[i] = CellCoord{Offset: (flippedRow*columns + col) * 4, X: x, Y: y}
		}
	}
	return t
}

// Len is the number of cells.
func (t *LookupTable) Len() int {
	return len(t.Normal)
}

// Cells returns the table for the given source orientation.
func (t *LookupTable) Cells(flipY bool) []CellCoord {
	if flipY {
		return t.Flipped
	}
	return t.Normal
}

// BufferSize is the RGBA buffer length the table samples from.
func (t *LookupTable) BufferSize() int {
	return t.Len() * 4
}
