package asciify

import "testing"

func TestLookupTableDimensions(t *testing.T) {
	t.Parallel()
	for _, dims := range [][2]int{{1, 1}, {4, 4}, {3, 7}, {9, 2}, {40, 120}} {
		rows, cols := dims[0], dims[1]
		table := BuildLookupTable(rows, cols, 10)
		n := rows * cols

		if table.Len() != n || len(table.Flipped) != n {
			t.Fatalf("%dx%d: expected %d cells, got %d/%d", rows, cols, n, table.Len(), len(table.Flipped))
		}
		if table.BufferSize() != n*4 {
			t.Errorf("%dx%d: BufferSize %d", rows, cols, table.BufferSize())
		}
		for _, cells := range [][]CellCoord{table.Cells(false), table.Cells(true)} {
			seen := make(map[int]bool, n)
			for i, c := range cells {
				if c.Offset < 0 || c.Offset+3 >= n*4 || c.Offset%4 != 0 {
					t.Fatalf("%dx%d: cell %d offset %d out of range", rows, cols, i, c.Offset)
				}
				if seen[c.Offset] {
					t.Fatalf("%dx%d: offset %d sampled twice", rows, cols, c.Offset)
				}
				seen[c.Offset] = true
			}
		}
	}
}

func TestLookupTableOrientation(t *testing.T) {
	t.Parallel()
	const rows, cols, cell = 3, 4, 8
	table := BuildLookupTable(rows, cols, cell)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			n, f := table.Normal[i], table.Flipped[i]
			if n.X != col*cell || n.Y != row*cell {
				t.Errorf("cell %d: normal destination (%d,%d)", i, n.X, n.Y)
			}
			if f.X != n.X || f.Y != n.Y {
				t.Errorf("cell %d: destinations differ between orientations", i)
			}
			if n.Offset != i*4 {
				t.Errorf("cell %d: normal offset %d", i, n.Offset)
			}
			// Only the row is mirrored; columns keep their order.
			if want := ((rows-1-row)*cols + col) * 4; f.Offset != want {
				t.Errorf("cell %d: flipped offset %d, want %d", i, f.Offset, want)
			}
		}
	}
}

func TestLookupTableEmpty(t *testing.T) {
	t.Parallel()
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, 3}} {
		table := BuildLookupTable(dims[0], dims[1], 4)
		if table.Len() != 0 || len(table.Cells(true)) != 0 {
			t.Errorf("%v: expected empty table, got %d cells", dims, table.Len())
		}
	}
}
