package parser

import "strings"

// Grid is the raw row grid of a spreadsheet export. Rows are ragged: any row
// may be shorter than the columns a layout refers to.
type Grid [][]string

// Cell returns the cell at row, col or "" when either index is out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 {
		return ""
	}
	r := g[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int {
	return len(g)
}

// findRowContaining returns the first row in [start, start+window) whose cell
// at col contains substr.
func (g Grid) findRowContaining(start, window, col int, substr string) (int, bool) {
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(g) {
		end = len(g)
	}
	for r := start; r < end; r++ {
		if strings.Contains(g.Cell(r, col), substr) {
			return r, true
		}
	}
	return -1, false
}
