package table

// Cell is a single text cell.
type Cell struct {
	text string
}

// Row is a single row of cells.
type Row struct {
	cells    []*Cell
	style    *CellStyle
	isHeader bool
}

// AddCell adds a text cell to the row and returns the cell.
func (r *Row) AddCell(text string) *Cell {
	c := &Cell{text: text}
	r.cells = append(r.cells, c)
	return c
}

// AddCells adds one text cell per value.
func (r *Row) AddCells(texts ...string) *Row {
	for _, t := range texts {
		r.AddCell(t)
	}
	return r
}

// SetStyle sets the style for all cells in this row, overriding the table
// defaults.
func (r *Row) SetStyle(s CellStyle) *Row {
	r.style = &s
	return r
}
