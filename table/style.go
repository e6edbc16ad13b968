// Package table renders bordered text grids onto a gofpdf document.
//
// A grid has one optional header row that is repeated at the top of every page
// the grid spills onto. Rows never split across pages; a row that does not fit
// in the remaining space starts a new page.
package table

// RGBColor represents an RGB color value.
type RGBColor struct {
	R, G, B int
}

// FontSpec defines font properties for text rendering.
type FontSpec struct {
	Family string
	Style  string  // "", "B", "I", "BI"
	Size   float64 // in points
}

// Padding defines spacing inside a cell.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding creates a Padding with the same value on all sides.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// BorderStyle defines the appearance of cell borders.
type BorderStyle struct {
	Width float64
	Color RGBColor
}

// CellStyle defines the visual appearance of a cell.
type CellStyle struct {
	FillColor *RGBColor
	TextColor *RGBColor
	Font      *FontSpec
	Align     string // "L", "C", "R"
}

// TableStyle defines the overall appearance of a table.
type TableStyle struct {
	Border      *BorderStyle
	HeaderStyle *CellStyle
	CellPadding Padding
	CellFont    *FontSpec
	// LineHeight scales the font size to obtain the text line height.
	LineHeight float64
}

// merge copies non-zero fields from src into s.
func (s *CellStyle) merge(src *CellStyle) {
	if src == nil {
		return
	}
	if src.FillColor != nil {
		s.FillColor = src.FillColor
	}
	if src.TextColor != nil {
		s.TextColor = src.TextColor
	}
	if src.Font != nil {
		s.Font = src.Font
	}
	if src.Align != "" {
		s.Align = src.Align
	}
}
