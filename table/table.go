package table

import (
	"github.com/jung-kurt/gofpdf"
)

const (
	defaultLineHeight = 1.25
	minRowHeight      = 5.0
)

// Table is a grid builder bound to a PDF document.
type Table struct {
	pdf    *gofpdf.Fpdf
	widths []float64
	header *Row
	rows   []*Row
	style  TableStyle
	tr     func(string) string
}

// New creates a new Table associated with the given PDF document.
func New(pdf *gofpdf.Fpdf) *Table {
	return &Table{
		pdf: pdf,
		style: TableStyle{
			CellPadding: UniformPadding(1),
		},
		tr: func(s string) string { return s },
	}
}

// SetColumnWidths sets column widths. A width of 0 means the column shares
// the space left over by fixed columns.
func (t *Table) SetColumnWidths(widths ...float64) *Table {
	t.widths = widths
	return t
}

// SetStyle sets the table-wide style.
func (t *Table) SetStyle(s TableStyle) *Table {
	t.style = s
	return t
}

// SetTranslator sets the function applied to every cell text before it is
// measured and drawn, typically a code page translator for core fonts.
func (t *Table) SetTranslator(tr func(string) string) *Table {
	if tr != nil {
		t.tr = tr
	}
	return t
}

// AddHeaderRow sets the header row and returns it. Calling it again replaces
// the previous header.
func (t *Table) AddHeaderRow() *Row {
	t.header = &Row{isHeader: true}
	return t.header
}

// AddRow adds a new body row to the table and returns it for chaining.
func (t *Table) AddRow() *Row {
	r := &Row{}
	t.rows = append(t.rows, r)
	return r
}

// Render draws the table at the current cursor position, starting at the left
// margin. Rows that do not fit on the current page move to a new page and the
// header is repeated there.
func (t *Table) Render() error {
	if t.pdf.Err() {
		return t.pdf.Error()
	}

	widths := t.columnWidths()
	if len(widths) == 0 {
		return nil
	}
	startX, _, _, _ := t.pdf.GetMargins()

	first := 0.0
	if t.header != nil {
		first = t.rowHeight(t.header, widths)
	}
	if len(t.rows) > 0 {
		first += t.rowHeight(t.rows[0], widths)
	}
	if !t.fits(first) {
		t.pdf.AddPage()
	}
	if t.header != nil {
		t.renderRow(t.header, widths, startX)
	}

	for i, r := range t.rows {
		if i > 0 && !t.fits(t.rowHeight(r, widths)) {
			t.pdf.AddPage()
			if t.header != nil {
				t.renderRow(t.header, widths, startX)
			}
		}
		t.renderRow(r, widths, startX)
	}

	return t.pdf.Error()
}

// fits reports whether a block of height h fits above the bottom margin.
func (t *Table) fits(h float64) bool {
	_, pageH := t.pdf.GetPageSize()
	_, _, _, bottom := t.pdf.GetMargins()
	return t.pdf.GetY()+h <= pageH-bottom
}

// columnWidths computes final column widths from the configured widths and the
// page width between the margins.
func (t *Table) columnWidths() []float64 {
	n := len(t.widths)
	if n == 0 {
		if t.header != nil {
			n = len(t.header.cells)
		} else if len(t.rows) > 0 {
			n = len(t.rows[0].cells)
		}
	}
	if n == 0 {
		return nil
	}

	pageW, _ := t.pdf.GetPageSize()
	left, _, right, _ := t.pdf.GetMargins()
	available := pageW - left - right

	widths := make([]float64, n)
	fixed, auto := 0.0, 0
	for i := range widths {
		if i < len(t.widths) && t.widths[i] > 0 {
			widths[i] = t.widths[i]
			fixed += widths[i]
		} else {
			auto++
		}
	}
	if auto > 0 {
		share := max(available-fixed, 0) / float64(auto)
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

// rowStyle resolves the effective style of a row's cells: table font, then
// header style, then row style.
func (t *Table) rowStyle(r *Row) CellStyle {
	var s CellStyle
	s.Font = t.style.CellFont
	if r.isHeader {
		s.merge(t.style.HeaderStyle)
	}
	s.merge(r.style)
	return s
}

// applyFont sets the font for a resolved style and returns the line height.
func (t *Table) applyFont(s CellStyle) float64 {
	if s.Font != nil {
		t.pdf.SetFont(s.Font.Family, s.Font.Style, s.Font.Size)
	}
	factor := t.style.LineHeight
	if factor <= 0 {
		factor = defaultLineHeight
	}
	_, size := t.pdf.GetFontSize()
	return size * factor
}

func (t *Table) rowHeight(r *Row, widths []float64) float64 {
	pad := t.style.CellPadding
	h := minRowHeight
	lineH := t.applyFont(t.rowStyle(r))
	for i, c := range r.cells {
		if i >= len(widths) {
			break
		}
		contentW := max(widths[i]-pad.Left-pad.Right, 1)
		lines := max(len(t.pdf.SplitLines([]byte(t.tr(c.text)), contentW)), 1)
		h = max(h, float64(lines)*lineH+pad.Top+pad.Bottom)
	}
	return h
}

func (t *Table) renderRow(r *Row, widths []float64, startX float64) {
	rowH := t.rowHeight(r, widths)
	pad := t.style.CellPadding
	y := t.pdf.GetY()
	x := startX

	if b := t.style.Border; b != nil {
		t.pdf.SetDrawColor(b.Color.R, b.Color.G, b.Color.B)
		if b.Width > 0 {
			t.pdf.SetLineWidth(b.Width)
		}
	}

	style := t.rowStyle(r)
	lineH := t.applyFont(style)
	align := style.Align
	if align == "" {
		align = "L"
	}

	for i, w := range widths {
		if fill := style.FillColor; fill != nil {
			t.pdf.SetFillColor(fill.R, fill.G, fill.B)
			t.pdf.Rect(x, y, w, rowH, "F")
		}
		t.pdf.Rect(x, y, w, rowH, "D")

		if i < len(r.cells) {
			c := r.cells[i]
			if style.TextColor != nil {
				t.pdf.SetTextColor(style.TextColor.R, style.TextColor.G, style.TextColor.B)
			} else {
				t.pdf.SetTextColor(0, 0, 0)
			}
			t.pdf.SetXY(x+pad.Left, y+pad.Top)
			t.pdf.MultiCell(max(w-pad.Left-pad.Right, 1), lineH, t.tr(c.text), "", align, false)
		}
		x += w
	}

	t.pdf.SetDrawColor(0, 0, 0)
	t.pdf.SetFillColor(0, 0, 0)
	t.pdf.SetTextColor(0, 0, 0)
	t.pdf.SetXY(startX, y+rowH)
}
