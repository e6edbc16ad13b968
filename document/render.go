package document

import (
	"fmt"
	"io"
	"slices"

	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/barcode"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/lvillar/pbitdoc/diagram"
	"github.com/lvillar/pbitdoc/table"
)

// Page geometry in points.
const (
	marginX       = 40
	marginY       = 56
	leadingFactor = 1.2
	fontFamily    = "Helvetica"
	qrSize        = 48
)

type textStyle struct {
	style   string
	size    float64
	color   table.RGBColor
	fill    *table.RGBColor
	align   string
	padding float64
}

var (
	titleBlue = table.RGBColor{R: 0x0B, G: 0x53, B: 0x94}
	linkBlue  = table.RGBColor{R: 0x11, G: 0x55, B: 0xCC}
	grey      = table.RGBColor{R: 0x66, G: 0x66, B: 0x66}

	textStyles = map[Style]textStyle{
		StyleNormal:              {size: 10},
		StyleTitle:               {style: "B", size: 24, color: titleBlue, align: "C"},
		StyleSubtitle:            {style: "B", size: 18, color: linkBlue},
		StyleIndexLink:           {size: 14, color: linkBlue},
		StyleTableHeading:        {style: "B", size: 18, color: linkBlue, padding: 4},
		StyleSource:              {size: 10, color: grey},
		StyleMeasureTitle:        {size: 11, fill: &table.RGBColor{R: 0xD9, G: 0xD2, B: 0xE9}, padding: 6},
		StyleMeasureBody:         {size: 10, fill: &table.RGBColor{R: 0xED, G: 0xED, B: 0xED}, padding: 6},
		StyleRelationshipHeading: {style: "B", size: 16, color: linkBlue, padding: 4},
	}
)

// Info describes a rendered document.
type Info struct {
	Pages   int
	Diagram *diagram.Diagram
}

// Renderer flows a Story onto A4 pages. A Renderer is not safe for
// concurrent use; create one per document.
type Renderer struct {
	cfg      *config
	pdf      *gofpdf.Fpdf
	tr       func(string) string
	links    map[string]int
	left     float64
	contentW float64
	bottom   float64
	laidOut  *diagram.Diagram
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Renderer{cfg: cfg}
}

// Render writes the PDF for s to w. Any drawing failure aborts the whole
// document and nothing is written.
func (r *Renderer) Render(w io.Writer, s *Story) (*Info, error) {
	r.setup()

	r.pdf.AddPage()
	if r.cfg.letterhead != "" {
		if err := r.drawLetterhead(r.cfg.letterhead); err != nil {
			return nil, err
		}
	}
	if r.cfg.fingerprint != "" {
		r.drawFingerprint(r.cfg.fingerprint)
	}

	for _, b := range s.Blocks {
		if err := r.renderBlock(b); err != nil {
			return nil, err
		}
		if r.pdf.Err() {
			break
		}
	}

	if r.pdf.Err() {
		return nil, fmt.Errorf("document: %w", r.pdf.Error())
	}
	info := &Info{Pages: r.pdf.PageNo(), Diagram: r.laidOut}
	if err := r.pdf.Output(w); err != nil {
		return nil, fmt.Errorf("document: writing output: %w", err)
	}
	return info, nil
}

func (r *Renderer) setup() {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)
	pdf.SetCompression(r.cfg.compress)
	pdf.SetCatalogSort(true)
	if r.cfg.title != "" {
		pdf.SetTitle(r.cfg.title, true)
	}
	if r.cfg.author != "" {
		pdf.SetAuthor(r.cfg.author, true)
	}
	if r.cfg.creator != "" {
		pdf.SetCreator(r.cfg.creator, true)
	}
	if !r.cfg.creationDate.IsZero() {
		pdf.SetCreationDate(r.cfg.creationDate)
	}
	if r.cfg.pageNumbers {
		pdf.AliasNbPages("")
		pdf.SetFooterFunc(func() {
			pdf.SetY(-marginY / 2)
			pdf.SetFont(fontFamily, "I", 8)
			pdf.SetTextColor(128, 128, 128)
			pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		})
	}

	pageW, pageH := pdf.GetPageSize()
	r.pdf = pdf
	r.tr = pdf.UnicodeTranslatorFromDescriptor("")
	r.links = make(map[string]int)
	r.left = marginX
	r.contentW = pageW - 2*marginX
	r.bottom = pageH - marginY
	r.laidOut = nil
}

func (r *Renderer) renderBlock(b Block) error {
	switch b := b.(type) {
	case Text:
		r.renderText(b)
	case Grid:
		return r.renderGrid(b)
	case DiagramBlock:
		r.renderDiagram(b)
	case PageBreak:
		r.pdf.AddPage()
	default:
		return fmt.Errorf("document: unknown block %T", b)
	}
	return nil
}

// link returns the internal link id for dest, creating it on first use.
func (r *Renderer) link(dest string) int {
	id, ok := r.links[dest]
	if !ok {
		id = r.pdf.AddLink()
		r.links[dest] = id
	}
	return id
}

// ensureSpace starts a new page when a block of height h does not fit below
// the cursor. Blocks taller than a page are left to flow.
func (r *Renderer) ensureSpace(h float64) {
	y := r.pdf.GetY()
	if y+h > r.bottom && y > marginY {
		r.pdf.AddPage()
	}
}

// space advances the cursor, stopping at the bottom margin.
func (r *Renderer) space(h float64) {
	r.pdf.SetXY(r.left, min(r.pdf.GetY()+h, r.bottom))
}

func (r *Renderer) renderText(b Text) {
	st := textStyles[b.Style]
	fill := b.Fill
	if fill == nil {
		fill = st.fill
	}
	if b.Text == "" && fill == nil {
		r.space(b.SpaceAfter)
		return
	}

	pad := 0.0
	if fill != nil {
		pad = st.padding
	}
	align := st.align
	if align == "" {
		align = "L"
	}

	r.pdf.SetFont(fontFamily, st.style, st.size)
	leading := st.size * leadingFactor
	innerW := r.contentW - 2*pad
	lines := r.pdf.SplitLines([]byte(r.tr(b.Text)), innerW)
	if len(lines) == 0 {
		lines = [][]byte{nil}
	}

	r.ensureSpace(float64(len(lines))*leading + 2*pad)
	if b.Anchor != "" {
		r.pdf.SetLink(r.link(b.Anchor), r.pdf.GetY(), r.pdf.PageNo())
	}

	// A block taller than the space left is drawn page by page, each part
	// with its own background and link area.
	for first := true; len(lines) > 0; first = false {
		if !first {
			r.pdf.AddPage()
		}
		y := r.pdf.GetY()
		n := int((r.bottom - y - 2*pad) / leading)
		n = min(max(n, 1), len(lines))
		h := float64(n)*leading + 2*pad

		if fill != nil {
			r.pdf.SetFillColor(fill.R, fill.G, fill.B)
			r.pdf.Rect(r.left, y, r.contentW, h, "F")
		}
		r.pdf.SetTextColor(st.color.R, st.color.G, st.color.B)
		for i, line := range lines[:n] {
			r.pdf.SetXY(r.left+pad, y+pad+float64(i)*leading)
			r.pdf.CellFormat(innerW, leading, string(line), "", 0, align, false, 0, "")
		}
		r.pdf.SetTextColor(0, 0, 0)
		if b.Link != "" {
			r.pdf.Link(r.left, y, r.contentW, h, r.link(b.Link))
		}

		lines = lines[n:]
		r.pdf.SetXY(r.left, y+h)
	}
	r.space(b.SpaceAfter)
}

func (r *Renderer) renderGrid(b Grid) error {
	fill := b.HeaderFill
	tb := table.New(r.pdf).
		SetColumnWidths(b.Widths...).
		SetTranslator(r.tr).
		SetStyle(table.TableStyle{
			Border:      &table.BorderStyle{Width: 0.5},
			HeaderStyle: &table.CellStyle{FillColor: &fill, Font: &table.FontSpec{Family: fontFamily, Style: "B", Size: b.FontSize}},
			CellPadding: table.UniformPadding(3),
			CellFont:    &table.FontSpec{Family: fontFamily, Size: b.FontSize},
			LineHeight:  leadingFactor,
		})
	tb.AddHeaderRow().AddCells(b.Headers...)
	dimmed := table.CellStyle{TextColor: &grey, Font: &table.FontSpec{Family: fontFamily, Style: "I", Size: b.FontSize}}
	for i, row := range b.Rows {
		tr := tb.AddRow().AddCells(row...)
		if slices.Contains(b.Dimmed, i) {
			tr.SetStyle(dimmed)
		}
	}
	if err := tb.Render(); err != nil {
		return fmt.Errorf("document: rendering grid: %w", err)
	}
	r.space(b.SpaceAfter)
	return nil
}

func (r *Renderer) renderDiagram(b DiagramBlock) {
	r.ensureSpace(b.Size.H)
	x0, y0 := r.left, r.pdf.GetY()

	d := diagram.Layout(b.Tables, b.Relationships, b.Destinations, b.Size)
	r.laidOut = d
	r.pdf.SetLineWidth(1)
	for _, c := range d.Commands {
		r.draw(x0, y0, c)
	}
	r.pdf.SetLineWidth(0.5)
	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.SetFillColor(0, 0, 0)
	r.pdf.SetTextColor(0, 0, 0)

	r.pdf.SetXY(x0, y0+b.Size.H)
	r.space(b.SpaceAfter)
}

// draw executes one diagram command with the canvas origin at (x0, y0).
func (r *Renderer) draw(x0, y0 float64, c diagram.Command) {
	pdf := r.pdf
	if c.Fill != nil {
		pdf.SetFillColor(c.Fill.R, c.Fill.G, c.Fill.B)
	}
	if c.Stroke != nil {
		pdf.SetDrawColor(c.Stroke.R, c.Stroke.G, c.Stroke.B)
	}

	switch c.Kind {
	case diagram.KindRect:
		pdf.Rect(x0+c.X, y0+c.Y, c.W, c.H, "FD")
	case diagram.KindText:
		if c.Font != nil {
			pdf.SetFont(c.Font.Family, c.Font.Style, c.Font.Size)
		}
		if c.Fill != nil {
			pdf.SetTextColor(c.Fill.R, c.Fill.G, c.Fill.B)
		}
		pdf.Text(x0+c.X, y0+c.Y, r.tr(c.Text))
	case diagram.KindCircle:
		pdf.Circle(x0+c.X, y0+c.Y, c.Radius, "F")
	case diagram.KindBezier:
		if len(c.Points) != 4 {
			return
		}
		if c.LineWidth > 0 {
			pdf.SetLineWidth(c.LineWidth)
		}
		p := c.Points
		pdf.CurveBezierCubic(
			x0+p[0].X, y0+p[0].Y,
			x0+p[1].X, y0+p[1].Y,
			x0+p[2].X, y0+p[2].Y,
			x0+p[3].X, y0+p[3].Y,
			"D",
		)
	case diagram.KindTriangle:
		pts := make([]gofpdf.PointType, len(c.Points))
		for i, p := range c.Points {
			pts[i] = gofpdf.PointType{X: x0 + p.X, Y: y0 + p.Y}
		}
		pdf.Polygon(pts, "FD")
	case diagram.KindLinkRect:
		if c.Dest != "" {
			pdf.Link(x0+c.X, y0+c.Y, c.W, c.H, r.link(c.Dest))
		}
	}
}

// drawLetterhead imports the first page of the PDF at path as the background
// of the current page. Each document gets its own importer; the package-level
// one is shared process-wide. The importer panics on unreadable input.
func (r *Renderer) drawLetterhead(path string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("document: importing letterhead %s: %v", path, p)
		}
	}()
	imp := gofpdi.NewImporter()
	tpl := imp.ImportPage(r.pdf, path, 1, "/MediaBox")
	w, h := r.pdf.GetPageSize()
	imp.UseImportedTemplate(r.pdf, tpl, 0, 0, w, h)
	r.pdf.SetXY(marginX, marginY)
	return nil
}

// drawFingerprint places code as a QR code in the bottom margin of the
// current page.
func (r *Renderer) drawFingerprint(code string) {
	key := barcode.RegisterQR(r.pdf, code, qr.M, qr.Unicode)
	pageW, pageH := r.pdf.GetPageSize()
	barcode.Barcode(r.pdf, key, pageW-marginX-qrSize, pageH-qrSize-4, qrSize, qrSize, false)
	r.pdf.SetXY(marginX, marginY)
}
