package diagram

import (
	"github.com/lvillar/pbitdoc/schema"
)

// Grid returns the number of grid columns and rows used for n tables.
func Grid(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = min(MaxColumns, n)
	rows = (n + cols - 1) / cols
	return cols, rows
}

// Layout places every table on a uniform grid filling the canvas and connects
// related tables with curved edges. dest maps table names to link
// destinations; each box becomes a clickable region pointing at its table.
//
// Relationships whose endpoints have no box are skipped without error. The
// k-th relationship between the same unordered pair of tables is shifted up by
// k*OffsetStep so parallel edges do not overlap.
func Layout(tables []schema.Table, rels []schema.Relationship, dest map[string]string, canvas Size) *Diagram {
	d := &Diagram{
		Canvas:   canvas,
		Boxes:    []Box{},
		Edges:    []Edge{},
		Commands: []Command{},
	}
	d.Cols, d.Rows = Grid(len(tables))
	if d.Cols == 0 {
		d.Skipped = len(rels)
		return d
	}

	boxW := (canvas.W-Padding*2)/float64(d.Cols) - Gap
	boxH := (canvas.H-Padding*2)/float64(d.Rows) - Gap

	positions := make(map[string]Box, len(tables))
	for i, t := range tables {
		row, col := i/d.Cols, i%d.Cols
		b := Box{
			Table: t.Name,
			Index: i,
			Row:   row,
			Col:   col,
			X:     Padding + float64(col)*(boxW+Gap),
			Y:     Padding + float64(row)*(boxH+Gap),
			W:     boxW,
			H:     boxH,
			Dest:  dest[t.Name],
		}
		d.Boxes = append(d.Boxes, b)
		positions[t.Name] = b
		d.Commands = append(d.Commands, boxCommands(b, t)...)
	}

	pairs := make(map[[2]string]int)
	for _, r := range rels {
		key := pairKey(r.FromTable, r.ToTable)
		k := pairs[key]
		pairs[key]++

		from, okFrom := positions[r.FromTable]
		to, okTo := positions[r.ToTable]
		if !okFrom || !okTo {
			d.Skipped++
			continue
		}

		offset := float64(k * OffsetStep)
		start, end := from.Center(), to.Center()
		start.Y -= offset
		end.Y -= offset

		e := Edge{
			FromTable: r.FromTable,
			ToTable:   r.ToTable,
			Offset:    offset,
			Start:     start,
			End:       end,
		}
		d.Edges = append(d.Edges, e)
		d.Commands = append(d.Commands, edgeCommands(e, EdgeColor(from.Index))...)
	}
	return d
}

func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

func boxCommands(b Box, t schema.Table) []Command {
	fill := BoxColor(b.Index)
	black := Black
	nameFont := &Font{Family: "Helvetica", Style: "B", Size: nameFontSize}
	itemFont := &Font{Family: "Helvetica", Size: itemFontSize}

	cmds := []Command{
		{Kind: KindRect, X: b.X, Y: b.Y, W: b.W, H: b.H, Fill: &fill, Stroke: &black},
		{Kind: KindText, X: b.X + textIndent, Y: b.Y + nameBaseline, Text: t.Name, Font: nameFont, Fill: &black},
	}

	y := b.Y + firstLine
	for _, c := range t.Columns[:min(MaxColumnNames, len(t.Columns))] {
		cmds = append(cmds, Command{Kind: KindText, X: b.X + textIndent, Y: y, Text: c.Name, Font: itemFont, Fill: &black})
		y += lineStep
	}
	for _, m := range t.Measures[:min(MaxMeasureNames, len(t.Measures))] {
		cmds = append(cmds, Command{Kind: KindText, X: b.X + textIndent, Y: y, Text: "m:" + m.Name, Font: itemFont, Fill: &black})
		y += lineStep
	}

	cmds = append(cmds, Command{Kind: KindLinkRect, X: b.X, Y: b.Y, W: b.W, H: b.H, Dest: b.Dest})
	return cmds
}

func edgeCommands(e Edge, stroke Color) []Command {
	marker := MarkerColor
	black := Black
	midX := (e.Start.X + e.End.X) / 2

	return []Command{
		{Kind: KindCircle, X: e.Start.X, Y: e.Start.Y, Radius: MarkerRadius, Fill: &marker},
		{
			Kind: KindBezier,
			Points: []Point{
				e.Start,
				{X: midX, Y: e.Start.Y},
				{X: midX, Y: e.End.Y},
				e.End,
			},
			Stroke:    &stroke,
			LineWidth: edgeLineWidth,
		},
		{Kind: KindTriangle, Points: arrowhead(e.Start, e.End), Fill: &black, Stroke: &black},
	}
}

// arrowhead returns a triangle whose tip touches end. The curve leaves the
// destination horizontally, so the head points right unless the destination
// lies to the left of the origin.
func arrowhead(start, end Point) []Point {
	back := float64(ArrowSize)
	if end.X < start.X {
		back = -back
	}
	half := float64(ArrowSize) / 2
	return []Point{
		end,
		{X: end.X - back, Y: end.Y - half},
		{X: end.X - back, Y: end.Y + half},
	}
}
