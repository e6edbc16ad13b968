package diagram

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/pbitdoc/schema"
)

var canvas = Size{W: 500, H: 500}

func namedTables(names ...string) []schema.Table {
	tables := make([]schema.Table, len(names))
	for i, n := range names {
		tables[i] = schema.Table{Name: n}
	}
	return tables
}

func destinations(tables []schema.Table) map[string]string {
	dest := make(map[string]string, len(tables))
	for i, t := range tables {
		dest[t.Name] = "table_" + string(rune('0'+i))
	}
	return dest
}

func commandsOf(d *Diagram, kind Kind) []Command {
	var out []Command
	for _, c := range d.Commands {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func TestGrid(t *testing.T) {
	tests := []struct {
		n, cols, rows int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 2, 1},
		{3, 3, 1},
		{4, 3, 2},
		{7, 3, 3},
		{9, 3, 3},
		{10, 3, 4},
	}
	for _, tt := range tests {
		cols, rows := Grid(tt.n)
		assert.Equal(t, tt.cols, cols, "cols for n=%d", tt.n)
		assert.Equal(t, tt.rows, rows, "rows for n=%d", tt.n)
	}
}

func TestLayoutEmpty(t *testing.T) {
	d := Layout(nil, []schema.Relationship{{FromTable: "A", ToTable: "B"}}, nil, canvas)
	assert.Empty(t, d.Boxes)
	assert.Empty(t, d.Edges)
	assert.Empty(t, d.Commands)
	assert.Equal(t, 1, d.Skipped)
}

func TestLayoutBoxGeometry(t *testing.T) {
	tables := namedTables("A", "B", "C", "D")
	d := Layout(tables, nil, destinations(tables), canvas)

	require.Len(t, d.Boxes, 4)
	assert.Equal(t, 3, d.Cols)
	assert.Equal(t, 2, d.Rows)

	boxW := (500.0-60)/3 - 20
	boxH := (500.0-60)/2 - 20
	a, b, dd := d.Boxes[0], d.Boxes[1], d.Boxes[3]

	assert.InDelta(t, 30, a.X, 1e-9)
	assert.InDelta(t, 30, a.Y, 1e-9)
	assert.InDelta(t, boxW, a.W, 1e-9)
	assert.InDelta(t, boxH, a.H, 1e-9)
	assert.InDelta(t, 30+boxW+20, b.X, 1e-9)
	assert.Equal(t, 1, dd.Row)
	assert.Equal(t, 0, dd.Col)
	assert.InDelta(t, 30+boxH+20, dd.Y, 1e-9)
	assert.Equal(t, "table_3", dd.Dest)
}

func TestLayoutBoxContentTruncation(t *testing.T) {
	tbl := schema.Table{Name: "Wide"}
	for _, n := range []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7"} {
		tbl.Columns = append(tbl.Columns, schema.Column{Name: n})
	}
	for _, n := range []string{"m1", "m2", "m3", "m4"} {
		tbl.Measures = append(tbl.Measures, schema.Measure{Name: n})
	}

	d := Layout([]schema.Table{tbl}, nil, map[string]string{"Wide": "table_0"}, canvas)

	var texts []string
	for _, c := range commandsOf(d, KindText) {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"Wide", "c1", "c2", "c3", "c4", "c5", "m:m1", "m:m2", "m:m3"}, texts)

	links := commandsOf(d, KindLinkRect)
	require.Len(t, links, 1)
	assert.Equal(t, "table_0", links[0].Dest)
	assert.Equal(t, d.Boxes[0].W, links[0].W)
}

func TestLayoutPaletteCycles(t *testing.T) {
	tables := namedTables("A", "B", "C", "D", "E")
	d := Layout(tables, nil, destinations(tables), canvas)

	rects := commandsOf(d, KindRect)
	require.Len(t, rects, 5)
	for i, r := range rects {
		assert.Equal(t, BoxPalette[i%4], *r.Fill)
	}
	assert.Equal(t, *rects[0].Fill, *rects[4].Fill)
}

func TestLayoutParallelEdgesAreOffset(t *testing.T) {
	tables := namedTables("Sales", "Date")
	rels := []schema.Relationship{
		{FromTable: "Sales", FromColumn: "OrderDate", ToTable: "Date", ToColumn: "Date"},
		{FromTable: "Date", FromColumn: "Date", ToTable: "Sales", ToColumn: "ShipDate"},
		{FromTable: "Sales", FromColumn: "DueDate", ToTable: "Date", ToColumn: "Date"},
	}
	d := Layout(tables, rels, destinations(tables), canvas)

	require.Len(t, d.Edges, 3)
	base := d.Boxes[0].Center().Y
	for k, e := range d.Edges {
		assert.Equal(t, float64(k*OffsetStep), e.Offset)
		assert.InDelta(t, float64(k*OffsetStep), math.Abs(e.Start.Y-base), 1e-9)
	}
	assert.Len(t, commandsOf(d, KindCircle), 3)
	assert.Len(t, commandsOf(d, KindBezier), 3)
	assert.Len(t, commandsOf(d, KindTriangle), 3)
}

func TestLayoutSkipsUnknownTables(t *testing.T) {
	tables := namedTables("Sales", "Date")
	rels := []schema.Relationship{
		{FromTable: "Sales", ToTable: "Ghost"},
		{FromTable: "Sales", ToTable: "Date"},
		{FromTable: "Ghost", ToTable: "Sales"},
	}
	d := Layout(tables, rels, destinations(tables), canvas)

	require.Len(t, d.Edges, 1)
	assert.Equal(t, 2, d.Skipped)
	assert.Equal(t, "Date", d.Edges[0].ToTable)
	assert.Zero(t, d.Edges[0].Offset)
}

func TestEdgeGeometry(t *testing.T) {
	tables := namedTables("A", "B")
	d := Layout(tables, []schema.Relationship{{FromTable: "B", ToTable: "A"}}, destinations(tables), canvas)

	curve := commandsOf(d, KindBezier)[0]
	require.Len(t, curve.Points, 4)
	start, c1, c2, end := curve.Points[0], curve.Points[1], curve.Points[2], curve.Points[3]
	assert.Equal(t, d.Boxes[1].Center(), start)
	assert.Equal(t, d.Boxes[0].Center(), end)
	assert.Equal(t, (start.X+end.X)/2, c1.X)
	assert.Equal(t, c1.X, c2.X)
	assert.Equal(t, start.Y, c1.Y)
	assert.Equal(t, end.Y, c2.Y)
	assert.Equal(t, EdgePalette[1], *curve.Stroke)

	// B sits right of A, so the head points left into A.
	head := commandsOf(d, KindTriangle)[0].Points
	assert.Equal(t, end, head[0])
	assert.Greater(t, head[1].X, end.X)
	assert.InDelta(t, float64(ArrowSize), head[2].Y-head[1].Y, 1e-9)

	marker := commandsOf(d, KindCircle)[0]
	assert.Equal(t, start.X, marker.X)
	assert.Equal(t, float64(MarkerRadius), marker.Radius)
}

func TestDiagramJSON(t *testing.T) {
	tables := namedTables("A")
	d := Layout(tables, nil, destinations(tables), canvas)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"rect"`)
	assert.Contains(t, string(data), `"dest":"table_0"`)
}

func TestHex(t *testing.T) {
	assert.Equal(t, Color{R: 0x11, G: 0x55, B: 0xCC}, Hex("#1155CC"))
	assert.Panics(t, func() { Hex("#12") })
}
