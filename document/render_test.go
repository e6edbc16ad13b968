package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lvillar/pbitdoc/schema"
)

var pageObject = regexp.MustCompile(`/Type /Page[^s]`)

func render(t *testing.T, m *schema.Model, opts ...Option) (string, *Info) {
	t.Helper()
	opts = append([]Option{WithCompression(false)}, opts...)

	var buf bytes.Buffer
	info, err := NewRenderer(opts...).Render(&buf, Assemble(m))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	return buf.String(), info
}

func TestRenderSalesScenario(t *testing.T) {
	out, info := render(t, salesModel())

	assert.Equal(t, 4, info.Pages)
	assert.Len(t, pageObject.FindAllString(out, -1), 4)

	for _, s := range []string{
		"(Power BI Documentation - ERD)",
		"(Index)",
		"(Sales)",
		"(Table: Sales)",
		"(OrderID)",
		"(Amount)",
		"(decimal)",
		"(ERD Diagram)",
		"(Relationships of table: Sales)",
		"(No relationships.)",
	} {
		assert.Contains(t, out, s)
	}
	assert.NotContains(t, out, "(Description: ")
	assert.NotContains(t, out, "/Author")
	assert.Contains(t, out, "/Annots")

	require.NotNil(t, info.Diagram)
	require.Len(t, info.Diagram.Boxes, 1)
	assert.Equal(t, "Sales", info.Diagram.Boxes[0].Table)
}

func TestRenderEmptyModel(t *testing.T) {
	out, info := render(t, &schema.Model{})

	assert.Equal(t, 3, info.Pages)
	assert.Contains(t, out, "(Index)")
	assert.Contains(t, out, "(ERD Diagram)")
	assert.Empty(t, info.Diagram.Boxes)
	assert.NotContains(t, out, "(Table: ")
}

func TestRenderOneDetailPagePerTable(t *testing.T) {
	m := &schema.Model{Tables: []schema.Table{{Name: "A"}, {Name: "B"}, {Name: "C"}}}
	_, info := render(t, m)
	// index, three detail pages, diagram, summary
	assert.Equal(t, 6, info.Pages)
}

func TestRenderLongGridSpillsOntoNextPage(t *testing.T) {
	tbl := schema.Table{Name: "Wide"}
	for i := 0; i < 120; i++ {
		tbl.Columns = append(tbl.Columns, schema.Column{Name: "col", DataType: "string"})
	}
	out, info := render(t, &schema.Model{Tables: []schema.Table{tbl}})

	assert.Greater(t, info.Pages, 4)
	assert.Greater(t, strings.Count(out, "(Column)"), 1)
}

func TestRenderDropsUnmatchedRelationshipsFromDiagramOnly(t *testing.T) {
	m := &schema.Model{
		Tables: []schema.Table{{Name: "Sales"}},
		Relationships: []schema.Relationship{
			{FromTable: "Sales", FromColumn: "K", ToTable: "Ghost", ToColumn: "K"},
		},
	}
	out, info := render(t, m)

	assert.Empty(t, info.Diagram.Edges)
	assert.Equal(t, 1, info.Diagram.Skipped)
	assert.Contains(t, out, "(Ghost)")
	// The summary row without an edge is set in muted italics.
	assert.Contains(t, out, "/BaseFont /Helvetica-Oblique")
	assert.Contains(t, out, "0.400 g")
}

func TestRenderTranslatesLatin1(t *testing.T) {
	m := &schema.Model{Tables: []schema.Table{{Name: "Año"}}}
	out, _ := render(t, m)
	assert.Contains(t, out, "(A\xf1o)")
}

func TestRenderIsDeterministicWithFixedDate(t *testing.T) {
	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	// Several fonts and an image put multiple entries in the resource
	// catalogs, whose order must not vary between runs.
	opts := []Option{WithCreationDate(date), WithFingerprintQR("abc123"), WithPageNumbers(true)}
	first, infoFirst := render(t, salesModel(), opts...)

	for range 10 {
		out, info := render(t, salesModel(), opts...)
		require.Equal(t, infoFirst.Pages, info.Pages)
		require.Equal(t, withoutDates(first), withoutDates(out))
	}
}

func withoutDates(pdf string) string {
	var keep []string
	for _, line := range strings.Split(pdf, "\n") {
		if !strings.Contains(line, "Date") {
			keep = append(keep, line)
		}
	}
	return strings.Join(keep, "\n")
}

func TestRenderMetadataAndExtras(t *testing.T) {
	out, info := render(t, salesModel(),
		WithTitle("Sales model"),
		WithAuthor("BI team"),
		WithPageNumbers(true),
		WithFingerprintQR("abc123"),
	)

	assert.Contains(t, out, "/Author (")
	assert.Contains(t, out, "(Page 1/4)")
	assert.Contains(t, out, "(Page 4/4)")
	assert.Contains(t, out, "/Subtype /Image")
	assert.Equal(t, 4, info.Pages)
}

func TestRenderCompressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewRenderer().Render(&buf, Assemble(salesModel()))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "/FlateDecode")
}

func writeLetterhead(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "letterhead.pdf")
	src := gofpdf.New("P", "pt", "A4", "")
	src.AddPage()
	src.SetFont("Helvetica", "", 12)
	src.Text(40, 40, "ACME Corp")
	require.NoError(t, src.OutputFileAndClose(path))
	return path
}

func TestRenderLetterhead(t *testing.T) {
	_, info := render(t, salesModel(), WithLetterhead(writeLetterhead(t)))
	assert.Equal(t, 4, info.Pages)
}

func TestRenderLetterheadConcurrently(t *testing.T) {
	path := writeLetterhead(t)

	var g errgroup.Group
	sizes := make([]int, 8)
	for i := range sizes {
		g.Go(func() error {
			var buf bytes.Buffer
			info, err := NewRenderer(WithLetterhead(path)).Render(&buf, Assemble(salesModel()))
			if err != nil {
				return err
			}
			if info.Pages != 4 {
				return fmt.Errorf("render %d: got %d pages", i, info.Pages)
			}
			sizes[i] = buf.Len()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, n := range sizes {
		assert.Positive(t, n)
	}
}

var fillRect = regexp.MustCompile(`(-?[\d.]+) (-?[\d.]+) (-?[\d.]+) (-?[\d.]+) re f\b`)

func TestRenderLongFilledBlockContinuesOnNextPage(t *testing.T) {
	model := func(lines int) *schema.Model {
		expr := make([]string, lines)
		for i := range expr {
			expr[i] = fmt.Sprintf("VAR line%d = %d", i, i)
		}
		m := salesModel()
		m.Tables[0].Measures = []schema.Measure{{Name: "Long", Expression: strings.Join(expr, "\n")}}
		return m
	}
	short, shortInfo := render(t, model(2))
	long, longInfo := render(t, model(200))

	assert.Greater(t, longInfo.Pages, shortInfo.Pages+1)
	assert.Contains(t, long, "(VAR line199 = 199)")

	// Every background stays above the bottom margin, and the long block
	// gets one background per page it spans.
	fullWidth := func(out string) int {
		n := 0
		for _, m := range fillRect.FindAllStringSubmatch(out, -1) {
			y, _ := strconv.ParseFloat(m[2], 64)
			h, _ := strconv.ParseFloat(m[4], 64)
			assert.GreaterOrEqual(t, y+h, float64(marginY)-0.01, m[0])
			if m[3] == "515.28" {
				n++
			}
		}
		return n
	}
	assert.GreaterOrEqual(t, fullWidth(long), fullWidth(short)+2)
}

func TestRenderMissingLetterheadFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pdf")
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	var buf bytes.Buffer
	_, err = NewRenderer(WithLetterhead(path)).Render(&buf, Assemble(salesModel()))
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
