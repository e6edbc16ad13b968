package document

import (
	"strconv"

	"github.com/lvillar/pbitdoc/diagram"
	"github.com/lvillar/pbitdoc/schema"
	"github.com/lvillar/pbitdoc/table"
)

// Fixed labels.
const (
	Title                 = "Power BI Documentation - ERD"
	IndexTitle            = "Index"
	DiagramTitle          = "ERD Diagram"
	RelationshipsTitle    = "Relationship Details"
	NoRelationships       = "No relationships."
	tablePrefix           = "Table: "
	descriptionPrefix     = "Description: "
	measurePrefix         = "Measure: "
	relationshipsOfPrefix = "Relationships of table: "
)

var (
	columnHeaders       = []string{"Column", "Type", "Description"}
	columnWidths        = []float64{150, 100, 250}
	relationshipHeaders = []string{"From Column", "From Table", "To Column", "To Table"}
	relationshipWidths  = []float64{120, 120, 120, 120}

	relationshipHeadingFill = table.RGBColor{R: 0xD9, G: 0xD9, B: 0xD9}
	relationshipHeaderFill  = table.RGBColor{R: 0xCF, G: 0xE2, B: 0xF3}

	// DiagramSize is the canvas of the diagram page.
	DiagramSize = diagram.Size{W: 500, H: 500}
)

// Story is the assembled block sequence of one document.
type Story struct {
	Blocks []Block
	// Destinations maps table names to link destinations. When two tables
	// share a name the later one wins.
	Destinations map[string]string
}

// Destination returns the link destination of the table at index i.
func Destination(i int) string {
	return "table_" + strconv.Itoa(i)
}

func (s *Story) add(b ...Block) {
	s.Blocks = append(s.Blocks, b...)
}

// Assemble builds the blocks for m in document order: title and index, one
// detail section per table, the diagram, and the relationship summary.
func Assemble(m *schema.Model) *Story {
	s := &Story{Destinations: make(map[string]string, len(m.Tables))}

	s.add(
		Text{Text: Title, Style: StyleTitle, SpaceAfter: 30},
		Text{Text: IndexTitle, Style: StyleSubtitle, SpaceAfter: 10},
	)
	for i, t := range m.Tables {
		s.Destinations[t.Name] = Destination(i)
		s.add(Text{Text: t.Name, Style: StyleIndexLink, Link: Destination(i), SpaceAfter: 6})
	}
	s.add(PageBreak{})

	for i, t := range m.Tables {
		s.tableSection(i, t)
		s.add(PageBreak{})
	}

	s.add(
		Text{Text: DiagramTitle, Style: StyleSubtitle, SpaceAfter: 22},
		DiagramBlock{
			Tables:        m.Tables,
			Relationships: m.Relationships,
			Destinations:  s.Destinations,
			Size:          DiagramSize,
		},
		PageBreak{},
	)

	s.add(Text{Text: RelationshipsTitle, Style: StyleSubtitle, SpaceAfter: 22})
	for _, t := range m.Tables {
		s.relationshipSection(t, m.RelationshipsFor(t.Name))
	}
	return s
}

func (s *Story) tableSection(i int, t schema.Table) {
	fill := tableFill(i)
	s.add(Text{Text: tablePrefix + t.Name, Style: StyleTableHeading, Fill: &fill, Anchor: Destination(i), SpaceAfter: 8})
	if t.Description != "" {
		s.add(Text{Text: descriptionPrefix + t.Description, Style: StyleNormal, SpaceAfter: 8})
	}
	if t.Source != "" {
		s.add(Text{Text: t.Source, Style: StyleSource, SpaceAfter: 8})
	}

	rows := make([][]string, len(t.Columns))
	for j, c := range t.Columns {
		rows[j] = []string{c.Name, c.DataType, c.Description}
	}
	s.add(Grid{
		Headers:    columnHeaders,
		Widths:     columnWidths,
		Rows:       rows,
		HeaderFill: fill,
		FontSize:   10,
		SpaceAfter: 12,
	})

	for _, m := range t.Measures {
		s.add(
			Text{Text: measurePrefix + m.Name, Style: StyleMeasureTitle, SpaceAfter: 8},
			Text{Text: m.Expression, Style: StyleMeasureBody, SpaceAfter: 8},
		)
		if m.Description != "" {
			s.add(Text{Text: descriptionPrefix + m.Description, Style: StyleNormal})
		}
		s.add(spacer(8))
	}
}

func (s *Story) relationshipSection(t schema.Table, rels []schema.Relationship) {
	fill := relationshipHeadingFill
	s.add(Text{Text: relationshipsOfPrefix + t.Name, Style: StyleRelationshipHeading, Fill: &fill, SpaceAfter: 6})
	if len(rels) == 0 {
		s.add(Text{Text: NoRelationships, Style: StyleNormal, SpaceAfter: 8})
		return
	}

	// Relationships naming a table outside the model have no diagram edge.
	rows := make([][]string, len(rels))
	var dimmed []int
	for j, r := range rels {
		rows[j] = []string{r.FromColumn, r.FromTable, r.ToColumn, r.ToTable}
		_, okFrom := s.Destinations[r.FromTable]
		_, okTo := s.Destinations[r.ToTable]
		if !okFrom || !okTo {
			dimmed = append(dimmed, j)
		}
	}
	s.add(Grid{
		Headers:    relationshipHeaders,
		Widths:     relationshipWidths,
		Rows:       rows,
		Dimmed:     dimmed,
		HeaderFill: relationshipHeaderFill,
		FontSize:   9,
		SpaceAfter: 12,
	})
}

// spacer is an empty paragraph that only contributes vertical space.
func spacer(h float64) Text {
	return Text{Style: StyleNormal, SpaceAfter: h}
}

func tableFill(i int) table.RGBColor {
	c := diagram.BoxColor(i)
	return table.RGBColor{R: c.R, G: c.G, B: c.B}
}
