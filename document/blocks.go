// Package document assembles a simplified model into an ordered sequence of
// blocks and flows them onto A4 pages.
//
// The block set is closed: Text, Grid, DiagramBlock and PageBreak are the only
// implementations of Block, and Renderer handles each one explicitly.
package document

import (
	"github.com/lvillar/pbitdoc/diagram"
	"github.com/lvillar/pbitdoc/schema"
	"github.com/lvillar/pbitdoc/table"
)

// Block is one unit of document content.
type Block interface {
	block()
}

// Style selects the typography of a Text block.
type Style int

const (
	StyleNormal Style = iota
	StyleTitle
	StyleSubtitle
	StyleIndexLink
	StyleTableHeading
	StyleSource
	StyleMeasureTitle
	StyleMeasureBody
	StyleRelationshipHeading
)

// Text is a paragraph. When Fill is set the paragraph is drawn on a padded
// colored background. Link makes the paragraph jump to a destination; Anchor
// registers the paragraph as a destination.
type Text struct {
	Text       string
	Style      Style
	Fill       *table.RGBColor
	Link       string
	Anchor     string
	SpaceAfter float64
}

// Grid is a bordered table with a single header row.
type Grid struct {
	Headers    []string
	Widths     []float64
	Rows       [][]string
	// Dimmed lists the indexes of rows drawn in muted italics.
	Dimmed     []int
	HeaderFill table.RGBColor
	FontSize   float64
	SpaceAfter float64
}

// DiagramBlock is the entity-relationship diagram. It is laid out when the
// renderer reaches it.
type DiagramBlock struct {
	Tables        []schema.Table
	Relationships []schema.Relationship
	Destinations  map[string]string
	Size          diagram.Size
	SpaceAfter    float64
}

// PageBreak starts a new page.
type PageBreak struct{}

func (Text) block()         {}
func (Grid) block()         {}
func (DiagramBlock) block() {}
func (PageBreak) block()    {}
