// Package diagram lays out an entity-relationship diagram for a simplified
// model. Layout is a pure function: it returns boxes, edges and a flat list of
// drawing commands in canvas coordinates, independent of any PDF backend.
//
// Canvas coordinates have their origin at the top-left corner with y growing
// downward. All lengths are in points.
package diagram

import (
	"fmt"
	"strconv"
	"strings"
)

// Layout constants.
const (
	MaxColumns      = 3  // grid columns
	Padding         = 30 // canvas padding on every side
	Gap             = 20 // space between boxes
	OffsetStep      = 20 // vertical offset between parallel edges
	MarkerRadius    = 6  // origin marker radius
	ArrowSize       = 12 // arrowhead length
	MaxColumnNames  = 5  // column names listed per box
	MaxMeasureNames = 3  // measure names listed per box

	nameBaseline  = 12
	firstLine     = 24
	lineStep      = 10
	textIndent    = 5
	nameFontSize  = 10
	itemFontSize  = 8
	edgeLineWidth = 1
)

// Size is a canvas size.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color is an RGB color.
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex parses a "#RRGGBB" color. It panics on malformed input and is meant for
// package-level palettes.
func Hex(s string) Color {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		panic(fmt.Sprintf("diagram: bad color %q", s))
	}
	return Color{R: int(v >> 16 & 0xFF), G: int(v >> 8 & 0xFF), B: int(v & 0xFF)}
}

var (
	// BoxPalette colors table boxes and table headings by table index.
	BoxPalette = []Color{Hex("#D9EAD3"), Hex("#CFE2F3"), Hex("#FCE5CD"), Hex("#F4CCCC")}
	// EdgePalette colors relationship curves by the index of the origin table.
	EdgePalette = []Color{Hex("#38761D"), Hex("#0B5394"), Hex("#B45F06"), Hex("#990000")}

	Black       = Color{}
	MarkerColor = Hex("#1155CC")
)

// BoxColor returns the palette color for the table at index i.
func BoxColor(i int) Color { return BoxPalette[i%len(BoxPalette)] }

// EdgeColor returns the edge color for an origin table at index i.
func EdgeColor(i int) Color { return EdgePalette[i%len(EdgePalette)] }

// Font selects a core font face.
type Font struct {
	Family string  `json:"family"`
	Style  string  `json:"style"`
	Size   float64 `json:"size"`
}

// Kind identifies a drawing command.
type Kind int

const (
	KindRect Kind = iota + 1
	KindText
	KindCircle
	KindBezier
	KindTriangle
	KindLinkRect
)

var kindNames = map[Kind]string{
	KindRect:     "rect",
	KindText:     "text",
	KindCircle:   "circle",
	KindBezier:   "bezier",
	KindTriangle: "triangle",
	KindLinkRect: "link",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText renders the kind by name so diagrams serialize readably.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Command is a single drawing instruction. Which fields apply depends on Kind:
//
//   - Rect: X, Y, W, H, Fill, Stroke
//   - Text: X, Y (baseline), Text, Font, Fill
//   - Circle: X, Y (center), Radius, Fill
//   - Bezier: Points (start, control 1, control 2, end), Stroke, LineWidth
//   - Triangle: Points (tip first), Fill, Stroke
//   - LinkRect: X, Y, W, H, Dest
type Command struct {
	Kind      Kind    `json:"kind"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	W         float64 `json:"w,omitempty"`
	H         float64 `json:"h,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
	Points    []Point `json:"points,omitempty"`
	Text      string  `json:"text,omitempty"`
	Font      *Font   `json:"font,omitempty"`
	Fill      *Color  `json:"fill,omitempty"`
	Stroke    *Color  `json:"stroke,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
	Dest      string  `json:"dest,omitempty"`
}

// Box is the placed rectangle of one table.
type Box struct {
	Table string  `json:"table"`
	Index int     `json:"index"`
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Dest  string  `json:"dest"`
}

// Center returns the center of the box.
func (b Box) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Edge is a drawn relationship curve.
type Edge struct {
	FromTable string  `json:"fromTable"`
	ToTable   string  `json:"toTable"`
	Offset    float64 `json:"offset"`
	Start     Point   `json:"start"`
	End       Point   `json:"end"`
}

// Diagram is the result of Layout.
type Diagram struct {
	Canvas   Size      `json:"canvas"`
	Cols     int       `json:"cols"`
	Rows     int       `json:"rows"`
	Boxes    []Box     `json:"boxes"`
	Edges    []Edge    `json:"edges"`
	Skipped  int       `json:"skipped"`
	Commands []Command `json:"commands"`
}
