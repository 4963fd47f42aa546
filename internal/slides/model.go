// Package slides reads and writes PowerPoint (PPTX) decks at the level the
// office tools need: slide order, shape kinds, positions and text.
package slides

import "strings"

// ShapeKind is the closed set of slide shape kinds.
type ShapeKind int

const (
	ShapeOther ShapeKind = iota
	ShapeText
	ShapePicture
	ShapeGraphicFrame
	ShapeGroup
	ShapeConnector
)

var shapeKindNames = map[ShapeKind]string{
	ShapeOther:        "other",
	ShapeText:         "text",
	ShapePicture:      "picture",
	ShapeGraphicFrame: "graphicFrame",
	ShapeGroup:        "group",
	ShapeConnector:    "connector",
}

func (k ShapeKind) String() string {
	if s, ok := shapeKindNames[k]; ok {
		return s
	}
	return "other"
}

// HasText reports whether shapes of this kind carry a text body that
// survives a merge.
func (k ShapeKind) HasText() bool {
	return k == ShapeText
}

// Shape is one top-level shape of a slide. Geometry is in EMU; a zero size
// means the shape inherits its placement from a layout.
type Shape struct {
	Kind       ShapeKind
	Name       string
	X, Y       int64
	CX, CY     int64
	Paragraphs []string
}

// Text joins the shape's paragraphs with newlines.
func (s Shape) Text() string {
	return strings.Join(s.Paragraphs, "\n")
}

// Slide is an ordered list of shapes.
type Slide struct {
	Shapes []Shape
}

// Text returns the text of every text shape, one line per paragraph.
func (s Slide) Text() string {
	var parts []string
	for _, sh := range s.Shapes {
		if !sh.Kind.HasText() {
			continue
		}
		if t := strings.TrimSpace(sh.Text()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// Deck is a parsed presentation.
type Deck struct {
	Width  int64
	Height int64
	Slides []Slide
}

// Default slide size: 10in × 7.5in (4:3).
const (
	DefaultWidth  int64 = 9144000
	DefaultHeight int64 = 6858000
)
