// Package layout defines the visual tree produced by templates and consumed by
// the preview renderer and both export strategies. Every style value in the
// tree is a literal: colours are RGB, sizes are points.
package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// A4 page size in points
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// NodeKind is the structural role of a node
type NodeKind string

const (
	// KindPage is the root of a tree
	KindPage NodeKind = "page"
	// KindBlock stacks its children vertically
	KindBlock NodeKind = "block"
	// KindRow lays its children out left to right, wrapping when full
	KindRow NodeKind = "row"
	// KindText is a run of text
	KindText NodeKind = "text"
	// KindIcon is a named pictogram
	KindIcon NodeKind = "icon"
	// KindRule is a horizontal line
	KindRule NodeKind = "rule"
	// KindSpacer is vertical whitespace of Style.Height
	KindSpacer NodeKind = "spacer"
)

// Color is an opaque RGB colour
type Color struct {
	R, G, B uint8
}

// Hex returns the colour as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses #rgb or #rrggbb
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustHex is ParseHex for compile-time constants
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Common colours
var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
)

// PaintKind selects how a background is filled
type PaintKind string

const (
	PaintNone     PaintKind = ""
	PaintSolid    PaintKind = "solid"
	PaintGradient PaintKind = "gradient"
)

// Gradient is a two-stop linear gradient running left to right
type Gradient struct {
	From Color
	To   Color
}

// Paint is a node background
type Paint struct {
	Kind     PaintKind
	Color    Color
	Gradient Gradient
}

// Solid returns a single-colour paint
func Solid(c Color) Paint {
	return Paint{Kind: PaintSolid, Color: c}
}

// LinearGradient returns a left-to-right gradient paint
func LinearGradient(from, to Color) Paint {
	return Paint{Kind: PaintGradient, Gradient: Gradient{From: from, To: to}}
}

// FontFamily is one of the generic families every output can honour
type FontFamily string

const (
	FontSans  FontFamily = "sans"
	FontSerif FontFamily = "serif"
)

// Align is horizontal text alignment
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Edges holds per-side lengths in points
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Uniform returns equal edges on all sides
func Uniform(v float64) Edges {
	return Edges{v, v, v, v}
}

// Border is a bottom border line
type Border struct {
	Width float64
	Color Color
}

// Style is the literal presentation of a node
type Style struct {
	Background   Paint
	Color        Color
	FontFamily   FontFamily
	FontSize     float64
	Bold         bool
	Italic       bool
	Uppercase    bool
	Align        Align
	LineHeight   float64
	Padding      Edges
	MarginBottom float64
	BorderBottom Border
	Radius       float64
	Width        float64
	Height       float64
	Gap          float64
}

// Node is one element of the visual tree
type Node struct {
	Kind        NodeKind
	Role        string
	SectionID   string
	Field       string
	Text        string
	Placeholder bool
	Editable    bool
	Icon        Icon
	Style       Style
	Children    []*Node
}

// Page describes the physical page
type Page struct {
	Width  float64
	Height float64
	Margin Edges
}

// Tree is the output of a template layout
type Tree struct {
	TemplateID string
	Page       Page
	Root       *Node
}

// Walk visits n and its descendants depth-first; returning false skips the children
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Clone returns a deep copy of the tree
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := *t
	out.Root = t.Root.Clone()
	return &out
}

// Clone returns a deep copy of the node
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return &out
}

// Find returns the first node satisfying fn, or nil
func (t *Tree) Find(fn func(*Node) bool) *Node {
	var found *Node
	Walk(t.Root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if fn(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Text concatenates all text runs in document order, one per line
func (t *Tree) Text() string {
	var sb strings.Builder
	Walk(t.Root, func(n *Node) bool {
		if n.Kind == KindText {
			sb.WriteString(n.Text)
			sb.WriteString("\n")
		}
		return true
	})
	return sb.String()
}
