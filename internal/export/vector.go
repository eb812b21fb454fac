package export

import (
	"bytes"
	"context"
	"log"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/resume-studio/internal/layout"
	"github.com/jonathan/resume-studio/internal/templates"
	"github.com/jonathan/resume-studio/internal/types"
)

// continuationTop is the minimum top margin of every page after the first
const continuationTop = 36

const (
	defaultFontSize   = 11
	defaultLineHeight = 1.2
	defaultIconSize   = 12
)

// Vector pages carry flat fills only; a gradient keeps its starting colour.
const warnGradient = "gradient backgrounds are drawn in a single colour in vector PDFs"

const warnEncoding = "some characters are not available in the built-in PDF fonts and were replaced"

// Vector draws the template layout directly with PDF primitives
type Vector struct{}

// Name implements Strategy
func (Vector) Name() templates.Strategy {
	return templates.StrategyVector
}

// Export implements Strategy
func (v Vector) Export(ctx context.Context, doc *types.Document, tpl templates.Template) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, contextError("vector export cancelled", err)
	}

	tree := tpl.Layout(doc)
	data, warnings, err := RenderVector(tree)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, contextError("vector export cancelled", err)
	}

	pages, err := Verify(data)
	if err != nil {
		return nil, err
	}
	log.Printf("[export] vector export of template %q: %d page(s), %d bytes", tpl.ID, pages, len(data))

	return &Result{
		Bytes:      data,
		PageCount:  pages,
		Strategy:   templates.StrategyVector,
		TemplateID: tpl.ID,
		Warnings:   warnings,
	}, nil
}

// RenderVector draws a layout tree as a PDF. Content flows onto further A4
// pages as needed. The returned warnings describe lossy conversions.
func RenderVector(tree *layout.Tree) ([]byte, []string, error) {
	if tree == nil || tree.Root == nil {
		return nil, nil, &FailureError{Message: "empty layout tree"}
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: tree.Page.Width, Ht: tree.Page.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	pdf.SetCreationDate(fixedCreationDate)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("resume-studio", true)
	if name := tree.Find(func(n *layout.Node) bool { return n.Role == "name" }); name != nil {
		pdf.SetTitle(name.Text, true)
	}

	r := &vectorRenderer{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		page:   tree.Page,
		bg:     tree.Root.Style.Background,
		icons:  make(map[layout.Icon]*iconOutline),
		warned: make(map[string]bool),
	}
	r.newPage()

	x := tree.Page.Margin.Left
	w := tree.Page.Width - tree.Page.Margin.Left - tree.Page.Margin.Right
	for _, c := range tree.Root.Children {
		r.draw(c, x, w)
		r.y += c.Style.MarginBottom
	}

	if err := pdf.Error(); err != nil {
		return nil, nil, &FailureError{Message: "failed to draw pdf", Cause: err}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, nil, &FailureError{Message: "failed to write pdf", Cause: err}
	}
	return buf.Bytes(), r.warnings, nil
}

type vectorRenderer struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	page     layout.Page
	bg       layout.Paint
	y        float64
	inRow    bool
	icons    map[layout.Icon]*iconOutline
	warnings []string
	warned   map[string]bool
}

type rowItem struct {
	node *layout.Node
	w, h float64
}

type rowLine struct {
	items  []rowItem
	width  float64
	height float64
}

func (r *vectorRenderer) warn(msg string) {
	if r.warned[msg] {
		return
	}
	r.warned[msg] = true
	r.warnings = append(r.warnings, msg)
	log.Printf("[export] warning: %s", msg)
}

func (r *vectorRenderer) top() float64 {
	if r.pdf.PageNo() <= 1 {
		return r.page.Margin.Top
	}
	return max(r.page.Margin.Top, continuationTop)
}

func (r *vectorRenderer) bottom() float64 {
	return r.page.Height - r.page.Margin.Bottom
}

func (r *vectorRenderer) newPage() {
	r.pdf.AddPage()
	if r.bg.Kind != layout.PaintNone && r.bg != layout.Solid(layout.White) {
		r.fill(r.bg, 0, 0, 0, r.page.Width, r.page.Height)
	}
	r.y = r.top()
}

// ensure starts a new page when h does not fit below the cursor. Content
// taller than a whole page is drawn from the top and clipped.
func (r *vectorRenderer) ensure(h float64) {
	if r.y+h > r.bottom() && r.y > r.top()+0.01 {
		r.newPage()
	}
}

func (r *vectorRenderer) setFont(st layout.Style) {
	family := "Helvetica"
	if st.FontFamily == layout.FontSerif {
		family = "Times"
	}
	style := ""
	if st.Bold {
		style += "B"
	}
	if st.Italic {
		style += "I"
	}
	r.pdf.SetFont(family, style, fontSize(st))
	r.pdf.SetTextColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
}

func fontSize(st layout.Style) float64 {
	if st.FontSize > 0 {
		return st.FontSize
	}
	return defaultFontSize
}

func lineHeight(st layout.Style) float64 {
	lh := st.LineHeight
	if lh <= 0 {
		lh = defaultLineHeight
	}
	return fontSize(st) * lh
}

func iconSize(n *layout.Node) float64 {
	if n.Style.Width > 0 {
		return n.Style.Width
	}
	return defaultIconSize
}

func alignStr(a layout.Align) string {
	switch a {
	case layout.AlignCenter:
		return "C"
	case layout.AlignRight:
		return "R"
	default:
		return "L"
	}
}

func horizontal(st layout.Style) float64 {
	return st.Padding.Left + st.Padding.Right
}

func vertical(st layout.Style) float64 {
	return st.Padding.Top + st.Padding.Bottom + st.BorderBottom.Width
}

// encode converts text to the core font encoding
func (r *vectorRenderer) encode(s string) string {
	out := r.tr(s)
	for _, ch := range s {
		if ch >= 0x80 && r.tr(string(ch)) == "." {
			r.warn(warnEncoding)
			break
		}
	}
	return out
}

// lines splits a text node into encoded lines that fit w. The font must be set.
func (r *vectorRenderer) lines(n *layout.Node, w float64) []string {
	text := n.Text
	if n.Style.Uppercase {
		text = strings.ToUpper(text)
	}
	w = max(w, 1)

	var out []string
	for _, para := range strings.Split(text, "\n") {
		enc := r.encode(para)
		if strings.TrimSpace(enc) == "" {
			out = append(out, "")
			continue
		}
		split := r.pdf.SplitLines([]byte(enc), w)
		if len(split) == 0 {
			out = append(out, "")
			continue
		}
		for _, l := range split {
			out = append(out, string(l))
		}
	}
	return out
}

// naturalWidth is the width a node takes on a single line, uncapped
func (r *vectorRenderer) naturalWidth(n *layout.Node, avail float64) float64 {
	st := n.Style
	switch n.Kind {
	case layout.KindText:
		r.setFont(st)
		text := n.Text
		if st.Uppercase {
			text = strings.ToUpper(text)
		}
		widest := 0.0
		for _, para := range strings.Split(text, "\n") {
			widest = max(widest, r.pdf.GetStringWidth(r.tr(para)))
		}
		return widest + 2*r.pdf.GetCellMargin() + horizontal(st)
	case layout.KindIcon:
		return iconSize(n)
	case layout.KindRow:
		total := horizontal(st)
		for i, c := range n.Children {
			if i > 0 {
				total += st.Gap
			}
			total += r.naturalWidth(c, avail)
		}
		return total
	case layout.KindBlock:
		if st.Width > 0 {
			return st.Width
		}
	}
	return avail
}

func (r *vectorRenderer) rowLines(n *layout.Node, w float64) []rowLine {
	st := n.Style
	inner := w - horizontal(st)
	var lines []rowLine
	var cur rowLine
	for _, c := range n.Children {
		cw := min(r.naturalWidth(c, inner), inner)
		ch := r.height(c, cw)
		if len(cur.items) > 0 && cur.width+st.Gap+cw > inner+0.01 {
			lines = append(lines, cur)
			cur = rowLine{}
		}
		if len(cur.items) > 0 {
			cur.width += st.Gap
		}
		cur.items = append(cur.items, rowItem{node: c, w: cw, h: ch})
		cur.width += cw
		cur.height = max(cur.height, ch)
	}
	if len(cur.items) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

func blockWidth(n *layout.Node, w float64) float64 {
	if n.Style.Width > 0 && n.Style.Width < w {
		return n.Style.Width
	}
	return w
}

func blockX(n *layout.Node, x, w float64) float64 {
	bw := blockWidth(n, w)
	switch n.Style.Align {
	case layout.AlignCenter:
		if n.Style.Width > 0 {
			return x + (w-bw)/2
		}
	case layout.AlignRight:
		if n.Style.Width > 0 {
			return x + w - bw
		}
	}
	return x
}

// height is the height of a node laid out in width w, without its bottom margin
func (r *vectorRenderer) height(n *layout.Node, w float64) float64 {
	st := n.Style
	switch n.Kind {
	case layout.KindText:
		r.setFont(st)
		return float64(len(r.lines(n, w-horizontal(st))))*lineHeight(st) + vertical(st)
	case layout.KindIcon:
		return iconSize(n)
	case layout.KindSpacer:
		return st.Height
	case layout.KindRule:
		return max(st.BorderBottom.Width, 1)
	case layout.KindRow:
		h := vertical(st)
		for i, l := range r.rowLines(n, w) {
			if i > 0 {
				h += st.Gap
			}
			h += l.height
		}
		return h
	default:
		bw := blockWidth(n, w)
		inner := bw - horizontal(st)
		h := vertical(st)
		for _, c := range n.Children {
			h += r.height(c, inner) + c.Style.MarginBottom
		}
		return max(h, st.Height)
	}
}

func (r *vectorRenderer) draw(n *layout.Node, x, w float64) {
	switch n.Kind {
	case layout.KindText:
		r.drawText(n, x, w)
	case layout.KindIcon:
		r.drawIcon(n, x)
	case layout.KindSpacer:
		r.y += n.Style.Height
	case layout.KindRule:
		r.drawRule(n, x, w)
	case layout.KindRow:
		r.drawRow(n, x, w)
	default:
		r.drawBlock(n, x, w)
	}
}

func (r *vectorRenderer) drawBorder(st layout.Style, x, w float64) {
	b := st.BorderBottom
	if b.Width <= 0 {
		return
	}
	r.pdf.SetDrawColor(int(b.Color.R), int(b.Color.G), int(b.Color.B))
	r.pdf.SetLineWidth(b.Width)
	r.pdf.Line(x, r.y+b.Width/2, x+w, r.y+b.Width/2)
	r.y += b.Width
}

func (r *vectorRenderer) drawRule(n *layout.Node, x, w float64) {
	st := n.Style
	st.BorderBottom.Width = max(st.BorderBottom.Width, 1)
	if !r.inRow {
		r.ensure(st.BorderBottom.Width)
	}
	r.drawBorder(st, x, w)
}

func (r *vectorRenderer) drawText(n *layout.Node, x, w float64) {
	st := n.Style
	inner := w - horizontal(st)
	r.setFont(st)
	lh := lineHeight(st)

	r.y += st.Padding.Top
	for _, line := range r.lines(n, inner) {
		if !r.inRow {
			r.ensure(lh)
			r.setFont(st)
		}
		r.pdf.SetXY(x+st.Padding.Left, r.y)
		r.pdf.CellFormat(inner, lh, line, "", 0, alignStr(st.Align), false, 0, "")
		r.y += lh
	}
	r.y += st.Padding.Bottom
	r.drawBorder(st, x, w)
}

func (r *vectorRenderer) drawIcon(n *layout.Node, x float64) {
	size := iconSize(n)
	if !r.inRow {
		r.ensure(size)
	}

	outline, ok := r.icons[n.Icon]
	if !ok {
		var err error
		if outline, err = compileIcon(n.Icon); err != nil {
			log.Printf("[export] icon %s: %v", n.Icon, err)
		}
		r.icons[n.Icon] = outline
	}
	if outline == nil || outline.stroke(r.pdf, x, r.y, size, n.Style.Color) != nil {
		r.warn("icon " + string(n.Icon) + " could not be drawn and was left out")
	}
	r.y += size
}

func (r *vectorRenderer) drawRow(n *layout.Node, x, w float64) {
	st := n.Style
	inner := w - horizontal(st)

	r.y += st.Padding.Top
	for i, line := range r.rowLines(n, w) {
		if i > 0 {
			r.y += st.Gap
		}
		if !r.inRow {
			r.ensure(line.height)
		}

		offset := 0.0
		switch st.Align {
		case layout.AlignCenter:
			offset = (inner - line.width) / 2
		case layout.AlignRight:
			offset = inner - line.width
		}

		top := r.y
		cx := x + st.Padding.Left + max(offset, 0)
		prev := r.inRow
		r.inRow = true
		for _, it := range line.items {
			r.y = top + (line.height-it.h)/2
			r.draw(it.node, cx, it.w)
			cx += it.w + st.Gap
		}
		r.inRow = prev
		r.y = top + line.height
	}
	r.y += st.Padding.Bottom
	r.drawBorder(st, x, w)
}

func (r *vectorRenderer) drawBlock(n *layout.Node, x, w float64) {
	st := n.Style
	bw := blockWidth(n, w)
	bx := blockX(n, x, w)

	if st.Background.Kind != layout.PaintNone {
		h := r.height(n, w)
		if !r.inRow {
			r.ensure(h)
		}
		r.fill(st.Background, st.Radius, bx, r.y, bw, min(h, r.bottom()-r.y))
	}

	page := r.pdf.PageNo()
	top := r.y
	r.y += st.Padding.Top
	for _, c := range n.Children {
		r.draw(c, bx+st.Padding.Left, bw-horizontal(st))
		r.y += c.Style.MarginBottom
	}
	r.y += st.Padding.Bottom
	r.drawBorder(st, bx, bw)

	if r.pdf.PageNo() == page && r.y < top+st.Height {
		r.y = top + st.Height
	}
}

// fill paints a rectangle, clipped to rounded corners when radius is set
func (r *vectorRenderer) fill(p layout.Paint, radius, x, y, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	if radius > 0 {
		r.pdf.ClipRoundedRect(x, y, w, h, radius, false)
		defer r.pdf.ClipEnd()
	}
	switch p.Kind {
	case layout.PaintSolid:
		r.pdf.SetFillColor(int(p.Color.R), int(p.Color.G), int(p.Color.B))
		r.pdf.Rect(x, y, w, h, "F")
	case layout.PaintGradient:
		r.warn(warnGradient)
		from := p.Gradient.From
		r.pdf.SetFillColor(int(from.R), int(from.G), int(from.B))
		r.pdf.Rect(x, y, w, h, "F")
	}
}
