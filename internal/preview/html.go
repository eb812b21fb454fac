package preview

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/jonathan/resume-studio/internal/layout"
)

// Canvas size of one A4 page at 96 DPI
const (
	CanvasWidth  = 794
	CanvasHeight = 1123
)

// IconPixels is the on-screen size of section and contact icons
const IconPixels = 18

const pageTemplate = `{{define "attrs"}} class="{{.Class}}"{{with .Role}} data-role="{{.}}"{{end}}` +
	`{{with .SectionID}} data-section-id="{{.}}"{{end}}{{with .Field}} data-field="{{.}}"{{end}}` +
	`{{if .Editable}} contenteditable="true"{{end}}{{if .Placeholder}} data-placeholder="true"{{end}}{{end}}` +
	`{{define "node"}}` +
	`{{if eq .Tag "p"}}<p{{template "attrs" .}}>{{.Text}}</p>` +
	`{{else if eq .Tag "span"}}<span{{template "attrs" .}}>{{.SVG}}</span>` +
	`{{else if eq .Tag "hr"}}<hr{{template "attrs" .}}>` +
	`{{else}}<div{{template "attrs" .}}>{{range .Children}}{{template "node" .}}{{end}}</div>{{end}}` +
	`{{end}}` +
	`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
{{.CSS}}</style>
</head>
<body data-template="{{.TemplateID}}">
{{template "node" .Root}}
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

type element struct {
	Tag         string
	Class       string
	Role        string
	SectionID   string
	Field       string
	Editable    bool
	Placeholder bool
	Text        string
	SVG         template.HTML
	Children    []element
}

type pageData struct {
	Title      string
	TemplateID string
	CSS        template.CSS
	Root       element
}

// stylesheet assigns one class per distinct declaration list, numbered in
// document order
type stylesheet struct {
	byDecl map[string]string
	rules  []string
}

func (s *stylesheet) class(decls []string) string {
	key := strings.Join(decls, ";")
	if name, ok := s.byDecl[key]; ok {
		return name
	}
	name := "s" + strconv.Itoa(len(s.rules))
	s.byDecl[key] = name
	s.rules = append(s.rules, "."+name+"{"+key+"}")
	return name
}

func (s *stylesheet) String() string {
	var sb strings.Builder
	for _, r := range s.rules {
		sb.WriteString(r)
		sb.WriteString("\n")
	}
	return sb.String()
}

// HTML renders tree as a standalone HTML page. Styles are emitted as a class
// style sheet, sections carry data-section-id and icons are inline SVG drawn
// with currentColor.
func HTML(tree *layout.Tree) (string, error) {
	if tree == nil || tree.Root == nil {
		return "", &RenderError{Message: "empty layout tree"}
	}

	sheet := &stylesheet{byDecl: make(map[string]string)}
	root, err := buildElement(tree.Root, tree.Page, sheet)
	if err != nil {
		return "", err
	}

	title := "Resume"
	if n := tree.Find(func(n *layout.Node) bool { return n.Role == "name" }); n != nil {
		title = n.Text
	}

	var sb strings.Builder
	err = pageTmpl.Execute(&sb, pageData{
		Title:      title,
		TemplateID: tree.TemplateID,
		CSS:        template.CSS(sheet.String()),
		Root:       root,
	})
	if err != nil {
		return "", &RenderError{Message: "failed to execute page template", Cause: err}
	}
	return sb.String(), nil
}

func buildElement(n *layout.Node, page layout.Page, sheet *stylesheet) (element, error) {
	el := element{
		Role:        n.Role,
		SectionID:   n.SectionID,
		Field:       n.Field,
		Editable:    n.Editable,
		Placeholder: n.Placeholder,
		Class:       sheet.class(declarations(n, page)),
	}

	switch n.Kind {
	case layout.KindText:
		el.Tag = "p"
		el.Text = n.Text
		if n.Style.Uppercase {
			el.Text = strings.ToUpper(el.Text)
		}
	case layout.KindIcon:
		el.Tag = "span"
		svg, err := layout.IconSVG(n.Icon, IconPixels, "currentColor")
		if err != nil {
			return element{}, &RenderError{Message: "failed to render icon", Cause: err}
		}
		el.SVG = template.HTML(svg)
	case layout.KindRule:
		el.Tag = "hr"
	default:
		el.Tag = "div"
		for _, c := range n.Children {
			child, err := buildElement(c, page, sheet)
			if err != nil {
				return element{}, err
			}
			el.Children = append(el.Children, child)
		}
	}
	return el, nil
}

func pt(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "pt"
}

func edges(e layout.Edges) string {
	return pt(e.Top) + " " + pt(e.Right) + " " + pt(e.Bottom) + " " + pt(e.Left)
}

func fontStack(f layout.FontFamily) string {
	if f == layout.FontSerif {
		return "Georgia, 'Times New Roman', serif"
	}
	return "Helvetica, Arial, sans-serif"
}

func justify(a layout.Align) string {
	switch a {
	case layout.AlignCenter:
		return "center"
	case layout.AlignRight:
		return "flex-end"
	default:
		return "flex-start"
	}
}

// declarations returns the CSS declarations of a node, in a fixed order
func declarations(n *layout.Node, page layout.Page) []string {
	st := n.Style
	var d []string
	add := func(prop, value string) {
		d = append(d, prop+":"+value)
	}

	switch st.Background.Kind {
	case layout.PaintSolid:
		add("background-color", st.Background.Color.Hex())
	case layout.PaintGradient:
		add("background-image", fmt.Sprintf("linear-gradient(to right, %s, %s)",
			st.Background.Gradient.From.Hex(), st.Background.Gradient.To.Hex()))
	}

	switch n.Kind {
	case layout.KindPage:
		add("box-sizing", "border-box")
		add("width", strconv.Itoa(CanvasWidth)+"px")
		add("min-height", strconv.Itoa(CanvasHeight)+"px")
		add("padding", edges(page.Margin))
		add("color", st.Color.Hex())
		add("font-family", fontStack(st.FontFamily))
		return d
	case layout.KindText:
		add("margin", "0")
		add("color", st.Color.Hex())
		add("font-family", fontStack(st.FontFamily))
		if st.FontSize > 0 {
			add("font-size", pt(st.FontSize))
		}
		if st.Bold {
			add("font-weight", "700")
		}
		if st.Italic {
			add("font-style", "italic")
		}
		if st.Align != "" {
			add("text-align", string(st.Align))
		}
		if st.LineHeight > 0 {
			add("line-height", strconv.FormatFloat(st.LineHeight, 'f', -1, 64))
		}
		add("white-space", "pre-wrap")
	case layout.KindIcon:
		add("display", "inline-flex")
		add("flex", "none")
		add("color", st.Color.Hex())
		add("width", strconv.Itoa(IconPixels)+"px")
		add("height", strconv.Itoa(IconPixels)+"px")
	case layout.KindRow:
		add("display", "flex")
		add("flex-wrap", "wrap")
		add("align-items", "center")
		add("justify-content", justify(st.Align))
		if st.Gap > 0 {
			add("gap", pt(st.Gap))
		}
	case layout.KindRule:
		add("border", "none")
		add("border-top", fmt.Sprintf("%s solid %s", pt(max(st.BorderBottom.Width, 1)), st.BorderBottom.Color.Hex()))
		add("margin", "0")
	case layout.KindSpacer:
		add("height", pt(st.Height))
	case layout.KindBlock:
		if st.Align != "" {
			add("text-align", string(st.Align))
		}
		if st.Width > 0 {
			add("width", pt(st.Width))
			if st.Align == layout.AlignCenter {
				add("margin-left", "auto")
				add("margin-right", "auto")
			}
		}
		if st.Height > 0 {
			add("height", pt(st.Height))
		}
	}

	if st.Padding != (layout.Edges{}) {
		add("padding", edges(st.Padding))
	}
	if st.MarginBottom > 0 {
		add("margin-bottom", pt(st.MarginBottom))
	}
	if st.BorderBottom.Width > 0 && n.Kind != layout.KindRule {
		add("border-bottom", fmt.Sprintf("%s solid %s", pt(st.BorderBottom.Width), st.BorderBottom.Color.Hex()))
	}
	if st.Radius > 0 {
		add("border-radius", pt(st.Radius))
	}
	return d
}
