package export

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonathan/resume-studio/internal/preview"
)

// inherited lists the CSS properties that cascade from parent to child. They
// are written out on every element so no value depends on an ancestor.
var inherited = []string{
	"color",
	"font-family",
	"font-size",
	"font-style",
	"font-weight",
	"line-height",
	"text-align",
	"text-transform",
	"white-space",
}

type declaration struct {
	prop  string
	value string
}

// declarations is an ordered property list in which a later value replaces an earlier one
type declarations []declaration

func (d *declarations) set(prop, value string) {
	for i := range *d {
		if (*d)[i].prop == prop {
			(*d)[i].value = value
			return
		}
	}
	*d = append(*d, declaration{prop: prop, value: value})
}

func (d declarations) get(prop string) (string, bool) {
	for _, decl := range d {
		if decl.prop == prop {
			return decl.value, true
		}
	}
	return "", false
}

func (d declarations) String() string {
	parts := make([]string, len(d))
	for i, decl := range d {
		parts[i] = decl.prop + ":" + decl.value
	}
	return strings.Join(parts, ";")
}

func parseDeclarations(s string) declarations {
	var out declarations
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		out.set(prop, value)
	}
	return out
}

// parseStylesheet reads single-class rules of the form .name{decls}. Other
// selectors are ignored.
func parseStylesheet(css string) map[string]declarations {
	rules := make(map[string]declarations)
	for _, block := range strings.Split(css, "}") {
		selector, body, ok := strings.Cut(block, "{")
		if !ok {
			continue
		}
		selector = strings.TrimSpace(selector)
		if !strings.HasPrefix(selector, ".") || strings.ContainsAny(selector[1:], " .,>:#[") {
			continue
		}
		name := selector[1:]
		merged := rules[name]
		for _, d := range parseDeclarations(body) {
			merged.set(d.prop, d.value)
		}
		rules[name] = merged
	}
	return rules
}

// Normalize returns a standalone copy of preview markup suited to off-screen
// capture. Class rules and inherited properties are resolved to literal inline
// styles, the style sheet and class attributes are removed, every inline SVG is
// replaced by a PNG data URI of iconPixels square, and the page is pinned to
// the A4 canvas. The input is not modified.
func Normalize(markup string, iconPixels int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", &FailureError{Message: "failed to parse preview markup", Cause: err}
	}

	var css strings.Builder
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		css.WriteString(s.Text())
	})
	rules := parseStylesheet(css.String())
	doc.Find("style").Remove()

	body := doc.Find("body")
	body.SetAttr("style", "margin:0;padding:0;background-color:#ffffff")

	var walkErr error
	var walk func(s *goquery.Selection, parent declarations)
	walk = func(s *goquery.Selection, parent declarations) {
		s.Each(func(_ int, el *goquery.Selection) {
			if walkErr != nil {
				return
			}
			if goquery.NodeName(el) == "svg" {
				walkErr = replaceSVG(el, parent, iconPixels)
				return
			}

			computed := computeStyle(el, rules, parent)
			el.RemoveAttr("class")
			if len(computed) > 0 {
				el.SetAttr("style", computed.String())
			}
			walk(el.Children(), computed)
		})
	}
	walk(body.Children(), nil)
	if walkErr != nil {
		return "", walkErr
	}

	pinCanvas(body.Children().First())

	out, err := doc.Html()
	if err != nil {
		return "", &FailureError{Message: "failed to serialize normalized markup", Cause: err}
	}
	return out, nil
}

// computeStyle resolves the class rules and inline style of an element and
// fills in inherited properties the element does not set itself
func computeStyle(el *goquery.Selection, rules map[string]declarations, parent declarations) declarations {
	var own declarations
	for _, class := range strings.Fields(el.AttrOr("class", "")) {
		for _, d := range rules[class] {
			own.set(d.prop, d.value)
		}
	}
	for _, d := range parseDeclarations(el.AttrOr("style", "")) {
		own.set(d.prop, d.value)
	}

	for _, prop := range inherited {
		if _, ok := own.get(prop); ok {
			continue
		}
		if v, ok := parent.get(prop); ok {
			own.set(prop, v)
		}
	}
	return own
}

// replaceSVG swaps an inline SVG for an image, resolving currentColor against
// the computed colour of its parent
func replaceSVG(el *goquery.Selection, parent declarations, px int) error {
	markup, err := goquery.OuterHtml(el)
	if err != nil {
		return &FailureError{Message: "failed to read inline svg", Cause: err}
	}
	color, ok := parent.get("color")
	if !ok {
		color = "#000000"
	}
	markup = strings.ReplaceAll(markup, "currentColor", color)

	img, err := rasterizeSVG(markup, px)
	if err != nil {
		return &FailureError{Message: "failed to rasterize inline svg", Cause: err}
	}

	size := strconv.Itoa(px)
	el.ReplaceWithNodes(&html.Node{
		Type: html.ElementNode,
		Data: "img",
		Attr: []html.Attribute{
			{Key: "src", Val: "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)},
			{Key: "width", Val: size},
			{Key: "height", Val: size},
			{Key: "alt", Val: ""},
			{Key: "style", Val: fmt.Sprintf("display:block;width:%spx;height:%spx", size, size)},
		},
	})
	return nil
}

func pinCanvas(page *goquery.Selection) {
	if page.Length() == 0 {
		return
	}
	decls := parseDeclarations(page.AttrOr("style", ""))
	var out declarations
	for _, d := range decls {
		if d.prop != "min-height" {
			out.set(d.prop, d.value)
		}
	}
	out.set("box-sizing", "border-box")
	out.set("width", strconv.Itoa(preview.CanvasWidth)+"px")
	out.set("height", strconv.Itoa(preview.CanvasHeight)+"px")
	out.set("overflow", "hidden")
	page.SetAttr("style", out.String())
}
