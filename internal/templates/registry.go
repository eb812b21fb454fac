// Package templates holds the fixed set of visual templates and the registry
// used to look them up. A template turns a document into a layout.Tree and
// never changes the document it is given.
package templates

import (
	"fmt"
	"log"

	"github.com/jonathan/resume-studio/internal/layout"
	"github.com/jonathan/resume-studio/internal/types"
)

// DefaultID is the template used when none is selected or the selection is unknown
const DefaultID = "modern"

// Strategy names an export path a template renders best with
type Strategy string

const (
	// StrategyVector draws the layout with PDF primitives
	StrategyVector Strategy = "vector"
	// StrategyRaster captures the rendered page as an image
	StrategyRaster Strategy = "raster"
)

// UnknownTemplateError reports a lookup of a template id that is not registered
type UnknownTemplateError struct {
	ID string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template: %q", e.ID)
}

// Template is a named visual style
type Template struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	PrimaryColor      layout.Color `json:"-"`
	AccentColor       layout.Color `json:"-"`
	TextColor         layout.Color `json:"-"`
	PreferredStrategy Strategy     `json:"preferred_strategy"`
	theme             theme
}

// Layout builds the visual tree of doc. It is a pure function of the
// template and the document.
func (t Template) Layout(doc *types.Document) *layout.Tree {
	var root *layout.Node
	var page layout.Page
	if doc != nil && doc.Kind == types.KindCoverLetter && doc.CoverLetter != nil {
		root, page = t.coverLetter(doc.CoverLetter)
	} else {
		var r types.Resume
		if doc != nil && doc.Resume != nil {
			r = *doc.Resume
		}
		root, page = t.resume(&r)
	}
	return &layout.Tree{TemplateID: t.ID, Page: page, Root: root}
}

// Builtin returns the four templates shipped with the application, in display order
func Builtin() []Template {
	return []Template{
		{
			ID: "modern", Name: "Modern",
			PrimaryColor: layout.MustHex("#2563eb"), AccentColor: layout.MustHex("#dbeafe"), TextColor: textColor,
			PreferredStrategy: StrategyVector,
			theme:             theme{header: headerBand, font: layout.FontSans},
		},
		{
			ID: "elegant", Name: "Elegant",
			PrimaryColor: layout.MustHex("#7c3aed"), AccentColor: layout.MustHex("#ede9fe"), TextColor: textColor,
			PreferredStrategy: StrategyVector,
			theme:             theme{header: headerCentered, font: layout.FontSerif},
		},
		{
			ID: "professional", Name: "Professional",
			PrimaryColor: layout.MustHex("#1f2937"), AccentColor: layout.MustHex("#f3f4f6"), TextColor: textColor,
			PreferredStrategy: StrategyVector,
			theme:             theme{header: headerBand, font: layout.FontSans},
		},
		{
			ID: "creative", Name: "Creative",
			PrimaryColor: layout.MustHex("#ec4899"), AccentColor: layout.MustHex("#ffedd5"), TextColor: textColor,
			PreferredStrategy: StrategyRaster,
			theme: theme{
				header:       headerBand,
				font:         layout.FontSans,
				gradientTo:   layout.MustHex("#f97316"),
				headerRadius: 8,
			},
		},
	}
}

// Registry resolves template ids. It is immutable after construction.
type Registry struct {
	byID      map[string]Template
	order     []string
	defaultID string
}

// NewRegistry creates a registry over the given templates. defaultID must be one of them.
func NewRegistry(defaultID string, tpls ...Template) (*Registry, error) {
	r := &Registry{byID: make(map[string]Template, len(tpls)), defaultID: defaultID}
	for _, t := range tpls {
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		r.byID[t.ID] = t
		r.order = append(r.order, t.ID)
	}
	if _, ok := r.byID[defaultID]; !ok {
		return nil, &UnknownTemplateError{ID: defaultID}
	}
	return r, nil
}

// DefaultRegistry returns a registry of the built-in templates with "modern" as default
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultID, Builtin()...)
	if err != nil {
		panic(err)
	}
	return r
}

// List returns all templates in display order
func (r *Registry) List() []Template {
	out := make([]Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// DefaultID returns the id of the fallback template
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// Resolve returns the template with the given id
func (r *Registry) Resolve(id string) (Template, error) {
	t, ok := r.byID[id]
	if !ok {
		return Template{}, &UnknownTemplateError{ID: id}
	}
	return t, nil
}

// ResolveOrDefault returns the template with the given id, or the default
// template when the id is unknown. The bool reports whether id was found.
func (r *Registry) ResolveOrDefault(id string) (Template, bool) {
	t, err := r.Resolve(id)
	if err != nil {
		log.Printf("[templates] %v, falling back to %q", err, r.defaultID)
		return r.byID[r.defaultID], false
	}
	return t, true
}
