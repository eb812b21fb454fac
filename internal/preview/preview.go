// Package preview produces the on-screen representation of a document: the
// template layout annotated for the current mode, and the HTML markup the
// editor shows.
package preview

import (
	"fmt"

	"github.com/jonathan/resume-studio/internal/layout"
	"github.com/jonathan/resume-studio/internal/templates"
	"github.com/jonathan/resume-studio/internal/types"
)

// Mode is the preview mode of a session
type Mode string

const (
	// ModeEdit marks bound fields as editable in place
	ModeEdit Mode = "edit"
	// ModePreview is the read-only view
	ModePreview Mode = "preview"
)

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeEdit, ModePreview:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown preview mode %q", s)
	}
}

// Options configures a render. The zero value renders in preview mode.
type Options struct {
	Mode Mode
}

// Render lays doc out with tpl. In edit mode every node bound to a document
// field is flagged editable. The result depends only on the arguments.
func Render(doc *types.Document, tpl templates.Template, opts Options) *layout.Tree {
	tree := tpl.Layout(doc)
	if opts.Mode != ModeEdit {
		return tree
	}
	layout.Walk(tree.Root, func(n *layout.Node) bool {
		if n.Kind == layout.KindText && n.Field != "" {
			n.Editable = true
		}
		return true
	})
	return tree
}
