// Package export turns a document and a template into a PDF. Two strategies
// are available: vector draws the template layout with PDF primitives, raster
// captures the rendered preview as a page image. Both are verified before
// their bytes are returned.
package export

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/resume-studio/internal/templates"
	"github.com/jonathan/resume-studio/internal/types"
)

// Format is an output file format
type Format string

// FormatPDF is the only supported output format
const FormatPDF Format = "pdf"

// fixedCreationDate is stamped into every PDF so identical inputs give identical bytes
var fixedCreationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Request describes one export
type Request struct {
	Document   *types.Document
	TemplateID string
	Format     Format
	// Strategy overrides the configured and template-preferred strategy when set
	Strategy templates.Strategy
	// Key identifies the export in the archive, usually user and session
	Key string
}

// Result is a finished export
type Result struct {
	Bytes      []byte             `json:"-"`
	PageCount  int                `json:"page_count"`
	Strategy   templates.Strategy `json:"strategy"`
	TemplateID string             `json:"template_id"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// Strategy produces a PDF for a document laid out with a template
type Strategy interface {
	Name() templates.Strategy
	Export(ctx context.Context, doc *types.Document, tpl templates.Template) (*Result, error)
}

// ParseStrategy parses a strategy name. The empty string is accepted and means
// no preference.
func ParseStrategy(s string) (templates.Strategy, error) {
	switch templates.Strategy(s) {
	case "", templates.StrategyVector, templates.StrategyRaster:
		return templates.Strategy(s), nil
	default:
		return "", &UnsupportedStrategyError{Strategy: s}
	}
}

// contextError classifies a context error as a timeout or a failure
func contextError(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Message: msg, Cause: err}
	}
	return &FailureError{Message: msg, Cause: err}
}
