// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-studio/internal/export"
	"github.com/jonathan/resume-studio/internal/templates"
	"github.com/jonathan/resume-studio/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
	// previewChars is how much of a section's content is echoed
	previewChars = 40
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes. fmt's width counts bytes, which
// misaligns accented names.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// PrintDocument outputs a summary of a résumé or cover letter
func (p *Printer) PrintDocument(doc *types.Document) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:       %s\n", doc.ID))

	switch {
	case doc.Resume != nil:
		r := doc.Resume
		sb.WriteString(fmt.Sprintf("Name:     %s\n", orDash(r.FullName)))
		sb.WriteString(fmt.Sprintf("Title:    %s\n", orDash(r.ProfessionalTitle)))
		sb.WriteString(fmt.Sprintf("Email:    %s\n", orDash(r.Email)))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Sections (%d):\n", len(r.Sections)))
		count := min(len(r.Sections), maxItemsToShow)
		for i := 0; i < count; i++ {
			s := r.Sections[i]
			sb.WriteString(fmt.Sprintf("  %d. %s [%s]", i+1, s.Title, s.Kind))
			if s.Content != "" {
				first, _, _ := strings.Cut(s.Content, "\n")
				sb.WriteString(": " + truncate(first, previewChars))
			}
			sb.WriteString("\n")
		}
		if len(r.Sections) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.Sections)-maxItemsToShow))
		}
		p.printBox("RESUME", sb.String())

	case doc.CoverLetter != nil:
		c := doc.CoverLetter
		sb.WriteString(fmt.Sprintf("From:     %s\n", orDash(c.Sender.FullName)))
		sb.WriteString(fmt.Sprintf("To:       %s\n", templates.Greeting(c.RecipientName)))
		sb.WriteString(fmt.Sprintf("Company:  %s\n", orDash(c.CompanyName)))
		sb.WriteString(fmt.Sprintf("Date:     %s\n", orDash(c.LetterDate)))
		sb.WriteString(fmt.Sprintf("Body:     %d words\n", len(strings.Fields(c.BodyText))))
		p.printBox("COVER LETTER", sb.String())
	}
}

// PrintTemplates lists the registered templates, marking the default
func (p *Printer) PrintTemplates(registry *templates.Registry) {
	if registry == nil {
		return
	}

	var sb strings.Builder
	for _, t := range registry.List() {
		marker := " "
		if t.ID == registry.DefaultID() {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %-14s %-16s %s\n", marker, t.ID, t.Name, t.PreferredStrategy))
	}
	p.printBox("TEMPLATES", sb.String())
}

// PrintExportResult outputs the outcome of an export
func (p *Printer) PrintExportResult(res *export.Result, path string) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Template: %s\n", res.TemplateID))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", res.Strategy))
	sb.WriteString(fmt.Sprintf("Pages:    %d\n", res.PageCount))
	sb.WriteString(fmt.Sprintf("Size:     %d bytes\n", len(res.Bytes)))
	if path != "" {
		sb.WriteString(fmt.Sprintf("Output:   %s\n", path))
	}
	if len(res.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range res.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", w))
		}
	}
	p.printBox("EXPORT", sb.String())
}

// PrintWarnings outputs non-fatal warnings, if any
func (p *Printer) PrintWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	var sb strings.Builder
	for _, w := range warnings {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", w))
	}
	p.printBox("WARNINGS", sb.String())
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
