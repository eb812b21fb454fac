package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/observability"
	"github.com/jonathan/resume-studio/internal/preview"
)

var (
	previewInput    string
	previewOutput   string
	previewTemplate string
	previewFormat   string
	previewMode     string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a document preview",
	Long:  "Lays a document out with a template and writes the preview as an HTML page or as the layout tree in JSON.",
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewInput, "in", "i", "", "Path to the document JSON file (required)")
	previewCmd.Flags().StringVarP(&previewOutput, "out", "o", "", "Output file (default stdout)")
	previewCmd.Flags().StringVarP(&previewTemplate, "template", "t", "", "Template id (defaults to the configured default)")
	previewCmd.Flags().StringVarP(&previewFormat, "format", "f", "html", "Output format: html or tree")
	previewCmd.Flags().StringVar(&previewMode, "mode", string(preview.ModePreview), "Render mode: edit or preview")

	_ = previewCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(previewCmd)
}

func runPreview(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	mode, err := preview.ParseMode(previewMode)
	if err != nil {
		return err
	}
	if previewFormat != "html" && previewFormat != "tree" {
		return fmt.Errorf("unknown format %q: use html or tree", previewFormat)
	}

	doc, err := readDocument(previewInput)
	if err != nil {
		return err
	}
	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	tpl, found := registry.ResolveOrDefault(previewTemplate)
	if !found && previewTemplate != "" {
		fmt.Fprintf(os.Stderr, "Warning: unknown template %q, using %q\n", previewTemplate, tpl.ID)
	}

	tree := preview.Render(doc, tpl, preview.Options{Mode: mode})

	var out []byte
	if previewFormat == "tree" {
		out, err = json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal layout tree: %w", err)
		}
	} else {
		html, err := preview.HTML(tree)
		if err != nil {
			return err
		}
		out = []byte(html)
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintDocument(doc)
	}
	return writeOutput(previewOutput, out)
}
