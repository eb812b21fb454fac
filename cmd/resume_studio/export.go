package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/export"
	"github.com/jonathan/resume-studio/internal/observability"
)

var (
	exportInput    string
	exportOutput   string
	exportTemplate string
	exportStrategy string
	exportKey      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a document to PDF",
	Long: `Renders a résumé or cover letter JSON document with a template and writes a PDF.

The vector strategy draws the layout directly. The raster strategy captures the
preview in a headless browser and needs use_browser in the config file.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "in", "i", "", "Path to the document JSON file (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "Path to the output PDF file (required)")
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", "", "Template id (defaults to the configured default)")
	exportCmd.Flags().StringVarP(&exportStrategy, "strategy", "s", "", "Export strategy: vector or raster (defaults to the template's preference)")
	exportCmd.Flags().StringVar(&exportKey, "archive-key", "", "Archive the PDF under this key when an archive is configured")

	_ = exportCmd.MarkFlagRequired("in")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	doc, err := readDocument(exportInput)
	if err != nil {
		return err
	}
	strategy, err := export.ParseStrategy(exportStrategy)
	if err != nil {
		return err
	}

	ctx := context.Background()
	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	engine, err := newEngine(ctx, cfg, registry)
	if err != nil {
		return err
	}

	res, err := engine.Run(ctx, export.Request{
		Document:   doc,
		TemplateID: exportTemplate,
		Format:     export.FormatPDF,
		Strategy:   strategy,
		Key:        exportKey,
	})
	if err != nil {
		return err
	}
	if err := writeOutput(exportOutput, res.Bytes); err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintExportResult(res, exportOutput)
	} else {
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d page(s) to %s\n", res.PageCount, exportOutput)
	}
	return nil
}
