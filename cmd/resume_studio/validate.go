package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/observability"
)

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a document JSON file",
	Long:  "Checks a document against the document schema and the field rules used by the editor.",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to the document JSON file (required)")
	_ = validateCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	doc, err := readDocument(validateInput)
	if err != nil {
		return err
	}
	if verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintDocument(doc)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid %s\n", validateInput, doc.Kind)
	return nil
}
