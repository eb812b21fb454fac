package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/document"
	"github.com/jonathan/resume-studio/internal/types"
)

var (
	newKind   string
	newOutput string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an empty document",
	Long:  "Writes a new résumé (with the default Education, Experience, Skills and Achievements sections) or cover letter as JSON, ready to edit and export.",
	RunE:  runNew,
}

func init() {
	newCmd.Flags().StringVarP(&newKind, "kind", "k", string(types.KindResume), "Document kind: resume or cover_letter")
	newCmd.Flags().StringVarP(&newOutput, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(newCmd)
}

func runNew(_ *cobra.Command, _ []string) error {
	doc, err := document.New(types.DocumentKind(newKind), document.Options{})
	if err != nil {
		return err
	}
	data, err := document.Marshal(doc)
	if err != nil {
		return err
	}
	return writeOutput(newOutput, append(data, '\n'))
}
