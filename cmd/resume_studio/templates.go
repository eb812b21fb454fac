package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/observability"
)

var templatesJSON bool

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available templates",
	RunE:  runTemplates,
}

func init() {
	templatesCmd.Flags().BoolVar(&templatesJSON, "json", false, "Print the list as JSON")
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	if templatesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"default":   registry.DefaultID(),
			"templates": registry.List(),
		})
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintTemplates(registry)
	return nil
}
