// Package cli implements the catalog command.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/termpilot/termpilot/internal/classify"
	"github.com/termpilot/termpilot/internal/config"
	"github.com/termpilot/termpilot/internal/output"
)

var (
	flagCatalogFormat     string
	flagCatalogOutputFile string
	flagCatalogExitCode   bool
)

func init() {
	catalogExportCmd.Flags().StringVarP(&flagCatalogFormat, "format", "f", "toml", "export format: toml, json")
	catalogExportCmd.Flags().StringVar(&flagCatalogOutputFile, "file", "", "output file (default: stdout)")
	catalogTestCmd.Flags().BoolVar(&flagCatalogExitCode, "exit-code", false, "return non-zero exit code if the line escalates")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogTestCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the prompt and routing pattern catalog",
	Long: `Manage the pattern catalog used for prompt classification and routing.

Patterns are case-insensitive substrings checked in order, first match
wins. Require-user patterns escalate regardless of any other match;
unknown prompts always escalate.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all pattern groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := config.BuildCatalog(cfg)
		if err != nil {
			return err
		}

		g := cat.Groups()
		out := output.New(output.Format(GetOutput()))
		return out.Write(map[string]any{
			"require_user":        g.RequireUser,
			"auto_approve":        g.AutoApprove,
			"auto_decline":        g.AutoDecline,
			"critical_vocabulary": g.Critical,
			"prompt_triggers":     g.Triggers,
			"assistant_prefixes":  g.Prefixes,
			"code_keywords":       g.Keywords,
		})
	},
}

var catalogTestCmd = &cobra.Command{
	Use:   "test <line>",
	Short: "Test a line against the catalog without recording a decision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := config.BuildCatalog(cfg)
		if err != nil {
			return err
		}

		prompt := classify.NewPrompt(args[0], classify.ContextGeneral, cat)
		outcome := classify.Classify(prompt, cat)
		_, isPrompt := cat.MatchTrigger(prompt.Text)

		out := output.New(output.Format(GetOutput()))
		if err := out.Write(classifyView{
			Input:             prompt.Text,
			IsPrompt:          isPrompt,
			Decision:          outcome.Decision.String(),
			Rule:              outcome.Rule,
			Reason:            outcome.Reason,
			CriticalImpact:    prompt.CriticalImpact,
			PossibleResponses: prompt.Responses,
		}); err != nil {
			return err
		}

		if flagCatalogExitCode && outcome.Decision == classify.Abort {
			return fmt.Errorf("line escalates")
		}
		return nil
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the effective catalog",
	Long: `Export the effective catalog (builtin defaults plus config
extensions) as TOML or JSON. The TOML output can be edited and pointed
to via catalog.file in the config to replace groups wholesale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := config.BuildCatalog(cfg)
		if err != nil {
			return err
		}

		var doc string
		switch strings.ToLower(flagCatalogFormat) {
		case "toml":
			doc, err = cat.ExportTOML()
		case "json":
			doc, err = cat.ExportJSON()
		default:
			return fmt.Errorf("unsupported export format: %s", flagCatalogFormat)
		}
		if err != nil {
			return err
		}

		if flagCatalogOutputFile != "" {
			if err := os.WriteFile(flagCatalogOutputFile, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", flagCatalogOutputFile, err)
			}
			fmt.Printf("catalog written to %s\n", flagCatalogOutputFile)
			return nil
		}

		fmt.Println(doc)
		return nil
	},
}
