// Package cli implements the Cobra command-line interface for termpilot.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/termpilot/termpilot/internal/config"
	"github.com/termpilot/termpilot/internal/output"
	"github.com/termpilot/termpilot/internal/utils"
)

// Version information set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flag values
var (
	flagConfig    string
	flagOutput    string
	flagJSON      bool
	flagVerbose   bool
	flagDB        string
	flagActor     string
	flagSessionID string
)

// cfg is the loaded configuration, populated in PersistentPreRunE.
var cfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "termpilot",
	Short: "Terminal copilot bridge - auto-answers assistant prompts, routes commands",
	Long: `termpilot watches captured terminal output from a coding-assistant CLI,
answers interactive prompts automatically where that is safe, and escalates
everything else to you.

Prompts are classified fail-closed, first match wins:
  REQUIRE-USER  - credentials and destructive file ops always escalate
  CRITICAL      - destructive vocabulary always escalates
  AUTO-APPROVE  - known-safe prompts are confirmed
  AUTO-DECLINE  - known-unwanted prompts are declined
  (no match)    - escalate; unknown prompts are never auto-approved

Free-text instructions are routed to a local shell or to the assistant.
Every decision is appended to an audit log.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.General.LogLevel
		if flagVerbose {
			level = "debug"
		}
		log.SetLevel(utils.ParseLevel(level))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]any{
			"version":    version,
			"commit":     commit,
			"build_date": date,
			"go_version": runtime.Version(),
			"db_path":    GetDB(),
		}

		switch GetOutput() {
		case "json", "yaml":
			out := output.New(output.Format(GetOutput()))
			return out.Write(payload)
		case "text":
			fmt.Printf("termpilot %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
			fmt.Printf("  go:     %s\n", runtime.Version())
			fmt.Printf("  db:     %s\n", GetDB())
			return nil
		default:
			return fmt.Errorf("unsupported format: %s", GetOutput())
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetOutput returns the configured output format.
// Precedence: CLI flags > config > default.
func GetOutput() string {
	if flagJSON {
		return "json"
	}
	if flagOutput != "" {
		return flagOutput
	}
	if cfg.General.Output != "" {
		return cfg.General.Output
	}
	return "text"
}

// GetDB returns the database path.
// Precedence: CLI flag > config > project-local default.
func GetDB() string {
	if flagDB != "" {
		return flagDB
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, ".termpilot", "state.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".termpilot", "state.db")
}

// GetActor returns the actor identifier.
func GetActor() string {
	if flagActor != "" {
		return flagActor
	}
	if cfg.General.Actor != "" {
		return cfg.General.Actor
	}
	if actor := os.Getenv("TERMPILOT_ACTOR"); actor != "" {
		return actor
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	host, _ := os.Hostname()
	if host == "" {
		host = "localhost"
	}
	return user + "@" + host
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "shorthand for --output=json")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path")
	rootCmd.PersistentFlags().StringVar(&flagActor, "actor", "", "actor identifier")
	rootCmd.PersistentFlags().StringVarP(&flagSessionID, "session-id", "s", "", "session ID")

	rootCmd.AddCommand(versionCmd)
}
