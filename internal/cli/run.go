// Package cli implements the run command.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/termpilot/termpilot/internal/config"
	"github.com/termpilot/termpilot/internal/dispatch"
	"github.com/termpilot/termpilot/internal/output"
)

var (
	flagRunTimeout int
	flagRunLogDir  string
)

func init() {
	runCmd.Flags().IntVar(&flagRunTimeout, "timeout", 0, "shell command timeout in seconds (default from config)")
	runCmd.Flags().StringVar(&flagRunLogDir, "log-dir", "", "directory for per-command output logs (default from config)")

	rootCmd.AddCommand(runCmd)
}

type runView struct {
	Input    string  `json:"input" yaml:"input"`
	Target   string  `json:"target" yaml:"target"`
	ExitCode int     `json:"exit_code" yaml:"exit_code"`
	Duration string  `json:"duration" yaml:"duration"`
	Output   string  `json:"output" yaml:"output"`
	Rule     string  `json:"rule,omitempty" yaml:"rule,omitempty"`
	Reason   string  `json:"reason,omitempty" yaml:"reason,omitempty"`
	Err      *string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (v runView) RenderText(styled bool) string {
	header := fmt.Sprintf("%s  exit=%d  %s",
		output.Render(output.StyleFor(v.Target), v.Target, styled), v.ExitCode, v.Duration)
	if v.Output == "" {
		return header
	}
	return header + "\n" + v.Output
}

var runCmd = &cobra.Command{
	Use:   "run <instruction>",
	Short: "Route an instruction and execute it",
	Long: `Route one free-text instruction and execute it: shell commands run
locally, assistant tasks are handed to the assistant CLI. The routing
decision is recorded in the audit log either way.

Examples:
  termpilot run "git status"
  termpilot run "explain how the watcher debounces events"
  termpilot run -s <session-id> "summarize the diff"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instruction := args[0]

		cat, err := config.BuildCatalog(cfg)
		if err != nil {
			return err
		}

		result, err := routeWithSession(instruction, cat)
		if err != nil {
			return err
		}
		if err := recordRouteDecision(instruction, result); err != nil {
			return err
		}

		timeout := time.Duration(cfg.Dispatch.ShellTimeoutSecs) * time.Second
		if flagRunTimeout > 0 {
			timeout = time.Duration(flagRunTimeout) * time.Second
		}
		logDir := cfg.Dispatch.LogDir
		if flagRunLogDir != "" {
			logDir = flagRunLogDir
		}

		d := &dispatch.Dispatcher{
			Shell:     &dispatch.ShellRunner{Timeout: timeout, LogDir: logDir},
			Assistant: &dispatch.AssistantRunner{Command: cfg.Dispatch.AssistantCommand},
		}

		out := output.New(output.Format(GetOutput()))

		res, err := d.Dispatch(context.Background(), instruction, result)
		if err != nil {
			_ = out.WriteError("dispatch_error", err.Error())
			return err
		}

		return out.Write(runView{
			Input:    instruction,
			Target:   result.Target.String(),
			ExitCode: res.ExitCode,
			Duration: res.Duration.Round(time.Millisecond).String(),
			Output:   res.Output,
			Rule:     result.Rule,
			Reason:   result.Reason,
		})
	},
}
