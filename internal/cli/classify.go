// Package cli implements the classify command.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/termpilot/termpilot/internal/classify"
	"github.com/termpilot/termpilot/internal/config"
	"github.com/termpilot/termpilot/internal/db"
	"github.com/termpilot/termpilot/internal/output"
)

var (
	flagClassifyBuffer bool
	flagClassifyDryRun bool
)

func init() {
	classifyCmd.Flags().BoolVar(&flagClassifyBuffer, "buffer", false, "read a full terminal buffer from stdin and classify its last prompt line")
	classifyCmd.Flags().BoolVar(&flagClassifyDryRun, "dry-run", false, "do not record the decision in the audit log")

	rootCmd.AddCommand(classifyCmd)
}

type classifyView struct {
	Input             string   `json:"input" yaml:"input"`
	IsPrompt          bool     `json:"is_prompt" yaml:"is_prompt"`
	Decision          string   `json:"decision,omitempty" yaml:"decision,omitempty"`
	Rule              string   `json:"rule,omitempty" yaml:"rule,omitempty"`
	Reason            string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	Context           string   `json:"context,omitempty" yaml:"context,omitempty"`
	CriticalImpact    bool     `json:"critical_impact" yaml:"critical_impact"`
	PossibleResponses []string `json:"possible_responses,omitempty" yaml:"possible_responses,omitempty"`
}

func (v classifyView) RenderText(styled bool) string {
	if !v.IsPrompt {
		return output.Render(output.StyleMuted, "not a prompt: no trigger phrase matched", styled)
	}
	s := fmt.Sprintf("%s  %s", output.Render(output.StyleFor(v.Decision), v.Decision, styled), v.Reason)
	if v.Rule != "" {
		s += fmt.Sprintf(" (rule: %q)", v.Rule)
	}
	if len(v.PossibleResponses) > 0 {
		s += fmt.Sprintf("\noptions: %v", v.PossibleResponses)
	}
	return s
}

var classifyCmd = &cobra.Command{
	Use:   "classify <prompt-line>",
	Short: "Classify a captured prompt line into an auto-response decision",
	Long: `Classify a captured terminal prompt into yes, no, or abort.

By default the argument is treated as one captured line. With --buffer,
the full terminal buffer is read from stdin and the last non-empty line
is extracted and gated on the prompt trigger phrases first.

Examples:
  termpilot classify "Do you want to create a CLAUDE.md file? [y/n]"
  tmux capture-pane -p | termpilot classify --buffer`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := config.BuildCatalog(cfg)
		if err != nil {
			return err
		}

		var prompt *classify.Prompt
		var isPrompt bool

		if flagClassifyBuffer {
			buffer, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading buffer from stdin: %w", err)
			}
			prompt, isPrompt = classify.Extract(string(buffer), cat)
		} else {
			if len(args) != 1 {
				return fmt.Errorf("a prompt line argument is required without --buffer")
			}
			prompt = classify.NewPrompt(args[0], classify.ContextGeneral, cat)
			_, isPrompt = cat.MatchTrigger(prompt.Text)
		}

		out := output.New(output.Format(GetOutput()))

		if !isPrompt {
			input := ""
			if prompt != nil {
				input = prompt.Text
			} else if len(args) == 1 {
				input = args[0]
			}
			return out.Write(classifyView{Input: input, IsPrompt: false})
		}

		outcome := classify.Classify(prompt, cat)

		if !flagClassifyDryRun {
			if err := recordPromptDecision(prompt, outcome); err != nil {
				return err
			}
		}

		return out.Write(classifyView{
			Input:             prompt.Text,
			IsPrompt:          true,
			Decision:          outcome.Decision.String(),
			Rule:              outcome.Rule,
			Reason:            outcome.Reason,
			Context:           string(prompt.Context),
			CriticalImpact:    prompt.CriticalImpact,
			PossibleResponses: prompt.Responses,
		})
	},
}

func recordPromptDecision(prompt *classify.Prompt, outcome classify.Outcome) error {
	store, err := db.Open(GetDB())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	return store.AppendDecision(&db.Decision{
		SessionID: flagSessionID,
		Kind:      db.KindPrompt,
		Input:     prompt.Text,
		Outcome:   outcome.Decision.String(),
		Rule:      outcome.Rule,
		Reason:    outcome.Reason,
		Context:   string(prompt.Context),
	})
}
