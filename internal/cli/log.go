// Package cli implements the log command.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/termpilot/termpilot/internal/db"
	"github.com/termpilot/termpilot/internal/output"
)

var (
	flagLogKind    string
	flagLogOutcome string
	flagLogSession string
	flagLogSince   string
	flagLogLimit   int
	flagLogCounts  bool
)

func init() {
	logCmd.Flags().StringVar(&flagLogKind, "kind", "", "filter by kind (prompt, route)")
	logCmd.Flags().StringVar(&flagLogOutcome, "outcome", "", "filter by outcome (yes, no, abort, custom, shell, assistant)")
	logCmd.Flags().StringVar(&flagLogSession, "session", "", "filter by session ID")
	logCmd.Flags().StringVar(&flagLogSince, "since", "", "only show decisions after this date (RFC3339 or YYYY-MM-DD)")
	logCmd.Flags().IntVar(&flagLogLimit, "limit", 50, "max results to return")
	logCmd.Flags().BoolVar(&flagLogCounts, "counts", false, "show per-outcome counts instead of entries")

	rootCmd.AddCommand(logCmd)
}

type logEntryView struct {
	ID        string `json:"id" yaml:"id"`
	Kind      string `json:"kind" yaml:"kind"`
	Input     string `json:"input" yaml:"input"`
	Outcome   string `json:"outcome" yaml:"outcome"`
	Rule      string `json:"rule,omitempty" yaml:"rule,omitempty"`
	Context   string `json:"context,omitempty" yaml:"context,omitempty"`
	SessionID string `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

type logView struct {
	Decisions []logEntryView `json:"decisions" yaml:"decisions"`
}

func (v logView) RenderText(styled bool) string {
	if len(v.Decisions) == 0 {
		return output.Render(output.StyleMuted, "no decisions recorded", styled)
	}

	var sb strings.Builder
	for _, d := range v.Decisions {
		fmt.Fprintf(&sb, "%s  %-6s  %s  %s\n",
			output.Render(output.StyleMuted, d.CreatedAt, styled),
			d.Kind,
			output.Render(output.StyleFor(d.Outcome), fmt.Sprintf("%-9s", d.Outcome), styled),
			d.Input,
		)
	}
	return strings.TrimRight(sb.String(), "\n")
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Browse the decision audit log",
	Long: `Browse the append-only decision log.

Examples:
  termpilot log                       # Recent decisions
  termpilot log --kind prompt         # Prompt classifications only
  termpilot log --outcome abort       # Escalations only
  termpilot log --since 2026-08-01    # Decisions since a date
  termpilot log --counts              # Per-outcome summary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(GetDB())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		out := output.New(output.Format(GetOutput()))

		if flagLogCounts {
			counts, err := store.CountDecisions()
			if err != nil {
				return err
			}
			return out.Write(map[string]any{"counts": counts})
		}

		filter := db.DecisionFilter{
			Kind:      flagLogKind,
			Outcome:   flagLogOutcome,
			SessionID: flagLogSession,
			Limit:     flagLogLimit,
		}
		if flagLogSince != "" {
			since, err := parseSince(flagLogSince)
			if err != nil {
				return err
			}
			filter.Since = since
		}

		decisions, err := store.ListDecisions(filter)
		if err != nil {
			return err
		}

		view := logView{Decisions: make([]logEntryView, 0, len(decisions))}
		for _, d := range decisions {
			view.Decisions = append(view.Decisions, logEntryView{
				ID:        d.ID,
				Kind:      d.Kind,
				Input:     d.Input,
				Outcome:   d.Outcome,
				Rule:      d.Rule,
				Context:   d.Context,
				SessionID: d.SessionID,
				CreatedAt: d.CreatedAt.Format(time.RFC3339),
			})
		}

		return out.Write(view)
	},
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q (want RFC3339 or YYYY-MM-DD)", s)
}
