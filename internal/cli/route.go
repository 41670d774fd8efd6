// Package cli implements the route command.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termpilot/termpilot/internal/catalog"
	"github.com/termpilot/termpilot/internal/config"
	"github.com/termpilot/termpilot/internal/db"
	"github.com/termpilot/termpilot/internal/output"
	"github.com/termpilot/termpilot/internal/route"
)

var flagRouteDryRun bool

func init() {
	routeCmd.Flags().BoolVar(&flagRouteDryRun, "dry-run", false, "do not record the decision in the audit log")

	rootCmd.AddCommand(routeCmd)
}

type routeView struct {
	Input  string `json:"input" yaml:"input"`
	Target string `json:"target" yaml:"target"`
	Rule   string `json:"rule,omitempty" yaml:"rule,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func (v routeView) RenderText(styled bool) string {
	s := fmt.Sprintf("%s  %s", output.Render(output.StyleFor(v.Target), v.Target, styled), v.Reason)
	if v.Rule != "" {
		s += fmt.Sprintf(" (rule: %q)", v.Rule)
	}
	return s
}

var routeCmd = &cobra.Command{
	Use:   "route <instruction>",
	Short: "Decide whether an instruction is a shell command or an assistant task",
	Long: `Route one free-text instruction to a local shell or the coding assistant.

With --session-id, the session's assistant-mode flag overrides the
routing rules: while the flag is set, every instruction routes to the
assistant.

Examples:
  termpilot route "git status"
  termpilot route "explain how this function works"
  termpilot route -s <session-id> "git status"`,
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

		if !flagRouteDryRun {
			if err := recordRouteDecision(instruction, result); err != nil {
				return err
			}
		}

		out := output.New(output.Format(GetOutput()))
		return out.Write(routeView{
			Input:  instruction,
			Target: result.Target.String(),
			Rule:   result.Rule,
			Reason: result.Reason,
		})
	},
}

// routeWithSession applies the session assistant-mode override when a
// session is given.
func routeWithSession(instruction string, cat *catalog.Catalog) (route.Result, error) {
	if flagSessionID == "" {
		return route.Route(instruction, cat), nil
	}

	store, err := db.Open(GetDB())
	if err != nil {
		return route.Result{}, fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	sess, err := store.GetSession(flagSessionID)
	if err != nil {
		if errors.Is(err, db.ErrSessionNotFound) {
			return route.Result{}, fmt.Errorf("session %s not found", flagSessionID)
		}
		return route.Result{}, err
	}

	s := &route.Session{ID: sess.ID, AssistantMode: sess.AssistantMode}
	result := s.Route(instruction, cat)

	if err := store.TouchSession(sess.ID); err != nil {
		return route.Result{}, fmt.Errorf("touching session: %w", err)
	}
	return result, nil
}

func recordRouteDecision(instruction string, result route.Result) error {
	store, err := db.Open(GetDB())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	return store.AppendDecision(&db.Decision{
		SessionID: flagSessionID,
		Kind:      db.KindRoute,
		Input:     instruction,
		Outcome:   result.Target.String(),
		Rule:      result.Rule,
		Reason:    result.Reason,
	})
}
