// Package cli implements the watch command.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/termpilot/termpilot/internal/db"
	"github.com/termpilot/termpilot/internal/output"
	"github.com/termpilot/termpilot/internal/tui"
	"github.com/termpilot/termpilot/internal/watch"
)

var flagWatchTUI bool

func init() {
	watchCmd.Flags().BoolVar(&flagWatchTUI, "tui", false, "render a live terminal UI instead of streaming lines")

	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow new decisions as they are recorded",
	Long: `Follow the decision log. New decisions appear as they are appended
by other termpilot processes. With --tui, a live viewer is rendered
instead of streamed lines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(GetDB())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		if flagWatchTUI {
			return tui.Run(store, 200)
		}
		return streamDecisions(store)
	},
}

func streamDecisions(store *db.DB) error {
	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	w, err := watch.New(store.Path(), debounce)
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := w.Start(ctx); err != nil {
		return err
	}

	logger := log.Default().WithPrefix("watch")
	out := output.New(output.Format(GetOutput()))

	// Only decisions recorded after this point are streamed.
	lastSeen := time.Now().UTC()

	logger.Info("watching decision log", "db", store.Path())

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		case _, ok := <-w.Events():
			if !ok {
				return nil
			}

			decisions, err := store.ListDecisions(db.DecisionFilter{Since: lastSeen})
			if err != nil {
				logger.Warn("listing decisions failed", "err", err)
				continue
			}
			for _, d := range decisions {
				view := logView{Decisions: []logEntryView{{
					ID:        d.ID,
					Kind:      d.Kind,
					Input:     d.Input,
					Outcome:   d.Outcome,
					Rule:      d.Rule,
					Context:   d.Context,
					SessionID: d.SessionID,
					CreatedAt: d.CreatedAt.Format(time.RFC3339),
				}}}
				if err := out.Write(view); err != nil {
					return err
				}
				// The Since filter is inclusive; skip past this entry.
				if !d.CreatedAt.Before(lastSeen) {
					lastSeen = d.CreatedAt.Add(time.Nanosecond)
				}
			}
		}
	}
}
