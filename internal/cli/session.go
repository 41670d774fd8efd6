// Package cli implements session commands.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/termpilot/termpilot/internal/db"
	"github.com/termpilot/termpilot/internal/output"
)

var (
	flagSessionProgram string
	flagSessionGCMins  int
	flagSessionGCDry   bool
)

func init() {
	sessionStartCmd.Flags().StringVar(&flagSessionProgram, "program", "", "assistant program driving this session")
	sessionGCCmd.Flags().IntVar(&flagSessionGCMins, "threshold", 0, "staleness threshold in minutes (default from config)")
	sessionGCCmd.Flags().BoolVar(&flagSessionGCDry, "dry-run", false, "list stale sessions without ending them")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionEndCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionModeCmd)
	sessionCmd.AddCommand(sessionGCCmd)

	rootCmd.AddCommand(sessionCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage terminal sessions",
	Long: `Manage terminal sessions. A session ties decisions to one terminal
and carries the assistant-mode routing override.`,
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a session for this actor and project",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(GetDB())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}

		program := flagSessionProgram
		if program == "" {
			program = cfg.Dispatch.AssistantCommand
		}

		s := &db.Session{Actor: GetActor(), Program: program, ProjectPath: cwd}
		if err := store.CreateSession(s); err != nil {
			if errors.Is(err, db.ErrActiveSessionExists) {
				return fmt.Errorf("an active session already exists for %s in %s", s.Actor, cwd)
			}
			return err
		}

		out := output.New(output.Format(GetOutput()))
		return out.Write(s)
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "End a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(GetDB())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		if err := store.EndSession(args[0]); err != nil {
			return err
		}
		fmt.Printf("session %s ended\n", args[0])
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(GetDB())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		sessions, err := store.ListActiveSessions()
		if err != nil {
			return err
		}

		out := output.New(output.Format(GetOutput()))
		return out.Write(map[string]any{"sessions": sessions})
	},
}

var sessionModeCmd = &cobra.Command{
	Use:   "mode <session-id> <on|off>",
	Short: "Set the assistant-mode routing override for a session",
	Long: `Set the assistant-mode flag. While on, every instruction in the
session routes to the assistant regardless of the routing rules.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch args[1] {
		case "on":
			on = true
		case "off":
			on = false
		default:
			return fmt.Errorf("mode must be on or off, got %q", args[1])
		}

		store, err := db.Open(GetDB())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		if err := store.SetSessionAssistantMode(args[0], on); err != nil {
			return err
		}
		fmt.Printf("session %s assistant mode: %s\n", args[0], args[1])
		return nil
	},
}

var sessionGCCmd = &cobra.Command{
	Use:   "gc",
	Short: "End sessions idle past the staleness threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := db.Open(GetDB())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		mins := cfg.Sessions.StaleThresholdMins
		if flagSessionGCMins > 0 {
			mins = flagSessionGCMins
		}
		threshold := time.Duration(mins) * time.Minute

		stale, err := store.FindStaleSessions(threshold)
		if err != nil {
			return err
		}

		var ended []string
		if !flagSessionGCDry {
			for _, s := range stale {
				if err := store.EndSession(s.ID); err != nil {
					return fmt.Errorf("ending session %s: %w", s.ID, err)
				}
				ended = append(ended, s.ID)
			}
		}

		out := output.New(output.Format(GetOutput()))
		return out.Write(map[string]any{
			"threshold_mins": mins,
			"stale":          stale,
			"ended":          ended,
			"dry_run":        flagSessionGCDry,
		})
	},
}
