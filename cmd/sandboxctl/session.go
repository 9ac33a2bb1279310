package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Create, inspect, and clean up session workspaces",
	}
	cmd.AddCommand(newSessionNewCmd())
	cmd.AddCommand(newSessionExecCmd())
	cmd.AddCommand(newSessionLsCmd())
	cmd.AddCommand(newSessionRmCmd())
	cmd.AddCommand(newSessionPruneCmd())
	return cmd
}

func newSessionNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a new, empty session and print its ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := newSessionManager()
			if err != nil {
				return fmt.Errorf("sandboxctl: %w", err)
			}
			ws, err := sessions.CreateSession()
			if err != nil {
				return fmt.Errorf("sandboxctl: %w", err)
			}
			fmt.Println(ws.SessionID)
			return nil
		},
	}
}

func newSessionExecCmd() *cobra.Command {
	var (
		file    string
		runtime string
	)
	cmd := &cobra.Command{
		Use:   "exec <session-id>",
		Short: "Run code inside an existing session, persisting its global state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readCode(file, nil)
			if err != nil {
				return err
			}
			return executeAndPrint(runRequest{
				code:      code,
				runtime:   runtime,
				sessionID: args[0],
				persist:   true,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read code from this file instead of stdin")
	cmd.Flags().StringVar(&runtime, "runtime", "python", "python or javascript")
	return cmd
}

func newSessionLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List sessions under the workspace root",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := newSessionManager()
			if err != nil {
				return fmt.Errorf("sandboxctl: %w", err)
			}
			infos, err := sessions.ListSessions()
			if err != nil {
				return fmt.Errorf("sandboxctl: %w", err)
			}
			for _, info := range infos {
				if info.Metadata == nil {
					fmt.Printf("%s\t(no metadata)\n", info.SessionID)
					continue
				}
				fmt.Printf("%s\tcreated=%s\tupdated=%s\n",
					info.SessionID,
					info.Metadata.CreatedAt.Format("2006-01-02T15:04:05Z"),
					info.Metadata.UpdatedAt.Format("2006-01-02T15:04:05Z"))
			}
			return nil
		},
	}
}

func newSessionRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <session-id>",
		Short: "Delete a session's workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := newSessionManager()
			if err != nil {
				return fmt.Errorf("sandboxctl: %w", err)
			}
			if err := sessions.DeleteSession(args[0]); err != nil {
				return fmt.Errorf("sandboxctl: %w", err)
			}
			return nil
		},
	}
}

func newSessionPruneCmd() *cobra.Command {
	var (
		olderThanHours float64
		dryRun         bool
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete sessions that have not been touched in a while",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := newSessionManager()
			if err != nil {
				return fmt.Errorf("sandboxctl: %w", err)
			}
			result, err := sessions.Prune(olderThanHours, dryRun)
			if err != nil {
				return fmt.Errorf("sandboxctl: %w", err)
			}
			for _, id := range result.DeletedSessions {
				verb := "deleted"
				if result.DryRun {
					verb = "would delete"
				}
				fmt.Printf("%s %s\n", verb, id)
			}
			for _, id := range result.SkippedSessions {
				fmt.Printf("skipped %s (no valid metadata)\n", id)
			}
			for id, msg := range result.Errors {
				fmt.Fprintf(os.Stderr, "error pruning %s: %s\n", id, msg)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&olderThanHours, "older-than-hours", 24, "prune sessions last touched at least this many hours ago")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be pruned without deleting anything")
	return cmd
}
