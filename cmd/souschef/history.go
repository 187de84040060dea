package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"souschef/internal/config"
	"souschef/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past runs or show one run in full",
		Long: `History lists recent pipeline runs recorded in the local database.

Without arguments, it prints a table of the most recent runs. With a
run ID, it prints that run's full report as JSON, including the failure
log for every candidate that was attempted.

Examples:
  # List the 20 most recent runs
  souschef history

  # List the 5 most recent runs
  souschef history --limit 5

  # Show run 42 in full
  souschef history 42`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum number of runs to list")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no run history yet: %w", err)
	}
	defer func() { _ = db.Close() }()

	if len(args) == 1 {
		return showRun(cmd, db, args[0])
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	return listRuns(cmd, db, limit)
}

// showRun prints one run's full report as JSON.
func showRun(cmd *cobra.Command, db *database.HistoryDB, rawID string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", rawID, err)
	}

	runReport, err := db.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(runReport)
}

// listRuns prints the history table.
func listRuns(cmd *cobra.Command, db *database.HistoryDB, limit int) error {
	records, err := db.ListRecent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(records) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "%-5s %-19s %-8s %-30s %s\n", "ID", "STARTED", "STATUS", "OBJECTIVE", "RECIPE")
	fmt.Fprintln(out, strings.Repeat("-", 100))

	for _, record := range records {
		status := "ok"
		if !record.Succeeded {
			status = "failed"
		}

		fmt.Fprintf(out, "%-5d %-19s %-8s %-30s %s\n",
			record.ID,
			record.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			truncate(record.Objective, 30),
			truncate(record.RecipeTitle, 40),
		)
	}

	count, err := db.CountRuns(cmd.Context())
	if err != nil {
		return err
	}
	if count > len(records) {
		fmt.Fprintf(out, "\nShowing %d of %d runs. Use --limit to see more.\n", len(records), count)
	}

	return nil
}

// truncate shortens s to max characters with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
