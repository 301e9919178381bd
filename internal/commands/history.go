package commands

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/config"
	"github.com/cleared-dev/stmtimport/internal/id"
	"github.com/cleared-dev/stmtimport/internal/importlog"
	"github.com/cleared-dev/stmtimport/internal/store"
)

func newHistoryCommand() *cobra.Command {
	var dir, runID string
	var fromDB bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runID != "" && !id.ValidRunID(runID) {
				return fmt.Errorf("invalid run id %q", runID)
			}
			ws, err := loadWorkspace(dir, "")
			if err != nil {
				return err
			}
			if fromDB {
				return printRuns(cmd, ws, runID)
			}
			entries, err := importlog.Read(ws.root)
			if err != nil {
				return err
			}
			if runID != "" {
				entries = slices.DeleteFunc(entries, func(e importlog.Entry) bool { return e.RunID != runID })
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().BoolVar(&fromDB, "db", false, "read runs from the database instead of the import log")
	cmd.Flags().StringVar(&runID, "run", "", "show only the run with this id")

	return cmd
}

func printEntries(out io.Writer, entries []importlog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No imports yet")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-8s %-24s %-10s imported=%d skipped=%d total=%s",
			e.Timestamp.Format("2006-01-02 15:04"), e.Status, e.File, e.Handler,
			e.Imported, e.Skipped, e.Total.StringFixed(2))
		if e.Message != "" {
			fmt.Fprintf(out, "  %s", e.Message)
		}
		fmt.Fprintf(out, "  run=%s\n", e.RunID)
	}
}

func printRuns(cmd *cobra.Command, ws *workspace, runID string) error {
	db, err := store.Open(config.Resolve(ws.root, ws.cfg.Database))
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.Runs(cmd.Context())
	if err != nil {
		return err
	}
	if runID != "" {
		runs = slices.DeleteFunc(runs, func(r store.Run) bool { return r.ID != runID })
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No imports yet")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %-8s %-24s %-10s imported=%d skipped=%d total=%s",
			r.StartedAt.Format("2006-01-02 15:04"), r.Status, r.File, r.Handler,
			r.Imported, r.Skipped, r.Total.StringFixed(2))
		if r.Message != "" {
			fmt.Fprintf(out, "  %s", r.Message)
		}
		fmt.Fprintf(out, "  run=%s\n", r.ID)
	}
	return nil
}
