package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/banks"
	"github.com/cleared-dev/stmtimport/internal/importer"
)

func newBanksCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "banks",
		Short: "List bank handlers in detection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(dir, "")
			if err != nil {
				return err
			}
			listHandlers(cmd.OutOrStdout(), ws.registry)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.AddCommand(newBanksExportCommand())

	return cmd
}

func newBanksExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the built-in bank rules to a YAML file for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if err := banks.SaveFile(path, banks.Builtin()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote built-in bank rules to %s\n", path)
			return nil
		},
	}
}

func listHandlers(out io.Writer, r *importer.Registry) {
	for i, h := range r.Handlers() {
		kind := "text"
		if _, ok := h.(*importer.TableHandler); ok {
			kind = "table"
		}
		fmt.Fprintf(out, "%d. %-12s %s\n", i+1, h.Name(), kind)
	}
}
