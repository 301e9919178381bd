package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCategoriesCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories in rule order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(dir, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, c := range ws.classifier.Categories() {
				fmt.Fprintf(out, "%d. %s\n", i+1, c)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")

	return cmd
}
