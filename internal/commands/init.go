package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/classify"
	"github.com/cleared-dev/stmtimport/internal/config"
	"github.com/cleared-dev/stmtimport/internal/model"
)

const categoriesFile = "categories.yaml"

func newInitCommand() *cobra.Command {
	var currency string
	var sink string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a statement import workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, currency, sink)
		},
	}

	cmd.Flags().StringVar(&currency, "currency", string(model.DefaultCurrency), "default currency")
	cmd.Flags().StringVar(&sink, "sink", config.SinkSQLite, "where imported records go (sqlite or csv)")

	return cmd
}

func runInit(dir, currency, sink string) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	cfg := config.Default()
	cfg.DefaultCurrency = currency
	cfg.Sink = sink
	cfg.CategoriesFile = categoriesFile
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Create directory structure.
	dirs := []string{
		"logs",
		cfg.ImportDir,
		filepath.Join(cfg.ImportDir, "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	rules := classify.File{Fallback: classify.Uncategorized, Rules: classify.DefaultRules()}
	if err := classify.SaveFile(filepath.Join(dir, categoriesFile), rules); err != nil {
		return err
	}

	// Write import/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, cfg.ImportDir, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Printf("Initialized statement import workspace at %s\n", dir)
	return nil
}
