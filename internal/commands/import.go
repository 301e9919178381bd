package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/config"
	"github.com/cleared-dev/stmtimport/internal/id"
	"github.com/cleared-dev/stmtimport/internal/importer"
	"github.com/cleared-dev/stmtimport/internal/importlog"
	"github.com/cleared-dev/stmtimport/internal/ledger"
	"github.com/cleared-dev/stmtimport/internal/logger"
	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
	"github.com/cleared-dev/stmtimport/internal/source"
	"github.com/cleared-dev/stmtimport/internal/store"
)

type importOptions struct {
	dir      string
	bank     string
	sheet    string
	sink     string
	logLevel string
	dryRun   bool
	all      bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import bank statements",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.all == (len(args) > 0) {
				return fmt.Errorf("pass either statement files or --all")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runImport(ctx, cmd.OutOrStdout(), opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", ".", "workspace directory")
	cmd.Flags().StringVar(&opts.bank, "bank", "", "bank handler to use (default: detect)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "worksheet name or zero-based index")
	cmd.Flags().StringVar(&opts.sink, "sink", "", "override the configured sink (sqlite or csv)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse without saving anything")
	cmd.Flags().BoolVar(&opts.all, "all", false, "import every statement in the import directory")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, opts importOptions, paths []string) error {
	ws, err := loadWorkspace(opts.dir, opts.logLevel)
	if err != nil {
		return err
	}
	if opts.sink != "" {
		ws.cfg.Sink = opts.sink
		if err := ws.cfg.Validate(); err != nil {
			return err
		}
	}
	if opts.bank != "" && !ws.registry.Has(opts.bank) {
		return fmt.Errorf("unknown bank %q (available: %v)", opts.bank, ws.registry.Names())
	}

	if opts.all {
		files, err := importer.Scan(ws.importDir())
		if err != nil {
			return err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
		if len(paths) == 0 {
			fmt.Fprintf(out, "No statements in %s\n", ws.importDir())
			return nil
		}
	}

	sheet, err := sheetSelector(ws, opts)
	if err != nil {
		return err
	}

	var (
		sink importer.Sink = importer.Discard
		db   *store.SQLite
	)
	switch {
	case opts.dryRun:
	case ws.cfg.Sink == config.SinkSQLite:
		db, err = store.Open(config.Resolve(ws.root, ws.cfg.Database))
		if err != nil {
			return err
		}
		defer db.Close()
		sink = db
	case ws.cfg.Sink == config.SinkCSV:
		csvSink := ledger.NewCSVSink(config.Resolve(ws.root, ws.cfg.LedgerFile))
		defer csvSink.Close()
		sink = csvSink
	}

	orch := &importer.Orchestrator{Registry: ws.registry, Sink: sink, ProgressEvery: ws.cfg.ProgressEvery}

	var entries []importlog.Entry
	failed := 0
	for _, path := range paths {
		name := filepath.Base(path)
		runID := id.NewRunID()
		runLog := logger.WithFields(ws.log, map[string]any{"run_id": runID, "file": name})
		runCtx := logger.WithContext(ctx, runLog)

		if db != nil {
			if err := db.BeginRun(runCtx, runID, name, opts.bank); err != nil {
				return err
			}
		}

		var term model.ImportEvent
		doc, err := importer.OpenFile(path, sheet)
		if err != nil {
			term = model.Failure{Message: "reading source", Cause: err}
		} else {
			for ev := range orch.Run(runCtx, doc, opts.bank) {
				if p, ok := ev.(model.Progress); ok {
					runLog.Debug().
						Str("phase", p.Phase.String()).
						Int("current", p.Current).
						Int("total", p.Total).
						Msg(p.Step)
					continue
				}
				term = ev
			}
		}

		if db != nil {
			if err := db.FinishRun(runCtx, runID, term); err != nil {
				runLog.Warn().Err(err).Msg("recording run")
			}
		}
		report(out, name, term)
		entries = append(entries, importlog.FromEvent(runID, name, opts.bank, term))

		if _, ok := term.(model.Failure); ok {
			failed++
			continue
		}
		if opts.all && !opts.dryRun {
			if err := importer.MarkProcessed(ws.importDir(), name); err != nil {
				runLog.Warn().Err(err).Msg("moving statement to processed")
			}
		}
	}

	if !opts.dryRun {
		if err := importlog.Append(ws.root, entries); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write import log: %v\n", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(paths))
	}
	return nil
}

// sheetSelector reads --sheet as an index when numeric and a name
// otherwise. Without --sheet a preselected table bank supplies its own.
func sheetSelector(ws *workspace, opts importOptions) (source.SheetSelector, error) {
	if opts.sheet != "" {
		if n, err := strconv.Atoi(opts.sheet); err == nil {
			if n < 0 {
				return source.SheetSelector{}, fmt.Errorf("sheet index must not be negative")
			}
			return source.SheetSelector{Index: n}, nil
		}
		return source.SheetSelector{Name: opts.sheet}, nil
	}
	if opts.bank != "" {
		h, err := ws.registry.Get(opts.bank)
		if err != nil {
			return source.SheetSelector{}, err
		}
		if t, ok := h.(*importer.TableHandler); ok {
			return t.Sheet(), nil
		}
	}
	return source.SheetSelector{}, nil
}

var summaryAmount = normalize.AmountRules{DecimalSeparator: ",", GroupingSeparator: " "}

func report(out io.Writer, name string, term model.ImportEvent) {
	switch ev := term.(type) {
	case model.Success:
		fmt.Fprintf(out, "%s: imported %d via %s, skipped %d, total %s\n",
			name, ev.Imported, ev.Handler, ev.Skipped, normalize.FormatAmount(ev.Total, summaryAmount))
		if ev.SaveFailures > 0 {
			fmt.Fprintf(out, "%s: %d records were not saved\n", name, ev.SaveFailures)
		}
	case model.Failure:
		fmt.Fprintf(out, "%s: %s\n", name, ev.Error())
	}
}
