package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/config"
	"github.com/cleared-dev/stmtimport/internal/ledger"
	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
	"github.com/cleared-dev/stmtimport/internal/store"
)

func newTransactionsCommand() *cobra.Command {
	var dir string
	var limit int

	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"ledger"},
		Short:   "List saved transactions from the configured sink",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("limit must not be negative")
			}
			ws, err := loadWorkspace(dir, "")
			if err != nil {
				return err
			}

			var recs []model.TransactionRecord
			switch ws.cfg.Sink {
			case config.SinkCSV:
				recs, err = ledger.ReadFile(config.Resolve(ws.root, ws.cfg.LedgerFile))
			default:
				var db *store.SQLite
				db, err = store.Open(config.Resolve(ws.root, ws.cfg.Database))
				if err != nil {
					return err
				}
				defer db.Close()
				recs, err = db.Transactions(cmd.Context())
			}
			if err != nil {
				return err
			}
			if limit > 0 && len(recs) > limit {
				recs = recs[len(recs)-limit:]
			}
			printTransactions(cmd.OutOrStdout(), recs)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().IntVar(&limit, "limit", 0, "show only the last N transactions")

	return cmd
}

func printTransactions(out io.Writer, recs []model.TransactionRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(out, "No transactions yet")
		return
	}
	for _, r := range recs {
		amount := r.Amount
		if r.Expense {
			amount = amount.Neg()
		}
		fmt.Fprintf(out, "%s  %14s %s  %-16s %s\n",
			r.Date.Format("2006-01-02"), normalize.FormatAmount(amount, summaryAmount),
			r.Currency, r.Category, r.Description)
	}
}
