package tabular

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
)

// SkipReason explains why a row produced no record. Empty means accepted.
type SkipReason string

const (
	SkipEmptyRow      SkipReason = "empty row"
	SkipServiceRow    SkipReason = "service row"
	SkipTooFewValues  SkipReason = "too few values"
	SkipMissingDate   SkipReason = "missing date"
	SkipBadDate       SkipReason = "unparseable date"
	SkipMissingAmount SkipReason = "no amount column"
	SkipBadAmount     SkipReason = "unparseable amount"
)

// Outcome is the result of parsing one row.
type Outcome struct {
	Record model.TransactionRecord
	Skip   SkipReason
}

// OK reports whether the row produced a record.
func (o Outcome) OK() bool { return o.Skip == "" }

// Classifier assigns a category to a description.
type Classifier interface {
	Classify(description string) string
}

func cell(cells []string, idx *int) string {
	if idx == nil || *idx < 0 || *idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[*idx])
}

// ParseRow turns one row into a record or a skip reason. Rejections are
// not errors.
func ParseRow(cells []string, cfg ParseConfig, classifier Classifier) Outcome {
	if cfg.SkipEmptyRows && blank(cells) {
		return Outcome{Skip: SkipEmptyRow}
	}
	if isServiceRow(cells, cfg.ServiceRowKeywords) {
		return Outcome{Skip: SkipServiceRow}
	}

	cols := cfg.Columns
	rawDate := cell(cells, cols.Date)
	rawDesc := cell(cells, cols.Description)
	rawAmount := cell(cells, cols.Amount)

	populated := 0
	if cols.Date != nil && !normalize.IsAbsentDate(rawDate) {
		populated++
	}
	if cols.Description != nil && rawDesc != "" {
		populated++
	}
	if cols.Amount != nil && rawAmount != "" {
		populated++
	}
	if populated < cfg.MinValuesPerRow {
		return Outcome{Skip: SkipTooFewValues}
	}

	if cols.Date == nil {
		return Outcome{Skip: SkipMissingDate}
	}
	date, err := normalize.ParseDate(rawDate, cfg.Dates)
	if errors.Is(err, normalize.ErrNoDate) {
		return Outcome{Skip: SkipMissingDate}
	}
	if err != nil {
		return Outcome{Skip: SkipBadDate}
	}

	amount := decimal.Zero
	switch {
	case cols.Amount != nil:
		amount, err = normalize.ParseAmount(rawAmount, cfg.Amount)
		if err != nil {
			return Outcome{Skip: SkipBadAmount}
		}
	case !cfg.AllowMissingAmount:
		return Outcome{Skip: SkipMissingAmount}
	}

	// A present but unknown currency cell maps to the engine default.
	currency := cfg.currency()
	if raw := cell(cells, cols.Currency); raw != "" {
		currency = model.DefaultCurrency
		if c, ok := model.ParseCurrency(raw); ok {
			currency = c
		}
	}

	expense := amount.IsNegative()
	if cfg.ExpenseStrategy == FromColumnValue && cols.ExpenseFlag != nil {
		expense = strings.EqualFold(cell(cells, cols.ExpenseFlag), strings.TrimSpace(cfg.ExpenseTrueValue))
	}

	note := cell(cells, cols.Note)
	desc := rawDesc
	if desc == "" {
		desc = note
	}
	if desc == "" {
		desc = fmt.Sprintf("Импортировано из %s", cfg.BankName)
	}
	if note == desc {
		note = ""
	}

	category := stripPrefixes(cell(cells, cols.Category), cfg.CategoryPrefixes)
	if category == "" && classifier != nil {
		category = classifier.Classify(desc)
	}

	return Outcome{Record: model.TransactionRecord{
		Date:        date,
		Amount:      amount.Abs(),
		Currency:    currency,
		Expense:     expense,
		Description: desc,
		Note:        note,
		Category:    category,
		Source:      cfg.BankName,
		SourceColor: cfg.SourceColor,
	}}
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isServiceRow(cells []string, keywords []string) bool {
	if len(cells) == 0 || len(keywords) == 0 {
		return false
	}
	first := strings.ToLower(cells[0])
	for _, k := range keywords {
		if k != "" && strings.Contains(first, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func stripPrefixes(s string, prefixes []string) string {
	for _, p := range prefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return strings.TrimSpace(s[len(p):])
		}
	}
	return s
}
