package tabular

import (
	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
	"github.com/cleared-dev/stmtimport/internal/source"
)

// ExpenseStrategy selects how the expense flag is resolved.
type ExpenseStrategy string

const (
	// FromAmountSign treats negative amounts as expenses.
	FromAmountSign ExpenseStrategy = "FROM_AMOUNT_SIGN"
	// FromColumnValue compares the expense flag column to ExpenseTrueValue.
	FromColumnValue ExpenseStrategy = "FROM_COLUMN_VALUE"
)

// Columns maps fields to zero-based cell indexes. Nil means unmapped.
type Columns struct {
	Date        *int `yaml:"date,omitempty"`
	Description *int `yaml:"description,omitempty"`
	Amount      *int `yaml:"amount,omitempty"`
	Currency    *int `yaml:"currency,omitempty"`
	Category    *int `yaml:"category,omitempty"`
	Note        *int `yaml:"note,omitempty"`
	ExpenseFlag *int `yaml:"expense_flag,omitempty"`
}

// Col returns a pointer to i for building Columns literals.
func Col(i int) *int { return &i }

// ParseConfig drives the structured parser for one institution. It is
// read-only once parsing starts.
type ParseConfig struct {
	BankName    string               `yaml:"bank_name"`
	SourceColor uint32               `yaml:"source_color,omitempty"`
	Sheet       source.SheetSelector `yaml:"sheet"`
	Columns     Columns              `yaml:"columns"`

	Dates  normalize.DateFormats `yaml:"dates"`
	Amount normalize.AmountRules `yaml:"amount"`

	ExpenseStrategy  ExpenseStrategy `yaml:"expense_strategy"`
	ExpenseTrueValue string          `yaml:"expense_true_value,omitempty"`
	DefaultCurrency  string          `yaml:"default_currency"`

	HeaderRows      int  `yaml:"header_rows"`
	SkipEmptyRows   bool `yaml:"skip_empty_rows"`
	MinValuesPerRow int  `yaml:"min_values_per_row"`
	// AllowMissingAmount lets configs without an amount column emit
	// zero-amount marker records instead of rejecting every row.
	AllowMissingAmount bool `yaml:"allow_missing_amount,omitempty"`

	ServiceRowKeywords []string `yaml:"service_row_keywords,omitempty"`
	CategoryPrefixes   []string `yaml:"category_prefixes,omitempty"`
}

// DefaultConfig maps date, description, amount and currency to the first
// four columns below one header row.
func DefaultConfig() ParseConfig {
	return ParseConfig{
		BankName: "Импорт",
		Columns: Columns{
			Date:        Col(0),
			Description: Col(1),
			Amount:      Col(2),
			Currency:    Col(3),
		},
		Dates:            normalize.DefaultDateFormats(),
		Amount:           normalize.AmountRules{DecimalSeparator: "."},
		ExpenseStrategy:  FromAmountSign,
		ExpenseTrueValue: "EXPENSE",
		DefaultCurrency:  string(model.DefaultCurrency),
		HeaderRows:       1,
		SkipEmptyRows:    true,
		MinValuesPerRow:  2,
		CategoryPrefixes: []string{"Категория:"},
	}
}

// currency resolves the configured default, falling back to the engine
// default for unknown codes.
func (c ParseConfig) currency() model.Currency {
	if cur, ok := model.ParseCurrency(c.DefaultCurrency); ok {
		return cur
	}
	return model.DefaultCurrency
}
