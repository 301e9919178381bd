package tabular

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtimport/internal/classify"
	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
)

func TestParseRow_IncomeFromSign(t *testing.T) {
	out := ParseRow([]string{"01.03.2024", "Зарплата", "50000", "RUB"}, DefaultConfig(), classify.Default())
	require.True(t, out.OK(), out.Skip)

	rec := out.Record
	assert.True(t, decimal.RequireFromString("50000.00").Equal(rec.Amount))
	assert.Equal(t, model.RUB, rec.Currency)
	assert.False(t, rec.Expense)
	assert.Equal(t, "Зарплата", rec.Category)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rec.Date)
}

func TestParseRow_ExpenseFromSign(t *testing.T) {
	out := ParseRow([]string{"02.03.2024", "Пятёрочка", "-1234.50", ""}, DefaultConfig(), classify.Default())
	require.True(t, out.OK(), out.Skip)
	assert.True(t, out.Record.Expense)
	assert.True(t, decimal.RequireFromString("1234.5").Equal(out.Record.Amount))
	assert.Equal(t, "Продукты", out.Record.Category)
	assert.Equal(t, model.RUB, out.Record.Currency)
}

func TestParseRow_UnknownCurrencyCellUsesEngineDefault(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultCurrency = "EUR"

	out := ParseRow([]string{"01.03.2024", "Кафе", "-10", "???"}, cfg, nil)
	require.True(t, out.OK())
	assert.Equal(t, model.DefaultCurrency, out.Record.Currency)

	out = ParseRow([]string{"01.03.2024", "Кафе", "-10", ""}, cfg, nil)
	require.True(t, out.OK())
	assert.Equal(t, model.EUR, out.Record.Currency)

	out = ParseRow([]string{"01.03.2024", "Кафе", "-10", "usd"}, cfg, nil)
	require.True(t, out.OK())
	assert.Equal(t, model.USD, out.Record.Currency)
}

func TestParseRow_Rejections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServiceRowKeywords = []string{"итого", "остаток"}

	tests := []struct {
		name  string
		cells []string
		want  SkipReason
	}{
		{"empty", []string{"", " ", ""}, SkipEmptyRow},
		{"service", []string{"Итого за период", "", "1000"}, SkipServiceRow},
		{"only amount", []string{"", "", "100"}, SkipTooFewValues},
		{"absent date token", []string{"n/a", "", "100"}, SkipTooFewValues},
		{"missing date", []string{"", "Кофе", "100"}, SkipMissingDate},
		{"bad date", []string{"32.13.2024", "Кофе", "100"}, SkipBadDate},
		{"bad amount", []string{"01.03.2024", "Кофе", "abc"}, SkipBadAmount},
		{"short row", []string{"01.03.2024"}, SkipTooFewValues},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ParseRow(tt.cells, cfg, nil)
			assert.False(t, out.OK())
			assert.Equal(t, tt.want, out.Skip)
		})
	}
}

func TestParseRow_MissingAmountColumn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Columns.Amount = nil
	cfg.MinValuesPerRow = 1

	out := ParseRow([]string{"01.03.2024", "Перенос"}, cfg, nil)
	assert.Equal(t, SkipMissingAmount, out.Skip)

	cfg.AllowMissingAmount = true
	out = ParseRow([]string{"01.03.2024", "Перенос"}, cfg, nil)
	require.True(t, out.OK())
	assert.True(t, out.Record.Amount.IsZero())
	assert.False(t, out.Record.Expense)
}

func TestParseRow_ExpenseFlagColumn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExpenseStrategy = FromColumnValue
	cfg.Columns.ExpenseFlag = Col(4)

	out := ParseRow([]string{"01.03.2024", "Такси", "350", "RUB", "expense"}, cfg, nil)
	require.True(t, out.OK())
	assert.True(t, out.Record.Expense)

	out = ParseRow([]string{"01.03.2024", "Возврат", "350", "RUB", "INCOME"}, cfg, nil)
	require.True(t, out.OK())
	assert.False(t, out.Record.Expense)

	// Unmapped flag column falls back to the sign.
	cfg.Columns.ExpenseFlag = nil
	out = ParseRow([]string{"01.03.2024", "Такси", "-350", "RUB"}, cfg, nil)
	require.True(t, out.OK())
	assert.True(t, out.Record.Expense)
}

func TestParseRow_DescriptionFallbacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BankName = "Тест"
	cfg.Columns.Note = Col(4)

	out := ParseRow([]string{"01.03.2024", "", "100", "", "из заметки"}, cfg, nil)
	require.True(t, out.OK())
	assert.Equal(t, "из заметки", out.Record.Description)
	assert.Empty(t, out.Record.Note)

	cfg.Columns.Description = nil
	out = ParseRow([]string{"01.03.2024", "", "100", "", ""}, cfg, nil)
	require.True(t, out.OK())
	assert.Equal(t, "Импортировано из Тест", out.Record.Description)
	assert.Equal(t, "Тест", out.Record.Source)
}

func TestParseRow_CategoryColumnAndCurrency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Columns.Category = Col(4)

	out := ParseRow([]string{"01.03.2024", "Пятёрочка", "-10", "usd", "Категория: Еда"}, cfg, classify.Default())
	require.True(t, out.OK())
	assert.Equal(t, "Еда", out.Record.Category)
	assert.Equal(t, model.USD, out.Record.Currency)

	out = ParseRow([]string{"01.03.2024", "Пятёрочка", "-10", "???", ""}, cfg, classify.Default())
	require.True(t, out.OK())
	assert.Equal(t, "Продукты", out.Record.Category)
	assert.Equal(t, model.RUB, out.Record.Currency)
}

func TestParseRow_DecimalComma(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Amount = normalize.AmountRules{DecimalSeparator: ",", GroupingSeparator: " ", CurrencySymbols: []string{"₽"}}

	out := ParseRow([]string{"05.03.2024", "Кафе", "-1 234,56 ₽", ""}, cfg, nil)
	require.True(t, out.OK(), out.Skip)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(out.Record.Amount))
	assert.True(t, out.Record.Expense)
}

func TestAutoDetect(t *testing.T) {
	sigs := []HeaderSignature{{
		Name:                "alfa",
		Combinations:        [][]string{{"дата операции", "сумма"}},
		DateKeywords:        []string{"дата операции", "дата"},
		AmountKeywords:      []string{"сумма"},
		DescriptionKeywords: []string{"описание"},
		CategoryKeywords:    []string{"категория"},
		Config:              DefaultConfig(),
	}}
	rows := [][]string{
		{"Выписка по счёту"},
		{"Клиент", "Иванов"},
		{"Категория", "Описание", "Дата проводки", "Дата операции", "Сумма"},
		{"Еда", "Кафе", "02.03.2024", "01.03.2024", "-100"},
	}

	det, err := AutoDetect(rows, sigs, 0)
	require.NoError(t, err)
	assert.Equal(t, "alfa", det.Signature)
	assert.Equal(t, 2, det.HeaderRow)
	assert.Equal(t, 3, det.Config.HeaderRows)
	require.NotNil(t, det.Config.Columns.Date)
	assert.Equal(t, 3, *det.Config.Columns.Date)
	assert.Equal(t, 4, *det.Config.Columns.Amount)
	assert.Equal(t, 0, *det.Config.Columns.Category)
	assert.Equal(t, 1, *det.Config.Columns.Description)
	assert.Nil(t, det.Config.Columns.Currency)

	out := ParseRow(rows[3], det.Config, nil)
	require.True(t, out.OK(), out.Skip)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), out.Record.Date)
	assert.Equal(t, "Еда", out.Record.Category)
}

func TestAutoDetect_NoHeader(t *testing.T) {
	sigs := []HeaderSignature{{
		Name:           "generic",
		Combinations:   [][]string{{"дата", "сумма"}},
		DateKeywords:   []string{"дата"},
		AmountKeywords: []string{"сумма"},
		Config:         DefaultConfig(),
	}}
	rows := [][]string{{"a", "b"}, {"c", "d"}}
	_, err := AutoDetect(rows, sigs, 0)
	assert.ErrorIs(t, err, ErrNoHeader)

	// A header beyond the scan window is not found.
	far := append(rows, []string{"Дата", "Сумма"})
	_, err = AutoDetect(far, sigs, 2)
	assert.ErrorIs(t, err, ErrNoHeader)
	_, err = AutoDetect(far, sigs, 3)
	assert.NoError(t, err)
}
