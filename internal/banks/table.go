package banks

import (
	"github.com/cleared-dev/stmtimport/internal/normalize"
	"github.com/cleared-dev/stmtimport/internal/tabular"
)

var serviceRows = []string{"итого", "остаток", "оборот", "сумма"}

// Alfa is the Alfa-Bank spreadsheet export.
func Alfa() tabular.HeaderSignature {
	cfg := tabular.DefaultConfig()
	cfg.BankName = "Альфа-Банк"
	cfg.SourceColor = 0xEF3124
	cfg.Dates = normalize.DateFormats{
		Primary:   "02.01.2006",
		Fallbacks: []string{"02.01.2006 15:04:05", "2006-01-02", "01/02/2006"},
	}
	cfg.Amount = normalize.AmountRules{
		DecimalSeparator:  ",",
		GroupingSeparator: " ",
		CurrencySymbols:   []string{"₽", "руб", "RUB"},
		ResidualPattern:   `[^0-9.,\-]`,
	}
	cfg.ServiceRowKeywords = serviceRows

	return tabular.HeaderSignature{
		Name: "alfa",
		Combinations: [][]string{
			{"альфа", "дата", "сумма"},
			{"alfa", "дата", "сумма"},
			{"дата операции", "сумма", "категория"},
		},
		DateKeywords:        []string{"дата операции", "дата"},
		AmountKeywords:      []string{"сумма в валюте счета", "сумма"},
		DescriptionKeywords: []string{"описание", "назначение"},
		CategoryKeywords:    []string{"категория"},
		CurrencyKeywords:    []string{"валюта"},
		Config:              cfg,
	}
}

// GenericRU matches any table with Russian date and amount headers.
func GenericRU() tabular.HeaderSignature {
	return tabular.HeaderSignature{
		Name:                "generic-ru",
		Combinations:        [][]string{{"дата", "сумма"}},
		DateKeywords:        []string{"дата операции", "дата"},
		AmountKeywords:      []string{"сумма"},
		DescriptionKeywords: []string{"описание", "назначение", "комментарий"},
		CategoryKeywords:    []string{"категория"},
		CurrencyKeywords:    []string{"валюта"},
		Config:              genericConfig(),
	}
}

// GenericEN matches any table with English date and amount headers.
func GenericEN() tabular.HeaderSignature {
	return tabular.HeaderSignature{
		Name:                "generic-en",
		Combinations:        [][]string{{"date", "amount"}},
		DateKeywords:        []string{"transaction date", "date"},
		AmountKeywords:      []string{"amount"},
		DescriptionKeywords: []string{"description", "memo", "payee"},
		CategoryKeywords:    []string{"category"},
		CurrencyKeywords:    []string{"currency"},
		Config:              genericConfig(),
	}
}

func genericConfig() tabular.ParseConfig {
	cfg := tabular.DefaultConfig()
	cfg.BankName = "Импорт"
	cfg.Amount = normalize.AmountRules{
		AutoDecimal:     true,
		CurrencySymbols: []string{"₽", "руб.", "руб", "RUB", "$", "€", "USD", "EUR"},
	}
	cfg.ServiceRowKeywords = serviceRows
	return cfg
}
