package banks

import (
	"github.com/cleared-dev/stmtimport/internal/detect"
	"github.com/cleared-dev/stmtimport/internal/lineparse"
	"github.com/cleared-dev/stmtimport/internal/normalize"
)

const (
	money     = `\d+(?:[ \x{00A0}]\d{3})*(?:[.,]\d{1,2})?`
	rubSymbol = `(?:₽|руб\.?|RUB|[PР])`
	dateToken = `\d{2}\.\d{2}\.\d{4}`
)

var rubAmount = normalize.AmountRules{
	DecimalSeparator:  ",",
	GroupingSeparator: " ",
	CurrencySymbols:   []string{"₽", "руб.", "руб", "RUB"},
}

// TBank is the T-Bank (Tinkoff) card statement. Each operation spans a
// date line, a time line and an amount line carrying the description.
func TBank() LineProfile {
	return LineProfile{
		Name: "tbank",
		Signature: detect.Signature{
			Positive: []string{"TINKOFF", "ТИНЬКОФФ", "Тинькофф Банк", "ТБАНК", "TBANK", "АО «ТБАНК»"},
			Negative: []string{"ПАО Сбербанк", "Сбербанк", "Ozon Банк", "Озон Банк", "Альфа-Банк"},
			Titles: []string{
				"Выписка по счетам", "Выписка по карте", "Выписка по договору",
				"Операции по счету", "История операций",
				"Справка о движении средств", "Движение средств",
			},
			DatePattern:   `^` + dateToken + `$`,
			AmountPattern: `^[+\-]?\s*` + money + `\s*` + rubSymbol,
			DataStart:     []string{`^` + dateToken + `(?:\s+\d{2}:\d{2})?$`},
		},
		Parse: lineparse.Spec{
			Source:                "Тинькофф",
			SourceColor:           0xFFDD2D,
			Currency:              "RUB",
			DateLine:              `^(?P<date>` + dateToken + `)(?:\s+\d{2}:\d{2})?$`,
			TokenLine:             `^(?P<token>\d{2}:\d{2})$`,
			AmountWithDescription: `^(?P<sign1>[+\-])?\s*(?P<amount1>` + money + `)\s*` + rubSymbol + `\s+(?P<sign2>[+\-])?\s*(?P<amount2>` + money + `)\s*` + rubSymbol + `\s+(?P<desc>.+)$`,
			AmountLine:            `^(?P<sign>[+\-])?\s*(?P<amount>` + money + `)\s*` + rubSymbol + `(?:\s|$)`,
			Ignore: []string{
				`(?i)^Итого:`,
				`(?i)^Баланс на (?:начало|конец) периода`,
				`(?i)^Выписка сформирована`,
				`(?i)^Пополнения:`,
				`(?i)^Расходы:`,
				`(?i)^С уважением`,
				`(?i)^Руководитель`,
				`(?i)^БИК`,
				`(?i)^Страница \d+ из \d+`,
			},
			IncomeKeywords: []string{"Пополнение", "Перевод от", "Возврат"},
			MaxFragments:   2,
			Dates:          normalize.DateFormats{Primary: "02.01.2006", Fallbacks: []string{"02.01.06"}},
			Amount:         rubAmount,
			NoteTemplate:   "Время: %s",
		},
	}
}

// Sberbank is the Sber card statement: every operation starts with a
// single line holding date, time, category, amount and balance, and is
// followed by a processing line with the authorization code and the
// merchant.
func Sberbank() LineProfile {
	return LineProfile{
		Name: "sberbank",
		Signature: detect.Signature{
			Positive:      []string{"СБЕР", "Сбербанк", "SBERBANK"},
			Negative:      []string{"Тинькофф", "ТБАНК", "Ozon Банк", "Озон Банк", "Альфа-Банк"},
			Titles:        []string{"Выписка по счёту", "Выписка по счету", "Расшифровка операций"},
			DatePattern:   dateToken + `\s+\d{2}:\d{2}`,
			AmountPattern: money + `\s*$`,
			DataStart:     []string{`^` + dateToken + `\s+\d{2}:\d{2}\s+`},
			StartMarker:   `(?i)Расшифровка\s+операций`,
		},
		Parse: lineparse.Spec{
			Source:      "Сбер",
			SourceColor: 0x21A038,
			Currency:    "RUB",
			EntryLine:   `^(?P<date>` + dateToken + `)\s+\d{2}:\d{2}\s+(?P<desc>.+?)\s+(?P<sign>[+\-])?(?P<amount>` + money + `)(?:\s+` + money + `)?$`,
			TokenLine:   `^` + dateToken + `\s+(?P<token>\d{5,7})(?:\s+(?P<desc>.+))?$`,
			Ignore: []string{
				`(?i)^ДАТА\s+ОПЕРАЦИИ`,
				`(?i)^Дата\s+обработки`,
				`(?i)код\s+авторизации`,
				`(?i)^Описание\s+операции`,
				`(?i)^СУММА\s+В\s+ВАЛЮТЕ`,
				`(?i)^(?:Итого:|Общая сумма:|Конец выписки)`,
				`(?i)^Остаток`,
				`(?i)^Страница \d+ из \d+`,
			},
			IncomeKeywords:      []string{"внесение наличных", "зачисление", "перевод от"},
			MaxFragments:        2,
			Dates:               normalize.DateFormats{Primary: "02.01.2006"},
			Amount:              rubAmount,
			NoteTemplate:        "Код авторизации: %s",
			FallbackDescription: "Операция от %s",
		},
	}
}

// Ozon is the Ozon Bank account statement. Newer exports put the date,
// time, document number, description and amount on separate lines; older
// ones carry the whole operation on one line ending in a currency code.
func Ozon() LineProfile {
	const (
		timeToken = `\d{2}:\d{2}(?::\d{2})?`
		currency  = `(?:(?P<currency>[A-ZА-Я]{3})|₽)`
	)
	return LineProfile{
		Name: "ozon",
		Signature: detect.Signature{
			Positive: []string{"OZON", "ОЗОН", "Ozon Банк", "Озон Банк"},
			Negative: []string{"Тинькофф", "АО «ТБАНК»", "ПАО Сбербанк", "Альфа-Банк"},
			Titles: []string{
				"Выписка по счёту", "Выписка по счету", "Информация по счёту",
				"История операций", "Справка о движении средств",
			},
			DatePattern:   `^` + dateToken,
			AmountPattern: `[+\-]?\s*` + money + `\s*(?:₽|[A-ZА-Я]{3})`,
			DataStart:     []string{`^` + dateToken},
		},
		Parse: lineparse.Spec{
			Source:      "Озон Банк",
			SourceColor: 0x005BFF,
			Currency:    "RUB",
			DateLine:    `^(?P<date>` + dateToken + `)(?:\s+` + timeToken + `)?(?:\s+(?P<token>\d+))?$`,
			TokenLine:   `^(?P<token>\d+)$`,
			EntryLine: `^(?P<date>` + dateToken + `)\s+(?:` + timeToken + `\s+)?(?P<desc>.+?)\s+(?P<sign>[+\-])?\s*(?P<amount>` + money + `)\s*` + currency +
				`(?:\s+[+\-]?\s*` + money + `\s*(?:[A-ZА-Я]{3}|₽))?$`,
			AmountLine: `^(?P<sign>[+\-])?\s*(?P<amount>` + money + `)\s*₽`,
			Ignore: []string{
				`^` + timeToken + `$`,
				`(?i)^Итого:`,
				`(?i)^Перенесено со страницы`,
				`(?i)^Продолжение на странице`,
				`(?i)^Обороты по сч[её]ту за период`,
				`(?i)^Входящий остаток`,
				`(?i)^Исходящий остаток`,
				`(?i)^Страница \d+ из \d+`,
				`(?i)^Сформировано .*\d{2}:\d{2}:\d{2}`,
				`(?i)^Подпись Банка`,
				`(?i)^Выписка по сч[её]ту №`,
				`(?i)^Период: с .* по `,
				`(?i)^Дата (?:и время|операции)`,
			},
			IncomeKeywords: []string{"Пополнение", "Зачисление", "Перевод от", "Возврат", "Кешбэк"},
			MaxFragments:   3,
			Dates:          normalize.DateFormats{Primary: "02.01.2006", Fallbacks: []string{"02.01.06"}},
			Amount:         rubAmount,
			NoteTemplate:   "Документ: %s",
		},
	}
}
