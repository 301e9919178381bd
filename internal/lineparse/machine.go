package lineparse

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
)

// Feed applies one physical line to acc and returns the next accumulator.
// Rules are tried in order: ignore, single-line entry, date line, secondary
// token, amount with trailing description, amount only, description
// fragment. A line matching none of them while no date is set is noise and
// leaves acc untouched.
func (m *Machine) Feed(acc Partial, line string) (Partial, Effect) {
	line = strings.TrimSpace(line)
	if line == "" || m.ignored(line) {
		return acc, Effect{Kind: EffectIgnored}
	}

	if next, eff, ok := m.entry(acc, line); ok {
		return next, eff
	}
	if next, eff, ok := m.dateLineRule(acc, line); ok {
		return next, eff
	}
	if !acc.HasDate {
		return acc, Effect{Kind: EffectNoise}
	}

	if m.tokenLine != nil && acc.Token == "" {
		if match := m.tokenLine.FindStringSubmatch(line); match != nil {
			acc.Token = group(m.tokenLine, match, "token")
			rest := group(m.tokenLine, match, "desc")
			if rest == "" {
				return acc, Effect{Kind: EffectUpdated}
			}
			line = rest
		}
	}

	if !acc.Complete {
		if next, eff, ok := m.amountWithDescription(acc, line); ok {
			return next, eff
		}
		if next, ok := m.amountOnly(acc, line); ok {
			return next, Effect{Kind: EffectUpdated}
		}
	}

	acc = acc.withFragment(line)
	if acc.Complete && acc.Valid() && len(acc.Fragments) >= m.spec.MaxFragments {
		return Partial{}, Effect{Kind: EffectEmitted, Record: m.finalize(acc)}
	}
	return acc, Effect{Kind: EffectUpdated}
}

// Flush finalizes a valid accumulator at end of input.
func (m *Machine) Flush(acc Partial) (model.TransactionRecord, bool) {
	if !acc.Valid() {
		return model.TransactionRecord{}, false
	}
	return m.finalize(acc), true
}

// ParseAll runs every line through the machine and flushes at the end.
// dropped counts incomplete accumulators that were discarded, including
// one left over at the end.
func (m *Machine) ParseAll(lines []string) (records []model.TransactionRecord, dropped int) {
	var acc Partial
	for _, line := range lines {
		var eff Effect
		acc, eff = m.Feed(acc, line)
		switch eff.Kind {
		case EffectEmitted:
			records = append(records, eff.Record)
		case EffectDropped:
			dropped++
		}
	}
	if rec, ok := m.Flush(acc); ok {
		records = append(records, rec)
	} else if acc.HasDate {
		dropped++
	}
	return records, dropped
}

func (m *Machine) ignored(line string) bool {
	for _, re := range m.ignore {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// closeOut resolves what happens to acc when a new transaction starts:
// complete ones are emitted, incomplete ones dropped.
func (m *Machine) closeOut(acc Partial) Effect {
	switch {
	case acc.Complete && acc.Valid():
		return Effect{Kind: EffectEmitted, Record: m.finalize(acc)}
	case acc.HasDate:
		return Effect{Kind: EffectDropped, Dropped: acc}
	}
	return Effect{Kind: EffectUpdated}
}

func (m *Machine) fresh() Partial {
	return Partial{Currency: m.currency}
}

func (m *Machine) dateLineRule(acc Partial, line string) (Partial, Effect, bool) {
	if m.dateLine == nil {
		return acc, Effect{}, false
	}
	match := m.dateLine.FindStringSubmatch(line)
	if match == nil {
		return acc, Effect{}, false
	}
	date, err := normalize.ParseDate(group(m.dateLine, match, "date"), m.spec.Dates)
	if err != nil {
		return acc, Effect{}, false
	}

	eff := m.closeOut(acc)
	next := m.fresh()
	next.Date = date
	next.HasDate = true
	next.Token = group(m.dateLine, match, "token")
	return next, eff, true
}

func (m *Machine) entry(acc Partial, line string) (Partial, Effect, bool) {
	if m.entryLine == nil {
		return acc, Effect{}, false
	}
	match := m.entryLine.FindStringSubmatch(line)
	if match == nil {
		return acc, Effect{}, false
	}
	date, err := normalize.ParseDate(group(m.entryLine, match, "date"), m.spec.Dates)
	if err != nil {
		return acc, Effect{}, false
	}
	amount, err := m.parseAmount(group(m.entryLine, match, "amount"))
	if err != nil {
		return acc, Effect{}, false
	}

	eff := m.closeOut(acc)
	desc := group(m.entryLine, match, "desc")
	sign := group(m.entryLine, match, "sign")
	if sign == "" && amount.IsNegative() {
		sign = "-"
	}
	next := m.fresh().withFragment(desc)
	next.Date = date
	next.HasDate = true
	next.Token = group(m.entryLine, match, "token")
	if c, ok := model.ParseCurrency(group(m.entryLine, match, "currency")); ok {
		next.Currency = c
	}
	next.Amount = amount.Abs()
	next.HasAmount = true
	next.Direction = m.direction(sign, desc)
	next.Complete = true
	return next, eff, true
}

func (m *Machine) amountWithDescription(acc Partial, line string) (Partial, Effect, bool) {
	if m.amountDesc == nil {
		return acc, Effect{}, false
	}
	match := m.amountDesc.FindStringSubmatch(line)
	if match == nil {
		return acc, Effect{}, false
	}
	amount, err := m.parseAmount(group(m.amountDesc, match, "amount2"))
	if err != nil {
		return acc, Effect{}, false
	}

	sign := group(m.amountDesc, match, "sign2")
	if sign == "" {
		sign = group(m.amountDesc, match, "sign1")
	}
	desc := group(m.amountDesc, match, "desc")

	acc = acc.withFragment(desc)
	acc.Amount = amount.Abs()
	acc.HasAmount = true
	acc.Direction = m.direction(sign, desc)
	acc.Complete = true
	return Partial{}, Effect{Kind: EffectEmitted, Record: m.finalize(acc)}, true
}

func (m *Machine) amountOnly(acc Partial, line string) (Partial, bool) {
	if m.amountLine == nil {
		return acc, false
	}
	loc := m.amountLine.FindStringSubmatchIndex(line)
	if loc == nil {
		return acc, false
	}
	match := make([]string, len(loc)/2)
	for i := range match {
		if loc[2*i] >= 0 {
			match[i] = line[loc[2*i]:loc[2*i+1]]
		}
	}
	amount, err := m.parseAmount(group(m.amountLine, match, "amount"))
	if err != nil {
		return acc, false
	}

	remainder := strings.TrimSpace(line[:loc[0]] + " " + line[loc[1]:])
	acc = acc.withFragment(remainder)
	acc.Amount = amount.Abs()
	acc.HasAmount = true
	acc.Direction = m.direction(group(m.amountLine, match, "sign"), strings.Join(acc.Fragments, " "))
	acc.Complete = true
	return acc, true
}

func (m *Machine) parseAmount(raw string) (decimal.Decimal, error) {
	return normalize.ParseAmount(raw, m.spec.Amount)
}

// direction uses an explicit sign when present. Unsigned amounts are
// expenses unless the description reads like incoming money.
func (m *Machine) direction(sign, description string) Direction {
	switch sign {
	case "-", "−":
		return DirectionExpense
	case "+":
		return DirectionIncome
	}
	d := strings.ToLower(description)
	for _, k := range m.income {
		if strings.Contains(d, k) {
			return DirectionIncome
		}
	}
	return DirectionExpense
}

func (m *Machine) finalize(acc Partial) model.TransactionRecord {
	desc := strings.Join(strings.Fields(strings.Join(acc.Fragments, " ")), " ")
	if desc == "" {
		desc = fmt.Sprintf(m.spec.FallbackDescription, acc.Date.Format("02.01.2006"))
	}

	var note string
	if acc.Token != "" && m.spec.NoteTemplate != "" {
		note = fmt.Sprintf(m.spec.NoteTemplate, acc.Token)
	}

	currency := acc.Currency
	if !currency.Known() {
		currency = m.currency
	}

	category := ""
	if m.classifier != nil {
		category = m.classifier.Classify(desc)
	}

	return model.TransactionRecord{
		Date:        acc.Date,
		Amount:      acc.Amount.Abs(),
		Currency:    currency,
		Expense:     acc.Direction == DirectionExpense,
		Description: desc,
		Note:        note,
		Category:    category,
		Source:      m.spec.Source,
		SourceColor: m.spec.SourceColor,
	}
}
