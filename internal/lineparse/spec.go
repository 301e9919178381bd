package lineparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/normalize"
)

// DefaultMaxFragments is how many description lines a complete
// transaction may collect before it is emitted.
const DefaultMaxFragments = 2

// Spec declares how one institution lays out transactions in extracted
// text. Patterns use named groups:
//
//	DateLine               date, optional token
//	TokenLine              token, optional desc carried on as text
//	AmountWithDescription  sign1 amount1 sign2 amount2 desc
//	AmountLine             sign amount (the rest of the line is description)
//	EntryLine              date token desc sign amount currency
type Spec struct {
	Source      string `yaml:"source"`
	SourceColor uint32 `yaml:"source_color,omitempty"`
	Currency    string `yaml:"currency,omitempty"`

	DateLine              string   `yaml:"date_line"`
	TokenLine             string   `yaml:"token_line,omitempty"`
	AmountWithDescription string   `yaml:"amount_with_description,omitempty"`
	AmountLine            string   `yaml:"amount_line,omitempty"`
	EntryLine             string   `yaml:"entry_line,omitempty"`
	Ignore                []string `yaml:"ignore,omitempty"`

	IncomeKeywords []string `yaml:"income_keywords,omitempty"`
	MaxFragments   int      `yaml:"max_fragments,omitempty"`

	Dates  normalize.DateFormats `yaml:"dates"`
	Amount normalize.AmountRules `yaml:"amount"`

	NoteTemplate        string `yaml:"note_template,omitempty"`        // one %s for the token
	FallbackDescription string `yaml:"fallback_description,omitempty"` // one %s for the date
}

// Classifier assigns a category to a description.
type Classifier interface {
	Classify(description string) string
}

// Machine is a compiled Spec. It keeps no per-document state; the
// accumulator is passed in and returned by Feed.
type Machine struct {
	spec       Spec
	classifier Classifier
	currency   model.Currency

	dateLine   *regexp.Regexp
	tokenLine  *regexp.Regexp
	amountDesc *regexp.Regexp
	amountLine *regexp.Regexp
	entryLine  *regexp.Regexp
	ignore     []*regexp.Regexp
	income     []string
}

// Compile validates spec and binds the classifier.
func Compile(spec Spec, classifier Classifier) (*Machine, error) {
	if spec.DateLine == "" && spec.EntryLine == "" {
		return nil, fmt.Errorf("line spec %q: needs a date_line or an entry_line", spec.Source)
	}
	if spec.MaxFragments <= 0 {
		spec.MaxFragments = DefaultMaxFragments
	}
	if spec.FallbackDescription == "" {
		spec.FallbackDescription = "Операция от %s"
	}
	if len(spec.Dates.Layouts()) == 0 {
		spec.Dates = normalize.DefaultDateFormats()
	}
	if err := checkTemplate(spec.FallbackDescription); err != nil {
		return nil, fmt.Errorf("line spec %q: fallback_description: %w", spec.Source, err)
	}
	if spec.NoteTemplate != "" {
		if err := checkTemplate(spec.NoteTemplate); err != nil {
			return nil, fmt.Errorf("line spec %q: note_template: %w", spec.Source, err)
		}
	}

	m := &Machine{spec: spec, classifier: classifier, currency: model.DefaultCurrency}
	if c, ok := model.ParseCurrency(spec.Currency); ok {
		m.currency = c
	}

	patterns := []struct {
		name   string
		src    string
		dst    **regexp.Regexp
		groups []string
	}{
		{"date_line", spec.DateLine, &m.dateLine, []string{"date"}},
		{"token_line", spec.TokenLine, &m.tokenLine, []string{"token"}},
		{"amount_with_description", spec.AmountWithDescription, &m.amountDesc, []string{"amount2", "desc"}},
		{"amount_line", spec.AmountLine, &m.amountLine, []string{"amount"}},
		{"entry_line", spec.EntryLine, &m.entryLine, []string{"date", "desc", "amount"}},
	}
	for _, p := range patterns {
		if p.src == "" {
			continue
		}
		re, err := regexp.Compile(p.src)
		if err != nil {
			return nil, fmt.Errorf("line spec %q: %s: %w", spec.Source, p.name, err)
		}
		for _, g := range p.groups {
			if re.SubexpIndex(g) < 0 {
				return nil, fmt.Errorf("line spec %q: %s: missing group %q", spec.Source, p.name, g)
			}
		}
		*p.dst = re
	}

	for _, p := range spec.Ignore {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("line spec %q: ignore pattern: %w", spec.Source, err)
		}
		m.ignore = append(m.ignore, re)
	}
	for _, k := range spec.IncomeKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			m.income = append(m.income, k)
		}
	}
	return m, nil
}

// Source returns the label stamped on emitted records.
func (m *Machine) Source() string { return m.spec.Source }

// checkTemplate accepts exactly one %s verb; %% is a literal percent.
func checkTemplate(tmpl string) error {
	verbs := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 >= len(tmpl) {
			return fmt.Errorf("%q: trailing %%", tmpl)
		}
		i++
		switch tmpl[i] {
		case '%':
		case 's':
			verbs++
		default:
			return fmt.Errorf("%q: unsupported verb %%%c", tmpl, tmpl[i])
		}
	}
	if verbs != 1 {
		return fmt.Errorf("%q: want exactly one %%s, got %d", tmpl, verbs)
	}
	return nil
}

func group(re *regexp.Regexp, match []string, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(match) {
		return ""
	}
	return strings.TrimSpace(match[i])
}
