package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyAmount is returned for blank amount tokens.
	ErrEmptyAmount = errors.New("empty amount")
	// ErrInvalidAmount is returned when nothing numeric survives cleanup.
	ErrInvalidAmount = errors.New("invalid amount")
)

// DefaultResidualPattern removes everything but digits, the canonical
// decimal point and minus signs.
const DefaultResidualPattern = `[^0-9.\-]`

// AmountRules describe how an institution writes money.
type AmountRules struct {
	DecimalSeparator  string   `yaml:"decimal_separator"`  // "." when empty
	GroupingSeparator string   `yaml:"grouping_separator"` // optional; whitespace is always grouping
	CurrencySymbols   []string `yaml:"currency_symbols"`   // removed case-insensitively
	ResidualPattern   string   `yaml:"residual_pattern"`   // applied after separators are canonical
	// AutoDecimal guesses the separators per token instead of using the
	// fields above. Meant for generic imports of unknown origin.
	AutoDecimal bool `yaml:"auto_decimal,omitempty"`
}

func (r AmountRules) decimalSep() string {
	if r.DecimalSeparator == "" {
		return "."
	}
	return r.DecimalSeparator
}

// ParseAmount cleans raw and parses it as an exact decimal. Cleanup order:
// currency symbols, separators, residual characters, then parse.
func ParseAmount(raw string, rules AmountRules) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	if re := symbolRegexp(rules.CurrencySymbols); re != nil {
		s = re.ReplaceAllString(s, "")
	}

	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == '−' || r == '–':
			return '-'
		}
		return r
	}, s)
	dec, grouping := rules.decimalSep(), rules.GroupingSeparator
	if rules.AutoDecimal {
		dec, grouping = guessSeparators(s)
	}
	if g := grouping; g != "" && g != dec && strings.TrimSpace(g) != "" {
		s = strings.ReplaceAll(s, g, "")
	}
	if dec != "." {
		s = strings.ReplaceAll(s, dec, ".")
	}

	res, err := residualRegexp(rules.ResidualPattern)
	if err != nil {
		return decimal.Zero, err
	}
	s = strings.TrimRight(res.ReplaceAllString(s, ""), ".")

	neg := strings.HasPrefix(s, "-")
	s = strings.ReplaceAll(s, "-", "")
	if strings.Trim(s, ".") == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if neg {
		s = "-" + s
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, raw, err)
	}
	return d, nil
}

// guessSeparators picks the decimal separator from the last '.' or ','.
// A separator that repeats, or is followed by exactly three digits with no
// other separator present, is taken as grouping instead.
func guessSeparators(s string) (dec, grouping string) {
	last := max(strings.LastIndex(s, "."), strings.LastIndex(s, ","))
	if last < 0 {
		return ".", ""
	}
	sep := s[last : last+1]
	other := ","
	if sep == "," {
		other = "."
	}

	digits := 0
	for _, r := range s[last+1:] {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if strings.Count(s, sep) > 1 || (digits == 3 && !strings.Contains(s, other)) {
		return other, sep
	}
	return sep, other
}

// FormatAmount renders d with the separators of rules, so that ParseAmount
// under the same rules yields d again.
func FormatAmount(d decimal.Decimal, rules AmountRules) string {
	s := d.Abs().String()
	intPart, frac, hasFrac := strings.Cut(s, ".")

	if g := rules.GroupingSeparator; g != "" && g != rules.decimalSep() {
		var b strings.Builder
		for i, r := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				b.WriteString(g)
			}
			b.WriteRune(r)
		}
		intPart = b.String()
	}

	out := intPart
	if hasFrac {
		out += rules.decimalSep() + frac
	}
	if d.IsNegative() {
		out = "-" + out
	}
	return out
}

var (
	cacheMu     sync.Mutex
	symbolCache = map[string]*regexp.Regexp{}
	residCache  = map[string]*regexp.Regexp{}
)

func symbolRegexp(symbols []string) *regexp.Regexp {
	var parts []string
	for _, s := range symbols {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, regexp.QuoteMeta(s))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	key := strings.Join(parts, "|")

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if re, ok := symbolCache[key]; ok {
		return re
	}
	re := regexp.MustCompile("(?i)" + key)
	symbolCache[key] = re
	return re
}

func residualRegexp(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		pattern = DefaultResidualPattern
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if re, ok := residCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling residual pattern %q: %w", pattern, err)
	}
	residCache[pattern] = re
	return re, nil
}
