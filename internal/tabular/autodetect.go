package tabular

import (
	"errors"
	"strings"
)

// DefaultScanRows bounds how far AutoDetect looks for a header row.
const DefaultScanRows = 30

// ErrNoHeader is returned when no row satisfies any header signature.
var ErrNoHeader = errors.New("no recognizable header row")

// HeaderSignature recognizes an institution's table header and maps its
// columns by keyword.
type HeaderSignature struct {
	Name string `yaml:"name"`
	// Combinations lists keyword sets; a row matches when every keyword of
	// any one set appears in the joined lowercase row.
	Combinations        [][]string  `yaml:"combinations"`
	DateKeywords        []string    `yaml:"date_keywords"`
	AmountKeywords      []string    `yaml:"amount_keywords"`
	DescriptionKeywords []string    `yaml:"description_keywords,omitempty"`
	CategoryKeywords    []string    `yaml:"category_keywords,omitempty"`
	CurrencyKeywords    []string    `yaml:"currency_keywords,omitempty"`
	Config              ParseConfig `yaml:"config"`
}

// Detection is a successful AutoDetect result.
type Detection struct {
	Signature string
	HeaderRow int
	Config    ParseConfig
}

// Matches reports whether a row looks like this signature's header.
func (h HeaderSignature) Matches(row []string) bool {
	joined := strings.ToLower(strings.Join(row, " "))
	for _, combo := range h.Combinations {
		if len(combo) == 0 {
			continue
		}
		all := true
		for _, k := range combo {
			if !strings.Contains(joined, strings.ToLower(k)) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// AutoDetect scans the first scanRows rows for a header matching one of the
// signatures, in order, and derives column indexes from it. Date and amount
// columns are required; the returned config skips through the header row.
func AutoDetect(rows [][]string, signatures []HeaderSignature, scanRows int) (Detection, error) {
	if scanRows <= 0 {
		scanRows = DefaultScanRows
	}
	limit := min(scanRows, len(rows))
	for i := 0; i < limit; i++ {
		for _, sig := range signatures {
			if !sig.Matches(rows[i]) {
				continue
			}
			cols, ok := sig.columns(rows[i])
			if !ok {
				continue
			}
			cfg := sig.Config
			cfg.Columns = cols
			cfg.HeaderRows = i + 1
			return Detection{Signature: sig.Name, HeaderRow: i, Config: cfg}, nil
		}
	}
	return Detection{}, ErrNoHeader
}

func (h HeaderSignature) columns(row []string) (Columns, bool) {
	used := map[int]bool{}
	date := findColumn(row, h.DateKeywords, used)
	amount := findColumn(row, h.AmountKeywords, used)
	if date == nil || amount == nil {
		return Columns{}, false
	}
	return Columns{
		Date:        date,
		Amount:      amount,
		Description: findColumn(row, h.DescriptionKeywords, used),
		Category:    findColumn(row, h.CategoryKeywords, used),
		Currency:    findColumn(row, h.CurrencyKeywords, used),
	}, true
}

// findColumn returns the first unused cell containing any keyword, trying
// keywords in order so that more specific ones win.
func findColumn(row []string, keywords []string, used map[int]bool) *int {
	for _, k := range keywords {
		k = strings.ToLower(k)
		for i, c := range row {
			if used[i] {
				continue
			}
			if strings.Contains(strings.ToLower(c), k) {
				used[i] = true
				return Col(i)
			}
		}
	}
	return nil
}
