package detect

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultHeaderLines bounds the keyword sample.
	DefaultHeaderLines = 20
	// DefaultSampleLines bounds the title and structural sample.
	DefaultSampleLines = 40
	// DefaultMaxSkip bounds the header skipper.
	DefaultMaxSkip = 300
)

// Signature is the declarative fingerprint of one institution's text export.
type Signature struct {
	Positive      []string `yaml:"positive"`
	Negative      []string `yaml:"negative,omitempty"`
	Titles        []string `yaml:"titles,omitempty"`
	DatePattern   string   `yaml:"date_pattern"`
	AmountPattern string   `yaml:"amount_pattern"`
	// DataStart overrides the patterns the header skipper stops at.
	DataStart   []string `yaml:"data_start,omitempty"`
	StartMarker string   `yaml:"start_marker,omitempty"`
	HeaderLines int      `yaml:"header_lines,omitempty"`
	SampleLines int      `yaml:"sample_lines,omitempty"`
	MaxSkip     int      `yaml:"max_skip,omitempty"`
}

// Detector is a compiled Signature.
type Detector struct {
	positive    []string
	negative    []string
	titles      []string
	date        *regexp.Regexp
	amount      *regexp.Regexp
	dataStart   []*regexp.Regexp
	startMarker *regexp.Regexp
	headerLines int
	sampleLines int
	maxSkip     int
}

// Compile validates and compiles sig.
func Compile(sig Signature) (*Detector, error) {
	d := &Detector{
		positive:    lowerAll(sig.Positive),
		negative:    lowerAll(sig.Negative),
		titles:      lowerAll(sig.Titles),
		headerLines: orDefault(sig.HeaderLines, DefaultHeaderLines),
		sampleLines: orDefault(sig.SampleLines, DefaultSampleLines),
		maxSkip:     orDefault(sig.MaxSkip, DefaultMaxSkip),
	}
	if len(d.positive) == 0 {
		return nil, fmt.Errorf("signature needs at least one positive keyword")
	}

	var err error
	if d.date, err = compileOptional(sig.DatePattern); err != nil {
		return nil, fmt.Errorf("date pattern: %w", err)
	}
	if d.amount, err = compileOptional(sig.AmountPattern); err != nil {
		return nil, fmt.Errorf("amount pattern: %w", err)
	}
	if d.startMarker, err = compileOptional(sig.StartMarker); err != nil {
		return nil, fmt.Errorf("start marker: %w", err)
	}

	starts := sig.DataStart
	if len(starts) == 0 {
		starts = []string{sig.DatePattern, sig.AmountPattern}
	}
	for _, p := range starts {
		re, err := compileOptional(p)
		if err != nil {
			return nil, fmt.Errorf("data start pattern: %w", err)
		}
		if re != nil {
			d.dataStart = append(d.dataStart, re)
		}
	}
	return d, nil
}

func compileOptional(p string) (*regexp.Regexp, error) {
	if p == "" {
		return nil, nil
	}
	return regexp.Compile(p)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func containsAny(text string, keywords []string) string {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return k
		}
	}
	return ""
}
