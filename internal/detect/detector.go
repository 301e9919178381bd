package detect

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/stmtimport/internal/source"
)

// Confidence holds the individual detection signals.
type Confidence struct {
	Negative    string // competitor keyword that vetoed the document
	Positive    bool
	Title       bool
	DateMatch   bool
	AmountMatch bool
}

// Matched is the verdict: no veto, a positive keyword, and either a
// statement title or both structural patterns.
func (c Confidence) Matched() bool {
	return c.Negative == "" && c.Positive && (c.Title || (c.DateMatch && c.AmountMatch))
}

func (c Confidence) String() string {
	if c.Negative != "" {
		return fmt.Sprintf("vetoed by %q", c.Negative)
	}
	return fmt.Sprintf("positive=%t title=%t date=%t amount=%t", c.Positive, c.Title, c.DateMatch, c.AmountMatch)
}

// Detect scores a document. Keywords are looked up in header, titles and
// structural patterns in content. The negative check runs first.
func (d *Detector) Detect(header []string, content string) Confidence {
	var c Confidence
	headerText := strings.ToLower(strings.Join(header, "\n"))
	if neg := containsAny(headerText, d.negative); neg != "" {
		c.Negative = neg
		return c
	}
	c.Positive = containsAny(headerText, d.positive) != ""
	c.Title = containsAny(strings.ToLower(content), d.titles) != ""

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if d.date != nil && !c.DateMatch && d.date.MatchString(line) {
			c.DateMatch = true
		}
		if d.amount != nil && !c.AmountMatch && d.amount.MatchString(line) {
			c.AmountMatch = true
		}
		if c.DateMatch && c.AmountMatch {
			break
		}
	}
	return c
}

// DetectCursor samples the cursor without consuming it and scores the sample.
func (d *Detector) DetectCursor(c *source.LineCursor) (Confidence, error) {
	lines, err := Sample(c, d.sampleLines)
	if err != nil {
		return Confidence{}, err
	}
	header := lines[:min(len(lines), d.headerLines)]
	return d.Detect(header, strings.Join(lines, "\n")), nil
}

// Sample peeks at up to n lines and rewinds.
func Sample(c *source.LineCursor, n int) ([]string, error) {
	c.Mark()
	defer c.Unmark()

	lines := make([]string, 0, n)
	for len(lines) < n {
		line, err := c.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = c.Reset()
			return nil, fmt.Errorf("sampling header: %w", err)
		}
		lines = append(lines, line)
	}
	if err := c.Reset(); err != nil {
		return nil, err
	}
	return lines, nil
}
