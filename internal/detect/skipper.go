package detect

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/stmtimport/internal/source"
)

// SkipResult describes where the header skipper left the cursor.
type SkipResult struct {
	Skipped int  // lines consumed
	Found   bool // false when the cursor was rewound to the start
}

// IsDataLine reports whether line looks like the first line of the
// transaction table.
func (d *Detector) IsDataLine(line string) bool {
	line = strings.TrimSpace(line)
	for _, re := range d.dataStart {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// SkipHeaders advances c to just before the first data line, passing the
// start marker first when the signature has one. Within MaxSkip lines
// without a match the cursor is rewound to where it started.
func (d *Detector) SkipHeaders(c *source.LineCursor) (SkipResult, error) {
	c.Mark()
	defer c.Unmark()

	read := 0
	next := func() (string, bool, error) {
		if read >= d.maxSkip {
			return "", false, nil
		}
		line, err := c.Next()
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("skipping headers: %w", err)
		}
		read++
		return line, true, nil
	}

	if d.startMarker != nil {
		found := false
		for {
			line, ok, err := next()
			if err != nil {
				return SkipResult{}, err
			}
			if !ok {
				break
			}
			if d.startMarker.MatchString(line) {
				found = true
				break
			}
		}
		if !found {
			return SkipResult{}, c.Reset()
		}
	}

	for {
		line, ok, err := next()
		if err != nil {
			return SkipResult{}, err
		}
		if !ok {
			return SkipResult{}, c.Reset()
		}
		if d.IsDataLine(line) {
			return d.rewindTo(c, read-1)
		}
	}
}

// rewindTo resets to the mark and re-consumes n lines.
func (d *Detector) rewindTo(c *source.LineCursor, n int) (SkipResult, error) {
	if err := c.Reset(); err != nil {
		return SkipResult{}, err
	}
	for i := 0; i < n; i++ {
		if _, err := c.Next(); err != nil {
			return SkipResult{}, fmt.Errorf("skipping headers: %w", err)
		}
	}
	return SkipResult{Skipped: n, Found: true}, nil
}
