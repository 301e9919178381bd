package source

import (
	"io"
	"strings"
)

// RowCursor walks decoded spreadsheet rows with the same mark/reset
// contract as LineCursor.
type RowCursor struct {
	rows [][]string
	pos  int
	mark int
}

// NewRowCursor wraps rows. Cells are trimmed.
func NewRowCursor(rows [][]string) *RowCursor {
	for _, r := range rows {
		for i := range r {
			r[i] = strings.TrimSpace(strings.ReplaceAll(r[i], "\x00", ""))
		}
	}
	return &RowCursor{rows: rows, mark: -1}
}

// Next returns the next row or io.EOF.
func (c *RowCursor) Next() ([]string, error) {
	if c.pos >= len(c.rows) {
		return nil, io.EOF
	}
	row := c.rows[c.pos]
	c.pos++
	return row, nil
}

// Mark remembers the current position.
func (c *RowCursor) Mark() { c.mark = c.pos }

// Reset rewinds to the mark.
func (c *RowCursor) Reset() error {
	if c.mark < 0 {
		return ErrNoMark
	}
	c.pos = c.mark
	return nil
}

// Unmark drops the mark.
func (c *RowCursor) Unmark() { c.mark = -1 }

// Position is the zero-based index of the row Next will return.
func (c *RowCursor) Position() int { return c.pos }

// Total is the number of rows.
func (c *RowCursor) Total() int { return len(c.rows) }

// Skip advances n rows, stopping at the end.
func (c *RowCursor) Skip(n int) {
	c.pos = min(c.pos+n, len(c.rows))
}
