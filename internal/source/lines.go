package source

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrNoMark is returned by Reset when no mark is held.
var ErrNoMark = errors.New("reset without mark")

const maxLineBytes = 1 << 20

// LineCursor reads a text statement line by line and supports a single
// mark that Reset rewinds to. Lines before the mark are released once
// they can no longer be revisited.
type LineCursor struct {
	sc    *bufio.Scanner
	buf   []string
	base  int // absolute index of buf[0]
	pos   int // index in buf of the next line
	mark  int // -1 when unmarked
	total int
	first bool
}

// NewLineCursor wraps r. Total is unknown (zero).
func NewLineCursor(r io.Reader) *LineCursor {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &LineCursor{sc: sc, mark: -1, first: true}
}

// NewLineCursorFromString wraps an already extracted text and records its
// line count as the total.
func NewLineCursorFromString(s string) *LineCursor {
	c := NewLineCursor(strings.NewReader(s))
	c.total = countLines(s)
	return c
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// Next returns the next line with NUL bytes and trailing CR removed. It
// returns io.EOF at the end of input and the scanner error on failure.
func (c *LineCursor) Next() (string, error) {
	if c.pos < len(c.buf) {
		line := c.buf[c.pos]
		c.pos++
		return line, nil
	}

	if !c.sc.Scan() {
		if err := c.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := clean(c.sc.Text())
	if c.first {
		line = strings.TrimPrefix(line, "\ufeff")
		c.first = false
	}

	if c.mark < 0 {
		c.base += len(c.buf) + 1
		c.buf = c.buf[:0]
		c.pos = 0
		return line, nil
	}
	c.buf = append(c.buf, line)
	c.pos++
	return line, nil
}

func clean(line string) string {
	line = strings.ReplaceAll(line, "\x00", "")
	return strings.TrimRight(line, "\r")
}

// Mark remembers the current position, replacing any earlier mark.
func (c *LineCursor) Mark() {
	c.compact()
	c.mark = 0
}

// Reset rewinds to the mark. The mark stays in place.
func (c *LineCursor) Reset() error {
	if c.mark < 0 {
		return ErrNoMark
	}
	c.pos = c.mark
	return nil
}

// Unmark drops the mark and releases consumed lines.
func (c *LineCursor) Unmark() {
	c.mark = -1
	c.compact()
}

func (c *LineCursor) compact() {
	if c.pos == 0 {
		return
	}
	c.base += c.pos
	c.buf = append(c.buf[:0], c.buf[c.pos:]...)
	c.pos = 0
}

// Position is the zero-based index of the line Next will return.
func (c *LineCursor) Position() int {
	return c.base + c.pos
}

// Total is the line count if known, otherwise zero.
func (c *LineCursor) Total() int {
	return c.total
}
