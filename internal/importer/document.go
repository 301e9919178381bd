package importer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cleared-dev/stmtimport/internal/source"
)

// Document is one opened statement: either extracted text lines or
// decoded spreadsheet rows. It is owned by a single import.
type Document struct {
	Name string
	Kind source.Kind

	lines *source.LineCursor
	rows  *source.RowCursor
}

// NewTextDocument streams text from r. The line total is unknown.
func NewTextDocument(name string, r io.Reader) *Document {
	return &Document{Name: name, Kind: source.KindText, lines: source.NewLineCursor(r)}
}

// NewTextDocumentFromString wraps already extracted text.
func NewTextDocumentFromString(name, text string) *Document {
	return &Document{Name: name, Kind: source.KindText, lines: source.NewLineCursorFromString(text)}
}

// NewTableDocument wraps decoded rows.
func NewTableDocument(name string, kind source.Kind, rows *source.RowCursor) *Document {
	return &Document{Name: name, Kind: kind, rows: rows}
}

// Lines returns the text cursor, or nil for tables.
func (d *Document) Lines() *source.LineCursor { return d.lines }

// Rows returns the row cursor, or nil for text.
func (d *Document) Rows() *source.RowCursor { return d.rows }

// OpenFile reads path and decodes it according to its sniffed kind. The
// sheet selector applies to workbooks only.
func OpenFile(path string, sheet source.SheetSelector) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	name := filepath.Base(path)
	head := data[:min(len(data), 8)]

	switch kind := source.Sniff(head, name); kind {
	case source.KindXLSX:
		rows, err := source.OpenXLSX(bytes.NewReader(data), sheet)
		if err != nil {
			return nil, err
		}
		return NewTableDocument(name, kind, rows), nil
	case source.KindXLS:
		rows, err := source.OpenXLS(bytes.NewReader(data), sheet)
		if err != nil {
			return nil, err
		}
		return NewTableDocument(name, kind, rows), nil
	case source.KindCSV:
		rows, err := source.ReadCSV(bytes.NewReader(data), 0)
		if err != nil {
			return nil, err
		}
		return NewTableDocument(name, kind, rows), nil
	default:
		return NewTextDocumentFromString(name, string(data)), nil
	}
}
