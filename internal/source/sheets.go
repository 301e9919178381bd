package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// SheetSelector picks a worksheet by name, or by zero-based index when
// Name is empty.
type SheetSelector struct {
	Index int    `yaml:"index"`
	Name  string `yaml:"name,omitempty"`
}

func (s SheetSelector) String() string {
	if s.Name != "" {
		return fmt.Sprintf("sheet %q", s.Name)
	}
	return fmt.Sprintf("sheet #%d", s.Index)
}

// OpenXLSX decodes one worksheet of an Office Open XML workbook.
func OpenXLSX(r io.Reader, sel SheetSelector) (*RowCursor, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	name := sel.Name
	if name == "" {
		name = f.GetSheetName(sel.Index)
	}
	if name == "" {
		return nil, fmt.Errorf("xlsx: %s not found", sel)
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("reading xlsx rows: %w", err)
	}
	return NewRowCursor(rows), nil
}

// OpenXLS decodes one worksheet of a legacy BIFF workbook.
func OpenXLS(rs io.ReadSeeker, sel SheetSelector) (c *RowCursor, err error) {
	// The BIFF decoder panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("decoding xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(rs, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("xls: no sheets found")
	}

	var sheet *xls.WorkSheet
	if sel.Name != "" {
		for i := 0; i < wb.NumSheets(); i++ {
			if s := wb.GetSheet(i); s != nil && s.Name == sel.Name {
				sheet = s
				break
			}
		}
	} else {
		sheet = wb.GetSheet(sel.Index)
	}
	if sheet == nil {
		return nil, fmt.Errorf("xls: %s not found", sel)
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return NewRowCursor(rows), nil
}

// ReadCSV decodes delimited text. A zero delimiter is sniffed from the
// first line among comma, semicolon and tab.
func ReadCSV(r io.Reader, delimiter rune) (*RowCursor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if delimiter == 0 {
		delimiter = SniffDelimiter(firstLine(data))
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return NewRowCursor(rows), nil
}

func firstLine(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	if sc.Scan() {
		return sc.Text()
	}
	return ""
}

// SniffDelimiter picks the most frequent of comma, semicolon and tab,
// preferring comma on ties.
func SniffDelimiter(line string) rune {
	best, bestN := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
