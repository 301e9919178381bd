package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/id"
	"github.com/cleared-dev/stmtimport/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "id,date,amount,currency,direction,description,note,category,source,source_color"

const (
	numFields     = 10
	dateFormat    = "2006-01-02"
	colID         = 0
	colDate       = 1
	colAmount     = 2
	colCurrency   = 3
	colDirection  = 4
	colDesc       = 5
	colNote       = 6
	colCategory   = 7
	colSource     = 8
	colSourceClr  = 9
	directionExp  = "expense"
	directionInc  = "income"
)

// ReadRecords reads all records from a transactions.csv reader.
func ReadRecords(r io.Reader) ([]model.TransactionRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	// Skip header row.
	var recs []model.TransactionRecord
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteRecords writes records to w, header included.
func WriteRecords(w io.Writer, recs []model.TransactionRecord) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range recs {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalRecord converts a record to a CSV row. The amount is written with
// the currency's scale.
func MarshalRecord(rec model.TransactionRecord) []string {
	row := make([]string, numFields)
	row[colID] = id.Fingerprint(rec)
	row[colDate] = rec.Date.Format(dateFormat)
	row[colAmount] = rec.Amount.StringFixed(rec.Currency.DecimalPlaces())
	row[colCurrency] = string(rec.Currency)
	row[colDirection] = rec.Direction()
	row[colDesc] = rec.Description
	row[colNote] = rec.Note
	row[colCategory] = rec.Category
	row[colSource] = rec.Source
	if rec.SourceColor != 0 {
		row[colSourceClr] = fmt.Sprintf("#%06X", rec.SourceColor)
	}
	return row
}

// UnmarshalRecord parses a CSV row into a record.
func UnmarshalRecord(row []string) (model.TransactionRecord, error) {
	if len(row) != numFields {
		return model.TransactionRecord{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	var rec model.TransactionRecord
	var err error

	rec.Date, err = time.Parse(dateFormat, row[colDate])
	if err != nil {
		return rec, fmt.Errorf("parsing date %q: %w", row[colDate], err)
	}

	rec.Amount, err = decimal.NewFromString(row[colAmount])
	if err != nil {
		return rec, fmt.Errorf("parsing amount %q: %w", row[colAmount], err)
	}

	cur, ok := model.ParseCurrency(row[colCurrency])
	if !ok {
		return rec, fmt.Errorf("unknown currency %q", row[colCurrency])
	}
	rec.Currency = cur

	switch row[colDirection] {
	case directionExp:
		rec.Expense = true
	case directionInc:
	default:
		return rec, fmt.Errorf("invalid direction %q", row[colDirection])
	}

	rec.Description = row[colDesc]
	rec.Note = row[colNote]
	rec.Category = row[colCategory]
	rec.Source = row[colSource]

	if c := strings.TrimPrefix(row[colSourceClr], "#"); c != "" {
		v, err := strconv.ParseUint(c, 16, 32)
		if err != nil {
			return rec, fmt.Errorf("parsing source color %q: %w", row[colSourceClr], err)
		}
		rec.SourceColor = uint32(v)
	}

	return rec, nil
}
