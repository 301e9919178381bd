package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// CSVSink appends validated records to a transactions.csv file. The file
// is opened lazily and written through a buffer; call Flush to commit.
type CSVSink struct {
	path string

	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// NewCSVSink returns a sink appending to path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Save validates rec and appends it.
func (s *CSVSink) Save(_ context.Context, rec model.TransactionRecord) error {
	if err := Check(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.open(); err != nil {
		return err
	}
	if err := s.w.Write(MarshalRecord(rec)); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

func (s *CSVSink) open() error {
	if s.w != nil {
		return nil
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat ledger: %w", err)
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(strings.Split(Header, ",")); err != nil {
			f.Close()
			return fmt.Errorf("writing header: %w", err)
		}
	}
	s.f, s.w = f, w
	return nil
}

// Flush commits buffered rows to disk.
func (s *CSVSink) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return nil
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flushing ledger: %w", err)
	}
	return s.f.Sync()
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	if err := s.Flush(context.Background()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f, s.w = nil, nil
	return err
}

// ReadFile reads every record in the ledger at path. A missing file holds
// no records.
func ReadFile(path string) ([]model.TransactionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()
	return ReadRecords(f)
}
