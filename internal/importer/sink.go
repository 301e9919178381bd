package importer

import (
	"context"
	"sync"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// Sink persists records one at a time. Each call is independent; a
// failure affects only that record.
type Sink interface {
	Save(ctx context.Context, rec model.TransactionRecord) error
}

// Flusher is implemented by sinks that buffer writes.
type Flusher interface {
	Flush(ctx context.Context) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, rec model.TransactionRecord) error

func (f SinkFunc) Save(ctx context.Context, rec model.TransactionRecord) error { return f(ctx, rec) }

// Discard accepts and drops every record.
var Discard Sink = SinkFunc(func(context.Context, model.TransactionRecord) error { return nil })

// MemorySink keeps records in memory.
type MemorySink struct {
	mu      sync.Mutex
	records []model.TransactionRecord
}

func (s *MemorySink) Save(_ context.Context, rec model.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of what was saved.
func (s *MemorySink) Records() []model.TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.TransactionRecord(nil), s.records...)
}
