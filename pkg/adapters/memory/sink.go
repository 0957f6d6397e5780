package memory

import (
	"context"
	"sync"

	"github.com/aretw0/intake/pkg/domain"
)

// Sink implements ports.RecordSink in memory.
type Sink struct {
	mu      sync.Mutex
	records []domain.Record
	onAdd   func(domain.Record)
}

// SinkOption configures the Sink.
type SinkOption func(*Sink)

// OnAppend registers a callback invoked after every append.
func OnAppend(fn func(domain.Record)) SinkOption {
	return func(s *Sink) {
		s.onAdd = fn
	}
}

// NewSink creates an empty in-memory sink.
func NewSink(opts ...SinkOption) *Sink {
	s := &Sink{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append stores the record.
func (s *Sink) Append(ctx context.Context, rec domain.Record) error {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()

	if s.onAdd != nil {
		s.onAdd(rec)
	}
	return nil
}

// Records returns a copy of every appended record, oldest first.
func (s *Sink) Records() []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Record, len(s.records))
	copy(out, s.records)
	return out
}
