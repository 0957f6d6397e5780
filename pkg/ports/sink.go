package ports

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// RecordSink is the append-only destination of completed intakes.
// Append must be atomic with respect to concurrent appends: a failed or concurrent
// append never corrupts rows that were already written.
type RecordSink interface {
	Append(ctx context.Context, record domain.Record) error
}
