package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/metrics"
	"github.com/aretw0/intake/pkg/inbound"
)

// ErrQueueClosed is returned by Submit after Close.
var ErrQueueClosed = errors.New("conversation queue is closed")

// Processor runs one conversation step.
type Processor interface {
	Process(ctx context.Context, msg inbound.Message) error
}

// lane holds the pending messages of one sender.
type lane struct {
	pending []inbound.Message
}

// Queue runs conversation steps in the background, one FIFO lane per sender.
type Queue struct {
	proc    Processor
	base    context.Context
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	lanes  map[string]*lane
	closed bool
	wg     sync.WaitGroup
}

// QueueOption configures the Queue.
type QueueOption func(*Queue)

// WithQueueLogger sets the logger for failed steps.
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithQueueMetrics tracks active senders on m.
func WithQueueMetrics(m *metrics.Metrics) QueueOption {
	return func(q *Queue) {
		q.metrics = m
	}
}

// WithBaseContext sets the context steps run under.
// Steps are detached from the request that submitted them.
func WithBaseContext(ctx context.Context) QueueOption {
	return func(q *Queue) {
		q.base = ctx
	}
}

// NewQueue creates a Queue feeding proc.
func NewQueue(proc Processor, opts ...QueueOption) *Queue {
	q := &Queue{
		proc:   proc,
		base:   context.Background(),
		logger: logging.NewNop(),
		lanes:  make(map[string]*lane),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Submit enqueues msg on its sender's lane and returns immediately.
func (q *Queue) Submit(msg inbound.Message) error {
	if msg.From == "" {
		return inbound.ErrMissingSender
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	l, busy := q.lanes[msg.From]
	if !busy {
		l = &lane{}
		q.lanes[msg.From] = l
	}
	l.pending = append(l.pending, msg)

	if !busy {
		q.wg.Add(1)
		if q.metrics != nil {
			q.metrics.ActiveSenders.Inc()
		}
		go q.drain(msg.From, l)
	}
	return nil
}

// drain processes a lane until it is empty, then retires it.
func (q *Queue) drain(sender string, l *lane) {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if len(l.pending) == 0 {
			delete(q.lanes, sender)
			if q.metrics != nil {
				q.metrics.ActiveSenders.Dec()
			}
			q.mu.Unlock()
			return
		}
		msg := l.pending[0]
		l.pending = l.pending[1:]
		q.mu.Unlock()

		q.run(msg)
	}
}

func (q *Queue) run(msg inbound.Message) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Conversation step panicked", logging.Phone(msg.From), "panic", fmt.Sprint(r))
		}
	}()

	if err := q.proc.Process(q.base, msg); err != nil {
		q.logger.Error("Conversation step failed", logging.Phone(msg.From), "err", err)
	}
}

// Close stops accepting messages and waits for queued steps to finish
// or for ctx to be done.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
