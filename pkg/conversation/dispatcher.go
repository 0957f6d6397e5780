package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/metrics"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/inbound"
	"github.com/aretw0/intake/pkg/machine"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/session"
	"github.com/google/uuid"
)

// Dispatcher applies inbound messages to sender sessions.
type Dispatcher struct {
	sessions *session.Manager
	sender   ports.SMSSender
	sink     ports.RecordSink

	catalog domain.Catalog
	timeout time.Duration
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for step outcomes and swallowed failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics records transitions, replies and records on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithCatalog overrides the reply texts.
func WithCatalog(c domain.Catalog) Option {
	return func(d *Dispatcher) {
		d.catalog = c
	}
}

// WithSessionTimeout discards sessions idle for longer than timeout. Zero disables expiry.
func WithSessionTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithClock sets the time source used for LastUpdate and expiry.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithIDGenerator sets the function producing record IDs.
func WithIDGenerator(newID func() string) Option {
	return func(d *Dispatcher) {
		d.newID = newID
	}
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(sessions *session.Manager, sender ports.SMSSender, sink ports.RecordSink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sessions: sessions,
		sender:   sender,
		sink:     sink,
		catalog:  domain.DefaultCatalog(),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Process runs one conversation step for msg.
// Reply and sink failures are logged, not returned. Returned errors mean the session
// could not be loaded, advanced or persisted.
func (d *Dispatcher) Process(ctx context.Context, msg inbound.Message) error {
	if msg.From == "" {
		return inbound.ErrMissingSender
	}

	if d.metrics != nil {
		start := time.Now()
		defer func() {
			d.metrics.StepDuration.Observe(time.Since(start).Seconds())
		}()
	}

	return d.sessions.WithLock(ctx, msg.From, func(ctx context.Context) error {
		return d.step(ctx, msg)
	})
}

func (d *Dispatcher) step(ctx context.Context, msg inbound.Message) error {
	store := d.sessions.Store()
	log := d.logger.With(logging.Phone(msg.From))

	sess, err := d.loadOrStart(ctx, store, msg, log)
	if err != nil {
		return err
	}

	from := sess.State
	res, err := machine.Transition(*sess, msg.Text)
	if err != nil {
		// Drop it so the next message restarts.
		log.Error("Discarding session with unknown state", "state", from, "err", err)
		if delErr := store.Delete(ctx, msg.From); delErr != nil {
			log.Error("Failed to discard session", "err", delErr)
		}
		return fmt.Errorf("transition from %q: %w", from, err)
	}

	sess.Apply(res.Updates)
	sess.State = res.Next
	sess.LastUpdate = d.now()

	if d.metrics != nil {
		d.metrics.Transitions.WithLabelValues(string(from), string(res.Next)).Inc()
	}
	log.Debug("Transition", "from", from, "to", res.Next, "message", res.Message, "reprompt", !res.Changed(from))

	d.reply(ctx, msg.From, res.Message, log)

	if res.Next.IsTerminal() {
		return d.complete(ctx, store, msg.From, sess, log)
	}

	if err := store.Save(ctx, msg.From, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (d *Dispatcher) loadOrStart(ctx context.Context, store ports.SessionStore, msg inbound.Message, log *slog.Logger) (*domain.Session, error) {
	sess, err := store.Load(ctx, msg.From)
	if errors.Is(err, domain.ErrSessionNotFound) {
		log.Info("Starting session", "has_media", msg.MediaURL != "")
		return domain.NewSession(msg.MediaURL), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if sess.Expired(d.now(), d.timeout) {
		log.Info("Session expired, restarting", "state", sess.State, "last_update", sess.LastUpdate)
		return domain.NewSession(msg.MediaURL), nil
	}
	return sess, nil
}

func (d *Dispatcher) reply(ctx context.Context, to string, key domain.MessageKey, log *slog.Logger) {
	text := d.catalog.Text(key)
	if text == "" {
		log.Warn("No reply text configured", "message", key)
		return
	}

	err := d.sender.Send(ctx, to, text)
	if d.metrics != nil {
		d.metrics.Replies.WithLabelValues(metrics.Result(err)).Inc()
	}
	if err != nil {
		log.Warn("Failed to send reply", "message", key, "err", err)
	}
}

// complete emits the record and removes the session.
// The session is removed even when the append fails; that record is lost.
func (d *Dispatcher) complete(ctx context.Context, store ports.SessionStore, phone string, sess *domain.Session, log *slog.Logger) error {
	rec := domain.NewRecord(d.newID(), phone, sess)

	err := d.sink.Append(ctx, rec)
	if d.metrics != nil {
		d.metrics.Records.WithLabelValues(metrics.Result(err)).Inc()
	}
	if err != nil {
		log.Error("Failed to append record", "record_id", rec.ID, "err", err)
	}

	if err := store.Delete(ctx, phone); err != nil {
		return fmt.Errorf("failed to delete completed session: %w", err)
	}

	log.Info("Intake completed", "record_id", rec.ID, "appended", err == nil)
	return nil
}
