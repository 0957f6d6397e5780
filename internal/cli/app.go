package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/metrics"
	"github.com/aretw0/intake/pkg/adapters/clicksend"
	"github.com/aretw0/intake/pkg/adapters/dynamodb"
	"github.com/aretw0/intake/pkg/adapters/file"
	intakehttp "github.com/aretw0/intake/pkg/adapters/http"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/adapters/redis"
	"github.com/aretw0/intake/pkg/adapters/xlsx"
	"github.com/aretw0/intake/pkg/conversation"
	"github.com/aretw0/intake/pkg/persistence"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/session"
)

// App holds the wired components of a running bot.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Sessions   *session.Manager
	Sender     ports.SMSSender
	Sink       ports.RecordSink
	Dispatcher *conversation.Dispatcher
	Queue      *conversation.Queue

	checks  map[string]intakehttp.HealthCheck
	closers []func() error
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg config.Config) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.Log.Level), logging.Format(cfg.Log.Format))
}

// Build wires every component selected by cfg. ctx bounds setup calls and becomes
// the base context of queued conversation steps.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
		checks:  make(map[string]intakehttp.HealthCheck),
	}

	store, locker, err := app.buildStore()
	if err != nil {
		return nil, errors.Join(err, app.Close(ctx))
	}

	sessionOpts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Session.LockTTL),
	}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(store, sessionOpts...)

	if app.Sink, err = app.buildSink(ctx); err != nil {
		return nil, errors.Join(err, app.Close(ctx))
	}
	if app.Sender, err = app.buildSender(); err != nil {
		return nil, errors.Join(err, app.Close(ctx))
	}

	app.Dispatcher = conversation.NewDispatcher(app.Sessions, app.Sender, app.Sink,
		conversation.WithLogger(logger),
		conversation.WithMetrics(app.Metrics),
		conversation.WithCatalog(cfg.Catalog()),
		conversation.WithSessionTimeout(cfg.Session.Timeout),
	)
	app.Queue = conversation.NewQueue(app.Dispatcher,
		conversation.WithQueueLogger(logger),
		conversation.WithQueueMetrics(app.Metrics),
		conversation.WithBaseContext(context.WithoutCancel(ctx)),
	)

	logger.Info("Intake bot configured",
		"sessions", cfg.Session.Backend,
		"sink", cfg.Sink.Backend,
		"sms", cfg.SMS.Backend,
		"session_timeout", cfg.Session.Timeout,
	)
	return app, nil
}

func (a *App) codec() (persistence.Codec, error) {
	active, fallback, err := a.Config.EncryptionKeys()
	if err != nil {
		return nil, err
	}
	if active == nil {
		return persistence.JSON{}, nil
	}
	return persistence.NewEncryptedCodec(persistence.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallback,
	}, persistence.JSON{})
}

func (a *App) buildStore() (ports.SessionStore, ports.DistributedLocker, error) {
	cfg := a.Config
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil

	case config.BackendFile:
		codec, err := a.codec()
		if err != nil {
			return nil, nil, err
		}
		return file.New(cfg.Session.Dir, file.WithCodec(codec)), nil, nil

	case config.BackendRedis:
		codec, err := a.codec()
		if err != nil {
			return nil, nil, err
		}
		client := redis.NewClient(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		a.closers = append(a.closers, client.Close)

		store := redis.NewFromClient(client,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
			redis.WithCodec(codec),
		)
		a.checks["redis"] = store.Ping
		return store, redis.NewLocker(client, cfg.Redis.Prefix), nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
}

func (a *App) buildSink(ctx context.Context) (ports.RecordSink, error) {
	cfg := a.Config
	switch cfg.Sink.Backend {
	case config.BackendMemory:
		return memory.NewSink(), nil
	case config.BackendXLSX:
		return xlsx.New(cfg.Sink.ExcelFile, xlsx.WithSheet(cfg.Sink.Sheet), xlsx.WithLogger(a.Logger)), nil
	case config.BackendDynamoDB:
		return dynamodb.NewFromEnv(ctx, cfg.Sink.DynamoDBTable, cfg.Sink.AWSRegion)
	}
	return nil, fmt.Errorf("unknown sink backend %q", cfg.Sink.Backend)
}

func (a *App) buildSender() (ports.SMSSender, error) {
	cfg := a.Config
	switch cfg.SMS.Backend {
	case config.BackendClickSend:
		return clicksend.New(clicksend.Config{
			Username: cfg.SMS.Username,
			APIKey:   cfg.SMS.APIKey,
			URL:      cfg.SMS.URL,
			From:     cfg.SMS.From,
		})
	case config.BackendLog:
		return logSender(a.Logger), nil
	}
	return nil, fmt.Errorf("unknown sms backend %q", cfg.SMS.Backend)
}

// logSender writes replies to the log instead of a gateway.
func logSender(logger *slog.Logger) ports.SMSSender {
	return ports.SMSSenderFunc(func(ctx context.Context, to, body string) error {
		logger.Info("SMS reply", logging.Phone(to), "body", body)
		return nil
	})
}

// Handler returns the HTTP surface of the app.
func (a *App) Handler() *intakehttp.Server {
	opts := []intakehttp.Option{
		intakehttp.WithLogger(a.Logger),
		intakehttp.WithMetrics(a.Metrics),
	}
	for name, check := range a.checks {
		opts = append(opts, intakehttp.WithHealthCheck(name, check))
	}
	return intakehttp.NewServer(a.Queue, opts...)
}

// Close drains the queue and releases connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Queue != nil {
		if err := a.Queue.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("queue did not drain: %w", err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
