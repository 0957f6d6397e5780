package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(senderID) after unlocking.
func (m *Manager) acquire(senderID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[senderID]
	if !exists {
		entry = &lockEntry{}
		m.locks[senderID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(senderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[senderID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, senderID)
	}
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, senderID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, senderID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, senderID)
		return err
	})
	return sess, err
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, senderID string, sess *domain.Session) error {
	return m.WithLock(ctx, senderID, func(ctx context.Context) error {
		return m.store.Save(ctx, senderID, sess)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, senderID string) error {
	return m.WithLock(ctx, senderID, func(ctx context.Context) error {
		return m.store.Delete(ctx, senderID)
	})
}

// Store returns the underlying session store.
// Use it inside WithLock; calling Manager.Load/Save/Delete there would deadlock.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the sender.
func (m *Manager) WithLock(ctx context.Context, senderID string, fn func(context.Context) error) error {
	entry := m.acquire(senderID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(senderID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, senderID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					logging.Phone(senderID),
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
