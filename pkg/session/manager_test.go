package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]domain.Session
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, senderID string, sess *domain.Session) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]domain.Session)
	}
	s.data[senderID] = *sess
	return nil
}

func (s *SlowStore) Load(ctx context.Context, senderID string) (*domain.Session, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.data[senderID]; ok {
		return &sess, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, senderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, senderID)
	return nil
}

func TestManager_WithLock_NoLostUpdates(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "+15550001111"

	require.NoError(t, manager.Save(ctx, id, &domain.Session{State: domain.StateAwaitingName}))

	// Each writer appends one character to LastName via read-modify-write.
	// Without mutual exclusion, concurrent writers read the same prior value and overwrite each other.
	var wg sync.WaitGroup
	writers := 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, id, func(ctx context.Context) error {
				sess, err := manager.Store().Load(ctx, id)
				if err != nil {
					return err
				}
				sess.LastName += "x"
				return manager.Store().Save(ctx, id, sess)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, sess.LastName, writers)
}

func TestManager_DifferentSendersDoNotBlock(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()

	holding := make(chan struct{})
	releaseA := make(chan struct{})
	go func() {
		_ = manager.WithLock(ctx, "sender-a", func(ctx context.Context) error {
			close(holding)
			<-releaseA
			return nil
		})
	}()
	<-holding

	done := make(chan struct{})
	go func() {
		_ = manager.WithLock(ctx, "sender-b", func(ctx context.Context) error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on sender-b blocked behind sender-a")
	}
	close(releaseA)
}

type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked int
	ttl      time.Duration
	err      error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.locked = append(f.locked, key)
	f.ttl = ttl
	f.mu.Unlock()
	return func(ctx context.Context) error {
		f.mu.Lock()
		f.unlocked++
		f.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	manager := session.NewManager(&SlowStore{}, session.WithLocker(locker), session.WithLockTTL(5*time.Second))
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "+1555", domain.NewSession("")))
	_, err := manager.Load(ctx, "+1555")
	require.NoError(t, err)

	assert.Equal(t, []string{"+1555", "+1555"}, locker.locked)
	assert.Equal(t, 2, locker.unlocked)
	assert.Equal(t, 5*time.Second, locker.ttl)
}

func TestManager_DistributedLockerFailure(t *testing.T) {
	locker := &fakeLocker{err: errors.New("redis down")}
	manager := session.NewManager(&SlowStore{}, session.WithLocker(locker))

	called := false
	err := manager.WithLock(context.Background(), "+1555", func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.Error(t, err)
	assert.False(t, called, "fn must not run without the distributed lock")
}
