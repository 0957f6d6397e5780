package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/intake/pkg/domain"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, senderID string, sess *domain.Session) error {
	return nil
}
func (m *MockStore) Load(ctx context.Context, senderID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (m *MockStore) Delete(ctx context.Context, senderID string) error { return nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("+1555%07d", i)
		_ = mgr.Save(ctx, sid, &domain.Session{})
		_ = mgr.Delete(ctx, sid)
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
