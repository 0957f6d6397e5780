package ports_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
)

// MockStore is a minimal SessionStore used to exercise the contract suite itself.
type MockStore struct {
	mu   sync.Mutex
	data map[string]domain.Session
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.Session),
	}
}

func (m *MockStore) Save(ctx context.Context, senderID string, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[senderID] = *session
	return nil
}

func (m *MockStore) Load(ctx context.Context, senderID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.data[senderID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (m *MockStore) Delete(ctx context.Context, senderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, senderID)
	return nil
}

func TestSessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, NewMockStore())
}

func TestSMSSenderFunc(t *testing.T) {
	var got string
	s := ports.SMSSenderFunc(func(ctx context.Context, to, body string) error {
		got = to + ":" + body
		return nil
	})

	if err := s.Send(context.Background(), "+1555", "hola"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "+1555:hola" {
		t.Errorf("expected %q, got %q", "+1555:hola", got)
	}
}
