package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/intake/pkg/domain"
)

// Codec converts sessions to and from bytes.
type Codec interface {
	Marshal(sess *domain.Session) ([]byte, error)
	Unmarshal(data []byte) (*domain.Session, error)
}

// JSON is the plain JSON codec.
type JSON struct{}

// Marshal encodes the session as JSON.
func (JSON) Marshal(sess *domain.Session) ([]byte, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON session.
func (JSON) Unmarshal(data []byte) (*domain.Session, error) {
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}
