package domain

import "time"

// Session holds the answers collected from one sender while the intake is in progress.
// Fields are populated progressively and are never cleared once set.
type Session struct {
	State        State     `json:"state"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	HonoreeName  string    `json:"honoree_name,omitempty"`
	Relationship string    `json:"relationship,omitempty"`
	TShirtSize   string    `json:"tshirt_size,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	LastUpdate   time.Time `json:"last_update"`
}

// NewSession creates a session at StateNew carrying the media reference of the first message.
func NewSession(imageURL string) *Session {
	return &Session{
		State:    StateNew,
		ImageURL: imageURL,
	}
}

// Fields are the answers produced by a single transition.
// Empty values mean "not touched".
type Fields struct {
	FirstName    string
	LastName     string
	HonoreeName  string
	Relationship string
	TShirtSize   string
}

// IsZero reports whether no field is set.
func (f Fields) IsZero() bool {
	return f == Fields{}
}

// Apply merges the non-empty updates into the session.
func (s *Session) Apply(f Fields) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&s.FirstName, f.FirstName)
	set(&s.LastName, f.LastName)
	set(&s.HonoreeName, f.HonoreeName)
	set(&s.Relationship, f.Relationship)
	set(&s.TShirtSize, f.TShirtSize)
}

// Expired reports whether the session has been idle longer than timeout.
// A zero timeout never expires.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 || s.LastUpdate.IsZero() {
		return false
	}
	return now.Sub(s.LastUpdate) > timeout
}

// Clone returns a copy that shares no memory with s.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}
