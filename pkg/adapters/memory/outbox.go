package memory

import (
	"context"
	"sync"
)

// SMS is a message captured by the Outbox.
type SMS struct {
	To   string
	Body string
}

// Outbox implements ports.SMSSender by recording messages instead of delivering them.
type Outbox struct {
	mu     sync.Mutex
	sent   []SMS
	notify func(SMS)
}

// NewOutbox creates an Outbox. notify, when non-nil, is called for every message.
func NewOutbox(notify func(SMS)) *Outbox {
	return &Outbox{notify: notify}
}

// Send records the message.
func (o *Outbox) Send(ctx context.Context, to, body string) error {
	msg := SMS{To: to, Body: body}

	o.mu.Lock()
	o.sent = append(o.sent, msg)
	o.mu.Unlock()

	if o.notify != nil {
		o.notify(msg)
	}
	return nil
}

// Sent returns a copy of the recorded messages, oldest first.
func (o *Outbox) Sent() []SMS {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]SMS, len(o.sent))
	copy(out, o.sent)
	return out
}

// To returns the bodies sent to one recipient, oldest first.
func (o *Outbox) To(recipient string) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []string
	for _, m := range o.sent {
		if m.To == recipient {
			out = append(out, m.Body)
		}
	}
	return out
}
