package ports

import "context"

// SMSSender delivers an outgoing text message.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// SMSSenderFunc adapts a function to SMSSender.
type SMSSenderFunc func(ctx context.Context, to, body string) error

// Send calls f.
func (f SMSSenderFunc) Send(ctx context.Context, to, body string) error {
	return f(ctx, to, body)
}
