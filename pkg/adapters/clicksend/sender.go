// Package clicksend delivers replies through the ClickSend REST API.
package clicksend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is the ClickSend v3 send endpoint.
const DefaultURL = "https://rest.clicksend.com/v3/sms/send"

// DefaultTimeout bounds each send request.
const DefaultTimeout = 10 * time.Second

// StatusError is returned when the gateway answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("clicksend: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Config holds the gateway credentials.
type Config struct {
	Username string
	APIKey   string
	URL      string
	// From is the dedicated number replies are sent from.
	From string
}

// Validate reports missing credentials.
func (c Config) Validate() error {
	var errs []error
	if c.Username == "" {
		errs = append(errs, errors.New("clicksend: username is required"))
	}
	if c.APIKey == "" {
		errs = append(errs, errors.New("clicksend: api key is required"))
	}
	return errors.Join(errs...)
}

type message struct {
	Body string `json:"body"`
	To   string `json:"to"`
	From string `json:"from,omitempty"`
}

type payload struct {
	Messages []message `json:"messages"`
}

// Sender implements ports.SMSSender. It makes a single attempt per message.
type Sender struct {
	cfg    Config
	client *http.Client
}

type Option func(*Sender)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(client *http.Client) Option {
	return func(s *Sender) {
		if client != nil {
			s.client = client
		}
	}
}

// New creates a Sender.
func New(cfg Config, opts ...Option) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	s := &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Send posts one SMS. Any transport error or non-2xx status is returned.
func (s *Sender) Send(ctx context.Context, to, body string) error {
	data, err := json.Marshal(payload{Messages: []message{{Body: body, To: to, From: s.cfg.From}}})
	if err != nil {
		return fmt.Errorf("clicksend: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("clicksend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.cfg.Username, s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("clicksend: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
