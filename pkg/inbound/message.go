// Package inbound turns raw webhook payloads into conversation messages.
package inbound

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrMissingSender is returned when the payload has no sender identifier.
var ErrMissingSender = errors.New("missing sender identifier")

// Form field names posted by the SMS gateway.
const (
	FieldFrom = "from"
	FieldBody = "body"
)

// Message is one inbound text from a sender.
type Message struct {
	From     string
	Text     string
	MediaURL string // Empty when the body carried no link
}

var mediaPattern = regexp.MustCompile(`(?:http|ftp|https)://[\w_-]+(?:\.[\w_-]+)+[\w.,@?^=%&:/~+#-]*`)

// ExtractMedia splits the first URL out of body.
// Every occurrence of that URL is removed from the text, along with literal "\n" escapes.
func ExtractMedia(body string) (mediaURL, text string) {
	mediaURL = mediaPattern.FindString(body)
	if mediaURL == "" {
		return "", strings.TrimSpace(body)
	}

	text = strings.ReplaceAll(body, mediaURL, "")
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, `\n`, "")
	return mediaURL, strings.TrimSpace(text)
}

// FromForm builds a Message from form-encoded webhook fields.
// The body is sanitized before the media reference is extracted.
func FromForm(form url.Values) (Message, error) {
	from := strings.TrimSpace(form.Get(FieldFrom))
	if from == "" {
		return Message{}, ErrMissingSender
	}

	body, err := Sanitize(strings.TrimSpace(form.Get(FieldBody)))
	if err != nil {
		return Message{}, fmt.Errorf("invalid body: %w", err)
	}

	media, text := ExtractMedia(body)
	return Message{From: from, Text: text, MediaURL: media}, nil
}
