package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/muesli/termenv"
)

// Renderer prints the chat transcript with colors suited to the terminal.
type Renderer struct {
	w       io.Writer
	profile termenv.Profile
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, profile: termenv.ColorProfile()}
}

// Prompt prints the input marker.
func (r *Renderer) Prompt() {
	fmt.Fprint(r.w, r.profile.String("> ").Foreground(r.profile.Color("#a78bfa")).Bold())
}

// Reply prints an outgoing SMS.
func (r *Renderer) Reply(body string) {
	fmt.Fprintf(r.w, "%s %s\n",
		r.profile.String("bot:").Foreground(r.profile.Color("#34d399")).Bold(),
		body,
	)
}

// Record prints a summary of a completed intake.
func (r *Renderer) Record(rec domain.Record) {
	fields := []string{
		"name=" + strings.TrimSpace(rec.FirstName+" "+rec.LastName),
		"honoree=" + rec.HonoreeName,
		"relationship=" + rec.Relationship,
		"size=" + rec.TShirtSize,
	}
	if rec.ImageURL != "" {
		fields = append(fields, "image="+rec.ImageURL)
	}
	fmt.Fprintf(r.w, "%s %s\n",
		r.profile.String("saved:").Foreground(r.profile.Color("#fbbf24")).Faint(),
		strings.Join(fields, " "),
	)
}
