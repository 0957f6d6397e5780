package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/intake/internal/presentation/tui"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/conversation"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/inbound"
	"github.com/aretw0/intake/pkg/session"
)

// ChatOptions configures a local conversation.
type ChatOptions struct {
	// Phone is the simulated sender.
	Phone   string
	Catalog domain.Catalog
	Logger  *slog.Logger
	// Interactive enables the banner and the input prompt.
	Interactive bool
}

// Chat plays the intake dialog on a terminal. Each input line is one inbound SMS;
// replies are printed as they would be sent. Sessions and records stay in memory.
func Chat(ctx context.Context, in io.Reader, out io.Writer, opts ChatOptions) error {
	if opts.Phone == "" {
		opts.Phone = "+15550000000"
	}
	if opts.Catalog == nil {
		opts.Catalog = domain.DefaultCatalog()
	}

	r := tui.NewRenderer(out)
	outbox := memory.NewOutbox(func(sms memory.SMS) {
		r.Reply(sms.Body)
	})
	sink := memory.NewSink(memory.OnAppend(func(rec domain.Record) {
		r.Record(rec)
	}))

	sessionOpts := []session.Option{}
	dispatcherOpts := []conversation.Option{conversation.WithCatalog(opts.Catalog)}
	if opts.Logger != nil {
		sessionOpts = append(sessionOpts, session.WithLogger(opts.Logger))
		dispatcherOpts = append(dispatcherOpts, conversation.WithLogger(opts.Logger))
	}
	dispatcher := conversation.NewDispatcher(
		session.NewManager(memory.NewStore(), sessionOpts...),
		outbox, sink, dispatcherOpts...,
	)

	if opts.Interactive {
		tui.PrintBanner(out)
		printSystemMessage(out, "Chatting as %s. Each line is one SMS; Ctrl+D to quit.", opts.Phone)
	}

	reader := bufio.NewReader(NewInterruptibleReader(in, ctx.Done()))
	for {
		if opts.Interactive {
			r.Prompt()
		}

		line, err := reader.ReadString('\n')
		if line != "" {
			media, text := inbound.ExtractMedia(strings.TrimRight(line, "\r\n"))
			msg := inbound.Message{From: opts.Phone, Text: text, MediaURL: media}
			if perr := dispatcher.Process(ctx, msg); perr != nil {
				printSystemMessage(out, "step failed: %v", perr)
			}
		}
		if err != nil {
			if isInterrupted(err) {
				if opts.Interactive {
					fmt.Fprintln(out)
				}
				return nil
			}
			return err
		}
	}
}
