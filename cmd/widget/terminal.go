package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
	"github.com/mahtabthestranger/Mdilink/internal/widget"
)

// terminalRenderer prints widget events as plain lines.
type terminalRenderer struct {
	out io.Writer
}

func (r terminalRenderer) OnEvent(ev widget.Event) {
	switch ev.Type {
	case widget.EventMessageAppended:
		if ev.Message == nil {
			return
		}
		label := "you"
		if ev.Message.Sender == chat.SenderAssistant {
			label = "assistant"
		}
		fmt.Fprintf(r.out, "[%s %s] %s\n", ev.Message.CreatedAt.Format("15:04"), label, ev.Message.Body)
	case widget.EventTypingShown:
		fmt.Fprintln(r.out, "… assistant is typing")
	case widget.EventOpened:
		fmt.Fprintln(r.out, "-- chat opened --")
	case widget.EventClosed:
		fmt.Fprintln(r.out, "-- chat closed --")
	}
}

// runTerminal reads lines from in until EOF, /quit or ctx is done.
func runTerminal(ctx context.Context, w *widget.Widget, in io.Reader, out io.Writer) error {
	unsubscribe := w.Subscribe(terminalRenderer{out: out})
	defer unsubscribe()

	w.Initialize()
	w.Open()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case "/quit":
			return nil
		case "/open":
			w.Open()
		case "/close":
			w.Close()
		case "/toggle":
			w.Toggle()
		default:
			if !w.State().Open {
				fmt.Fprintln(out, "chat is closed, type /open first")
				continue
			}
			// Blank lines come back as ErrEmptyInput and are ignored.
			_ = w.Submit(ctx, line)
		}
	}
	return scanner.Err()
}
