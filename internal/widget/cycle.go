package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mahtabthestranger/Mdilink/internal/client/assistant"
	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
)

const (
	// GenericApology replaces any reply the assistant could not produce.
	GenericApology = "Sorry, I encountered an error. Please try again."
	// ConnectivityApology replaces replies lost to transport failures.
	ConnectivityApology = "Sorry, I'm having trouble connecting. Please try again later."
)

var (
	// ErrEmptyInput is returned for blank submissions; nothing changes.
	ErrEmptyInput = errors.New("widget: empty input")
	// ErrBusy is returned when a submission arrives while a reply is pending.
	ErrBusy = errors.New("widget: request already in flight")
)

// Assistant is the remote endpoint a request cycle talks to.
type Assistant interface {
	Send(ctx context.Context, message string) (string, error)
}

// RequestCycle runs one user turn against the assistant.
type RequestCycle struct {
	transcript *Transcript
	state      *UIState
	assistant  Assistant
	emit       func(EventType, *chat.Message)
	logger     zerolog.Logger
}

// NewRequestCycle wires a cycle to its collaborators. emit may be nil.
func NewRequestCycle(transcript *Transcript, state *UIState, asst Assistant, emit func(EventType, *chat.Message), logger zerolog.Logger) *RequestCycle {
	if emit == nil {
		emit = func(EventType, *chat.Message) {}
	}
	return &RequestCycle{
		transcript: transcript,
		state:      state,
		assistant:  asst,
		emit:       emit,
		logger:     logger,
	}
}

// Run validates raw, commits it as a user message and resolves the reply.
// It returns ErrEmptyInput or ErrBusy when nothing was changed; once the user
// message is committed it always returns nil and leaves the UI idle.
func (c *RequestCycle) Run(ctx context.Context, raw string) error {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ErrEmptyInput
	}

	if err := c.state.BeginWaiting(); err != nil {
		return ErrBusy
	}

	userMsg := c.transcript.Append(text, chat.SenderUser)
	c.emit(EventMessageAppended, &userMsg)

	c.state.SetTyping(true)
	c.emit(EventTypingShown, nil)
	c.state.SetInputLocked(true)
	c.emit(EventInputLocked, nil)

	var (
		reply string
		err   error
	)
	defer func() {
		c.resolve(userMsg, reply, err)
	}()

	reply, err = c.dispatch(ctx, text)
	return nil
}

// dispatch is the single suspension point of a turn.
func (c *RequestCycle) dispatch(ctx context.Context, text string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &assistant.TransportError{Op: "post", Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return c.assistant.Send(ctx, text)
}

func (c *RequestCycle) resolve(userMsg chat.Message, reply string, err error) {
	c.state.SetTyping(false)
	c.emit(EventTypingHidden, nil)

	body := c.replyBody(userMsg, reply, err)
	botMsg := c.transcript.Append(body, chat.SenderAssistant)
	c.emit(EventMessageAppended, &botMsg)

	c.state.EndWaiting()
	c.state.SetInputLocked(false)
	c.emit(EventInputUnlocked, nil)
	c.emit(EventInputFocused, nil)
}

func (c *RequestCycle) replyBody(userMsg chat.Message, reply string, err error) string {
	switch {
	case err == nil && reply != "":
		return reply
	case err == nil:
		c.logger.Warn().Str("message_id", userMsg.ID).Msg("assistant returned an empty reply")
		return GenericApology
	case assistant.IsApplication(err):
		c.logger.Warn().Err(err).Str("message_id", userMsg.ID).Msg("assistant reported an error")
		return GenericApology
	default:
		c.logger.Error().Err(err).Str("message_id", userMsg.ID).Msg("assistant unreachable")
		return ConnectivityApology
	}
}
