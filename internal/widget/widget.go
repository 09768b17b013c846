// Package widget holds the interaction state machine of the chat widget:
// the transcript, the UI state and the request cycle that ties them to the
// assistant endpoint. Rendering happens elsewhere, through Subscribe.
package widget

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
)

// DefaultWelcomeMessage seeds every transcript on Initialize.
const DefaultWelcomeMessage = "Hello! 👋 I'm your Medilink assistant. I can help you with appointments, finding doctors, and answering questions about our hospital. How can I help you today?"

// Widget is one mounted chat widget. Instances share nothing.
type Widget struct {
	transcript *Transcript
	state      *UIState
	cycle      *RequestCycle
	observers  observerSet

	welcome  string
	initOnce sync.Once
	logger   zerolog.Logger
}

type options struct {
	welcome string
	logger  zerolog.Logger
	now     func() time.Time
}

// Option customises a Widget.
type Option func(*options)

// WithWelcomeMessage overrides the message seeded by Initialize.
func WithWelcomeMessage(body string) Option {
	return func(o *options) { o.welcome = body }
}

// WithLogger sets the widget logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the time source used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a widget that talks to asst.
func New(asst Assistant, opts ...Option) *Widget {
	o := options{
		welcome: DefaultWelcomeMessage,
		logger:  log.With().Str("component", "widget").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	w := &Widget{
		transcript: NewTranscript(o.now),
		state:      NewUIState(),
		welcome:    o.welcome,
		logger:     o.logger,
	}
	w.cycle = NewRequestCycle(w.transcript, w.state, asst, w.emit, o.logger)
	return w
}

// Initialize seeds the welcome message. Later calls are no-ops.
func (w *Widget) Initialize() {
	w.initOnce.Do(func() {
		if w.welcome == "" {
			return
		}
		msg := w.transcript.Append(w.welcome, chat.SenderAssistant)
		w.emit(EventMessageAppended, &msg)
	})
}

// Open shows the widget and focuses the input.
func (w *Widget) Open() {
	if w.state.Open() {
		w.emit(EventOpened, nil)
	}
	w.emit(EventInputFocused, nil)
}

// Close hides the widget.
func (w *Widget) Close() {
	if w.state.Close() {
		w.emit(EventClosed, nil)
	}
}

// Toggle flips visibility, as the floating button and close control do.
func (w *Widget) Toggle() {
	if w.state.Toggle() {
		w.emit(EventOpened, nil)
		w.emit(EventInputFocused, nil)
		return
	}
	w.emit(EventClosed, nil)
}

// Submit runs one turn for raw. Only ErrEmptyInput and ErrBusy are ever
// returned; assistant failures end up in the transcript instead.
func (w *Widget) Submit(ctx context.Context, raw string) error {
	err := w.cycle.Run(ctx, raw)
	if errors.Is(err, ErrBusy) {
		w.logger.Debug().Msg("submission ignored while awaiting a response")
	}
	return err
}

// Transcript returns a snapshot of the messages.
func (w *Widget) Transcript() []chat.Message {
	return w.transcript.All()
}

// State returns a snapshot of the UI state.
func (w *Widget) State() StateSnapshot {
	return w.state.Snapshot()
}

// Subscribe registers o for every subsequent event and returns a function
// that removes it.
func (w *Widget) Subscribe(o Observer) func() {
	return w.observers.add(o)
}

func (w *Widget) emit(typ EventType, msg *chat.Message) {
	w.observers.notify(Event{
		Type:    typ,
		Message: msg,
		State:   w.state.Snapshot(),
	})
}
