package widget

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
)

// Transcript is the append-only message log of one widget.
type Transcript struct {
	mu       sync.RWMutex
	messages []chat.Message
	now      func() time.Time
}

// NewTranscript returns an empty transcript stamping messages with now.
// A nil now falls back to time.Now.
func NewTranscript(now func() time.Time) *Transcript {
	if now == nil {
		now = time.Now
	}
	return &Transcript{
		messages: make([]chat.Message, 0, 16),
		now:      now,
	}
}

// Append records body as the next message and returns it.
func (t *Transcript) Append(body string, sender chat.Sender) chat.Message {
	msg := chat.Message{
		ID:        uuid.NewString(),
		Body:      body,
		Sender:    sender,
		CreatedAt: t.now(),
	}

	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()

	return msg
}

// All returns a copy of the messages in append order.
func (t *Transcript) All() []chat.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	copied := make([]chat.Message, len(t.messages))
	copy(copied, t.messages)
	return copied
}

// Len returns the number of messages appended so far.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
