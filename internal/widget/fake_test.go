package widget

import (
	"context"
	"sync"
)

type fakeReply struct {
	text string
	err  error
}

// fakeAssistant replays scripted replies and counts calls. When gate is set
// each Send blocks until a value arrives on it.
type fakeAssistant struct {
	mu      sync.Mutex
	calls   []string
	replies []fakeReply
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeAssistant) Send(ctx context.Context, message string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, message)
	var reply fakeReply
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply.text, reply.err
}

func (f *fakeAssistant) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recorder) count(typ EventType) int {
	n := 0
	for _, t := range r.types() {
		if t == typ {
			n++
		}
	}
	return n
}
