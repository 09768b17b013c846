package widget

import (
	"sync"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
)

// EventType names a render effect produced by the widget.
type EventType string

const (
	EventMessageAppended EventType = "message.appended"
	EventTypingShown     EventType = "typing.show"
	EventTypingHidden    EventType = "typing.hide"
	EventInputLocked     EventType = "input.lock"
	EventInputUnlocked   EventType = "input.unlock"
	EventInputFocused    EventType = "input.focus"
	EventOpened          EventType = "widget.open"
	EventClosed          EventType = "widget.close"
)

// Event is delivered to observers after every state change. Message is set
// only for EventMessageAppended.
type Event struct {
	Type    EventType
	Message *chat.Message
	State   StateSnapshot
}

// Observer receives widget events. Implementations must not call back into
// Submit from OnEvent.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnEvent calls f(ev).
func (f ObserverFunc) OnEvent(ev Event) { f(ev) }

type subscription struct {
	id       int
	observer Observer
}

// observerSet keeps subscribers in registration order.
type observerSet struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

func (o *observerSet) add(observer Observer) func() {
	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscription{id: id, observer: observer})
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { o.remove(id) })
	}
}

func (o *observerSet) remove(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, sub := range o.subs {
		if sub.id == id {
			o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
			return
		}
	}
}

func (o *observerSet) notify(ev Event) {
	o.mu.RLock()
	subs := append([]subscription(nil), o.subs...)
	o.mu.RUnlock()

	for _, sub := range subs {
		sub.observer.OnEvent(ev)
	}
}
