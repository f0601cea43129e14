// Package events is the widget's listener registry.
package events

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"leadform-embed/internal/model"
)

// Event is delivered to listeners. Submit is set for submit events and Error
// for error events.
type Event struct {
	Type   model.EventType
	Submit *model.SubmitEvent
	Error  *model.ErrorEvent
}

// Listener receives widget events.
type Listener func(Event)

// Subscription identifies a registered listener.
type Subscription struct {
	event model.EventType
	id    uint64
}

type entry struct {
	id uint64
	fn Listener
}

// Registry maps event types to listeners. It is safe for concurrent use.
type Registry struct {
	log       *zap.Logger
	mu        sync.RWMutex
	next      uint64
	listeners map[model.EventType][]entry
}

// NewRegistry returns an empty registry that logs listener panics to log.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{log: log, listeners: make(map[model.EventType][]entry)}
}

// On registers fn for event and returns a handle for Off.
func (r *Registry) On(event model.EventType, fn Listener) Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.listeners[event] = append(r.listeners[event], entry{id: r.next, fn: fn})
	return Subscription{event: event, id: r.next}
}

// Off removes a listener. Unknown subscriptions are ignored.
func (r *Registry) Off(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.listeners[sub.event]
	for i, e := range list {
		if e.id == sub.id {
			r.listeners[sub.event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// count returns the number of listeners registered for event.
func (r *Registry) count(event model.EventType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners[event])
}

// Clear drops every listener.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = make(map[model.EventType][]entry)
}

// Emit calls every listener for ev.Type in registration order. A listener
// that panics is logged and skipped.
func (r *Registry) Emit(ev Event) {
	r.mu.RLock()
	list := append([]entry(nil), r.listeners[ev.Type]...)
	r.mu.RUnlock()

	for _, e := range list {
		r.call(ev, e.fn)
	}
}

func (r *Registry) call(ev Event, fn Listener) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("event listener panicked",
				zap.String("event", string(ev.Type)),
				zap.String("panic", fmt.Sprint(rec)))
		}
	}()
	fn(ev)
}
