package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"leadform-embed/internal/model"
)

func TestEmitCallsAllListenersInOrder(t *testing.T) {
	r := NewRegistry(nil)
	var got []int
	r.On(model.EventOpen, func(Event) { got = append(got, 1) })
	r.On(model.EventOpen, func(Event) { got = append(got, 2) })
	r.On(model.EventClose, func(Event) { got = append(got, 3) })

	r.Emit(Event{Type: model.EventOpen})
	assert.Equal(t, []int{1, 2}, got)
}

func TestEmitRecoversPanickingListener(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := NewRegistry(zap.New(core))

	var after bool
	r.On(model.EventError, func(Event) { panic("boom") })
	r.On(model.EventError, func(ev Event) { after = ev.Error != nil && ev.Error.Type == model.ErrorTiming })

	assert.NotPanics(t, func() {
		r.Emit(Event{Type: model.EventError, Error: &model.ErrorEvent{Type: model.ErrorTiming}})
	})
	assert.True(t, after)
	assert.Equal(t, 1, logs.FilterMessage("event listener panicked").Len())
}

func TestOffAndClear(t *testing.T) {
	r := NewRegistry(nil)
	calls := 0
	sub := r.On(model.EventSubmit, func(Event) { calls++ })
	r.On(model.EventSubmit, func(Event) { calls += 10 })
	assert.Equal(t, 2, r.count(model.EventSubmit))

	r.Off(sub)
	r.Off(sub)
	r.Emit(Event{Type: model.EventSubmit})
	assert.Equal(t, 10, calls)

	r.Clear()
	r.Emit(Event{Type: model.EventSubmit})
	assert.Equal(t, 10, calls)
	assert.Equal(t, 0, r.count(model.EventSubmit))
}

func TestListenerMayUnsubscribeDuringEmit(t *testing.T) {
	r := NewRegistry(nil)
	var sub Subscription
	calls := 0
	sub = r.On(model.EventClose, func(Event) {
		calls++
		r.Off(sub)
	})
	r.Emit(Event{Type: model.EventClose})
	r.Emit(Event{Type: model.EventClose})
	assert.Equal(t, 1, calls)
}

func TestConcurrentEmit(t *testing.T) {
	r := NewRegistry(nil)
	var mu sync.Mutex
	n := 0
	r.On(model.EventOpen, func(Event) {
		mu.Lock()
		n++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Emit(Event{Type: model.EventOpen})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, n)
}
