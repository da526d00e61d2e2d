// Package events provides statically typed publish/subscribe topics used to
// wire stream collaborators together.
package events

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// Handler receives one event. A returned error is logged by the Topic and
// does not stop delivery to the remaining handlers.
type Handler[T any] func(T) error

// Topic delivers events of type T to every subscriber, in subscription
// order. Subscribing after events were published does not replay them.
type Topic[T any] struct {
	name   string
	logger *slog.Logger

	mtx      sync.RWMutex
	handlers []Handler[T]
}

func NewTopic[T any](name string, logger *slog.Logger) *Topic[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Topic[T]{
		name:   name,
		logger: logger.With("topic", name),
	}
}

func (t *Topic[T]) Name() string { return t.name }

// Subscribe registers h. Nil handlers are ignored.
func (t *Topic[T]) Subscribe(h Handler[T]) {
	if h == nil {
		return
	}
	t.mtx.Lock()
	t.handlers = append(t.handlers, h)
	t.mtx.Unlock()
}

// Len returns the number of subscribers.
func (t *Topic[T]) Len() int {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return len(t.handlers)
}

// Publish calls every handler with ev and returns the number that failed,
// either by returning an error or by panicking.
func (t *Topic[T]) Publish(ev T) int {
	t.mtx.RLock()
	handlers := t.handlers
	t.mtx.RUnlock()

	var failed int
	for i, h := range handlers {
		if err := t.call(h, ev); err != nil {
			failed++
			t.logger.Error("event handler failed", "handler", i, "err", err)
		}
	}
	return failed
}

func (t *Topic[T]) call(h Handler[T], ev T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return h(ev)
}
