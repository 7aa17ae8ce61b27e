// Package events is a small typed publish/subscribe hub used to pass
// notifications and socket messages between the realtime channels and
// the rest of the client.
package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Wildcard subscribers receive every published event.
const Wildcard = "*"

// Handler receives the payload of a published event.
type Handler[T any] func(T)

type subscriber[T any] struct {
	id uint64
	fn Handler[T]
}

// Bus routes published values to the handlers subscribed to their topic.
// The zero value is not usable; create one with NewBus.
type Bus[T any] struct {
	mu     sync.Mutex
	nextID uint64
	topics map[string][]subscriber[T]
}

// NewBus creates an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{topics: make(map[string][]subscriber[T])}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe removes the handler. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Subscribe registers fn for topic. Use Wildcard to receive every event.
func (b *Bus[T]) Subscribe(topic string, fn Handler[T]) *Subscription {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscriber[T]{id: id, fn: fn})
	b.mu.Unlock()

	return &Subscription{cancel: func() { b.remove(topic, id) }}
}

func (b *Bus[T]) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i, s := range subs {
		if s.id == id {
			next := make([]subscriber[T], 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.topics, topic)
			} else {
				b.topics[topic] = next
			}
			return
		}
	}
}

// Publish delivers v to the subscribers of topic and then to the
// wildcard subscribers, synchronously and in subscription order. A
// panicking handler is logged and does not stop the others.
func (b *Bus[T]) Publish(topic string, v T) {
	b.mu.Lock()
	targets := make([]subscriber[T], 0, len(b.topics[topic])+len(b.topics[Wildcard]))
	targets = append(targets, b.topics[topic]...)
	if topic != Wildcard {
		targets = append(targets, b.topics[Wildcard]...)
	}
	b.mu.Unlock()

	for _, s := range targets {
		invoke(topic, s.fn, v)
	}
}

// Len returns the number of handlers subscribed to topic.
func (b *Bus[T]) Len(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

func invoke[T any](topic string, fn Handler[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("topic", topic).Errorf("events: handler panicked: %v", r)
		}
	}()
	fn(v)
}
