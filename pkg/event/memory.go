package event

import (
	"context"
	"slices"
	"sync"
)

// MemoryBus is an in-process Publisher with fan-out to subscribers.
// A subscriber whose buffer is full is dropped instead of blocking publishers.
// All methods are safe for concurrent use.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[*memorySub]struct{}
	history     []Event
	keep        bool
	bufferSize  int
	closed      bool
}

type memorySub struct {
	ch     chan Event
	once   sync.Once
	filter func(Event) bool
}

func (s *memorySub) close() { s.once.Do(func() { close(s.ch) }) }

func (s *memorySub) send(e Event) bool {
	select {
	case s.ch <- e:
		return true
	default:
		return false
	}
}

// MemoryBusOption configures a MemoryBus.
type MemoryBusOption func(*MemoryBus)

// WithHistory keeps every published event for inspection via Events.
func WithHistory() MemoryBusOption {
	return func(b *MemoryBus) { b.keep = true }
}

// WithBufferSize sets the per-subscriber buffer. Minimum 1.
func WithBufferSize(n int) MemoryBusOption {
	return func(b *MemoryBus) { b.bufferSize = max(n, 1) }
}

// NewMemoryBus creates an empty bus.
func NewMemoryBus(opts ...MemoryBusOption) *MemoryBus {
	b := &MemoryBus{
		subscribers: make(map[*memorySub]struct{}),
		bufferSize:  64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe returns a channel receiving published events that match the given
// types (all events when none are given). The channel is closed when ctx is done,
// when the subscriber falls behind, or when the bus is closed.
func (b *MemoryBus) Subscribe(ctx context.Context, types ...string) <-chan Event {
	sub := &memorySub{ch: make(chan Event, b.bufferSize)}
	if len(types) > 0 {
		sub.filter = func(e Event) bool { return slices.Contains(types, e.Type) }
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.close()
		return sub.ch
	}
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			b.unsubscribe(sub)
		}()
	}
	return sub.ch
}

// Publish delivers events to every subscriber in order.
func (b *MemoryBus) Publish(_ context.Context, events ...Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	if b.keep {
		b.history = append(b.history, events...)
	}

	for sub := range b.subscribers {
		for _, e := range events {
			if sub.filter != nil && !sub.filter(e) {
				continue
			}
			if !sub.send(e) {
				delete(b.subscribers, sub)
				sub.close()
				break
			}
		}
	}
	return nil
}

// Events returns a copy of the published history. Empty unless WithHistory is set.
func (b *MemoryBus) Events() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.history)
}

// Close closes every subscriber. It is safe to call more than once.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subscribers {
		sub.close()
	}
	clear(b.subscribers)
	return nil
}

func (b *MemoryBus) unsubscribe(sub *memorySub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, sub)
	sub.close()
}
