package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Payload carries the event data as free-form key/value pairs.
type Payload map[string]any

// Record is one entry in the bus history, immutable once appended.
type Record struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Payload    Payload   `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Handler consumes a published payload. Errors are logged per handler and
// never stop dispatch to the remaining handlers.
type Handler func(ctx context.Context, p Payload) error

type subscription struct {
	id      uint64
	kind    Kind
	handler Handler
	async   bool
}

// Bus is an in-process publish/subscribe registry with an append-only
// history. One Bus per running game; the embedding application creates it
// once and injects it into every producer and consumer.
type Bus struct {
	mu      sync.Mutex
	nextID  uint64
	subs    map[Kind][]*subscription
	history []Record
	logger  *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[Kind][]*subscription),
		logger: logger,
	}
}

// Subscribe registers a synchronous handler for kind. Handlers for the same
// kind run in subscription order. The returned function removes exactly this
// registration and is safe to call more than once.
func (b *Bus) Subscribe(kind Kind, h Handler) func() {
	return b.add(kind, h, false)
}

// SubscribeAsync registers a handler that runs on its own goroutine per
// delivery. Publish does not wait for it; failures are logged through the
// same per-handler isolation as synchronous handlers.
func (b *Bus) SubscribeAsync(kind Kind, h Handler) func() {
	return b.add(kind, h, true)
}

func (b *Bus) add(kind Kind, h Handler, async bool) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, kind: kind, handler: h, async: async}
	b.subs[kind] = append(b.subs[kind], sub)

	id := sub.id
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[kind]
		for i, s := range list {
			if s.id == id {
				b.subs[kind] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish appends a record to the history, then delivers the payload to every
// handler currently registered for kind. Synchronous handlers run inline, in
// subscription order; asynchronous handlers are dispatched fire-and-forget.
// Handlers are invoked outside the bus lock, so a handler may publish again
// without deadlocking.
func (b *Bus) Publish(ctx context.Context, kind Kind, p Payload) {
	if p == nil {
		p = Payload{}
	}

	b.mu.Lock()
	b.history = append(b.history, Record{
		ID:         uuid.New(),
		Kind:       kind,
		Payload:    p,
		OccurredAt: time.Now(),
	})
	targets := make([]*subscription, len(b.subs[kind]))
	copy(targets, b.subs[kind])
	b.mu.Unlock()

	for _, sub := range targets {
		if sub.async {
			// Detach cancellation: the publisher (often an HTTP request)
			// may finish before the handler runs.
			go b.dispatch(context.WithoutCancel(ctx), sub, kind, p)
			continue
		}
		b.dispatch(ctx, sub, kind, p)
	}
}

func (b *Bus) dispatch(ctx context.Context, sub *subscription, kind Kind, p Payload) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("event handler panic", "kind", kind, "panic", rec)
		}
	}()
	if err := sub.handler(ctx, p); err != nil {
		b.logger.Error("event handler failed", "kind", kind, "error", err)
	}
}

// History returns a copy of the event log in publication order.
func (b *Bus) History() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Record, len(b.history))
	copy(out, b.history)
	return out
}

// ClearHistory empties the log. Subscriptions are unaffected.
func (b *Bus) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = nil
}
