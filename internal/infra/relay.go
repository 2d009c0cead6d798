package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bananagame/platform/internal/event"
)

// EventRelay taps every bus kind and forwards the records to Kafka, one
// topic per kind, so other systems can consume the game stream. Delivery is
// best effort: a Kafka failure is logged and the in-process dispatch is
// unaffected.
type EventRelay struct {
	bus         *event.Bus
	producer    *KafkaProducer
	logger      *slog.Logger
	topicPrefix string
	unsubs      []func()
}

// NewEventRelay creates a relay for the given bus and producer.
func NewEventRelay(bus *event.Bus, producer *KafkaProducer, topicPrefix string, logger *slog.Logger) *EventRelay {
	return &EventRelay{
		bus:         bus,
		producer:    producer,
		logger:      logger,
		topicPrefix: topicPrefix,
	}
}

// Start subscribes the relay to all event kinds. Forwarding runs off the
// publisher's goroutine; the game never waits on Kafka.
func (r *EventRelay) Start() {
	for _, kind := range event.Kinds() {
		kind := kind
		unsub := r.bus.SubscribeAsync(kind, func(ctx context.Context, p event.Payload) error {
			return r.forward(ctx, kind, p)
		})
		r.unsubs = append(r.unsubs, unsub)
	}
	r.logger.Info("event relay started", "topic_prefix", r.topicPrefix)
}

// Stop removes the relay's subscriptions.
func (r *EventRelay) Stop() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}

func (r *EventRelay) forward(ctx context.Context, kind event.Kind, p event.Payload) error {
	topic := r.topicPrefix + "." + strings.ReplaceAll(string(kind), ".", "_")

	value, err := json.Marshal(map[string]any{
		"kind":    kind,
		"payload": p,
	})
	if err != nil {
		return err
	}

	var key []byte
	if userID, ok := p["userId"].(int64); ok && userID != 0 {
		key = []byte(strconv.FormatInt(userID, 10))
	}

	return r.producer.Publish(ctx, topic, key, value)
}
