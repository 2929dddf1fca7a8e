// Package pubsub is the typed event channel between the ticket service and
// anything watching it (agent dashboard notification sockets, other server
// processes). Readers subscribe to named topics and receive typed events
// instead of re-parsing a shared blob.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
)

const (
	TopicTicketCreated = "tickets.created"
	TopicTicketUpdated = "tickets.updated"
)

// TicketEvent is published whenever a service request is created or changes
// status. The payload is a snapshot; consumers must not treat it as the
// authoritative ticket state.
type TicketEvent struct {
	RequestID        string `json:"requestId"`
	CustomerID       string `json:"customerId"`
	CustomerName     string `json:"customerName"`
	Status           string `json:"status"`
	Priority         string `json:"priority"`
	EscalationSource string `json:"escalationSource"`
	EscalationReason string `json:"escalationReason,omitempty"`
	Timestamp        int64  `json:"timestamp"`
}

type Broker interface {
	Publish(ctx context.Context, topic string, event TicketEvent) error
	Subscribe(ctx context.Context, topic string) (<-chan TicketEvent, func())
}

type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, event TicketEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("pubsub publish: marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, topic, string(payload)).Err(); err != nil {
		return fmt.Errorf("pubsub publish: redis publish: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (<-chan TicketEvent, func()) {
	subscriber := b.client.Subscribe(ctx, topic)
	events := make(chan TicketEvent, 16)

	go func() {
		defer close(events)
		for msg := range subscriber.Channel() {
			var event TicketEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("pubsub: drop malformed event on %s: %v", topic, err)
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = subscriber.Close()
	}
	return events, cancel
}

// MemoryBroker is an in-process broker used in tests and single-binary runs.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[string][]chan TicketEvent
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string][]chan TicketEvent)}
}

func (b *MemoryBroker) Publish(ctx context.Context, topic string, event TicketEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[topic] {
		select {
		case ch <- event:
		default:
			// Slow subscriber; drop rather than block the publisher.
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (<-chan TicketEvent, func()) {
	ch := make(chan TicketEvent, 16)
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		channels := b.subs[topic]
		for i, c := range channels {
			if c == ch {
				b.subs[topic] = append(channels[:i], channels[i+1:]...)
				close(c)
				break
			}
		}
	}
	return ch, cancel
}
