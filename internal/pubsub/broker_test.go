package pubsub

import (
	"context"
	"testing"
	"time"
)

func TestMemoryBrokerDeliversToTopicSubscribers(t *testing.T) {
	broker := NewMemoryBroker()
	ctx := context.Background()

	created, cancelCreated := broker.Subscribe(ctx, TopicTicketCreated)
	defer cancelCreated()
	updated, cancelUpdated := broker.Subscribe(ctx, TopicTicketUpdated)
	defer cancelUpdated()

	event := TicketEvent{RequestID: "req-1", Status: "new", Priority: "high"}
	if err := broker.Publish(ctx, TopicTicketCreated, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-created:
		if got.RequestID != "req-1" || got.Status != "new" {
			t.Fatalf("unexpected event %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered on created topic")
	}

	select {
	case got := <-updated:
		t.Fatalf("updated subscriber received foreign event %+v", got)
	default:
	}
}

func TestMemoryBrokerCancelStopsDelivery(t *testing.T) {
	broker := NewMemoryBroker()
	ctx := context.Background()

	events, cancel := broker.Subscribe(ctx, TopicTicketUpdated)
	cancel()

	if _, open := <-events; open {
		t.Fatal("channel should be closed after cancel")
	}

	if err := broker.Publish(ctx, TopicTicketUpdated, TicketEvent{RequestID: "req-2"}); err != nil {
		t.Fatalf("publish after cancel: %v", err)
	}
}
