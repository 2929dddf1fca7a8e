package websocket

import (
	"log"
	"net/http"
	"time"

	"faq-assist-backend/internal/pubsub"

	"github.com/gorilla/websocket"
)

const notificationPingPeriod = 30 * time.Second

// ServeNotifications streams ticket events to an agent dashboard connection.
// The subscription covers both created and updated tickets and is torn down
// when the peer goes away.
func ServeNotifications(w http.ResponseWriter, r *http.Request, broker pubsub.Broker) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	created, cancelCreated := broker.Subscribe(ctx, pubsub.TopicTicketCreated)
	updated, cancelUpdated := broker.Subscribe(ctx, pubsub.TopicTicketUpdated)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Reads are discarded; the read loop only notices disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		cancelCreated()
		cancelUpdated()
		conn.Close()
	}()

	ticker := time.NewTicker(notificationPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-created:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("notifications: write failed: %v", err)
				return
			}
		case event, ok := <-updated:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("notifications: write failed: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
