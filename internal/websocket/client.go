package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type WSClient struct {
	Conn    *websocket.Conn
	Message chan *Frame
	ID      string
	LinkID  string
	Role    Role

	done     chan struct{} // Signal for coordinating goroutine shutdown
	once     sync.Once
	mu       sync.Mutex // Mutex for connection access
	isClosed bool       // Flag to track connection state
}

func (cl *WSClient) shutdown() {
	cl.once.Do(func() {
		close(cl.done)
	})
}

func (cl *WSClient) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Ping error for client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *WSClient) writeMessage() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.Conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case frame, ok := <-cl.Message:
			if !ok {
				log.Printf("Client %s frame channel closed", cl.ID)
				return
			}

			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteJSON(frame)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Error sending frame to client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *WSClient) readMessage(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in readMessage: %v", r)
		}

		cl.shutdown()

		hub.Unregister <- cl
		log.Printf("Client %s left link %s", cl.ID, cl.LinkID)
	}()

	cl.Conn.SetReadLimit(512 * 1024)

	for {
		_, raw, err := cl.Conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("Error reading frame from client %s: %v", cl.ID, err)
			break
		}

		var payload inboundPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			// tolerate plain text frames
			payload.Content = string(raw)
		}
		if payload.Content == "" {
			continue
		}

		hub.Inbound <- &inboundText{
			LinkID:  cl.LinkID,
			From:    cl.Role,
			Content: payload.Content,
		}
	}
}
