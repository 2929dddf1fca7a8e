package endpoints

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"faq-assist-backend/internal/api"
	"faq-assist-backend/internal/pubsub"
	"faq-assist-backend/internal/queue"
	"faq-assist-backend/internal/websocket"
)

func TestNotificationsWebsocketBypassesWorkerPool(t *testing.T) {
	queueManager := queue.NewRequestQueueManager(1, 1)
	release := make(chan struct{})
	t.Cleanup(func() {
		close(release)
		queueManager.Shutdown()
	})
	// pin the only worker and fill the buffer so the pool is saturated
	queueManager.EnqueueJob(queue.Job{Fn: func() error { <-release; return nil }})
	queueManager.EnqueueJob(queue.Job{Fn: func() error { return nil }})

	server := api.NewAPIServer(":0", queueManager, nil, nil, nil, nil)
	handlers := NewLiveChatEndpoints(nil, nil, nil, pubsub.NewMemoryBroker(), "/api/ws/v1")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ws/v1/ws/notifications", server.MakeWebsocketHandleFunc(handlers.NotificationsWebsocket))

	done := make(chan int, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/api/ws/v1/ws/notifications", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		done <- rec.Code
	}()

	select {
	case code := <-done:
		if code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", code, http.StatusUnauthorized)
		}
	case <-time.After(time.Second):
		t.Fatal("websocket route waited on the saturated worker pool")
	}
}

func TestChatWebsocketRequiresToken(t *testing.T) {
	queueManager := queue.NewRequestQueueManager(10, 1)
	t.Cleanup(queueManager.Shutdown)

	server := api.NewAPIServer(":0", queueManager, nil, nil, nil, nil)
	wsHandler := websocket.NewHandler(websocket.NewHub(nil, nil), nil)
	handlers := NewLiveChatEndpoints(wsHandler, nil, nil, nil, "/api/ws/v1")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ws/v1/ws/chat/", server.MakeWebsocketHandleFunc(handlers.ChatWebsocket))

	req := httptest.NewRequest(http.MethodGet, "/api/ws/v1/ws/chat/req-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
