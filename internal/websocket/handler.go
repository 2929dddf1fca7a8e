package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	hub         *Hub
	redisClient *redis.Client

	mu         sync.Mutex
	subscribed map[string]bool
}

// NewHandler wires the hub to its cross-process Redis channel. A nil client
// disables fan-out; the hub still relays locally.
func NewHandler(h *Hub, redisClient *redis.Client) *Handler {
	handler := &Handler{
		hub:         h,
		redisClient: redisClient,
		subscribed:  make(map[string]bool),
	}
	if redisClient != nil {
		h.SetPublisher(handler.publishFrame)
	}
	return handler
}

func linkChannel(linkID string) string {
	return "livechat:" + linkID
}

func (h *Handler) publishFrame(linkID string, frame *Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("link %s: marshal frame for fan-out: %v", linkID, err)
		return
	}
	if err := h.redisClient.Publish(context.Background(), linkChannel(linkID), string(payload)).Err(); err != nil {
		log.Printf("link %s: redis publish failed: %v", linkID, err)
	}
}

func (h *Handler) subscribeToLinkChannel(linkID string) {
	subscriber := h.redisClient.Subscribe(context.Background(), linkChannel(linkID))
	defer subscriber.Close()

	for msg := range subscriber.Channel() {
		var frame Frame
		if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
			log.Printf("link %s: drop malformed remote frame: %v", linkID, err)
			continue
		}
		h.hub.InjectRemote(linkID, &frame)
	}
}

// OpenLink makes sure the link exists and its cross-process subscription is
// running. Safe to call for every join; only the first call does anything.
func (h *Handler) OpenLink(linkID string, customerLanguage string) {
	h.hub.Open <- &OpenLinkReq{LinkID: linkID, CustomerLanguage: customerLanguage}

	if h.redisClient == nil {
		return
	}
	h.mu.Lock()
	already := h.subscribed[linkID]
	h.subscribed[linkID] = true
	h.mu.Unlock()
	if !already {
		go h.subscribeToLinkChannel(linkID)
	}
}

// JoinLink upgrades the request and attaches the client to its link.
func (h *Handler) JoinLink(w http.ResponseWriter, r *http.Request, linkID string, userID string, role Role) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cl := &WSClient{
		Conn:    conn,
		Message: make(chan *Frame, 10),
		ID:      userID,
		LinkID:  linkID,
		Role:    role,
		done:    make(chan struct{}),
	}

	h.hub.Register <- cl

	go cl.keepAlive()
	go cl.writeMessage()
	go cl.readMessage(h.hub)
}

// GetLinks lists the live-chat links known to this process.
func (h *Handler) GetLinks(w http.ResponseWriter, r *http.Request) {
	links := make([]LinkRes, 0)

	for _, link := range h.hub.links() {
		link.mu.Lock()
		links = append(links, LinkRes{
			ID:               link.ID,
			State:            string(link.State),
			CustomerLanguage: link.CustomerLanguage,
		})
		link.mu.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(links)
}
