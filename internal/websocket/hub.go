package websocket

import (
	"context"
	"log"
	"sync"
	"time"

	"faq-assist-backend/internal/i18n"
	"faq-assist-backend/internal/model"
	"faq-assist-backend/internal/translate"

	"github.com/google/uuid"
)

// TranscriptAppender mirrors relayed frames into the service request
// transcript. Satisfied by *ticket.Service.
type TranscriptAppender interface {
	AppendChatMessage(ctx context.Context, requestID string, msg model.ChatMessage) error
}

type Hub struct {
	linksMu    sync.RWMutex
	Links      map[string]*Link
	Open       chan *OpenLinkReq
	Register   chan *WSClient
	Unregister chan *WSClient
	Inbound    chan *inboundText
	Remote     chan *remoteFrame

	translator  translate.Translator
	transcripts TranscriptAppender
	publish     func(linkID string, frame *Frame)
	origin      string
}

func NewHub(translator translate.Translator, transcripts TranscriptAppender) *Hub {
	return &Hub{
		Links:       make(map[string]*Link),
		Open:        make(chan *OpenLinkReq),
		Register:    make(chan *WSClient),
		Unregister:  make(chan *WSClient),
		Inbound:     make(chan *inboundText, 64),
		Remote:      make(chan *remoteFrame, 64),
		translator:  translator,
		transcripts: transcripts,
		origin:      uuid.New().String(),
	}
}

// SetPublisher wires the cross-process fan-out. Frames relayed locally are
// handed to fn after delivery; frames arriving from other processes come in
// through InjectRemote.
func (h *Hub) SetPublisher(fn func(linkID string, frame *Frame)) {
	h.publish = fn
}

func (h *Hub) Run() {
	for {
		select {
		case req := <-h.Open:
			h.openLink(req)

		case client := <-h.Register:
			link, ok := h.link(client.LinkID)
			if !ok {
				log.Printf("register: link %s not found", client.LinkID)
				client.shutdown()
				continue
			}
			link.mu.Lock()
			if existing, ok := link.Clients[client.Role]; ok {
				// one client per role; the newcomer replaces the old one
				existing.shutdown()
			}
			link.Clients[client.Role] = client
			link.mu.Unlock()
			incConnections()

		case client := <-h.Unregister:
			link, ok := h.link(client.LinkID)
			if !ok {
				continue
			}
			link.mu.Lock()
			if current, ok := link.Clients[client.Role]; ok && current == client {
				delete(link.Clients, client.Role)
				close(client.Message)
				decConnections()
				if client.Role == RoleAgent && link.State == StateConnected {
					h.closeLinkLocked(link)
				}
			}
			closed := link.closed
			link.mu.Unlock()
			// A closed link must not shadow the id: the next join opens a
			// fresh one.
			if closed {
				h.dropLink(client.LinkID)
			}

		case in := <-h.Inbound:
			link, ok := h.link(in.LinkID)
			if !ok {
				continue
			}
			link.mu.Lock()
			closed := link.closed
			link.mu.Unlock()
			if closed {
				continue
			}
			select {
			case link.queue <- in:
			default:
				log.Printf("link %s: relay queue full, dropping frame", in.LinkID)
			}

		case rf := <-h.Remote:
			h.deliverRemote(rf)
		}
	}
}

func (h *Hub) link(id string) (*Link, bool) {
	h.linksMu.RLock()
	defer h.linksMu.RUnlock()
	link, ok := h.Links[id]
	return link, ok
}

// links snapshots the live link set for dashboard listings.
func (h *Hub) links() []*Link {
	h.linksMu.RLock()
	defer h.linksMu.RUnlock()
	out := make([]*Link, 0, len(h.Links))
	for _, link := range h.Links {
		out = append(out, link)
	}
	return out
}

func (h *Hub) openLink(req *OpenLinkReq) {
	if existing, exists := h.link(req.LinkID); exists {
		existing.mu.Lock()
		closed := existing.closed
		existing.mu.Unlock()
		if !closed {
			return
		}
		h.dropLink(req.LinkID)
	}
	link := &Link{
		ID:               req.LinkID,
		CustomerLanguage: req.CustomerLanguage,
		State:            StateConnecting,
		Clients:          make(map[Role]*WSClient),
		queue:            make(chan *inboundText, 32),
	}
	h.linksMu.Lock()
	h.Links[req.LinkID] = link
	setLinks(len(h.Links))
	h.linksMu.Unlock()
	go h.relay(link)
}

// dropLink forgets a closed link. Any client still attached has its frame
// channel closed, which drains pending frames and then closes the socket, so
// a reconnect lands on a fresh link. Run goroutine only.
func (h *Hub) dropLink(linkID string) {
	link, ok := h.link(linkID)
	if !ok {
		return
	}
	link.mu.Lock()
	for role, client := range link.Clients {
		delete(link.Clients, role)
		close(client.Message)
		decConnections()
	}
	link.mu.Unlock()
	h.linksMu.Lock()
	delete(h.Links, linkID)
	setLinks(len(h.Links))
	h.linksMu.Unlock()
}

// closeLinkLocked ends the link after the agent leaves: the customer gets a
// localized closing notice and the relay goroutine is released. Caller holds
// link.mu.
func (h *Hub) closeLinkLocked(link *Link) {
	if link.closed {
		return
	}
	link.State = StateDisconnected
	link.closed = true
	close(link.queue)

	if customer, ok := link.Clients[RoleCustomer]; ok {
		link.seq++
		h.deliver(customer, &Frame{
			ID:        uuid.New().String(),
			LinkID:    link.ID,
			Content:   i18n.Lookup(link.CustomerLanguage, i18n.KeyClosing),
			Sender:    string(RoleAgent),
			System:    true,
			Seq:       link.seq,
			Timestamp: time.Now().UnixMilli(),
		})
	}
}

func (h *Hub) deliver(client *WSClient, frame *Frame) {
	select {
	case client.Message <- frame:
		incDelivered()
	default:
		client.shutdown()
	}
}
