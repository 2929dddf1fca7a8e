package websocket

import (
	"context"
	"log"
	"time"

	"faq-assist-backend/internal/i18n"
	"faq-assist-backend/internal/model"

	"github.com/google/uuid"
)

const translateTimeout = 10 * time.Second

// relay is the single consumer of a link's frame queue. One goroutine per
// link means at most one translation in flight, so frames reach the
// counterpart in the order they were sent regardless of how long individual
// translations take.
func (h *Hub) relay(link *Link) {
	for in := range link.queue {
		h.relayOne(link, in)
	}
}

func (h *Hub) relayOne(link *Link, in *inboundText) {
	target := RoleAgent
	sourceLang := link.CustomerLanguage
	targetLang := "en"
	if in.From == RoleAgent {
		target = RoleCustomer
		sourceLang = "en"
		targetLang = link.CustomerLanguage
	}

	content := in.Content
	if h.translator != nil && sourceLang != targetLang {
		ctx, cancel := context.WithTimeout(context.Background(), translateTimeout)
		translated, err := h.translator.Translate(ctx, in.Content, sourceLang, targetLang, link.ID)
		cancel()
		if err != nil {
			// fail open: the original text is better than no text
			log.Printf("link %s: translation failed, relaying original: %v", link.ID, err)
			incTranslationFailures()
		} else {
			content = translated
		}
	}

	link.mu.Lock()
	if link.closed {
		link.mu.Unlock()
		return
	}

	// the first agent frame is the moment the customer is really connected
	if in.From == RoleAgent && link.State == StateConnecting {
		link.State = StateConnected
		if customer, ok := link.Clients[RoleCustomer]; ok {
			link.seq++
			h.deliver(customer, &Frame{
				ID:        uuid.New().String(),
				LinkID:    link.ID,
				Content:   i18n.Lookup(link.CustomerLanguage, i18n.KeyConnected),
				Sender:    string(RoleAgent),
				System:    true,
				Seq:       link.seq,
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}

	link.seq++
	frame := &Frame{
		ID:        uuid.New().String(),
		LinkID:    link.ID,
		Content:   content,
		Sender:    string(in.From),
		Seq:       link.seq,
		Timestamp: time.Now().UnixMilli(),
		Origin:    h.origin,
	}
	if client, ok := link.Clients[target]; ok {
		h.deliver(client, frame)
	}
	link.mu.Unlock()

	h.appendTranscript(link.ID, in)

	if h.publish != nil {
		h.publish(link.ID, frame)
	}
}

// InjectRemote feeds a frame relayed by another process into the local hub.
// The frame was already translated and sequenced there; it only needs
// delivery to whichever counterpart is connected here.
func (h *Hub) InjectRemote(linkID string, frame *Frame) {
	if frame.Origin == h.origin {
		return
	}
	h.Remote <- &remoteFrame{LinkID: linkID, Frame: frame}
}

func (h *Hub) deliverRemote(rf *remoteFrame) {
	link, ok := h.link(rf.LinkID)
	if !ok {
		return
	}
	target := RoleAgent
	if rf.Frame.Sender == string(RoleAgent) {
		target = RoleCustomer
	}
	link.mu.Lock()
	if client, ok := link.Clients[target]; ok {
		h.deliver(client, rf.Frame)
	}
	link.mu.Unlock()
}

func (h *Hub) appendTranscript(linkID string, in *inboundText) {
	if h.transcripts == nil {
		return
	}
	author := model.AuthorAgent
	if in.From == RoleCustomer {
		author = model.AuthorCustomer
	}
	msg := model.ChatMessage{
		ID:        uuid.New().String(),
		Content:   in.Content,
		Author:    author,
		Timestamp: time.Now(),
	}
	if err := h.transcripts.AppendChatMessage(context.Background(), linkID, msg); err != nil {
		log.Printf("link %s: transcript append failed: %v", linkID, err)
	}
}
