package websocket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"faq-assist-backend/internal/i18n"
	"faq-assist-backend/internal/model"
)

type fakeTranslator struct {
	mu    sync.Mutex
	err   error
	delay time.Duration
	calls []string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, sourceLang, targetLang, serviceRequestID string) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "[" + targetLang + "] " + text, nil
}

type fakeTranscripts struct {
	mu       sync.Mutex
	messages []model.ChatMessage
}

func (f *fakeTranscripts) AppendChatMessage(ctx context.Context, requestID string, msg model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeTranscripts) snapshot() []model.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ChatMessage(nil), f.messages...)
}

func newTestHub(translator *fakeTranslator, transcripts *fakeTranscripts) *Hub {
	// A nil *fakeTranscripts must arrive as a nil interface, not a typed nil.
	var appender TranscriptAppender
	if transcripts != nil {
		appender = transcripts
	}
	hub := NewHub(translator, appender)
	go hub.Run()
	return hub
}

func testClient(linkID string, role Role) *WSClient {
	return &WSClient{
		Message: make(chan *Frame, 32),
		ID:      string(role) + "-1",
		LinkID:  linkID,
		Role:    role,
		done:    make(chan struct{}),
	}
}

func joinBoth(t *testing.T, hub *Hub, linkID string, lang string) (*WSClient, *WSClient) {
	t.Helper()
	hub.Open <- &OpenLinkReq{LinkID: linkID, CustomerLanguage: lang}
	customer := testClient(linkID, RoleCustomer)
	agent := testClient(linkID, RoleAgent)
	hub.Register <- customer
	hub.Register <- agent
	return customer, agent
}

func recvFrame(t *testing.T, client *WSClient) *Frame {
	t.Helper()
	select {
	case frame, ok := <-client.Message:
		if !ok {
			t.Fatal("frame channel closed")
		}
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func expectNoFrame(t *testing.T, client *WSClient) {
	t.Helper()
	select {
	case frame, ok := <-client.Message:
		if ok {
			t.Fatalf("unexpected frame: %+v", frame)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRelayTranslatesBothDirections(t *testing.T) {
	translator := &fakeTranslator{}
	hub := newTestHub(translator, nil)
	customer, agent := joinBoth(t, hub, "req-1", "es")

	hub.Inbound <- &inboundText{LinkID: "req-1", From: RoleCustomer, Content: "hola"}
	frame := recvFrame(t, agent)
	if frame.Content != "[en] hola" {
		t.Errorf("agent received %q", frame.Content)
	}
	if frame.Sender != string(RoleCustomer) {
		t.Errorf("sender = %s", frame.Sender)
	}

	hub.Inbound <- &inboundText{LinkID: "req-1", From: RoleAgent, Content: "hello"}

	// the first agent frame carries the connected notice ahead of it
	notice := recvFrame(t, customer)
	if !notice.System || notice.Content != i18n.Lookup("es", i18n.KeyConnected) {
		t.Errorf("expected localized connected notice, got %+v", notice)
	}
	translated := recvFrame(t, customer)
	if translated.Content != "[es] hello" {
		t.Errorf("customer received %q", translated.Content)
	}
	if translated.Seq <= notice.Seq {
		t.Errorf("seq not increasing: %d then %d", notice.Seq, translated.Seq)
	}
}

func TestRelayPreservesOrderUnderSlowTranslation(t *testing.T) {
	translator := &fakeTranslator{delay: 20 * time.Millisecond}
	hub := newTestHub(translator, nil)
	_, agent := joinBoth(t, hub, "req-1", "fr")

	const n = 5
	for i := 0; i < n; i++ {
		hub.Inbound <- &inboundText{
			LinkID:  "req-1",
			From:    RoleCustomer,
			Content: fmt.Sprintf("message %d", i),
		}
	}

	var lastSeq int64
	for i := 0; i < n; i++ {
		frame := recvFrame(t, agent)
		want := fmt.Sprintf("[en] message %d", i)
		if frame.Content != want {
			t.Fatalf("frame %d = %q, want %q", i, frame.Content, want)
		}
		if frame.Seq <= lastSeq {
			t.Fatalf("seq went backwards: %d after %d", frame.Seq, lastSeq)
		}
		lastSeq = frame.Seq
	}
}

func TestRelayFailsOpenOnTranslationError(t *testing.T) {
	translator := &fakeTranslator{err: errors.New("translator down")}
	hub := newTestHub(translator, nil)
	_, agent := joinBoth(t, hub, "req-1", "de")

	hub.Inbound <- &inboundText{LinkID: "req-1", From: RoleCustomer, Content: "wo ist mein geld"}
	frame := recvFrame(t, agent)
	if frame.Content != "wo ist mein geld" {
		t.Errorf("expected original text, got %q", frame.Content)
	}
}

func TestRelaySkipsTranslationForSameLanguage(t *testing.T) {
	translator := &fakeTranslator{}
	hub := newTestHub(translator, nil)
	_, agent := joinBoth(t, hub, "req-1", "en")

	hub.Inbound <- &inboundText{LinkID: "req-1", From: RoleCustomer, Content: "hello"}
	frame := recvFrame(t, agent)
	if frame.Content != "hello" {
		t.Errorf("got %q", frame.Content)
	}
	translator.mu.Lock()
	calls := len(translator.calls)
	translator.mu.Unlock()
	if calls != 0 {
		t.Errorf("translator called %d times for same-language link", calls)
	}
}

func TestAgentDisconnectClosesLink(t *testing.T) {
	translator := &fakeTranslator{}
	hub := newTestHub(translator, nil)
	customer, agent := joinBoth(t, hub, "req-1", "es")

	// connect first
	hub.Inbound <- &inboundText{LinkID: "req-1", From: RoleAgent, Content: "hi"}
	recvFrame(t, customer) // connected notice
	recvFrame(t, customer) // translated greeting

	hub.Unregister <- agent

	closing := recvFrame(t, customer)
	if !closing.System || closing.Content != i18n.Lookup("es", i18n.KeyClosing) {
		t.Errorf("expected localized closing notice, got %+v", closing)
	}

	// frames after close go nowhere
	hub.Inbound <- &inboundText{LinkID: "req-1", From: RoleCustomer, Content: "hello?"}
	expectNoFrame(t, customer)
}

func TestLinkReopensAfterClose(t *testing.T) {
	translator := &fakeTranslator{}
	hub := newTestHub(translator, nil)
	customer, agent := joinBoth(t, hub, "req-1", "es")

	hub.Inbound <- &inboundText{LinkID: "req-1", From: RoleAgent, Content: "hi"}
	recvFrame(t, customer) // connected notice
	recvFrame(t, customer) // translated greeting

	hub.Unregister <- agent
	recvFrame(t, customer) // closing notice

	// the id is free again: a second chat on the same request gets a fresh
	// link with a fresh sequence
	_, agent2 := joinBoth(t, hub, "req-1", "es")
	hub.Inbound <- &inboundText{LinkID: "req-1", From: RoleCustomer, Content: "sigo aquí"}
	frame := recvFrame(t, agent2)
	if frame.Content != "[en] sigo aquí" {
		t.Errorf("agent received %q on reopened link", frame.Content)
	}
	if frame.Seq != 1 {
		t.Errorf("reopened link seq = %d, want 1", frame.Seq)
	}
}

func TestRelayMirrorsOriginalToTranscript(t *testing.T) {
	translator := &fakeTranslator{}
	transcripts := &fakeTranscripts{}
	hub := newTestHub(translator, transcripts)
	_, agent := joinBoth(t, hub, "req-1", "es")

	hub.Inbound <- &inboundText{LinkID: "req-1", From: RoleCustomer, Content: "hola"}
	recvFrame(t, agent)

	deadline := time.Now().Add(2 * time.Second)
	for {
		msgs := transcripts.snapshot()
		if len(msgs) == 1 {
			if msgs[0].Content != "hola" {
				t.Errorf("transcript stored %q, want original", msgs[0].Content)
			}
			if msgs[0].Author != model.AuthorCustomer {
				t.Errorf("author = %s", msgs[0].Author)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("transcript has %d messages, want 1", len(msgs))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestInjectRemoteSkipsOwnOrigin(t *testing.T) {
	translator := &fakeTranslator{}
	hub := newTestHub(translator, nil)
	customer, _ := joinBoth(t, hub, "req-1", "es")

	hub.InjectRemote("req-1", &Frame{
		LinkID:  "req-1",
		Content: "loopback",
		Sender:  string(RoleAgent),
		Origin:  hub.origin,
	})
	expectNoFrame(t, customer)

	hub.InjectRemote("req-1", &Frame{
		LinkID:  "req-1",
		Content: "from the other process",
		Sender:  string(RoleAgent),
		Origin:  "some-other-process",
	})
	frame := recvFrame(t, customer)
	if frame.Content != "from the other process" {
		t.Errorf("got %q", frame.Content)
	}
}

func TestLinkListingSafeDuringOpens(t *testing.T) {
	hub := newTestHub(&fakeTranslator{}, nil)

	const n = 100
	done := make(chan struct{})
	go func() {
		for i := 0; i < n; i++ {
			hub.Open <- &OpenLinkReq{LinkID: fmt.Sprintf("req-%d", i), CustomerLanguage: "es"}
		}
		close(done)
	}()

	// listing while links are being opened must not race the hub map
	for listing := true; listing; {
		hub.links()
		select {
		case <-done:
			listing = false
		default:
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(hub.links()) != n {
		if time.Now().After(deadline) {
			t.Fatalf("links = %d, want %d", len(hub.links()), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOneClientPerRole(t *testing.T) {
	translator := &fakeTranslator{}
	hub := newTestHub(translator, nil)
	_, agent := joinBoth(t, hub, "req-1", "es")

	replacement := testClient("req-1", RoleAgent)
	hub.Register <- replacement

	hub.Inbound <- &inboundText{LinkID: "req-1", From: RoleCustomer, Content: "hola"}
	frame := recvFrame(t, replacement)
	if !strings.Contains(frame.Content, "hola") {
		t.Errorf("replacement agent got %q", frame.Content)
	}
	select {
	case <-agent.done:
	case <-time.After(time.Second):
		t.Error("replaced agent was not shut down")
	}
}
