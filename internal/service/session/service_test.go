package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"faq-assist-backend/internal/i18n"
	"faq-assist-backend/internal/model"
	"faq-assist-backend/internal/service/archive"
	"faq-assist-backend/internal/service/ticket"
	"faq-assist-backend/internal/signal"
)

type fakeSignal struct {
	result      *signal.ChatResult
	chatErr     error
	clearErr    error
	clearCalls  []string
	lastRequest signal.ChatRequest
}

func (f *fakeSignal) Chat(ctx context.Context, req signal.ChatRequest) (*signal.ChatResult, error) {
	f.lastRequest = req
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.result, nil
}

func (f *fakeSignal) ClearSessionMemory(ctx context.Context, sessionID string) error {
	f.clearCalls = append(f.clearCalls, sessionID)
	return f.clearErr
}

type fakeTickets struct {
	created []ticket.CreateParams
	err     error
}

func (f *fakeTickets) Create(ctx context.Context, params ticket.CreateParams) (model.ServiceRequestItem, error) {
	if f.err != nil {
		return model.ServiceRequestItem{}, f.err
	}
	f.created = append(f.created, params)
	return model.ServiceRequestItem{RequestID: "req-1", CustomerID: params.CustomerID}, nil
}

type fakeArchives struct {
	archived []archive.ArchiveParams
	err      error
}

func (f *fakeArchives) Archive(ctx context.Context, params archive.ArchiveParams) (model.ArchivedSessionItem, error) {
	if f.err != nil {
		return model.ArchivedSessionItem{}, f.err
	}
	f.archived = append(f.archived, params)
	return model.ArchivedSessionItem{SessionID: params.SessionID}, nil
}

func goodResult(response string) *signal.ChatResult {
	return &signal.ChatResult{
		Response:        response,
		ConfidenceScore: 0.92,
		ConfidenceLevel: "HIGH",
	}
}

func newTestDeps() (*fakeSignal, *fakeTickets, *fakeArchives) {
	return &fakeSignal{result: goodResult("here is your answer")}, &fakeTickets{}, &fakeArchives{}
}

func startSession(t *testing.T, svc *Service, lang string) Session {
	t.Helper()
	sess, err := svc.Start(context.Background(), StartParams{
		UserID:   "user-1",
		UserName: "Ada",
		Email:    "ada@example.com",
		Language: lang,
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return sess
}

func TestStartSeedsLocalizedWelcome(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	svc := New(sig, tickets, archives)

	sess := startSession(t, svc, "es")

	if !strings.HasPrefix(sess.ID, "user-1_") {
		t.Errorf("session id = %q, want user-prefixed", sess.ID)
	}
	if len(sess.Messages) != 1 {
		t.Fatalf("got %d seeded messages, want 1", len(sess.Messages))
	}
	welcome := sess.Messages[0]
	if welcome.Author != model.AuthorAssistant {
		t.Errorf("welcome author = %s", welcome.Author)
	}
	if welcome.Content != i18n.Lookup("es", i18n.KeyWelcome) {
		t.Errorf("welcome not localized: %q", welcome.Content)
	}
	if len(sig.clearCalls) != 1 || sig.clearCalls[0] != sess.ID {
		t.Errorf("upstream memory not cleared for %s: %v", sess.ID, sig.clearCalls)
	}
}

func TestStartSurvivesClearFailure(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	sig.clearErr = errors.New("upstream down")
	svc := New(sig, tickets, archives)

	sess := startSession(t, svc, "en")
	if sess.ID == "" {
		t.Fatal("start failed on clear error")
	}
}

func TestChatAppendsBothMessages(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	svc := New(sig, tickets, archives)
	startSession(t, svc, "en")

	turn, err := svc.Chat(context.Background(), "user-1", "what are your fees?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if turn.UserMessage.Content != "what are your fees?" {
		t.Errorf("user message = %q", turn.UserMessage.Content)
	}
	if turn.AssistantMessage.Content != "here is your answer" {
		t.Errorf("assistant message = %q", turn.AssistantMessage.Content)
	}
	if turn.AssistantMessage.ConfidenceScore == nil || *turn.AssistantMessage.ConfidenceScore != 0.92 {
		t.Error("confidence score not carried onto the message")
	}
	if turn.Escalated {
		t.Error("confident answer escalated")
	}
	if sig.lastRequest.Language != "en" {
		t.Errorf("signal language = %q", sig.lastRequest.Language)
	}

	sess, _ := svc.Get(context.Background(), "user-1")
	if len(sess.Messages) != 3 {
		t.Errorf("history has %d messages, want welcome + user + assistant", len(sess.Messages))
	}
}

func TestChatSignalFailureRetriesWithoutEscalating(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	sig.chatErr = errors.New("connection refused")
	svc := New(sig, tickets, archives)
	startSession(t, svc, "fr")

	turn, err := svc.Chat(context.Background(), "user-1", "get me a human")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if turn.AssistantMessage.Content != i18n.Lookup("fr", i18n.KeyRetry) {
		t.Errorf("assistant message = %q, want localized retry", turn.AssistantMessage.Content)
	}
	if turn.Escalated || len(tickets.created) != 0 {
		t.Error("signal outage opened a service request")
	}
	if turn.Disabled {
		t.Error("signal outage disabled the session")
	}
}

func TestChatHumanRequestEscalates(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	svc := New(sig, tickets, archives)
	startSession(t, svc, "en")

	turn, err := svc.Chat(context.Background(), "user-1", "I want to speak to a human")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !turn.Escalated {
		t.Fatal("human request did not escalate")
	}
	if turn.ServiceRequestID != "req-1" {
		t.Errorf("serviceRequestId = %q", turn.ServiceRequestID)
	}
	if !turn.Disabled {
		t.Error("escalated session not disabled")
	}
	if turn.AssistantMessage.Content != i18n.Lookup("en", i18n.KeyEscalatedHuman) {
		t.Errorf("confirmation = %q", turn.AssistantMessage.Content)
	}
	if len(tickets.created) != 1 {
		t.Fatalf("created %d tickets, want 1", len(tickets.created))
	}
	params := tickets.created[0]
	if params.Trigger == nil || params.Trigger.Kind != "human_request" {
		t.Errorf("ticket trigger = %+v", params.Trigger)
	}
	if params.IdempotencyKey == "" {
		t.Error("ticket created without idempotency key")
	}

	// a disabled session rejects further chat
	_, err = svc.Chat(context.Background(), "user-1", "hello?")
	assertErrorCode(t, err, ErrorCodeConflict)
}

func TestChatBackendFlagCarriesRiskType(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	sig.result = &signal.ChatResult{
		Response:        "flagged",
		Escalated:       true,
		Reason:          "suspicious transfer pattern",
		RiskType:        "fraud",
		ConfidenceScore: 0.99,
		ConfidenceLevel: "HIGH",
	}
	svc := New(sig, tickets, archives)
	startSession(t, svc, "en")

	turn, err := svc.Chat(context.Background(), "user-1", "move all my money now")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !turn.Escalated {
		t.Fatal("backend flag did not escalate")
	}
	params := tickets.created[0]
	if params.RiskType != "fraud" {
		t.Errorf("riskType = %q", params.RiskType)
	}
	if params.Trigger.Kind != "backend_flagged" {
		t.Errorf("trigger kind = %s", params.Trigger.Kind)
	}
}

func TestFeedbackStreakEscalatesOnce(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	svc := New(sig, tickets, archives)
	startSession(t, svc, "en")

	var messageIDs []string
	for i := 0; i < 4; i++ {
		turn, err := svc.Chat(context.Background(), "user-1", "question "+string(rune('a'+i)))
		if err != nil {
			t.Fatalf("Chat %d: %v", i, err)
		}
		messageIDs = append(messageIDs, turn.AssistantMessage.ID)
	}

	// two dislikes, then a like: streak resets
	for _, id := range messageIDs[:2] {
		res, err := svc.Feedback(context.Background(), "user-1", id, model.FeedbackDislike)
		if err != nil {
			t.Fatalf("Feedback: %v", err)
		}
		if res.Escalated {
			t.Fatal("escalated before threshold")
		}
	}
	res, err := svc.Feedback(context.Background(), "user-1", messageIDs[2], model.FeedbackLike)
	if err != nil {
		t.Fatalf("Feedback like: %v", err)
	}
	if res.DislikeStreak != 0 {
		t.Errorf("streak after like = %d, want 0", res.DislikeStreak)
	}

	// three consecutive dislikes escalate
	for i, id := range messageIDs[:3] {
		res, err = svc.Feedback(context.Background(), "user-1", id, model.FeedbackDislike)
		if err != nil {
			t.Fatalf("Feedback dislike %d: %v", i, err)
		}
	}
	if !res.Escalated {
		t.Fatal("third consecutive dislike did not escalate")
	}
	if !res.Disabled {
		t.Error("feedback escalation did not disable the session")
	}
	if len(tickets.created) != 1 {
		t.Fatalf("created %d tickets, want 1", len(tickets.created))
	}
	if tickets.created[0].Trigger.Kind != "feedback_streak" {
		t.Errorf("trigger kind = %s", tickets.created[0].Trigger.Kind)
	}

	// further dislikes do not open another ticket
	res, err = svc.Feedback(context.Background(), "user-1", messageIDs[3], model.FeedbackDislike)
	if err != nil {
		t.Fatalf("Feedback after escalation: %v", err)
	}
	if len(tickets.created) != 1 {
		t.Errorf("escalated twice: %d tickets", len(tickets.created))
	}
}

func TestFeedbackOnCustomerMessageRejected(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	svc := New(sig, tickets, archives)
	startSession(t, svc, "en")

	turn, err := svc.Chat(context.Background(), "user-1", "hello")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	_, err = svc.Feedback(context.Background(), "user-1", turn.UserMessage.ID, model.FeedbackLike)
	assertErrorCode(t, err, ErrorCodeValidation)
}

func TestChangeLanguageResetsConversation(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	svc := New(sig, tickets, archives)
	startSession(t, svc, "en")

	if _, err := svc.Chat(context.Background(), "user-1", "I want to speak to a human"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	sess, err := svc.ChangeLanguage(context.Background(), "user-1", "de")
	if err != nil {
		t.Fatalf("ChangeLanguage: %v", err)
	}
	if sess.Language != "de" {
		t.Errorf("language = %q", sess.Language)
	}
	if len(sess.Messages) != 1 {
		t.Fatalf("history survived reset: %d messages", len(sess.Messages))
	}
	if sess.Messages[0].Content != i18n.Lookup("de", i18n.KeyWelcome) {
		t.Errorf("reseeded welcome = %q", sess.Messages[0].Content)
	}
	if sess.Escalated || sess.Disabled || sess.DislikeStreak != 0 {
		t.Error("escalation state survived reset")
	}
	if len(sig.clearCalls) != 2 {
		t.Errorf("upstream memory cleared %d times, want 2", len(sig.clearCalls))
	}
}

func TestUnsupportedLanguageFallsBackToEnglish(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	svc := New(sig, tickets, archives)

	sess := startSession(t, svc, "tlh-KX")
	if sess.Language != "en" {
		t.Errorf("language = %q, want en", sess.Language)
	}
}

func TestEndArchivesOnlyRealConversations(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	svc := New(sig, tickets, archives)

	// welcome-only session: nothing to archive
	startSession(t, svc, "en")
	archived, err := svc.End(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if archived || len(archives.archived) != 0 {
		t.Error("welcome-only session was archived")
	}

	// session with a real exchange
	sess := startSession(t, svc, "en")
	if _, err := svc.Chat(context.Background(), "user-1", "hello"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	archived, err = svc.End(context.Background(), "user-1", "user closed tab")
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !archived || len(archives.archived) != 1 {
		t.Fatal("conversation was not archived")
	}
	got := archives.archived[0]
	if got.SessionID != sess.ID {
		t.Errorf("archived session = %s, want %s", got.SessionID, sess.ID)
	}
	if got.Reason != "user closed tab" {
		t.Errorf("reason = %q", got.Reason)
	}
	if len(got.Messages) != 3 {
		t.Errorf("archived %d messages, want 3", len(got.Messages))
	}

	_, err = svc.Get(context.Background(), "user-1")
	assertErrorCode(t, err, ErrorCodeNotFound)
}

func TestEndSurvivesArchiveFailure(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	archives.err = errors.New("dynamo down")
	svc := New(sig, tickets, archives)
	startSession(t, svc, "en")
	if _, err := svc.Chat(context.Background(), "user-1", "hello"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	archived, err := svc.End(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if archived {
		t.Error("reported archived despite storage failure")
	}
	if _, err := svc.Get(context.Background(), "user-1"); err == nil {
		t.Error("session survived End")
	}
}

func TestAttachDocumentTravelsWithTicket(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	svc := New(sig, tickets, archives)
	startSession(t, svc, "en")

	if err := svc.AttachDocument(context.Background(), "user-1", "statement.pdf", "extracted text"); err != nil {
		t.Fatalf("AttachDocument: %v", err)
	}
	if _, err := svc.Chat(context.Background(), "user-1", "get me a human"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(tickets.created) != 1 {
		t.Fatal("no ticket created")
	}
	if tickets.created[0].DocumentName != "statement.pdf" {
		t.Errorf("documentName = %q", tickets.created[0].DocumentName)
	}
}

func TestStartReplacesExistingSession(t *testing.T) {
	sig, tickets, archives := newTestDeps()
	svc := NewWithClock(sig, tickets, archives, func() time.Time {
		return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	})

	first := startSession(t, svc, "en")
	second := startSession(t, svc, "en")
	if first.ID == second.ID {
		t.Error("replacement session reused the old id")
	}

	sess, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.ID != second.ID {
		t.Errorf("active session = %s, want %s", sess.ID, second.ID)
	}
}

func assertErrorCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	svcErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *session.Error, got %T: %v", err, err)
	}
	if svcErr.Code != code {
		t.Fatalf("error code = %s, want %s", svcErr.Code, code)
	}
}
