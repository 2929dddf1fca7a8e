// Package session owns the lifecycle of a customer's FAQ conversation: one
// active session per user, a seeded localized welcome, chat turns against the
// confidence service, feedback tracking and the hand-off into a service
// request when the escalation engine fires.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"faq-assist-backend/internal/i18n"
	"faq-assist-backend/internal/model"
	"faq-assist-backend/internal/service/archive"
	"faq-assist-backend/internal/service/escalation"
	"faq-assist-backend/internal/service/ticket"
	"faq-assist-backend/internal/signal"

	"github.com/google/uuid"
)

// SignalClient is the slice of the confidence-service client this package
// needs. Satisfied by *signal.Client.
type SignalClient interface {
	Chat(ctx context.Context, req signal.ChatRequest) (*signal.ChatResult, error)
	ClearSessionMemory(ctx context.Context, sessionID string) error
}

// TicketCreator opens service requests for escalated conversations.
// Satisfied by *ticket.Service.
type TicketCreator interface {
	Create(ctx context.Context, params ticket.CreateParams) (model.ServiceRequestItem, error)
}

// Archiver stores finished transcripts. Satisfied by *archive.Service.
type Archiver interface {
	Archive(ctx context.Context, params archive.ArchiveParams) (model.ArchivedSessionItem, error)
}

// Session is a snapshot of one user's conversation state.
type Session struct {
	ID               string
	UserID           string
	UserName         string
	UserEmail        string
	Language         string
	Messages         []model.ChatMessage
	DislikeStreak    int
	Escalated        bool
	Disabled         bool
	ServiceRequestID string
	DocumentName     string
	DocumentText     string
	StartTime        time.Time
}

type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session
	signal   SignalClient
	tickets  TicketCreator
	archives Archiver
	engine   *escalation.Engine
	now      func() time.Time
}

func New(signalClient SignalClient, tickets TicketCreator, archives Archiver) *Service {
	return NewWithClock(signalClient, tickets, archives, time.Now)
}

func NewWithClock(signalClient SignalClient, tickets TicketCreator, archives Archiver, now func() time.Time) *Service {
	return &Service{
		sessions: make(map[string]*Session),
		signal:   signalClient,
		tickets:  tickets,
		archives: archives,
		engine:   escalation.NewEngine(),
		now:      now,
	}
}

type StartParams struct {
	UserID   string
	UserName string
	Email    string
	Language string
}

// Start opens a fresh session for the user, replacing any existing one. The
// upstream session memory is cleared and a localized welcome is seeded as the
// first message. A failure to clear upstream memory is logged, not fatal.
func (s *Service) Start(ctx context.Context, params StartParams) (Session, error) {
	if params.UserID == "" {
		return Session{}, newError(ErrorCodeValidation, "user id is required", nil)
	}
	language := i18n.Resolve(params.Language)

	now := s.now()
	sessionID := fmt.Sprintf("%s_%d_%s", params.UserID, now.UnixMilli(), shortSuffix())

	if err := s.signal.ClearSessionMemory(ctx, sessionID); err != nil {
		log.Printf("session %s: clear upstream memory failed: %v", sessionID, err)
	}

	sess := &Session{
		ID:        sessionID,
		UserID:    params.UserID,
		UserName:  params.UserName,
		UserEmail: params.Email,
		Language:  language,
		StartTime: now,
		Messages: []model.ChatMessage{
			s.systemMessage(i18n.Lookup(language, i18n.KeyWelcome)),
		},
	}

	s.mu.Lock()
	s.sessions[params.UserID] = sess
	s.mu.Unlock()

	return *sess, nil
}

func (s *Service) Get(ctx context.Context, userID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, newError(ErrorCodeNotFound, "no active session", nil)
	}
	return *sess, nil
}

type Turn struct {
	UserMessage      model.ChatMessage
	AssistantMessage model.ChatMessage
	Escalated        bool
	ServiceRequestID string
	Disabled         bool
}

// Chat runs one conversation turn. When the confidence service is
// unreachable the user gets a localized retry message and no escalation
// logic runs; an outage is not a reason to open a ticket.
func (s *Service) Chat(ctx context.Context, userID string, query string) (Turn, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Turn{}, newError(ErrorCodeValidation, "query is required", nil)
	}

	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return Turn{}, newError(ErrorCodeNotFound, "no active session", nil)
	}
	if sess.Disabled {
		s.mu.Unlock()
		return Turn{}, newError(ErrorCodeConflict, "session is waiting for a human agent", nil)
	}
	sessionID := sess.ID
	language := sess.Language
	s.mu.Unlock()

	result, err := s.signal.Chat(ctx, signal.ChatRequest{
		Query:     query,
		UserID:    userID,
		SessionID: sessionID,
		Language:  language,
	})
	if err != nil {
		log.Printf("session %s: chat signal failed: %v", sessionID, err)
		result = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// re-check: the session may have been ended while the call was in flight
	sess, ok = s.sessions[userID]
	if !ok || sess.ID != sessionID {
		return Turn{}, newError(ErrorCodeNotFound, "session ended during chat turn", nil)
	}

	userMsg := model.ChatMessage{
		ID:        uuid.New().String(),
		Content:   query,
		Author:    model.AuthorCustomer,
		Timestamp: s.now(),
	}
	sess.Messages = append(sess.Messages, userMsg)

	var backendSignal *escalation.BackendSignal
	var riskType string
	assistantMsg := model.ChatMessage{
		ID:        uuid.New().String(),
		Author:    model.AuthorAssistant,
		Timestamp: s.now(),
	}

	if result == nil {
		assistantMsg.Content = i18n.Lookup(language, i18n.KeyRetry)
	} else {
		assistantMsg.Content = result.Response
		score := result.ConfidenceScore
		assistantMsg.ConfidenceScore = &score
		assistantMsg.ConfidenceLevel = model.ConfidenceLevel(result.ConfidenceLevel)
		backendSignal = &escalation.BackendSignal{
			Escalated: result.Escalated,
			Reason:    result.Reason,
			RiskType:  result.RiskType,
		}
		riskType = result.RiskType
	}

	trigger := s.engine.Evaluate(escalation.Input{
		Signal:        backendSignal,
		Message:       query,
		History:       sess.Messages,
		DislikeStreak: sess.DislikeStreak,
	})

	if trigger != nil && !sess.Escalated {
		requestID := s.escalateLocked(ctx, sess, trigger, riskType)
		assistantMsg.Content = i18n.Lookup(language, escalationKey(trigger.Kind))
		assistantMsg.Escalated = true
		sess.ServiceRequestID = requestID
	}

	sess.Messages = append(sess.Messages, assistantMsg)

	return Turn{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Escalated:        sess.Escalated,
		ServiceRequestID: sess.ServiceRequestID,
		Disabled:         sess.Disabled,
	}, nil
}

type FeedbackResult struct {
	DislikeStreak    int
	Escalated        bool
	ServiceRequestID string
	Disabled         bool
}

// Feedback records like or dislike on an assistant message. A like resets
// the dislike streak; the third consecutive dislike escalates, exactly once.
func (s *Service) Feedback(ctx context.Context, userID string, messageID string, feedback model.Feedback) (FeedbackResult, error) {
	if feedback != model.FeedbackLike && feedback != model.FeedbackDislike {
		return FeedbackResult{}, newError(ErrorCodeValidation, "feedback must be like or dislike", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return FeedbackResult{}, newError(ErrorCodeNotFound, "no active session", nil)
	}

	found := false
	for i := range sess.Messages {
		if sess.Messages[i].ID != messageID {
			continue
		}
		if sess.Messages[i].Author != model.AuthorAssistant {
			return FeedbackResult{}, newError(ErrorCodeValidation, "feedback applies to assistant messages only", nil)
		}
		sess.Messages[i].Feedback = feedback
		found = true
		break
	}
	if !found {
		return FeedbackResult{}, newError(ErrorCodeNotFound, "message not found in session", nil)
	}

	if feedback == model.FeedbackLike {
		sess.DislikeStreak = 0
	} else {
		sess.DislikeStreak++
	}

	if !sess.Escalated {
		trigger := s.engine.Evaluate(escalation.Input{
			Signal:        &escalation.BackendSignal{},
			History:       sess.Messages,
			DislikeStreak: sess.DislikeStreak,
		})
		if trigger != nil {
			requestID := s.escalateLocked(ctx, sess, trigger, "")
			sess.ServiceRequestID = requestID
			sess.Messages = append(sess.Messages, model.ChatMessage{
				ID:        uuid.New().String(),
				Content:   i18n.Lookup(sess.Language, escalationKey(trigger.Kind)),
				Author:    model.AuthorAssistant,
				Timestamp: s.now(),
				Escalated: true,
			})
		}
	}

	return FeedbackResult{
		DislikeStreak:    sess.DislikeStreak,
		Escalated:        sess.Escalated,
		ServiceRequestID: sess.ServiceRequestID,
		Disabled:         sess.Disabled,
	}, nil
}

// ChangeLanguage resets the conversation in the new language. The reset is
// destructive: history is dropped, upstream memory cleared, and a fresh
// welcome seeded. Escalation state does not survive the reset.
func (s *Service) ChangeLanguage(ctx context.Context, userID string, lang string) (Session, error) {
	language := i18n.Resolve(lang)

	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return Session{}, newError(ErrorCodeNotFound, "no active session", nil)
	}
	sessionID := sess.ID
	s.mu.Unlock()

	if err := s.signal.ClearSessionMemory(ctx, sessionID); err != nil {
		log.Printf("session %s: clear upstream memory failed: %v", sessionID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok = s.sessions[userID]
	if !ok || sess.ID != sessionID {
		return Session{}, newError(ErrorCodeNotFound, "session ended during language change", nil)
	}

	sess.Language = language
	sess.Messages = []model.ChatMessage{
		s.systemMessage(i18n.Lookup(language, i18n.KeyWelcome)),
	}
	sess.DislikeStreak = 0
	sess.Escalated = false
	sess.Disabled = false
	sess.ServiceRequestID = ""

	return *sess, nil
}

// AttachDocument stores extracted document text on the session so it travels
// with any service request opened later.
func (s *Service) AttachDocument(ctx context.Context, userID string, filename string, text string) error {
	if filename == "" || text == "" {
		return newError(ErrorCodeValidation, "filename and extracted text are required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return newError(ErrorCodeNotFound, "no active session", nil)
	}
	sess.DocumentName = filename
	sess.DocumentText = text
	return nil
}

// End closes the session. The transcript is archived only when the
// conversation went beyond the seeded welcome, and archiving is best-effort:
// a storage failure still ends the session.
func (s *Service) End(ctx context.Context, userID string, reason string) (archived bool, err error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return false, newError(ErrorCodeNotFound, "no active session", nil)
	}
	delete(s.sessions, userID)
	s.mu.Unlock()

	if len(sess.Messages) <= 1 {
		return false, nil
	}

	if reason == "" {
		reason = "session ended"
	}
	_, err = s.archives.Archive(ctx, archive.ArchiveParams{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Messages:  sess.Messages,
		StartTime: sess.StartTime,
		EndTime:   s.now(),
		Reason:    reason,
	})
	if err != nil {
		log.Printf("session %s: archive failed: %v", sess.ID, err)
		return false, nil
	}
	return true, nil
}

// AppendAgentTranscript mirrors a live-chat message into the session history
// so an archive taken later includes the human part of the conversation.
func (s *Service) AppendAgentTranscript(ctx context.Context, userID string, msg model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		sess.Messages = append(sess.Messages, msg)
	}
}

// escalateLocked opens a service request and flips the session into the
// escalated, disabled state. Caller holds s.mu.
func (s *Service) escalateLocked(ctx context.Context, sess *Session, trigger *escalation.Trigger, riskType string) string {
	item, err := s.tickets.Create(ctx, ticket.CreateParams{
		CustomerID:       sess.UserID,
		CustomerName:     sess.UserName,
		CustomerEmail:    sess.UserEmail,
		ChatHistory:      append([]model.ChatMessage(nil), sess.Messages...),
		Trigger:          trigger,
		RiskType:         riskType,
		DocumentName:     sess.DocumentName,
		DocumentText:     sess.DocumentText,
		CustomerLanguage: sess.Language,
		IdempotencyKey:   sess.ID + ":" + string(trigger.Kind),
	})
	if err != nil {
		log.Printf("session %s: service request creation failed: %v", sess.ID, err)
		return ""
	}
	sess.Escalated = true
	sess.Disabled = true
	return item.RequestID
}

func (s *Service) systemMessage(content string) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.New().String(),
		Content:   content,
		Author:    model.AuthorAssistant,
		Timestamp: s.now(),
	}
}

func escalationKey(kind escalation.TriggerKind) i18n.Key {
	switch kind {
	case escalation.KindHumanRequest:
		return i18n.KeyEscalatedHuman
	case escalation.KindFrustration:
		return i18n.KeyEscalatedFrustr
	case escalation.KindRepeatedFailure:
		return i18n.KeyEscalatedRepeated
	case escalation.KindFeedbackStreak:
		return i18n.KeyEscalatedFeedback
	default:
		return i18n.KeyEscalatedDefault
	}
}

func shortSuffix() string {
	return strings.Split(uuid.New().String(), "-")[0]
}
