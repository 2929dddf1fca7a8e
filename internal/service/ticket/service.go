// Package ticket manages service requests raised when a conversation
// escalates to a human. The service keeps the authoritative state in memory
// and persists every change asynchronously with retries; a write that keeps
// failing is logged and dropped, never rolled back into the in-memory view.
package ticket

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"faq-assist-backend/internal/database"
	"faq-assist-backend/internal/model"
	"faq-assist-backend/internal/pubsub"
	"faq-assist-backend/internal/queue"
	"faq-assist-backend/internal/service/escalation"
	"faq-assist-backend/utils"

	"github.com/google/uuid"
)

const (
	persistAttempts   = 3
	persistBackoff    = 2 * time.Second
	writerQueueSize   = 64
	writerConcurrency = 1
)

type Service struct {
	mu           sync.Mutex
	requests     map[string]model.ServiceRequestItem
	idempotency  map[string]string
	deleteTokens map[string]string
	repo         Repository
	jobs         *queue.RequestQueueManager
	broker       pubsub.Broker
	now          func() time.Time
}

// New builds the production service. Persistence gets its own writer queue
// instead of sharing the HTTP worker pool: a dashboard holding workers must
// never stall ticket writes, and a full writer queue drops the write instead
// of blocking a state transition.
func New(db *database.Database, broker pubsub.Broker) *Service {
	jobs := queue.NewRequestQueueManager(writerQueueSize, writerConcurrency)
	return NewWithRepository(NewDynamoRepository(db), jobs, broker, time.Now)
}

func NewWithRepository(repo Repository, jobs *queue.RequestQueueManager, broker pubsub.Broker, now func() time.Time) *Service {
	return &Service{
		requests:     make(map[string]model.ServiceRequestItem),
		idempotency:  make(map[string]string),
		deleteTokens: make(map[string]string),
		repo:         repo,
		jobs:         jobs,
		broker:       broker,
		now:          now,
	}
}

// Load seeds the in-memory state from storage. Meant to run once at startup,
// before the service takes traffic.
func (s *Service) Load(ctx context.Context) error {
	items, err := s.repo.ListServiceRequests(ctx)
	if err != nil {
		return newError(ErrorCodeInternal, "failed to load service requests", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.requests[item.RequestID] = item
	}
	return nil
}

type CreateParams struct {
	CustomerID       string
	CustomerName     string
	CustomerEmail    string
	ChatHistory      []model.ChatMessage
	Trigger          *escalation.Trigger
	RiskType         string
	Source           model.EscalationSource
	Priority         model.Priority
	Reason           string
	DocumentName     string
	DocumentText     string
	CustomerLanguage string
	IdempotencyKey   string
}

// Create opens a new service request. When an idempotency key is supplied and
// a request was already created under it, that request is returned unchanged
// instead of opening a duplicate.
func (s *Service) Create(ctx context.Context, params CreateParams) (model.ServiceRequestItem, error) {
	if params.CustomerID == "" {
		return model.ServiceRequestItem{}, newError(ErrorCodeValidation, "customer id is required", nil)
	}
	if params.CustomerName == "" {
		params.CustomerName = params.CustomerID
	}

	source := params.Source
	priority := params.Priority
	reason := params.Reason
	if params.Trigger != nil {
		if source == "" {
			source = DeriveSource(params.Trigger.Kind)
		}
		if priority == "" {
			priority = DerivePriority(params.Trigger.Kind, params.RiskType, params.Trigger.Reason)
		}
		if reason == "" {
			reason = params.Trigger.Reason
		}
	}
	if source == "" {
		source = model.SourceManual
	}
	if priority == "" {
		priority = model.PriorityMedium
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if params.IdempotencyKey != "" {
		if existingID, ok := s.idempotency[params.IdempotencyKey]; ok {
			if existing, ok := s.requests[existingID]; ok {
				return existing, nil
			}
		}
	}

	now := s.now().UTC().Format(time.RFC3339)
	item := model.ServiceRequestItem{
		RequestID:        uuid.New().String(),
		CustomerID:       params.CustomerID,
		CustomerName:     params.CustomerName,
		CustomerEmail:    params.CustomerEmail,
		Status:           model.StatusNew,
		Priority:         priority,
		EscalationSource: source,
		EscalationReason: reason,
		ChatHistory:      params.ChatHistory,
		DocumentName:     params.DocumentName,
		DocumentText:     params.DocumentText,
		CustomerLanguage: params.CustomerLanguage,
		CreatedAt:        now,
		LastUpdated:      now,
	}

	s.requests[item.RequestID] = item
	if params.IdempotencyKey != "" {
		s.idempotency[params.IdempotencyKey] = item.RequestID
	}

	s.persist(item)
	s.publish(pubsub.TopicTicketCreated, item)
	return item, nil
}

// Acknowledge moves a new request to in-progress. Acknowledging a request
// that is already in progress is a no-op; a resolved request cannot go back.
func (s *Service) Acknowledge(ctx context.Context, requestID string) (model.ServiceRequestItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.requests[requestID]
	if !ok {
		return model.ServiceRequestItem{}, newError(ErrorCodeNotFound, "service request not found", nil)
	}

	switch item.Status {
	case model.StatusInProgress:
		return item, nil
	case model.StatusResolved:
		return model.ServiceRequestItem{}, newError(ErrorCodeConflict, "resolved request cannot be reopened", nil)
	}

	now := s.now().UTC().Format(time.RFC3339)
	item.Status = model.StatusInProgress
	item.AcknowledgedAt = now
	item.LastUpdated = now
	s.requests[requestID] = item

	s.persist(item)
	s.publish(pubsub.TopicTicketUpdated, item)
	return item, nil
}

// Resolve closes a request. Resolving an already resolved request returns it
// untouched; lastUpdated does not move.
func (s *Service) Resolve(ctx context.Context, requestID string, adminNotes string) (model.ServiceRequestItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.requests[requestID]
	if !ok {
		return model.ServiceRequestItem{}, newError(ErrorCodeNotFound, "service request not found", nil)
	}

	if item.Status == model.StatusResolved {
		return item, nil
	}

	now := s.now().UTC().Format(time.RFC3339)
	item.Status = model.StatusResolved
	item.ResolvedAt = now
	item.LastUpdated = now
	if adminNotes != "" {
		item.AdminNotes = appendNotes(item.AdminNotes, adminNotes)
	}
	s.requests[requestID] = item

	s.persist(item)
	s.publish(pubsub.TopicTicketUpdated, item)
	return item, nil
}

// UpdateNotes appends admin notes. The only field that stays writable after
// a request is resolved.
func (s *Service) UpdateNotes(ctx context.Context, requestID string, notes string) (model.ServiceRequestItem, error) {
	if notes == "" {
		return model.ServiceRequestItem{}, newError(ErrorCodeValidation, "notes are required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.requests[requestID]
	if !ok {
		return model.ServiceRequestItem{}, newError(ErrorCodeNotFound, "service request not found", nil)
	}

	item.AdminNotes = appendNotes(item.AdminNotes, notes)
	item.LastUpdated = s.now().UTC().Format(time.RFC3339)
	s.requests[requestID] = item

	s.persist(item)
	return item, nil
}

// AppendChatMessage adds a live-chat message to the request transcript.
func (s *Service) AppendChatMessage(ctx context.Context, requestID string, msg model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.requests[requestID]
	if !ok {
		return newError(ErrorCodeNotFound, "service request not found", nil)
	}

	item.ChatHistory = append(item.ChatHistory, msg)
	item.LastUpdated = s.now().UTC().Format(time.RFC3339)
	s.requests[requestID] = item

	s.persist(item)
	return nil
}

// RequestDelete starts the two-step deletion flow and returns the token the
// caller must echo back to confirm. Only resolved requests can be deleted.
func (s *Service) RequestDelete(ctx context.Context, requestID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.requests[requestID]
	if !ok {
		return "", newError(ErrorCodeNotFound, "service request not found", nil)
	}
	if item.Status != model.StatusResolved {
		return "", newError(ErrorCodeConflict, "only resolved requests can be deleted", nil)
	}

	token := utils.CreateToken()
	s.deleteTokens[requestID] = token
	return token, nil
}

// ConfirmDelete completes deletion with the token handed out by
// RequestDelete. The token is single-use.
func (s *Service) ConfirmDelete(ctx context.Context, requestID string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.requests[requestID]
	if !ok {
		return newError(ErrorCodeNotFound, "service request not found", nil)
	}

	expected, ok := s.deleteTokens[requestID]
	if !ok || token == "" || token != expected {
		return newError(ErrorCodeForbidden, "invalid delete confirmation token", nil)
	}

	delete(s.deleteTokens, requestID)
	delete(s.requests, requestID)
	for key, id := range s.idempotency {
		if id == requestID {
			delete(s.idempotency, key)
		}
	}

	id := item.RequestID
	s.enqueue("ticket delete", func() error {
		return s.repo.DeleteServiceRequest(context.Background(), id)
	})
	return nil
}

func (s *Service) Get(ctx context.Context, requestID string) (model.ServiceRequestItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.requests[requestID]
	if !ok {
		return model.ServiceRequestItem{}, newError(ErrorCodeNotFound, "service request not found", nil)
	}
	return item, nil
}

// List returns every request, newest first.
func (s *Service) List(ctx context.Context) []model.ServiceRequestItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.ServiceRequestItem, 0, len(s.requests))
	for _, item := range s.requests {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt == items[j].CreatedAt {
			return items[i].RequestID < items[j].RequestID
		}
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items
}

type Stats struct {
	Total      int
	New        int
	InProgress int
	Resolved   int
}

// StatsSnapshot derives counts from the live map. Nothing is cached, so the
// numbers always match what List returns.
func (s *Service) StatsSnapshot(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	for _, item := range s.requests {
		stats.Total++
		switch item.Status {
		case model.StatusNew:
			stats.New++
		case model.StatusInProgress:
			stats.InProgress++
		case model.StatusResolved:
			stats.Resolved++
		}
	}
	return stats
}

// DerivePriority maps an escalation trigger to a ticket priority. Backend
// flags around fraud or high-risk activity are the only source of critical.
func DerivePriority(kind escalation.TriggerKind, riskType string, reason string) model.Priority {
	switch kind {
	case escalation.KindBackendFlagged:
		if strings.EqualFold(riskType, "fraud") || strings.Contains(strings.ToLower(reason), "high-risk") {
			return model.PriorityCritical
		}
		return model.PriorityHigh
	case escalation.KindHumanRequest, escalation.KindFeedbackStreak:
		return model.PriorityHigh
	case escalation.KindFrustration, escalation.KindRepeatedFailure:
		return model.PriorityMedium
	default:
		return model.PriorityMedium
	}
}

func DeriveSource(kind escalation.TriggerKind) model.EscalationSource {
	if kind == escalation.KindBackendFlagged {
		return model.SourceBackend
	}
	return model.SourceHeuristic
}

func (s *Service) persist(item model.ServiceRequestItem) {
	s.enqueue("ticket persist", func() error {
		return s.repo.PutServiceRequest(context.Background(), item)
	})
}

func (s *Service) enqueue(label string, fn func() error) {
	if s.jobs == nil {
		if err := fn(); err != nil {
			log.Printf("%s failed: %v", label, err)
		}
		return
	}
	s.jobs.EnqueueWithRetry(label, persistAttempts, persistBackoff, fn)
}

func (s *Service) publish(topic string, item model.ServiceRequestItem) {
	if s.broker == nil {
		return
	}
	err := s.broker.Publish(context.Background(), topic, pubsub.TicketEvent{
		RequestID:        item.RequestID,
		CustomerID:       item.CustomerID,
		CustomerName:     item.CustomerName,
		Status:           string(item.Status),
		Priority:         string(item.Priority),
		EscalationSource: string(item.EscalationSource),
		EscalationReason: item.EscalationReason,
		Timestamp:        s.now().UnixMilli(),
	})
	if err != nil {
		log.Printf("ticket event publish failed: %v", err)
	}
}

func appendNotes(existing string, notes string) string {
	if existing == "" {
		return notes
	}
	return existing + "\n" + notes
}
