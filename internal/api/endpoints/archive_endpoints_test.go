package endpoints

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"faq-assist-backend/internal/api"
	"faq-assist-backend/internal/api/middleware"
	"faq-assist-backend/internal/dto"
	"faq-assist-backend/internal/model"
	"faq-assist-backend/internal/queue"
	archivesvc "faq-assist-backend/internal/service/archive"
	authsvc "faq-assist-backend/internal/service/auth"
)

type memoryArchiveRepository struct {
	mu    sync.Mutex
	items map[string]model.ArchivedSessionItem
}

func newMemoryArchiveRepository() *memoryArchiveRepository {
	return &memoryArchiveRepository{items: make(map[string]model.ArchivedSessionItem)}
}

func (m *memoryArchiveRepository) PutArchivedSession(ctx context.Context, item model.ArchivedSessionItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.SessionID] = item
	return nil
}

func (m *memoryArchiveRepository) GetArchivedSession(ctx context.Context, sessionID string) (model.ArchivedSessionItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[sessionID]
	if !ok {
		return model.ArchivedSessionItem{}, archivesvc.ErrNotFound
	}
	return item, nil
}

func (m *memoryArchiveRepository) ListArchivedSessions(ctx context.Context) ([]model.ArchivedSessionItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]model.ArchivedSessionItem, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	return items, nil
}

func (m *memoryArchiveRepository) DeleteArchivedSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, sessionID)
	return nil
}

func setupArchiveEnv(t *testing.T) (http.Handler, *archivesvc.Service, *authsvc.Service, func()) {
	t.Helper()
	setupTestJWT(t)

	archiveService := archivesvc.NewWithRepository(newMemoryArchiveRepository(), func() time.Time {
		return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	})
	authService := authsvc.NewWithRepository(newTestUserRepository(), fixedTime)

	handlers := NewArchiveEndpoints(archiveService, authService, "/api/v1")

	queueManager := queue.NewRequestQueueManager(10, 1)
	server := api.NewAPIServer(":0", queueManager, nil, nil, nil, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/archives", server.MakeHTTPHandleFunc(handlers.Archives, middleware.ValidateAnyJWT))
	mux.HandleFunc("/api/v1/archives/", server.MakeHTTPHandleFunc(handlers.Archive, middleware.ValidateAnyJWT))

	return mux, archiveService, authService, queueManager.Shutdown
}

func seedArchive(t *testing.T, svc *archivesvc.Service, sessionID, userID string) {
	t.Helper()
	_, err := svc.Archive(context.Background(), archivesvc.ArchiveParams{
		SessionID: sessionID,
		UserID:    userID,
		Messages: []model.ChatMessage{
			{ID: "m1", Content: "hello", Author: model.AuthorAssistant, Timestamp: time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)},
			{ID: "m2", Content: "hi", Author: model.AuthorCustomer, Timestamp: time.Date(2024, 2, 28, 10, 1, 0, 0, time.UTC)},
		},
		StartTime: time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 2, 28, 10, 5, 0, 0, time.UTC),
		Reason:    "user_ended",
	})
	if err != nil {
		t.Fatalf("seed archive: %v", err)
	}
}

func registerFor(t *testing.T, authService *authsvc.Service, email, role string) (string, string) {
	t.Helper()
	result, err := authService.Register(context.Background(), authsvc.RegisterParams{
		Name:     "Someone",
		Email:    email,
		Password: "Sup3rS3cret!",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return result.User.UserID, result.Tokens.AccessToken
}

func TestArchiveListScopesByRole(t *testing.T) {
	handler, archiveService, authService, cleanup := setupArchiveEnv(t)
	defer cleanup()

	customerID, customerTok := registerFor(t, authService, "marta@example.com", authsvc.RoleCustomer)
	_, agentTok := registerFor(t, authService, "agent@example.com", authsvc.RoleAgent)

	seedArchive(t, archiveService, "sess-own", customerID)
	seedArchive(t, archiveService, "sess-other", "someone-else")

	mine := doJSONRequest[dto.ListArchivedSessionsResponse](t, handler, http.MethodGet, "/api/v1/archives", nil, bearer(customerTok), http.StatusOK)
	if len(mine.Sessions) != 1 || mine.Sessions[0].SessionID != "sess-own" {
		t.Fatalf("expected only the customer's archive, got %+v", mine.Sessions)
	}

	all := doJSONRequest[dto.ListArchivedSessionsResponse](t, handler, http.MethodGet, "/api/v1/archives", nil, bearer(agentTok), http.StatusOK)
	if len(all.Sessions) != 2 {
		t.Fatalf("expected agent to see both archives, got %d", len(all.Sessions))
	}
}

func TestArchiveGetHidesForeignSessions(t *testing.T) {
	handler, archiveService, authService, cleanup := setupArchiveEnv(t)
	defer cleanup()

	customerID, customerTok := registerFor(t, authService, "marta@example.com", authsvc.RoleCustomer)
	_, agentTok := registerFor(t, authService, "agent@example.com", authsvc.RoleAgent)

	seedArchive(t, archiveService, "sess-own", customerID)
	seedArchive(t, archiveService, "sess-other", "someone-else")

	own := doJSONRequest[dto.ArchivedSessionResponse](t, handler, http.MethodGet, "/api/v1/archives/sess-own", nil, bearer(customerTok), http.StatusOK)
	if own.SessionID != "sess-own" || len(own.Messages) != 2 {
		t.Fatalf("unexpected archive payload: %+v", own)
	}

	doJSONRequest[api.ApiError](t, handler, http.MethodGet, "/api/v1/archives/sess-other", nil, bearer(customerTok), http.StatusForbidden)

	foreign := doJSONRequest[dto.ArchivedSessionResponse](t, handler, http.MethodGet, "/api/v1/archives/sess-other", nil, bearer(agentTok), http.StatusOK)
	if foreign.SessionID != "sess-other" {
		t.Fatalf("expected agent access to any archive, got %+v", foreign)
	}
}

func TestArchiveDeleteAgentOnly(t *testing.T) {
	handler, archiveService, authService, cleanup := setupArchiveEnv(t)
	defer cleanup()

	customerID, customerTok := registerFor(t, authService, "marta@example.com", authsvc.RoleCustomer)
	_, agentTok := registerFor(t, authService, "agent@example.com", authsvc.RoleAgent)

	seedArchive(t, archiveService, "sess-own", customerID)

	doJSONRequest[api.ApiError](t, handler, http.MethodDelete, "/api/v1/archives/sess-own", nil, bearer(customerTok), http.StatusForbidden)

	doJSONRequest[ApiMessageResponse](t, handler, http.MethodDelete, "/api/v1/archives/sess-own", nil, bearer(agentTok), http.StatusOK)

	doJSONRequest[api.ApiError](t, handler, http.MethodGet, "/api/v1/archives/sess-own", nil, bearer(agentTok), http.StatusNotFound)
}
