package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"faq-assist-backend/internal/api"
	"faq-assist-backend/internal/api/middleware"
	"faq-assist-backend/internal/dto"
	internaljwt "faq-assist-backend/internal/jwt"
	"faq-assist-backend/internal/model"
	"faq-assist-backend/internal/queue"
	authsvc "faq-assist-backend/internal/service/auth"
)

type testUserRepository struct {
	mu    sync.Mutex
	users map[string]model.UserItem
}

func newTestUserRepository() *testUserRepository {
	return &testUserRepository{users: make(map[string]model.UserItem)}
}

func (m *testUserRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = user
	return nil
}

func (m *testUserRepository) FindUserByEmail(ctx context.Context, email string, role string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email && user.Role == role {
			return user, nil
		}
	}
	return model.UserItem{}, authsvc.ErrNotFound
}

func (m *testUserRepository) GetUser(ctx context.Context, userID string) (model.UserItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return model.UserItem{}, authsvc.ErrNotFound
	}
	return user, nil
}

func fixedTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func setupTestJWT(t *testing.T) {
	t.Helper()
	internaljwt.Configure("test-customer-secret", "test-agent-secret", nil)
	authsvc.SetTokenIssuer(func(user internaljwt.User, role internaljwt.Role, validUntil int64) (internaljwt.TokenResponse, error) {
		token, err := internaljwt.CreateToken(user, role, validUntil)
		if err != nil {
			return internaljwt.TokenResponse{}, err
		}
		return internaljwt.TokenResponse{AccessToken: token}, nil
	})
	t.Cleanup(func() {
		authsvc.SetTokenIssuer(nil)
	})
}

func setupAuthHandler(t *testing.T, svc *authsvc.Service) (http.Handler, func()) {
	t.Helper()

	handlers := NewAuthEndpoints(svc)

	queueManager := queue.NewRequestQueueManager(10, 1)
	server := api.NewAPIServer(":0", queueManager, nil, nil, nil, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/register", server.MakeHTTPHandleFunc(handlers.Register))
	mux.HandleFunc("/api/v1/auth/login", server.MakeHTTPHandleFunc(handlers.Login))
	mux.HandleFunc("/api/v1/auth/me", server.MakeHTTPHandleFunc(handlers.Me, middleware.ValidateAnyJWT))

	return mux, func() {
		queueManager.Shutdown()
	}
}

func doJSONRequest[T any](t *testing.T, handler http.Handler, method, target string, body interface{}, headers map[string]string, expectedStatus int) T {
	t.Helper()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		payload = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != expectedStatus {
		t.Fatalf("expected status %d, got %d: %s", expectedStatus, rec.Code, rec.Body.String())
	}

	var result T
	if expectedStatus != http.StatusNoContent {
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return result
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func jsonRequest(t *testing.T, method, target string, body interface{}, headers map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		payload = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, httptest.NewRecorder()
}

func TestAuthEndpointsEndToEnd(t *testing.T) {
	setupTestJWT(t)
	service := authsvc.NewWithRepository(newTestUserRepository(), fixedTime)

	handler, cleanup := setupAuthHandler(t, service)
	defer cleanup()

	registerPayload := map[string]interface{}{
		"name":     "Marta Diaz",
		"email":    "Marta@Example.com",
		"password": "Sup3rS3cret!",
		"language": "es",
	}

	registerResp := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/v1/auth/register", registerPayload, nil, http.StatusCreated)

	if registerResp.User.Email != "marta@example.com" {
		t.Fatalf("expected normalized email, got %s", registerResp.User.Email)
	}
	if registerResp.User.Role != authsvc.RoleCustomer {
		t.Fatalf("expected default customer role, got %s", registerResp.User.Role)
	}
	if registerResp.AccessToken == "" {
		t.Fatal("expected access token in register response")
	}

	loginPayload := map[string]interface{}{
		"email":    "marta@example.com",
		"password": "Sup3rS3cret!",
	}
	loginResp := doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/v1/auth/login", loginPayload, nil, http.StatusOK)
	if loginResp.AccessToken == "" {
		t.Fatal("expected access token in login response")
	}

	meResp := doJSONRequest[dto.UserResponse](t, handler, http.MethodGet, "/api/v1/auth/me", nil, bearer(loginResp.AccessToken), http.StatusOK)
	if meResp.Email != "marta@example.com" {
		t.Fatalf("expected email marta@example.com, got %s", meResp.Email)
	}
	if meResp.Language != "es" {
		t.Fatalf("expected language es, got %s", meResp.Language)
	}
}

func TestAuthRegisterDuplicateEmailConflicts(t *testing.T) {
	setupTestJWT(t)
	service := authsvc.NewWithRepository(newTestUserRepository(), fixedTime)

	handler, cleanup := setupAuthHandler(t, service)
	defer cleanup()

	payload := map[string]interface{}{
		"name":     "Marta Diaz",
		"email":    "marta@example.com",
		"password": "Sup3rS3cret!",
	}

	doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/v1/auth/register", payload, nil, http.StatusCreated)
	doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/v1/auth/register", payload, nil, http.StatusConflict)
}

func TestAuthLoginWrongPasswordUnauthorized(t *testing.T) {
	setupTestJWT(t)
	service := authsvc.NewWithRepository(newTestUserRepository(), fixedTime)

	handler, cleanup := setupAuthHandler(t, service)
	defer cleanup()

	registerPayload := map[string]interface{}{
		"name":     "Marta Diaz",
		"email":    "marta@example.com",
		"password": "Sup3rS3cret!",
	}
	doJSONRequest[dto.AuthResponse](t, handler, http.MethodPost, "/api/v1/auth/register", registerPayload, nil, http.StatusCreated)

	loginPayload := map[string]interface{}{
		"email":    "marta@example.com",
		"password": "wrong",
	}
	doJSONRequest[api.ApiError](t, handler, http.MethodPost, "/api/v1/auth/login", loginPayload, nil, http.StatusUnauthorized)
}

func TestAuthMeRequiresToken(t *testing.T) {
	setupTestJWT(t)
	service := authsvc.NewWithRepository(newTestUserRepository(), fixedTime)

	handler, cleanup := setupAuthHandler(t, service)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
