package archive

import (
	"context"
	"testing"
	"time"

	"faq-assist-backend/internal/model"
)

type memoryRepository struct {
	items map[string]model.ArchivedSessionItem
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{items: make(map[string]model.ArchivedSessionItem)}
}

func (r *memoryRepository) PutArchivedSession(ctx context.Context, item model.ArchivedSessionItem) error {
	r.items[item.SessionID] = item
	return nil
}

func (r *memoryRepository) GetArchivedSession(ctx context.Context, sessionID string) (model.ArchivedSessionItem, error) {
	item, ok := r.items[sessionID]
	if !ok {
		return model.ArchivedSessionItem{}, ErrNotFound
	}
	return item, nil
}

func (r *memoryRepository) ListArchivedSessions(ctx context.Context) ([]model.ArchivedSessionItem, error) {
	items := make([]model.ArchivedSessionItem, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	return items, nil
}

func (r *memoryRepository) DeleteArchivedSession(ctx context.Context, sessionID string) error {
	delete(r.items, sessionID)
	return nil
}

func testMessages() []model.ChatMessage {
	return []model.ChatMessage{
		{ID: "m1", Content: "hello", Author: model.AuthorCustomer, Timestamp: time.Now()},
		{ID: "m2", Content: "hi there", Author: model.AuthorAssistant, Timestamp: time.Now()},
	}
}

func TestArchiveAndGet(t *testing.T) {
	repo := newMemoryRepository()
	archivedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewWithRepository(repo, func() time.Time { return archivedAt })

	item, err := svc.Archive(context.Background(), ArchiveParams{
		SessionID: "sess-1",
		UserID:    "user-1",
		Messages:  testMessages(),
		StartTime: archivedAt.Add(-time.Hour),
		EndTime:   archivedAt,
		Reason:    "session ended",
	})
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if item.ArchivedAt != "2026-03-01T12:00:00Z" {
		t.Errorf("archivedAt = %s", item.ArchivedAt)
	}

	got, err := svc.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Errorf("got %d messages, want 2", len(got.Messages))
	}
}

func TestArchiveValidation(t *testing.T) {
	svc := NewWithRepository(newMemoryRepository(), time.Now)

	tests := []struct {
		name   string
		params ArchiveParams
	}{
		{"missing session id", ArchiveParams{UserID: "user-1", Messages: testMessages()}},
		{"missing user id", ArchiveParams{SessionID: "sess-1", Messages: testMessages()}},
		{"empty transcript", ArchiveParams{SessionID: "sess-1", UserID: "user-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Archive(context.Background(), tt.params)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			svcErr, ok := err.(*Error)
			if !ok || svcErr.Code != ErrorCodeValidation {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestListFiltersByUserNewestFirst(t *testing.T) {
	repo := newMemoryRepository()
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewWithRepository(repo, func() time.Time { return current })

	for i, user := range []string{"user-1", "user-2", "user-1"} {
		_, err := svc.Archive(context.Background(), ArchiveParams{
			SessionID: "sess-" + string(rune('a'+i)),
			UserID:    user,
			Messages:  testMessages(),
			StartTime: current.Add(-time.Hour),
			EndTime:   current,
		})
		if err != nil {
			t.Fatalf("Archive: %v", err)
		}
		current = current.Add(time.Minute)
	}

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d archives, want 3", len(all))
	}
	if all[0].SessionID != "sess-c" {
		t.Errorf("first archive = %s, want sess-c", all[0].SessionID)
	}

	mine, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List user-1: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("got %d archives for user-1, want 2", len(mine))
	}
}

func TestDeleteMissingArchive(t *testing.T) {
	svc := NewWithRepository(newMemoryRepository(), time.Now)
	err := svc.Delete(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected not_found error, got nil")
	}
	svcErr, ok := err.(*Error)
	if !ok || svcErr.Code != ErrorCodeNotFound {
		t.Fatalf("got %v, want not_found error", err)
	}
}
