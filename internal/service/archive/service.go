// Package archive stores finished chat sessions for later review. Archives
// are write-once; a stored transcript is never modified, only deleted.
package archive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"faq-assist-backend/internal/database"
	"faq-assist-backend/internal/model"
)

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation"
	ErrorCodeNotFound   ErrorCode = "not_found"
	ErrorCodeInternal   ErrorCode = "internal"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(db *database.Database) *Service {
	return NewWithRepository(NewDynamoRepository(db), time.Now)
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

type ArchiveParams struct {
	SessionID string
	UserID    string
	Messages  []model.ChatMessage
	StartTime time.Time
	EndTime   time.Time
	Reason    string
}

// Archive stores a finished session transcript. The archivedAt stamp is set
// here, not by the caller.
func (s *Service) Archive(ctx context.Context, params ArchiveParams) (model.ArchivedSessionItem, error) {
	if params.SessionID == "" {
		return model.ArchivedSessionItem{}, newError(ErrorCodeValidation, "session id is required", nil)
	}
	if params.UserID == "" {
		return model.ArchivedSessionItem{}, newError(ErrorCodeValidation, "user id is required", nil)
	}
	if len(params.Messages) == 0 {
		return model.ArchivedSessionItem{}, newError(ErrorCodeValidation, "cannot archive an empty session", nil)
	}

	item := model.ArchivedSessionItem{
		SessionID:  params.SessionID,
		UserID:     params.UserID,
		Messages:   params.Messages,
		StartTime:  params.StartTime.UTC().Format(time.RFC3339),
		EndTime:    params.EndTime.UTC().Format(time.RFC3339),
		ArchivedAt: s.now().UTC().Format(time.RFC3339),
		Reason:     params.Reason,
	}

	if err := s.repo.PutArchivedSession(ctx, item); err != nil {
		return model.ArchivedSessionItem{}, newError(ErrorCodeInternal, "failed to store archived session", err)
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (model.ArchivedSessionItem, error) {
	item, err := s.repo.GetArchivedSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.ArchivedSessionItem{}, newError(ErrorCodeNotFound, "archived session not found", err)
		}
		return model.ArchivedSessionItem{}, newError(ErrorCodeInternal, "failed to read archived session", err)
	}
	return item, nil
}

// List returns all archived sessions, most recently archived first. An empty
// userID returns everything; otherwise only that user's sessions.
func (s *Service) List(ctx context.Context, userID string) ([]model.ArchivedSessionItem, error) {
	items, err := s.repo.ListArchivedSessions(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list archived sessions", err)
	}

	filtered := items[:0]
	for _, item := range items {
		if userID == "" || item.UserID == userID {
			filtered = append(filtered, item)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].ArchivedAt == filtered[j].ArchivedAt {
			return filtered[i].SessionID > filtered[j].SessionID
		}
		return filtered[i].ArchivedAt > filtered[j].ArchivedAt
	})
	return filtered, nil
}

func (s *Service) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return err
	}
	if err := s.repo.DeleteArchivedSession(ctx, sessionID); err != nil {
		return newError(ErrorCodeInternal, "failed to delete archived session", err)
	}
	return nil
}
