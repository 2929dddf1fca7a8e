// Package auth registers and authenticates the two kinds of people talking
// to this system: customers asking questions and support agents answering
// escalations. Tokens are role-scoped; an agent token never opens customer
// endpoints and vice versa.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"faq-assist-backend/internal/database"
	internaljwt "faq-assist-backend/internal/jwt"
	"faq-assist-backend/internal/model"

	"github.com/google/uuid"
)

const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

var createTokenWithRefresh = internaljwt.CreateTokenWithRefresh

// SetTokenIssuer swaps the token factory, for tests that have no Redis.
func SetTokenIssuer(issuer func(internaljwt.User, internaljwt.Role, int64) (internaljwt.TokenResponse, error)) {
	if issuer == nil {
		createTokenWithRefresh = internaljwt.CreateTokenWithRefresh
		return
	}
	createTokenWithRefresh = issuer
}

func New(db *database.Database) *Service {
	return &Service{
		repo: NewDynamoRepository(db),
		now:  time.Now,
	}
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		now:  now,
	}
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (AuthResult, error) {
	email := normalizeEmail(params.Email)
	password := strings.TrimSpace(params.Password)
	name := strings.TrimSpace(params.Name)
	role := normalizeRole(params.Role)

	if email == "" || password == "" || name == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}
	if role == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "role must be customer or agent", nil)
	}

	if _, err := s.repo.FindUserByEmail(ctx, email, role); err == nil {
		return AuthResult{}, newError(ErrorCodeConflict, "account already exists", nil)
	} else if !errors.Is(err, ErrNotFound) {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to check existing account", err)
	}

	passwordHash, err := internaljwt.HashPassword(password)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to prepare user", err)
	}

	user := model.UserItem{
		UserID:       uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		Language:     params.Language,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to save user", err)
	}

	tokens, err := createTokenWithRefresh(internaljwt.User{
		Id:           user.UserID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}, jwtRole(role), 0)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}

	return AuthResult{User: user, Tokens: tokens}, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (AuthResult, error) {
	email := normalizeEmail(params.Email)
	password := strings.TrimSpace(params.Password)
	role := normalizeRole(params.Role)

	if email == "" || password == "" || role == "" {
		return AuthResult{}, newError(ErrorCodeValidation, "missing required fields", nil)
	}

	user, err := s.repo.FindUserByEmail(ctx, email, role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
		}
		return AuthResult{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}

	if !internaljwt.ValidatePassword(user.PasswordHash, password) {
		return AuthResult{}, newError(ErrorCodeUnauthorized, "invalid credentials", nil)
	}

	tokens, err := createTokenWithRefresh(internaljwt.User{
		Id:           user.UserID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}, jwtRole(role), 0)
	if err != nil {
		return AuthResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}

	return AuthResult{User: user, Tokens: tokens}, nil
}

func (s *Service) Me(ctx context.Context, identity Identity) (model.UserItem, error) {
	userID := strings.TrimSpace(identity.UserID)
	if userID == "" {
		return model.UserItem{}, newError(ErrorCodeUnauthorized, "invalid user identity", nil)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.UserItem{}, newError(ErrorCodeNotFound, "user not found", err)
		}
		return model.UserItem{}, newError(ErrorCodeInternal, "failed to fetch user", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "", RoleCustomer:
		return RoleCustomer
	case RoleAgent:
		return RoleAgent
	default:
		return ""
	}
}

func jwtRole(role string) internaljwt.Role {
	if role == RoleAgent {
		return internaljwt.RoleAgent
	}
	return internaljwt.RoleCustomer
}
