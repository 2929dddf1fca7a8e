package auth

import (
	"strings"

	internaljwt "faq-assist-backend/internal/jwt"

	"github.com/golang-jwt/jwt"
)

// IdentityFromAuthorizationHeader resolves the caller from a "Bearer ..."
// header, trying the customer secret first and the agent secret second.
func (s *Service) IdentityFromAuthorizationHeader(header string) (Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "missing authorization header", nil)
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return s.IdentityFromToken(token)
}

func (s *Service) IdentityFromToken(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "missing token", nil)
	}

	var claims jwt.MapClaims
	var err error
	var role string
	for _, r := range []struct {
		jwtRole internaljwt.Role
		name    string
	}{
		{internaljwt.RoleCustomer, RoleCustomer},
		{internaljwt.RoleAgent, RoleAgent},
	} {
		claims, err = internaljwt.ParseToken(token, r.jwtRole)
		if err == nil {
			role = r.name
			break
		}
	}
	if err != nil {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid token", err)
	}

	identity := Identity{Role: role}
	if id, ok := claims["id"].(string); ok {
		identity.UserID = id
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if identity.UserID == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "token carries no identity", nil)
	}
	return identity, nil
}
