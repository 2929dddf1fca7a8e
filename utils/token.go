package utils

import "github.com/google/uuid"

// CreateToken returns an opaque random token. Two UUIDs are concatenated so
// the result is long enough to serve as a confirmation or refresh token.
func CreateToken() string {
	return uuid.NewString() + uuid.NewString()
}
