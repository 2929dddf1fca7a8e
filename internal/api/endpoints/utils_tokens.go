package endpoints

import (
	"net/http"
	"strings"
)

// ExtractTokenFromHeaders returns the bearer token from the Authorization
// header, or "" when the header is missing or not a bearer scheme.
func ExtractTokenFromHeaders(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return token
}
