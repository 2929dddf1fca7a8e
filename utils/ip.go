package utils

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP resolves the originating client address, preferring the first
// hop recorded in X-Forwarded-For when the request came through a proxy.
func RealClientIP(r *http.Request) string {
	if xfwd := r.Header.Get("X-Forwarded-For"); xfwd != "" {
		first, _, _ := strings.Cut(xfwd, ",")
		return strings.TrimSpace(first)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
