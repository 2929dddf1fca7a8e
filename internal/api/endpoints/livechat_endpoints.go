package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"faq-assist-backend/internal/pubsub"
	authsvc "faq-assist-backend/internal/service/auth"
	ticketsvc "faq-assist-backend/internal/service/ticket"
	"faq-assist-backend/internal/websocket"
)

type LiveChatEndpoints interface {
	ChatWebsocket(http.ResponseWriter, *http.Request) error
	NotificationsWebsocket(http.ResponseWriter, *http.Request) error
	Links(http.ResponseWriter, *http.Request) error
}

type liveChatEndpoints struct {
	handler  *websocket.Handler
	tickets  *ticketsvc.Service
	auth     *authsvc.Service
	broker   pubsub.Broker
	wsPrefix string
}

func NewLiveChatEndpoints(
	handler *websocket.Handler,
	tickets *ticketsvc.Service,
	auth *authsvc.Service,
	broker pubsub.Broker,
	prefix string,
) LiveChatEndpoints {
	base := strings.TrimRight(prefix, "/")
	return &liveChatEndpoints{
		handler:  handler,
		tickets:  tickets,
		auth:     auth,
		broker:   broker,
		wsPrefix: base + "/ws/chat/",
	}
}

// ChatWebsocket attaches a caller to the live chat of a service request. The
// link is keyed by the request id; the first agent joining acknowledges the
// request so the dashboard shows it in progress.
func (h *liveChatEndpoints) ChatWebsocket(w http.ResponseWriter, r *http.Request) error {
	if h.handler == nil {
		return &HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "Live chat not available",
			ErrorLog:   fmt.Errorf("live chat handler missing"),
		}
	}

	requestID, httpErr := h.extractLinkPath(r.URL.Path)
	if httpErr != nil {
		return httpErr
	}

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Missing token",
			ErrorLog:   fmt.Errorf("live chat %s: no token", requestID),
		}
	}
	identity, err := h.auth.IdentityFromToken(token)
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid token",
			ErrorLog:   fmt.Errorf("live chat %s: %w", requestID, err),
		}
	}

	item, err := h.tickets.Get(r.Context(), requestID)
	if err != nil {
		return h.ticketError(err)
	}

	switch r.URL.Query().Get("type") {
	case "customer":
		if identity.UserID != item.CustomerID {
			return &HTTPError{
				StatusCode: http.StatusForbidden,
				Message:    "Service request belongs to another customer",
				ErrorLog:   fmt.Errorf("live chat %s: owner %s, caller %s", requestID, item.CustomerID, identity.UserID),
			}
		}
		h.handler.OpenLink(requestID, item.CustomerLanguage)
		h.handler.JoinLink(w, r, requestID, identity.UserID, websocket.RoleCustomer)
		return nil

	case "agent":
		if identity.Role != authsvc.RoleAgent {
			return &HTTPError{
				StatusCode: http.StatusForbidden,
				Message:    "Agent credentials required",
				ErrorLog:   fmt.Errorf("live chat %s: %s joined as agent with role %s", requestID, identity.UserID, identity.Role),
			}
		}
		h.handler.OpenLink(requestID, item.CustomerLanguage)
		if _, err := h.tickets.Acknowledge(r.Context(), requestID); err != nil {
			// A resolved request still allows a followup chat.
			var svcErr *ticketsvc.Error
			if !errors.As(err, &svcErr) || svcErr.Code != ticketsvc.ErrorCodeConflict {
				return h.ticketError(err)
			}
		}
		h.handler.JoinLink(w, r, requestID, identity.UserID, websocket.RoleAgent)
		return nil

	default:
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Missing or invalid type parameter",
			ErrorLog:   fmt.Errorf("live chat %s: invalid type %q", requestID, r.URL.Query().Get("type")),
		}
	}
}

// NotificationsWebsocket streams ticket events to agent dashboards.
func (h *liveChatEndpoints) NotificationsWebsocket(w http.ResponseWriter, r *http.Request) error {
	if h.broker == nil {
		return &HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    "Notifications not available",
			ErrorLog:   fmt.Errorf("notification broker missing"),
		}
	}

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Missing token",
			ErrorLog:   fmt.Errorf("notifications: no token"),
		}
	}
	identity, err := h.auth.IdentityFromToken(token)
	if err != nil {
		return &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid token",
			ErrorLog:   fmt.Errorf("notifications: %w", err),
		}
	}
	if identity.Role != authsvc.RoleAgent {
		return &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Agent credentials required",
			ErrorLog:   fmt.Errorf("notifications: %s has role %s", identity.UserID, identity.Role),
		}
	}

	websocket.ServeNotifications(w, r, h.broker)
	return nil
}

func (h *liveChatEndpoints) Links(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			h.handler.GetLinks(w, r)
			return nil
		},
	})
}

func (h *liveChatEndpoints) extractLinkPath(path string) (string, *HTTPError) {
	trimmed := strings.TrimPrefix(path, h.wsPrefix)
	if trimmed == path {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Live chat not found",
			ErrorLog:   fmt.Errorf("live chat path mismatch: %s", path),
		}
	}
	linkID := strings.Trim(trimmed, "/")
	if linkID == "" || strings.Contains(linkID, "/") {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Live chat not found",
			ErrorLog:   fmt.Errorf("invalid live chat path: %s", path),
		}
	}
	return linkID, nil
}

func (h *liveChatEndpoints) ticketError(err error) error {
	return (&ticketEndpoints{}).serviceError(err)
}
