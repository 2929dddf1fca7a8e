package endpoints

import (
	"fmt"
	"net/http"
	"strings"

	"faq-assist-backend/internal/dto"
	archivesvc "faq-assist-backend/internal/service/archive"
	authsvc "faq-assist-backend/internal/service/auth"
)

type ArchiveEndpoints interface {
	Archives(http.ResponseWriter, *http.Request) error
	Archive(http.ResponseWriter, *http.Request) error
}

type archiveEndpoints struct {
	service *archivesvc.Service
	auth    *authsvc.Service
	prefix  string
}

func NewArchiveEndpoints(service *archivesvc.Service, auth *authsvc.Service, prefix string) ArchiveEndpoints {
	base := strings.TrimRight(prefix, "/")
	return &archiveEndpoints{service: service, auth: auth, prefix: base + "/archives/"}
}

func (h *archiveEndpoints) Archives(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleList,
	})
}

func (h *archiveEndpoints) Archive(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:    h.handleGet,
		http.MethodDelete: h.handleDelete,
	})
}

// handleList scopes the listing by role: agents see every archive, customers
// only their own.
func (h *archiveEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.identity(r)
	if err != nil {
		return err
	}

	userID := identity.UserID
	if identity.Role == authsvc.RoleAgent {
		userID = strings.TrimSpace(r.URL.Query().Get("userId"))
	}

	items, svcErr := h.service.List(r.Context(), userID)
	if svcErr != nil {
		return h.serviceError(svcErr)
	}

	resp := dto.ListArchivedSessionsResponse{Sessions: make([]dto.ArchivedSessionResponse, len(items))}
	for i, item := range items {
		resp.Sessions[i] = toArchivedSessionResponse(item)
	}

	return WriteJSON(w, http.StatusOK, resp)
}

func (h *archiveEndpoints) handleGet(w http.ResponseWriter, r *http.Request) error {
	identity, httpErr := h.identity(r)
	if httpErr != nil {
		return httpErr
	}

	sessionID, httpErr := h.extractSessionPath(r.URL.Path)
	if httpErr != nil {
		return httpErr
	}

	item, err := h.service.Get(r.Context(), sessionID)
	if err != nil {
		return h.serviceError(err)
	}
	if identity.Role != authsvc.RoleAgent && item.UserID != identity.UserID {
		return &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Archived session belongs to another user",
			ErrorLog:   fmt.Errorf("archive %s: owner %s, caller %s", sessionID, item.UserID, identity.UserID),
		}
	}

	return WriteJSON(w, http.StatusOK, toArchivedSessionResponse(item))
}

func (h *archiveEndpoints) handleDelete(w http.ResponseWriter, r *http.Request) error {
	identity, httpErr := h.identity(r)
	if httpErr != nil {
		return httpErr
	}
	if identity.Role != authsvc.RoleAgent {
		return &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Only agents may delete archives",
			ErrorLog:   fmt.Errorf("archive delete by %s role %s", identity.UserID, identity.Role),
		}
	}

	sessionID, httpErr := h.extractSessionPath(r.URL.Path)
	if httpErr != nil {
		return httpErr
	}

	if err := h.service.Delete(r.Context(), sessionID); err != nil {
		return h.serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Archived session deleted."})
}

func (h *archiveEndpoints) identity(r *http.Request) (authsvc.Identity, *HTTPError) {
	identity, err := h.auth.IdentityFromAuthorizationHeader(r.Header.Get("Authorization"))
	if err != nil {
		return authsvc.Identity{}, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Authorization required",
			ErrorLog:   fmt.Errorf("resolve identity: %w", err),
		}
	}
	return identity, nil
}

func (h *archiveEndpoints) extractSessionPath(path string) (string, *HTTPError) {
	trimmed := strings.TrimPrefix(path, h.prefix)
	if trimmed == path {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Archived session not found",
			ErrorLog:   fmt.Errorf("archive path mismatch: %s", path),
		}
	}
	sessionID := strings.Trim(trimmed, "/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Archived session not found",
			ErrorLog:   fmt.Errorf("invalid archive path: %s", path),
		}
	}
	return sessionID, nil
}

func (h *archiveEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*archivesvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("archive service: %w", err),
		}
	}

	var logErr error
	if svcErr.Err != nil {
		logErr = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		logErr = svcErr
	}

	switch svcErr.Code {
	case archivesvc.ErrorCodeValidation:
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: svcErr.Message, ErrorLog: logErr}
	case archivesvc.ErrorCodeNotFound:
		return &HTTPError{StatusCode: http.StatusNotFound, Message: svcErr.Message, ErrorLog: logErr}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: logErr}
	}
}
