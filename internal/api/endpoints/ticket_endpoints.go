package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"faq-assist-backend/internal/dto"
	"faq-assist-backend/internal/model"
	"faq-assist-backend/internal/service/escalation"
	ticketsvc "faq-assist-backend/internal/service/ticket"
)

type TicketEndpoints interface {
	Requests(http.ResponseWriter, *http.Request) error
	Request(http.ResponseWriter, *http.Request) error
	Stats(http.ResponseWriter, *http.Request) error
}

type TicketPaths struct {
	CollectionPath string
	ItemPrefix     string
	StatsPath      string
}

type ticketEndpoints struct {
	service *ticketsvc.Service
	paths   TicketPaths
}

func NewTicketEndpoints(service *ticketsvc.Service, prefix string) TicketEndpoints {
	base := strings.TrimRight(prefix, "/")
	return &ticketEndpoints{
		service: service,
		paths: TicketPaths{
			CollectionPath: base + "/requests",
			ItemPrefix:     base + "/requests/",
			StatsPath:      base + "/requests/stats",
		},
	}
}

func (h *ticketEndpoints) Requests(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleList,
		http.MethodPost: h.handleCreate,
	})
}

func (h *ticketEndpoints) Request(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:    h.handleGet,
		http.MethodPatch:  h.handleUpdate,
		http.MethodDelete: h.handleDelete,
	})
}

func (h *ticketEndpoints) Stats(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleStats,
	})
}

func (h *ticketEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	items := h.service.List(r.Context())

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	resp := dto.ListServiceRequestsResponse{Requests: []dto.ServiceRequestResponse{}}
	for _, item := range items {
		if status != "" && string(item.Status) != status {
			continue
		}
		resp.Requests = append(resp.Requests, toServiceRequestResponse(item))
	}

	return WriteJSON(w, http.StatusOK, resp)
}

// handleCreate opens a service request on behalf of a backend system. The
// risk payload runs through the same priority derivation as chat escalations.
func (h *ticketEndpoints) handleCreate(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateServiceRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode create request: %w", err),
		}
	}

	item, err := h.service.Create(r.Context(), ticketsvc.CreateParams{
		CustomerID:    strings.TrimSpace(req.CustomerID),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		ChatHistory:   fromMessageResponses(req.ChatHistory),
		Trigger: &escalation.Trigger{
			Kind:       escalation.KindBackendFlagged,
			Confidence: 1.0,
			Reason:     req.EscalationReason,
		},
		RiskType:       req.RiskType,
		Priority:       model.Priority(req.Priority),
		DocumentName:   req.DocumentName,
		DocumentText:   req.DocumentText,
		IdempotencyKey: strings.TrimSpace(req.IdempotencyKey),
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, dto.CreateServiceRequestResponse{
		Success:          true,
		ServiceRequestID: item.RequestID,
	})
}

func (h *ticketEndpoints) handleGet(w http.ResponseWriter, r *http.Request) error {
	requestID, err := h.extractRequestPath(r.URL.Path)
	if err != nil {
		return err
	}

	item, svcErr := h.service.Get(r.Context(), requestID)
	if svcErr != nil {
		return h.serviceError(svcErr)
	}

	return WriteJSON(w, http.StatusOK, toServiceRequestResponse(item))
}

func (h *ticketEndpoints) handleUpdate(w http.ResponseWriter, r *http.Request) error {
	requestID, err := h.extractRequestPath(r.URL.Path)
	if err != nil {
		return err
	}

	var req dto.UpdateServiceRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode update request: %w", err),
		}
	}

	var item model.ServiceRequestItem
	var svcErr error
	switch model.RequestStatus(req.Status) {
	case model.StatusInProgress:
		item, svcErr = h.service.Acknowledge(r.Context(), requestID)
		if svcErr == nil && req.AdminNotes != "" {
			item, svcErr = h.service.UpdateNotes(r.Context(), requestID, req.AdminNotes)
		}
	case model.StatusResolved:
		item, svcErr = h.service.Resolve(r.Context(), requestID, req.AdminNotes)
	case "":
		if req.AdminNotes == "" {
			return &HTTPError{
				StatusCode: http.StatusBadRequest,
				Message:    "Nothing to update",
				ErrorLog:   fmt.Errorf("update request %s: empty payload", requestID),
			}
		}
		item, svcErr = h.service.UpdateNotes(r.Context(), requestID, req.AdminNotes)
	default:
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid status",
			ErrorLog:   fmt.Errorf("update request %s: unknown status %q", requestID, req.Status),
		}
	}
	if svcErr != nil {
		return h.serviceError(svcErr)
	}

	return WriteJSON(w, http.StatusOK, toServiceRequestResponse(item))
}

// handleDelete is two-step: the first DELETE returns a confirmation token,
// a second DELETE carrying that token removes the request for good.
func (h *ticketEndpoints) handleDelete(w http.ResponseWriter, r *http.Request) error {
	requestID, err := h.extractRequestPath(r.URL.Path)
	if err != nil {
		return err
	}

	token := strings.TrimSpace(r.URL.Query().Get("confirmToken"))
	if token == "" {
		confirmToken, svcErr := h.service.RequestDelete(r.Context(), requestID)
		if svcErr != nil {
			return h.serviceError(svcErr)
		}
		return WriteJSON(w, http.StatusAccepted, dto.DeleteConfirmationResponse{
			RequestID:    requestID,
			ConfirmToken: confirmToken,
		})
	}

	if svcErr := h.service.ConfirmDelete(r.Context(), requestID, token); svcErr != nil {
		return h.serviceError(svcErr)
	}
	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Service request deleted."})
}

func (h *ticketEndpoints) handleStats(w http.ResponseWriter, r *http.Request) error {
	stats := h.service.StatsSnapshot(r.Context())
	return WriteJSON(w, http.StatusOK, dto.RequestStatsResponse{
		Total:      stats.Total,
		New:        stats.New,
		InProgress: stats.InProgress,
		Resolved:   stats.Resolved,
	})
}

func (h *ticketEndpoints) extractRequestPath(path string) (string, error) {
	trimmed := strings.TrimPrefix(path, h.paths.ItemPrefix)
	if trimmed == path {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Service request not found",
			ErrorLog:   fmt.Errorf("request path mismatch: %s", path),
		}
	}
	requestID := strings.Trim(trimmed, "/")
	if requestID == "" || strings.Contains(requestID, "/") {
		return "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Service request not found",
			ErrorLog:   fmt.Errorf("invalid request path: %s", path),
		}
	}
	return requestID, nil
}

func (h *ticketEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*ticketsvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("ticket service: %w", err),
		}
	}

	var logErr error
	if svcErr.Err != nil {
		logErr = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		logErr = svcErr
	}

	switch svcErr.Code {
	case ticketsvc.ErrorCodeValidation:
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: svcErr.Message, ErrorLog: logErr}
	case ticketsvc.ErrorCodeNotFound:
		return &HTTPError{StatusCode: http.StatusNotFound, Message: svcErr.Message, ErrorLog: logErr}
	case ticketsvc.ErrorCodeConflict:
		return &HTTPError{StatusCode: http.StatusConflict, Message: svcErr.Message, ErrorLog: logErr}
	case ticketsvc.ErrorCodeForbidden:
		return &HTTPError{StatusCode: http.StatusForbidden, Message: svcErr.Message, ErrorLog: logErr}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: logErr}
	}
}
