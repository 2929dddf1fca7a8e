package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"faq-assist-backend/internal/dto"
	"faq-assist-backend/internal/model"
	authsvc "faq-assist-backend/internal/service/auth"
	sessionsvc "faq-assist-backend/internal/service/session"
)

type SessionEndpoints interface {
	Session(http.ResponseWriter, *http.Request) error
	Chat(http.ResponseWriter, *http.Request) error
	Feedback(http.ResponseWriter, *http.Request) error
	Language(http.ResponseWriter, *http.Request) error
	Document(http.ResponseWriter, *http.Request) error
}

type sessionEndpoints struct {
	sessions *sessionsvc.Service
	auth     *authsvc.Service
}

func NewSessionEndpoints(sessions *sessionsvc.Service, auth *authsvc.Service) SessionEndpoints {
	return &sessionEndpoints{sessions: sessions, auth: auth}
}

// Session dispatches the session lifecycle: POST starts (replacing any
// active session), GET fetches the current one, DELETE ends and archives.
func (h *sessionEndpoints) Session(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost:   h.handleStart,
		http.MethodGet:    h.handleGet,
		http.MethodDelete: h.handleEnd,
	})
}

func (h *sessionEndpoints) Chat(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleChat,
	})
}

func (h *sessionEndpoints) Feedback(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleFeedback,
	})
}

func (h *sessionEndpoints) Language(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPut: h.handleLanguage,
	})
}

func (h *sessionEndpoints) Document(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleDocument,
	})
}

func (h *sessionEndpoints) handleStart(w http.ResponseWriter, r *http.Request) error {
	identity, httpErr := h.identity(r)
	if httpErr != nil {
		return httpErr
	}

	var req dto.StartSessionRequest
	if r.Body != nil {
		// The language is optional, an empty body means "use the default".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	user, err := h.auth.Me(r.Context(), identity)
	if err != nil {
		return h.serviceError(err)
	}
	language := req.Language
	if language == "" {
		language = user.Language
	}

	sess, err := h.sessions.Start(r.Context(), sessionsvc.StartParams{
		UserID:   identity.UserID,
		UserName: user.Name,
		Email:    identity.Email,
		Language: language,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (h *sessionEndpoints) handleGet(w http.ResponseWriter, r *http.Request) error {
	identity, httpErr := h.identity(r)
	if httpErr != nil {
		return httpErr
	}

	sess, err := h.sessions.Get(r.Context(), identity.UserID)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *sessionEndpoints) handleEnd(w http.ResponseWriter, r *http.Request) error {
	identity, httpErr := h.identity(r)
	if httpErr != nil {
		return httpErr
	}

	var req dto.EndSessionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	archived, err := h.sessions.End(r.Context(), identity.UserID, req.Reason)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.EndSessionResponse{Ended: true, Archived: archived})
}

func (h *sessionEndpoints) handleChat(w http.ResponseWriter, r *http.Request) error {
	identity, httpErr := h.identity(r)
	if httpErr != nil {
		return httpErr
	}

	var req dto.PostChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode chat request: %w", err),
		}
	}

	turn, err := h.sessions.Chat(r.Context(), identity.UserID, req.Query)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.ChatTurnResponse{
		UserMessage:      toMessageResponse(turn.UserMessage),
		AssistantMessage: toMessageResponse(turn.AssistantMessage),
		Escalated:        turn.Escalated,
		ServiceRequestID: turn.ServiceRequestID,
		Disabled:         turn.Disabled,
	})
}

func (h *sessionEndpoints) handleFeedback(w http.ResponseWriter, r *http.Request) error {
	identity, httpErr := h.identity(r)
	if httpErr != nil {
		return httpErr
	}

	var req dto.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode feedback request: %w", err),
		}
	}

	result, err := h.sessions.Feedback(r.Context(), identity.UserID, req.MessageID, model.Feedback(req.Feedback))
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.FeedbackResponse{
		DislikeStreak:    result.DislikeStreak,
		Escalated:        result.Escalated,
		ServiceRequestID: result.ServiceRequestID,
		Disabled:         result.Disabled,
	})
}

func (h *sessionEndpoints) handleLanguage(w http.ResponseWriter, r *http.Request) error {
	identity, httpErr := h.identity(r)
	if httpErr != nil {
		return httpErr
	}

	var req dto.ChangeLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode language request: %w", err),
		}
	}

	sess, err := h.sessions.ChangeLanguage(r.Context(), identity.UserID, req.Language)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *sessionEndpoints) handleDocument(w http.ResponseWriter, r *http.Request) error {
	identity, httpErr := h.identity(r)
	if httpErr != nil {
		return httpErr
	}

	var req dto.AttachDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode document request: %w", err),
		}
	}

	if err := h.sessions.AttachDocument(r.Context(), identity.UserID, req.Filename, req.ExtractedText); err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "Document attached."})
}

func (h *sessionEndpoints) identity(r *http.Request) (authsvc.Identity, *HTTPError) {
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

func (h *sessionEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	if authErr, ok := err.(*authsvc.Error); ok {
		return (&authEndpoints{}).serviceError(authErr)
	}

	svcErr, ok := err.(*sessionsvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("session service: %w", err),
		}
	}

	var logErr error
	if svcErr.Err != nil {
		logErr = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		logErr = svcErr
	}

	switch svcErr.Code {
	case sessionsvc.ErrorCodeValidation:
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: svcErr.Message, ErrorLog: logErr}
	case sessionsvc.ErrorCodeNotFound:
		return &HTTPError{StatusCode: http.StatusNotFound, Message: svcErr.Message, ErrorLog: logErr}
	case sessionsvc.ErrorCodeConflict:
		return &HTTPError{StatusCode: http.StatusConflict, Message: svcErr.Message, ErrorLog: logErr}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: logErr}
	}
}
