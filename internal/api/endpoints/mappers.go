package endpoints

import (
	"time"

	"faq-assist-backend/internal/dto"
	"faq-assist-backend/internal/model"
	"faq-assist-backend/internal/service/session"
)

func toMessageResponse(msg model.ChatMessage) dto.MessageResponse {
	return dto.MessageResponse{
		MessageID:       msg.ID,
		Content:         msg.Content,
		Author:          string(msg.Author),
		Timestamp:       msg.Timestamp.UTC().Format(time.RFC3339),
		Escalated:       msg.Escalated,
		ConfidenceScore: msg.ConfidenceScore,
		ConfidenceLevel: string(msg.ConfidenceLevel),
		Feedback:        string(msg.Feedback),
	}
}

func toMessageResponses(msgs []model.ChatMessage) []dto.MessageResponse {
	out := make([]dto.MessageResponse, len(msgs))
	for i, msg := range msgs {
		out[i] = toMessageResponse(msg)
	}
	return out
}

func fromMessageResponse(msg dto.MessageResponse) model.ChatMessage {
	ts, _ := time.Parse(time.RFC3339, msg.Timestamp)
	return model.ChatMessage{
		ID:              msg.MessageID,
		Content:         msg.Content,
		Author:          model.Author(msg.Author),
		Timestamp:       ts,
		Escalated:       msg.Escalated,
		ConfidenceScore: msg.ConfidenceScore,
		ConfidenceLevel: model.ConfidenceLevel(msg.ConfidenceLevel),
		Feedback:        model.Feedback(msg.Feedback),
	}
}

func fromMessageResponses(msgs []dto.MessageResponse) []model.ChatMessage {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]model.ChatMessage, len(msgs))
	for i, msg := range msgs {
		out[i] = fromMessageResponse(msg)
	}
	return out
}

func toSessionResponse(sess session.Session) dto.SessionResponse {
	return dto.SessionResponse{
		SessionID: sess.ID,
		Language:  sess.Language,
		Disabled:  sess.Disabled,
		Messages:  toMessageResponses(sess.Messages),
	}
}

func toServiceRequestResponse(item model.ServiceRequestItem) dto.ServiceRequestResponse {
	return dto.ServiceRequestResponse{
		RequestID:        item.RequestID,
		CustomerID:       item.CustomerID,
		CustomerName:     item.CustomerName,
		CustomerEmail:    item.CustomerEmail,
		Status:           string(item.Status),
		Priority:         string(item.Priority),
		EscalationSource: string(item.EscalationSource),
		EscalationReason: item.EscalationReason,
		ChatHistory:      toMessageResponses(item.ChatHistory),
		DocumentName:     item.DocumentName,
		AdminNotes:       item.AdminNotes,
		CustomerLanguage: item.CustomerLanguage,
		CreatedAt:        item.CreatedAt,
		AcknowledgedAt:   item.AcknowledgedAt,
		ResolvedAt:       item.ResolvedAt,
		LastUpdated:      item.LastUpdated,
	}
}

func toArchivedSessionResponse(item model.ArchivedSessionItem) dto.ArchivedSessionResponse {
	return dto.ArchivedSessionResponse{
		SessionID:  item.SessionID,
		UserID:     item.UserID,
		Messages:   toMessageResponses(item.Messages),
		StartTime:  item.StartTime,
		EndTime:    item.EndTime,
		ArchivedAt: item.ArchivedAt,
		Reason:     item.Reason,
	}
}

func toUserResponse(user model.UserItem) dto.UserResponse {
	return dto.UserResponse{
		UserID:    user.UserID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Language:  user.Language,
		CreatedAt: user.CreatedAt,
	}
}
