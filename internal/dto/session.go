package dto

// MessageResponse mirrors model.ChatMessage for API consumers.
type MessageResponse struct {
	MessageID       string   `json:"messageId"`
	Content         string   `json:"content"`
	Author          string   `json:"author"`
	Timestamp       string   `json:"timestamp"`
	Escalated       bool     `json:"escalated,omitempty"`
	ConfidenceScore *float64 `json:"confidenceScore,omitempty"`
	ConfidenceLevel string   `json:"confidenceLevel,omitempty"`
	Feedback        string   `json:"feedback,omitempty"`
}

type StartSessionRequest struct {
	Language string `json:"language,omitempty"`
}

type SessionResponse struct {
	SessionID string            `json:"sessionId"`
	Language  string            `json:"language"`
	Disabled  bool              `json:"disabled"`
	Messages  []MessageResponse `json:"messages"`
}

type PostChatMessageRequest struct {
	Query string `json:"query"`
}

type ChatTurnResponse struct {
	UserMessage      MessageResponse `json:"userMessage"`
	AssistantMessage MessageResponse `json:"assistantMessage"`
	Escalated        bool            `json:"escalated"`
	ServiceRequestID string          `json:"serviceRequestId,omitempty"`
	Disabled         bool            `json:"disabled"`
}

type FeedbackRequest struct {
	MessageID string `json:"messageId"`
	Feedback  string `json:"feedback"`
}

type FeedbackResponse struct {
	DislikeStreak    int    `json:"dislikeStreak"`
	Escalated        bool   `json:"escalated"`
	ServiceRequestID string `json:"serviceRequestId,omitempty"`
	Disabled         bool   `json:"disabled"`
}

type ChangeLanguageRequest struct {
	Language string `json:"language"`
}

type EndSessionRequest struct {
	Reason string `json:"reason,omitempty"`
}

type EndSessionResponse struct {
	Ended    bool `json:"ended"`
	Archived bool `json:"archived"`
}

type AttachDocumentRequest struct {
	Filename      string `json:"filename"`
	ExtractedText string `json:"extractedText"`
}
