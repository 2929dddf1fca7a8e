package dto

type ServiceRequestResponse struct {
	RequestID        string            `json:"requestId"`
	CustomerID       string            `json:"customerId"`
	CustomerName     string            `json:"customerName"`
	CustomerEmail    string            `json:"customerEmail,omitempty"`
	Status           string            `json:"status"`
	Priority         string            `json:"priority"`
	EscalationSource string            `json:"escalationSource"`
	EscalationReason string            `json:"escalationReason,omitempty"`
	ChatHistory      []MessageResponse `json:"chatHistory,omitempty"`
	DocumentName     string            `json:"documentName,omitempty"`
	AdminNotes       string            `json:"adminNotes,omitempty"`
	CustomerLanguage string            `json:"customerLanguage,omitempty"`
	CreatedAt        string            `json:"createdAt"`
	AcknowledgedAt   string            `json:"acknowledgedAt,omitempty"`
	ResolvedAt       string            `json:"resolvedAt,omitempty"`
	LastUpdated      string            `json:"lastUpdated"`
}

type CreateServiceRequestRequest struct {
	CustomerID       string            `json:"customerId"`
	CustomerName     string            `json:"customerName"`
	CustomerEmail    string            `json:"customerEmail,omitempty"`
	ChatHistory      []MessageResponse `json:"chatHistory,omitempty"`
	EscalationReason string            `json:"escalationReason,omitempty"`
	RiskType         string            `json:"riskType,omitempty"`
	Priority         string            `json:"priority,omitempty"`
	DocumentName     string            `json:"documentName,omitempty"`
	DocumentText     string            `json:"documentText,omitempty"`
	IdempotencyKey   string            `json:"idempotencyKey,omitempty"`
}

type CreateServiceRequestResponse struct {
	Success          bool   `json:"success"`
	ServiceRequestID string `json:"serviceRequestId"`
}

type UpdateServiceRequestRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"adminNotes,omitempty"`
}

type ListServiceRequestsResponse struct {
	Requests []ServiceRequestResponse `json:"requests"`
}

type RequestStatsResponse struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}

type DeleteConfirmationResponse struct {
	RequestID    string `json:"requestId"`
	ConfirmToken string `json:"confirmToken"`
}
