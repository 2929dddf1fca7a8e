package model

const (
	ServiceRequestsTable  = "ServiceRequests"
	ArchivedSessionsTable = "ArchivedSessions"
	UsersTable            = "Users"
)

type RequestStatus string

const (
	StatusNew        RequestStatus = "new"
	StatusInProgress RequestStatus = "in-progress"
	StatusResolved   RequestStatus = "resolved"
)

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type EscalationSource string

const (
	SourceBackend   EscalationSource = "backend"
	SourceHeuristic EscalationSource = "heuristic"
	SourceManual    EscalationSource = "manual"
)

type ServiceRequestItem struct {
	RequestID        string           `dynamodbav:"requestId"`
	CustomerID       string           `dynamodbav:"customerId"`
	CustomerName     string           `dynamodbav:"customerName"`
	CustomerEmail    string           `dynamodbav:"customerEmail,omitempty"`
	Status           RequestStatus    `dynamodbav:"status"`
	Priority         Priority         `dynamodbav:"priority"`
	EscalationSource EscalationSource `dynamodbav:"escalationSource"`
	EscalationReason string           `dynamodbav:"escalationReason,omitempty"`
	ChatHistory      []ChatMessage    `dynamodbav:"chatHistory,omitempty"`
	DocumentName     string           `dynamodbav:"documentName,omitempty"`
	DocumentText     string           `dynamodbav:"documentText,omitempty"`
	AdminNotes       string           `dynamodbav:"adminNotes,omitempty"`
	CustomerLanguage string           `dynamodbav:"customerLanguage,omitempty"`
	CreatedAt        string           `dynamodbav:"createdAt"`
	AcknowledgedAt   string           `dynamodbav:"acknowledgedAt,omitempty"`
	ResolvedAt       string           `dynamodbav:"resolvedAt,omitempty"`
	LastUpdated      string           `dynamodbav:"lastUpdated"`
}

type ArchivedSessionItem struct {
	SessionID  string        `dynamodbav:"sessionId"`
	UserID     string        `dynamodbav:"userId"`
	Messages   []ChatMessage `dynamodbav:"messages"`
	StartTime  string        `dynamodbav:"startTime"`
	EndTime    string        `dynamodbav:"endTime"`
	ArchivedAt string        `dynamodbav:"archivedAt"`
	Reason     string        `dynamodbav:"reason,omitempty"`
}

type UserItem struct {
	UserID       string `dynamodbav:"userId"`
	Email        string `dynamodbav:"email"`
	Name         string `dynamodbav:"name"`
	Role         string `dynamodbav:"role"`
	Language     string `dynamodbav:"language,omitempty"`
	PasswordHash string `dynamodbav:"passwordHash"`
	CreatedAt    string `dynamodbav:"createdAt"`
}
