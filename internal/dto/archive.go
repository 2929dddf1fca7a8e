package dto

type ArchivedSessionResponse struct {
	SessionID  string            `json:"sessionId"`
	UserID     string            `json:"userId"`
	Messages   []MessageResponse `json:"messages"`
	StartTime  string            `json:"startTime"`
	EndTime    string            `json:"endTime"`
	ArchivedAt string            `json:"archivedAt"`
	Reason     string            `json:"reason,omitempty"`
}

type ListArchivedSessionsResponse struct {
	Sessions []ArchivedSessionResponse `json:"sessions"`
}
