package model

import "time"

type Author string

const (
	AuthorCustomer  Author = "customer"
	AuthorAssistant Author = "assistant"
	AuthorAgent     Author = "agent"
)

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

type Feedback string

const (
	FeedbackLike    Feedback = "like"
	FeedbackDislike Feedback = "dislike"
)

// ChatMessage is a single conversation entry. Once appended to a session
// history only Feedback may change.
type ChatMessage struct {
	ID              string          `json:"id" dynamodbav:"id"`
	Content         string          `json:"content" dynamodbav:"content"`
	Author          Author          `json:"author" dynamodbav:"author"`
	Timestamp       time.Time       `json:"timestamp" dynamodbav:"timestamp"`
	Escalated       bool            `json:"escalated,omitempty" dynamodbav:"escalated,omitempty"`
	ConfidenceScore *float64        `json:"confidenceScore,omitempty" dynamodbav:"confidenceScore,omitempty"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel,omitempty" dynamodbav:"confidenceLevel,omitempty"`
	Feedback        Feedback        `json:"feedback,omitempty" dynamodbav:"feedback,omitempty"`
}

// LowConfidence reports whether the assistant reply carrying this message
// was a weak answer: level LOW, or a score below 0.6 when a score is present.
func (m ChatMessage) LowConfidence() bool {
	if m.ConfidenceLevel == ConfidenceLow {
		return true
	}
	return m.ConfidenceScore != nil && *m.ConfidenceScore < 0.6
}
