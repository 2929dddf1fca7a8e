package escalation

import (
	"regexp"

	"faq-assist-backend/internal/model"
)

const feedbackStreakThreshold = 3

var frustrationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)this (is not|isn't) working`),
	regexp.MustCompile(`(?i)i am (angry|frustrated|upset)`),
	regexp.MustCompile(`(?i)this is (ridiculous|stupid|useless)`),
	regexp.MustCompile(`(?i)why (can't|won't) (you|this)`),
	regexp.MustCompile(`(?i)this doesn't help`),
	regexp.MustCompile(`(?i)you're not helping`),
}

var humanRequestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)i (need|want) to (speak|talk) to (a |an )?(human|person|agent)`),
	regexp.MustCompile(`(?i)i (need|want) a (human|person|agent)`),
	regexp.MustCompile(`(?i)connect me to (an agent|someone)`),
	regexp.MustCompile(`(?i)transfer me to`),
	regexp.MustCompile(`(?i)speak to (your|a) manager`),
	regexp.MustCompile(`(?i)get me a human`),
	regexp.MustCompile(`(?i)talk to someone`),
}

type backendFlaggedDetector struct{}

func (backendFlaggedDetector) Kind() TriggerKind { return KindBackendFlagged }
func (backendFlaggedDetector) Priority() int     { return 50 }

func (backendFlaggedDetector) Detect(in Input) *Trigger {
	if !in.Signal.Escalated {
		return nil
	}
	reason := in.Signal.Reason
	if reason == "" {
		reason = "Escalation flagged by the confidence service"
	}
	return &Trigger{
		Kind:       KindBackendFlagged,
		Confidence: 1.0,
		Reason:     reason,
	}
}

type feedbackStreakDetector struct{}

func (feedbackStreakDetector) Kind() TriggerKind { return KindFeedbackStreak }
func (feedbackStreakDetector) Priority() int     { return 40 }

func (feedbackStreakDetector) Detect(in Input) *Trigger {
	if in.DislikeStreak < feedbackStreakThreshold {
		return nil
	}
	return &Trigger{
		Kind:       KindFeedbackStreak,
		Confidence: 1.0,
		Reason:     "Repeated negative feedback on assistant responses",
	}
}

type humanRequestDetector struct{}

func (humanRequestDetector) Kind() TriggerKind { return KindHumanRequest }
func (humanRequestDetector) Priority() int     { return 30 }

func (humanRequestDetector) Detect(in Input) *Trigger {
	for _, pattern := range humanRequestPatterns {
		if pattern.MatchString(in.Message) {
			return &Trigger{
				Kind:       KindHumanRequest,
				Confidence: 0.95,
				Reason:     "Direct human agent request",
			}
		}
	}
	return nil
}

type frustrationDetector struct{}

func (frustrationDetector) Kind() TriggerKind { return KindFrustration }
func (frustrationDetector) Priority() int     { return 20 }

func (frustrationDetector) Detect(in Input) *Trigger {
	for _, pattern := range frustrationPatterns {
		if pattern.MatchString(in.Message) {
			return &Trigger{
				Kind:       KindFrustration,
				Confidence: 0.90,
				Reason:     "User frustration detected",
			}
		}
	}
	return nil
}

type repeatedFailureDetector struct{}

func (repeatedFailureDetector) Kind() TriggerKind { return KindRepeatedFailure }
func (repeatedFailureDetector) Priority() int     { return 10 }

func (repeatedFailureDetector) Detect(in Input) *Trigger {
	recent := lastAssistantMessages(in.History, 3)
	if len(recent) < 3 {
		return nil
	}
	for _, msg := range recent {
		if !msg.LowConfidence() {
			return nil
		}
	}
	return &Trigger{
		Kind:       KindRepeatedFailure,
		Confidence: 0.80,
		Reason:     "Multiple consecutive low confidence responses",
	}
}

func lastAssistantMessages(history []model.ChatMessage, n int) []model.ChatMessage {
	assistant := make([]model.ChatMessage, 0, n)
	for i := len(history) - 1; i >= 0 && len(assistant) < n; i-- {
		if history[i].Author == model.AuthorAssistant {
			assistant = append(assistant, history[i])
		}
	}
	return assistant
}
