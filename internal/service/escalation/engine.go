// Package escalation decides when an automated answer is no longer good
// enough and a conversation must be handed to a human. The engine is a pure
// function over the backend signal, the latest customer message, the recent
// history and the dislike streak; acting on the returned trigger is the
// caller's job.
package escalation

import (
	"sort"

	"faq-assist-backend/internal/model"
)

type TriggerKind string

const (
	KindBackendFlagged  TriggerKind = "backend_flagged"
	KindFeedbackStreak  TriggerKind = "feedback_streak"
	KindHumanRequest    TriggerKind = "human_request"
	KindFrustration     TriggerKind = "frustration"
	KindRepeatedFailure TriggerKind = "repeated_failure"
)

// BackendSignal is the escalation-relevant slice of the confidence service's
// answer. A nil *BackendSignal in Input means the call itself failed.
type BackendSignal struct {
	Escalated bool
	Reason    string
	RiskType  string
}

type Trigger struct {
	Kind       TriggerKind
	Confidence float64
	Reason     string
}

type Input struct {
	Signal        *BackendSignal
	Message       string
	History       []model.ChatMessage
	DislikeStreak int
}

// Detector is a single escalation strategy. Higher priority wins; ties break
// by registration order.
type Detector interface {
	Kind() TriggerKind
	Priority() int
	Detect(in Input) *Trigger
}

type registered struct {
	detector Detector
	order    int
}

type Engine struct {
	detectors []registered
}

// NewEngine returns an engine with the default detector chain. The order of
// trust: backend flag, feedback streak, explicit human request, frustration,
// repeated low-confidence failures.
func NewEngine() *Engine {
	e := &Engine{}
	e.Register(backendFlaggedDetector{})
	e.Register(feedbackStreakDetector{})
	e.Register(humanRequestDetector{})
	e.Register(frustrationDetector{})
	e.Register(repeatedFailureDetector{})
	return e
}

// NewEmptyEngine returns an engine with no detectors, for callers assembling
// a custom chain.
func NewEmptyEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Register(d Detector) {
	e.detectors = append(e.detectors, registered{detector: d, order: len(e.detectors)})
	sort.SliceStable(e.detectors, func(i, j int) bool {
		if e.detectors[i].detector.Priority() != e.detectors[j].detector.Priority() {
			return e.detectors[i].detector.Priority() > e.detectors[j].detector.Priority()
		}
		return e.detectors[i].order < e.detectors[j].order
	})
}

// Evaluate runs the detector chain and returns the first match. When the
// signal service was unreachable (nil Signal) no detector runs at all:
// infrastructure failure is never a conversational escalation signal.
func (e *Engine) Evaluate(in Input) *Trigger {
	if in.Signal == nil {
		return nil
	}
	for _, r := range e.detectors {
		if trigger := r.detector.Detect(in); trigger != nil {
			return trigger
		}
	}
	return nil
}
