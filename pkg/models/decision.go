package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxPayloadLength is the maximum accepted length (in runes) of a trimmed
// request payload.
const MaxPayloadLength = 10_000

// DecisionContext is the validated, immutable input to a single routing
// call. Construct it with NewDecisionContext, which enforces the
// non-empty/length invariants; do not build it as a bare struct literal
// from untrusted input.
type DecisionContext struct {
	Payload string
}

// NewDecisionContext validates and wraps a raw payload. The stored payload
// is the trimmed form of the input.
func NewDecisionContext(payload string) (DecisionContext, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return DecisionContext{}, &InvalidInputError{Reason: "payload is blank after trimming"}
	}
	if len([]rune(trimmed)) > MaxPayloadLength {
		return DecisionContext{}, &InvalidInputError{Reason: "payload exceeds maximum length"}
	}
	return DecisionContext{Payload: trimmed}, nil
}

// RoutingDecision is the (service, confidence, explanation) triple a
// classifier or pathfinder produces for a single request.
type RoutingDecision struct {
	Service     string
	Confidence  float64
	Explanation string
}

// NewRoutingDecision builds a RoutingDecision, normalizing confidence into
// [0, 1]. Non-finite values (NaN, +-Inf) become 0; values are otherwise
// clamped.
func NewRoutingDecision(service string, confidence float64, explanation string) RoutingDecision {
	return RoutingDecision{
		Service:     service,
		Confidence:  normalizeConfidence(confidence),
		Explanation: explanation,
	}
}

func normalizeConfidence(c float64) float64 {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// RoutingResult is the externally observable outcome of a single route()
// call: a RoutingDecision plus processing time, wall-clock timestamp, and a
// RequestID that callers can correlate across logs.
type RoutingResult struct {
	RequestID        string
	Decision         RoutingDecision
	ProcessingTimeMs int64
	Timestamp        time.Time
}

// NewRoutingResult stamps a decision with processing time (negative values
// coerced to 0), a timestamp, and a freshly generated RequestID.
func NewRoutingResult(decision RoutingDecision, processingTimeMs int64, timestamp time.Time) RoutingResult {
	if processingTimeMs < 0 {
		processingTimeMs = 0
	}
	return RoutingResult{
		RequestID:        uuid.NewString(),
		Decision:         decision,
		ProcessingTimeMs: processingTimeMs,
		Timestamp:        timestamp,
	}
}
