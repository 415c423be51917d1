package models

import "fmt"

// InvalidInputError is returned when a request payload is null, blank after
// trimming, oversized, or matches a dangerous-content pattern.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// UnknownTargetError is returned when a Dijkstra target is not present in
// the configured service graph.
type UnknownTargetError struct {
	Target string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target service: %q", e.Target)
}

// NoTargetError is returned when the pathfinder could not infer a target
// service from the request payload.
type NoTargetError struct {
	Payload string
}

func (e *NoTargetError) Error() string {
	return "no target service could be inferred from payload"
}

// NoPathError is returned when a target is known but unreachable from the
// configured source node.
type NoPathError struct {
	Source string
	Target string
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no path from %q to %q", e.Source, e.Target)
}

// LLMProviderError wraps a failure from the external LLM classifier after
// all configured retries (and any open circuit breaker) have been
// exhausted. The original cause is preserved via Unwrap.
type LLMProviderError struct {
	Cause error
}

func (e *LLMProviderError) Error() string {
	return fmt.Sprintf("llm provider: %v", e.Cause)
}

func (e *LLMProviderError) Unwrap() error {
	return e.Cause
}

// ConfigurationError is returned for startup-detected invalid settings
// (blank keyword, blank service id, missing graph source, etc.).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// LowConfidenceError describes a decision whose confidence is below a
// threshold. The dispatcher has no strict mode and never returns it:
// low-confidence decisions are only rewritten by threshold fallback.
type LowConfidenceError struct {
	Service    string
	Confidence float64
	Threshold  float64
}

func (e *LowConfidenceError) Error() string {
	return fmt.Sprintf("decision for %q has confidence %.3f below threshold %.3f", e.Service, e.Confidence, e.Threshold)
}
