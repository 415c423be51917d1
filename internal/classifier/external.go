package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// LLMRequest is the chat-completion-style request the external classifier
// sends to its configured LLM provider.
type LLMRequest struct {
	Model       string
	SystemMsg   string
	UserMsg     string
	Temperature float64
}

// LLMResponse is the parsed text content of the provider's reply; the
// classifier parses the JSON routing decision out of Content itself.
type LLMResponse struct {
	Content string
}

// LLMTransport sends a chat-completion request to an LLM provider and
// returns its raw text content. Implementations perform no retry or
// circuit-breaking of their own; External supplies both.
type LLMTransport interface {
	ChatCompletion(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// RetryableError marks a transport failure as eligible for retry.
// LLMTransport implementations should wrap transient failures (network
// errors, HTTP 429, HTTP 5xx) in a RetryableError so External's retry
// policy can distinguish them from permanent failures (bad request,
// auth errors, malformed responses).
type RetryableError struct {
	cause error
}

// NewRetryableError wraps cause as a RetryableError.
func NewRetryableError(cause error) *RetryableError {
	return &RetryableError{cause: cause}
}

func (e *RetryableError) Error() string { return e.cause.Error() }
func (e *RetryableError) Unwrap() error  { return e.cause }

// HTTPLLMTransport is the default LLMTransport: a chat-completion endpoint
// reached via net/http, with manual request construction
// (http.NewRequestWithContext, json.Marshal/Decoder, Bearer auth).
type HTTPLLMTransport struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// NewHTTPLLMTransport builds an HTTPLLMTransport with a sane default
// client timeout; override Client after construction for full control.
func NewHTTPLLMTransport(endpoint, apiKey string) *HTTPLLMTransport {
	return &HTTPLLMTransport{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ChatCompletion implements LLMTransport.
func (t *HTTPLLMTransport) ChatCompletion(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemMsg},
			{Role: "user", Content: req.UserMsg},
		},
		Temperature: req.Temperature,
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return LLMResponse{}, NewRetryableError(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return LLMResponse{}, NewRetryableError(fmt.Errorf("llm provider returned %d: %s", resp.StatusCode, string(respBody)))
	}
	if resp.StatusCode != http.StatusOK {
		return LLMResponse{}, fmt.Errorf("llm provider returned %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return LLMResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return LLMResponse{}, errors.New("llm provider returned no choices")
	}
	return LLMResponse{Content: decoded.Choices[0].Message.Content}, nil
}

// decisionPayload is the wire shape the external LLM is prompted to emit.
type decisionPayload struct {
	Service     string  `json:"service"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

const (
	// DefaultInitialBackoff is the starting delay before the first retry.
	DefaultInitialBackoff = 500 * time.Millisecond
	// DefaultMaxAttempts is the default total attempts, including the first.
	DefaultMaxAttempts = 3
	// DefaultRequestTimeout bounds the wall-clock time of one Decide call,
	// across all of its attempts and the backoff waits between them.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultModel is used when the caller does not configure one.
	DefaultModel = "gpt-4o-mini"
	// DefaultTemperature is used when the caller does not configure one.
	DefaultTemperature = 0.0

	breakerWindow       = 20
	breakerFailureRatio = 0.5
	breakerOpenDuration = 30 * time.Second
)

const systemPrompt = "You are a routing assistant. Respond ONLY with a JSON object containing: service (string), confidence (0.0-1.0), explanation (string)."

// External is the LLM-backed Classifier. It wraps an LLMTransport with
// exponential-backoff retry and a circuit breaker. The breaker counts
// every attempt cumulatively while closed (the counts are not a sliding
// window of recent calls) and trips once at least 20 attempts have been
// counted and at least half of them failed.
type External struct {
	transport      LLMTransport
	breaker        *gobreaker.CircuitBreaker
	model          string
	temperature    float64
	initialBackoff time.Duration
	maxAttempts    int
	requestTimeout time.Duration
}

// ExternalOption configures an External classifier at construction time.
type ExternalOption func(*External)

// WithModel overrides DefaultModel.
func WithModel(model string) ExternalOption {
	return func(e *External) { e.model = model }
}

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float64) ExternalOption {
	return func(e *External) { e.temperature = t }
}

// WithInitialBackoff overrides DefaultInitialBackoff.
func WithInitialBackoff(d time.Duration) ExternalOption {
	return func(e *External) { e.initialBackoff = d }
}

// WithMaxAttempts overrides DefaultMaxAttempts (including the first attempt).
func WithMaxAttempts(n int) ExternalOption {
	return func(e *External) { e.maxAttempts = n }
}

// WithRequestTimeout overrides DefaultRequestTimeout.
func WithRequestTimeout(d time.Duration) ExternalOption {
	return func(e *External) { e.requestTimeout = d }
}

// NewExternal builds an External classifier over transport.
func NewExternal(transport LLMTransport, opts ...ExternalOption) *External {
	e := &External{
		transport:      transport,
		model:          DefaultModel,
		temperature:    DefaultTemperature,
		initialBackoff: DefaultInitialBackoff,
		maxAttempts:    DefaultMaxAttempts,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "external-classifier",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     breakerOpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerWindow {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= breakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("classifier: circuit breaker state change")
		},
	})
	return e
}

// Name identifies this classifier in dispatcher explanations and logs.
func (e *External) Name() string {
	return "external-llm"
}

// IsAvailable reports whether the circuit breaker currently permits calls.
func (e *External) IsAvailable() bool {
	return e.breaker.State() != gobreaker.StateOpen
}

// Decide prompts the configured LLM transport for a routing decision,
// retrying transient failures and honoring the circuit breaker. All
// failures surface as *models.LLMProviderError with the original cause.
func (e *External) Decide(ctx models.DecisionContext) (models.RoutingDecision, error) {
	reqCtx, cancel := context.WithTimeout(context.Background(), e.requestTimeout)
	defer cancel()

	req := LLMRequest{
		Model:       e.model,
		SystemMsg:   systemPrompt,
		UserMsg:     "Route the following request to the best matching service: \n\n" + ctx.Payload,
		Temperature: e.temperature,
	}

	boff := backoff.NewExponentialBackOff()
	boff.InitialInterval = e.initialBackoff
	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(boff, uint64(e.maxAttempts-1)), reqCtx)

	var resp LLMResponse
	operation := func() error {
		result, err := e.breaker.Execute(func() (interface{}, error) {
			return e.transport.ChatCompletion(reqCtx, req)
		})
		if err != nil {
			var retryable *RetryableError
			if errors.As(err, &retryable) {
				return err
			}
			return backoff.Permanent(err)
		}
		resp = result.(LLMResponse)
		return nil
	}

	if err := backoff.Retry(operation, retryPolicy); err != nil {
		return models.RoutingDecision{}, &models.LLMProviderError{Cause: err}
	}

	payload, err := parseDecisionPayload(resp.Content)
	if err != nil {
		return models.RoutingDecision{}, &models.LLMProviderError{Cause: err}
	}
	return models.NewRoutingDecision(payload.Service, payload.Confidence, payload.Explanation), nil
}

// parseDecisionPayload parses an LLM's decision payload: strict parse
// first; on failure, extract the largest {...} substring and retry; on
// failure, or a missing/blank service, fail.
func parseDecisionPayload(content string) (decisionPayload, error) {
	var payload decisionPayload
	if err := json.Unmarshal([]byte(content), &payload); err == nil && strings.TrimSpace(payload.Service) != "" {
		return payload, nil
	}

	candidate := largestBraceSubstring(content)
	if candidate == "" {
		return decisionPayload{}, errors.New("llm response did not contain a parseable JSON object")
	}
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return decisionPayload{}, fmt.Errorf("llm response JSON extraction failed: %w", err)
	}
	if strings.TrimSpace(payload.Service) == "" {
		return decisionPayload{}, errors.New("llm response omitted a service field")
	}
	return payload, nil
}

// largestBraceSubstring returns the longest substring of s bounded by a
// '{' and its matching final '}', i.e. from the first '{' to the last '}'.
func largestBraceSubstring(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}
