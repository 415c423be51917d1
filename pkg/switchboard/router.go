// Package switchboard is the public library surface for the request
// router: a single Router type wired from a config.Config, exposing
// synchronous, asynchronous, and order-preserving batch routing.
package switchboard

import (
	"context"
	"sync"

	"github.com/relaymesh/switchboard/internal/cache"
	"github.com/relaymesh/switchboard/internal/classifier"
	"github.com/relaymesh/switchboard/internal/config"
	"github.com/relaymesh/switchboard/internal/dispatcher"
	"github.com/relaymesh/switchboard/internal/graph"
	"github.com/relaymesh/switchboard/internal/keyword"
	"github.com/relaymesh/switchboard/internal/registry"
	"github.com/relaymesh/switchboard/pkg/models"
)

// Router is the embeddable request router: construct one with New and
// call Route (or RouteAsync / RouteBatch) from as many goroutines as you
// like.
type Router struct {
	dispatch *dispatcher.Dispatcher
	registry *registry.Registry
}

// Option configures a Router at construction time, beyond what its
// config.Config already specifies.
type Option func(*routerBuildState)

type routerBuildState struct {
	transport       classifier.LLMTransport
	abRules         map[string]dispatcher.ABRule
	randomFn        func() float64
	fallbackService string
}

// WithLLMTransport supplies the transport the external classifier uses to
// reach an LLM provider when cfg.Classifier is "external" or "hybrid";
// ignored otherwise. Without it, an HTTPLLMTransport to the OpenAI
// chat-completions endpoint, authenticated with cfg.External.APIKey, is used.
func WithLLMTransport(transport classifier.LLMTransport) Option {
	return func(s *routerBuildState) { s.transport = transport }
}

// WithABRules configures the A/B split table the dispatcher applies after
// threshold fallback.
func WithABRules(rules map[string]dispatcher.ABRule) Option {
	return func(s *routerBuildState) { s.abRules = rules }
}

// WithRandomSource overrides the random source used for A/B splitting,
// for deterministic tests.
func WithRandomSource(r func() float64) Option {
	return func(s *routerBuildState) { s.randomFn = r }
}

// WithConfidenceFallback enables confidence-threshold fallback: any
// decision whose confidence falls below cfg.ConfidenceThreshold is
// rewritten to fallbackService. The fallback destination is a
// caller-supplied detail rather than a config.Config field, so it is
// wired here instead.
func WithConfidenceFallback(fallbackService string) Option {
	return func(s *routerBuildState) { s.fallbackService = fallbackService }
}

// New builds a Router from cfg, failing fast on invalid configuration.
func New(cfg config.Config, opts ...Option) (*Router, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	state := &routerBuildState{}
	for _, opt := range opts {
		opt(state)
	}

	reg := registry.New()
	for _, svc := range cfg.Services {
		reg.Register(models.NewServiceDefinition(svc.ID, svc.DisplayName, svc.Keywords))
	}

	matcher := keyword.New()
	matcher.BindRegistry(reg)

	tiers, err := buildTiers(cfg, matcher, state.transport)
	if err != nil {
		return nil, err
	}

	dispatchOpts := []dispatcher.Option{dispatcher.WithTiers(tiers...)}

	if cfg.Graph.Enabled {
		g := graph.New()
		g.AddService(cfg.Graph.Source)
		for _, edge := range cfg.Graph.Edges {
			g.AddEdge(edge.From, edge.To, models.EdgeMetrics{
				LatencyMs:   edge.LatencyMs,
				Cost:        edge.Cost,
				Reliability: edge.Reliability,
			})
		}
		dispatchOpts = append(dispatchOpts, dispatcher.WithGraph(g, cfg.Graph.Source))

		if cfg.Graph.Cache.Enabled {
			pc := cache.New(
				cache.WithMaxSize(cfg.Graph.Cache.MaxSize),
				cache.WithTTL(cfg.Graph.Cache.CacheTTL()),
			)
			dispatchOpts = append(dispatchOpts, dispatcher.WithPathCache(pc))
		}
	}

	if state.fallbackService != "" {
		dispatchOpts = append(dispatchOpts, dispatcher.WithConfidenceThreshold(cfg.ConfidenceThreshold, state.fallbackService))
	}

	if state.abRules != nil {
		dispatchOpts = append(dispatchOpts, dispatcher.WithABRules(state.abRules))
	}
	if state.randomFn != nil {
		dispatchOpts = append(dispatchOpts, dispatcher.WithRandomSource(state.randomFn))
	}

	return &Router{
		dispatch: dispatcher.New(dispatchOpts...),
		registry: reg,
	}, nil
}

// buildTiers assembles the classifier chain for cfg.Classifier.
func buildTiers(cfg config.Config, matcher *keyword.Matcher, transport classifier.LLMTransport) ([]dispatcher.Tier, error) {
	builtin := classifier.NewBuiltin(matcher)

	switch cfg.Classifier {
	case config.ClassifierBuiltin, "":
		return []dispatcher.Tier{{Classifier: builtin, Threshold: 0}}, nil

	case config.ClassifierExternal:
		ext, err := buildExternal(cfg, transport)
		if err != nil {
			return nil, err
		}
		return []dispatcher.Tier{{Classifier: ext, Threshold: 0}}, nil

	case config.ClassifierHybrid:
		ext, err := buildExternal(cfg, transport)
		if err != nil {
			return nil, err
		}
		return []dispatcher.Tier{
			{Classifier: builtin, Threshold: 0.8},
			{Classifier: ext, Threshold: 0},
		}, nil

	default:
		return nil, &models.ConfigurationError{Reason: "unrecognized classifier kind: " + string(cfg.Classifier)}
	}
}

func buildExternal(cfg config.Config, transport classifier.LLMTransport) (*classifier.External, error) {
	if transport == nil {
		transport = classifier.NewHTTPLLMTransport("https://api.openai.com/v1/chat/completions", cfg.External.APIKey)
	}
	return classifier.NewExternal(
		transport,
		classifier.WithModel(cfg.External.Model),
		classifier.WithTemperature(cfg.External.Temperature),
		classifier.WithMaxAttempts(cfg.External.MaxRetries+1),
		classifier.WithRequestTimeout(cfg.External.Timeout()),
		classifier.WithInitialBackoff(cfg.External.Backoff()),
	), nil
}

// Registry exposes the Router's ServiceRegistry so callers can register
// or deregister services at runtime; the keyword matcher stays in sync
// automatically.
func (r *Router) Registry() *registry.Registry {
	return r.registry
}

// Route synchronously routes text to a RoutingResult.
func (r *Router) Route(text string) (models.RoutingResult, error) {
	return r.dispatch.Route(text)
}

// Outcome is the result of one asynchronous or batched route call.
type Outcome struct {
	Result models.RoutingResult
	Err    error
}

// RouteAsync offloads Route to a goroutine and returns a channel that
// receives exactly one Outcome. It respects ctx cancellation: if ctx is
// done before the route completes, the returned Outcome carries ctx.Err()
// instead of waiting further (the underlying Route call, which performs
// no I/O of its own beyond the external classifier's request timeout,
// continues to completion in the background).
func (r *Router) RouteAsync(ctx context.Context, text string) <-chan Outcome {
	inner := make(chan Outcome, 1)
	go func() {
		result, err := r.Route(text)
		inner <- Outcome{Result: result, Err: err}
	}()

	out := make(chan Outcome, 1)
	go func() {
		if err := ctx.Err(); err != nil {
			out <- Outcome{Err: err}
			return
		}
		select {
		case o := <-inner:
			out <- o
		case <-ctx.Done():
			out <- Outcome{Err: ctx.Err()}
		}
	}()

	return out
}

// RouteBatch routes every entry in texts concurrently and returns their
// outcomes in the same order as the input, regardless of completion order.
func (r *Router) RouteBatch(ctx context.Context, texts []string) []Outcome {
	outcomes := make([]Outcome, len(texts))
	var wg sync.WaitGroup
	wg.Add(len(texts))

	for i, text := range texts {
		go func(i int, text string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				outcomes[i] = Outcome{Err: ctx.Err()}
			default:
				result, err := r.Route(text)
				outcomes[i] = Outcome{Result: result, Err: err}
			}
		}(i, text)
	}

	wg.Wait()
	return outcomes
}
