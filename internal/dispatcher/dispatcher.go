// Package dispatcher implements the HybridDispatcher: the state machine
// that combines the ComplexityAnalyzer, classifier chain, and Dijkstra
// pathfinder (through an optional PathCache) into a single route() call,
// plus confidence-threshold fallback and A/B splitting.
package dispatcher

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/relaymesh/switchboard/internal/cache"
	"github.com/relaymesh/switchboard/internal/classifier"
	"github.com/relaymesh/switchboard/internal/complexity"
	"github.com/relaymesh/switchboard/internal/graph"
	"github.com/relaymesh/switchboard/internal/pathfinder"
	"github.com/relaymesh/switchboard/internal/validation"
	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/rs/zerolog/log"
)

// Tier is one rung of the classifier chain. Decide is tried in order;
// a tier whose Decide call errors yields control to the next tier (a
// fallback chain), and a tier whose decision confidence is below
// Threshold also yields to the next tier (a tiered-confidence fallback)
// unless it is the last configured tier, in which case its result -
// error or decision - is final. Threshold 0 behaves as a plain
// fallback-chain link.
type Tier struct {
	Classifier classifier.Classifier
	Threshold  float64
}

// ABRule describes an A/B split: when the decided service equals the map
// key this rule is registered under, with probability P the service is
// rewritten to TestService.
type ABRule struct {
	TestService string
	P           float64
}

// Dispatcher is the HybridDispatcher: ingest -> validate ->
// classify_or_route -> threshold_fallback -> ab_split -> emit.
type Dispatcher struct {
	validator *validation.Validator
	analyzer  *complexity.Analyzer
	tiers     []Tier

	graphEnabled bool
	graphSource  string
	pf           *pathfinder.Dijkstra
	pathCache    *cache.PathCache

	minConfidence   float64
	fallbackService string
	thresholdActive bool

	abRules map[string]ABRule
	rand    func() float64
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithTiers sets the classifier chain used for Simple-complexity requests.
func WithTiers(tiers ...Tier) Option {
	return func(d *Dispatcher) { d.tiers = tiers }
}

// WithGraph enables the Dijkstra subsystem over g, searching from source.
func WithGraph(g *graph.Graph, source string) Option {
	return func(d *Dispatcher) {
		d.graphEnabled = true
		d.graphSource = source
		d.pf = pathfinder.New(g)
	}
}

// WithPathCache wraps the Dijkstra subsystem with a PathCache. Only takes
// effect if WithGraph is also configured.
func WithPathCache(c *cache.PathCache) Option {
	return func(d *Dispatcher) { d.pathCache = c }
}

// WithConfidenceThreshold enables threshold fallback: any decision whose
// confidence is below minConfidence is rewritten to fallbackService,
// retaining its original confidence and recording the original service in
// the explanation.
func WithConfidenceThreshold(minConfidence float64, fallbackService string) Option {
	return func(d *Dispatcher) {
		d.thresholdActive = true
		d.minConfidence = minConfidence
		d.fallbackService = fallbackService
	}
}

// WithABRules configures the A/B split table, keyed by the original
// decided service id.
func WithABRules(rules map[string]ABRule) Option {
	return func(d *Dispatcher) { d.abRules = rules }
}

// WithRandomSource overrides the random source used for A/B splitting,
// for deterministic tests. Must return a value in [0, 1).
func WithRandomSource(r func() float64) Option {
	return func(d *Dispatcher) { d.rand = r }
}

// New builds a Dispatcher. By default it validates input and has no
// classifier tiers, graph, threshold fallback, or A/B splitting
// configured; without WithTiers, any request that reaches the classifier
// chain fails with a *models.ConfigurationError.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		validator: validation.New(),
		analyzer:  complexity.New(),
		rand:      rand.Float64,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Route executes the full ingest -> validate -> classify_or_route ->
// threshold_fallback -> ab_split -> emit pipeline for text.
func (d *Dispatcher) Route(text string) (models.RoutingResult, error) {
	start := time.Now()

	if err := d.validator.Validate(text); err != nil {
		return models.RoutingResult{}, err
	}

	ctx, err := models.NewDecisionContext(text)
	if err != nil {
		return models.RoutingResult{}, err
	}

	decision, err := d.classifyOrRoute(ctx)
	if err != nil {
		return models.RoutingResult{}, err
	}

	decision = d.applyThresholdFallback(decision)
	decision = d.applyABSplit(decision)

	elapsed := time.Since(start)
	return models.NewRoutingResult(decision, elapsed.Milliseconds(), time.Now()), nil
}

// targetPrefix mirrors pathfinder.ExtractTarget's explicit-addressing
// convention. A payload that names its destination this way is routed
// straight to the pathfinder: the caller has already done the routing
// decision, classification would be redundant and the ComplexityAnalyzer
// precedence chain (which requires a co-occurring multi-hop marker to
// promote a bare "target:" payload out of Simple) would otherwise send it
// to the classifier instead.
const targetPrefix = "TARGET:"

// classifyOrRoute implements step 1 (complexity routing), with explicit
// target addressing taking precedence over it: Simple goes through the
// classifier tier chain, everything else (including any explicitly
// addressed payload) through the Dijkstra subsystem, via the path cache
// if configured.
func (d *Dispatcher) classifyOrRoute(ctx models.DecisionContext) (models.RoutingDecision, error) {
	if d.graphEnabled && strings.HasPrefix(ctx.Payload, targetPrefix) {
		return d.decideWithGraph(ctx)
	}

	category := d.analyzer.Classify(ctx)
	if category == complexity.Simple || !d.graphEnabled {
		return d.decideWithTiers(ctx)
	}
	return d.decideWithGraph(ctx)
}

// decideWithTiers walks the configured classifier chain. A tier that
// errors yields to the next; a tier whose confidence is below its
// threshold yields to the next; the final tier's result is always final.
func (d *Dispatcher) decideWithTiers(ctx models.DecisionContext) (models.RoutingDecision, error) {
	if len(d.tiers) == 0 {
		return models.RoutingDecision{}, &models.ConfigurationError{Reason: "dispatcher has no classifier tiers configured"}
	}

	var lastErr error
	for i, tier := range d.tiers {
		isLast := i == len(d.tiers)-1

		decision, err := tier.Classifier.Decide(ctx)
		if err != nil {
			lastErr = err
			if isLast {
				return models.RoutingDecision{}, err
			}
			log.Debug().Err(err).Str("classifier", tier.Classifier.Name()).Msg("dispatcher: tier failed, trying next")
			continue
		}

		if isLast || decision.Confidence >= tier.Threshold {
			return decision, nil
		}
		log.Debug().Str("classifier", tier.Classifier.Name()).Float64("confidence", decision.Confidence).
			Float64("threshold", tier.Threshold).Msg("dispatcher: tier below threshold, trying next")
	}
	return models.RoutingDecision{}, lastErr
}

// decideWithGraph extracts a target from the payload and computes its
// shortest path, through the path cache when configured.
func (d *Dispatcher) decideWithGraph(ctx models.DecisionContext) (models.RoutingDecision, error) {
	compute := func(payload string) (models.RoutingDecision, error) {
		target, err := pathfinder.ExtractTarget(payload)
		if err != nil {
			return models.RoutingDecision{}, err
		}
		path, err := d.pf.ShortestPath(d.graphSource, target)
		if err != nil {
			return models.RoutingDecision{}, err
		}
		return models.NewRoutingDecision(target, pathfinder.Confidence(path.HopCount()), pathfinder.Explain(path)), nil
	}

	if d.pathCache != nil {
		return d.pathCache.Decide(ctx.Payload, compute)
	}
	return compute(ctx.Payload)
}

// applyThresholdFallback implements step 3 of the state machine.
func (d *Dispatcher) applyThresholdFallback(decision models.RoutingDecision) models.RoutingDecision {
	if !d.thresholdActive || decision.Confidence >= d.minConfidence {
		return decision
	}
	explanation := fmt.Sprintf("Confidence below threshold (%.2f < %.2f); original service %q, reason: %s",
		decision.Confidence, d.minConfidence, decision.Service, decision.Explanation)
	return models.NewRoutingDecision(d.fallbackService, decision.Confidence, explanation)
}

// applyABSplit implements step 5 of the state machine.
func (d *Dispatcher) applyABSplit(decision models.RoutingDecision) models.RoutingDecision {
	rule, ok := d.abRules[decision.Service]
	if !ok {
		return decision
	}
	if d.rand() >= rule.P {
		return decision
	}
	explanation := fmt.Sprintf("A/B test variant (%.0f%%): %s", rule.P*100, decision.Explanation)
	return models.NewRoutingDecision(rule.TestService, decision.Confidence, explanation)
}
