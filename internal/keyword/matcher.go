// Package keyword implements scored, word-boundary keyword matching
// against a dynamically rebuildable index, optionally bound to a
// registry.Registry so that new or removed services take effect without
// stopping the world.
//
// The index is rebuilt wholesale and swapped in atomically rather than
// mutated in place, so readers never observe a partially rebuilt index.
package keyword

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/relaymesh/switchboard/internal/registry"
	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/rs/zerolog/log"
)

// DefaultConfidenceFloor, DefaultConfidenceCeiling and DefaultScoreWeight
// are the defaults for the confidence curve
// min(ceiling, floor + best_score*weight).
const (
	DefaultConfidenceFloor   = 0.5
	DefaultConfidenceCeiling = 0.95
	DefaultScoreWeight       = 0.45
)

type entry struct {
	pattern   *regexp.Regexp
	service   string
	weight    float64
	sourceKey string // original keyword, for explanation text
	seq       int    // insertion order, for tie-breaking
}

// Matcher scores free-form text against a keyword index and reports the
// best-matching service. The zero value is not usable; use New.
type Matcher struct {
	index atomic.Pointer[[]entry]

	// writeMu serializes every index rebuild: AddKeyword, the initial
	// BindRegistry rebuild, and the registryListener's OnRegister/
	// OnDeregister callbacks. atomic.Pointer alone only makes concurrent
	// *reads* of the published index safe; two concurrent writers each
	// doing Load-modify-Store on it race and can silently drop one
	// another's update, so every write path takes writeMu before reading
	// the current index and only releases it after the Store that
	// publishes the next one.
	writeMu sync.Mutex

	// boundRegistry is set by BindRegistry and consulted by every
	// subsequent rebuild (including AddKeyword calls made after binding)
	// so that static keywords and registry-derived keywords are never
	// rebuilt from only one of the two sources.
	boundRegistry *registry.Registry

	defaultService     string
	defaultConfidence  float64
	confidenceFloor    float64
	confidenceCeiling  float64
	confidenceWeight   float64
	staticKeywords     map[string][]keywordWeight // keyword -> (service, weight), insertion-ordered per caller
	staticKeywordOrder []string
	seqCounter         int
}

type keywordWeight struct {
	service string
	weight  float64
}

// Option configures a Matcher at construction time.
type Option func(*Matcher)

// WithDefaultService overrides the service returned when nothing matches.
func WithDefaultService(service string) Option {
	return func(m *Matcher) { m.defaultService = service }
}

// WithDefaultConfidence overrides the confidence returned when nothing matches.
func WithDefaultConfidence(c float64) Option {
	return func(m *Matcher) { m.defaultConfidence = c }
}

// WithConfidenceCurve overrides the floor/ceiling/weight of the scoring
// confidence curve: min(ceiling, floor + best_score*weight).
func WithConfidenceCurve(floor, ceiling, weight float64) Option {
	return func(m *Matcher) {
		m.confidenceFloor = floor
		m.confidenceCeiling = ceiling
		m.confidenceWeight = weight
	}
}

// New builds a Matcher with no keywords configured; bind it to a registry
// via BindRegistry, or seed it with AddKeyword, before calling FindBestMatch.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		defaultService:    "default-service",
		defaultConfidence: DefaultConfidenceFloor,
		confidenceFloor:   DefaultConfidenceFloor,
		confidenceCeiling: DefaultConfidenceCeiling,
		confidenceWeight:  DefaultScoreWeight,
	}
	for _, opt := range opts {
		opt(m)
	}
	empty := make([]entry, 0)
	m.index.Store(&empty)
	return m
}

// AddKeyword registers a static keyword -> service mapping with the given
// weight (default 1.0 semantics live at the call site). Static keywords are
// overlaid by anything a bound registry's service definitions contribute:
// registry entries take precedence on conflict. Safe to call before or after BindRegistry;
// either way the rebuild folds in whatever registry is currently bound, so
// a post-bind AddKeyword never wipes the registry-derived entries.
func (m *Matcher) AddKeyword(keywordText, service string, weight float64) {
	kw := strings.ToLower(strings.TrimSpace(keywordText))
	if kw == "" {
		return
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if m.staticKeywords == nil {
		m.staticKeywords = make(map[string][]keywordWeight)
	}
	if _, exists := m.staticKeywords[kw]; !exists {
		m.staticKeywordOrder = append(m.staticKeywordOrder, kw)
	}
	m.staticKeywords[kw] = append(m.staticKeywords[kw], keywordWeight{service: service, weight: weight})
	m.rebuildLocked()
}

// BindRegistry attaches the Matcher to a registry.Registry: it rebuilds the
// index from the registry's current contents immediately, and registers
// itself as a Listener so that future Register/Deregister calls keep the
// index in sync.
func (m *Matcher) BindRegistry(r *registry.Registry) {
	m.writeMu.Lock()
	m.boundRegistry = r
	m.rebuildLocked()
	m.writeMu.Unlock()

	r.AddListener((*registryListener)(m))
}

// rebuildLocked recomputes and publishes the full index from the static
// keyword set plus (if bound) the registry's current contents. Callers
// must hold writeMu.
func (m *Matcher) rebuildLocked() {
	var defs []models.ServiceDefinition
	if m.boundRegistry != nil {
		defs = m.boundRegistry.List()
	}
	next := m.buildEntries(defs)
	m.index.Store(&next)
}

func (m *Matcher) buildEntries(defs []models.ServiceDefinition) []entry {
	seq := 0
	byKeyword := make(map[string]entry)
	order := make([]string, 0, len(m.staticKeywordOrder))

	for _, kw := range m.staticKeywordOrder {
		mappings := m.staticKeywords[kw]
		if len(mappings) == 0 {
			continue
		}
		best := mappings[0]
		pat, err := compileKeywordPattern(kw)
		if err != nil {
			log.Warn().Err(err).Str("keyword", kw).Msg("keyword: skipping pattern that failed to compile")
			continue
		}
		if _, exists := byKeyword[kw]; !exists {
			order = append(order, kw)
		}
		byKeyword[kw] = entry{pattern: pat, service: best.service, weight: best.weight, sourceKey: kw, seq: seq}
		seq++
	}

	for _, def := range defs {
		for _, kw := range def.Keywords {
			norm := strings.ToLower(strings.TrimSpace(kw))
			if norm == "" {
				continue
			}
			pat, err := compileKeywordPattern(norm)
			if err != nil {
				log.Warn().Err(err).Str("keyword", norm).Str("service", def.ID).Msg("keyword: skipping pattern that failed to compile")
				continue
			}
			if _, exists := byKeyword[norm]; !exists {
				order = append(order, norm)
			}
			byKeyword[norm] = entry{pattern: pat, service: def.ID, weight: 1.0, sourceKey: norm, seq: seq}
			seq++
		}
	}

	out := make([]entry, 0, len(order))
	for _, kw := range order {
		out = append(out, byKeyword[kw])
	}
	return out
}

func compileKeywordPattern(keyword string) (*regexp.Regexp, error) {
	return regexp.Compile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
}

// FindBestMatch scores text against the current keyword index and returns
// the best-matching service decision. Safe for concurrent use; reads a
// single atomically-published index snapshot.
func (m *Matcher) FindBestMatch(text string) models.RoutingDecision {
	lowered := strings.ToLower(text)
	entries := *m.index.Load()

	var (
		bestScore float64
		bestEntry entry
		haveMatch bool
	)
	for _, e := range entries {
		count := len(e.pattern.FindAllStringIndex(lowered, -1))
		if count == 0 {
			continue
		}
		score := float64(count) * e.weight
		if score <= 0 {
			continue
		}
		if !haveMatch || score > bestScore {
			bestScore = score
			bestEntry = e
			haveMatch = true
		}
		// Ties broken by insertion order (first registered wins): since
		// entries is already insertion-ordered and we only replace on a
		// strictly greater score, the first equal-scoring entry sticks.
	}

	if !haveMatch {
		return models.NewRoutingDecision(m.defaultService, m.defaultConfidence, "No keywords matched")
	}

	confidence := m.confidenceFloor + bestScore*m.confidenceWeight
	if confidence > m.confidenceCeiling {
		confidence = m.confidenceCeiling
	}
	explanation := fmt.Sprintf("Matched keyword '%s' with score %.2f", bestEntry.sourceKey, bestScore)
	return models.NewRoutingDecision(bestEntry.service, confidence, explanation)
}

// registryListener adapts *Matcher to registry.Listener without exposing
// OnRegister/OnDeregister on the public Matcher API.
type registryListener Matcher

func (l *registryListener) OnRegister(def models.ServiceDefinition) {
	m := (*Matcher)(l)
	m.mergeRegistryEntries(def)
}

func (l *registryListener) OnDeregister(id string) {
	m := (*Matcher)(l)
	m.removeServiceEntries(id)
}

// mergeRegistryEntries incorporates one definition's keywords into the
// index via a full rebuild pass over the previously published entries plus
// the new definition's contributions, preserving atomicity of the swap.
// writeMu serializes this Load-modify-Store against every other writer, so
// two concurrent OnRegister/OnDeregister calls can't race on the same
// snapshot and silently drop each other's update.
func (m *Matcher) mergeRegistryEntries(def models.ServiceDefinition) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	prev := *m.index.Load()
	byKeyword := make(map[string]entry, len(prev))
	order := make([]string, 0, len(prev))
	for _, e := range prev {
		if _, exists := byKeyword[e.sourceKey]; !exists {
			order = append(order, e.sourceKey)
		}
		byKeyword[e.sourceKey] = e
	}

	seq := len(prev)
	for _, kw := range def.Keywords {
		norm := strings.ToLower(strings.TrimSpace(kw))
		if norm == "" {
			continue
		}
		pat, err := compileKeywordPattern(norm)
		if err != nil {
			log.Warn().Err(err).Str("keyword", norm).Str("service", def.ID).Msg("keyword: skipping pattern that failed to compile")
			continue
		}
		if _, exists := byKeyword[norm]; !exists {
			order = append(order, norm)
		}
		byKeyword[norm] = entry{pattern: pat, service: def.ID, weight: 1.0, sourceKey: norm, seq: seq}
		seq++
	}

	next := make([]entry, 0, len(order))
	for _, kw := range order {
		next = append(next, byKeyword[kw])
	}
	m.index.Store(&next)
}

// removeServiceEntries drops every index entry mapping to serviceID.
// writeMu serializes this Load-modify-Store against every other writer.
func (m *Matcher) removeServiceEntries(serviceID string) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	prev := *m.index.Load()
	next := make([]entry, 0, len(prev))
	for _, e := range prev {
		if e.service == serviceID {
			continue
		}
		next = append(next, e)
	}
	m.index.Store(&next)
}
