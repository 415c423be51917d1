// Package complexity classifies a DecisionContext's payload into a
// routing strategy bucket before the hybrid dispatcher picks an engine.
//
// The precedence chain below is grounded on the pack's complexity_router.go
// heuristic router (input-shape-driven bucket selection ahead of any
// semantic classification) and is order-sensitive: cost-sensitivity is
// checked before multi-hop, and an explicit TARGET: prefix short-circuits
// straight to MultiHop-or-Simple before either pattern is considered.
package complexity

import (
	"regexp"
	"strings"

	"github.com/relaymesh/switchboard/pkg/models"
)

// Category is the routing-strategy bucket a request falls into.
type Category int

const (
	Simple Category = iota
	MultiHop
	CostSensitive
	Failover
)

func (c Category) String() string {
	switch c {
	case Simple:
		return "simple"
	case MultiHop:
		return "multi_hop"
	case CostSensitive:
		return "cost_sensitive"
	case Failover:
		return "failover"
	default:
		return "unknown"
	}
}

var (
	multiHopPattern = regexp.MustCompile(`\b(and then|after|followed by|before|chain|orchestrate|workflow)\b`)
	costPattern     = regexp.MustCompile(`\b(cheap\w*|expensive|cost\w*|budget\w*|optimiz\w*|minimiz\w*)\b`)
	failoverPattern = regexp.MustCompile(`\b(failover|backup|alternative|fallback|retry)\b`)
)

const targetPrefix = "target:"

// Analyzer classifies DecisionContext payloads into routing categories.
// Stateless and safe to share.
type Analyzer struct{}

// New builds a stateless Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Classify applies the precedence chain from the package doc to the
// lowercased payload.
func (a *Analyzer) Classify(ctx models.DecisionContext) Category {
	lowered := strings.ToLower(ctx.Payload)

	if strings.HasPrefix(lowered, targetPrefix) {
		if multiHopPattern.MatchString(lowered) {
			return MultiHop
		}
		return Simple
	}
	if costPattern.MatchString(lowered) {
		return CostSensitive
	}
	if multiHopPattern.MatchString(lowered) {
		return MultiHop
	}
	if failoverPattern.MatchString(lowered) {
		return Failover
	}
	return Simple
}
