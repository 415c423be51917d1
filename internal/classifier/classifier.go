// Package classifier provides the two Classifier implementations the
// hybrid dispatcher chooses between for Simple-complexity requests: a
// keyword-backed built-in, and an external LLM-backed one with retry and
// circuit-breaking.
package classifier

import (
	"github.com/relaymesh/switchboard/pkg/models"
)

// Classifier maps a DecisionContext to a RoutingDecision.
type Classifier interface {
	Decide(ctx models.DecisionContext) (models.RoutingDecision, error)
	Name() string
	IsAvailable() bool
}
