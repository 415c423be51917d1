package classifier

import (
	"github.com/relaymesh/switchboard/internal/keyword"
	"github.com/relaymesh/switchboard/pkg/models"
)

// Builtin wraps a keyword.Matcher as a Classifier.
type Builtin struct {
	matcher *keyword.Matcher
}

// NewBuiltin builds a Builtin classifier over matcher. Configure matcher's
// default confidence/service via keyword.WithDefaultConfidence and
// keyword.WithDefaultService before passing it here.
func NewBuiltin(matcher *keyword.Matcher) *Builtin {
	return &Builtin{matcher: matcher}
}

// Decide scores ctx.Payload against the bound keyword index.
func (b *Builtin) Decide(ctx models.DecisionContext) (models.RoutingDecision, error) {
	return b.matcher.FindBestMatch(ctx.Payload), nil
}

// Name identifies this classifier in dispatcher explanations and logs.
func (b *Builtin) Name() string {
	return "builtin-keyword"
}

// IsAvailable is always true: the keyword matcher has no external
// dependency that can be unavailable.
func (b *Builtin) IsAvailable() bool {
	return true
}
