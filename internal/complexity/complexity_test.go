package complexity_test

import (
	"testing"

	"github.com/relaymesh/switchboard/internal/complexity"
	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classify(t *testing.T, payload string) complexity.Category {
	t.Helper()
	ctx, err := models.NewDecisionContext(payload)
	require.NoError(t, err)
	return complexity.New().Classify(ctx)
}

func TestClassify_Simple(t *testing.T) {
	assert.Equal(t, complexity.Simple, classify(t, "please reset my password"))
}

func TestClassify_MultiHop(t *testing.T) {
	assert.Equal(t, complexity.MultiHop, classify(t, "authorize and then charge the card"))
}

func TestClassify_CostSensitive(t *testing.T) {
	assert.Equal(t, complexity.CostSensitive, classify(t, "find the cheapest provider"))
}

func TestClassify_Failover(t *testing.T) {
	assert.Equal(t, complexity.Failover, classify(t, "use a backup provider if this fails"))
}

func TestClassify_CostTakesPrecedenceOverMultiHop(t *testing.T) {
	// Contains both a cost marker and a multi-hop marker; cost must win.
	assert.Equal(t, complexity.CostSensitive, classify(t, "optimize cost and then notify billing"))
}

func TestClassify_TargetPrefixWithMultiHopMarker(t *testing.T) {
	assert.Equal(t, complexity.MultiHop, classify(t, "TARGET:billing-service and then notify"))
}

func TestClassify_TargetPrefixWithoutMultiHopMarkerIsSimple(t *testing.T) {
	// Even though the payload also contains a cost marker, an explicit
	// TARGET: prefix short-circuits straight to Simple/MultiHop.
	assert.Equal(t, complexity.Simple, classify(t, "TARGET:billing-service find cheapest plan"))
}

func TestClassify_MinimizeStemMatches(t *testing.T) {
	assert.Equal(t, complexity.CostSensitive, classify(t, "please minimize total spend"))
}
