package models_test

import (
	"math"
	"testing"
	"time"

	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecisionContext_TrimsAndValidates(t *testing.T) {
	ctx, err := models.NewDecisionContext("  hello world  ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", ctx.Payload)
}

func TestNewDecisionContext_RejectsBlank(t *testing.T) {
	_, err := models.NewDecisionContext("   ")
	require.Error(t, err)
	var invalid *models.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestNewDecisionContext_RejectsOversized(t *testing.T) {
	big := make([]byte, models.MaxPayloadLength+1)
	for i := range big {
		big[i] = 'a'
	}
	_, err := models.NewDecisionContext(string(big))
	require.Error(t, err)
}

func TestNewRoutingDecision_NaNConfidenceBecomesZero(t *testing.T) {
	d := models.NewRoutingDecision("svc", math.NaN(), "explain")
	assert.Equal(t, 0.0, d.Confidence)
}

func TestNewRoutingDecision_ClampsAboveOne(t *testing.T) {
	d := models.NewRoutingDecision("svc", 2.0, "explain")
	assert.Equal(t, 1.0, d.Confidence)
}

func TestNewRoutingDecision_ClampsBelowZero(t *testing.T) {
	d := models.NewRoutingDecision("svc", -5.0, "explain")
	assert.Equal(t, 0.0, d.Confidence)
}

func TestNewRoutingResult_CoercesNegativeProcessingTime(t *testing.T) {
	decision := models.NewRoutingDecision("svc", 0.5, "explain")
	result := models.NewRoutingResult(decision, -10, time.Now())
	assert.Equal(t, int64(0), result.ProcessingTimeMs)
}

func TestNewRoutingResult_AssignsUniqueRequestID(t *testing.T) {
	decision := models.NewRoutingDecision("svc", 0.5, "explain")
	a := models.NewRoutingResult(decision, 0, time.Now())
	b := models.NewRoutingResult(decision, 0, time.Now())
	assert.NotEmpty(t, a.RequestID)
	assert.NotEqual(t, a.RequestID, b.RequestID)
}
