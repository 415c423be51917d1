package models_test

import (
	"testing"

	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestEdgeMetrics_Weight(t *testing.T) {
	e := models.EdgeMetrics{LatencyMs: 10, Cost: 0, Reliability: 0.999}
	// 0.5*10 + 0.3*0 + 0.2*(1-0.999)*1000 = 5 + 0 + 0.2
	assert.InDelta(t, 5.2, e.Weight(), 1e-9)
}

func TestRoutingPath_HopCount(t *testing.T) {
	p := models.NewRoutingPath([]string{"gateway", "auth-service", "user-service"}, 10, 3)
	assert.Equal(t, 2, p.HopCount())
}

func TestRoutingPath_EmptyHopCount(t *testing.T) {
	p := models.NewRoutingPath(nil, 0, 0)
	assert.Equal(t, 0, p.HopCount())
}

func TestRoutingPath_RoundTripEquality(t *testing.T) {
	services := []string{"a", "b", "c"}
	p1 := models.NewRoutingPath(services, 12.5, 3.1)
	p2 := models.NewRoutingPath(p1.Services, p1.TotalCost, p1.EstimatedLatency)
	assert.True(t, p1.Equal(p2))
}

func TestRoutingPath_DefensiveCopy(t *testing.T) {
	services := []string{"a", "b"}
	p := models.NewRoutingPath(services, 1, 1)
	services[0] = "mutated"
	assert.Equal(t, "a", p.Services[0])
}

func TestServiceDefinition_Equal(t *testing.T) {
	a := models.NewServiceDefinition("auth", "Auth Service", []string{"login", "token"})
	b := models.NewServiceDefinition("auth", "Auth Service", []string{"login", "token"})
	assert.True(t, a.Equal(b))

	c := models.NewServiceDefinition("auth", "Auth Service", []string{"token", "login"})
	assert.False(t, a.Equal(c))
}
