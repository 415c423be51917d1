package graph_test

import (
	"testing"

	"github.com/relaymesh/switchboard/internal/graph"
	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddServiceIdempotent(t *testing.T) {
	g := graph.New()
	g.AddService("gateway")
	g.AddService("gateway")
	assert.Equal(t, []string{"gateway"}, g.Services())
}

func TestGraph_AddEdgeRegistersEndpoints(t *testing.T) {
	g := graph.New()
	g.AddEdge("gateway", "auth-service", models.EdgeMetrics{LatencyMs: 5, Cost: 1, Reliability: 0.99})

	assert.True(t, g.HasService("gateway"))
	assert.True(t, g.HasService("auth-service"))
}

func TestGraph_AddEdgeAllowsDuplicates(t *testing.T) {
	g := graph.New()
	g.AddEdge("gateway", "auth-service", models.EdgeMetrics{LatencyMs: 5, Cost: 1, Reliability: 0.99})
	g.AddEdge("gateway", "auth-service", models.EdgeMetrics{LatencyMs: 3, Cost: 1, Reliability: 0.9})

	edges := g.Edges("gateway")
	require.Len(t, edges, 2)
	assert.Equal(t, 5.0, edges[0].Metrics.LatencyMs)
	assert.Equal(t, 3.0, edges[1].Metrics.LatencyMs)
}

func TestGraph_UpdateServiceReliabilityPreservesOtherFields(t *testing.T) {
	g := graph.New()
	g.AddEdge("gateway", "auth-service", models.EdgeMetrics{LatencyMs: 5, Cost: 2, Reliability: 0.5})
	g.AddEdge("gateway", "user-service", models.EdgeMetrics{LatencyMs: 7, Cost: 3, Reliability: 0.5})

	g.UpdateServiceReliability("gateway", 0.99)

	edges := g.Edges("gateway")
	require.Len(t, edges, 2)
	for _, e := range edges {
		assert.Equal(t, 0.99, e.Metrics.Reliability)
	}
	assert.Equal(t, 5.0, edges[0].Metrics.LatencyMs)
	assert.Equal(t, 2.0, edges[0].Metrics.Cost)
}

func TestGraph_EdgesSnapshotIsIndependent(t *testing.T) {
	g := graph.New()
	g.AddEdge("gateway", "auth-service", models.EdgeMetrics{LatencyMs: 5, Cost: 1, Reliability: 0.9})

	edges := g.Edges("gateway")
	g.AddEdge("gateway", "user-service", models.EdgeMetrics{LatencyMs: 6, Cost: 1, Reliability: 0.9})

	assert.Len(t, edges, 1)
}

func TestGraph_HasServiceUnknown(t *testing.T) {
	g := graph.New()
	assert.False(t, g.HasService("missing"))
}
