package pathfinder_test

import (
	"testing"

	"github.com/relaymesh/switchboard/internal/graph"
	"github.com/relaymesh/switchboard/internal/pathfinder"
	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildScenarioGraph() *graph.Graph {
	g := graph.New()
	g.AddEdge("gateway", "auth-service", models.EdgeMetrics{LatencyMs: 10, Cost: 0, Reliability: 0.999})
	g.AddEdge("auth-service", "user-service", models.EdgeMetrics{LatencyMs: 20, Cost: 0.001, Reliability: 0.99})
	g.AddEdge("user-service", "billing-service", models.EdgeMetrics{LatencyMs: 30, Cost: 0.002, Reliability: 0.98})
	g.AddEdge("gateway", "user-service", models.EdgeMetrics{LatencyMs: 100, Cost: 0.01, Reliability: 0.95})
	return g
}

func TestDijkstra_DirectVsCheaperMultiHop(t *testing.T) {
	d := pathfinder.New(buildScenarioGraph())

	path, err := d.ShortestPath("gateway", "user-service")
	require.NoError(t, err)
	assert.Equal(t, []string{"gateway", "auth-service", "user-service"}, path.Services)
	assert.Equal(t, 2, path.HopCount())
	assert.Equal(t, 0.90, pathfinder.Confidence(path.HopCount()))
}

func TestDijkstra_MultiHopToBilling(t *testing.T) {
	d := pathfinder.New(buildScenarioGraph())

	path, err := d.ShortestPath("gateway", "billing-service")
	require.NoError(t, err)
	assert.Equal(t, []string{"gateway", "auth-service", "user-service", "billing-service"}, path.Services)
	assert.Equal(t, 3, path.HopCount())
	assert.Equal(t, 0.85, pathfinder.Confidence(path.HopCount()))
}

func TestDijkstra_UnknownTarget(t *testing.T) {
	d := pathfinder.New(buildScenarioGraph())

	_, err := d.ShortestPath("gateway", "nonexistent-service")
	var unknown *models.UnknownTargetError
	require.ErrorAs(t, err, &unknown)
}

func TestDijkstra_NoPath(t *testing.T) {
	g := graph.New()
	g.AddService("gateway")
	g.AddService("isolated-service")

	d := pathfinder.New(g)
	_, err := d.ShortestPath("gateway", "isolated-service")
	var noPath *models.NoPathError
	require.ErrorAs(t, err, &noPath)
}

func TestDijkstra_SourceEqualsTarget(t *testing.T) {
	d := pathfinder.New(buildScenarioGraph())
	path, err := d.ShortestPath("gateway", "gateway")
	require.NoError(t, err)
	assert.Equal(t, []string{"gateway"}, path.Services)
	assert.Equal(t, 0, path.HopCount())
}

func TestConfidence_KnownHopCounts(t *testing.T) {
	assert.Equal(t, 1.0, pathfinder.Confidence(0))
	assert.Equal(t, 0.95, pathfinder.Confidence(1))
	assert.Equal(t, 0.90, pathfinder.Confidence(2))
	assert.Equal(t, 0.85, pathfinder.Confidence(3))
}

func TestConfidence_HighHopCountFloor(t *testing.T) {
	assert.Equal(t, 0.7, pathfinder.Confidence(10))
}

func TestExplain_FormatsPath(t *testing.T) {
	path := models.NewRoutingPath([]string{"gateway", "auth-service"}, 2.5, 5.0)
	explanation := pathfinder.Explain(path)
	assert.Equal(t, "Optimal path: gateway → auth-service (hops: 1, latency: 5.0ms, cost: 2.5000)", explanation)
}

func TestExtractTarget_ExplicitPrefix(t *testing.T) {
	target, err := pathfinder.ExtractTarget("TARGET: billing-service")
	require.NoError(t, err)
	assert.Equal(t, "billing-service", target)
}

func TestExtractTarget_BuiltinKeywordTable(t *testing.T) {
	cases := map[string]string{
		"please handle my login":   "auth-service",
		"update my user profile":   "user-service",
		"billing payment question": "billing-service",
		"send a notif about this":  "notification-service",
	}
	for payload, want := range cases {
		target, err := pathfinder.ExtractTarget(payload)
		require.NoError(t, err)
		assert.Equal(t, want, target)
	}
}

func TestExtractTarget_NoTarget(t *testing.T) {
	_, err := pathfinder.ExtractTarget("nothing relevant here")
	var noTarget *models.NoTargetError
	require.ErrorAs(t, err, &noTarget)
}
