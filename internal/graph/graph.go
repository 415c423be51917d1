// Package graph holds the directed, weighted service graph the
// pathfinder searches: services as nodes, edges carrying EdgeMetrics.
//
// A single RWMutex guards a map of slices: read-heavy access takes
// RLock, and mutation takes the full write lock. Iteration snapshots are
// copied out under lock so callers never observe a map/slice being
// mutated mid-range.
package graph

import (
	"sync"

	"github.com/relaymesh/switchboard/pkg/models"
)

// Edge is one weighted directed edge, kept in the order it was added.
type Edge struct {
	To      string
	Metrics models.EdgeMetrics
}

// Graph is a directed, weighted, thread-safe service graph. Duplicate
// edges between the same pair of nodes are permitted and all are visible
// to the pathfinder. The zero value is not usable; use New.
type Graph struct {
	mu       sync.RWMutex
	services map[string]struct{}
	outEdges map[string][]Edge
	order    []string // node insertion order, for deterministic enumeration
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		services: make(map[string]struct{}),
		outEdges: make(map[string][]Edge),
	}
}

// AddService registers a node id, idempotently. Metadata about a service
// lives in the ServiceRegistry, not here; the graph only needs the id to
// exist as an addressable node.
func (g *Graph) AddService(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.services[id]; exists {
		return
	}
	g.services[id] = struct{}{}
	g.order = append(g.order, id)
}

// AddEdge appends a directed edge from -> to with the given metrics. Both
// endpoints are implicitly registered as services if not already present.
// Duplicate edges are permitted; all are considered during pathfinding.
func (g *Graph) AddEdge(from, to string, metrics models.EdgeMetrics) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.services[from]; !exists {
		g.services[from] = struct{}{}
		g.order = append(g.order, from)
	}
	if _, exists := g.services[to]; !exists {
		g.services[to] = struct{}{}
		g.order = append(g.order, to)
	}
	g.outEdges[from] = append(g.outEdges[from], Edge{To: to, Metrics: metrics})
}

// UpdateServiceReliability replaces the Reliability field of every
// outgoing edge of id, preserving LatencyMs and Cost on each edge.
func (g *Graph) UpdateServiceReliability(id string, reliability float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	edges := g.outEdges[id]
	for i := range edges {
		edges[i].Metrics.Reliability = reliability
	}
}

// HasService reports whether id has been registered as a node, either
// explicitly or implicitly via AddEdge.
func (g *Graph) HasService(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.services[id]
	return ok
}

// Edges returns a snapshot copy of the outgoing edges of id, in insertion
// order. Safe to range over while the graph continues to mutate.
func (g *Graph) Edges(id string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	src := g.outEdges[id]
	out := make([]Edge, len(src))
	copy(out, src)
	return out
}

// Services returns a snapshot of all node ids in insertion order.
func (g *Graph) Services() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}
