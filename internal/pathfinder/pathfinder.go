// Package pathfinder implements Dijkstra's algorithm over a
// graph.Graph, plus the TARGET: extraction convention the hybrid
// dispatcher uses to decide where a multi-hop request should land.
//
// No third-party shortest-path library appears anywhere in the reference
// corpus this module was built against, so the priority queue is
// hand-rolled over container/heap in the manner the standard library
// documents, rather than imported.
package pathfinder

import (
	"container/heap"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/relaymesh/switchboard/internal/graph"
	"github.com/relaymesh/switchboard/pkg/models"
)

// Dijkstra computes shortest paths over a graph.Graph using the edge
// weight formula in models.EdgeMetrics.Weight. The zero value is not
// usable; use New.
type Dijkstra struct {
	g *graph.Graph
}

// New builds a Dijkstra pathfinder over g.
func New(g *graph.Graph) *Dijkstra {
	return &Dijkstra{g: g}
}

// pqItem is one entry in the priority queue: a tentative distance to a
// node, with the insertion sequence broken ties deterministically.
type pqItem struct {
	node  string
	dist  float64
	seq   int
	index int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}
func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// ShortestPath finds the least-weight path from source to target. It
// fails with *models.UnknownTargetError if target is not a node in the
// graph, and *models.NoPathError if target is unreachable from source.
func (d *Dijkstra) ShortestPath(source, target string) (models.RoutingPath, error) {
	if !d.g.HasService(target) {
		return models.RoutingPath{}, &models.UnknownTargetError{Target: target}
	}
	if source == target {
		return models.NewRoutingPath([]string{source}, 0, 0), nil
	}

	dist := map[string]float64{source: 0}
	prev := make(map[string]string)
	visited := make(map[string]bool)

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{node: source, dist: 0, seq: 0})
	seq := 1

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*pqItem)
		if visited[current.node] {
			continue
		}
		if best, ok := dist[current.node]; ok && current.dist > best {
			continue
		}
		visited[current.node] = true

		if current.node == target {
			break
		}

		for _, edge := range d.g.Edges(current.node) {
			if visited[edge.To] {
				continue
			}
			candidate := current.dist + edge.Metrics.Weight()
			best, known := dist[edge.To]
			if !known || candidate < best {
				dist[edge.To] = candidate
				prev[edge.To] = current.node
				heap.Push(pq, &pqItem{node: edge.To, dist: candidate, seq: seq})
				seq++
			}
		}
	}

	finalDist, reached := dist[target]
	if !reached || !visited[target] {
		return models.RoutingPath{}, &models.NoPathError{Source: source, Target: target}
	}

	services := reconstructPath(prev, source, target)
	return models.NewRoutingPath(services, 0.5*finalDist, 0.3*finalDist), nil
}

func reconstructPath(prev map[string]string, source, target string) []string {
	path := []string{target}
	node := target
	for node != source {
		p, ok := prev[node]
		if !ok {
			break
		}
		path = append(path, p)
		node = p
	}
	// path was built target -> source; reverse it.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Confidence derives a pathfinder confidence score from a path's hop
// count: 0 hops -> 1.0, 1 -> 0.95, 2 -> 0.90, 3 -> 0.85, otherwise
// max(0.7, 0.95 - 0.05*hops).
func Confidence(hopCount int) float64 {
	switch hopCount {
	case 0:
		return 1.0
	case 1:
		return 0.95
	case 2:
		return 0.90
	case 3:
		return 0.85
	default:
		return math.Max(0.7, 0.95-0.05*float64(hopCount))
	}
}

// Explain formats the routing explanation for a computed path, e.g.
// "Optimal path: gateway → auth-service (hops: 1, latency: 5.0ms, cost: 2.5000)".
func Explain(path models.RoutingPath) string {
	hops := path.HopCount()
	return fmt.Sprintf("Optimal path: %s (hops: %d, latency: %.1fms, cost: %.4f)",
		strings.Join(path.Services, " → "), hops, path.EstimatedLatency, path.TotalCost)
}

var builtinTargetPatterns = []struct {
	pattern *regexp.Regexp
	target  string
}{
	{regexp.MustCompile(`\b(auth|login)\b`), "auth-service"},
	{regexp.MustCompile(`\b(user|profile)\b`), "user-service"},
	{regexp.MustCompile(`\b(billing|payment)\b`), "billing-service"},
	{regexp.MustCompile(`\b(notif|email)\b`), "notification-service"},
}

const targetPrefix = "TARGET:"

// ExtractTarget determines the destination service id for payload. If
// payload begins with "TARGET:" (case-sensitive), the trimmed
// remainder is the target. Otherwise a built-in keyword table is
// consulted. If neither yields a target, it fails with
// *models.NoTargetError.
func ExtractTarget(payload string) (string, error) {
	if strings.HasPrefix(payload, targetPrefix) {
		target := strings.TrimSpace(strings.TrimPrefix(payload, targetPrefix))
		if target != "" {
			return target, nil
		}
	}
	lowered := strings.ToLower(payload)
	for _, candidate := range builtinTargetPatterns {
		if candidate.pattern.MatchString(lowered) {
			return candidate.target, nil
		}
	}
	return "", &models.NoTargetError{Payload: payload}
}
