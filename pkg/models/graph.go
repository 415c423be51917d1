package models

// EdgeMetrics carries the raw per-edge measurements the service graph
// tracks between two services. Weight is derived from these via the fixed
// constants below; implementations must not change the constants, since
// derived latency/cost/confidence numbers are expected to match across
// reimplementations of this router.
type EdgeMetrics struct {
	LatencyMs   float64
	Cost        float64
	Reliability float64 // in [0, 1]
}

// Weight computes the Dijkstra edge weight from the edge's raw metrics.
// 0.5*latency + 0.3*cost + 0.2*(1-reliability)*1000.
func (e EdgeMetrics) Weight() float64 {
	return 0.5*e.LatencyMs + 0.3*e.Cost + 0.2*(1-e.Reliability)*1000
}

// RoutingPath is the ordered result of a Dijkstra shortest-path search:
// the sequence of service ids from source to target, plus the total cost
// and estimated latency derived from the path's total weight.
type RoutingPath struct {
	Services         []string
	TotalCost        float64
	EstimatedLatency float64
}

// NewRoutingPath builds a RoutingPath with a defensive copy of services.
func NewRoutingPath(services []string, totalCost, estimatedLatency float64) RoutingPath {
	cp := make([]string, len(services))
	copy(cp, services)
	return RoutingPath{Services: cp, TotalCost: totalCost, EstimatedLatency: estimatedLatency}
}

// HopCount returns the number of edges traversed: len(services)-1, or 0
// for an empty/singleton path.
func (p RoutingPath) HopCount() int {
	if len(p.Services) == 0 {
		return 0
	}
	return len(p.Services) - 1
}

// Equal reports whether two paths carry the same services (in order) and
// the same total cost / estimated latency.
func (p RoutingPath) Equal(other RoutingPath) bool {
	if p.TotalCost != other.TotalCost || p.EstimatedLatency != other.EstimatedLatency {
		return false
	}
	if len(p.Services) != len(other.Services) {
		return false
	}
	for i, s := range p.Services {
		if other.Services[i] != s {
			return false
		}
	}
	return true
}
