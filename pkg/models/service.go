// Package models holds the immutable value types shared across the
// switchboard router: service definitions, graph edge metrics, routing
// paths, decision contexts, and the decisions/results produced from them.
package models

// ServiceDefinition describes a candidate downstream service a request can
// be routed to. It is immutable once constructed; callers that need to
// change keywords or display name register a new definition with the same
// id, which overwrites the prior one in the registry.
type ServiceDefinition struct {
	ID          string
	DisplayName string
	Keywords    []string
}

// NewServiceDefinition builds a ServiceDefinition with a defensive copy of
// keywords, so later mutation of the caller's slice cannot affect the
// registry's view of it.
func NewServiceDefinition(id, displayName string, keywords []string) ServiceDefinition {
	cp := make([]string, len(keywords))
	copy(cp, keywords)
	return ServiceDefinition{ID: id, DisplayName: displayName, Keywords: cp}
}

// Equal reports whether two definitions carry the same id, display name,
// and keywords in the same order.
func (s ServiceDefinition) Equal(other ServiceDefinition) bool {
	if s.ID != other.ID || s.DisplayName != other.DisplayName {
		return false
	}
	if len(s.Keywords) != len(other.Keywords) {
		return false
	}
	for i, k := range s.Keywords {
		if other.Keywords[i] != k {
			return false
		}
	}
	return true
}
