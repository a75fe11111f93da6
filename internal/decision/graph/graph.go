// Package graph holds the pure dependency-graph logic: parent-set
// validation, diffing, and cycle detection. Everything here operates on
// in-memory edge sets; persistence and locking live in the store and the
// service's transactional boundary.
package graph

import (
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/internal/decision/models"
)

// Adjacency maps a parent decision to its children, i.e. it follows edge
// direction From -> To.
type Adjacency map[id.DecisionID][]id.DecisionID

// BuildAdjacency folds a project's edge list into an adjacency map.
func BuildAdjacency(edges []models.Edge) Adjacency {
	adj := make(Adjacency, len(edges))
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}

// ValidateParentSet rejects structurally bad parent sets before any graph
// work: a decision cannot be its own parent and a parent may appear only
// once.
func ValidateParentSet(decisionID id.DecisionID, parents []id.DecisionID) error {
	seen := make(map[id.DecisionID]struct{}, len(parents))
	for _, p := range parents {
		if p == decisionID {
			return dErrors.New(dErrors.CodeValidation, "a decision cannot be its own parent")
		}
		if _, dup := seen[p]; dup {
			return dErrors.New(dErrors.CodeValidation, "duplicate parent decision id: "+p.String())
		}
		seen[p] = struct{}{}
	}
	return nil
}

// DiffParents computes the edge diff that replaces the current parent set
// with the requested one. Unchanged parents appear in neither slice.
func DiffParents(current, requested []id.DecisionID) (toAdd, toRemove []id.DecisionID) {
	cur := make(map[id.DecisionID]struct{}, len(current))
	for _, p := range current {
		cur[p] = struct{}{}
	}
	req := make(map[id.DecisionID]struct{}, len(requested))
	for _, p := range requested {
		req[p] = struct{}{}
	}
	for _, p := range requested {
		if _, ok := cur[p]; !ok {
			toAdd = append(toAdd, p)
		}
	}
	for _, p := range current {
		if _, ok := req[p]; !ok {
			toRemove = append(toRemove, p)
		}
	}
	return toAdd, toRemove
}

// WouldCycle reports whether adding the edge parent -> child would close a
// cycle: a breadth-first walk from child along existing outgoing edges that
// reaches parent means the new edge completes a loop.
func WouldCycle(adj Adjacency, parent, child id.DecisionID) bool {
	visited := make(map[id.DecisionID]bool)
	queue := []id.DecisionID{child}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == parent {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, next := range adj[current] {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	return false
}

// CheckAcyclic validates that replacing decisionID's parent set with the
// requested parents keeps the project graph acyclic. The check runs against
// the hypothetical graph: current inbound parent edges of decisionID are
// dropped, then each requested edge is tested before being added, so a
// rejection names the first edge that would close a loop while the whole
// operation stays all-or-nothing for the caller.
func CheckAcyclic(projectEdges []models.Edge, decisionID id.DecisionID, parents []id.DecisionID) error {
	adj := make(Adjacency, len(projectEdges))
	for _, e := range projectEdges {
		if e.To == decisionID {
			continue // replaced by the requested set
		}
		adj[e.From] = append(adj[e.From], e.To)
	}

	for _, parent := range parents {
		if WouldCycle(adj, parent, decisionID) {
			return dErrors.New(dErrors.CodeCycle,
				"edge "+parent.String()+" -> "+decisionID.String()+" would create a cycle")
		}
		adj[parent] = append(adj[parent], decisionID)
	}
	return nil
}
