package models

import (
	"time"

	id "verdict/pkg/domain"
)

// Edge is one directed dependency edge: From is a prerequisite (parent) of
// To. Edges are graph metadata attached at authoring time; they are replaced
// as a diff, never mutated in place.
//
// Invariants (enforced by the graph mutation path, all-or-nothing):
//   - no self loops
//   - at most one edge per ordered (From, To) pair
//   - the full project edge set stays acyclic
//   - both endpoints belong to the same project
type Edge struct {
	ProjectID id.ProjectID  `json:"project_id"`
	From      id.DecisionID `json:"from"`
	To        id.DecisionID `json:"to"`
	CreatedAt time.Time     `json:"created_at"`
}

// Graph is a consistent snapshot of one project's decisions and edges, for
// visualization.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []Edge      `json:"edges"`
}

// GraphNode tags a decision's identity with its current status.
type GraphNode struct {
	ID         id.DecisionID `json:"id"`
	ProjectSeq int64         `json:"project_seq"`
	Title      string        `json:"title"`
	Status     Status        `json:"status"`
}
