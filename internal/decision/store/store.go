// Package store persists the six decision-engine entities. Two
// implementations exist: the in-memory store for development wiring and unit
// tests, and the PostgreSQL store for production. Both return
// pkg/platform/sentinel errors for infrastructure facts; services translate
// those into coded domain errors.
package store

import (
	"context"

	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
)

// Store is the persistence port for the decision engine. Mutating methods
// are called inside the service's transactional boundary (RunInTx); read
// methods must return consistent snapshots and deep copies that callers can
// hold without racing the store.
type Store interface {
	// CreateDecision persists a new draft and assigns its per-project
	// monotonic sequence number on the passed aggregate.
	CreateDecision(ctx context.Context, d *models.Decision) error
	GetDecision(ctx context.Context, decisionID id.DecisionID) (*models.Decision, error)
	UpdateDecision(ctx context.Context, d *models.Decision) error
	// ListProjectDecisions returns all non-soft-deleted decisions in a
	// project, ordered by project sequence.
	ListProjectDecisions(ctx context.Context, projectID id.ProjectID) ([]*models.Decision, error)

	ListSignals(ctx context.Context, decisionID id.DecisionID) ([]*models.Signal, error)
	GetSignal(ctx context.Context, decisionID id.DecisionID, signalID id.SignalID) (*models.Signal, error)
	SaveSignal(ctx context.Context, s *models.Signal) error
	DeleteSignal(ctx context.Context, decisionID id.DecisionID, signalID id.SignalID) error

	ListOptions(ctx context.Context, decisionID id.DecisionID) ([]*models.Option, error)
	GetOption(ctx context.Context, decisionID id.DecisionID, optionID id.OptionID) (*models.Option, error)
	SaveOption(ctx context.Context, o *models.Option) error

	// ListProjectEdges returns every edge in the project.
	ListProjectEdges(ctx context.Context, projectID id.ProjectID) ([]models.Edge, error)
	// ListParents returns the decision's current parent set (sources of its
	// inbound edges).
	ListParents(ctx context.Context, decisionID id.DecisionID) ([]id.DecisionID, error)
	InsertEdge(ctx context.Context, e models.Edge) error
	DeleteEdge(ctx context.Context, projectID id.ProjectID, from, to id.DecisionID) error

	AppendTransition(ctx context.Context, t *models.StateTransition) error
	ListTransitions(ctx context.Context, decisionID id.DecisionID) ([]*models.StateTransition, error)

	CreateCommitRecord(ctx context.Context, r *models.CommitRecord) error
	GetCommitRecord(ctx context.Context, decisionID id.DecisionID) (*models.CommitRecord, error)

	AddReview(ctx context.Context, r *models.Review) error
	ListReviews(ctx context.Context, decisionID id.DecisionID) ([]*models.Review, error)
	CountReviews(ctx context.Context, decisionID id.DecisionID) (int, error)

	// ProjectGraph returns a single consistent snapshot of the project's
	// nodes and edges; no torn reads across the two sets.
	ProjectGraph(ctx context.Context, projectID id.ProjectID) (*models.Graph, error)
}
