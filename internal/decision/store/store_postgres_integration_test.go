//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"verdict/internal/decision/models"
	"verdict/internal/decision/store"
	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
	"verdict/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.pg = mgr.GetPostgres(s.T())
	s.Require().NoError(store.Migrate(context.Background(), s.pg.DB))
	s.store = store.NewPostgresStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	for _, table := range []string{"reviews", "commit_records", "decision_state_transitions", "decision_edges", "options", "signals", "decisions"} {
		_, err := s.pg.DB.ExecContext(ctx, "DELETE FROM "+table)
		s.Require().NoError(err)
	}
}

func (s *PostgresStoreSuite) newDecision(projectID id.ProjectID) *models.Decision {
	d, err := models.NewDecision(id.NewDecisionID(), projectID, id.NewUserID(), "Consolidate the data warehouses", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return d
}

func (s *PostgresStoreSuite) TestDecisionRoundTrip() {
	ctx := context.Background()
	projectID := id.NewProjectID()
	d := s.newDecision(projectID)
	d.ContextSummary = "Three warehouses, three bills."
	d.RequiresApproval = true

	s.Require().NoError(s.store.CreateDecision(ctx, d))
	s.Equal(int64(1), d.ProjectSeq)

	got, err := s.store.GetDecision(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(d.Title, got.Title)
	s.Equal(d.ContextSummary, got.ContextSummary)
	s.Equal(models.StatusDraft, got.Status)
	s.True(got.RequiresApproval)
	s.Nil(got.CommittedAt)
	s.Nil(got.CommittedByID)

	committer := id.NewUserID()
	now := time.Now().UTC().Truncate(time.Microsecond)
	got.Status = models.StatusCommitted
	got.CommittedAt = &now
	got.CommittedByID = &committer
	s.Require().NoError(s.store.UpdateDecision(ctx, got))

	got, err = s.store.GetDecision(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCommitted, got.Status)
	s.Require().NotNil(got.CommittedByID)
	s.Equal(committer, *got.CommittedByID)
	s.Require().NotNil(got.CommittedAt)
	s.True(now.Equal(*got.CommittedAt))
}

func (s *PostgresStoreSuite) TestProjectSeqAssignment() {
	ctx := context.Background()
	projectA := id.NewProjectID()
	projectB := id.NewProjectID()

	for i := int64(1); i <= 3; i++ {
		d := s.newDecision(projectA)
		s.Require().NoError(s.store.CreateDecision(ctx, d))
		s.Equal(i, d.ProjectSeq)
	}
	other := s.newDecision(projectB)
	s.Require().NoError(s.store.CreateDecision(ctx, other))
	s.Equal(int64(1), other.ProjectSeq)
}

func (s *PostgresStoreSuite) TestGetDecision_NotFoundAndSoftDeleted() {
	ctx := context.Background()

	_, err := s.store.GetDecision(ctx, id.NewDecisionID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	d := s.newDecision(id.NewProjectID())
	s.Require().NoError(s.store.CreateDecision(ctx, d))
	d.IsDeleted = true
	s.Require().NoError(s.store.UpdateDecision(ctx, d))

	_, err = s.store.GetDecision(ctx, d.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSignals() {
	ctx := context.Background()
	d := s.newDecision(id.NewProjectID())
	s.Require().NoError(s.store.CreateDecision(ctx, d))

	sig, err := models.NewSignal(id.NewSignalID(), d.ID, "support tickets", "tripled", "this month", "last month", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	sig.ScopeType = models.ScopeChannel
	sig.ScopeValue = "self-serve"
	s.Require().NoError(s.store.SaveSignal(ctx, sig))

	got, err := s.store.GetSignal(ctx, d.ID, sig.ID)
	s.Require().NoError(err)
	s.Equal(sig.Metric, got.Metric)
	s.Equal(models.ScopeChannel, got.ScopeType)
	s.Equal("self-serve", got.ScopeValue)

	// Save is an upsert.
	got.DisplayTextOverride = "Ticket volume exploded"
	s.Require().NoError(s.store.SaveSignal(ctx, got))
	got, err = s.store.GetSignal(ctx, d.ID, sig.ID)
	s.Require().NoError(err)
	s.Equal("Ticket volume exploded", got.DisplayTextOverride)

	s.Require().NoError(s.store.DeleteSignal(ctx, d.ID, sig.ID))
	s.ErrorIs(s.store.DeleteSignal(ctx, d.ID, sig.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestOptionsOrdering() {
	ctx := context.Background()
	d := s.newDecision(id.NewProjectID())
	s.Require().NoError(s.store.CreateDecision(ctx, d))

	now := time.Now().UTC().Truncate(time.Microsecond)
	second, err := models.NewOption(id.NewOptionID(), d.ID, "Migrate to one warehouse", 2, now)
	s.Require().NoError(err)
	first, err := models.NewOption(id.NewOptionID(), d.ID, "Keep all three", 1, now)
	s.Require().NoError(err)
	first.IsSelected = true
	s.Require().NoError(s.store.SaveOption(ctx, second))
	s.Require().NoError(s.store.SaveOption(ctx, first))

	list, err := s.store.ListOptions(ctx, d.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Keep all three", list[0].Text)
	s.True(list[0].IsSelected)
}

func (s *PostgresStoreSuite) TestEdges() {
	ctx := context.Background()
	projectID := id.NewProjectID()
	a := s.newDecision(projectID)
	b := s.newDecision(projectID)
	s.Require().NoError(s.store.CreateDecision(ctx, a))
	s.Require().NoError(s.store.CreateDecision(ctx, b))

	edge := models.Edge{ProjectID: projectID, From: a.ID, To: b.ID, CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
	s.Require().NoError(s.store.InsertEdge(ctx, edge))
	s.ErrorIs(s.store.InsertEdge(ctx, edge), sentinel.ErrConflict, "duplicate ordered pair")

	parents, err := s.store.ListParents(ctx, b.ID)
	s.Require().NoError(err)
	s.Equal([]id.DecisionID{a.ID}, parents)

	edges, err := s.store.ListProjectEdges(ctx, projectID)
	s.Require().NoError(err)
	s.Require().Len(edges, 1)
	s.Equal(a.ID, edges[0].From)
	s.Equal(b.ID, edges[0].To)

	s.Require().NoError(s.store.DeleteEdge(ctx, projectID, a.ID, b.ID))
	s.ErrorIs(s.store.DeleteEdge(ctx, projectID, a.ID, b.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCommitRecordConflict() {
	ctx := context.Background()
	d := s.newDecision(id.NewProjectID())
	s.Require().NoError(s.store.CreateDecision(ctx, d))

	sig, err := models.NewSignal(id.NewSignalID(), d.ID, "m", "up", "", "", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	record := models.NewCommitRecord(d, []*models.Signal{sig}, nil, d.AuthorID, time.Now().UTC().Truncate(time.Microsecond))

	s.Require().NoError(s.store.CreateCommitRecord(ctx, record))
	s.ErrorIs(s.store.CreateCommitRecord(ctx, record), sentinel.ErrConflict)

	got, err := s.store.GetCommitRecord(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(d.Title, got.Snapshot.Title)
	s.Require().Len(got.Snapshot.Signals, 1)
	s.Equal("m", got.Snapshot.Signals[0].Metric)
}

func (s *PostgresStoreSuite) TestTransitionsAndReviews() {
	ctx := context.Background()
	d := s.newDecision(id.NewProjectID())
	s.Require().NoError(s.store.CreateDecision(ctx, d))

	now := time.Now().UTC().Truncate(time.Microsecond)
	tr := models.NewStateTransition(d.ID, models.StatusDraft, models.StatusCommitted, models.MethodCommit, d.AuthorID, now)
	s.Require().NoError(s.store.AppendTransition(ctx, tr))

	transitions, err := s.store.ListTransitions(ctx, d.ID)
	s.Require().NoError(err)
	s.Require().Len(transitions, 1)
	s.Equal(models.MethodCommit, transitions[0].Method)
	s.Equal(models.StatusDraft, transitions[0].FromStatus)

	review, err := models.NewReview(id.NewReviewID(), d.ID, id.NewUserID(), "Cut the bill in half.", "Should have started sooner.", models.QualityGood, now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.AddReview(ctx, review))

	count, err := s.store.CountReviews(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(1, count)

	reviews, err := s.store.ListReviews(ctx, d.ID)
	s.Require().NoError(err)
	s.Require().Len(reviews, 1)
	s.Equal(models.QualityGood, reviews[0].Quality)
}

func (s *PostgresStoreSuite) TestProjectGraph() {
	ctx := context.Background()
	projectID := id.NewProjectID()
	a := s.newDecision(projectID)
	b := s.newDecision(projectID)
	s.Require().NoError(s.store.CreateDecision(ctx, a))
	s.Require().NoError(s.store.CreateDecision(ctx, b))
	s.Require().NoError(s.store.InsertEdge(ctx, models.Edge{ProjectID: projectID, From: a.ID, To: b.ID, CreatedAt: time.Now().UTC()}))

	foreign := s.newDecision(id.NewProjectID())
	s.Require().NoError(s.store.CreateDecision(ctx, foreign))

	g, err := s.store.ProjectGraph(ctx, projectID)
	s.Require().NoError(err)
	s.Require().Len(g.Nodes, 2)
	s.Equal(a.ID, g.Nodes[0].ID)
	s.Equal(int64(1), g.Nodes[0].ProjectSeq)
	s.Require().Len(g.Edges, 1)
	s.Equal(a.ID, g.Edges[0].From)
}
