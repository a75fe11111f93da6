package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
	"verdict/pkg/platform/sentinel"
)

func mustDecision(t *testing.T, projectID id.ProjectID) *models.Decision {
	t.Helper()
	d, err := models.NewDecision(id.NewDecisionID(), projectID, id.NewUserID(), "Pick a queueing backend", time.Now().UTC())
	require.NoError(t, err)
	return d
}

func Test_InMemoryStore_ProjectSeq(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	projectA := id.NewProjectID()
	projectB := id.NewProjectID()

	for i := int64(1); i <= 3; i++ {
		d := mustDecision(t, projectA)
		require.NoError(t, s.CreateDecision(ctx, d))
		assert.Equal(t, i, d.ProjectSeq, "sequence is per project and monotonic")
	}

	other := mustDecision(t, projectB)
	require.NoError(t, s.CreateDecision(ctx, other))
	assert.Equal(t, int64(1), other.ProjectSeq, "a new project starts its own sequence")
}

func Test_InMemoryStore_CreateDecision_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	d := mustDecision(t, id.NewProjectID())

	require.NoError(t, s.CreateDecision(ctx, d))
	assert.ErrorIs(t, s.CreateDecision(ctx, d), sentinel.ErrConflict)
}

func Test_InMemoryStore_GetDecision(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	_, err := s.GetDecision(ctx, id.NewDecisionID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	d := mustDecision(t, id.NewProjectID())
	require.NoError(t, s.CreateDecision(ctx, d))

	got, err := s.GetDecision(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Title, got.Title)

	// Mutating the returned clone must not leak into the store.
	got.Title = "mutated"
	again, err := s.GetDecision(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Title, again.Title)
}

func Test_InMemoryStore_GetDecision_SoftDeleted(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	d := mustDecision(t, id.NewProjectID())
	require.NoError(t, s.CreateDecision(ctx, d))

	d.IsDeleted = true
	require.NoError(t, s.UpdateDecision(ctx, d))

	_, err := s.GetDecision(ctx, d.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	list, err := s.ListProjectDecisions(ctx, d.ProjectID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func Test_InMemoryStore_ListProjectDecisions_Order(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	projectID := id.NewProjectID()

	var ids []id.DecisionID
	for i := 0; i < 4; i++ {
		d := mustDecision(t, projectID)
		require.NoError(t, s.CreateDecision(ctx, d))
		ids = append(ids, d.ID)
	}

	list, err := s.ListProjectDecisions(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for i, d := range list {
		assert.Equal(t, ids[i], d.ID)
		assert.Equal(t, int64(i+1), d.ProjectSeq)
	}
}

func Test_InMemoryStore_Edges(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	projectID := id.NewProjectID()
	a, b := id.NewDecisionID(), id.NewDecisionID()
	edge := models.Edge{ProjectID: projectID, From: a, To: b, CreatedAt: time.Now().UTC()}

	require.NoError(t, s.InsertEdge(ctx, edge))
	assert.ErrorIs(t, s.InsertEdge(ctx, edge), sentinel.ErrConflict, "one edge per ordered pair")

	parents, err := s.ListParents(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []id.DecisionID{a}, parents)

	edges, err := s.ListProjectEdges(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, a, edges[0].From)

	require.NoError(t, s.DeleteEdge(ctx, projectID, a, b))
	assert.ErrorIs(t, s.DeleteEdge(ctx, projectID, a, b), sentinel.ErrNotFound)
}

func Test_InMemoryStore_Signals(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	decisionID := id.NewDecisionID()

	sig, err := models.NewSignal(id.NewSignalID(), decisionID, "latency p99", "doubled", "", "", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, s.SaveSignal(ctx, sig))

	got, err := s.GetSignal(ctx, decisionID, sig.ID)
	require.NoError(t, err)
	assert.Equal(t, sig.Metric, got.Metric)

	_, err = s.GetSignal(ctx, decisionID, id.NewSignalID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, s.DeleteSignal(ctx, decisionID, sig.ID))
	assert.ErrorIs(t, s.DeleteSignal(ctx, decisionID, sig.ID), sentinel.ErrNotFound)

	list, err := s.ListSignals(ctx, decisionID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func Test_InMemoryStore_Options_Order(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	decisionID := id.NewDecisionID()
	now := time.Now().UTC()

	second, err := models.NewOption(id.NewOptionID(), decisionID, "Buy", 2, now)
	require.NoError(t, err)
	first, err := models.NewOption(id.NewOptionID(), decisionID, "Build", 1, now.Add(time.Second))
	require.NoError(t, err)
	require.NoError(t, s.SaveOption(ctx, second))
	require.NoError(t, s.SaveOption(ctx, first))

	list, err := s.ListOptions(ctx, decisionID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Build", list[0].Text, "ordered by Order, not insertion")
}

func Test_InMemoryStore_CommitRecord(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	d := mustDecision(t, id.NewProjectID())
	record := models.NewCommitRecord(d, nil, nil, d.AuthorID, time.Now().UTC())

	_, err := s.GetCommitRecord(ctx, d.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, s.CreateCommitRecord(ctx, record))
	assert.ErrorIs(t, s.CreateCommitRecord(ctx, record), sentinel.ErrConflict, "one commit record per decision")

	got, err := s.GetCommitRecord(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Title, got.Snapshot.Title)
}

func Test_InMemoryStore_Reviews(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	decisionID := id.NewDecisionID()

	count, err := s.CountReviews(ctx, decisionID)
	require.NoError(t, err)
	assert.Zero(t, count)

	for i := 0; i < 2; i++ {
		r, err := models.NewReview(id.NewReviewID(), decisionID, id.NewUserID(), "shipped on time", "", models.QualityGood, time.Now().UTC())
		require.NoError(t, err)
		require.NoError(t, s.AddReview(ctx, r))
	}

	count, err = s.CountReviews(ctx, decisionID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := s.ListReviews(ctx, decisionID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func Test_InMemoryStore_ProjectGraph(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	projectID := id.NewProjectID()

	a := mustDecision(t, projectID)
	b := mustDecision(t, projectID)
	require.NoError(t, s.CreateDecision(ctx, a))
	require.NoError(t, s.CreateDecision(ctx, b))
	require.NoError(t, s.InsertEdge(ctx, models.Edge{ProjectID: projectID, From: a.ID, To: b.ID, CreatedAt: time.Now().UTC()}))

	// A decision in another project must not appear.
	other := mustDecision(t, id.NewProjectID())
	require.NoError(t, s.CreateDecision(ctx, other))

	g, err := s.ProjectGraph(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, a.ID, g.Nodes[0].ID)
	assert.Equal(t, models.StatusDraft, g.Nodes[0].Status)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, a.ID, g.Edges[0].From)
	assert.Equal(t, b.ID, g.Edges[0].To)
}
