package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
)

type recordingDispatcher struct {
	batches [][]Event
	err     error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, events []Event) error {
	if d.err != nil {
		return d.err
	}
	d.batches = append(d.batches, events)
	return nil
}

func testEvent() Event {
	return Event{
		ID:         uuid.New(),
		Kind:       KindDecisionCommitted,
		DecisionID: id.NewDecisionID(),
		ProjectID:  id.NewProjectID(),
		ActorID:    id.NewUserID(),
		FromStatus: models.StatusDraft,
		ToStatus:   models.StatusCommitted,
		Method:     models.MethodCommit,
		OccurredAt: time.Now().UTC(),
	}
}

func newTestWorker(store Store, dispatch Dispatcher) *Worker {
	return NewWorker(store, dispatch, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func Test_Worker_DrainMarksDispatched(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	dispatch := &recordingDispatcher{}
	w := newTestWorker(store, dispatch)

	first := testEvent()
	second := testEvent()
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	require.NoError(t, w.drainOnce(ctx))
	require.Len(t, dispatch.batches, 1)
	assert.Len(t, dispatch.batches[0], 2)

	pending, err := store.ListPending(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// A second drain has nothing to deliver.
	require.NoError(t, w.drainOnce(ctx))
	assert.Len(t, dispatch.batches, 1)
}

func Test_Worker_FailedDispatchLeavesEventsPending(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	dispatch := &recordingDispatcher{err: errors.New("broker unreachable")}
	w := newTestWorker(store, dispatch)

	require.NoError(t, store.Append(ctx, testEvent()))

	err := w.drainOnce(ctx)
	require.Error(t, err)

	pending, err := store.ListPending(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "undelivered events stay pending for the next tick")

	// The transport recovers and the retry delivers.
	dispatch.err = nil
	require.NoError(t, w.drainOnce(ctx))
	require.Len(t, dispatch.batches, 1)

	pending, err = store.ListPending(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func Test_Worker_RespectsBatchSize(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	dispatch := &recordingDispatcher{}
	w := newTestWorker(store, dispatch)
	w.batchSize = 2

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, testEvent()))
	}

	require.NoError(t, w.drainOnce(ctx))
	require.Len(t, dispatch.batches, 1)
	assert.Len(t, dispatch.batches[0], 2)

	require.NoError(t, w.drainOnce(ctx))
	require.Len(t, dispatch.batches, 2)
	assert.Len(t, dispatch.batches[1], 1)
}

func Test_FromTransition_Kinds(t *testing.T) {
	projectID := id.NewProjectID()
	decisionID := id.NewDecisionID()
	actor := id.NewUserID()
	now := time.Now().UTC()

	cases := []struct {
		method models.TransitionMethod
		to     models.Status
		kind   string
	}{
		{models.MethodCommit, models.StatusCommitted, KindDecisionCommitted},
		{models.MethodCommit, models.StatusAwaitingApproval, KindDecisionSubmitted},
		{models.MethodApprove, models.StatusCommitted, KindDecisionApproved},
		{models.MethodReview, models.StatusReviewed, KindDecisionReviewed},
		{models.MethodArchive, models.StatusArchived, KindDecisionArchived},
	}
	for _, tc := range cases {
		tr := models.NewStateTransition(decisionID, models.StatusDraft, tc.to, tc.method, actor, now)
		e := FromTransition(tr, projectID)
		assert.Equal(t, tc.kind, e.Kind, tc.method)
		assert.Equal(t, projectID, e.ProjectID)
		assert.Equal(t, decisionID, e.DecisionID)
		assert.Equal(t, now, e.OccurredAt)
	}
}
