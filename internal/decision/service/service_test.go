package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"verdict/internal/access"
	"verdict/internal/decision/models"
	"verdict/internal/decision/store"
	"verdict/internal/outbox"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/testutil"
)

// =============================================================================
// Decision Service Test Suite
// =============================================================================
// Justification for unit tests: the service owns every lifecycle guard,
// the commit validation gate, and the atomicity of multi-write transitions.
// Exercising those precisely requires direct control over store contents and
// role assignments that HTTP-level tests cannot reach.

type DecisionServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	dir     *access.InMemoryDirectory
	outbox  *outbox.InMemoryStore
	service *Service

	projectID id.ProjectID
	author    id.UserID
	now       time.Time
}

func TestDecisionServiceSuite(t *testing.T) {
	suite.Run(t, new(DecisionServiceSuite))
}

func (s *DecisionServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.dir = access.NewInMemoryDirectory()
	s.outbox = outbox.NewInMemoryStore()
	s.service = NewService(s.store, NewShardedTx(), s.dir, s.outbox, nil, nil, nil)

	s.projectID = id.NewProjectID()
	s.author = id.NewUserID()
	s.now = time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	s.dir.Grant(s.author, s.projectID, access.RoleEditor)
}

func (s *DecisionServiceSuite) ctx(userID id.UserID) context.Context {
	return testutil.AuthedContext(userID, s.projectID, s.now)
}

// createDraft persists a minimal draft owned by s.author.
func (s *DecisionServiceSuite) createDraft(in CreateInput) *models.Decision {
	if in.Title == "" {
		in.Title = "Switch CDN providers"
	}
	d, err := s.service.Create(s.ctx(s.author), s.projectID, in)
	s.Require().NoError(err)
	return d
}

// makeReady attaches enough signals and options for the draft to pass commit
// validation, and fills the required text fields.
func (s *DecisionServiceSuite) makeReady(d *models.Decision) {
	ctx := s.ctx(s.author)

	summary := "Costs doubled after the contract renewal."
	reasoning := "Competitor pricing is 40% lower at our volume."
	_, err := s.service.Patch(ctx, d.ID, PatchInput{Fields: models.FieldPatch{
		ContextSummary: &summary,
		Reasoning:      &reasoning,
	}})
	s.Require().NoError(err)

	_, err = s.service.AddSignal(ctx, d.ID, SignalInput{Metric: "cdn spend", Movement: "doubled"})
	s.Require().NoError(err)

	_, err = s.service.AddOption(ctx, d.ID, OptionInput{Text: "Stay", Order: 1})
	s.Require().NoError(err)
	_, err = s.service.AddOption(ctx, d.ID, OptionInput{Text: "Switch", Order: 2, IsSelected: true})
	s.Require().NoError(err)
}

func (s *DecisionServiceSuite) eventKinds() []string {
	var kinds []string
	for _, e := range s.outbox.All() {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// =============================================================================
// Create
// =============================================================================

func (s *DecisionServiceSuite) TestCreate() {
	s.Run("assigns per-project sequence numbers", func() {
		first := s.createDraft(CreateInput{Title: "First"})
		second := s.createDraft(CreateInput{Title: "Second"})
		s.Equal(int64(1), first.ProjectSeq)
		s.Equal(int64(2), second.ProjectSeq)
		s.Equal(models.StatusDraft, first.Status)
	})

	s.Run("defaults risk and confidence", func() {
		d := s.createDraft(CreateInput{Title: "Defaults"})
		s.Equal(models.RiskMedium, d.RiskLevel)
		s.Equal(3, d.Confidence)
	})

	s.Run("viewer cannot create", func() {
		viewer := id.NewUserID()
		s.dir.Grant(viewer, s.projectID, access.RoleViewer)
		_, err := s.service.Create(s.ctx(viewer), s.projectID, CreateInput{Title: "Nope"})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("non-member is rejected with a scope error", func() {
		_, err := s.service.Create(s.ctx(id.NewUserID()), s.projectID, CreateInput{Title: "Nope"})
		s.True(dErrors.HasCode(err, dErrors.CodeScope))
	})

	s.Run("unauthenticated caller is rejected", func() {
		ctx := testutil.AuthedContext(id.UserID{}, s.projectID, s.now)
		_, err := s.service.Create(ctx, s.projectID, CreateInput{Title: "Nope"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("with initial parents", func() {
		parent := s.createDraft(CreateInput{Title: "Parent"})
		child, err := s.service.Create(s.ctx(s.author), s.projectID, CreateInput{
			Title:     "Child",
			ParentIDs: []id.DecisionID{parent.ID},
		})
		s.Require().NoError(err)

		parents, err := s.store.ListParents(context.Background(), child.ID)
		s.Require().NoError(err)
		s.Equal([]id.DecisionID{parent.ID}, parents)
	})

	s.Run("nonexistent parent rejects the whole create", func() {
		_, err := s.service.Create(s.ctx(s.author), s.projectID, CreateInput{
			Title:     "Orphan",
			ParentIDs: []id.DecisionID{id.NewDecisionID()},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("parent from another project is rejected", func() {
		otherProject := id.NewProjectID()
		s.dir.Grant(s.author, otherProject, access.RoleEditor)
		foreign, err := s.service.Create(testutil.AuthedContext(s.author, otherProject, s.now), otherProject, CreateInput{Title: "Foreign"})
		s.Require().NoError(err)

		_, err = s.service.Create(s.ctx(s.author), s.projectID, CreateInput{
			Title:     "Cross",
			ParentIDs: []id.DecisionID{foreign.ID},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Patch
// =============================================================================

func (s *DecisionServiceSuite) TestPatch() {
	s.Run("only the author may patch a draft", func() {
		d := s.createDraft(CreateInput{})
		other := id.NewUserID()
		s.dir.Grant(other, s.projectID, access.RoleLead)

		title := "Hijacked"
		_, err := s.service.Patch(s.ctx(other), d.ID, PatchInput{Fields: models.FieldPatch{Title: &title}})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("nil parent set leaves the graph untouched", func() {
		parent := s.createDraft(CreateInput{Title: "P"})
		d := s.createDraft(CreateInput{Title: "D", ParentIDs: []id.DecisionID{parent.ID}})

		title := "Renamed"
		_, err := s.service.Patch(s.ctx(s.author), d.ID, PatchInput{Fields: models.FieldPatch{Title: &title}})
		s.Require().NoError(err)

		parents, err := s.store.ListParents(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Len(parents, 1)
	})

	s.Run("empty non-nil parent set clears every parent", func() {
		parent := s.createDraft(CreateInput{Title: "P2"})
		d := s.createDraft(CreateInput{Title: "D2", ParentIDs: []id.DecisionID{parent.ID}})

		empty := []id.DecisionID{}
		_, err := s.service.Patch(s.ctx(s.author), d.ID, PatchInput{ParentIDs: &empty})
		s.Require().NoError(err)

		parents, err := s.store.ListParents(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Empty(parents)
	})

	s.Run("self-parenting is rejected", func() {
		d := s.createDraft(CreateInput{Title: "Selfie"})
		self := []id.DecisionID{d.ID}
		_, err := s.service.Patch(s.ctx(s.author), d.ID, PatchInput{ParentIDs: &self})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("cycle rejection leaves the edge set unchanged", func() {
		a := s.createDraft(CreateInput{Title: "A"})
		b := s.createDraft(CreateInput{Title: "B", ParentIDs: []id.DecisionID{a.ID}})
		c := s.createDraft(CreateInput{Title: "C", ParentIDs: []id.DecisionID{b.ID}})

		before, err := s.store.ListProjectEdges(context.Background(), s.projectID)
		s.Require().NoError(err)

		cycle := []id.DecisionID{c.ID}
		_, err = s.service.Patch(s.ctx(s.author), a.ID, PatchInput{ParentIDs: &cycle})
		s.True(dErrors.HasCode(err, dErrors.CodeCycle))

		after, err := s.store.ListProjectEdges(context.Background(), s.projectID)
		s.Require().NoError(err)
		s.Len(after, len(before))
	})

	s.Run("committed decision cannot be patched", func() {
		d := s.createDraft(CreateInput{Title: "Frozen"})
		s.makeReady(d)
		_, err := s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().NoError(err)

		title := "Too late"
		_, err = s.service.Patch(s.ctx(s.author), d.ID, PatchInput{Fields: models.FieldPatch{Title: &title}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("missing scope is a scope error", func() {
		d := s.createDraft(CreateInput{Title: "Scopeless"})
		ctx := testutil.AuthedContext(s.author, id.ProjectID{}, s.now)
		title := "x"
		_, err := s.service.Patch(ctx, d.ID, PatchInput{Fields: models.FieldPatch{Title: &title}})
		s.True(dErrors.HasCode(err, dErrors.CodeScope))
	})
}

// =============================================================================
// Commit
// =============================================================================

func (s *DecisionServiceSuite) TestCommit() {
	s.Run("validation failure reports every rule and writes nothing", func() {
		d := s.createDraft(CreateInput{Title: "Empty"})

		_, err := s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Len(dErrors.FieldsOf(err), 5)

		got, err := s.store.GetDecision(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusDraft, got.Status)

		transitions, err := s.store.ListTransitions(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Empty(transitions)
		s.Empty(s.outbox.All())
	})

	s.Run("success lands committed with record, transition and event", func() {
		d := s.createDraft(CreateInput{Title: "Ready"})
		s.makeReady(d)

		committed, err := s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCommitted, committed.Status)
		s.Require().NotNil(committed.CommittedAt)
		s.Equal(s.now, *committed.CommittedAt)
		s.Equal(s.author, *committed.CommittedByID)

		record, err := s.store.GetCommitRecord(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Equal("Ready", record.Snapshot.Title)
		s.Len(record.Snapshot.Signals, 1)
		s.Len(record.Snapshot.Options, 2)

		transitions, err := s.store.ListTransitions(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Require().Len(transitions, 1)
		s.Equal(models.StatusDraft, transitions[0].FromStatus)
		s.Equal(models.StatusCommitted, transitions[0].ToStatus)
		s.Equal(models.MethodCommit, transitions[0].Method)

		s.Equal([]string{outbox.KindDecisionCommitted}, s.eventKinds())
	})

	s.Run("second commit is an invalid state", func() {
		d := s.createDraft(CreateInput{Title: "Once"})
		s.makeReady(d)
		_, err := s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().NoError(err)

		_, err = s.service.Commit(s.ctx(s.author), d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("editor who is not the author may commit", func() {
		d := s.createDraft(CreateInput{Title: "Team"})
		s.makeReady(d)
		editor := id.NewUserID()
		s.dir.Grant(editor, s.projectID, access.RoleEditor)

		committed, err := s.service.Commit(s.ctx(editor), d.ID)
		s.Require().NoError(err)
		s.Equal(editor, *committed.CommittedByID)
	})

	s.Run("viewer cannot commit someone else's decision", func() {
		d := s.createDraft(CreateInput{Title: "Guarded"})
		s.makeReady(d)
		viewer := id.NewUserID()
		s.dir.Grant(viewer, s.projectID, access.RoleViewer)

		_, err := s.service.Commit(s.ctx(viewer), d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("concurrent commits produce one winner", func() {
		d := s.createDraft(CreateInput{Title: "Race"})
		s.makeReady(d)

		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = s.service.Commit(s.ctx(s.author), d.ID)
			}()
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
			}
		}
		s.Equal(1, winners)

		transitions, err := s.store.ListTransitions(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Len(transitions, 1)
	})
}

// =============================================================================
// Approval flow
// =============================================================================

func (s *DecisionServiceSuite) TestApprovalFlow() {
	s.Run("commit parks a gated decision without commit metadata", func() {
		d := s.createDraft(CreateInput{Title: "Gated", RequiresApproval: true})
		s.makeReady(d)

		parked, err := s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusAwaitingApproval, parked.Status)
		s.Nil(parked.CommittedAt)

		_, err = s.store.GetCommitRecord(context.Background(), d.ID)
		s.Error(err, "no commit record until approval")
		s.Equal([]string{outbox.KindDecisionSubmitted}, s.eventKinds())
	})

	s.Run("approve completes the commit with both metadata sets", func() {
		d := s.createDraft(CreateInput{Title: "Gated2", RequiresApproval: true})
		s.makeReady(d)
		_, err := s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().NoError(err)

		approver := id.NewUserID()
		s.dir.Grant(approver, s.projectID, access.RoleApprover)

		approved, err := s.service.Approve(s.ctx(approver), d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCommitted, approved.Status)
		s.Equal(approver, *approved.ApprovedByID)
		s.Equal(approver, *approved.CommittedByID)
		s.Require().NotNil(approved.ApprovedAt)
		s.Require().NotNil(approved.CommittedAt)

		record, err := s.store.GetCommitRecord(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Equal(approver, record.CommittedByID)

		transitions, err := s.store.ListTransitions(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Len(transitions, 2)
	})

	s.Run("editor cannot approve", func() {
		d := s.createDraft(CreateInput{Title: "Gated3", RequiresApproval: true})
		s.makeReady(d)
		_, err := s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().NoError(err)

		_, err = s.service.Approve(s.ctx(s.author), d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("approving a draft is an invalid state", func() {
		d := s.createDraft(CreateInput{Title: "NotSubmitted"})
		approver := id.NewUserID()
		s.dir.Grant(approver, s.projectID, access.RoleApprover)

		_, err := s.service.Approve(s.ctx(approver), d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

// =============================================================================
// Review
// =============================================================================

func (s *DecisionServiceSuite) TestSubmitReview() {
	lead := id.NewUserID()

	committedDecision := func(title string) *models.Decision {
		s.dir.Grant(lead, s.projectID, access.RoleLead)
		d := s.createDraft(CreateInput{Title: title})
		s.makeReady(d)
		_, err := s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().NoError(err)
		return d
	}

	s.Run("first review flips the status, later ones only accumulate", func() {
		d := committedDecision("Reviewed")

		first, err := s.service.SubmitReview(s.ctx(lead), d.ID, ReviewInput{
			OutcomeText: "Latency improved as predicted.",
			Quality:     models.QualityGood,
		})
		s.Require().NoError(err)
		s.Equal(models.QualityGood, first.Quality)

		got, err := s.store.GetDecision(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusReviewed, got.Status)

		_, err = s.service.SubmitReview(s.ctx(lead), d.ID, ReviewInput{
			OutcomeText: "Second retrospective, holding up.",
			Quality:     models.QualityAcceptable,
		})
		s.Require().NoError(err)

		count, err := s.store.CountReviews(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Equal(2, count)

		transitions, err := s.store.ListTransitions(context.Background(), d.ID)
		s.Require().NoError(err)
		reviewRows := 0
		for _, tr := range transitions {
			if tr.Method == models.MethodReview {
				reviewRows++
			}
		}
		s.Equal(1, reviewRows, "only the first review transitions")
	})

	s.Run("approver cannot review", func() {
		d := committedDecision("NoReview")
		approver := id.NewUserID()
		s.dir.Grant(approver, s.projectID, access.RoleApprover)

		_, err := s.service.SubmitReview(s.ctx(approver), d.ID, ReviewInput{
			OutcomeText: "x", Quality: models.QualityGood,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("draft cannot be reviewed", func() {
		s.dir.Grant(lead, s.projectID, access.RoleLead)
		d := s.createDraft(CreateInput{Title: "StillDraft"})
		_, err := s.service.SubmitReview(s.ctx(lead), d.ID, ReviewInput{
			OutcomeText: "x", Quality: models.QualityGood,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("cache invalidation waits for the atomic unit to end", func() {
		d := committedDecision("CacheOrder")

		obTx := &observableTx{inner: NewShardedTx()}
		cache := &txObservingCache{tx: obTx}
		svc := NewService(s.store, obTx, s.dir, s.outbox, cache, nil, nil)

		_, err := svc.SubmitReview(s.ctx(lead), d.ID, ReviewInput{
			OutcomeText: "Holding up well.", Quality: models.QualityGood,
		})
		s.Require().NoError(err)

		s.Require().Len(cache.invalidations, 1)
		s.False(cache.invalidations[0].inTx, "invalidated before the atomic unit committed")
		s.Equal(s.projectID, cache.invalidations[0].projectID)
	})
}

// observableTx wraps a StoreTx and tracks whether an atomic unit is open.
type observableTx struct {
	inner StoreTx
	open  bool
}

func (t *observableTx) RunInProjectTx(ctx context.Context, projectID id.ProjectID, fn func(ctx context.Context) error) error {
	t.open = true
	defer func() { t.open = false }()
	return t.inner.RunInProjectTx(ctx, projectID, fn)
}

// txObservingCache records, per invalidation, whether the atomic unit was
// still open when it arrived.
type txObservingCache struct {
	tx            *observableTx
	invalidations []struct {
		projectID id.ProjectID
		inTx      bool
	}
}

func (c *txObservingCache) Get(context.Context, id.ProjectID) (*models.Graph, bool) { return nil, false }
func (c *txObservingCache) Set(context.Context, id.ProjectID, *models.Graph)        {}
func (c *txObservingCache) Invalidate(_ context.Context, projectID id.ProjectID) {
	c.invalidations = append(c.invalidations, struct {
		projectID id.ProjectID
		inTx      bool
	}{projectID, c.tx.open})
}

// =============================================================================
// Archive
// =============================================================================

func (s *DecisionServiceSuite) TestArchive() {
	s.Run("archivable from draft and committed", func() {
		draft := s.createDraft(CreateInput{Title: "ArchiveDraft"})
		archived, err := s.service.Archive(s.ctx(s.author), draft.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusArchived, archived.Status)

		d := s.createDraft(CreateInput{Title: "ArchiveCommitted"})
		s.makeReady(d)
		_, err = s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().NoError(err)
		archived, err = s.service.Archive(s.ctx(s.author), d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusArchived, archived.Status)
	})

	s.Run("archived decisions accept no further transitions", func() {
		d := s.createDraft(CreateInput{Title: "Terminal"})
		_, err := s.service.Archive(s.ctx(s.author), d.ID)
		s.Require().NoError(err)

		_, err = s.service.Archive(s.ctx(s.author), d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		_, err = s.service.Commit(s.ctx(s.author), d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		title := "x"
		_, err = s.service.Patch(s.ctx(s.author), d.ID, PatchInput{Fields: models.FieldPatch{Title: &title}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("emits an archived event", func() {
		d := s.createDraft(CreateInput{Title: "Notify"})
		_, err := s.service.Archive(s.ctx(s.author), d.ID)
		s.Require().NoError(err)
		s.Contains(s.eventKinds(), outbox.KindDecisionArchived)
	})
}

// =============================================================================
// Signals and options
// =============================================================================

func (s *DecisionServiceSuite) TestSignals() {
	s.Run("capped at the per-decision maximum", func() {
		d := s.createDraft(CreateInput{Title: "Capped"})
		for i := 0; i < models.MaxSignalsPerDecision; i++ {
			_, err := s.service.AddSignal(s.ctx(s.author), d.ID, SignalInput{Metric: "m", Movement: "up"})
			s.Require().NoError(err)
		}
		_, err := s.service.AddSignal(s.ctx(s.author), d.ID, SignalInput{Metric: "m", Movement: "up"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("override freeze and clear through update", func() {
		d := s.createDraft(CreateInput{Title: "Override"})
		sig, err := s.service.AddSignal(s.ctx(s.author), d.ID, SignalInput{Metric: "signup rate", Movement: "fell 8%"})
		s.Require().NoError(err)
		s.Equal("signup rate fell 8%", sig.DisplayText())

		frozen := "Signups collapsed after the form change"
		sig, err = s.service.UpdateSignal(s.ctx(s.author), d.ID, sig.ID, models.SignalPatch{Override: &frozen})
		s.Require().NoError(err)
		s.Equal(frozen, sig.DisplayText())

		clear := ""
		sig, err = s.service.UpdateSignal(s.ctx(s.author), d.ID, sig.ID, models.SignalPatch{Override: &clear})
		s.Require().NoError(err)
		s.Equal("signup rate fell 8%", sig.DisplayText())
	})

	s.Run("signals are frozen after commit", func() {
		d := s.createDraft(CreateInput{Title: "FrozenSignals"})
		s.makeReady(d)
		_, err := s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().NoError(err)

		_, err = s.service.AddSignal(s.ctx(s.author), d.ID, SignalInput{Metric: "late", Movement: "up"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("delete removes the signal", func() {
		d := s.createDraft(CreateInput{Title: "DeleteSignal"})
		sig, err := s.service.AddSignal(s.ctx(s.author), d.ID, SignalInput{Metric: "m", Movement: "up"})
		s.Require().NoError(err)

		s.Require().NoError(s.service.DeleteSignal(s.ctx(s.author), d.ID, sig.ID))
		err = s.service.DeleteSignal(s.ctx(s.author), d.ID, sig.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DecisionServiceSuite) TestOptions() {
	s.Run("add and update", func() {
		d := s.createDraft(CreateInput{Title: "Options"})
		opt, err := s.service.AddOption(s.ctx(s.author), d.ID, OptionInput{Text: "Do nothing", Order: 1})
		s.Require().NoError(err)
		s.False(opt.IsSelected)

		selected := true
		opt, err = s.service.UpdateOption(s.ctx(s.author), d.ID, opt.ID, models.OptionPatch{IsSelected: &selected})
		s.Require().NoError(err)
		s.True(opt.IsSelected)
	})

	s.Run("adding a selected option deselects the previous one", func() {
		d := s.createDraft(CreateInput{Title: "SingleSelect"})
		first, err := s.service.AddOption(s.ctx(s.author), d.ID, OptionInput{Text: "Build", Order: 1, IsSelected: true})
		s.Require().NoError(err)
		s.True(first.IsSelected)

		second, err := s.service.AddOption(s.ctx(s.author), d.ID, OptionInput{Text: "Buy", Order: 2, IsSelected: true})
		s.Require().NoError(err)
		s.True(second.IsSelected)

		opts, err := s.store.ListOptions(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Equal(1, s.selectedCount(opts))
		for _, o := range opts {
			s.Equal(o.ID == second.ID, o.IsSelected)
		}
	})

	s.Run("selecting via patch deselects the others", func() {
		d := s.createDraft(CreateInput{Title: "Reselect"})
		first, err := s.service.AddOption(s.ctx(s.author), d.ID, OptionInput{Text: "Keep", Order: 1, IsSelected: true})
		s.Require().NoError(err)
		second, err := s.service.AddOption(s.ctx(s.author), d.ID, OptionInput{Text: "Replace", Order: 2})
		s.Require().NoError(err)

		selected := true
		_, err = s.service.UpdateOption(s.ctx(s.author), d.ID, second.ID, models.OptionPatch{IsSelected: &selected})
		s.Require().NoError(err)

		opts, err := s.store.ListOptions(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Equal(1, s.selectedCount(opts))

		got, err := s.store.GetOption(context.Background(), d.ID, first.ID)
		s.Require().NoError(err)
		s.False(got.IsSelected)
	})

	s.Run("deselecting via patch leaves the others alone", func() {
		d := s.createDraft(CreateInput{Title: "Deselect"})
		opt, err := s.service.AddOption(s.ctx(s.author), d.ID, OptionInput{Text: "Only", Order: 1, IsSelected: true})
		s.Require().NoError(err)

		deselected := false
		got, err := s.service.UpdateOption(s.ctx(s.author), d.ID, opt.ID, models.OptionPatch{IsSelected: &deselected})
		s.Require().NoError(err)
		s.False(got.IsSelected)

		opts, err := s.store.ListOptions(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Equal(0, s.selectedCount(opts))
	})

	s.Run("unknown option is not found", func() {
		d := s.createDraft(CreateInput{Title: "NoOption"})
		selected := true
		_, err := s.service.UpdateOption(s.ctx(s.author), d.ID, id.NewOptionID(), models.OptionPatch{IsSelected: &selected})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DecisionServiceSuite) selectedCount(opts []*models.Option) int {
	n := 0
	for _, o := range opts {
		if o.IsSelected {
			n++
		}
	}
	return n
}

// =============================================================================
// Visibility and reads
// =============================================================================

func (s *DecisionServiceSuite) TestGet() {
	s.Run("draft is invisible to other members", func() {
		d := s.createDraft(CreateInput{Title: "Private"})
		other := id.NewUserID()
		s.dir.Grant(other, s.projectID, access.RoleLead)

		_, err := s.service.Get(s.ctx(other), d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		detail, err := s.service.Get(s.ctx(s.author), d.ID)
		s.Require().NoError(err)
		s.Equal(d.ID, detail.Decision.ID)
	})

	s.Run("decision outside the asserted scope reads as not found", func() {
		otherProject := id.NewProjectID()
		s.dir.Grant(s.author, otherProject, access.RoleEditor)
		foreign, err := s.service.Create(testutil.AuthedContext(s.author, otherProject, s.now), otherProject, CreateInput{Title: "Elsewhere"})
		s.Require().NoError(err)

		_, err = s.service.Get(s.ctx(s.author), foreign.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("detail carries attached entities", func() {
		d := s.createDraft(CreateInput{Title: "Full"})
		s.makeReady(d)
		_, err := s.service.Commit(s.ctx(s.author), d.ID)
		s.Require().NoError(err)

		detail, err := s.service.Get(s.ctx(s.author), d.ID)
		s.Require().NoError(err)
		s.Len(detail.Signals, 1)
		s.Len(detail.Options, 2)
		s.Len(detail.Transitions, 1)
	})
}

func (s *DecisionServiceSuite) TestList() {
	s.Run("spans projects and hides other authors' drafts", func() {
		other := id.NewUserID()
		s.dir.Grant(other, s.projectID, access.RoleEditor)

		mine := s.createDraft(CreateInput{Title: "Mine"})
		theirs, err := s.service.Create(s.ctx(other), s.projectID, CreateInput{Title: "Theirs"})
		s.Require().NoError(err)
		s.makeReady(mine)
		_, err = s.service.Commit(s.ctx(s.author), mine.ID)
		s.Require().NoError(err)

		list, err := s.service.List(s.ctx(s.author))
		s.Require().NoError(err)
		s.Require().Len(list, 1, "their draft is invisible to me")
		s.Equal(mine.ID, list[0].ID)

		list, err = s.service.List(s.ctx(other))
		s.Require().NoError(err)
		s.Require().Len(list, 2, "committed decisions are project-visible")
		_ = theirs
	})

	s.Run("no memberships yields an empty list", func() {
		list, err := s.service.List(s.ctx(id.NewUserID()))
		s.Require().NoError(err)
		s.Empty(list)
	})
}

func (s *DecisionServiceSuite) TestGraph() {
	s.Run("returns nodes and edges for members", func() {
		parent := s.createDraft(CreateInput{Title: "GP"})
		child := s.createDraft(CreateInput{Title: "GC", ParentIDs: []id.DecisionID{parent.ID}})

		g, err := s.service.Graph(s.ctx(s.author), s.projectID)
		s.Require().NoError(err)
		s.Len(g.Nodes, 2)
		s.Require().Len(g.Edges, 1)
		s.Equal(parent.ID, g.Edges[0].From)
		s.Equal(child.ID, g.Edges[0].To)
	})

	s.Run("non-members cannot read the graph", func() {
		_, err := s.service.Graph(s.ctx(id.NewUserID()), s.projectID)
		s.True(dErrors.HasCode(err, dErrors.CodeScope))
	})

	s.Run("inactive membership is rejected", func() {
		ghost := id.NewUserID()
		s.dir.Grant(ghost, s.projectID, access.RoleViewer)
		s.dir.Deactivate(ghost, s.projectID)
		_, err := s.service.Graph(s.ctx(ghost), s.projectID)
		s.True(dErrors.HasCode(err, dErrors.CodeScope))
	})
}
