package service

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"verdict/internal/access"
	"verdict/internal/decision/graph"
	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/requestcontext"
)

// CreateInput carries the fields a new draft may set. Signals and options
// are attached through their own operations afterwards.
type CreateInput struct {
	Title            string
	ContextSummary   string
	Reasoning        string
	RiskLevel        *models.RiskLevel
	Confidence       *int
	RequiresApproval bool
	ParentIDs        []id.DecisionID
}

// Create persists a new draft decision in the project, optionally with an
// initial parent set. The caller needs an active membership with edit
// permission; every guard runs before the first write.
func (s *Service) Create(ctx context.Context, projectID id.ProjectID, in CreateInput) (*models.Decision, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.membership(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if err := requireAction(m, access.ActionEdit); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	d, err := models.NewDecision(id.NewDecisionID(), projectID, userID, in.Title, now)
	if err != nil {
		return nil, err
	}
	d.ContextSummary = in.ContextSummary
	d.Reasoning = in.Reasoning
	d.RequiresApproval = in.RequiresApproval
	if in.RiskLevel != nil {
		if _, err := models.ParseRiskLevel(string(*in.RiskLevel)); err != nil {
			return nil, err
		}
		d.RiskLevel = *in.RiskLevel
	}
	if in.Confidence != nil {
		if *in.Confidence < 1 || *in.Confidence > 5 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "confidence must be between 1 and 5")
		}
		d.Confidence = *in.Confidence
	}

	err = s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		if len(in.ParentIDs) > 0 {
			if err := s.checkParentSet(txCtx, d.ID, projectID, in.ParentIDs); err != nil {
				return err
			}
		}
		if err := s.store.CreateDecision(txCtx, d); err != nil {
			return translateStore(err, "decision not found")
		}
		for _, parent := range in.ParentIDs {
			e := models.Edge{ProjectID: projectID, From: parent, To: d.ID, CreatedAt: now}
			if err := s.store.InsertEdge(txCtx, e); err != nil {
				return translateStore(err, "parent decision not found")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncDecisionsCreated()
	s.invalidateGraph(ctx, projectID)
	s.logger.InfoContext(ctx, "decision created",
		"decision_id", d.ID.String(),
		"project_id", projectID.String(),
		"project_seq", d.ProjectSeq,
	)
	return d, nil
}

// PatchInput carries a partial update of draft-only fields and, optionally,
// a full replacement parent set. A nil ParentIDs leaves the graph untouched;
// an empty non-nil slice clears every parent.
type PatchInput struct {
	Fields    models.FieldPatch
	ParentIDs *[]id.DecisionID
}

// Patch updates a draft decision's fields and parent set in one atomic
// unit. Only the author may patch, and only while the decision is a draft.
func (s *Service) Patch(ctx context.Context, decisionID id.DecisionID, in PatchInput) (*models.Decision, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	projectID, err := scope(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.membership(ctx, userID, projectID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var updated *models.Decision
	err = s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		d, err := s.loadScoped(txCtx, decisionID, projectID)
		if err != nil {
			return err
		}
		if err := d.CanEdit(userID); err != nil {
			return err
		}
		if err := d.ApplyPatch(in.Fields, userID, now); err != nil {
			return err
		}

		var toAdd, toRemove []id.DecisionID
		if in.ParentIDs != nil {
			requested := *in.ParentIDs
			if err := s.checkParentSet(txCtx, d.ID, projectID, requested); err != nil {
				return err
			}
			current, err := s.store.ListParents(txCtx, d.ID)
			if err != nil {
				return translateStore(err, "decision not found")
			}
			toAdd, toRemove = graph.DiffParents(current, requested)
		}

		if err := s.store.UpdateDecision(txCtx, d); err != nil {
			return translateStore(err, "decision not found")
		}
		for _, parent := range toRemove {
			if err := s.store.DeleteEdge(txCtx, projectID, parent, d.ID); err != nil {
				return translateStore(err, "parent edge not found")
			}
		}
		for _, parent := range toAdd {
			e := models.Edge{ProjectID: projectID, From: parent, To: d.ID, CreatedAt: now}
			if err := s.store.InsertEdge(txCtx, e); err != nil {
				return translateStore(err, "parent decision not found")
			}
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if in.ParentIDs != nil {
		s.invalidateGraph(ctx, projectID)
	}
	return updated, nil
}

// checkParentSet runs every structural and graph guard for replacing the
// decision's parent set: shape, existence, project boundary, then the cycle
// check against the hypothetical edge set. Nothing is written here; callers
// apply the diff only after this passes.
func (s *Service) checkParentSet(ctx context.Context, decisionID id.DecisionID, projectID id.ProjectID, parents []id.DecisionID) error {
	ctx, span := s.tracer.Start(ctx, "graph.checkParentSet")
	defer span.End()

	if err := graph.ValidateParentSet(decisionID, parents); err != nil {
		return err
	}
	for _, parentID := range parents {
		parent, err := s.store.GetDecision(ctx, parentID)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "parent decision does not exist: "+parentID.String())
		}
		if parent.ProjectID != projectID || parent.IsDeleted {
			return dErrors.New(dErrors.CodeValidation, "parent decision is not in this project: "+parentID.String())
		}
	}
	edges, err := s.store.ListProjectEdges(ctx, projectID)
	if err != nil {
		return translateStore(err, "project not found")
	}
	if err := graph.CheckAcyclic(edges, decisionID, parents); err != nil {
		s.metrics.IncCycleRejections()
		return err
	}
	return nil
}

// Detail is one decision with its attached entities, for single-decision
// reads.
type Detail struct {
	Decision    *models.Decision          `json:"decision"`
	Signals     []*models.Signal          `json:"signals"`
	Options     []*models.Option          `json:"options"`
	ParentIDs   []id.DecisionID           `json:"parent_ids"`
	Transitions []*models.StateTransition `json:"transitions"`
	Reviews     []*models.Review          `json:"reviews"`
}

// Get loads one decision with signals, options, parents, transition history
// and reviews. Draft decisions stay private to their author.
func (s *Service) Get(ctx context.Context, decisionID id.DecisionID) (*Detail, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	projectID, err := scope(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.membership(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if err := requireAction(m, access.ActionView); err != nil {
		return nil, err
	}

	d, err := s.loadScoped(ctx, decisionID, projectID)
	if err != nil {
		return nil, err
	}
	if !d.VisibleTo(userID, true) {
		return nil, dErrors.New(dErrors.CodeNotFound, "decision not found")
	}

	signals, err := s.store.ListSignals(ctx, decisionID)
	if err != nil {
		return nil, translateStore(err, "decision not found")
	}
	options, err := s.store.ListOptions(ctx, decisionID)
	if err != nil {
		return nil, translateStore(err, "decision not found")
	}
	parents, err := s.store.ListParents(ctx, decisionID)
	if err != nil {
		return nil, translateStore(err, "decision not found")
	}
	transitions, err := s.store.ListTransitions(ctx, decisionID)
	if err != nil {
		return nil, translateStore(err, "decision not found")
	}
	reviews, err := s.store.ListReviews(ctx, decisionID)
	if err != nil {
		return nil, translateStore(err, "decision not found")
	}
	return &Detail{
		Decision:    d,
		Signals:     signals,
		Options:     options,
		ParentIDs:   parents,
		Transitions: transitions,
		Reviews:     reviews,
	}, nil
}

// List aggregates the decisions visible to the viewer across every project
// where they hold an active membership. Projects are fetched in parallel;
// drafts belonging to other authors are filtered out.
func (s *Service) List(ctx context.Context) ([]*models.Decision, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.access.ListProjects(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "membership lookup failed")
	}
	if len(projects) == 0 {
		return []*models.Decision{}, nil
	}

	perProject := make([][]*models.Decision, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	for i, projectID := range projects {
		g.Go(func() error {
			decisions, err := s.store.ListProjectDecisions(gctx, projectID)
			if err != nil {
				return translateStore(err, "project not found")
			}
			visible := decisions[:0]
			for _, d := range decisions {
				if d.VisibleTo(userID, true) {
					visible = append(visible, d)
				}
			}
			perProject[i] = visible
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*models.Decision, 0)
	for _, decisions := range perProject {
		out = append(out, decisions...)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ProjectSeq < out[j].ProjectSeq
	})
	return out, nil
}

// Graph returns the project's dependency graph snapshot. Any active member
// may read it; snapshots are served from the cache when fresh.
func (s *Service) Graph(ctx context.Context, projectID id.ProjectID) (*models.Graph, error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.membership(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if err := requireAction(m, access.ActionView); err != nil {
		return nil, err
	}

	start := time.Now()
	defer s.metrics.ObserveGraphFetch(start)

	if s.cache != nil {
		if g, ok := s.cache.Get(ctx, projectID); ok {
			return g, nil
		}
	}
	g, err := s.store.ProjectGraph(ctx, projectID)
	if err != nil {
		return nil, translateStore(err, "project not found")
	}
	if s.cache != nil {
		s.cache.Set(ctx, projectID, g)
	}
	return g, nil
}
