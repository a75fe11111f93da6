// Package service orchestrates the decision lifecycle: guards (scope,
// membership, state), commit validation, graph mutation, and the atomic
// write sets behind each transition. Handlers stay thin; models stay pure;
// everything that must happen together happens here inside RunInProjectTx.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"verdict/internal/access"
	"verdict/internal/decision/metrics"
	"verdict/internal/decision/models"
	"verdict/internal/decision/store"
	"verdict/internal/outbox"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/sentinel"
	"verdict/pkg/requestcontext"
)

// GraphCache caches project graph snapshots. A nil cache disables caching.
type GraphCache interface {
	Get(ctx context.Context, projectID id.ProjectID) (*models.Graph, bool)
	Set(ctx context.Context, projectID id.ProjectID, g *models.Graph)
	Invalidate(ctx context.Context, projectID id.ProjectID)
}

// Service is the decision engine. All collaborators are injected; the
// access directory is consulted per call and never cached.
type Service struct {
	store   store.Store
	tx      StoreTx
	access  access.Directory
	outbox  outbox.Store
	cache   GraphCache
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewService(st store.Store, tx StoreTx, dir access.Directory, ob outbox.Store, cache GraphCache, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   st,
		tx:      tx,
		access:  dir,
		outbox:  ob,
		cache:   cache,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("verdict/decision"),
	}
}

// actor resolves the authenticated caller from context.
func actor(ctx context.Context) (id.UserID, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}

// scope resolves the asserted project scope from context. Decision-level
// routes require the caller to assert which project they are operating in;
// a missing assertion is a scope error, never a fallback.
func scope(ctx context.Context) (id.ProjectID, error) {
	projectID := requestcontext.ProjectID(ctx)
	if projectID.IsNil() {
		return id.ProjectID{}, dErrors.New(dErrors.CodeScope, "project scope is required")
	}
	return projectID, nil
}

// membership loads the caller's active membership in the project. No
// membership, or an inactive one, is a scope error: the caller has no
// standing in the project at all.
func (s *Service) membership(ctx context.Context, userID id.UserID, projectID id.ProjectID) (*access.Membership, error) {
	m, err := s.access.Membership(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeScope, "no membership in project")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "membership lookup failed")
	}
	if !m.Active {
		return nil, dErrors.New(dErrors.CodeScope, "membership in project is inactive")
	}
	return m, nil
}

// requireAction rejects members whose role does not grant the action.
func requireAction(m *access.Membership, a access.Action) error {
	if !m.Allows(a) {
		return dErrors.New(dErrors.CodeForbidden, "role does not permit "+string(a))
	}
	return nil
}

// loadScoped loads a decision and pins it to the asserted project scope. A
// decision outside the scope project reads as not found so callers cannot
// probe other projects for existence.
func (s *Service) loadScoped(ctx context.Context, decisionID id.DecisionID, projectID id.ProjectID) (*models.Decision, error) {
	d, err := s.store.GetDecision(ctx, decisionID)
	if err != nil {
		return nil, translateStore(err, "decision not found")
	}
	if d.ProjectID != projectID || d.IsDeleted {
		return nil, dErrors.New(dErrors.CodeNotFound, "decision not found")
	}
	return d, nil
}

// translateStore converts sentinel infrastructure errors into coded domain
// errors at the service boundary. Coded errors pass through untouched.
func translateStore(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "conflicting write")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "entity state changed underneath the request")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}

// emit appends the notification event for an accepted transition inside the
// current atomic unit.
func (s *Service) emit(ctx context.Context, t *models.StateTransition, projectID id.ProjectID) error {
	if s.outbox == nil {
		return nil
	}
	if err := s.outbox.Append(ctx, outbox.FromTransition(t, projectID)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue notification")
	}
	return nil
}

// invalidateGraph drops the cached graph snapshot after any mutation that
// changes nodes or edges.
func (s *Service) invalidateGraph(ctx context.Context, projectID id.ProjectID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, projectID)
	}
}
