// Package handler exposes the decision engine over HTTP. Handlers decode
// and validate request bodies, delegate to the service, and map domain
// errors onto statuses through httputil. No business rules live here.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"verdict/internal/decision/metrics"
	"verdict/internal/decision/models"
	"verdict/internal/decision/service"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/platform/httputil"
	"verdict/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for decision operations.
type Service interface {
	Create(ctx context.Context, projectID id.ProjectID, in service.CreateInput) (*models.Decision, error)
	Patch(ctx context.Context, decisionID id.DecisionID, in service.PatchInput) (*models.Decision, error)
	Get(ctx context.Context, decisionID id.DecisionID) (*service.Detail, error)
	List(ctx context.Context) ([]*models.Decision, error)
	Graph(ctx context.Context, projectID id.ProjectID) (*models.Graph, error)

	Commit(ctx context.Context, decisionID id.DecisionID) (*models.Decision, error)
	Approve(ctx context.Context, decisionID id.DecisionID) (*models.Decision, error)
	Archive(ctx context.Context, decisionID id.DecisionID) (*models.Decision, error)

	AddSignal(ctx context.Context, decisionID id.DecisionID, in service.SignalInput) (*models.Signal, error)
	UpdateSignal(ctx context.Context, decisionID id.DecisionID, signalID id.SignalID, patch models.SignalPatch) (*models.Signal, error)
	DeleteSignal(ctx context.Context, decisionID id.DecisionID, signalID id.SignalID) error

	AddOption(ctx context.Context, decisionID id.DecisionID, in service.OptionInput) (*models.Option, error)
	UpdateOption(ctx context.Context, decisionID id.DecisionID, optionID id.OptionID, patch models.OptionPatch) (*models.Option, error)

	SubmitReview(ctx context.Context, decisionID id.DecisionID, in service.ReviewInput) (*models.Review, error)
}

// Handler wires decision endpoints to the decision service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a decision handler with its dependencies.
func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts decision endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Post("/decisions", h.HandleCreate)
		r.Get("/graph", h.HandleGraph)
	})
	r.Route("/decisions", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Route("/{decisionID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Patch("/", h.HandlePatch)
			r.Post("/commit", h.HandleCommit)
			r.Post("/approve", h.HandleApprove)
			r.Post("/archive", h.HandleArchive)
			r.Post("/signals", h.HandleAddSignal)
			r.Patch("/signals/{signalID}", h.HandleUpdateSignal)
			r.Delete("/signals/{signalID}", h.HandleDeleteSignal)
			r.Post("/options", h.HandleAddOption)
			r.Patch("/options/{optionID}", h.HandleUpdateOption)
			r.Post("/reviews", h.HandleSubmitReview)
		})
	})
}

// HandleCreate handles POST /projects/{projectID}/decisions.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateDecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.Create(ctx, projectID, req.Input())
	if err != nil {
		h.logError(ctx, "decision create failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "decision created",
		"request_id", requestID,
		"decision_id", d.ID.String(),
		"project_id", projectID.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromDecision(d))
}

// HandleGet handles GET /decisions/{decisionID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.Get(ctx, decisionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDetail(detail))
}

// HandlePatch handles PATCH /decisions/{decisionID}.
func (h *Handler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PatchDecisionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.Patch(ctx, decisionID, req.Input())
	if err != nil {
		h.logError(ctx, "decision patch failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDecision(d))
}

// HandleCommit handles POST /decisions/{decisionID}/commit.
func (h *Handler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "commit", h.service.Commit)
}

// HandleApprove handles POST /decisions/{decisionID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve", h.service.Approve)
}

// HandleArchive handles POST /decisions/{decisionID}/archive.
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "archive", h.service.Archive)
}

// transition factors the shared shape of the body-less lifecycle endpoints.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, name string, op func(context.Context, id.DecisionID) (*models.Decision, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}

	d, err := op(ctx, decisionID)
	if err != nil {
		h.logError(ctx, "decision "+name+" failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "decision "+name+" accepted",
		"request_id", requestID,
		"decision_id", decisionID.String(),
		"status", string(d.Status),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromDecision(d))
}

// HandleAddSignal handles POST /decisions/{decisionID}/signals.
func (h *Handler) HandleAddSignal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateSignalRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sig, err := h.service.AddSignal(ctx, decisionID, req.Input())
	if err != nil {
		h.logError(ctx, "signal create failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromSignal(sig))
}

// HandleUpdateSignal handles PATCH /decisions/{decisionID}/signals/{signalID}.
func (h *Handler) HandleUpdateSignal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	signalID, err := id.ParseSignalID(chi.URLParam(r, "signalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[PatchSignalRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sig, err := h.service.UpdateSignal(ctx, decisionID, signalID, req.Patch())
	if err != nil {
		h.logError(ctx, "signal update failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSignal(sig))
}

// HandleDeleteSignal handles DELETE /decisions/{decisionID}/signals/{signalID}.
func (h *Handler) HandleDeleteSignal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	signalID, err := id.ParseSignalID(chi.URLParam(r, "signalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.DeleteSignal(ctx, decisionID, signalID); err != nil {
		h.logError(ctx, "signal delete failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddOption handles POST /decisions/{decisionID}/options.
func (h *Handler) HandleAddOption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateOptionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	opt, err := h.service.AddOption(ctx, decisionID, req.Input())
	if err != nil {
		h.logError(ctx, "option create failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromOption(opt))
}

// HandleUpdateOption handles PATCH /decisions/{decisionID}/options/{optionID}.
func (h *Handler) HandleUpdateOption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	optionID, err := id.ParseOptionID(chi.URLParam(r, "optionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[PatchOptionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	opt, err := h.service.UpdateOption(ctx, decisionID, optionID, req.Patch())
	if err != nil {
		h.logError(ctx, "option update failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOption(opt))
}

// HandleSubmitReview handles POST /decisions/{decisionID}/reviews.
func (h *Handler) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	decisionID, ok := h.decisionID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	review, err := h.service.SubmitReview(ctx, decisionID, req.Input())
	if err != nil {
		h.logError(ctx, "review submit failed", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromReview(review))
}

// HandleList handles GET /decisions.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	decisions, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDecisions(decisions))
}

// HandleGraph handles GET /projects/{projectID}/graph.
func (h *Handler) HandleGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, err := id.ParseProjectID(chi.URLParam(r, "projectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	g, err := h.service.Graph(ctx, projectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromGraph(g))
}

func (h *Handler) decisionID(w http.ResponseWriter, r *http.Request) (id.DecisionID, bool) {
	decisionID, err := id.ParseDecisionID(chi.URLParam(r, "decisionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.DecisionID{}, false
	}
	return decisionID, true
}

func (h *Handler) logError(ctx context.Context, msg, requestID string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"user_id", requestcontext.UserID(ctx).String(),
			"error", err,
		)
		return
	}
	h.logger.InfoContext(ctx, msg,
		"request_id", requestID,
		"user_id", requestcontext.UserID(ctx).String(),
		"error", err,
	)
}
