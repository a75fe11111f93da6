package handler

import (
	"time"

	"verdict/internal/decision/models"
	"verdict/internal/decision/service"
	id "verdict/pkg/domain"
)

// DecisionResponse is the wire shape of one decision.
type DecisionResponse struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"project_id"`
	ProjectSeq       int64      `json:"project_seq"`
	Title            string     `json:"title"`
	ContextSummary   string     `json:"context_summary"`
	Reasoning        string     `json:"reasoning"`
	RiskLevel        string     `json:"risk_level"`
	Confidence       int        `json:"confidence"`
	Status           string     `json:"status"`
	RequiresApproval bool       `json:"requires_approval"`
	AuthorID         string     `json:"author_id"`
	CommittedAt      *time.Time `json:"committed_at,omitempty"`
	CommittedByID    *string    `json:"committed_by_id,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	ApprovedByID     *string    `json:"approved_by_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FromDecision converts a domain decision to its wire shape.
func FromDecision(d *models.Decision) *DecisionResponse {
	return &DecisionResponse{
		ID:               d.ID.String(),
		ProjectID:        d.ProjectID.String(),
		ProjectSeq:       d.ProjectSeq,
		Title:            d.Title,
		ContextSummary:   d.ContextSummary,
		Reasoning:        d.Reasoning,
		RiskLevel:        string(d.RiskLevel),
		Confidence:       d.Confidence,
		Status:           string(d.Status),
		RequiresApproval: d.RequiresApproval,
		AuthorID:         d.AuthorID.String(),
		CommittedAt:      d.CommittedAt,
		CommittedByID:    userIDString(d.CommittedByID),
		ApprovedAt:       d.ApprovedAt,
		ApprovedByID:     userIDString(d.ApprovedByID),
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// SignalResponse is the wire shape of one signal. DisplayText carries the
// rendered text: the override when frozen, the computed form otherwise.
type SignalResponse struct {
	ID                  string    `json:"id"`
	DecisionID          string    `json:"decision_id"`
	Metric              string    `json:"metric"`
	Movement            string    `json:"movement"`
	Period              string    `json:"period,omitempty"`
	Comparison          string    `json:"comparison,omitempty"`
	ScopeType           string    `json:"scope_type,omitempty"`
	ScopeValue          string    `json:"scope_value,omitempty"`
	DisplayText         string    `json:"display_text"`
	DisplayTextOverride string    `json:"display_text_override,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func FromSignal(s *models.Signal) *SignalResponse {
	return &SignalResponse{
		ID:                  s.ID.String(),
		DecisionID:          s.DecisionID.String(),
		Metric:              s.Metric,
		Movement:            s.Movement,
		Period:              s.Period,
		Comparison:          s.Comparison,
		ScopeType:           string(s.ScopeType),
		ScopeValue:          s.ScopeValue,
		DisplayText:         s.DisplayText(),
		DisplayTextOverride: s.DisplayTextOverride,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

// OptionResponse is the wire shape of one option.
type OptionResponse struct {
	ID         string    `json:"id"`
	DecisionID string    `json:"decision_id"`
	Text       string    `json:"text"`
	IsSelected bool      `json:"is_selected"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func FromOption(o *models.Option) *OptionResponse {
	return &OptionResponse{
		ID:         o.ID.String(),
		DecisionID: o.DecisionID.String(),
		Text:       o.Text,
		IsSelected: o.IsSelected,
		Order:      o.Order,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// ReviewResponse is the wire shape of one outcome review.
type ReviewResponse struct {
	ID             string    `json:"id"`
	DecisionID     string    `json:"decision_id"`
	ReviewerID     string    `json:"reviewer_id"`
	OutcomeText    string    `json:"outcome_text"`
	ReflectionText string    `json:"reflection_text,omitempty"`
	Quality        string    `json:"quality"`
	ReviewedAt     time.Time `json:"reviewed_at"`
}

func FromReview(r *models.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:             r.ID.String(),
		DecisionID:     r.DecisionID.String(),
		ReviewerID:     r.ReviewerID.String(),
		OutcomeText:    r.OutcomeText,
		ReflectionText: r.ReflectionText,
		Quality:        string(r.Quality),
		ReviewedAt:     r.ReviewedAt,
	}
}

// TransitionResponse is the wire shape of one audit transition row.
type TransitionResponse struct {
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	Method        string    `json:"method"`
	TriggeredByID string    `json:"triggered_by_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func FromTransition(t *models.StateTransition) *TransitionResponse {
	return &TransitionResponse{
		FromStatus:    string(t.FromStatus),
		ToStatus:      string(t.ToStatus),
		Method:        string(t.Method),
		TriggeredByID: t.TriggeredByID.String(),
		Timestamp:     t.Timestamp,
	}
}

// DetailResponse is the wire shape of a single-decision read.
type DetailResponse struct {
	Decision    *DecisionResponse     `json:"decision"`
	Signals     []*SignalResponse     `json:"signals"`
	Options     []*OptionResponse     `json:"options"`
	ParentIDs   []string              `json:"parent_ids"`
	Transitions []*TransitionResponse `json:"transitions"`
	Reviews     []*ReviewResponse     `json:"reviews"`
}

func FromDetail(d *service.Detail) *DetailResponse {
	resp := &DetailResponse{
		Decision:    FromDecision(d.Decision),
		Signals:     make([]*SignalResponse, len(d.Signals)),
		Options:     make([]*OptionResponse, len(d.Options)),
		ParentIDs:   make([]string, len(d.ParentIDs)),
		Transitions: make([]*TransitionResponse, len(d.Transitions)),
		Reviews:     make([]*ReviewResponse, len(d.Reviews)),
	}
	for i, s := range d.Signals {
		resp.Signals[i] = FromSignal(s)
	}
	for i, o := range d.Options {
		resp.Options[i] = FromOption(o)
	}
	for i, p := range d.ParentIDs {
		resp.ParentIDs[i] = p.String()
	}
	for i, t := range d.Transitions {
		resp.Transitions[i] = FromTransition(t)
	}
	for i, r := range d.Reviews {
		resp.Reviews[i] = FromReview(r)
	}
	return resp
}

// ListResponse is the wire shape of the cross-project decision list.
type ListResponse struct {
	Decisions []*DecisionResponse `json:"decisions"`
}

func FromDecisions(decisions []*models.Decision) *ListResponse {
	resp := &ListResponse{Decisions: make([]*DecisionResponse, len(decisions))}
	for i, d := range decisions {
		resp.Decisions[i] = FromDecision(d)
	}
	return resp
}

// GraphNodeResponse and GraphEdgeResponse form the graph snapshot wire
// shape.
type GraphNodeResponse struct {
	ID         string `json:"id"`
	ProjectSeq int64  `json:"project_seq"`
	Title      string `json:"title"`
	Status     string `json:"status"`
}

type GraphEdgeResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type GraphResponse struct {
	Nodes []GraphNodeResponse `json:"nodes"`
	Edges []GraphEdgeResponse `json:"edges"`
}

func FromGraph(g *models.Graph) *GraphResponse {
	resp := &GraphResponse{
		Nodes: make([]GraphNodeResponse, len(g.Nodes)),
		Edges: make([]GraphEdgeResponse, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		resp.Nodes[i] = GraphNodeResponse{
			ID:         n.ID.String(),
			ProjectSeq: n.ProjectSeq,
			Title:      n.Title,
			Status:     string(n.Status),
		}
	}
	for i, e := range g.Edges {
		resp.Edges[i] = GraphEdgeResponse{From: e.From.String(), To: e.To.String()}
	}
	return resp
}

func userIDString(u *id.UserID) *string {
	if u == nil {
		return nil
	}
	s := u.String()
	return &s
}
