package handler

import (
	"strings"

	"verdict/internal/decision/models"
	"verdict/internal/decision/service"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// CreateDecisionRequest is the body for POST /projects/{projectID}/decisions.
type CreateDecisionRequest struct {
	Title            string   `json:"title"`
	ContextSummary   string   `json:"context_summary"`
	Reasoning        string   `json:"reasoning"`
	RiskLevel        string   `json:"risk_level"`
	Confidence       *int     `json:"confidence"`
	RequiresApproval bool     `json:"requires_approval"`
	ParentIDs        []string `json:"parent_ids"`

	parsed service.CreateInput
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateDecisionRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if len(r.Title) > 256 {
		return dErrors.New(dErrors.CodeValidation, "title must be at most 256 characters")
	}

	r.parsed = service.CreateInput{
		Title:            r.Title,
		ContextSummary:   strings.TrimSpace(r.ContextSummary),
		Reasoning:        strings.TrimSpace(r.Reasoning),
		RequiresApproval: r.RequiresApproval,
		Confidence:       r.Confidence,
	}
	if r.RiskLevel != "" {
		risk, err := models.ParseRiskLevel(r.RiskLevel)
		if err != nil {
			return err
		}
		r.parsed.RiskLevel = &risk
	}
	parents, err := parseDecisionIDs(r.ParentIDs)
	if err != nil {
		return err
	}
	r.parsed.ParentIDs = parents
	return nil
}

// Input returns the validated service input.
func (r *CreateDecisionRequest) Input() service.CreateInput { return r.parsed }

// PatchDecisionRequest is the body for PATCH /decisions/{decisionID}. Absent
// fields are untouched; parent_ids, when present, replaces the full parent
// set (an empty array clears it).
type PatchDecisionRequest struct {
	Title          *string   `json:"title"`
	ContextSummary *string   `json:"context_summary"`
	Reasoning      *string   `json:"reasoning"`
	RiskLevel      *string   `json:"risk_level"`
	Confidence     *int      `json:"confidence"`
	ParentIDs      *[]string `json:"parent_ids"`

	parsed service.PatchInput
}

func (r *PatchDecisionRequest) Validate() error {
	r.parsed = service.PatchInput{
		Fields: models.FieldPatch{
			Title:          r.Title,
			ContextSummary: r.ContextSummary,
			Reasoning:      r.Reasoning,
			Confidence:     r.Confidence,
		},
	}
	if r.RiskLevel != nil {
		risk, err := models.ParseRiskLevel(*r.RiskLevel)
		if err != nil {
			return err
		}
		r.parsed.Fields.RiskLevel = &risk
	}
	if r.ParentIDs != nil {
		parents, err := parseDecisionIDs(*r.ParentIDs)
		if err != nil {
			return err
		}
		if parents == nil {
			parents = []id.DecisionID{}
		}
		r.parsed.ParentIDs = &parents
	}
	return nil
}

func (r *PatchDecisionRequest) Input() service.PatchInput { return r.parsed }

// CreateSignalRequest is the body for POST /decisions/{decisionID}/signals.
type CreateSignalRequest struct {
	Metric              string `json:"metric"`
	Movement            string `json:"movement"`
	Period              string `json:"period"`
	Comparison          string `json:"comparison"`
	ScopeType           string `json:"scope_type"`
	ScopeValue          string `json:"scope_value"`
	DisplayTextOverride string `json:"display_text_override"`
}

func (r *CreateSignalRequest) Validate() error {
	r.Metric = strings.TrimSpace(r.Metric)
	r.Movement = strings.TrimSpace(r.Movement)
	if r.Metric == "" {
		return dErrors.New(dErrors.CodeValidation, "metric is required")
	}
	if r.Movement == "" {
		return dErrors.New(dErrors.CodeValidation, "movement is required")
	}
	if r.ScopeType != "" && models.ScopeType(r.ScopeType) != models.ScopeChannel {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown scope_type: "+r.ScopeType)
	}
	return nil
}

func (r *CreateSignalRequest) Input() service.SignalInput {
	return service.SignalInput{
		Metric:     r.Metric,
		Movement:   r.Movement,
		Period:     r.Period,
		Comparison: r.Comparison,
		ScopeType:  models.ScopeType(r.ScopeType),
		ScopeValue: r.ScopeValue,
		Override:   r.DisplayTextOverride,
	}
}

// PatchSignalRequest is the body for PATCH
// /decisions/{decisionID}/signals/{signalID}. An explicit empty
// display_text_override clears the freeze.
type PatchSignalRequest struct {
	Metric              *string `json:"metric"`
	Movement            *string `json:"movement"`
	Period              *string `json:"period"`
	Comparison          *string `json:"comparison"`
	ScopeType           *string `json:"scope_type"`
	ScopeValue          *string `json:"scope_value"`
	DisplayTextOverride *string `json:"display_text_override"`

	parsed models.SignalPatch
}

func (r *PatchSignalRequest) Validate() error {
	r.parsed = models.SignalPatch{
		Metric:     r.Metric,
		Movement:   r.Movement,
		Period:     r.Period,
		Comparison: r.Comparison,
		ScopeValue: r.ScopeValue,
		Override:   r.DisplayTextOverride,
	}
	if r.ScopeType != nil {
		st := models.ScopeType(*r.ScopeType)
		if st != "" && st != models.ScopeChannel {
			return dErrors.New(dErrors.CodeInvalidInput, "unknown scope_type: "+*r.ScopeType)
		}
		r.parsed.ScopeType = &st
	}
	return nil
}

func (r *PatchSignalRequest) Patch() models.SignalPatch { return r.parsed }

// CreateOptionRequest is the body for POST /decisions/{decisionID}/options.
type CreateOptionRequest struct {
	Text       string `json:"text"`
	IsSelected bool   `json:"is_selected"`
	Order      int    `json:"order"`
}

func (r *CreateOptionRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return dErrors.New(dErrors.CodeValidation, "text is required")
	}
	return nil
}

func (r *CreateOptionRequest) Input() service.OptionInput {
	return service.OptionInput{Text: r.Text, IsSelected: r.IsSelected, Order: r.Order}
}

// PatchOptionRequest is the body for PATCH
// /decisions/{decisionID}/options/{optionID}.
type PatchOptionRequest struct {
	Text       *string `json:"text"`
	IsSelected *bool   `json:"is_selected"`
	Order      *int    `json:"order"`
}

func (r *PatchOptionRequest) Patch() models.OptionPatch {
	return models.OptionPatch{Text: r.Text, IsSelected: r.IsSelected, Order: r.Order}
}

// CreateReviewRequest is the body for POST /decisions/{decisionID}/reviews.
type CreateReviewRequest struct {
	OutcomeText    string `json:"outcome_text"`
	ReflectionText string `json:"reflection_text"`
	Quality        string `json:"quality"`

	parsedQuality models.ReviewQuality
}

func (r *CreateReviewRequest) Validate() error {
	r.OutcomeText = strings.TrimSpace(r.OutcomeText)
	if r.OutcomeText == "" {
		return dErrors.New(dErrors.CodeValidation, "outcome_text is required")
	}
	quality, err := models.ParseReviewQuality(r.Quality)
	if err != nil {
		return err
	}
	r.parsedQuality = quality
	return nil
}

func (r *CreateReviewRequest) Input() service.ReviewInput {
	return service.ReviewInput{
		OutcomeText:    r.OutcomeText,
		ReflectionText: r.ReflectionText,
		Quality:        r.parsedQuality,
	}
}

func parseDecisionIDs(raw []string) ([]id.DecisionID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]id.DecisionID, 0, len(raw))
	for _, s := range raw {
		decisionID, err := id.ParseDecisionID(s)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid parent decision id: "+s)
		}
		out = append(out, decisionID)
	}
	return out, nil
}
