package models

import (
	"time"

	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
)

// ReviewQuality grades how the committed decision turned out.
type ReviewQuality string

const (
	QualityGood       ReviewQuality = "good"
	QualityAcceptable ReviewQuality = "acceptable"
	QualityPoor       ReviewQuality = "poor"
)

// ParseReviewQuality validates a raw quality string.
func ParseReviewQuality(s string) (ReviewQuality, error) {
	switch ReviewQuality(s) {
	case QualityGood, QualityAcceptable, QualityPoor:
		return ReviewQuality(s), nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "review quality must be good, acceptable, or poor")
}

// Review is one post-commit outcome review. A decision accumulates reviews
// over repeated retrospectives; only the first one moves the status.
type Review struct {
	ID             id.ReviewID   `json:"id"`
	DecisionID     id.DecisionID `json:"decision_id"`
	ReviewerID     id.UserID     `json:"reviewer_id"`
	OutcomeText    string        `json:"outcome_text"`
	ReflectionText string        `json:"reflection_text"`
	Quality        ReviewQuality `json:"quality"`
	ReviewedAt     time.Time     `json:"reviewed_at"`
}

// NewReview constructs a validated review.
func NewReview(reviewID id.ReviewID, decisionID id.DecisionID, reviewer id.UserID, outcome, reflection string, quality ReviewQuality, at time.Time) (*Review, error) {
	if outcome == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "review outcome text cannot be empty")
	}
	if _, err := ParseReviewQuality(string(quality)); err != nil {
		return nil, err
	}
	return &Review{
		ID:             reviewID,
		DecisionID:     decisionID,
		ReviewerID:     reviewer,
		OutcomeText:    outcome,
		ReflectionText: reflection,
		Quality:        quality,
		ReviewedAt:     at,
	}, nil
}
