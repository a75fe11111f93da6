package service

import (
	"context"

	"verdict/internal/access"
	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
	"verdict/pkg/requestcontext"
)

// ReviewInput carries one outcome review.
type ReviewInput struct {
	OutcomeText    string
	ReflectionText string
	Quality        models.ReviewQuality
}

// SubmitReview records an outcome review of a committed decision. Requires
// review permission. Every submission inserts a review row; only the first
// one flips the status to reviewed and writes a transition row, so repeat
// retrospectives accumulate reviews without re-transitioning.
func (s *Service) SubmitReview(ctx context.Context, decisionID id.DecisionID, in ReviewInput) (*models.Review, error) {
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
	if err := requireAction(m, access.ActionReview); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var created *models.Review
	var transitioned bool
	err = s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		d, err := s.loadScoped(txCtx, decisionID, projectID)
		if err != nil {
			return err
		}
		if err := d.CanReview(); err != nil {
			return err
		}
		review, err := models.NewReview(id.NewReviewID(), decisionID, userID, in.OutcomeText, in.ReflectionText, in.Quality, now)
		if err != nil {
			return err
		}
		if err := s.store.AddReview(txCtx, review); err != nil {
			return translateStore(err, "decision not found")
		}

		if d.Status == models.StatusCommitted {
			from := d.Status
			d.ApplyReviewed(now)
			if err := s.store.UpdateDecision(txCtx, d); err != nil {
				return translateStore(err, "decision not found")
			}
			transition := models.NewStateTransition(d.ID, from, d.Status, models.MethodReview, userID, now)
			if err := s.store.AppendTransition(txCtx, transition); err != nil {
				return translateStore(err, "decision not found")
			}
			if err := s.emit(txCtx, transition, projectID); err != nil {
				return err
			}
			transitioned = true
		}
		created = review
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Invalidate only after the tx is visible; a concurrent read between an
	// in-tx Del and the commit would re-prime the cache with the old status.
	if transitioned {
		s.invalidateGraph(ctx, projectID)
	}
	s.metrics.IncReviews()
	return created, nil
}
