package service

import (
	"context"
	"time"

	"verdict/internal/access"
	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/requestcontext"
)

// Commit moves a draft out of draft. The validator runs first and reports
// every violated rule at once; on success the status change, the commit
// record (when landing in committed) and the transition row are written in
// one atomic unit. Decisions requiring approval park in awaiting_approval
// without a commit record.
func (s *Service) Commit(ctx context.Context, decisionID id.DecisionID) (*models.Decision, error) {
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

	ctx, span := s.tracer.Start(ctx, "decision.commit")
	defer span.End()
	start := time.Now()

	now := requestcontext.Now(ctx)
	var committed *models.Decision
	err = s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		d, err := s.loadScoped(txCtx, decisionID, projectID)
		if err != nil {
			return err
		}
		if d.AuthorID != userID {
			if err := requireAction(m, access.ActionEdit); err != nil {
				return err
			}
		}
		if err := d.CanCommit(); err != nil {
			return err
		}

		signals, err := s.store.ListSignals(txCtx, decisionID)
		if err != nil {
			return translateStore(err, "decision not found")
		}
		options, err := s.store.ListOptions(txCtx, decisionID)
		if err != nil {
			return translateStore(err, "decision not found")
		}
		if fields := models.ValidateCommit(d, signals, options); len(fields) > 0 {
			s.metrics.IncValidationFailures()
			return dErrors.WithFields(dErrors.CodeValidation, "decision is not ready to commit", fields)
		}

		from := d.Status
		landed := d.ApplyCommit(userID, now)
		if err := s.store.UpdateDecision(txCtx, d); err != nil {
			return translateStore(err, "decision not found")
		}
		if landed == models.StatusCommitted {
			record := models.NewCommitRecord(d, signals, options, userID, now)
			if err := s.store.CreateCommitRecord(txCtx, record); err != nil {
				return translateStore(err, "decision not found")
			}
		}
		transition := models.NewStateTransition(d.ID, from, landed, models.MethodCommit, userID, now)
		if err := s.store.AppendTransition(txCtx, transition); err != nil {
			return translateStore(err, "decision not found")
		}
		if err := s.emit(txCtx, transition, projectID); err != nil {
			return err
		}
		committed = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCommits()
	s.metrics.ObserveCommit(start)
	s.invalidateGraph(ctx, projectID)
	s.logger.InfoContext(ctx, "decision committed",
		"decision_id", decisionID.String(),
		"project_id", projectID.String(),
		"status", string(committed.Status),
	)
	return committed, nil
}

// Approve completes a gated commit: awaiting_approval to committed. The
// approver needs approve permission; the validator re-runs against the
// current data, then the approval metadata, the commit record and the
// transition row are written atomically.
func (s *Service) Approve(ctx context.Context, decisionID id.DecisionID) (*models.Decision, error) {
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
	if err := requireAction(m, access.ActionApprove); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "decision.approve")
	defer span.End()

	now := requestcontext.Now(ctx)
	var approved *models.Decision
	err = s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		d, err := s.loadScoped(txCtx, decisionID, projectID)
		if err != nil {
			return err
		}
		if err := d.CanApprove(); err != nil {
			return err
		}

		signals, err := s.store.ListSignals(txCtx, decisionID)
		if err != nil {
			return translateStore(err, "decision not found")
		}
		options, err := s.store.ListOptions(txCtx, decisionID)
		if err != nil {
			return translateStore(err, "decision not found")
		}
		if fields := models.ValidateCommit(d, signals, options); len(fields) > 0 {
			s.metrics.IncValidationFailures()
			return dErrors.WithFields(dErrors.CodeValidation, "decision is not ready to commit", fields)
		}

		from := d.Status
		d.ApplyApproval(userID, now)
		if err := s.store.UpdateDecision(txCtx, d); err != nil {
			return translateStore(err, "decision not found")
		}
		record := models.NewCommitRecord(d, signals, options, userID, now)
		if err := s.store.CreateCommitRecord(txCtx, record); err != nil {
			return translateStore(err, "decision not found")
		}
		transition := models.NewStateTransition(d.ID, from, d.Status, models.MethodApprove, userID, now)
		if err := s.store.AppendTransition(txCtx, transition); err != nil {
			return translateStore(err, "decision not found")
		}
		if err := s.emit(txCtx, transition, projectID); err != nil {
			return err
		}
		approved = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCommits()
	s.invalidateGraph(ctx, projectID)
	s.logger.InfoContext(ctx, "decision approved",
		"decision_id", decisionID.String(),
		"project_id", projectID.String(),
	)
	return approved, nil
}

// Archive moves a decision to the terminal archived status. Allowed from
// any non-archived status for the author or any member with edit
// permission; afterwards the decision never mutates again.
func (s *Service) Archive(ctx context.Context, decisionID id.DecisionID) (*models.Decision, error) {
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

	now := requestcontext.Now(ctx)
	var archived *models.Decision
	err = s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		d, err := s.loadScoped(txCtx, decisionID, projectID)
		if err != nil {
			return err
		}
		if d.AuthorID != userID {
			if err := requireAction(m, access.ActionEdit); err != nil {
				return err
			}
		}
		if err := d.CanArchive(); err != nil {
			return err
		}

		from := d.Status
		d.ApplyArchive(now)
		if err := s.store.UpdateDecision(txCtx, d); err != nil {
			return translateStore(err, "decision not found")
		}
		transition := models.NewStateTransition(d.ID, from, d.Status, models.MethodArchive, userID, now)
		if err := s.store.AppendTransition(txCtx, transition); err != nil {
			return translateStore(err, "decision not found")
		}
		if err := s.emit(txCtx, transition, projectID); err != nil {
			return err
		}
		archived = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateGraph(ctx, projectID)
	s.logger.InfoContext(ctx, "decision archived",
		"decision_id", decisionID.String(),
		"project_id", projectID.String(),
	)
	return archived, nil
}
