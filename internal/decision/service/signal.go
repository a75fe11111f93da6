package service

import (
	"context"

	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
	dErrors "verdict/pkg/domain-errors"
	"verdict/pkg/requestcontext"
)

// SignalInput carries the fields of a new signal.
type SignalInput struct {
	Metric     string
	Movement   string
	Period     string
	Comparison string
	ScopeType  models.ScopeType
	ScopeValue string
	Override   string
}

// AddSignal attaches a signal to a draft decision. Author-only, draft-only,
// capped at MaxSignalsPerDecision.
func (s *Service) AddSignal(ctx context.Context, decisionID id.DecisionID, in SignalInput) (*models.Signal, error) {
	userID, projectID, err := s.draftWriteGuards(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var created *models.Signal
	err = s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		d, err := s.loadScoped(txCtx, decisionID, projectID)
		if err != nil {
			return err
		}
		if err := d.CanEdit(userID); err != nil {
			return err
		}
		existing, err := s.store.ListSignals(txCtx, decisionID)
		if err != nil {
			return translateStore(err, "decision not found")
		}
		if len(existing) >= models.MaxSignalsPerDecision {
			return dErrors.New(dErrors.CodeValidation, "a decision may carry at most 15 signals")
		}

		sig, err := models.NewSignal(id.NewSignalID(), decisionID, in.Metric, in.Movement, in.Period, in.Comparison, now)
		if err != nil {
			return err
		}
		sig.ScopeType = in.ScopeType
		sig.ScopeValue = in.ScopeValue
		sig.DisplayTextOverride = in.Override
		if err := sig.Validate(); err != nil {
			return err
		}
		if err := s.store.SaveSignal(txCtx, sig); err != nil {
			return translateStore(err, "decision not found")
		}
		created = sig
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateSignal patches a signal on a draft decision. An explicit empty
// override clears the display-text freeze; an absent one leaves it alone.
func (s *Service) UpdateSignal(ctx context.Context, decisionID id.DecisionID, signalID id.SignalID, patch models.SignalPatch) (*models.Signal, error) {
	userID, projectID, err := s.draftWriteGuards(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var updated *models.Signal
	err = s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		d, err := s.loadScoped(txCtx, decisionID, projectID)
		if err != nil {
			return err
		}
		if err := d.CanEdit(userID); err != nil {
			return err
		}
		sig, err := s.store.GetSignal(txCtx, decisionID, signalID)
		if err != nil {
			return translateStore(err, "signal not found")
		}
		if err := sig.ApplyPatch(patch, now); err != nil {
			return err
		}
		if err := s.store.SaveSignal(txCtx, sig); err != nil {
			return translateStore(err, "signal not found")
		}
		updated = sig
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSignal removes a signal from a draft decision.
func (s *Service) DeleteSignal(ctx context.Context, decisionID id.DecisionID, signalID id.SignalID) error {
	userID, projectID, err := s.draftWriteGuards(ctx)
	if err != nil {
		return err
	}

	return s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		d, err := s.loadScoped(txCtx, decisionID, projectID)
		if err != nil {
			return err
		}
		if err := d.CanEdit(userID); err != nil {
			return err
		}
		if err := s.store.DeleteSignal(txCtx, decisionID, signalID); err != nil {
			return translateStore(err, "signal not found")
		}
		return nil
	})
}

// draftWriteGuards resolves the actor, the project scope and an active
// membership, shared by every signal and option write.
func (s *Service) draftWriteGuards(ctx context.Context) (id.UserID, id.ProjectID, error) {
	userID, err := actor(ctx)
	if err != nil {
		return id.UserID{}, id.ProjectID{}, err
	}
	projectID, err := scope(ctx)
	if err != nil {
		return id.UserID{}, id.ProjectID{}, err
	}
	if _, err := s.membership(ctx, userID, projectID); err != nil {
		return id.UserID{}, id.ProjectID{}, err
	}
	return userID, projectID, nil
}
