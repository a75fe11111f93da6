package service

import (
	"context"
	"time"

	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
	"verdict/pkg/requestcontext"
)

// OptionInput carries the fields of a new option.
type OptionInput struct {
	Text       string
	IsSelected bool
	Order      int
}

// AddOption attaches an option to a draft decision. Author-only,
// draft-only. Selecting an option deselects its siblings in the same atomic
// unit; the commit validator still enforces exactly one selected option.
func (s *Service) AddOption(ctx context.Context, decisionID id.DecisionID, in OptionInput) (*models.Option, error) {
	userID, projectID, err := s.draftWriteGuards(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var created *models.Option
	err = s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		d, err := s.loadScoped(txCtx, decisionID, projectID)
		if err != nil {
			return err
		}
		if err := d.CanEdit(userID); err != nil {
			return err
		}
		opt, err := models.NewOption(id.NewOptionID(), decisionID, in.Text, in.Order, now)
		if err != nil {
			return err
		}
		opt.IsSelected = in.IsSelected
		if err := s.store.SaveOption(txCtx, opt); err != nil {
			return translateStore(err, "decision not found")
		}
		if opt.IsSelected {
			if err := s.deselectSiblings(txCtx, decisionID, opt.ID, now); err != nil {
				return err
			}
		}
		created = opt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateOption patches an option on a draft decision.
func (s *Service) UpdateOption(ctx context.Context, decisionID id.DecisionID, optionID id.OptionID, patch models.OptionPatch) (*models.Option, error) {
	userID, projectID, err := s.draftWriteGuards(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var updated *models.Option
	err = s.tx.RunInProjectTx(ctx, projectID, func(txCtx context.Context) error {
		d, err := s.loadScoped(txCtx, decisionID, projectID)
		if err != nil {
			return err
		}
		if err := d.CanEdit(userID); err != nil {
			return err
		}
		opt, err := s.store.GetOption(txCtx, decisionID, optionID)
		if err != nil {
			return translateStore(err, "option not found")
		}
		if err := opt.ApplyPatch(patch, now); err != nil {
			return err
		}
		if err := s.store.SaveOption(txCtx, opt); err != nil {
			return translateStore(err, "option not found")
		}
		if patch.IsSelected != nil && opt.IsSelected {
			if err := s.deselectSiblings(txCtx, decisionID, opt.ID, now); err != nil {
				return err
			}
		}
		updated = opt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// deselectSiblings clears the selection on every other option of the
// decision so at most one option is ever selected. Runs inside the caller's
// atomic unit.
func (s *Service) deselectSiblings(ctx context.Context, decisionID id.DecisionID, keep id.OptionID, now time.Time) error {
	opts, err := s.store.ListOptions(ctx, decisionID)
	if err != nil {
		return translateStore(err, "decision not found")
	}
	for _, o := range opts {
		if o.ID == keep || !o.IsSelected {
			continue
		}
		o.IsSelected = false
		o.UpdatedAt = now
		if err := s.store.SaveOption(ctx, o); err != nil {
			return translateStore(err, "option not found")
		}
	}
	return nil
}
