package budget

import (
	"context"

	"github.com/pkg/errors"
)

// sinkingFundService implements the SinkingFundService interface
type sinkingFundService struct {
	tracker *Tracker
}

// Status returns the contribution position of one sinking fund
func (s *sinkingFundService) Status(ctx context.Context, budgetID string, today Date) (*SinkingFundStatus, error) {
	var status *SinkingFundStatus

	err := s.tracker.observe(ctx, "sinking_funds.status", map[string]string{"budget.id": budgetID}, func() error {
		b, err := s.tracker.budgets.GetBudget(ctx, budgetID)
		if err != nil {
			return errors.Wrap(err, "failed to get budget")
		}

		status, err = s.compute(ctx, b, today)
		return err
	})

	return status, err
}

// AllStatuses returns the position of every sinking fund of an account
func (s *sinkingFundService) AllStatuses(ctx context.Context, accountID string, today Date) ([]*SinkingFundStatus, error) {
	statuses := []*SinkingFundStatus{}

	err := s.tracker.observe(ctx, "sinking_funds.all_statuses", map[string]string{"account.id": accountID}, func() error {
		budgets, err := s.tracker.budgets.ListBudgets(ctx, accountID)
		if err != nil {
			return errors.Wrap(err, "failed to list budgets")
		}

		for _, b := range budgets {
			if !b.IsSinkingFund() {
				continue
			}
			status, err := s.compute(ctx, b, today)
			if err != nil {
				return err
			}
			statuses = append(statuses, status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return statuses, nil
}

// Pots summarises the account's active pots
func (s *sinkingFundService) Pots(ctx context.Context, accountID string) (*PotSummary, error) {
	var summary *PotSummary

	err := s.tracker.observe(ctx, "sinking_funds.pots", map[string]string{"account.id": accountID}, func() error {
		lister, ok := s.tracker.pots.(PotLister)
		if !ok {
			return errors.Wrap(ErrNoStore, "pot listing not configured")
		}

		pots, err := lister.ListPots(ctx, accountID, true)
		if err != nil {
			return errors.Wrap(err, "failed to list pots")
		}

		budgets, err := s.tracker.budgets.ListBudgets(ctx, accountID)
		if err != nil {
			return errors.Wrap(err, "failed to list budgets")
		}

		summary = SummarisePots(pots, budgets)
		return nil
	})

	return summary, err
}

// compute gathers the pot evidence for b and runs the sinking-fund engine
func (s *sinkingFundService) compute(ctx context.Context, b *Budget, today Date) (*SinkingFundStatus, error) {
	if !b.IsSinkingFund() {
		return nil, errors.Wrapf(ErrNotSinkingFund, "budget %s has period type %q", b.ID, b.PeriodType)
	}

	in := SinkingFundInput{}
	if b.LinkedPotID == nil || *b.LinkedPotID == "" {
		return ComputeSinkingFundStatus(b, today, in)
	}
	potID := *b.LinkedPotID

	if s.tracker.pots != nil {
		pot, err := s.tracker.pots.GetPot(ctx, potID)
		switch {
		case IsNotFound(err):
			s.tracker.options.Logger.Warn("Linked pot not found", "budget", b.ID, "pot", potID)
		case err != nil:
			return nil, errors.Wrap(err, "failed to get pot")
		default:
			in.Pot = pot
		}
	}

	since := ContributionWindowStart(b.EffectiveTargetMonth(), today)
	contributions, err := s.contributions(ctx, b.AccountID, potID, since, today)
	if err != nil {
		return nil, err
	}
	in.Contributions = contributions

	return ComputeSinkingFundStatus(b, today, in)
}

// contributions reads the pot's transfer history, deriving it from transactions
// when no contribution source is configured
func (s *sinkingFundService) contributions(ctx context.Context, accountID, potID string, since, until Date) ([]*PotContribution, error) {
	if s.tracker.contributions != nil {
		out, err := s.tracker.contributions.ListPotContributions(ctx, accountID, potID, since, until)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list pot contributions")
		}
		return out, nil
	}

	// Transfers are dated by settlement, which can fall after occurrence, so only the
	// upper bound is safe to push down
	txs, err := s.tracker.transactions.ListTransactions(ctx, &TransactionQuery{
		AccountID: accountID,
		Until:     until,
		SpendOnly: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
	}
	return PotContributions(txs, potID, since, until), nil
}
