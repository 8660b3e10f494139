package budget

import (
	"context"

	"github.com/pkg/errors"
)

// budgetService implements the BudgetService interface
type budgetService struct {
	tracker *Tracker
}

// Status returns the status of one budget for the period containing today
func (s *budgetService) Status(ctx context.Context, budgetID string, today Date) (*BudgetStatus, error) {
	var status *BudgetStatus

	err := s.tracker.observe(ctx, "budgets.status", map[string]string{"budget.id": budgetID}, func() error {
		b, err := s.tracker.budgets.GetBudget(ctx, budgetID)
		if err != nil {
			return errors.Wrap(err, "failed to get budget")
		}

		p := b.CurrentPeriod(today)
		txs, err := s.tracker.transactions.ListTransactions(ctx, &TransactionQuery{
			AccountID:  b.AccountID,
			Categories: []string{b.Category},
			Since:      p.Start,
			Until:      p.End,
			SpendOnly:  true,
		})
		if err != nil {
			return errors.Wrap(err, "failed to list transactions")
		}

		status = newBudgetStatus(b, p, ComputeSpend(b, p, txs))
		return nil
	})

	return status, err
}

// AllStatuses returns the status of every budget of an account
func (s *budgetService) AllStatuses(ctx context.Context, accountID string, today Date) ([]*BudgetStatus, error) {
	var statuses []*BudgetStatus

	err := s.tracker.observe(ctx, "budgets.all_statuses", map[string]string{"account.id": accountID}, func() error {
		budgets, err := s.tracker.budgets.ListBudgets(ctx, accountID)
		if err != nil {
			return errors.Wrap(err, "failed to list budgets")
		}

		statuses, err = s.tracker.statusesFor(ctx, accountID, budgets, today)
		return err
	})

	return statuses, err
}

// statusesFor computes the statuses of budgets from a single transaction fetch over the
// window covering all of their periods
func (t *Tracker) statusesFor(ctx context.Context, accountID string, budgets []*Budget, today Date) ([]*BudgetStatus, error) {
	if len(budgets) == 0 {
		return []*BudgetStatus{}, nil
	}

	window := BudgetsPeriod(budgets, today)
	txs, err := t.transactions.ListTransactions(ctx, &TransactionQuery{
		AccountID:  accountID,
		Categories: BudgetCategories(budgets),
		Since:      window.Start,
		Until:      window.End,
		SpendOnly:  true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
	}

	t.options.Logger.Debug("Computing budget statuses",
		"account", accountID, "budgets", len(budgets), "transactions", len(txs),
		"since", window.Start.String(), "until", window.End.String())

	return ComputeAllBudgetStatuses(budgets, today, txs), nil
}
