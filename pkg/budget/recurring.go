package budget

import (
	"context"

	"github.com/pkg/errors"
)

// recurringService implements the RecurringService interface
type recurringService struct {
	tracker *Tracker
}

// Detect analyses the account's whole spend history up to today
func (s *recurringService) Detect(ctx context.Context, accountID string, today Date, opts *DetectOptions) ([]*RecurringPattern, error) {
	var patterns []*RecurringPattern

	err := s.tracker.observe(ctx, "recurring.detect", map[string]string{"account.id": accountID}, func() error {
		txs, err := s.tracker.transactions.ListTransactions(ctx, &TransactionQuery{
			AccountID:    accountID,
			Until:        today,
			SpendOnly:    true,
			MerchantOnly: true,
		})
		if err != nil {
			return errors.Wrap(err, "failed to list transactions")
		}

		o := s.tracker.detectDefaults(opts)
		if o.Today.IsZero() {
			o.Today = today
		}

		patterns = DetectRecurringTransactions(txs, o)
		s.tracker.options.Logger.Info("Detected recurring transactions",
			"account", accountID, "transactions", len(txs), "patterns", len(patterns))
		return nil
	})

	return patterns, err
}
