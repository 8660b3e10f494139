package budget

import "context"

// alertService implements the AlertService interface
type alertService struct {
	tracker *Tracker
}

// Check returns the statuses at or past the warning threshold, in budget order
func (s *alertService) Check(ctx context.Context, accountID string, today Date) ([]*BudgetStatus, error) {
	statuses, err := s.tracker.Budgets.AllStatuses(ctx, accountID, today)
	if err != nil {
		return nil, err
	}

	alerts := []*BudgetStatus{}
	for _, st := range statuses {
		if st.Status == StatusWarning || st.Status == StatusOver {
			alerts = append(alerts, st)
		}
	}
	return alerts, nil
}
