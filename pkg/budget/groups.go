package budget

import (
	"context"

	"github.com/pkg/errors"
)

// groupService implements the GroupService interface
type groupService struct {
	tracker *Tracker
}

// Status returns the roll-up of a single group
func (s *groupService) Status(ctx context.Context, accountID, groupID string, today Date) (*BudgetGroupStatus, error) {
	var status *BudgetGroupStatus

	err := s.tracker.observe(ctx, "groups.status", map[string]string{"group.id": groupID}, func() error {
		groups, err := s.tracker.budgets.ListGroups(ctx, accountID)
		if err != nil {
			return errors.Wrap(err, "failed to list budget groups")
		}

		var group *BudgetGroup
		for _, g := range groups {
			if g.ID == groupID {
				group = g
				break
			}
		}
		if group == nil {
			return errors.Wrapf(ErrNotFound, "budget group %s", groupID)
		}

		members, err := s.tracker.statusesFor(ctx, accountID, group.Budgets, today)
		if err != nil {
			return err
		}

		status = ComputeGroupStatus(group, members, today)
		return nil
	})

	return status, err
}

// AllStatuses returns every group's roll-up in display order
func (s *groupService) AllStatuses(ctx context.Context, accountID string, today Date) ([]*BudgetGroupStatus, error) {
	var statuses []*BudgetGroupStatus

	err := s.tracker.observe(ctx, "groups.all_statuses", map[string]string{"account.id": accountID}, func() error {
		var err error
		statuses, err = s.allStatuses(ctx, accountID, today)
		return err
	})

	return statuses, err
}

// DashboardSummary returns the account-wide roll-up across all groups
func (s *groupService) DashboardSummary(ctx context.Context, accountID string, today Date) (*DashboardSummary, error) {
	var summary *DashboardSummary

	err := s.tracker.observe(ctx, "groups.dashboard", map[string]string{"account.id": accountID}, func() error {
		groups, err := s.allStatuses(ctx, accountID, today)
		if err != nil {
			return err
		}

		summary = ComputeDashboardSummary(groups, today)
		return nil
	})

	return summary, err
}

// allStatuses computes every member budget once, then hands each group its own members
func (s *groupService) allStatuses(ctx context.Context, accountID string, today Date) ([]*BudgetGroupStatus, error) {
	groups, err := s.tracker.budgets.ListGroups(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list budget groups")
	}

	var budgets []*Budget
	for _, g := range groups {
		budgets = append(budgets, g.Budgets...)
	}

	statuses, err := s.tracker.statusesFor(ctx, accountID, budgets, today)
	if err != nil {
		return nil, err
	}

	out := make([]*BudgetGroupStatus, 0, len(groups))
	i := 0
	for _, g := range groups {
		n := len(g.Budgets)
		members := statuses[i : i+n : i+n]
		i += n
		out = append(out, ComputeGroupStatus(g, members, today))
	}
	return out, nil
}
