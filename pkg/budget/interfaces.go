package budget

import (
	"context"
)

// BudgetService computes spend status for ordinary budgets
type BudgetService interface {
	// Status returns the status of one budget for the period containing today
	Status(ctx context.Context, budgetID string, today Date) (*BudgetStatus, error)

	// AllStatuses returns the status of every budget of an account from one transaction fetch
	AllStatuses(ctx context.Context, accountID string, today Date) ([]*BudgetStatus, error)
}

// GroupService rolls budget statuses up by group
type GroupService interface {
	// Status returns the roll-up of a single group
	Status(ctx context.Context, accountID, groupID string, today Date) (*BudgetGroupStatus, error)

	// AllStatuses returns every group's roll-up in display order
	AllStatuses(ctx context.Context, accountID string, today Date) ([]*BudgetGroupStatus, error)

	// DashboardSummary returns the account-wide roll-up across all groups
	DashboardSummary(ctx context.Context, accountID string, today Date) (*DashboardSummary, error)
}

// SinkingFundService tracks contributions toward future lump-sum expenses
type SinkingFundService interface {
	// Status returns the contribution position of one sinking fund
	Status(ctx context.Context, budgetID string, today Date) (*SinkingFundStatus, error)

	// AllStatuses returns the position of every sinking fund of an account
	AllStatuses(ctx context.Context, accountID string, today Date) ([]*SinkingFundStatus, error)

	// Pots summarises the account's pots, split by whether a budget links to them
	Pots(ctx context.Context, accountID string) (*PotSummary, error)
}

// RecurringService finds subscription-like spending
type RecurringService interface {
	// Detect analyses the account's spend history up to today
	Detect(ctx context.Context, accountID string, today Date, opts *DetectOptions) ([]*RecurringPattern, error)
}

// AlertService selects budgets that should be brought to the user's attention
type AlertService interface {
	// Check returns the warning and over statuses of the account's budgets
	Check(ctx context.Context, accountID string, today Date) ([]*BudgetStatus, error)
}

// BudgetStore reads budgets and groups
type BudgetStore interface {
	// ListBudgets returns every budget of the account
	ListBudgets(ctx context.Context, accountID string) ([]*Budget, error)

	// GetBudget returns one budget or ErrNotFound
	GetBudget(ctx context.Context, budgetID string) (*Budget, error)

	// ListGroups returns the account's groups in display order with their budgets populated
	ListGroups(ctx context.Context, accountID string) ([]*BudgetGroup, error)
}

// TransactionQuery selects transactions for the engines
type TransactionQuery struct {
	AccountID string

	// Categories restricts results to these resolved categories; empty means all
	Categories []string

	// Since and Until bound the occurrence date, inclusive; zero leaves a side open
	Since Date
	Until Date

	// SpendOnly keeps only negative amounts
	SpendOnly bool

	// MerchantOnly keeps only transactions with a merchant name
	MerchantOnly bool
}

// TransactionStore reads transactions
type TransactionStore interface {
	ListTransactions(ctx context.Context, q *TransactionQuery) ([]*Transaction, error)
}

// PotSource looks up live pot balances
type PotSource interface {
	// GetPot returns the pot or ErrNotFound
	GetPot(ctx context.Context, potID string) (*Pot, error)
}

// ContributionSource returns the transfers into a pot within [since, until]
type ContributionSource interface {
	ListPotContributions(ctx context.Context, accountID, potID string, since, until Date) ([]*PotContribution, error)
}

// PotLister lists an account's pots. A PotSource that also implements it feeds
// SinkingFundService.Pots.
type PotLister interface {
	ListPots(ctx context.Context, accountID string, activeOnly bool) ([]*Pot, error)
}
