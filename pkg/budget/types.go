package budget

import "time"

// PeriodKind is the spend window a budget is measured against
type PeriodKind string

const (
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
)

// PeriodType distinguishes ordinary budgets from sinking funds
type PeriodType string

const (
	PeriodTypeWeekly    PeriodType = "weekly"
	PeriodTypeMonthly   PeriodType = "monthly"
	PeriodTypeQuarterly PeriodType = "quarterly"
	PeriodTypeAnnual    PeriodType = "annual"
	PeriodTypeBiAnnual  PeriodType = "bi-annual"
)

// Status is the threshold classification of a spend percentage
type Status string

const (
	StatusUnder   Status = "under"
	StatusWarning Status = "warning"
	StatusOver    Status = "over"
)

// Budget represents a spending budget or a sinking fund for a category.
// All amounts are in pence.
type Budget struct {
	ID           string     `json:"id"`
	AccountID    string     `json:"accountId"`
	GroupID      *string    `json:"groupId,omitempty"`
	Name         *string    `json:"name,omitempty"`
	Category     string     `json:"category"`
	Amount       int64      `json:"amount"`
	Period       PeriodKind `json:"period"`
	ResetDay     int        `json:"resetDay"`
	PeriodType   PeriodType `json:"periodType"`
	AnnualAmount *int64     `json:"annualAmount,omitempty"`
	TargetMonth  *int       `json:"targetMonth,omitempty"`
	LinkedPotID  *string    `json:"linkedPotId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// BudgetGroup organises budgets for roll-up presentation
type BudgetGroup struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"accountId"`
	Name         string    `json:"name"`
	Icon         *string   `json:"icon,omitempty"`
	DisplayOrder int       `json:"displayOrder"`
	Budgets      []*Budget `json:"budgets"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Transaction is a bank transaction as handed to the engines.
// Negative amounts are spend; positive amounts are income, refunds or pot returns.
type Transaction struct {
	ID           string            `json:"id"`
	AccountID    string            `json:"accountId"`
	Amount       int64             `json:"amount"`
	MerchantName *string           `json:"merchantName,omitempty"`
	Category     *string           `json:"category,omitempty"`
	OccurredAt   time.Time         `json:"occurredAt"`
	SettledAt    *time.Time        `json:"settledAt,omitempty"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// MetadataPotID is the metadata key carrying the destination pot of a pot transfer
const MetadataPotID = "pot_id"

// PotID returns the destination pot of a pot transfer, or "" for other transactions
func (t *Transaction) PotID() string {
	if t == nil || t.Metadata == nil {
		return ""
	}
	return t.Metadata[MetadataPotID]
}

// Date returns the calendar date the transaction occurred on
func (t *Transaction) Date() Date {
	return DateOf(t.OccurredAt)
}

// Pot is a ring-fenced savings balance held with the bank
type Pot struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"`
	Deleted   bool      `json:"deleted"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PotContribution is a single transfer into a pot, as a positive amount
type PotContribution struct {
	TransactionID string `json:"transactionId"`
	Amount        int64  `json:"amount"`
	Date          Date   `json:"date"`
	Description   string `json:"description,omitempty"`
}

// Period is an inclusive calendar window
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains reports whether d falls within the window, inclusive on both ends
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start.Time) && !d.After(p.End.Time)
}

// Days returns the number of days in the window, counting both ends
func (p Period) Days() int {
	return p.End.DaysSince(p.Start) + 1
}

// BudgetStatus is the spend position of one budget for its current period
type BudgetStatus struct {
	BudgetID  string  `json:"budgetId"`
	GroupID   *string `json:"groupId,omitempty"`
	Name      *string `json:"name,omitempty"`
	Category  string  `json:"category"`
	Amount    int64   `json:"amount"`
	Spent     int64   `json:"spent"`
	Remaining int64   `json:"remaining"`
	// Percentage is for display, rounded to 2dp. Status is classified on the exact
	// spent/amount ratio, so 79.995% shows as 80 while the status is still under.
	Percentage  float64 `json:"percentage"`
	Status      Status  `json:"status"`
	PeriodStart Date    `json:"periodStart"`
	PeriodEnd   Date    `json:"periodEnd"`
}

// SinkingFundStatus is the contribution position of a sinking fund
type SinkingFundStatus struct {
	BudgetID                string             `json:"budgetId"`
	Name                    *string            `json:"name,omitempty"`
	Category                string             `json:"category"`
	TargetAmount            int64              `json:"targetAmount"`
	MonthlyContribution     int64              `json:"monthlyContribution"`
	ContributionsToDate     int64              `json:"contributionsToDate"`
	ContributionsThisPeriod int64              `json:"contributionsThisPeriod"`
	ExpectedToDate          int64              `json:"expectedToDate"`
	Variance                int64              `json:"variance"`
	OnTrack                 bool               `json:"onTrack"`
	TargetMonth             int                `json:"targetMonth"`
	MonthsElapsed           int                `json:"monthsElapsed"`
	MonthsRemaining         int                `json:"monthsRemaining"`
	PotID                   *string            `json:"potId,omitempty"`
	PotName                 *string            `json:"potName,omitempty"`
	PotBalance              *int64             `json:"potBalance,omitempty"`
	ProjectedBalance        int64              `json:"projectedBalance"`
	WindowStart             Date               `json:"windowStart"`
	ContributionHistory     []*PotContribution `json:"contributionHistory"`
}

// BudgetGroupStatus is the roll-up of all budgets in a group
type BudgetGroupStatus struct {
	GroupID        string          `json:"groupId"`
	Name           string          `json:"name"`
	Icon           *string         `json:"icon,omitempty"`
	DisplayOrder   int             `json:"displayOrder"`
	TotalAmount    int64           `json:"totalAmount"`
	TotalSpent     int64           `json:"totalSpent"`
	TotalRemaining int64           `json:"totalRemaining"`
	Percentage     float64         `json:"percentage"`
	Status         Status          `json:"status"`
	BudgetCount    int             `json:"budgetCount"`
	Budgets        []*BudgetStatus `json:"budgets"`
	PeriodStart    Date            `json:"periodStart"`
	PeriodEnd      Date            `json:"periodEnd"`
}

// DashboardSummary is the account-wide roll-up across all groups
type DashboardSummary struct {
	Groups            []*BudgetGroupStatus `json:"groups"`
	TotalBudget       int64                `json:"totalBudget"`
	TotalSpent        int64                `json:"totalSpent"`
	TotalRemaining    int64                `json:"totalRemaining"`
	OverallPercentage float64              `json:"overallPercentage"`
	OverallStatus     Status               `json:"overallStatus"`
	PeriodStart       Date                 `json:"periodStart"`
	PeriodEnd         Date                 `json:"periodEnd"`
	DaysInPeriod      int                  `json:"daysInPeriod"`
	DaysElapsed       int                  `json:"daysElapsed"`
}

// RecurringPattern is a detected subscription-like spending pattern
type RecurringPattern struct {
	MerchantName     string  `json:"merchantName"`
	Category         string  `json:"category"`
	AverageAmount    int64   `json:"averageAmount"`
	FrequencyDays    int     `json:"frequencyDays"`
	FrequencyLabel   string  `json:"frequencyLabel"`
	TransactionCount int     `json:"transactionCount"`
	MonthlyCost      int64   `json:"monthlyCost"`
	LastTransaction  Date    `json:"lastTransactionDate"`
	NextExpected     *Date   `json:"nextExpectedDate,omitempty"`
	Confidence       float64 `json:"confidence"`
}

// PotSummary totals active pots, split by whether a budget links to them
type PotSummary struct {
	TotalPots       int    `json:"totalPots"`
	LinkedPots      int    `json:"linkedPots"`
	UnlinkedPots    int    `json:"unlinkedPots"`
	TotalBalance    int64  `json:"totalBalance"`
	LinkedBalance   int64  `json:"linkedBalance"`
	UnlinkedBalance int64  `json:"unlinkedBalance"`
	Unlinked        []*Pot `json:"unlinked"`
}
