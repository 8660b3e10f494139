package budget

import (
	"math"
	"sort"
)

// Detection defaults
const (
	DefaultMinOccurrences      = 3
	DefaultMaxIntervalVariance = 0.3

	// DefaultRecurringCategory is used when no matched transaction carries a category
	DefaultRecurringCategory = "general"

	minMeanIntervalDays = 5
	fullConfidenceCount = 6
	daysPerMonth        = 30
)

// Frequency labels
const (
	FrequencyWeekly      = "weekly"
	FrequencyFortnightly = "fortnightly"
	FrequencyMonthly     = "monthly"
	FrequencyQuarterly   = "quarterly"
	FrequencyYearly      = "yearly"
)

// DetectOptions tunes recurring detection
type DetectOptions struct {
	// MinOccurrences is the fewest transactions a merchant needs. Zero or less means
	// the default of 3; values below 2 behave as 2, since one charge has no interval.
	MinOccurrences int

	// MaxIntervalVariance is the highest coefficient of variation of the intervals
	// still considered regular. Zero or less means the default of 0.3, so exact
	// regularity is asked for with a small positive value such as 1e-9.
	MaxIntervalVariance float64

	// Today suppresses next-expected dates that are not after it.
	// A zero Today keeps every next-expected date.
	Today Date
}

func (o *DetectOptions) withDefaults() DetectOptions {
	out := DetectOptions{}
	if o != nil {
		out = *o
	}
	if out.MinOccurrences <= 0 {
		out.MinOccurrences = DefaultMinOccurrences
	}
	if out.MaxIntervalVariance <= 0 {
		out.MaxIntervalVariance = DefaultMaxIntervalVariance
	}
	return out
}

// ClassifyFrequency maps a mean interval in days onto a frequency label and its
// nominal period. Each bound is exclusive above, so 10.0 is fortnightly.
func ClassifyFrequency(meanDays float64) (string, int) {
	switch {
	case meanDays < 10:
		return FrequencyWeekly, 7
	case meanDays < 20:
		return FrequencyFortnightly, 14
	case meanDays < 45:
		return FrequencyMonthly, 30
	case meanDays < 100:
		return FrequencyQuarterly, 90
	default:
		return FrequencyYearly, 365
	}
}

// DetectRecurringTransactions finds merchants charged at regular intervals.
//
// Spend transactions with a merchant name are grouped by exact merchant. A group is
// kept when it has enough transactions, its mean interval is at least 5 days and the
// coefficient of variation of its intervals is within MaxIntervalVariance. Patterns
// are ordered by monthly cost, highest first, then by merchant name.
func DetectRecurringTransactions(txs []*Transaction, opts *DetectOptions) []*RecurringPattern {
	o := opts.withDefaults()

	var order []string
	byMerchant := make(map[string][]*Transaction)
	for _, tx := range txs {
		if tx == nil || tx.Amount >= 0 || tx.MerchantName == nil || *tx.MerchantName == "" {
			continue
		}
		m := *tx.MerchantName
		if _, ok := byMerchant[m]; !ok {
			order = append(order, m)
		}
		byMerchant[m] = append(byMerchant[m], tx)
	}

	patterns := []*RecurringPattern{}
	for _, m := range order {
		if p := detectPattern(m, byMerchant[m], o); p != nil {
			patterns = append(patterns, p)
		}
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		if patterns[i].MonthlyCost != patterns[j].MonthlyCost {
			return patterns[i].MonthlyCost > patterns[j].MonthlyCost
		}
		return patterns[i].MerchantName < patterns[j].MerchantName
	})
	return patterns
}

func detectPattern(merchant string, txs []*Transaction, o DetectOptions) *RecurringPattern {
	if len(txs) < o.MinOccurrences {
		return nil
	}

	sorted := make([]*Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	var intervals []float64
	for i := 1; i < len(sorted); i++ {
		days := sorted[i].Date().DaysSince(sorted[i-1].Date())
		if days > 0 {
			intervals = append(intervals, float64(days))
		}
	}
	if len(intervals) < o.MinOccurrences-1 || len(intervals) == 0 {
		return nil
	}

	meanInterval := mean(intervals)
	if meanInterval < minMeanIntervalDays {
		return nil
	}

	cv := 0.0
	if len(intervals) > 1 {
		cv = sampleStdDev(intervals, meanInterval) / meanInterval
	}
	if cv > o.MaxIntervalVariance {
		return nil
	}

	var total int64
	for _, tx := range sorted {
		total += -tx.Amount
	}
	n := len(sorted)
	meanAmount := float64(total) / float64(n)

	label, _ := ClassifyFrequency(meanInterval)
	frequencyDays := int(math.Round(meanInterval))

	confidence := (1 - cv) * math.Min(float64(n)/fullConfidenceCount, 1)
	confidence = math.Max(0, math.Min(confidence, 1))

	last := sorted[n-1].Date()
	var next *Date
	candidate := last.AddDays(frequencyDays)
	if o.Today.IsZero() || candidate.After(o.Today.Time) {
		next = &candidate
	}

	return &RecurringPattern{
		MerchantName:     merchant,
		Category:         majorityCategory(sorted),
		AverageAmount:    total / int64(n),
		FrequencyDays:    frequencyDays,
		FrequencyLabel:   label,
		TransactionCount: n,
		MonthlyCost:      int64(math.Round(meanAmount * daysPerMonth / meanInterval)),
		LastTransaction:  last,
		NextExpected:     next,
		Confidence:       confidence,
	}
}

// majorityCategory returns the most common category, the earliest seen winning ties
func majorityCategory(txs []*Transaction) string {
	counts := make(map[string]int)
	var order []string
	for _, tx := range txs {
		c := DefaultRecurringCategory
		if tx.Category != nil && *tx.Category != "" {
			c = *tx.Category
		}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	best := DefaultRecurringCategory
	bestCount := 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStdDev(xs []float64, m float64) float64 {
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
