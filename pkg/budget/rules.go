package budget

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Condition is one test a transaction must pass for a rule to apply.
// The set of conditions is closed: MerchantPattern, AmountRange, CategoryEquals and DayOfWeek.
type Condition interface {
	Matches(tx *Transaction) bool
	conditionType() string
}

// Condition type tags used in the JSON encoding
const (
	ConditionMerchantPattern = "merchant_pattern"
	ConditionAmountRange     = "amount_range"
	ConditionCategoryEquals  = "category_equals"
	ConditionDayOfWeek       = "day_of_week"
)

// MerchantPattern matches merchants whose name contains Pattern, ignoring case
type MerchantPattern struct {
	Pattern string `json:"pattern"`
}

func (c MerchantPattern) Matches(tx *Transaction) bool {
	if tx.MerchantName == nil || *tx.MerchantName == "" {
		return false
	}
	return strings.Contains(strings.ToLower(*tx.MerchantName), strings.ToLower(c.Pattern))
}

func (MerchantPattern) conditionType() string { return ConditionMerchantPattern }

// AmountRange bounds the signed amount in pence. Spend is negative, so a larger
// spend is a lower number: AtMost -10000 means "£100 or more spent".
type AmountRange struct {
	AtMost  *int64 `json:"atMost,omitempty"`
	AtLeast *int64 `json:"atLeast,omitempty"`
}

func (c AmountRange) Matches(tx *Transaction) bool {
	if c.AtMost != nil && tx.Amount > *c.AtMost {
		return false
	}
	if c.AtLeast != nil && tx.Amount < *c.AtLeast {
		return false
	}
	return true
}

func (AmountRange) conditionType() string { return ConditionAmountRange }

// CategoryEquals matches the category the bank assigned, exactly
type CategoryEquals struct {
	Category string `json:"category"`
}

func (c CategoryEquals) Matches(tx *Transaction) bool {
	return tx.Category != nil && *tx.Category == c.Category
}

func (CategoryEquals) conditionType() string { return ConditionCategoryEquals }

// DayOfWeek matches transactions that occurred on one of Days
type DayOfWeek struct {
	Days []time.Weekday `json:"days"`
}

func (c DayOfWeek) Matches(tx *Transaction) bool {
	wd := tx.OccurredAt.Weekday()
	for _, d := range c.Days {
		if d == wd {
			return true
		}
	}
	return false
}

func (DayOfWeek) conditionType() string { return ConditionDayOfWeek }

// Conditions is an ordered list of conditions with a tagged JSON encoding:
//
//	[{"type":"merchant_pattern","pattern":"tesco"},{"type":"amount_range","atMost":-1000}]
type Conditions []Condition

// Rule assigns TargetCategory to transactions passing every condition
type Rule struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Conditions     Conditions `json:"conditions"`
	TargetCategory string     `json:"targetCategory"`
	Priority       int        `json:"priority"`
	Enabled        bool       `json:"enabled"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// DefaultRulePriority is the priority given to rules created without one
const DefaultRulePriority = 50

// Matches reports whether the rule applies to tx. Disabled rules never match;
// a rule with no conditions matches everything.
func (r *Rule) Matches(tx *Transaction) bool {
	if r == nil || !r.Enabled || tx == nil {
		return false
	}
	for _, c := range r.Conditions {
		if c == nil || !c.Matches(tx) {
			return false
		}
	}
	return true
}

// Categorise returns the target category of the highest-priority matching rule.
// Rules of equal priority are tried in the order given.
func Categorise(tx *Transaction, rules []*Rule) (string, bool) {
	sorted := make([]*Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	for _, r := range sorted {
		if r.Matches(tx) {
			return r.TargetCategory, true
		}
	}
	return "", false
}

type taggedCondition struct {
	Type string `json:"type"`
}

// MarshalJSON implements json.Marshaler for Conditions
func (cs Conditions) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(cs))
	for _, c := range cs {
		raw, err := marshalCondition(c)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func marshalCondition(c Condition) ([]byte, error) {
	var fields interface{}
	switch v := c.(type) {
	case MerchantPattern:
		fields = struct {
			taggedCondition
			MerchantPattern
		}{taggedCondition{v.conditionType()}, v}
	case AmountRange:
		fields = struct {
			taggedCondition
			AmountRange
		}{taggedCondition{v.conditionType()}, v}
	case CategoryEquals:
		fields = struct {
			taggedCondition
			CategoryEquals
		}{taggedCondition{v.conditionType()}, v}
	case DayOfWeek:
		fields = struct {
			taggedCondition
			DayOfWeek
		}{taggedCondition{v.conditionType()}, v}
	default:
		return nil, fmt.Errorf("unknown condition %T", c)
	}
	return json.Marshal(fields)
}

// UnmarshalJSON implements json.Unmarshaler for Conditions
func (cs *Conditions) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return errors.Wrap(err, "failed to decode conditions")
	}

	out := make(Conditions, 0, len(raws))
	for _, raw := range raws {
		c, err := unmarshalCondition(raw)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*cs = out
	return nil
}

func unmarshalCondition(raw json.RawMessage) (Condition, error) {
	var tag taggedCondition
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, errors.Wrap(err, "failed to decode condition type")
	}

	switch tag.Type {
	case ConditionMerchantPattern:
		var c MerchantPattern
		err := json.Unmarshal(raw, &c)
		return c, errors.Wrap(err, "failed to decode merchant pattern")
	case ConditionAmountRange:
		var c AmountRange
		err := json.Unmarshal(raw, &c)
		return c, errors.Wrap(err, "failed to decode amount range")
	case ConditionCategoryEquals:
		var c CategoryEquals
		err := json.Unmarshal(raw, &c)
		return c, errors.Wrap(err, "failed to decode category condition")
	case ConditionDayOfWeek:
		var c DayOfWeek
		err := json.Unmarshal(raw, &c)
		return c, errors.Wrap(err, "failed to decode day of week")
	default:
		return nil, fmt.Errorf("unknown condition type %q", tag.Type)
	}
}
