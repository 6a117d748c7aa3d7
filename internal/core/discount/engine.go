// Package discount evaluates promotional rules against a cart snapshot.
// Everything here is pure: no storage, no clocks beyond the instant the
// caller passes in.
package discount

import (
	"fmt"
	"time"

	"github.com/govalues/decimal"
	"github.com/veliashev/shopcore/internal/core/domain"
)

type Line struct {
	ProductID uint64
	VariantID uint64
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l Line) Total() (decimal.Decimal, error) {
	qty, err := decimal.New(int64(l.Quantity), 0)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("math error: %w", err)
	}
	total, err := l.UnitPrice.Mul(qty)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("math error: %w", err)
	}
	return total, nil
}

type Cart struct {
	Currency string
	Lines    []Line
}

func (c *Cart) Subtotal() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range c.Lines {
		lt, err := l.Total()
		if err != nil {
			return decimal.Decimal{}, err
		}
		sum, err = sum.Add(lt)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("math error: %w", err)
		}
	}
	return sum, nil
}

func (c *Cart) TotalQuantity() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

type InvalidReason string

const (
	ReasonCodeMismatch        InvalidReason = "code_mismatch"
	ReasonNotCodeBased        InvalidReason = "automatic_rule"
	ReasonInactive            InvalidReason = "inactive"
	ReasonScheduled           InvalidReason = "scheduled"
	ReasonExpired             InvalidReason = "expired"
	ReasonUsageExhausted      InvalidReason = "usage_exhausted"
	ReasonCustomerLimit       InvalidReason = "customer_limit_reached"
	ReasonCustomerNotEligible InvalidReason = "customer_not_eligible"
	ReasonMinPurchaseNotMet   InvalidReason = "min_purchase_not_met"
	ReasonMinQuantityNotMet   InvalidReason = "min_quantity_not_met"
)

// Validation is the tagged result of Validate: either Valid with the
// rule attached, or a single machine-readable reason.
type Validation struct {
	Valid  bool
	Reason InvalidReason
	Rule   *domain.DiscountRule
}

func invalid(reason InvalidReason) Validation {
	return Validation{Reason: reason}
}

// Validate checks whether a manually supplied code may be applied to the
// cart. usedByCustomer is the caller-counted number of prior usage
// records for (rule, customer); the engine itself stays stateless.
func Validate(rule *domain.DiscountRule, code string, customerID *uint64,
	cart *Cart, usedByCustomer int, now time.Time) (Validation, error) {
	if domain.NormalizeCode(code) != domain.NormalizeCode(rule.Code) {
		return invalid(ReasonCodeMismatch), nil
	}
	if rule.Method != domain.DiscountMethodCode {
		return invalid(ReasonNotCodeBased), nil
	}
	switch rule.EffectiveStatus(now) {
	case domain.DiscountStatusInactive:
		return invalid(ReasonInactive), nil
	case domain.DiscountStatusScheduled:
		return invalid(ReasonScheduled), nil
	case domain.DiscountStatusExpired:
		// EffectiveStatus folds exhaustion into expired; the reported
		// reason keeps them apart.
		if rule.UsageExhausted() {
			return invalid(ReasonUsageExhausted), nil
		}
		return invalid(ReasonExpired), nil
	}

	if customerID != nil {
		if !rule.EligibleCustomer(*customerID) {
			return invalid(ReasonCustomerNotEligible), nil
		}
		if rule.UsageLimitPerCustomer != nil && usedByCustomer >= *rule.UsageLimitPerCustomer {
			return invalid(ReasonCustomerLimit), nil
		}
	} else if !rule.AllCustomers {
		return invalid(ReasonCustomerNotEligible), nil
	}

	switch rule.MinRequirementType {
	case domain.MinRequirementAmount:
		subtotal, err := cart.Subtotal()
		if err != nil {
			return Validation{}, err
		}
		if subtotal.Cmp(rule.MinRequirementValue) < 0 {
			return invalid(ReasonMinPurchaseNotMet), nil
		}
	case domain.MinRequirementQuantity:
		qty, err := decimal.New(int64(cart.TotalQuantity()), 0)
		if err != nil {
			return Validation{}, fmt.Errorf("math error: %w", err)
		}
		if qty.Cmp(rule.MinRequirementValue) < 0 {
			return invalid(ReasonMinQuantityNotMet), nil
		}
	}

	return Validation{Valid: true, Rule: rule}, nil
}

// LineDiscount is the per-line breakdown for receipt display.
type LineDiscount struct {
	ProductID uint64
	VariantID uint64
	Units     int
	Amount    decimal.Decimal
}

type Calculation struct {
	Total decimal.Decimal
	Lines []LineDiscount
}

// Calculate dispatches on the rule kind. Reserved kinds fail with
// ErrRuleKindNotImplemented rather than silently computing zero.
func Calculate(rule *domain.DiscountRule, cart *Cart) (*Calculation, error) {
	switch rule.Kind {
	case domain.RuleKindAmountOffProduct:
		return calculateAmountOffProduct(rule, cart)
	case domain.RuleKindBuyXGetY:
		return calculateBuyXGetY(rule, cart)
	case domain.RuleKindAmountOffOrder, domain.RuleKindFreeShipping:
		return nil, domain.ErrRuleKindNotImplemented
	default:
		return nil, &domain.ValidationError{Field: "kind", Msg: "unknown discount rule kind"}
	}
}

func calculateAmountOffProduct(rule *domain.DiscountRule, cart *Cart) (*Calculation, error) {
	if err := checkValue(rule.ValueType, rule.Value); err != nil {
		return nil, err
	}

	calc := &Calculation{Total: decimal.Zero}
	for _, line := range cart.Lines {
		if !rule.AppliesToProduct(line.ProductID) {
			continue
		}
		lineTotal, err := line.Total()
		if err != nil {
			return nil, err
		}

		var amount decimal.Decimal
		switch rule.ValueType {
		case domain.DiscountValuePercentage:
			amount, err = percentageOf(lineTotal, rule.Value)
			if err != nil {
				return nil, err
			}
		case domain.DiscountValueFixedAmount:
			qty, qerr := decimal.New(int64(line.Quantity), 0)
			if qerr != nil {
				return nil, fmt.Errorf("math error: %w", qerr)
			}
			amount, err = rule.Value.Mul(qty)
			if err != nil {
				return nil, fmt.Errorf("math error: %w", err)
			}
			amount = minDecimal(amount, lineTotal)
		default:
			return nil, &domain.ValidationError{Field: "value_type", Msg: "unsupported for amount-off-product"}
		}

		calc.Total, err = calc.Total.Add(amount)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
		calc.Lines = append(calc.Lines, LineDiscount{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Units:     line.Quantity,
			Amount:    amount,
		})
	}
	return calc, nil
}

func calculateBuyXGetY(rule *domain.DiscountRule, cart *Cart) (*Calculation, error) {
	if rule.GetsQuantity <= 0 {
		return nil, &domain.ValidationError{Field: "gets_quantity", Msg: "must be positive"}
	}
	if rule.GetsValueType != domain.DiscountValueFree {
		if err := checkValue(rule.GetsValueType, rule.GetsValue); err != nil {
			return nil, err
		}
	}

	// Phase one: qualification across the "buys" filter.
	switch rule.BuysType {
	case domain.BuysTypeQuantity:
		var bought int64
		for _, line := range cart.Lines {
			if rule.InBuysFilter(line.ProductID) {
				bought += int64(line.Quantity)
			}
		}
		boughtDec, err := decimal.New(bought, 0)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
		if boughtDec.Cmp(rule.BuysValue) < 0 {
			return nil, domain.ErrDiscountNotQualified
		}
	case domain.BuysTypeAmount:
		spent := decimal.Zero
		for _, line := range cart.Lines {
			if !rule.InBuysFilter(line.ProductID) {
				continue
			}
			lt, err := line.Total()
			if err != nil {
				return nil, err
			}
			spent, err = spent.Add(lt)
			if err != nil {
				return nil, fmt.Errorf("math error: %w", err)
			}
		}
		if spent.Cmp(rule.BuysValue) < 0 {
			return nil, domain.ErrDiscountNotQualified
		}
	default:
		return nil, &domain.ValidationError{Field: "buys_type", Msg: "unknown qualification type"}
	}

	// Phase two: discount "gets" units. One application covers
	// gets_quantity units; max_uses_per_order allows that many
	// applications within a single order, one when unset.
	applications := 1
	if rule.MaxUsesPerOrder != nil && *rule.MaxUsesPerOrder > 0 {
		applications = *rule.MaxUsesPerOrder
	}
	budget := rule.GetsQuantity * applications

	calc := &Calculation{Total: decimal.Zero}
	for _, line := range cart.Lines {
		if budget == 0 {
			break
		}
		if !rule.InGetsFilter(line.ProductID) {
			continue
		}
		units := line.Quantity
		if units > budget {
			units = budget
		}

		perUnit, err := unitDiscount(rule, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		n, err := decimal.New(int64(units), 0)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
		amount, err := perUnit.Mul(n)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
		lineTotal, err := line.Total()
		if err != nil {
			return nil, err
		}
		amount = minDecimal(amount, lineTotal)

		calc.Total, err = calc.Total.Add(amount)
		if err != nil {
			return nil, fmt.Errorf("math error: %w", err)
		}
		calc.Lines = append(calc.Lines, LineDiscount{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Units:     units,
			Amount:    amount,
		})
		budget -= units
	}

	return calc, nil
}

func unitDiscount(rule *domain.DiscountRule, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	switch rule.GetsValueType {
	case domain.DiscountValueFree:
		return unitPrice, nil
	case domain.DiscountValuePercentage:
		return percentageOf(unitPrice, rule.GetsValue)
	case domain.DiscountValueFixedAmount:
		return minDecimal(rule.GetsValue, unitPrice), nil
	default:
		return decimal.Decimal{}, &domain.ValidationError{Field: "gets_value_type", Msg: "unknown discount value type"}
	}
}

// checkValue enforces the numeric policy: percentages in (0,100], fixed
// amounts strictly positive.
func checkValue(t domain.DiscountValueType, v decimal.Decimal) error {
	switch t {
	case domain.DiscountValuePercentage:
		if !v.IsPos() || v.Cmp(decimal.Hundred) > 0 {
			return &domain.ValidationError{Field: "value", Msg: "percentage must be in (0,100]"}
		}
	case domain.DiscountValueFixedAmount:
		if !v.IsPos() {
			return &domain.ValidationError{Field: "value", Msg: "fixed amount must be positive"}
		}
	}
	return nil
}

func percentageOf(base, pct decimal.Decimal) (decimal.Decimal, error) {
	p, err := base.Mul(pct)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("math error: %w", err)
	}
	p, err = p.Quo(decimal.Hundred)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("math error: %w", err)
	}
	return p.Round(2), nil
}

func minDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
