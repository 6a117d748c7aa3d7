package discount_test

import (
	"testing"
	"time"

	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/veliashev/shopcore/internal/core/discount"
	"github.com/veliashev/shopcore/internal/core/domain"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func activeRule() *domain.DiscountRule {
	return &domain.DiscountRule{
		ID:                   1,
		Code:                 "SUMMER10",
		Kind:                 domain.RuleKindAmountOffProduct,
		Method:               domain.DiscountMethodCode,
		ValueType:            domain.DiscountValuePercentage,
		Value:                decimal.MustParse("10"),
		StartsAt:             now.Add(-time.Hour),
		AppliesToAllProducts: true,
		AllCustomers:         true,
		Active:               true,
	}
}

func cartOf(lines ...discount.Line) *discount.Cart {
	return &discount.Cart{Currency: "USD", Lines: lines}
}

func line(productID uint64, qty int, price string) discount.Line {
	return discount.Line{
		ProductID: productID,
		VariantID: productID * 10,
		Quantity:  qty,
		UnitPrice: decimal.MustParse(price),
	}
}

func TestValidate(t *testing.T) {
	customer := uint64(7)
	expired := now.Add(-time.Minute)
	usageLimit := 5
	perCustomer := 1

	tests := []struct {
		name     string
		rule     func() *domain.DiscountRule
		code     string
		customer *uint64
		used     int
		cart     *discount.Cart
		valid    bool
		reason   discount.InvalidReason
	}{
		{
			name:  "valid code case-insensitive",
			rule:  activeRule,
			code:  "summer10",
			cart:  cartOf(line(1, 1, "50.00")),
			valid: true,
		},
		{
			name:   "wrong code",
			rule:   activeRule,
			code:   "WINTER20",
			cart:   cartOf(line(1, 1, "50.00")),
			reason: discount.ReasonCodeMismatch,
		},
		{
			name: "automatic rule rejects manual entry",
			rule: func() *domain.DiscountRule {
				r := activeRule()
				r.Method = domain.DiscountMethodAutomatic
				return r
			},
			code:   "SUMMER10",
			cart:   cartOf(line(1, 1, "50.00")),
			reason: discount.ReasonNotCodeBased,
		},
		{
			name: "inactive",
			rule: func() *domain.DiscountRule {
				r := activeRule()
				r.Active = false
				return r
			},
			code:   "SUMMER10",
			cart:   cartOf(line(1, 1, "50.00")),
			reason: discount.ReasonInactive,
		},
		{
			name: "scheduled in the future",
			rule: func() *domain.DiscountRule {
				r := activeRule()
				r.StartsAt = now.Add(time.Hour)
				return r
			},
			code:   "SUMMER10",
			cart:   cartOf(line(1, 1, "50.00")),
			reason: discount.ReasonScheduled,
		},
		{
			name: "expired",
			rule: func() *domain.DiscountRule {
				r := activeRule()
				r.EndsAt = &expired
				return r
			},
			code:   "SUMMER10",
			cart:   cartOf(line(1, 1, "50.00")),
			reason: discount.ReasonExpired,
		},
		{
			name: "usage exhausted",
			rule: func() *domain.DiscountRule {
				r := activeRule()
				r.UsageLimit = &usageLimit
				r.UsageCount = usageLimit
				return r
			},
			code:   "SUMMER10",
			cart:   cartOf(line(1, 1, "50.00")),
			reason: discount.ReasonUsageExhausted,
		},
		{
			name: "customer limit reached",
			rule: func() *domain.DiscountRule {
				r := activeRule()
				r.UsageLimitPerCustomer = &perCustomer
				return r
			},
			code:     "SUMMER10",
			customer: &customer,
			used:     1,
			cart:     cartOf(line(1, 1, "50.00")),
			reason:   discount.ReasonCustomerLimit,
		},
		{
			name: "customer not in segment",
			rule: func() *domain.DiscountRule {
				r := activeRule()
				r.AllCustomers = false
				r.CustomerIDs = []uint64{99}
				return r
			},
			code:     "SUMMER10",
			customer: &customer,
			cart:     cartOf(line(1, 1, "50.00")),
			reason:   discount.ReasonCustomerNotEligible,
		},
		{
			name: "min purchase not met",
			rule: func() *domain.DiscountRule {
				r := activeRule()
				r.MinRequirementType = domain.MinRequirementAmount
				r.MinRequirementValue = decimal.MustParse("100.00")
				return r
			},
			code:   "SUMMER10",
			cart:   cartOf(line(1, 1, "50.00")),
			reason: discount.ReasonMinPurchaseNotMet,
		},
		{
			name: "min quantity met exactly",
			rule: func() *domain.DiscountRule {
				r := activeRule()
				r.MinRequirementType = domain.MinRequirementQuantity
				r.MinRequirementValue = decimal.MustParse("3")
				return r
			},
			code:  "SUMMER10",
			cart:  cartOf(line(1, 2, "10.00"), line(2, 1, "10.00")),
			valid: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v, err := discount.Validate(test.rule(), test.code, test.customer, test.cart, test.used, now)
			assert.NoError(t, err)
			assert.Equal(t, test.valid, v.Valid)
			if !test.valid {
				assert.Equal(t, test.reason, v.Reason)
			}
		})
	}
}

func TestCalculate_AmountOffProduct_Percentage(t *testing.T) {
	rule := activeRule()
	rule.AppliesToAllProducts = false
	rule.ProductIDs = []uint64{1}

	cart := cartOf(line(1, 2, "25.00"), line(2, 1, "100.00"))

	calc, err := discount.Calculate(rule, cart)
	assert.NoError(t, err)
	// 10% of 50.00; the unmatched line contributes nothing.
	assert.Equal(t, 0, calc.Total.Cmp(decimal.MustParse("5.00")))
	assert.Len(t, calc.Lines, 1)
}

func TestCalculate_AmountOffProduct_FixedCappedAtLineTotal(t *testing.T) {
	rule := activeRule()
	rule.ValueType = domain.DiscountValueFixedAmount
	rule.Value = decimal.MustParse("30.00")

	cart := cartOf(line(1, 1, "20.00"))

	calc, err := discount.Calculate(rule, cart)
	assert.NoError(t, err)
	assert.Equal(t, 0, calc.Total.Cmp(decimal.MustParse("20.00")), "discount never exceeds the line total")
}

func TestCalculate_BuyXGetY(t *testing.T) {
	rule := activeRule()
	rule.Kind = domain.RuleKindBuyXGetY
	rule.BuysType = domain.BuysTypeQuantity
	rule.BuysValue = decimal.MustParse("2")
	rule.GetsQuantity = 1
	rule.GetsValueType = domain.DiscountValueFree

	t.Run("buy 2 get 1 free", func(t *testing.T) {
		cart := cartOf(line(1, 3, "10.00"))
		calc, err := discount.Calculate(rule, cart)
		assert.NoError(t, err)
		assert.Equal(t, 0, calc.Total.Cmp(decimal.MustParse("10.00")))
	})

	t.Run("not enough bought", func(t *testing.T) {
		cart := cartOf(line(1, 1, "10.00"))
		_, err := discount.Calculate(rule, cart)
		assert.ErrorIs(t, err, domain.ErrDiscountNotQualified)
	})

	t.Run("gets percentage", func(t *testing.T) {
		r := *rule
		r.GetsValueType = domain.DiscountValuePercentage
		r.GetsValue = decimal.MustParse("50")
		cart := cartOf(line(1, 2, "10.00"), line(2, 1, "8.00"))
		calc, err := discount.Calculate(&r, cart)
		assert.NoError(t, err)
		// One unit at 50% off the first line in cart order.
		assert.Equal(t, 0, calc.Total.Cmp(decimal.MustParse("5.00")))
	})

	t.Run("amount qualification", func(t *testing.T) {
		r := *rule
		r.BuysType = domain.BuysTypeAmount
		r.BuysValue = decimal.MustParse("15.00")
		cart := cartOf(line(1, 2, "10.00"))
		calc, err := discount.Calculate(&r, cart)
		assert.NoError(t, err)
		assert.Equal(t, 0, calc.Total.Cmp(decimal.MustParse("10.00")))
	})

	t.Run("max uses per order multiplies the budget", func(t *testing.T) {
		cart := cartOf(line(1, 10, "10.00"))

		calc, err := discount.Calculate(rule, cart)
		assert.NoError(t, err)
		assert.Equal(t, 0, calc.Total.Cmp(decimal.MustParse("10.00")), "unset limit means one application")

		r := *rule
		maxUses := 3
		r.MaxUsesPerOrder = &maxUses
		calc, err = discount.Calculate(&r, cart)
		assert.NoError(t, err)
		assert.Equal(t, 0, calc.Total.Cmp(decimal.MustParse("30.00")), "three applications discount three units")
	})
}

func TestCalculate_ReservedKinds(t *testing.T) {
	cart := cartOf(line(1, 1, "10.00"))

	for _, kind := range []domain.RuleKind{domain.RuleKindAmountOffOrder, domain.RuleKindFreeShipping} {
		rule := activeRule()
		rule.Kind = kind
		_, err := discount.Calculate(rule, cart)
		assert.ErrorIs(t, err, domain.ErrRuleKindNotImplemented, "kind %s", kind)
	}
}

func TestCalculate_InvalidValues(t *testing.T) {
	cart := cartOf(line(1, 1, "10.00"))

	rule := activeRule()
	rule.Value = decimal.MustParse("150")
	_, err := discount.Calculate(rule, cart)
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	rule = activeRule()
	rule.ValueType = domain.DiscountValueFixedAmount
	rule.Value = decimal.MustParse("0")
	_, err = discount.Calculate(rule, cart)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}
