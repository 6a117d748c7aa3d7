package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/govalues/decimal"
)

type RuleKind string

const (
	RuleKindAmountOffProduct RuleKind = "amount_off_product"
	RuleKindBuyXGetY         RuleKind = "buy_x_get_y"
	// Reserved kinds. Calculation must fail loudly, never compute zero.
	RuleKindAmountOffOrder RuleKind = "amount_off_order"
	RuleKindFreeShipping   RuleKind = "free_shipping"
)

type DiscountMethod string

const (
	DiscountMethodCode      DiscountMethod = "code"
	DiscountMethodAutomatic DiscountMethod = "automatic"
)

type DiscountValueType string

const (
	DiscountValuePercentage  DiscountValueType = "percentage"
	DiscountValueFixedAmount DiscountValueType = "fixed_amount"
	DiscountValueFree        DiscountValueType = "free"
)

type MinRequirementType string

const (
	MinRequirementNone     MinRequirementType = "none"
	MinRequirementAmount   MinRequirementType = "min_purchase_amount"
	MinRequirementQuantity MinRequirementType = "min_quantity"
)

type BuysType string

const (
	BuysTypeQuantity BuysType = "quantity"
	BuysTypeAmount   BuysType = "amount"
)

type DiscountStatus string

const (
	DiscountStatusActive   DiscountStatus = "active"
	DiscountStatusInactive DiscountStatus = "inactive"
	// Derived, never stored as transitions.
	DiscountStatusScheduled DiscountStatus = "scheduled"
	DiscountStatusExpired   DiscountStatus = "expired"
)

type DiscountRule struct {
	ID          uint64
	WorkspaceID uint64
	Code        string
	Kind        RuleKind
	Method      DiscountMethod

	// amount-off-product value.
	ValueType DiscountValueType
	Value     decimal.Decimal

	// buy-x-get-y value fields.
	BuysType        BuysType
	BuysValue       decimal.Decimal
	GetsQuantity    int
	GetsValueType   DiscountValueType
	GetsValue       decimal.Decimal
	MaxUsesPerOrder *int

	StartsAt time.Time
	EndsAt   *time.Time

	UsageLimit            *int
	UsageLimitPerCustomer *int
	UsageCount            int
	TotalDiscountAmount   decimal.Decimal

	MinRequirementType  MinRequirementType
	MinRequirementValue decimal.Decimal

	AppliesToAllProducts bool
	ProductIDs           []uint64
	BuysProductIDs       []uint64
	GetsProductIDs       []uint64

	AllCustomers bool
	CustomerIDs  []uint64

	CombinesWithProduct  bool
	CombinesWithOrder    bool
	CombinesWithShipping bool

	Active    bool
	CreatedAt time.Time
}

// NormalizeCode is the canonical, case-insensitive form of a code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EffectiveStatus derives scheduled/expired from the validity window and
// usage exhaustion on top of the stored active flag.
func (r *DiscountRule) EffectiveStatus(now time.Time) DiscountStatus {
	if !r.Active {
		return DiscountStatusInactive
	}
	if now.Before(r.StartsAt) {
		return DiscountStatusScheduled
	}
	if r.EndsAt != nil && now.After(*r.EndsAt) {
		return DiscountStatusExpired
	}
	if r.UsageExhausted() {
		return DiscountStatusExpired
	}
	return DiscountStatusActive
}

func (r *DiscountRule) UsageExhausted() bool {
	return r.UsageLimit != nil && r.UsageCount >= *r.UsageLimit
}

// ConsumeUsage is the single mutator of usage_count. The caller must
// hold the rule row lock so the usage_count <= usage_limit invariant
// survives concurrent payment confirmations.
func (r *DiscountRule) ConsumeUsage(amount decimal.Decimal) error {
	if r.UsageExhausted() {
		return ErrDiscountUsageExceeded
	}
	total, err := r.TotalDiscountAmount.Add(amount)
	if err != nil {
		return fmt.Errorf("math error: %w", err)
	}
	r.UsageCount++
	r.TotalDiscountAmount = total
	return nil
}

// AppliesToProduct checks the rule's primary product filter.
func (r *DiscountRule) AppliesToProduct(productID uint64) bool {
	if r.AppliesToAllProducts {
		return true
	}
	return containsID(r.ProductIDs, productID)
}

// InBuysFilter / InGetsFilter check the buy-x-get-y side filters; an
// empty filter falls back to the primary one.
func (r *DiscountRule) InBuysFilter(productID uint64) bool {
	if len(r.BuysProductIDs) == 0 {
		return r.AppliesToProduct(productID)
	}
	return containsID(r.BuysProductIDs, productID)
}

func (r *DiscountRule) InGetsFilter(productID uint64) bool {
	if len(r.GetsProductIDs) == 0 {
		return r.AppliesToProduct(productID)
	}
	return containsID(r.GetsProductIDs, productID)
}

// EligibleCustomer checks the segmentation filter.
func (r *DiscountRule) EligibleCustomer(customerID uint64) bool {
	if r.AllCustomers {
		return true
	}
	return containsID(r.CustomerIDs, customerID)
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// DiscountUsage is one audit row per successful discount application,
// written at payment confirmation.
type DiscountUsage struct {
	ID             uint64
	DiscountID     uint64
	OrderID        uint64
	CustomerID     *uint64
	OrderAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	AppliedAt      time.Time
}
