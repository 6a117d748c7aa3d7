package domain

import (
	"encoding/base32"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

type OrderNumber string

var numberEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewOrderNumber generates an opaque order number. Uniqueness is
// enforced by the storage layer; callers retry on collision.
func NewOrderNumber() OrderNumber {
	id := uuid.New()
	return OrderNumber("ORD-" + numberEncoding.EncodeToString(id[:])[:10])
}

func NewTrackingNumber() string {
	id := uuid.New()
	return "TRK-" + numberEncoding.EncodeToString(id[:])[:12]
}

// CustomerSnapshot is copied onto the order at creation time so the
// order stays readable if the customer record changes or is removed.
type CustomerSnapshot struct {
	Name  string
	Email string
	Phone string
}

type Order struct {
	ID             uint64
	WorkspaceID    uint64
	Number         OrderNumber
	Status         OrderStatus
	PaymentStatus  PaymentStatus
	PaymentMethod  string
	Source         string
	LocationID     uint64
	CustomerID     *uint64
	Customer       CustomerSnapshot
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Currency       string
	DiscountID     *uint64
	DiscountCode   string
	TrackingNumber string
	CancelReason   string
	Archived       bool
	ArchivedAt     *time.Time
	PaidAt         *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []*OrderLineItem

	pendingHistory []HistoryEntry
}

// RecomputeTotal re-derives total = subtotal + shipping + tax - discount.
// Every mutation path must call it so the invariant holds exactly.
func (o *Order) RecomputeTotal() error {
	sum, err := o.Subtotal.Add(o.ShippingCost)
	if err != nil {
		return fmt.Errorf("math error: %w", err)
	}
	sum, err = sum.Add(o.TaxAmount)
	if err != nil {
		return fmt.Errorf("math error: %w", err)
	}
	sum, err = sum.Sub(o.DiscountAmount)
	if err != nil {
		return fmt.Errorf("math error: %w", err)
	}
	if sum.IsNeg() {
		return ErrNegativeAmount
	}
	o.TotalAmount = sum
	return nil
}

// RecomputeSubtotal sums line totals into Subtotal.
func (o *Order) RecomputeSubtotal() error {
	sum := decimal.Zero
	for _, item := range o.Items {
		lt, err := item.LineTotal()
		if err != nil {
			return err
		}
		sum, err = sum.Add(lt)
		if err != nil {
			return fmt.Errorf("math error: %w", err)
		}
	}
	o.Subtotal = sum
	return nil
}

// CanBeCancelled: only unpaid orders that have not progressed past
// confirmation may be cancelled.
func (o *Order) CanBeCancelled() bool {
	if o.PaymentStatus == PaymentStatusPaid {
		return false
	}
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// RecordEvent queues an append-only history entry to be persisted in the
// same unit of work as the mutation that produced it.
func (o *Order) RecordEvent(action HistoryAction, details string, actor string) {
	o.pendingHistory = append(o.pendingHistory, HistoryEntry{
		OrderID: o.ID,
		Action:  action,
		Details: details,
		Actor:   actor,
	})
}

// PendingHistory drains the queued history entries.
func (o *Order) PendingHistory() []HistoryEntry {
	h := o.pendingHistory
	o.pendingHistory = nil
	return h
}

// ProductSnapshot is captured once at order creation for historical
// display, immune to later catalog changes.
type ProductSnapshot struct {
	Name     string
	SKU      string
	Category string
	Images   []string
}

type OrderLineItem struct {
	ID        uint64
	OrderID   uint64
	ProductID *uint64
	VariantID *uint64
	Quantity  int
	UnitPrice decimal.Decimal
	Snapshot  ProductSnapshot
}

func (i *OrderLineItem) LineTotal() (decimal.Decimal, error) {
	qty, err := decimal.New(int64(i.Quantity), 0)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("math error: %w", err)
	}
	total, err := i.UnitPrice.Mul(qty)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("math error: %w", err)
	}
	return total, nil
}
