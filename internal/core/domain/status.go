package domain

type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "pending"
	OrderStatusConfirmed   OrderStatus = "confirmed"
	OrderStatusOnHold      OrderStatus = "on_hold"
	OrderStatusProcessing  OrderStatus = "processing"
	OrderStatusUnfulfilled OrderStatus = "unfulfilled"
	OrderStatusShipped     OrderStatus = "shipped"
	OrderStatusDelivered   OrderStatus = "delivered"
	OrderStatusCancelled   OrderStatus = "cancelled"
	OrderStatusRefunded    OrderStatus = "refunded"
	OrderStatusReturned    OrderStatus = "returned"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// validTransitions is the full transition table. Edges out of terminal
// states exist for operator error-correction and never re-fire forward
// side effects.
var validTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusConfirmed:   true,
		OrderStatusProcessing:  true,
		OrderStatusOnHold:      true,
		OrderStatusCancelled:   true,
		OrderStatusShipped:     true,
		OrderStatusDelivered:   true,
		OrderStatusUnfulfilled: true,
	},
	OrderStatusConfirmed: {
		OrderStatusProcessing:  true,
		OrderStatusOnHold:      true,
		OrderStatusCancelled:   true,
		OrderStatusUnfulfilled: true,
	},
	OrderStatusProcessing: {
		OrderStatusShipped:     true,
		OrderStatusDelivered:   true,
		OrderStatusOnHold:      true,
		OrderStatusCancelled:   true,
		OrderStatusUnfulfilled: true,
	},
	OrderStatusShipped: {
		OrderStatusDelivered:   true,
		OrderStatusOnHold:      true,
		OrderStatusCancelled:   true,
		OrderStatusUnfulfilled: true,
		OrderStatusProcessing:  true,
	},
	OrderStatusDelivered: {
		OrderStatusRefunded:    true,
		OrderStatusReturned:    true,
		OrderStatusUnfulfilled: true,
		OrderStatusOnHold:      true,
		OrderStatusShipped:     true,
	},
	OrderStatusOnHold: {
		OrderStatusPending:     true,
		OrderStatusConfirmed:   true,
		OrderStatusProcessing:  true,
		OrderStatusShipped:     true,
		OrderStatusDelivered:   true,
		OrderStatusCancelled:   true,
		OrderStatusUnfulfilled: true,
	},
	OrderStatusUnfulfilled: {
		OrderStatusPending:    true,
		OrderStatusConfirmed:  true,
		OrderStatusProcessing: true,
		OrderStatusShipped:    true,
		OrderStatusDelivered:  true,
		OrderStatusOnHold:     true,
		OrderStatusCancelled:  true,
	},
	OrderStatusCancelled: {
		OrderStatusUnfulfilled: true,
		OrderStatusPending:     true,
	},
	OrderStatusRefunded: {
		OrderStatusUnfulfilled: true,
		OrderStatusDelivered:   true,
		OrderStatusReturned:    true,
	},
	OrderStatusReturned: {
		OrderStatusUnfulfilled: true,
		OrderStatusDelivered:   true,
		OrderStatusRefunded:    true,
	},
}

func (s OrderStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition is in the table.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return validTransitions[s][target]
}

// Fulfilled reports whether the status counts as fulfilled for
// side-effect purposes. Refunded and returned are neither fulfilled
// nor unfulfilled: entering them fires no fulfillment event.
func (s OrderStatus) Fulfilled() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered
}

func (s OrderStatus) Unfulfilled() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusOnHold, OrderStatusUnfulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses permit archiving.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}
