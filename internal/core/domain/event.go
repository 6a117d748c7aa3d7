package domain

import "time"

type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventOrderCancelled     EventType = "order.cancelled"
	EventOrderPaid          EventType = "order.paid"
	EventAdminDirectMessage EventType = "notification.admin_dm"
)

// Event is what the core hands to the outbound sink. Delivery is
// fire-and-forget: a sink failure never fails the originating
// transaction.
type Event struct {
	Type        EventType
	WorkspaceID uint64
	OrderNumber OrderNumber
	OccurredAt  time.Time
	Payload     any
}
