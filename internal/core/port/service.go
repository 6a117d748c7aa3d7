package port

import (
	"context"

	"github.com/govalues/decimal"
	"github.com/veliashev/shopcore/internal/core/discount"
	"github.com/veliashev/shopcore/internal/core/domain"
)

type CreateOrderItem struct {
	VariantID uint64
	Quantity  int
}

type ShippingInfo struct {
	Region  string
	Address string
}

// CreateOrderInput is the single creation entry point, parameterized by
// source and payment method.
type CreateOrderInput struct {
	WorkspaceID   uint64
	CustomerID    uint64
	LocationID    uint64
	Source        string
	PaymentMethod string
	Currency      string
	Shipping      ShippingInfo
	// ShippingCost, when set, overrides the per-line package fee lookup.
	ShippingCost *decimal.Decimal
	TaxAmount    decimal.Decimal
	DiscountCode string
	Actor        string
	Items        []CreateOrderItem
}

type StatusUpdate struct {
	Number domain.OrderNumber
	Status domain.OrderStatus
}

type BulkFailure struct {
	Number domain.OrderNumber
	Reason string
}

// BulkResult reports per-item outcomes: partial success is allowed.
type BulkResult struct {
	SuccessCount int
	Failed       []BulkFailure
}

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock
type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, workspaceID uint64, number domain.OrderNumber, status domain.OrderStatus, actor string) (*domain.Order, error)
	CancelOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber, reason string, actor string) (*domain.Order, error)
	MarkOrderPaid(ctx context.Context, workspaceID uint64, number domain.OrderNumber, actor string) (*domain.Order, error)
	BulkUpdateStatus(ctx context.Context, workspaceID uint64, updates []StatusUpdate, actor string) (*BulkResult, error)
	ArchiveOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber, actor string) (*domain.Order, error)
	UnarchiveOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber, actor string) (*domain.Order, error)
	OrderTimeline(ctx context.Context, workspaceID uint64, number domain.OrderNumber) ([]*domain.HistoryEntry, error)
	ValidateDiscountCode(ctx context.Context, workspaceID uint64, code string, customerID *uint64, cart *discount.Cart) (*discount.Validation, error)
}
