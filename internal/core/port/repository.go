package port

import (
	"context"

	"github.com/veliashev/shopcore/internal/core/domain"
)

// UpdateOrderFn mutates a locked order aggregate inside the
// repository's transaction.
type UpdateOrderFn func(*domain.Order) error

// UpdateOrderDiscountFn mutates a locked order together with its
// applied discount rule (nil when the order carries none). The
// repository locks the order row first, then the rule row, so every
// path that touches both uses the same lock order.
type UpdateOrderDiscountFn func(*domain.Order, *domain.DiscountRule) error

// UpdateStockFn mutates a locked stock record.
type UpdateStockFn func(*domain.StockRecord) error

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// Order. CreateOrder runs the whole creation as one unit of work:
	// insert order and line items, lock and reserve stock for every
	// line (all-or-nothing), bump customer stats, append history.
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber) (*domain.Order, error)
	UpdateOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber, fn UpdateOrderFn) (*domain.Order, error)
	CancelOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber, fn UpdateOrderFn) (*domain.Order, error)
	UpdateOrderWithDiscount(ctx context.Context, workspaceID uint64, number domain.OrderNumber, fn UpdateOrderDiscountFn) (*domain.Order, error)
	ListOrderHistory(ctx context.Context, workspaceID uint64, number domain.OrderNumber) ([]*domain.HistoryEntry, error)

	// Stock ledger.
	ViewStock(ctx context.Context, variantID, locationID uint64) (*domain.StockRecord, error)
	AdjustStock(ctx context.Context, variantID, locationID uint64, fn UpdateStockFn) (*domain.StockRecord, error)

	// Discounts.
	GetDiscountByCode(ctx context.Context, workspaceID uint64, code string) (*domain.DiscountRule, error)
	CountDiscountUsage(ctx context.Context, discountID uint64, customerID uint64) (int, error)

	// Catalog reads and customers.
	GetCustomer(ctx context.Context, workspaceID, customerID uint64) (*domain.Customer, error)
	GetVariant(ctx context.Context, workspaceID, variantID uint64) (*domain.ProductVariant, error)
}
