package port

import (
	"context"
	"time"

	"github.com/govalues/decimal"
	"github.com/veliashev/shopcore/internal/core/domain"
)

// ShippingService is the external shipping-package collaborator.
//
//go:generate mockgen -source=collaborator.go -destination=mock/collaborator.go -package=mock
type ShippingService interface {
	// RegionFee resolves the fee of one package for a delivery region.
	RegionFee(ctx context.Context, packageID uint64, region string) (decimal.Decimal, error)
	// DefaultPackage is the workspace fallback for products without one.
	DefaultPackage(ctx context.Context, workspaceID uint64) (uint64, error)
}

// EventSink receives outbound events. Implementations must be safe to
// call fire-and-forget: the core logs failures and moves on.
type EventSink interface {
	Publish(ctx context.Context, event domain.Event) error
}

// AnalyticsCache invalidates cached aggregates after order mutations.
type AnalyticsCache interface {
	InvalidateOrders(ctx context.Context, workspaceID uint64, at time.Time) error
}
