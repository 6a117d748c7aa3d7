package service

import (
	"context"
	"time"

	"github.com/veliashev/shopcore/internal/core/domain"
	"github.com/veliashev/shopcore/internal/core/port"
	"go.uber.org/zap"
)

// Service orchestrates order creation, status transitions, cancellation
// and payment confirmation. It is the only component that mutates the
// stock ledger and discount usage together with the order aggregate,
// always inside one repository unit of work.
type Service struct {
	repo      port.Repository
	shipping  port.ShippingService
	events    port.EventSink
	analytics port.AnalyticsCache
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo port.Repository, shipping port.ShippingService,
	events port.EventSink, analytics port.AnalyticsCache, logger *zap.Logger) (*Service, error) {
	return &Service{
		repo:      repo,
		shipping:  shipping,
		events:    events,
		analytics: analytics,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (s *Service) GetOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber) (*domain.Order, error) {
	return s.repo.ReadOrder(ctx, workspaceID, number)
}

func (s *Service) OrderTimeline(ctx context.Context, workspaceID uint64, number domain.OrderNumber) ([]*domain.HistoryEntry, error) {
	list, err := s.repo.ListOrderHistory(ctx, workspaceID, number)
	if err != nil {
		s.logger.Error("List order history", zap.String("order", string(number)), zap.Error(err))
		return nil, err
	}
	return list, nil
}

// publishEvent hands an event to the sink without blocking the caller.
// A sink failure is logged and swallowed.
func (s *Service) publishEvent(event domain.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event",
				zap.String("type", string(event.Type)),
				zap.String("order", string(event.OrderNumber)),
				zap.Error(err))
		}
	}()
}

func (s *Service) invalidateAnalytics(workspaceID uint64) {
	at := s.now()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.analytics.InvalidateOrders(ctx, workspaceID, at); err != nil {
			s.logger.Warn("invalidate analytics cache",
				zap.Uint64("workspace", workspaceID),
				zap.Error(err))
		}
	}()
}
