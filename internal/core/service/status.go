package service

import (
	"context"
	"fmt"

	"github.com/veliashev/shopcore/internal/core/domain"
	"github.com/veliashev/shopcore/internal/core/port"
	"go.uber.org/zap"
)

// bulkUpdateLimit is a hard cap; oversized batches are rejected
// outright, never truncated silently.
const bulkUpdateLimit = 100

func (s *Service) UpdateOrderStatus(ctx context.Context, workspaceID uint64,
	number domain.OrderNumber, status domain.OrderStatus, actor string) (*domain.Order, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Msg: "unknown order status"}
	}

	var (
		order *domain.Order
		err   error
	)
	switch status {
	case domain.OrderStatusCancelled:
		// Entering cancelled always goes through the stock-restoring
		// transaction, whichever operation asked for it, and a paid
		// order is never cancellable here either.
		order, err = s.repo.CancelOrder(ctx, workspaceID, number,
			func(o *domain.Order) error {
				if o.PaymentStatus == domain.PaymentStatusPaid {
					return domain.ErrOrderNotCancellable
				}
				return s.applyTransition(o, nil, status, actor)
			})
	case domain.OrderStatusDelivered:
		// Entering delivered may auto-mark payment as paid, which in
		// turn may consume discount usage: the rule row has to join
		// the same unit of work.
		order, err = s.repo.UpdateOrderWithDiscount(ctx, workspaceID, number,
			func(o *domain.Order, rule *domain.DiscountRule) error {
				return s.applyTransition(o, rule, status, actor)
			})
	default:
		order, err = s.repo.UpdateOrder(ctx, workspaceID, number,
			func(o *domain.Order) error {
				return s.applyTransition(o, nil, status, actor)
			})
	}
	if err != nil {
		return nil, err
	}

	s.publishEvent(domain.Event{
		Type:        domain.EventOrderStatusChanged,
		WorkspaceID: order.WorkspaceID,
		OrderNumber: order.Number,
		OccurredAt:  s.now(),
		Payload:     map[string]any{"status": string(order.Status)},
	})
	s.invalidateAnalytics(order.WorkspaceID)

	return order, nil
}

// applyTransition validates the move against the state machine and
// fires side effects exactly once. Corrective reversals out of terminal
// states never re-run forward side effects; they only leave a history
// entry marking the correction.
func (s *Service) applyTransition(o *domain.Order, rule *domain.DiscountRule,
	target domain.OrderStatus, actor string) error {
	if !o.Status.CanTransitionTo(target) {
		return &domain.TransitionError{From: o.Status, To: target}
	}

	prev := o.Status
	o.Status = target
	o.RecordEvent(domain.HistoryStatusChanged,
		fmt.Sprintf(`{"from":%q,"to":%q}`, prev, target), actor)

	switch prev {
	case domain.OrderStatusCancelled, domain.OrderStatusRefunded, domain.OrderStatusReturned:
		o.RecordEvent(domain.HistoryCorrectionReversal,
			fmt.Sprintf(`{"reversed_from":%q}`, prev), actor)
		return nil
	}

	if target.Fulfilled() && !prev.Fulfilled() {
		o.RecordEvent(domain.HistoryOrderFulfilled, fmt.Sprintf(`{"status":%q}`, target), actor)
		if target == domain.OrderStatusShipped && o.TrackingNumber == "" {
			o.TrackingNumber = domain.NewTrackingNumber()
		}
	}
	if prev.Fulfilled() && target.Unfulfilled() {
		o.RecordEvent(domain.HistoryOrderUnfulfilled, fmt.Sprintf(`{"status":%q}`, target), actor)
	}

	if target == domain.OrderStatusDelivered && o.PaymentStatus == domain.PaymentStatusPending {
		return s.applyPayment(o, rule, actor)
	}
	return nil
}

func (s *Service) BulkUpdateStatus(ctx context.Context, workspaceID uint64,
	updates []port.StatusUpdate, actor string) (*port.BulkResult, error) {
	if len(updates) == 0 {
		return nil, &domain.ValidationError{Field: "updates", Msg: "must not be empty"}
	}
	if len(updates) > bulkUpdateLimit {
		return nil, domain.ErrBatchTooLarge
	}

	result := &port.BulkResult{}
	for _, u := range updates {
		if _, err := s.UpdateOrderStatus(ctx, workspaceID, u.Number, u.Status, actor); err != nil {
			result.Failed = append(result.Failed, port.BulkFailure{
				Number: u.Number,
				Reason: err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}

	s.logger.Info("Bulk status update",
		zap.Uint64("workspace", workspaceID),
		zap.Int("success", result.SuccessCount),
		zap.Int("failed", len(result.Failed)))

	return result, nil
}

func (s *Service) ArchiveOrder(ctx context.Context, workspaceID uint64,
	number domain.OrderNumber, actor string) (*domain.Order, error) {
	return s.repo.UpdateOrder(ctx, workspaceID, number, func(o *domain.Order) error {
		if !o.Status.Terminal() {
			return domain.ErrOrderNotArchivable
		}
		if o.Archived {
			return domain.ErrConflictingData
		}
		now := s.now()
		o.Archived = true
		o.ArchivedAt = &now
		o.RecordEvent(domain.HistoryOrderArchived, "", actor)
		return nil
	})
}

func (s *Service) UnarchiveOrder(ctx context.Context, workspaceID uint64,
	number domain.OrderNumber, actor string) (*domain.Order, error) {
	return s.repo.UpdateOrder(ctx, workspaceID, number, func(o *domain.Order) error {
		if !o.Archived {
			return domain.ErrOrderNotArchived
		}
		o.Archived = false
		o.ArchivedAt = nil
		o.RecordEvent(domain.HistoryOrderUnarchived, "", actor)
		return nil
	})
}
