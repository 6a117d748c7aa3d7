package service

import (
	"context"
	"fmt"

	"github.com/veliashev/shopcore/internal/core/domain"
	"go.uber.org/zap"
)

// MarkOrderPaid flips payment to paid and, only here, consumes discount
// usage. The status flip, the usage increment and the audit record are
// one atomic unit of work: either all happen or none do.
func (s *Service) MarkOrderPaid(ctx context.Context, workspaceID uint64,
	number domain.OrderNumber, actor string) (*domain.Order, error) {
	order, err := s.repo.UpdateOrderWithDiscount(ctx, workspaceID, number,
		func(o *domain.Order, rule *domain.DiscountRule) error {
			if o.PaymentStatus != domain.PaymentStatusPending {
				return domain.ErrPaymentNotPending
			}
			return s.applyPayment(o, rule, actor)
		})
	if err != nil {
		return nil, err
	}

	s.publishEvent(domain.Event{
		Type:        domain.EventOrderPaid,
		WorkspaceID: order.WorkspaceID,
		OrderNumber: order.Number,
		OccurredAt:  s.now(),
		Payload: map[string]any{
			"total":    order.TotalAmount,
			"currency": order.Currency,
		},
	})
	if order.Source == orderSourceChat {
		s.publishEvent(domain.Event{
			Type:        domain.EventAdminDirectMessage,
			WorkspaceID: order.WorkspaceID,
			OrderNumber: order.Number,
			OccurredAt:  s.now(),
			Payload: map[string]any{
				"text": fmt.Sprintf("Order %s paid", order.Number),
			},
		})
	}
	s.invalidateAnalytics(order.WorkspaceID)

	return order, nil
}

// applyPayment runs under the order (and, when present, discount rule)
// row locks. Usage is consumed only here, so abandoned unpaid orders
// never exhaust a limited-use promotion.
func (s *Service) applyPayment(o *domain.Order, rule *domain.DiscountRule, actor string) error {
	now := s.now()
	o.PaymentStatus = domain.PaymentStatusPaid
	o.PaidAt = &now
	o.RecordEvent(domain.HistoryOrderPaid, "", actor)

	if o.DiscountID == nil || rule == nil {
		return nil
	}
	if rule.UsageExhausted() {
		// The promotion ran out between creation and payment. The
		// payment stays real; the usage counter never exceeds its cap
		// and no audit record is written.
		s.logger.Info("Discount limit reached at payment",
			zap.String("order", string(o.Number)),
			zap.String("code", rule.Code))
		o.RecordEvent(domain.HistoryDiscountLimitReached,
			fmt.Sprintf(`{"code":%q}`, rule.Code), actor)
		return nil
	}
	return rule.ConsumeUsage(o.DiscountAmount)
}

func (s *Service) CancelOrder(ctx context.Context, workspaceID uint64,
	number domain.OrderNumber, reason string, actor string) (*domain.Order, error) {
	order, err := s.repo.CancelOrder(ctx, workspaceID, number, func(o *domain.Order) error {
		if !o.CanBeCancelled() {
			return domain.ErrOrderNotCancellable
		}
		prev := o.Status
		o.Status = domain.OrderStatusCancelled
		o.CancelReason = reason
		o.RecordEvent(domain.HistoryOrderCancelled,
			fmt.Sprintf(`{"from":%q,"reason":%q}`, prev, reason), actor)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(domain.Event{
		Type:        domain.EventOrderCancelled,
		WorkspaceID: order.WorkspaceID,
		OrderNumber: order.Number,
		OccurredAt:  s.now(),
		Payload:     map[string]any{"reason": reason},
	})
	s.invalidateAnalytics(order.WorkspaceID)

	return order, nil
}
