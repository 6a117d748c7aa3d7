package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/govalues/decimal"
	"github.com/veliashev/shopcore/internal/core/discount"
	"github.com/veliashev/shopcore/internal/core/domain"
	"github.com/veliashev/shopcore/internal/core/port"
	"go.uber.org/zap"
)

// number collisions are vanishingly rare; three attempts is plenty.
const createAttempts = 3

func (s *Service) CreateOrder(ctx context.Context, in port.CreateOrderInput) (*domain.Order, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	customer, err := s.repo.GetCustomer(ctx, in.WorkspaceID, in.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}

	customerID := in.CustomerID
	order := &domain.Order{
		WorkspaceID:    in.WorkspaceID,
		Status:         domain.OrderStatusPending,
		PaymentStatus:  domain.PaymentStatusPending,
		PaymentMethod:  in.PaymentMethod,
		Source:         in.Source,
		LocationID:     in.LocationID,
		CustomerID:     &customerID,
		Customer:       customer.Snapshot(),
		Currency:       in.Currency,
		TaxAmount:      in.TaxAmount,
		DiscountAmount: decimal.Zero,
		CreatedBy:      in.Actor,
	}

	cart := &discount.Cart{Currency: in.Currency}
	variants := make([]*domain.ProductVariant, 0, len(in.Items))
	for _, it := range in.Items {
		v, err := s.repo.GetVariant(ctx, in.WorkspaceID, it.VariantID)
		if err != nil {
			if errors.Is(err, domain.ErrDataNotFound) {
				return nil, domain.ErrProductNotFound
			}
			return nil, err
		}
		variants = append(variants, v)

		variantID := v.ID
		productID := v.ProductID
		order.Items = append(order.Items, &domain.OrderLineItem{
			ProductID: &productID,
			VariantID: &variantID,
			Quantity:  it.Quantity,
			UnitPrice: v.Price,
			Snapshot: domain.ProductSnapshot{
				Name:     v.Name,
				SKU:      v.SKU,
				Category: v.Category,
				Images:   v.Images,
			},
		})
		cart.Lines = append(cart.Lines, discount.Line{
			ProductID: v.ProductID,
			VariantID: v.ID,
			Quantity:  it.Quantity,
			UnitPrice: v.Price,
		})
	}

	if err := order.RecomputeSubtotal(); err != nil {
		return nil, err
	}

	if in.ShippingCost != nil {
		if in.ShippingCost.IsNeg() {
			return nil, &domain.ValidationError{Field: "shipping_cost", Msg: "must not be negative"}
		}
		order.ShippingCost = *in.ShippingCost
	} else {
		cost, err := s.shippingCost(ctx, in, variants)
		if err != nil {
			return nil, err
		}
		order.ShippingCost = cost
	}

	if in.DiscountCode != "" {
		rule, amount, err := s.applyDiscount(ctx, in.WorkspaceID, in.DiscountCode, &customerID, cart)
		if err != nil {
			return nil, err
		}
		ruleID := rule.ID
		order.DiscountID = &ruleID
		order.DiscountCode = domain.NormalizeCode(in.DiscountCode)
		order.DiscountAmount = amount
	}

	if err := order.RecomputeTotal(); err != nil {
		return nil, err
	}

	var created *domain.Order
	for attempt := 0; attempt < createAttempts; attempt++ {
		order.Number = domain.NewOrderNumber()
		created, err = s.repo.CreateOrder(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflictingData) {
			continue
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, err
		}
		s.logger.Error("Create order", zap.Error(err))
		return nil, err
	}
	if err != nil {
		s.logger.Error("Create order: number collisions exhausted", zap.Error(err))
		return nil, domain.ErrInternal
	}

	s.publishEvent(domain.Event{
		Type:        domain.EventOrderCreated,
		WorkspaceID: created.WorkspaceID,
		OrderNumber: created.Number,
		OccurredAt:  s.now(),
		Payload:     createdEventPayload(created),
	})
	if created.Source == orderSourceChat {
		s.publishEvent(domain.Event{
			Type:        domain.EventAdminDirectMessage,
			WorkspaceID: created.WorkspaceID,
			OrderNumber: created.Number,
			OccurredAt:  s.now(),
			Payload: map[string]any{
				"text": fmt.Sprintf("New chat order %s from %s", created.Number, created.Customer.Name),
			},
		})
	}
	s.invalidateAnalytics(created.WorkspaceID)

	return created, nil
}

const orderSourceChat = "chat"

func validateCreateInput(in port.CreateOrderInput) error {
	if in.WorkspaceID == 0 {
		return &domain.ValidationError{Field: "workspace_id", Msg: "is required"}
	}
	if in.CustomerID == 0 {
		return &domain.ValidationError{Field: "customer_id", Msg: "is required"}
	}
	if in.LocationID == 0 {
		return &domain.ValidationError{Field: "location_id", Msg: "is required"}
	}
	if in.Currency == "" {
		return &domain.ValidationError{Field: "currency", Msg: "is required"}
	}
	if len(in.Items) == 0 {
		return &domain.ValidationError{Field: "items", Msg: "must not be empty"}
	}
	for i, it := range in.Items {
		if it.VariantID == 0 {
			return &domain.ValidationError{Field: fmt.Sprintf("items[%d].variant_id", i), Msg: "is required"}
		}
		if it.Quantity <= 0 {
			return &domain.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Msg: "must be positive"}
		}
	}
	if in.TaxAmount.IsNeg() {
		return &domain.ValidationError{Field: "tax_amount", Msg: "must not be negative"}
	}
	return nil
}

// shippingCost sums the per-line package regional fees, falling back to
// the workspace default package for products without one.
func (s *Service) shippingCost(ctx context.Context, in port.CreateOrderInput, variants []*domain.ProductVariant) (decimal.Decimal, error) {
	var defaultPackage uint64
	total := decimal.Zero
	for _, v := range variants {
		packageID := uint64(0)
		if v.ShippingPackageID != nil {
			packageID = *v.ShippingPackageID
		} else {
			if defaultPackage == 0 {
				p, err := s.shipping.DefaultPackage(ctx, in.WorkspaceID)
				if err != nil {
					return decimal.Decimal{}, fmt.Errorf("default shipping package: %w", err)
				}
				defaultPackage = p
			}
			packageID = defaultPackage
		}

		fee, err := s.shipping.RegionFee(ctx, packageID, in.Shipping.Region)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("region fee for package %d: %w", packageID, err)
		}
		total, err = total.Add(fee)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("math error: %w", err)
		}
	}
	return total, nil
}

func createdEventPayload(o *domain.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"variant_id": it.VariantID,
			"quantity":   it.Quantity,
			"unit_price": it.UnitPrice,
		})
	}
	return map[string]any{
		"number":   string(o.Number),
		"status":   string(o.Status),
		"total":    o.TotalAmount,
		"currency": o.Currency,
		"items":    items,
	}
}
