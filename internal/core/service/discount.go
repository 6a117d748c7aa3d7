package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/govalues/decimal"
	"github.com/veliashev/shopcore/internal/core/discount"
	"github.com/veliashev/shopcore/internal/core/domain"
)

// ReasonNotFound is produced at the service boundary; the pure engine
// only ever sees an existing rule.
const ReasonNotFound discount.InvalidReason = "not_found"

// DiscountRejectedError surfaces the engine's invalid reason to callers
// while staying matchable via errors.Is(err, ErrDiscountNotApplicable).
type DiscountRejectedError struct {
	Code   string
	Reason discount.InvalidReason
}

func (e *DiscountRejectedError) Error() string {
	return fmt.Sprintf("discount code %s rejected: %s", e.Code, e.Reason)
}

func (e *DiscountRejectedError) Unwrap() error { return domain.ErrDiscountNotApplicable }

func (s *Service) ValidateDiscountCode(ctx context.Context, workspaceID uint64,
	code string, customerID *uint64, cart *discount.Cart) (*discount.Validation, error) {
	rule, err := s.repo.GetDiscountByCode(ctx, workspaceID, domain.NormalizeCode(code))
	if err != nil {
		if errors.Is(err, domain.ErrDataNotFound) || errors.Is(err, domain.ErrDiscountNotFound) {
			return &discount.Validation{Reason: ReasonNotFound}, nil
		}
		return nil, err
	}

	usedByCustomer := 0
	if customerID != nil {
		usedByCustomer, err = s.repo.CountDiscountUsage(ctx, rule.ID, *customerID)
		if err != nil {
			return nil, err
		}
	}

	v, err := discount.Validate(rule, code, customerID, cart, usedByCustomer, s.now())
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// applyDiscount validates and prices a code for order creation.
func (s *Service) applyDiscount(ctx context.Context, workspaceID uint64,
	code string, customerID *uint64, cart *discount.Cart) (*domain.DiscountRule, decimal.Decimal, error) {
	v, err := s.ValidateDiscountCode(ctx, workspaceID, code, customerID, cart)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	if !v.Valid {
		return nil, decimal.Decimal{}, &DiscountRejectedError{Code: code, Reason: v.Reason}
	}

	calc, err := discount.Calculate(v.Rule, cart)
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	return v.Rule, calc.Total, nil
}
