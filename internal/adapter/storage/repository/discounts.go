package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/veliashev/shopcore/internal/core/domain"
)

var discountColumns = []string{
	"id", "workspace_id", "code", "kind", "method",
	"value_type", "value", "buys_type", "buys_value", "gets_quantity",
	"gets_value_type", "gets_value", "max_uses_per_order",
	"starts_at", "ends_at", "usage_limit", "usage_limit_per_customer",
	"usage_count", "total_discount_amount",
	"min_requirement_type", "min_requirement_value",
	"all_products", "product_ids", "buys_product_ids", "gets_product_ids",
	"all_customers", "customer_ids",
	"combines_with_product", "combines_with_order", "combines_with_shipping",
	"active", "created_at",
}

func scanDiscount(row pgx.Row) (*domain.DiscountRule, error) {
	rule := domain.DiscountRule{}
	var productIDs, buysIDs, getsIDs, customerIDs []int64
	err := row.Scan(
		&rule.ID, &rule.WorkspaceID, &rule.Code, &rule.Kind, &rule.Method,
		&rule.ValueType, &rule.Value, &rule.BuysType, &rule.BuysValue, &rule.GetsQuantity,
		&rule.GetsValueType, &rule.GetsValue, &rule.MaxUsesPerOrder,
		&rule.StartsAt, &rule.EndsAt, &rule.UsageLimit, &rule.UsageLimitPerCustomer,
		&rule.UsageCount, &rule.TotalDiscountAmount,
		&rule.MinRequirementType, &rule.MinRequirementValue,
		&rule.AppliesToAllProducts, &productIDs, &buysIDs, &getsIDs,
		&rule.AllCustomers, &customerIDs,
		&rule.CombinesWithProduct, &rule.CombinesWithOrder, &rule.CombinesWithShipping,
		&rule.Active, &rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.ProductIDs = toUint64s(productIDs)
	rule.BuysProductIDs = toUint64s(buysIDs)
	rule.GetsProductIDs = toUint64s(getsIDs)
	rule.CustomerIDs = toUint64s(customerIDs)
	return &rule, nil
}

// GetDiscountByCode resolves a code case-insensitively within the
// workspace; the unique index on (workspace_id, upper(code)) guarantees
// at most one match.
func (r *Repository) GetDiscountByCode(ctx context.Context, workspaceID uint64, code string) (*domain.DiscountRule, error) {
	statement := r.db.QueryBuilder.
		Select(discountColumns...).
		From("discount_rules").
		Where(sq.Eq{"workspace_id": workspaceID}).
		Where(sq.Expr("upper(code) = ?", domain.NormalizeCode(code)))

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}
	rule, err := scanDiscount(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err, domain.ErrDiscountNotFound)
	}
	return rule, nil
}

// CountDiscountUsage counts successful applications of one rule by one
// customer, backing the per-customer usage limit.
func (r *Repository) CountDiscountUsage(ctx context.Context, discountID uint64, customerID uint64) (int, error) {
	statement := r.db.QueryBuilder.
		Select("count(*)").
		From("discount_usages").
		Where(sq.Eq{"discount_id": discountID, "customer_id": customerID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) lockDiscount(ctx context.Context, tx pgx.Tx, id uint64) (*domain.DiscountRule, error) {
	statement := r.db.QueryBuilder.
		Select(discountColumns...).
		From("discount_rules").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}
	rule, err := scanDiscount(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err, domain.ErrDiscountNotFound)
	}
	return rule, nil
}

// saveDiscountUsage persists the consumed counter and the audit row in
// the caller's transaction.
func (r *Repository) saveDiscountUsage(ctx context.Context, tx pgx.Tx, order *domain.Order, rule *domain.DiscountRule) error {
	update := r.db.QueryBuilder.
		Update("discount_rules").
		Set("usage_count", rule.UsageCount).
		Set("total_discount_amount", rule.TotalDiscountAmount).
		Where(sq.Eq{"id": rule.ID})

	sql, args, err := update.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	orderAmount, err := order.TotalAmount.Add(order.DiscountAmount)
	if err != nil {
		return fmt.Errorf("math error: %w", err)
	}
	return r.insertDiscountUsage(ctx, tx, &domain.DiscountUsage{
		DiscountID:     rule.ID,
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		OrderAmount:    orderAmount,
		DiscountAmount: order.DiscountAmount,
		FinalAmount:    order.TotalAmount,
	})
}

func (r *Repository) insertDiscountUsage(ctx context.Context, tx pgx.Tx, usage *domain.DiscountUsage) error {
	statement := r.db.QueryBuilder.
		Insert("discount_usages").
		Columns("discount_id", "order_id", "customer_id",
			"order_amount", "discount_amount", "final_amount").
		Values(usage.DiscountID, usage.OrderID, usage.CustomerID,
			usage.OrderAmount, usage.DiscountAmount, usage.FinalAmount)

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}
