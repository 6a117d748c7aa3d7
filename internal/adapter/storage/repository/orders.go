package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/veliashev/shopcore/internal/core/domain"
	"github.com/veliashev/shopcore/internal/core/port"
)

var orderColumns = []string{
	"id", "workspace_id", "number", "status", "payment_status", "payment_method",
	"source", "location_id", "customer_id", "customer_name", "customer_email",
	"customer_phone", "subtotal", "shipping_cost", "tax_amount", "discount_amount",
	"total_amount", "currency", "discount_id", "discount_code", "tracking_number",
	"cancel_reason", "created_by", "archived", "archived_at", "paid_at",
	"created_at", "updated_at",
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := domain.Order{}
	err := row.Scan(
		&o.ID, &o.WorkspaceID, &o.Number, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.Source, &o.LocationID, &o.CustomerID, &o.Customer.Name, &o.Customer.Email,
		&o.Customer.Phone, &o.Subtotal, &o.ShippingCost, &o.TaxAmount, &o.DiscountAmount,
		&o.TotalAmount, &o.Currency, &o.DiscountID, &o.DiscountCode, &o.TrackingNumber,
		&o.CancelReason, &o.CreatedBy, &o.Archived, &o.ArchivedAt, &o.PaidAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder runs the whole creation as one transaction: order and
// line items are inserted, stock rows are locked in deterministic
// variant order and reserved all-or-nothing, customer statistics are
// bumped and the created history entry is appended. Any shortfall
// rolls everything back and reports every short line at once.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		statement := r.db.QueryBuilder.
			Insert("orders").
			Columns("workspace_id", "number", "status", "payment_status", "payment_method",
				"source", "location_id", "customer_id", "customer_name", "customer_email",
				"customer_phone", "subtotal", "shipping_cost", "tax_amount", "discount_amount",
				"total_amount", "currency", "discount_id", "discount_code", "created_by").
			Values(order.WorkspaceID, order.Number, order.Status, order.PaymentStatus, order.PaymentMethod,
				order.Source, order.LocationID, order.CustomerID, order.Customer.Name, order.Customer.Email,
				order.Customer.Phone, order.Subtotal, order.ShippingCost, order.TaxAmount, order.DiscountAmount,
				order.TotalAmount, order.Currency, order.DiscountID, order.DiscountCode, order.CreatedBy).
			Suffix("RETURNING id, created_at, updated_at")

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx, sql, args...).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		for _, item := range order.Items {
			item.OrderID = order.ID
			statement := r.db.QueryBuilder.
				Insert("order_items").
				Columns("order_id", "product_id", "variant_id", "quantity", "unit_price",
					"name", "sku", "category", "images").
				Values(order.ID, item.ProductID, item.VariantID, item.Quantity, item.UnitPrice,
					item.Snapshot.Name, item.Snapshot.SKU, item.Snapshot.Category, item.Snapshot.Images).
				Suffix("RETURNING id")

			sql, args, err := statement.ToSql()
			if err != nil {
				return err
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(&item.ID); err != nil {
				return err
			}
		}

		if err := r.reserveOrderStock(ctx, tx, order); err != nil {
			return err
		}

		if order.CustomerID != nil {
			if err := r.bumpCustomerStats(ctx, tx, order); err != nil {
				return err
			}
		}

		return r.insertHistory(ctx, tx, order.ID, []domain.HistoryEntry{{
			Action:  domain.HistoryOrderCreated,
			Details: fmt.Sprintf(`{"total":"%s","currency":%q}`, order.TotalAmount, order.Currency),
			Actor:   order.CreatedBy,
		}})
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}
	return order, nil
}

// reserveOrderStock locks every line's stock row FOR UPDATE, always in
// ascending variant order so concurrent creations cannot deadlock, and
// collects all shortfalls before failing.
func (r *Repository) reserveOrderStock(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	type lineQty struct {
		variantID uint64
		qty       int
	}
	merged := map[uint64]int{}
	for _, item := range order.Items {
		if item.VariantID == nil {
			continue
		}
		merged[*item.VariantID] += item.Quantity
	}
	lines := make([]lineQty, 0, len(merged))
	for v, q := range merged {
		lines = append(lines, lineQty{variantID: v, qty: q})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].variantID < lines[j].variantID })

	var shortages []domain.StockShortage
	for _, line := range lines {
		stock, err := r.lockStock(ctx, tx, line.variantID, order.LocationID)
		if err != nil {
			return err
		}
		if err := stock.Reserve(line.qty); err != nil {
			shortages = append(shortages, domain.StockShortage{
				VariantID:  line.variantID,
				LocationID: order.LocationID,
				Requested:  line.qty,
				Available:  stock.Available,
			})
			continue
		}
		if err := r.saveStock(ctx, tx, stock); err != nil {
			return err
		}
	}

	if len(shortages) > 0 {
		return &domain.StockUnavailableError{Items: shortages}
	}
	return nil
}

// bumpCustomerStats loads the customer under its row lock and applies
// the aggregate mutator, like every other conditional mutation here.
func (r *Repository) bumpCustomerStats(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	statement := r.db.QueryBuilder.
		Select("id", "workspace_id", "name", "email", "phone", "orders_count", "total_spent").
		From("customers").
		Where(sq.Eq{"id": order.CustomerID, "workspace_id": order.WorkspaceID}).
		Suffix("FOR UPDATE")

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	c := domain.Customer{}
	err = tx.QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.WorkspaceID, &c.Name, &c.Email, &c.Phone, &c.OrdersCount, &c.TotalSpent,
	)
	if err != nil {
		return notFound(err, domain.ErrCustomerNotFound)
	}
	if err := c.RegisterOrder(order.TotalAmount); err != nil {
		return err
	}

	update := r.db.QueryBuilder.
		Update("customers").
		Set("orders_count", c.OrdersCount).
		Set("total_spent", c.TotalSpent).
		Where(sq.Eq{"id": c.ID})

	sql, args, err = update.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

func (r *Repository) ReadOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"workspace_id": workspaceID, "number": number})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound)
	}
	if err := r.loadItems(ctx, r.db, order); err != nil {
		return nil, err
	}
	return order, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repository) loadItems(ctx context.Context, q queryer, order *domain.Order) error {
	statement := r.db.QueryBuilder.
		Select("id", "product_id", "variant_id", "quantity", "unit_price",
			"name", "sku", "category", "images").
		From("order_items").
		Where(sq.Eq{"order_id": order.ID}).
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	order.Items = order.Items[:0]
	for rows.Next() {
		item := domain.OrderLineItem{OrderID: order.ID}
		err := rows.Scan(&item.ID, &item.ProductID, &item.VariantID, &item.Quantity, &item.UnitPrice,
			&item.Snapshot.Name, &item.Snapshot.SKU, &item.Snapshot.Category, &item.Snapshot.Images)
		if err != nil {
			return err
		}
		order.Items = append(order.Items, &item)
	}
	return rows.Err()
}

// lockOrder loads the aggregate under its row lock.
func (r *Repository) lockOrder(ctx context.Context, tx pgx.Tx, workspaceID uint64, number domain.OrderNumber) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"workspace_id": workspaceID, "number": number}).
		Suffix("FOR UPDATE")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}
	order, err := scanOrder(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound)
	}
	if err := r.loadItems(ctx, tx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) saveOrder(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	statement := r.db.QueryBuilder.
		Update("orders").
		Set("status", o.Status).
		Set("payment_status", o.PaymentStatus).
		Set("subtotal", o.Subtotal).
		Set("shipping_cost", o.ShippingCost).
		Set("tax_amount", o.TaxAmount).
		Set("discount_amount", o.DiscountAmount).
		Set("total_amount", o.TotalAmount).
		Set("tracking_number", o.TrackingNumber).
		Set("cancel_reason", o.CancelReason).
		Set("archived", o.Archived).
		Set("archived_at", o.ArchivedAt).
		Set("paid_at", o.PaidAt).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": o.ID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}

func (r *Repository) UpdateOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
	var result *domain.Order
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		order, err := r.lockOrder(ctx, tx, workspaceID, number)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
		if err := r.saveOrder(ctx, tx, order); err != nil {
			return err
		}
		if err := r.insertHistory(ctx, tx, order.ID, order.PendingHistory()); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelOrder is UpdateOrder plus stock restoration for every line in
// the same transaction: the quantities originally reserved go back
// before the status flip commits.
func (r *Repository) CancelOrder(ctx context.Context, workspaceID uint64, number domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
	var result *domain.Order
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		order, err := r.lockOrder(ctx, tx, workspaceID, number)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}

		items := make([]*domain.OrderLineItem, 0, len(order.Items))
		for _, item := range order.Items {
			if item.VariantID != nil {
				items = append(items, item)
			}
		}
		sort.Slice(items, func(i, j int) bool { return *items[i].VariantID < *items[j].VariantID })
		for _, item := range items {
			stock, err := r.lockStock(ctx, tx, *item.VariantID, order.LocationID)
			if err != nil {
				return err
			}
			if err := stock.Restore(item.Quantity); err != nil {
				return err
			}
			if err := r.saveStock(ctx, tx, stock); err != nil {
				return err
			}
		}

		if err := r.saveOrder(ctx, tx, order); err != nil {
			return err
		}
		if err := r.insertHistory(ctx, tx, order.ID, order.PendingHistory()); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateOrderWithDiscount locks the order row first and the discount
// rule row second; payment confirmation is the only path touching both,
// so the lock order is total. When fn consumed usage, the rule row and
// the audit record are written in the same transaction as the order.
func (r *Repository) UpdateOrderWithDiscount(ctx context.Context, workspaceID uint64, number domain.OrderNumber, fn port.UpdateOrderDiscountFn) (*domain.Order, error) {
	var result *domain.Order
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		order, err := r.lockOrder(ctx, tx, workspaceID, number)
		if err != nil {
			return err
		}

		var rule *domain.DiscountRule
		if order.DiscountID != nil {
			rule, err = r.lockDiscount(ctx, tx, *order.DiscountID)
			if err != nil {
				// The rule may have been deleted after the order
				// snapshotted its code; the order still proceeds.
				if !errors.Is(err, domain.ErrDiscountNotFound) {
					return err
				}
				rule = nil
			}
		}
		usageBefore := 0
		if rule != nil {
			usageBefore = rule.UsageCount
		}

		if err := fn(order, rule); err != nil {
			return err
		}

		if err := r.saveOrder(ctx, tx, order); err != nil {
			return err
		}
		if rule != nil && rule.UsageCount > usageBefore {
			if err := r.saveDiscountUsage(ctx, tx, order, rule); err != nil {
				return err
			}
		}
		if err := r.insertHistory(ctx, tx, order.ID, order.PendingHistory()); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Repository) ListOrderHistory(ctx context.Context, workspaceID uint64, number domain.OrderNumber) ([]*domain.HistoryEntry, error) {
	order, err := r.ReadOrder(ctx, workspaceID, number)
	if err != nil {
		return nil, err
	}

	statement := r.db.QueryBuilder.
		Select("id", "order_id", "action", "details", "actor", "created_at").
		From("order_history").
		Where(sq.Eq{"order_id": order.ID}).
		OrderBy("created_at DESC", "id DESC")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.HistoryEntry, 0)
	for rows.Next() {
		e := domain.HistoryEntry{}
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Action, &e.Details, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
