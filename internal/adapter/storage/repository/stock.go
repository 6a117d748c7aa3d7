package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/veliashev/shopcore/internal/core/domain"
	"github.com/veliashev/shopcore/internal/core/port"
)

func (r *Repository) ViewStock(ctx context.Context, variantID, locationID uint64) (*domain.StockRecord, error) {
	statement := r.db.QueryBuilder.
		Select("id", "variant_id", "location_id", "on_hand", "available", "condition", "updated_at").
		From("stock_records").
		Where(sq.Eq{"variant_id": variantID, "location_id": locationID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	stock := domain.StockRecord{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&stock.ID, &stock.VariantID, &stock.LocationID,
		&stock.OnHand, &stock.Available, &stock.Condition, &stock.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, domain.ErrStockNotFound)
	}
	return &stock, nil
}

// AdjustStock locks the record (creating it at zero on first touch),
// runs the mutation and persists the result in one transaction.
func (r *Repository) AdjustStock(ctx context.Context, variantID, locationID uint64, fn port.UpdateStockFn) (*domain.StockRecord, error) {
	var result *domain.StockRecord
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		stock, err := r.lockStock(ctx, tx, variantID, locationID)
		if err != nil {
			return err
		}
		if err := fn(stock); err != nil {
			return err
		}
		if err := r.saveStock(ctx, tx, stock); err != nil {
			return err
		}
		result = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockStock is get-or-create under the row lock: records are created
// lazily at zero on the first stock-affecting operation for the
// variant/location pair. The insert races benignly with concurrent
// creators; ON CONFLICT DO NOTHING lets the loser fall through to the
// locking select.
func (r *Repository) lockStock(ctx context.Context, tx pgx.Tx, variantID, locationID uint64) (*domain.StockRecord, error) {
	insert := r.db.QueryBuilder.
		Insert("stock_records").
		Columns("variant_id", "location_id", "on_hand", "available").
		Values(variantID, locationID, 0, 0).
		Suffix("ON CONFLICT (variant_id, location_id) DO NOTHING")

	sql, args, err := insert.ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return nil, err
	}

	statement := r.db.QueryBuilder.
		Select("id", "variant_id", "location_id", "on_hand", "available", "condition", "updated_at").
		From("stock_records").
		Where(sq.Eq{"variant_id": variantID, "location_id": locationID}).
		Suffix("FOR UPDATE")

	sql, args, err = statement.ToSql()
	if err != nil {
		return nil, err
	}

	stock := domain.StockRecord{}
	err = tx.QueryRow(ctx, sql, args...).Scan(
		&stock.ID, &stock.VariantID, &stock.LocationID,
		&stock.OnHand, &stock.Available, &stock.Condition, &stock.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, domain.ErrStockNotFound)
	}
	return &stock, nil
}

func (r *Repository) saveStock(ctx context.Context, tx pgx.Tx, s *domain.StockRecord) error {
	statement := r.db.QueryBuilder.
		Update("stock_records").
		Set("on_hand", s.OnHand).
		Set("available", s.Available).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": s.ID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}
