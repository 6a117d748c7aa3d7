package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/veliashev/shopcore/internal/adapter/storage"
	"github.com/veliashev/shopcore/internal/core/domain"
)

// Repository implements port.Repository on postgres. Row-level locks
// (SELECT ... FOR UPDATE) are held for the whole read-check-write
// sequence of every conditional mutation; pgx.BeginFunc gives each
// operation a single all-or-nothing unit of work.
type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}

func (r *Repository) insertHistory(ctx context.Context, tx pgx.Tx, orderID uint64, entries []domain.HistoryEntry) error {
	for _, e := range entries {
		statement := r.db.QueryBuilder.
			Insert("order_history").
			Columns("order_id", "action", "details", "actor").
			Values(orderID, e.Action, e.Details, e.Actor)

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}
	return nil
}

func toUint64s(in []int64) []uint64 {
	if in == nil {
		return nil
	}
	out := make([]uint64, len(in))
	for i, v := range in {
		out[i] = uint64(v)
	}
	return out
}
