//go:build integration

package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veliashev/shopcore/internal/adapter/config"
	"github.com/veliashev/shopcore/internal/adapter/storage"
	"github.com/veliashev/shopcore/internal/adapter/storage/repository"
	"github.com/veliashev/shopcore/internal/core/domain"
)

// These tests need a real PostgreSQL instance: the row-locking
// discipline they exercise does not exist in mocks. Run with
//
//	DATABASE_URI=postgres://... go test -tags integration ./...
const testWorkspace = uint64(900)

func setupRepository(t *testing.T) (*repository.Repository, *storage.DB) {
	t.Helper()

	dsn := os.Getenv("DATABASE_URI")
	if dsn == "" {
		t.Skip("DATABASE_URI is not set")
	}

	db, err := storage.NewDBStorage(context.Background(), &config.Database{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.RunMigrations())

	repo, err := repository.NewRepository(db)
	require.NoError(t, err)
	return repo, db
}

func seedCustomer(t *testing.T, db *storage.DB) uint64 {
	t.Helper()
	var id uint64
	err := db.QueryRow(context.Background(),
		`INSERT INTO customers (workspace_id, name) VALUES ($1, $2) RETURNING id`,
		testWorkspace, "Ada Wong").Scan(&id)
	require.NoError(t, err)
	return id
}

func seedVariant(t *testing.T, db *storage.DB) uint64 {
	t.Helper()
	var id uint64
	err := db.QueryRow(context.Background(),
		`INSERT INTO product_variants (workspace_id, product_id, name, price)
		 VALUES ($1, 1, 'Ceramic Mug', 10.00) RETURNING id`,
		testWorkspace).Scan(&id)
	require.NoError(t, err)
	return id
}

func stockedOrder(t *testing.T, customerID, variantID uint64, qty int) *domain.Order {
	t.Helper()
	order := &domain.Order{
		WorkspaceID:   testWorkspace,
		Number:        domain.NewOrderNumber(),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		LocationID:    1,
		CustomerID:    &customerID,
		Currency:      "USD",
		Items: []*domain.OrderLineItem{{
			VariantID: &variantID,
			Quantity:  qty,
			UnitPrice: decimal.MustParse("10.00"),
		}},
	}
	require.NoError(t, order.RecomputeSubtotal())
	require.NoError(t, order.RecomputeTotal())
	return order
}

// Two creations race for five units with three requested each: exactly
// one reservation fits and the loser's whole transaction rolls back.
func TestRepository_CreateOrder_ConcurrentReservation(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	customerID := seedCustomer(t, db)
	variantID := seedVariant(t, db)
	_, err := repo.AdjustStock(ctx, variantID, 1, func(s *domain.StockRecord) error {
		s.OnHand = 5
		s.Available = 5
		return nil
	})
	require.NoError(t, err)

	orders := []*domain.Order{
		stockedOrder(t, customerID, variantID, 3),
		stockedOrder(t, customerID, variantID, 3),
	}

	errs := make([]error, len(orders))
	var wg sync.WaitGroup
	for i, order := range orders {
		i, order := i, order
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.CreateOrder(ctx, order)
		}()
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		lost++
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, won, "only one reservation fits")
	assert.Equal(t, 1, lost)

	stock, err := repo.ViewStock(ctx, variantID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, stock.Available)
	assert.Equal(t, 2, stock.OnHand)

	var ordersCount int
	require.NoError(t, db.QueryRow(ctx,
		`SELECT orders_count FROM customers WHERE id = $1`, customerID).Scan(&ordersCount))
	assert.Equal(t, 1, ordersCount, "losing order never bumps customer stats")
}

// Two payment confirmations race for a single-use rule: the rule row
// lock serializes them, one consumes the usage, the other keeps its
// payment, and exactly one audit row lands.
func TestRepository_UpdateOrderWithDiscount_ConcurrentUsageCap(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	var ruleID uint64
	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO discount_rules (workspace_id, code, kind, usage_limit)
		 VALUES ($1, $2, 'amount_off_products', 1) RETURNING id`,
		testWorkspace, uuid.NewString()).Scan(&ruleID))

	discountedOrder := func() domain.OrderNumber {
		order := &domain.Order{
			WorkspaceID:    testWorkspace,
			Number:         domain.NewOrderNumber(),
			Status:         domain.OrderStatusPending,
			PaymentStatus:  domain.PaymentStatusPending,
			LocationID:     1,
			Currency:       "USD",
			DiscountID:     &ruleID,
			DiscountAmount: decimal.MustParse("5.00"),
			TotalAmount:    decimal.MustParse("15.00"),
			Items: []*domain.OrderLineItem{{
				Quantity:  2,
				UnitPrice: decimal.MustParse("10.00"),
			}},
		}
		_, err := repo.CreateOrder(ctx, order)
		require.NoError(t, err)
		return order.Number
	}

	numbers := []domain.OrderNumber{discountedOrder(), discountedOrder()}

	errs := make([]error, len(numbers))
	var wg sync.WaitGroup
	for i, number := range numbers {
		i, number := i, number
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.UpdateOrderWithDiscount(ctx, testWorkspace, number,
				func(o *domain.Order, rule *domain.DiscountRule) error {
					o.PaymentStatus = domain.PaymentStatusPaid
					if rule == nil || rule.UsageExhausted() {
						return nil
					}
					return rule.ConsumeUsage(o.DiscountAmount)
				})
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err, "exhaustion never fails the payment")
	}

	var usageCount int
	require.NoError(t, db.QueryRow(ctx,
		`SELECT usage_count FROM discount_rules WHERE id = $1`, ruleID).Scan(&usageCount))
	assert.Equal(t, 1, usageCount)

	var auditRows int
	require.NoError(t, db.QueryRow(ctx,
		`SELECT count(*) FROM discount_usages WHERE discount_id = $1`, ruleID).Scan(&auditRows))
	assert.Equal(t, 1, auditRows, "the non-consuming confirmation leaves no audit row")
}
