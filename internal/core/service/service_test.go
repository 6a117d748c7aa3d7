package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veliashev/shopcore/internal/core/domain"
	"github.com/veliashev/shopcore/internal/core/port"
	"github.com/veliashev/shopcore/internal/core/port/mock"
	"github.com/veliashev/shopcore/internal/core/service"
	"go.uber.org/zap"
)

// sinkStub / cacheStub absorb the fire-and-forget goroutines without
// gomock lifetime races.
type sinkStub struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *sinkStub) Publish(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

type cacheStub struct{}

func (cacheStub) InvalidateOrders(context.Context, uint64, time.Time) error { return nil }

func newTestService(t *testing.T) (*service.Service, *mock.MockRepository, *mock.MockShippingService) {
	t.Helper()
	mockCtrl := gomock.NewController(t)
	repo := mock.NewMockRepository(mockCtrl)
	shipping := mock.NewMockShippingService(mockCtrl)

	svc, err := service.NewService(repo, shipping, &sinkStub{}, cacheStub{}, zap.NewNop())
	require.NoError(t, err)
	return svc, repo, shipping
}

const workspaceID = uint64(42)

func testCustomer() *domain.Customer {
	return &domain.Customer{
		ID:          7,
		WorkspaceID: workspaceID,
		Name:        "Ada",
		Email:       "ada@example.com",
	}
}

func testVariant() *domain.ProductVariant {
	return &domain.ProductVariant{
		ID:          10,
		WorkspaceID: workspaceID,
		ProductID:   1,
		SKU:         "SKU-10",
		Name:        "Widget",
		Price:       decimal.MustParse("25.00"),
	}
}

func createInput() port.CreateOrderInput {
	return port.CreateOrderInput{
		WorkspaceID: workspaceID,
		CustomerID:  7,
		LocationID:  1,
		Currency:    "USD",
		Shipping:    port.ShippingInfo{Region: "EU"},
		Actor:       "ada",
		Items:       []port.CreateOrderItem{{VariantID: 10, Quantity: 2}},
	}
}

func TestService_CreateOrder(t *testing.T) {
	svc, repo, shipping := newTestService(t)

	repo.EXPECT().GetCustomer(gomock.Any(), workspaceID, uint64(7)).Return(testCustomer(), nil)
	repo.EXPECT().GetVariant(gomock.Any(), workspaceID, uint64(10)).Return(testVariant(), nil)
	shipping.EXPECT().DefaultPackage(gomock.Any(), workspaceID).Return(uint64(3), nil)
	shipping.EXPECT().RegionFee(gomock.Any(), uint64(3), "EU").Return(decimal.MustParse("4.00"), nil)
	repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, order *domain.Order) (*domain.Order, error) {
			order.ID = 100
			return order, nil
		})

	order, err := svc.CreateOrder(context.Background(), createInput())
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "Ada", order.Customer.Name)
	assert.NotEmpty(t, order.Number)
	assert.Equal(t, 0, order.Subtotal.Cmp(decimal.MustParse("50.00")))
	assert.Equal(t, 0, order.ShippingCost.Cmp(decimal.MustParse("4.00")))
	assert.Equal(t, 0, order.TotalAmount.Cmp(decimal.MustParse("54.00")))
}

func TestService_CreateOrder_ShippingOverride(t *testing.T) {
	svc, repo, _ := newTestService(t)

	repo.EXPECT().GetCustomer(gomock.Any(), workspaceID, uint64(7)).Return(testCustomer(), nil)
	repo.EXPECT().GetVariant(gomock.Any(), workspaceID, uint64(10)).Return(testVariant(), nil)
	repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, order *domain.Order) (*domain.Order, error) {
			return order, nil
		})

	in := createInput()
	override := decimal.MustParse("0.00")
	in.ShippingCost = &override

	order, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 0, order.TotalAmount.Cmp(decimal.MustParse("50.00")))
}

func TestService_CreateOrder_WithDiscount(t *testing.T) {
	svc, repo, _ := newTestService(t)

	rule := &domain.DiscountRule{
		ID:                   5,
		Code:                 "SAVE10",
		Kind:                 domain.RuleKindAmountOffProduct,
		Method:               domain.DiscountMethodCode,
		ValueType:            domain.DiscountValuePercentage,
		Value:                decimal.MustParse("10"),
		StartsAt:             time.Now().Add(-time.Hour),
		AppliesToAllProducts: true,
		AllCustomers:         true,
		Active:               true,
	}

	repo.EXPECT().GetCustomer(gomock.Any(), workspaceID, uint64(7)).Return(testCustomer(), nil)
	repo.EXPECT().GetVariant(gomock.Any(), workspaceID, uint64(10)).Return(testVariant(), nil)
	repo.EXPECT().GetDiscountByCode(gomock.Any(), workspaceID, "SAVE10").Return(rule, nil)
	repo.EXPECT().CountDiscountUsage(gomock.Any(), uint64(5), uint64(7)).Return(0, nil)
	repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, order *domain.Order) (*domain.Order, error) {
			return order, nil
		})

	in := createInput()
	override := decimal.MustParse("0.00")
	in.ShippingCost = &override
	in.DiscountCode = "save10"

	order, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, order.DiscountID)
	assert.Equal(t, uint64(5), *order.DiscountID)
	assert.Equal(t, "SAVE10", order.DiscountCode)
	assert.Equal(t, 0, order.DiscountAmount.Cmp(decimal.MustParse("5.00")))
	assert.Equal(t, 0, order.TotalAmount.Cmp(decimal.MustParse("45.00")))
	assert.Equal(t, 0, rule.UsageCount, "creation must not consume usage")
}

func TestService_CreateOrder_RejectedDiscount(t *testing.T) {
	svc, repo, _ := newTestService(t)

	repo.EXPECT().GetCustomer(gomock.Any(), workspaceID, uint64(7)).Return(testCustomer(), nil)
	repo.EXPECT().GetVariant(gomock.Any(), workspaceID, uint64(10)).Return(testVariant(), nil)
	repo.EXPECT().GetDiscountByCode(gomock.Any(), workspaceID, "NOPE").Return(nil, domain.ErrDiscountNotFound)

	in := createInput()
	override := decimal.MustParse("0.00")
	in.ShippingCost = &override
	in.DiscountCode = "NOPE"

	_, err := svc.CreateOrder(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrDiscountNotApplicable)
}

func TestService_CreateOrder_InsufficientStock(t *testing.T) {
	svc, repo, shipping := newTestService(t)

	repo.EXPECT().GetCustomer(gomock.Any(), workspaceID, uint64(7)).Return(testCustomer(), nil)
	repo.EXPECT().GetVariant(gomock.Any(), workspaceID, uint64(10)).Return(testVariant(), nil)
	shipping.EXPECT().DefaultPackage(gomock.Any(), workspaceID).Return(uint64(3), nil)
	shipping.EXPECT().RegionFee(gomock.Any(), uint64(3), "EU").Return(decimal.MustParse("4.00"), nil)
	repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil, &domain.StockUnavailableError{
		Items: []domain.StockShortage{{VariantID: 10, LocationID: 1, Requested: 2, Available: 1}},
	})

	_, err := svc.CreateOrder(context.Background(), createInput())
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockUnavailableError
	require.ErrorAs(t, err, &stockErr)
	assert.Len(t, stockErr.Items, 1)
	assert.Equal(t, 1, stockErr.Items[0].Available)
}

func TestService_CreateOrder_CustomerNotFound(t *testing.T) {
	svc, repo, _ := newTestService(t)

	repo.EXPECT().GetCustomer(gomock.Any(), workspaceID, uint64(7)).Return(nil, domain.ErrCustomerNotFound)

	_, err := svc.CreateOrder(context.Background(), createInput())
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestService_CreateOrder_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := createInput()
	in.Items = nil

	_, err := svc.CreateOrder(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestService_CreateOrder_NumberCollisionRetries(t *testing.T) {
	svc, repo, _ := newTestService(t)

	repo.EXPECT().GetCustomer(gomock.Any(), workspaceID, uint64(7)).Return(testCustomer(), nil)
	repo.EXPECT().GetVariant(gomock.Any(), workspaceID, uint64(10)).Return(testVariant(), nil)

	var numbers []domain.OrderNumber
	first := repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, order *domain.Order) (*domain.Order, error) {
			numbers = append(numbers, order.Number)
			return nil, domain.ErrConflictingData
		})
	repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).After(first).DoAndReturn(
		func(_ context.Context, order *domain.Order) (*domain.Order, error) {
			numbers = append(numbers, order.Number)
			return order, nil
		})

	in := createInput()
	override := decimal.MustParse("1.00")
	in.ShippingCost = &override

	_, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, numbers, 2)
	assert.NotEqual(t, numbers[0], numbers[1], "retry must use a fresh number")
}

func testOrder() *domain.Order {
	discountID := uint64(5)
	customerID := uint64(7)
	order := &domain.Order{
		ID:             100,
		WorkspaceID:    workspaceID,
		Number:         "ORD-TEST123",
		Status:         domain.OrderStatusConfirmed,
		PaymentStatus:  domain.PaymentStatusPending,
		CustomerID:     &customerID,
		DiscountID:     &discountID,
		DiscountCode:   "SAVE10",
		DiscountAmount: decimal.MustParse("5.00"),
		TotalAmount:    decimal.MustParse("45.00"),
	}
	return order
}

func TestService_MarkOrderPaid(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	limit := 10
	rule := &domain.DiscountRule{ID: 5, Code: "SAVE10", UsageLimit: &limit, UsageCount: 3}

	repo.EXPECT().UpdateOrderWithDiscount(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderDiscountFn) (*domain.Order, error) {
			if err := fn(order, rule); err != nil {
				return nil, err
			}
			return order, nil
		})

	result, err := svc.MarkOrderPaid(context.Background(), workspaceID, order.Number, "ada")
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPaid, result.PaymentStatus)
	assert.NotNil(t, result.PaidAt)
	assert.Equal(t, 4, rule.UsageCount, "payment confirmation consumes one usage")
	assert.Equal(t, 0, rule.TotalDiscountAmount.Cmp(decimal.MustParse("5.00")))
}

func TestService_MarkOrderPaid_LimitReachedKeepsPayment(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	limit := 3
	rule := &domain.DiscountRule{ID: 5, Code: "SAVE10", UsageLimit: &limit, UsageCount: 3}

	repo.EXPECT().UpdateOrderWithDiscount(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderDiscountFn) (*domain.Order, error) {
			if err := fn(order, rule); err != nil {
				return nil, err
			}
			return order, nil
		})

	result, err := svc.MarkOrderPaid(context.Background(), workspaceID, order.Number, "ada")
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPaid, result.PaymentStatus, "payment survives the exhausted promotion")
	assert.Equal(t, 3, rule.UsageCount, "counter never exceeds its limit")
}

func TestService_MarkOrderPaid_AlreadyPaid(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.PaymentStatus = domain.PaymentStatusPaid

	repo.EXPECT().UpdateOrderWithDiscount(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderDiscountFn) (*domain.Order, error) {
			if err := fn(order, nil); err != nil {
				return nil, err
			}
			return order, nil
		})

	_, err := svc.MarkOrderPaid(context.Background(), workspaceID, order.Number, "ada")
	assert.ErrorIs(t, err, domain.ErrPaymentNotPending)
}

func TestService_UpdateOrderStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.Status = domain.OrderStatusProcessing

	repo.EXPECT().UpdateOrder(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(order); err != nil {
				return nil, err
			}
			return order, nil
		})

	result, err := svc.UpdateOrderStatus(context.Background(), workspaceID, order.Number, domain.OrderStatusShipped, "ada")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, result.Status)
	assert.NotEmpty(t, result.TrackingNumber, "entering shipped assigns tracking")
}

func TestService_UpdateOrderStatus_Invalid(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.Status = domain.OrderStatusConfirmed

	repo.EXPECT().UpdateOrder(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(order); err != nil {
				return nil, err
			}
			return order, nil
		})

	_, err := svc.UpdateOrderStatus(context.Background(), workspaceID, order.Number, domain.OrderStatusShipped, "ada")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	var transition *domain.TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, domain.OrderStatusConfirmed, transition.From)
}

func TestService_UpdateOrderStatus_DeliveredAutoPays(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.Status = domain.OrderStatusShipped
	limit := 10
	rule := &domain.DiscountRule{ID: 5, Code: "SAVE10", UsageLimit: &limit}

	repo.EXPECT().UpdateOrderWithDiscount(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderDiscountFn) (*domain.Order, error) {
			if err := fn(order, rule); err != nil {
				return nil, err
			}
			return order, nil
		})

	result, err := svc.UpdateOrderStatus(context.Background(), workspaceID, order.Number, domain.OrderStatusDelivered, "ada")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, result.Status)
	assert.Equal(t, domain.PaymentStatusPaid, result.PaymentStatus)
	assert.Equal(t, 1, rule.UsageCount)
}

func TestService_UpdateOrderStatus_CorrectionSkipsSideEffects(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.Status = domain.OrderStatusCancelled

	repo.EXPECT().UpdateOrder(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(order); err != nil {
				return nil, err
			}
			return order, nil
		})

	result, err := svc.UpdateOrderStatus(context.Background(), workspaceID, order.Number, domain.OrderStatusPending, "ada")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, result.Status)
	assert.Empty(t, result.TrackingNumber)
}

func TestService_CancelOrder(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.Status = domain.OrderStatusPending

	repo.EXPECT().CancelOrder(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(order); err != nil {
				return nil, err
			}
			return order, nil
		})

	result, err := svc.CancelOrder(context.Background(), workspaceID, order.Number, "customer request", "ada")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, result.Status)
	assert.Equal(t, "customer request", result.CancelReason)
}

func TestService_CancelOrder_PaidRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.Status = domain.OrderStatusPending
	order.PaymentStatus = domain.PaymentStatusPaid

	repo.EXPECT().CancelOrder(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(order); err != nil {
				return nil, err
			}
			return order, nil
		})

	_, err := svc.CancelOrder(context.Background(), workspaceID, order.Number, "", "ada")
	assert.ErrorIs(t, err, domain.ErrOrderNotCancellable)
}

func TestService_UpdateOrderStatus_CancelRestoresStock(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.Status = domain.OrderStatusProcessing

	// A cancelled target goes through the stock-restoring transaction,
	// never the plain update.
	repo.EXPECT().CancelOrder(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(order); err != nil {
				return nil, err
			}
			return order, nil
		})

	result, err := svc.UpdateOrderStatus(context.Background(), workspaceID, order.Number, domain.OrderStatusCancelled, "ada")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, result.Status)
}

func TestService_UpdateOrderStatus_CancelPaidRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.Status = domain.OrderStatusProcessing
	order.PaymentStatus = domain.PaymentStatusPaid

	repo.EXPECT().CancelOrder(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(order); err != nil {
				return nil, err
			}
			return order, nil
		})

	_, err := svc.UpdateOrderStatus(context.Background(), workspaceID, order.Number, domain.OrderStatusCancelled, "ada")
	assert.ErrorIs(t, err, domain.ErrOrderNotCancellable)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status, "guard leaves the order untouched")
}

func TestService_BulkUpdateStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)

	good := testOrder()
	good.Status = domain.OrderStatusProcessing
	bad := testOrder()
	bad.Number = "ORD-OTHER456"
	bad.Status = domain.OrderStatusConfirmed

	repo.EXPECT().UpdateOrder(gomock.Any(), workspaceID, good.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(good); err != nil {
				return nil, err
			}
			return good, nil
		})
	repo.EXPECT().UpdateOrder(gomock.Any(), workspaceID, bad.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(bad); err != nil {
				return nil, err
			}
			return bad, nil
		})

	result, err := svc.BulkUpdateStatus(context.Background(), workspaceID, []port.StatusUpdate{
		{Number: good.Number, Status: domain.OrderStatusShipped},
		{Number: bad.Number, Status: domain.OrderStatusShipped},
	}, "ada")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, bad.Number, result.Failed[0].Number)
}

func TestService_BulkUpdateStatus_TooLarge(t *testing.T) {
	svc, _, _ := newTestService(t)

	updates := make([]port.StatusUpdate, 101)
	for i := range updates {
		updates[i] = port.StatusUpdate{Number: "ORD-X", Status: domain.OrderStatusShipped}
	}

	_, err := svc.BulkUpdateStatus(context.Background(), workspaceID, updates, "ada")
	assert.ErrorIs(t, err, domain.ErrBatchTooLarge)
}

func TestService_ArchiveOrder(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.Status = domain.OrderStatusDelivered

	repo.EXPECT().UpdateOrder(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(order); err != nil {
				return nil, err
			}
			return order, nil
		})

	result, err := svc.ArchiveOrder(context.Background(), workspaceID, order.Number, "ada")
	require.NoError(t, err)
	assert.True(t, result.Archived)
	assert.NotNil(t, result.ArchivedAt)
}

func TestService_ArchiveOrder_NotTerminal(t *testing.T) {
	svc, repo, _ := newTestService(t)

	order := testOrder()
	order.Status = domain.OrderStatusProcessing

	repo.EXPECT().UpdateOrder(gomock.Any(), workspaceID, order.Number, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uint64, _ domain.OrderNumber, fn port.UpdateOrderFn) (*domain.Order, error) {
			if err := fn(order); err != nil {
				return nil, err
			}
			return order, nil
		})

	_, err := svc.ArchiveOrder(context.Background(), workspaceID, order.Number, "ada")
	assert.ErrorIs(t, err, domain.ErrOrderNotArchivable)
}

func TestService_ValidateDiscountCode_NotFound(t *testing.T) {
	svc, repo, _ := newTestService(t)

	repo.EXPECT().GetDiscountByCode(gomock.Any(), workspaceID, "GHOST").Return(nil, domain.ErrDiscountNotFound)

	v, err := svc.ValidateDiscountCode(context.Background(), workspaceID, "GHOST", nil, nil)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, service.ReasonNotFound, v.Reason)
}
