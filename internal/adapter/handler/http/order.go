package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"github.com/veliashev/shopcore/internal/core/discount"
	"github.com/veliashev/shopcore/internal/core/domain"
	"github.com/veliashev/shopcore/internal/core/port"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service port.OrderService
}

func NewOrderHandler(service port.OrderService, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type createOrderItemReq struct {
	VariantID uint64 `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type createOrderReq struct {
	CustomerID    uint64               `json:"customer_id" binding:"required"`
	LocationID    uint64               `json:"location_id" binding:"required"`
	Source        string               `json:"source"`
	PaymentMethod string               `json:"payment_method"`
	Currency      string               `json:"currency" binding:"required"`
	Region        string               `json:"region"`
	Address       string               `json:"address"`
	ShippingCost  *string              `json:"shipping_cost"`
	TaxAmount     string               `json:"tax_amount"`
	DiscountCode  string               `json:"discount_code"`
	Items         []createOrderItemReq `json:"items" binding:"required"`
}

func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	workspaceID, err := workspaceParam(ctx)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	var req createOrderReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	in := port.CreateOrderInput{
		WorkspaceID:   workspaceID,
		CustomerID:    req.CustomerID,
		LocationID:    req.LocationID,
		Source:        req.Source,
		PaymentMethod: req.PaymentMethod,
		Currency:      req.Currency,
		Shipping:      port.ShippingInfo{Region: req.Region, Address: req.Address},
		DiscountCode:  req.DiscountCode,
		Actor:         getAuthPayload(ctx).Login,
	}
	if req.ShippingCost != nil {
		cost, err := decimal.Parse(*req.ShippingCost)
		if err != nil {
			oh.handleValidationError(ctx, &domain.ValidationError{Field: "shipping_cost", Msg: "must be a decimal"})
			return
		}
		in.ShippingCost = &cost
	}
	if req.TaxAmount != "" {
		tax, err := decimal.Parse(req.TaxAmount)
		if err != nil {
			oh.handleValidationError(ctx, &domain.ValidationError{Field: "tax_amount", Msg: "must be a decimal"})
			return
		}
		in.TaxAmount = tax
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, port.CreateOrderItem{VariantID: item.VariantID, Quantity: item.Quantity})
	}

	order, err := oh.service.CreateOrder(ctx, in)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccessWithStatus(ctx, newOrderResp(order), http.StatusCreated)
}

type orderItemResp struct {
	ProductID *uint64  `json:"product_id,omitempty"`
	VariantID *uint64  `json:"variant_id,omitempty"`
	Quantity  int      `json:"quantity"`
	UnitPrice string   `json:"unit_price"`
	Name      string   `json:"name"`
	SKU       string   `json:"sku"`
	Category  string   `json:"category,omitempty"`
	Images    []string `json:"images,omitempty"`
}

type orderResp struct {
	Number         string          `json:"number"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	Source         string          `json:"source,omitempty"`
	CustomerID     *uint64         `json:"customer_id,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"`
	Subtotal       string          `json:"subtotal"`
	ShippingCost   string          `json:"shipping_cost"`
	TaxAmount      string          `json:"tax_amount"`
	DiscountAmount string          `json:"discount_amount"`
	TotalAmount    string          `json:"total_amount"`
	Currency       string          `json:"currency"`
	DiscountCode   string          `json:"discount_code,omitempty"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
	Archived       bool            `json:"archived"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []orderItemResp `json:"items"`
}

func newOrderResp(o *domain.Order) orderResp {
	resp := orderResp{
		Number:         string(o.Number),
		Status:         string(o.Status),
		PaymentStatus:  string(o.PaymentStatus),
		PaymentMethod:  o.PaymentMethod,
		Source:         o.Source,
		CustomerID:     o.CustomerID,
		CustomerName:   o.Customer.Name,
		Subtotal:       o.Subtotal.String(),
		ShippingCost:   o.ShippingCost.String(),
		TaxAmount:      o.TaxAmount.String(),
		DiscountAmount: o.DiscountAmount.String(),
		TotalAmount:    o.TotalAmount.String(),
		Currency:       o.Currency,
		DiscountCode:   o.DiscountCode,
		TrackingNumber: o.TrackingNumber,
		CancelReason:   o.CancelReason,
		Archived:       o.Archived,
		PaidAt:         o.PaidAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResp{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
			Name:      item.Snapshot.Name,
			SKU:       item.Snapshot.SKU,
			Category:  item.Snapshot.Category,
			Images:    item.Snapshot.Images,
		})
	}
	return resp
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	workspaceID, err := workspaceParam(ctx)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.GetOrder(ctx, workspaceID, orderNumberParam(ctx))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderResp(order))
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (oh *OrderHandler) UpdateStatus(ctx *gin.Context) {
	workspaceID, err := workspaceParam(ctx)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	var req updateStatusReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}
	status := domain.OrderStatus(req.Status)
	if !status.Valid() {
		oh.handleValidationError(ctx, &domain.ValidationError{Field: "status", Msg: "unknown status"})
		return
	}

	order, err := oh.service.UpdateOrderStatus(ctx, workspaceID, orderNumberParam(ctx), status, getAuthPayload(ctx).Login)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderResp(order))
}

type cancelOrderReq struct {
	Reason string `json:"reason"`
}

func (oh *OrderHandler) CancelOrder(ctx *gin.Context) {
	workspaceID, err := workspaceParam(ctx)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	var req cancelOrderReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.CancelOrder(ctx, workspaceID, orderNumberParam(ctx), req.Reason, getAuthPayload(ctx).Login)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderResp(order))
}

func (oh *OrderHandler) ConfirmPayment(ctx *gin.Context) {
	workspaceID, err := workspaceParam(ctx)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.MarkOrderPaid(ctx, workspaceID, orderNumberParam(ctx), getAuthPayload(ctx).Login)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderResp(order))
}

type bulkStatusReq struct {
	Status string   `json:"status" binding:"required"`
	Orders []string `json:"orders" binding:"required"`
}

type bulkStatusResp struct {
	SuccessCount int               `json:"success_count"`
	Failed       []bulkFailureResp `json:"failed,omitempty"`
}

type bulkFailureResp struct {
	Number string `json:"number"`
	Reason string `json:"reason"`
}

func (oh *OrderHandler) BulkUpdateStatus(ctx *gin.Context) {
	workspaceID, err := workspaceParam(ctx)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	var req bulkStatusReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}
	status := domain.OrderStatus(req.Status)
	if !status.Valid() {
		oh.handleValidationError(ctx, &domain.ValidationError{Field: "status", Msg: "unknown status"})
		return
	}

	updates := make([]port.StatusUpdate, 0, len(req.Orders))
	for _, number := range req.Orders {
		updates = append(updates, port.StatusUpdate{Number: domain.OrderNumber(number), Status: status})
	}

	result, err := oh.service.BulkUpdateStatus(ctx, workspaceID, updates, getAuthPayload(ctx).Login)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	resp := bulkStatusResp{SuccessCount: result.SuccessCount}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, bulkFailureResp{Number: string(f.Number), Reason: f.Reason})
	}
	oh.handleSuccess(ctx, resp)
}

func (oh *OrderHandler) ArchiveOrder(ctx *gin.Context) {
	workspaceID, err := workspaceParam(ctx)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.ArchiveOrder(ctx, workspaceID, orderNumberParam(ctx), getAuthPayload(ctx).Login)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderResp(order))
}

func (oh *OrderHandler) UnarchiveOrder(ctx *gin.Context) {
	workspaceID, err := workspaceParam(ctx)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	order, err := oh.service.UnarchiveOrder(ctx, workspaceID, orderNumberParam(ctx), getAuthPayload(ctx).Login)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, newOrderResp(order))
}

type historyEntryResp struct {
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (oh *OrderHandler) OrderTimeline(ctx *gin.Context) {
	workspaceID, err := workspaceParam(ctx)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	list, err := oh.service.OrderTimeline(ctx, workspaceID, orderNumberParam(ctx))
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	result := make([]historyEntryResp, 0, len(list))
	for _, e := range list {
		result = append(result, historyEntryResp{
			Action:    string(e.Action),
			Details:   e.Details,
			Actor:     e.Actor,
			CreatedAt: e.CreatedAt,
		})
	}
	oh.handleSuccess(ctx, result)
}

type validateCodeLineReq struct {
	ProductID uint64 `json:"product_id"`
	VariantID uint64 `json:"variant_id"`
	Quantity  int    `json:"quantity" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

type validateCodeReq struct {
	Code       string                `json:"code" binding:"required"`
	CustomerID *uint64               `json:"customer_id"`
	Currency   string                `json:"currency"`
	Lines      []validateCodeLineReq `json:"lines"`
}

type validateCodeResp struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func (oh *OrderHandler) ValidateDiscountCode(ctx *gin.Context) {
	workspaceID, err := workspaceParam(ctx)
	if err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	var req validateCodeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, err)
		return
	}

	cart := discount.Cart{Currency: req.Currency}
	for _, line := range req.Lines {
		price, err := decimal.Parse(line.UnitPrice)
		if err != nil {
			oh.handleValidationError(ctx, &domain.ValidationError{Field: "unit_price", Msg: "must be a decimal"})
			return
		}
		cart.Lines = append(cart.Lines, discount.Line{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: price,
		})
	}

	v, err := oh.service.ValidateDiscountCode(ctx, workspaceID, req.Code, req.CustomerID, &cart)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}
	oh.handleSuccess(ctx, validateCodeResp{Valid: v.Valid, Reason: string(v.Reason)})
}
