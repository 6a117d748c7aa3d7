package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/veliashev/shopcore/internal/core/domain"
	"github.com/veliashev/shopcore/internal/core/service"
	"go.uber.org/zap"
)

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// handleError translates a service error into a status code; business
// rejections carry a machine-readable body where one exists.
func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode, known := statusForError(err)
	if !known {
		h.logger.Error("error processing request", zap.Error(err))
		ctx.Status(statusCode)
		return
	}

	var stockErr *domain.StockUnavailableError
	if errors.As(err, &stockErr) {
		ctx.JSON(statusCode, stockShortageResponse(stockErr))
		return
	}
	var rejected *service.DiscountRejectedError
	if errors.As(err, &rejected) {
		ctx.JSON(statusCode, gin.H{"error": "discount rejected", "code": rejected.Code, "reason": rejected.Reason})
		return
	}
	var transition *domain.TransitionError
	if errors.As(err, &transition) {
		ctx.JSON(statusCode, gin.H{"error": "invalid transition", "from": transition.From, "to": transition.To})
		return
	}
	ctx.JSON(statusCode, errorResponse{Error: err.Error()})
}

func stockShortageResponse(e *domain.StockUnavailableError) gin.H {
	items := make([]gin.H, 0, len(e.Items))
	for _, s := range e.Items {
		items = append(items, gin.H{
			"variant_id":  s.VariantID,
			"location_id": s.LocationID,
			"requested":   s.Requested,
			"available":   s.Available,
		})
	}
	return gin.H{"error": "insufficient stock", "items": items}
}

// handleSuccess sends a success response with the specified status code and optional data
func (h *Handler) handleSuccessWithStatus(ctx *gin.Context, data any, status int) {
	if data != nil {
		ctx.JSON(status, data)
	} else {
		ctx.Status(status)
	}
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	h.handleSuccessWithStatus(ctx, data, http.StatusOK)
}

func workspaceParam(ctx *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("workspace"), 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: "workspace", Msg: "must be a number"}
	}
	return id, nil
}

func orderNumberParam(ctx *gin.Context) domain.OrderNumber {
	return domain.OrderNumber(ctx.Param("number"))
}
