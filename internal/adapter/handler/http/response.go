package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/veliashev/shopcore/internal/core/domain"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:        http.StatusInternalServerError,
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrConflictingData: http.StatusConflict,

	domain.ErrUnauthorized:               http.StatusUnauthorized,
	domain.ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationType:   http.StatusUnauthorized,
	domain.ErrInvalidToken:               http.StatusUnauthorized,
	domain.ErrForbidden:                  http.StatusForbidden,

	domain.ErrBadRequest: http.StatusBadRequest,

	domain.ErrOrderNotFound:    http.StatusNotFound,
	domain.ErrCustomerNotFound: http.StatusNotFound,
	domain.ErrProductNotFound:  http.StatusNotFound,
	domain.ErrDiscountNotFound: http.StatusNotFound,
	domain.ErrStockNotFound:    http.StatusNotFound,

	domain.ErrInsufficientStock:      http.StatusConflict,
	domain.ErrInvalidTransition:      http.StatusUnprocessableEntity,
	domain.ErrDiscountUsageExceeded:  http.StatusUnprocessableEntity,
	domain.ErrDiscountNotQualified:   http.StatusUnprocessableEntity,
	domain.ErrDiscountNotApplicable:  http.StatusUnprocessableEntity,
	domain.ErrRuleKindNotImplemented: http.StatusNotImplemented,
	domain.ErrOrderNotCancellable:    http.StatusUnprocessableEntity,
	domain.ErrOrderNotArchivable:     http.StatusUnprocessableEntity,
	domain.ErrOrderNotArchived:       http.StatusUnprocessableEntity,
	domain.ErrPaymentNotPending:      http.StatusUnprocessableEntity,
	domain.ErrBatchTooLarge:          http.StatusRequestEntityTooLarge,
	domain.ErrNegativeAmount:         http.StatusUnprocessableEntity,
}

// statusForError resolves wrapped errors too: a *StockUnavailableError
// maps through ErrInsufficientStock, a validation error through
// ErrBadRequest.
func statusForError(err error) (int, bool) {
	if code, ok := errorStatusMap[err]; ok {
		return code, true
	}
	for sentinel, code := range errorStatusMap {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return http.StatusInternalServerError, false
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleAbort sends an error response and aborts the request with the specified status code and error message
func handleAbort(ctx *gin.Context, err error) {
	statusCode, _ := statusForError(err)
	_ = ctx.AbortWithError(statusCode, err)
}
