package http

import (
	"fmt"
	"net/http"

	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:        http.StatusInternalServerError,
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrConflictingData: http.StatusConflict,

	domain.ErrInvalidSignature: http.StatusUnauthorized,

	domain.ErrNoUpdatedData: http.StatusBadRequest,
	domain.ErrBadRequest:    http.StatusBadRequest,

	domain.ErrOrderExists:       http.StatusConflict,
	domain.ErrRateUnavailable:   http.StatusBadGateway,
	domain.ErrAmountTooSmall:    http.StatusUnprocessableEntity,
	domain.ErrNoWalletAvailable: http.StatusServiceUnavailable,
	domain.ErrNoAvailableAmount: http.StatusServiceUnavailable,
	domain.ErrOrderNotPending:   http.StatusGone,
}

// Application-level codes carried in the response envelope, kept apart
// from HTTP statuses so merchant integrations can dispatch on them.
var errorCodeMap = map[error]int{
	domain.ErrInvalidSignature:  10001,
	domain.ErrOrderExists:       10002,
	domain.ErrRateUnavailable:   10003,
	domain.ErrAmountTooSmall:    10004,
	domain.ErrNoWalletAvailable: 10005,
	domain.ErrNoAvailableAmount: 10006,
	domain.ErrOrderNotPending:   10007,
	domain.ErrDataNotFound:      10404,
}

type response struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	RequestID  string `json:"request_id"`
}

type jsonDecimal decimal.Decimal

func (j jsonDecimal) MarshalJSON() ([]byte, error) {
	s := fmt.Sprintf("%f", decimal.Decimal(j))
	return []byte(s), nil
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, response{
		StatusCode: http.StatusBadRequest,
		Message:    err.Error(),
		RequestID:  uuid.NewString(),
	})
}

func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode, ok := errorStatusMap[err]
	if !ok {
		statusCode = http.StatusInternalServerError
		h.logger.Error("error processing request", zap.Error(err))
	}
	code, ok := errorCodeMap[err]
	if !ok {
		code = statusCode
	}
	ctx.JSON(statusCode, response{
		StatusCode: code,
		Message:    err.Error(),
		RequestID:  uuid.NewString(),
	})
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusOK, response{
		StatusCode: http.StatusOK,
		Message:    "success",
		Data:       data,
		RequestID:  uuid.NewString(),
	})
}
