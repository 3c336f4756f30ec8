package http

import (
	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/corepay/usdtgate/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PayHandler struct {
	Handler
	service port.PaymentService
}

func NewPayHandler(service port.PaymentService, logger *zap.Logger) (*PayHandler, error) {
	return &PayHandler{
		Handler: *NewHandler(logger),
		service: service,
	}, nil
}

type checkStatusResponse struct {
	TradeID      string      `json:"trade_id"`
	Status       string      `json:"status"`
	ActualAmount jsonDecimal `json:"actual_amount"`
}

// CheckStatus godoc
//
//	@Summary	Poll payment status for a trade
//	@Produce	json
//	@Param		trade_id	path	string	true	"Trade ID"
//	@Success	200	{object}	response
//	@Router		/pay/check-status/{trade_id} [get]
func (ph *PayHandler) CheckStatus(ctx *gin.Context) {
	tradeID := ctx.Param("trade_id")
	if tradeID == "" {
		ph.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	view, err := ph.service.OrderStatus(ctx, tradeID)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	ph.handleSuccess(ctx, checkStatusResponse{
		TradeID:      view.TradeID,
		Status:       string(view.Status),
		ActualAmount: jsonDecimal(view.ActualAmount),
	})
}

type checkoutCounterResponse struct {
	TradeID        string      `json:"trade_id"`
	ActualAmount   jsonDecimal `json:"actual_amount"`
	Token          string      `json:"token"`
	ExpirationTime int64       `json:"expiration_time"`
	RedirectURL    string      `json:"redirect_url"`
}

// CheckoutCounter godoc
//
//	@Summary	Checkout details for a pending trade
//	@Produce	json
//	@Param		trade_id	path	string	true	"Trade ID"
//	@Success	200	{object}	response
//	@Router		/pay/checkout-counter/{trade_id} [get]
func (ph *PayHandler) CheckoutCounter(ctx *gin.Context) {
	tradeID := ctx.Param("trade_id")
	if tradeID == "" {
		ph.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	view, err := ph.service.CheckoutDetails(ctx, tradeID)
	if err != nil {
		ph.handleError(ctx, err)
		return
	}

	ph.handleSuccess(ctx, checkoutCounterResponse{
		TradeID:        view.TradeID,
		ActualAmount:   jsonDecimal(view.ActualAmount),
		Token:          view.Wallet,
		ExpirationTime: view.ExpiresAt.UnixMilli(),
		RedirectURL:    view.RedirectURL,
	})
}
