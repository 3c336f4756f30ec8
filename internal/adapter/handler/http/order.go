package http

import (
	"strconv"

	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/corepay/usdtgate/internal/core/port"
	"github.com/corepay/usdtgate/internal/core/utils"
	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	service   port.PaymentService
	apiSecret string
}

func NewOrderHandler(service port.PaymentService, apiSecret string, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler:   *NewHandler(logger),
		service:   service,
		apiSecret: apiSecret,
	}, nil
}

type createTransactionRequest struct {
	OrderID     string  `json:"order_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Currency    string  `json:"currency"`
	NotifyURL   string  `json:"notify_url"`
	RedirectURL string  `json:"redirect_url"`
	Signature   string  `json:"signature" binding:"required"`
}

func (r *createTransactionRequest) signedParams() map[string]string {
	return map[string]string{
		"order_id":     r.OrderID,
		"amount":       strconv.FormatFloat(r.Amount, 'f', -1, 64),
		"currency":     r.Currency,
		"notify_url":   r.NotifyURL,
		"redirect_url": r.RedirectURL,
	}
}

type createTransactionResponse struct {
	TradeID        string      `json:"trade_id"`
	OrderID        string      `json:"order_id"`
	Amount         jsonDecimal `json:"amount"`
	ActualAmount   jsonDecimal `json:"actual_amount"`
	Token          string      `json:"token"`
	ExpirationTime int64       `json:"expiration_time"`
	PaymentURL     string      `json:"payment_url"`
}

// CreateTransaction godoc
//
//	@Summary	Create a payment transaction for a merchant order
//	@Accept		json
//	@Produce	json
//	@Param		request	body	createTransactionRequest	true	"Signed order"
//	@Success	200	{object}	response
//	@Router		/api/v1/order/create-transaction [post]
func (oh *OrderHandler) CreateTransaction(ctx *gin.Context) {
	var req createTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	if !utils.VerifySign(req.signedParams(), req.Signature, oh.apiSecret) {
		oh.handleError(ctx, domain.ErrInvalidSignature)
		return
	}

	amount, err := decimal.NewFromFloat64(req.Amount)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	receipt, err := oh.service.CreateOrder(ctx, &domain.CreateOrderRequest{
		OrderID:     req.OrderID,
		Amount:      amount,
		Currency:    req.Currency,
		NotifyURL:   req.NotifyURL,
		RedirectURL: req.RedirectURL,
	})
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, createTransactionResponse{
		TradeID:        receipt.TradeID,
		OrderID:        receipt.OrderID,
		Amount:         jsonDecimal(receipt.Amount),
		ActualAmount:   jsonDecimal(receipt.ActualAmount),
		Token:          receipt.Wallet,
		ExpirationTime: receipt.ExpiresAt.UnixMilli(),
		PaymentURL:     receipt.PaymentURL,
	})
}
