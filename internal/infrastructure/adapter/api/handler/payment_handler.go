package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	domainerr "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/usecase/payment"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// SignVerifier validates the signature the provider attaches to callbacks
type SignVerifier interface {
	VerifySign(params map[string]string, signature string) bool
}

// PaymentHandler handles top-up orders and the provider webhook
type PaymentHandler struct {
	payments *payment.Service
	verifier SignVerifier
	logger   coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(payments *payment.Service, verifier SignVerifier, logger coreport.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		verifier: verifier,
		logger:   logger,
	}
}

// CreateOrder handles the POST /payment/orders endpoint
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request body",
		})
		return
	}

	result, err := h.payments.CreateOrder(c.Request.Context(), req.AccountID, req.Cents)
	if err != nil {
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	resp := dto.CreateOrderResponse{
		OutTradeNo: result.Order.OutTradeNo,
		Amount:     entity.FormatAmount(result.Order.Amount),
		Status:     string(result.Order.Status),
		ExpireAt:   result.Order.ExpireAt.Format(time.RFC3339),
	}
	if result.Instructions != nil {
		resp.QRCodeURL = result.Instructions.QRCodeURL
		resp.PayURL = result.Instructions.PayURL
	}
	c.JSON(http.StatusCreated, resp)
}

// GetOrderStatus handles the GET /payment/orders/:outTradeNo endpoint.
// Polling drives reconciliation: each call aligns the local order with the
// gateway before answering.
func (h *PaymentHandler) GetOrderStatus(c *gin.Context) {
	outTradeNo := c.Param("outTradeNo")
	if outTradeNo == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Missing order reference",
		})
		return
	}

	view, err := h.payments.Reconcile(c.Request.Context(), outTradeNo)
	if err != nil {
		// Degrade to the local status when the gateway is unreachable
		if domainerr.IsGatewayError(err) {
			view, err = h.payments.OrderStatus(c.Request.Context(), outTradeNo)
		}
		if err != nil {
			c.JSON(httpStatus(err), dto.ErrorResponse{
				Code:    domainerr.ErrorCode(err),
				Message: err.Error(),
			})
			return
		}
	}

	resp := dto.OrderStatusResponse{
		OutTradeNo: view.OutTradeNo,
		Amount:     entity.FormatAmount(view.Amount),
		Status:     string(view.Status),
	}
	if view.Confirmed != nil {
		resp.TransactionID = view.Confirmed.TransactionID
		resp.Balance = entity.FormatAmount(view.Confirmed.Balance)
	}
	c.JSON(http.StatusOK, resp)
}

// Notify handles the POST /payment/notify webhook. The provider retries
// until it reads "success", so every acknowledged-but-not-credited outcome
// still answers success; only verification failures answer fail.
func (h *PaymentHandler) Notify(c *gin.Context) {
	params := map[string]string{
		"pid":          c.PostForm("pid"),
		"out_trade_no": c.PostForm("out_trade_no"),
		"money":        c.PostForm("money"),
		"trade_status": c.PostForm("trade_status"),
	}
	signature := c.PostForm("sign")
	outTradeNo := params["out_trade_no"]

	if !h.verifier.VerifySign(params, signature) {
		h.logger.Warn("Webhook rejected by signature check", map[string]any{
			"out_trade_no": outTradeNo,
		})
		c.String(http.StatusForbidden, "fail")
		return
	}

	if params["trade_status"] != "TRADE_SUCCESS" {
		c.String(http.StatusOK, "success")
		return
	}

	view, err := h.payments.OrderStatus(c.Request.Context(), outTradeNo)
	if err != nil {
		c.String(http.StatusOK, "fail")
		return
	}

	money, err := strconv.ParseInt(params["money"], 10, 64)
	if err != nil || money != view.Amount {
		h.logger.Warn("Webhook rejected by amount check", map[string]any{
			"out_trade_no": outTradeNo,
			"reported":     params["money"],
			"expected":     view.Amount,
		})
		c.String(http.StatusOK, "fail")
		return
	}

	if _, err := h.payments.ConfirmPayment(c.Request.Context(), outTradeNo); err != nil {
		if errors.Is(err, domainerr.ErrOrderNotPayable) {
			// Expired or already terminal, acknowledged without crediting
			c.String(http.StatusOK, "success")
			return
		}
		h.logger.Error("Webhook confirmation failed", map[string]any{
			"out_trade_no": outTradeNo,
			"error":        err.Error(),
		})
		c.String(http.StatusOK, "fail")
		return
	}

	c.String(http.StatusOK, "success")
}
