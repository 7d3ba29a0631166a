package handler

import (
	"net/http"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	domainerr "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/usecase/billing"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// BillingHandler handles task charging and refunds
type BillingHandler struct {
	billing *billing.Service
	logger  coreport.Logger
}

// NewBillingHandler creates a new billing handler instance
func NewBillingHandler(billingService *billing.Service, logger coreport.Logger) *BillingHandler {
	return &BillingHandler{
		billing: billingService,
		logger:  logger,
	}
}

// ChargeTask handles the POST /accounts/:accountId/tasks endpoint
func (h *BillingHandler) ChargeTask(c *gin.Context) {
	accountID, ok := parseID(c, "accountId")
	if !ok {
		return
	}

	var req dto.ChargeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request body",
		})
		return
	}

	result, err := h.billing.ChargeForTask(c.Request.Context(), accountID, billing.ChargeRequest{
		TaskType:    req.TaskType,
		ImageNumber: req.ImageNumber,
		Payload:     req.Payload,
	})
	if err != nil {
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, dto.ChargeTaskResponse{
		TaskID:        result.TaskID,
		TransactionID: result.TransactionID,
		Amount:        entity.FormatAmount(result.Amount),
		Balance:       entity.FormatAmount(result.Balance),
	})
}

// ChargeAnalysis handles the POST /accounts/:accountId/analysis endpoint
func (h *BillingHandler) ChargeAnalysis(c *gin.Context) {
	accountID, ok := parseID(c, "accountId")
	if !ok {
		return
	}

	var req dto.AnalysisChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request body",
		})
		return
	}

	result, err := h.billing.ChargeForAnalysis(c.Request.Context(), accountID, req.ImageNumber)
	if err != nil {
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, dto.AnalysisChargeResponse{
		TransactionID: result.TransactionID,
		Amount:        entity.FormatAmount(result.Amount),
		Balance:       entity.FormatAmount(result.Balance),
	})
}

// RefundTask handles the POST /billing/refunds endpoint
func (h *BillingHandler) RefundTask(c *gin.Context) {
	var req dto.RefundTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request body",
		})
		return
	}

	result, err := h.billing.RefundTask(c.Request.Context(), req.TaskID, req.Reason)
	if err != nil {
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.RefundTaskResponse{
		TransactionID: result.TransactionID,
		Amount:        entity.FormatAmount(result.Amount),
		Balance:       entity.FormatAmount(result.Balance),
	})
}
