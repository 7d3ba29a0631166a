package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/arman-rahimi/credit-ledger/internal/domain/entity"
	domainerr "github.com/arman-rahimi/credit-ledger/internal/domain/error"
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/domain/usecase/account"
	"github.com/arman-rahimi/credit-ledger/internal/domain/usecase/query"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles account provisioning and ledger queries
type AccountHandler struct {
	accounts *account.Service
	queries  *query.Facade
	logger   coreport.Logger
}

// NewAccountHandler creates a new account handler instance
func NewAccountHandler(accounts *account.Service, queries *query.Facade, logger coreport.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		queries:  queries,
		logger:   logger,
	}
}

// parseID reads a uint64 path parameter, writing a 400 response on failure
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid " + name + " format",
		})
		return 0, false
	}
	return id, true
}

// Provision handles the POST /accounts endpoint
func (h *AccountHandler) Provision(c *gin.Context) {
	var req dto.ProvisionAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request body",
		})
		return
	}

	acc, err := h.accounts.Provision(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, dto.AccountResponse{
		AccountID: acc.ID,
		UserID:    acc.UserID,
		Balance:   entity.FormatAmount(acc.Balance()),
		Cents:     acc.Balance(),
	})
}

// GetBalance handles the GET /accounts/:accountId/balance endpoint
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountID, ok := parseID(c, "accountId")
	if !ok {
		return
	}

	balance, err := h.queries.Balance(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   entity.FormatAmount(balance),
		Cents:     balance,
	})
}

// ListTransactions handles the GET /accounts/:accountId/transactions endpoint
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	accountID, ok := parseID(c, "accountId")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result, err := h.queries.Transactions(c.Request.Context(), accountID, page, pageSize)
	if err != nil {
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	entries := make([]dto.TransactionResponse, 0, len(result.Entries))
	for _, tx := range result.Entries {
		entries = append(entries, dto.TransactionResponse{
			TransactionID: tx.ID,
			TaskID:        tx.TaskID,
			Category:      string(tx.Category),
			Amount:        entity.FormatAmount(tx.Amount),
			BalanceBefore: entity.FormatAmount(tx.BalanceBefore),
			BalanceAfter:  entity.FormatAmount(tx.BalanceAfter),
			CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, dto.TransactionPageResponse{
		Entries:  entries,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

// GetDailySummary handles the GET /accounts/:accountId/summary endpoint
func (h *AccountHandler) GetDailySummary(c *gin.Context) {
	accountID, ok := parseID(c, "accountId")
	if !ok {
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	rows, err := h.queries.DailySummary(c.Request.Context(), accountID, days)
	if err != nil {
		c.JSON(httpStatus(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	response := make([]dto.DailyTotalResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, dto.DailyTotalResponse{
			Day:      row.Day,
			Category: string(row.Category),
			Total:    entity.FormatAmount(row.Total),
			Count:    row.Count,
		})
	}
	c.JSON(http.StatusOK, response)
}
