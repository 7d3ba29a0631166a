package routes

import (
	coreport "github.com/arman-rahimi/credit-ledger/internal/domain/port/core"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/arman-rahimi/credit-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	accountHandler *handler.AccountHandler,
	billingHandler *handler.BillingHandler,
	paymentHandler *handler.PaymentHandler,
) {
	// Account routes
	accountRoutes := router.Group("/accounts")
	{
		// POST /accounts
		accountRoutes.POST("", accountHandler.Provision)

		// GET /accounts/:accountId/balance
		accountRoutes.GET("/:accountId/balance", accountHandler.GetBalance)

		// GET /accounts/:accountId/transactions
		accountRoutes.GET("/:accountId/transactions", accountHandler.ListTransactions)

		// GET /accounts/:accountId/summary
		accountRoutes.GET("/:accountId/summary", accountHandler.GetDailySummary)

		// POST /accounts/:accountId/tasks
		accountRoutes.POST("/:accountId/tasks", billingHandler.ChargeTask)

		// POST /accounts/:accountId/analysis
		accountRoutes.POST("/:accountId/analysis", billingHandler.ChargeAnalysis)
	}

	// Billing routes
	billingRoutes := router.Group("/billing")
	{
		// POST /billing/refunds
		billingRoutes.POST("/refunds", billingHandler.RefundTask)
	}

	// Payment routes
	paymentRoutes := router.Group("/payment")
	{
		// POST /payment/orders
		paymentRoutes.POST("/orders", paymentHandler.CreateOrder)

		// GET /payment/orders/:outTradeNo
		paymentRoutes.GET("/orders/:outTradeNo", paymentHandler.GetOrderStatus)

		// POST /payment/notify
		paymentRoutes.POST("/notify", paymentHandler.Notify)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
}
