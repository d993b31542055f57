package main

import (
	"github.com/gin-gonic/gin"
	"lottery-ledger.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	webhookHandler     *handlers.WebhookHandler
	paymentHandler     *handlers.PaymentHandler
	planHandler        *handlers.PlanHandler
	ticketHandler      *handlers.TicketHandler
	walletHandler      *handlers.WalletHandler
	authMiddleware     gin.HandlerFunc
	adminMiddleware    gin.HandlerFunc
	idempotency        gin.HandlerFunc
	enableTestTriggers bool
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Gateway callbacks (signature checked, no JWT)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/payments", d.webhookHandler.HandlePaymentNotification)
			if d.enableTestTriggers {
				webhooks.POST("/payments/test", d.webhookHandler.TriggerSettlement)
			}
		}

		// Everything below requires a bearer token
		authed := v1.Group("")
		authed.Use(d.authMiddleware)
		{
			authed.POST("/deposits", d.idempotency, d.paymentHandler.CreateDeposit)
			authed.GET("/deposits/quote", d.paymentHandler.QuoteDeposit)
			authed.POST("/deposits/:reference/retry", d.idempotency, d.paymentHandler.RetryDeposit)
			authed.POST("/withdrawals", d.idempotency, d.paymentHandler.CreateWithdrawal)
			authed.GET("/transactions", d.paymentHandler.ListTransactions)

			authed.POST("/plans/:id/purchase", d.idempotency, d.planHandler.PurchasePlan)
			authed.POST("/plans/:id/purchase-with-wallet", d.idempotency, d.planHandler.PurchasePlanWithWallet)
			authed.GET("/user-plans", d.planHandler.ListUserPlans)
			authed.POST("/user-plans/:id/cancel", d.planHandler.CancelUserPlan)

			authed.POST("/jackpots/:id/tickets", d.idempotency, d.ticketHandler.PurchaseTickets)
			authed.GET("/jackpots/:id/tickets", d.ticketHandler.ListTickets)

			authed.GET("/wallets", d.walletHandler.ListWallets)
		}

		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, d.adminMiddleware)
		{
			admin.POST("/user-plans/:id/verify", d.planHandler.VerifyUserPlan)
			admin.POST("/user-plans/:id/reject", d.planHandler.RejectUserPlan)
			admin.DELETE("/users/:id", d.walletHandler.EraseAccount)
		}
	}
}
