// internal/app/router.go
package app

import (
	billingHandler "lsa-service/internal/handlers/billing"
	decisionHandler "lsa-service/internal/handlers/decision"
	offboardingHandler "lsa-service/internal/handlers/offboarding"
	wsHandler "lsa-service/internal/handlers/websocket"
	"lsa-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	PaymentHandler     *billingHandler.PaymentHandler
	OffboardingHandler *offboardingHandler.OffboardingHandler
	DecisionHandler    *decisionHandler.DecisionHandler
	WSHandler          *wsHandler.WSHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.Serve)

	// ==================== Subscription Plans ====================
	// Public: the pricing page renders before login.
	plans := api.Group("/plans")
	{
		plans.GET("", h.PaymentHandler.GetPlans)
		plans.GET("/:id", h.PaymentHandler.GetPlan)
	}

	// ==================== Billing ====================
	billing := api.Group("/billing")
	billing.Use(h.AuthMiddleware.Auth())
	{
		billing.GET("/status", h.PaymentHandler.GetStatus)
		billing.GET("/payments", h.PaymentHandler.ListPayments)
		billing.POST("/payments", h.PaymentHandler.SubmitPayment)
	}

	// ==================== Staff & Offboarding ====================
	staff := api.Group("/staff")
	staff.Use(h.AuthMiddleware.Auth())
	{
		staff.GET("", h.OffboardingHandler.ListStaff)
		staff.GET("/:id", h.OffboardingHandler.GetStaff)

		staff.POST("/:id/offboarding", h.OffboardingHandler.OpenRequest)
		staff.GET("/:id/offboarding", h.OffboardingHandler.GetWizard)
		staff.DELETE("/:id/offboarding", h.OffboardingHandler.Dismiss)
		staff.PUT("/:id/offboarding/reason", h.OffboardingHandler.SetReason)
		staff.PUT("/:id/offboarding/details", h.OffboardingHandler.SetDetails)
		staff.POST("/:id/offboarding/navigate", h.OffboardingHandler.Navigate)
		staff.POST("/:id/offboarding/progress", h.OffboardingHandler.Progress)
	}

	offboarding := api.Group("/offboarding")
	offboarding.Use(h.AuthMiddleware.Auth())
	{
		offboarding.GET("", h.OffboardingHandler.ListRequests)
		offboarding.POST("/:reference/withdraw", h.OffboardingHandler.Withdraw)
	}

	// ==================== Association Review ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		admin.GET("/payments/pending", h.DecisionHandler.ListPendingPayments)
		admin.PUT("/payments/:id/decision", h.DecisionHandler.DecidePayment)
		admin.GET("/offboarding/submitted", h.DecisionHandler.ListSubmittedOffboarding)
		admin.PUT("/offboarding/:reference/decision", h.DecisionHandler.DecideOffboarding)
	}
}
