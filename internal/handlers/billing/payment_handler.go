// internal/handlers/billing/payment_handler.go
package billing

import (
	"net/http"

	billingdomain "lsa-service/internal/domain/billing"
	"lsa-service/internal/middleware"
	"lsa-service/internal/pkg/response"
	billingservice "lsa-service/internal/service/billing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service *billingservice.PaymentService
	logger  *zap.Logger
}

func NewPaymentHandler(service *billingservice.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, logger: logger}
}

// GetPlans handles GET /plans
func (h *PaymentHandler) GetPlans(c *gin.Context) {
	response.Success(c, http.StatusOK, "plans retrieved", h.service.Plans())
}

// GetPlan handles GET /plans/:id
func (h *PaymentHandler) GetPlan(c *gin.Context) {
	plan, err := h.service.Plan(c.Param("id"))
	if err != nil {
		response.FromError(c, "plan not found", err)
		return
	}
	response.Success(c, http.StatusOK, "plan retrieved", plan)
}

// GetStatus handles GET /billing/status
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)

	status, err := h.service.PaymentStatus(c.Request.Context(), spaID)
	if err != nil {
		h.logger.Error("failed to load payment status", zap.Int64("spa_id", spaID), zap.Error(err))
		response.FromError(c, "failed to load payment status", err)
		return
	}
	response.Success(c, http.StatusOK, "payment status retrieved", status)
}

// SubmitPayment handles POST /billing/payments
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)

	var req billingdomain.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	attempt, err := h.service.Submit(c.Request.Context(), spaID, &req)
	if err != nil {
		response.FromError(c, "payment submission failed", err)
		return
	}

	var data any
	if attempt != nil {
		view := billingdomain.NewPaymentAttemptView(attempt)
		data = view
	}
	response.Success(c, http.StatusCreated, "payment submitted", data)
}

// ListPayments handles GET /billing/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)

	attempts, err := h.service.ListAttempts(c.Request.Context(), spaID)
	if err != nil {
		response.FromError(c, "failed to list payments", err)
		return
	}
	response.Success(c, http.StatusOK, "payments retrieved", attempts)
}
