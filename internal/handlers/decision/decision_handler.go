// internal/handlers/decision/decision_handler.go
package decision

import (
	"net/http"
	"strconv"

	offdomain "lsa-service/internal/domain/offboarding"
	"lsa-service/internal/pkg/response"
	billingservice "lsa-service/internal/service/billing"
	offservice "lsa-service/internal/service/offboarding"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DecisionHandler serves the association reviewer queues: pending bank
// transfers and submitted offboarding requests.
type DecisionHandler struct {
	payments    *billingservice.PaymentService
	offboarding *offservice.OffboardingService
	logger      *zap.Logger
}

func NewDecisionHandler(payments *billingservice.PaymentService, offboarding *offservice.OffboardingService, logger *zap.Logger) *DecisionHandler {
	return &DecisionHandler{payments: payments, offboarding: offboarding, logger: logger}
}

// ListPendingPayments handles GET /admin/payments/pending
func (h *DecisionHandler) ListPendingPayments(c *gin.Context) {
	views, err := h.payments.ListPendingBankTransfers(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list pending payments", err)
		return
	}
	response.Success(c, http.StatusOK, "pending payments retrieved", views)
}

// DecidePayment handles PUT /admin/payments/:id/decision
func (h *DecisionHandler) DecidePayment(c *gin.Context) {
	attemptID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid attempt id", err)
		return
	}

	var req offdomain.DecisionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.payments.HandleBankTransferDecision(c.Request.Context(), attemptID, req.Approve); err != nil {
		response.FromError(c, "failed to record decision", err)
		return
	}
	response.Success(c, http.StatusOK, "decision recorded", nil)
}

// ListSubmittedOffboarding handles GET /admin/offboarding/submitted
func (h *DecisionHandler) ListSubmittedOffboarding(c *gin.Context) {
	views, err := h.offboarding.ListSubmitted(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list submitted requests", err)
		return
	}
	response.Success(c, http.StatusOK, "submitted requests retrieved", views)
}

// DecideOffboarding handles PUT /admin/offboarding/:reference/decision
func (h *DecisionHandler) DecideOffboarding(c *gin.Context) {
	var req offdomain.DecisionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	view, err := h.offboarding.Decide(c.Request.Context(), c.Param("reference"), req.Approve)
	if err != nil {
		response.FromError(c, "failed to record decision", err)
		return
	}
	response.Success(c, http.StatusOK, "decision recorded", view)
}
