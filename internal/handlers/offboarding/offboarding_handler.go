// internal/handlers/offboarding/offboarding_handler.go
package offboarding

import (
	"net/http"
	"strconv"

	offdomain "lsa-service/internal/domain/offboarding"
	"lsa-service/internal/middleware"
	"lsa-service/internal/pkg/response"
	offservice "lsa-service/internal/service/offboarding"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OffboardingHandler struct {
	service *offservice.OffboardingService
	logger  *zap.Logger
}

func NewOffboardingHandler(service *offservice.OffboardingService, logger *zap.Logger) *OffboardingHandler {
	return &OffboardingHandler{service: service, logger: logger}
}

func staffIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid staff id", err)
		return 0, false
	}
	return id, true
}

// ListStaff handles GET /staff
func (h *OffboardingHandler) ListStaff(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)

	views, err := h.service.ListStaff(c.Request.Context(), spaID, c.Query("search"))
	if err != nil {
		response.FromError(c, "failed to list staff", err)
		return
	}
	response.Success(c, http.StatusOK, "staff retrieved", views)
}

// GetStaff handles GET /staff/:id
func (h *OffboardingHandler) GetStaff(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)
	staffID, ok := staffIDParam(c)
	if !ok {
		return
	}

	view, err := h.service.GetStaff(c.Request.Context(), spaID, staffID)
	if err != nil {
		response.FromError(c, "staff member not found", err)
		return
	}
	response.Success(c, http.StatusOK, "staff member retrieved", view)
}

// OpenRequest handles POST /staff/:id/offboarding
func (h *OffboardingHandler) OpenRequest(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)
	staffID, ok := staffIDParam(c)
	if !ok {
		return
	}

	var req offdomain.OpenRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	view, err := h.service.OpenRequest(c.Request.Context(), spaID, staffID, req.Kind)
	if err != nil {
		response.FromError(c, "failed to open offboarding request", err)
		return
	}
	response.Success(c, http.StatusCreated, "offboarding wizard opened", view)
}

// GetWizard handles GET /staff/:id/offboarding
func (h *OffboardingHandler) GetWizard(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)
	staffID, ok := staffIDParam(c)
	if !ok {
		return
	}

	view, err := h.service.GetWizard(c.Request.Context(), spaID, staffID)
	if err != nil {
		response.FromError(c, "no offboarding wizard in progress", err)
		return
	}
	response.Success(c, http.StatusOK, "offboarding wizard retrieved", view)
}

// SetReason handles PUT /staff/:id/offboarding/reason
func (h *OffboardingHandler) SetReason(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)
	staffID, ok := staffIDParam(c)
	if !ok {
		return
	}

	var req offdomain.SetReasonPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	view, err := h.service.SetReason(c.Request.Context(), spaID, staffID, req.ReasonCategory)
	if err != nil {
		response.FromError(c, "failed to set reason", err)
		return
	}
	response.Success(c, http.StatusOK, "reason recorded", view)
}

// SetDetails handles PUT /staff/:id/offboarding/details
func (h *OffboardingHandler) SetDetails(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)
	staffID, ok := staffIDParam(c)
	if !ok {
		return
	}

	var req offdomain.SetDetailsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	view, err := h.service.SetDetails(c.Request.Context(), spaID, staffID, req.EffectiveDate, req.Notes)
	if err != nil {
		response.FromError(c, "failed to set details", err)
		return
	}
	response.Success(c, http.StatusOK, "details recorded", view)
}

// Navigate handles POST /staff/:id/offboarding/navigate
func (h *OffboardingHandler) Navigate(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)
	staffID, ok := staffIDParam(c)
	if !ok {
		return
	}

	var req offdomain.NavigatePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	view, err := h.service.Navigate(c.Request.Context(), spaID, staffID, req.Direction)
	if err != nil {
		response.FromError(c, "failed to navigate", err)
		return
	}
	response.Success(c, http.StatusOK, "wizard moved", view)
}

// Progress handles POST /staff/:id/offboarding/progress
func (h *OffboardingHandler) Progress(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)
	staffID, ok := staffIDParam(c)
	if !ok {
		return
	}

	var req offdomain.ProgressPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	view, err := h.service.Progress(c.Request.Context(), spaID, staffID, req.Progress)
	if err != nil {
		response.FromError(c, "failed to record progress", err)
		return
	}
	response.Success(c, http.StatusOK, "progress recorded", view)
}

// Dismiss handles DELETE /staff/:id/offboarding
func (h *OffboardingHandler) Dismiss(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)
	staffID, ok := staffIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Dismiss(c.Request.Context(), spaID, staffID); err != nil {
		response.FromError(c, "failed to dismiss wizard", err)
		return
	}
	response.Success(c, http.StatusOK, "wizard dismissed", nil)
}

// Withdraw handles POST /offboarding/:reference/withdraw
func (h *OffboardingHandler) Withdraw(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)

	view, err := h.service.Withdraw(c.Request.Context(), spaID, c.Param("reference"))
	if err != nil {
		response.FromError(c, "failed to withdraw request", err)
		return
	}
	response.Success(c, http.StatusOK, "request withdrawn", view)
}

// ListRequests handles GET /offboarding
func (h *OffboardingHandler) ListRequests(c *gin.Context) {
	spaID := middleware.MustGetSpaID(c)

	views, err := h.service.ListRequests(c.Request.Context(), spaID)
	if err != nil {
		response.FromError(c, "failed to list requests", err)
		return
	}
	response.Success(c, http.StatusOK, "requests retrieved", views)
}
