package handlers

import (
	"net/http"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/SscSPs/expense_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type approvalHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

func registerApprovalRoutes(rg *gin.RouterGroup, approvalService portssvc.ApprovalSvcFacade) {
	h := &approvalHandler{approvalService: approvalService}

	approvals := rg.Group("/approvals", middleware.RequireRoles(domain.RoleManager, domain.RoleAdmin))
	{
		approvals.GET("/pending", h.listPending)
	}
}

// listPending godoc
// @Summary List expenses awaiting my decision
// @Description In-progress workflows with a pending step for the caller, newest first.
// @Tags approvals
// @Produce json
// @Success 200 {object} dto.ListPendingApprovalsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Caller is not a manager or admin"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approvals/pending [get]
func (h *approvalHandler) listPending(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	pending, err := h.approvalService.ListPendingApprovals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to list pending approvals")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPendingApprovalsResponse(pending))
}
