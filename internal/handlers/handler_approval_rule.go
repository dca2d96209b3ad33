package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/SscSPs/expense_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ruleHandler manages approval rules.
type ruleHandler struct {
	ruleService portssvc.ApprovalRuleSvcFacade
}

func registerRuleRoutes(rg *gin.RouterGroup, ruleService portssvc.ApprovalRuleSvcFacade) {
	h := &ruleHandler{ruleService: ruleService}
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	rules := rg.Group("/approval-rules")
	{
		rules.GET("", h.listRules)
		rules.GET("/:id", h.getRule)
		rules.POST("", adminOnly, h.createRule)
		rules.PUT("/:id", adminOnly, h.updateRule)
		rules.DELETE("/:id", adminOnly, h.deleteRule)
	}
}

// listRules godoc
// @Summary List approval rules
// @Tags approval-rules
// @Produce json
// @Success 200 {object} dto.ListApprovalRulesResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approval-rules [get]
func (h *ruleHandler) listRules(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rules, err := h.ruleService.ListRules(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to list approval rules")
		return
	}
	c.JSON(http.StatusOK, dto.ToListApprovalRulesResponse(rules))
}

// getRule godoc
// @Summary Get an approval rule
// @Tags approval-rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} dto.ApprovalRuleResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approval-rules/{id} [get]
func (h *ruleHandler) getRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rule, err := h.ruleService.GetRule(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve approval rule")
		return
	}
	c.JSON(http.StatusOK, dto.ToApprovalRuleResponse(rule))
}

// createRule godoc
// @Summary Create an approval rule
// @Description The amount range must not overlap another active rule of the company.
// @Tags approval-rules
// @Accept json
// @Produce json
// @Param rule body dto.CreateApprovalRuleRequest true "Rule definition"
// @Success 201 {object} dto.ApprovalRuleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Overlapping active rule"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approval-rules [post]
func (h *ruleHandler) createRule(c *gin.Context) {
	var req dto.CreateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request body")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create approval rule")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Approval rule created", slog.String("rule_id", rule.RuleID))
	c.JSON(http.StatusCreated, dto.ToApprovalRuleResponse(rule))
}

// updateRule godoc
// @Summary Update an approval rule
// @Description In-flight workflows keep the rule parameters they started with.
// @Tags approval-rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body dto.UpdateApprovalRuleRequest true "Fields to change"
// @Success 200 {object} dto.ApprovalRuleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Overlapping active rule"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approval-rules/{id} [put]
func (h *ruleHandler) updateRule(c *gin.Context) {
	var req dto.UpdateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request body")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update approval rule")
		return
	}
	c.JSON(http.StatusOK, dto.ToApprovalRuleResponse(rule))
}

// deleteRule godoc
// @Summary Delete an approval rule
// @Tags approval-rules
// @Param id path string true "Rule ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approval-rules/{id} [delete]
func (h *ruleHandler) deleteRule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.ruleService.DeleteRule(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err, "Failed to delete approval rule")
		return
	}
	c.Status(http.StatusNoContent)
}
