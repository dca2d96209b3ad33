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

// expenseHandler handles expense submission and retrieval.
type expenseHandler struct {
	expenseService  portssvc.ExpenseSvcFacade
	approvalService portssvc.ApprovalSvcFacade
}

func newExpenseHandler(es portssvc.ExpenseSvcFacade, as portssvc.ApprovalSvcFacade) *expenseHandler {
	return &expenseHandler{expenseService: es, approvalService: as}
}

func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade, approvalService portssvc.ApprovalSvcFacade) {
	h := newExpenseHandler(expenseService, approvalService)
	approvers := middleware.RequireRoles(domain.RoleManager, domain.RoleAdmin)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.submitExpense)
		expenses.GET("", h.listVisibleExpenses)
		expenses.GET("/mine", h.listMyExpenses)
		expenses.GET("/:id", h.getExpense)
		expenses.GET("/:id/workflow", h.getWorkflow)
		expenses.POST("/:id/approval", approvers, h.processApproval)
	}
}

// submitExpense godoc
// @Summary Submit an expense
// @Description Converts the amount into the company currency and starts the approval workflow.
// @Description The expense comes back APPROVED when no approval is required, IN_PROGRESS when a workflow
// @Description was created, or PENDING when the workflow could not be started.
// @Tags expenses
// @Accept json
// @Produce json
// @Param expense body dto.SubmitExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) submitExpense(c *gin.Context) {
	var req dto.SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request body")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	expense, err := h.expenseService.SubmitExpense(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to submit expense")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Expense submitted",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("status", string(expense.Status)))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listMyExpenses godoc
// @Summary List my expenses
// @Tags expenses
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/mine [get]
func (h *expenseHandler) listMyExpenses(c *gin.Context) {
	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.expenseService.ListMyExpenses(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "Failed to list expenses")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listVisibleExpenses godoc
// @Summary List visible expenses
// @Description Admins see the whole company, managers see their direct reports and themselves, others see their own.
// @Tags expenses
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listVisibleExpenses(c *gin.Context) {
	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.expenseService.ListVisibleExpenses(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "Failed to list expenses")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getExpense godoc
// @Summary Get an expense
// @Description Visible to the submitter, company admins and the expense's approvers.
// @Tags expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{id} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve expense")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// getWorkflow godoc
// @Summary Get the approval workflow of an expense
// @Tags expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} dto.WorkflowResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Expense not found or auto-approved without a workflow"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{id}/workflow [get]
func (h *expenseHandler) getWorkflow(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	wf, err := h.approvalService.GetWorkflowForExpense(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve workflow")
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkflowResponse(wf))
}

// processApproval godoc
// @Summary Approve or reject an expense
// @Description Records the caller's decision on their pending step and re-evaluates the workflow.
// @Description Only managers and admins may call it.
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param decision body dto.ProcessApprovalRequest true "Decision"
// @Success 200 {object} dto.ProcessApprovalResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Caller is not a manager or admin, or holds no step in the workflow"
// @Failure 404 {object} ErrorResponse "Expense or active workflow not found"
// @Failure 409 {object} ErrorResponse "Caller already decided"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{id}/approval [post]
func (h *expenseHandler) processApproval(c *gin.Context) {
	var req dto.ProcessApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request body")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.approvalService.ProcessApproval(c.Request.Context(), c.Param("id"), userID, req.Action, req.Comment)
	if err != nil {
		respondError(c, err, "Failed to process approval")
		return
	}
	c.JSON(http.StatusOK, dto.ToProcessApprovalResponse(result))
}
