package dto

import (
	"time"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubmitExpenseRequest is the body of an expense submission.
type SubmitExpenseRequest struct {
	Amount       *decimal.Decimal       `json:"amount" binding:"required,decimal_positive"`
	CurrencyCode string                 `json:"currencyCode" binding:"required,iso4217"`
	Category     domain.ExpenseCategory `json:"category" binding:"required,expense_category"`
	Description  string                 `json:"description" binding:"required,max=1000"`
	ExpenseDate  time.Time              `json:"expenseDate" binding:"required"`
	MerchantName *string                `json:"merchantName" binding:"omitempty,max=200"`
	ReceiptURL   *string                `json:"receiptURL" binding:"omitempty,url"`
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ApprovalHistoryEntryResponse is one recorded decision.
type ApprovalHistoryEntryResponse struct {
	ApproverID string                `json:"approverID"`
	Action     domain.ApprovalAction `json:"action"`
	Comment    string                `json:"comment,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID               string                         `json:"expenseID"`
	EmployeeID              string                         `json:"employeeID"`
	CompanyID               string                         `json:"companyID"`
	Amount                  decimal.Decimal                `json:"amount"`
	CurrencyCode            string                         `json:"currencyCode"`
	AmountInCompanyCurrency decimal.Decimal                `json:"amountInCompanyCurrency"`
	Category                domain.ExpenseCategory         `json:"category"`
	Description             string                         `json:"description"`
	ExpenseDate             time.Time                      `json:"expenseDate"`
	MerchantName            *string                        `json:"merchantName,omitempty"`
	ReceiptURL              *string                        `json:"receiptURL,omitempty"`
	Status                  domain.ExpenseStatus           `json:"status"`
	ApprovalHistory         []ApprovalHistoryEntryResponse `json:"approvalHistory"`
	CreatedAt               time.Time                      `json:"createdAt"`
	LastUpdatedAt           time.Time                      `json:"lastUpdatedAt"`
}

// ListExpensesResponse wraps a page of expenses.
type ListExpensesResponse struct {
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	history := make([]ApprovalHistoryEntryResponse, len(e.ApprovalHistory))
	for i, h := range e.ApprovalHistory {
		history[i] = ApprovalHistoryEntryResponse{
			ApproverID: h.ApproverID,
			Action:     h.Action,
			Comment:    h.Comment,
			Timestamp:  h.Timestamp,
		}
	}
	return ExpenseResponse{
		ExpenseID:               e.ExpenseID,
		EmployeeID:              e.EmployeeID,
		CompanyID:               e.CompanyID,
		Amount:                  e.Amount,
		CurrencyCode:            e.CurrencyCode,
		AmountInCompanyCurrency: e.AmountInCompanyCurrency,
		Category:                e.Category,
		Description:             e.Description,
		ExpenseDate:             e.ExpenseDate,
		MerchantName:            e.MerchantName,
		ReceiptURL:              e.ReceiptURL,
		Status:                  e.Status,
		ApprovalHistory:         history,
		CreatedAt:               e.CreatedAt,
		LastUpdatedAt:           e.LastUpdatedAt,
	}
}

// ToListExpensesResponse converts a page of expenses.
func ToListExpensesResponse(expenses []domain.Expense, nextToken *string) *ListExpensesResponse {
	out := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		out[i] = ToExpenseResponse(&expenses[i])
	}
	return &ListExpensesResponse{Expenses: out, NextToken: nextToken}
}
