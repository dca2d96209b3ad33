package services

import (
	"context"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/SscSPs/expense_management_app/internal/dto"
)

// ExpenseSvcFacade covers expense submission and listing.
type ExpenseSvcFacade interface {
	// SubmitExpense converts the amount, stores the expense and starts its approval workflow.
	// A workflow failure is logged and leaves the expense PENDING; it does not fail the call.
	SubmitExpense(ctx context.Context, req dto.SubmitExpenseRequest, employeeID string) (*domain.Expense, error)

	// ListMyExpenses lists the requester's own expenses.
	ListMyExpenses(ctx context.Context, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error)

	// ListVisibleExpenses lists the company's expenses for admins and team plus own expenses for managers.
	ListVisibleExpenses(ctx context.Context, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error)

	// GetExpense returns an expense visible to the requester.
	GetExpense(ctx context.Context, expenseID string, requestingUserID string) (*domain.Expense, error)
}
