package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ExpenseReader defines read operations for expenses
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense with its approval history.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpensesBySubmitters lists expenses submitted by any of employeeIDs, newest first,
	// using token-based pagination.
	ListExpensesBySubmitters(ctx context.Context, employeeIDs []string, limit int, nextToken *string) ([]domain.Expense, *string, error)

	// ListExpensesByCompany lists every expense of a company, newest first.
	ListExpensesByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Expense, *string, error)
}

// ExpenseWriter defines write operations for expenses
type ExpenseWriter interface {
	// SaveExpense persists a new expense.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// UpdateExpenseStatus sets the status outside of a workflow transaction (auto-approval).
	UpdateExpenseStatus(ctx context.Context, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error
}

// ExpenseTxOperations are the expense operations that join a caller-owned transaction.
type ExpenseTxOperations interface {
	// FindExpenseByIDForUpdate loads and row-locks an expense. Must be called within a transaction.
	FindExpenseByIDForUpdate(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.Expense, error)

	// UpdateExpenseStatusInTx sets the status within a transaction.
	UpdateExpenseStatusInTx(ctx context.Context, tx pgx.Tx, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error

	// AppendApprovalHistoryInTx appends one history entry within a transaction.
	AppendApprovalHistoryInTx(ctx context.Context, tx pgx.Tx, expenseID string, entry domain.ApprovalHistoryEntry) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
	ExpenseTxOperations
}
