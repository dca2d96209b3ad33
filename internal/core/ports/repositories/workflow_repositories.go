package repositories

import (
	"context"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// WorkflowReader defines read operations for approval workflows
type WorkflowReader interface {
	// FindWorkflowByExpenseID retrieves the workflow attached to an expense, in any status.
	FindWorkflowByExpenseID(ctx context.Context, expenseID string) (*domain.ApprovalWorkflow, error)

	// ListPendingForApprover lists IN_PROGRESS workflows of a company holding a PENDING step for approverID, newest first.
	ListPendingForApprover(ctx context.Context, companyID string, approverID string) ([]domain.ApprovalWorkflow, error)
}

// WorkflowTxOperations are the workflow operations that join a caller-owned transaction.
type WorkflowTxOperations interface {
	// SaveWorkflowInTx persists a new workflow and its steps.
	SaveWorkflowInTx(ctx context.Context, tx pgx.Tx, workflow domain.ApprovalWorkflow) error

	// FindActiveWorkflowByExpenseIDForUpdate loads and row-locks the IN_PROGRESS workflow of an expense.
	// Returns apperrors.ErrNotFound when the expense has none.
	FindActiveWorkflowByExpenseIDForUpdate(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.ApprovalWorkflow, error)

	// UpdateWorkflowInTx writes status, cursor and step changes. The stored version must equal
	// workflow.Version, otherwise apperrors.ErrConflict is returned; on success the version is bumped.
	UpdateWorkflowInTx(ctx context.Context, tx pgx.Tx, workflow domain.ApprovalWorkflow) error
}

// WorkflowRepositoryFacade combines all workflow-related repository interfaces
type WorkflowRepositoryFacade interface {
	WorkflowReader
	WorkflowTxOperations
}

// WorkflowRepositoryWithTx extends WorkflowRepositoryFacade with transaction capabilities
type WorkflowRepositoryWithTx interface {
	WorkflowRepositoryFacade
	TransactionManager
}
