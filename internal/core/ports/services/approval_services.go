package services

import (
	"context"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
)

// WorkflowInitiatorSvc creates the approval workflow for a freshly submitted expense.
type WorkflowInitiatorSvc interface {
	// InitiateWorkflow returns the created workflow, or nil when the expense was auto-approved.
	InitiateWorkflow(ctx context.Context, expense domain.Expense) (*domain.ApprovalWorkflow, error)
}

// ApprovalProcessorSvc applies approver decisions.
type ApprovalProcessorSvc interface {
	// ProcessApproval records one approver's decision on one expense.
	ProcessApproval(ctx context.Context, expenseID, approverID string, action domain.ApprovalAction, comment string) (*domain.ApprovalResult, error)
}

// ApprovalQuerySvc exposes workflow state to approvers and submitters.
type ApprovalQuerySvc interface {
	// ListPendingApprovals returns expenses awaiting the approver's decision.
	ListPendingApprovals(ctx context.Context, approverID string) ([]domain.PendingApproval, error)

	// GetWorkflowForExpense returns the workflow of an expense the requester may see.
	GetWorkflowForExpense(ctx context.Context, expenseID string, requestingUserID string) (*domain.ApprovalWorkflow, error)
}

// ApprovalSvcFacade combines the processor and query services.
type ApprovalSvcFacade interface {
	ApprovalProcessorSvc
	ApprovalQuerySvc
}
