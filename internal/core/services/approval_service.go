package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/platform/metrics"
)

const rejectedMessage = "Expense rejected successfully"

type approvalService struct {
	BaseService
	userRepo     portsrepo.UserReader
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	workflowRepo portsrepo.WorkflowRepositoryWithTx
}

// ApprovalOption configures the approval service.
type ApprovalOption func(*approvalService)

func WithApprovalMetrics(recorder *metrics.Recorder) ApprovalOption {
	return func(s *approvalService) {
		s.Metrics = recorder
	}
}

func NewApprovalService(
	userRepo portsrepo.UserReader,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	workflowRepo portsrepo.WorkflowRepositoryWithTx,
	options ...ApprovalOption,
) portssvc.ApprovalSvcFacade {
	svc := &approvalService{
		userRepo:     userRepo,
		expenseRepo:  expenseRepo,
		workflowRepo: workflowRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// ProcessApproval records one approver's decision and settles the expense when the workflow completes.
// The expense and workflow rows are locked for the whole call, so decisions on one expense serialize.
func (s *approvalService) ProcessApproval(ctx context.Context, expenseID, approverID string, action domain.ApprovalAction, comment string) (*domain.ApprovalResult, error) {
	if !action.IsValid() {
		return nil, apperrors.NewValidationError("action must be APPROVED or REJECTED")
	}

	tx, err := s.workflowRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.workflowRepo.Rollback(ctx, tx)

	expense, err := s.expenseRepo.FindExpenseByIDForUpdate(ctx, tx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Expense not found")
		}
		s.LogError(ctx, err, "Failed to load expense for approval", slog.String("expense_id", expenseID))
		return nil, err
	}

	wf, err := s.workflowRepo.FindActiveWorkflowByExpenseIDForUpdate(ctx, tx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Active workflow not found for this expense")
		}
		s.LogError(ctx, err, "Failed to load workflow for approval", slog.String("expense_id", expenseID))
		return nil, err
	}

	idx := wf.PendingStepIndex(approverID)
	if idx < 0 {
		if wf.HasStepFor(approverID) {
			return nil, apperrors.ErrAlreadyProcessed
		}
		return nil, apperrors.ErrNotAuthorizedApprover
	}

	now := s.now()
	wf.ApplyDecision(idx, action, comment, now)
	entry := expense.RecordDecision(approverID, action, comment, now)

	var message string
	if action == domain.ActionRejected {
		wf.Status = domain.WorkflowRejected
		expense.Status = domain.ExpenseRejected
		message = rejectedMessage
	} else {
		eval := wf.Policy().Evaluate(wf.Steps)
		message = eval.Message
		if eval.FullyApproved {
			wf.Status = domain.WorkflowApproved
			expense.Status = domain.ExpenseApproved
		} else {
			wf.CurrentStep = idx + 1
		}
	}
	wf.Touch(approverID, now)
	expense.Touch(approverID, now)

	if err := s.expenseRepo.AppendApprovalHistoryInTx(ctx, tx, expense.ExpenseID, entry); err != nil {
		s.LogError(ctx, err, "Failed to append approval history", slog.String("expense_id", expenseID))
		return nil, err
	}
	if err := s.workflowRepo.UpdateWorkflowInTx(ctx, tx, *wf); err != nil {
		s.LogError(ctx, err, "Failed to update workflow", slog.String("workflow_id", wf.WorkflowID))
		return nil, err
	}
	wf.Version++
	if err := s.expenseRepo.UpdateExpenseStatusInTx(ctx, tx, expense.ExpenseID, expense.Status, approverID, now); err != nil {
		s.LogError(ctx, err, "Failed to update expense status", slog.String("expense_id", expenseID))
		return nil, err
	}
	if err := s.workflowRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.Metrics.ApprovalProcessed(string(action), string(expense.Status))
	s.LogInfo(ctx, "Approval processed",
		slog.String("expense_id", expenseID),
		slog.String("approver_id", approverID),
		slog.String("action", string(action)),
		slog.String("expense_status", string(expense.Status)))

	return &domain.ApprovalResult{
		Expense:         *expense,
		Workflow:        *wf,
		Message:         message,
		FinalStatus:     expense.Status,
		IsFullyApproved: expense.Status == domain.ExpenseApproved,
	}, nil
}

// ListPendingApprovals returns in-flight expenses waiting on approverID, newest first.
func (s *approvalService) ListPendingApprovals(ctx context.Context, approverID string) ([]domain.PendingApproval, error) {
	approver, err := s.loadRequester(ctx, s.userRepo, approverID)
	if err != nil {
		return nil, err
	}

	workflows, err := s.workflowRepo.ListPendingForApprover(ctx, approver.CompanyID, approverID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending workflows", slog.String("approver_id", approverID))
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}

	pending := make([]domain.PendingApproval, 0, len(workflows))
	for _, wf := range workflows {
		expense, err := s.expenseRepo.FindExpenseByID(ctx, wf.ExpenseID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				s.LogWarn(ctx, err, "Workflow references a missing expense", slog.String("workflow_id", wf.WorkflowID))
				continue
			}
			return nil, fmt.Errorf("failed to load expense %s: %w", wf.ExpenseID, err)
		}
		pending = append(pending, domain.PendingApproval{Expense: *expense, Workflow: wf})
	}
	return pending, nil
}

// GetWorkflowForExpense returns the workflow of an expense the caller may view.
func (s *approvalService) GetWorkflowForExpense(ctx context.Context, expenseID string, requestingUserID string) (*domain.ApprovalWorkflow, error) {
	requester, err := s.loadRequester(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return nil, err
	}
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.CompanyID != requester.CompanyID {
		return nil, apperrors.NewNotFoundError("expense not found")
	}

	wf, err := s.workflowRepo.FindWorkflowByExpenseID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if canViewExpense(requester, expense, nil) {
				return nil, apperrors.NewNotFoundError("expense has no approval workflow")
			}
			return nil, apperrors.NewForbiddenError("you are not allowed to view this expense")
		}
		return nil, err
	}
	if !canViewExpense(requester, expense, wf) {
		return nil, apperrors.NewForbiddenError("you are not allowed to view this expense")
	}
	return wf, nil
}

// canViewExpense allows the submitter, administrators of the company and anyone holding a step.
func canViewExpense(user *domain.User, expense *domain.Expense, wf *domain.ApprovalWorkflow) bool {
	if user.CompanyID != expense.CompanyID {
		return false
	}
	if user.UserID == expense.EmployeeID || user.Role == domain.RoleAdmin {
		return true
	}
	return wf != nil && wf.HasStepFor(user.UserID)
}
