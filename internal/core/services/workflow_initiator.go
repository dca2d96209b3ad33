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
	"github.com/google/uuid"
)

// Initiation outcomes reported to metrics.
const (
	initiationCreated      = "created"
	initiationAutoApproved = "auto_approved"
	initiationFailed       = "failed"
)

type workflowInitiator struct {
	BaseService
	userRepo     portsrepo.UserReader
	ruleRepo     portsrepo.ApprovalRuleReader
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	workflowRepo portsrepo.WorkflowRepositoryWithTx
}

// InitiatorOption configures the workflow initiator.
type InitiatorOption func(*workflowInitiator)

func WithInitiatorMetrics(recorder *metrics.Recorder) InitiatorOption {
	return func(s *workflowInitiator) {
		s.Metrics = recorder
	}
}

func NewWorkflowInitiator(
	userRepo portsrepo.UserReader,
	ruleRepo portsrepo.ApprovalRuleReader,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	workflowRepo portsrepo.WorkflowRepositoryWithTx,
	options ...InitiatorOption,
) portssvc.WorkflowInitiatorSvc {
	svc := &workflowInitiator{
		userRepo:     userRepo,
		ruleRepo:     ruleRepo,
		expenseRepo:  expenseRepo,
		workflowRepo: workflowRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.WorkflowInitiatorSvc = (*workflowInitiator)(nil)

// InitiateWorkflow builds the approval steps for a freshly submitted expense.
// It returns nil without error when the expense was approved outright.
func (s *workflowInitiator) InitiateWorkflow(ctx context.Context, expense domain.Expense) (*domain.ApprovalWorkflow, error) {
	wf, err := s.initiate(ctx, expense)
	switch {
	case err != nil:
		s.Metrics.WorkflowInitiated(initiationFailed)
	case wf == nil:
		s.Metrics.WorkflowInitiated(initiationAutoApproved)
	default:
		s.Metrics.WorkflowInitiated(initiationCreated)
	}
	return wf, err
}

func (s *workflowInitiator) initiate(ctx context.Context, expense domain.Expense) (*domain.ApprovalWorkflow, error) {
	submitter, err := s.userRepo.FindEmployeeWithManager(ctx, expense.EmployeeID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load submitter for workflow",
			slog.String("expense_id", expense.ExpenseID),
			slog.String("employee_id", expense.EmployeeID))
		return nil, fmt.Errorf("failed to load submitter: %w", err)
	}

	steps := []domain.ApprovalStep{}
	if submitter.Employee.IsManagerApprover && submitter.Manager != nil {
		steps = append(steps, domain.NewManagerStep(submitter.Manager.UserID))
	}

	rule, err := s.ruleRepo.FindApplicableRule(ctx, expense.CompanyID, expense.AmountInCompanyCurrency)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to look up approval rule", slog.String("expense_id", expense.ExpenseID))
			return nil, fmt.Errorf("failed to find applicable rule: %w", err)
		}
		rule = nil
	}
	if rule != nil {
		steps = append(steps, rule.BuildSteps()...)
	}

	now := s.now()

	if len(steps) == 0 {
		if err := s.expenseRepo.UpdateExpenseStatus(ctx, expense.ExpenseID, domain.ExpenseApproved, systemActor, now); err != nil {
			s.LogError(ctx, err, "Failed to auto-approve expense", slog.String("expense_id", expense.ExpenseID))
			return nil, fmt.Errorf("failed to auto-approve expense: %w", err)
		}
		s.LogInfo(ctx, "Expense auto-approved, no approvers apply", slog.String("expense_id", expense.ExpenseID))
		return nil, nil
	}

	for i := range steps {
		steps[i].StepID = uuid.NewString()
	}
	wf := domain.ApprovalWorkflow{
		WorkflowID:  uuid.NewString(),
		ExpenseID:   expense.ExpenseID,
		CompanyID:   expense.CompanyID,
		Steps:       steps,
		Status:      domain.WorkflowInProgress,
		CurrentStep: 0,
		Version:     1,
		AuditFields: domain.NewAuditFields(expense.EmployeeID, now),
	}
	if rule != nil {
		wf.AttachRule(*rule)
	}

	tx, err := s.workflowRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.workflowRepo.Rollback(ctx, tx)

	if err := s.workflowRepo.SaveWorkflowInTx(ctx, tx, wf); err != nil {
		s.LogError(ctx, err, "Failed to save workflow", slog.String("expense_id", expense.ExpenseID))
		return nil, err
	}
	if err := s.expenseRepo.UpdateExpenseStatusInTx(ctx, tx, expense.ExpenseID, domain.ExpenseInProgress, systemActor, now); err != nil {
		s.LogError(ctx, err, "Failed to move expense in progress", slog.String("expense_id", expense.ExpenseID))
		return nil, err
	}
	if err := s.workflowRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	ruleID := ""
	if wf.RuleID != nil {
		ruleID = *wf.RuleID
	}
	s.LogInfo(ctx, "Approval workflow initiated",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("workflow_id", wf.WorkflowID),
		slog.String("rule_id", ruleID),
		slog.Int("steps", len(wf.Steps)))
	return &wf, nil
}
