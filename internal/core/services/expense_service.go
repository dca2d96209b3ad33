package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/SscSPs/expense_management_app/internal/platform/metrics"
	"github.com/google/uuid"
)

type expenseService struct {
	BaseService
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	userRepo     portsrepo.UserReader
	companyRepo  portsrepo.CompanyReader
	workflowRepo portsrepo.WorkflowReader
	converter    portssvc.CurrencyConverterSvc
	initiator    portssvc.WorkflowInitiatorSvc
}

// ExpenseOption configures the expense service.
type ExpenseOption func(*expenseService)

func WithExpenseMetrics(recorder *metrics.Recorder) ExpenseOption {
	return func(s *expenseService) {
		s.Metrics = recorder
	}
}

func NewExpenseService(
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	userRepo portsrepo.UserReader,
	companyRepo portsrepo.CompanyReader,
	workflowRepo portsrepo.WorkflowReader,
	converter portssvc.CurrencyConverterSvc,
	initiator portssvc.WorkflowInitiatorSvc,
	options ...ExpenseOption,
) portssvc.ExpenseSvcFacade {
	svc := &expenseService{
		expenseRepo:  expenseRepo,
		userRepo:     userRepo,
		companyRepo:  companyRepo,
		workflowRepo: workflowRepo,
		converter:    converter,
		initiator:    initiator,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// SubmitExpense stores the expense and starts its approval workflow.
// A failed conversion falls back to the original amount; a failed initiation leaves the expense PENDING.
func (s *expenseService) SubmitExpense(ctx context.Context, req dto.SubmitExpenseRequest, employeeID string) (*domain.Expense, error) {
	employee, err := s.loadRequester(ctx, s.userRepo, employeeID)
	if err != nil {
		return nil, err
	}

	var problems []string
	if req.Amount == nil || !req.Amount.IsPositive() {
		problems = append(problems, "amount must be greater than zero")
	}
	if !req.Category.IsValid() {
		problems = append(problems, "category is not supported")
	}
	if strings.TrimSpace(req.CurrencyCode) == "" {
		problems = append(problems, "currencyCode is required")
	}
	if len(problems) > 0 {
		return nil, apperrors.NewValidationFailedError(problems...)
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, employee.CompanyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load company for expense", slog.String("company_id", employee.CompanyID))
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	currency := strings.ToUpper(req.CurrencyCode)
	amount := *req.Amount
	converted, err := s.converter.Convert(ctx, amount, currency, company.CurrencyCode)
	if err != nil {
		s.LogWarn(ctx, err, "Currency conversion failed, using original amount",
			slog.String("from", currency),
			slog.String("to", company.CurrencyCode))
		converted = amount
	}

	now := s.now()
	expense := domain.Expense{
		ExpenseID:               uuid.NewString(),
		EmployeeID:              employee.UserID,
		CompanyID:               employee.CompanyID,
		Amount:                  amount,
		CurrencyCode:            currency,
		AmountInCompanyCurrency: converted,
		Category:                req.Category,
		Description:             req.Description,
		ExpenseDate:             req.ExpenseDate,
		MerchantName:            req.MerchantName,
		ReceiptURL:              req.ReceiptURL,
		Status:                  domain.ExpensePending,
		ApprovalHistory:         []domain.ApprovalHistoryEntry{},
		AuditFields:             domain.NewAuditFields(employee.UserID, now),
	}
	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to save expense", slog.String("expense_id", expense.ExpenseID))
		return nil, err
	}
	s.Metrics.ExpenseSubmitted(string(expense.Category))

	wf, err := s.initiator.InitiateWorkflow(ctx, expense)
	switch {
	case err != nil:
		s.LogError(ctx, err, "Workflow initiation failed, expense left pending",
			slog.String("expense_id", expense.ExpenseID))
	case wf == nil:
		expense.Status = domain.ExpenseApproved
	default:
		expense.Status = domain.ExpenseInProgress
	}

	s.LogInfo(ctx, "Expense submitted",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("status", string(expense.Status)))
	return &expense, nil
}

func (s *expenseService) ListMyExpenses(ctx context.Context, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error) {
	expenses, next, err := s.expenseRepo.ListExpensesBySubmitters(ctx, []string{requestingUserID}, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return dto.ToListExpensesResponse(expenses, next), nil
}

// ListVisibleExpenses lists the whole company for administrators, the team and own expenses for
// managers, and own expenses for everyone else.
func (s *expenseService) ListVisibleExpenses(ctx context.Context, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error) {
	requester, err := s.loadRequester(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return nil, err
	}

	switch requester.Role {
	case domain.RoleAdmin:
		expenses, next, err := s.expenseRepo.ListExpensesByCompany(ctx, requester.CompanyID, params.Limit, params.NextToken)
		if err != nil {
			return nil, err
		}
		return dto.ToListExpensesResponse(expenses, next), nil
	case domain.RoleManager:
		reports, err := s.userRepo.FindDirectReports(ctx, requester.UserID)
		if err != nil {
			s.LogError(ctx, err, "Failed to load direct reports", slog.String("manager_id", requester.UserID))
			return nil, fmt.Errorf("failed to load direct reports: %w", err)
		}
		ids := make([]string, 0, len(reports)+1)
		ids = append(ids, requester.UserID)
		for _, r := range reports {
			ids = append(ids, r.UserID)
		}
		expenses, next, err := s.expenseRepo.ListExpensesBySubmitters(ctx, ids, params.Limit, params.NextToken)
		if err != nil {
			return nil, err
		}
		return dto.ToListExpensesResponse(expenses, next), nil
	default:
		return s.ListMyExpenses(ctx, requestingUserID, params)
	}
}

func (s *expenseService) GetExpense(ctx context.Context, expenseID string, requestingUserID string) (*domain.Expense, error) {
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
	if canViewExpense(requester, expense, nil) {
		return expense, nil
	}

	wf, err := s.workflowRepo.FindWorkflowByExpenseID(ctx, expenseID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if err == nil && canViewExpense(requester, expense, wf) {
		return expense, nil
	}
	return nil, apperrors.NewForbiddenError("you are not allowed to view this expense")
}
