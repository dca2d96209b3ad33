package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for the postgres repositories. Transactions are serialized
// by txMu and buffer their writes until Commit, which mirrors row locking closely enough for the
// engine's one-transaction-per-call usage.
type memStore struct {
	txMu sync.Mutex

	mu        sync.Mutex
	companies map[string]domain.Company
	users     map[string]domain.User
	expenses  map[string]domain.Expense
	rules     map[string]domain.ApprovalRule
	workflows map[string]domain.ApprovalWorkflow // keyed by expense ID

	failSaveWorkflow error
	commits          int
}

func newMemStore() *memStore {
	return &memStore{
		companies: map[string]domain.Company{},
		users:     map[string]domain.User{},
		expenses:  map[string]domain.Expense{},
		rules:     map[string]domain.ApprovalRule{},
		workflows: map[string]domain.ApprovalWorkflow{},
	}
}

func (s *memStore) repos() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CompanyRepo:  s,
		UserRepo:     s,
		ExpenseRepo:  s,
		RuleRepo:     s,
		WorkflowRepo: s,
	}
}

var (
	_ portsrepo.CompanyRepositoryWithTx      = (*memStore)(nil)
	_ portsrepo.UserRepositoryFacade         = (*memStore)(nil)
	_ portsrepo.ExpenseRepositoryFacade      = (*memStore)(nil)
	_ portsrepo.ApprovalRuleRepositoryFacade = (*memStore)(nil)
	_ portsrepo.WorkflowRepositoryWithTx     = (*memStore)(nil)
)

type fakeTx struct {
	pgx.Tx
	staged []func()
	done   bool
}

func (s *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	s.txMu.Lock()
	return &fakeTx{}, nil
}

func (s *memStore) Commit(ctx context.Context, tx pgx.Tx) error {
	ftx := tx.(*fakeTx)
	if ftx.done {
		return pgx.ErrTxClosed
	}
	s.mu.Lock()
	for _, apply := range ftx.staged {
		apply()
	}
	s.commits++
	s.mu.Unlock()
	ftx.done = true
	s.txMu.Unlock()
	return nil
}

func (s *memStore) Rollback(ctx context.Context, tx pgx.Tx) error {
	ftx := tx.(*fakeTx)
	if ftx.done {
		return nil
	}
	ftx.done = true
	s.txMu.Unlock()
	return nil
}

func (tx *fakeTx) stage(apply func()) {
	tx.staged = append(tx.staged, apply)
}

func cloneExpense(e domain.Expense) domain.Expense {
	e.ApprovalHistory = append([]domain.ApprovalHistoryEntry{}, e.ApprovalHistory...)
	return e
}

func cloneWorkflow(w domain.ApprovalWorkflow) domain.ApprovalWorkflow {
	w.Steps = append([]domain.ApprovalStep{}, w.Steps...)
	return w
}

func cloneRule(r domain.ApprovalRule) domain.ApprovalRule {
	r.Approvers = append([]domain.RuleApprover{}, r.Approvers...)
	return r
}

// --- companies ---

func (s *memStore) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[companyID]
	if !ok {
		return nil, apperrors.NewNotFoundError("company not found")
	}
	return &c, nil
}

func (s *memStore) SaveCompanyWithAdmin(ctx context.Context, company domain.Company, admin domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.CompanyID] = company
	s.users[admin.UserID] = admin
	return nil
}

// --- users ---

func (s *memStore) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.DeletedAt != nil {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return &u, nil
}

func (s *memStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email && u.DeletedAt == nil {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (s *memStore) FindEmployeeWithManager(ctx context.Context, userID string) (*domain.EmployeeWithManager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	out := &domain.EmployeeWithManager{Employee: u}
	if u.ManagerID != nil {
		if m, ok := s.users[*u.ManagerID]; ok && m.DeletedAt == nil {
			out.Manager = &m
		}
	}
	return out, nil
}

func (s *memStore) FindUsersByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, u := range s.users {
		if u.CompanyID == companyID && u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset >= len(out) {
		return []domain.User{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) FindDirectReports(ctx context.Context, managerID string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, u := range s.users {
		if u.ManagerID != nil && *u.ManagerID == managerID && u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *memStore) SaveUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.UserID]; exists {
		return apperrors.NewConflictError("user already exists")
	}
	s.users[user.UserID] = user
	return nil
}

func (s *memStore) UpdateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.UserID]; !exists {
		return apperrors.NewNotFoundError("user not found")
	}
	s.users[user.UserID] = user
	return nil
}

func (s *memStore) UpdateProfile(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.users[user.UserID]
	if !exists || current.DeletedAt != nil {
		return apperrors.NewNotFoundError("user not found")
	}
	for id, u := range s.users {
		if id != user.UserID && u.DeletedAt == nil && u.Email == user.Email {
			return apperrors.NewConflictError("a user with email " + user.Email + " already exists")
		}
	}
	current.Name = user.Name
	current.Email = user.Email
	current.PasswordHash = user.PasswordHash
	current.AuditFields = user.AuditFields
	s.users[user.UserID] = current
	return nil
}

func (s *memStore) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.DeletedAt != nil {
		return apperrors.NewNotFoundError("user not found")
	}
	u.RefreshTokenHash = refreshTokenHash
	u.RefreshTokenExpiryTime = &expiresAt
	s.users[userID] = u
	return nil
}

func (s *memStore) ClearRefreshToken(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.RefreshTokenHash = ""
		u.RefreshTokenExpiryTime = nil
		s.users[userID] = u
	}
	return nil
}

func (s *memStore) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperrors.NewNotFoundError("user not found")
	}
	u.DeletedAt = &deletedAt
	u.LastUpdatedBy = deletedBy
	s.users[userID] = u
	return nil
}

// --- expenses ---

func (s *memStore) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[expenseID]
	if !ok {
		return nil, apperrors.NewNotFoundError("expense not found")
	}
	e = cloneExpense(e)
	return &e, nil
}

func (s *memStore) FindExpenseByIDForUpdate(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.Expense, error) {
	return s.FindExpenseByID(ctx, expenseID)
}

func (s *memStore) listExpenses(match func(domain.Expense) bool, limit int) []domain.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Expense{}
	for _, e := range s.expenses {
		if match(e) {
			out = append(out, cloneExpense(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ExpenseID > out[j].ExpenseID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (s *memStore) ListExpensesBySubmitters(ctx context.Context, employeeIDs []string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	ids := map[string]bool{}
	for _, id := range employeeIDs {
		ids[id] = true
	}
	return s.listExpenses(func(e domain.Expense) bool { return ids[e.EmployeeID] }, limit), nil, nil
}

func (s *memStore) ListExpensesByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	return s.listExpenses(func(e domain.Expense) bool { return e.CompanyID == companyID }, limit), nil, nil
}

func (s *memStore) SaveExpense(ctx context.Context, expense domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[expense.ExpenseID] = cloneExpense(expense)
	return nil
}

func (s *memStore) setExpenseStatus(expenseID string, status domain.ExpenseStatus, by string, at time.Time) {
	e := s.expenses[expenseID]
	e.Status = status
	e.LastUpdatedBy = by
	e.LastUpdatedAt = at
	s.expenses[expenseID] = e
}

func (s *memStore) UpdateExpenseStatus(ctx context.Context, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[expenseID]; !ok {
		return apperrors.NewNotFoundError("expense not found")
	}
	s.setExpenseStatus(expenseID, status, updatedBy, updatedAt)
	return nil
}

func (s *memStore) UpdateExpenseStatusInTx(ctx context.Context, tx pgx.Tx, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error {
	tx.(*fakeTx).stage(func() { s.setExpenseStatus(expenseID, status, updatedBy, updatedAt) })
	return nil
}

func (s *memStore) AppendApprovalHistoryInTx(ctx context.Context, tx pgx.Tx, expenseID string, entry domain.ApprovalHistoryEntry) error {
	tx.(*fakeTx).stage(func() {
		e := s.expenses[expenseID]
		e.ApprovalHistory = append(append([]domain.ApprovalHistoryEntry{}, e.ApprovalHistory...), entry)
		s.expenses[expenseID] = e
	})
	return nil
}

// --- rules ---

func (s *memStore) FindRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[ruleID]
	if !ok {
		return nil, apperrors.NewNotFoundError("approval rule not found")
	}
	r = cloneRule(r)
	return &r, nil
}

func (s *memStore) sortedRules(match func(domain.ApprovalRule) bool) []domain.ApprovalRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ApprovalRule{}
	for _, r := range s.rules {
		if match(r) {
			out = append(out, cloneRule(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.MinAmount.Equal(b.MinAmount) {
			return a.MinAmount.LessThan(b.MinAmount)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.RuleID < b.RuleID
	})
	return out
}

func (s *memStore) FindApplicableRule(ctx context.Context, companyID string, amount decimal.Decimal) (*domain.ApprovalRule, error) {
	rules := s.sortedRules(func(r domain.ApprovalRule) bool {
		return r.CompanyID == companyID && r.IsActive && r.Covers(amount)
	})
	if len(rules) == 0 {
		return nil, apperrors.NewNotFoundError("no applicable approval rule")
	}
	return &rules[0], nil
}

func (s *memStore) ListRulesByCompany(ctx context.Context, companyID string, activeOnly bool) ([]domain.ApprovalRule, error) {
	return s.sortedRules(func(r domain.ApprovalRule) bool {
		return r.CompanyID == companyID && (!activeOnly || r.IsActive)
	}), nil
}

func (s *memStore) SaveRule(ctx context.Context, rule domain.ApprovalRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[rule.RuleID] = cloneRule(rule)
	return nil
}

func (s *memStore) UpdateRule(ctx context.Context, rule domain.ApprovalRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[rule.RuleID]; !ok {
		return apperrors.NewNotFoundError("approval rule not found")
	}
	s.rules[rule.RuleID] = cloneRule(rule)
	return nil
}

func (s *memStore) DeleteRule(ctx context.Context, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[ruleID]; !ok {
		return apperrors.NewNotFoundError("approval rule not found")
	}
	delete(s.rules, ruleID)
	return nil
}

// --- workflows ---

func (s *memStore) FindWorkflowByExpenseID(ctx context.Context, expenseID string) (*domain.ApprovalWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[expenseID]
	if !ok {
		return nil, apperrors.NewNotFoundError("approval workflow not found")
	}
	w = cloneWorkflow(w)
	return &w, nil
}

func (s *memStore) ListPendingForApprover(ctx context.Context, companyID string, approverID string) ([]domain.ApprovalWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ApprovalWorkflow{}
	for _, w := range s.workflows {
		if w.CompanyID != companyID || w.Status != domain.WorkflowInProgress {
			continue
		}
		for _, step := range w.Steps {
			if step.ApproverID == approverID && step.Status == domain.StepPending {
				out = append(out, cloneWorkflow(w))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) SaveWorkflowInTx(ctx context.Context, tx pgx.Tx, workflow domain.ApprovalWorkflow) error {
	if s.failSaveWorkflow != nil {
		return s.failSaveWorkflow
	}
	wf := cloneWorkflow(workflow)
	tx.(*fakeTx).stage(func() { s.workflows[wf.ExpenseID] = wf })
	return nil
}

func (s *memStore) FindActiveWorkflowByExpenseIDForUpdate(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.ApprovalWorkflow, error) {
	w, err := s.FindWorkflowByExpenseID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if w.Status != domain.WorkflowInProgress {
		return nil, apperrors.NewNotFoundError("approval workflow not found")
	}
	return w, nil
}

func (s *memStore) UpdateWorkflowInTx(ctx context.Context, tx pgx.Tx, workflow domain.ApprovalWorkflow) error {
	s.mu.Lock()
	current, ok := s.workflows[workflow.ExpenseID]
	s.mu.Unlock()
	if !ok || current.Version != workflow.Version {
		return apperrors.NewConflictError("approval workflow was modified concurrently")
	}
	wf := cloneWorkflow(workflow)
	wf.Version++
	tx.(*fakeTx).stage(func() { s.workflows[wf.ExpenseID] = wf })
	return nil
}
