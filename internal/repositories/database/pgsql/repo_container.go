package pgsql

import (
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	companyRepo := newPgxCompanyRepository(dbPool, userRepo)
	expenseRepo := newPgxExpenseRepository(dbPool)
	ruleRepo := newPgxApprovalRuleRepository(dbPool)
	workflowRepo := newPgxWorkflowRepository(dbPool)

	return portsrepo.RepositoryProvider{
		CompanyRepo:  companyRepo,
		UserRepo:     userRepo,
		ExpenseRepo:  expenseRepo,
		RuleRepo:     ruleRepo,
		WorkflowRepo: workflowRepo,
	}
}
