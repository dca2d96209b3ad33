package services

import (
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/platform/config"
	"github.com/SscSPs/expense_management_app/internal/platform/metrics"
)

// ContainerDeps carries optional infrastructure shared by the services.
type ContainerDeps struct {
	Metrics   *metrics.Recorder
	RateCache RateCache
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps ContainerDeps) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.TokenService = NewTokenService(cfg, repos.UserRepo)
	container.GoogleOAuth = NewGoogleOAuthService(cfg)
	container.Auth = NewAuthService(repos.CompanyRepo, repos.UserRepo)
	container.User = NewUserService(repos.UserRepo)
	container.Rule = NewApprovalRuleService(repos.RuleRepo, repos.UserRepo)

	converterOpts := []ConverterOption{WithConverterMetrics(deps.Metrics)}
	if deps.RateCache != nil {
		converterOpts = append(converterOpts, WithRateCache(deps.RateCache, cfg.ExchangeRateCacheTTL))
	}
	container.Currency = NewCurrencyConverter(cfg.ExchangeRateAPIURL, cfg.ExchangeRateTimeout, converterOpts...)

	container.Initiator = NewWorkflowInitiator(
		repos.UserRepo,
		repos.RuleRepo,
		repos.ExpenseRepo,
		repos.WorkflowRepo,
		WithInitiatorMetrics(deps.Metrics),
	)
	container.Approval = NewApprovalService(
		repos.UserRepo,
		repos.ExpenseRepo,
		repos.WorkflowRepo,
		WithApprovalMetrics(deps.Metrics),
	)
	container.Expense = NewExpenseService(
		repos.ExpenseRepo,
		repos.UserRepo,
		repos.CompanyRepo,
		repos.WorkflowRepo,
		container.Currency,
		container.Initiator,
		WithExpenseMetrics(deps.Metrics),
	)

	return container
}
