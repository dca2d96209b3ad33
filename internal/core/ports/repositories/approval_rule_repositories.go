package repositories

import (
	"context"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApprovalRuleReader defines read operations for approval rules
type ApprovalRuleReader interface {
	// FindRuleByID retrieves a rule with its approvers.
	FindRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error)

	// FindApplicableRule returns the active rule of the company whose inclusive range contains amount.
	// When several match, the one with the lowest min amount, then earliest creation, then lowest ID wins.
	// Returns apperrors.ErrNotFound when no rule applies.
	FindApplicableRule(ctx context.Context, companyID string, amount decimal.Decimal) (*domain.ApprovalRule, error)

	// ListRulesByCompany lists rules of a company, optionally only active ones.
	ListRulesByCompany(ctx context.Context, companyID string, activeOnly bool) ([]domain.ApprovalRule, error)
}

// ApprovalRuleWriter defines write operations for approval rules
type ApprovalRuleWriter interface {
	// SaveRule persists a new rule and its approver list.
	SaveRule(ctx context.Context, rule domain.ApprovalRule) error

	// UpdateRule replaces a rule's fields and approver list.
	UpdateRule(ctx context.Context, rule domain.ApprovalRule) error

	// DeleteRule removes a rule. Workflows keep their own copy of its parameters.
	DeleteRule(ctx context.Context, ruleID string) error
}

// ApprovalRuleRepositoryFacade combines all rule-related repository interfaces
type ApprovalRuleRepositoryFacade interface {
	ApprovalRuleReader
	ApprovalRuleWriter
}
