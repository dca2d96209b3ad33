package services

import (
	"context"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/SscSPs/expense_management_app/internal/dto"
)

// ApprovalRuleReaderSvc defines read operations for approval rules
type ApprovalRuleReaderSvc interface {
	GetRule(ctx context.Context, ruleID string, requestingUserID string) (*domain.ApprovalRule, error)
	ListRules(ctx context.Context, requestingUserID string) ([]domain.ApprovalRule, error)
}

// ApprovalRuleWriterSvc defines write operations for approval rules. Only company admins may call these.
type ApprovalRuleWriterSvc interface {
	CreateRule(ctx context.Context, req dto.CreateApprovalRuleRequest, requestingUserID string) (*domain.ApprovalRule, error)
	UpdateRule(ctx context.Context, ruleID string, req dto.UpdateApprovalRuleRequest, requestingUserID string) (*domain.ApprovalRule, error)
	DeleteRule(ctx context.Context, ruleID string, requestingUserID string) error
}

// ApprovalRuleSvcFacade combines all rule-related service interfaces
type ApprovalRuleSvcFacade interface {
	ApprovalRuleReaderSvc
	ApprovalRuleWriterSvc
}
