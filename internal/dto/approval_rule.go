package dto

import (
	"time"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RuleApproverRequest is one approver of a rule.
type RuleApproverRequest struct {
	UserID   string `json:"userID" binding:"required,uuid"`
	Sequence int    `json:"sequence" binding:"gte=0"`
}

// CreateApprovalRuleRequest defines the body for creating a rule.
type CreateApprovalRuleRequest struct {
	Name                string                `json:"name" binding:"required,max=200"`
	Description         string                `json:"description" binding:"max=1000"`
	RuleType            domain.RuleType       `json:"ruleType" binding:"required,oneof=SEQUENTIAL PERCENTAGE SPECIFIC HYBRID"`
	Approvers           []RuleApproverRequest `json:"approvers" binding:"omitempty,dive"`
	PercentageThreshold *decimal.Decimal      `json:"percentageThreshold"`
	SpecificApproverID  *string               `json:"specificApproverID" binding:"omitempty,uuid"`
	MinAmount           *decimal.Decimal      `json:"minAmount" binding:"required"`
	MaxAmount           *decimal.Decimal      `json:"maxAmount" binding:"required"`
	IsActive            *bool                 `json:"isActive"`
}

// UpdateApprovalRuleRequest changes a rule. Omitted fields keep their value.
type UpdateApprovalRuleRequest struct {
	Name                *string                `json:"name" binding:"omitempty,min=1,max=200"`
	Description         *string                `json:"description" binding:"omitempty,max=1000"`
	RuleType            *domain.RuleType       `json:"ruleType" binding:"omitempty,oneof=SEQUENTIAL PERCENTAGE SPECIFIC HYBRID"`
	Approvers           *[]RuleApproverRequest `json:"approvers"`
	PercentageThreshold *decimal.Decimal       `json:"percentageThreshold"`
	SpecificApproverID  *string                `json:"specificApproverID" binding:"omitempty,uuid"`
	MinAmount           *decimal.Decimal       `json:"minAmount"`
	MaxAmount           *decimal.Decimal       `json:"maxAmount"`
	IsActive            *bool                  `json:"isActive"`
}

// ApprovalRuleResponse defines the data returned for a rule.
type ApprovalRuleResponse struct {
	RuleID              string                `json:"ruleID"`
	Name                string                `json:"name"`
	Description         string                `json:"description,omitempty"`
	RuleType            domain.RuleType       `json:"ruleType"`
	Approvers           []domain.RuleApprover `json:"approvers"`
	PercentageThreshold *decimal.Decimal      `json:"percentageThreshold,omitempty"`
	SpecificApproverID  *string               `json:"specificApproverID,omitempty"`
	MinAmount           decimal.Decimal       `json:"minAmount"`
	MaxAmount           decimal.Decimal       `json:"maxAmount"`
	IsActive            bool                  `json:"isActive"`
	CreatedAt           time.Time             `json:"createdAt"`
	LastUpdatedAt       time.Time             `json:"lastUpdatedAt"`
}

// ListApprovalRulesResponse wraps the list of rules.
type ListApprovalRulesResponse struct {
	Rules []ApprovalRuleResponse `json:"rules"`
}

// ToRuleApprovers converts request approvers to domain approvers.
func ToRuleApprovers(in []RuleApproverRequest) []domain.RuleApprover {
	out := make([]domain.RuleApprover, len(in))
	for i, a := range in {
		out[i] = domain.RuleApprover{UserID: a.UserID, Sequence: a.Sequence}
	}
	return out
}

func ToApprovalRuleResponse(r *domain.ApprovalRule) ApprovalRuleResponse {
	approvers := r.Approvers
	if approvers == nil {
		approvers = []domain.RuleApprover{}
	}
	return ApprovalRuleResponse{
		RuleID:              r.RuleID,
		Name:                r.Name,
		Description:         r.Description,
		RuleType:            r.RuleType,
		Approvers:           approvers,
		PercentageThreshold: r.PercentageThreshold,
		SpecificApproverID:  r.SpecificApproverID,
		MinAmount:           r.MinAmount,
		MaxAmount:           r.MaxAmount,
		IsActive:            r.IsActive,
		CreatedAt:           r.CreatedAt,
		LastUpdatedAt:       r.LastUpdatedAt,
	}
}

func ToListApprovalRulesResponse(rules []domain.ApprovalRule) ListApprovalRulesResponse {
	out := make([]ApprovalRuleResponse, len(rules))
	for i := range rules {
		out[i] = ToApprovalRuleResponse(&rules[i])
	}
	return ListApprovalRulesResponse{Rules: out}
}
