package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RuleType selects how rule steps combine into a final approval.
type RuleType string

const (
	RuleSequential RuleType = "SEQUENTIAL"
	RulePercentage RuleType = "PERCENTAGE"
	RuleSpecific   RuleType = "SPECIFIC"
	RuleHybrid     RuleType = "HYBRID"
)

// IsValid reports whether t is a known rule type.
func (t RuleType) IsValid() bool {
	switch t {
	case RuleSequential, RulePercentage, RuleSpecific, RuleHybrid:
		return true
	}
	return false
}

// UsesThreshold reports whether the type evaluates a percentage threshold.
func (t RuleType) UsesThreshold() bool {
	return t == RulePercentage || t == RuleHybrid
}

// UsesSpecificApprover reports whether the type evaluates a designated approver.
func (t RuleType) UsesSpecificApprover() bool {
	return t == RuleSpecific || t == RuleHybrid
}

// RuleApprover is one entry of a rule's approver list. Sequence only matters for sequential rules.
type RuleApprover struct {
	UserID   string `json:"userID"`
	Sequence int    `json:"sequence"`
}

// ApprovalRule configures which approvals an expense needs, for a company and amount range.
type ApprovalRule struct {
	RuleID              string           `json:"ruleID"`
	CompanyID           string           `json:"companyID"`
	Name                string           `json:"name"`
	Description         string           `json:"description,omitempty"`
	RuleType            RuleType         `json:"ruleType"`
	Approvers           []RuleApprover   `json:"approvers"`
	PercentageThreshold *decimal.Decimal `json:"percentageThreshold,omitempty"`
	SpecificApproverID  *string          `json:"specificApproverID,omitempty"`
	MinAmount           decimal.Decimal  `json:"minAmount"`
	MaxAmount           decimal.Decimal  `json:"maxAmount"`
	IsActive            bool             `json:"isActive"`
	AuditFields
}

// Covers reports whether amount lies in the rule's inclusive range.
func (r ApprovalRule) Covers(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(r.MinAmount) && amount.LessThanOrEqual(r.MaxAmount)
}

// Overlaps reports whether two inclusive ranges share at least one amount.
func (r ApprovalRule) Overlaps(other ApprovalRule) bool {
	return r.MinAmount.LessThanOrEqual(other.MaxAmount) && other.MinAmount.LessThanOrEqual(r.MaxAmount)
}

// SortedApprovers returns the approvers ordered by ascending sequence, keeping list order for ties.
func (r ApprovalRule) SortedApprovers() []RuleApprover {
	sorted := make([]RuleApprover, len(r.Approvers))
	copy(sorted, r.Approvers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Sequence < sorted[j].Sequence
	})
	return sorted
}

// BuildSteps produces the rule's PENDING steps, to be appended after any manager step.
func (r ApprovalRule) BuildSteps() []ApprovalStep {
	switch r.RuleType {
	case RuleSequential:
		approvers := r.SortedApprovers()
		steps := make([]ApprovalStep, 0, len(approvers))
		for _, a := range approvers {
			seq := a.Sequence
			steps = append(steps, newPendingStep(a.UserID, StepTypeRule, &seq))
		}
		return steps
	case RulePercentage, RuleHybrid:
		steps := make([]ApprovalStep, 0, len(r.Approvers))
		for _, a := range r.Approvers {
			steps = append(steps, newPendingStep(a.UserID, StepTypeRule, nil))
		}
		return steps
	case RuleSpecific:
		if r.SpecificApproverID == nil || *r.SpecificApproverID == "" {
			return nil
		}
		return []ApprovalStep{newPendingStep(*r.SpecificApproverID, StepTypeRule, nil)}
	}
	return nil
}
