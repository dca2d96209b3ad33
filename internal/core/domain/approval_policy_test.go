package domain_test

import (
	"testing"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func steps(statuses ...domain.StepStatus) []domain.ApprovalStep {
	out := make([]domain.ApprovalStep, len(statuses))
	for i, s := range statuses {
		out[i] = domain.ApprovalStep{ApproverID: approverName(i), Status: s, StepType: domain.StepTypeRule}
	}
	return out
}

func approverName(i int) string {
	return string(rune('a' + i))
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func stringPtr(s string) *string {
	return &s
}

const (
	P = domain.StepPending
	A = domain.StepApproved
	R = domain.StepRejected
)

func TestApprovalPolicy_Evaluate(t *testing.T) {
	sixty := decimalPtr(decimal.NewFromInt(60))
	tests := []struct {
		name         string
		policy       domain.ApprovalPolicy
		steps        []domain.ApprovalStep
		wantApproved bool
		wantMessage  string
	}{
		{
			name:         "no rule, all approved",
			policy:       domain.NoRulePolicy{},
			steps:        steps(A),
			wantApproved: true,
			wantMessage:  "All approvers have approved",
		},
		{
			name:        "no rule, one pending",
			policy:      domain.NoRulePolicy{},
			steps:       steps(A, P),
			wantMessage: "Approval recorded, awaiting other approvers",
		},
		{
			name:         "sequential, all approved",
			policy:       domain.SequentialPolicy{},
			steps:        steps(A, A, A),
			wantApproved: true,
			wantMessage:  "All sequential approvals completed",
		},
		{
			name:        "sequential, out of order approval reports first pending",
			policy:      domain.SequentialPolicy{},
			steps:       steps(P, A, P),
			wantMessage: "Approved. Waiting for approver 1",
		},
		{
			name:        "sequential, second pending",
			policy:      domain.SequentialPolicy{},
			steps:       steps(A, P, P),
			wantMessage: "Approved. Waiting for approver 2",
		},
		{
			name:         "percentage, 2 of 3 meets 60",
			policy:       domain.PercentagePolicy{Threshold: sixty},
			steps:        steps(A, A, P),
			wantApproved: true,
			wantMessage:  "67% approval threshold met (required: 60%)",
		},
		{
			name:        "percentage, 1 of 3 misses 60",
			policy:      domain.PercentagePolicy{Threshold: sixty},
			steps:       steps(A, P, P),
			wantMessage: "1/3 approved (33% - need 60%)",
		},
		{
			name:         "percentage, exact boundary counts",
			policy:       domain.PercentagePolicy{Threshold: decimalPtr(decimal.NewFromInt(50))},
			steps:        steps(A, P),
			wantApproved: true,
			wantMessage:  "50% approval threshold met (required: 50%)",
		},
		{
			name:        "percentage, fractional threshold just above ratio",
			policy:      domain.PercentagePolicy{Threshold: decimalPtr(decimal.RequireFromString("66.67"))},
			steps:       steps(A, A, P),
			wantMessage: "2/3 approved (67% - need 66.67%)",
		},
		{
			name:        "percentage, missing threshold never approves",
			policy:      domain.PercentagePolicy{},
			steps:       steps(A, A),
			wantMessage: "2/2 approved (100% - need -%)",
		},
		{
			name:         "specific, designated approver approved",
			policy:       domain.SpecificPolicy{ApproverID: stringPtr("b")},
			steps:        steps(P, A),
			wantApproved: true,
			wantMessage:  "Approved by designated approver",
		},
		{
			name:        "specific, another approver approved",
			policy:      domain.SpecificPolicy{ApproverID: stringPtr("b")},
			steps:       steps(A, P),
			wantMessage: "Awaiting approval from designated approver",
		},
		{
			name:        "specific, no designated approver",
			policy:      domain.SpecificPolicy{},
			steps:       steps(A),
			wantMessage: "Awaiting approval from designated approver",
		},
		{
			name:         "hybrid, designated approver fast path",
			policy:       domain.HybridPolicy{Threshold: decimalPtr(decimal.NewFromInt(90)), ApproverID: stringPtr("c")},
			steps:        steps(P, P, A, P),
			wantApproved: true,
			wantMessage:  "Approved via designated approver",
		},
		{
			name:         "hybrid, percentage wins when both hold",
			policy:       domain.HybridPolicy{Threshold: sixty, ApproverID: stringPtr("a")},
			steps:        steps(A, A, P),
			wantApproved: true,
			wantMessage:  "Approved via percentage threshold (67%)",
		},
		{
			name:        "hybrid, neither condition",
			policy:      domain.HybridPolicy{Threshold: decimalPtr(decimal.NewFromInt(90)), ApproverID: stringPtr("c")},
			steps:       steps(A, P, P),
			wantMessage: "1/3 approved (33% - need 90% OR specific approver)",
		},
		{
			name:         "hybrid, missing specific still allows percentage",
			policy:       domain.HybridPolicy{Threshold: decimalPtr(decimal.NewFromInt(50))},
			steps:        steps(A, P),
			wantApproved: true,
			wantMessage:  "Approved via percentage threshold (50%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Evaluate(tt.steps)
			assert.Equal(t, tt.wantApproved, got.FullyApproved)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestPolicyFor(t *testing.T) {
	threshold := decimalPtr(decimal.NewFromInt(75))
	specific := stringPtr("u1")

	assert.Equal(t, domain.SequentialPolicy{}, domain.PolicyFor(domain.RuleSequential, threshold, specific))
	assert.Equal(t, domain.PercentagePolicy{Threshold: threshold}, domain.PolicyFor(domain.RulePercentage, threshold, specific))
	assert.Equal(t, domain.SpecificPolicy{ApproverID: specific}, domain.PolicyFor(domain.RuleSpecific, threshold, specific))
	assert.Equal(t, domain.HybridPolicy{Threshold: threshold, ApproverID: specific}, domain.PolicyFor(domain.RuleHybrid, threshold, specific))
	assert.Equal(t, domain.NoRulePolicy{}, domain.PolicyFor(domain.RuleType("UNKNOWN"), nil, nil))
}

func TestApprovalPolicy_RejectedStepNeverCountsAsApproved(t *testing.T) {
	got := domain.NoRulePolicy{}.Evaluate(steps(A, R))
	assert.False(t, got.FullyApproved)
}
