package domain_test

import (
	"testing"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleWithRange(min, max int64) domain.ApprovalRule {
	return domain.ApprovalRule{MinAmount: decimal.NewFromInt(min), MaxAmount: decimal.NewFromInt(max)}
}

func TestApprovalRule_Covers(t *testing.T) {
	rule := ruleWithRange(100, 500)

	assert.True(t, rule.Covers(decimal.NewFromInt(100)), "min is inclusive")
	assert.True(t, rule.Covers(decimal.NewFromInt(500)), "max is inclusive")
	assert.True(t, rule.Covers(decimal.RequireFromString("250.50")))
	assert.False(t, rule.Covers(decimal.RequireFromString("99.99")))
	assert.False(t, rule.Covers(decimal.RequireFromString("500.01")))
}

func TestApprovalRule_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.ApprovalRule
		want bool
	}{
		{"disjoint", ruleWithRange(0, 100), ruleWithRange(101, 200), false},
		{"touching endpoints", ruleWithRange(0, 100), ruleWithRange(100, 200), true},
		{"contained", ruleWithRange(0, 1000), ruleWithRange(10, 20), true},
		{"reverse order disjoint", ruleWithRange(500, 600), ruleWithRange(0, 499), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestApprovalRule_BuildSteps(t *testing.T) {
	approvers := []domain.RuleApprover{
		{UserID: "c", Sequence: 3},
		{UserID: "a", Sequence: 1},
		{UserID: "b", Sequence: 2},
	}

	t.Run("sequential sorts by sequence and keeps it", func(t *testing.T) {
		rule := domain.ApprovalRule{RuleType: domain.RuleSequential, Approvers: approvers}
		got := rule.BuildSteps()
		require.Len(t, got, 3)
		for i, want := range []string{"a", "b", "c"} {
			assert.Equal(t, want, got[i].ApproverID)
			require.NotNil(t, got[i].Sequence)
			assert.Equal(t, i+1, *got[i].Sequence)
			assert.Equal(t, domain.StepPending, got[i].Status)
			assert.Equal(t, domain.StepTypeRule, got[i].StepType)
		}
	})

	t.Run("percentage keeps list order without sequence", func(t *testing.T) {
		rule := domain.ApprovalRule{RuleType: domain.RulePercentage, Approvers: approvers}
		got := rule.BuildSteps()
		require.Len(t, got, 3)
		assert.Equal(t, "c", got[0].ApproverID)
		assert.Nil(t, got[0].Sequence)
	})

	t.Run("specific uses only the designated approver", func(t *testing.T) {
		rule := domain.ApprovalRule{RuleType: domain.RuleSpecific, Approvers: approvers, SpecificApproverID: stringPtr("z")}
		got := rule.BuildSteps()
		require.Len(t, got, 1)
		assert.Equal(t, "z", got[0].ApproverID)
	})

	t.Run("specific without designated approver yields no steps", func(t *testing.T) {
		rule := domain.ApprovalRule{RuleType: domain.RuleSpecific}
		assert.Empty(t, rule.BuildSteps())
	})

	t.Run("hybrid uses the approver list", func(t *testing.T) {
		rule := domain.ApprovalRule{RuleType: domain.RuleHybrid, Approvers: approvers, SpecificApproverID: stringPtr("b")}
		assert.Len(t, rule.BuildSteps(), 3)
	})
}

func TestApprovalWorkflow_StepLookup(t *testing.T) {
	wf := domain.ApprovalWorkflow{Steps: []domain.ApprovalStep{
		{ApproverID: "m", Status: domain.StepApproved},
		{ApproverID: "x", Status: domain.StepPending},
		{ApproverID: "x", Status: domain.StepPending},
	}}

	assert.Equal(t, 1, wf.PendingStepIndex("x"), "first pending step wins")
	assert.Equal(t, -1, wf.PendingStepIndex("m"))
	assert.True(t, wf.HasStepFor("m"))
	assert.False(t, wf.HasStepFor("nobody"))
	assert.Equal(t, 1, wf.CountApproved())
}

func TestApprovalWorkflow_AttachRuleSnapshotsParameters(t *testing.T) {
	threshold := decimal.NewFromInt(60)
	rule := domain.ApprovalRule{
		RuleID:              "r1",
		RuleType:            domain.RulePercentage,
		PercentageThreshold: &threshold,
	}
	var wf domain.ApprovalWorkflow
	wf.AttachRule(rule)

	threshold = decimal.NewFromInt(99)

	require.NotNil(t, wf.PercentageThreshold)
	assert.True(t, wf.PercentageThreshold.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, domain.PercentagePolicy{Threshold: wf.PercentageThreshold}, wf.Policy())
}

func TestApprovalWorkflow_PolicyWithoutRule(t *testing.T) {
	wf := domain.ApprovalWorkflow{}
	assert.Equal(t, domain.NoRulePolicy{}, wf.Policy())
}
