package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluation is the outcome of checking a workflow's steps against its policy.
type Evaluation struct {
	FullyApproved bool
	Message       string
}

// ApprovalPolicy decides when a set of steps amounts to a full approval.
// The set of implementations is closed: NoRulePolicy, SequentialPolicy,
// PercentagePolicy, SpecificPolicy and HybridPolicy.
//
// Evaluate never fails. A policy missing its threshold or designated approver
// treats that condition as unsatisfied.
type ApprovalPolicy interface {
	Evaluate(steps []ApprovalStep) Evaluation
	approvalPolicy()
}

// PolicyFor builds the policy for a rule type and its parameters.
func PolicyFor(ruleType RuleType, threshold *decimal.Decimal, specificApproverID *string) ApprovalPolicy {
	switch ruleType {
	case RuleSequential:
		return SequentialPolicy{}
	case RulePercentage:
		return PercentagePolicy{Threshold: threshold}
	case RuleSpecific:
		return SpecificPolicy{ApproverID: specificApproverID}
	case RuleHybrid:
		return HybridPolicy{Threshold: threshold, ApproverID: specificApproverID}
	}
	return NoRulePolicy{}
}

// NoRulePolicy applies when only the manager gate exists: every step must approve.
type NoRulePolicy struct{}

func (NoRulePolicy) approvalPolicy() {}

func (NoRulePolicy) Evaluate(steps []ApprovalStep) Evaluation {
	if allApproved(steps) {
		return Evaluation{FullyApproved: true, Message: "All approvers have approved"}
	}
	return Evaluation{Message: "Approval recorded, awaiting other approvers"}
}

// SequentialPolicy requires every step. Order of arrival is not enforced.
type SequentialPolicy struct{}

func (SequentialPolicy) approvalPolicy() {}

func (SequentialPolicy) Evaluate(steps []ApprovalStep) Evaluation {
	if allApproved(steps) {
		return Evaluation{FullyApproved: true, Message: "All sequential approvals completed"}
	}
	next := 0
	for i, s := range steps {
		if s.Status == StepPending {
			next = i
			break
		}
	}
	return Evaluation{Message: fmt.Sprintf("Approved. Waiting for approver %d", next+1)}
}

// PercentagePolicy approves once approved/total reaches Threshold percent. Manager steps count.
type PercentagePolicy struct {
	Threshold *decimal.Decimal
}

func (PercentagePolicy) approvalPolicy() {}

func (p PercentagePolicy) Evaluate(steps []ApprovalStep) Evaluation {
	approved, total := countApproved(steps), len(steps)
	pct := percentLabel(approved, total)
	if thresholdMet(p.Threshold, approved, total) {
		return Evaluation{
			FullyApproved: true,
			Message:       fmt.Sprintf("%s%% approval threshold met (required: %s%%)", pct, thresholdLabel(p.Threshold)),
		}
	}
	return Evaluation{
		Message: fmt.Sprintf("%d/%d approved (%s%% - need %s%%)", approved, total, pct, thresholdLabel(p.Threshold)),
	}
}

// SpecificPolicy approves as soon as the designated approver's step is APPROVED.
type SpecificPolicy struct {
	ApproverID *string
}

func (SpecificPolicy) approvalPolicy() {}

func (p SpecificPolicy) Evaluate(steps []ApprovalStep) Evaluation {
	if specificApproved(p.ApproverID, steps) {
		return Evaluation{FullyApproved: true, Message: "Approved by designated approver"}
	}
	return Evaluation{Message: "Awaiting approval from designated approver"}
}

// HybridPolicy approves when either the percentage threshold or the designated approver is satisfied.
type HybridPolicy struct {
	Threshold  *decimal.Decimal
	ApproverID *string
}

func (HybridPolicy) approvalPolicy() {}

func (p HybridPolicy) Evaluate(steps []ApprovalStep) Evaluation {
	approved, total := countApproved(steps), len(steps)
	pct := percentLabel(approved, total)
	if thresholdMet(p.Threshold, approved, total) {
		return Evaluation{FullyApproved: true, Message: fmt.Sprintf("Approved via percentage threshold (%s%%)", pct)}
	}
	if specificApproved(p.ApproverID, steps) {
		return Evaluation{FullyApproved: true, Message: "Approved via designated approver"}
	}
	return Evaluation{
		Message: fmt.Sprintf("%d/%d approved (%s%% - need %s%% OR specific approver)", approved, total, pct, thresholdLabel(p.Threshold)),
	}
}

func allApproved(steps []ApprovalStep) bool {
	for _, s := range steps {
		if s.Status != StepApproved {
			return false
		}
	}
	return true
}

// thresholdMet compares approved*100 >= threshold*total exactly, avoiding a rounded ratio.
func thresholdMet(threshold *decimal.Decimal, approved, total int) bool {
	if threshold == nil || total == 0 {
		return false
	}
	lhs := decimal.NewFromInt(int64(approved)).Mul(hundred)
	rhs := threshold.Mul(decimal.NewFromInt(int64(total)))
	return lhs.GreaterThanOrEqual(rhs)
}

func specificApproved(approverID *string, steps []ApprovalStep) bool {
	if approverID == nil || *approverID == "" {
		return false
	}
	for _, s := range steps {
		if s.ApproverID == *approverID && s.Status == StepApproved {
			return true
		}
	}
	return false
}

func percentLabel(approved, total int) string {
	if total == 0 {
		return "0"
	}
	return decimal.NewFromInt(int64(approved)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(0).String()
}

func thresholdLabel(threshold *decimal.Decimal) string {
	if threshold == nil {
		return "-"
	}
	return threshold.String()
}
