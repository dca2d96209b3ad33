package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowStatus is the state of an approval workflow.
type WorkflowStatus string

const (
	WorkflowInProgress WorkflowStatus = "IN_PROGRESS"
	WorkflowApproved   WorkflowStatus = "APPROVED"
	WorkflowRejected   WorkflowStatus = "REJECTED"
)

// StepStatus is the state of one approval step. A step leaves PENDING exactly once.
type StepStatus string

const (
	StepPending  StepStatus = "PENDING"
	StepApproved StepStatus = "APPROVED"
	StepRejected StepStatus = "REJECTED"
)

// StepType distinguishes the manager gate from rule-derived steps.
type StepType string

const (
	StepTypeManager StepType = "MANAGER"
	StepTypeRule    StepType = "RULE"
)

// ApprovalAction is an approver's decision.
type ApprovalAction string

const (
	ActionApproved ApprovalAction = "APPROVED"
	ActionRejected ApprovalAction = "REJECTED"
)

// IsValid reports whether a is APPROVED or REJECTED.
func (a ApprovalAction) IsValid() bool {
	return a == ActionApproved || a == ActionRejected
}

// StepStatus maps the action onto the status it leaves a step in.
func (a ApprovalAction) StepStatus() StepStatus {
	if a == ActionRejected {
		return StepRejected
	}
	return StepApproved
}

// ApprovalStep is one approver's slot in a workflow.
type ApprovalStep struct {
	StepID     string     `json:"stepID"`
	ApproverID string     `json:"approverID"`
	Status     StepStatus `json:"status"`
	StepType   StepType   `json:"stepType"`
	Sequence   *int       `json:"sequence,omitempty"`
	Comment    *string    `json:"comment,omitempty"`
	ActedAt    *time.Time `json:"actedAt,omitempty"`
}

func newPendingStep(approverID string, stepType StepType, sequence *int) ApprovalStep {
	return ApprovalStep{
		ApproverID: approverID,
		Status:     StepPending,
		StepType:   stepType,
		Sequence:   sequence,
	}
}

// NewManagerStep builds the PENDING manager gate step.
func NewManagerStep(managerID string) ApprovalStep {
	return newPendingStep(managerID, StepTypeManager, nil)
}

// ApprovalWorkflow is the approval process attached to one expense.
//
// The rule's type, threshold and specific approver are copied onto the workflow when it
// is created, so later edits to the rule do not change how an in-flight workflow completes.
type ApprovalWorkflow struct {
	WorkflowID          string           `json:"workflowID"`
	ExpenseID           string           `json:"expenseID"`
	CompanyID           string           `json:"companyID"`
	RuleID              *string          `json:"ruleID,omitempty"`
	RuleType            *RuleType        `json:"ruleType,omitempty"`
	PercentageThreshold *decimal.Decimal `json:"percentageThreshold,omitempty"`
	SpecificApproverID  *string          `json:"specificApproverID,omitempty"`
	Steps               []ApprovalStep   `json:"steps"`
	Status              WorkflowStatus   `json:"status"`
	CurrentStep         int              `json:"currentStep"`
	Version             int              `json:"version"`
	AuditFields
}

// AttachRule snapshots the rule's evaluation parameters onto the workflow.
func (w *ApprovalWorkflow) AttachRule(rule ApprovalRule) {
	ruleID := rule.RuleID
	ruleType := rule.RuleType
	w.RuleID = &ruleID
	w.RuleType = &ruleType
	if rule.PercentageThreshold != nil {
		threshold := *rule.PercentageThreshold
		w.PercentageThreshold = &threshold
	}
	if rule.SpecificApproverID != nil {
		specific := *rule.SpecificApproverID
		w.SpecificApproverID = &specific
	}
}

// PendingStepIndex returns the index of the first PENDING step for approverID, or -1.
func (w *ApprovalWorkflow) PendingStepIndex(approverID string) int {
	for i, step := range w.Steps {
		if step.ApproverID == approverID && step.Status == StepPending {
			return i
		}
	}
	return -1
}

// HasStepFor reports whether approverID holds any step, whatever its status.
func (w *ApprovalWorkflow) HasStepFor(approverID string) bool {
	for _, step := range w.Steps {
		if step.ApproverID == approverID {
			return true
		}
	}
	return false
}

// CountApproved returns how many steps are APPROVED.
func (w *ApprovalWorkflow) CountApproved() int {
	return countApproved(w.Steps)
}

// Policy returns the completion policy for this workflow.
func (w *ApprovalWorkflow) Policy() ApprovalPolicy {
	if w.RuleType == nil {
		return NoRulePolicy{}
	}
	return PolicyFor(*w.RuleType, w.PercentageThreshold, w.SpecificApproverID)
}

// ApplyDecision sets the step at index to the action's status. It does not evaluate completion.
func (w *ApprovalWorkflow) ApplyDecision(index int, action ApprovalAction, comment string, at time.Time) {
	step := &w.Steps[index]
	step.Status = action.StepStatus()
	if comment != "" {
		c := comment
		step.Comment = &c
	}
	actedAt := at
	step.ActedAt = &actedAt
}

func countApproved(steps []ApprovalStep) int {
	n := 0
	for _, s := range steps {
		if s.Status == StepApproved {
			n++
		}
	}
	return n
}

// ApprovalResult is what a processed approval action produces.
type ApprovalResult struct {
	Expense         Expense          `json:"expense"`
	Workflow        ApprovalWorkflow `json:"workflow"`
	Message         string           `json:"message"`
	FinalStatus     ExpenseStatus    `json:"finalStatus"`
	IsFullyApproved bool             `json:"isFullyApproved"`
}

// PendingApproval pairs an expense with the workflow awaiting an approver.
type PendingApproval struct {
	Expense  Expense          `json:"expense"`
	Workflow ApprovalWorkflow `json:"workflow"`
}
