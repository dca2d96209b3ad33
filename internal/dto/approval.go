package dto

import (
	"time"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ProcessApprovalRequest carries an approver's decision.
type ProcessApprovalRequest struct {
	Action  domain.ApprovalAction `json:"action" binding:"required,oneof=APPROVED REJECTED"`
	Comment string                `json:"comment" binding:"max=1000"`
}

// ApprovalStepResponse is the public view of a workflow step.
type ApprovalStepResponse struct {
	ApproverID string            `json:"approverID"`
	Status     domain.StepStatus `json:"status"`
	StepType   domain.StepType   `json:"stepType"`
	Sequence   *int              `json:"sequence,omitempty"`
	Comment    *string           `json:"comment,omitempty"`
	ActedAt    *time.Time        `json:"actedAt,omitempty"`
}

// WorkflowResponse is the public view of a workflow.
type WorkflowResponse struct {
	WorkflowID          string                 `json:"workflowID"`
	ExpenseID           string                 `json:"expenseID"`
	RuleID              *string                `json:"ruleID,omitempty"`
	RuleType            *domain.RuleType       `json:"ruleType,omitempty"`
	PercentageThreshold *decimal.Decimal       `json:"percentageThreshold,omitempty"`
	SpecificApproverID  *string                `json:"specificApproverID,omitempty"`
	Status              domain.WorkflowStatus  `json:"status"`
	CurrentStep         int                    `json:"currentStep"`
	Steps               []ApprovalStepResponse `json:"steps"`
}

// ProcessApprovalResponse is returned after an approval action.
type ProcessApprovalResponse struct {
	Message         string               `json:"message"`
	FinalStatus     domain.ExpenseStatus `json:"finalStatus"`
	IsFullyApproved bool                 `json:"isFullyApproved"`
	Expense         ExpenseResponse      `json:"expense"`
	Workflow        WorkflowResponse     `json:"workflow"`
}

// PendingApprovalResponse is one entry of an approver's queue.
type PendingApprovalResponse struct {
	Expense  ExpenseResponse  `json:"expense"`
	Workflow WorkflowResponse `json:"workflow"`
}

// ListPendingApprovalsResponse wraps an approver's queue.
type ListPendingApprovalsResponse struct {
	Approvals []PendingApprovalResponse `json:"approvals"`
}

func ToWorkflowResponse(w *domain.ApprovalWorkflow) WorkflowResponse {
	steps := make([]ApprovalStepResponse, len(w.Steps))
	for i, s := range w.Steps {
		steps[i] = ApprovalStepResponse{
			ApproverID: s.ApproverID,
			Status:     s.Status,
			StepType:   s.StepType,
			Sequence:   s.Sequence,
			Comment:    s.Comment,
			ActedAt:    s.ActedAt,
		}
	}
	return WorkflowResponse{
		WorkflowID:          w.WorkflowID,
		ExpenseID:           w.ExpenseID,
		RuleID:              w.RuleID,
		RuleType:            w.RuleType,
		PercentageThreshold: w.PercentageThreshold,
		SpecificApproverID:  w.SpecificApproverID,
		Status:              w.Status,
		CurrentStep:         w.CurrentStep,
		Steps:               steps,
	}
}

func ToProcessApprovalResponse(r *domain.ApprovalResult) ProcessApprovalResponse {
	return ProcessApprovalResponse{
		Message:         r.Message,
		FinalStatus:     r.FinalStatus,
		IsFullyApproved: r.IsFullyApproved,
		Expense:         ToExpenseResponse(&r.Expense),
		Workflow:        ToWorkflowResponse(&r.Workflow),
	}
}

func ToListPendingApprovalsResponse(items []domain.PendingApproval) ListPendingApprovalsResponse {
	out := make([]PendingApprovalResponse, len(items))
	for i := range items {
		out[i] = PendingApprovalResponse{
			Expense:  ToExpenseResponse(&items[i].Expense),
			Workflow: ToWorkflowResponse(&items[i].Workflow),
		}
	}
	return ListPendingApprovalsResponse{Approvals: out}
}
