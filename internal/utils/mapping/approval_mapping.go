package mapping

import (
	"database/sql"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/SscSPs/expense_management_app/internal/models"
)

// ToModelApprovalRule converts a domain ApprovalRule to its row and approver rows.
func ToModelApprovalRule(d domain.ApprovalRule) (models.ApprovalRule, []models.ApprovalRuleApprover) {
	approvers := make([]models.ApprovalRuleApprover, len(d.Approvers))
	for i, a := range d.Approvers {
		approvers[i] = models.ApprovalRuleApprover{RuleID: d.RuleID, UserID: a.UserID, Sequence: a.Sequence}
	}
	return models.ApprovalRule{
		RuleID:              d.RuleID,
		CompanyID:           d.CompanyID,
		Name:                d.Name,
		Description:         d.Description,
		RuleType:            string(d.RuleType),
		PercentageThreshold: toNullDecimal(d.PercentageThreshold),
		SpecificApproverID:  toNullString(d.SpecificApproverID),
		MinAmount:           d.MinAmount,
		MaxAmount:           d.MaxAmount,
		IsActive:            d.IsActive,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}, approvers
}

// ToDomainApprovalRule converts a rule row and its approver rows to a domain ApprovalRule
func ToDomainApprovalRule(m models.ApprovalRule, approvers []models.ApprovalRuleApprover) domain.ApprovalRule {
	out := make([]domain.RuleApprover, len(approvers))
	for i, a := range approvers {
		out[i] = domain.RuleApprover{UserID: a.UserID, Sequence: a.Sequence}
	}
	return domain.ApprovalRule{
		RuleID:              m.RuleID,
		CompanyID:           m.CompanyID,
		Name:                m.Name,
		Description:         m.Description,
		RuleType:            domain.RuleType(m.RuleType),
		Approvers:           out,
		PercentageThreshold: fromNullDecimal(m.PercentageThreshold),
		SpecificApproverID:  fromNullString(m.SpecificApproverID),
		MinAmount:           m.MinAmount,
		MaxAmount:           m.MaxAmount,
		IsActive:            m.IsActive,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelApprovalWorkflow converts a domain workflow to its row and step rows.
func ToModelApprovalWorkflow(d domain.ApprovalWorkflow) (models.ApprovalWorkflow, []models.ApprovalStep) {
	var ruleType sql.NullString
	if d.RuleType != nil {
		ruleType = sql.NullString{String: string(*d.RuleType), Valid: true}
	}
	steps := make([]models.ApprovalStep, len(d.Steps))
	for i, s := range d.Steps {
		var seq sql.NullInt32
		if s.Sequence != nil {
			seq = sql.NullInt32{Int32: int32(*s.Sequence), Valid: true}
		}
		steps[i] = models.ApprovalStep{
			StepID:     s.StepID,
			WorkflowID: d.WorkflowID,
			Position:   i,
			ApproverID: s.ApproverID,
			Status:     string(s.Status),
			StepType:   string(s.StepType),
			Sequence:   seq,
			Comment:    toNullString(s.Comment),
			ActedAt:    s.ActedAt,
		}
	}
	return models.ApprovalWorkflow{
		WorkflowID:          d.WorkflowID,
		ExpenseID:           d.ExpenseID,
		CompanyID:           d.CompanyID,
		RuleID:              toNullString(d.RuleID),
		RuleType:            ruleType,
		PercentageThreshold: toNullDecimal(d.PercentageThreshold),
		SpecificApproverID:  toNullString(d.SpecificApproverID),
		Status:              string(d.Status),
		CurrentStep:         d.CurrentStep,
		Version:             d.Version,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}, steps
}

// ToDomainApprovalWorkflow converts a workflow row and its position-ordered steps to a domain workflow
func ToDomainApprovalWorkflow(m models.ApprovalWorkflow, steps []models.ApprovalStep) domain.ApprovalWorkflow {
	var ruleType *domain.RuleType
	if m.RuleType.Valid {
		rt := domain.RuleType(m.RuleType.String)
		ruleType = &rt
	}
	out := make([]domain.ApprovalStep, len(steps))
	for i, s := range steps {
		var seq *int
		if s.Sequence.Valid {
			v := int(s.Sequence.Int32)
			seq = &v
		}
		out[i] = domain.ApprovalStep{
			StepID:     s.StepID,
			ApproverID: s.ApproverID,
			Status:     domain.StepStatus(s.Status),
			StepType:   domain.StepType(s.StepType),
			Sequence:   seq,
			Comment:    fromNullString(s.Comment),
			ActedAt:    s.ActedAt,
		}
	}
	return domain.ApprovalWorkflow{
		WorkflowID:          m.WorkflowID,
		ExpenseID:           m.ExpenseID,
		CompanyID:           m.CompanyID,
		RuleID:              fromNullString(m.RuleID),
		RuleType:            ruleType,
		PercentageThreshold: fromNullDecimal(m.PercentageThreshold),
		SpecificApproverID:  fromNullString(m.SpecificApproverID),
		Steps:               out,
		Status:              domain.WorkflowStatus(m.Status),
		CurrentStep:         m.CurrentStep,
		Version:             m.Version,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}
