package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalRule is a row of the approval_rules table.
type ApprovalRule struct {
	RuleID              string              `db:"rule_id"`
	CompanyID           string              `db:"company_id"`
	Name                string              `db:"name"`
	Description         string              `db:"description"`
	RuleType            string              `db:"rule_type"`
	PercentageThreshold decimal.NullDecimal `db:"percentage_threshold"`
	SpecificApproverID  sql.NullString      `db:"specific_approver_id"`
	MinAmount           decimal.Decimal     `db:"min_amount"`
	MaxAmount           decimal.Decimal     `db:"max_amount"`
	IsActive            bool                `db:"is_active"`
	AuditFields
}

// ApprovalRuleApprover is a row of the approval_rule_approvers table.
type ApprovalRuleApprover struct {
	RuleID   string `db:"rule_id"`
	UserID   string `db:"user_id"`
	Sequence int    `db:"sequence"`
}

// ApprovalWorkflow is a row of the approval_workflows table.
type ApprovalWorkflow struct {
	WorkflowID          string              `db:"workflow_id"`
	ExpenseID           string              `db:"expense_id"`
	CompanyID           string              `db:"company_id"`
	RuleID              sql.NullString      `db:"rule_id"`
	RuleType            sql.NullString      `db:"rule_type"`
	PercentageThreshold decimal.NullDecimal `db:"percentage_threshold"`
	SpecificApproverID  sql.NullString      `db:"specific_approver_id"`
	Status              string              `db:"status"`
	CurrentStep         int                 `db:"current_step"`
	Version             int                 `db:"version"`
	AuditFields
}

// ApprovalStep is a row of the approval_steps table.
type ApprovalStep struct {
	StepID     string         `db:"step_id"`
	WorkflowID string         `db:"workflow_id"`
	Position   int            `db:"position"`
	ApproverID string         `db:"approver_id"`
	Status     string         `db:"status"`
	StepType   string         `db:"step_type"`
	Sequence   sql.NullInt32  `db:"sequence"`
	Comment    sql.NullString `db:"comment"`
	ActedAt    *time.Time     `db:"acted_at"`
}
