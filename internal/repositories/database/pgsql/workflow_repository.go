package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/expense_management_app/internal/models"
	"github.com/SscSPs/expense_management_app/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const workflowColumns = `workflow_id, expense_id, company_id, rule_id, rule_type, percentage_threshold, specific_approver_id,
	status, current_step, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxWorkflowRepository struct {
	BaseRepository
}

func newPgxWorkflowRepository(pool *pgxpool.Pool) portsrepo.WorkflowRepositoryWithTx {
	return &PgxWorkflowRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WorkflowRepositoryWithTx = (*PgxWorkflowRepository)(nil)

func scanWorkflow(row rowScanner) (models.ApprovalWorkflow, error) {
	var m models.ApprovalWorkflow
	err := row.Scan(
		&m.WorkflowID,
		&m.ExpenseID,
		&m.CompanyID,
		&m.RuleID,
		&m.RuleType,
		&m.PercentageThreshold,
		&m.SpecificApproverID,
		&m.Status,
		&m.CurrentStep,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func loadSteps(ctx context.Context, q querier, workflowIDs []string) (map[string][]models.ApprovalStep, error) {
	out := make(map[string][]models.ApprovalStep, len(workflowIDs))
	if len(workflowIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT step_id, workflow_id, position, approver_id, status, step_type, sequence, comment, acted_at
		FROM approval_steps
		WHERE workflow_id = ANY($1)
		ORDER BY workflow_id, position;
	`
	rows, err := q.Query(ctx, query, workflowIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval steps: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s models.ApprovalStep
		if err := rows.Scan(&s.StepID, &s.WorkflowID, &s.Position, &s.ApproverID, &s.Status, &s.StepType, &s.Sequence, &s.Comment, &s.ActedAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval step row: %w", err)
		}
		out[s.WorkflowID] = append(out[s.WorkflowID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval step rows: %w", err)
	}
	return out, nil
}

func findOneWorkflow(ctx context.Context, q querier, query string, args ...any) (*domain.ApprovalWorkflow, error) {
	m, err := scanWorkflow(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("approval workflow not found")
		}
		return nil, fmt.Errorf("failed to find approval workflow: %w", err)
	}
	steps, err := loadSteps(ctx, q, []string{m.WorkflowID})
	if err != nil {
		return nil, err
	}
	wf := mapping.ToDomainApprovalWorkflow(m, steps[m.WorkflowID])
	return &wf, nil
}

func (r *PgxWorkflowRepository) FindWorkflowByExpenseID(ctx context.Context, expenseID string) (*domain.ApprovalWorkflow, error) {
	return findOneWorkflow(ctx, r.Pool, `SELECT `+workflowColumns+` FROM approval_workflows WHERE expense_id = $1;`, expenseID)
}

func (r *PgxWorkflowRepository) FindActiveWorkflowByExpenseIDForUpdate(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.ApprovalWorkflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM approval_workflows WHERE expense_id = $1 AND status = $2 FOR UPDATE;`
	return findOneWorkflow(ctx, tx, query, expenseID, string(domain.WorkflowInProgress))
}

func (r *PgxWorkflowRepository) ListPendingForApprover(ctx context.Context, companyID string, approverID string) ([]domain.ApprovalWorkflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM approval_workflows w
		WHERE w.company_id = $1 AND w.status = $2
			AND EXISTS (
				SELECT 1 FROM approval_steps s
				WHERE s.workflow_id = w.workflow_id AND s.approver_id = $3 AND s.status = $4
			)
		ORDER BY w.created_at DESC, w.workflow_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, string(domain.WorkflowInProgress), approverID, string(domain.StepPending))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending workflows: %w", err)
	}
	defer rows.Close()

	wfRows := []models.ApprovalWorkflow{}
	for rows.Next() {
		m, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow row: %w", err)
		}
		wfRows = append(wfRows, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow rows: %w", err)
	}

	ids := make([]string, len(wfRows))
	for i, m := range wfRows {
		ids[i] = m.WorkflowID
	}
	steps, err := loadSteps(ctx, r.Pool, ids)
	if err != nil {
		return nil, err
	}
	workflows := make([]domain.ApprovalWorkflow, len(wfRows))
	for i, m := range wfRows {
		workflows[i] = mapping.ToDomainApprovalWorkflow(m, steps[m.WorkflowID])
	}
	return workflows, nil
}

// SaveWorkflowInTx inserts the workflow and its steps. Steps without an ID get a fresh one.
func (r *PgxWorkflowRepository) SaveWorkflowInTx(ctx context.Context, tx pgx.Tx, workflow domain.ApprovalWorkflow) error {
	m, steps := mapping.ToModelApprovalWorkflow(workflow)
	query := `
		INSERT INTO approval_workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		m.WorkflowID,
		m.ExpenseID,
		m.CompanyID,
		m.RuleID,
		m.RuleType,
		m.PercentageThreshold,
		m.SpecificApproverID,
		m.Status,
		m.CurrentStep,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return apperrors.NewConflictError("expense already has an approval workflow")
		}
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to save approval workflow", err)
	}

	if len(steps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range steps {
		if s.StepID == "" {
			s.StepID = uuid.NewString()
		}
		batch.Queue(`
			INSERT INTO approval_steps (step_id, workflow_id, position, approver_id, status, step_type, sequence, comment, acted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`,
			s.StepID, s.WorkflowID, s.Position, s.ApproverID, s.Status, s.StepType, s.Sequence, s.Comment, s.ActedAt)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range steps {
		if _, err := br.Exec(); err != nil {
			if pgErrorCode(err) == pgForeignKeyViolation {
				return apperrors.NewValidationFailedError("approver does not exist")
			}
			return fmt.Errorf("failed to insert approval step: %w", err)
		}
	}
	return nil
}

// UpdateWorkflowInTx applies an optimistic version check before writing the workflow and its step decisions.
func (r *PgxWorkflowRepository) UpdateWorkflowInTx(ctx context.Context, tx pgx.Tx, workflow domain.ApprovalWorkflow) error {
	m, steps := mapping.ToModelApprovalWorkflow(workflow)
	query := `
		UPDATE approval_workflows
		SET status = $3, current_step = $4, version = version + 1, last_updated_at = $5, last_updated_by = $6
		WHERE workflow_id = $1 AND version = $2;
	`
	tag, err := tx.Exec(ctx, query, m.WorkflowID, m.Version, m.Status, m.CurrentStep, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update approval workflow %s: %w", m.WorkflowID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflictError("approval workflow was modified concurrently")
	}

	batch := &pgx.Batch{}
	for _, s := range steps {
		batch.Queue(`
			UPDATE approval_steps SET status = $3, comment = $4, acted_at = $5
			WHERE workflow_id = $1 AND position = $2;`,
			s.WorkflowID, s.Position, s.Status, s.Comment, s.ActedAt)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range steps {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to update approval step: %w", err)
		}
	}
	return nil
}
