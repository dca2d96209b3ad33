package pgsql

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/expense_management_app/internal/models"
	"github.com/SscSPs/expense_management_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const ruleColumns = `rule_id, company_id, name, description, rule_type, percentage_threshold, specific_approver_id,
	min_amount, max_amount, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxApprovalRuleRepository struct {
	BaseRepository
}

func newPgxApprovalRuleRepository(pool *pgxpool.Pool) portsrepo.ApprovalRuleRepositoryFacade {
	return &PgxApprovalRuleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ApprovalRuleRepositoryFacade = (*PgxApprovalRuleRepository)(nil)

func scanRule(row rowScanner) (models.ApprovalRule, error) {
	var m models.ApprovalRule
	err := row.Scan(
		&m.RuleID,
		&m.CompanyID,
		&m.Name,
		&m.Description,
		&m.RuleType,
		&m.PercentageThreshold,
		&m.SpecificApproverID,
		&m.MinAmount,
		&m.MaxAmount,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// loadRuleApprovers returns approver rows keyed by rule, in the order they were configured.
func (r *PgxApprovalRuleRepository) loadRuleApprovers(ctx context.Context, ruleIDs []string) (map[string][]models.ApprovalRuleApprover, error) {
	out := make(map[string][]models.ApprovalRuleApprover, len(ruleIDs))
	if len(ruleIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT rule_id, user_id, sequence
		FROM approval_rule_approvers
		WHERE rule_id = ANY($1)
		ORDER BY rule_id, position;
	`
	rows, err := r.Pool.Query(ctx, query, ruleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule approvers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a models.ApprovalRuleApprover
		if err := rows.Scan(&a.RuleID, &a.UserID, &a.Sequence); err != nil {
			return nil, fmt.Errorf("failed to scan rule approver row: %w", err)
		}
		out[a.RuleID] = append(out[a.RuleID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule approver rows: %w", err)
	}
	return out, nil
}

func (r *PgxApprovalRuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]domain.ApprovalRule, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval rules: %w", err)
	}
	defer rows.Close()

	ruleRows := []models.ApprovalRule{}
	for rows.Next() {
		m, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval rule row: %w", err)
		}
		ruleRows = append(ruleRows, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval rule rows: %w", err)
	}
	rows.Close()

	ids := make([]string, len(ruleRows))
	for i, m := range ruleRows {
		ids[i] = m.RuleID
	}
	approvers, err := r.loadRuleApprovers(ctx, ids)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.ApprovalRule, len(ruleRows))
	for i, m := range ruleRows {
		rules[i] = mapping.ToDomainApprovalRule(m, approvers[m.RuleID])
	}
	return rules, nil
}

func (r *PgxApprovalRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error) {
	rules, err := r.queryRules(ctx, `SELECT `+ruleColumns+` FROM approval_rules WHERE rule_id = $1;`, ruleID)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, apperrors.NewNotFoundError("approval rule not found")
	}
	return &rules[0], nil
}

func (r *PgxApprovalRuleRepository) FindApplicableRule(ctx context.Context, companyID string, amount decimal.Decimal) (*domain.ApprovalRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM approval_rules
		WHERE company_id = $1 AND is_active AND min_amount <= $2 AND max_amount >= $2
		ORDER BY min_amount, created_at, rule_id
		LIMIT 1;
	`
	rules, err := r.queryRules(ctx, query, companyID, amount)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, apperrors.NewNotFoundError("no applicable approval rule")
	}
	return &rules[0], nil
}

func (r *PgxApprovalRuleRepository) ListRulesByCompany(ctx context.Context, companyID string, activeOnly bool) ([]domain.ApprovalRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM approval_rules WHERE company_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY min_amount, created_at, rule_id;`
	return r.queryRules(ctx, query, companyID)
}

func insertRuleApprovers(ctx context.Context, tx pgx.Tx, ruleID string, approvers []models.ApprovalRuleApprover) error {
	if len(approvers) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, a := range approvers {
		batch.Queue(`INSERT INTO approval_rule_approvers (rule_id, user_id, sequence, position) VALUES ($1, $2, $3, $4);`,
			ruleID, a.UserID, a.Sequence, i)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range approvers {
		if _, err := br.Exec(); err != nil {
			return mapRuleWriteError(err, ruleID)
		}
	}
	return nil
}

func mapRuleWriteError(err error, ruleID string) error {
	switch pgErrorCode(err) {
	case pgUniqueViolation:
		return apperrors.NewValidationFailedError("approvers must be distinct")
	case pgForeignKeyViolation:
		return apperrors.NewValidationFailedError("approver or company does not exist")
	}
	return apperrors.NewAppError(http.StatusInternalServerError, "failed to write approval rule "+ruleID, err)
}

func (r *PgxApprovalRuleRepository) SaveRule(ctx context.Context, rule domain.ApprovalRule) error {
	m, approvers := mapping.ToModelApprovalRule(rule)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO approval_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, query,
		m.RuleID,
		m.CompanyID,
		m.Name,
		m.Description,
		m.RuleType,
		m.PercentageThreshold,
		m.SpecificApproverID,
		m.MinAmount,
		m.MaxAmount,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return apperrors.NewConflictError("approval rule " + rule.RuleID + " already exists")
		}
		return mapRuleWriteError(err, rule.RuleID)
	}
	if err := insertRuleApprovers(ctx, tx, m.RuleID, approvers); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdateRule rewrites the rule row and replaces its approver list.
func (r *PgxApprovalRuleRepository) UpdateRule(ctx context.Context, rule domain.ApprovalRule) error {
	m, approvers := mapping.ToModelApprovalRule(rule)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE approval_rules
		SET name = $2, description = $3, rule_type = $4, percentage_threshold = $5, specific_approver_id = $6,
			min_amount = $7, max_amount = $8, is_active = $9, last_updated_at = $10, last_updated_by = $11
		WHERE rule_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.RuleID,
		m.Name,
		m.Description,
		m.RuleType,
		m.PercentageThreshold,
		m.SpecificApproverID,
		m.MinAmount,
		m.MaxAmount,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapRuleWriteError(err, rule.RuleID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("approval rule not found")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM approval_rule_approvers WHERE rule_id = $1;`, m.RuleID); err != nil {
		return fmt.Errorf("failed to clear approvers of rule %s: %w", rule.RuleID, err)
	}
	if err := insertRuleApprovers(ctx, tx, m.RuleID, approvers); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxApprovalRuleRepository) DeleteRule(ctx context.Context, ruleID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM approval_rules WHERE rule_id = $1;`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete approval rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("approval rule not found")
	}
	return nil
}
