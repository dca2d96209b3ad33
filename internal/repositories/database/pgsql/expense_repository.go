package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/expense_management_app/internal/models"
	"github.com/SscSPs/expense_management_app/internal/utils/mapping"
	"github.com/SscSPs/expense_management_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const expenseColumns = `expense_id, employee_id, company_id, amount, currency_code, amount_in_company_currency,
	category, description, expense_date, merchant_name, receipt_url, status,
	created_at, created_by, last_updated_at, last_updated_by`

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

func scanExpense(row rowScanner) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.EmployeeID,
		&m.CompanyID,
		&m.Amount,
		&m.CurrencyCode,
		&m.AmountInCompanyCurrency,
		&m.Category,
		&m.Description,
		&m.ExpenseDate,
		&m.MerchantName,
		&m.ReceiptURL,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// loadHistory fetches history rows for the given expenses, grouped by expense ID and ordered by position.
func loadHistory(ctx context.Context, q querier, expenseIDs []string) (map[string][]models.ApprovalHistoryEntry, error) {
	out := make(map[string][]models.ApprovalHistoryEntry, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return out, nil
	}
	query := `
		SELECT expense_id, position, approver_id, action, comment, acted_at
		FROM expense_approval_history
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, position;
	`
	rows, err := q.Query(ctx, query, expenseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query approval history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h models.ApprovalHistoryEntry
		if err := rows.Scan(&h.ExpenseID, &h.Position, &h.ApproverID, &h.Action, &h.Comment, &h.ActedAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval history row: %w", err)
		}
		out[h.ExpenseID] = append(out[h.ExpenseID], h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval history rows: %w", err)
	}
	return out, nil
}

func findExpense(ctx context.Context, q querier, expenseID string, forUpdate bool) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanExpense(q.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("expense not found")
		}
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}
	history, err := loadHistory(ctx, q, []string{expenseID})
	if err != nil {
		return nil, err
	}
	expense := mapping.ToDomainExpense(m, history[expenseID])
	return &expense, nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	return findExpense(ctx, r.Pool, expenseID, false)
}

// FindExpenseByIDForUpdate locks the expense row for the lifetime of tx.
func (r *PgxExpenseRepository) FindExpenseByIDForUpdate(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.Expense, error) {
	return findExpense(ctx, tx, expenseID, true)
}

func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ExpenseID,
		m.EmployeeID,
		m.CompanyID,
		m.Amount,
		m.CurrencyCode,
		m.AmountInCompanyCurrency,
		m.Category,
		m.Description,
		m.ExpenseDate,
		m.MerchantName,
		m.ReceiptURL,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return apperrors.NewConflictError("expense " + expense.ExpenseID + " already exists")
		case pgForeignKeyViolation:
			return apperrors.NewValidationFailedError("employee or company does not exist")
		}
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to save expense "+expense.ExpenseID, err)
	}
	return nil
}

const updateExpenseStatusQuery = `
	UPDATE expenses
	SET status = $2, last_updated_at = $3, last_updated_by = $4
	WHERE expense_id = $1;
`

func (r *PgxExpenseRepository) UpdateExpenseStatus(ctx context.Context, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error {
	tag, err := r.Pool.Exec(ctx, updateExpenseStatusQuery, expenseID, string(status), updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update expense %s status: %w", expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("expense not found")
	}
	return nil
}

func (r *PgxExpenseRepository) UpdateExpenseStatusInTx(ctx context.Context, tx pgx.Tx, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error {
	tag, err := tx.Exec(ctx, updateExpenseStatusQuery, expenseID, string(status), updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update expense %s status: %w", expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("expense not found")
	}
	return nil
}

// AppendApprovalHistoryInTx appends at the next position. The caller holds the expense row lock,
// so positions cannot race.
func (r *PgxExpenseRepository) AppendApprovalHistoryInTx(ctx context.Context, tx pgx.Tx, expenseID string, entry domain.ApprovalHistoryEntry) error {
	query := `
		INSERT INTO expense_approval_history (expense_id, position, approver_id, action, comment, acted_at)
		SELECT $1, COALESCE(MAX(position) + 1, 0), $2, $3, $4, $5
		FROM expense_approval_history
		WHERE expense_id = $1;
	`
	if _, err := tx.Exec(ctx, query, expenseID, entry.ApproverID, string(entry.Action), entry.Comment, entry.Timestamp); err != nil {
		return fmt.Errorf("failed to append approval history for expense %s: %w", expenseID, err)
	}
	return nil
}

func (r *PgxExpenseRepository) ListExpensesBySubmitters(ctx context.Context, employeeIDs []string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	if len(employeeIDs) == 0 {
		return []domain.Expense{}, nil, nil
	}
	return r.listExpenses(ctx, `employee_id = ANY($1)`, employeeIDs, limit, nextToken)
}

func (r *PgxExpenseRepository) ListExpensesByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	return r.listExpenses(ctx, `company_id = $1`, companyID, limit, nextToken)
}

// listExpenses pages newest first using a (created_at, expense_id) keyset.
func (r *PgxExpenseRepository) listExpenses(ctx context.Context, filter string, filterArg any, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	args := []any{filterArg}
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + filter
	if nextToken != nil && *nextToken != "" {
		createdAt, expenseID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationFailedError(err.Error())
		}
		args = append(args, createdAt, expenseID)
		query += ` AND (created_at, expense_id) < ($2, $3)`
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, expense_id DESC LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	rowsOut := []models.Expense{}
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		rowsOut = append(rowsOut, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating expense rows: %w", err)
	}

	var next *string
	if len(rowsOut) > limit {
		rowsOut = rowsOut[:limit]
		last := rowsOut[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.ExpenseID)
		next = &token
	}

	ids := make([]string, len(rowsOut))
	for i, m := range rowsOut {
		ids[i] = m.ExpenseID
	}
	history, err := loadHistory(ctx, r.Pool, ids)
	if err != nil {
		return nil, nil, err
	}

	expenses := make([]domain.Expense, len(rowsOut))
	for i, m := range rowsOut {
		expenses[i] = mapping.ToDomainExpense(m, history[m.ExpenseID])
	}
	return expenses, next, nil
}
