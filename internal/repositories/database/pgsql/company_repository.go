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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCompanyRepository struct {
	BaseRepository
	userRepo *PgxUserRepository
}

func newPgxCompanyRepository(pool *pgxpool.Pool, userRepo *PgxUserRepository) portsrepo.CompanyRepositoryWithTx {
	return &PgxCompanyRepository{BaseRepository: BaseRepository{Pool: pool}, userRepo: userRepo}
}

var _ portsrepo.CompanyRepositoryWithTx = (*PgxCompanyRepository)(nil)

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `
		SELECT company_id, name, country, currency_code, created_at, created_by, last_updated_at, last_updated_by
		FROM companies
		WHERE company_id = $1;
	`
	var m models.Company
	err := r.Pool.QueryRow(ctx, query, companyID).Scan(
		&m.CompanyID, &m.Name, &m.Country, &m.CurrencyCode,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("company " + companyID + " not found")
		}
		return nil, fmt.Errorf("failed to find company by ID %s: %w", companyID, err)
	}
	company := mapping.ToDomainCompany(m)
	return &company, nil
}

// SaveCompanyWithAdmin inserts the company and its admin in one transaction.
func (r *PgxCompanyRepository) SaveCompanyWithAdmin(ctx context.Context, company domain.Company, admin domain.User) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	m := mapping.ToModelCompany(company)
	query := `
		INSERT INTO companies (company_id, name, country, currency_code, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	if _, err := tx.Exec(ctx, query,
		m.CompanyID, m.Name, m.Country, m.CurrencyCode,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	); err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return apperrors.NewConflictError("company " + company.CompanyID + " already exists")
		}
		return apperrors.NewAppError(http.StatusInternalServerError, "failed to insert company "+company.CompanyID, err)
	}

	if err := r.userRepo.insertUser(ctx, tx, admin); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}
