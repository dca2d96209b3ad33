package repositories

import (
	"context"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
)

// CompanyReader defines read operations for companies.
type CompanyReader interface {
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)
}

// CompanyWriter defines write operations for companies.
type CompanyWriter interface {
	// SaveCompanyWithAdmin creates a company and its first administrator atomically.
	SaveCompanyWithAdmin(ctx context.Context, company domain.Company, admin domain.User) error
}

// CompanyRepositoryWithTx combines company operations with transaction management.
type CompanyRepositoryWithTx interface {
	CompanyReader
	CompanyWriter
	TransactionManager
}
