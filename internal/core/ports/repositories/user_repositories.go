package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by login email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindEmployeeWithManager loads a user together with their manager, if any.
	FindEmployeeWithManager(ctx context.Context, userID string) (*domain.EmployeeWithManager, error)

	// FindUsersByCompany lists the live users of a company.
	FindUsersByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.User, error)

	// FindDirectReports lists users whose manager is managerID.
	FindDirectReports(ctx context.Context, managerID string) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser updates an existing user's details.
	UpdateUser(ctx context.Context, user domain.User) error

	// UpdateProfile updates the self-service fields: name, email and password hash.
	UpdateProfile(ctx context.Context, user domain.User) error
}

// UserTokenStore keeps the hashed refresh token on the user row.
type UserTokenStore interface {
	// UpdateRefreshToken replaces the user's refresh token hash and expiry.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiresAt time.Time) error

	// ClearRefreshToken removes the user's refresh token.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserLifecycleManager defines operations for managing user lifecycle
type UserLifecycleManager interface {
	// MarkUserDeleted marks a user as deleted (soft delete).
	MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
	UserTokenStore
}
