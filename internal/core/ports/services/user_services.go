package services

import (
	"context"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/SscSPs/expense_management_app/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers retrieves the users of the requester's company.
	ListUsers(ctx context.Context, requestingUserID string, limit, offset int) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data. Only company admins may call these.
type UserWriterSvc interface {
	// CreateUser creates a user in the admin's company.
	CreateUser(ctx context.Context, req dto.CreateUserRequest, requestingUserID string) (*domain.User, error)

	// UpdateUser changes name, role, manager or the manager-approver flag.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error)
}

// UserProfileSvc lets any user edit their own account.
type UserProfileSvc interface {
	// UpdateProfile changes the caller's name, email or password.
	UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*domain.User, error)
}

// UserLifecycleSvc defines operations for managing user lifecycle
type UserLifecycleSvc interface {
	// DeleteUser marks a user as deleted (soft delete).
	DeleteUser(ctx context.Context, userID string, requestingUserID string) error
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserProfileSvc
	UserLifecycleSvc
}
