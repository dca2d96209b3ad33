package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/SscSPs/expense_management_app/internal/utils"
	"github.com/google/uuid"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user", slog.String("user_id", userID))
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, requestingUserID string, limit, offset int) ([]domain.User, error) {
	requester, err := s.requireAdmin(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindUsersByCompany(ctx, requester.CompanyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users", slog.String("company_id", requester.CompanyID))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest, requestingUserID string) (*domain.User, error) {
	admin, err := s.requireAdmin(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return nil, err
	}
	if !req.Role.IsValid() {
		return nil, apperrors.NewValidationFailedError("role must be one of ADMIN, MANAGER, EMPLOYEE")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	userID := uuid.NewString()
	if req.ManagerID != nil {
		if err := s.validateManager(ctx, *req.ManagerID, userID, admin.CompanyID); err != nil {
			return nil, err
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		UserID:            userID,
		CompanyID:         admin.CompanyID,
		Name:              req.Name,
		Email:             email,
		PasswordHash:      hash,
		Role:              req.Role,
		ManagerID:         req.ManagerID,
		IsManagerApprover: req.IsManagerApprover,
		AuditFields:       domain.NewAuditFields(admin.UserID, s.now()),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.LogInfo(ctx, "User created", slog.String("user_id", userID), slog.String("role", string(user.Role)))
	return &user, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	admin, err := s.requireAdmin(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return nil, err
	}
	user, err := s.findCompanyUser(ctx, userID, admin.CompanyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, apperrors.NewValidationFailedError("role must be one of ADMIN, MANAGER, EMPLOYEE")
		}
		user.Role = *req.Role
	}
	switch {
	case req.ClearManager:
		user.ManagerID = nil
	case req.ManagerID != nil:
		if err := s.validateManager(ctx, *req.ManagerID, user.UserID, admin.CompanyID); err != nil {
			return nil, err
		}
		user.ManagerID = req.ManagerID
	}
	if req.IsManagerApprover != nil {
		user.IsManagerApprover = *req.IsManagerApprover
	}
	user.Touch(admin.UserID, s.now())

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to update user", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a user's edit of their own name, email or password. Changing the
// password also revokes the refresh token.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError("user no longer exists")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be blank")
		}
		user.Name = name
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}

	passwordChanged := false
	if req.NewPassword != nil {
		if user.HasPassword() {
			if req.CurrentPassword == nil || *req.CurrentPassword == "" {
				return nil, apperrors.NewValidationError("currentPassword is required to set a new password")
			}
			if !utils.CheckPasswordHash(*req.CurrentPassword, user.PasswordHash) {
				return nil, apperrors.NewValidationError("current password is incorrect")
			}
		}
		hash, err := utils.HashPassword(*req.NewPassword)
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationError(err.Error())
		}
		if err != nil {
			s.LogError(ctx, err, "Failed to hash password")
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
		passwordChanged = true
	}

	user.Touch(user.UserID, s.now())
	if err := s.userRepo.UpdateProfile(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to update profile", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if passwordChanged {
		if err := s.userRepo.ClearRefreshToken(ctx, user.UserID); err != nil {
			s.LogError(ctx, err, "Failed to revoke refresh token after password change", slog.String("user_id", userID))
			return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		user.RefreshTokenHash = ""
		user.RefreshTokenExpiryTime = nil
	}
	s.LogInfo(ctx, "Profile updated", slog.String("user_id", userID), slog.Bool("password_changed", passwordChanged))
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	admin, err := s.requireAdmin(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return err
	}
	if userID == admin.UserID {
		return apperrors.NewValidationError("you cannot delete yourself")
	}
	if _, err := s.findCompanyUser(ctx, userID, admin.CompanyID); err != nil {
		return err
	}
	if err := s.userRepo.MarkUserDeleted(ctx, userID, s.now(), admin.UserID); err != nil {
		s.LogError(ctx, err, "Failed to delete user", slog.String("user_id", userID))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.LogInfo(ctx, "User deleted", slog.String("user_id", userID))
	return nil
}

func (s *userService) findCompanyUser(ctx context.Context, userID, companyID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.CompanyID != companyID || user.DeletedAt != nil {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return user, nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		return apperrors.NewConflictError("a user with this email already exists")
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

// validateManager requires a live member of the same company other than the user.
func (s *userService) validateManager(ctx context.Context, managerID, userID, companyID string) error {
	if managerID == userID {
		return apperrors.NewValidationFailedError("a user cannot be their own manager")
	}
	manager, err := s.userRepo.FindUserByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationFailedError("manager does not exist")
		}
		return err
	}
	if manager.CompanyID != companyID || manager.DeletedAt != nil {
		return apperrors.NewValidationFailedError("manager must belong to the same company")
	}
	return nil
}
