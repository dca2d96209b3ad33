package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/expense_management_app/internal/middleware"
	"github.com/SscSPs/expense_management_app/internal/platform/metrics"
)

// systemActor is recorded in audit fields for changes no user performed directly.
const systemActor = "system"

// BaseService provides common functionality for all services
type BaseService struct {
	Metrics *metrics.Recorder
	// Now is overridable so tests can pin timestamps.
	Now func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a recoverable problem with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

func (s *BaseService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// loadRequester resolves the authenticated caller. A caller that no longer exists is unauthorized.
func (s *BaseService) loadRequester(ctx context.Context, users portsrepo.UserReader, userID string) (*domain.User, error) {
	user, err := users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewAppError(http.StatusUnauthorized, "requesting user no longer exists", apperrors.ErrUnauthorized)
		}
		s.LogError(ctx, err, "Failed to load requesting user", slog.String("user_id", userID))
		return nil, err
	}
	if user.DeletedAt != nil {
		return nil, apperrors.NewAppError(http.StatusUnauthorized, "requesting user no longer exists", apperrors.ErrUnauthorized)
	}
	return user, nil
}

// requireAdmin loads the caller and checks for the ADMIN role.
func (s *BaseService) requireAdmin(ctx context.Context, users portsrepo.UserReader, userID string) (*domain.User, error) {
	user, err := s.loadRequester(ctx, users, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbiddenError("only company administrators can perform this action")
	}
	return user, nil
}
