package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/SscSPs/expense_management_app/internal/platform/config"
	"github.com/SscSPs/expense_management_app/internal/utils"
	"github.com/google/uuid"
)

// tokenService issues JWT access tokens carrying the user's role and company, and refresh
// tokens whose SHA-256 hash lives on the user row.
type tokenService struct {
	BaseService
	cfg      *config.Config
	userRepo portsrepo.UserRepositoryFacade
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config, userRepo portsrepo.UserRepositoryFacade) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg, userRepo: userRepo}
}

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)
	accessToken, err := utils.GenerateJWT(user.UserID, string(user.Role), user.CompanyID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return accessToken, expiryTime, nil
}

// GenerateRefreshToken creates a new refresh token for the given user. Only its hash is stored,
// so issuing one invalidates the previous token.
func (s *tokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	rawRefreshToken, hash, err := utils.NewRefreshToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiryTime := s.now().Add(s.cfg.RefreshTokenExpiryDuration)
	if err := s.userRepo.UpdateRefreshToken(ctx, user.UserID, hash, expiryTime); err != nil {
		s.LogError(ctx, err, "Failed to store refresh token", slog.String("user_id", user.UserID))
		return "", time.Time{}, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return rawRefreshToken, expiryTime, nil
}

// ValidateAndParseRefreshToken checks refreshToken against the hash and expiry stored for userID.
func (s *tokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshToken string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to retrieve user for refresh token validation: %w", err)
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenExpiryTime == nil {
		return nil, errInvalidRefreshToken
	}
	if s.now().After(*user.RefreshTokenExpiryTime) {
		return nil, apperrors.ErrRefreshTokenExpired
	}
	if !utils.CompareRefreshTokenHash(refreshToken, user.RefreshTokenHash) {
		s.LogWarn(ctx, errInvalidRefreshToken, "Refresh token mismatch", slog.String("user_id", userID))
		return nil, errInvalidRefreshToken
	}
	return user, nil
}

func (s *tokenService) RevokeRefreshToken(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		s.LogError(ctx, err, "Failed to revoke refresh token", slog.String("user_id", userID))
		return err
	}
	return nil
}

type authService struct {
	BaseService
	companyRepo portsrepo.CompanyRepositoryWithTx
	userRepo    portsrepo.UserReader
}

func NewAuthService(companyRepo portsrepo.CompanyRepositoryWithTx, userRepo portsrepo.UserReader) portssvc.AuthSvcFacade {
	return &authService{companyRepo: companyRepo, userRepo: userRepo}
}

var (
	errInvalidCredentials  = apperrors.NewAppError(http.StatusUnauthorized, "invalid email or password", apperrors.ErrUnauthorized)
	errInvalidRefreshToken = apperrors.NewUnauthorizedError("invalid refresh token")
	errUnverifiedGoogle    = apperrors.NewUnauthorizedError("Google account email is not verified")
)

// Companies created on first Google sign-in start with these settings; an admin can change them later.
const (
	googleCompanyCountry  = "United States"
	googleCompanyCurrency = "USD"
)

// SignUp registers a company together with its first administrator.
func (s *authService) SignUp(ctx context.Context, req dto.SignUpRequest) (*domain.User, *domain.Company, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.FindUserByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflictError("a user with this email already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, nil, apperrors.NewValidationError(err.Error())
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	adminID := uuid.NewString()
	company := domain.Company{
		CompanyID:    uuid.NewString(),
		Name:         req.CompanyName,
		Country:      req.Country,
		CurrencyCode: strings.ToUpper(req.CurrencyCode),
		AuditFields:  domain.NewAuditFields(adminID, now),
	}
	admin := domain.User{
		UserID:       adminID,
		CompanyID:    company.CompanyID,
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		AuditFields:  domain.NewAuditFields(adminID, now),
	}

	if err := s.companyRepo.SaveCompanyWithAdmin(ctx, company, admin); err != nil {
		s.LogError(ctx, err, "Failed to register company", slog.String("company_name", company.Name))
		return nil, nil, err
	}
	s.LogInfo(ctx, "Company registered",
		slog.String("company_id", company.CompanyID),
		slog.String("admin_id", admin.UserID))
	return &admin, &company, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, err
	}
	if user.DeletedAt != nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}
	return user, nil
}

// LoginWithGoogle signs in the owner of a verified Google email. Unknown emails get a new company
// named after the person, with them as its ADMIN and no password set.
func (s *authService) LoginWithGoogle(ctx context.Context, identity domain.GoogleIdentity) (*domain.User, bool, error) {
	if !identity.EmailVerified {
		return nil, false, errUnverifiedGoogle
	}
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, false, apperrors.NewValidationError("Google account has no email")
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up user for Google sign-in")
		return nil, false, err
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	now := s.now()
	adminID := uuid.NewString()
	company := domain.Company{
		CompanyID:    uuid.NewString(),
		Name:         name + "'s Company",
		Country:      googleCompanyCountry,
		CurrencyCode: googleCompanyCurrency,
		AuditFields:  domain.NewAuditFields(adminID, now),
	}
	admin := domain.User{
		UserID:      adminID,
		CompanyID:   company.CompanyID,
		Name:        name,
		Email:       email,
		Role:        domain.RoleAdmin,
		AuditFields: domain.NewAuditFields(adminID, now),
	}
	if err := s.companyRepo.SaveCompanyWithAdmin(ctx, company, admin); err != nil {
		s.LogError(ctx, err, "Failed to register company for Google sign-in", slog.String("company_name", company.Name))
		return nil, false, err
	}
	s.LogInfo(ctx, "Company registered through Google sign-in",
		slog.String("company_id", company.CompanyID),
		slog.String("admin_id", admin.UserID))
	return &admin, true, nil
}
