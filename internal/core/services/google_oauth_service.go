package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/platform/config"
	"github.com/SscSPs/expense_management_app/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// IDTokenValidator checks a Google ID token for audience and returns its payload.
type IDTokenValidator func(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)

// googleOAuthService implements portssvc.GoogleOAuthSvcFacade.
type googleOAuthService struct {
	BaseService
	cfg          *config.Config
	oauth2Config *oauth2.Config
	validate     IDTokenValidator
}

// GoogleOAuthOption customises a googleOAuthService.
type GoogleOAuthOption func(*googleOAuthService)

// WithGoogleEndpoint overrides Google's OAuth endpoint.
func WithGoogleEndpoint(endpoint oauth2.Endpoint) GoogleOAuthOption {
	return func(s *googleOAuthService) { s.oauth2Config.Endpoint = endpoint }
}

// WithIDTokenValidator replaces idtoken.Validate.
func WithIDTokenValidator(v IDTokenValidator) GoogleOAuthOption {
	return func(s *googleOAuthService) { s.validate = v }
}

// NewGoogleOAuthService creates a new instance of googleOAuthService.
func NewGoogleOAuthService(cfg *config.Config, opts ...GoogleOAuthOption) portssvc.GoogleOAuthSvcFacade {
	s := &googleOAuthService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		validate: idtoken.Validate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *googleOAuthService) Enabled() bool {
	return s.cfg.GoogleOAuthEnabled()
}

// GenerateStateString returns 16 random bytes, hex encoded, for CSRF protection.
func (s *googleOAuthService) GenerateStateString(ctx context.Context) (string, error) {
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

func (s *googleOAuthService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// ExchangeCode trades code for Google tokens and validates the returned ID token.
func (s *googleOAuthService) ExchangeCode(ctx context.Context, code string) (*domain.GoogleIdentity, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			return nil, apperrors.NewValidationError("Invalid or expired authorization code provided by Google")
		}
		s.LogError(ctx, err, "Failed to exchange Google authorization code")
		return nil, fmt.Errorf("failed to exchange oauth code for token: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return nil, errors.New("google token response carried no id_token")
	}

	payload, err := s.validate(ctx, idToken, s.cfg.GoogleClientID)
	if err != nil {
		s.LogWarn(ctx, err, "Google ID token validation failed")
		return nil, apperrors.NewUnauthorizedError("Invalid Google ID token")
	}

	identity := &domain.GoogleIdentity{Subject: payload.Subject}
	identity.Email, _ = payload.Claims["email"].(string)
	identity.Name, _ = payload.Claims["name"].(string)
	identity.EmailVerified, _ = payload.Claims["email_verified"].(bool)
	if identity.Email == "" || identity.Subject == "" {
		return nil, apperrors.NewUnauthorizedError("Google ID token is missing the email or subject claim")
	}
	s.LogInfo(ctx, "Google ID token validated", slog.String("google_user_id", identity.Subject))
	return identity, nil
}
