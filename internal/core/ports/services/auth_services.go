package services

import (
	"context"
	"time"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/SscSPs/expense_management_app/internal/dto"
)

// TokenSvcFacade issues access tokens and manages the single live refresh token of each user.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a signed JWT carrying the user's ID, role and company.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// GenerateRefreshToken creates a refresh token and stores its hash, replacing any earlier one.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateAndParseRefreshToken returns the user owning a live, matching refresh token.
	ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshToken string) (*domain.User, error)

	// RevokeRefreshToken clears the user's refresh token.
	RevokeRefreshToken(ctx context.Context, userID string) error
}

// AuthSvcFacade covers company sign-up, password login and Google sign-in.
type AuthSvcFacade interface {
	// SignUp creates a company together with its first ADMIN user.
	SignUp(ctx context.Context, req dto.SignUpRequest) (*domain.User, *domain.Company, error)

	// Login verifies credentials and returns the authenticated user.
	Login(ctx context.Context, email, password string) (*domain.User, error)

	// LoginWithGoogle finds the user owning the verified Google email, or creates a company
	// with that person as its ADMIN. The bool reports whether a company was created.
	LoginWithGoogle(ctx context.Context, identity domain.GoogleIdentity) (*domain.User, bool, error)
}

// GoogleOAuthSvcFacade talks to Google's OAuth endpoints.
type GoogleOAuthSvcFacade interface {
	// Enabled reports whether Google sign-in is configured.
	Enabled() bool

	// GenerateStateString returns a random value for the OAuth state parameter.
	GenerateStateString(ctx context.Context) (string, error)

	// GetGoogleLoginURL returns the consent page URL for state.
	GetGoogleLoginURL(ctx context.Context, state string) string

	// ExchangeCode trades an authorization code for a validated Google identity.
	ExchangeCode(ctx context.Context, code string) (*domain.GoogleIdentity, error)
}
