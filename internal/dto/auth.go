package dto

import "time"

// SignUpRequest registers a company and its first administrator.
type SignUpRequest struct {
	CompanyName  string `json:"companyName" binding:"required,max=200"`
	Country      string `json:"country" binding:"required"`
	CurrencyCode string `json:"currencyCode" binding:"required,iso4217"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPair is an access token together with the refresh token that renews it.
type TokenPair struct {
	Token            string    `json:"token"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	TokenPair
	User UserResponse `json:"user"`
}

// SignUpResponse is returned after a company has been created.
type SignUpResponse struct {
	TokenPair
	User    UserResponse    `json:"user"`
	Company CompanyResponse `json:"company"`
}

// RefreshTokenRequest trades a refresh token for a new token pair.
type RefreshTokenRequest struct {
	UserID       string `json:"userID" binding:"required,uuid"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response for a successful token refresh.
type RefreshTokenResponse struct {
	TokenPair
}

// ExchangeCodeRequest carries the authorization code Google returned to the frontend.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// GoogleLoginURLResponse is the consent page URL and the state the frontend must check on return.
type GoogleLoginURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// GoogleLoginResponse is returned after a Google sign-in. CompanyCreated is set on first sign-in.
type GoogleLoginResponse struct {
	TokenPair
	User           UserResponse `json:"user"`
	CompanyCreated bool         `json:"companyCreated"`
}
