package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (s *HandlerTestSuite) authUser(role domain.UserRole) *domain.User {
	return &domain.User{UserID: s.adminID, CompanyID: s.companyID, Name: "Ada", Email: "ada@acme.test", Role: role}
}

func (s *HandlerTestSuite) expectTokenPair(user *domain.User) (time.Time, time.Time) {
	accessExpiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	refreshExpiry := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	s.mockTokenSvc.On("GenerateAccessToken", mock.Anything, user).Return("access-token", accessExpiry, nil).Once()
	s.mockTokenSvc.On("GenerateRefreshToken", mock.Anything, user).Return("refresh-token", refreshExpiry, nil).Once()
	return accessExpiry, refreshExpiry
}

func (s *HandlerTestSuite) TestLogin_ReturnsTokenPair() {
	user := s.authUser(domain.RoleAdmin)
	s.mockAuthSvc.On("Login", mock.Anything, "ada@acme.test", "correct-horse").Return(user, nil).Once()
	accessExpiry, refreshExpiry := s.expectTokenPair(user)

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "ada@acme.test", Password: "correct-horse"})

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("access-token", resp.Token)
	s.Equal("refresh-token", resp.RefreshToken)
	s.True(accessExpiry.Equal(resp.ExpiresAt))
	s.True(refreshExpiry.Equal(resp.RefreshExpiresAt))
	s.Equal(user.UserID, resp.User.UserID)
}

func (s *HandlerTestSuite) TestLogin_InvalidCredentials() {
	s.mockAuthSvc.On("Login", mock.Anything, "ada@acme.test", "wrong").
		Return(nil, apperrors.NewUnauthorizedError("invalid email or password")).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "ada@acme.test", Password: "wrong"})

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("invalid email or password", s.decodeError(w))
	s.mockTokenSvc.AssertNotCalled(s.T(), "GenerateRefreshToken", mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestRefreshToken_RotatesTokens() {
	user := s.authUser(domain.RoleManager)
	s.mockTokenSvc.On("ValidateAndParseRefreshToken", mock.Anything, s.adminID, "old-refresh").Return(user, nil).Once()
	s.expectTokenPair(user)

	w := s.do(http.MethodPost, "/api/v1/auth/refresh-token", "", dto.RefreshTokenRequest{UserID: s.adminID, RefreshToken: "old-refresh"})

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.RefreshTokenResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("access-token", resp.Token)
	s.Equal("refresh-token", resp.RefreshToken)
}

func (s *HandlerTestSuite) TestRefreshToken_Expired() {
	s.mockTokenSvc.On("ValidateAndParseRefreshToken", mock.Anything, s.adminID, "stale").
		Return(nil, apperrors.ErrRefreshTokenExpired).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/refresh-token", "", dto.RefreshTokenRequest{UserID: s.adminID, RefreshToken: "stale"})

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Refresh token has expired", s.decodeError(w))
}

func (s *HandlerTestSuite) TestRefreshToken_RequiresUUID() {
	w := s.do(http.MethodPost, "/api/v1/auth/refresh-token", "", dto.RefreshTokenRequest{UserID: "not-a-uuid", RefreshToken: "x"})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestLogout_RevokesRefreshToken() {
	s.mockTokenSvc.On("RevokeRefreshToken", mock.Anything, s.employeeID).Return(nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/logout", s.token(s.employeeID, domain.RoleEmployee), nil)

	s.Equal(http.StatusNoContent, w.Code)
}

func (s *HandlerTestSuite) TestLogout_RequiresAccessToken() {
	w := s.do(http.MethodPost, "/api/v1/auth/logout", "", nil)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestGoogleRoutes_DisabledAnswer503() {
	s.mockGoogleSvc.On("Enabled").Return(false)

	w := s.do(http.MethodPost, "/api/v1/auth/google/exchange-code", "", dto.ExchangeCodeRequest{Code: "abc"})
	s.Equal(http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodGet, "/api/v1/auth/google", "", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal("Google sign-in is not configured", s.decodeError(w))
}

func (s *HandlerTestSuite) TestGoogleLoginURL() {
	s.mockGoogleSvc.On("Enabled").Return(true)
	s.mockGoogleSvc.On("GenerateStateString", mock.Anything).Return("state-123", nil).Once()
	s.mockGoogleSvc.On("GetGoogleLoginURL", mock.Anything, "state-123").Return("https://accounts.google.com/o/oauth2/auth?state=state-123").Once()

	w := s.do(http.MethodGet, "/api/v1/auth/google", "", nil)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.GoogleLoginURLResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("state-123", resp.State)
	s.Contains(resp.URL, "state=state-123")
}

func (s *HandlerTestSuite) TestGoogleExchangeCode_FirstSignInCreatesCompany() {
	identity := &domain.GoogleIdentity{Subject: "g-1", Email: "grace@gmail.test", Name: "Grace", EmailVerified: true}
	user := s.authUser(domain.RoleAdmin)
	s.mockGoogleSvc.On("Enabled").Return(true)
	s.mockGoogleSvc.On("ExchangeCode", mock.Anything, "auth-code").Return(identity, nil).Once()
	s.mockAuthSvc.On("LoginWithGoogle", mock.Anything, *identity).Return(user, true, nil).Once()
	s.expectTokenPair(user)

	w := s.do(http.MethodPost, "/api/v1/auth/google/exchange-code", "", dto.ExchangeCodeRequest{Code: "auth-code"})

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.GoogleLoginResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.CompanyCreated)
	s.Equal("access-token", resp.Token)
	s.Equal("refresh-token", resp.RefreshToken)
	s.Equal(domain.RoleAdmin, resp.User.Role)
}

func (s *HandlerTestSuite) TestGoogleExchangeCode_InvalidCode() {
	s.mockGoogleSvc.On("Enabled").Return(true)
	s.mockGoogleSvc.On("ExchangeCode", mock.Anything, "stale").
		Return(nil, apperrors.NewValidationError("Invalid or expired authorization code provided by Google")).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/google/exchange-code", "", dto.ExchangeCodeRequest{Code: "stale"})

	s.Equal(http.StatusBadRequest, w.Code)
	s.mockAuthSvc.AssertNotCalled(s.T(), "LoginWithGoogle", mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestGoogleExchangeCode_UnverifiedEmail() {
	identity := &domain.GoogleIdentity{Subject: "g-2", Email: "eve@gmail.test"}
	s.mockGoogleSvc.On("Enabled").Return(true)
	s.mockGoogleSvc.On("ExchangeCode", mock.Anything, "auth-code").Return(identity, nil).Once()
	s.mockAuthSvc.On("LoginWithGoogle", mock.Anything, *identity).
		Return(nil, false, apperrors.NewUnauthorizedError("Google account email is not verified")).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/google/exchange-code", "", dto.ExchangeCodeRequest{Code: "auth-code"})

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestUpdateMe_Success() {
	name := "Renamed"
	req := dto.UpdateProfileRequest{Name: &name}
	updated := &domain.User{UserID: s.employeeID, CompanyID: s.companyID, Name: name, Role: domain.RoleEmployee}
	s.mockUserSvc.On("UpdateProfile", mock.Anything, s.employeeID, req).Return(updated, nil).Once()

	w := s.do(http.MethodPut, "/api/v1/users/me", s.token(s.employeeID, domain.RoleEmployee), req)

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.UserResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("Renamed", resp.Name)
}

func (s *HandlerTestSuite) TestUpdateMe_EmailTaken() {
	email := "taken@acme.test"
	req := dto.UpdateProfileRequest{Email: &email}
	s.mockUserSvc.On("UpdateProfile", mock.Anything, s.employeeID, req).
		Return(nil, apperrors.NewConflictError("a user with this email already exists")).Once()

	w := s.do(http.MethodPut, "/api/v1/users/me", s.token(s.employeeID, domain.RoleEmployee), req)

	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestUpdateMe_ShortPasswordRejected() {
	w := s.do(http.MethodPut, "/api/v1/users/me", s.token(s.employeeID, domain.RoleEmployee),
		`{"currentPassword":"old-password","newPassword":"short"}`)

	s.Equal(http.StatusBadRequest, w.Code)
	s.mockUserSvc.AssertNotCalled(s.T(), "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}
