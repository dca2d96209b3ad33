package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/SscSPs/expense_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// authHandler handles company sign-up, login and token renewal.
type authHandler struct {
	authService  portssvc.AuthSvcFacade
	tokenService portssvc.TokenSvcFacade
}

func newAuthHandler(as portssvc.AuthSvcFacade, ts portssvc.TokenSvcFacade) *authHandler {
	return &authHandler{authService: as, tokenService: ts}
}

// registerAuthRoutes sets up the public authentication routes. All of them are rate limited per client IP.
func registerAuthRoutes(r *gin.Engine, services *portssvc.ServiceContainer, ipLimiter *limiter.Limiter) {
	h := newAuthHandler(services.Auth, services.TokenService)

	auth := r.Group("/api/v1/auth")
	if ipLimiter != nil {
		auth.Use(middleware.RateLimit(ipLimiter))
	}
	{
		auth.POST("/signup", h.signUp)
		auth.POST("/login", h.login)
		auth.POST("/refresh-token", h.refreshToken)
	}
	registerGoogleOAuthRoutes(auth, services)
}

// registerSessionRoutes sets up the authenticated session routes.
func registerSessionRoutes(rg *gin.RouterGroup, tokenService portssvc.TokenSvcFacade) {
	h := newAuthHandler(nil, tokenService)
	rg.POST("/auth/logout", h.logout)
}

// issueTokenPair creates an access token and a fresh refresh token for user.
func issueTokenPair(ctx context.Context, ts portssvc.TokenSvcFacade, user *domain.User) (dto.TokenPair, error) {
	token, expiresAt, err := ts.GenerateAccessToken(ctx, user)
	if err != nil {
		return dto.TokenPair{}, err
	}
	refreshToken, refreshExpiresAt, err := ts.GenerateRefreshToken(ctx, user)
	if err != nil {
		return dto.TokenPair{}, err
	}
	return dto.TokenPair{
		Token:            token,
		ExpiresAt:        expiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// signUp godoc
// @Summary Register a company
// @Description Creates a company together with its first ADMIN user and returns access and refresh tokens.
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body dto.SignUpRequest true "Company and administrator details"
// @Success 201 {object} dto.SignUpResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *authHandler) signUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request body")
		return
	}

	admin, company, err := h.authService.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to register company")
		return
	}

	tokens, err := issueTokenPair(c.Request.Context(), h.tokenService, admin)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Company signed up", slog.String("company_id", company.CompanyID))
	c.JSON(http.StatusCreated, dto.SignUpResponse{
		TokenPair: tokens,
		User:      dto.ToUserResponse(admin),
		Company:   dto.ToCompanyResponse(company),
	})
}

// login godoc
// @Summary User login
// @Description Authenticates a user and returns a JWT access token plus a refresh token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request body")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}

	tokens, err := issueTokenPair(c.Request.Context(), h.tokenService, user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{TokenPair: tokens, User: dto.ToUserResponse(user)})
}

// refreshToken godoc
// @Summary Renew tokens
// @Description Trades a live refresh token for a new access token. The refresh token is rotated.
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body dto.RefreshTokenRequest true "User ID and refresh token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid or expired refresh token"
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/refresh-token [post]
func (h *authHandler) refreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request body")
		return
	}

	user, err := h.tokenService.ValidateAndParseRefreshToken(c.Request.Context(), req.UserID, req.RefreshToken)
	if err != nil {
		respondError(c, err, "Failed to validate refresh token")
		return
	}

	tokens, err := issueTokenPair(c.Request.Context(), h.tokenService, user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}
	c.JSON(http.StatusOK, dto.RefreshTokenResponse{TokenPair: tokens})
}

// logout godoc
// @Summary Log out
// @Description Revokes the caller's refresh token. Access tokens stay valid until they expire.
// @Tags auth
// @Success 204
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.tokenService.RevokeRefreshToken(c.Request.Context(), userID); err != nil {
		respondError(c, err, "Failed to log out")
		return
	}
	c.Status(http.StatusNoContent)
}
