package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/SscSPs/expense_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// googleOAuthHandler runs the Google sign-in code exchange for a frontend that owns the redirect.
type googleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthSvcFacade
	authService        portssvc.AuthSvcFacade
	tokenService       portssvc.TokenSvcFacade
}

// registerGoogleOAuthRoutes registers the Google OAuth routes under the auth group.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &googleOAuthHandler{
		googleOAuthService: services.GoogleOAuth,
		authService:        services.Auth,
		tokenService:       services.TokenService,
	}
	googleRoutes := rg.Group("/google", h.requireEnabled)
	{
		googleRoutes.GET("", h.loginURL)
		googleRoutes.POST("/exchange-code", h.exchangeCode)
	}
}

func (h *googleOAuthHandler) requireEnabled(c *gin.Context) {
	if h.googleOAuthService == nil || !h.googleOAuthService.Enabled() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Google sign-in is not configured"})
		return
	}
	c.Next()
}

// loginURL godoc
// @Summary Google consent URL
// @Description Returns the Google consent page URL and the state value the frontend must verify on return.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.GoogleLoginURLResponse
// @Failure 503 {object} ErrorResponse "Google sign-in is not configured"
// @Router /auth/google [get]
func (h *googleOAuthHandler) loginURL(c *gin.Context) {
	state, err := h.googleOAuthService.GenerateStateString(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to start Google sign-in")
		return
	}
	c.JSON(http.StatusOK, dto.GoogleLoginURLResponse{
		URL:   h.googleOAuthService.GetGoogleLoginURL(c.Request.Context(), state),
		State: state,
	})
}

// exchangeCode godoc
// @Summary Sign in with Google
// @Description Exchanges a Google authorization code for access and refresh tokens. The first sign-in of an unknown email creates a company with that user as ADMIN.
// @Tags auth
// @Accept json
// @Produce json
// @Param code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.GoogleLoginResponse
// @Failure 400 {object} ErrorResponse "Invalid or expired authorization code"
// @Failure 401 {object} ErrorResponse "Invalid ID token or unverified email"
// @Failure 503 {object} ErrorResponse "Google sign-in is not configured"
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/exchange-code [post]
func (h *googleOAuthHandler) exchangeCode(c *gin.Context) {
	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request body")
		return
	}
	ctx := c.Request.Context()

	identity, err := h.googleOAuthService.ExchangeCode(ctx, req.Code)
	if err != nil {
		respondError(c, err, "Failed to sign in with Google")
		return
	}

	user, created, err := h.authService.LoginWithGoogle(ctx, *identity)
	if err != nil {
		respondError(c, err, "Failed to sign in with Google")
		return
	}

	tokens, err := issueTokenPair(ctx, h.tokenService, user)
	if err != nil {
		respondError(c, err, "Failed to generate token")
		return
	}

	middleware.GetLoggerFromCtx(ctx).Info("User signed in with Google",
		slog.String("user_id", user.UserID),
		slog.Bool("company_created", created))
	c.JSON(http.StatusOK, dto.GoogleLoginResponse{
		TokenPair:      tokens,
		User:           dto.ToUserResponse(user),
		CompanyCreated: created,
	})
}
