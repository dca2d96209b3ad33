package middleware

import (
	"context"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = contextKey("userID")
	userRoleKey  = contextKey("userRole")
	companyIDKey = contextKey("companyID")
)

// WithUser stores the authenticated identity in ctx.
func WithUser(ctx context.Context, userID string, role domain.UserRole, companyID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userRoleKey, role)
	return context.WithValue(ctx, companyIDKey, companyID)
}

// GetUserIDFromContext retrieves the authenticated user ID from the request context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetUserRoleFromContext retrieves the role carried by the access token.
func GetUserRoleFromContext(c *gin.Context) (domain.UserRole, bool) {
	role, ok := c.Request.Context().Value(userRoleKey).(domain.UserRole)
	return role, ok
}

// GetCompanyIDFromContext retrieves the company carried by the access token.
func GetCompanyIDFromContext(c *gin.Context) (string, bool) {
	companyID, ok := c.Request.Context().Value(companyIDKey).(string)
	return companyID, ok && companyID != ""
}
