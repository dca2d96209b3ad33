package dto

import (
	"time"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
)

// CreateUserRequest is used by company admins to add users.
type CreateUserRequest struct {
	Name              string          `json:"name" binding:"required"`
	Email             string          `json:"email" binding:"required,email"`
	Password          string          `json:"password" binding:"required,min=8"`
	Role              domain.UserRole `json:"role" binding:"required,oneof=ADMIN MANAGER EMPLOYEE"`
	ManagerID         *string         `json:"managerID" binding:"omitempty,uuid"`
	IsManagerApprover bool            `json:"isManagerApprover"`
}

// UpdateUserRequest defines the data allowed for updating a user.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateUserRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1"`
	Role              *domain.UserRole `json:"role" binding:"omitempty,oneof=ADMIN MANAGER EMPLOYEE"`
	ManagerID         *string          `json:"managerID" binding:"omitempty,uuid"`
	ClearManager      bool             `json:"clearManager"`
	IsManagerApprover *bool            `json:"isManagerApprover"`
}

// UpdateProfileRequest is a user's edit of their own account.
// NewPassword requires CurrentPassword unless the account has no password yet.
type UpdateProfileRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1"`
	Email           *string `json:"email" binding:"omitempty,email"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword" binding:"omitempty,min=8"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	UserID            string          `json:"userID"`
	CompanyID         string          `json:"companyID"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Role              domain.UserRole `json:"role"`
	ManagerID         *string         `json:"managerID,omitempty"`
	IsManagerApprover bool            `json:"isManagerApprover"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// CompanyResponse is the public view of a company.
type CompanyResponse struct {
	CompanyID    string `json:"companyID"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	CurrencyCode string `json:"currencyCode"`
}

func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:            user.UserID,
		CompanyID:         user.CompanyID,
		Name:              user.Name,
		Email:             user.Email,
		Role:              user.Role,
		ManagerID:         user.ManagerID,
		IsManagerApprover: user.IsManagerApprover,
		CreatedAt:         user.CreatedAt,
	}
}

// ToListUserResponse converts a slice of domain.User to ListUsersResponse DTO
func ToListUserResponse(users []domain.User) ListUsersResponse {
	userResponses := make([]UserResponse, len(users))
	for i := range users {
		userResponses[i] = ToUserResponse(&users[i])
	}
	return ListUsersResponse{Users: userResponses}
}

func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:    c.CompanyID,
		Name:         c.Name,
		Country:      c.Country,
		CurrencyCode: c.CurrencyCode,
	}
}
