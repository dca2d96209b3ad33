package domain

import "time"

// UserRole is the company-level role of a user.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleManager  UserRole = "MANAGER"
	RoleEmployee UserRole = "EMPLOYEE"
)

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User represents a member of a company.
type User struct {
	UserID       string   `json:"userID"` // Primary Key (UUID)
	CompanyID    string   `json:"companyID"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	// ManagerID references another user of the same company.
	ManagerID *string `json:"managerID,omitempty"`
	// IsManagerApprover routes this user's expenses through their manager first.
	IsManagerApprover bool `json:"isManagerApprover"`
	// RefreshTokenHash is the SHA-256 of the live refresh token, empty when none is issued.
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}

// EmployeeWithManager is the view the workflow initiator needs of a submitter.
type EmployeeWithManager struct {
	Employee User
	Manager  *User
}

// HasPassword reports whether the user can sign in with a password.
// Accounts created through Google sign-in start without one.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}
