package models

import (
	"database/sql"
	"time"
)

// User is a row of the users table.
type User struct {
	UserID                 string         `db:"user_id"`
	CompanyID              string         `db:"company_id"`
	Name                   string         `db:"name"`
	Email                  string         `db:"email"`
	PasswordHash           string         `db:"password_hash"`
	Role                   string         `db:"role"`
	ManagerID              sql.NullString `db:"manager_id"`
	IsManagerApprover      bool           `db:"is_manager_approver"`
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`
	RefreshTokenExpiryTime *time.Time     `db:"refresh_token_expiry_time"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}

// Company is a row of the companies table.
type Company struct {
	CompanyID    string `db:"company_id"`
	Name         string `db:"name"`
	Country      string `db:"country"`
	CurrencyCode string `db:"currency_code"`
	AuditFields
}
