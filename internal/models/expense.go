package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a row of the expenses table.
type Expense struct {
	ExpenseID               string          `db:"expense_id"`
	EmployeeID              string          `db:"employee_id"`
	CompanyID               string          `db:"company_id"`
	Amount                  decimal.Decimal `db:"amount"`
	CurrencyCode            string          `db:"currency_code"`
	AmountInCompanyCurrency decimal.Decimal `db:"amount_in_company_currency"`
	Category                string          `db:"category"`
	Description             string          `db:"description"`
	ExpenseDate             time.Time       `db:"expense_date"`
	MerchantName            sql.NullString  `db:"merchant_name"`
	ReceiptURL              sql.NullString  `db:"receipt_url"`
	Status                  string          `db:"status"`
	AuditFields
}

// ApprovalHistoryEntry is a row of the expense_approval_history table.
type ApprovalHistoryEntry struct {
	ExpenseID  string    `db:"expense_id"`
	Position   int       `db:"position"`
	ApproverID string    `db:"approver_id"`
	Action     string    `db:"action"`
	Comment    string    `db:"comment"`
	ActedAt    time.Time `db:"acted_at"`
}
