package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the lifecycle state of an expense claim.
type ExpenseStatus string

const (
	ExpensePending    ExpenseStatus = "PENDING"
	ExpenseInProgress ExpenseStatus = "IN_PROGRESS"
	ExpenseApproved   ExpenseStatus = "APPROVED"
	ExpenseRejected   ExpenseStatus = "REJECTED"
)

// IsTerminal reports whether no further approval actions apply.
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseApproved || s == ExpenseRejected
}

// ExpenseCategory classifies what an expense was for.
type ExpenseCategory string

const (
	CategoryTravel         ExpenseCategory = "Travel"
	CategoryFood           ExpenseCategory = "Food"
	CategoryAccommodation  ExpenseCategory = "Accommodation"
	CategoryOfficeSupplies ExpenseCategory = "Office Supplies"
	CategoryEntertainment  ExpenseCategory = "Entertainment"
	CategoryOther          ExpenseCategory = "Other"
)

// ExpenseCategories lists every accepted category.
var ExpenseCategories = []ExpenseCategory{
	CategoryTravel,
	CategoryFood,
	CategoryAccommodation,
	CategoryOfficeSupplies,
	CategoryEntertainment,
	CategoryOther,
}

// IsValid reports whether c is a known category.
func (c ExpenseCategory) IsValid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ApprovalHistoryEntry is one approver decision recorded against an expense. Entries are append-only.
type ApprovalHistoryEntry struct {
	ApproverID string         `json:"approverID"`
	Action     ApprovalAction `json:"action"`
	Comment    string         `json:"comment,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Expense is a claim submitted by an employee.
type Expense struct {
	ExpenseID               string                 `json:"expenseID"`
	EmployeeID              string                 `json:"employeeID"`
	CompanyID               string                 `json:"companyID"`
	Amount                  decimal.Decimal        `json:"amount"`
	CurrencyCode            string                 `json:"currencyCode"`
	AmountInCompanyCurrency decimal.Decimal        `json:"amountInCompanyCurrency"`
	Category                ExpenseCategory        `json:"category"`
	Description             string                 `json:"description"`
	ExpenseDate             time.Time              `json:"expenseDate"`
	MerchantName            *string                `json:"merchantName,omitempty"`
	ReceiptURL              *string                `json:"receiptURL,omitempty"`
	Status                  ExpenseStatus          `json:"status"`
	ApprovalHistory         []ApprovalHistoryEntry `json:"approvalHistory"`
	AuditFields
}

// RecordDecision appends a history entry for an approver action.
func (e *Expense) RecordDecision(approverID string, action ApprovalAction, comment string, at time.Time) ApprovalHistoryEntry {
	entry := ApprovalHistoryEntry{
		ApproverID: approverID,
		Action:     action,
		Comment:    comment,
		Timestamp:  at,
	}
	e.ApprovalHistory = append(e.ApprovalHistory, entry)
	return entry
}
