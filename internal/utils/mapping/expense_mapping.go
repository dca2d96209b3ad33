package mapping

import (
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/SscSPs/expense_management_app/internal/models"
)

// ToModelExpense converts a domain Expense to a model Expense. History is stored separately.
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:               d.ExpenseID,
		EmployeeID:              d.EmployeeID,
		CompanyID:               d.CompanyID,
		Amount:                  d.Amount,
		CurrencyCode:            d.CurrencyCode,
		AmountInCompanyCurrency: d.AmountInCompanyCurrency,
		Category:                string(d.Category),
		Description:             d.Description,
		ExpenseDate:             d.ExpenseDate,
		MerchantName:            toNullString(d.MerchantName),
		ReceiptURL:              toNullString(d.ReceiptURL),
		Status:                  string(d.Status),
		AuditFields:             ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExpense converts a model Expense plus its history rows to a domain Expense
func ToDomainExpense(m models.Expense, history []models.ApprovalHistoryEntry) domain.Expense {
	entries := make([]domain.ApprovalHistoryEntry, len(history))
	for i, h := range history {
		entries[i] = domain.ApprovalHistoryEntry{
			ApproverID: h.ApproverID,
			Action:     domain.ApprovalAction(h.Action),
			Comment:    h.Comment,
			Timestamp:  h.ActedAt,
		}
	}
	return domain.Expense{
		ExpenseID:               m.ExpenseID,
		EmployeeID:              m.EmployeeID,
		CompanyID:               m.CompanyID,
		Amount:                  m.Amount,
		CurrencyCode:            m.CurrencyCode,
		AmountInCompanyCurrency: m.AmountInCompanyCurrency,
		Category:                domain.ExpenseCategory(m.Category),
		Description:             m.Description,
		ExpenseDate:             m.ExpenseDate,
		MerchantName:            fromNullString(m.MerchantName),
		ReceiptURL:              fromNullString(m.ReceiptURL),
		Status:                  domain.ExpenseStatus(m.Status),
		ApprovalHistory:         entries,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}
