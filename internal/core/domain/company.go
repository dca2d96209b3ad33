package domain

// Company is the tenant that owns users, expenses and approval rules.
type Company struct {
	CompanyID    string `json:"companyID"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	CurrencyCode string `json:"currencyCode"` // amounts are normalised into this currency
	AuditFields
}
