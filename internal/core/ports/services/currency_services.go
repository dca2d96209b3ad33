package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// CurrencyConverterSvc converts amounts between currencies.
type CurrencyConverterSvc interface {
	// Convert returns amount expressed in the to currency.
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}
