package handlers

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerValidatorsOnce sync.Once

// RegisterValidators adds the expense-specific binding tags to gin's validator.
// decimal.Decimal fields are validated through their string form.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			slog.Warn("Gin validator engine is not go-playground/validator, custom tags not registered")
			return
		}
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		if err := v.RegisterValidation("decimal_positive", validateDecimalPositive); err != nil {
			slog.Error("Failed to register decimal_positive validator", slog.String("error", err.Error()))
		}
		if err := v.RegisterValidation("expense_category", validateExpenseCategory); err != nil {
			slog.Error("Failed to register expense_category validator", slog.String("error", err.Error()))
		}
	})
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateDecimalPositive(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && d.IsPositive()
}

func validateExpenseCategory(fl validator.FieldLevel) bool {
	return domain.ExpenseCategory(fl.Field().String()).IsValid()
}
