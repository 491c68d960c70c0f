package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/moneypools/money_pools_app/internal/core/domain"
)

// transferKindRule validates that a string field holds one of the five
// recognized transfer kinds.
func transferKindRule(fl validator.FieldLevel) bool {
	return domain.TransferKind(fl.Field().String()).IsValid()
}

// RegisterCustomValidations installs the module's custom binding rules on
// gin's validator engine. Call once at startup, before serving requests.
func RegisterCustomValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("transferkind", transferKindRule)
}
