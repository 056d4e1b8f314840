// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"accountsvc/internal/models"
)

// corporateDomain is the only email domain accepted at sign-up.
const corporateDomain = "@acme.com"

var periodRegex = regexp.MustCompile(`^(0[1-9]|1[0-2])-\d{4}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("corporate_email", validateCorporateEmail)
		_ = v.RegisterValidation("payroll_period", validatePayrollPeriod)
		_ = v.RegisterValidation("role_name", validateRoleName)
		_ = v.RegisterValidation("role_operation", validateRoleOperation)
		_ = v.RegisterValidation("access_operation", validateAccessOperation)
	}
}

func validateCorporateEmail(fl validator.FieldLevel) bool {
	return strings.HasSuffix(strings.ToLower(fl.Field().String()), corporateDomain)
}

func validatePayrollPeriod(fl validator.FieldLevel) bool {
	return periodRegex.MatchString(fl.Field().String())
}

func validateRoleName(fl validator.FieldLevel) bool {
	return models.IsValidRole(models.RoleName(fl.Field().String()))
}

func validateRoleOperation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "GRANT", "REMOVE":
		return true
	}
	return false
}

func validateAccessOperation(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "LOCK", "UNLOCK":
		return true
	}
	return false
}
