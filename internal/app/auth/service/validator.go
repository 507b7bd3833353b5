package service

import (
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the "strongpwd" rule registered:
// at least 8 runes, one upper-case letter and one digit.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

func StrongPassword(pwd string) bool {
	if utf8.RuneCountInString(pwd) < 8 {
		return false
	}
	var hasUpper, hasDigit bool
	for _, r := range pwd {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	return hasUpper && hasDigit
}
