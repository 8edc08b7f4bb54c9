package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"employee-directory/backend/internal/security"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("password", validatePassword)
}

// validatePassword accepts a password that meets the policy, or one in the encrypted
// wire format; the service checks the decrypted value again.
func validatePassword(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if security.LooksEncrypted(v) {
		return true
	}
	return security.ValidatePasswordPolicy(v) == nil
}

var messages = map[string]string{
	"required": "The field '%s' is required.",
	"email":    "The field '%s' must be a valid email address.",
	"min":      "The field '%s' must be at least %s characters long.",
	"max":      "The field '%s' must be no longer than %s characters.",
	"eqfield":  "The field '%s' must match '%s'.",
	"password": "The field '%s' must be 8-64 characters with an uppercase letter, a lowercase letter, a digit and one of @$!%%*?&.",
}

func fieldMessage(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("Field '%s' is invalid: %s", e.Field(), e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}

// validateRequest returns one message per invalid field, or nil.
func validateRequest(req any) []string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, fieldMessage(e))
	}
	return out
}
