// Package validation wraps go-playground/validator for the HTTP boundary.
//
// Handlers decode a request struct, run it through Validate, and only then
// call the service layer. The wrapper converts validator's field errors
// into the domain's apperror.ValidationFailed so the response mapping stays
// in one place.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/second-brain/internal/apperror"
)

// Validator wraps a configured *validator.Validate.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for this API.
//
// Two customizations:
//   - error messages name fields by their json tag, matching what the
//     client actually sent
//   - a "password" rule enforcing the signup password policy: at least one
//     uppercase letter, one digit, and one special character from !@#$%^&*
//     (length is handled separately by the min tag)
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// strip options like ",omitempty"
		if i := strings.IndexByte(name, ','); i >= 0 {
			return name[:i]
		}
		return name
	})

	// RegisterValidation only fails for an empty tag name; safe to ignore.
	_ = v.RegisterValidation("password", validPassword)

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error for
// the first failing field, or nil.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	return apperror.ValidationFailed(fe.Field(), fe.Field()+" "+friendlyMessage(fe))
}

func validPassword(fl validator.FieldLevel) bool {
	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune("!@#$%^&*", r):
			hasSpecial = true
		}
	}
	return hasUpper && hasDigit && hasSpecial
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "password":
		return "must contain an uppercase letter, a number, and a special character"
	default:
		return "is invalid"
	}
}
