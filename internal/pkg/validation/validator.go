package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Custom struct tags understood by request DTOs
const (
	TagUsername       = "username"
	TagPhone          = "phone"
	TagZipCode        = "zipcode"
	TagPersonName     = "personname"
	TagStrongPassword = "strongpassword"
	TagPortalEmail    = "portalemail"
)

// RegisterCustomValidators adds the portal's field rules to a validator instance.
func RegisterCustomValidators(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		TagUsername:       IsValidUsername,
		TagPhone:          IsValidPhone,
		TagZipCode:        IsValidZipCode,
		TagPersonName:     IsValidName,
		TagStrongPassword: IsStrongPassword,
		TagPortalEmail:    IsValidEmail,
	}

	for tag, rule := range rules {
		rule := rule
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return rule(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("failed to register %q validator: %w", tag, err)
		}
	}
	return nil
}

// MessageFor renders a readable message for a failed validation tag.
func MessageFor(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + param
	case "max":
		return field + " must be at most " + param
	case "email", TagPortalEmail:
		return "Please enter a valid email address"
	case "oneof":
		return field + " must be one of: " + param
	case "eqfield":
		return field + " must match " + param
	case TagUsername:
		return "Username must be 3-20 characters (letters, numbers, underscore only)"
	case TagPhone:
		return "Phone number must be 10 digits"
	case TagZipCode:
		return "ZIP code must be 6 digits"
	case TagPersonName:
		return field + " must be 2-50 letters"
	case TagStrongPassword:
		return "Password must be at least 8 characters with uppercase, lowercase, digit, and special character"
	default:
		return field + " validation failed: " + tag
	}
}
