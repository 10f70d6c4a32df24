package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

var (
	targetTypes = []string{"qq", "group"}
	banStatuses = []string{"pending", "approved", "rejected"}
)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	validate.RegisterValidation("target_type", func(fl validator.FieldLevel) bool {
		return oneOf(fl.Field().String(), targetTypes)
	})

	// Empty is allowed so partial updates can omit the status.
	validate.RegisterValidation("ban_status", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || oneOf(s, banStatuses)
	})
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string)
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fields[field] = "This field is required"
		case "min":
			fields[field] = "Value is too short (min: " + fe.Param() + ")"
		case "max":
			fields[field] = "Value is too long (max: " + fe.Param() + ")"
		case "gte":
			fields[field] = "Value must be at least " + fe.Param()
		case "lte":
			fields[field] = "Value must be at most " + fe.Param()
		case "gt":
			fields[field] = "Value must be greater than " + fe.Param()
		case "target_type":
			fields[field] = "Invalid target type. Must be: qq or group"
		case "ban_status":
			fields[field] = "Invalid status. Must be: pending, approved, or rejected"
		default:
			fields[field] = "Invalid value"
		}
	}

	return fields
}
