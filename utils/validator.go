package utils

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"salonai/models"

	"github.com/go-playground/validator/v10"
)

// ErrValidation marks input rejected before any request is sent.
var ErrValidation = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the salon-specific tags
// registered: "servicetype" and "date" (2006-01-02).
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterValidation("servicetype", func(fl validator.FieldLevel) bool {
			switch val := fl.Field().Interface().(type) {
			case models.ServiceType:
				return val.Valid()
			case string:
				return models.ServiceType(val).Valid()
			}
			return false
		})
		v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
			value, ok := fl.Field().Interface().(string)
			if !ok {
				return false
			}
			_, err := time.Parse(DateLayout, value)
			return err == nil
		})
		validate = v
	})
	return validate
}

// ValidateStruct runs struct tags and wraps any failure in ErrValidation with
// a readable message naming the first offending field.
func ValidateStruct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, describe(ve[0]))
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// ValidateVar checks a single value against a tag expression.
func ValidateVar(field string, value any, tag string) error {
	if err := Validator().Var(value, tag); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("%w: %s %s", ErrValidation, field, rule(ve[0]))
		}
		return fmt.Errorf("%w: %s: %v", ErrValidation, field, err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	return strings.ToLower(fe.Field()) + " " + rule(fe)
}

func rule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be a valid email"
	case "hexcolor":
		return "must be a hex colour like #1a2b3c"
	case "servicetype":
		return "is not a known service"
	case "date":
		return "must be a date like 2006-01-02"
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid (" + fe.Tag() + ")"
}

// Reason strips the ErrValidation prefix so the text reads well on screen.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
}
