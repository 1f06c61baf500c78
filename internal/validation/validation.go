// Package validation wraps go-playground/validator with the domain tags and
// the field messages shown by the forms.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	tagCategory = "complaint_category"
	tagStatus   = "complaint_status"
	tagNotBlank = "notblank"
)

// Validator validates request structs and turns failures into VALIDATION errors.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation(tagCategory, func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation(tagStatus, func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation(tagNotBlank, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Validator{v: v}
}

// Struct returns nil or an *apperr.Error with one message per failing field.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("Invalid request", err)
	}

	fields := make(map[string]string, len(verrs))
	var first string
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		msg := message(fe)
		fields[fe.Field()] = msg
		if first == "" {
			first = msg
		}
	}
	return apperr.Validation(first, fields)
}

func message(fe validator.FieldError) string {
	label := Label(fe.Field())
	switch fe.Tag() {
	case "required", tagNotBlank:
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "email":
		return "Invalid email address"
	case "numeric":
		return label + " must contain only digits"
	case tagCategory:
		return "Invalid category"
	case tagStatus:
		return "Invalid status"
	default:
		return label + " is invalid"
	}
}

// Label turns a json field name such as "student_id" into "Student ID".
func Label(field string) string {
	parts := strings.Split(field, "_")
	for i, p := range parts {
		switch {
		case p == "id":
			parts[i] = "ID"
		case p != "":
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
