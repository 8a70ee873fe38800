package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"jobboard/internal/common"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
	return instance
}

// Struct validates v against its `validate` tags and returns a
// common.CodeValidation error listing every failing field.
func Struct(message string, v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return common.NewError(common.CodeValidation, message, err)
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe)] = describe(fe)
	}
	return common.NewValidationError(message, fields)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "min":
		return name + " must be at least " + fe.Param() + " characters"
	case "max":
		return name + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return name + " must be one of: " + fe.Param()
	case "url":
		return name + " must be a valid URL"
	case "gte":
		return name + " must be greater than or equal to " + fe.Param()
	default:
		return name + " is invalid"
	}
}

// FieldList renders validation fields as a human readable sentence.
func FieldList(err error) string {
	var appErr *common.Error
	if !errors.As(err, &appErr) || len(appErr.Fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(appErr.Fields))
	for name := range appErr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
