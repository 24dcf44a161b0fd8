// internal/validation/struct.go
//
// Thin wrapper around go-playground/validator for request payloads.
//
// Context
// -------
// Handlers decode JSON into a DTO tagged with `validate:"..."` and call
// Struct.  Any failure is returned as apperr.Validation with messages keyed
// by the JSON field name, ready for response.ValidationError.
//
// The custom `strong_password` tag delegates to StrongPassword and expands
// to its full message list.
//
// Notes
// -----
// • One package-level validator; validator.Validate is safe for concurrent
//   use once configured.
// • Oxford commas, two spaces after periods.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/apikit/internal/apperr"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names, not Go field names.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = val.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String()) == nil
	})
	return val
}

//
// public API
//

// Struct validates s.  It returns nil or an *apperr.Error of KindValidation.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		fields[name] = append(fields[name], message(fe)...)
	}
	return apperr.Validation("", fields)
}

// Field is a convenience for single-field failures raised outside Struct.
func Field(name string, msgs ...string) error {
	return apperr.Validation("", map[string][]string{name: msgs})
}

// message maps a failed tag to DRF-style wording.
func message(fe validator.FieldError) []string {
	switch fe.Tag() {
	case "required":
		return []string{"This field is required."}
	case "email":
		return []string{"Enter a valid email address."}
	case "min":
		return []string{fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())}
	case "max":
		return []string{fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())}
	case "strong_password":
		s, _ := fe.Value().(string)
		return Messages(StrongPassword(s))
	default:
		return []string{fmt.Sprintf("Failed %q validation.", fe.Tag())}
	}
}
