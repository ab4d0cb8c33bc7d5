// Package validate wraps go-playground/validator with the request rules used
// by the service: JSON field names in errors and a number plate tag.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var plateRE = regexp.MustCompile(`^[A-Z]{2}\d{1,2}[A-Z]{1,2}\d{1,4}$`)

// NumberPlate accepts registrations such as MH12AB1234, in any case. The
// whole string must match; a trailing newline is rejected.
func NumberPlate(plate string) bool {
	if plate == "" {
		return false
	}
	return plateRE.MatchString(strings.ToUpper(plate))
}

type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e *FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("field %s failed on %s=%s", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("field %s failed on %s", e.Field, e.Tag)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("numberplate", func(fl validator.FieldLevel) bool {
		return NumberPlate(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// Struct validates s and reports the first failing field. Missing fields are
// reported before any other rule.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	first := verrs[0]
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			first = fe
			break
		}
	}

	return &FieldError{Field: first.Field(), Tag: first.Tag(), Param: first.Param()}
}
