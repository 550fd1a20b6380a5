package validator

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-console/pkg/errors"
)

// Validator checks request structs against their `validate` tags.
type Validator interface {
	Validate(interface{}) error
	ValidateField(field string, value interface{}, rules ...string) error
}

type validator struct {
	v *playground.Validate
}

func New() Validator {
	v := playground.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &validator{v: v}
}

// Validate returns a 400 AppError naming the first failing field.
func (v *validator) Validate(obj interface{}) error {
	return v.wrap("", v.v.Struct(obj))
}

func (v *validator) ValidateField(field string, value interface{}, rules ...string) error {
	return v.wrap(field, v.v.Var(value, strings.Join(rules, ",")))
}

func (v *validator) wrap(field string, err error) error {
	if err == nil {
		return nil
	}
	var verrs playground.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.BadRequest(err.Error(), err)
	}
	fe := verrs[0]
	name := fe.Field()
	if field != "" {
		name = field
	}
	return errors.BadRequest(message(name, fe), err)
}

func message(field string, fe playground.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}
