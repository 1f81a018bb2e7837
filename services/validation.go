package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError содержит ошибки по полям запроса
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// newValidator создает валидатор, который понимает decimal.Decimal и берет имена полей из json-тегов
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Для сравнений gt/lt десятичные значения приводятся к float64
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// validateStruct переводит ошибки валидатора в ValidationError
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	verr := &ValidationError{}
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			verr.add(e.Field(), "This field is required.")
		case "gt":
			verr.add(e.Field(), fmt.Sprintf("Ensure this value is greater than %s.", e.Param()))
		case "gte":
			verr.add(e.Field(), fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Param()))
		case "lt":
			verr.add(e.Field(), fmt.Sprintf("Ensure this value is less than %s.", e.Param()))
		case "lte":
			verr.add(e.Field(), fmt.Sprintf("Ensure this value is less than or equal to %s.", e.Param()))
		case "max":
			verr.add(e.Field(), fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param()))
		default:
			verr.add(e.Field(), "Invalid value.")
		}
	}
	return verr
}

// checkDecimalPlaces проверяет, что значение содержит не более places знаков после запятой
func checkDecimalPlaces(verr *ValidationError, field string, d *decimal.Decimal, places int32) {
	if d != nil && !d.Equal(d.Truncate(places)) {
		verr.add(field, fmt.Sprintf("Ensure that there are no more than %d decimal places.", places))
	}
}
