package client

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// apiDate is the date layout used in request bodies and query strings
const apiDate = time.DateOnly

// dateRange is implemented by request bodies carrying a rental period
type dateRange interface {
	period() (start, end string)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their json name so the messages match the server's field errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(validatePeriod, RentalRequest{}, PriceQuery{}, AvailabilityQuery{})

	return v
}

// validatePeriod rejects rental periods that end before they start
func validatePeriod(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(dateRange)
	if !ok {
		return
	}
	start, end := r.period()

	s, err := time.Parse(apiDate, start)
	if err != nil {
		return // reported by the datetime tag
	}
	e, err := time.Parse(apiDate, end)
	if err != nil {
		return
	}
	if e.Before(s) {
		sl.ReportError(end, "date_fin", "DateFin", "after_start", start)
	}
}

// validatePayload checks typed request bodies before they are sent.
// Maps and other untyped bodies are passed through to the server as is.
func (c *Client) validatePayload(body any) error {
	v := reflect.ValueOf(body)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	err := c.validate.Struct(v.Interface())
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return NewRequestError(err, "validating request body")
	}

	lines := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		lines = append(lines, fmt.Sprintf("%s: %s", fe.Field(), validationMessage(fe)))
	}
	return NewRequestError(errors.New(strings.Join(lines, "\n")), fmt.Sprintf("validating %T", v.Interface()))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Ce champ est obligatoire."
	case "gte":
		return "La valeur doit être supérieure ou égale à " + fe.Param() + "."
	case "gt":
		return "La valeur doit être supérieure à " + fe.Param() + "."
	case "lte":
		return "La valeur doit être inférieure ou égale à " + fe.Param() + "."
	case "min":
		return "Ce champ doit contenir au moins " + fe.Param() + " caractères."
	case "email":
		return "Adresse email invalide."
	case "eqfield":
		return "Les deux valeurs ne correspondent pas."
	case "max":
		return "La valeur ne doit pas dépasser " + fe.Param() + " caractères."
	case "datetime":
		return "Format de date invalide (AAAA-MM-JJ attendu)."
	case "oneof":
		return "Valeur invalide, choix possibles : " + fe.Param() + "."
	case "after_start":
		return "La date de fin doit être postérieure à la date de début."
	default:
		return "Valeur invalide."
	}
}
