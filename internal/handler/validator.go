package handler

import (
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"

    "github.com/iliyamo/movies-api/internal/apperr"
)

// RequestValidator adapts go-playground/validator to echo.Validator so
// handlers can call c.Validate on bound request DTOs.
type RequestValidator struct {
    v *validator.Validate
}

// NewRequestValidator reports fields by their JSON names.
func NewRequestValidator() *RequestValidator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &RequestValidator{v: v}
}

// Validate returns a Validation error whose message lists each failing field.
func (rv *RequestValidator) Validate(i any) error {
    err := rv.v.Struct(i)
    if err == nil {
        return nil
    }
    var ves validator.ValidationErrors
    if !errors.As(err, &ves) {
        return apperr.Wrap(apperr.KindValidation, err, "invalid request")
    }
    msgs := make([]string, 0, len(ves))
    for _, fe := range ves {
        msgs = append(msgs, describe(fe))
    }
    return apperr.Wrap(apperr.KindValidation, err, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
    field := fe.Namespace()
    // drop the root struct name: "registerReq.credentials.email" -> "credentials.email"
    if i := strings.Index(field, "."); i >= 0 {
        field = field[i+1:]
    }
    switch fe.Tag() {
    case "required":
        return field + " is required"
    case "email":
        return field + " must be a valid email"
    case "min":
        return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
    case "max":
        return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
    case "eqfield":
        return field + " does not match"
    default:
        return fmt.Sprintf("%s failed %s", field, fe.Tag())
    }
}
