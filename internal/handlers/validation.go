package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	pkghttp "github.com/Hayacku/initium/pkg/http"
)

// ValidationErrorResponse represents a validation error with field-level details
type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Global validator instance (reused across all handlers)
var validate = validator.New()

// ValidateRequest validates a request struct using go-playground/validator.
// Only the first failing field is reported.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			first := ValidationErrorResponse{
				Field:   ve[0].Field(),
				Message: formatValidationError(ve[0]),
			}
			return fmt.Errorf("validation failed: %s: %s", first.Field, first.Message)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// decodeBody reads a JSON body into dst, writing a 400 on malformed input.
// With allowEmpty an absent body is accepted and dst keeps its defaults.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) bool {
	if err := pkghttp.DecodeJSON(r, dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// validBody runs ValidateRequest and writes a 400 on failure
func validBody(w http.ResponseWriter, req interface{}) bool {
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// decodeAndValidate combines decodeBody and validBody for JSON-only endpoints
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return decodeBody(w, r, dst, false) && validBody(w, dst)
}

// fromQuery fills an empty field from the named query parameter. Older
// clients send these values in the query string.
func fromQuery(r *http.Request, dst *string, name string) {
	if *dst == "" {
		*dst = r.URL.Query().Get(name)
	}
}

// intFromQuery fills a zero int from the named query parameter. It writes a
// 400 and returns false when the parameter is not a number.
func intFromQuery(w http.ResponseWriter, r *http.Request, dst *int, name string) bool {
	raw := r.URL.Query().Get(name)
	if *dst != 0 || raw == "" {
		return true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		pkghttp.WriteBadRequest(w, fmt.Sprintf("%s must be an integer", name))
		return false
	}
	*dst = n
	return true
}

// floatFromQuery is intFromQuery for decimal values
func floatFromQuery(w http.ResponseWriter, r *http.Request, dst *float64, name string) bool {
	raw := r.URL.Query().Get(name)
	if *dst != 0 || raw == "" {
		return true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		pkghttp.WriteBadRequest(w, fmt.Sprintf("%s must be a number", name))
		return false
	}
	*dst = f
	return true
}

// optionalFromQuery fills a nil string pointer from the query
func optionalFromQuery(r *http.Request, dst **string, name string) {
	if *dst == nil {
		if v := r.URL.Query().Get(name); v != "" {
			*dst = &v
		}
	}
}
