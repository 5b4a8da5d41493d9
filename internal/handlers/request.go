package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"sportclub/internal/models"
	"sportclub/internal/validation"
)

var validate = newValidator()

// newValidator reports field names by their json tag
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a JSON body into dst and runs its validate tags. Failures
// come back as a ValidationError naming the first offending field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return validation.ValidationError{Field: "body", Message: ErrInvalidJSON}
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return validation.ValidationError{Field: fe.Field(), Message: describeTag(fe)}
		}
		return err
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "national_id or passport_number is required"
	case "excluded_with":
		return "give either national_id or passport_number, not both"
	case "email":
		return "invalid email format"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}

// pathID parses a positive integer path parameter
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.ValidationError{Field: name, Message: ErrInvalidID}
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter, 0 when absent
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.ValidationError{Field: name, Message: ErrInvalidID}
	}
	return id, nil
}

// queryPeriod parses the required from/to query parameters
func queryPeriod(r *http.Request) (models.Date, models.Date, error) {
	var dates [2]models.Date
	for i, name := range []string{"from", "to"} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			return models.Date{}, models.Date{}, validation.ValidationError{Field: name, Message: "is required"}
		}
		d, err := models.ParseDate(raw)
		if err != nil {
			return models.Date{}, models.Date{}, validation.ValidationError{Field: name, Message: fmt.Sprintf("must be a date like %s", models.DateLayout)}
		}
		dates[i] = d
	}
	return dates[0], dates[1], nil
}
