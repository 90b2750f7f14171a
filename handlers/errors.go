// errors.go - Error responses shared by all handlers

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func init() {
	// Report request field names (form or json tag) instead of Go names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

func detail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}

func serverError(c *gin.Context, op string, err error) {
	log.Printf("%s: %v", op, err)
	detail(c, http.StatusInternalServerError, "Internal server error")
}

func invalid(c *gin.Context, errs ...FieldError) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"detail": "Error validating request",
		"errors": errs,
	})
}

// bindFailed renders a binding or validation error for obj as a 422.
func bindFailed(c *gin.Context, obj any, err error) {
	// gin returns the bare strconv error when a form or query value does
	// not convert, so find the field it came from.
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		if errs := unparsedFields(requestValues(c), reflect.TypeOf(obj)); len(errs) > 0 {
			invalid(c, errs...)
			return
		}
	}
	invalid(c, fieldErrors(err)...)
}

// requestValues are the values gin bound from: the parsed form when there is
// one, otherwise the query string.
func requestValues(c *gin.Context) url.Values {
	if c.Request.Form != nil {
		return c.Request.Form
	}
	return c.Request.URL.Query()
}

// unparsedFields lists the numeric fields of t whose submitted value is not a
// number.
func unparsedFields(values url.Values, t reflect.Type) []FieldError {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var out []FieldError
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			out = append(out, unparsedFields(values, f.Type)...)
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		raw := values.Get(name)
		if name == "" || name == "-" || raw == "" {
			continue
		}

		kind := f.Type.Kind()
		if kind == reflect.Pointer {
			kind = f.Type.Elem().Kind()
		}
		switch kind {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
				out = append(out, FieldError{Field: name, Message: "Input should be a valid integer, unable to parse string as an integer", Type: "int_parsing"})
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if _, err := strconv.ParseUint(raw, 10, 64); err != nil {
				out = append(out, FieldError{Field: name, Message: "Input should be a valid integer, unable to parse string as an integer", Type: "int_parsing"})
			}
		case reflect.Float32, reflect.Float64:
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				out = append(out, FieldError{Field: name, Message: "Input should be a valid number, unable to parse string as a number", Type: "float_parsing"})
			}
		}
	}
	return out
}

func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, describe(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{
			Field:   typeErr.Field,
			Message: "Input should be a valid " + typeErr.Type.String(),
			Type:    "type_error",
		}}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return []FieldError{{Field: "body", Message: "JSON decode error", Type: "json_invalid"}}
	}

	return []FieldError{{Field: "body", Message: "Request could not be parsed", Type: "value_error"}}
}

func describe(fe validator.FieldError) FieldError {
	out := FieldError{Field: fe.Field()}
	text := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		out.Message, out.Type = "Field required", "missing"
	case "min":
		if text {
			out.Message, out.Type = fmt.Sprintf("String should have at least %s characters", fe.Param()), "string_too_short"
		} else {
			out.Message, out.Type = fmt.Sprintf("Input should be greater than or equal to %s", fe.Param()), "greater_than_equal"
		}
	case "max":
		if text {
			out.Message, out.Type = fmt.Sprintf("String should have at most %s characters", fe.Param()), "string_too_long"
		} else {
			out.Message, out.Type = fmt.Sprintf("Input should be less than or equal to %s", fe.Param()), "less_than_equal"
		}
	case "gt":
		out.Message, out.Type = fmt.Sprintf("Input should be greater than %s", fe.Param()), "greater_than"
	case "gte":
		out.Message, out.Type = fmt.Sprintf("Input should be greater than or equal to %s", fe.Param()), "greater_than_equal"
	case "lt":
		out.Message, out.Type = fmt.Sprintf("Input should be less than %s", fe.Param()), "less_than"
	case "lte":
		out.Message, out.Type = fmt.Sprintf("Input should be less than or equal to %s", fe.Param()), "less_than_equal"
	case "email":
		out.Message, out.Type = "value is not a valid email address", "value_error"
	case "oneof":
		out.Message, out.Type = "Input should be one of: "+strings.ReplaceAll(fe.Param(), " ", ", "), "enum"
	case "datetime":
		out.Message, out.Type = "Input should be a valid date in YYYY-MM-DD format", "date_parsing"
	default:
		out.Message, out.Type = "Invalid value", "value_error"
	}
	return out
}
