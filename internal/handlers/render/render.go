package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const (
	ValidationErrorType = "validation_failed"
	DecodingErrorType   = "decoding_failed"
	ServiceErrorType    = "service_error"
)

const validationFailedMessage = "Request validation failed"

var validate = validator.New()

func init() {
	configureValidator(validate)
}

// ErrorResponse is the body of every non 2xx response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	writeJSON(w, code, data)
}

func ServiceError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, ErrorResponse{Error: ServiceErrorType, Message: message})
}

// DecodeError renders request body decoding failure as 400
func DecodeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   DecodingErrorType,
		Message: decodeMessage(err),
	})
}

// ValidationErrors renders failed struct tags as 400 with a message per json field
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fieldMessage(fe)
	}

	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   ValidationErrorType,
		Message: validationFailedMessage,
		Fields:  fields,
	})
}

// BindAndValidate decodes JSON request body into T and checks its `validate` tags.
// On failure the error response is already written and the caller should just return.
func BindAndValidate[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var req T

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		DecodeError(w, err)
		return req, err
	}

	if err := validate.Struct(req); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return req, err
		}
		ValidationErrors(w, errs)
		return req, err
	}

	return req, nil
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "Request body is empty"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field)
	default:
		return fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Value is too short (minimum %s)", fe.Param())
	case "max":
		return fmt.Sprintf("Value is too long (maximum %s)", fe.Param())
	case "role":
		return "Unknown role"
	default:
		return "Invalid value"
	}
}

// Body is encoded before any header is written so encoding failure still can be reported as 500
func writeJSON(w http.ResponseWriter, code int, data any) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
