package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/josephgoksu/SprintReview/internal/loader"
	"github.com/josephgoksu/SprintReview/internal/review"
)

// Error codes returned in the error envelope.
const (
	codeBadRequest         = "BAD_REQUEST"
	codeValidation         = "VALIDATION_ERROR"
	codeGenerationFailed   = "GENERATION_FAILED"
	codeInvalidModelOutput = "INVALID_MODEL_OUTPUT"
	codeInternal           = "INTERNAL"
)

type errorBody struct {
	Error errorDetails `json:"error"`
}

type errorDetails struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message, field string) {
	writeJSON(w, status, errorBody{Error: errorDetails{Code: code, Message: message, Field: field}})
}

// statusFor maps a pipeline error onto an HTTP status and error code.
func statusFor(err error) (int, errorDetails) {
	var vErr *loader.ValidationError
	var genErr *review.GenerationError
	var parseErr *review.ResponseParseError

	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity, errorDetails{Code: codeValidation, Message: vErr.Error(), Field: vErr.Field}
	case errors.As(err, &genErr):
		return http.StatusBadGateway, errorDetails{Code: codeGenerationFailed, Message: genErr.Error()}
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, errorDetails{Code: codeInvalidModelOutput, Message: parseErr.Error(), Field: parseErr.Field}
	default:
		return http.StatusInternalServerError, errorDetails{Code: codeInternal, Message: "internal server error"}
	}
}
