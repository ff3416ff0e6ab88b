// Package httputil writes the JSON envelopes shared by every handler.
//
// Success bodies look like {"success":true,"data":...,"meta":{...}} and error
// bodies like {"success":false,"error":"...","code":"...","meta":{...}}.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	dErrors "sarkar/pkg/domain-errors"
)

// APIVersion is reported in every envelope.
const APIVersion = "v1"

// maxBodyBytes caps request bodies read by DecodeAndPrepare.
const maxBodyBytes = 1 << 20

const internalErrorMessage = "Internal server error."

// Meta is the envelope metadata block.
type Meta struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// SuccessEnvelope wraps a successful payload.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    Meta `json:"meta"`
}

// ErrorEnvelope wraps an error message.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Meta    Meta   `json:"meta"`
}

// Validatable is implemented by request bodies that normalize and validate
// themselves after decoding.
type Validatable interface {
	Validate() error
}

func newMeta() Meta {
	return Meta{Version: APIVersion, Timestamp: time.Now().UTC()}
}

// WriteJSON writes data inside a success envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Success: true, Data: data, Meta: newMeta()})
}

// WriteError translates err into a status and error envelope. Internal
// errors never expose their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := internalErrorMessage
	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) {
		message = de.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Success: false,
		Error:   message,
		Code:    string(code),
		Meta:    newMeta(),
	})
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DecodeAndPrepare decodes the JSON body into T and runs its Validate method.
// On failure it writes the error response and returns false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		message := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			message = "request body is required"
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, message))
		return nil, false
	}

	if err := PT(&req).Validate(); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request validation failed",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, err)
		return nil, false
	}
	return &req, true
}
