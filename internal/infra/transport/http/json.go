package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/mkrupp/disastermap/internal/domain"
)

// maxInputBytes bounds request bodies read by ReadInput.
const maxInputBytes = 1 << 20

// ErrorBody is the JSON error answer of the shell.
type ErrorBody struct {
	Message string `json:"message"`
}

// WriteJSON answers with v encoded as JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

// WriteError answers with a JSON {message} body.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Message: message})
}

// WriteResult answers with res and the status matching its error class.
func WriteResult(w http.ResponseWriter, res domain.Result) {
	WriteJSON(w, StatusForResult(res), res)
}

// StatusForResult maps the outcome of an operation onto an HTTP status.
func StatusForResult(res domain.Result) int {
	if res.Success {
		return http.StatusOK
	}

	switch err := res.Err; {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRequestRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrServerFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ReadInput decodes a JSON body into v. Form bodies are accepted too; their
// fields are decoded as if they were JSON strings.
func ReadInput(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxInputBytes))
		if err := dec.Decode(v); err != nil {
			return errors.Join(domain.ErrInvalidInput, fmt.Errorf("decode json: %w", err))
		}

		return nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxInputBytes)
	if err := r.ParseForm(); err != nil {
		return errors.Join(domain.ErrInvalidInput, fmt.Errorf("parse form: %w", err))
	}

	fields := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		fields[key] = r.PostForm.Get(key)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(domain.ErrInvalidInput, fmt.Errorf("decode form: %w", err))
	}

	return nil
}
