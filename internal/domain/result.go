package domain

import "errors"

// Result is the outcome of a user facing operation. Operations report
// failure through Result instead of returning errors; Err keeps the cause
// for errors.Is classification and is never serialized.
type Result struct {
	Success bool   `json:"success"           yaml:"success"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Err     error  `json:"-"                 yaml:"-"`
}

// Succeeded builds a successful Result.
func Succeeded(message string) Result {
	return Result{Success: true, Message: message}
}

// Failed builds a failed Result for err. The message is taken from the API
// answer when it carried one, and falls back to fallback otherwise.
func Failed(err error, fallback string) Result {
	return Result{Success: false, Message: MessageFor(err, fallback), Err: err}
}

// MessageFor picks the user visible message for err.
func MessageFor(err error, fallback string) string {
	var (
		apiErr *APIError
		inErr  *InputError
	)

	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.As(err, &inErr):
		return inErr.Error()
	case errors.Is(err, ErrNetwork):
		return NetworkFailureMessage
	case errors.Is(err, ErrNoAuthToken):
		return LoginRequiredMessage
	default:
		return fallback
	}
}
