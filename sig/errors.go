package sig

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes returned by fetch and extraction failures.
const (
	ErrCodeCannotFetchLanding  = "CANNOT_FETCH_LANDING"
	ErrCodeCannotMatchPlayerID = "CANNOT_MATCH_PLAYER_ID"
	ErrCodeCannotFetchPlayerJS = "CANNOT_FETCH_PLAYER_JS"
	ErrCodeNsigRegexFailed     = "NSIG_REGEX_FAILED"
	ErrCodeSigRegexFailed      = "SIG_REGEX_FAILED"
	ErrCodeEvalFailed          = "EVAL_FAILED"
)

// Error is a structured error carrying a stable code alongside a message
// and optional diagnostic detail.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	type Alias Error
	return json.Marshal(&struct {
		*Alias
		Error string `json:"error"`
	}{
		Alias: (*Alias)(e),
		Error: e.Error(),
	})
}

// NewError creates an Error with the given code and message.
func NewError(code, message string, details ...any) *Error {
	e := &Error{Code: code, Message: message}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// IsNotFound reports whether err is a "could not locate it" class error.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeCannotMatchPlayerID || e.Code == ErrCodeNsigRegexFailed || e.Code == ErrCodeSigRegexFailed
	}
	return false
}

// IsFetchError reports whether err originated from the Fetcher.
func IsFetchError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeCannotFetchLanding || e.Code == ErrCodeCannotFetchPlayerJS
	}
	return false
}

// ErrPlayerAlreadyUpdated is a sentinel, not a failure: the landing page's
// player id matched the id already held in State, so no extraction ran.
var ErrPlayerAlreadyUpdated = errors.New("sig: player already updated")
