package auth

import (
	"fmt"

	"github.com/jrsteele09/wedding-site/internal/errors"
)

// Reason is the code carried back to the admin UI when an OAuth login is
// denied. The UI must treat unknown values as a generic failure.
type Reason string

const (
	ReasonAccessDenied        Reason = "access_denied"
	ReasonMissingParams       Reason = "missing_params"
	ReasonInvalidState        Reason = "invalid_state"
	ReasonTokenExchangeFailed Reason = "token_exchange_failed"
	ReasonUserInfoFailed      Reason = "userinfo_failed"
	ReasonEmailNotVerified    Reason = "email_not_verified"
	ReasonNotAuthorized       Reason = "not_authorized"
	ReasonServerError         Reason = "server_error"
)

// DeniedError ends an OAuth login attempt.
type DeniedError struct {
	Reason Reason
	Err    error
}

func (e *DeniedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("oauth login denied: %s", e.Reason)
	}
	return fmt.Sprintf("oauth login denied: %s: %v", e.Reason, e.Err)
}

func (e *DeniedError) Unwrap() error {
	return e.Err
}

func denied(reason Reason, err error) *DeniedError {
	return &DeniedError{Reason: reason, Err: err}
}

// ReasonOf extracts the denial reason from err, or ReasonServerError when err
// is not a denial.
func ReasonOf(err error) Reason {
	var d *DeniedError
	if errors.As(err, &d) {
		return d.Reason
	}
	return ReasonServerError
}
