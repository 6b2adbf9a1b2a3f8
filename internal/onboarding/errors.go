package onboarding

import "errors"

var (
	ErrUnknownStatus        = errors.New("unknown status")
	ErrUnknownAction        = errors.New("unknown action")
	ErrIneligible           = errors.New("application status does not match action precondition")
	ErrConfirmationRequired = errors.New("action requires explicit confirmation")

	ErrJSONSyntax    = errors.New("invalid JSON syntax")
	ErrMissingApps   = errors.New(`invalid format: missing "apps" array`)
	// ErrMalformedApps means "apps" is present but its entries do not decode.
	ErrMalformedApps = errors.New("invalid format: malformed apps entry")
)
