package types

import (
	"errors"

	appErr "github.com/cloud-next/onboarding/pkg/errors"
)

// FromAppError converts err into the API error body, keeping the code and
// metadata of the first AppError in the chain.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var e *appErr.AppError
	if errors.As(err, &e) {
		out := &APIError{Code: string(e.Code), Message: e.Message}
		if len(e.Meta) > 0 {
			out.Details = e.Meta
		}
		if e.Code == appErr.CodeInternal {
			out.Message = "internal error"
		}
		return out
	}
	return &APIError{Code: string(appErr.CodeUnknown), Message: err.Error()}
}
