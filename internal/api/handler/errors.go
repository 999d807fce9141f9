package handler

import (
	"net/http"

	"github.com/mcoot/chefgenie/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeForbidden          = apierr.CodeForbidden
	CodeInvalidClient      = apierr.CodeInvalidClient
	CodeAccountNotFound    = apierr.CodeAccountNotFound
	CodeAccountBanned      = apierr.CodeAccountBanned
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeUsernameTooShort   = apierr.CodeUsernameTooShort
	CodePasswordTooWeak    = apierr.CodePasswordTooWeak
	CodeUsernameExists     = apierr.CodeUsernameExists
	CodeUserNotFound       = apierr.CodeUserNotFound
	CodeOwnerProtected     = apierr.CodeOwnerProtected
	CodeBusy               = apierr.CodeBusy
	CodeInvalidTransition  = apierr.CodeInvalidTransition
	CodeUndoUnavailable    = apierr.CodeUndoUnavailable
	CodeEmptyAnswer        = apierr.CodeEmptyAnswer
	CodeUnknownSound       = apierr.CodeUnknownSound
	CodeUnknownTrack       = apierr.CodeUnknownTrack
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}
