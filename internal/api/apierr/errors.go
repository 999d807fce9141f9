package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/chefgenie/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidClient      = "INVALID_CLIENT"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeAccountBanned      = "ACCOUNT_BANNED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUsernameTooShort   = "USERNAME_TOO_SHORT"
	CodePasswordTooWeak    = "PASSWORD_TOO_WEAK"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeOwnerProtected     = "OWNER_PROTECTED"
	CodeBusy               = "BUSY"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeUndoUnavailable    = "UNDO_UNAVAILABLE"
	CodeEmptyAnswer        = "EMPTY_ANSWER"
	CodeUnknownSound       = "UNKNOWN_SOUND"
	CodeUnknownTrack       = "UNKNOWN_TRACK"
	CodeTimeout            = "TIMEOUT"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Message returns the player-facing text for err
func Message(err error) string {
	return toHTTPError(err).apiError.Message
}

// Status returns the HTTP status code err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Account errors
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeAccountNotFound, "Account not found. Please sign up."}}
	case errors.Is(err, model.ErrAccountBanned):
		return &httpError{http.StatusForbidden, APIError{CodeAccountBanned, "This account has been BANNED by the Owner."}}
	case errors.Is(err, model.ErrIncorrectPassword):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Incorrect password."}}
	case errors.Is(err, model.ErrIncorrectCurrentPassword):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Incorrect current password."}}
	case errors.Is(err, model.ErrUsernameTooShort):
		return &httpError{http.StatusBadRequest, APIError{CodeUsernameTooShort, "Username too short."}}
	case errors.Is(err, model.ErrPasswordTooWeak):
		return &httpError{http.StatusBadRequest, APIError{CodePasswordTooWeak, "Password too weak."}}
	case errors.Is(err, model.ErrNewPasswordTooWeak):
		return &httpError{http.StatusBadRequest, APIError{CodePasswordTooWeak, "New password too weak."}}
	case errors.Is(err, model.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists."}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found."}}
	case errors.Is(err, model.ErrCannotDeleteOwner):
		return &httpError{http.StatusForbidden, APIError{CodeOwnerProtected, "Cannot delete the Owner account."}}
	case errors.Is(err, model.ErrNotOwner):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Owner privileges required."}}
	case errors.Is(err, model.ErrNotLoggedIn):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "You need to log in first."}}
	case errors.Is(err, model.ErrInvalidClient):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidClient, "Missing or invalid client token."}}

	// Game errors
	case errors.Is(err, model.ErrBusy):
		return &httpError{http.StatusConflict, APIError{CodeBusy, "The genie is still thinking."}}
	case errors.Is(err, model.ErrInvalidTransition):
		return &httpError{http.StatusConflict, APIError{CodeInvalidTransition, "That action is not available right now."}}
	case errors.Is(err, model.ErrUndoUnavailable):
		return &httpError{http.StatusBadRequest, APIError{CodeUndoUnavailable, "Nothing to undo yet."}}
	case errors.Is(err, model.ErrEmptyAnswer):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyAnswer, "Answer must not be empty."}}

	// Audio errors
	case errors.Is(err, model.ErrUnknownSound):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownSound, "Unknown sound."}}
	case errors.Is(err, model.ErrUnknownTrack):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownTrack, "Unknown track."}}

	case errors.Is(err, context.DeadlineExceeded):
		return &httpError{http.StatusGatewayTimeout, APIError{CodeTimeout, "Request timed out."}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
