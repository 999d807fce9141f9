package model

import "errors"

// Common errors used across the application
var (
	// Storage errors
	ErrKeyNotFound = errors.New("key not found")

	// Account errors
	ErrAccountNotFound          = errors.New("account not found")
	ErrAccountBanned            = errors.New("account is banned")
	ErrIncorrectPassword        = errors.New("incorrect password")
	ErrUsernameTooShort         = errors.New("username too short")
	ErrPasswordTooWeak          = errors.New("password too weak")
	ErrNewPasswordTooWeak       = errors.New("new password too weak")
	ErrUsernameExists           = errors.New("username already exists")
	ErrUserNotFound             = errors.New("user not found")
	ErrIncorrectCurrentPassword = errors.New("incorrect current password")
	ErrCannotDeleteOwner        = errors.New("cannot delete the owner account")
	ErrNotOwner                 = errors.New("owner privileges required")
	ErrNotLoggedIn              = errors.New("not logged in")
	ErrInvalidClient            = errors.New("invalid client token")

	// Game errors
	ErrBusy              = errors.New("a request is already in flight")
	ErrInvalidTransition = errors.New("action not allowed in the current state")
	ErrUndoUnavailable   = errors.New("undo is not available yet")
	ErrEmptyAnswer       = errors.New("answer must not be empty")

	// Conversation errors
	ErrGameNotStarted    = errors.New("game not started")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrModelUnavailable  = errors.New("model service unavailable")

	// Audio errors
	ErrUnknownSound = errors.New("unknown sound")
	ErrUnknownTrack = errors.New("unknown track")
)
