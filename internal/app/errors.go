package app

import (
	"errors"
	"net/http"
)

// Kind classifies failures surfaced by the session manager and catalog.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindProtocol   Kind = "protocol"
	KindConfig     Kind = "config"
	KindStorage    Kind = "storage"
	KindNetwork    Kind = "network"
	KindBusy       Kind = "busy"
)

// User-facing messages.
const (
	MsgCredentialsRequired = "Username and password are required"
	MsgAllFieldsRequired   = "All fields are required"
	MsgPasswordsMismatch   = "Passwords don't match"
	MsgPasswordTooShort    = "Password must be at least 6 characters"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgLoginFailed         = "Login failed, please try again"
	MsgRegistrationFailed  = "Registration failed, please try again"
	MsgInvalidResponse     = "Invalid response from server"
	MsgNotConfigured       = "API endpoint not configured"
	MsgSaveSessionFailed   = "Unable to save session, please try again"
	MsgNetworkFailed       = "Network request failed"
	MsgBusy                = "A sign-in request is already in progress"
	MsgInvalidProductID    = "Invalid product ID"
	MsgFetchProductFailed  = "Failed to fetch product"
	MsgFetchProductsFailed = "Failed to fetch products"
)

// MinPasswordLength is the shortest password accepted by SignUp.
const MinPasswordLength = 6

// Error is a classified failure. Error() is the display string; Kind is for programmatic checks.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// classifyRemote maps adapter errors shared by every remote call. For a
// RemoteError it returns the unwrapped value so the caller picks the message.
func classifyRemote(err error) (*Error, *RemoteError) {
	var remote *RemoteError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return newError(KindConfig, MsgNotConfigured, err), nil
	case errors.Is(err, ErrMalformedResponse):
		return newError(KindProtocol, MsgInvalidResponse, err), nil
	case errors.As(err, &remote):
		return nil, remote
	default:
		return newError(KindNetwork, MsgNetworkFailed, err), nil
	}
}

func loginError(err error) *Error {
	e, remote := classifyRemote(err)
	if e != nil {
		return e
	}
	if remote.StatusCode == http.StatusUnauthorized {
		return newError(KindAuth, MsgInvalidCredentials, err)
	}
	return newError(KindAuth, MsgLoginFailed, err)
}

func registerError(err error) *Error {
	e, remote := classifyRemote(err)
	if e != nil {
		return e
	}
	switch {
	case remote.Message != "":
		return newError(KindAuth, remote.Message, err)
	case remote.StatusCode == http.StatusUnauthorized:
		return newError(KindAuth, MsgInvalidCredentials, err)
	default:
		return newError(KindAuth, MsgRegistrationFailed, err)
	}
}

func catalogError(err error, msg string) *Error {
	e, remote := classifyRemote(err)
	if e != nil {
		return e
	}
	return newError(KindNetwork, msg, remote)
}
