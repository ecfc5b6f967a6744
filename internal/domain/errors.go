package domain

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindInvalidCredentials
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	}
	return "internal"
}

// Error carries a public message (Msg) and an optional private cause (Err).
// Only Msg ever reaches the client.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

const (
	MsgConflict           = "REGISTRATION FAILED: HANDLE OR EMAIL ALREADY EXISTS"
	MsgInvalidCredentials = "AUTHENTICATION FAILED: INVALID CREDENTIALS"
	MsgNoToken            = "ACCESS DENIED: NO TOKEN PROVIDED"
	MsgInvalidToken       = "ACCESS DENIED: INVALID TOKEN"
	MsgTaskNotFound       = "OPERATION NOT FOUND OR ACCESS DENIED"
)

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Msg: msg} }
func InvalidCredentials() error {
	return &Error{Kind: KindInvalidCredentials, Msg: MsgInvalidCredentials}
}
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func NotFound(msg string) error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf returns KindInternal for anything that is not a *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind is shorthand for KindOf(err) == k with a nil check.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
