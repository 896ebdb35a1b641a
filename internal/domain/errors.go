package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrAdminAlreadyExists = errors.New("admin user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials provided")
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnsupportedFile    = errors.New("unsupported file type")
)

// Kind classifies an Error so the request surface can map it to a status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindInvalidCredentials
	KindAlreadyExists
	KindNotFound
	KindUploadFailure
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindAlreadyExists:
		return "already_exists"
	case KindNotFound:
		return "not_found"
	case KindUploadFailure:
		return "upload_failure"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is a classified failure carrying a client-facing message. Err holds
// the underlying cause, which is logged but never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation reports bad input such as missing fields or an unsupported file.
func Validation(msg string, err error) *Error { return newError(KindValidation, msg, err) }

// Unauthorized reports a missing, malformed or expired bearer token.
func Unauthorized(msg string, err error) *Error { return newError(KindUnauthorized, msg, err) }

// InvalidCredentials reports a failed login without saying which part was wrong.
func InvalidCredentials() *Error {
	return newError(KindInvalidCredentials, "Invalid credentials.", ErrInvalidCredentials)
}

// AlreadyExists reports a registration attempt once the admin exists.
func AlreadyExists(msg string) *Error {
	return newError(KindAlreadyExists, msg, ErrAdminAlreadyExists)
}

// NotFound reports an unknown project, section or experience item.
func NotFound(msg string) *Error { return newError(KindNotFound, msg, ErrNotFound) }

// UploadFailure reports an asset store transport or remote error.
func UploadFailure(err error) *Error {
	return newError(KindUploadFailure, "Error uploading file to asset store", err)
}

// Storage reports a document database failure.
func Storage(err error) *Error {
	return newError(KindStorage, "Storage failure", err)
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
