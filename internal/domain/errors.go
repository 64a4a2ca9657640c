package domain

import "errors"

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNoProjectSelected = errors.New("no project selected")
	ErrProjectNotFound   = errors.New("project not found")
	ErrSecretNotFound    = errors.New("secret not found")
)

// ErrorKind is the structured discriminant produced once at the HTTP
// boundary. Callers dispatch on it with errors.As, never on message text.
type ErrorKind string

const (
	KindAuthExpired  ErrorKind = "auth_expired"
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"
	KindServerError  ErrorKind = "server_error"
	KindNetworkError ErrorKind = "network_error"
)

// SessionExpiredMessage is the single user-facing message for any
// authentication failure reported by the backend.
const SessionExpiredMessage = "Session expired. Please sign in again."

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

func IsAuthExpired(err error) bool { return IsKind(err, KindAuthExpired) }
