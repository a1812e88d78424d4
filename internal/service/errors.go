package service

import "errors"

// Kind classifies a service failure for the transport layer.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindAuthentication
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindAuthentication:
		return "authentication"
	default:
		return "unexpected"
	}
}

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorizedAccess = errors.New("unauthorized access to task")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already in use")
)

// ValidationError reports input that breaks a domain constraint.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}

// KindOf classifies err. Anything not recognised is KindUnexpected.
func KindOf(err error) Kind {
	var verr *ValidationError
	switch {
	case err == nil:
		return KindUnexpected
	case errors.As(err, &verr),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailTaken):
		return KindValidation
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorizedAccess):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidCredentials):
		return KindAuthentication
	default:
		return KindUnexpected
	}
}
