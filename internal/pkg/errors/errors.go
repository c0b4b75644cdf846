package errors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindAlreadyInState
	KindTooMany
	KindTransient
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindAlreadyInState:
		return "already_in_state"
	case KindTooMany:
		return "too_many"
	case KindTransient:
		return "transient"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a classified application error. Sentinels are compared by identity,
// so wrap them with fmt.Errorf("...: %w", err) to add context.
type Error struct {
	kind Kind
	code string
	msg  string
}

func New(kind Kind, code, msg string) *Error {
	return &Error{kind: kind, code: code, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Code() string {
	return e.code
}

var (
	ErrInvalid   = New(KindValidation, "invalid", "invalid request")
	ErrNotFound  = New(KindNotFound, "not_found", "not found")
	ErrConflict  = New(KindConflict, "conflict", "conflict")
	ErrTooMany   = New(KindTooMany, "too_many_requests", "too many requests")
	ErrTransient = New(KindTransient, "unavailable", "service temporarily unavailable")
	ErrInternal  = New(KindInternal, "internal", "internal error")
	ErrCorrupt   = New(KindInternal, "corrupt_record", "corrupt record in store")

	ErrAccountExists         = New(KindConflict, "account_exists", "Account already exists")
	ErrUnknownAccount        = New(KindNotFound, "unknown_account", "User with this email does not exist. Please create an account first.")
	ErrUserNotFound          = New(KindNotFound, "user_not_found", "User not found")
	ErrBadCredentials        = New(KindUnauthorized, "bad_credentials", "Incorrect password provided.")
	ErrNotVerified           = New(KindUnauthorized, "not_verified", "Please verify your email first")
	ErrUnauthenticated       = New(KindUnauthorized, "unauthenticated", "Missing or invalid session")
	ErrCSRFMismatch          = New(KindUnauthorized, "csrf_mismatch", "Missing or invalid CSRF token")
	ErrInvalidOrExpiredToken = New(KindUnauthorized, "invalid_or_expired_token", "Invalid or expired token")
	ErrAlreadyVerified       = New(KindAlreadyInState, "already_verified", "This account is already verified.")
	ErrHistoryNotFound       = New(KindNotFound, "history_not_found", "History item not found or you do not have permission to delete it.")
	ErrInvalidImage          = New(KindValidation, "invalid_image", "file must be an image")
	ErrInference             = New(KindUpstream, "inference_failed", "prediction failed")
	ErrUpload                = New(KindUpstream, "upload_failed", "failed to upload image")
)

// Validation returns a validation error carrying a caller-facing message.
func Validation(msg string) error {
	return New(KindValidation, ErrInvalid.code, msg)
}

// Transient marks err as a retryable infrastructure failure.
func Transient(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// As returns the outermost classified error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
