package domain

import "errors"

// ErrorKind is the stable, machine-readable category of a failure.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindUnauthorized   ErrorKind = "unauthorized"
	KindForbidden      ErrorKind = "forbidden"
	KindNotFound       ErrorKind = "not_found"
	KindAlreadyExists  ErrorKind = "already_exists"
	KindAlreadyFriends ErrorKind = "already_friends"
	KindInvalidState   ErrorKind = "invalid_state"
	KindTransient      ErrorKind = "transient"
	KindInternal       ErrorKind = "internal"
)

// Error is a domain failure with a kind and a detail shown to the user.
type Error struct {
	Kind   ErrorKind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Detail + ": " + e.cause.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches sentinels by kind and detail so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Detail == t.Detail
}

// NewError creates a domain error of the given kind.
func NewError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Transient wraps an infrastructure failure that is safe to retry.
func Transient(detail string, cause error) *Error {
	return &Error{Kind: KindTransient, Detail: detail, cause: cause}
}

// KindOf reports the kind of err, or KindInternal for non-domain errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// DetailOf returns the user-facing detail of err.
func DetailOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Detail
	}
	return "internal server error"
}

var (
	ErrProfileNotFound      = NewError(KindNotFound, "profile not found")
	ErrProfileAlreadyExists = NewError(KindAlreadyExists, "profile already exists")
	ErrInvalidEmailDomain   = NewError(KindValidation, "email must belong to the institution domain")
	ErrInvalidSport         = NewError(KindValidation, "sport is not in the catalog")
	ErrSportsRequired       = NewError(KindValidation, "sports is required")
	ErrInvalidGymLevel      = NewError(KindValidation, "gym level must be one of: Beginner, Intermediate, Advanced")
	ErrInvalidWorkoutGoal   = NewError(KindValidation, "workout goal is not in the catalog")
	ErrInvalidAge           = NewError(KindValidation, "age must be between 18 and 100")
	ErrInvalidWeight        = NewError(KindValidation, "weight must be between 50 and 500 lbs")
	ErrInvalidHeight        = NewError(KindValidation, "height must be between 3'0\" and 8'11\"")
	ErrSurveyIncomplete     = NewError(KindValidation, "both users must complete the survey")

	ErrFriendRequestNotFound = NewError(KindNotFound, "friend request not found")
	ErrCannotFriendSelf      = NewError(KindValidation, "cannot send a friend request to yourself")
	ErrInvalidDecision       = NewError(KindValidation, "response must be accept or reject")
	ErrAlreadyFriends        = NewError(KindAlreadyFriends, "users are already friends")
	ErrRequestNotPending     = NewError(KindInvalidState, "friend request has already been answered")
	ErrNotRequestRecipient   = NewError(KindForbidden, "only the recipient can respond to this friend request")

	ErrUnauthorized  = NewError(KindUnauthorized, "missing or invalid credentials")
	ErrInvalidToken  = NewError(KindUnauthorized, "invalid or expired token")
	ErrForbidden     = NewError(KindForbidden, "cannot act on behalf of another user")
	ErrStoreConflict = NewError(KindTransient, "concurrent update, please retry")
)
