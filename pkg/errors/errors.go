package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"
)

// Kind is the category an application error belongs to.
type Kind string

const (
	// KindValidation covers malformed or out-of-range input.
	KindValidation Kind = "validation"
	// KindAuth covers missing, invalid or expired credentials.
	KindAuth Kind = "auth"
	// KindAuthorization covers an authenticated user acting on a resource they do not own.
	KindAuthorization Kind = "authorization"
	// KindNotFound covers references to entities that do not exist.
	KindNotFound Kind = "not_found"
	// KindConflict covers duplicate unique fields such as username or email.
	KindConflict Kind = "conflict"
	// KindServer covers everything unexpected.
	KindServer Kind = "server"
)

// AppError is the base error carried from services to the HTTP boundary.
type AppError struct {
	Kind    Kind
	Message string
	Fields  map[string]string // per-field validation messages, optional
	Err     error             // wrapped cause
	Stack   []byte            // where a server error was raised, nil for other kinds
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// New creates an AppError of the given kind.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap creates an AppError of the given kind around a cause. Server errors
// record the stack of the caller.
func Wrap(kind Kind, message string, err error) *AppError {
	appErr := &AppError{Kind: kind, Message: message, Err: err}
	if kind == KindServer {
		appErr.Stack = debug.Stack()
	}
	return appErr
}

func Validation(message string) *AppError { return New(KindValidation, message) }

// ValidationFields carries a per-field breakdown, as produced by struct validation.
func ValidationFields(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

func Unauthenticated(message string) *AppError { return New(KindAuth, message) }

func Forbidden(message string) *AppError { return New(KindAuthorization, message) }

func NotFound(message string) *AppError { return New(KindNotFound, message) }

func Conflict(message string) *AppError { return New(KindConflict, message) }

func Internal(message string, err error) *AppError { return Wrap(KindServer, message, err) }

// Graph errors

// SelfFollowError is returned when a user tries to follow themselves.
type SelfFollowError struct {
	*AppError
	UserID string
}

func NewSelfFollow(userID string) *SelfFollowError {
	return &SelfFollowError{AppError: Validation("You cannot follow yourself"), UserID: userID}
}

func (e *SelfFollowError) Unwrap() error { return e.AppError }

// AlreadyFollowingError is returned when the follow edge already exists.
type AlreadyFollowingError struct {
	*AppError
	FollowerID  string
	FollowingID string
}

func NewAlreadyFollowing(followerID, followingID string) *AlreadyFollowingError {
	return &AlreadyFollowingError{
		AppError:    Validation("You are already following this user"),
		FollowerID:  followerID,
		FollowingID: followingID,
	}
}

func (e *AlreadyFollowingError) Unwrap() error { return e.AppError }

// NotFollowingError is returned when unfollowing a user that is not followed.
type NotFollowingError struct {
	*AppError
	FollowerID  string
	FollowingID string
}

func NewNotFollowing(followerID, followingID string) *NotFollowingError {
	return &NotFollowingError{
		AppError:    Validation("You are not following this user"),
		FollowerID:  followerID,
		FollowingID: followingID,
	}
}

func (e *NotFollowingError) Unwrap() error { return e.AppError }

// Content errors

// NotAuthorizedError is returned when a user mutates a resource owned by someone else.
type NotAuthorizedError struct {
	*AppError
	Resource   string
	ResourceID string
}

func NewNotAuthorized(resource, resourceID, action string) *NotAuthorizedError {
	return &NotAuthorizedError{
		AppError:   Forbidden(fmt.Sprintf("Not authorized to %s this %s", action, resource)),
		Resource:   resource,
		ResourceID: resourceID,
	}
}

func (e *NotAuthorizedError) Unwrap() error { return e.AppError }

// Helper functions

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindServer for anything that is not an AppError.
func KindOf(err error) Kind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindServer
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}
