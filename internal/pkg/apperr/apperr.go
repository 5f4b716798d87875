package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind is the stable error discriminant exposed to API clients.
type Kind string

const (
	KindAuthentication Kind = "AUTHENTICATION_ERROR"
	KindValidation     Kind = "VALIDATION_ERROR"
	KindNotFound       Kind = "RESOURCE_NOT_FOUND"
	KindAlreadyExists  Kind = "RESOURCE_ALREADY_EXISTS"
	KindBusinessLogic  Kind = "BUSINESS_LOGIC_ERROR"
	KindRateLimit      Kind = "RATE_LIMIT_ERROR"
	KindExternal       Kind = "EXTERNAL_SERVICE_ERROR"
	KindDatabase       Kind = "DATABASE_ERROR"
	KindApp            Kind = "APP_ERROR"
)

// Error is a classified application error. The wrapped cause stays internal;
// only Kind and Message reach the response boundary.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error kind to its response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindAuthentication:
		return fiber.StatusUnauthorized
	case KindValidation, KindBusinessLogic:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindAlreadyExists:
		return fiber.StatusConflict
	case KindRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func AlreadyExists(message string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: message}
}

func BusinessLogic(message string) *Error {
	return &Error{Kind: KindBusinessLogic, Message: message}
}

func RateLimit(message string) *Error {
	return &Error{Kind: KindRateLimit, Message: message}
}

func External(message string, err error) *Error {
	return &Error{Kind: KindExternal, Message: message, Err: err}
}

func Database(message string, err error) *Error {
	return &Error{Kind: KindDatabase, Message: message, Err: err}
}

// From classifies an arbitrary error. Already-classified errors pass through
// unchanged; everything else becomes an APP_ERROR with a generic message so
// internals never leak to clients.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindApp, Message: "Internal server error", Err: err}
}

// IsKind reports whether err is classified as the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
