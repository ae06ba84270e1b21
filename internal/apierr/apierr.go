// Package apierr carries the error taxonomy exposed by the API. Every error
// has a stable machine-readable kind and a human message; internal causes are
// kept for logging and never sent to the client.
package apierr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind string

const (
	KindMissingToken       Kind = "missing_token"
	KindInvalidToken       Kind = "invalid_token"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInvalidSortField   Kind = "invalid_sort_field"
	KindInvalidSortOrder   Kind = "invalid_sort_order"
	KindInvalidPagination  Kind = "invalid_pagination"
	KindInvalidSchedule    Kind = "invalid_schedule"
	KindMissingField       Kind = "missing_required_field"
	KindValidation         Kind = "validation_error"
	KindBadRequest         Kind = "bad_request"
	KindNotFound           Kind = "not_found"
	KindStorageUnavailable Kind = "storage_unavailable"
	KindInternal           Kind = "internal_error"
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches errors by kind, so sentinel-style checks work across wrapped
// instances with different messages or causes.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

func MissingToken() *Error {
	return New(KindMissingToken, fiber.StatusUnauthorized, "No token provided")
}

func InvalidToken(cause error) *Error {
	return &Error{Kind: KindInvalidToken, Status: fiber.StatusUnauthorized, Message: "Invalid token", cause: cause}
}

func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, fiber.StatusUnauthorized, "Invalid credentials")
}

func InvalidSortField(field string) *Error {
	return New(KindInvalidSortField, fiber.StatusBadRequest, fmt.Sprintf("Invalid sort field: %s", field))
}

func InvalidSortOrder(order string) *Error {
	return New(KindInvalidSortOrder, fiber.StatusBadRequest, fmt.Sprintf("Invalid sort order: %s", order))
}

func InvalidPagination(message string) *Error {
	return New(KindInvalidPagination, fiber.StatusBadRequest, message)
}

func InvalidSchedule() *Error {
	return New(KindInvalidSchedule, fiber.StatusBadRequest, "Task date must be in the future")
}

func MissingField(field string) *Error {
	return New(KindMissingField, fiber.StatusBadRequest, fmt.Sprintf("Missing required field: %s", field))
}

func Validation(cause error) *Error {
	return &Error{Kind: KindValidation, Status: fiber.StatusBadRequest, Message: "Validation error", cause: cause}
}

func BadRequest(message string, cause error) *Error {
	return &Error{Kind: KindBadRequest, Status: fiber.StatusBadRequest, Message: message, cause: cause}
}

func NotFound(what string) *Error {
	return New(KindNotFound, fiber.StatusNotFound, fmt.Sprintf("%s not found", what))
}

func StorageUnavailable(cause error) *Error {
	return &Error{Kind: KindStorageUnavailable, Status: fiber.StatusServiceUnavailable, Message: "Storage temporarily unavailable", cause: cause}
}

// From normalizes any error into an *Error, defaulting to an internal 500.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Status: fiber.StatusInternalServerError, Message: "Internal server error", cause: err}
}

// Respond writes the error in the standard response envelope.
func Respond(c *fiber.Ctx, err error) error {
	e := From(err)
	return c.Status(e.Status).JSON(fiber.Map{
		"message": e.Message,
		"kind":    string(e.Kind),
		"success": false,
		"status":  e.Status,
	})
}
