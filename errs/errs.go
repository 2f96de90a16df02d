package errs

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Business-rule error kinds. All of them are deterministic and returned
// synchronously to the caller; none are retried internally. Anything that is
// not one of these kinds is a store-level failure and surfaces as a generic
// internal error.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
	ErrStopsPending = errors.New("stops pending")
	ErrUnauthorized = errors.New("unauthorized")
)

// NotFound wraps ErrNotFound with the entity name and id.
func NotFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// InvalidTransition wraps ErrInvalidState for a rejected status change.
func InvalidTransition(entity, from, to string) error {
	return fmt.Errorf("%s cannot move from %q to %q: %w", entity, from, to, ErrInvalidState)
}

// InvalidState wraps ErrInvalidState for operations rejected by the current status.
func InvalidState(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

// InvalidInput wraps ErrInvalidInput with a caller-facing message.
func InvalidInput(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// HTTPStatus maps an error to the HTTP status code the controllers respond with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrStopsPending):
		return fiber.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}
