package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("order", 7), fiber.StatusNotFound},
		{"invalid transition", InvalidTransition("order", "completed", "pending"), fiber.StatusConflict},
		{"invalid state", InvalidState("route %s is draft", "WR-20250701-001"), fiber.StatusConflict},
		{"invalid input", InvalidInput("position %d is taken", 3), fiber.StatusBadRequest},
		{"stops pending", fmt.Errorf("2 open stops: %w", ErrStopsPending), fiber.StatusConflict},
		{"unauthorized", ErrUnauthorized, fiber.StatusForbidden},
		{"unknown error", errors.New("disk on fire"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrappedErrorsMatchSentinels(t *testing.T) {
	if !errors.Is(NotFound("stop", 1), ErrNotFound) {
		t.Error("NotFound must wrap ErrNotFound")
	}
	if !errors.Is(InvalidTransition("route", "draft", "completed"), ErrInvalidState) {
		t.Error("InvalidTransition must wrap ErrInvalidState")
	}
	if !errors.Is(InvalidInput("bad"), ErrInvalidInput) {
		t.Error("InvalidInput must wrap ErrInvalidInput")
	}
}
