package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	t.Run("passes through wrapped domain errors", func(t *testing.T) {
		base := NewConflict("DUPLICATE_SIGNUP", "already there")
		got := ToDomainError(fmt.Errorf("wrap: %w", base))
		assert.Equal(t, "DUPLICATE_SIGNUP", got.Code)
		assert.Equal(t, http.StatusConflict, got.HTTPStatus)
	})

	t.Run("maps fiber errors by status", func(t *testing.T) {
		got := ToDomainError(fiber.NewError(http.StatusNotFound, "Cannot GET /nope"))
		assert.Equal(t, "NOT_FOUND", got.Code)
		assert.Equal(t, "Cannot GET /nope", got.Message)
	})

	t.Run("hides unknown errors behind a generic 500", func(t *testing.T) {
		cause := errors.New("connection reset")
		got := ToDomainError(cause)
		assert.Equal(t, "INTERNAL_ERROR", got.Code)
		assert.Equal(t, "internal server error", got.Message)
		assert.ErrorIs(t, got, cause)
	})
}

func TestServiceUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewServiceUnavailable("COUNT_UNAVAILABLE", "count unavailable", cause)
	de := ToDomainError(err)
	assert.Equal(t, http.StatusServiceUnavailable, de.HTTPStatus)
	assert.Contains(t, de.Error(), "dial tcp")
}
