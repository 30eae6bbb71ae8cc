package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")

	var appErr *AppError
	require.ErrorAs(t, fmt.Errorf("saving mood: %w", err), &appErr)
	assert.Equal(t, ErrorTypeDatabase, appErr.Type)
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewValidationError("bad rating").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NewNotFoundError("no such medication").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, NewDatabaseError(errors.New("boom")).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, NewInternalError(errors.New("boom")).HTTPStatus())
}

func TestLogFieldsIncludeContext(t *testing.T) {
	err := NewExternalAPIError(errors.New("timeout"), "Gemini")

	fields := err.LogFields()
	assert.Contains(t, fields, "api")
	assert.Contains(t, fields, "Gemini")
	assert.Contains(t, fields, "internal_error")
}
