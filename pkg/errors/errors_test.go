package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithInternalPreservesOriginal(t *testing.T) {
	cause := errors.New("disk on fire")
	wrapped := ErrInternalServer.WithInternal(cause)

	require.NotSame(t, ErrInternalServer, wrapped)
	require.ErrorIs(t, wrapped, cause)
	require.Contains(t, wrapped.Error(), "disk on fire")

	// The shared sentinel must stay untouched.
	require.Nil(t, ErrInternalServer.Internal)
}

func TestFromError(t *testing.T) {
	appErr := NewBadRequest("email is required")
	require.Same(t, appErr, FromError(appErr))

	generic := FromError(errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, generic.StatusCode)
	require.Equal(t, "INTERNAL_SERVER_ERROR", generic.Code)

	require.Nil(t, FromError(nil))
}

func TestNewRateLimited(t *testing.T) {
	err := NewRateLimited("resend cooldown active", 342)
	require.Equal(t, http.StatusTooManyRequests, err.StatusCode)
	require.Equal(t, 342, err.RetryAfter)

	clamped := NewRateLimited("cooldown", -5)
	require.Zero(t, clamped.RetryAfter)
}

func TestNewConflictStatus(t *testing.T) {
	err := NewConflict("ALREADY_APPLIED", "You have already applied for this job")
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
	require.Equal(t, "ALREADY_APPLIED", err.Code)
}
