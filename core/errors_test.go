package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestError_Classification(t *testing.T) {
	tests := []struct {
		name      string
		sentinel  error
		fatal     bool
		notFound  bool
		forbidden bool
	}{
		{name: "auth", sentinel: ErrAuth, fatal: true},
		{name: "not found", sentinel: ErrNotFound, notFound: true},
		{name: "forbidden", sentinel: ErrForbidden, forbidden: true},
		{name: "server", sentinel: ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("failed to add reaction: %w", &RequestError{
				Method: "PUT",
				Path:   "channels/1/messages/2/reactions/x/@me",
				Err:    tt.sentinel,
			})

			assert.Equal(t, tt.fatal, IsFatal(err))
			assert.Equal(t, tt.notFound, IsNotFoundError(err))
			assert.Equal(t, tt.forbidden, IsForbiddenError(err))
			assert.Equal(t, tt.notFound || tt.forbidden, IsAbsent(err))

			reqErr, ok := AsRequestError(err)
			require.True(t, ok)
			assert.Equal(t, "PUT", reqErr.Method)
		})
	}
}

func TestRequestError_ServerErrorIncludesBody(t *testing.T) {
	err := &RequestError{Method: "GET", Path: "guilds/1", StatusCode: 502, Body: "bad gateway", Err: ErrServer}

	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "bad gateway")
	assert.False(t, IsFatal(err))
}

func TestPermissionError_IsFatal(t *testing.T) {
	err := fmt.Errorf("walk aborted: %w", &PermissionError{Reason: "intent disabled"})

	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, ErrPermission)
	assert.Equal(t, "walk aborted: intent disabled", err.Error())
}

func TestIsCancellation(t *testing.T) {
	assert.True(t, IsCancellation(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.True(t, IsCancellation(context.DeadlineExceeded))
	assert.False(t, IsCancellation(ErrServer))
}
