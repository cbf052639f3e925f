package discord

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotify/core"
	"emotify/models"
)

type recordedRequest struct {
	method string
	path   string
}

func recordingHandler(status int) (http.Handler, func() []recordedRequest) {
	var mu sync.Mutex
	var requests []recordedRequest

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.EscapedPath()})
		mu.Unlock()
		w.WriteHeader(status)
	})
	return handler, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func TestAddReaction_EncodesEmoji(t *testing.T) {
	tests := []struct {
		name     string
		emoji    models.Emoji
		expected string
	}{
		{
			name:     "standard",
			emoji:    models.NewStandardEmoji("🙂"),
			expected: "/channels/1/messages/2/reactions/%F0%9F%99%82/@me",
		},
		{
			name:     "custom",
			emoji:    models.NewCustomEmoji(123456789012345678, "foo"),
			expected: "/channels/1/messages/2/reactions/foo:123456789012345678/@me",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, requests := recordingHandler(http.StatusNoContent)
			client, _ := newTestClient(t, handler, WithTokenKind(models.TokenKindBot))

			require.NoError(t, client.AddReaction(context.Background(), 1, 2, tt.emoji))
			assert.Equal(t, []recordedRequest{{method: http.MethodPut, path: tt.expected}}, requests())
		})
	}
}

func TestRemoveReaction(t *testing.T) {
	handler, requests := recordingHandler(http.StatusNoContent)
	client, _ := newTestClient(t, handler, WithTokenKind(models.TokenKindUser))

	require.NoError(t, client.RemoveReaction(context.Background(), 1, 2, models.NewStandardEmoji("👍")))
	require.Len(t, requests(), 1)
	assert.Equal(t, http.MethodDelete, requests()[0].method)
}

func TestReaction_Errors(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{status: http.StatusNotFound, sentinel: core.ErrNotFound},
		{status: http.StatusForbidden, sentinel: core.ErrForbidden},
		{status: http.StatusUnauthorized, sentinel: core.ErrAuth},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			handler, _ := recordingHandler(tt.status)
			client, _ := newTestClient(t, handler, WithTokenKind(models.TokenKindBot))
			emoji := models.NewStandardEmoji("👍")

			err := client.RemoveReaction(context.Background(), 1, 2, emoji)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), "failed to remove reaction")

			err = client.AddReaction(context.Background(), 1, 2, emoji)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), "failed to add reaction")
		})
	}
}

func TestGetMessageReactions(t *testing.T) {
	const voters = 150

	mux := http.NewServeMux()
	mux.HandleFunc("GET /channels/1/messages/2/reactions/{emoji}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "👍", r.PathValue("emoji"))
		after, err := strconv.Atoi(r.URL.Query().Get("after"))
		assert.NoError(t, err)

		var users []map[string]any
		for id := after + 1; id <= voters && len(users) < 100; id++ {
			users = append(users, map[string]any{"id": strconv.Itoa(id), "username": "user" + strconv.Itoa(id)})
		}
		writeJSON(w, users)
	})
	mux.HandleFunc("GET /channels/1/messages/3/reactions/{emoji}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Unknown Message", "code": 10008}`, http.StatusNotFound)
	})
	client, _ := newTestClient(t, mux, WithTokenKind(models.TokenKindBot))
	emoji := models.NewStandardEmoji("👍")

	users, err := client.GetMessageReactions(context.Background(), 1, 2, emoji).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, users, voters)
	assert.Equal(t, models.Snowflake(voters), users[voters-1].ID)

	users, err = client.GetMessageReactions(context.Background(), 1, 3, emoji).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}
