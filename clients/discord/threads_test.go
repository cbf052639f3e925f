package discord

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emotify/clients"
	"emotify/models"
)

func textChannel(id, lastMessageID models.Snowflake) models.Channel {
	return models.Channel{
		ID:            id,
		GuildID:       1,
		Kind:          discordgo.ChannelTypeGuildText,
		Name:          "channel-" + id.String(),
		LastMessageID: mo.Some(lastMessageID),
	}
}

func threadPayload(id, parentID, lastMessageID models.Snowflake, archivedAt time.Time) map[string]any {
	payload := map[string]any{
		"id":              id.String(),
		"guild_id":        "1",
		"parent_id":       parentID.String(),
		"type":            int(discordgo.ChannelTypeGuildPublicThread),
		"name":            "thread-" + id.String(),
		"last_message_id": lastMessageID.String(),
	}
	if !archivedAt.IsZero() {
		payload["thread_metadata"] = map[string]any{
			"archived":          true,
			"archive_timestamp": archivedAt.Format(time.RFC3339Nano),
		}
	}
	return payload
}

func threadNames(threads []models.Channel) []string {
	var names []string
	for _, thread := range threads {
		names = append(names, thread.Name)
	}
	return names
}

func TestThreadCandidates(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := textChannel(models.SnowflakeFromTime(created), models.SnowflakeFromTime(created.Add(time.Hour)))
	young := textChannel(models.SnowflakeFromTime(created.Add(30*24*time.Hour)), models.SnowflakeFromTime(created.Add(31*24*time.Hour)))

	category := models.Channel{ID: 1, Kind: discordgo.ChannelTypeGuildCategory, LastMessageID: mo.Some(models.Snowflake(5))}
	voice := models.Channel{ID: 2, Kind: discordgo.ChannelTypeGuildVoice, LastMessageID: mo.Some(models.Snowflake(5))}
	empty := models.Channel{ID: 3, Kind: discordgo.ChannelTypeGuildText}
	direct := models.Channel{ID: 4, Kind: discordgo.ChannelTypeDM, LastMessageID: mo.Some(models.Snowflake(5))}

	channels := []models.Channel{category, voice, empty, direct, old, young}

	assert.Equal(t, []models.Channel{old, young}, threadCandidates(channels, clients.ThreadQuery{}))

	before := models.SnowflakeFromTime(created.Add(7 * 24 * time.Hour))
	assert.Equal(t, []models.Channel{old}, threadCandidates(channels, clients.ThreadQuery{Before: mo.Some(before)}))
}

func TestGetChannelThreads_BotToken(t *testing.T) {
	archivedAt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var archivedRequests atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /guilds/1/threads/active", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"threads": []map[string]any{
				threadPayload(100, 11, 101, time.Time{}),
				threadPayload(200, 99, 201, time.Time{}),
			},
			"has_more": false,
		})
	})
	mux.HandleFunc("GET /channels/11/threads/archived/public", func(w http.ResponseWriter, r *http.Request) {
		archivedRequests.Add(1)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		if r.URL.Query().Get("before") == "" {
			writeJSON(w, map[string]any{
				"threads": []map[string]any{
					threadPayload(300, 11, 301, archivedAt),
					threadPayload(310, 11, 311, archivedAt.Add(-time.Hour)),
				},
				"has_more": true,
			})
			return
		}

		cursor, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("before"))
		assert.NoError(t, err)
		assert.True(t, cursor.Equal(archivedAt.Add(-time.Hour)))
		writeJSON(w, map[string]any{
			"threads":  []map[string]any{threadPayload(320, 11, 321, archivedAt.Add(-2*time.Hour))},
			"has_more": false,
		})
	})
	mux.HandleFunc("GET /channels/11/threads/archived/private", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Missing Access", "code": 50001}`, http.StatusForbidden)
	})
	client, _ := newTestClient(t, mux, WithTokenKind(models.TokenKindBot))

	channels := []models.Channel{textChannel(11, 12)}

	active, err := client.GetChannelThreads(context.Background(), channels, clients.ThreadQuery{}).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"thread-100"}, threadNames(active))
	assert.Equal(t, "channel-11 / thread-100", active[0].HierarchicalName())
	assert.Zero(t, archivedRequests.Load())

	all, err := client.GetChannelThreads(context.Background(), channels, clients.ThreadQuery{IncludeArchived: true}).
		Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"thread-100", "thread-300", "thread-310", "thread-320"}, threadNames(all))
	assert.Equal(t, int32(2), archivedRequests.Load())
}

func TestGetChannelThreads_DirectMessagesWithBotToken(t *testing.T) {
	var requests atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, `{"message": "Unknown Guild"}`, http.StatusNotFound)
	}), WithTokenKind(models.TokenKindBot))

	dm := models.Channel{
		ID:            21,
		GuildID:       models.DirectMessages.ID,
		Kind:          discordgo.ChannelTypeDM,
		Name:          "friend",
		LastMessageID: mo.Some(models.Snowflake(22)),
	}

	threads, err := client.GetChannelThreads(context.Background(), []models.Channel{dm}, clients.ThreadQuery{IncludeArchived: true}).
		Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, threads)
	assert.Zero(t, requests.Load())
}

func TestGetChannelThreads_UserToken(t *testing.T) {
	// Search results are sorted by last message time, newest first
	lastMessages := []models.Snowflake{900, 800, 700, 600, 500}
	var searches atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("GET /channels/11/threads/search", func(w http.ResponseWriter, r *http.Request) {
		searches.Add(1)
		query := r.URL.Query()
		assert.Equal(t, "last_message_time", query.Get("sort_by"))
		assert.Equal(t, "desc", query.Get("sort_order"))
		if query.Get("archived") == "true" {
			writeJSON(w, map[string]any{"threads": []map[string]any{}, "has_more": false})
			return
		}

		offset, err := strconv.Atoi(query.Get("offset"))
		assert.NoError(t, err)

		var threads []map[string]any
		for i := offset; i < len(lastMessages) && len(threads) < 2; i++ {
			id := models.Snowflake(1000 + i)
			threads = append(threads, threadPayload(id, 11, lastMessages[i], time.Time{}))
		}
		writeJSON(w, map[string]any{"threads": threads, "has_more": offset+len(threads) < len(lastMessages)})
	})
	client, _ := newTestClient(t, mux, WithTokenKind(models.TokenKindUser))
	channels := []models.Channel{textChannel(11, 12)}

	all, err := client.GetChannelThreads(context.Background(), channels, clients.ThreadQuery{IncludeArchived: true}).
		Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"thread-1000", "thread-1001", "thread-1002", "thread-1003", "thread-1004"}, threadNames(all))
	assert.Equal(t, int32(4), searches.Load())

	searches.Store(0)
	recent, err := client.GetChannelThreads(context.Background(), channels, clients.ThreadQuery{After: mo.Some(models.Snowflake(650))}).
		Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"thread-1000", "thread-1001", "thread-1002"}, threadNames(recent))
	// The fourth thread ends the walk without a further request
	assert.Equal(t, int32(2), searches.Load())
}

func TestGetGuildThreads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /guilds/1/channels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			channelPayload("10", "", discordgo.ChannelTypeGuildCategory, "Text", 0),
			channelPayload("11", "10", discordgo.ChannelTypeGuildText, "general", 0),
		})
	})
	mux.HandleFunc("GET /guilds/1/threads/active", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"threads": []map[string]any{threadPayload(100, 11, 101, time.Time{})},
		})
	})
	client, _ := newTestClient(t, mux, WithTokenKind(models.TokenKindBot))

	threads, err := client.GetGuildThreads(context.Background(), 1, clients.ThreadQuery{}).Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.True(t, threads[0].IsThread())
	assert.Equal(t, "general / thread-100", threads[0].HierarchicalName())

	dm, err := client.GetGuildThreads(context.Background(), models.DirectMessages.ID, clients.ThreadQuery{}).
		Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dm)
}
