package discord

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"emotify/clients"
	"emotify/models"
)

// GetGuildThreads lists the threads of every channel in a guild
func (c *Client) GetGuildThreads(
	ctx context.Context,
	guildID models.Snowflake,
	query clients.ThreadQuery,
) *clients.Iterator[models.Channel] {
	if guildID == models.DirectMessages.ID {
		return clients.SliceIterator[models.Channel](nil)
	}

	return clients.NewIterator(deferredPages(func(ctx context.Context) ([]clients.PageFunc[models.Channel], error) {
		channels, err := c.GetGuildChannels(ctx, guildID)
		if err != nil {
			return nil, err
		}
		return c.threadPages(ctx, channels, query)
	}))
}

// GetChannelThreads lists the threads of the given channels.
// User tokens can only use the search endpoint; bot tokens can only use the active and
// archived listings, so the walk is planned once the token kind is known.
func (c *Client) GetChannelThreads(
	ctx context.Context,
	channels []models.Channel,
	query clients.ThreadQuery,
) *clients.Iterator[models.Channel] {
	return clients.NewIterator(deferredPages(func(ctx context.Context) ([]clients.PageFunc[models.Channel], error) {
		return c.threadPages(ctx, channels, query)
	}))
}

func (c *Client) threadPages(
	ctx context.Context,
	channels []models.Channel,
	query clients.ThreadQuery,
) ([]clients.PageFunc[models.Channel], error) {
	candidates := threadCandidates(channels, query)

	kind, err := c.ResolveTokenKind(ctx)
	if err != nil {
		return nil, err
	}

	var pages []clients.PageFunc[models.Channel]
	if kind == models.TokenKindUser {
		for _, channel := range candidates {
			pages = append(pages, c.searchThreadPages(channel, false, query))
			if query.IncludeArchived {
				pages = append(pages, c.searchThreadPages(channel, true, query))
			}
		}
		return pages, nil
	}

	var guildIDs []models.Snowflake
	for _, channel := range candidates {
		if !slices.Contains(guildIDs, channel.GuildID) {
			guildIDs = append(guildIDs, channel.GuildID)
		}
	}
	for _, guildID := range guildIDs {
		pages = append(pages, c.activeThreadPage(guildID, candidates))
	}
	if query.IncludeArchived {
		for _, channel := range candidates {
			pages = append(pages,
				c.archivedThreadPages(channel, "public", query),
				c.archivedThreadPages(channel, "private", query),
			)
		}
	}
	return pages, nil
}

// threadCandidates drops channels that cannot have threads in range. Direct message
// channels never have threads.
// Only the before boundary prefilters: a thread can have messages after it even if its
// parent channel has none.
func threadCandidates(channels []models.Channel, query clients.ThreadQuery) []models.Channel {
	var candidates []models.Channel
	for _, channel := range channels {
		if channel.IsDirect() || channel.IsCategory() || channel.IsVoice() || channel.IsEmpty() {
			continue
		}
		if before, ok := query.Before.Get(); ok && !channel.MayHaveMessagesBefore(before) {
			continue
		}
		candidates = append(candidates, channel)
	}
	return candidates
}

// searchThreadPages walks channels/{id}/threads/search, sorted by last message time
// descending with an integer offset cursor
func (c *Client) searchThreadPages(
	channel models.Channel,
	archived bool,
	query clients.ThreadQuery,
) clients.PageFunc[models.Channel] {
	offset := 0
	path := "channels/" + channel.ID.String() + "/threads/search"

	return func(ctx context.Context) ([]models.Channel, bool, error) {
		params := url.Values{}
		params.Set("sort_by", "last_message_time")
		params.Set("sort_order", "desc")
		params.Set("archived", strconv.FormatBool(archived))
		params.Set("offset", strconv.Itoa(offset))

		var list discordgo.ThreadsList
		found, err := c.tryGetJSON(ctx, path, params, &list)
		if err != nil {
			return nil, false, fmt.Errorf("failed to search threads of channel %s: %w", channel.ID, err)
		}
		if !found {
			return nil, false, nil
		}

		threads := make([]models.Channel, 0, len(list.Threads))
		for _, dto := range list.Threads {
			thread := models.ChannelFromDTO(dto, &channel, 0)
			// Sorted by last message time, so nothing further can be in range either
			if after, ok := query.After.Get(); ok && !thread.MayHaveMessagesAfter(after) {
				return threads, false, nil
			}
			threads = append(threads, thread)
			offset++
		}

		return threads, list.HasMore && len(list.Threads) > 0, nil
	}
}

func (c *Client) activeThreadPage(guildID models.Snowflake, candidates []models.Channel) clients.PageFunc[models.Channel] {
	parentsByID := make(map[string]models.Channel, len(candidates))
	for _, channel := range candidates {
		parentsByID[channel.ID.String()] = channel
	}

	return func(ctx context.Context) ([]models.Channel, bool, error) {
		var list discordgo.ThreadsList
		if err := c.getJSON(ctx, "guilds/"+guildID.String()+"/threads/active", nil, &list); err != nil {
			return nil, false, fmt.Errorf("failed to get active threads of guild %s: %w", guildID, err)
		}

		var threads []models.Channel
		for _, dto := range list.Threads {
			parent, ok := parentsByID[dto.ParentID]
			if !ok {
				continue
			}
			threads = append(threads, models.ChannelFromDTO(dto, &parent, 0))
		}
		return threads, false, nil
	}
}

// archivedThreadPages walks channels/{id}/threads/archived/{visibility}. The listing is ordered
// by archive time, so its cursor is an ISO8601 timestamp rather than a snowflake.
func (c *Client) archivedThreadPages(
	channel models.Channel,
	visibility string,
	query clients.ThreadQuery,
) clients.PageFunc[models.Channel] {
	cursor := ""
	if before, ok := query.Before.Get(); ok {
		cursor = before.Time().Format(time.RFC3339Nano)
	}
	path := "channels/" + channel.ID.String() + "/threads/archived/" + visibility

	return func(ctx context.Context) ([]models.Channel, bool, error) {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageLimit))
		if cursor != "" {
			params.Set("before", cursor)
		}

		var list discordgo.ThreadsList
		found, err := c.tryGetJSON(ctx, path, params, &list)
		if err != nil {
			return nil, false, fmt.Errorf("failed to get archived %s threads of channel %s: %w", visibility, channel.ID, err)
		}
		if !found {
			return nil, false, nil
		}

		threads := make([]models.Channel, 0, len(list.Threads))
		for _, dto := range list.Threads {
			threads = append(threads, models.ChannelFromDTO(dto, &channel, 0))
			if dto.ThreadMetadata == nil {
				return threads, false, nil
			}
			cursor = dto.ThreadMetadata.ArchiveTimestamp.Format(time.RFC3339Nano)
		}

		return threads, list.HasMore && len(list.Threads) > 0, nil
	}
}

// deferredPages runs plan on the first pull and then walks the planned pages in order
func deferredPages[T any](plan func(ctx context.Context) ([]clients.PageFunc[T], error)) clients.PageFunc[T] {
	var pages []clients.PageFunc[T]
	planned := false

	return func(ctx context.Context) ([]T, bool, error) {
		if !planned {
			var err error
			if pages, err = plan(ctx); err != nil {
				return nil, false, err
			}
			planned = true
		}

		for len(pages) > 0 {
			page, more, err := pages[0](ctx)
			if err != nil {
				return nil, false, err
			}
			if !more {
				pages = pages[1:]
			}
			if len(page) > 0 {
				return page, len(pages) > 0, nil
			}
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
		}
		return nil, false, nil
	}
}
