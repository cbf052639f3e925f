package discord

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"emotify/clients"
	"emotify/core"
	"emotify/core/log"
	"emotify/models"
)

// GetMessages walks a channel's messages between the exclusive query boundaries in the
// requested order. The newest message in range is snapshotted before the first page so the
// walk is finite and reports progress.
func (c *Client) GetMessages(
	ctx context.Context,
	channelID models.Snowflake,
	query models.MessageQuery,
) *clients.Iterator[models.Message] {
	walk := &messageWalk{client: c, channelID: channelID, query: query}
	return clients.NewIterator(walk.nextPage).WithProgress(walk.progress)
}

type messageWalk struct {
	client    *Client
	channelID models.Snowflake
	query     models.MessageQuery

	started  bool
	last     models.Message
	first    mo.Option[models.Message]
	cursor   models.Snowflake
	finished bool

	intentChecked bool
}

// tryGetLastMessage fetches the newest message before the boundary, if any
func (c *Client) tryGetLastMessage(
	ctx context.Context,
	channelID models.Snowflake,
	before mo.Option[models.Snowflake],
) (mo.Option[models.Message], error) {
	params := url.Values{}
	params.Set("limit", "1")
	if id, ok := before.Get(); ok {
		params.Set("before", id.String())
	}

	var dtos []*discordgo.Message
	if err := c.getJSON(ctx, "channels/"+channelID.String()+"/messages", params, &dtos); err != nil {
		return mo.None[models.Message](), fmt.Errorf("failed to get last message of channel %s: %w", channelID, err)
	}
	if len(dtos) == 0 {
		return mo.None[models.Message](), nil
	}
	return mo.Some(models.MessageFromDTO(dtos[0])), nil
}

func (w *messageWalk) start(ctx context.Context) (bool, error) {
	w.started = true

	last, err := w.client.tryGetLastMessage(ctx, w.channelID, w.query.Before)
	if err != nil {
		return false, err
	}
	snapshot, ok := last.Get()
	if !ok {
		return false, nil
	}
	if after, ok := w.query.After.Get(); ok && snapshot.ID <= after {
		return false, nil
	}
	w.last = snapshot

	if w.query.Order == models.OrderDescending {
		// Include the snapshot itself; anything newer arrived after the walk started
		w.cursor = w.last.ID + 1
	} else {
		w.cursor = w.query.After.OrElse(models.SnowflakeZero)
	}
	return true, nil
}

func (w *messageWalk) nextPage(ctx context.Context) ([]models.Message, bool, error) {
	if !w.started {
		hasMessages, err := w.start(ctx)
		if err != nil {
			return nil, false, err
		}
		if !hasMessages {
			return nil, false, nil
		}
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageLimit))
	if w.query.Order == models.OrderDescending {
		params.Set("before", w.cursor.String())
	} else {
		params.Set("after", w.cursor.String())
	}

	var dtos []*discordgo.Message
	path := "channels/" + w.channelID.String() + "/messages"
	if err := w.client.getJSON(ctx, path, params, &dtos); err != nil {
		return nil, false, fmt.Errorf("failed to get messages of channel %s: %w", w.channelID, err)
	}
	if len(dtos) == 0 {
		return nil, false, nil
	}

	messages := make([]models.Message, 0, len(dtos))
	for _, dto := range dtos {
		messages = append(messages, models.MessageFromDTO(dto))
	}

	if err := w.checkContentIntent(ctx, messages); err != nil {
		return nil, false, err
	}

	if w.query.Order == models.OrderDescending {
		return w.descendingPage(messages)
	}
	return w.ascendingPage(messages)
}

// ascendingPage receives messages newest-first and yields them oldest-first
func (w *messageWalk) ascendingPage(messages []models.Message) ([]models.Message, bool, error) {
	slices.Reverse(messages)

	page := make([]models.Message, 0, len(messages))
	for _, message := range messages {
		if message.ID > w.last.ID {
			return page, false, nil
		}
		page = append(page, message)
		w.cursor = message.ID
	}
	return page, true, nil
}

func (w *messageWalk) descendingPage(messages []models.Message) ([]models.Message, bool, error) {
	after, bounded := w.query.After.Get()

	page := make([]models.Message, 0, len(messages))
	for _, message := range messages {
		if bounded && message.ID <= after {
			return page, false, nil
		}
		page = append(page, message)
		w.cursor = message.ID
	}
	return page, true, nil
}

// checkContentIntent fails the walk when a bot without the message content intent receives
// content-free messages, which would otherwise silently match no content filter
func (w *messageWalk) checkContentIntent(ctx context.Context, messages []models.Message) error {
	if w.intentChecked {
		return nil
	}
	for _, message := range messages {
		if !message.IsEmpty() {
			return nil
		}
	}
	w.intentChecked = true

	kind, err := w.client.ResolveTokenKind(ctx)
	if err != nil {
		return err
	}
	if kind != models.TokenKindBot {
		return nil
	}

	application, err := w.client.GetApplication(ctx)
	if err != nil {
		return err
	}
	if !application.IsMessageContentIntentEnabled() {
		log.Warn("❌ Bot is missing the message content intent", "application", application.Name)
		return &core.PermissionError{
			Reason: "provided bot account does not have the message content intent enabled; " +
				"enable it in the developer portal under Bot > Privileged Gateway Intents",
		}
	}
	return nil
}

func (w *messageWalk) progress(message models.Message) float64 {
	if w.query.Order == models.OrderDescending {
		lower := w.channelID.Time()
		if after, ok := w.query.After.Get(); ok {
			lower = after.Time()
		}
		return fraction(w.last.Timestamp.Sub(message.Timestamp), w.last.Timestamp.Sub(lower))
	}

	if w.first.IsAbsent() {
		w.first = mo.Some(message)
	}
	first := w.first.MustGet()
	return fraction(message.Timestamp.Sub(first.Timestamp), w.last.Timestamp.Sub(first.Timestamp))
}

func fraction(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	return float64(elapsed) / float64(total)
}
