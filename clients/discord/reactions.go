package discord

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"emotify/clients"
	"emotify/models"
)

func reactionPath(channelID, messageID models.Snowflake, emoji models.Emoji) string {
	return "channels/" + channelID.String() + "/messages/" + messageID.String() +
		"/reactions/" + url.PathEscape(emoji.Encoded())
}

func (c *Client) AddReaction(ctx context.Context, channelID, messageID models.Snowflake, emoji models.Emoji) error {
	if err := c.request(ctx, http.MethodPut, reactionPath(channelID, messageID, emoji)+"/@me"); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

func (c *Client) RemoveReaction(ctx context.Context, channelID, messageID models.Snowflake, emoji models.Emoji) error {
	if err := c.request(ctx, http.MethodDelete, reactionPath(channelID, messageID, emoji)+"/@me"); err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	return nil
}

// GetMessageReactions yields the users that reacted with emoji, in ID order.
// A message or emoji that cannot be seen yields nothing.
func (c *Client) GetMessageReactions(
	ctx context.Context,
	channelID, messageID models.Snowflake,
	emoji models.Emoji,
) *clients.Iterator[models.User] {
	after := models.SnowflakeZero
	path := reactionPath(channelID, messageID, emoji)

	return clients.NewIterator(func(ctx context.Context) ([]models.User, bool, error) {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageLimit))
		params.Set("after", after.String())

		var dtos []*discordgo.User
		found, err := c.tryGetJSON(ctx, path, params, &dtos)
		if err != nil {
			return nil, false, fmt.Errorf("failed to get reactions of message %s: %w", messageID, err)
		}
		if !found {
			return nil, false, nil
		}

		users := make([]models.User, 0, len(dtos))
		for _, dto := range dtos {
			user := models.UserFromDTO(dto)
			users = append(users, user)
			after = user.ID
		}
		return users, len(users) > 0, nil
	})
}
