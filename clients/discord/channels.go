package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"emotify/core"
	"emotify/core/log"
	"emotify/models"
)

// GetChannel fetches a channel and looks up its parent. A parent the account cannot access
// is not an error: the channel is returned without it.
func (c *Client) GetChannel(ctx context.Context, channelID models.Snowflake) (*models.Channel, error) {
	var dto discordgo.Channel
	if err := c.getJSON(ctx, "channels/"+channelID.String(), nil, &dto); err != nil {
		return nil, fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}

	var parent *models.Channel
	if parentID, ok := parseID(dto.ParentID); ok {
		p, err := c.GetChannel(ctx, parentID)
		switch {
		case err == nil:
			parent = p
		case core.IsFatal(err) || core.IsCancellation(err):
			return nil, err
		default:
			log.Debug("📋 Parent channel not accessible", "channel", channelID, "parent", parentID, "error", err)
		}
	}

	channel := models.ChannelFromDTO(&dto, parent, dto.Position)
	return &channel, nil
}

func (c *Client) GetDirectMessageChannels(ctx context.Context) ([]models.Channel, error) {
	var dtos []*discordgo.Channel
	if err := c.getJSON(ctx, "users/@me/channels", nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to get direct message channels: %w", err)
	}

	channels := make([]models.Channel, 0, len(dtos))
	for i, dto := range dtos {
		channels = append(channels, models.ChannelFromDTO(dto, nil, i))
	}
	return channels, nil
}

func parseID(raw string) (models.Snowflake, bool) {
	if raw == "" {
		return models.SnowflakeZero, false
	}
	id, err := models.ParseSnowflake(raw)
	if err != nil {
		return models.SnowflakeZero, false
	}
	return id, true
}
