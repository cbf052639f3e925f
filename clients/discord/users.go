package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"emotify/models"
)

func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var dto discordgo.User
	if err := c.getJSON(ctx, "users/@me", nil, &dto); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	user := models.UserFromDTO(&dto)
	return &user, nil
}

func (c *Client) TryGetUser(ctx context.Context, userID models.Snowflake) (mo.Option[models.User], error) {
	var dto discordgo.User
	found, err := c.tryGetJSON(ctx, "users/"+userID.String(), nil, &dto)
	if err != nil {
		return mo.None[models.User](), fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if !found {
		return mo.None[models.User](), nil
	}
	return mo.Some(models.UserFromDTO(&dto)), nil
}

// applicationPayload holds the fields of applications/@me we read
type applicationPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Flags int    `json:"flags"`
}

func (c *Client) GetApplication(ctx context.Context) (*models.Application, error) {
	var payload applicationPayload
	if err := c.getJSON(ctx, "applications/@me", nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	id, err := models.ParseSnowflake(payload.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse application id: %w", err)
	}
	return &models.Application{ID: id, Name: payload.Name, Flags: payload.Flags}, nil
}
