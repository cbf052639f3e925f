package discord

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"emotify/clients"
	"emotify/models"
)

const pageLimit = 100

// GetUserGuilds yields the DM pseudo-guild followed by every guild the account is in
func (c *Client) GetUserGuilds(ctx context.Context) *clients.Iterator[models.Guild] {
	after := models.SnowflakeZero

	guildPages := func(ctx context.Context) ([]models.Guild, bool, error) {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageLimit))
		query.Set("after", after.String())

		var dtos []*discordgo.UserGuild
		if err := c.getJSON(ctx, "users/@me/guilds", query, &dtos); err != nil {
			return nil, false, fmt.Errorf("failed to list guilds: %w", err)
		}

		guilds := make([]models.Guild, 0, len(dtos))
		for _, dto := range dtos {
			guild := models.GuildFromDTO(dto.ID, dto.Name)
			guilds = append(guilds, guild)
			after = guild.ID
		}
		return guilds, len(guilds) > 0, nil
	}

	return clients.NewIterator(
		func(context.Context) ([]models.Guild, bool, error) {
			return []models.Guild{models.DirectMessages}, false, nil
		},
		guildPages,
	)
}

func (c *Client) GetGuild(ctx context.Context, guildID models.Snowflake) (*models.Guild, error) {
	if guildID == models.DirectMessages.ID {
		guild := models.DirectMessages
		return &guild, nil
	}

	var dto discordgo.Guild
	if err := c.getJSON(ctx, "guilds/"+guildID.String(), nil, &dto); err != nil {
		return nil, fmt.Errorf("failed to get guild %s: %w", guildID, err)
	}
	guild := models.GuildFromDTO(dto.ID, dto.Name)
	return &guild, nil
}

// GetGuildChannels lists a guild's channels in display order: uncategorized channels first,
// then each category followed by its children. Positions are renumbered from 0.
func (c *Client) GetGuildChannels(ctx context.Context, guildID models.Snowflake) ([]models.Channel, error) {
	if guildID == models.DirectMessages.ID {
		return c.GetDirectMessageChannels(ctx)
	}

	var dtos []*discordgo.Channel
	if err := c.getJSON(ctx, "guilds/"+guildID.String()+"/channels", nil, &dtos); err != nil {
		return nil, fmt.Errorf("failed to get channels of guild %s: %w", guildID, err)
	}

	return normalizeGuildChannels(dtos), nil
}

func normalizeGuildChannels(dtos []*discordgo.Channel) []models.Channel {
	sorted := slices.Clone(dtos)
	slices.SortStableFunc(sorted, func(a, b *discordgo.Channel) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(snowflakeOf(a.ID), snowflakeOf(b.ID))
	})

	categoryIDs := make(map[string]bool)
	for _, dto := range sorted {
		if dto.Type == discordgo.ChannelTypeGuildCategory {
			categoryIDs[dto.ID] = true
		}
	}

	var uncategorized []*discordgo.Channel
	children := make(map[string][]*discordgo.Channel)
	for _, dto := range sorted {
		if dto.Type == discordgo.ChannelTypeGuildCategory {
			continue
		}
		if categoryIDs[dto.ParentID] {
			children[dto.ParentID] = append(children[dto.ParentID], dto)
		} else {
			uncategorized = append(uncategorized, dto)
		}
	}

	channels := make([]models.Channel, 0, len(sorted))
	for _, dto := range uncategorized {
		channels = append(channels, models.ChannelFromDTO(dto, nil, len(channels)))
	}
	for _, dto := range sorted {
		if dto.Type != discordgo.ChannelTypeGuildCategory {
			continue
		}
		category := models.ChannelFromDTO(dto, nil, len(channels))
		channels = append(channels, category)
		for _, child := range children[dto.ID] {
			channels = append(channels, models.ChannelFromDTO(child, &category, len(channels)))
		}
	}

	return channels
}

// GetGuildRoles lists roles. The endpoint is not paginated, so the walk is a single page.
func (c *Client) GetGuildRoles(ctx context.Context, guildID models.Snowflake) *clients.Iterator[models.Role] {
	if guildID == models.DirectMessages.ID {
		return clients.SliceIterator[models.Role](nil)
	}

	return clients.NewIterator(func(ctx context.Context) ([]models.Role, bool, error) {
		var dtos []*discordgo.Role
		if err := c.getJSON(ctx, "guilds/"+guildID.String()+"/roles", nil, &dtos); err != nil {
			return nil, false, fmt.Errorf("failed to get roles of guild %s: %w", guildID, err)
		}

		roles := make([]models.Role, 0, len(dtos))
		for _, dto := range dtos {
			roles = append(roles, models.RoleFromDTO(dto))
		}
		return roles, false, nil
	})
}

func (c *Client) TryGetGuildMember(
	ctx context.Context,
	guildID, memberID models.Snowflake,
) (mo.Option[models.Member], error) {
	if guildID == models.DirectMessages.ID {
		return mo.None[models.Member](), nil
	}

	var dto discordgo.Member
	found, err := c.tryGetJSON(ctx, "guilds/"+guildID.String()+"/members/"+memberID.String(), nil, &dto)
	if err != nil {
		return mo.None[models.Member](), fmt.Errorf("failed to get member %s of guild %s: %w", memberID, guildID, err)
	}
	if !found {
		return mo.None[models.Member](), nil
	}
	return mo.Some(models.MemberFromDTO(&dto, guildID)), nil
}

func snowflakeOf(id string) models.Snowflake {
	parsed, err := models.ParseSnowflake(id)
	if err != nil {
		return models.SnowflakeZero
	}
	return parsed
}
