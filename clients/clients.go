package clients

import (
	"context"

	"github.com/samber/mo"

	"emotify/models"
)

// DiscordClient defines the Discord REST operations the use cases depend on
type DiscordClient interface {
	// Identity
	ResolveTokenKind(ctx context.Context) (models.TokenKind, error)
	GetCurrentUser(ctx context.Context) (*models.User, error)
	TryGetUser(ctx context.Context, userID models.Snowflake) (mo.Option[models.User], error)
	GetApplication(ctx context.Context) (*models.Application, error)

	// Guilds
	GetUserGuilds(ctx context.Context) *Iterator[models.Guild]
	GetGuild(ctx context.Context, guildID models.Snowflake) (*models.Guild, error)
	GetGuildChannels(ctx context.Context, guildID models.Snowflake) ([]models.Channel, error)
	GetGuildRoles(ctx context.Context, guildID models.Snowflake) *Iterator[models.Role]
	TryGetGuildMember(ctx context.Context, guildID, memberID models.Snowflake) (mo.Option[models.Member], error)

	// Channels
	GetChannel(ctx context.Context, channelID models.Snowflake) (*models.Channel, error)
	GetDirectMessageChannels(ctx context.Context) ([]models.Channel, error)
	GetGuildThreads(ctx context.Context, guildID models.Snowflake, query ThreadQuery) *Iterator[models.Channel]
	GetChannelThreads(ctx context.Context, channels []models.Channel, query ThreadQuery) *Iterator[models.Channel]

	// Messages
	GetMessages(ctx context.Context, channelID models.Snowflake, query models.MessageQuery) *Iterator[models.Message]

	// Reactions
	AddReaction(ctx context.Context, channelID, messageID models.Snowflake, emoji models.Emoji) error
	RemoveReaction(ctx context.Context, channelID, messageID models.Snowflake, emoji models.Emoji) error
	GetMessageReactions(ctx context.Context, channelID, messageID models.Snowflake, emoji models.Emoji) *Iterator[models.User]
}

// ThreadQuery selects which threads of a set of channels are listed
type ThreadQuery struct {
	IncludeArchived bool
	After           mo.Option[models.Snowflake]
	Before          mo.Option[models.Snowflake]
}
