package clients

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"emotify/models"
)

// MockDiscordClient is a mock implementation of the DiscordClient interface
type MockDiscordClient struct {
	mock.Mock
}

func (m *MockDiscordClient) ResolveTokenKind(ctx context.Context) (models.TokenKind, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.TokenKind), args.Error(1)
}

func (m *MockDiscordClient) GetCurrentUser(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDiscordClient) TryGetUser(ctx context.Context, userID models.Snowflake) (mo.Option[models.User], error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(mo.Option[models.User]), args.Error(1)
}

func (m *MockDiscordClient) GetApplication(ctx context.Context) (*models.Application, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Application), args.Error(1)
}

func (m *MockDiscordClient) GetUserGuilds(ctx context.Context) *Iterator[models.Guild] {
	args := m.Called(ctx)
	return args.Get(0).(*Iterator[models.Guild])
}

func (m *MockDiscordClient) GetGuild(ctx context.Context, guildID models.Snowflake) (*models.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockDiscordClient) GetGuildChannels(ctx context.Context, guildID models.Snowflake) ([]models.Channel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Channel), args.Error(1)
}

func (m *MockDiscordClient) GetGuildRoles(ctx context.Context, guildID models.Snowflake) *Iterator[models.Role] {
	args := m.Called(ctx, guildID)
	return args.Get(0).(*Iterator[models.Role])
}

func (m *MockDiscordClient) TryGetGuildMember(
	ctx context.Context,
	guildID, memberID models.Snowflake,
) (mo.Option[models.Member], error) {
	args := m.Called(ctx, guildID, memberID)
	return args.Get(0).(mo.Option[models.Member]), args.Error(1)
}

func (m *MockDiscordClient) GetChannel(ctx context.Context, channelID models.Snowflake) (*models.Channel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockDiscordClient) GetDirectMessageChannels(ctx context.Context) ([]models.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Channel), args.Error(1)
}

func (m *MockDiscordClient) GetGuildThreads(
	ctx context.Context,
	guildID models.Snowflake,
	query ThreadQuery,
) *Iterator[models.Channel] {
	args := m.Called(ctx, guildID, query)
	return args.Get(0).(*Iterator[models.Channel])
}

func (m *MockDiscordClient) GetChannelThreads(
	ctx context.Context,
	channels []models.Channel,
	query ThreadQuery,
) *Iterator[models.Channel] {
	args := m.Called(ctx, channels, query)
	return args.Get(0).(*Iterator[models.Channel])
}

func (m *MockDiscordClient) GetMessages(
	ctx context.Context,
	channelID models.Snowflake,
	query models.MessageQuery,
) *Iterator[models.Message] {
	args := m.Called(ctx, channelID, query)
	return args.Get(0).(*Iterator[models.Message])
}

func (m *MockDiscordClient) AddReaction(
	ctx context.Context,
	channelID, messageID models.Snowflake,
	emoji models.Emoji,
) error {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Error(0)
}

func (m *MockDiscordClient) RemoveReaction(
	ctx context.Context,
	channelID, messageID models.Snowflake,
	emoji models.Emoji,
) error {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Error(0)
}

func (m *MockDiscordClient) GetMessageReactions(
	ctx context.Context,
	channelID, messageID models.Snowflake,
	emoji models.Emoji,
) *Iterator[models.User] {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Get(0).(*Iterator[models.User])
}
