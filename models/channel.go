package models

import (
	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
)

// ChannelKind reuses discordgo's channel type numbering, which mirrors the API's
type ChannelKind = discordgo.ChannelType

// Channel is a guild channel, thread, or DM.
// Parent is a lookup reference to the category (or, for threads, the parent channel);
// the guild owns both independently.
type Channel struct {
	ID            Snowflake
	GuildID       Snowflake
	Kind          ChannelKind
	Name          string
	ParentID      mo.Option[Snowflake]
	ParentName    string
	Position      int
	LastMessageID mo.Option[Snowflake]
}

func (c Channel) IsCategory() bool {
	return c.Kind == discordgo.ChannelTypeGuildCategory
}

func (c Channel) IsVoice() bool {
	return c.Kind == discordgo.ChannelTypeGuildVoice || c.Kind == discordgo.ChannelTypeGuildStageVoice
}

func (c Channel) IsThread() bool {
	switch c.Kind {
	case discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	}
	return false
}

func (c Channel) IsDirect() bool {
	return c.Kind == discordgo.ChannelTypeDM || c.Kind == discordgo.ChannelTypeGroupDM
}

// IsEmpty reports whether the channel has never had a message
func (c Channel) IsEmpty() bool {
	return c.LastMessageID.IsAbsent()
}

// MayHaveMessagesAfter reports whether a message newer than id can exist in the channel
func (c Channel) MayHaveMessagesAfter(id Snowflake) bool {
	last, ok := c.LastMessageID.Get()
	return ok && id < last
}

// MayHaveMessagesBefore reports whether a message older than id can exist in the channel.
// Nothing in a channel predates the channel itself.
func (c Channel) MayHaveMessagesBefore(id Snowflake) bool {
	return !c.IsEmpty() && id > c.ID
}

// HierarchicalName renders "Category / channel" for display
func (c Channel) HierarchicalName() string {
	if c.ParentName != "" {
		return c.ParentName + " / " + c.Name
	}
	return c.Name
}

// ChannelFromDTO converts a discordgo payload. parent may be nil.
func ChannelFromDTO(dto *discordgo.Channel, parent *Channel, position int) Channel {
	id, _ := parseOptionalSnowflake(dto.ID)
	guildID, _ := parseOptionalSnowflake(dto.GuildID)

	channel := Channel{
		ID:       id,
		GuildID:  guildID,
		Kind:     dto.Type,
		Name:     channelDisplayName(dto),
		Position: position,
	}

	if lastID, ok := parseOptionalSnowflake(dto.LastMessageID); ok {
		channel.LastMessageID = mo.Some(lastID)
	}

	if parent != nil {
		channel.ParentID = mo.Some(parent.ID)
		channel.ParentName = parent.Name
	} else if parentID, ok := parseOptionalSnowflake(dto.ParentID); ok {
		channel.ParentID = mo.Some(parentID)
	}

	return channel
}

func channelDisplayName(dto *discordgo.Channel) string {
	if dto.Name != "" {
		return dto.Name
	}
	// DMs have no name; fall back to the recipients
	name := ""
	for i, recipient := range dto.Recipients {
		if recipient == nil {
			continue
		}
		if i > 0 {
			name += ", "
		}
		if recipient.GlobalName != "" {
			name += recipient.GlobalName
		} else {
			name += recipient.Username
		}
	}
	if name == "" {
		return dto.ID
	}
	return name
}
