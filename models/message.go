package models

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Message carries only what filtering and pagination need
type Message struct {
	ID             Snowflake
	ChannelID      Snowflake
	Timestamp      time.Time
	Content        string
	AuthorID       Snowflake
	AuthorName     string
	AuthorIsBot    bool
	Pinned         bool
	AttachmentURLs []string
	EmbedCount     int
	StickerCount   int
}

// IsEmpty reports whether the message came back without any content.
// For bots lacking the message content intent every message looks like this.
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == "" &&
		len(m.AttachmentURLs) == 0 &&
		m.EmbedCount == 0 &&
		m.StickerCount == 0
}

func MessageFromDTO(dto *discordgo.Message) Message {
	id, _ := parseOptionalSnowflake(dto.ID)
	channelID, _ := parseOptionalSnowflake(dto.ChannelID)

	message := Message{
		ID:           id,
		ChannelID:    channelID,
		Timestamp:    dto.Timestamp,
		Content:      dto.Content,
		Pinned:       dto.Pinned,
		EmbedCount:   len(dto.Embeds),
		StickerCount: len(dto.StickerItems),
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = id.Time()
	}

	if dto.Author != nil {
		message.AuthorID, _ = parseOptionalSnowflake(dto.Author.ID)
		message.AuthorName = dto.Author.Username
		message.AuthorIsBot = dto.Author.Bot
	}

	for _, attachment := range dto.Attachments {
		if attachment != nil {
			message.AttachmentURLs = append(message.AttachmentURLs, attachment.URL)
		}
	}

	return message
}
