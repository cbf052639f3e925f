package models

import (
	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
)

// Emoji is either custom (ID present) or standard (Name holds the unicode sequence)
type Emoji struct {
	ID   mo.Option[Snowflake]
	Name string
}

func NewCustomEmoji(id Snowflake, name string) Emoji {
	return Emoji{ID: mo.Some(id), Name: name}
}

func NewStandardEmoji(name string) Emoji {
	return Emoji{ID: mo.None[Snowflake](), Name: name}
}

func (e Emoji) IsCustom() bool {
	return e.ID.IsPresent()
}

// Encoded returns the identity used in reaction URLs: "name:id" for custom emoji, the name otherwise
func (e Emoji) Encoded() string {
	dto := discordgo.Emoji{Name: e.Name}
	if id, ok := e.ID.Get(); ok {
		dto.ID = id.String()
	}
	return dto.APIName()
}

func (e Emoji) String() string {
	if e.IsCustom() {
		return ":" + e.Name + ":"
	}
	return e.Name
}
