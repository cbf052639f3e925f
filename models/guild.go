package models

import (
	"github.com/bwmarrin/discordgo"
)

type Guild struct {
	ID   Snowflake
	Name string
}

// DirectMessages is the pseudo-guild grouping all DM channels
var DirectMessages = Guild{ID: SnowflakeZero, Name: "Direct Messages"}

func (g Guild) IsDirect() bool {
	return g.ID == DirectMessages.ID
}

func GuildFromDTO(id, name string) Guild {
	guildID, _ := parseOptionalSnowflake(id)
	return Guild{ID: guildID, Name: name}
}

type Role struct {
	ID       Snowflake
	Name     string
	Position int
	Color    int
}

func RoleFromDTO(dto *discordgo.Role) Role {
	id, _ := parseOptionalSnowflake(dto.ID)
	return Role{ID: id, Name: dto.Name, Position: dto.Position, Color: dto.Color}
}

type User struct {
	ID          Snowflake
	Name        string
	DisplayName string
	IsBot       bool
}

func UserFromDTO(dto *discordgo.User) User {
	id, _ := parseOptionalSnowflake(dto.ID)
	user := User{ID: id, Name: dto.Username, DisplayName: dto.GlobalName, IsBot: dto.Bot}
	if user.DisplayName == "" {
		user.DisplayName = dto.Username
	}
	return user
}

type Member struct {
	GuildID Snowflake
	User    User
	Nick    string
	RoleIDs []Snowflake
}

func MemberFromDTO(dto *discordgo.Member, guildID Snowflake) Member {
	member := Member{GuildID: guildID, Nick: dto.Nick}
	if dto.User != nil {
		member.User = UserFromDTO(dto.User)
	}
	for _, roleID := range dto.Roles {
		if id, ok := parseOptionalSnowflake(roleID); ok {
			member.RoleIDs = append(member.RoleIDs, id)
		}
	}
	return member
}

// Application flags that grant access to message content
const (
	ApplicationFlagGatewayMessageContent        = 1 << 18
	ApplicationFlagGatewayMessageContentLimited = 1 << 19
)

type Application struct {
	ID    Snowflake
	Name  string
	Flags int
}

func (a Application) IsMessageContentIntentEnabled() bool {
	return a.Flags&ApplicationFlagGatewayMessageContent != 0 ||
		a.Flags&ApplicationFlagGatewayMessageContentLimited != 0
}
