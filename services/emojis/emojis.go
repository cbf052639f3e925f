package emojis

import (
	"fmt"
	"strings"

	"github.com/kyokomi/emoji/v2"

	"emotify/models"
)

// ParseEmoji turns user input into an emoji.
//
//	"name:id"  custom emoji
//	":code:"   standard emoji looked up by shortcode
//	anything else is taken literally as a standard emoji
func ParseEmoji(input string) (models.Emoji, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return models.Emoji{}, fmt.Errorf("emoji cannot be empty")
	}

	// Discord's own mention syntax, <:name:id> or <a:name:id>
	if strings.HasPrefix(input, "<") && strings.HasSuffix(input, ">") {
		inner := strings.TrimPrefix(strings.Trim(input, "<>"), "a")
		return ParseEmoji(strings.TrimPrefix(inner, ":"))
	}

	if name, rawID, found := strings.Cut(input, ":"); found && name != "" {
		if id, ok := parseCustomID(rawID); ok {
			return models.NewCustomEmoji(id, name), nil
		}
	}

	if len(input) > 2 && strings.HasPrefix(input, ":") && strings.HasSuffix(input, ":") {
		if unicode, ok := LookupShortcode(strings.Trim(input, ":")); ok {
			return models.NewStandardEmoji(unicode), nil
		}
		return models.Emoji{}, fmt.Errorf("unknown emoji shortcode %s", input)
	}

	return models.NewStandardEmoji(input), nil
}

// LookupShortcode maps a shortcode such as "smile" to its unicode sequence
func LookupShortcode(code string) (string, bool) {
	code = strings.ToLower(strings.Trim(code, ":"))
	unicode, ok := emoji.CodeMap()[":"+code+":"]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(unicode), true
}

func parseCustomID(raw string) (models.Snowflake, bool) {
	if raw == "" {
		return models.SnowflakeZero, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return models.SnowflakeZero, false
		}
	}
	id, err := models.ParseSnowflake(raw)
	if err != nil || id.IsZero() {
		return models.SnowflakeZero, false
	}
	return id, true
}
