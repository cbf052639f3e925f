package models

import (
	"fmt"
	"strings"
)

// TokenKind is the authentication class of a token. It decides the Authorization header
// shape and which endpoints are reachable.
type TokenKind string

const (
	TokenKindBot  TokenKind = "bot"
	TokenKindUser TokenKind = "user"
)

// AuthorizationHeader formats token for kind. The value is sent verbatim.
func (k TokenKind) AuthorizationHeader(token string) string {
	if k == TokenKindBot {
		return "Bot " + token
	}
	return token
}

// RateLimitPreference selects for which token kinds advisory rate limits are honored.
// Hard limits (429) are always honored.
type RateLimitPreference int

const (
	RateLimitIgnoreAll            RateLimitPreference = 0
	RateLimitRespectForUserTokens RateLimitPreference = 1 << 0
	RateLimitRespectForBotTokens  RateLimitPreference = 1 << 1
	RateLimitRespectAll                               = RateLimitRespectForUserTokens | RateLimitRespectForBotTokens
)

func (p RateLimitPreference) IsRespectedFor(kind TokenKind) bool {
	switch kind {
	case TokenKindUser:
		return p&RateLimitRespectForUserTokens != 0
	case TokenKindBot:
		return p&RateLimitRespectForBotTokens != 0
	default:
		return true
	}
}

func (p RateLimitPreference) String() string {
	switch p {
	case RateLimitIgnoreAll:
		return "ignore-all"
	case RateLimitRespectForUserTokens:
		return "respect-user"
	case RateLimitRespectForBotTokens:
		return "respect-bot"
	default:
		return "respect-all"
	}
}

func ParseRateLimitPreference(value string) (RateLimitPreference, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "respect-all", "all":
		return RateLimitRespectAll, nil
	case "respect-user", "user":
		return RateLimitRespectForUserTokens, nil
	case "respect-bot", "bot":
		return RateLimitRespectForBotTokens, nil
	case "ignore-all", "none":
		return RateLimitIgnoreAll, nil
	default:
		return RateLimitRespectAll, fmt.Errorf("unknown rate limit preference %q", value)
	}
}
