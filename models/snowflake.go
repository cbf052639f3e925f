package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// discordEpoch is the first millisecond of 2015, the zero point of snowflake timestamps
const discordEpoch = 1420070400000

// Snowflake is a Discord ID. Its top 42 bits hold the creation time in milliseconds since
// the Discord epoch, so numeric order and creation order agree.
type Snowflake uint64

const SnowflakeZero Snowflake = 0

// SnowflakeFromTime returns the smallest snowflake that could have been created at t
func SnowflakeFromTime(t time.Time) Snowflake {
	ms := t.UnixMilli() - discordEpoch
	if ms <= 0 {
		return SnowflakeZero
	}
	return Snowflake(uint64(ms) << 22)
}

// ParseSnowflake accepts a decimal ID or a date (RFC3339 or YYYY-MM-DD)
func ParseSnowflake(value string) (Snowflake, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return SnowflakeZero, fmt.Errorf("snowflake cannot be empty")
	}

	if id, err := strconv.ParseUint(value, 10, 64); err == nil {
		return Snowflake(id), nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return SnowflakeFromTime(t), nil
		}
	}

	return SnowflakeZero, fmt.Errorf("invalid snowflake or date: %q", value)
}

// MustParseSnowflake is ParseSnowflake for IDs known to be valid
func MustParseSnowflake(value string) Snowflake {
	id, err := ParseSnowflake(value)
	if err != nil {
		panic(err)
	}
	return id
}

// Time returns the creation time encoded in the snowflake
func (s Snowflake) Time() time.Time {
	return time.UnixMilli(int64(uint64(s)>>22) + discordEpoch).UTC()
}

func (s Snowflake) IsZero() bool {
	return s == SnowflakeZero
}

func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Snowflake) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("snowflake must be a JSON string: %w", err)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid snowflake %q: %w", raw, err)
	}
	*s = Snowflake(id)
	return nil
}

// UnmarshalFlag lets go-flags parse snowflake options directly
func (s *Snowflake) UnmarshalFlag(value string) error {
	id, err := ParseSnowflake(value)
	if err != nil {
		return err
	}
	*s = id
	return nil
}

// parseOptionalSnowflake maps the empty strings discordgo uses for absent IDs to zero
func parseOptionalSnowflake(value string) (Snowflake, bool) {
	if value == "" {
		return SnowflakeZero, false
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return SnowflakeZero, false
	}
	return Snowflake(id), true
}
