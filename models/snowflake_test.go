package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Time(t *testing.T) {
	// Example from the Discord docs
	id := Snowflake(175928847299117063)

	assert.Equal(t, time.Date(2016, 4, 30, 11, 18, 25, 796000000, time.UTC), id.Time())
}

func TestSnowflakeFromTime_RoundTrips(t *testing.T) {
	instant := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)

	id := SnowflakeFromTime(instant)

	assert.Equal(t, instant, id.Time())
	assert.True(t, SnowflakeFromTime(instant.Add(time.Millisecond)) > id)
}

func TestSnowflakeFromTime_BeforeEpoch(t *testing.T) {
	assert.Equal(t, SnowflakeZero, SnowflakeFromTime(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseSnowflake(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Snowflake
		wantErr  bool
	}{
		{name: "decimal id", input: "123456789012345678", expected: 123456789012345678},
		{name: "trims whitespace", input: "  42 ", expected: 42},
		{name: "date", input: "2020-01-01", expected: SnowflakeFromTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339", input: "2020-01-01T10:00:00Z", expected: SnowflakeFromTime(time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC))},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSnowflake(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSnowflake_JSON(t *testing.T) {
	var payload struct {
		ID Snowflake `json:"id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"id":"987654321098765432"}`), &payload))
	assert.Equal(t, Snowflake(987654321098765432), payload.ID)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"987654321098765432"}`, string(data))

	assert.Error(t, json.Unmarshal([]byte(`{"id":12}`), &payload))
}
