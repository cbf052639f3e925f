package reactions

import (
	"emotify/core/log"
	"emotify/models"
)

// LogReporter reports through the structured logger
type LogReporter struct{}

func (LogReporter) ItemFailed(channel models.Channel, messageID models.Snowflake, err error) {
	log.Warn("⚠️ Message skipped", "channel", channel.HierarchicalName(), "message", messageID, "error", err)
}

func (LogReporter) ChannelProgress(channel models.Channel, fraction float64) {
	log.Debug("⏳ Channel progress", "channel", channel.HierarchicalName(), "progress", fraction)
}
