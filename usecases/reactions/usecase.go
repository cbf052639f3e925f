package reactions

import (
	"context"
	"fmt"
	"slices"

	"emotify/clients"
	"emotify/core"
	"emotify/core/log"
	"emotify/models"
)

// Reporter receives per-item failures and per-channel progress while a job runs.
// It is called from worker goroutines and must be safe for concurrent use.
type Reporter interface {
	ItemFailed(channel models.Channel, messageID models.Snowflake, err error)
	ChannelProgress(channel models.Channel, fraction float64)
}

// ReactionsUseCase applies or removes a reaction across every message of a set of channels
type ReactionsUseCase struct {
	client   clients.DiscordClient
	reporter Reporter
}

func NewReactionsUseCase(client clients.DiscordClient, reporter Reporter) *ReactionsUseCase {
	if reporter == nil {
		reporter = LogReporter{}
	}
	return &ReactionsUseCase{
		client:   client,
		reporter: reporter,
	}
}

// ResolveChannels fetches channels by ID, replacing categories with the channels they contain.
// Duplicates are dropped and input order is kept.
func (u *ReactionsUseCase) ResolveChannels(ctx context.Context, ids []models.Snowflake) ([]models.Channel, error) {
	log.Info("📋 Starting to resolve channels", "count", len(ids))

	guildChannels := make(map[models.Snowflake][]models.Channel)
	var resolved []models.Channel
	seen := make(map[models.Snowflake]bool)

	add := func(channel models.Channel) {
		if seen[channel.ID] {
			return
		}
		seen[channel.ID] = true
		resolved = append(resolved, channel)
	}

	for _, id := range ids {
		channel, err := u.client.GetChannel(ctx, id)
		if err != nil {
			log.Error("❌ Failed to get channel", "channel", id, "error", err)
			return nil, fmt.Errorf("failed to resolve channel %s: %w", id, err)
		}

		if !channel.IsCategory() {
			add(*channel)
			continue
		}

		siblings, ok := guildChannels[channel.GuildID]
		if !ok {
			siblings, err = u.client.GetGuildChannels(ctx, channel.GuildID)
			if err != nil {
				log.Error("❌ Failed to get guild channels", "guild", channel.GuildID, "error", err)
				return nil, fmt.Errorf("failed to expand category %s: %w", channel.ID, err)
			}
			guildChannels[channel.GuildID] = siblings
		}

		children := 0
		for _, sibling := range siblings {
			parentID, hasParent := sibling.ParentID.Get()
			if hasParent && parentID == channel.ID && !sibling.IsCategory() {
				add(sibling)
				children++
			}
		}
		log.Debug("📋 Expanded category", "category", channel.Name, "channels", children)
	}

	log.Info("📋 Completed successfully - resolved channels", "count", len(resolved))
	return resolved, nil
}

// Start runs job over channels in the background. Categories are skipped; resolve them with
// ResolveChannels first. Cancelling ctx cancels the job.
func (u *ReactionsUseCase) Start(ctx context.Context, channels []models.Channel, job models.ReactionJob) *Job {
	targets := slices.DeleteFunc(slices.Clone(channels), func(channel models.Channel) bool {
		return channel.IsCategory()
	})

	j := newJob(ctx, core.NewID("rj"), len(targets))
	go j.run(u, targets, job)
	return j
}
