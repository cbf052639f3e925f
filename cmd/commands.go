package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/samber/mo"

	"emotify/clients"
	"emotify/clients/discord"
	"emotify/core"
	"emotify/models"
	"emotify/services/emojis"
	"emotify/services/filters"
	"emotify/usecases/reactions"
	"emotify/utils"
)

func (cr *CmdRunner) registerCommands(parser *flags.Parser) {
	commands := []struct {
		name, short, long string
		data              any
	}{
		{
			name:  "guilds",
			short: "List accessible guilds",
			long:  "List every guild the account is in, plus the Direct Messages pseudo-guild (ID 0).",
			data:  &guildsCommand{runner: cr},
		},
		{
			name:  "channels",
			short: "List channels of a guild",
			long:  "List the channels of a guild in display order, optionally with their threads.",
			data:  &channelsCommand{runner: cr},
		},
		{
			name:  "dm",
			short: "List direct message channels",
			long:  "List the direct message channels of the account.",
			data:  &dmCommand{runner: cr},
		},
		{
			name:  "react",
			short: "Add or remove a reaction on every message of channels",
			long:  "Add (or with --clear remove) a reaction on every matching message of the given channels. Categories expand to their channels.",
			data:  &reactCommand{runner: cr},
		},
		{
			name:  "reactdm",
			short: "Add or remove a reaction across all direct messages",
			long:  "Add (or with --clear remove) a reaction on every matching message of every direct message channel.",
			data:  &reactDMCommand{runner: cr},
		},
	}

	for _, command := range commands {
		if _, err := parser.AddCommand(command.name, command.short, command.long, command.data); err != nil {
			panic(fmt.Sprintf("failed to register command %s: %v", command.name, err))
		}
	}
}

// signalContext is cancelled on the first interrupt
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// handleError prints fatal errors distinctly from the usual failure output
func handleError(err error) error {
	if err == nil {
		return nil
	}
	if core.IsFatal(err) {
		fmt.Fprintf(os.Stderr, "❌ Fatal error, run aborted: %v\n", err)
		return errFatal
	}
	return err
}

type guildsCommand struct {
	runner *CmdRunner
}

func (c *guildsCommand) Execute(args []string) error {
	client, err := c.runner.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	it := client.GetUserGuilds(ctx)
	for it.Next(ctx) {
		guild := it.Value()
		fmt.Fprintf(writer, "%s\t%s\n", guild.ID, guild.Name)
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return handleError(it.Err())
}

type channelsCommand struct {
	Guild                  models.Snowflake `short:"g" long:"guild" required:"true" description:"Guild ID"`
	IncludeThreads         bool             `long:"include-threads" description:"Also list active threads"`
	IncludeArchivedThreads bool             `long:"include-archived-threads" description:"Also list archived threads (implies --include-threads)"`

	runner *CmdRunner
}

func (c *channelsCommand) Execute(args []string) error {
	client, err := c.runner.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	channels, err := client.GetGuildChannels(ctx, c.Guild)
	if err != nil {
		return handleError(err)
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, channel := range channels {
		if channel.IsCategory() {
			continue
		}
		fmt.Fprintf(writer, "%s\t%s\n", channel.ID, channel.HierarchicalName())
	}

	if (c.IncludeThreads || c.IncludeArchivedThreads) && c.Guild != models.DirectMessages.ID {
		query := clients.ThreadQuery{IncludeArchived: c.IncludeArchivedThreads}
		threads := client.GetChannelThreads(ctx, channels, query)
		for threads.Next(ctx) {
			thread := threads.Value()
			fmt.Fprintf(writer, "%s\t%s\n", thread.ID, thread.HierarchicalName())
		}
		if err := threads.Err(); err != nil {
			_ = writer.Flush()
			return handleError(err)
		}
	}

	return writer.Flush()
}

type dmCommand struct {
	runner *CmdRunner
}

func (c *dmCommand) Execute(args []string) error {
	client, err := c.runner.newClient()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	channels, err := client.GetDirectMessageChannels(ctx)
	if err != nil {
		return handleError(err)
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, channel := range channels {
		fmt.Fprintf(writer, "%s\t%s\n", channel.ID, channel.Name)
	}
	return writer.Flush()
}

type reactOptions struct {
	Emoji    string   `short:"e" long:"emoji" required:"true" description:"Emoji: unicode, :shortcode: or name:id for custom emoji"`
	After    string   `long:"after" description:"Only messages after this message ID or date"`
	Before   string   `long:"before" description:"Only messages before this message ID or date"`
	Parallel int      `short:"p" long:"parallel" description:"Channels processed concurrently (defaults to PARALLEL_LIMIT)"`
	Delay    string   `long:"delay" description:"Pause between reactions, e.g. 500ms (defaults to REACTION_DELAY_MS)"`
	Order    string   `long:"order" description:"Message order: asc or desc (defaults to REACTION_ORDER)"`
	Clear    bool     `long:"clear" description:"Remove the reaction instead of adding it"`
	From     []string `long:"from" description:"Only messages from this user ID or name (repeatable)"`
	Contains []string `long:"contains" description:"Only messages containing this text (repeatable)"`
	Has      []string `long:"has" description:"Only messages with attachment, embed, image, link, sticker or pin (repeatable)"`
	SkipBots bool     `long:"skip-bots" description:"Skip messages sent by bots"`
}

type reactCommand struct {
	Channels []models.Snowflake `short:"c" long:"channel" required:"true" description:"Channel or category ID (repeatable)"`
	reactOptions

	runner *CmdRunner
}

func (c *reactCommand) Execute(args []string) error {
	return c.runner.runReactions(c.reactOptions, func(ctx context.Context, useCase *reactions.ReactionsUseCase, _ *discord.Client) ([]models.Channel, error) {
		return useCase.ResolveChannels(ctx, c.Channels)
	})
}

type reactDMCommand struct {
	reactOptions

	runner *CmdRunner
}

func (c *reactDMCommand) Execute(args []string) error {
	return c.runner.runReactions(c.reactOptions, func(ctx context.Context, _ *reactions.ReactionsUseCase, client *discord.Client) ([]models.Channel, error) {
		return client.GetDirectMessageChannels(ctx)
	})
}

type channelSource func(ctx context.Context, useCase *reactions.ReactionsUseCase, client *discord.Client) ([]models.Channel, error)

func (cr *CmdRunner) buildJob(options reactOptions) (models.ReactionJob, error) {
	emoji, err := emojis.ParseEmoji(options.Emoji)
	if err != nil {
		return models.ReactionJob{}, err
	}

	filter, err := filters.Build(filters.Options{
		From:     options.From,
		Contains: options.Contains,
		Has:      options.Has,
		SkipBots: options.SkipBots,
	})
	if err != nil {
		return models.ReactionJob{}, err
	}

	query := models.MessageQuery{Order: cr.cfg.ReactionOrder}
	if options.Order != "" {
		if query.Order, err = models.ParseMessageOrder(options.Order); err != nil {
			return models.ReactionJob{}, err
		}
	}
	if query.After, err = optionalSnowflake(options.After); err != nil {
		return models.ReactionJob{}, fmt.Errorf("invalid --after: %w", err)
	}
	if query.Before, err = optionalSnowflake(options.Before); err != nil {
		return models.ReactionJob{}, fmt.Errorf("invalid --before: %w", err)
	}

	delay := cr.cfg.ReactionDelay
	if options.Delay != "" {
		if delay, err = time.ParseDuration(options.Delay); err != nil || delay < 0 {
			return models.ReactionJob{}, fmt.Errorf("invalid --delay %q", options.Delay)
		}
	}

	parallel := cr.cfg.ParallelLimit
	if options.Parallel > 0 {
		parallel = options.Parallel
	}

	direction := models.ReactionAdd
	if options.Clear {
		direction = models.ReactionRemove
	}

	return models.ReactionJob{
		Emoji:       emoji,
		Direction:   direction,
		Delay:       delay,
		Parallelism: parallel,
		Query:       query,
		Filter:      filter,
	}, nil
}

func optionalSnowflake(raw string) (mo.Option[models.Snowflake], error) {
	if strings.TrimSpace(raw) == "" {
		return mo.None[models.Snowflake](), nil
	}
	id, err := models.ParseSnowflake(raw)
	if err != nil {
		return mo.None[models.Snowflake](), err
	}
	return mo.Some(id), nil
}

func (cr *CmdRunner) runReactions(options reactOptions, source channelSource) error {
	job, err := cr.buildJob(options)
	if err != nil {
		return err
	}

	client, err := cr.newClient()
	if err != nil {
		return err
	}

	lock, err := utils.NewRunLock(cr.token())
	if err != nil {
		return err
	}
	if err := lock.TryLock(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️ %v\n", err)
		}
	}()

	ctx, cancel := signalContext()
	defer cancel()

	useCase := reactions.NewReactionsUseCase(client, newConsoleReporter())
	channels, err := source(ctx, useCase, client)
	if err != nil {
		return handleError(err)
	}
	if len(channels) == 0 {
		fmt.Println("No channels to process")
		return nil
	}

	verb := "Adding"
	if job.Direction == models.ReactionRemove {
		verb = "Removing"
	}
	fmt.Printf("%s %s across %d channel(s)\n", verb, job.Emoji, len(channels))

	running := useCase.Start(ctx, channels, job)
	for status := range running.Statuses() {
		printChannelStatus(status)
	}

	summary, err := running.Wait()
	if core.IsFatal(err) {
		return handleError(err)
	}

	fmt.Printf("\n%s %s: %d processed, %d succeeded, %d failed in %s\n",
		summaryIcon(summary.State), summary.State, summary.Processed, summary.Succeeded, summary.Failed,
		summary.Elapsed.Round(time.Second))
	return nil
}

func printChannelStatus(status models.ChannelStatus) {
	icon := "✅"
	switch status.State {
	case models.ChannelFailed:
		icon = "❌"
	case models.ChannelCancelled:
		icon = "⏹️"
	}

	line := fmt.Sprintf("%s %s: %d processed, %d succeeded, %d failed",
		icon, status.Channel.HierarchicalName(), status.Processed, status.Succeeded, status.Failed)
	if status.State == models.ChannelFailed && status.Err != nil {
		line += fmt.Sprintf(" (%v)", status.Err)
	}
	fmt.Println(line)
}

func summaryIcon(state models.JobState) string {
	switch state {
	case models.JobCompleted:
		return "✅"
	case models.JobCancelled:
		return "⏹️"
	default:
		return "❌"
	}
}

// consoleReporter prints skipped messages and progress in 10% steps to stderr
type consoleReporter struct {
	mu       sync.Mutex
	reported map[models.Snowflake]int
}

func newConsoleReporter() *consoleReporter {
	return &consoleReporter{reported: make(map[models.Snowflake]int)}
}

func (r *consoleReporter) ItemFailed(channel models.Channel, messageID models.Snowflake, err error) {
	fmt.Fprintf(os.Stderr, "⚠️ %s: message %s skipped: %v\n", channel.HierarchicalName(), messageID, err)
}

func (r *consoleReporter) ChannelProgress(channel models.Channel, fraction float64) {
	step := int(fraction * 10)

	r.mu.Lock()
	defer r.mu.Unlock()
	if step <= r.reported[channel.ID] {
		return
	}
	r.reported[channel.ID] = step
	fmt.Fprintf(os.Stderr, "⏳ %s: %d%%\n", channel.HierarchicalName(), step*10)
}
