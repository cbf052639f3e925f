package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"emotify/clients/discord"
	"emotify/config"
	"emotify/core/log"
	"emotify/models"
)

type GlobalOptions struct {
	Token               string `short:"t" long:"token" description:"Discord bot or user token (defaults to DISCORD_TOKEN)"`
	RateLimitPreference string `long:"rate-limits" description:"Advisory rate limits to honor: respect-all, respect-user, respect-bot or ignore-all"`
	Verbose             bool   `short:"v" long:"verbose" description:"Log debug output to stderr"`
}

// CmdRunner carries configuration shared by every command
type CmdRunner struct {
	opts *GlobalOptions
	cfg  *config.AppConfig
}

// errFatal marks a run that ended on an authentication or permission failure.
// The message has already been printed.
var errFatal = errors.New("fatal error")

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	var opts GlobalOptions
	runner := &CmdRunner{opts: &opts, cfg: cfg}

	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		level := cfg.LogLevel
		if opts.Verbose {
			level = slog.LevelDebug
		}
		log.SetLevel(level)

		if command == nil {
			return nil
		}
		return command.Execute(args)
	}
	runner.registerCommands(parser)

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		if !errors.Is(err, errFatal) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func (cr *CmdRunner) newClient() (*discord.Client, error) {
	token := cr.opts.Token
	if token == "" {
		token = cr.cfg.Token
	}
	if token == "" {
		return nil, fmt.Errorf("a token is required: pass --token or set DISCORD_TOKEN")
	}

	preference := cr.cfg.RateLimitPreference
	if cr.opts.RateLimitPreference != "" {
		parsed, err := models.ParseRateLimitPreference(cr.opts.RateLimitPreference)
		if err != nil {
			return nil, err
		}
		preference = parsed
	}

	return discord.NewClient(token,
		discord.WithBaseURL(cr.cfg.APIURL),
		discord.WithHTTPClient(discord.NewHTTPClient(cr.cfg.HTTPTimeout)),
		discord.WithRateLimitPreference(preference),
	), nil
}

func (cr *CmdRunner) token() string {
	if cr.opts.Token != "" {
		return cr.opts.Token
	}
	return cr.cfg.Token
}
