package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"emotify/core/log"
	"emotify/models"
)

const (
	keyToken               = "DISCORD_TOKEN"
	keyAPIURL              = "DISCORD_API_URL"
	keyRateLimitPreference = "RATE_LIMIT_PREFERENCE"
	keyParallelLimit       = "PARALLEL_LIMIT"
	keyReactionDelayMS     = "REACTION_DELAY_MS"
	keyReactionOrder       = "REACTION_ORDER"
	keyHTTPTimeoutSeconds  = "HTTP_TIMEOUT_SECONDS"
	keyLogLevel            = "LOG_LEVEL"
)

type AppConfig struct {
	Token               string // Optional here, the CLI flag can supply it
	APIURL              string
	RateLimitPreference models.RateLimitPreference
	ParallelLimit       int
	ReactionDelay       time.Duration
	ReactionOrder       models.MessageOrder
	HTTPTimeout         time.Duration
	LogLevel            slog.Level
}

// LoadConfig reads a .env file if present, an optional emotify.yaml, then the environment.
// Environment variables win.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("⚠️ Could not load .env file, continuing with system env vars")
	}

	v := viper.New()
	v.SetDefault(keyAPIURL, "https://discord.com/api/v10/")
	v.SetDefault(keyRateLimitPreference, models.RateLimitRespectAll.String())
	v.SetDefault(keyParallelLimit, 1)
	v.SetDefault(keyReactionDelayMS, 200)
	v.SetDefault(keyReactionOrder, string(models.OrderAscending))
	v.SetDefault(keyHTTPTimeoutSeconds, 60)
	v.SetDefault(keyLogLevel, "info")

	v.SetConfigName("emotify")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	preference, err := models.ParseRateLimitPreference(v.GetString(keyRateLimitPreference))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", keyRateLimitPreference, err)
	}

	order, err := models.ParseMessageOrder(v.GetString(keyReactionOrder))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", keyReactionOrder, err)
	}

	parallel := v.GetInt(keyParallelLimit)
	if parallel < 1 {
		return nil, fmt.Errorf("invalid %s: must be at least 1, got %d", keyParallelLimit, parallel)
	}

	delayMS := v.GetInt(keyReactionDelayMS)
	if delayMS < 0 {
		return nil, fmt.Errorf("invalid %s: must not be negative, got %d", keyReactionDelayMS, delayMS)
	}

	timeout := v.GetInt(keyHTTPTimeoutSeconds)
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid %s: must be positive, got %d", keyHTTPTimeoutSeconds, timeout)
	}

	return &AppConfig{
		Token:               v.GetString(keyToken),
		APIURL:              v.GetString(keyAPIURL),
		RateLimitPreference: preference,
		ParallelLimit:       parallel,
		ReactionDelay:       time.Duration(delayMS) * time.Millisecond,
		ReactionOrder:       order,
		HTTPTimeout:         time.Duration(timeout) * time.Second,
		LogLevel:            log.ParseLevel(v.GetString(keyLogLevel)),
	}, nil
}
