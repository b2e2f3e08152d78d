// Package config loads and validates the CrazyOnes configuration:
// config.json, .env, environment overrides, then CLI flags (applied by the
// binaries) in rising precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultAppleUpdatesURL is the canonical en-us security-releases page,
	// which carries the alternate-locale index in its head.
	DefaultAppleUpdatesURL = "https://support.apple.com/en-us/100100"

	// DefaultDataDir is the shared directory both processes couple through.
	DefaultDataDir = "data"

	// DefaultIntervalSeconds is the monitor period: six hours.
	DefaultIntervalSeconds = 21600
)

// tokenRe is the Telegram bot token shape: numeric bot id, a colon, and the
// secret part.
var tokenRe = regexp.MustCompile(`^[0-9]{8,10}:[A-Za-z0-9_-]{35,}$`)

// ErrInvalidToken marks a missing or malformed bot token. It is fatal at
// startup, before any tick runs, and maps to the configuration exit code.
var ErrInvalidToken = errors.New("missing or malformed telegram bot token")

// Config holds the config.json document plus runtime-only settings.
type Config struct {
	Version          string `json:"version"`
	AppleUpdatesURL  string `json:"apple_updates_url" env:"CRAZYONES_URL"`
	TelegramBotToken string `json:"telegram_bot_token" env:"CRAZYONES_TOKEN"`

	// DataDir is not part of the config.json contract; it comes from the
	// environment or the --data-dir flag.
	DataDir string `json:"-" env:"CRAZYONES_DATA_DIR"`
}

// Load reads the configuration file at path, expands environment variables
// in its values, and applies environment overrides. A missing file is not an
// error: every value can arrive via environment or flags.
func Load(path string) (*Config, error) {
	// .env files are a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg := &Config{
		AppleUpdatesURL: DefaultAppleUpdatesURL,
		DataDir:         DefaultDataDir,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env and flags
		case err != nil:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		default:
			expanded := os.ExpandEnv(string(data))
			if err := json.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if cfg.AppleUpdatesURL == "" {
		cfg.AppleUpdatesURL = DefaultAppleUpdatesURL
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	return cfg, nil
}

// Validate checks the merged configuration. Called after flag overrides.
func (c *Config) Validate() error {
	if err := ValidateToken(c.TelegramBotToken); err != nil {
		return err
	}
	if !strings.HasPrefix(c.AppleUpdatesURL, "http") {
		return fmt.Errorf("apple_updates_url %q is not an http(s) URL", c.AppleUpdatesURL)
	}
	return nil
}

// ValidateToken checks the bot token against the Telegram token shape.
func ValidateToken(token string) error {
	if !tokenRe.MatchString(token) {
		return ErrInvalidToken
	}
	return nil
}

// applyEnvOverrides sets struct fields from environment variables named by
// the `env` struct tag.
func applyEnvOverrides(v any) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}

	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := val.Field(i)

		if fieldVal.Kind() == reflect.Struct {
			if fieldVal.CanAddr() {
				applyEnvOverrides(fieldVal.Addr().Interface())
			}
			continue
		}

		envTag := field.Tag.Get("env")
		if envTag == "" {
			continue
		}
		envVal, ok := os.LookupEnv(envTag)
		if !ok || !fieldVal.CanSet() {
			continue
		}

		switch fieldVal.Kind() {
		case reflect.String:
			fieldVal.SetString(envVal)
		case reflect.Int, reflect.Int64:
			var n int64
			if _, err := fmt.Sscanf(envVal, "%d", &n); err == nil {
				fieldVal.SetInt(n)
			}
		case reflect.Bool:
			fieldVal.SetBool(strings.EqualFold(envVal, "true") || envVal == "1")
		}
	}
}
