// Package config loads pfgantt settings from the environment, an optional
// .env file and an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/micromata/projectforge-sub017/internal/calendar"
	"github.com/micromata/projectforge-sub017/internal/domain"
)

// Environment variables.
const (
	EnvDB          = "PF_GANTT_DB"
	EnvConfigFile  = "PF_GANTT_CONFIG"
	EnvNATSURL     = "PF_NATS_URL"
	EnvLogUseCases = "PF_LOG_USECASES"
)

// Config holds the resolved settings.
type Config struct {
	DBPath      string
	ConfigFile  string
	NATSURL     string // empty disables event publishing
	LogUseCases bool
	Weekend     []time.Weekday
	// Holidays from the config file. They are added to the calendar on top
	// of the holidays stored in the database.
	Holidays []domain.Holiday
}

// File is the TOML layout of the config file.
type File struct {
	Calendar struct {
		Weekend []string `toml:"weekend"`
	} `toml:"calendar"`
	Holidays []struct {
		Date string `toml:"date"`
		Name string `toml:"name"`
	} `toml:"holidays"`
	NATS struct {
		URL string `toml:"url"`
	} `toml:"nats"`
}

// DefaultConfig places the database and config file under ~/.projectforge.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}
	dir := filepath.Join(home, ".projectforge")
	return Config{
		DBPath:     filepath.Join(dir, "gantt.db"),
		ConfigFile: filepath.Join(dir, "gantt.toml"),
		Weekend:    calendar.DefaultWeekend,
	}, nil
}

// Load resolves the configuration. envFiles are loaded with godotenv (".env"
// when none are given; a missing file is not an error) without overriding
// variables that are already set. Environment variables win over the TOML
// file.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading env file: %w", err)
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}
	if v := os.Getenv(EnvConfigFile); v != "" {
		cfg.ConfigFile = v
	}
	if err := cfg.applyFile(cfg.ConfigFile); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(EnvDB); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvNATSURL); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv(EnvLogUseCases); v != "" {
		cfg.LogUseCases, _ = strconv.ParseBool(v)
	}
	return cfg, nil
}

// applyFile merges the TOML file at path. A missing file leaves cfg as is.
func (c *Config) applyFile(path string) error {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if len(f.Calendar.Weekend) > 0 {
		weekend, err := calendar.ParseWeekdays(f.Calendar.Weekend)
		if err != nil {
			return fmt.Errorf("config file %s: calendar.weekend: %w", path, err)
		}
		c.Weekend = weekend
	}
	for i, h := range f.Holidays {
		d, err := domain.ParseDate(h.Date)
		if err != nil {
			return fmt.Errorf("config file %s: holidays[%d]: %w", path, i, err)
		}
		c.Holidays = append(c.Holidays, domain.Holiday{Date: d, Name: h.Name})
	}
	if f.NATS.URL != "" {
		c.NATSURL = f.NATS.URL
	}
	return nil
}
