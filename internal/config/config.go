// Package config loads avalond settings from flags, AVALOND_* environment
// variables and defaults, in that order of precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const EnvPrefix = "AVALOND"

const (
	DefaultHome      = ".avalon"
	DefaultAddr      = "tcp://127.0.0.1:26658"
	DefaultTransport = "socket"
	DefaultLogLevel  = "info"
)

const (
	keyHome      = "home"
	keyAddr      = "addr"
	keyTransport = "transport"
	keyIndexerDB = "indexer-db"
	keyLogLevel  = "log-level"
)

type Config struct {
	Home      string
	Addr      string
	Transport string
	// IndexerDB is the sqlite file backing the event index. Empty disables it.
	IndexerDB string
	LogLevel  string
}

// AddFlags registers the daemon flags on cmd.
func AddFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(keyHome, DefaultHome, "app home directory (state will be stored under <home>/app)")
	f.String(keyAddr, DefaultAddr, "ABCI listen address")
	f.String(keyTransport, DefaultTransport, "ABCI transport (socket|grpc)")
	f.String(keyIndexerDB, "", "sqlite event index path, relative to home unless absolute (empty disables)")
	f.String(keyLogLevel, DefaultLogLevel, "log level (debug|info|error|none)")
}

// Load resolves the configuration for cmd. Flags set on the command line win
// over the environment, which wins over defaults.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	cfg := Config{
		Home:      v.GetString(keyHome),
		Addr:      v.GetString(keyAddr),
		Transport: strings.ToLower(v.GetString(keyTransport)),
		IndexerDB: v.GetString(keyIndexerDB),
		LogLevel:  strings.ToLower(v.GetString(keyLogLevel)),
	}
	if cfg.IndexerDB != "" && !filepath.IsAbs(cfg.IndexerDB) {
		cfg.IndexerDB = filepath.Join(cfg.Home, cfg.IndexerDB)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Home == "" {
		return fmt.Errorf("config: home must not be empty")
	}
	if c.Addr == "" {
		return fmt.Errorf("config: addr must not be empty")
	}
	switch c.Transport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("config: unsupported transport %q (socket|grpc)", c.Transport)
	}
	switch c.LogLevel {
	case "debug", "info", "error", "none":
	default:
		return fmt.Errorf("config: unsupported log level %q", c.LogLevel)
	}
	return nil
}
