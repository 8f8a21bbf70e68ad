package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/sediment-store/sediment/lib/types"
)

var (
	// Cache the configuration after first load
	cachedConfig atomic.Value // stores *types.Config

	// Debounce timer for config file changes
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
)

// InitConfig initializes the global viper configuration
func InitConfig() error {
	// Configuration file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable settings
	viper.SetEnvPrefix("SEDIMENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Try to read config file; a missing file just means defaults
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Load initial configuration into cache
	if err := reloadConfigCache(); err != nil {
		return fmt.Errorf("failed to load initial config: %w", err)
	}

	// Watch for config file changes with debouncing
	viper.OnConfigChange(func(e fsnotify.Event) {
		debounceMutex.Lock()
		defer debounceMutex.Unlock()

		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(500*time.Millisecond, func() {
			_ = reloadConfigCache()
		})
	})
	viper.WatchConfig()

	return nil
}

func setDefaults() {
	viper.SetDefault("database.path", filepath.Join("data", "events.db"))
	viper.SetDefault("database.reader_conns", 10)
	viper.SetDefault("database.metadata_conns", 5)
	viper.SetDefault("database.acquire_timeout_seconds", 5)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.output", "stdout")
	viper.SetDefault("logging.path", "logs")
}

// reloadConfigCache decodes the current viper state into the typed
// config and swaps it into the cache
func reloadConfigCache() error {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cachedConfig.Store(&cfg)
	return nil
}

// GetConfig returns the cached typed configuration, loading it from
// defaults if InitConfig has not run yet
func GetConfig() (*types.Config, error) {
	if cfg, ok := cachedConfig.Load().(*types.Config); ok {
		return cfg, nil
	}
	setDefaults()
	if err := reloadConfigCache(); err != nil {
		return nil, err
	}
	return cachedConfig.Load().(*types.Config), nil
}
