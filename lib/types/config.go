// Configuration and settings types
package types

// Config represents the complete engine configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatabaseConfig holds the connection pool configuration for the
// backing SQLite file. The writer pool is always a single connection;
// only the reader and metadata pools are sizable.
type DatabaseConfig struct {
	Path                  string `mapstructure:"path"`
	ReaderConns           int    `mapstructure:"reader_conns"`
	MetadataConns         int    `mapstructure:"metadata_conns"`
	AcquireTimeoutSeconds int    `mapstructure:"acquire_timeout_seconds"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
	Path   string `mapstructure:"path"`
}
