package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sediment-store/sediment/lib/logging"
	"github.com/sediment-store/sediment/lib/stores"
)

var _ stores.Store = (*SqliteStore)(nil)

// Config sizes the three pools over one backing file. The writer pool
// is always a single connection so writes stay serialized at the
// connection level; only the reader and metadata pools are sizable.
type Config struct {
	Path           string
	ReaderConns    int
	MetadataConns  int
	AcquireTimeout time.Duration
}

// DefaultConfig returns the standard pool sizing for a database path
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		ReaderConns:    10,
		MetadataConns:  5,
		AcquireTimeout: 5 * time.Second,
	}
}

// SqliteStore implements stores.Store over a single SQLite file with
// three segregated connection pools: one serialized writer, a reader
// pool for subscription queries, and a metadata pool so statistics
// polling never competes with either.
type SqliteStore struct {
	writer   *gorm.DB
	reader   *gorm.DB
	metadata *gorm.DB

	acquireTimeout time.Duration

	eventsStored  *xsync.Counter
	eventsDeleted *xsync.Counter
	storedByKind  *xsync.MapOf[int, *xsync.Counter]
}

// InitStore opens the three pools against cfg.Path and brings the
// schema up to date. Schema initialization failure is fatal to
// construction; there is no degraded mode.
func InitStore(cfg Config) (*SqliteStore, error) {
	if cfg.ReaderConns <= 0 {
		cfg.ReaderConns = 10
	}
	if cfg.MetadataConns <= 0 {
		cfg.MetadataConns = 5
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 5 * time.Second
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Connection settings shared by every pool:
	// - journal_mode=WAL lets readers run alongside the writer
	// - busy_timeout waits instead of failing when the file is locked
	// - foreign_keys=on enables the tag-index cascade on delete
	// - synchronous=normal balances safety and performance under WAL
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_synchronous=normal", cfg.Path)

	store := &SqliteStore{
		acquireTimeout: cfg.AcquireTimeout,
		eventsStored:   xsync.NewCounter(),
		eventsDeleted:  xsync.NewCounter(),
		storedByKind:   xsync.NewMapOf[int, *xsync.Counter](),
	}

	var err error
	if store.writer, err = openPool(dsn, 1); err != nil {
		return nil, fmt.Errorf("failed to open writer pool: %w", err)
	}
	if store.reader, err = openPool(dsn, cfg.ReaderConns); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open reader pool: %w", err)
	}
	if store.metadata, err = openPool(dsn, cfg.MetadataConns); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open metadata pool: %w", err)
	}

	// Schema must be in place before any store operation runs
	if err := store.initSchema(); err != nil {
		store.Close()
		return nil, err
	}

	logging.Infof("Opened event store at %s (readers=%d, metadata=%d)",
		cfg.Path, cfg.ReaderConns, cfg.MetadataConns)

	return store, nil
}

// openPool opens one gorm handle with its own connection pool capped
// at maxConns over the shared backing file
func openPool(dsn string, maxConns int) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		PrepareStmt:          true, // caches prepared statements across calls
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(60 * time.Minute)

	return db, nil
}

// opCtx bounds a single operation: if no pooled connection frees up
// within the acquire timeout the operation fails with a pool error
// instead of blocking forever.
func (store *SqliteStore) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), store.acquireTimeout)
}

// Close tears down all three pools. Safe to call on a partially
// constructed store.
func (store *SqliteStore) Close() error {
	var firstErr error
	for _, db := range []*gorm.DB{store.writer, store.reader, store.metadata} {
		if db == nil {
			continue
		}
		sqlDB, err := db.DB()
		if err != nil {
			continue
		}
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
