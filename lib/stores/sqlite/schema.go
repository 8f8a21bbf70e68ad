package sqlite

import (
	"fmt"

	"github.com/sediment-store/sediment/lib/logging"
	"github.com/sediment-store/sediment/lib/types"
)

// initSchema idempotently brings the backing file to the expected
// shape. Every statement is create-if-not-exists so re-running against
// an already initialized file is a no-op.
func (store *SqliteStore) initSchema() error {
	err := store.writer.AutoMigrate(
		&types.EventRecord{},
		&types.EventTagRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	// Composite index for tag lookups, created after the tables exist
	err = store.writer.Exec(
		"CREATE INDEX IF NOT EXISTS idx_event_tags_name_value ON event_tags (tag_name, tag_value)",
	).Error
	if err != nil {
		return fmt.Errorf("failed to create tag index: %w", err)
	}

	logging.Debugf("Event store schema is up to date")

	return nil
}
