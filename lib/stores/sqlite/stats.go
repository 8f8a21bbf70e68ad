package sqlite

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/sediment-store/sediment/lib/types"
)

// GetStatistics snapshots the store: durable totals from the metadata
// pool plus process-lifetime session counters.
func (store *SqliteStore) GetStatistics() (*types.RelayStatistics, error) {
	total, err := store.CountEvents()
	if err != nil {
		return nil, err
	}

	ctx, cancel := store.opCtx()
	defer cancel()

	var breakdown []types.KindCount
	err = store.metadata.WithContext(ctx).Raw(`
		SELECT kind, COUNT(*) AS count
		FROM events
		GROUP BY kind
		ORDER BY kind
	`).Scan(&breakdown).Error
	if err != nil {
		return nil, storeError("failed to fetch kind breakdown", err)
	}

	byKind := make(map[int]int64)
	store.storedByKind.Range(func(kind int, counter *xsync.Counter) bool {
		byKind[kind] = counter.Value()
		return true
	})

	return &types.RelayStatistics{
		TotalEvents:    total,
		KindBreakdown:  breakdown,
		SessionStored:  store.eventsStored.Value(),
		SessionDeleted: store.eventsDeleted.Value(),
		SessionByKind:  byKind,
	}, nil
}
