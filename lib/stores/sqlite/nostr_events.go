package sqlite

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/nbd-wtf/go-nostr"
	"github.com/puzpuzpuz/xsync/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sediment-store/sediment/lib/logging"
	"github.com/sediment-store/sediment/lib/types"
)

// encodeEventRecord serializes an event to its on-disk row. The tag
// list rides along as JSON so the full event can be rebuilt from a
// single row read.
func encodeEventRecord(ev *nostr.Event) (*types.EventRecord, error) {
	tags := ev.Tags
	if tags == nil {
		tags = nostr.Tags{}
	}
	tagsJSON, err := jsoniter.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags for event %s: %w", ev.ID, err)
	}
	return &types.EventRecord{
		ID:        ev.ID,
		Pubkey:    ev.PubKey,
		CreatedAt: int64(ev.CreatedAt),
		Kind:      ev.Kind,
		Content:   ev.Content,
		Tags:      string(tagsJSON),
		Sig:       ev.Sig,
	}, nil
}

// decodeEventRecord rebuilds an event from its row. A row whose tag
// column does not parse is reported as a decode error, not skipped.
func decodeEventRecord(record *types.EventRecord) (*nostr.Event, error) {
	var tags nostr.Tags
	if record.Tags != "" {
		if err := jsoniter.UnmarshalFromString(record.Tags, &tags); err != nil {
			return nil, fmt.Errorf("%w: event %s: %v", ErrDecode, record.ID, err)
		}
	}
	return &nostr.Event{
		ID:        record.ID,
		PubKey:    record.Pubkey,
		CreatedAt: nostr.Timestamp(record.CreatedAt),
		Kind:      record.Kind,
		Tags:      tags,
		Content:   record.Content,
		Sig:       record.Sig,
	}, nil
}

// tagProjection derives the tag-index rows for an event: one row per
// non-empty tag, first element as the name, second (if any) as the
// value. Elements beyond the second are not indexed; they are
// recovered by re-reading the full event.
func tagProjection(ev *nostr.Event) []types.EventTagRecord {
	var rows []types.EventTagRecord
	for _, tag := range ev.Tags {
		if len(tag) < 1 {
			continue
		}
		row := types.EventTagRecord{EventID: ev.ID, TagName: tag[0]}
		if len(tag) > 1 {
			value := tag[1]
			row.TagValue = &value
		}
		rows = append(rows, row)
	}
	return rows
}

// StoreEvent upserts an event by id and rebuilds its tag projection.
// Re-storing an existing id replaces every field and every tag row, so
// retries are idempotent. The event row and its tag rows commit as one
// transaction on the single writer connection.
func (store *SqliteStore) StoreEvent(ev *nostr.Event) error {
	if len(ev.ID) != 64 || ev.PubKey == "" || ev.Sig == "" {
		return fmt.Errorf("refusing to store incomplete event %q", ev.ID)
	}

	record, err := encodeEventRecord(ev)
	if err != nil {
		return err
	}

	ctx, cancel := store.opCtx()
	defer cancel()

	err = store.writer.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(record).Error
		if err != nil {
			return err
		}

		// The projection is rebuilt wholesale so no stale rows survive
		// a re-store with different tags
		if err := tx.Where("event_id = ?", ev.ID).Delete(&types.EventTagRecord{}).Error; err != nil {
			return err
		}
		if rows := tagProjection(ev); len(rows) > 0 {
			if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeError(fmt.Sprintf("failed to store event %s", ev.ID), err)
	}

	store.eventsStored.Inc()
	counter, _ := store.storedByKind.LoadOrCompute(ev.Kind, func() *xsync.Counter {
		return xsync.NewCounter()
	})
	counter.Inc()

	logging.Debugf("Stored event %s (kind %d, %d tags)", ev.ID, ev.Kind, len(ev.Tags))

	return nil
}

// GetEvent fetches one event by exact id. A missing id is nil, not an
// error.
func (store *SqliteStore) GetEvent(eventID string) (*nostr.Event, error) {
	ctx, cancel := store.opCtx()
	defer cancel()

	var record types.EventRecord
	err := store.reader.WithContext(ctx).Take(&record, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(fmt.Sprintf("failed to fetch event %s", eventID), err)
	}

	return decodeEventRecord(&record)
}

// GetEventsByPubkey returns events authored by an exact pubkey, newest
// first, capped at limit.
func (store *SqliteStore) GetEventsByPubkey(pubkey string, limit int) ([]*nostr.Event, error) {
	ctx, cancel := store.opCtx()
	defer cancel()

	var records []types.EventRecord
	err := store.reader.WithContext(ctx).
		Where("pubkey = ?", pubkey).
		Order("created_at DESC").
		Limit(effectiveLimit(limit)).
		Find(&records).Error
	if err != nil {
		return nil, storeError("failed to fetch events by pubkey", err)
	}

	return decodeEventRecords(records)
}

// GetEventsByKind returns events of an exact kind, newest first,
// capped at limit.
func (store *SqliteStore) GetEventsByKind(kind int, limit int) ([]*nostr.Event, error) {
	ctx, cancel := store.opCtx()
	defer cancel()

	var records []types.EventRecord
	err := store.reader.WithContext(ctx).
		Where("kind = ?", kind).
		Order("created_at DESC").
		Limit(effectiveLimit(limit)).
		Find(&records).Error
	if err != nil {
		return nil, storeError("failed to fetch events by kind", err)
	}

	return decodeEventRecords(records)
}

// GetEventsByTag looks events up through the tag index: exact match on
// the first two elements of any tag, newest first.
func (store *SqliteStore) GetEventsByTag(tagName string, tagValue string, limit int) ([]*nostr.Event, error) {
	ctx, cancel := store.opCtx()
	defer cancel()

	var records []types.EventRecord
	err := store.reader.WithContext(ctx).Raw(`
		SELECT e.id, e.pubkey, e.created_at, e.kind, e.content, e.tags, e.sig
		FROM events e
		JOIN event_tags t ON t.event_id = e.id
		WHERE t.tag_name = ? AND t.tag_value = ?
		GROUP BY e.id
		ORDER BY e.created_at DESC
		LIMIT ?
	`, tagName, tagValue, effectiveLimit(limit)).Scan(&records).Error
	if err != nil {
		return nil, storeError("failed to fetch events by tag", err)
	}

	return decodeEventRecords(records)
}

// QueryEvents runs a subscription filter: the filter compiles to one
// bounded SQL statement, rows decode to events, and every event is
// re-checked against the complete filter before it is returned.
func (store *SqliteStore) QueryEvents(filter nostr.Filter) ([]*nostr.Event, error) {
	query, params := buildEventsQuery(filter)

	logging.Debugf("QueryEvents: ids=%d authors=%d kinds=%v tags=%d limit=%d",
		len(filter.IDs), len(filter.Authors), filter.Kinds, len(filter.Tags), filter.Limit)

	ctx, cancel := store.opCtx()
	defer cancel()

	var records []types.EventRecord
	if err := store.reader.WithContext(ctx).Raw(query, params...).Scan(&records).Error; err != nil {
		return nil, storeError("failed to query events", err)
	}

	events := make([]*nostr.Event, 0, len(records))
	for i := range records {
		ev, err := decodeEventRecord(&records[i])
		if err != nil {
			return nil, err
		}
		// Post-filter pass: the SQL is allowed to over-approximate
		if !eventMatchesFilter(ev, filter) {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// DeleteEvent removes an event by exact id; the foreign key cascade
// clears its tag rows. Returns whether a row was actually removed.
func (store *SqliteStore) DeleteEvent(eventID string) (bool, error) {
	ctx, cancel := store.opCtx()
	defer cancel()

	result := store.writer.WithContext(ctx).Delete(&types.EventRecord{}, "id = ?", eventID)
	if result.Error != nil {
		return false, storeError(fmt.Sprintf("failed to delete event %s", eventID), result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	store.eventsDeleted.Inc()
	logging.Debugf("Deleted event %s", eventID)

	return true, nil
}

// CountEvents reports the total number of stored events using the
// metadata pool, so statistics polling cannot starve subscription
// reads.
func (store *SqliteStore) CountEvents() (int64, error) {
	ctx, cancel := store.opCtx()
	defer cancel()

	var count int64
	err := store.metadata.WithContext(ctx).Model(&types.EventRecord{}).Count(&count).Error
	if err != nil {
		return 0, storeError("failed to count events", err)
	}
	return count, nil
}

func decodeEventRecords(records []types.EventRecord) ([]*nostr.Event, error) {
	events := make([]*nostr.Event, 0, len(records))
	for i := range records {
		ev, err := decodeEventRecord(&records[i])
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
