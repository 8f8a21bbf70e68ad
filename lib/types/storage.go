package types

// EventRecord is the on-disk representation of a nostr event. The tag
// list is kept twice: denormalized as JSON in Tags for fast full-event
// reconstruction, and projected into EventTagRecord rows for indexed
// lookups.
type EventRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Pubkey    string `gorm:"size:64;not null;index:idx_events_pubkey"`
	CreatedAt int64  `gorm:"not null;index:idx_events_created_at;autoCreateTime:false;autoUpdateTime:false"`
	Kind      int    `gorm:"not null;index:idx_events_kind"`
	Content   string
	Tags      string `gorm:"not null;default:'[]'"`
	Sig       string `gorm:"not null"`
}

// TableName overrides the default gorm pluralization
func (EventRecord) TableName() string {
	return "events"
}

// EventTagRecord is one row of the tag index: a derived projection of
// the first two elements of each tag on an event. Rows are removed by
// the foreign key cascade when the parent event row is deleted.
type EventTagRecord struct {
	ID       uint    `gorm:"primaryKey"`
	EventID  string  `gorm:"size:64;not null;index:idx_event_tags_event_id"`
	TagName  string  `gorm:"not null"`
	TagValue *string

	Event EventRecord `gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the default gorm pluralization
func (EventTagRecord) TableName() string {
	return "event_tags"
}

// KindCount is a per-kind row of the statistics breakdown
type KindCount struct {
	Kind  int   `json:"kind"`
	Count int64 `json:"count"`
}

// RelayStatistics is the snapshot returned by GetStatistics. Totals
// come from the metadata pool; the session counters are process-local
// and reset on restart.
type RelayStatistics struct {
	TotalEvents    int64         `json:"total_events"`
	KindBreakdown  []KindCount   `json:"kind_breakdown"`
	SessionStored  int64         `json:"session_stored"`
	SessionDeleted int64         `json:"session_deleted"`
	SessionByKind  map[int]int64 `json:"session_by_kind"`
}
