package stores

import (
	"github.com/nbd-wtf/go-nostr"

	"github.com/sediment-store/sediment/lib/types"
)

// Store is the persistence surface the relay layers call into. Events
// arrive already validated and signed; filters arrive already parsed.
// Absence is never an error: a missing event comes back as nil, a
// delete of an unknown id as false.
type Store interface {
	// Nostr events
	StoreEvent(event *nostr.Event) error
	GetEvent(eventID string) (*nostr.Event, error)
	GetEventsByPubkey(pubkey string, limit int) ([]*nostr.Event, error)
	GetEventsByKind(kind int, limit int) ([]*nostr.Event, error)
	GetEventsByTag(tagName string, tagValue string, limit int) ([]*nostr.Event, error)
	QueryEvents(filter nostr.Filter) ([]*nostr.Event, error)
	DeleteEvent(eventID string) (bool, error)

	// Statistics
	CountEvents() (int64, error)
	GetStatistics() (*types.RelayStatistics, error)

	Close() error
}
