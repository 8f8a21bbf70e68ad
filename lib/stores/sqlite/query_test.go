package sqlite

import (
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEventsQueryEmptyFilter(t *testing.T) {
	query, params := buildEventsQuery(nostr.Filter{})

	assert.Equal(t, "SELECT id, pubkey, created_at, kind, content, tags, sig FROM events ORDER BY created_at DESC LIMIT ?", query)
	require.Len(t, params, 1)
	assert.Equal(t, defaultQueryLimit, params[0])
}

func TestBuildEventsQueryIDExactVersusPrefix(t *testing.T) {
	fullID := strings.Repeat("e", 64)
	query, params := buildEventsQuery(nostr.Filter{
		IDs: []string{fullID, "ee"},
	})

	assert.Contains(t, query, "(id = ? OR id LIKE ?)")
	require.Len(t, params, 3)
	assert.Equal(t, fullID, params[0])
	assert.Equal(t, "ee%", params[1])
}

func TestBuildEventsQueryNonHexFullLengthIDIsPrefix(t *testing.T) {
	// 64 characters but not valid hex, so it cannot be an exact id
	notHex := strings.Repeat("z", 64)
	query, params := buildEventsQuery(nostr.Filter{IDs: []string{notHex}})

	assert.Contains(t, query, "id LIKE ?")
	assert.NotContains(t, query, "id = ?")
	assert.Equal(t, notHex+"%", params[0])
}

func TestBuildEventsQueryAuthorsAlwaysPrefix(t *testing.T) {
	fullPubkey := strings.Repeat("f", 64)
	query, params := buildEventsQuery(nostr.Filter{
		Authors: []string{fullPubkey, "ab"},
	})

	// Full-length authors still compile to prefix comparisons
	assert.Contains(t, query, "(pubkey LIKE ? OR pubkey LIKE ?)")
	assert.NotContains(t, query, "pubkey = ?")
	require.Len(t, params, 3)
	assert.Equal(t, fullPubkey+"%", params[0])
	assert.Equal(t, "ab%", params[1])
}

func TestBuildEventsQueryKinds(t *testing.T) {
	query, params := buildEventsQuery(nostr.Filter{Kinds: []int{1, 7}})

	assert.Contains(t, query, "kind IN (?, ?)")
	require.Len(t, params, 3)
	assert.Equal(t, 1, params[0])
	assert.Equal(t, 7, params[1])
}

func TestBuildEventsQueryTimeRange(t *testing.T) {
	since := nostr.Timestamp(1000)
	until := nostr.Timestamp(2000)
	query, params := buildEventsQuery(nostr.Filter{Since: &since, Until: &until})

	assert.Contains(t, query, "created_at >= ?")
	assert.Contains(t, query, "created_at <= ?")
	require.Len(t, params, 3)
	assert.Equal(t, int64(1000), params[0])
	assert.Equal(t, int64(2000), params[1])
}

func TestBuildEventsQueryClausesAreConjunctive(t *testing.T) {
	since := nostr.Timestamp(500)
	query, _ := buildEventsQuery(nostr.Filter{
		Authors: []string{"ab"},
		Kinds:   []int{1},
		Since:   &since,
	})

	whereIdx := strings.Index(query, "WHERE")
	require.Positive(t, whereIdx)
	assert.Equal(t, 2, strings.Count(query, " AND "))
	assert.True(t, strings.HasSuffix(query, "ORDER BY created_at DESC LIMIT ?"))
}

func TestBuildEventsQueryEmptyPresentSetMatchesNothing(t *testing.T) {
	query, _ := buildEventsQuery(nostr.Filter{IDs: []string{}})
	assert.Contains(t, query, "1 = 0")

	query, _ = buildEventsQuery(nostr.Filter{Kinds: []int{}})
	assert.Contains(t, query, "1 = 0")
}

func TestEffectiveLimit(t *testing.T) {
	assert.Equal(t, defaultQueryLimit, effectiveLimit(0))
	assert.Equal(t, defaultQueryLimit, effectiveLimit(-1))
	assert.Equal(t, 25, effectiveLimit(25))
	assert.Equal(t, maxQueryLimit, effectiveLimit(maxQueryLimit))
	// The hard cap holds no matter what the caller asks for
	assert.Equal(t, maxQueryLimit, effectiveLimit(999999))
}

func TestIsFullHexID(t *testing.T) {
	assert.True(t, isFullHexID(strings.Repeat("a", 64)))
	assert.True(t, isFullHexID(strings.Repeat("0", 63)+"F"))
	assert.False(t, isFullHexID(strings.Repeat("a", 63)))
	assert.False(t, isFullHexID(strings.Repeat("a", 65)))
	assert.False(t, isFullHexID(strings.Repeat("g", 64)))
}
