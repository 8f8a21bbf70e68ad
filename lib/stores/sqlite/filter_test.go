package sqlite

import (
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
)

func sampleEvent() *nostr.Event {
	return &nostr.Event{
		ID:        strings.Repeat("e", 64),
		PubKey:    strings.Repeat("f", 64),
		CreatedAt: nostr.Timestamp(1500),
		Kind:      1,
		Tags: nostr.Tags{
			{"e", strings.Repeat("a", 64)},
			{"p", strings.Repeat("b", 64), "relay-hint"},
		},
		Content: "Hello Nostr",
		Sig:     "sig",
	}
}

func TestEventMatchesFilterEmpty(t *testing.T) {
	assert.True(t, eventMatchesFilter(sampleEvent(), nostr.Filter{}))
}

func TestEventMatchesFilterIDs(t *testing.T) {
	ev := sampleEvent()

	assert.True(t, eventMatchesFilter(ev, nostr.Filter{IDs: []string{ev.ID}}))
	assert.True(t, eventMatchesFilter(ev, nostr.Filter{IDs: []string{"ee"}}))
	assert.False(t, eventMatchesFilter(ev, nostr.Filter{IDs: []string{"ab"}}))
	// Present-but-empty set matches nothing
	assert.False(t, eventMatchesFilter(ev, nostr.Filter{IDs: []string{}}))
}

func TestEventMatchesFilterAuthorsPrefix(t *testing.T) {
	ev := sampleEvent()

	assert.True(t, eventMatchesFilter(ev, nostr.Filter{Authors: []string{ev.PubKey}}))
	assert.True(t, eventMatchesFilter(ev, nostr.Filter{Authors: []string{"f"}}))
	assert.False(t, eventMatchesFilter(ev, nostr.Filter{Authors: []string{"0"}}))
}

func TestEventMatchesFilterKindsAndTime(t *testing.T) {
	ev := sampleEvent()

	assert.True(t, eventMatchesFilter(ev, nostr.Filter{Kinds: []int{1, 7}}))
	assert.False(t, eventMatchesFilter(ev, nostr.Filter{Kinds: []int{7}}))

	since := nostr.Timestamp(1500)
	until := nostr.Timestamp(1500)
	// Bounds are inclusive
	assert.True(t, eventMatchesFilter(ev, nostr.Filter{Since: &since}))
	assert.True(t, eventMatchesFilter(ev, nostr.Filter{Until: &until}))

	late := nostr.Timestamp(1501)
	assert.False(t, eventMatchesFilter(ev, nostr.Filter{Since: &late}))
	early := nostr.Timestamp(1499)
	assert.False(t, eventMatchesFilter(ev, nostr.Filter{Until: &early}))
}

func TestEventMatchesFilterTags(t *testing.T) {
	ev := sampleEvent()

	// OR within one tag name
	assert.True(t, eventMatchesFilter(ev, nostr.Filter{Tags: nostr.TagMap{
		"e": {strings.Repeat("a", 64), "something-else"},
	}}))

	// AND across tag names
	assert.True(t, eventMatchesFilter(ev, nostr.Filter{Tags: nostr.TagMap{
		"e": {strings.Repeat("a", 64)},
		"p": {strings.Repeat("b", 64)},
	}}))
	assert.False(t, eventMatchesFilter(ev, nostr.Filter{Tags: nostr.TagMap{
		"e": {strings.Repeat("a", 64)},
		"p": {"missing"},
	}}))

	// Tag keys may arrive with the protocol's # prefix
	assert.True(t, eventMatchesFilter(ev, nostr.Filter{Tags: nostr.TagMap{
		"#e": {strings.Repeat("a", 64)},
	}}))

	assert.False(t, eventMatchesFilter(ev, nostr.Filter{Tags: nostr.TagMap{
		"t": {"anything"},
	}}))
}

func TestEventMatchesFilterSearch(t *testing.T) {
	ev := sampleEvent()

	assert.True(t, eventMatchesFilter(ev, nostr.Filter{Search: "hello"}))
	assert.True(t, eventMatchesFilter(ev, nostr.Filter{Search: "NOSTR"}))
	assert.False(t, eventMatchesFilter(ev, nostr.Filter{Search: "goodbye"}))
}

func TestEventMatchesFilterCombined(t *testing.T) {
	ev := sampleEvent()
	since := nostr.Timestamp(1000)

	assert.True(t, eventMatchesFilter(ev, nostr.Filter{
		Authors: []string{"f"},
		Kinds:   []int{1},
		Since:   &since,
		Tags:    nostr.TagMap{"e": {strings.Repeat("a", 64)}},
	}))

	// One failing clause fails the whole conjunction
	assert.False(t, eventMatchesFilter(ev, nostr.Filter{
		Authors: []string{"f"},
		Kinds:   []int{9999},
		Since:   &since,
	}))
}
