package sqlite

import (
	"strings"

	"github.com/nbd-wtf/go-nostr"
)

// eventMatchesFilter re-checks a fully decoded event against the
// complete filter. The SQL a filter compiles to may return a superset
// (tag and search constraints never reach it), so every query result
// passes through here before it is returned.
//
// Set semantics mirror the translator: a nil set means the clause is
// absent, a present-but-empty set matches nothing.
func eventMatchesFilter(ev *nostr.Event, filter nostr.Filter) bool {
	if filter.IDs != nil && !matchesIDSet(filter.IDs, ev.ID) {
		return false
	}
	if filter.Authors != nil && !matchesPrefixSet(filter.Authors, ev.PubKey) {
		return false
	}
	if filter.Kinds != nil && !containsInt(filter.Kinds, ev.Kind) {
		return false
	}
	if filter.Since != nil && ev.CreatedAt < *filter.Since {
		return false
	}
	if filter.Until != nil && ev.CreatedAt > *filter.Until {
		return false
	}

	// Tags – AND across tag names, OR within values
	for tagKey, wantValues := range filter.Tags {
		name := strings.TrimPrefix(tagKey, "#")
		if !eventHasTag(ev, name, wantValues) {
			return false
		}
	}

	if filter.Search != "" {
		if !strings.Contains(strings.ToLower(ev.Content), strings.ToLower(filter.Search)) {
			return false
		}
	}

	return true
}

// matchesIDSet applies the ids-clause semantics: full 64-char hex
// values compare exactly, shorter values as prefixes
func matchesIDSet(ids []string, candidate string) bool {
	for _, id := range ids {
		if isFullHexID(id) {
			if candidate == id {
				return true
			}
		} else if strings.HasPrefix(candidate, id) {
			return true
		}
	}
	return false
}

// matchesPrefixSet treats every value as a prefix, full length or not
func matchesPrefixSet(values []string, candidate string) bool {
	for _, v := range values {
		if strings.HasPrefix(candidate, v) {
			return true
		}
	}
	return false
}

// eventHasTag reports whether any tag on the event has the given name
// and one of the wanted values in its second position
func eventHasTag(ev *nostr.Event, name string, wantValues []string) bool {
	for _, tag := range ev.Tags {
		if len(tag) < 2 || tag[0] != name {
			continue
		}
		for _, wv := range wantValues {
			if tag[1] == wv {
				return true
			}
		}
	}
	return false
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
