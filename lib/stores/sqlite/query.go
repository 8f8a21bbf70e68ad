package sqlite

import (
	"strings"

	"github.com/nbd-wtf/go-nostr"
)

const (
	// defaultQueryLimit applies when a filter carries no limit
	defaultQueryLimit = 500
	// maxQueryLimit is enforced regardless of what the caller requests
	maxQueryLimit = 5000
)

const eventColumns = "id, pubkey, created_at, kind, content, tags, sig"

// buildEventsQuery translates a subscription filter into one
// parameterized SELECT plus its parameter list. Clauses are AND'd
// together; values within a clause are OR'd. The statement is allowed
// to over-approximate (tag constraints are not pushed down); the final
// say belongs to eventMatchesFilter on the decoded rows.
//
// A value set that is present but empty matches nothing, so it
// produces an always-false clause rather than being dropped.
func buildEventsQuery(filter nostr.Filter) (string, []interface{}) {
	var (
		clauses []string
		params  []interface{}
	)

	if filter.IDs != nil {
		clauses = append(clauses, idMatchClause(filter.IDs, &params))
	}
	if filter.Authors != nil {
		clauses = append(clauses, prefixMatchClause("pubkey", filter.Authors, &params))
	}
	if filter.Kinds != nil {
		clauses = append(clauses, kindMatchClause(filter.Kinds, &params))
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		params = append(params, int64(*filter.Since))
	}
	if filter.Until != nil {
		clauses = append(clauses, "created_at <= ?")
		params = append(params, int64(*filter.Until))
	}

	query := "SELECT " + eventColumns + " FROM events"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	params = append(params, effectiveLimit(filter.Limit))

	return query, params
}

// idMatchClause builds the OR-group for the ids clause: a full
// 64-char hex string compares exactly, anything shorter matches as a
// prefix. Both forms can mix within one group.
func idMatchClause(ids []string, params *[]interface{}) string {
	if len(ids) == 0 {
		return "1 = 0"
	}
	terms := make([]string, 0, len(ids))
	for _, id := range ids {
		if isFullHexID(id) {
			terms = append(terms, "id = ?")
			*params = append(*params, id)
		} else {
			terms = append(terms, "id LIKE ?")
			*params = append(*params, id+"%")
		}
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

// prefixMatchClause builds an OR-group of prefix comparisons. Authors
// are always prefix-matched, even at full length; this is a deliberate
// asymmetry from the ids clause.
func prefixMatchClause(column string, values []string, params *[]interface{}) string {
	if len(values) == 0 {
		return "1 = 0"
	}
	terms := make([]string, 0, len(values))
	for _, v := range values {
		terms = append(terms, column+" LIKE ?")
		*params = append(*params, v+"%")
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

func kindMatchClause(kinds []int, params *[]interface{}) string {
	if len(kinds) == 0 {
		return "1 = 0"
	}
	placeholders := make([]string, 0, len(kinds))
	for _, k := range kinds {
		placeholders = append(placeholders, "?")
		*params = append(*params, k)
	}
	return "kind IN (" + strings.Join(placeholders, ", ") + ")"
}

// effectiveLimit applies the default and the unconditional hard cap
func effectiveLimit(requested int) int {
	if requested <= 0 {
		return defaultQueryLimit
	}
	if requested > maxQueryLimit {
		return maxQueryLimit
	}
	return requested
}

// isFullHexID reports whether s is a complete 64-character hex
// identifier, which gets exact-match treatment in the ids clause
func isFullHexID(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
