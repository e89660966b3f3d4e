package events

import (
	"database/sql"
	"math"
	"strings"

	"transferScope/internal/felt"
	"transferScope/internal/model"
)

// Named parameters bound by BuildEventQuery.
const (
	ParamFromBlock   = "from_block"
	ParamToBlock     = "to_block"
	ParamEventsMatch = "events_match"
)

// noRows replaces the block range when the lower bound cannot be stored in
// an SQLite integer column.
const noRows = "0 = 1"

const keysJoin = " INNER JOIN starknet_events_keys ON starknet_events.rowid = starknet_events_keys.rowid"

// BuildEventQuery appends the block range and key predicates to base and
// returns the query with its named arguments. Keys are matched as a
// disjunction of quoted base64 phrases against the FTS5 key index.
func BuildEventQuery(base string, from, to *model.BlockNumber, keys []model.EventKey) (string, []sql.NamedArg) {
	var clauses []string
	var args []sql.NamedArg

	switch {
	case from != nil && uint64(*from) > math.MaxInt64:
		clauses = append(clauses, noRows)
	case from != nil && to != nil:
		clauses = append(clauses, "block_number BETWEEN :from_block AND :to_block")
		args = append(args, sql.Named(ParamFromBlock, int64(*from)), sql.Named(ParamToBlock, clampBlock(*to)))
	case from != nil:
		clauses = append(clauses, "block_number >= :from_block")
		args = append(args, sql.Named(ParamFromBlock, int64(*from)))
	case to != nil:
		clauses = append(clauses, "block_number <= :to_block")
		args = append(args, sql.Named(ParamToBlock, clampBlock(*to)))
	}

	joins := ""
	if len(keys) > 0 {
		joins = keysJoin
		clauses = append(clauses, "starknet_events_keys.keys MATCH :events_match")
		args = append(args, sql.Named(ParamEventsMatch, KeyMatchExpression(keys)))
	}

	if len(clauses) == 0 {
		return base, nil
	}

	var q strings.Builder
	q.Grow(len(base) + len(joins) + len(" WHERE ") + 128)
	q.WriteString(base)
	q.WriteString(joins)
	q.WriteString(" WHERE ")
	q.WriteString(strings.Join(clauses, " AND "))
	return q.String(), args
}

// clampBlock caps an upper bound at the largest SQLite integer.
func clampBlock(n model.BlockNumber) int64 {
	if uint64(n) > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

// KeyMatchExpression builds the FTS5 expression `"<b64(k1)>" OR "<b64(k2)>"`.
// Quoting forces phrase matching, which tolerates base64 punctuation.
func KeyMatchExpression(keys []model.EventKey) string {
	if len(keys) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(keys)*(len(` OR `)+len(`""`)+44) - len(` OR `))
	for i, key := range keys {
		if i > 0 {
			b.WriteString(" OR ")
		}
		b.WriteByte('"')
		b.WriteString(felt.EncodeKeyBase64(key.Felt()))
		b.WriteByte('"')
	}
	return b.String()
}
