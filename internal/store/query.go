// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// sqlBuilder accumulates WHERE clauses and their positional arguments.
type sqlBuilder struct {
	where []string
	args  []any
}

// arg appends v and returns its placeholder.
func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *sqlBuilder) and(clause string) {
	b.where = append(b.where, clause)
}

// whereSQL renders the accumulated clauses, or "" when there are none.
func (b *sqlBuilder) whereSQL() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

// searchTerms adds one clause per whitespace-separated term; each term must
// match at least one of columns as a case-insensitive substring.
func (b *sqlBuilder) searchTerms(search string, columns ...string) {
	for _, term := range strings.Fields(search) {
		p := b.arg("%" + escapeLike(term) + "%")
		ors := make([]string, len(columns))
		for i, col := range columns {
			ors[i] = col + " ILIKE " + p
		}
		b.and("(" + strings.Join(ors, " OR ") + ")")
	}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// orderTerm is one ORDER BY component.
type orderTerm struct {
	column string
	desc   bool
}

// parseOrdering reads a comma-separated list of field names, each
// optionally prefixed with "-", keeping only fields present in allowed.
// Returns nil when nothing usable was given.
func parseOrdering(raw string, allowed map[string]string) []orderTerm {
	var terms []orderTerm
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		col, ok := allowed[name]
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		terms = append(terms, orderTerm{column: col, desc: desc})
	}
	return terms
}

// orderSQL renders terms followed by the tie-breakers not already present.
// NULLs sort last in either direction.
func orderSQL(terms []orderTerm, tieBreakers ...orderTerm) string {
	seen := make(map[string]bool, len(terms))
	parts := make([]string, 0, len(terms)+len(tieBreakers))
	for _, t := range append(terms, tieBreakers...) {
		if seen[t.column] {
			continue
		}
		seen[t.column] = true
		dir := " ASC"
		if t.desc {
			dir = " DESC"
		}
		parts = append(parts, t.column+dir+" NULLS LAST")
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// limitSQL renders LIMIT/OFFSET; a non-positive limit means no limit.
func (b *sqlBuilder) limitSQL(limit, offset int) string {
	var sb strings.Builder
	if limit > 0 {
		sb.WriteString(" LIMIT " + b.arg(limit))
	}
	if offset > 0 {
		sb.WriteString(" OFFSET " + b.arg(offset))
	}
	return sb.String()
}

// uuidStrings converts ids for use with ANY($n::uuid[]).
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
