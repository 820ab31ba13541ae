package supabase

import (
	"net/url"
	"strconv"
)

// Query builds PostgREST query parameters: column selection, filters,
// ordering and row limits.
type Query struct {
	values url.Values
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Select restricts the returned columns, e.g. "session_id,created_at".
func (q *Query) Select(columns string) *Query {
	q.values.Set("select", columns)
	return q
}

// Eq adds an equality filter.
func (q *Query) Eq(column, value string) *Query {
	return q.filter(column, "eq", value)
}

// Gte adds a greater-than-or-equal filter.
func (q *Query) Gte(column, value string) *Query {
	return q.filter(column, "gte", value)
}

// Lt adds a strictly-less-than filter.
func (q *Query) Lt(column, value string) *Query {
	return q.filter(column, "lt", value)
}

// Order sets the ordering clause, e.g. "submitted_at.desc.nullslast".
func (q *Query) Order(clause string) *Query {
	q.values.Set("order", clause)
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	if n > 0 {
		q.values.Set("limit", strconv.Itoa(n))
	}
	return q
}

// Encode renders the query string without the leading '?'.
func (q *Query) Encode() string {
	if q == nil {
		return ""
	}
	return q.values.Encode()
}

func (q *Query) filter(column, op, value string) *Query {
	q.values.Add(column, op+"."+value)
	return q
}
