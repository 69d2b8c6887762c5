// Package rows describes the read-only row-query interface used for hydration.
//
// The backend has no join capability, so callers issue one query per table and
// join the results in memory. Three backends implement Querier: the REST
// client in internal/api, pgrows (Postgres) and mongorows (MongoDB).
package rows

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/five82/circle/internal/apperr"
)

// Querier runs a single-table select.
type Querier interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
}

// Query selects Cols from a table, filtered by equality (Eq) and membership (In).
// All filters are ANDed.
type Query struct {
	Cols []string
	Eq   map[string]any
	In   map[string][]string
}

// Select starts a Query over cols.
func Select(cols ...string) Query {
	return Query{Cols: cols}
}

// Where adds an equality filter.
func (q Query) Where(col string, value any) Query {
	eq := make(map[string]any, len(q.Eq)+1)
	for k, v := range q.Eq {
		eq[k] = v
	}
	eq[col] = value
	q.Eq = eq
	return q
}

// WhereIn adds a membership filter.
func (q Query) WhereIn(col string, values []string) Query {
	in := make(map[string][]string, len(q.In)+1)
	for k, v := range q.In {
		in[k] = v
	}
	in[col] = append([]string(nil), values...)
	q.In = in
	return q
}

var identRE = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdent reports whether name is safe to use as a table or column name.
func ValidIdent(name string) bool {
	return identRE.MatchString(name)
}

// Validate checks every identifier in the query against ValidIdent.
func (q Query) Validate(table string) error {
	if !ValidIdent(table) {
		return fmt.Errorf("%w: invalid table %q", apperr.ErrValidation, table)
	}
	if len(q.Cols) == 0 {
		return fmt.Errorf("%w: no columns selected from %s", apperr.ErrValidation, table)
	}
	for _, col := range q.Cols {
		if !ValidIdent(col) {
			return fmt.Errorf("%w: invalid column %q", apperr.ErrValidation, col)
		}
	}
	for col := range q.Eq {
		if !ValidIdent(col) {
			return fmt.Errorf("%w: invalid column %q", apperr.ErrValidation, col)
		}
	}
	for col := range q.In {
		if !ValidIdent(col) {
			return fmt.Errorf("%w: invalid column %q", apperr.ErrValidation, col)
		}
	}
	return nil
}

// Row is one result record keyed by column name. Backends normalize driver
// specific values (uuids, object ids, timestamps) into strings and time.Time.
type Row map[string]any

// String returns col as a string. Numeric ids are formatted without exponent.
func (r Row) String(col string) (string, bool) {
	switch v := r[col].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}

// ID returns col as a non-empty id or a shape failure.
func (r Row) ID(col string) (string, error) {
	value, ok := r.String(col)
	if !ok || strings.TrimSpace(value) == "" {
		return "", apperr.Shape("column %q missing or not an id", col)
	}
	return value, nil
}

// Text returns col as a string, or "" when absent or null.
func (r Row) Text(col string) string {
	value, _ := r.String(col)
	return value
}

// NullableText returns nil when col is absent or null.
func (r Row) NullableText(col string) *string {
	if r[col] == nil {
		return nil
	}
	value, ok := r.String(col)
	if !ok {
		return nil
	}
	return &value
}

// Bool returns col as a bool, false when absent.
func (r Row) Bool(col string) bool {
	v, _ := r[col].(bool)
	return v
}

// Time returns col as a time. RFC3339 strings are parsed; anything else is zero.
func (r Row) Time(col string) time.Time {
	switch v := r[col].(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999-07", "2006-01-02T15:04:05.999999"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// Clone returns a shallow copy.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	dup := make(Row, len(r))
	for k, v := range r {
		dup[k] = v
	}
	return dup
}
