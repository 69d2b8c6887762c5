package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/rows"
)

// Ensure Client implements rows.Querier at compile time.
var _ rows.Querier = (*Client)(nil)

// Select runs a row query against the REST row endpoint using PostgREST
// filter syntax: ?select=a,b&col=eq.v&col=in.("x","y").
func (c *Client) Select(ctx context.Context, table string, q rows.Query) ([]rows.Row, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if c.restURL == nil {
		return nil, fmt.Errorf("%w: rest url not configured", apperr.ErrValidation)
	}
	if err := q.Validate(table); err != nil {
		return nil, err
	}

	rel := &url.URL{Path: table, RawQuery: encodeQuery(q)}
	var payload []map[string]any
	if err := c.doURL(ctx, http.MethodGet, c.restURL.ResolveReference(rel), nil, &payload); err != nil {
		return nil, err
	}
	out := make([]rows.Row, 0, len(payload))
	for i, item := range payload {
		if item == nil {
			return nil, apperr.Shape("%s row %d is null", table, i)
		}
		out = append(out, rows.Row(item))
	}
	return out, nil
}

func encodeQuery(q rows.Query) string {
	values := url.Values{}
	values.Set("select", strings.Join(q.Cols, ","))
	for _, col := range sortedKeys(q.Eq) {
		values.Add(col, "eq."+fmt.Sprint(q.Eq[col]))
	}
	for _, col := range sortedKeys(q.In) {
		quoted := make([]string, len(q.In[col]))
		for i, v := range q.In[col] {
			quoted[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
		}
		values.Add(col, "in.("+strings.Join(quoted, ",")+")")
	}
	return values.Encode()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
