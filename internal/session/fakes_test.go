package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/model"
	"github.com/five82/circle/internal/realtime"
	"github.com/five82/circle/internal/rows"
)

type selectCall struct {
	table string
	query rows.Query
}

// fakeRows answers Select from canned per-table responses.
type fakeRows struct {
	mu       sync.Mutex
	tables   map[string][]rows.Row
	failures map[string]error
	calls    []selectCall
}

func newFakeRows() *fakeRows {
	return &fakeRows{tables: map[string][]rows.Row{}, failures: map[string]error{}}
}

func (f *fakeRows) Select(_ context.Context, table string, q rows.Query) ([]rows.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, selectCall{table: table, query: q})
	if err := f.failures[table]; err != nil {
		return nil, err
	}
	var out []rows.Row
	for _, rec := range f.tables[table] {
		if matches(rec, q) {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func matches(rec rows.Row, q rows.Query) bool {
	for col, want := range q.Eq {
		got, ok := rec.String(col)
		if ok && got != want {
			return false
		}
	}
	for col, values := range q.In {
		got, ok := rec.String(col)
		if !ok {
			continue
		}
		found := false
		for _, v := range values {
			if v == got {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *fakeRows) callsTo(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.table == table {
			n++
		}
	}
	return n
}

type backendCall struct {
	method string
	args   []string
}

// fakeBackend records calls and fails the methods or ids listed in fail.
type fakeBackend struct {
	mu    sync.Mutex
	calls []backendCall
	fail  map[string]error
	saved model.Community
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{fail: map[string]error{}}
}

func (f *fakeBackend) record(method string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, backendCall{method: method, args: args})
	if err := f.fail[method]; err != nil {
		return err
	}
	if len(args) > 0 {
		if err := f.fail[method+":"+args[0]]; err != nil {
			return err
		}
	}
	return nil
}

// count reports calls to method, or to "Method:arg0" for one first argument.
func (f *fakeBackend) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	method, arg, byArg := strings.Cut(key, ":")
	n := 0
	for _, c := range f.calls {
		if c.method != method {
			continue
		}
		if byArg && (len(c.args) == 0 || c.args[0] != arg) {
			continue
		}
		n++
	}
	return n
}

func (f *fakeBackend) JoinCommunity(_ context.Context, id string) error {
	return f.record("JoinCommunity", id)
}

func (f *fakeBackend) LeaveCommunity(_ context.Context, id string) error {
	return f.record("LeaveCommunity", id)
}

func (f *fakeBackend) AddCommunityMember(_ context.Context, c, u string, role model.Role) error {
	return f.record("AddCommunityMember", c, u, string(role))
}

func (f *fakeBackend) KickCommunityMember(_ context.Context, c, u string) error {
	return f.record("KickCommunityMember", c, u)
}

func (f *fakeBackend) SaveCommunity(_ context.Context, c model.Community) (model.Community, error) {
	if err := f.record("SaveCommunity", c.ID); err != nil {
		return model.Community{}, err
	}
	if f.saved.ID != "" {
		return f.saved, nil
	}
	return c, nil
}

func (f *fakeBackend) JoinEvent(_ context.Context, id string) error {
	return f.record("JoinEvent", id)
}

func (f *fakeBackend) LeaveEvent(_ context.Context, e, u string) error {
	return f.record("LeaveEvent", e, u)
}

func (f *fakeBackend) FollowUser(_ context.Context, id string) error {
	return f.record("FollowUser", id)
}

func (f *fakeBackend) UnfollowUser(_ context.Context, id string) error {
	return f.record("UnfollowUser", id)
}

func (f *fakeBackend) RemoveSong(_ context.Context, id string) error {
	return f.record("RemoveSong", id)
}

func (f *fakeBackend) RemovePlaylist(_ context.Context, id string) error {
	return f.record("RemovePlaylist", id)
}

type subscription struct {
	table   string
	filter  string
	handler realtime.Handler
	stopped bool
}

// fakeFeed keeps handlers so tests can push events synchronously.
type fakeFeed struct {
	mu   sync.Mutex
	subs []*subscription
	fail error
}

func (f *fakeFeed) Subscribe(_ context.Context, table, filter string, h realtime.Handler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	sub := &subscription{table: table, filter: filter, handler: h}
	f.subs = append(f.subs, sub)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		sub.stopped = true
	}, nil
}

// emit delivers ev to every live subscription on table.
func (f *fakeFeed) emit(table string, ev realtime.Event) {
	f.mu.Lock()
	var handlers []realtime.Handler
	for _, sub := range f.subs {
		if sub.table == table && !sub.stopped {
			handlers = append(handlers, sub.handler)
		}
	}
	f.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

func (f *fakeFeed) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, sub := range f.subs {
		if !sub.stopped {
			n++
		}
	}
	return n
}

var errRejected = apperr.NewRejected(403, "not allowed")

var errBoom = errors.New("boom")

func newTestSession(t *testing.T, q *fakeRows, b *fakeBackend, feed realtime.Feed) *Session {
	t.Helper()
	s, err := New(Options{
		ViewerID: "viewer",
		Backend:  b,
		Rows:     q,
		Feed:     feed,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}
