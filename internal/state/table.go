package state

import "sync"

// Keyed is implemented by every entity stored in a Table.
type Keyed interface {
	Key() string
}

// Table is an id-keyed collection that remembers insertion order. Every method
// is one critical section, so concurrent writers never interleave inside a
// setter.
type Table[T Keyed] struct {
	mu   sync.RWMutex
	keys []string
	rows map[string]T
}

// SetAll replaces the contents wholesale. Later duplicates win but keep the
// position of the first occurrence.
func (t *Table[T]) SetAll(items []T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.keys = make([]string, 0, len(items))
	t.rows = make(map[string]T, len(items))
	for _, item := range items {
		key := item.Key()
		if _, ok := t.rows[key]; !ok {
			t.keys = append(t.keys, key)
		}
		t.rows[key] = item
	}
}

// UpsertOne inserts item or replaces the entry with the same key in place.
func (t *Table[T]) UpsertOne(item T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.upsertLocked(item)
}

// InsertIfAbsent adds item only when its key is not tracked yet.
func (t *Table[T]) InsertIfAbsent(item T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[item.Key()]; ok {
		return false
	}
	t.upsertLocked(item)
	return true
}

// RemoveOne deletes the entry for key.
func (t *Table[T]) RemoveOne(key string) bool {
	return t.RemoveIf(key, nil)
}

// RemoveIf deletes the entry for key when pred is nil or returns true for it.
func (t *Table[T]) RemoveIf(key string, pred func(T) bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	item, ok := t.rows[key]
	if !ok {
		return false
	}
	if pred != nil && !pred(item) {
		return false
	}
	delete(t.rows, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
	return true
}

// Patch rewrites the entry for key in place. fn must not change the key.
func (t *Table[T]) Patch(key string, fn func(*T)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	item, ok := t.rows[key]
	if !ok {
		return false
	}
	fn(&item)
	t.rows[key] = item
	return true
}

// PatchWhere applies fn to every entry and keeps the ones it reports as
// changed. It returns the number of changed entries.
func (t *Table[T]) PatchWhere(fn func(*T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	changed := 0
	for key, item := range t.rows {
		if fn(&item) {
			t.rows[key] = item
			changed++
		}
	}
	return changed
}

// Merge upserts item, or when the key exists replaces it with fn(existing).
func (t *Table[T]) Merge(item T, fn func(existing T) T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.rows[item.Key()]; ok && fn != nil {
		t.rows[item.Key()] = fn(existing)
		return
	}
	t.upsertLocked(item)
}

// Get returns the entry for key.
func (t *Table[T]) Get(key string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.rows[key]
	return item, ok
}

// All returns a copy of the entries in insertion order.
func (t *Table[T]) All() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.keys) == 0 {
		return nil
	}
	items := make([]T, 0, len(t.keys))
	for _, key := range t.keys {
		items = append(items, t.rows[key])
	}
	return items
}

// Len returns the number of entries.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.keys)
}

// Clear empties the table.
func (t *Table[T]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.keys = nil
	t.rows = nil
}

func (t *Table[T]) upsertLocked(item T) {
	key := item.Key()
	if t.rows == nil {
		t.rows = make(map[string]T)
	}
	if _, ok := t.rows[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.rows[key] = item
}
