// Package store holds the in-memory reactive state containers. A Collection
// is an ordered list of records with a selection cursor; a Singleton wraps a
// single aggregate value. Both notify subscribers after every committed
// change, outside their locks.
package store

import (
	"sort"
	"sync"
	"time"

	"folio/internal/util"
)

// Record is implemented by every collection entity. All methods are value
// receivers returning copies; the store never mutates a record in place.
type Record[T any] interface {
	RecordID() string
	WithID(id string) T
	WithOrder(n int) T
	Ordinal() int
	WithStamps(created, updated time.Time) T
	Created() time.Time
	Normalize() T
}

// ImportMode selects how ImportBulk combines incoming records with the
// current ones.
type ImportMode string

const (
	ImportAppend  ImportMode = "append"
	ImportReplace ImportMode = "replace"
)

// Envelope is the export container written for a single collection.
type Envelope[T any] struct {
	Type       string    `json:"type"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Items      []T       `json:"items"`
}

// Collection is a thread-safe ordered set of records. Items are kept sorted
// by their dense order field; the zero selection means nothing is selected.
type Collection[T Record[T]] struct {
	mu       sync.RWMutex
	items    []T
	selected string
	subs     []func()

	kind    string
	newItem func() T

	// Injectable for tests.
	Now   func() time.Time
	NewID func() string
}

// NewCollection builds an empty collection. kind names the export envelope
// type; newItem produces the record a fresh Add starts from.
func NewCollection[T Record[T]](kind string, newItem func() T) *Collection[T] {
	return &Collection[T]{
		kind:    kind,
		newItem: newItem,
		Now:     time.Now,
		NewID:   func() string { return util.NewID("") },
	}
}

// Subscribe registers a callback invoked after every committed change. The
// callback runs outside the collection lock and may read the collection.
func (c *Collection[T]) Subscribe(fn func()) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Collection[T]) notify() {
	c.mu.RLock()
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	c.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// Items returns the records sorted by order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// SelectedID returns the id of the selected record, or "".
func (c *Collection[T]) SelectedID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// Select moves the selection cursor. Selecting an unknown id clears it.
func (c *Collection[T]) Select(id string) {
	c.mu.Lock()
	if _, ok := c.indexOf(id); ok {
		c.selected = id
	} else {
		c.selected = ""
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[T]) indexOf(id string) (int, bool) {
	for i, item := range c.items {
		if item.RecordID() == id {
			return i, true
		}
	}
	return 0, false
}

// Add creates a fresh record from the collection's default shape, appends it
// at the end of the order, selects it, and returns its id.
func (c *Collection[T]) Add() string {
	c.mu.Lock()
	now := c.Now()
	item := c.newItem().
		WithID(c.NewID()).
		WithOrder(len(c.items)).
		WithStamps(now, now).
		Normalize()
	c.items = append(c.items, item)
	c.selected = item.RecordID()
	c.mu.Unlock()
	c.notify()
	return item.RecordID()
}

// Update applies a transform to the record with the given id, normalizes the
// result, and bumps its update stamp. It reports whether the id existed.
func (c *Collection[T]) Update(id string, apply func(T) T) bool {
	c.mu.Lock()
	i, ok := c.indexOf(id)
	if !ok {
		c.mu.Unlock()
		return false
	}
	item := apply(c.items[i]).
		WithID(id).
		WithOrder(c.items[i].Ordinal()).
		Normalize().
		WithStamps(time.Time{}, c.Now())
	c.items[i] = item
	c.mu.Unlock()
	c.notify()
	return true
}

// Remove deletes the record and densely renumbers the remainder. If the
// removed record was selected, the selection moves to the first remaining
// record, or clears.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	i, ok := c.indexOf(id)
	if !ok {
		c.mu.Unlock()
		return false
	}
	wasSelected := c.selected == id
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.renumber()
	if wasSelected {
		if len(c.items) == 0 {
			c.selected = ""
		} else {
			c.selected = c.items[0].RecordID()
		}
	}
	c.mu.Unlock()
	c.notify()
	return true
}

// renumber assigns dense orders matching the current slice positions. Caller
// holds the lock.
func (c *Collection[T]) renumber() {
	for i := range c.items {
		c.items[i] = c.items[i].WithOrder(i)
	}
}

// Reorder rearranges records to match ids: listed records take the listed
// positions, unlisted records follow in their prior relative order, and
// unknown ids are ignored. Orders come out dense.
func (c *Collection[T]) Reorder(ids []string) {
	c.mu.Lock()
	listed := make([]T, 0, len(c.items))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if i, ok := c.indexOf(id); ok {
			listed = append(listed, c.items[i])
			seen[id] = true
		}
	}
	rest := make([]T, 0, len(c.items)-len(listed))
	for _, item := range c.items {
		if !seen[item.RecordID()] {
			rest = append(rest, item)
		}
	}
	c.items = append(listed, rest...)
	c.renumber()
	c.mu.Unlock()
	c.notify()
}

// ReplaceAll swaps the entire contents, normalizing and sorting by the
// incoming order before a dense renumber. A selection pointing at a vanished
// id is cleared.
func (c *Collection[T]) ReplaceAll(items []T) {
	c.mu.Lock()
	c.replaceLocked(items)
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[T]) replaceLocked(items []T) {
	next := make([]T, len(items))
	for i, item := range items {
		next[i] = item.Normalize()
	}
	sort.SliceStable(next, func(a, b int) bool { return next[a].Ordinal() < next[b].Ordinal() })
	c.items = next
	c.renumber()
	if _, ok := c.indexOf(c.selected); !ok {
		c.selected = ""
	}
}

// ImportBulk merges decoded records. Replace swaps the whole collection.
// Append upserts by id: a known id patches the existing record in place,
// keeping its order and creation stamp; unknown or empty ids go to the end
// of the order, empty ones with a generated id.
func (c *Collection[T]) ImportBulk(items []T, mode ImportMode) {
	c.mu.Lock()
	if mode == ImportReplace {
		c.replaceLocked(items)
		c.mu.Unlock()
		c.notify()
		return
	}
	now := c.Now()
	for _, item := range items {
		item = item.Normalize()
		if item.RecordID() == "" {
			item = item.WithID(c.NewID())
		}
		if i, ok := c.indexOf(item.RecordID()); ok {
			c.items[i] = item.
				WithOrder(c.items[i].Ordinal()).
				WithStamps(c.items[i].Created(), now)
			continue
		}
		if item.Created().IsZero() {
			item = item.WithStamps(now, now)
		}
		c.items = append(c.items, item.WithOrder(len(c.items)))
	}
	c.mu.Unlock()
	c.notify()
}

// Export wraps the current records in a versioned envelope, re-normalizing
// each one on the way out.
func (c *Collection[T]) Export() Envelope[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]T, len(c.items))
	for i, item := range c.items {
		items[i] = item.Normalize()
	}
	return Envelope[T]{
		Type:       c.kind,
		Version:    1,
		ExportedAt: c.Now(),
		Items:      items,
	}
}
