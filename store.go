package client

import (
	"iter"
	"sort"
)

// Entry is the contract every stored entity satisfies. Entries are plain
// value types; comparability is what lets the reconciler distinguish a real
// update from a redelivered identical one.
type Entry[K comparable] interface {
	comparable
	Key() K
	MapID() MapID
}

// Store is an insertion-ordered collection of one entity kind, keyed by
// identity. Overwrites keep the original position unless the store was
// constructed with a secondary sort.
type Store[K comparable, T Entry[K]] struct {
	items     map[K]T
	order     []K
	normalize func(T) T
	less      func(a, b T) bool
}

// StoreOption configures kind-specific behavior layered on the generic store.
type StoreOption[K comparable, T Entry[K]] func(*Store[K, T])

// WithNormalize runs fn on every item before it is stored.
func WithNormalize[K comparable, T Entry[K]](fn func(T) T) StoreOption[K, T] {
	return func(s *Store[K, T]) { s.normalize = fn }
}

// WithOrdering keeps iteration sorted by less instead of insertion order,
// re-sorting after every mutation that adds or overwrites an item.
func WithOrdering[K comparable, T Entry[K]](less func(a, b T) bool) StoreOption[K, T] {
	return func(s *Store[K, T]) { s.less = less }
}

// NewStore returns an empty store.
func NewStore[K comparable, T Entry[K]](opts ...StoreOption[K, T]) *Store[K, T] {
	s := &Store[K, T]{items: make(map[K]T)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len reports the number of held entries.
func (s *Store[K, T]) Len() int { return len(s.items) }

// Get looks up one entry by identity.
func (s *Store[K, T]) Get(key K) (T, bool) {
	item, ok := s.items[key]
	return item, ok
}

// Has reports whether an identity is present.
func (s *Store[K, T]) Has(key K) bool {
	_, ok := s.items[key]
	return ok
}

// Upsert inserts or overwrites one entry. It reports whether the entry was
// newly added and whether the stored value changed at all.
func (s *Store[K, T]) Upsert(item T) (added, changed bool) {
	if s.normalize != nil {
		item = s.normalize(item)
	}
	key := item.Key()
	prev, exists := s.items[key]
	if exists && prev == item {
		return false, false
	}
	s.items[key] = item
	if !exists {
		s.order = append(s.order, key)
	}
	s.resort()
	return !exists, true
}

// Remove deletes one entry, reporting whether it existed.
func (s *Store[K, T]) Remove(key K) bool {
	if _, ok := s.items[key]; !ok {
		return false
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// ReplaceAll swaps the store contents wholesale.
func (s *Store[K, T]) ReplaceAll(items []T) {
	s.items = make(map[K]T, len(items))
	s.order = s.order[:0]
	for _, item := range items {
		if s.normalize != nil {
			item = s.normalize(item)
		}
		key := item.Key()
		if _, dup := s.items[key]; !dup {
			s.order = append(s.order, key)
		}
		s.items[key] = item
	}
	s.resort()
}

// ReplaceScoped makes items the authoritative contents for one map: entries
// on mapID absent from items are removed, every item is upserted, and entries
// on other maps are left untouched.
func (s *Store[K, T]) ReplaceScoped(mapID MapID, items []T) (removed []K) {
	keep := make(map[K]bool, len(items))
	for _, item := range items {
		keep[item.Key()] = true
	}
	for _, key := range append([]K(nil), s.order...) {
		item := s.items[key]
		if item.MapID() == mapID && !keep[key] {
			s.Remove(key)
			removed = append(removed, key)
		}
	}
	for _, item := range items {
		s.Upsert(item)
	}
	return removed
}

// Clear drops every entry.
func (s *Store[K, T]) Clear() {
	s.items = make(map[K]T)
	s.order = s.order[:0]
}

// All yields every entry in iteration order. Each call starts a fresh pass
// over the live contents.
func (s *Store[K, T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, key := range s.order {
			if item, ok := s.items[key]; ok {
				if !yield(item) {
					return
				}
			}
		}
	}
}

// Filter yields entries matching pred in iteration order.
func (s *Store[K, T]) Filter(pred func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, key := range s.order {
			item, ok := s.items[key]
			if !ok || !pred(item) {
				continue
			}
			if !yield(item) {
				return
			}
		}
	}
}

// ByMap yields entries owned by one map.
func (s *Store[K, T]) ByMap(mapID MapID) iter.Seq[T] {
	return s.Filter(func(item T) bool { return item.MapID() == mapID })
}

func (s *Store[K, T]) resort() {
	if s.less == nil {
		return
	}
	sort.SliceStable(s.order, func(i, j int) bool {
		return s.less(s.items[s.order[i]], s.items[s.order[j]])
	})
}
