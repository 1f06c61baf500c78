package livehub

import (
	"slices"
	"sync"
)

// Index is a keyed in-memory view that change events are applied to as deltas.
type Index[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
	cmp   func(a, b V) int
}

// NewIndex creates an index whose Sorted output is ordered by cmp.
func NewIndex[K comparable, V any](cmp func(a, b V) int) *Index[K, V] {
	return &Index[K, V]{items: make(map[K]V), cmp: cmp}
}

func (ix *Index[K, V]) Put(k K, v V) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.items[k] = v
}

func (ix *Index[K, V]) Get(k K) (V, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	v, ok := ix.items[k]
	return v, ok
}

// Delete reports whether k was present.
func (ix *Index[K, V]) Delete(k K) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, ok := ix.items[k]; !ok {
		return false
	}
	delete(ix.items, k)
	return true
}

// DeleteWhere removes every value matching pred and returns how many were removed.
func (ix *Index[K, V]) DeleteWhere(pred func(V) bool) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	n := 0
	for k, v := range ix.items {
		if pred(v) {
			delete(ix.items, k)
			n++
		}
	}
	return n
}

// Replace swaps the whole content, as after a full refetch.
func (ix *Index[K, V]) Replace(values []V, key func(V) K) {
	items := make(map[K]V, len(values))
	for _, v := range values {
		items[key(v)] = v
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.items = items
}

func (ix *Index[K, V]) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.items)
}

func (ix *Index[K, V]) Sorted() []V {
	ix.mu.RLock()
	out := make([]V, 0, len(ix.items))
	for _, v := range ix.items {
		out = append(out, v)
	}
	ix.mu.RUnlock()
	if ix.cmp != nil {
		slices.SortFunc(out, ix.cmp)
	}
	return out
}
