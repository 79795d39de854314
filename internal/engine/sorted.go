package engine

import "cmp"

// Order selects the direction a collection is sorted in.
type Order int

const (
	Ascending Order = iota
	Descending
)

// InsertSorted inserts item into a slice already sorted by key in the given
// order and returns a new slice; the input is never mutated, so callers can
// hand previous snapshots to a reactive consumer without aliasing hazards.
//
// The insertion index is found by binary search. Ties are stable: the new item
// lands after all existing items with an equal key. Items whose key function
// reports no key always sort last, regardless of order; inserting a keyless
// item appends it.
func InsertSorted[T any, K cmp.Ordered](sorted []T, item T, key func(T) (K, bool), order Order) []T {
	newKey, hasKey := key(item)
	if !hasKey {
		return appendCopy(sorted, item, len(sorted))
	}

	low, high := 0, len(sorted)
	for low < high {
		mid := (low + high) / 2
		if precedes(key, sorted[mid], newKey, order) {
			low = mid + 1
		} else {
			high = mid
		}
	}

	return appendCopy(sorted, item, low)
}

// precedes reports whether an existing element should stay in front of a new
// item carrying newKey. Equal keys keep the existing element in front, and a
// keyless element never precedes a keyed one.
func precedes[T any, K cmp.Ordered](key func(T) (K, bool), existing T, newKey K, order Order) bool {
	existingKey, hasKey := key(existing)
	if !hasKey {
		return false
	}
	if order == Descending {
		return existingKey >= newKey
	}
	return existingKey <= newKey
}

// Remove returns a new slice with the first element matching the predicate
// removed, along with that element's former index. A missing match is a
// normal outcome reported as -1, never an error.
func Remove[T any](items []T, match func(T) bool) ([]T, int) {
	for i, item := range items {
		if match(item) {
			result := make([]T, 0, len(items)-1)
			result = append(result, items[:i]...)
			result = append(result, items[i+1:]...)
			return result, i
		}
	}
	return items, -1
}

func appendCopy[T any](items []T, item T, index int) []T {
	result := make([]T, 0, len(items)+1)
	result = append(result, items[:index]...)
	result = append(result, item)
	result = append(result, items[index:]...)
	return result
}

// interactionDateKey orders interactions by occurrence date. Unpersisted
// interactions without a date have no key and therefore sort last.
func interactionDateKey(i Interaction) (int64, bool) {
	if i.Date.IsZero() {
		return 0, false
	}
	return i.Date.UnixNano(), true
}

// attentionKey orders relationships by days-until-attention-needed.
// Relationships without a computed countdown have no key and sort last.
func attentionKey(r Relationship) (int, bool) {
	if r.DaysUntilAttention == nil {
		return 0, false
	}
	return *r.DaysUntilAttention, true
}
