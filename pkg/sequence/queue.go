// Package sequence provides ordered containers shared by the simulation core.
package sequence

import (
	"cmp"
	"container/heap"
)

// Item is a handle to a queued value. It stays valid until the value is
// popped or removed.
type Item[T any, P cmp.Ordered] struct {
	Value    T
	priority P
	seq      uint64
	index    int
}

func (it *Item[T, P]) Priority() P { return it.priority }

// Queued reports whether the item is still in its queue.
func (it *Item[T, P]) Queued() bool { return it.index >= 0 }

type minHeap[T any, P cmp.Ordered] struct {
	items []*Item[T, P]
}

func (h *minHeap[T, P]) Len() int {
	return len(h.items)
}

// Less orders by priority, then by insertion so equal priorities pop FIFO.
func (h *minHeap[T, P]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if c := cmp.Compare(a.priority, b.priority); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

func (h *minHeap[T, P]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *minHeap[T, P]) Push(x any) {
	item := x.(*Item[T, P])
	item.index = len(h.items)
	h.items = append(h.items, item)
}

func (h *minHeap[T, P]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	h.items = old[0 : n-1]
	return item
}

// Queue is a min-priority queue. It is not safe for concurrent use.
type Queue[T any, P cmp.Ordered] struct {
	h   minHeap[T, P]
	seq uint64
}

func NewQueue[T any, P cmp.Ordered]() *Queue[T, P] {
	q := &Queue[T, P]{}
	heap.Init(&q.h)
	return q
}

func (q *Queue[T, P]) Push(value T, priority P) *Item[T, P] {
	q.seq++
	item := &Item[T, P]{Value: value, priority: priority, seq: q.seq}
	heap.Push(&q.h, item)
	return item
}

// Pop removes the lowest priority value.
func (q *Queue[T, P]) Pop() (T, bool) {
	if q.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(&q.h).(*Item[T, P]).Value, true
}

// Peek returns the lowest priority item without removing it.
func (q *Queue[T, P]) Peek() (*Item[T, P], bool) {
	if q.h.Len() == 0 {
		return nil, false
	}
	return q.h.items[0], true
}

// PopUntil pops every value whose priority is <= limit, in order.
func (q *Queue[T, P]) PopUntil(limit P) []T {
	var out []T
	for q.h.Len() > 0 && q.h.items[0].priority <= limit {
		out = append(out, heap.Pop(&q.h).(*Item[T, P]).Value)
	}
	return out
}

// Update moves a queued item to a new priority. Returns false if the item
// is no longer queued.
func (q *Queue[T, P]) Update(item *Item[T, P], priority P) bool {
	if item == nil || item.index < 0 || item.index >= q.h.Len() || q.h.items[item.index] != item {
		return false
	}
	item.priority = priority
	heap.Fix(&q.h, item.index)
	return true
}

// Remove drops a queued item. Returns false if it was not queued.
func (q *Queue[T, P]) Remove(item *Item[T, P]) bool {
	if item == nil || item.index < 0 || item.index >= q.h.Len() || q.h.items[item.index] != item {
		return false
	}
	heap.Remove(&q.h, item.index)
	return true
}

func (q *Queue[T, P]) Len() int {
	return q.h.Len()
}

func (q *Queue[T, P]) IsEmpty() bool {
	return q.h.Len() == 0
}
