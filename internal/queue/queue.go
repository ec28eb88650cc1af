// Package queue provides the bounded max-heap used for k-nearest-neighbor selection.
package queue

// Item is a reference point index with its distance to the query.
type Item struct {
	Index    int32
	Distance float32
}

// Worse reports whether a ranks after b: larger distance, or equal
// distance and larger index.
func Worse(a, b Item) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Index > b.Index
}

// TopK keeps the k best items seen so far. The worst kept item is at the root,
// so a full heap rejects a candidate with a single comparison.
// Value-based storage; it does not implement container/heap to avoid interface overhead.
type TopK struct {
	k     int
	items []Item
}

// NewTopK returns an empty TopK with capacity k.
func NewTopK(k int) *TopK {
	return &TopK{k: k, items: make([]Item, 0, k)}
}

// Reset empties the heap and sets a new bound.
func (h *TopK) Reset(k int) {
	h.k = k
	if cap(h.items) < k {
		h.items = make([]Item, 0, k)
	}
	h.items = h.items[:0]
}

// Len returns the number of kept items.
func (h *TopK) Len() int {
	return len(h.items)
}

// Full reports whether k items are kept.
func (h *TopK) Full() bool {
	return len(h.items) >= h.k
}

// Worst returns the root item.
func (h *TopK) Worst() (Item, bool) {
	if len(h.items) == 0 {
		return Item{}, false
	}
	return h.items[0], true
}

// Push offers an item. When the heap is full the item replaces the root only
// if it ranks better.
func (h *TopK) Push(item Item) {
	if h.k <= 0 {
		return
	}
	if len(h.items) < h.k {
		h.items = append(h.items, item)
		h.siftUp(len(h.items) - 1)
		return
	}
	if Worse(h.items[0], item) {
		h.items[0] = item
		h.siftDown(0)
	}
}

// Drain empties the heap into dst in ascending order (best first) and returns dst.
func (h *TopK) Drain(dst []Item) []Item {
	n := len(h.items)
	dst = dst[:0]
	for range_i := 0; range_i < n; range_i++ {
		dst = append(dst, Item{})
	}
	for i := n - 1; i >= 0; i-- {
		dst[i] = h.items[0]
		last := len(h.items) - 1
		h.items[0] = h.items[last]
		h.items = h.items[:last]
		if last > 0 {
			h.siftDown(0)
		}
	}
	return dst
}

func (h *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !Worse(h.items[i], h.items[p]) {
			return
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *TopK) siftDown(i int) {
	n := len(h.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		worst := l
		if r := l + 1; r < n && Worse(h.items[r], h.items[l]) {
			worst = r
		}
		if !Worse(h.items[worst], h.items[i]) {
			return
		}
		h.items[i], h.items[worst] = h.items[worst], h.items[i]
		i = worst
	}
}
